package series

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/appventus/appointment-backend/internal/pkg/apperror"
	"github.com/appventus/appointment-backend/internal/recurrence"
)

var (
	ErrNotFound      = apperror.New(http.StatusNotFound, "series not found")
	ErrInvalidRule   = errors.New("invalid recurrence rule")
	ErrNoOccurrences = errors.New("rule yields no occurrences")
	ErrLookupFailed  = errors.New("booking lookup failed")
)

// Booking is an immutable snapshot of an existing reservation, as read
// from storage for collision checking. Deleted entries are carried so
// the resolver can filter them locally even when the lookup returns a
// superset.
type Booking struct {
	ID       string
	UserID   string
	SeriesID string // empty for standalone bookings
	Title    string
	Start    time.Time
	End      time.Time
	Deleted  bool
}

// ConflictError reports the first occurrence of a candidate series that
// would double-book its user. It is a decision point, not a hard failure:
// callers may retry with force-override after confirmation.
type ConflictError struct {
	// Seq is the 1-based position of the conflicting occurrence.
	Seq        int
	Occurrence time.Time
	Existing   Booking
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("occurrence %d at %s conflicts with booking %q (%s - %s)",
		e.Seq, e.Occurrence.Format(time.RFC3339), e.Existing.Title,
		e.Existing.Start.Format(time.RFC3339), e.Existing.End.Format(time.RFC3339))
}

// Series is a persisted grouping of appointments generated from one rule
// at one point in time.
type Series struct {
	ID              string
	UserID          string
	Rule            recurrence.Rule
	FirstOccurrence time.Time
	DurationMinutes int
	InstanceCount   int
	CreatedAt       time.Time
}

// Plan is the write set a materialized series resolves to. It is returned
// instead of executed so the core stays free of storage concerns; the
// service layer turns it into actual inserts.
type Plan struct {
	Occurrences []time.Time
	Series      Series
	Instances   []InstanceRequest

	// ReplaceSeriesID, when set, instructs the executor to soft-delete
	// every appointment tagged with that series before creating the new
	// instances. Series edits are replace-in-place, not diffed.
	ReplaceSeriesID string
}

// InstanceRequest is one appointment creation request within a plan.
type InstanceRequest struct {
	SeriesID string
	Seq      int // 1-based position within the series
	UserID   string
	Title    string
	Start    time.Time
	End      time.Time
}
