package series

import (
	"context"
	"fmt"
	"time"

	"github.com/appventus/appointment-backend/internal/recurrence"
)

// BookingLookup fetches the existing bookings of a user that could
// intersect the given window. Implementations may return a superset
// (including deleted entries); exact overlap filtering happens locally.
type BookingLookup interface {
	BookingsForUser(ctx context.Context, userID string, from, to time.Time) ([]Booking, error)
}

// Resolver checks candidate intervals against a user's existing bookings.
// It is read-only and safe for concurrent use.
type Resolver struct {
	lookup BookingLookup
}

func NewResolver(lookup BookingLookup) *Resolver {
	return &Resolver{lookup: lookup}
}

// FindCollision returns the earliest-starting existing booking that
// overlaps [start, end) for the user, or nil if the slot is free.
// excludeID skips one booking, used when editing a booking so it does
// not collide with itself; excludeSeriesID skips a whole series, used
// when a replacement plan is checked while the old instances still
// exist. A failed lookup is returned as an error wrapping
// ErrLookupFailed, never as "no collision".
func (r *Resolver) FindCollision(ctx context.Context, userID string, start, end time.Time, excludeID, excludeSeriesID string) (*Booking, error) {
	candidates, err := r.lookup.BookingsForUser(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}

	var hit *Booking
	for i := range candidates {
		b := candidates[i]
		if b.Deleted || b.ID == excludeID {
			continue
		}
		if excludeSeriesID != "" && b.SeriesID == excludeSeriesID {
			continue
		}
		if !recurrence.Overlaps(start, end, b.Start, b.End) {
			continue
		}
		// Deterministic result: earliest start wins, not storage order.
		if hit == nil || b.Start.Before(hit.Start) {
			hit = &b
		}
	}
	return hit, nil
}

// FindFirstCollision checks each occurrence start in order, using the
// shared duration to form the candidate interval, and returns the first
// conflict found. It short-circuits: occurrences after the first hit are
// never looked up, so the cost is bounded by the distance to the first
// conflict.
func (r *Resolver) FindFirstCollision(ctx context.Context, userID string, starts []time.Time, duration time.Duration, excludeID, excludeSeriesID string) (*ConflictError, error) {
	for i, start := range starts {
		hit, err := r.FindCollision(ctx, userID, start, start.Add(duration), excludeID, excludeSeriesID)
		if err != nil {
			return nil, err
		}
		if hit != nil {
			return &ConflictError{
				Seq:        i + 1,
				Occurrence: start,
				Existing:   *hit,
			}, nil
		}
	}
	return nil, nil
}
