package appointment

import (
	"net/http"
	"time"

	"github.com/appventus/appointment-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "appointment not found")
	ErrInvalidTimeRange = apperror.New(http.StatusBadRequest, "start time must be before end time")
	ErrTitleRequired    = apperror.New(http.StatusBadRequest, "title is required")
	ErrPermissionDenied = apperror.New(http.StatusForbidden, "permission denied")
)

// Appointment is one concrete booking of a user's time. Instances that
// belong to a recurring series carry the series tag and their 1-based
// position within it.
type Appointment struct {
	ID          string
	UserID      string
	UserName    string
	Title       string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	StatusID    *string
	StatusName  *string
	SeriesID    *string
	SeriesSeq   int
	Deleted     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Filter struct {
	UserID   string
	StatusID string
	SeriesID string
	// StartTimeFrom/To select appointments intersecting the window.
	StartTimeFrom  *time.Time
	StartTimeTo    *time.Time
	IncludeDeleted bool

	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
