package status

import (
	"net/http"
	"time"

	"github.com/appventus/appointment-backend/internal/pkg/apperror"
)

var (
	ErrNotFound     = apperror.New(http.StatusNotFound, "status not found")
	ErrNameRequired = apperror.New(http.StatusBadRequest, "status name is required")
	ErrInUse        = apperror.New(http.StatusConflict, "status is referenced by appointments")
)

// Status is one entry of the admin-managed appointment status catalog
// (e.g. "requested", "confirmed", "done").
type Status struct {
	ID        string
	Name      string
	Color     string // hex color used by clients for badges
	SortOrder int
	CreatedAt time.Time
}

// Filter defines parameters for listing statuses.
type Filter struct {
	Page     int
	PageSize int
}
