package photo

import (
	"net/http"
	"time"

	"github.com/appventus/appointment-backend/internal/pkg/apperror"
)

var (
	ErrNotFound    = apperror.New(http.StatusNotFound, "photo not found")
	ErrNotAnImage  = apperror.New(http.StatusBadRequest, "uploaded file is not an image")
	ErrTooLarge    = apperror.New(http.StatusRequestEntityTooLarge, "uploaded file is too large")
	ErrNoThumbnail = apperror.New(http.StatusNotFound, "thumbnail not available")
	ErrNoPhotos    = apperror.New(http.StatusNotFound, "appointment has no photos")
)

// Photo is an image attached to an appointment.
type Photo struct {
	ID            string    `json:"id"`
	AppointmentID string    `json:"appointment_id"`
	UploaderID    string    `json:"uploader_id"`
	Filename      string    `json:"filename"`
	StoragePath   string    `json:"-"` // Internal path
	ThumbnailPath *string   `json:"-"` // Internal path
	ContentType   string    `json:"content_type"`
	Size          int64     `json:"size"`
	CreatedAt     time.Time `json:"created_at"`
}

// PhotoURL returns the public URL for accessing a photo by its ID.
func PhotoURL(id string) string {
	return "/photos/" + id
}

// ThumbnailURL returns the public URL for accessing a photo's thumbnail by its ID.
func ThumbnailURL(id string) string {
	return "/photos/" + id + "/thumbnail"
}
