package http

import (
	"time"

	"github.com/appventus/appointment-backend/internal/photo"
)

type PhotoResponse struct {
	ID            string    `json:"id"`
	AppointmentID string    `json:"appointment_id"`
	Filename      string    `json:"filename"`
	ContentType   string    `json:"content_type"`
	Size          int64     `json:"size"`
	URL           string    `json:"url"`
	ThumbnailURL  *string   `json:"thumbnail_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func NewPhotoResponse(p *photo.Photo) PhotoResponse {
	resp := PhotoResponse{
		ID:            p.ID,
		AppointmentID: p.AppointmentID,
		Filename:      p.Filename,
		ContentType:   p.ContentType,
		Size:          p.Size,
		URL:           photo.PhotoURL(p.ID),
		CreatedAt:     p.CreatedAt,
	}
	if p.ThumbnailPath != nil {
		t := photo.ThumbnailURL(p.ID)
		resp.ThumbnailURL = &t
	}
	return resp
}
