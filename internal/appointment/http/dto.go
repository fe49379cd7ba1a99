package http

import (
	"time"

	"github.com/appventus/appointment-backend/internal/appointment"
)

type AppointmentResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	UserName    string    `json:"user_name"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	StatusID    *string   `json:"status_id,omitempty"`
	StatusName  *string   `json:"status_name,omitempty"`
	SeriesID    *string   `json:"series_id,omitempty"`
	SeriesSeq   int       `json:"series_seq,omitempty"`
	Deleted     bool      `json:"deleted"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewAppointmentResponse(a *appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:          a.ID,
		UserID:      a.UserID,
		UserName:    a.UserName,
		Title:       a.Title,
		Description: a.Description,
		StartTime:   a.StartTime,
		EndTime:     a.EndTime,
		StatusID:    a.StatusID,
		StatusName:  a.StatusName,
		SeriesID:    a.SeriesID,
		SeriesSeq:   a.SeriesSeq,
		Deleted:     a.Deleted,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

type CreateAppointmentBody struct {
	Title       string    `json:"title" binding:"required,min=1,max=200"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time" binding:"required"`
	EndTime     time.Time `json:"end_time" binding:"required"`
	StatusID    string    `json:"status_id" binding:"omitempty,uuid"`
	Force       bool      `json:"force"`
}

// Validate performs custom validation for CreateAppointmentBody.
func (r *CreateAppointmentBody) Validate() error {
	if !r.EndTime.After(r.StartTime) {
		return appointment.ErrInvalidTimeRange
	}
	return nil
}

type UpdateAppointmentBody struct {
	Title       *string    `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string    `json:"description"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	StatusID    *string    `json:"status_id" binding:"omitempty,uuid"`
	Force       bool       `json:"force"`
}

// Validate performs custom validation for UpdateAppointmentBody.
func (r *UpdateAppointmentBody) Validate() error {
	if r.StartTime != nil && r.EndTime != nil && !r.EndTime.After(*r.StartTime) {
		return appointment.ErrInvalidTimeRange
	}
	return nil
}
