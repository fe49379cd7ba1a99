package http

import (
	"time"

	"github.com/appventus/appointment-backend/internal/status"
)

type StatusResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

func NewStatusResponse(st *status.Status) StatusResponse {
	return StatusResponse{
		ID:        st.ID,
		Name:      st.Name,
		Color:     st.Color,
		SortOrder: st.SortOrder,
		CreatedAt: st.CreatedAt,
	}
}

type CreateStatusBody struct {
	Name      string `json:"name" binding:"required,min=1,max=100"`
	Color     string `json:"color" binding:"omitempty,hexcolor"`
	SortOrder int    `json:"sort_order" binding:"omitempty,min=0"`
}

type UpdateStatusBody struct {
	Name      *string `json:"name" binding:"omitempty,min=1,max=100"`
	Color     *string `json:"color" binding:"omitempty,hexcolor"`
	SortOrder *int    `json:"sort_order" binding:"omitempty,min=0"`
}
