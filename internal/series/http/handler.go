package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/appventus/appointment-backend/internal/auth"
	"github.com/appventus/appointment-backend/internal/pkg/request"
	"github.com/appventus/appointment-backend/internal/pkg/response"
	"github.com/appventus/appointment-backend/internal/series"
	"github.com/appventus/appointment-backend/internal/user"
)

type Handler struct {
	service     series.Service
	userService user.Service
}

func NewHandler(service series.Service, userService user.Service) *Handler {
	return &Handler{
		service:     service,
		userService: userService,
	}
}

// checkIsAdmin helper checks if the current user is an admin.
func (h *Handler) checkIsAdmin(c *gin.Context, userID string) bool {
	u, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		return false
	}
	return u.IsAdmin
}

func (h *Handler) bindInput(c *gin.Context) (series.CreateInput, bool) {
	var body CreateSeriesBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return series.CreateInput{}, false
	}

	userID := auth.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return series.CreateInput{}, false
	}

	return series.CreateInput{
		UserID:          userID,
		Title:           body.Title,
		Rule:            body.Rule.ToRule(),
		Start:           body.StartTime,
		DurationMinutes: body.DurationMinutes,
		StatusID:        body.StatusID,
		Force:           body.Force,
	}, true
}

// writeSeriesError maps series error variants to HTTP responses. A
// conflict is a 409 carrying the colliding booking so the client can
// offer an override confirmation.
func writeSeriesError(c *gin.Context, err error) {
	var conflict *series.ConflictError
	switch {
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":    "time slot already booked",
			"conflict": NewConflictResponse(conflict),
		})
	case errors.Is(err, series.ErrInvalidRule):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, series.ErrNoOccurrences):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "rule yields no occurrences"})
	case errors.Is(err, series.ErrLookupFailed):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "could not check for conflicts, try again"})
	default:
		response.Error(c, err)
	}
}

// Preview expands a rule without saving anything.
func (h *Handler) Preview(c *gin.Context) {
	in, ok := h.bindInput(c)
	if !ok {
		return
	}

	result, err := h.service.Preview(c.Request.Context(), in)
	if err != nil {
		writeSeriesError(c, err)
		return
	}

	resp := PreviewResponse{Occurrences: result.Occurrences}
	if result.Conflict != nil {
		conflict := NewConflictResponse(result.Conflict)
		resp.Conflict = &conflict
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Create(c *gin.Context) {
	in, ok := h.bindInput(c)
	if !ok {
		return
	}

	s, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		writeSeriesError(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewSeriesResponse(s))
}

// Replace swaps out every instance of an existing series for a freshly
// expanded set.
func (h *Handler) Replace(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	in, ok := h.bindInput(c)
	if !ok {
		return
	}

	existing, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if existing.UserID != in.UserID && !h.checkIsAdmin(c, in.UserID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return
	}

	s, err := h.service.Replace(c.Request.Context(), uri.ID, in)
	if err != nil {
		writeSeriesError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewSeriesResponse(s))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	s, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	userID := auth.GetUserID(c)
	if s.UserID != userID && !h.checkIsAdmin(c, userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return
	}

	c.JSON(http.StatusOK, NewSeriesResponse(s))
}

func (h *Handler) List(c *gin.Context) {
	userID := auth.GetUserID(c)

	// Admins may inspect another user's series.
	if target := c.Query("user_id"); target != "" && target != userID {
		if !h.checkIsAdmin(c, userID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
			return
		}
		userID = target
	}

	list, err := h.service.ListForUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]SeriesResponse, len(list))
	for i, s := range list {
		items[i] = NewSeriesResponse(s)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	s, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	userID := auth.GetUserID(c)
	if s.UserID != userID && !h.checkIsAdmin(c, userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), uri.ID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
