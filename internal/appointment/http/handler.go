package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/appventus/appointment-backend/internal/appointment"
	"github.com/appventus/appointment-backend/internal/auth"
	"github.com/appventus/appointment-backend/internal/pkg/request"
	"github.com/appventus/appointment-backend/internal/pkg/response"
	"github.com/appventus/appointment-backend/internal/series"
	seriesHttp "github.com/appventus/appointment-backend/internal/series/http"
	"github.com/appventus/appointment-backend/internal/user"
)

type Handler struct {
	service     appointment.Service
	userService user.Service
}

func NewHandler(service appointment.Service, userService user.Service) *Handler {
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

// writeError maps service errors, turning a collision into a 409 with
// the conflicting appointment attached.
func writeError(c *gin.Context, err error) {
	var conflict *series.ConflictError
	if errors.As(err, &conflict) {
		c.JSON(http.StatusConflict, gin.H{
			"error":    "time slot already booked",
			"conflict": seriesHttp.NewConflictResponse(conflict),
		})
		return
	}
	if errors.Is(err, series.ErrLookupFailed) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "could not check for conflicts, try again"})
		return
	}
	response.Error(c, err)
}

func (h *Handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	var from, to *time.Time
	if v := c.Query("start_time_from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			from = &t
		}
	}
	if v := c.Query("start_time_to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			to = &t
		}
	}

	currentUserID := auth.GetUserID(c)
	isAdmin := h.checkIsAdmin(c, currentUserID)

	filterUserID := currentUserID
	if isAdmin {
		// Admins see everything, or one chosen user.
		filterUserID = c.Query("user_id")
	}

	filter := appointment.Filter{
		UserID:         filterUserID,
		StatusID:       c.Query("status_id"),
		SeriesID:       c.Query("series_id"),
		StartTimeFrom:  from,
		StartTimeTo:    to,
		IncludeDeleted: isAdmin && c.Query("include_deleted") == "true",
		Page:           page,
		PageSize:       pageSize,
		SortBy:         c.Query("sort_by"),
		SortOrder:      c.Query("sort_order"),
	}

	appointments, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]AppointmentResponse, len(appointments))
	for i, a := range appointments {
		items[i] = NewAppointmentResponse(a)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, page, pageSize, total))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateAppointmentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if err := body.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	userID := auth.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	req := appointment.CreateRequest{
		UserID:      userID,
		Title:       body.Title,
		Description: body.Description,
		StartTime:   body.StartTime,
		EndTime:     body.EndTime,
		StatusID:    body.StatusID,
		Force:       body.Force,
	}

	a, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewAppointmentResponse(a))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	a, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	userID := auth.GetUserID(c)
	if a.UserID != userID && !h.checkIsAdmin(c, userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return
	}

	c.JSON(http.StatusOK, NewAppointmentResponse(a))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	var body UpdateAppointmentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if err := body.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	userID := auth.GetUserID(c)
	isAdmin := h.checkIsAdmin(c, userID)

	req := appointment.UpdateRequest{
		Title:       body.Title,
		Description: body.Description,
		StartTime:   body.StartTime,
		EndTime:     body.EndTime,
		StatusID:    body.StatusID,
		Force:       body.Force,
	}

	a, err := h.service.Update(c.Request.Context(), uri.ID, req, userID, isAdmin)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewAppointmentResponse(a))
}

func (h *Handler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	userID := auth.GetUserID(c)
	isAdmin := h.checkIsAdmin(c, userID)

	if err := h.service.Delete(c.Request.Context(), uri.ID, userID, isAdmin); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
