package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/appventus/appointment-backend/internal/appointment"
	"github.com/appventus/appointment-backend/internal/auth"
	"github.com/appventus/appointment-backend/internal/photo"
	"github.com/appventus/appointment-backend/internal/pkg/request"
	"github.com/appventus/appointment-backend/internal/pkg/response"
	"github.com/appventus/appointment-backend/internal/user"
)

// maxPhotoSizeBytes caps a single upload.
const maxPhotoSizeBytes = 20 << 20 // 20 MiB

type Handler struct {
	service     photo.Service
	apptService appointment.Service
	userService user.Service
}

func NewHandler(service photo.Service, apptService appointment.Service, userService user.Service) *Handler {
	return &Handler{
		service:     service,
		apptService: apptService,
		userService: userService,
	}
}

// canAccessAppointment checks the caller owns the appointment or is an admin.
func (h *Handler) canAccessAppointment(c *gin.Context, appointmentID string) bool {
	userID := auth.GetUserID(c)
	a, err := h.apptService.GetByID(c.Request.Context(), appointmentID)
	if err != nil {
		return false
	}
	if a.UserID == userID {
		return true
	}
	u, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		return false
	}
	return u.IsAdmin
}

// Upload attaches a photo to an appointment.
// POST /appointments/:id/photos
func (h *Handler) Upload(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	if !h.canAccessAppointment(c, uri.ID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo is required"})
		return
	}

	p, err := h.service.Upload(c.Request.Context(), photo.UploadInput{
		FileHeader:    fileHeader,
		AppointmentID: uri.ID,
		UploaderID:    auth.GetUserID(c),
		MaxSizeBytes:  maxPhotoSizeBytes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewPhotoResponse(p))
}

// ListByAppointment lists the photos of an appointment.
// GET /appointments/:id/photos
func (h *Handler) ListByAppointment(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	if !h.canAccessAppointment(c, uri.ID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return
	}

	photos, err := h.service.ListByAppointment(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]PhotoResponse, len(photos))
	for i, p := range photos {
		items[i] = NewPhotoResponse(p)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// DownloadArchive streams all photos of an appointment as one ZIP.
// GET /appointments/:id/photos/archive
func (h *Handler) DownloadArchive(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	if !h.canAccessAppointment(c, uri.ID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return
	}

	archive, err := h.service.ZipArchive(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", "attachment; filename=\"photos_"+uri.ID+".zip\"")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, archive); err != nil {
		// Response already started, nothing sensible left to do.
		return
	}
}

// ServePhoto serves the photo content by ID.
// GET /photos/:id
func (h *Handler) ServePhoto(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	stream, p, err := h.service.Download(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer stream.Close()

	if !h.canAccessAppointment(c, p.AppointmentID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return
	}

	c.Header("Content-Type", p.ContentType)
	c.Header("Content-Disposition", "inline; filename=\""+p.Filename+"\"")

	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, stream); err != nil {
		return
	}
}

// ServeThumbnail serves the thumbnail image by photo ID.
// GET /photos/:id/thumbnail
func (h *Handler) ServeThumbnail(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	stream, p, err := h.service.DownloadThumbnail(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer stream.Close()

	if !h.canAccessAppointment(c, p.AppointmentID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return
	}

	// Thumbnails are always JPEG.
	c.Header("Content-Type", "image/jpeg")
	c.Header("Content-Disposition", "inline; filename=\""+p.Filename+"_thumb.jpg\"")

	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, stream); err != nil {
		return
	}
}

// Delete removes a photo.
// DELETE /photos/:id
func (h *Handler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	p, err := h.service.Get(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	if !h.canAccessAppointment(c, p.AppointmentID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), uri.ID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
