package http

import "github.com/gin-gonic/gin"

// RegisterRoutes registers photo routes.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	photos := g.Group("/photos")
	photos.Use(authMiddleware)
	{
		photos.GET("/:id", h.ServePhoto)
		photos.GET("/:id/thumbnail", h.ServeThumbnail)
		photos.DELETE("/:id", h.Delete)
	}

	appointments := g.Group("/appointments")
	appointments.Use(authMiddleware)
	{
		appointments.POST("/:id/photos", h.Upload)
		appointments.GET("/:id/photos", h.ListByAppointment)
		appointments.GET("/:id/photos/archive", h.DownloadArchive)
	}
}
