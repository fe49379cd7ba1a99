package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/appventus/appointment-backend/internal/appointment"
	appointmentHttp "github.com/appventus/appointment-backend/internal/appointment/http"
	"github.com/appventus/appointment-backend/internal/auth"
	"github.com/appventus/appointment-backend/internal/photo"
	photoHttp "github.com/appventus/appointment-backend/internal/photo/http"
	"github.com/appventus/appointment-backend/internal/series"
	seriesHttp "github.com/appventus/appointment-backend/internal/series/http"
	"github.com/appventus/appointment-backend/internal/status"
	statusHttp "github.com/appventus/appointment-backend/internal/status/http"
	"github.com/appventus/appointment-backend/internal/user"
	userHttp "github.com/appventus/appointment-backend/internal/user/http"
)

// Config holds the services and settings the router needs.
type Config struct {
	IsProduction bool
	ProdOrigins  string

	UserService        user.Service
	AppointmentService appointment.Service
	SeriesService      series.Service
	StatusService      status.Service
	PhotoService       photo.Service

	JWTManager *auth.JWTManager
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	r := gin.New()

	// Global Middleware:
	// - Logger: Logs request information to the console.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(gin.Logger(), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction && cfg.ProdOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(cfg.ProdOrigins, ",")
	} else {
		corsConfig.AllowOrigins = []string{
			"http://localhost:8081", // Swagger
		}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	// adminMiddleware: Further checks if the authenticated user has admin privileges.
	adminMiddleware := RequireAdmin(cfg.UserService)

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	appointmentHandler := appointmentHttp.NewHandler(cfg.AppointmentService, cfg.UserService)
	seriesHandler := seriesHttp.NewHandler(cfg.SeriesService, cfg.UserService)
	statusHandler := statusHttp.NewHandler(cfg.StatusService)
	photoHandler := photoHttp.NewHandler(cfg.PhotoService, cfg.AppointmentService, cfg.UserService)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware, adminMiddleware)
		appointmentHttp.RegisterRoutes(v1, appointmentHandler, authMiddleware)
		seriesHttp.RegisterRoutes(v1, seriesHandler, authMiddleware)
		statusHttp.RegisterRoutes(v1, statusHandler, authMiddleware, adminMiddleware)
		photoHttp.RegisterRoutes(v1, photoHandler, authMiddleware)
	}

	return r
}
