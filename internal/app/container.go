package app

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/appventus/appointment-backend/internal/api"
	"github.com/appventus/appointment-backend/internal/appointment"
	"github.com/appventus/appointment-backend/internal/auth"
	"github.com/appventus/appointment-backend/internal/photo"
	"github.com/appventus/appointment-backend/internal/pkg/storage"
	"github.com/appventus/appointment-backend/internal/series"
	"github.com/appventus/appointment-backend/internal/status"
	"github.com/appventus/appointment-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction         bool
	ProdOrigins          string
	DBPool               *pgxpool.Pool
	JWTSecret            string
	JWTTTL               time.Duration
	BcryptCost           int
	StoragePath          string
	MaxSeriesOccurrences int
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) (*Container, error) {
	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	localStorage, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to init local storage: %w", err)
	}

	// User Module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher)

	// Status Module
	statusRepo := status.NewPgxRepository(cfg.DBPool)
	statusService := status.NewService(statusRepo)

	// Collision resolution shared by single appointments and series.
	bookingLookup := series.NewPgxLookup(cfg.DBPool)
	resolver := series.NewResolver(bookingLookup)

	// Appointment Module
	appointmentRepo := appointment.NewPgxRepository(cfg.DBPool)
	appointmentService := appointment.NewService(appointmentRepo, resolver)

	// Series Module
	materializer := series.NewMaterializer(resolver)
	seriesRepo := series.NewPgxRepository(cfg.DBPool)
	seriesService := series.NewService(seriesRepo, materializer, cfg.MaxSeriesOccurrences)

	// Photo Module
	photoRepo := photo.NewPgxRepository(cfg.DBPool)
	photoService := photo.NewService(photoRepo, localStorage)

	// API Router Config
	routerParams := api.Config{
		IsProduction:       cfg.IsProduction,
		ProdOrigins:        cfg.ProdOrigins,
		UserService:        userService,
		AppointmentService: appointmentService,
		SeriesService:      seriesService,
		StatusService:      statusService,
		PhotoService:       photoService,
		JWTManager:         jwtManager,
	}

	// Router
	router := api.NewRouter(routerParams)

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
	}, nil
}
