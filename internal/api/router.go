package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/oralvis/oralvis-api/internal/api/handler"
	"github.com/oralvis/oralvis-api/internal/api/middleware"
	"github.com/oralvis/oralvis-api/internal/core/domain"
	"github.com/oralvis/oralvis-api/internal/core/ports"
	"github.com/oralvis/oralvis-api/internal/core/service"
	mongodb "github.com/oralvis/oralvis-api/internal/infrastructure/db/mongo"
	redisdb "github.com/oralvis/oralvis-api/internal/infrastructure/db/redis"
	"github.com/oralvis/oralvis-api/pkg/logger"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, storage ports.ObjectStorage, jwtSecret string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(logger.Get())

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("oralvis"))

	// --- Dependencies ---
	log := logger.Get()
	userRepo := mongodb.NewUserRepository(db)
	scanRepo := mongodb.NewScanRepository(db)
	statsCache := redisdb.NewStatsCache(rdb)

	tokenService := service.NewTokenService(jwtSecret, 24*time.Hour)
	authService := service.NewAuthService(userRepo, tokenService, log)
	scanService := service.NewScanService(scanRepo, userRepo, statsCache, log)
	uploadService := service.NewUploadService(scanService, storage, log)

	authHandler := handler.NewAuthHandler(authService, tokenService)
	scanHandler := handler.NewScanHandler(scanService)
	uploadHandler := handler.NewUploadHandler(uploadService, scanService)

	authed := middleware.Auth(tokenService)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/verify-token", authHandler.VerifyToken)

	// --- Technician routes ---
	upload := e.Group("/upload", authed, middleware.RBAC(domain.RoleTechnician))
	upload.POST("/", uploadHandler.Upload)
	upload.GET("/history", uploadHandler.History)

	// --- Dentist routes ---
	scans := e.Group("/scans", authed, middleware.RBAC(domain.RoleDentist))
	scans.GET("/", scanHandler.List)
	scans.GET("/stats", scanHandler.Stats)
	scans.GET("/search", scanHandler.Search)
	scans.GET("/patient/:patientId", scanHandler.GetByPatient)
	scans.GET("/:id", scanHandler.Get)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
