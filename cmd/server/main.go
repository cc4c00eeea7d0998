package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oralvis/oralvis-api/internal/api"
	"github.com/oralvis/oralvis-api/internal/core/service"
	"github.com/oralvis/oralvis-api/internal/infrastructure/config"
	mongodb "github.com/oralvis/oralvis-api/internal/infrastructure/db/mongo"
	redisdb "github.com/oralvis/oralvis-api/internal/infrastructure/db/redis"
	"github.com/oralvis/oralvis-api/internal/infrastructure/storage"
	"github.com/oralvis/oralvis-api/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- MongoDB ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	userRepo := mongodb.NewUserRepository(db)
	scanRepo := mongodb.NewScanRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("user index creation failed")
	}
	if err := scanRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("scan index creation failed")
	}

	// --- Redis ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	// --- Object storage ---
	store, err := storage.New(ctx, storage.Config{
		Region:    cfg.Storage.Region,
		Bucket:    cfg.Storage.Bucket,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Endpoint:  cfg.Storage.Endpoint,
		BaseURL:   cfg.Storage.BaseURL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("object storage init failed")
	}

	// --- Development account seeding ---
	tokenService := service.NewTokenService(cfg.JWTSecret, 24*time.Hour)
	authService := service.NewAuthService(userRepo, tokenService, log)
	if err := authService.SeedDefaultUsers(ctx); err != nil {
		log.Fatal().Err(err).Msg("user seeding failed")
	}

	e := api.NewRouter(db, rdb, store, cfg.JWTSecret)

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
