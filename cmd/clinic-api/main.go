package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/cityhealth/clinic-api/docs"
	"github.com/cityhealth/clinic-api/internal/api"
	"github.com/cityhealth/clinic-api/internal/core/domain"
	"github.com/cityhealth/clinic-api/internal/core/service"
	"github.com/cityhealth/clinic-api/internal/infrastructure/config"
	mongodb "github.com/cityhealth/clinic-api/internal/infrastructure/db/mongo"
	redisdb "github.com/cityhealth/clinic-api/internal/infrastructure/db/redis"
	"github.com/cityhealth/clinic-api/internal/infrastructure/queue"
	"github.com/cityhealth/clinic-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	// The static authorization tables must be coherent before any traffic.
	if err := domain.ValidateRouteTables(); err != nil {
		log.Fatal().Err(err).Msg("invalid role route tables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		_ = rdb.Close()
	}()

	if err := mongodb.NewUserRepository(db).EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create user indexes")
	}
	if err := mongodb.NewEncounterRepository(db).EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create encounter indexes")
	}

	// Security event pipeline: best-effort persistence off the request path.
	securityRepo := mongodb.NewSecurityEventRepository(db)
	securityService := service.NewSecurityEventService(securityRepo, log)
	dispatcher := queue.NewDispatcher(0, securityService, log)
	dispatcher.Start(ctx)

	e, err := api.NewRouter(db, rdb, cfg, log, dispatcher)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build router")
	}

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("clinic API started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
