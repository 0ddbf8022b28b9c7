package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fire-triage/backend/internal/config"
	"github.com/fire-triage/backend/internal/db"
	"github.com/fire-triage/backend/internal/geocode"
	httpapi "github.com/fire-triage/backend/internal/http"
	"github.com/fire-triage/backend/internal/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "triage-api").Logger()

	ctx := context.Background()
	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect db")
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}
	if err := store.SeedOffices(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed offices")
	}

	publisher, err := queue.NewClient(cfg.RedisURL, cfg.QueueName)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create queue client")
	}
	defer publisher.Close()

	resolver := &geocode.Resolver{
		Geocoder: &geocode.DGISGeocoder{
			BaseURL:     cfg.DGISURL,
			APIKey:      cfg.DGISKey,
			MinInterval: time.Second,
		},
		Offices:       store,
		MaxDistanceKm: cfg.MaxDistanceKm,
	}

	router := httpapi.Router(cfg, store, publisher, resolver, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
