package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fire-triage/backend/internal/assign"
	"github.com/fire-triage/backend/internal/classify"
	"github.com/fire-triage/backend/internal/config"
	"github.com/fire-triage/backend/internal/db"
	"github.com/fire-triage/backend/internal/geocode"
	"github.com/fire-triage/backend/internal/pipeline"
	"github.com/fire-triage/backend/internal/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "triage-worker").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect db")
	}
	defer store.Close()

	var classifier classify.Classifier
	if cfg.OllamaURL == "" {
		logger.Warn().Msg("OLLAMA_URL is empty, using mock classifier")
		classifier = &classify.MockClassifier{}
	} else {
		classifier = &classify.OllamaClassifier{
			BaseURL: cfg.OllamaURL,
			Model:   cfg.OllamaModel,
		}
	}

	resolver := &geocode.Resolver{
		Geocoder: &geocode.DGISGeocoder{
			BaseURL:     cfg.DGISURL,
			APIKey:      cfg.DGISKey,
			MinInterval: time.Second,
		},
		Offices:       store,
		MaxDistanceKm: cfg.MaxDistanceKm,
	}

	processor := &pipeline.Processor{
		Store:      store,
		Classifier: classifier,
		Resolver:   resolver,
		Assigner: &assign.Engine{
			Store:  store,
			Logger: logger,
		},
		ClassifyTimeout: cfg.ClassifyTimeout,
		GeoTimeout:      cfg.GeoTimeout,
		Logger:          logger,
	}

	worker, err := queue.NewWorker(cfg.RedisURL, cfg.QueueName, cfg.WorkerConcurrency, processor, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create worker")
	}

	logger.Info().Str("queue", cfg.QueueName).Int("concurrency", cfg.WorkerConcurrency).Msg("worker started")
	if err := worker.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("worker stopped with error")
		os.Exit(1)
	}
	logger.Info().Msg("worker stopped")
}
