// Package main provides the API router setup.
package main

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/dialogueforge/dialogueforge/cmd/dialogueforge-api/handlers"
	"github.com/dialogueforge/dialogueforge/cmd/dialogueforge-api/middleware"
	"github.com/dialogueforge/dialogueforge/internal/cache"
	"github.com/dialogueforge/dialogueforge/internal/chunk"
	"github.com/dialogueforge/dialogueforge/internal/config"
	"github.com/dialogueforge/dialogueforge/internal/dialogue"
	"github.com/dialogueforge/dialogueforge/internal/extract"
	"github.com/dialogueforge/dialogueforge/internal/observability"
	"github.com/dialogueforge/dialogueforge/internal/pipeline"
	"github.com/dialogueforge/dialogueforge/internal/storage"
)

// NewRouter creates the main API router with all routes configured. The
// returned cleanup closes the database and cache connections.
func NewRouter(logger *observability.Logger, cfg *config.Config) (http.Handler, func(), error) {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimiddleware.Timeout(cfg.Pipeline.Timeout))

	// Health check (unauthenticated)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"dialogueforge"}`))
	})

	// Create service dependencies
	var cacheClient cache.Client
	var err error
	switch cfg.Cache.Driver {
	case "redis":
		cacheClient, err = cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			PoolSize: cfg.Cache.Redis.PoolSize,
		})
		if err != nil {
			return nil, nil, err
		}
	default:
		cacheClient = cache.NewMemoryClient(cfg.Cache.MaxEntries)
	}

	var dsn string
	switch cfg.Database.Driver {
	case "postgres":
		dsn = cfg.Database.Postgres.DSN
	default:
		dsn = cfg.Database.SQLite.Path
	}
	db, err := storage.Open(cfg.Database.Driver, dsn)
	if err != nil {
		cacheClient.Close()
		return nil, nil, err
	}
	if err := storage.Migrate(context.Background(), db); err != nil {
		db.Close()
		cacheClient.Close()
		return nil, nil, err
	}

	var completionClient dialogue.CompletionClient
	if cfg.Generation.APIKey != "" {
		completionClient = dialogue.NewOpenAIClient(dialogue.ClientConfig{
			APIKey:     cfg.Generation.APIKey,
			BaseURL:    cfg.Generation.BaseURL,
			Timeout:    cfg.Generation.Timeout,
			MaxRetries: cfg.Generation.MaxRetries,
		})
	} else {
		logger.Warn().Msg("No API key configured, serving demo content")
	}

	generator := dialogue.NewGenerator(completionClient, logger,
		dialogue.WithCache(cacheClient, cfg.Cache.TTL))

	p := pipeline.New(extract.New(logger), chunk.New(), generator, logger)

	// Initialize handlers
	conversionHandler := handlers.NewConversionHandler(logger, p, db, cfg)
	sessionHandler := handlers.NewSessionHandler(logger, db)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/conversions", conversionHandler.Convert)
		r.Post("/extractions", conversionHandler.Extract)

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", sessionHandler.List)
			r.Get("/{sessionID}", sessionHandler.Get)
			r.Delete("/{sessionID}", sessionHandler.Delete)
			r.Get("/{sessionID}/export", sessionHandler.Export)
		})
	})

	cleanup := func() {
		db.Close()
		cacheClient.Close()
	}
	return r, cleanup, nil
}
