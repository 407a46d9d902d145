// Package main provides the API router setup.
package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/spherical-ai/spherical/libs/phone-advisor/cmd/phone-advisor-api/handlers"
	"github.com/spherical-ai/spherical/libs/phone-advisor/cmd/phone-advisor-api/middleware"
	"github.com/spherical-ai/spherical/libs/phone-advisor/internal/observability"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Advisor answers questions and drops cached answers on catalog reload.
type Advisor interface {
	handlers.Answerer
	handlers.CacheInvalidator
}

// AppConfig holds the dependencies and settings the router needs.
type AppConfig struct {
	DB             Pinger
	Catalog        handlers.CatalogIndex
	Advisor        Advisor
	RequestTimeout time.Duration
	AllowedOrigins []string
}

// NewRouter creates the main API router with all routes configured.
func NewRouter(logger *observability.Logger, cfg *AppConfig) http.Handler {
	r := chi.NewRouter()

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Trace)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(origins))
	r.Use(chimiddleware.Timeout(timeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"phone-advisor"}`))
	})

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := cfg.DB.PingContext(ctx); err != nil {
			logger.WithContext(r.Context()).Warn().Err(err).Msg("Readiness check failed")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.Write([]byte(`{"status":"ready"}`))
	})

	askHandler := handlers.NewAskHandler(logger, cfg.Advisor, cfg.Catalog)
	catalogHandler := handlers.NewCatalogHandler(logger, cfg.Catalog, cfg.Advisor)

	r.Get("/", handlers.Index)
	r.Post("/ask", askHandler.Ask)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/ask", askHandler.Ask)

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", catalogHandler.List)
			r.Post("/reload", catalogHandler.Reload)
		})
	})

	return r
}
