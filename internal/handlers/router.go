package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jwebster45206/survival-engine/internal/storage"
)

type RouterOptions struct {
	DefaultSpecies string
	NewSeed        func() uint64
	Timeout        time.Duration
}

// NewRouter wires every handler under chi with request logging, panic
// recovery and a per-request timeout.
func NewRouter(store storage.Storage, opts RouterOptions, logger *slog.Logger) http.Handler {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	sims := NewSimulators(store, logger)
	animals := NewAnimalHandler(store, sims, opts.DefaultSpecies, opts.NewSeed, logger)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(RequestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(opts.Timeout))

	router.Method(http.MethodGet, "/health", NewHealthHandler(store, logger))
	router.Route("/v1", func(r chi.Router) {
		r.Method(http.MethodGet, "/species", NewSpeciesHandler(store, logger))
		r.Route("/animals", animals.Routes)
	})
	return router
}

// RequestLogger logs one line per request through slog.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}
