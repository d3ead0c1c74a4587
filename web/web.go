// Package web provides the JSON API surface. Handlers decode and validate
// requests, delegate to the app services, and encode responses; every error
// leaves through the same envelope.
package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/pagecraft/pagecraft/adapters/metrics"
	"github.com/pagecraft/pagecraft/app"
)

// Handler provides the API endpoints.
type Handler struct {
	generate  *app.GenerateService
	usage     *app.UsageService
	limiter   *app.RateLimiter
	logger    zerolog.Logger
	metrics   *metrics.Collector
	version   string
	startTime time.Time
}

// Deps contains dependencies for the API handler.
type Deps struct {
	Generate *app.GenerateService
	Usage    *app.UsageService
	Limiter  *app.RateLimiter
	Logger   zerolog.Logger
	Metrics  *metrics.Collector // may be nil
	Version  string
}

// NewHandler creates a new API handler.
func NewHandler(deps Deps) *Handler {
	return &Handler{
		generate:  deps.Generate,
		usage:     deps.Usage,
		limiter:   deps.Limiter,
		logger:    deps.Logger.With().Str("component", "web").Logger(),
		metrics:   deps.Metrics,
		version:   deps.Version,
		startTime: time.Now(),
	}
}

// Router builds the HTTP routes. The IP rate limiter guards every /api
// route; health stays outside it so probes never get throttled.
func (h *Handler) Router(metricsHandler http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(h.requestLogger)

	r.Get("/health", h.Health)
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(h.rateLimit)

		r.Post("/generate-prompts", h.GeneratePrompts)
		r.Post("/generate-batch", h.GenerateBatch)
		r.Post("/remove-background", h.RemoveBackground)
		r.Post("/package-result", h.PackageResult)
		r.Get("/usage-status", h.UsageStatus)
	})

	return r
}
