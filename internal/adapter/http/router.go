package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/lrcollege/tipledger/internal/adapter/http/handler"
	"github.com/lrcollege/tipledger/internal/adapter/http/middleware"
	"github.com/lrcollege/tipledger/internal/infrastructure/metrics"
	"github.com/lrcollege/tipledger/internal/usecase"
)

// RouterConfig holds dependencies for the router. IdempotencyStore,
// Metrics, Gatherer and RateLimiter are optional.
type RouterConfig struct {
	TipHandler       *handler.TipHandler
	AccountHandler   *handler.AccountHandler
	LedgerHandler    *handler.LedgerHandler
	HealthHandler    *handler.HealthHandler
	TokenVerifier    middleware.TokenVerifier
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	Metrics          *metrics.Metrics
	Gatherer         prometheus.Gatherer
	RateLimiter      *middleware.RateLimiter
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.TokenVerifier, cfg.Metrics))

		// Keys are scoped per caller, so this runs after authentication.
		if cfg.IdempotencyStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL).Wrap)
		}

		r.Route("/tips", func(r chi.Router) {
			r.Post("/", cfg.TipHandler.Give)
			r.Get("/sent", cfg.TipHandler.Sent)
			r.Get("/received", cfg.TipHandler.Received)
			r.Get("/{id}", cfg.TipHandler.Get)
		})

		r.Get("/accounts/me", cfg.AccountHandler.Me)
		r.Get("/ledger/consistency", cfg.LedgerHandler.Consistency)
	})

	return r
}
