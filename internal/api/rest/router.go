package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nodeorb/scm-risk-engine/internal/metrics"
)

// HealthCheck probes one dependency
type HealthCheck func(ctx context.Context) error

// Config configures the API router
type Config struct {
	Logger         *zap.Logger
	Registry       *metrics.Registry
	PromRegisterer prometheus.Registerer
	PromGatherer   prometheus.Gatherer
	HealthChecks   map[string]HealthCheck
	HealthTimeout  time.Duration
	// RateLimiter is applied to every validator route when set; the caller runs its sweeper
	RateLimiter *RateLimiter
}

// NewRouter wires every validator endpoint behind the middleware chain
func NewRouter(cfg Config, services Services) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.PromRegisterer == nil {
		cfg.PromRegisterer = prometheus.DefaultRegisterer
	}
	if cfg.PromGatherer == nil {
		cfg.PromGatherer = prometheus.DefaultGatherer
	}
	if cfg.HealthTimeout <= 0 {
		cfg.HealthTimeout = 2 * time.Second
	}

	h := NewHandler(services, cfg.Logger)
	httpm := newHTTPMetrics(cfg.PromRegisterer)

	mux := http.NewServeMux()
	route := func(pattern string, fn http.HandlerFunc) {
		middlewares := []Middleware{
			RequestIDMiddleware(),
			RequestLoggingMiddleware(cfg.Logger),
			TracingMiddleware(pattern),
			MetricsMiddleware(httpm, cfg.Registry, pattern),
		}
		if cfg.RateLimiter != nil {
			middlewares = append(middlewares, cfg.RateLimiter.Middleware())
		}
		mux.Handle(pattern, NewMiddlewareChain(middlewares...).Then(fn))
	}

	route("POST /v1/geofence/validate", h.handle(h.validateGeofence))
	route("POST /v1/geofence/route", h.handle(h.validateRoute))
	route("POST /v1/geofence/spoofing", h.handle(h.geofenceSpoofing))

	route("POST /v1/access/cargo", h.handle(h.cargoAccess))
	route("POST /v1/access/spoofing", h.handle(h.accessSpoofing))
	route("POST /v1/access/sensitive-data", h.handle(h.sensitiveData))

	route("POST /v1/hos/validate", h.handle(h.hoursOfService))
	route("POST /v1/hos/shift-eligibility", h.handle(h.shiftEligibility))
	route("POST /v1/hos/fatigue", h.handle(h.fatigue))

	route("GET /v1/sanctions/users/{id}", h.handle(h.userSanctions))
	route("GET /v1/sanctions/companies/{id}", h.handle(h.companySanctions))
	route("GET /v1/sanctions/countries/{code}", h.handle(h.countrySanctions))
	route("GET /v1/sanctions/counterparties/{type}/{id}", h.handle(h.counterpartySanctions))

	route("POST /v1/conflicts/check", h.handle(h.conflictCheck))

	route("POST /v1/pricing/validate", h.handle(h.validatePrice))
	route("PUT /v1/pricing/entries/{id}/appeal", h.handle(h.updateAppeal))

	mux.Handle("GET /healthz", healthHandler(cfg.HealthChecks, cfg.HealthTimeout))
	mux.Handle("GET /metrics", promhttp.HandlerFor(cfg.PromGatherer, promhttp.HandlerOpts{}))

	return RecoveryMiddleware(cfg.Logger)(mux)
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck, timeout time.Duration) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
		status := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		writeJSON(w, status, resp)
	})
}
