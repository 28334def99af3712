// Package httptransport assembles the HTTP surface: middleware chain,
// operational endpoints, and the versioned API.
package httptransport

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	compliancehandler "siteguard/internal/compliance/handler"
	"siteguard/internal/platform/metrics"
	"siteguard/internal/platform/middleware"
	platformredis "siteguard/internal/platform/redis"
	schemahandler "siteguard/internal/schema/handler"
	"siteguard/pkg/platform/httputil"
)

// Dependencies carries everything the router mounts. DB and Redis are
// optional; absent ones are skipped by the health check.
type Dependencies struct {
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
	Schema     *schemahandler.Handler
	Compliance *compliancehandler.Handler

	// ActorResolver turns requests into actors; nil leaves requests
	// anonymous and the API default-open.
	ActorResolver middleware.ActorResolver

	// AdminToken, when set, gates mutating API methods.
	AdminToken string

	DB    *sql.DB
	Redis *platformredis.Client
}

// NewRouter wires the middleware chain and mounts all endpoints.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Instrument(deps.Metrics))
	r.Use(middleware.Actor(deps.ActorResolver))

	r.Get("/healthz", healthHandler(deps))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if deps.AdminToken != "" {
			r.Use(middleware.RequireAdminTokenForWrites(deps.AdminToken, deps.Logger))
		}
		deps.Schema.Register(r)
		deps.Compliance.Register(r)
	})

	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: map[string]string{}}
		healthy := true

		if deps.DB != nil {
			if err := deps.DB.PingContext(ctx); err != nil {
				resp.Checks["postgres"] = err.Error()
				healthy = false
			} else {
				resp.Checks["postgres"] = "ok"
			}
		}
		if deps.Redis != nil {
			if err := deps.Redis.Health(ctx); err != nil {
				resp.Checks["redis"] = err.Error()
				healthy = false
			} else {
				resp.Checks["redis"] = "ok"
			}
		}

		status := http.StatusOK
		if !healthy {
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
		httputil.WriteJSON(w, status, resp)
	}
}
