// Package server assembles the HTTP router: auth routes, health check, and
// the metrics endpoint.
package server

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"corebank/backend/internal/auth/handler"
)

// Deps holds everything the router serves. DB and Redis may be nil (e.g. the
// in-memory development setup); the health check skips what is absent.
type Deps struct {
	Auth     *handler.AuthHandler
	Logger   *slog.Logger
	Registry *prometheus.Registry
	DB       *sql.DB
	Redis    *redis.Client
}

// NewRouter builds the chi router with logging, recovery, and client IP
// middleware applied to every route.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(clientIPMiddleware)
	r.Use(requestLogger(deps.Logger))

	r.Route("/auth", deps.Auth.Routes)
	r.Get("/healthz", healthz(deps))
	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}
	return r
}

// requestLogger logs one structured line per request. Bodies are never
// logged; they carry credentials.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
				"client_ip", ClientIP(r.Context()),
			)
		})
	}
}

func healthz(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if deps.DB != nil {
			if err := deps.DB.PingContext(ctx); err != nil {
				deps.Logger.Error("health: database unreachable", "error", err)
				http.Error(w, `{"status":"degraded","reason":"database"}`, http.StatusServiceUnavailable)
				return
			}
		}
		if deps.Redis != nil {
			if err := deps.Redis.Ping(ctx).Err(); err != nil {
				deps.Logger.Error("health: redis unreachable", "error", err)
				http.Error(w, `{"status":"degraded","reason":"redis"}`, http.StatusServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
