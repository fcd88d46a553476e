package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ashureev/taskboard/internal/api"
	"github.com/ashureev/taskboard/internal/config"
	"github.com/ashureev/taskboard/internal/gateway"
	"github.com/ashureev/taskboard/web"
)

// newRouter wires every HTTP surface of the server.
func newRouter(cfg *config.Config, reg *prometheus.Registry, logger *slog.Logger) (http.Handler, error) {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))

	api.NewHealthHandler(cfg).RegisterHealth(r)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	fwd := gateway.NewForwarder(cfg.UpstreamURL, cfg.GatewayPrefix,
		gateway.WithTimeout(cfg.UpstreamTimeout),
		gateway.WithMetrics(gateway.NewMetrics(reg)),
		gateway.WithLogger(logger),
	)
	fwd.RegisterRoutes(r)

	// Dev-time forwarding rule; the gateway prefix is more specific and wins.
	if cfg.DevProxy {
		proxy, err := gateway.NewDevProxy(cfg.UpstreamURL, logger)
		if err != nil {
			return nil, fmt.Errorf("create dev proxy: %w", err)
		}
		r.Handle("/api/*", proxy)
		logger.Info("Dev proxy enabled", "target", cfg.UpstreamURL)
	}

	// Serve embedded frontend (SPA catch-all).
	r.Handle("/*", web.SPAHandler())

	return r, nil
}
