// Package health hosts the HTTP API of the converter: conversion, health
// probes, metrics and the chat websocket.
package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/Vodeneev/betcode/internal/pkg/chat"
	"github.com/Vodeneev/betcode/internal/pkg/config"
	"github.com/Vodeneev/betcode/internal/pkg/health/handlers"
	"github.com/Vodeneev/betcode/internal/pkg/metrics"
	"github.com/Vodeneev/betcode/internal/pkg/performance"
	"github.com/Vodeneev/betcode/internal/pkg/storage"
)

// Deps are the services exposed over HTTP. Audit may be nil.
type Deps struct {
	Converter handlers.Converter
	Hub       *chat.Hub
	Metrics   *metrics.ConverterMetrics
	Tracker   *performance.Tracker
	Audit     storage.AuditStorage
}

// NewRouter builds the API routes.
func NewRouter(cfg *config.ServerConfig, d Deps) http.Handler {
	if d.Audit == nil {
		d.Audit = storage.NopAuditStorage{}
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(handlers.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Websocket connections are long-lived and stay outside the request timeout.
	r.Get("/ws/chat", chat.ServeWS(d.Hub))

	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(cfg.RequestTimeout))

		r.Get("/ping", handlers.HandlePing)
		r.Get("/health", handlers.HandleHealth)
		r.Get("/api/health", handlers.HandleHealth)
		r.Handle("/metrics", promhttp.HandlerFor(d.Metrics.Registry(), promhttp.HandlerOpts{}))
		r.Get("/stats", handlers.HandleStats(d.Tracker))
		r.Get("/api/conversions", handlers.HandleRecentConversions(d.Audit))

		limiter := rate.NewLimiter(rate.Limit(cfg.ConvertRate), cfg.ConvertBurst)
		convert := handlers.RateLimit(limiter, d.Metrics.RecordRateLimited)(handlers.NewConvertHandler(d.Converter))
		r.Method(http.MethodPost, "/api/convert", convert)
		r.Method(http.MethodPost, "/convert", convert)
	})

	return r
}

// Run serves handler on addr until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, cfg *config.ServerConfig, service string, handler http.Handler) error {
	addr := AddrFor(cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "service", service, "addr", addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	slog.Info("HTTP server shutting down", "service", service)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		_ = srv.Close()
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func AddrFor(port int) string {
	return fmt.Sprintf(":%d", port)
}
