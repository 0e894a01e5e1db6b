package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"assent/internal/mockapi/handler"
	"assent/internal/mockapi/store"
	"assent/internal/platform/config"
	"assent/internal/platform/health"
	"assent/internal/platform/httpserver"
	"assent/internal/platform/logger"
	"assent/internal/platform/metrics"
	"assent/internal/platform/middleware"
	"assent/internal/platform/privacy"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Endpoint logic lives in internal/mockapi.
func main() {
	config.LoadDotEnv()
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel, cfg.Env)

	log.Info("initializing consent-api",
		"addr", cfg.Addr,
		"env", cfg.Env,
		"api_key", privacy.RedactSecret(cfg.APIKey),
		"page_size", cfg.PageSize,
		"latency", cfg.Latency.String(),
		"throttle", cfg.Throttle,
	)

	m := metrics.New()

	st := store.New()
	if err := store.Seed(context.Background(), st, time.Now()); err != nil {
		log.Error("failed to seed consent store", "error", err)
		os.Exit(1)
	}

	consentHandler := handler.New(st, log, m, cfg.PageSize)

	healthHandler := health.New("consent-api", cfg.Env)
	healthHandler.RegisterCheck("catalog", func() error {
		purposes, err := st.ListPurposes(context.Background())
		if err != nil {
			return err
		}
		if len(purposes) == 0 {
			return errors.New("purpose catalog is empty")
		}
		return nil
	})

	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestClock)
	r.Use(middleware.ClientMetadata(cfg.TrustedProxies))
	r.Use(middleware.Logger(log))
	r.Use(middleware.Timeout(30 * time.Second))

	healthHandler.Register(r)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(handler.RequireAPIKey(cfg.APIKey, log, m))
		r.Use(handler.Throttle(cfg.Throttle, time.Minute, m))
		r.Use(handler.SimulateLatency(cfg.Latency))
		consentHandler.Register(r)
	})

	srv := httpserver.New(cfg.Addr, r)

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
