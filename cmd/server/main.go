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

	"citadel/internal/admin"
	"citadel/internal/platform/config"
	"citadel/internal/platform/httpserver"
	"citadel/internal/platform/logger"
	platformmetrics "citadel/internal/platform/metrics"
	platformredis "citadel/internal/platform/redis"
	"citadel/internal/review"
	reviewmetrics "citadel/internal/review/metrics"
	"citadel/internal/sample"
	"citadel/internal/verdict"
	verdictmetrics "citadel/internal/verdict/metrics"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal feature packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	collection, err := sample.Load(cfg.SamplePath)
	if err != nil {
		log.Error("cannot load review sample", "path", cfg.SamplePath, "error", err)
		os.Exit(1)
	}
	log.Info("review sample loaded", "path", cfg.SamplePath, "records", collection.Total())

	store, closeStore, err := buildVerdictStore(cfg)
	if err != nil {
		log.Error("cannot initialize verdict store", "backend", cfg.VerdictBackend, "error", err)
		os.Exit(1)
	}
	defer closeStore()
	if !store.Durable() {
		log.Warn("verdict storage is not durable; remind reviewers to export regularly")
	}

	sessions, closeSessions, sessionHealth, err := buildSessionStore(cfg)
	if err != nil {
		log.Error("cannot initialize session store", "backend", cfg.SessionBackend, "error", err)
		os.Exit(1)
	}
	defer closeSessions()

	httpMetrics := platformmetrics.New()

	verdicts := verdict.NewService(store, collection,
		verdict.WithLogger(log),
		verdict.WithMetrics(verdictmetrics.New()),
	)
	tokens := review.NewTokenService(cfg.JWTSigningKey, cfg.SessionTTL)
	reviews := review.NewService(sessions, verdicts, collection, tokens,
		review.WithLogger(log),
		review.WithMetrics(reviewmetrics.New()),
	)
	admins := admin.NewService(verdicts, collection.Total(), admin.WithLogger(log))

	router := chi.NewRouter()
	review.NewHandler(reviews, log, httpMetrics, tokens).Register(router)
	admin.NewHandler(admins, log, httpMetrics, cfg.AdminToken).Register(router)
	router.Get("/healthz", healthHandler(sessionHealth))
	router.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting citadel", "addr", cfg.Addr,
		"verdict_backend", cfg.VerdictBackend,
		"session_backend", cfg.SessionBackend,
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

func buildVerdictStore(cfg config.Server) (verdict.Store, func(), error) {
	switch cfg.VerdictBackend {
	case "sqlite":
		store, err := verdict.NewSQLiteStore(cfg.VerdictsDir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	case "postgres":
		store, err := verdict.NewPostgres(cfg.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	case "memory":
		return verdict.NewInMemoryStore(), func() {}, nil
	default:
		return nil, nil, errors.New("unknown verdict backend: " + cfg.VerdictBackend)
	}
}

func buildSessionStore(cfg config.Server) (review.SessionStore, func(), func(context.Context) error, error) {
	switch cfg.SessionBackend {
	case "redis":
		client, err := platformredis.New(cfg.Redis)
		if err != nil {
			return nil, nil, nil, err
		}
		if client == nil {
			return nil, nil, nil, errors.New("session backend is redis but CITADEL_REDIS_URL is empty")
		}
		store := review.NewRedisSessionStore(client.Client, cfg.SessionTTL)
		return store, func() { _ = client.Close() }, client.Health, nil
	case "memory":
		return review.NewInMemorySessionStore(), func() {}, nil, nil
	default:
		return nil, nil, nil, errors.New("unknown session backend: " + cfg.SessionBackend)
	}
}

// healthHandler reports liveness, and session-store health when the
// backend has a connection to check.
func healthHandler(check func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("session store unavailable"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
