package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"unify/internal/audit"
	"unify/internal/platform/config"
	"unify/internal/platform/httpserver"
	"unify/internal/platform/logger"
	"unify/internal/platform/postgres"
	platformredis "unify/internal/platform/redis"
	"unify/internal/resolution"
	resolutionhandler "unify/internal/resolution/handler"
	resolutionmetrics "unify/internal/resolution/metrics"
	"unify/internal/review"
	reviewhandler "unify/internal/review/handler"
	"unify/internal/snapshot"
	snapshothandler "unify/internal/snapshot/handler"
	"unify/internal/source"
	sourcehandler "unify/internal/source/handler"
	"unify/internal/storage"
	httptransport "unify/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal feature
// packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store storage.Store
	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
		if err := storage.EnsureSchema(ctx, db); err != nil {
			log.Error("schema setup failed", "error", err)
			os.Exit(1)
		}
		store = storage.NewPostgresStore(db)
		log.Info("using postgres store")
	} else {
		store = storage.NewInMemoryStore()
		log.Warn("running on the in-memory store; data will not survive restarts")
	}

	if err := source.Seed(ctx, store); err != nil {
		log.Error("source seed failed", "error", err)
		os.Exit(1)
	}

	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var recorder *audit.Recorder
	if len(cfg.KafkaBrokers) > 0 {
		sink := audit.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer sink.Close()
		recorder = audit.NewRecorder(log, 256, sink)
		go func() { _ = recorder.Run(ctx) }()
		log.Info("decision events publishing to kafka", "topic", cfg.KafkaTopic)
	}

	resolutionService := resolution.NewService(store, resolution.Config{
		Policy: resolution.Policy{
			SimilarityThreshold:    cfg.Policy.SimilarityThreshold,
			TrustedSourceThreshold: cfg.Policy.TrustedSourceThreshold,
		},
		MaxCandidates:       cfg.Policy.MaxCandidates,
		AutoRegisterSources: cfg.Policy.AutoRegisterSources,
		DefaultSourceScore:  cfg.Policy.DefaultSourceScore,
	}, log, resolutionmetrics.New(), recorder)
	reviewService := review.NewService(store, log, recorder)
	snapshotService := snapshot.NewService(store,
		snapshot.NewCache(redisClient, cfg.SnapshotCacheTTL),
		snapshot.Config{PendingCriticalThreshold: cfg.Policy.PendingCriticalThreshold},
		log)
	sourceService := source.NewService(store, log)

	if cfg.SnapshotInterval > 0 {
		worker := snapshot.NewWorker(snapshotService, cfg.SnapshotInterval)
		go func() { _ = worker.Run(ctx) }()
	}

	checks := map[string]func(context.Context) error{}
	if db != nil {
		checks["postgres"] = db.PingContext
	}
	if redisClient != nil {
		checks["redis"] = redisClient.Health
	}

	router := httptransport.NewRouter(
		httptransport.NewHealthHandler(checks),
		resolutionhandler.New(resolutionService, log),
		reviewhandler.New(reviewService, log),
		snapshothandler.New(snapshotService, log),
		sourcehandler.New(sourceService, log),
	)

	srv := httpserver.New(cfg.Addr, router)
	log.Info("starting unify", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
