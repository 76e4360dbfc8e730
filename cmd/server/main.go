// Reelay - Short-Video Feed and Engagement Backend
// Copyright 2026 Arlo H. (arlo-hs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/arlo-hs/reelay

// Command server runs the Reelay backend: the personalized feed API, the
// interaction endpoints, and the in-process event pipeline behind them.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/arlo-hs/reelay/internal/api"
	"github.com/arlo-hs/reelay/internal/cache"
	"github.com/arlo-hs/reelay/internal/config"
	"github.com/arlo-hs/reelay/internal/content"
	"github.com/arlo-hs/reelay/internal/events"
	"github.com/arlo-hs/reelay/internal/feed"
	"github.com/arlo-hs/reelay/internal/interactions"
	"github.com/arlo-hs/reelay/internal/logging"
	"github.com/arlo-hs/reelay/internal/recommend"
	"github.com/arlo-hs/reelay/internal/supervisor"
)

// version is injected at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logging.Info().Str("version", version).Msg("Starting reelay server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ========================
	// Storage Connections
	// ========================
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("parse database dsn: %w", err)
	}
	poolCfg.MaxConns = cfg.Database.MaxConns

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("create database pool: %w", err)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	// ========================
	// Core Services
	// ========================
	batchCache := cache.NewRedisBatchCache(redisClient, cfg.Feed.BatchTTL)
	contentRepo := content.NewPostgresRepository(pool)

	provider := recommend.NewHTTPProvider(recommend.Config{
		BaseURL:          cfg.Recommender.BaseURL,
		Timeout:          cfg.Recommender.Timeout,
		FailureThreshold: cfg.Recommender.BreakerFailureThreshold,
		BreakerInterval:  cfg.Recommender.BreakerInterval,
		BreakerTimeout:   cfg.Recommender.BreakerTimeout,
	})

	orchestrator := feed.NewOrchestrator(batchCache, provider, contentRepo, cfg.Feed)

	// ========================
	// Event Pipeline
	// ========================
	bus := events.NewBus(cfg.Events.BufferSize, cfg.Events.SubscriberBuffer)
	if err := bus.Subscribe(events.NewSignalRecorder(events.NewPostgresSignalStore(pool))); err != nil {
		return fmt.Errorf("register signal recorder: %w", err)
	}
	if err := bus.Subscribe(events.NewNotificationNotifier(events.LogPushSender{}, contentRepo)); err != nil {
		return fmt.Errorf("register notification notifier: %w", err)
	}

	interactionSvc := interactions.NewService(interactions.NewPostgresStore(pool), bus)

	// ========================
	// HTTP Surface
	// ========================
	handler := api.NewHandler(orchestrator, interactionSvc, pool.Ping, batchCache.Ping, version)
	router := api.NewRouter(handler, cfg.Server)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  2 * cfg.Server.Timeout,
	}

	// ========================
	// Supervision
	// ========================
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddEventService(bus)
	tree.AddAPIService(supervisor.NewHTTPService(server, cfg.Server.ShutdownTimeout))

	logging.Info().
		Int("port", cfg.Server.Port).
		Str("recommender", cfg.Recommender.BaseURL).
		Msg("Reelay server ready")

	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor terminated: %w", err)
	}

	logging.Info().Msg("Server stopped")
	return nil
}
