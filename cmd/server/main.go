// TasteTrail feedrank - Personalized Review Feed Ranking Service
// Copyright 2026 TasteTrail
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastetrail/feedrank

// Package main is the entry point for the feedrank server.
//
// feedrank serves personalized review feeds for TasteTrail: candidate
// reviews are fetched from Postgres, already-seen content is excluded via
// a Redis-backed seen-set, and the remainder is scored and ranked by a
// weighted multi-signal algorithm before being paged back to the client.
//
// Startup order:
//
//  1. Configuration: layered defaults, config.yaml, FEEDRANK_* env (koanf)
//  2. Logging: global zerolog per the log section
//  3. Postgres: pgx connection pool for viewer context and candidates
//  4. Redis: seen-set store behind a circuit breaker
//  5. Ranking engine: injected stores and weight configuration
//  6. HTTP API: chi router under a suture supervision tree
//
// The server shuts down gracefully on SIGINT and SIGTERM, draining
// in-flight requests within server.shutdown_timeout.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/tastetrail/feedrank/internal/api"
	"github.com/tastetrail/feedrank/internal/config"
	"github.com/tastetrail/feedrank/internal/feed"
	"github.com/tastetrail/feedrank/internal/logging"
	"github.com/tastetrail/feedrank/internal/seenstore"
	"github.com/tastetrail/feedrank/internal/store"
	"github.com/tastetrail/feedrank/internal/supervisor"
	"github.com/tastetrail/feedrank/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Config errors surface through the default logger; the
		// configured one does not exist yet.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Caller: cfg.Log.Caller,
	})

	logging.Info().
		Str("addr", listenAddr(cfg)).
		Msg("Starting feedrank")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := store.Connect(ctx, cfg.Database.DSN)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to Postgres")
	}
	defer pool.Close()
	primary := store.New(pool, logging.WithComponent("store"))
	logging.Info().Msg("Connected to Postgres")

	var seen seenstore.Store
	var cachePing api.Pinger
	if cfg.SeenStore.Backend == "memory" {
		seen = seenstore.NewMemoryStore(cfg.SeenStoreClientConfig())
		logging.Info().Msg("Seen-set running in-process (memory backend)")
	} else {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() {
			if err := redisClient.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing Redis client")
			}
		}()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			// Seen-set is advisory; start anyway and let the breaker
			// manage it.
			logging.Warn().Err(err).Msg("Redis unreachable at startup, continuing")
		}

		seen, err = seenstore.NewRedisStore(redisClient, cfg.SeenStoreClientConfig(), logging.WithComponent("seenstore"))
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to create seen-set store")
		}
		cachePing = api.PingerFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	engine, err := feed.NewEngine(cfg.EngineConfig(), primary, primary, seen, logging.WithComponent("feed"))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create ranking engine")
	}

	handler := api.NewHandler(engine, seen, primary, cachePing, logging.WithComponent("api"))
	router := api.NewRouter(handler, api.RouterConfig{
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		RateLimitEnabled:   cfg.RateLimit.Enabled,
		RequestsPerMinute:  cfg.RateLimit.RequestsPerMinute,
	})

	server := &http.Server{
		Addr:         listenAddr(cfg),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Supervisor events flow through the zerolog-backed slog adapter.
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddAPIService(services.NewHTTPService(server, cfg.Server.ShutdownTimeout))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("feedrank stopped gracefully")
}

func listenAddr(cfg *config.Config) string {
	return fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
}
