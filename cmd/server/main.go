// Package main is the entry point for the szafa API server.
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

	"szafa/internal/app"
	"szafa/internal/config"
	"szafa/internal/domain/pending"
	v1 "szafa/internal/infrastructure/http/v1"
	"szafa/internal/infrastructure/lock"
	"szafa/internal/infrastructure/numerator"
	"szafa/internal/infrastructure/storage/postgres"
	"szafa/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := logger.WithLogger(context.Background(), log)
	log.Info("starting szafa server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = cfg.DBMaxConns
	poolCfg.MinConns = cfg.DBMinConns

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txm := postgres.NewTxManager(pool)
	txm.SetStatementTimeout(cfg.DBStatementTimeout)

	if cfg.MigrateOnStart {
		res, err := postgres.Migrate(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalw("failed to apply migrations", "error", err)
		}
		log.Infow("migrations checked", "version", res.To, "changed", res.Changed)
	}

	// --- Numbering ---
	var locker numerator.Locker
	if cfg.RedisAddr != "" {
		rdb, err := lock.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			log.Warnw("redis unavailable, numbering uses advisory locks only", "addr", cfg.RedisAddr, "error", err)
		} else {
			defer func() { _ = rdb.Close() }()
			locker = lock.NewRedisLocker(rdb, cfg.NumberingLockTTL, 0)
			log.Infow("numbering lock enabled", "addr", cfg.RedisAddr)
		}
	}
	numbers := numerator.New(txm, locker)

	// --- Services ---
	services := app.NewServices(app.PostgresStorage(txm, numbers), app.Settings{
		Pending: pending.Config{
			RecipientName:   cfg.PendingRecipient,
			DefaultCategory: cfg.PendingDefaultCategory,
		},
		RelinkBatchSize: cfg.RelinkBatchSize,
	})

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Services:         services,
		DB:               pool,
		Logger:           log,
		NumberingRetries: cfg.NumberingRetries,
		Debug:            cfg.IsDevelopment(),
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	postgres.LogPoolStats(ctx, pool)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
