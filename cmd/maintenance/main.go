// Package main provides maintenance commands run against the production database.
// Usage: maintenance relink
//        maintenance recompute-values
//        maintenance backfill-numbers
//        maintenance refresh-active
//        maintenance migrate
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"szafa/internal/app"
	"szafa/internal/config"
	appctx "szafa/internal/core/context"
	"szafa/internal/domain/pending"
	"szafa/internal/infrastructure/numerator"
	"szafa/internal/infrastructure/storage/postgres"
	"szafa/pkg/logger"
)

type command func(ctx context.Context, env *environment) error

type environment struct {
	databaseURL string
	services    *app.Services
}

var commands = map[string]command{
	"relink": func(ctx context.Context, env *environment) error {
		n, err := env.services.Pending.Relink(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("relinked %d line(s)\n", n)
		return nil
	},
	"recompute-values": func(ctx context.Context, env *environment) error {
		n, err := env.services.Issues.RecomputeValues(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("recomputed %d issue item(s)\n", n)
		return nil
	},
	"backfill-numbers": func(ctx context.Context, env *environment) error {
		n, err := env.services.Stock.BackfillDocumentNumbers(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("backfilled %d movement(s)\n", n)
		return nil
	},
	"refresh-active": func(ctx context.Context, env *environment) error {
		n, err := env.services.Employees.RefreshAll(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("updated %d employee(s)\n", n)
		return nil
	},
	"migrate": func(ctx context.Context, env *environment) error {
		res, err := postgres.Migrate(ctx, env.databaseURL)
		if err != nil {
			return err
		}
		if !res.Changed {
			fmt.Printf("schema is up to date at version %d\n", res.To)
			return nil
		}
		fmt.Printf("migrated schema from version %d to %d\n", res.From, res.To)
		return nil
	},
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	name := os.Args[1]
	if name == "help" || name == "--help" || name == "-h" {
		printUsage()
		return
	}
	run, ok := commands[name]
	if !ok {
		fmt.Printf("Unknown command: %s\n", name)
		printUsage()
		os.Exit(1)
	}

	if err := execute(name, run); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func execute(name string, run command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = appctx.WithTrace(ctx, appctx.NewTraceContext())
	ctx = logger.WithLogger(ctx, log.With("command", name))

	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = cfg.DBMaxConns
	poolCfg.MinConns = 1
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	// Maintenance passes touch every row, so they run without the request statement timeout.
	txm := postgres.NewTxManager(pool)

	services := app.NewServices(app.PostgresStorage(txm, numerator.New(txm, nil)), app.Settings{
		Pending: pending.Config{
			RecipientName:   cfg.PendingRecipient,
			DefaultCategory: cfg.PendingDefaultCategory,
		},
		RelinkBatchSize: cfg.RelinkBatchSize,
	})

	logger.Info(ctx, "maintenance command started")
	if err := run(ctx, &environment{databaseURL: cfg.DatabaseURL, services: services}); err != nil {
		logger.Error(ctx, "maintenance command failed", "error", err)
		return err
	}
	logger.Info(ctx, "maintenance command finished")
	return nil
}

func printUsage() {
	fmt.Println(`szafa maintenance

Usage:
  maintenance <command>

Commands:
  relink            Relink document lines still pointing at placeholder products
  recompute-values  Refresh issue item prices and totals from current product prices
  backfill-numbers  Fill missing document numbers on stock movements
  refresh-active    Recompute every employee's active flag against today
  migrate           Apply pending schema migrations
  help              Show this help

Environment Variables:
  DATABASE_URL       Connection string (required)
  RELINK_BATCH_SIZE  Lines relinked per batch (default 1000)`)
}
