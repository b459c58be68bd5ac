package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5" // register pgx5 driver
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"szafa/pkg/logger"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// MigrationResult reports the schema version before and after Migrate.
type MigrationResult struct {
	From    uint
	To      uint
	Changed bool
}

// Migrate applies every embedded up migration not yet recorded by golang-migrate.
// A schema that is already current is not an error.
func Migrate(ctx context.Context, databaseURL string) (MigrationResult, error) {
	logger.Info(ctx, "running database migration")

	m, err := newMigrator(databaseURL)
	if err != nil {
		return MigrationResult{}, err
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Warn(ctx, "close migrator", "source_error", srcErr, "db_error", dbErr)
		}
	}()
	m.Log = &migrationLogger{ctx: ctx}

	var result MigrationResult
	result.From, err = currentVersion(m)
	if err != nil {
		return result, err
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			m.GracefulStop <- true
		case <-done:
		}
	}()

	if err := m.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			logger.Error(ctx, "database migration failed", "error", err)
			return result, fmt.Errorf("migrate up: %w", err)
		}
		logger.Info(ctx, "database migration: no change needed", "version", result.From)
		result.To = result.From
		return result, nil
	}

	result.To, err = currentVersion(m)
	if err != nil {
		return result, err
	}
	result.Changed = result.To != result.From
	logger.Info(ctx, "schema migrated", "from", result.From, "to", result.To)
	return result, nil
}

func newMigrator(databaseURL string) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, migrationURL(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}

func currentVersion(m *migrate.Migrate) (uint, error) {
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		return v, fmt.Errorf("schema version %d is dirty", v)
	}
	return v, nil
}

// migrationURL rewrites a libpq style URL to the scheme the pgx5 driver registers.
func migrationURL(databaseURL string) string {
	for _, scheme := range []string{"postgresql://", "postgres://"} {
		if rest, ok := strings.CutPrefix(databaseURL, scheme); ok {
			return "pgx5://" + rest
		}
	}
	return databaseURL
}

// migrationLogger routes golang-migrate output through the request logger.
type migrationLogger struct {
	ctx context.Context
}

func (l *migrationLogger) Printf(format string, v ...any) {
	logger.Debug(l.ctx, "migration: "+strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *migrationLogger) Verbose() bool {
	return false
}
