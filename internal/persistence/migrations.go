package persistence

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrations lists the embedded SQL files in apply order.
func Migrations() ([]string, error) {
	entries, err := fs.ReadDir(migrationFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	filenames := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		filenames = append(filenames, entry.Name())
	}
	sort.Strings(filenames)
	return filenames, nil
}

func readMigration(name string) (string, error) {
	content, err := migrationFS.ReadFile("migrations/" + name)
	if err != nil {
		return "", fmt.Errorf("read migration %s: %w", name, err)
	}
	return string(content), nil
}

// RunMigrations applies the embedded migrations to postgres. Every file is
// idempotent, so they run on each start.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	if pool == nil {
		logger.Warn("no postgres pool available; skipping migrations")
		return nil
	}
	filenames, err := Migrations()
	if err != nil {
		return err
	}
	for _, name := range filenames {
		content, err := readMigration(name)
		if err != nil {
			return err
		}
		logger.Info("applying migration", zap.String("file", name))
		if _, err := pool.Exec(ctx, content); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	logger.Info("migrations applied", zap.Int("count", len(filenames)))
	return nil
}

// RunSQLMigrations applies the same migrations through database/sql, used by
// the sqlite store.
func RunSQLMigrations(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("sql db is required")
	}
	filenames, err := Migrations()
	if err != nil {
		return err
	}
	for _, name := range filenames {
		content, err := readMigration(name)
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, content); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}
