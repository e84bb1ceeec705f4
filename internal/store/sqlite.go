package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/spec-kit/ticket-bot/internal/persistence"
)

// SQLiteBackend keeps the document as one row of a local SQLite database.
type SQLiteBackend struct {
	db *sql.DB
	id string
}

// OpenSQLite opens (creating when needed) the database at path and applies
// the document table migrations.
func OpenSQLite(ctx context.Context, path, id string) (*SQLiteBackend, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := persistence.RunSQLMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLiteBackend{db: db, id: id}, nil
}

func (b *SQLiteBackend) Name() string { return "sqlite" }

func (b *SQLiteBackend) Load(ctx context.Context) ([]byte, error) {
	var body string
	err := b.db.QueryRowContext(ctx, `SELECT body FROM ticket_documents WHERE id = ?`, b.id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", b.id, err)
	}
	return []byte(body), nil
}

func (b *SQLiteBackend) Save(ctx context.Context, data []byte) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO ticket_documents (id, body, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		b.id, string(data), time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("save document %s: %w", b.id, err)
	}
	return nil
}

func (b *SQLiteBackend) Ping(ctx context.Context) error { return b.db.PingContext(ctx) }

func (b *SQLiteBackend) Close() error { return b.db.Close() }
