package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/config"
	"github.com/spec-kit/ticket-bot/internal/persistence"
)

// PostgresBackend keeps the document as one row of ticket_documents.
type PostgresBackend struct {
	pool  *pgxpool.Pool
	id    string
	owned bool
}

// OpenPostgres connects a pool sized by cfg, applies the document table
// migrations when cfg.RunMigrations is set and stores the document under id.
// Close releases the pool.
func OpenPostgres(ctx context.Context, cfg config.PostgresConfig, id string, logger *zap.Logger) (*PostgresBackend, error) {
	if cfg.DSN == "" {
		return nil, errors.New("POSTGRES_DSN not provided")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxIdleSec > 0 {
		poolCfg.MaxConnIdleTime = time.Duration(cfg.ConnMaxIdleSec) * time.Second
	}
	if cfg.ConnMaxLifeSec > 0 {
		poolCfg.MaxConnLifetime = time.Duration(cfg.ConnMaxLifeSec) * time.Second
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	logger.Info("connected to postgres", zap.Int32("max_conns", poolCfg.MaxConns))

	if cfg.RunMigrations {
		if err := persistence.RunMigrations(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return &PostgresBackend{pool: pool, id: id, owned: true}, nil
}

// NewPostgresBackend stores the document under id in a pool owned by the caller.
func NewPostgresBackend(pool *pgxpool.Pool, id string) (*PostgresBackend, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres pool is required")
	}
	return &PostgresBackend{pool: pool, id: id}, nil
}

func (b *PostgresBackend) Name() string { return "postgres" }

func (b *PostgresBackend) Load(ctx context.Context) ([]byte, error) {
	var body string
	err := b.pool.QueryRow(ctx, `SELECT body FROM ticket_documents WHERE id = $1`, b.id).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", b.id, err)
	}
	return []byte(body), nil
}

func (b *PostgresBackend) Save(ctx context.Context, data []byte) error {
	_, err := b.pool.Exec(ctx, `
		INSERT INTO ticket_documents (id, body, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`,
		b.id, string(data), time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("save document %s: %w", b.id, err)
	}
	return nil
}

func (b *PostgresBackend) Ping(ctx context.Context) error { return b.pool.Ping(ctx) }

func (b *PostgresBackend) Close() error {
	if b.owned {
		b.pool.Close()
	}
	return nil
}
