package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/config"
)

// Open builds the backend named by cfg.Store.Backend. Closing the backend
// releases the connections it opened.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Store.Backend {
	case "file":
		return NewFileBackend(cfg.Store.FilePath)
	case "sqlite":
		return OpenSQLite(ctx, cfg.Store.SQLitePath, cfg.Store.DocumentID)
	case "postgres":
		return OpenPostgres(ctx, cfg.Postgres, cfg.Store.DocumentID, logger)
	case "redis":
		return OpenRedis(ctx, cfg.Redis, cfg.Store.RedisKey, logger)
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}
