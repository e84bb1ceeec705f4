package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/config"
)

// RedisBackend keeps the document in a single string key.
type RedisBackend struct {
	client *redis.Client
	key    string
	owned  bool
}

// OpenRedis connects to the server in cfg and stores the document under key.
// Close closes the client.
func OpenRedis(ctx context.Context, cfg config.RedisConfig, key string, logger *zap.Logger) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	b, err := NewRedisBackend(client, key)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("unable to reach redis at %s: %w", cfg.Addr, err)
	}
	logger.Info("connected to redis", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	b.owned = true
	return b, nil
}

// NewRedisBackend stores the document under key with a client owned by the caller.
func NewRedisBackend(client *redis.Client, key string) (*RedisBackend, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if key == "" {
		return nil, fmt.Errorf("redis key is required")
	}
	return &RedisBackend{client: client, key: key}, nil
}

func (b *RedisBackend) Name() string { return "redis" }

func (b *RedisBackend) Load(ctx context.Context) ([]byte, error) {
	data, err := b.client.Get(ctx, b.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", b.key, err)
	}
	return data, nil
}

func (b *RedisBackend) Save(ctx context.Context, data []byte) error {
	if err := b.client.Set(ctx, b.key, data, 0).Err(); err != nil {
		return fmt.Errorf("save document %s: %w", b.key, err)
	}
	return nil
}

func (b *RedisBackend) Ping(ctx context.Context) error { return b.client.Ping(ctx).Err() }

func (b *RedisBackend) Close() error {
	if b.owned {
		return b.client.Close()
	}
	return nil
}
