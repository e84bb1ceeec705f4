package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/session"
)

// RunSessionSweeper cancels sessions idle longer than idle every interval
// until ctx ends. It returns at once when idle is not positive.
func RunSessionSweeper(ctx context.Context, sessions *session.Manager, idle, interval time.Duration, logger *zap.Logger) {
	if idle <= 0 {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Sweep(ctx, idle); n > 0 {
				logger.Info("idle sessions expired", zap.Int("count", n))
			}
		}
	}
}
