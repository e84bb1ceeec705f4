package notice

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/messages"
	"github.com/spec-kit/ticket-bot/internal/transport"
)

// Notifier sends formatted notices into channels.
type Notifier struct {
	transport   transport.Transport
	messages    *messages.Store
	deleteAfter time.Duration
	logger      *zap.Logger
}

// New builds a Notifier. Error notices delete themselves after deleteAfter
// when it is positive.
func New(t transport.Transport, store *messages.Store, deleteAfter time.Duration, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{transport: t, messages: store, deleteAfter: deleteAfter, logger: logger}
}

// Error posts an error notice with the shared error title.
func (n *Notifier) Error(ctx context.Context, channel domain.ChannelID, description string) (domain.MessageID, error) {
	id, err := n.transport.SendMessage(ctx, channel, transport.Content{
		Title:       n.messages.Get(messages.StepErrorTitle),
		Description: description,
		Color:       n.messages.Get(messages.ColorError),
	})
	if err != nil {
		n.logger.Warn("send error notice", zap.Int64("channel", int64(channel)), zap.Error(err))
		return 0, err
	}
	if n.deleteAfter > 0 {
		time.AfterFunc(n.deleteAfter, func() {
			if err := n.transport.DeleteMessage(context.Background(), channel, id); err != nil {
				n.logger.Debug("delete error notice", zap.Int64("channel", int64(channel)), zap.Error(err))
			}
		})
	}
	return id, nil
}

// Info posts an accent-colored notice.
func (n *Notifier) Info(ctx context.Context, channel domain.ChannelID, title, description string) (domain.MessageID, error) {
	id, err := n.transport.SendMessage(ctx, channel, transport.Content{
		Title:       title,
		Description: description,
		Color:       n.messages.Get(messages.ColorAccent),
	})
	if err != nil {
		n.logger.Warn("send notice", zap.Int64("channel", int64(channel)), zap.Error(err))
		return 0, err
	}
	return id, nil
}
