// Package bot routes inbound chat events: messages in locked channels are
// removed, commands go to the router and everything else to the channel's
// active session.
package bot

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/commands"
	"github.com/spec-kit/ticket-bot/internal/session"
	"github.com/spec-kit/ticket-bot/internal/transport"
	apperrors "github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

// Bot is the single entry point for inbound events.
type Bot struct {
	sessions  *session.Manager
	commands  *commands.Router
	transport transport.Transport
	logger    *zap.Logger
}

// Dependencies bundles collaborators for the bot.
type Dependencies struct {
	Sessions  *session.Manager
	Commands  *commands.Router
	Transport transport.Transport
	Logger    *zap.Logger
}

// New constructs a Bot.
func New(deps Dependencies) *Bot {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{
		sessions:  deps.Sessions,
		commands:  deps.Commands,
		transport: deps.Transport,
		logger:    logger,
	}
}

// MessageReceived handles an inbound message. Events of one channel are
// processed in arrival order.
func (b *Bot) MessageReceived(ctx context.Context, ev transport.MessageEvent) error {
	if ev.Author.Bot {
		return nil
	}
	if b.sessions.ShouldSuppress(ev) {
		if err := b.transport.DeleteMessage(ctx, ev.Channel, ev.Message); err != nil {
			b.logger.Debug("delete message in locked channel", zap.Int64("channel", int64(ev.Channel)), zap.Error(err))
		}
		return nil
	}
	if b.commands != nil {
		handled, err := b.commands.Handle(ctx, ev)
		if handled || err != nil {
			if err != nil && !apperrors.HasCode(err, apperrors.CodeNotFound) {
				b.logger.Warn("command failed",
					zap.Int64("channel", int64(ev.Channel)),
					zap.Int64("author", int64(ev.Author.ID)),
					zap.Error(err))
			}
			return err
		}
	}
	b.sessions.Serialize(ev.Channel, func() {
		s, ok := b.sessions.Active(ev.Channel)
		if !ok {
			return
		}
		b.sessions.Touch(ev.Channel)
		s.Handler.HandleMessage(ctx, ev)
	})
	return nil
}

// ReactionReceived handles an inbound reaction add or remove.
func (b *Bot) ReactionReceived(ctx context.Context, ev transport.ReactionEvent) error {
	if ev.User.Bot {
		return nil
	}
	b.sessions.Serialize(ev.Channel, func() {
		s, ok := b.sessions.Active(ev.Channel)
		if !ok {
			return
		}
		b.sessions.Touch(ev.Channel)
		s.Handler.HandleReaction(ctx, ev)
	})
	return nil
}
