package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
)

// Gateway forwards outbound calls to a platform bridge over HTTP. The bridge
// feeds inbound events back through the /gateway routes.
type Gateway struct {
	baseURL string
	token   string
	timeout time.Duration
	logger  *zap.Logger
}

// GatewayOptions configures a Gateway.
type GatewayOptions struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewGateway builds a Gateway client.
func NewGateway(opts GatewayOptions) (*Gateway, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("gateway base url is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Gateway{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		token:   opts.Token,
		timeout: opts.Timeout,
		logger:  opts.Logger,
	}, nil
}

type idResponse struct {
	ID int64 `json:"id"`
}

func (g *Gateway) SendMessage(ctx context.Context, channel domain.ChannelID, content Content) (domain.MessageID, error) {
	var resp idResponse
	err := g.do(ctx, fiber.Post(g.url("/channels/%d/messages", channel)), content, &resp)
	if err != nil {
		return 0, fmt.Errorf("send message: %w", err)
	}
	return domain.MessageID(resp.ID), nil
}

func (g *Gateway) EditMessage(ctx context.Context, channel domain.ChannelID, message domain.MessageID, content Content) error {
	if err := g.do(ctx, fiber.Patch(g.url("/channels/%d/messages/%d", channel, message)), content, nil); err != nil {
		return fmt.Errorf("edit message: %w", err)
	}
	return nil
}

func (g *Gateway) DeleteMessage(ctx context.Context, channel domain.ChannelID, message domain.MessageID) error {
	if err := g.do(ctx, fiber.Delete(g.url("/channels/%d/messages/%d", channel, message)), nil, nil); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

type reactionRequest struct {
	Emoji string        `json:"emoji"`
	User  domain.UserID `json:"user,omitempty"`
}

func (g *Gateway) AddReaction(ctx context.Context, channel domain.ChannelID, message domain.MessageID, emoji string) error {
	agent := fiber.Post(g.url("/channels/%d/messages/%d/reactions", channel, message))
	if err := g.do(ctx, agent, reactionRequest{Emoji: emoji}, nil); err != nil {
		return fmt.Errorf("add reaction: %w", err)
	}
	return nil
}

func (g *Gateway) RemoveReaction(ctx context.Context, channel domain.ChannelID, message domain.MessageID, emoji string, user domain.UserID) error {
	agent := fiber.Delete(g.url("/channels/%d/messages/%d/reactions", channel, message))
	if err := g.do(ctx, agent, reactionRequest{Emoji: emoji, User: user}, nil); err != nil {
		return fmt.Errorf("remove reaction: %w", err)
	}
	return nil
}

// ResolveMentionedUsers uses the mentions the bridge attached to the event.
func (g *Gateway) ResolveMentionedUsers(ctx context.Context, event MessageEvent) ([]domain.UserID, error) {
	return MentionedUsers(event), nil
}

// ResolveMentionedChannels uses the mentions the bridge attached to the event.
func (g *Gateway) ResolveMentionedChannels(ctx context.Context, event MessageEvent) ([]domain.ChannelID, error) {
	return MentionedChannels(event), nil
}

func (g *Gateway) CreateChannel(ctx context.Context, req ChannelRequest) (domain.ChannelID, error) {
	var resp idResponse
	if err := g.do(ctx, fiber.Post(g.url("/channels")), req, &resp); err != nil {
		return 0, fmt.Errorf("create channel: %w", err)
	}
	return domain.ChannelID(resp.ID), nil
}

func (g *Gateway) DeleteChannel(ctx context.Context, channel domain.ChannelID) error {
	if err := g.do(ctx, fiber.Delete(g.url("/channels/%d", channel)), nil, nil); err != nil {
		return fmt.Errorf("delete channel: %w", err)
	}
	return nil
}

func (g *Gateway) url(format string, args ...any) string {
	return g.baseURL + fmt.Sprintf(format, args...)
}

func (g *Gateway) do(ctx context.Context, agent *fiber.Agent, body any, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	timeout := g.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	agent.Timeout(timeout)
	if g.token != "" {
		agent.Set(fiber.HeaderAuthorization, "Bearer "+g.token)
	}
	if body != nil {
		agent.JSON(body)
	}
	code, resp, errs := agent.Bytes()
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	if code < 200 || code >= 300 {
		g.logger.Warn("gateway call rejected", zap.Int("status", code), zap.ByteString("body", resp))
		return fmt.Errorf("gateway returned status %d", code)
	}
	if out != nil && len(resp) > 0 {
		if err := json.Unmarshal(resp, out); err != nil {
			return fmt.Errorf("decode gateway response: %w", err)
		}
	}
	return nil
}
