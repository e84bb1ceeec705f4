package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-bot/internal/api/dto"
	"github.com/spec-kit/ticket-bot/internal/transport"
	apperrors "github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

// EventSink consumes inbound chat events.
type EventSink interface {
	MessageReceived(ctx context.Context, ev transport.MessageEvent) error
	ReactionReceived(ctx context.Context, ev transport.ReactionEvent) error
}

// GatewayHandler accepts events pushed by the chat bridge.
type GatewayHandler struct {
	sink EventSink
}

// NewGatewayHandler constructs handler.
func NewGatewayHandler(sink EventSink) *GatewayHandler {
	return &GatewayHandler{sink: sink}
}

// Message POST /gateway/messages.
func (h *GatewayHandler) Message(c *fiber.Ctx) error {
	var ev transport.MessageEvent
	if err := c.BodyParser(&ev); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if ev.Channel == 0 || ev.Author.ID == 0 {
		return apperrors.NewValidationError("channel and author.id required", nil)
	}
	if err := h.sink.MessageReceived(c.UserContext(), ev); err != nil && !apperrors.HasCode(err, apperrors.CodeNotFound) {
		return err
	}
	return c.SendStatus(http.StatusAccepted)
}

// Reaction POST /gateway/reactions.
func (h *GatewayHandler) Reaction(c *fiber.Ctx) error {
	var req dto.ReactionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	switch req.Action {
	case dto.ReactionAdd, dto.ReactionRemove:
	default:
		return apperrors.NewValidationError("action must be add or remove", map[string]any{"action": req.Action})
	}
	if req.Channel == 0 || req.Message == 0 || req.User.ID == 0 || req.Emoji == "" {
		return apperrors.NewValidationError("channel, message, user.id, emoji required", nil)
	}
	if err := h.sink.ReactionReceived(c.UserContext(), req.Event()); err != nil {
		return err
	}
	return c.SendStatus(http.StatusAccepted)
}
