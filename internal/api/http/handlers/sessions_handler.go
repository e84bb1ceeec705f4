package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/session"
	apperrors "github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

// describer is implemented by session handlers that expose their progress.
type describer interface {
	Describe() any
}

// SessionsHandler inspects running conversations.
type SessionsHandler struct {
	sessions *session.Manager
}

// NewSessionsHandler constructs handler.
func NewSessionsHandler(sessions *session.Manager) *SessionsHandler {
	return &SessionsHandler{sessions: sessions}
}

// GetSession GET /api/sessions/:channel.
func (h *SessionsHandler) GetSession(c *fiber.Ctx) error {
	channel, err := domain.ParseChannelID(c.Params("channel"))
	if err != nil {
		return apperrors.NewValidationError("invalid channel", map[string]any{"channel": c.Params("channel")})
	}
	s, ok := h.sessions.Active(channel)
	if !ok {
		return apperrors.NewNotFound("session", map[string]any{"channel": channel.String()})
	}
	resp := fiber.Map{
		"id":         s.ID.String(),
		"channel":    s.Channel.String(),
		"kind":       s.Handler.Kind(),
		"startedAt":  s.StartedAt,
		"lastActive": s.LastActive(),
		"locked":     h.sessions.IsLocked(channel),
	}
	if d, ok := s.Handler.(describer); ok {
		resp["progress"] = d.Describe()
	}
	return c.JSON(fiber.Map{"data": resp})
}
