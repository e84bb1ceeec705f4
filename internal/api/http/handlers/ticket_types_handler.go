package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-bot/internal/api/dto"
	"github.com/spec-kit/ticket-bot/internal/auth"
	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/service"
	apperrors "github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

// TicketTypesHandler manages the ticket-type catalog and lists step types.
type TicketTypesHandler struct {
	catalog *service.CatalogService
}

// NewTicketTypesHandler constructs handler.
func NewTicketTypesHandler(catalog *service.CatalogService) *TicketTypesHandler {
	return &TicketTypesHandler{catalog: catalog}
}

// ListTicketTypes GET /api/ticket-types.
func (h *TicketTypesHandler) ListTicketTypes(c *fiber.Ctx) error {
	types, err := h.catalog.ListTicketTypes(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": types})
}

// PutTicketType PUT /api/ticket-types/:emoji.
func (h *TicketTypesHandler) PutTicketType(c *fiber.Ctx) error {
	emoji, err := emojiParam(c)
	if err != nil {
		return err
	}
	var req dto.TicketTypeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticketType := req.ToDomain(emoji)
	if err := ticketType.Validate(); err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	if err := h.catalog.SaveTicketType(c.UserContext(), actor(c), ticketType); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketType})
}

// DeleteTicketType DELETE /api/ticket-types/:emoji.
func (h *TicketTypesHandler) DeleteTicketType(c *fiber.Ctx) error {
	emoji, err := emojiParam(c)
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteTicketType(c.UserContext(), actor(c), emoji); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListStepTypes GET /api/step-types.
func (h *TicketTypesHandler) ListStepTypes(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.catalog.StepTypes()})
}

func emojiParam(c *fiber.Ctx) (string, error) {
	emoji, err := url.PathUnescape(c.Params("emoji"))
	if err != nil || emoji == "" {
		return "", apperrors.NewValidationError("invalid emoji", nil)
	}
	return emoji, nil
}

// actor resolves the audit actor from a numeric token subject, zero otherwise.
func actor(c *fiber.Ctx) domain.UserID {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return 0
	}
	id, err := domain.ParseUserID(principal.Subject)
	if err != nil {
		return 0
	}
	return id
}
