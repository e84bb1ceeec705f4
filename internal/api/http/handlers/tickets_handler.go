package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-bot/internal/api/dto"
	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/service"
	apperrors "github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

// TicketsHandler exposes read access to captured tickets.
type TicketsHandler struct {
	service *service.TicketService
	catalog *service.CatalogService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, catalog *service.CatalogService) *TicketsHandler {
	return &TicketsHandler{service: ticketService, catalog: catalog}
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	var author *domain.UserID
	if raw := c.Query("author"); raw != "" {
		id, err := domain.ParseUserID(raw)
		if err != nil {
			return apperrors.NewValidationError("invalid author", map[string]any{"author": raw})
		}
		author = &id
	}
	tickets, err := h.service.ListTickets(c.UserContext(), author)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		items = append(items, h.ticketResponse(t))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /api/tickets/:channel.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	channel, err := domain.ParseChannelID(c.Params("channel"))
	if err != nil {
		return apperrors.NewValidationError("invalid channel", map[string]any{"channel": c.Params("channel")})
	}
	ticket, err := h.service.GetTicket(c.UserContext(), channel)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.ticketResponse(ticket)})
}

func (h *TicketsHandler) ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	assignees := make([]string, 0, len(ticket.Assignees))
	for _, a := range ticket.Assignees {
		assignees = append(assignees, a.String())
	}
	steps := make([]dto.StepAnswerResponse, 0, len(ticket.Steps))
	for _, s := range ticket.Steps {
		steps = append(steps, dto.StepAnswerResponse{
			Title:      s.Title,
			Type:       s.Type,
			TypeName:   h.catalog.StepTypeName(s.Type),
			AnswerType: s.Value.Kind(),
			Answer:     s.Value.Interface(),
			Display:    s.Value.String(),
		})
	}
	return dto.TicketResponse{
		Title:     ticket.Title,
		Author:    ticket.Author.String(),
		Channel:   ticket.Channel.String(),
		Open:      ticket.Open,
		Status:    ticket.Status(),
		Assignees: assignees,
		Steps:     steps,
	}
}
