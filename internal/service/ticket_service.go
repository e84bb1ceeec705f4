package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/repository"
	apperrors "github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// CreateTicket inserts a finished ticket into the table and author index.
func (s *TicketService) CreateTicket(ctx context.Context, ticket *domain.Ticket) error {
	if ticket == nil || ticket.Channel == 0 {
		return apperrors.NewValidationError("ticket channel is required", nil)
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return apperrors.MapError(err)
	}
	s.logger.Info("ticket created",
		zap.Int64("channel", int64(ticket.Channel)),
		zap.Int64("author", int64(ticket.Author)),
		zap.Int("steps", len(ticket.Steps)))
	s.publishEvent(ctx, events.Event{
		Type:    events.EventTicketCreated,
		Channel: ticket.Channel,
		Actor:   ticket.Author,
		Payload: events.TicketCreatedPayload{Title: ticket.Title, Author: ticket.Author, Steps: len(ticket.Steps)},
	})
	return nil
}

// GetTicket returns the ticket living in channel.
func (s *TicketService) GetTicket(ctx context.Context, channel domain.ChannelID) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByChannel(ctx, channel)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// ListTickets returns every ticket, or only the author's when author is set.
func (s *TicketService) ListTickets(ctx context.Context, author *domain.UserID) ([]*domain.Ticket, error) {
	if author != nil {
		return s.tickets.ListByAuthor(ctx, *author)
	}
	return s.tickets.List(ctx)
}

// CountByAuthor returns how many tickets author has opened.
func (s *TicketService) CountByAuthor(ctx context.Context, author domain.UserID) (int, error) {
	return s.tickets.CountByAuthor(ctx, author)
}

// SetOpen sets the open flag. The returned bool reports whether it changed.
func (s *TicketService) SetOpen(ctx context.Context, actor domain.UserID, channel domain.ChannelID, open bool) (*domain.Ticket, bool, error) {
	ticket, err := s.tickets.GetByChannel(ctx, channel)
	if err != nil {
		return nil, false, apperrors.MapError(err)
	}
	if ticket.Open == open {
		return ticket, false, nil
	}
	old := ticket.Status()
	ticket.Open = open
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, false, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:    events.EventTicketStatusChanged,
		Channel: channel,
		Actor:   actor,
		Payload: events.TicketStatusChangedPayload{OldStatus: old, NewStatus: ticket.Status()},
	})
	return ticket, true, nil
}

// ToggleOpen flips the open flag.
func (s *TicketService) ToggleOpen(ctx context.Context, actor domain.UserID, channel domain.ChannelID) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByChannel(ctx, channel)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	ticket, _, err = s.SetOpen(ctx, actor, channel, !ticket.Open)
	return ticket, err
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	publish(ctx, s.dispatcher, event)
}

func publish(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	_ = dispatcher.Publish(ctx, event)
}
