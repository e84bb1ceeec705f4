package service

import (
	"context"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/repository"
	apperrors "github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

// AssignmentService handles ticket assignee operations.
type AssignmentService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
}

// AssignmentDependencies bundles collaborators.
type AssignmentDependencies struct {
	TicketRepo repository.TicketRepository
	Dispatcher events.Dispatcher
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
	}
}

// Assign adds assignee to the ticket in channel. Assigning twice is the same
// as assigning once; the bool reports whether anything changed.
func (s *AssignmentService) Assign(ctx context.Context, actor domain.UserID, channel domain.ChannelID, assignee domain.UserID) (*domain.Ticket, bool, error) {
	return s.mutate(ctx, actor, channel, assignee, events.EventTicketAssigned, (*domain.Ticket).Assign)
}

// Unassign removes assignee. Removing a non-member is a no-op.
func (s *AssignmentService) Unassign(ctx context.Context, actor domain.UserID, channel domain.ChannelID, assignee domain.UserID) (*domain.Ticket, bool, error) {
	return s.mutate(ctx, actor, channel, assignee, events.EventTicketUnassigned, (*domain.Ticket).Unassign)
}

func (s *AssignmentService) mutate(
	ctx context.Context,
	actor domain.UserID,
	channel domain.ChannelID,
	assignee domain.UserID,
	eventType events.EventType,
	apply func(*domain.Ticket, domain.UserID) bool,
) (*domain.Ticket, bool, error) {
	if assignee == 0 {
		return nil, false, apperrors.NewValidationError("assignee is required", nil)
	}
	ticket, err := s.tickets.GetByChannel(ctx, channel)
	if err != nil {
		return nil, false, apperrors.MapError(err)
	}
	if !apply(ticket, assignee) {
		return ticket, false, nil
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, false, apperrors.MapError(err)
	}
	publish(ctx, s.dispatcher, events.Event{
		Type:    eventType,
		Channel: channel,
		Actor:   actor,
		Payload: events.TicketAssigneePayload{Assignee: assignee},
	})
	return ticket, true, nil
}
