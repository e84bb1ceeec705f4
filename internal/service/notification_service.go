package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/messages"
	"github.com/spec-kit/ticket-bot/internal/notice"
	"github.com/spec-kit/ticket-bot/internal/repository"
	"github.com/spec-kit/ticket-bot/internal/transport"
)

// NotificationService posts notices into ticket channels when staff change a ticket.
type NotificationService struct {
	dispatcher events.Dispatcher
	notifier   *notice.Notifier
	transport  transport.Transport
	messages   *messages.Store
	tickets    repository.TicketRepository
	stepName   func(string) string
	logger     *zap.Logger
}

// NotificationDependencies bundles collaborators.
type NotificationDependencies struct {
	Dispatcher events.Dispatcher
	Notifier   *notice.Notifier
	Transport  transport.Transport
	Messages   *messages.Store
	TicketRepo repository.TicketRepository
	StepName   func(string) string
	Logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: deps.Dispatcher,
		notifier:   deps.Notifier,
		transport:  deps.Transport,
		messages:   deps.Messages,
		tickets:    deps.TicketRepo,
		stepName:   deps.StepName,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleAssigneeChanged)
	n.dispatcher.Subscribe(events.EventTicketUnassigned, n.handleAssigneeChanged)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketCreated", zap.Int64("channel", int64(event.Channel)), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	n.logger.Info("TicketStatusChanged", zap.Int64("channel", int64(event.Channel)), zap.Any("payload", payload))
	key := messages.ManageTitleClose
	if payload.NewStatus == domain.TicketStatusOpen {
		key = messages.ManageTitleOpen
	}
	title := n.messages.Format(key, "USER", transport.UserMention(event.Actor))
	if _, err := n.notifier.Info(ctx, event.Channel, title, ""); err != nil {
		return err
	}
	ticket, err := n.tickets.GetByChannel(ctx, event.Channel)
	if err != nil {
		return err
	}
	_, err = n.transport.SendMessage(ctx, event.Channel, notice.Summary(n.messages, n.stepName, ticket))
	return err
}

func (n *NotificationService) handleAssigneeChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssigneePayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	n.logger.Info("TicketAssigneeChanged",
		zap.String("event_type", string(event.Type)),
		zap.Int64("channel", int64(event.Channel)),
		zap.Int64("assignee", int64(payload.Assignee)))
	key := messages.ManageTitleAssign
	if event.Type == events.EventTicketUnassigned {
		key = messages.ManageTitleUnassign
	}
	title := n.messages.Format(key,
		"USER", transport.UserMention(event.Actor),
		"ASSIGNEE", transport.UserMention(payload.Assignee))
	_, err := n.notifier.Info(ctx, event.Channel, title, "")
	return err
}
