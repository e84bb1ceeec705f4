package events

import (
	"time"

	"github.com/spec-kit/ticket-bot/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketUnassigned    EventType = "ticket_unassigned"
	EventTicketTypeSaved     EventType = "ticket_type_saved"
	EventTicketTypeDeleted   EventType = "ticket_type_deleted"
)

// MutationEvents lists every event that changes persisted state.
var MutationEvents = []EventType{
	EventTicketCreated,
	EventTicketStatusChanged,
	EventTicketAssigned,
	EventTicketUnassigned,
	EventTicketTypeSaved,
	EventTicketTypeDeleted,
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string           `json:"id"`
	Type      EventType        `json:"type"`
	Channel   domain.ChannelID `json:"channel,omitempty"`
	Actor     domain.UserID    `json:"actor,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Payload   interface{}      `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title  string        `json:"title"`
	Author domain.UserID `json:"author"`
	Steps  int           `json:"steps"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketAssigneePayload payload of assign and unassign events.
type TicketAssigneePayload struct {
	Assignee domain.UserID `json:"assignee"`
}

// TicketTypePayload payload of catalog events.
type TicketTypePayload struct {
	Emoji string `json:"emoji"`
	Name  string `json:"name"`
}
