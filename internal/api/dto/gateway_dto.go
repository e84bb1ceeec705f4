package dto

import "github.com/spec-kit/ticket-bot/internal/transport"

// Reaction actions accepted by the gateway ingress.
const (
	ReactionAdd    = "add"
	ReactionRemove = "remove"
)

// ReactionRequest is an inbound reaction event from the chat bridge.
type ReactionRequest struct {
	transport.ReactionEvent
	Action string `json:"action"`
}

// Event converts the request, deriving Added from Action.
func (r ReactionRequest) Event() transport.ReactionEvent {
	ev := r.ReactionEvent
	ev.Added = r.Action != ReactionRemove
	return ev
}
