// Package store persists the ticket table and the ticket-type catalog as one
// JSON document, rewritten whole on every save.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/steptype"
)

// Document is the persisted layout.
type Document struct {
	Tickets     []*domain.Ticket     `json:"tickets"`
	TicketTypes []*domain.TicketType `json:"ticketTypes"`
}

// RecordError describes one record that was skipped while decoding.
type RecordError struct {
	Section string `json:"section"`
	Index   int    `json:"index"`
	Err     error  `json:"-"`
}

func (e RecordError) Error() string {
	return fmt.Sprintf("%s[%d]: %v", e.Section, e.Index, e.Err)
}

func (e RecordError) Unwrap() error { return e.Err }

// Encode writes doc with tickets ordered by channel and types by emoji, so
// equal documents always produce equal bytes.
func Encode(doc *Document) ([]byte, error) {
	out := Document{
		Tickets:     append([]*domain.Ticket{}, doc.Tickets...),
		TicketTypes: append([]*domain.TicketType{}, doc.TicketTypes...),
	}
	sort.SliceStable(out.Tickets, func(i, j int) bool { return out.Tickets[i].Channel < out.Tickets[j].Channel })
	sort.SliceStable(out.TicketTypes, func(i, j int) bool { return out.TicketTypes[i].Emoji < out.TicketTypes[j].Emoji })
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return append(data, '\n'), nil
}

type rawDocument struct {
	Tickets     []json.RawMessage `json:"tickets"`
	TicketTypes []json.RawMessage `json:"ticketTypes"`
}

// Decode parses data. A record that does not decode, or that names a step
// type reg cannot resolve, is skipped and reported; the rest still load.
// Empty data is an empty document.
func Decode(data []byte, reg *steptype.Registry) (*Document, []RecordError, error) {
	doc := &Document{Tickets: []*domain.Ticket{}, TicketTypes: []*domain.TicketType{}}
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil, nil
	}
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("decode document: %w", err)
	}

	var skipped []RecordError
	channels := make(map[domain.ChannelID]struct{}, len(raw.Tickets))
	for i, item := range raw.Tickets {
		ticket, err := decodeTicket(item, reg)
		if err == nil {
			if _, dup := channels[ticket.Channel]; dup {
				err = fmt.Errorf("duplicate ticket for channel %s", ticket.Channel)
			}
		}
		if err != nil {
			skipped = append(skipped, RecordError{Section: "tickets", Index: i, Err: err})
			continue
		}
		channels[ticket.Channel] = struct{}{}
		doc.Tickets = append(doc.Tickets, ticket)
	}

	emojis := make(map[string]struct{}, len(raw.TicketTypes))
	for i, item := range raw.TicketTypes {
		ticketType, err := decodeTicketType(item, reg)
		if err == nil {
			if _, dup := emojis[ticketType.Emoji]; dup {
				err = fmt.Errorf("duplicate ticket type emoji %s", ticketType.Emoji)
			}
		}
		if err != nil {
			skipped = append(skipped, RecordError{Section: "ticketTypes", Index: i, Err: err})
			continue
		}
		emojis[ticketType.Emoji] = struct{}{}
		doc.TicketTypes = append(doc.TicketTypes, ticketType)
	}
	return doc, skipped, nil
}

func decodeTicket(data json.RawMessage, reg *steptype.Registry) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := json.Unmarshal(data, &ticket); err != nil {
		return nil, err
	}
	if ticket.Channel == 0 {
		return nil, fmt.Errorf("ticket channel is required")
	}
	if reg == nil {
		return &ticket, nil
	}
	for i, step := range ticket.Steps {
		resolved, err := reg.Resolve(step.Type)
		if err != nil {
			return nil, fmt.Errorf("step %d: couldn't find step type of %s", i+1, step.Type)
		}
		if want := resolved.Info.AnswerKind; want != "" && step.Value.Kind() != want {
			return nil, fmt.Errorf("step %d: %s answer stored for %s step type, want %s", i+1, step.Value.Kind(), step.Type, want)
		}
	}
	return &ticket, nil
}

func decodeTicketType(data json.RawMessage, reg *steptype.Registry) (*domain.TicketType, error) {
	var ticketType domain.TicketType
	if err := json.Unmarshal(data, &ticketType); err != nil {
		return nil, err
	}
	if reg == nil {
		if err := ticketType.Validate(); err != nil {
			return nil, err
		}
		return &ticketType, nil
	}
	if err := reg.ValidateTicketType(&ticketType); err != nil {
		return nil, err
	}
	return &ticketType, nil
}
