package domain

import (
	"encoding/json"
	"fmt"
)

// TicketStatus is the display form of a ticket's open flag.
type TicketStatus string

const (
	TicketStatusOpen   TicketStatus = "OPEN"
	TicketStatusClosed TicketStatus = "CLOSED"
)

// Ticket is the aggregate produced by the intake wizard. It does not remember
// which TicketType produced it: editing or removing a type must never break
// existing tickets, so only the captured answers are kept.
type Ticket struct {
	Title     string
	Author    UserID
	Channel   ChannelID
	Open      bool
	Assignees []UserID
	Steps     []StepAnswer
}

// StepAnswer is one captured response. Title is copied from the definition at
// capture time and never re-resolved.
type StepAnswer struct {
	Title string
	Type  string
	Value AnswerValue
}

// NewTicket returns the shell created after the title step: open, no
// assignees and no answers yet.
func NewTicket(title string, author UserID, channel ChannelID) *Ticket {
	return &Ticket{
		Title:     title,
		Author:    author,
		Channel:   channel,
		Open:      true,
		Assignees: []UserID{},
		Steps:     []StepAnswer{},
	}
}

// Status reports OPEN or CLOSED.
func (t *Ticket) Status() TicketStatus {
	if t.Open {
		return TicketStatusOpen
	}
	return TicketStatusClosed
}

// IsAssigned reports whether user is an assignee.
func (t *Ticket) IsAssigned(user UserID) bool {
	for _, a := range t.Assignees {
		if a == user {
			return true
		}
	}
	return false
}

// Assign adds user to the assignees. Returns false when already assigned.
func (t *Ticket) Assign(user UserID) bool {
	if t.IsAssigned(user) {
		return false
	}
	t.Assignees = append(t.Assignees, user)
	return true
}

// Unassign removes user. Returns false when user was not assigned.
func (t *Ticket) Unassign(user UserID) bool {
	for i, a := range t.Assignees {
		if a == user {
			t.Assignees = append(t.Assignees[:i], t.Assignees[i+1:]...)
			return true
		}
	}
	return false
}

// AddAnswer appends a captured answer.
func (t *Ticket) AddAnswer(answer StepAnswer) {
	t.Steps = append(t.Steps, answer)
}

// Clone returns a deep copy.
func (t *Ticket) Clone() *Ticket {
	if t == nil {
		return nil
	}
	cp := *t
	cp.Assignees = append([]UserID{}, t.Assignees...)
	cp.Steps = make([]StepAnswer, len(t.Steps))
	for i, s := range t.Steps {
		cp.Steps[i] = StepAnswer{Title: s.Title, Type: s.Type, Value: s.Value}
		if s.Value.Kind() == AnswerList {
			cp.Steps[i].Value = ListAnswer(s.Value.List())
		}
	}
	return &cp
}

type ticketJSON struct {
	Title     string       `json:"title"`
	Author    UserID       `json:"author"`
	Channel   ChannelID    `json:"channel"`
	Open      bool         `json:"open"`
	Assignees []UserID     `json:"assignees"`
	Steps     []StepAnswer `json:"steps"`
}

func (t Ticket) MarshalJSON() ([]byte, error) {
	out := ticketJSON{
		Title:     t.Title,
		Author:    t.Author,
		Channel:   t.Channel,
		Open:      t.Open,
		Assignees: t.Assignees,
		Steps:     t.Steps,
	}
	if out.Assignees == nil {
		out.Assignees = []UserID{}
	}
	if out.Steps == nil {
		out.Steps = []StepAnswer{}
	}
	return json.Marshal(out)
}

func (t *Ticket) UnmarshalJSON(data []byte) error {
	var in ticketJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	seen := make(map[UserID]struct{}, len(in.Assignees))
	assignees := make([]UserID, 0, len(in.Assignees))
	for _, a := range in.Assignees {
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		assignees = append(assignees, a)
	}
	steps := in.Steps
	if steps == nil {
		steps = []StepAnswer{}
	}
	*t = Ticket{
		Title:     in.Title,
		Author:    in.Author,
		Channel:   in.Channel,
		Open:      in.Open,
		Assignees: assignees,
		Steps:     steps,
	}
	return nil
}

type stepAnswerJSON struct {
	Title      string          `json:"title"`
	Type       string          `json:"type"`
	Answer     json.RawMessage `json:"answer"`
	AnswerType AnswerKind      `json:"answerType"`
}

func (a StepAnswer) MarshalJSON() ([]byte, error) {
	raw, err := a.Value.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("step %q: %w", a.Title, err)
	}
	return json.Marshal(stepAnswerJSON{
		Title:      a.Title,
		Type:       a.Type,
		Answer:     raw,
		AnswerType: a.Value.Kind(),
	})
}

func (a *StepAnswer) UnmarshalJSON(data []byte) error {
	var in stepAnswerJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	value, err := DecodeAnswer(in.AnswerType, in.Answer)
	if err != nil {
		return fmt.Errorf("step %q: %w", in.Title, err)
	}
	*a = StepAnswer{Title: in.Title, Type: in.Type, Value: value}
	return nil
}
