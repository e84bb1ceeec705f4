package wizard

import "github.com/spec-kit/ticket-bot/internal/domain"

// Snapshot is a read-only view of a running wizard.
type Snapshot struct {
	Session    string              `json:"session"`
	Channel    domain.ChannelID    `json:"channel"`
	Author     domain.UserID       `json:"author"`
	State      State               `json:"state"`
	TicketType string              `json:"ticketType,omitempty"`
	Title      string              `json:"title,omitempty"`
	StepIndex  int                 `json:"stepIndex"`
	StepType   string              `json:"stepType,omitempty"`
	Answered   []domain.StepAnswer `json:"answered"`
}

// Snapshot copies the wizard's progress.
func (w *Wizard) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := Snapshot{
		Session:   w.session.String(),
		Channel:   w.channel,
		Author:    w.author.ID,
		State:     w.state,
		StepIndex: w.index,
		Answered:  []domain.StepAnswer{},
	}
	if w.ticketType != nil {
		s.TicketType = w.ticketType.Emoji
	}
	if w.ticket != nil {
		s.Title = w.ticket.Title
		s.Answered = w.ticket.Clone().Steps
	}
	if w.handle != nil && !w.handle.Finished() {
		s.StepType = w.handle.Info().ID
	}
	return s
}

// Describe implements the session inspection hook.
func (w *Wizard) Describe() any { return w.Snapshot() }
