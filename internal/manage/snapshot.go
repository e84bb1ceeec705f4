package manage

import "github.com/spec-kit/ticket-bot/internal/domain"

// Snapshot is a read-only view of a running console.
type Snapshot struct {
	Session string           `json:"session"`
	Channel domain.ChannelID `json:"channel"`
	Staff   domain.UserID    `json:"staff"`
	State   State            `json:"state"`
	Ticket  domain.ChannelID `json:"ticket,omitempty"`
}

// Snapshot copies the console's position.
func (c *Console) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Session: c.session.String(),
		Channel: c.channel,
		Staff:   c.staff.ID,
		State:   c.state,
		Ticket:  c.target,
	}
}

// Describe implements the session inspection hook.
func (c *Console) Describe() any { return c.Snapshot() }
