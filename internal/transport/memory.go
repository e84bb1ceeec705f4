package transport

import (
	"context"
	"fmt"
	"sync"

	"github.com/spec-kit/ticket-bot/internal/domain"
)

// SentMessage is a message recorded by Memory.
type SentMessage struct {
	ID        domain.MessageID
	Channel   domain.ChannelID
	Content   Content
	Edits     int
	Reactions []string
}

// RemovedReaction records a RemoveReaction call.
type RemovedReaction struct {
	Channel domain.ChannelID
	Message domain.MessageID
	Emoji   string
	User    domain.UserID
}

// Memory is an in-process Transport that records every call. It backs tests
// and the gateway-less development mode.
type Memory struct {
	mu       sync.Mutex
	nextMsg  domain.MessageID
	nextChan domain.ChannelID
	messages map[domain.MessageID]*SentMessage
	order    []domain.MessageID
	deleted  map[domain.MessageID]bool
	removed  []RemovedReaction
	channels map[domain.ChannelID]ChannelRequest
	closed   []domain.ChannelID
	FailWith error
}

// NewMemory returns an empty recorder. Message ids start at 1000, channel ids at 5000.
func NewMemory() *Memory {
	return &Memory{
		nextMsg:  1000,
		nextChan: 5000,
		messages: make(map[domain.MessageID]*SentMessage),
		deleted:  make(map[domain.MessageID]bool),
		channels: make(map[domain.ChannelID]ChannelRequest),
	}
}

func (m *Memory) SendMessage(ctx context.Context, channel domain.ChannelID, content Content) (domain.MessageID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return 0, m.FailWith
	}
	m.nextMsg++
	id := m.nextMsg
	m.messages[id] = &SentMessage{ID: id, Channel: channel, Content: content}
	m.order = append(m.order, id)
	return id, nil
}

func (m *Memory) EditMessage(ctx context.Context, channel domain.ChannelID, message domain.MessageID, content Content) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.messages[message]
	if !ok || m.deleted[message] {
		return fmt.Errorf("edit message %d: unknown message", message)
	}
	msg.Content = content
	msg.Edits++
	return nil
}

func (m *Memory) DeleteMessage(ctx context.Context, channel domain.ChannelID, message domain.MessageID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted[message] = true
	return nil
}

func (m *Memory) AddReaction(ctx context.Context, channel domain.ChannelID, message domain.MessageID, emoji string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.messages[message]
	if !ok {
		return fmt.Errorf("add reaction %d: unknown message", message)
	}
	msg.Reactions = append(msg.Reactions, emoji)
	return nil
}

func (m *Memory) RemoveReaction(ctx context.Context, channel domain.ChannelID, message domain.MessageID, emoji string, user domain.UserID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, RemovedReaction{Channel: channel, Message: message, Emoji: emoji, User: user})
	return nil
}

func (m *Memory) ResolveMentionedUsers(ctx context.Context, event MessageEvent) ([]domain.UserID, error) {
	return MentionedUsers(event), nil
}

func (m *Memory) ResolveMentionedChannels(ctx context.Context, event MessageEvent) ([]domain.ChannelID, error) {
	return MentionedChannels(event), nil
}

func (m *Memory) CreateChannel(ctx context.Context, req ChannelRequest) (domain.ChannelID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return 0, m.FailWith
	}
	m.nextChan++
	m.channels[m.nextChan] = req
	return m.nextChan, nil
}

func (m *Memory) DeleteChannel(ctx context.Context, channel domain.ChannelID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.channels, channel)
	m.closed = append(m.closed, channel)
	return nil
}

// Messages returns the live (not deleted) messages sent to channel, oldest first.
func (m *Memory) Messages(channel domain.ChannelID) []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []SentMessage
	for _, id := range m.order {
		msg := m.messages[id]
		if msg.Channel != channel || m.deleted[id] {
			continue
		}
		cp := *msg
		cp.Reactions = append([]string(nil), msg.Reactions...)
		out = append(out, cp)
	}
	return out
}

// Last returns the newest live message in channel.
func (m *Memory) Last(channel domain.ChannelID) (SentMessage, bool) {
	msgs := m.Messages(channel)
	if len(msgs) == 0 {
		return SentMessage{}, false
	}
	return msgs[len(msgs)-1], true
}

// Message returns a recorded message by id, deleted or not.
func (m *Memory) Message(id domain.MessageID) (SentMessage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.messages[id]
	if !ok {
		return SentMessage{}, false
	}
	return *msg, true
}

// Deleted reports whether DeleteMessage was called for id.
func (m *Memory) Deleted(id domain.MessageID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleted[id]
}

// RemovedReactions returns every recorded RemoveReaction call.
func (m *Memory) RemovedReactions() []RemovedReaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RemovedReaction(nil), m.removed...)
}

// Channel returns the request a live channel was created with.
func (m *Memory) Channel(id domain.ChannelID) (ChannelRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.channels[id]
	return req, ok
}

// DeletedChannels lists channels removed through DeleteChannel.
func (m *Memory) DeletedChannels() []domain.ChannelID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ChannelID(nil), m.closed...)
}
