package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/transport"
	"github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

// Handler drives the conversation bound to a channel.
type Handler interface {
	Kind() string
	HandleMessage(ctx context.Context, ev transport.MessageEvent)
	HandleReaction(ctx context.Context, ev transport.ReactionEvent)
	// Cancel ends the conversation early and releases what it holds.
	Cancel(ctx context.Context)
}

// Session is the single active conversation of a channel.
type Session struct {
	ID        uuid.UUID
	Channel   domain.ChannelID
	Handler   Handler
	StartedAt time.Time

	mu         sync.Mutex
	lastActive time.Time
}

// LastActive returns when the session last received an event.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Manager owns every channel session and the channel lock set behind one mutex.
type Manager struct {
	mu       sync.Mutex
	sessions map[domain.ChannelID]*Session
	locked   map[domain.ChannelID]struct{}
	now      func() time.Time
	logger   *zap.Logger

	// serial holds one event mutex per channel so events of a channel are
	// handled in arrival order.
	serial map[domain.ChannelID]*sync.Mutex
}

// NewManager returns an empty manager.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		sessions: make(map[domain.ChannelID]*Session),
		locked:   make(map[domain.ChannelID]struct{}),
		serial:   make(map[domain.ChannelID]*sync.Mutex),
		now:      time.Now,
		logger:   logger,
	}
}

// Acquire binds handler to channel. A channel holds at most one session.
func (m *Manager) Acquire(channel domain.ChannelID, handler Handler) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[channel]; ok {
		return nil, errorutil.NewConflict("channel already has an active session", map[string]any{
			"channel": channel.String(),
			"session": existing.ID.String(),
			"kind":    existing.Handler.Kind(),
		})
	}
	now := m.now()
	s := &Session{ID: uuid.New(), Channel: channel, Handler: handler, StartedAt: now, lastActive: now}
	m.sessions[channel] = s
	m.logger.Debug("session acquired", zap.Int64("channel", int64(channel)), zap.String("session", s.ID.String()), zap.String("kind", handler.Kind()))
	return s, nil
}

// Release removes the session id from channel. Releasing a stale id is a no-op.
func (m *Manager) Release(channel domain.ChannelID, id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[channel]; ok && s.ID == id {
		delete(m.sessions, channel)
		m.logger.Debug("session released", zap.Int64("channel", int64(channel)), zap.String("session", id.String()))
	}
}

// Active returns the session bound to channel.
func (m *Manager) Active(channel domain.ChannelID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[channel]
	return s, ok
}

// Sessions lists every active session ordered by channel.
func (m *Manager) Sessions() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Channel < out[j].Channel })
	return out
}

// Lock marks channel as accepting reactions only.
func (m *Manager) Lock(channel domain.ChannelID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locked[channel] = struct{}{}
}

// Unlock lifts the reaction-only restriction.
func (m *Manager) Unlock(channel domain.ChannelID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locked, channel)
}

// IsLocked reports whether channel is locked.
func (m *Manager) IsLocked(channel domain.ChannelID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.locked[channel]
	return ok
}

// ShouldSuppress reports whether ev must be deleted: a user message in a locked channel.
func (m *Manager) ShouldSuppress(ev transport.MessageEvent) bool {
	return !ev.Author.Bot && m.IsLocked(ev.Channel)
}

// Serialize runs fn while holding the channel's event mutex.
func (m *Manager) Serialize(channel domain.ChannelID, fn func()) {
	m.mu.Lock()
	mu, ok := m.serial[channel]
	if !ok {
		mu = &sync.Mutex{}
		m.serial[channel] = mu
	}
	m.mu.Unlock()
	mu.Lock()
	defer mu.Unlock()
	fn()
}

// Touch records activity on the channel's session.
func (m *Manager) Touch(channel domain.ChannelID) {
	s, ok := m.Active(channel)
	if !ok {
		return
	}
	now := m.now()
	s.mu.Lock()
	s.lastActive = now
	s.mu.Unlock()
}

// Expired returns the sessions idle for longer than idle. A non-positive idle
// never expires anything.
func (m *Manager) Expired(idle time.Duration) []*Session {
	if idle <= 0 {
		return nil
	}
	cutoff := m.now().Add(-idle)
	var out []*Session
	for _, s := range m.Sessions() {
		if s.LastActive().Before(cutoff) {
			out = append(out, s)
		}
	}
	return out
}

// Sweep cancels every session idle for longer than idle and returns how many ended.
func (m *Manager) Sweep(ctx context.Context, idle time.Duration) int {
	expired := m.Expired(idle)
	for _, s := range expired {
		m.Serialize(s.Channel, func() {
			current, ok := m.Active(s.Channel)
			if !ok || current.ID != s.ID {
				return
			}
			m.logger.Info("session expired", zap.Int64("channel", int64(s.Channel)), zap.String("session", s.ID.String()))
			s.Handler.Cancel(ctx)
			m.Release(s.Channel, s.ID)
			m.Unlock(s.Channel)
		})
	}
	return len(expired)
}
