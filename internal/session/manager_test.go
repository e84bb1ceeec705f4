package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/ticket-bot/internal/transport"
	"github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

type fakeHandler struct {
	mu        sync.Mutex
	cancelled int
}

func (f *fakeHandler) Kind() string { return "fake" }

func (f *fakeHandler) HandleMessage(context.Context, transport.MessageEvent) {}

func (f *fakeHandler) HandleReaction(context.Context, transport.ReactionEvent) {}

func (f *fakeHandler) Cancel(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled++
}

func TestAcquireIsExclusivePerChannel(t *testing.T) {
	m := NewManager(nil)
	s, err := m.Acquire(1, &fakeHandler{})
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if _, err := m.Acquire(1, &fakeHandler{}); !errorutil.HasCode(err, errorutil.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, err := m.Acquire(2, &fakeHandler{}); err != nil {
		t.Fatalf("other channels are independent: %v", err)
	}
	m.Release(1, uuid.New())
	if _, ok := m.Active(1); !ok {
		t.Fatalf("releasing a stale id must not drop the session")
	}
	m.Release(1, s.ID)
	if _, ok := m.Active(1); ok {
		t.Fatalf("session still active after release")
	}
	if len(m.Sessions()) != 1 {
		t.Fatalf("expected one remaining session")
	}
}

func TestLockSuppressesUserMessagesOnly(t *testing.T) {
	m := NewManager(nil)
	m.Lock(5)
	if !m.ShouldSuppress(transport.MessageEvent{Channel: 5, Author: transport.Member{ID: 1}}) {
		t.Fatalf("user message in locked channel must be suppressed")
	}
	if m.ShouldSuppress(transport.MessageEvent{Channel: 5, Author: transport.Member{ID: 2, Bot: true}}) {
		t.Fatalf("bot messages are never suppressed")
	}
	if m.ShouldSuppress(transport.MessageEvent{Channel: 6, Author: transport.Member{ID: 1}}) {
		t.Fatalf("unlocked channels are not filtered")
	}
	m.Unlock(5)
	if m.IsLocked(5) {
		t.Fatalf("unlock failed")
	}
}

func TestSweepCancelsIdleSessions(t *testing.T) {
	m := NewManager(nil)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	idle := &fakeHandler{}
	busy := &fakeHandler{}
	if _, err := m.Acquire(1, idle); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if _, err := m.Acquire(2, busy); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	m.Lock(1)

	now = now.Add(10 * time.Minute)
	m.Touch(2)
	now = now.Add(time.Minute)

	if n := m.Sweep(context.Background(), 0); n != 0 {
		t.Fatalf("zero timeout must never expire, swept %d", n)
	}
	if n := m.Sweep(context.Background(), 5*time.Minute); n != 1 {
		t.Fatalf("expected one expired session, got %d", n)
	}
	if idle.cancelled != 1 || busy.cancelled != 0 {
		t.Fatalf("unexpected cancellations idle=%d busy=%d", idle.cancelled, busy.cancelled)
	}
	if _, ok := m.Active(1); ok || m.IsLocked(1) {
		t.Fatalf("expired session must be released and unlocked")
	}
	if _, ok := m.Active(2); !ok {
		t.Fatalf("active session must survive")
	}
}

func TestSerializeOrdersEventsPerChannel(t *testing.T) {
	m := NewManager(nil)
	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	inside := make(chan struct{})
	release := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		m.Serialize(1, func() {
			close(inside)
			<-release
			mu.Lock()
			order = append(order, 1)
			mu.Unlock()
		})
	}()
	<-inside
	wg.Add(1)
	go func() {
		defer wg.Done()
		m.Serialize(1, func() {
			mu.Lock()
			order = append(order, 2)
			mu.Unlock()
		})
	}()
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()
	if len(order) != 2 || order[0] != 1 {
		t.Fatalf("unexpected order %v", order)
	}
}
