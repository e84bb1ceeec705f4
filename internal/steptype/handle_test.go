package steptype

import (
	"context"
	"sync"
	"testing"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/messages"
	"github.com/spec-kit/ticket-bot/internal/transport"
)

type recordingLocker struct {
	mu     sync.Mutex
	locked map[domain.ChannelID]bool
	events []string
}

func (l *recordingLocker) Lock(ch domain.ChannelID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.locked == nil {
		l.locked = map[domain.ChannelID]bool{}
	}
	l.locked[ch] = true
	l.events = append(l.events, "lock")
}

func (l *recordingLocker) Unlock(ch domain.ChannelID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.locked, ch)
	l.events = append(l.events, "unlock")
}

func (l *recordingLocker) isLocked(ch domain.ChannelID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.locked[ch]
}

type recordingNotifier struct {
	reasons []string
}

func (n *recordingNotifier) Error(ctx context.Context, channel domain.ChannelID, description string) (domain.MessageID, error) {
	n.reasons = append(n.reasons, description)
	return 1, nil
}

func newHandle(t *testing.T, factory Factory, opts domain.Options, next Continuation) (*Handle, *transport.Memory, *recordingLocker, *recordingNotifier) {
	t.Helper()
	mem := transport.NewMemory()
	step, err := factory(Env{Transport: mem, Messages: messages.Defaults()}, opts)
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	locker := &recordingLocker{}
	notifier := &recordingNotifier{}
	h := NewHandle(Info{ID: "test"}, step, Prompt{Channel: testChannel, Question: "Q"}, HandleOptions{
		Locker:   locker,
		Notifier: notifier,
		Next:     next,
	})
	if err := h.Begin(context.Background()); err != nil {
		t.Fatalf("begin: %v", err)
	}
	return h, mem, locker, notifier
}

func TestHandleFiresContinuationOnce(t *testing.T) {
	calls := 0
	var got domain.AnswerValue
	h, mem, _, _ := newHandle(t, NewSingleSelect, selectOptions(false), func(ctx context.Context, v domain.AnswerValue) {
		calls++
		got = v
	})
	prompt, _ := mem.Last(testChannel)
	for _, emoji := range []string{"🍎", "🍌"} {
		h.Dispatch(context.Background(), ReactionEvent(transport.ReactionEvent{
			Channel: testChannel, Message: prompt.ID, User: user, Emoji: emoji, Added: true,
		}))
	}
	if calls != 1 || got.Text() != "Apple" {
		t.Fatalf("expected first reaction to win once, calls=%d value=%v", calls, got)
	}
	if !h.Finished() {
		t.Fatalf("handle should be finished")
	}
}

func TestHandleLocksReactionSteps(t *testing.T) {
	var lockedDuringNext bool
	var locker *recordingLocker
	h, mem, locker, _ := newHandle(t, NewBoolean, nil, func(ctx context.Context, v domain.AnswerValue) {
		lockedDuringNext = locker.isLocked(testChannel)
	})
	if !locker.isLocked(testChannel) {
		t.Fatalf("boolean step must lock the channel")
	}
	prompt, _ := mem.Last(testChannel)
	h.Dispatch(context.Background(), ReactionEvent(transport.ReactionEvent{
		Channel: testChannel, Message: prompt.ID, User: user, Emoji: messages.Defaults().Get(messages.BooleanYes), Added: true,
	}))
	if lockedDuringNext {
		t.Fatalf("cleanup must release the lock before the continuation runs")
	}
	h.Cleanup(context.Background())
	if len(locker.events) != 2 {
		t.Fatalf("cleanup must run once, got %v", locker.events)
	}
}

func TestHandleTextStepsDoNotLock(t *testing.T) {
	_, _, locker, _ := newHandle(t, NewString, nil, nil)
	if locker.isLocked(testChannel) || len(locker.events) != 0 {
		t.Fatalf("free-text steps must not lock")
	}
}

func TestHandleReportsRejections(t *testing.T) {
	calls := 0
	h, _, _, notifier := newHandle(t, NewInteger, options(t, map[string]any{"min": 1, "max": 5}), func(ctx context.Context, v domain.AnswerValue) {
		calls++
	})
	out := h.Dispatch(context.Background(), MessageEvent(transport.MessageEvent{Channel: testChannel, Message: 9, Author: user, Content: "7"}))
	if out != Rejected || calls != 0 || h.Finished() {
		t.Fatalf("expected rejection without advance, outcome %v", out)
	}
	if len(notifier.reasons) != 1 {
		t.Fatalf("expected one error notice, got %v", notifier.reasons)
	}
	out = h.Dispatch(context.Background(), MessageEvent(transport.MessageEvent{Channel: testChannel, Message: 10, Author: user, Content: "3"}))
	if out != Done || calls != 1 {
		t.Fatalf("expected advance once, outcome %v calls %d", out, calls)
	}
}

func TestHandleCancel(t *testing.T) {
	calls := 0
	h, mem, locker, _ := newHandle(t, NewBoolean, nil, func(ctx context.Context, v domain.AnswerValue) { calls++ })
	h.Cancel(context.Background())
	if locker.isLocked(testChannel) {
		t.Fatalf("cancel must release the lock")
	}
	prompt, _ := mem.Last(testChannel)
	h.Dispatch(context.Background(), ReactionEvent(transport.ReactionEvent{
		Channel: testChannel, Message: prompt.ID, User: user, Emoji: messages.Defaults().Get(messages.BooleanYes), Added: true,
	}))
	if calls != 0 {
		t.Fatalf("cancelled step must not continue")
	}
}
