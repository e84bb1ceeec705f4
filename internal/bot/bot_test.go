package bot

import (
	"context"
	"testing"

	"github.com/spec-kit/ticket-bot/internal/session"
	"github.com/spec-kit/ticket-bot/internal/transport"
)

type recorder struct {
	messages  []string
	reactions []string
}

func (r *recorder) Kind() string { return "recorder" }

func (r *recorder) HandleMessage(_ context.Context, ev transport.MessageEvent) {
	r.messages = append(r.messages, ev.Content)
}

func (r *recorder) HandleReaction(_ context.Context, ev transport.ReactionEvent) {
	r.reactions = append(r.reactions, ev.Emoji)
}

func (r *recorder) Cancel(context.Context) {}

func newBot(t *testing.T) (*Bot, *session.Manager, *transport.Memory, *recorder) {
	t.Helper()
	sessions := session.NewManager(nil)
	mem := transport.NewMemory()
	rec := &recorder{}
	if _, err := sessions.Acquire(1, rec); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	return New(Dependencies{Sessions: sessions, Transport: mem}), sessions, mem, rec
}

func TestMessagesReachActiveSession(t *testing.T) {
	b, _, _, rec := newBot(t)
	ctx := context.Background()
	user := transport.Member{ID: 2}

	_ = b.MessageReceived(ctx, transport.MessageEvent{Channel: 1, Message: 10, Author: user, Content: "hello"})
	_ = b.MessageReceived(ctx, transport.MessageEvent{Channel: 2, Message: 11, Author: user, Content: "elsewhere"})
	_ = b.MessageReceived(ctx, transport.MessageEvent{Channel: 1, Message: 12, Author: transport.Member{ID: 3, Bot: true}, Content: "bot"})
	_ = b.ReactionReceived(ctx, transport.ReactionEvent{Channel: 1, Message: 10, User: user, Emoji: "✅", Added: true})

	if len(rec.messages) != 1 || rec.messages[0] != "hello" {
		t.Fatalf("unexpected messages %v", rec.messages)
	}
	if len(rec.reactions) != 1 || rec.reactions[0] != "✅" {
		t.Fatalf("unexpected reactions %v", rec.reactions)
	}
}

func TestLockedChannelDeletesUserMessages(t *testing.T) {
	b, sessions, mem, rec := newBot(t)
	sessions.Lock(1)

	_ = b.MessageReceived(context.Background(), transport.MessageEvent{Channel: 1, Message: 42, Author: transport.Member{ID: 2}, Content: "typing"})
	if !mem.Deleted(42) {
		t.Fatalf("message in locked channel must be deleted")
	}
	if len(rec.messages) != 0 {
		t.Fatalf("suppressed message must not reach the session")
	}

	_ = b.ReactionReceived(context.Background(), transport.ReactionEvent{Channel: 1, Message: 1, User: transport.Member{ID: 2}, Emoji: "❌", Added: true})
	if len(rec.reactions) != 1 {
		t.Fatalf("reactions still flow while locked")
	}
}
