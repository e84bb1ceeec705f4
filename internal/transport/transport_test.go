package transport

import (
	"context"
	"testing"

	"github.com/spec-kit/ticket-bot/internal/domain"
)

func TestMentionParsing(t *testing.T) {
	event := MessageEvent{Content: "assign <@12> and <@!34> in <#99>"}
	users := MentionedUsers(event)
	if len(users) != 2 || users[0] != 12 || users[1] != 34 {
		t.Fatalf("unexpected users %v", users)
	}
	channels := MentionedChannels(event)
	if len(channels) != 1 || channels[0] != 99 {
		t.Fatalf("unexpected channels %v", channels)
	}
}

func TestMentionFieldsTakePrecedence(t *testing.T) {
	event := MessageEvent{Content: "<@1>", MentionedUsers: []domain.UserID{7}}
	if users := MentionedUsers(event); len(users) != 1 || users[0] != 7 {
		t.Fatalf("unexpected users %v", users)
	}
}

func TestMemoryRecordsMessages(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	id, err := mem.SendMessage(ctx, 10, Content{Title: "hello"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := mem.AddReaction(ctx, 10, id, "✅"); err != nil {
		t.Fatalf("react: %v", err)
	}
	if err := mem.EditMessage(ctx, 10, id, Content{Title: "edited"}); err != nil {
		t.Fatalf("edit: %v", err)
	}
	last, ok := mem.Last(10)
	if !ok || last.Content.Title != "edited" || last.Edits != 1 || len(last.Reactions) != 1 {
		t.Fatalf("unexpected last message %+v", last)
	}
	_ = mem.DeleteMessage(ctx, 10, id)
	if _, ok := mem.Last(10); ok {
		t.Fatalf("deleted message still listed")
	}
	if !mem.Deleted(id) {
		t.Fatalf("expected deletion recorded")
	}
}

func TestNewGatewayRequiresBaseURL(t *testing.T) {
	if _, err := NewGateway(GatewayOptions{}); err == nil {
		t.Fatalf("expected error")
	}
}
