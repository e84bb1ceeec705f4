package events

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPublishContinuesAfterHandlerError(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	var calls []string
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		calls = append(calls, "first")
		return errors.New("boom")
	})
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventTicketAssigned, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})
	if err := d.Publish(context.Background(), Event{Type: EventTicketCreated}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
		t.Fatalf("unexpected calls %v", calls)
	}
}

func TestPublishStampsIDAndTimestamp(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	var got []Event
	SubscribeAll(d, MutationEvents, func(_ context.Context, e Event) error {
		got = append(got, e)
		return nil
	})
	_ = d.Publish(context.Background(), Event{Type: EventTicketTypeSaved})
	_ = d.Publish(context.Background(), Event{Type: EventTicketUnassigned, ID: "fixed"})
	if len(got) != 2 {
		t.Fatalf("expected both mutation events, got %v", got)
	}
	if got[0].ID == "" || got[0].Timestamp.IsZero() || got[0].Timestamp.Location() != time.UTC {
		t.Fatalf("event not stamped: %+v", got[0])
	}
	if got[1].ID != "fixed" {
		t.Fatalf("preset id must be kept, got %q", got[1].ID)
	}
}
