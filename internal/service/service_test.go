package service

import (
	"context"
	"strings"
	"testing"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/messages"
	"github.com/spec-kit/ticket-bot/internal/notice"
	"github.com/spec-kit/ticket-bot/internal/repository"
	"github.com/spec-kit/ticket-bot/internal/steptype"
	"github.com/spec-kit/ticket-bot/internal/transport"
	apperrors "github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

type fixture struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	ticketSvc  *TicketService
	assignSvc  *AssignmentService
	catalog    *CatalogService
	mem        *transport.Memory
	published  []events.EventType
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		tickets:    repository.NewTicketRepository(),
		dispatcher: events.NewInMemoryDispatcher(nil),
		mem:        transport.NewMemory(),
	}
	for _, et := range events.MutationEvents {
		f.dispatcher.Subscribe(et, func(ctx context.Context, e events.Event) error {
			f.published = append(f.published, e.Type)
			return nil
		})
	}
	f.ticketSvc = NewTicketService(TicketDependencies{TicketRepo: f.tickets, Dispatcher: f.dispatcher})
	f.assignSvc = NewAssignmentService(AssignmentDependencies{TicketRepo: f.tickets, Dispatcher: f.dispatcher})
	f.catalog = NewCatalogService(CatalogDependencies{
		TypeRepo:   repository.NewTicketTypeRepository(),
		Registry:   steptype.NewBuiltinRegistry(),
		Dispatcher: f.dispatcher,
	})
	store := messages.Defaults()
	NewNotificationService(NotificationDependencies{
		Dispatcher: f.dispatcher,
		Notifier:   notice.New(f.mem, store, 0, nil),
		Transport:  f.mem,
		Messages:   store,
		TicketRepo: f.tickets,
		StepName:   f.catalog.StepTypeName,
	}).RegisterHandlers()
	return f
}

func TestAssignIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	if err := f.ticketSvc.CreateTicket(ctx, domain.NewTicket("t", 1, 100)); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, changed, err := f.assignSvc.Assign(ctx, 2, 100, 9)
	if err != nil || !changed {
		t.Fatalf("first assign: changed=%v err=%v", changed, err)
	}
	ticket, changed, err := f.assignSvc.Assign(ctx, 2, 100, 9)
	if err != nil || changed {
		t.Fatalf("second assign must be a no-op: changed=%v err=%v", changed, err)
	}
	if len(ticket.Assignees) != 1 {
		t.Fatalf("expected one assignee, got %v", ticket.Assignees)
	}
	_, changed, _ = f.assignSvc.Unassign(ctx, 2, 100, 77)
	if changed {
		t.Fatalf("unassigning a non-member must be a no-op")
	}
	ticket, changed, _ = f.assignSvc.Unassign(ctx, 2, 100, 9)
	if !changed || len(ticket.Assignees) != 0 {
		t.Fatalf("unassign failed")
	}
	want := []events.EventType{events.EventTicketCreated, events.EventTicketAssigned, events.EventTicketUnassigned}
	if len(f.published) != len(want) {
		t.Fatalf("unexpected events %v", f.published)
	}
	msgs := f.mem.Messages(100)
	if len(msgs) != 2 || !strings.Contains(msgs[0].Content.Title, "<@9>") {
		t.Fatalf("expected assign and unassign notices, got %+v", msgs)
	}
}

func TestToggleOpenPostsNoticeAndSummary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_ = f.ticketSvc.CreateTicket(ctx, domain.NewTicket("Printer", 1, 100))
	ticket, err := f.ticketSvc.ToggleOpen(ctx, 5, 100)
	if err != nil || ticket.Open {
		t.Fatalf("expected closed ticket, got %+v err=%v", ticket, err)
	}
	msgs := f.mem.Messages(100)
	if len(msgs) != 2 {
		t.Fatalf("expected notice and summary, got %d messages", len(msgs))
	}
	if msgs[0].Content.Title != "<@5> closed this ticket" {
		t.Fatalf("unexpected notice %q", msgs[0].Content.Title)
	}
	if _, changed, _ := f.ticketSvc.SetOpen(ctx, 5, 100, false); changed {
		t.Fatalf("setting the same state must not change anything")
	}
}

func TestMissingTicket(t *testing.T) {
	f := newFixture(t)
	if _, _, err := f.assignSvc.Assign(context.Background(), 1, 404, 2); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCatalogValidatesStepTypes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	bad := &domain.TicketType{Name: "Bug", Emoji: "🐛", Steps: []domain.StepDefinition{{Title: "Where", Type: "gps"}}}
	if err := f.catalog.SaveTicketType(ctx, 1, bad); !apperrors.HasCode(err, apperrors.CodeUnknownStepType) {
		t.Fatalf("expected unknown step type, got %v", err)
	}
	good := &domain.TicketType{Name: "Bug", Emoji: "🐛", Steps: []domain.StepDefinition{{Title: "Describe", Type: steptype.TypeString}}}
	if err := f.catalog.SaveTicketType(ctx, 1, good); err != nil {
		t.Fatalf("save: %v", err)
	}
	usable, _ := f.catalog.UsableTicketTypes(ctx)
	if len(usable) != 1 {
		t.Fatalf("expected one usable type")
	}
	if err := f.catalog.DeleteTicketType(ctx, 1, "🐛"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.catalog.GetTicketType(ctx, "🐛"); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected not found after delete")
	}
}
