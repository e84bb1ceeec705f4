package manage

import (
	"context"
	"testing"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/messages"
	"github.com/spec-kit/ticket-bot/internal/notice"
	"github.com/spec-kit/ticket-bot/internal/repository"
	"github.com/spec-kit/ticket-bot/internal/service"
	"github.com/spec-kit/ticket-bot/internal/session"
	"github.com/spec-kit/ticket-bot/internal/steptype"
	"github.com/spec-kit/ticket-bot/internal/transport"
)

const (
	manageChannel domain.ChannelID = 900
	ticketChannel domain.ChannelID = 901
)

var staff = transport.Member{ID: 3, Name: "bob", Roles: []string{"Ticket Bot Manager"}}

type fixture struct {
	t       *testing.T
	mem     *transport.Memory
	store   *messages.Store
	deps    Dependencies
	tickets repository.TicketRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	mem := transport.NewMemory()
	store := messages.Defaults()
	dispatcher := events.NewInMemoryDispatcher(nil)
	tickets := repository.NewTicketRepository()
	ticket := domain.NewTicket("Printer", 7, ticketChannel)
	ticket.AddAnswer(domain.StepAnswer{Title: "Describe issue", Type: steptype.TypeString, Value: domain.StringAnswer("on fire")})
	if err := tickets.Create(ctx, ticket); err != nil {
		t.Fatalf("seed ticket: %v", err)
	}
	notifier := notice.New(mem, store, 0, nil)
	catalog := service.NewCatalogService(service.CatalogDependencies{
		TypeRepo: repository.NewTicketTypeRepository(),
		Registry: steptype.NewBuiltinRegistry(),
	})
	service.NewNotificationService(service.NotificationDependencies{
		Dispatcher: dispatcher,
		Notifier:   notifier,
		Transport:  mem,
		Messages:   store,
		TicketRepo: tickets,
		StepName:   catalog.StepTypeName,
	}).RegisterHandlers()

	deps := Dependencies{
		Sessions:    session.NewManager(nil),
		Tickets:     service.NewTicketService(service.TicketDependencies{TicketRepo: tickets, Dispatcher: dispatcher}),
		Assignments: service.NewAssignmentService(service.AssignmentDependencies{TicketRepo: tickets, Dispatcher: dispatcher}),
		Catalog:     catalog,
		Transport:   mem,
		Messages:    store,
		Notifier:    notifier,
	}
	return &fixture{t: t, mem: mem, store: store, deps: deps, tickets: tickets}
}

func (f *fixture) start() *Console {
	f.t.Helper()
	c, err := Start(context.Background(), f.deps, manageChannel, staff)
	if err != nil {
		f.t.Fatalf("start: %v", err)
	}
	return c
}

func (f *fixture) say(c *Console, text string) {
	c.HandleMessage(context.Background(), transport.MessageEvent{Channel: manageChannel, Message: 1, Author: staff, Content: text})
}

func (f *fixture) press(c *Console, key string) {
	c.mu.Lock()
	view := c.view
	c.mu.Unlock()
	c.HandleReaction(context.Background(), transport.ReactionEvent{
		Channel: manageChannel,
		Message: view,
		User:    staff,
		Emoji:   f.store.Get(key),
		Added:   true,
	})
}

func (f *fixture) ticket() *domain.Ticket {
	f.t.Helper()
	ticket, err := f.tickets.GetByChannel(context.Background(), ticketChannel)
	if err != nil {
		f.t.Fatalf("load ticket: %v", err)
	}
	return ticket
}

func TestSelectRejectsUnknownChannel(t *testing.T) {
	f := newFixture(t)
	c := f.start()

	f.say(c, "no mention here")
	f.say(c, "<#12345>")
	if c.State() != StateSelectingTicket {
		t.Fatalf("expected to keep selecting, got %s", c.State())
	}
	msgs := f.mem.Messages(manageChannel)
	errorsSeen := 0
	for _, m := range msgs {
		if m.Content.Title == f.store.Get(messages.StepErrorTitle) && m.Content.Description == f.store.Get(messages.ManageSelectError) {
			errorsSeen++
		}
	}
	if errorsSeen != 2 {
		t.Fatalf("expected two select errors, got %d", errorsSeen)
	}
}

func TestToggleOpenPostsNoticeInTicketChannel(t *testing.T) {
	f := newFixture(t)
	c := f.start()
	f.say(c, transport.ChannelMention(ticketChannel))
	if c.State() != StateShowingTicket || c.Target() != ticketChannel {
		t.Fatalf("expected ticket view, got %s", c.State())
	}
	view, _ := f.mem.Last(manageChannel)
	if len(view.Reactions) != 3 || view.Reactions[0] != f.store.Get(messages.ManageCloseEmoji) {
		t.Fatalf("open ticket must offer close, got %v", view.Reactions)
	}

	f.press(c, messages.ManageCloseEmoji)
	if f.ticket().Open {
		t.Fatalf("ticket must be closed")
	}
	view, _ = f.mem.Last(manageChannel)
	if view.Reactions[0] != f.store.Get(messages.ManageOpenEmoji) {
		t.Fatalf("closed ticket must offer open, got %v", view.Reactions)
	}
	posted := f.mem.Messages(ticketChannel)
	if len(posted) != 2 {
		t.Fatalf("expected notice and summary in ticket channel, got %d", len(posted))
	}
	want := f.store.Format(messages.ManageTitleClose, "USER", transport.UserMention(staff.ID))
	if posted[0].Content.Title != want {
		t.Fatalf("expected %q, got %q", want, posted[0].Content.Title)
	}

	f.press(c, messages.ManageOpenEmoji)
	if !f.ticket().Open {
		t.Fatalf("ticket must be reopened")
	}
}

func TestAssigneesAddRemove(t *testing.T) {
	f := newFixture(t)
	c := f.start()
	f.say(c, transport.ChannelMention(ticketChannel))
	f.press(c, messages.ManageAssigneesEmoji)
	if c.State() != StateShowingAssignees {
		t.Fatalf("expected assignee view, got %s", c.State())
	}

	f.press(c, messages.ManageAssigneeAdd)
	f.say(c, "nobody")
	if c.State() != StateAssigning {
		t.Fatalf("invalid mention must keep the prompt, got %s", c.State())
	}
	f.say(c, "<@11> <@12>")
	f.say(c, "<@11>")
	if got := f.ticket().Assignees; len(got) != 2 || got[0] != 11 || got[1] != 12 {
		t.Fatalf("unexpected assignees %v", got)
	}

	f.press(c, messages.ManageAssigneeRemove)
	f.say(c, "<@11> <@99>")
	if got := f.ticket().Assignees; len(got) != 1 || got[0] != 12 {
		t.Fatalf("unexpected assignees after removal %v", got)
	}

	f.press(c, messages.ManageAssigneeExit)
	if c.State() != StateShowingTicket {
		t.Fatalf("exit must return to the ticket view, got %s", c.State())
	}
}

func TestExitDeletesChannelAndReleasesSession(t *testing.T) {
	f := newFixture(t)
	c := f.start()
	f.say(c, transport.ChannelMention(ticketChannel))
	f.press(c, messages.ManageExitEmoji)

	if c.State() != StateClosed {
		t.Fatalf("expected closed, got %s", c.State())
	}
	if _, ok := f.deps.Sessions.Active(manageChannel); ok {
		t.Fatalf("session must be released")
	}
	deleted := f.mem.DeletedChannels()
	if len(deleted) != 1 || deleted[0] != manageChannel {
		t.Fatalf("expected management channel deleted, got %v", deleted)
	}
}

func TestOtherMembersAreIgnored(t *testing.T) {
	f := newFixture(t)
	c := f.start()
	stranger := transport.Member{ID: 42}
	c.HandleMessage(context.Background(), transport.MessageEvent{Channel: manageChannel, Author: stranger, Content: transport.ChannelMention(ticketChannel)})
	if c.State() != StateSelectingTicket {
		t.Fatalf("stranger must not drive the console, got %s", c.State())
	}
}
