// Package manage implements the staff console used to inspect a ticket,
// open or close it and change its assignees.
package manage

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/messages"
	"github.com/spec-kit/ticket-bot/internal/notice"
	"github.com/spec-kit/ticket-bot/internal/observability"
	"github.com/spec-kit/ticket-bot/internal/service"
	"github.com/spec-kit/ticket-bot/internal/session"
	"github.com/spec-kit/ticket-bot/internal/transport"
	apperrors "github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

// Kind identifies console sessions.
const Kind = "ticket-manage"

// State is the console's current view.
type State string

const (
	StateSelectingTicket  State = "selecting_ticket"
	StateShowingTicket    State = "showing_ticket"
	StateShowingAssignees State = "showing_assignees"
	StateAssigning        State = "assigning"
	StateUnassigning      State = "unassigning"
	StateClosed           State = "closed"
)

// Dependencies bundles the console's collaborators.
type Dependencies struct {
	Sessions    *session.Manager
	Tickets     *service.TicketService
	Assignments *service.AssignmentService
	Catalog     *service.CatalogService
	Transport   transport.Transport
	Messages    *messages.Store
	Notifier    *notice.Notifier
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// Console is the session handler of one management channel. Only the staff
// member who opened it can drive it.
type Console struct {
	deps    Dependencies
	channel domain.ChannelID
	staff   transport.Member
	session uuid.UUID
	logger  *zap.Logger

	mu     sync.Mutex
	state  State
	target domain.ChannelID
	view   domain.MessageID
}

// Start binds a console to the management channel and asks which ticket to manage.
func Start(ctx context.Context, deps Dependencies, channel domain.ChannelID, staff transport.Member) (*Console, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Console{
		deps:    deps,
		channel: channel,
		staff:   staff,
		logger:  logger.With(zap.Int64("channel", int64(channel)), zap.Int64("staff", int64(staff.ID))),
		state:   StateSelectingTicket,
	}
	sess, err := deps.Sessions.Acquire(channel, c)
	if err != nil {
		return nil, err
	}
	c.session = sess.ID
	deps.Metrics.RecordSession(Kind, "started")

	store := deps.Messages
	if _, err := deps.Notifier.Info(ctx, channel, store.Get(messages.ManageSelectTitle), store.Get(messages.ManageSelectDesc)); err != nil {
		deps.Sessions.Release(channel, c.session)
		return nil, err
	}
	return c, nil
}

// Kind implements session.Handler.
func (c *Console) Kind() string { return Kind }

// State returns the current view.
func (c *Console) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Target returns the ticket channel being managed, zero before selection.
func (c *Console) Target() domain.ChannelID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

// HandleMessage reads a ticket channel mention or assignee mentions.
func (c *Console) HandleMessage(ctx context.Context, ev transport.MessageEvent) {
	if ev.Author.ID != c.staff.ID {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StateSelectingTicket:
		c.selectTicket(ctx, ev)
	case StateAssigning, StateUnassigning:
		c.changeAssignees(ctx, ev)
	}
}

// HandleReaction reacts to the buttons of the current view.
func (c *Console) HandleReaction(ctx context.Context, ev transport.ReactionEvent) {
	if !ev.Added || ev.User.ID != c.staff.ID {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.view == 0 || ev.Message != c.view {
		return
	}
	if err := c.deps.Transport.RemoveReaction(ctx, c.channel, ev.Message, ev.Emoji, ev.User.ID); err != nil {
		c.logger.Debug("remove reaction", zap.Error(err))
	}

	store := c.deps.Messages
	var err error
	switch c.state {
	case StateShowingTicket:
		switch ev.Emoji {
		case store.Get(messages.ManageOpenEmoji), store.Get(messages.ManageCloseEmoji):
			err = c.toggle(ctx, ev.Emoji)
		case store.Get(messages.ManageAssigneesEmoji):
			err = c.showAssignees(ctx)
		case store.Get(messages.ManageExitEmoji):
			c.exit(ctx)
		}
	case StateShowingAssignees, StateAssigning, StateUnassigning:
		switch ev.Emoji {
		case store.Get(messages.ManageAssigneeAdd):
			c.state = StateAssigning
			_, err = c.deps.Notifier.Info(ctx, c.channel, store.Get(messages.ManageAssignPrompt), "")
		case store.Get(messages.ManageAssigneeRemove):
			c.state = StateUnassigning
			_, err = c.deps.Notifier.Info(ctx, c.channel, store.Get(messages.ManageUnassignPrompt), "")
		case store.Get(messages.ManageAssigneeExit):
			err = c.showTicket(ctx)
		}
	}
	if err != nil {
		c.fail(ctx, err)
	}
}

// Cancel ends the console without deleting its channel, used by the idle sweeper.
func (c *Console) Cancel(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return
	}
	c.state = StateClosed
	c.deps.Metrics.RecordSession(Kind, "cancelled")
	store := c.deps.Messages
	_, _ = c.deps.Notifier.Info(ctx, c.channel, store.Get(messages.SessionExpired), store.Get(messages.SessionExpiredDesc))
}

func (c *Console) selectTicket(ctx context.Context, ev transport.MessageEvent) {
	channels, err := c.deps.Transport.ResolveMentionedChannels(ctx, ev)
	if err != nil || len(channels) == 0 {
		c.selectError(ctx)
		return
	}
	if _, err := c.deps.Tickets.GetTicket(ctx, channels[0]); err != nil {
		if !apperrors.HasCode(err, apperrors.CodeNotFound) {
			c.logger.Warn("load ticket", zap.Error(err))
		}
		c.selectError(ctx)
		return
	}
	c.target = channels[0]
	c.logger.Info("managing ticket", zap.Int64("ticket_channel", int64(c.target)))
	if err := c.showTicket(ctx); err != nil {
		c.fail(ctx, err)
	}
}

func (c *Console) selectError(ctx context.Context) {
	_, _ = c.deps.Notifier.Error(ctx, c.channel, c.deps.Messages.Get(messages.ManageSelectError))
}

func (c *Console) changeAssignees(ctx context.Context, ev transport.MessageEvent) {
	users, err := c.deps.Transport.ResolveMentionedUsers(ctx, ev)
	if err != nil || len(users) == 0 {
		_, _ = c.deps.Notifier.Error(ctx, c.channel, c.deps.Messages.Get(messages.ManageMentionInvalid))
		return
	}
	apply := c.deps.Assignments.Assign
	if c.state == StateUnassigning {
		apply = c.deps.Assignments.Unassign
	}
	var (
		ticket  *domain.Ticket
		changed bool
	)
	for _, user := range users {
		t, ok, err := apply(ctx, c.staff.ID, c.target, user)
		if err != nil {
			c.fail(ctx, err)
			return
		}
		ticket = t
		changed = changed || ok
	}
	if changed {
		summary := notice.Summary(c.deps.Messages, c.deps.Catalog.StepTypeName, ticket)
		if _, err := c.deps.Transport.SendMessage(ctx, c.target, summary); err != nil {
			c.logger.Warn("send ticket summary", zap.Error(err))
		}
	}
	if err := c.showAssignees(ctx); err != nil {
		c.fail(ctx, err)
	}
}

func (c *Console) toggle(ctx context.Context, emoji string) error {
	ticket, err := c.deps.Tickets.GetTicket(ctx, c.target)
	if err != nil {
		return err
	}
	// A stale button (close on a closed ticket) only redraws the view.
	want := emoji == c.deps.Messages.Get(messages.ManageOpenEmoji)
	if ticket.Open != want {
		if _, err := c.deps.Tickets.ToggleOpen(ctx, c.staff.ID, c.target); err != nil {
			return err
		}
	}
	return c.showTicket(ctx)
}

func (c *Console) showTicket(ctx context.Context) error {
	ticket, err := c.deps.Tickets.GetTicket(ctx, c.target)
	if err != nil {
		return err
	}
	store := c.deps.Messages
	toggle := store.Get(messages.ManageCloseEmoji)
	if !ticket.Open {
		toggle = store.Get(messages.ManageOpenEmoji)
	}
	content := notice.Summary(store, c.deps.Catalog.StepTypeName, ticket)
	if err := c.render(ctx, content, toggle, store.Get(messages.ManageAssigneesEmoji), store.Get(messages.ManageExitEmoji)); err != nil {
		return err
	}
	c.state = StateShowingTicket
	return nil
}

func (c *Console) showAssignees(ctx context.Context) error {
	ticket, err := c.deps.Tickets.GetTicket(ctx, c.target)
	if err != nil {
		return err
	}
	store := c.deps.Messages
	content := transport.Content{
		Title:       store.Get(messages.DataAssigneesTitle),
		Description: assigneeList(store, ticket.Assignees),
		Color:       store.Get(messages.ColorAccent),
	}
	if err := c.render(ctx, content, store.Get(messages.ManageAssigneeAdd), store.Get(messages.ManageAssigneeRemove), store.Get(messages.ManageAssigneeExit)); err != nil {
		return err
	}
	c.state = StateShowingAssignees
	return nil
}

// render replaces the current view with content and its reaction buttons.
func (c *Console) render(ctx context.Context, content transport.Content, buttons ...string) error {
	if c.view != 0 {
		if err := c.deps.Transport.DeleteMessage(ctx, c.channel, c.view); err != nil {
			c.logger.Debug("delete view", zap.Error(err))
		}
		c.view = 0
	}
	id, err := c.deps.Transport.SendMessage(ctx, c.channel, content)
	if err != nil {
		return err
	}
	c.view = id
	for _, b := range buttons {
		if err := c.deps.Transport.AddReaction(ctx, c.channel, id, b); err != nil {
			return err
		}
	}
	return nil
}

func (c *Console) exit(ctx context.Context) {
	c.state = StateClosed
	c.view = 0
	c.deps.Sessions.Release(c.channel, c.session)
	c.deps.Metrics.RecordSession(Kind, "completed")
	if err := c.deps.Transport.DeleteChannel(ctx, c.channel); err != nil {
		c.logger.Warn("delete management channel", zap.Error(err))
	}
}

func (c *Console) fail(ctx context.Context, err error) {
	c.logger.Error("management console failed", zap.String("state", string(c.state)), zap.Error(err))
	if domainErr := apperrors.ToDomainError(err); domainErr.Code != apperrors.CodeInternal {
		_, _ = c.deps.Notifier.Error(ctx, c.channel, domainErr.Message)
	}
}

func assigneeList(store *messages.Store, assignees []domain.UserID) string {
	if len(assignees) == 0 {
		return store.Get(messages.ListEmptyFormat)
	}
	lines := make([]string, len(assignees))
	for i, a := range assignees {
		lines[i] = store.Format(messages.DataAssignee, "INDEX", strconv.Itoa(i+1), "NAME", transport.UserMention(a))
	}
	return strings.Join(lines, "\n")
}
