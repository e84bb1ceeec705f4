// Package commands parses prefixed chat commands and provisions the channels
// the ticket wizard and the management console run in.
package commands

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/auth"
	"github.com/spec-kit/ticket-bot/internal/config"
	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/manage"
	"github.com/spec-kit/ticket-bot/internal/messages"
	"github.com/spec-kit/ticket-bot/internal/notice"
	"github.com/spec-kit/ticket-bot/internal/service"
	"github.com/spec-kit/ticket-bot/internal/transport"
	"github.com/spec-kit/ticket-bot/internal/wizard"
)

const (
	commandTicket = "ticket"
	commandManage = "manage"
)

// Dependencies bundles the router's collaborators.
type Dependencies struct {
	Bot       config.BotConfig
	Policy    auth.ManagerPolicy
	Wizard    wizard.Dependencies
	Manage    manage.Dependencies
	Tickets   *service.TicketService
	Transport transport.Transport
	Messages  *messages.Store
	Notifier  *notice.Notifier
	Logger    *zap.Logger
}

// Router recognizes `<prefix>ticket` and `<prefix>ticket manage`.
type Router struct {
	deps   Dependencies
	logger *zap.Logger
}

// NewRouter constructs a Router.
func NewRouter(deps Dependencies) *Router {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{deps: deps, logger: logger}
}

// Command is a parsed chat command.
type Command struct {
	Name string
	Args []string
}

// Parse splits content into a command when it starts with prefix.
func Parse(prefix, content string) (Command, bool) {
	content = strings.TrimSpace(content)
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return Command{}, false
	}
	fields := strings.Fields(strings.TrimPrefix(content, prefix))
	if len(fields) == 0 {
		return Command{}, false
	}
	return Command{Name: strings.ToLower(fields[0]), Args: fields[1:]}, true
}

// Handle runs ev as a command. The bool reports whether ev was a command the
// router consumed.
func (r *Router) Handle(ctx context.Context, ev transport.MessageEvent) (bool, error) {
	if ev.Author.Bot {
		return false, nil
	}
	cmd, ok := Parse(r.deps.Bot.Prefix, ev.Content)
	if !ok || cmd.Name != commandTicket {
		return false, nil
	}
	if r.deps.Bot.BotCommandsChannel != 0 && int64(ev.Channel) != r.deps.Bot.BotCommandsChannel {
		return false, nil
	}
	if len(cmd.Args) > 0 && strings.EqualFold(cmd.Args[0], commandManage) {
		return true, r.manageTicket(ctx, ev)
	}
	if len(cmd.Args) > 0 {
		return false, nil
	}
	return true, r.openTicket(ctx, ev)
}

func (r *Router) openTicket(ctx context.Context, ev transport.MessageEvent) error {
	author := ev.Author
	count, err := r.deps.Tickets.CountByAuthor(ctx, author.ID)
	if err != nil {
		return err
	}
	store := r.deps.Messages
	grants := []transport.PermissionGrant{{Member: author.ID, Allow: r.deps.Bot.Permissions}}
	for _, role := range r.deps.Bot.AllowedRoles {
		grants = append(grants, transport.PermissionGrant{Role: role, Allow: r.deps.Bot.Permissions})
	}
	req := transport.ChannelRequest{
		Name: channelName(store.Format(messages.ChannelFormat,
			"NAMEDISCRIM", author.Name+author.Discriminator,
			"TICKETDISCRIM", strconv.Itoa(count+1))),
		Topic: store.Format(messages.ChannelTopic,
			"NAME", author.Name,
			"NICKNAME", author.DisplayNickname(),
			"DISCRIM", author.Discriminator),
		Category:     domain.ChannelID(r.deps.Bot.TicketCategory),
		DenyEveryone: true,
		Grants:       grants,
	}
	channel, err := r.deps.Transport.CreateChannel(ctx, req)
	if err != nil {
		return err
	}
	r.logger.Info("ticket channel created",
		zap.Int64("channel", int64(channel)),
		zap.Int64("author", int64(author.ID)),
		zap.String("name", req.Name))
	_, err = wizard.Start(ctx, r.deps.Wizard, channel, author)
	return err
}

func (r *Router) manageTicket(ctx context.Context, ev transport.MessageEvent) error {
	staff := ev.Author
	if !r.deps.Policy.CanManage(staff) {
		r.logger.Info("manage command denied", zap.Int64("member", int64(staff.ID)))
		_, err := r.deps.Notifier.Error(ctx, ev.Channel, r.deps.Messages.Get(messages.ManagePermissionError))
		return err
	}
	req := transport.ChannelRequest{
		Name:         channelName(r.deps.Messages.Format(messages.ManageFormat, "NAMEDISCRIM", staff.Name+staff.Discriminator)),
		Category:     domain.ChannelID(r.deps.Bot.TicketCategory),
		DenyEveryone: true,
		Grants:       []transport.PermissionGrant{{Member: staff.ID, Allow: r.deps.Bot.Permissions}},
	}
	channel, err := r.deps.Transport.CreateChannel(ctx, req)
	if err != nil {
		return err
	}
	_, err = manage.Start(ctx, r.deps.Manage, channel, staff)
	return err
}

// channelName lowercases name and joins its words with dashes.
func channelName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}
