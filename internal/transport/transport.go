package transport

import (
	"context"
	"regexp"
	"strconv"

	"github.com/spec-kit/ticket-bot/internal/domain"
)

// Content is one rendered chat message. Color is a #rrggbb accent, empty for plain.
type Content struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

// Member describes the author of an inbound event.
type Member struct {
	ID            domain.UserID `json:"id"`
	Name          string        `json:"name"`
	Nickname      string        `json:"nickname"`
	Discriminator string        `json:"discriminator"`
	Roles         []string      `json:"roles"`
	Bot           bool          `json:"bot"`
}

// DisplayNickname returns the nickname or, when unset, the name.
func (m Member) DisplayNickname() string {
	if m.Nickname != "" {
		return m.Nickname
	}
	return m.Name
}

// HasRole reports whether the member carries a role with the given name.
func (m Member) HasRole(name string) bool {
	for _, r := range m.Roles {
		if r == name {
			return true
		}
	}
	return false
}

// MessageEvent is an inbound messageReceived event.
type MessageEvent struct {
	Channel           domain.ChannelID   `json:"channel"`
	Message           domain.MessageID   `json:"message"`
	Author            Member             `json:"author"`
	Content           string             `json:"content"`
	MentionedUsers    []domain.UserID    `json:"mentionedUsers,omitempty"`
	MentionedChannels []domain.ChannelID `json:"mentionedChannels,omitempty"`
}

// ReactionEvent is an inbound reactionAdded or reactionRemoved event.
type ReactionEvent struct {
	Channel domain.ChannelID `json:"channel"`
	Message domain.MessageID `json:"message"`
	User    Member           `json:"user"`
	Emoji   string           `json:"emoji"`
	Added   bool             `json:"added"`
}

// PermissionGrant allows a member or role a set of channel permissions.
type PermissionGrant struct {
	Member domain.UserID `json:"member,omitempty"`
	Role   int64         `json:"role,omitempty"`
	Allow  []string      `json:"allow"`
}

// ChannelRequest describes a channel to provision.
type ChannelRequest struct {
	Name         string            `json:"name"`
	Topic        string            `json:"topic,omitempty"`
	Category     domain.ChannelID  `json:"category,omitempty"`
	DenyEveryone bool              `json:"denyEveryone"`
	Grants       []PermissionGrant `json:"grants,omitempty"`
}

// Transport is the outbound side of the chat platform.
type Transport interface {
	SendMessage(ctx context.Context, channel domain.ChannelID, content Content) (domain.MessageID, error)
	EditMessage(ctx context.Context, channel domain.ChannelID, message domain.MessageID, content Content) error
	DeleteMessage(ctx context.Context, channel domain.ChannelID, message domain.MessageID) error
	AddReaction(ctx context.Context, channel domain.ChannelID, message domain.MessageID, emoji string) error
	RemoveReaction(ctx context.Context, channel domain.ChannelID, message domain.MessageID, emoji string, user domain.UserID) error
	ResolveMentionedUsers(ctx context.Context, event MessageEvent) ([]domain.UserID, error)
	ResolveMentionedChannels(ctx context.Context, event MessageEvent) ([]domain.ChannelID, error)
	CreateChannel(ctx context.Context, req ChannelRequest) (domain.ChannelID, error)
	DeleteChannel(ctx context.Context, channel domain.ChannelID) error
}

var (
	userMention    = regexp.MustCompile(`<@!?(\d+)>`)
	channelMention = regexp.MustCompile(`<#(\d+)>`)
)

// MentionedUsers returns the event's user mentions, parsing <@id> from the
// content when the platform did not supply them.
func MentionedUsers(event MessageEvent) []domain.UserID {
	if len(event.MentionedUsers) > 0 {
		return append([]domain.UserID(nil), event.MentionedUsers...)
	}
	var out []domain.UserID
	for _, m := range userMention.FindAllStringSubmatch(event.Content, -1) {
		if id, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			out = append(out, domain.UserID(id))
		}
	}
	return out
}

// MentionedChannels returns the event's channel mentions, parsing <#id> from
// the content when the platform did not supply them.
func MentionedChannels(event MessageEvent) []domain.ChannelID {
	if len(event.MentionedChannels) > 0 {
		return append([]domain.ChannelID(nil), event.MentionedChannels...)
	}
	var out []domain.ChannelID
	for _, m := range channelMention.FindAllStringSubmatch(event.Content, -1) {
		if id, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			out = append(out, domain.ChannelID(id))
		}
	}
	return out
}

// UserMention formats a user mention.
func UserMention(id domain.UserID) string { return "<@" + id.String() + ">" }

// ChannelMention formats a channel mention.
func ChannelMention(id domain.ChannelID) string { return "<#" + id.String() + ">" }
