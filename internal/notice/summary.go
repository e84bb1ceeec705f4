package notice

import (
	"strconv"
	"strings"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/messages"
	"github.com/spec-kit/ticket-bot/internal/transport"
)

// Summary renders a ticket for staff and for the completion message.
// stepName maps a step-type identifier to its display name.
func Summary(store *messages.Store, stepName func(string) string, t *domain.Ticket) transport.Content {
	open := store.Get(messages.DataOpenNo)
	if t.Open {
		open = store.Get(messages.DataOpenYes)
	}
	empty := store.Get(messages.ListEmptyFormat)

	steps := empty
	if len(t.Steps) > 0 {
		lines := make([]string, len(t.Steps))
		for i, s := range t.Steps {
			name := s.Type
			if stepName != nil {
				name = stepName(s.Type)
			}
			lines[i] = store.Format(messages.DataStep,
				"INDEX", strconv.Itoa(i+1),
				"STEPTITLE", s.Title,
				"STEPTYPE", name,
				"STEPANSWER", s.Value.String())
		}
		steps = strings.Join(lines, "\n")
	}

	assignees := empty
	if len(t.Assignees) > 0 {
		lines := make([]string, len(t.Assignees))
		for i, a := range t.Assignees {
			lines[i] = store.Format(messages.DataAssignee, "INDEX", strconv.Itoa(i+1), "NAME", transport.UserMention(a))
		}
		assignees = strings.Join(lines, "\n")
	}

	pairs := []string{
		"TITLE", t.Title,
		"AUTHOR", transport.UserMention(t.Author),
		"CHANNEL", transport.ChannelMention(t.Channel),
		"OPEN", open,
		"STEPS", steps,
		"ASSIGNEES", assignees,
	}
	return transport.Content{
		Title:       store.Format(messages.DataTitle, pairs...),
		Description: store.Format(messages.DataDescription, pairs...),
		Color:       store.Get(messages.ColorAccent),
	}
}
