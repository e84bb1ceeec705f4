package steptype

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/messages"
)

var errMaximumLength = errors.New("maximumLength must be positive")

// List accumulates one item per message until the end reaction.
type List struct {
	prompter
	question   Prompt
	maxLength  int64
	allowEmpty bool
	items      []string
}

// NewList reads the maximumLength and allowEmptyList options.
func NewList(env Env, opts domain.Options) (StepType, error) {
	maxLength, err := opts.Int("maximumLength", math.MaxInt64)
	if err != nil {
		return nil, err
	}
	if maxLength < 1 {
		return nil, errMaximumLength
	}
	allowEmpty, err := opts.Bool("allowEmptyList", true)
	if err != nil {
		return nil, err
	}
	return &List{prompter: prompter{env: env}, maxLength: maxLength, allowEmpty: allowEmpty}, nil
}

func (l *List) LocksChannel() bool { return false }

func (l *List) Begin(ctx context.Context, prompt Prompt) error {
	l.question = prompt
	return l.send(ctx, prompt, l.body(), l.deleteLastEmoji(), l.endEmoji())
}

func (l *List) OnInput(ctx context.Context, ev Event) Result {
	if m := l.userMessage(ev); m != nil {
		text := m.Content
		if text == "" {
			return pending()
		}
		if int64(len(l.items))+1 > l.maxLength {
			l.discard(ctx, m.Message, false)
			return reject(l.env.Messages.Format(messages.ListLength, "LENGTH", strconv.FormatInt(l.maxLength, 10)))
		}
		l.items = append(l.items, text)
		l.discard(ctx, m.Message, false)
		l.edit(ctx, l.question, l.body())
		return pending()
	}
	r := l.promptReaction(ev)
	if r == nil || !r.Added {
		return pending()
	}
	switch r.Emoji {
	case l.endEmoji():
		l.unreact(ctx, r)
		if len(l.items) == 0 && !l.allowEmpty {
			return reject(l.env.Messages.Get(messages.ListEmpty))
		}
		return done(domain.ListAnswer(l.items))
	case l.deleteLastEmoji():
		l.unreact(ctx, r)
		if len(l.items) == 0 {
			return reject(l.env.Messages.Get(messages.ListDeleteLastEmpty))
		}
		l.items = l.items[:len(l.items)-1]
		l.edit(ctx, l.question, l.body())
	}
	return pending()
}

func (l *List) Cleanup(ctx context.Context) { l.cleanup(ctx) }

// Items returns the collected items.
func (l *List) Items() []string { return append([]string(nil), l.items...) }

func (l *List) endEmoji() string { return l.env.Messages.Get(messages.ListEndEmoji) }

func (l *List) deleteLastEmoji() string { return l.env.Messages.Get(messages.ListDeleteLastEmoji) }

func (l *List) body() string {
	store := l.env.Messages
	info := store.Format(messages.ListInfo, "DELETE_LAST_EMOJI", l.deleteLastEmoji(), "END_EMOJI", l.endEmoji())
	items := store.Get(messages.ListEmptyFormat)
	if len(l.items) > 0 {
		lines := make([]string, len(l.items))
		for i, item := range l.items {
			lines[i] = store.Format(messages.ListItemFormat, "INDEX", strconv.Itoa(i+1), "ITEM", item)
		}
		items = strings.Join(lines, "\n")
	}
	return info + "\n\n" + store.Format(messages.ListItemsFormat, "ITEMS", items)
}
