package steptype

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/messages"
)

// choices is the emoji to message table shared by both selection steps.
type choices struct {
	options  []domain.OptionPair
	useEmoji bool
}

func parseChoices(opts domain.Options) (choices, error) {
	pairs, err := opts.Pairs("options")
	if err != nil {
		return choices{}, err
	}
	if len(pairs) == 0 {
		return choices{}, errors.New("options must not be empty")
	}
	useEmoji, err := opts.Bool("emoji", false)
	if err != nil {
		return choices{}, err
	}
	return choices{options: pairs, useEmoji: useEmoji}, nil
}

func (c choices) lookup(emoji string) (string, bool) {
	for _, p := range c.options {
		if p.Key == emoji {
			if c.useEmoji {
				return p.Key, true
			}
			return p.Value, true
		}
	}
	return "", false
}

func (c choices) emojis() []string {
	out := make([]string, len(c.options))
	for i, p := range c.options {
		out[i] = p.Key
	}
	return out
}

func (c choices) describe(store *messages.Store, info string) string {
	lines := []string{store.Get(messages.SelectOptions)}
	for _, p := range c.options {
		lines = append(lines, store.Format(messages.SelectOptionFormat, "EMOTE", p.Key, "MESSAGE", p.Value))
	}
	return strings.Join(lines, "\n") + "\n\n" + info
}

// SingleSelect records the first option reacted with.
type SingleSelect struct {
	prompter
	choices
}

// NewSingleSelect reads the options object and the emoji flag.
func NewSingleSelect(env Env, opts domain.Options) (StepType, error) {
	c, err := parseChoices(opts)
	if err != nil {
		return nil, err
	}
	return &SingleSelect{prompter: prompter{env: env}, choices: c}, nil
}

func (s *SingleSelect) LocksChannel() bool { return true }

func (s *SingleSelect) Begin(ctx context.Context, prompt Prompt) error {
	body := s.describe(s.env.Messages, s.env.Messages.Get(messages.SelectOneInfo))
	return s.send(ctx, prompt, body, s.emojis()...)
}

func (s *SingleSelect) OnInput(ctx context.Context, ev Event) Result {
	r := s.promptReaction(ev)
	if r == nil || !r.Added {
		return pending()
	}
	value, ok := s.lookup(r.Emoji)
	s.unreact(ctx, r)
	if !ok {
		return pending()
	}
	return done(domain.StringAnswer(value))
}

func (s *SingleSelect) Cleanup(ctx context.Context) { s.cleanup(ctx) }

// MultiSelect toggles options with reactions until the end reaction.
type MultiSelect struct {
	prompter
	choices
	maxLength  int64
	allowEmpty bool
	selected   []string
}

// NewMultiSelect reads the options object, emoji, maximumLength and allowEmptyList.
func NewMultiSelect(env Env, opts domain.Options) (StepType, error) {
	c, err := parseChoices(opts)
	if err != nil {
		return nil, err
	}
	maxLength, err := opts.Int("maximumLength", int64(len(c.options)))
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
	return &MultiSelect{prompter: prompter{env: env}, choices: c, maxLength: maxLength, allowEmpty: allowEmpty}, nil
}

func (m *MultiSelect) LocksChannel() bool { return true }

func (m *MultiSelect) Begin(ctx context.Context, prompt Prompt) error {
	end := m.endEmoji()
	body := m.describe(m.env.Messages, m.env.Messages.Format(messages.SelectMultiInfo, "EMOTE", end))
	return m.send(ctx, prompt, body, append(m.emojis(), end)...)
}

func (m *MultiSelect) OnInput(ctx context.Context, ev Event) Result {
	r := m.promptReaction(ev)
	if r == nil {
		return pending()
	}
	if !r.Added {
		m.deselect(r.Emoji)
		return pending()
	}
	if r.Emoji == m.endEmoji() {
		if len(m.selected) == 0 && !m.allowEmpty {
			m.unreact(ctx, r)
			return reject(m.env.Messages.Get(messages.SelectMultiEmpty))
		}
		return done(domain.ListAnswer(m.values()))
	}
	if _, ok := m.lookup(r.Emoji); !ok {
		m.unreact(ctx, r)
		return pending()
	}
	if m.isSelected(r.Emoji) {
		return pending()
	}
	if int64(len(m.selected))+1 > m.maxLength {
		m.unreact(ctx, r)
		return reject(m.env.Messages.Format(messages.SelectMultiLength, "LENGTH", strconv.FormatInt(m.maxLength, 10)))
	}
	m.selected = append(m.selected, r.Emoji)
	return pending()
}

func (m *MultiSelect) Cleanup(ctx context.Context) { m.cleanup(ctx) }

// Selected returns the selected emojis in selection order.
func (m *MultiSelect) Selected() []string { return append([]string(nil), m.selected...) }

func (m *MultiSelect) endEmoji() string { return m.env.Messages.Get(messages.SelectMultiEnd) }

func (m *MultiSelect) isSelected(emoji string) bool {
	for _, e := range m.selected {
		if e == emoji {
			return true
		}
	}
	return false
}

func (m *MultiSelect) deselect(emoji string) {
	for i, e := range m.selected {
		if e == emoji {
			m.selected = append(m.selected[:i], m.selected[i+1:]...)
			return
		}
	}
}

func (m *MultiSelect) values() []string {
	out := make([]string, 0, len(m.selected))
	for _, e := range m.selected {
		v, _ := m.lookup(e)
		out = append(out, v)
	}
	return out
}
