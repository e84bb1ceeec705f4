package steptype

import (
	"context"
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/messages"
)

// String accepts free text of at most maximumLength characters.
type String struct {
	prompter
	maxLength int64
}

// NewString reads the maximumLength option; unset means unbounded.
func NewString(env Env, opts domain.Options) (StepType, error) {
	maxLength, err := opts.Int("maximumLength", math.MaxInt64)
	if err != nil {
		return nil, err
	}
	if maxLength < 1 {
		return nil, errMaximumLength
	}
	return &String{prompter: prompter{env: env}, maxLength: maxLength}, nil
}

func (s *String) LocksChannel() bool { return false }

func (s *String) Begin(ctx context.Context, prompt Prompt) error {
	return s.send(ctx, prompt, "")
}

func (s *String) OnInput(ctx context.Context, ev Event) Result {
	m := s.userMessage(ev)
	if m == nil {
		return pending()
	}
	text := m.Content
	if text == "" {
		return pending()
	}
	if int64(utf8.RuneCountInString(text)) > s.maxLength {
		s.discard(ctx, m.Message, false)
		return reject(s.env.Messages.Format(messages.StringLength, "LENGTH", strconv.FormatInt(s.maxLength, 10)))
	}
	s.consume(m.Message)
	return done(domain.StringAnswer(text))
}

func (s *String) Cleanup(ctx context.Context) { s.cleanup(ctx) }
