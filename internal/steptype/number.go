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

// Number asks for an integer or a double within an inclusive range.
type Number[T int64 | float64] struct {
	prompter
	min, max T
	parse    func(string) (T, error)
	format   func(T) string
	answer   func(T) domain.AnswerValue
	keys     numberKeys
}

type numberKeys struct {
	formatError, min, max string
}

// NewInteger reads the min and max options, defaulting to the full int64 range.
func NewInteger(env Env, opts domain.Options) (StepType, error) {
	lo, err := opts.Int("min", math.MinInt64)
	if err != nil {
		return nil, err
	}
	hi, err := opts.Int("max", math.MaxInt64)
	if err != nil {
		return nil, err
	}
	if lo > hi {
		return nil, errors.New("min must not exceed max")
	}
	return &Number[int64]{
		prompter: prompter{env: env},
		min:      lo,
		max:      hi,
		parse:    func(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) },
		format:   func(v int64) string { return strconv.FormatInt(v, 10) },
		answer:   domain.IntAnswer,
		keys:     numberKeys{formatError: messages.IntegerFormatError, min: messages.IntegerMin, max: messages.IntegerMax},
	}, nil
}

// NewDouble reads the min and max options, defaulting to the full float64 range.
func NewDouble(env Env, opts domain.Options) (StepType, error) {
	lo, err := opts.Float("min", -math.MaxFloat64)
	if err != nil {
		return nil, err
	}
	hi, err := opts.Float("max", math.MaxFloat64)
	if err != nil {
		return nil, err
	}
	if lo > hi {
		return nil, errors.New("min must not exceed max")
	}
	return &Number[float64]{
		prompter: prompter{env: env},
		min:      lo,
		max:      hi,
		parse:    parseFinite,
		format:   func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) },
		answer:   domain.DoubleAnswer,
		keys:     numberKeys{formatError: messages.DoubleFormatError, min: messages.DoubleMin, max: messages.DoubleMax},
	}, nil
}

func parseFinite(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("not a finite number")
	}
	return f, nil
}

func (n *Number[T]) LocksChannel() bool { return false }

func (n *Number[T]) Begin(ctx context.Context, prompt Prompt) error {
	return n.send(ctx, prompt, "")
}

func (n *Number[T]) OnInput(ctx context.Context, ev Event) Result {
	m := n.userMessage(ev)
	if m == nil {
		return pending()
	}
	v, err := n.parse(strings.TrimSpace(m.Content))
	if err != nil {
		n.discard(ctx, m.Message, true)
		return reject(n.env.Messages.Get(n.keys.formatError))
	}
	if v < n.min {
		n.discard(ctx, m.Message, false)
		return reject(n.env.Messages.Format(n.keys.min, "MIN", n.format(n.min), "MAX", n.format(n.max)))
	}
	if v > n.max {
		n.discard(ctx, m.Message, false)
		return reject(n.env.Messages.Format(n.keys.max, "MIN", n.format(n.min), "MAX", n.format(n.max)))
	}
	n.consume(m.Message)
	return done(n.answer(v))
}

func (n *Number[T]) Cleanup(ctx context.Context) { n.cleanup(ctx) }
