package steptype

import (
	"context"
	"errors"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/messages"
)

// Boolean asks a yes/no question answered with one of two reactions.
type Boolean struct {
	prompter
	mustBeTrue  bool
	mustBeFalse bool
}

// NewBoolean reads the mustBeTrue and mustBeFalse options.
func NewBoolean(env Env, opts domain.Options) (StepType, error) {
	mustBeTrue, err := opts.Bool("mustBeTrue", false)
	if err != nil {
		return nil, err
	}
	mustBeFalse, err := opts.Bool("mustBeFalse", false)
	if err != nil {
		return nil, err
	}
	if mustBeTrue && mustBeFalse {
		return nil, errors.New("mustBeTrue and mustBeFalse are mutually exclusive")
	}
	return &Boolean{prompter: prompter{env: env}, mustBeTrue: mustBeTrue, mustBeFalse: mustBeFalse}, nil
}

func (b *Boolean) LocksChannel() bool { return true }

func (b *Boolean) Begin(ctx context.Context, prompt Prompt) error {
	yes, no := b.env.Messages.Get(messages.BooleanYes), b.env.Messages.Get(messages.BooleanNo)
	info := b.env.Messages.Format(messages.BooleanInfo, "YES_EMOJI", yes, "NO_EMOJI", no)
	return b.send(ctx, prompt, info, yes, no)
}

func (b *Boolean) OnInput(ctx context.Context, ev Event) Result {
	r := b.promptReaction(ev)
	if r == nil || !r.Added {
		return pending()
	}
	yes, no := b.env.Messages.Get(messages.BooleanYes), b.env.Messages.Get(messages.BooleanNo)
	if r.Emoji != yes && r.Emoji != no {
		return pending()
	}
	b.unreact(ctx, r)
	answer := r.Emoji == yes
	if answer && b.mustBeFalse {
		return reject(b.env.Messages.Get(messages.BooleanMustBeFalse))
	}
	if !answer && b.mustBeTrue {
		return reject(b.env.Messages.Get(messages.BooleanMustBeTrue))
	}
	return done(domain.BoolAnswer(answer))
}

func (b *Boolean) Cleanup(ctx context.Context) { b.cleanup(ctx) }
