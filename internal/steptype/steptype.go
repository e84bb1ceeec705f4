// Package steptype defines the step-type contract, the runner that drives a
// single step, the identifier registry and the built-in step types.
package steptype

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/messages"
	"github.com/spec-kit/ticket-bot/internal/transport"
)

// Info describes a registered step type.
type Info struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Emoji       string            `json:"emoji"`
	Source      string            `json:"source"`
	AnswerKind  domain.AnswerKind `json:"answerKind"`
}

// SourceBuiltin marks step types compiled into the bot.
const SourceBuiltin = "builtin"

// Prompt is what a step renders when it begins.
type Prompt struct {
	Channel     domain.ChannelID
	Question    string
	Description string
}

// Event is one inbound event routed to the active step. Exactly one field is set.
type Event struct {
	Message  *transport.MessageEvent
	Reaction *transport.ReactionEvent
}

// MessageEvent wraps a message for dispatch.
func MessageEvent(ev transport.MessageEvent) Event { return Event{Message: &ev} }

// ReactionEvent wraps a reaction for dispatch.
func ReactionEvent(ev transport.ReactionEvent) Event { return Event{Reaction: &ev} }

// Outcome is the result kind of feeding an event to a step.
type Outcome int

const (
	Pending Outcome = iota
	Done
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Done:
		return "done"
	case Rejected:
		return "rejected"
	}
	return "pending"
}

// Result is returned by StepType.OnInput. Value is set for Done, Reason for Rejected.
type Result struct {
	Outcome Outcome
	Value   domain.AnswerValue
	Reason  string
}

func pending() Result { return Result{Outcome: Pending} }

func done(v domain.AnswerValue) Result { return Result{Outcome: Done, Value: v} }

func reject(reason string) Result { return Result{Outcome: Rejected, Reason: reason} }

// StepType collects one typed answer in a channel.
type StepType interface {
	// Begin renders the prompt.
	Begin(ctx context.Context, prompt Prompt) error
	// OnInput consumes an event. Events that do not concern the step yield Pending.
	OnInput(ctx context.Context, ev Event) Result
	// Cleanup removes prompt artifacts. The Handle guarantees a single call.
	Cleanup(ctx context.Context)
	// LocksChannel reports whether free text must be suppressed while active.
	LocksChannel() bool
}

// Env carries the collaborators a step needs at runtime.
type Env struct {
	Transport  transport.Transport
	Messages   *messages.Store
	AutoDelete bool
	Logger     *zap.Logger
}

// Factory builds a step type from its options bag. Factories must only parse
// options so a zero Env can be used for validation.
type Factory func(env Env, opts domain.Options) (StepType, error)

// prompter holds the bookkeeping every built-in shares: the prompt message
// and the consumed user inputs to delete on cleanup.
type prompter struct {
	env     Env
	channel domain.ChannelID
	prompt  domain.MessageID
	inputs  []domain.MessageID
}

func (p *prompter) logger() *zap.Logger {
	if p.env.Logger == nil {
		return zap.NewNop()
	}
	return p.env.Logger
}

func (p *prompter) render(prompt Prompt, body string) transport.Content {
	desc := prompt.Description
	if body != "" {
		if desc != "" {
			desc += "\n\n"
		}
		desc += body
	}
	return transport.Content{Title: prompt.Question, Description: desc, Color: p.env.Messages.Get(messages.ColorAccent)}
}

func (p *prompter) send(ctx context.Context, prompt Prompt, body string, reactions ...string) error {
	p.channel = prompt.Channel
	id, err := p.env.Transport.SendMessage(ctx, prompt.Channel, p.render(prompt, body))
	if err != nil {
		return err
	}
	p.prompt = id
	for _, emoji := range reactions {
		if err := p.env.Transport.AddReaction(ctx, prompt.Channel, id, emoji); err != nil {
			return err
		}
	}
	return nil
}

func (p *prompter) edit(ctx context.Context, prompt Prompt, body string) {
	if err := p.env.Transport.EditMessage(ctx, p.channel, p.prompt, p.render(prompt, body)); err != nil {
		p.logger().Warn("edit prompt", zap.Int64("channel", int64(p.channel)), zap.Error(err))
	}
}

// consume records a user input for deletion on cleanup.
func (p *prompter) consume(id domain.MessageID) {
	p.inputs = append(p.inputs, id)
}

// discard deletes a rejected input immediately when force or auto-delete is on.
func (p *prompter) discard(ctx context.Context, id domain.MessageID, force bool) {
	if !force && !p.env.AutoDelete {
		return
	}
	if err := p.env.Transport.DeleteMessage(ctx, p.channel, id); err != nil {
		p.logger().Debug("delete input", zap.Int64("channel", int64(p.channel)), zap.Error(err))
	}
}

func (p *prompter) unreact(ctx context.Context, r *transport.ReactionEvent) {
	if err := p.env.Transport.RemoveReaction(ctx, r.Channel, r.Message, r.Emoji, r.User.ID); err != nil {
		p.logger().Debug("remove reaction", zap.Int64("channel", int64(r.Channel)), zap.Error(err))
	}
}

// promptReaction returns the reaction if it is a user reaction on the prompt.
func (p *prompter) promptReaction(ev Event) *transport.ReactionEvent {
	r := ev.Reaction
	if r == nil || r.User.Bot || r.Message != p.prompt || p.prompt == 0 {
		return nil
	}
	return r
}

// userMessage returns the event's message if it was written by a user.
func (p *prompter) userMessage(ev Event) *transport.MessageEvent {
	m := ev.Message
	if m == nil || m.Author.Bot {
		return nil
	}
	return m
}

func (p *prompter) cleanup(ctx context.Context) {
	if !p.env.AutoDelete {
		return
	}
	ids := append([]domain.MessageID{}, p.inputs...)
	if p.prompt != 0 {
		ids = append(ids, p.prompt)
	}
	for _, id := range ids {
		if err := p.env.Transport.DeleteMessage(ctx, p.channel, id); err != nil {
			p.logger().Debug("delete step message", zap.Int64("channel", int64(p.channel)), zap.Error(err))
		}
	}
}
