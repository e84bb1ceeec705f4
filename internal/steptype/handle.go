package steptype

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/spec-kit/ticket-bot/internal/domain"
)

// Locker suppresses free text in a channel while a reaction-only step runs.
type Locker interface {
	Lock(channel domain.ChannelID)
	Unlock(channel domain.ChannelID)
}

// Notifier shows rejection reasons.
type Notifier interface {
	Error(ctx context.Context, channel domain.ChannelID, description string) (domain.MessageID, error)
}

// Continuation receives the answer of a finished step.
type Continuation func(ctx context.Context, value domain.AnswerValue)

// Handle runs one StepType: it applies the channel lock, reports rejections
// and fires the continuation exactly once. Cleanup runs before the
// continuation so the next step can take the lock without it being released
// underneath it.
type Handle struct {
	info     Info
	step     StepType
	prompt   Prompt
	locker   Locker
	notifier Notifier
	next     Continuation

	mu          sync.Mutex
	finished    atomic.Bool
	cleanupOnce sync.Once
}

// HandleOptions wires a Handle.
type HandleOptions struct {
	Locker   Locker
	Notifier Notifier
	Next     Continuation
}

// NewHandle wraps step for prompt.
func NewHandle(info Info, step StepType, prompt Prompt, opts HandleOptions) *Handle {
	return &Handle{
		info:     info,
		step:     step,
		prompt:   prompt,
		locker:   opts.Locker,
		notifier: opts.Notifier,
		next:     opts.Next,
	}
}

// Info returns the step type's metadata.
func (h *Handle) Info() Info { return h.info }

// Prompt returns the prompt the step was started with.
func (h *Handle) Prompt() Prompt { return h.prompt }

// Finished reports whether the step produced its answer or was cancelled.
func (h *Handle) Finished() bool { return h.finished.Load() }

// Begin renders the prompt and takes the channel lock for reaction-only steps.
func (h *Handle) Begin(ctx context.Context) error {
	if err := h.step.Begin(ctx, h.prompt); err != nil {
		h.Cleanup(ctx)
		return err
	}
	if h.step.LocksChannel() && h.locker != nil {
		h.locker.Lock(h.prompt.Channel)
	}
	return nil
}

// Dispatch feeds ev to the step. Events arriving after the step finished are
// ignored, so of two racing valid events the first one wins.
func (h *Handle) Dispatch(ctx context.Context, ev Event) Outcome {
	if h.finished.Load() {
		return Pending
	}
	h.mu.Lock()
	if h.finished.Load() {
		h.mu.Unlock()
		return Pending
	}
	res := h.step.OnInput(ctx, ev)
	if res.Outcome == Done && !h.finished.CompareAndSwap(false, true) {
		res.Outcome = Pending
	}
	h.mu.Unlock()

	switch res.Outcome {
	case Rejected:
		if h.notifier != nil && res.Reason != "" {
			_, _ = h.notifier.Error(ctx, h.prompt.Channel, res.Reason)
		}
	case Done:
		h.Cleanup(ctx)
		if h.next != nil {
			h.next(ctx, res.Value)
		}
	}
	return res.Outcome
}

// Cancel finishes the step without an answer.
func (h *Handle) Cancel(ctx context.Context) {
	h.finished.Store(true)
	h.Cleanup(ctx)
}

// Cleanup releases the step's resources once.
func (h *Handle) Cleanup(ctx context.Context) {
	h.cleanupOnce.Do(func() {
		h.step.Cleanup(ctx)
		if h.step.LocksChannel() && h.locker != nil {
			h.locker.Unlock(h.prompt.Channel)
		}
	})
}
