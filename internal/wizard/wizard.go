// Package wizard runs the ticket-creation conversation: pick a ticket type,
// give a title, answer each step, then the ticket is stored.
package wizard

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/messages"
	"github.com/spec-kit/ticket-bot/internal/notice"
	"github.com/spec-kit/ticket-bot/internal/observability"
	"github.com/spec-kit/ticket-bot/internal/service"
	"github.com/spec-kit/ticket-bot/internal/session"
	"github.com/spec-kit/ticket-bot/internal/steptype"
	"github.com/spec-kit/ticket-bot/internal/transport"
	apperrors "github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

// Kind identifies wizard sessions.
const Kind = "ticket-wizard"

// State is the sequencer's position.
type State string

const (
	StateSelectingType State = "selecting_type"
	StateAskingTitle   State = "asking_title"
	StateAskingStep    State = "asking_step"
	StateFinalizing    State = "finalizing"
	StateDone          State = "done"
	StateCancelled     State = "cancelled"
)

// Dependencies bundles the wizard's collaborators.
type Dependencies struct {
	Sessions       *session.Manager
	Catalog        *service.CatalogService
	Tickets        *service.TicketService
	Transport      transport.Transport
	Messages       *messages.Store
	Notifier       *notice.Notifier
	Metrics        *observability.Metrics
	Logger         *zap.Logger
	TitleMaxLength int
	AutoDelete     bool
}

// Wizard is the session handler of one ticket channel. Exactly one step is
// active at a time and only its continuation starts the next one.
type Wizard struct {
	deps    Dependencies
	channel domain.ChannelID
	author  transport.Member
	session uuid.UUID
	logger  *zap.Logger

	mu         sync.Mutex
	state      State
	types      []*domain.TicketType
	ticketType *domain.TicketType
	ticket     *domain.Ticket
	index      int
	handle     *steptype.Handle
}

// Start binds a new wizard to channel and asks the first question. With a
// single usable ticket type the selection is skipped.
func Start(ctx context.Context, deps Dependencies, channel domain.ChannelID, author transport.Member) (*Wizard, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	types, err := deps.Catalog.UsableTicketTypes(ctx)
	if err != nil {
		return nil, err
	}
	if len(types) == 0 {
		_, _ = deps.Notifier.Info(ctx, channel, deps.Messages.Get(messages.TicketNoTypes), deps.Messages.Get(messages.TicketNoTypesDesc))
		return nil, apperrors.NewNotFound("ticket type", nil)
	}

	w := &Wizard{
		deps:    deps,
		channel: channel,
		author:  author,
		logger:  logger.With(zap.Int64("channel", int64(channel)), zap.Int64("author", int64(author.ID))),
		types:   types,
	}
	sess, err := deps.Sessions.Acquire(channel, w)
	if err != nil {
		return nil, err
	}
	w.session = sess.ID
	deps.Metrics.RecordSession(Kind, "started")

	w.mu.Lock()
	defer w.mu.Unlock()
	if len(types) == 1 {
		w.ticketType = types[0]
		err = w.askTitle(ctx)
	} else {
		err = w.askType(ctx)
	}
	if err != nil {
		w.abort(ctx, err)
		return nil, err
	}
	return w, nil
}

// Kind implements session.Handler.
func (w *Wizard) Kind() string { return Kind }

// HandleMessage feeds a user message to the active step.
func (w *Wizard) HandleMessage(ctx context.Context, ev transport.MessageEvent) {
	w.dispatch(ctx, steptype.MessageEvent(ev))
}

// HandleReaction feeds a reaction to the active step.
func (w *Wizard) HandleReaction(ctx context.Context, ev transport.ReactionEvent) {
	w.dispatch(ctx, steptype.ReactionEvent(ev))
}

func (w *Wizard) dispatch(ctx context.Context, ev steptype.Event) {
	w.mu.Lock()
	h := w.handle
	w.mu.Unlock()
	if h == nil {
		return
	}
	if outcome := h.Dispatch(ctx, ev); outcome != steptype.Pending {
		w.deps.Metrics.RecordStep(h.Info().ID, outcome.String())
	}
}

// Cancel abandons the wizard, used by the idle sweeper.
func (w *Wizard) Cancel(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateDone || w.state == StateCancelled {
		return
	}
	if w.handle != nil {
		w.handle.Cancel(ctx)
	}
	w.state = StateCancelled
	w.deps.Metrics.RecordSession(Kind, "cancelled")
	_, _ = w.deps.Notifier.Info(ctx, w.channel, w.deps.Messages.Get(messages.SessionExpired), w.deps.Messages.Get(messages.SessionExpiredDesc))
}

// State returns the current position.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// advance records the answer of the step that just finished and moves the
// cursor. It is the only place that starts the next step.
func (w *Wizard) advance(ctx context.Context, value domain.AnswerValue) {
	w.mu.Lock()
	defer w.mu.Unlock()
	var err error
	switch w.state {
	case StateSelectingType:
		w.ticketType = w.findType(value.Text())
		if w.ticketType == nil {
			err = fmt.Errorf("selected ticket type %q vanished", value.Text())
			break
		}
		err = w.askTitle(ctx)
	case StateAskingTitle:
		w.ticket = domain.NewTicket(value.Text(), w.author.ID, w.channel)
		w.index = 0
		err = w.askNext(ctx)
	case StateAskingStep:
		def := w.ticketType.Steps[w.index]
		w.ticket.AddAnswer(domain.StepAnswer{Title: def.Title, Type: def.Type, Value: value})
		w.index++
		err = w.askNext(ctx)
	default:
		w.logger.Warn("answer received in terminal state", zap.String("state", string(w.state)))
		return
	}
	if err != nil {
		w.abort(ctx, err)
	}
}

func (w *Wizard) askType(ctx context.Context) error {
	pairs := make([]domain.OptionPair, len(w.types))
	for i, t := range w.types {
		pairs[i] = domain.OptionPair{
			Key:   t.Emoji,
			Value: w.deps.Messages.Format(messages.TicketTypeFormat, "NAME", t.Name, "DESCRIPTION", t.Description),
		}
	}
	raw, err := domain.PairsValue(pairs)
	if err != nil {
		return err
	}
	opts := domain.Options{"options": raw, "emoji": []byte("true")}
	w.state = StateSelectingType
	return w.begin(ctx, steptype.TypeSingleSelect, opts, steptype.Prompt{
		Channel:  w.channel,
		Question: w.deps.Messages.Get(messages.TicketTypeTitle),
	})
}

func (w *Wizard) askTitle(ctx context.Context) error {
	maxLength := w.deps.TitleMaxLength
	if maxLength <= 0 {
		maxLength = 100
	}
	opts := domain.Options{"maximumLength": []byte(strconv.Itoa(maxLength))}
	w.state = StateAskingTitle
	return w.begin(ctx, steptype.TypeString, opts, steptype.Prompt{
		Channel:  w.channel,
		Question: w.deps.Messages.Get(messages.TicketTitleTitle),
	})
}

func (w *Wizard) askNext(ctx context.Context) error {
	if w.index >= len(w.ticketType.Steps) {
		return w.finalize(ctx)
	}
	def := w.ticketType.Steps[w.index]
	w.state = StateAskingStep
	return w.begin(ctx, def.Type, def.Options, steptype.Prompt{
		Channel:     w.channel,
		Question:    def.Title,
		Description: def.Description,
	})
}

func (w *Wizard) begin(ctx context.Context, typeID string, opts domain.Options, prompt steptype.Prompt) error {
	env := steptype.Env{
		Transport:  w.deps.Transport,
		Messages:   w.deps.Messages,
		AutoDelete: w.deps.AutoDelete,
		Logger:     w.logger,
	}
	step, info, err := w.deps.Catalog.Registry().New(typeID, env, opts)
	if err != nil {
		return err
	}
	h := steptype.NewHandle(info, step, prompt, steptype.HandleOptions{
		Locker:   w.deps.Sessions,
		Notifier: w.deps.Notifier,
		Next:     w.advance,
	})
	w.handle = h
	w.logger.Debug("step started", zap.String("state", string(w.state)), zap.String("step_type", typeID), zap.Int("index", w.index))
	return h.Begin(ctx)
}

func (w *Wizard) finalize(ctx context.Context) error {
	w.state = StateFinalizing
	w.handle = nil
	if err := w.deps.Tickets.CreateTicket(ctx, w.ticket); err != nil {
		return err
	}
	w.deps.Sessions.Unlock(w.channel)
	w.deps.Sessions.Release(w.channel, w.session)
	w.state = StateDone
	w.deps.Metrics.RecordSession(Kind, "completed")

	store := w.deps.Messages
	if _, err := w.deps.Notifier.Info(ctx, w.channel, store.Get(messages.TicketEndTitle), store.Get(messages.TicketEndDesc)); err != nil {
		w.logger.Warn("send completion notice", zap.Error(err))
	}
	summary := notice.Summary(store, w.deps.Catalog.StepTypeName, w.ticket)
	if _, err := w.deps.Transport.SendMessage(ctx, w.channel, summary); err != nil {
		w.logger.Warn("send ticket summary", zap.Error(err))
	}
	return nil
}

// abort ends the session after an unrecoverable error. Callers hold w.mu.
func (w *Wizard) abort(ctx context.Context, cause error) {
	w.logger.Error("ticket wizard aborted", zap.String("state", string(w.state)), zap.Error(cause))
	if w.handle != nil {
		w.handle.Cancel(ctx)
		w.handle = nil
	}
	w.state = StateCancelled
	w.deps.Sessions.Unlock(w.channel)
	w.deps.Sessions.Release(w.channel, w.session)
	w.deps.Metrics.RecordSession(Kind, "failed")
	if domainErr := apperrors.ToDomainError(cause); domainErr.Code != apperrors.CodeInternal {
		_, _ = w.deps.Notifier.Error(ctx, w.channel, domainErr.Message)
	}
}

func (w *Wizard) findType(emoji string) *domain.TicketType {
	for _, t := range w.types {
		if t.Emoji == emoji {
			return t
		}
	}
	return nil
}
