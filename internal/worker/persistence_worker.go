package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/events"
)

// Saver writes the whole document.
type Saver interface {
	Save(ctx context.Context) error
}

// PersistenceWorker saves the document after every mutation event. Events
// arriving while a save runs collapse into one follow-up save.
type PersistenceWorker struct {
	saver   Saver
	logger  *zap.Logger
	pending chan struct{}
}

// NewPersistenceWorker subscribes to every mutation event of dispatcher.
func NewPersistenceWorker(dispatcher events.Dispatcher, saver Saver, logger *zap.Logger) *PersistenceWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &PersistenceWorker{saver: saver, logger: logger, pending: make(chan struct{}, 1)}
	events.SubscribeAll(dispatcher, events.MutationEvents, w.handle)
	return w
}

func (w *PersistenceWorker) handle(ctx context.Context, event events.Event) error {
	w.Trigger()
	return nil
}

// Trigger schedules a save.
func (w *PersistenceWorker) Trigger() {
	select {
	case w.pending <- struct{}{}:
	default:
	}
}

// Run saves on demand until ctx ends, then performs a final save.
func (w *PersistenceWorker) Run(ctx context.Context) {
	for {
		select {
		case <-w.pending:
			w.save(ctx)
		case <-ctx.Done():
			shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			w.save(shutdown)
			cancel()
			return
		}
	}
}

func (w *PersistenceWorker) save(ctx context.Context) {
	if err := w.saver.Save(ctx); err != nil {
		w.logger.Error("save document", zap.Error(err))
	}
}
