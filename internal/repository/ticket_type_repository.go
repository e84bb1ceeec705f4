package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/spec-kit/ticket-bot/internal/domain"
	apperrors "github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

// TicketTypeRepository is the catalog of ticket types keyed by emoji.
type TicketTypeRepository interface {
	Save(ctx context.Context, ticketType *domain.TicketType) error
	Get(ctx context.Context, emoji string) (*domain.TicketType, error)
	Delete(ctx context.Context, emoji string) error
	List(ctx context.Context) ([]*domain.TicketType, error)
	Replace(ctx context.Context, types []*domain.TicketType) error
}

type ticketTypeRepository struct {
	mu      sync.RWMutex
	byEmoji map[string]*domain.TicketType
}

// NewTicketTypeRepository instantiates repository.
func NewTicketTypeRepository() TicketTypeRepository {
	return &ticketTypeRepository{byEmoji: make(map[string]*domain.TicketType)}
}

// Save inserts or replaces the type registered under its emoji.
func (r *ticketTypeRepository) Save(ctx context.Context, ticketType *domain.TicketType) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byEmoji[ticketType.Emoji] = ticketType.Clone()
	return nil
}

func (r *ticketTypeRepository) Get(ctx context.Context, emoji string) (*domain.TicketType, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byEmoji[emoji]
	if !ok {
		return nil, apperrors.NewNotFound("ticket type", map[string]any{"emoji": emoji})
	}
	return t.Clone(), nil
}

func (r *ticketTypeRepository) Delete(ctx context.Context, emoji string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmoji[emoji]; !ok {
		return apperrors.NewNotFound("ticket type", map[string]any{"emoji": emoji})
	}
	delete(r.byEmoji, emoji)
	return nil
}

// List returns the catalog ordered by emoji.
func (r *ticketTypeRepository) List(ctx context.Context) ([]*domain.TicketType, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.TicketType, 0, len(r.byEmoji))
	for _, t := range r.byEmoji {
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Emoji < out[j].Emoji })
	return out, nil
}

func (r *ticketTypeRepository) Replace(ctx context.Context, types []*domain.TicketType) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	next := make(map[string]*domain.TicketType, len(types))
	for _, t := range types {
		if _, dup := next[t.Emoji]; dup {
			return apperrors.NewConflict("duplicate ticket type emoji", map[string]any{"emoji": t.Emoji})
		}
		next[t.Emoji] = t.Clone()
	}
	r.byEmoji = next
	return nil
}
