package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/spec-kit/ticket-bot/internal/domain"
	apperrors "github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

// TicketRepository encapsulates the ticket table: keyed by channel with a
// non-unique index by author. Returned tickets are copies.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByChannel(ctx context.Context, channel domain.ChannelID) (*domain.Ticket, error)
	ListByAuthor(ctx context.Context, author domain.UserID) ([]*domain.Ticket, error)
	CountByAuthor(ctx context.Context, author domain.UserID) (int, error)
	List(ctx context.Context) ([]*domain.Ticket, error)
	Replace(ctx context.Context, tickets []*domain.Ticket) error
}

type ticketRepository struct {
	mu        sync.RWMutex
	byChannel map[domain.ChannelID]*domain.Ticket
	byAuthor  map[domain.UserID][]domain.ChannelID
}

// NewTicketRepository instantiates repository.
func NewTicketRepository() TicketRepository {
	return &ticketRepository{
		byChannel: make(map[domain.ChannelID]*domain.Ticket),
		byAuthor:  make(map[domain.UserID][]domain.ChannelID),
	}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byChannel[ticket.Channel]; exists {
		return apperrors.NewConflict("channel already has a ticket", map[string]any{"channel": ticket.Channel.String()})
	}
	r.insert(ticket.Clone())
	return nil
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	current, exists := r.byChannel[ticket.Channel]
	if !exists {
		return apperrors.NewNotFound("ticket", map[string]any{"channel": ticket.Channel.String()})
	}
	if current.Author != ticket.Author {
		return apperrors.NewValidationError("ticket author is immutable", map[string]any{"channel": ticket.Channel.String()})
	}
	r.byChannel[ticket.Channel] = ticket.Clone()
	return nil
}

func (r *ticketRepository) GetByChannel(ctx context.Context, channel domain.ChannelID) (*domain.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ticket, ok := r.byChannel[channel]
	if !ok {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"channel": channel.String()})
	}
	return ticket.Clone(), nil
}

func (r *ticketRepository) ListByAuthor(ctx context.Context, author domain.UserID) ([]*domain.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	channels := r.byAuthor[author]
	out := make([]*domain.Ticket, 0, len(channels))
	for _, ch := range channels {
		out = append(out, r.byChannel[ch].Clone())
	}
	return out, nil
}

func (r *ticketRepository) CountByAuthor(ctx context.Context, author domain.UserID) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byAuthor[author]), nil
}

// List returns every ticket ordered by channel.
func (r *ticketRepository) List(ctx context.Context) ([]*domain.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Ticket, 0, len(r.byChannel))
	for _, t := range r.byChannel {
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Channel < out[j].Channel })
	return out, nil
}

// Replace swaps the whole table, used when a document is loaded.
func (r *ticketRepository) Replace(ctx context.Context, tickets []*domain.Ticket) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byChannel = make(map[domain.ChannelID]*domain.Ticket, len(tickets))
	r.byAuthor = make(map[domain.UserID][]domain.ChannelID)
	for _, t := range tickets {
		if _, dup := r.byChannel[t.Channel]; dup {
			return apperrors.NewConflict("duplicate ticket channel", map[string]any{"channel": t.Channel.String()})
		}
		r.insert(t.Clone())
	}
	return nil
}

func (r *ticketRepository) insert(t *domain.Ticket) {
	r.byChannel[t.Channel] = t
	r.byAuthor[t.Author] = append(r.byAuthor[t.Author], t.Channel)
}
