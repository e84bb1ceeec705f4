package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/repository"
	"github.com/spec-kit/ticket-bot/internal/steptype"
	apperrors "github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

// CatalogService manages ticket types.
type CatalogService struct {
	types      repository.TicketTypeRepository
	registry   *steptype.Registry
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// CatalogDependencies bundles collaborators.
type CatalogDependencies struct {
	TypeRepo   repository.TicketTypeRepository
	Registry   *steptype.Registry
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewCatalogService creates the service.
func NewCatalogService(deps CatalogDependencies) *CatalogService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		types:      deps.TypeRepo,
		registry:   deps.Registry,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// SaveTicketType validates every step definition against the registry and
// stores the type under its emoji.
func (s *CatalogService) SaveTicketType(ctx context.Context, actor domain.UserID, ticketType *domain.TicketType) error {
	if err := s.registry.ValidateTicketType(ticketType); err != nil {
		return apperrors.MapError(err)
	}
	if err := s.types.Save(ctx, ticketType); err != nil {
		return apperrors.MapError(err)
	}
	publish(ctx, s.dispatcher, events.Event{
		Type:    events.EventTicketTypeSaved,
		Actor:   actor,
		Payload: events.TicketTypePayload{Emoji: ticketType.Emoji, Name: ticketType.Name},
	})
	return nil
}

// DeleteTicketType removes a type. Existing tickets are unaffected.
func (s *CatalogService) DeleteTicketType(ctx context.Context, actor domain.UserID, emoji string) error {
	current, err := s.types.Get(ctx, emoji)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := s.types.Delete(ctx, emoji); err != nil {
		return apperrors.MapError(err)
	}
	publish(ctx, s.dispatcher, events.Event{
		Type:    events.EventTicketTypeDeleted,
		Actor:   actor,
		Payload: events.TicketTypePayload{Emoji: emoji, Name: current.Name},
	})
	return nil
}

// GetTicketType returns a single type.
func (s *CatalogService) GetTicketType(ctx context.Context, emoji string) (*domain.TicketType, error) {
	t, err := s.types.Get(ctx, emoji)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return t, nil
}

// ListTicketTypes returns the whole catalog ordered by emoji.
func (s *CatalogService) ListTicketTypes(ctx context.Context) ([]*domain.TicketType, error) {
	return s.types.List(ctx)
}

// UsableTicketTypes returns the types whose every step resolves. Types that
// reference an unknown step type are logged and left out.
func (s *CatalogService) UsableTicketTypes(ctx context.Context) ([]*domain.TicketType, error) {
	all, err := s.types.List(ctx)
	if err != nil {
		return nil, err
	}
	usable := make([]*domain.TicketType, 0, len(all))
	for _, t := range all {
		if err := s.registry.ValidateTicketType(t); err != nil {
			s.logger.Warn("ticket type unusable", zap.String("emoji", t.Emoji), zap.String("name", t.Name), zap.Error(err))
			continue
		}
		usable = append(usable, t)
	}
	return usable, nil
}

// StepTypeName returns the display name of a step-type identifier.
func (s *CatalogService) StepTypeName(id string) string {
	return s.registry.DisplayName(id)
}

// StepTypes lists the registered step types.
func (s *CatalogService) StepTypes() []steptype.Info {
	return s.registry.List()
}

// Registry exposes the step-type registry.
func (s *CatalogService) Registry() *steptype.Registry {
	return s.registry
}
