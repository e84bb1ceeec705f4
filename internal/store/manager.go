package store

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/repository"
	"github.com/spec-kit/ticket-bot/internal/steptype"
)

// Report summarizes a load.
type Report struct {
	Tickets     int
	TicketTypes int
	Skipped     []RecordError
}

// Manager moves the document between a Backend and the in-memory repositories.
type Manager struct {
	backend  Backend
	registry *steptype.Registry
	tickets  repository.TicketRepository
	types    repository.TicketTypeRepository
	logger   *zap.Logger

	// mu orders saves so an older snapshot never overwrites a newer one.
	mu sync.Mutex
}

// ManagerDependencies bundles collaborators.
type ManagerDependencies struct {
	Backend    Backend
	Registry   *steptype.Registry
	TicketRepo repository.TicketRepository
	TypeRepo   repository.TicketTypeRepository
	Logger     *zap.Logger
}

// NewManager constructs a Manager.
func NewManager(deps ManagerDependencies) *Manager {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		backend:  deps.Backend,
		registry: deps.Registry,
		tickets:  deps.TicketRepo,
		types:    deps.TypeRepo,
		logger:   logger,
	}
}

// Backend returns the underlying backend.
func (m *Manager) Backend() Backend { return m.backend }

// Load reads the document and replaces the repositories' contents. Skipped
// records are logged and reported.
func (m *Manager) Load(ctx context.Context) (Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, err := m.backend.Load(ctx)
	if err != nil {
		return Report{}, err
	}
	doc, skipped, err := Decode(data, m.registry)
	if err != nil {
		return Report{}, err
	}
	for _, rec := range skipped {
		m.logger.Warn("skipping unreadable record",
			zap.String("section", rec.Section),
			zap.Int("index", rec.Index),
			zap.Error(rec.Err))
	}
	if err := m.tickets.Replace(ctx, doc.Tickets); err != nil {
		return Report{}, fmt.Errorf("load tickets: %w", err)
	}
	if err := m.types.Replace(ctx, doc.TicketTypes); err != nil {
		return Report{}, fmt.Errorf("load ticket types: %w", err)
	}
	report := Report{Tickets: len(doc.Tickets), TicketTypes: len(doc.TicketTypes), Skipped: skipped}
	m.logger.Info("document loaded",
		zap.String("backend", m.backend.Name()),
		zap.Int("tickets", report.Tickets),
		zap.Int("ticket_types", report.TicketTypes),
		zap.Int("skipped", len(skipped)))
	return report, nil
}

// Snapshot collects the repositories into a Document.
func (m *Manager) Snapshot(ctx context.Context) (*Document, error) {
	tickets, err := m.tickets.List(ctx)
	if err != nil {
		return nil, err
	}
	types, err := m.types.List(ctx)
	if err != nil {
		return nil, err
	}
	return &Document{Tickets: tickets, TicketTypes: types}, nil
}

// Save rewrites the whole document.
func (m *Manager) Save(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, err := m.Snapshot(ctx)
	if err != nil {
		return err
	}
	data, err := Encode(doc)
	if err != nil {
		return err
	}
	if err := m.backend.Save(ctx, data); err != nil {
		return err
	}
	m.logger.Debug("document saved",
		zap.String("backend", m.backend.Name()),
		zap.Int("tickets", len(doc.Tickets)),
		zap.Int("ticket_types", len(doc.TicketTypes)))
	return nil
}

// Ping checks the backend.
func (m *Manager) Ping(ctx context.Context) error { return m.backend.Ping(ctx) }
