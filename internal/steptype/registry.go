package steptype

import (
	"fmt"
	"sync"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

// Registration pairs metadata with a factory.
type Registration struct {
	Info    Info
	Factory Factory
}

// Registry maps step-type identifiers to factories. Identifiers and selector
// emojis are unique across all registrations.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Registration
	emojis  map[string]string
	order   []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: map[string]Registration{}, emojis: map[string]string{}}
}

// Register installs a factory. Returns an error if the id or emoji is taken.
func (r *Registry) Register(info Info, factory Factory) error {
	if info.ID == "" {
		return fmt.Errorf("steptype: id is required")
	}
	if factory == nil {
		return fmt.Errorf("steptype: factory is required for %s", info.ID)
	}
	if info.Emoji == "" {
		return fmt.Errorf("steptype: emoji is required for %s", info.ID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[info.ID]; exists {
		return fmt.Errorf("steptype: %s already registered", info.ID)
	}
	if owner, taken := r.emojis[info.Emoji]; taken {
		return fmt.Errorf("steptype: emoji %s of %s already used by %s", info.Emoji, info.ID, owner)
	}
	r.entries[info.ID] = Registration{Info: info, Factory: factory}
	r.emojis[info.Emoji] = info.ID
	r.order = append(r.order, info.ID)
	return nil
}

// MustRegister panics if registration fails.
func (r *Registry) MustRegister(info Info, factory Factory) {
	if err := r.Register(info, factory); err != nil {
		panic(err)
	}
}

// Merge registers every entry of other, keeping other's order. Nothing is
// registered when any entry collides.
func (r *Registry) Merge(other *Registry) error {
	other.mu.RLock()
	regs := make([]Registration, 0, len(other.order))
	for _, id := range other.order {
		regs = append(regs, other.entries[id])
	}
	other.mu.RUnlock()

	r.mu.RLock()
	seenEmoji := map[string]string{}
	for _, reg := range regs {
		if _, exists := r.entries[reg.Info.ID]; exists {
			r.mu.RUnlock()
			return fmt.Errorf("steptype: %s already registered", reg.Info.ID)
		}
		owner, taken := r.emojis[reg.Info.Emoji]
		if !taken {
			owner, taken = seenEmoji[reg.Info.Emoji]
		}
		if taken {
			r.mu.RUnlock()
			return fmt.Errorf("steptype: emoji %s of %s already used by %s", reg.Info.Emoji, reg.Info.ID, owner)
		}
		seenEmoji[reg.Info.Emoji] = reg.Info.ID
	}
	r.mu.RUnlock()

	for _, reg := range regs {
		if err := r.Register(reg.Info, reg.Factory); err != nil {
			return err
		}
	}
	return nil
}

// Resolve looks up an identifier.
func (r *Registry) Resolve(id string) (Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.entries[id]
	if !ok {
		return Registration{}, errorutil.NewUnknownStepType(id)
	}
	return reg, nil
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, err := r.Resolve(id)
	return err == nil
}

// New resolves id and builds the step type from opts.
func (r *Registry) New(id string, env Env, opts domain.Options) (StepType, Info, error) {
	reg, err := r.Resolve(id)
	if err != nil {
		return nil, Info{}, err
	}
	step, err := reg.Factory(env, opts)
	if err != nil {
		return nil, Info{}, errorutil.NewInvalidOptions(id, err)
	}
	return step, reg.Info, nil
}

// ValidateDefinition checks that def's step type resolves and accepts its options.
func (r *Registry) ValidateDefinition(def domain.StepDefinition) error {
	_, _, err := r.New(def.Type, Env{}, def.Options)
	return err
}

// ValidateTicketType checks a ticket type and every step definition in it.
func (r *Registry) ValidateTicketType(t *domain.TicketType) error {
	if err := t.Validate(); err != nil {
		return errorutil.NewValidationError(err.Error(), map[string]any{"emoji": t.Emoji})
	}
	for i, def := range t.Steps {
		if err := r.ValidateDefinition(def); err != nil {
			return fmt.Errorf("ticket type %q step %d: %w", t.Name, i+1, err)
		}
	}
	return nil
}

// DisplayName returns the registered name of id, or id itself when unknown.
func (r *Registry) DisplayName(id string) string {
	reg, err := r.Resolve(id)
	if err != nil || reg.Info.Name == "" {
		return id
	}
	return reg.Info.Name
}

// List returns the metadata of every registration in registration order.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Info, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.entries[id].Info)
	}
	return out
}

// IDs returns the registered identifiers in registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}
