package provider

import (
	"fmt"
	"log/slog"
	"sync"
)

// Registry holds the ordered set of providers consulted for every target.
//
// The registry is filled once at startup and frozen before the engine
// starts serving; Providers is safe to call concurrently at any time.
type Registry struct {
	mu        sync.RWMutex
	providers []Provider
	names     map[string]struct{}
	frozen    bool
	logger    *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger used to report skipped providers.
func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		providers: make([]Provider, 0),
		names:     make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Register appends p to the registry.
//
// Invalid providers (nil, unnamed, without a collect function) and
// duplicate names are skipped with a warning and the reason is returned.
// Callers that only care about the happy path may ignore the error.
func (r *Registry) Register(p Provider) error {
	if err := validate(p); err != nil {
		r.logger.Warn("skipping provider", "error", err)
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		r.logger.Warn("skipping provider", "provider", p.Name(), "error", ErrRegistryFrozen)
		return ErrRegistryFrozen
	}
	if _, ok := r.names[p.Name()]; ok {
		err := fmt.Errorf("%w: %s", ErrDuplicate, p.Name())
		r.logger.Warn("skipping provider", "provider", p.Name(), "error", err)
		return err
	}

	r.names[p.Name()] = struct{}{}
	r.providers = append(r.providers, p)
	r.logger.Debug("registered provider", "provider", p.Name(), "position", len(r.providers))
	return nil
}

// MustRegister registers every provider and ignores skipped ones.
func (r *Registry) MustRegister(providers ...Provider) {
	for _, p := range providers {
		_ = r.Register(p) //nolint:errcheck // skipped providers are logged
	}
}

// Freeze makes the registry read-only.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Providers returns a copy of the registered providers in registration order.
func (r *Registry) Providers() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

// Names returns the registered provider names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.providers))
	for i, p := range r.providers {
		names[i] = p.Name()
	}
	return names
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}

func validate(p Provider) error {
	if p == nil {
		return ErrNilProvider
	}
	if f, ok := p.(*Func); ok {
		if f == nil {
			return ErrNilProvider
		}
		if f.fn == nil {
			return fmt.Errorf("%w: %s", ErrNoCapability, f.name)
		}
	}
	if p.Name() == "" {
		return fmt.Errorf("%w: empty name", ErrNoCapability)
	}
	return nil
}
