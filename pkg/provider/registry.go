package provider

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Provider names accepted by the CLI.
const (
	NameGoogle = "google"
	NameOpenAI = "openai"
	NameFile   = "file"
)

// Factory builds a provider from the shared configuration.
type Factory func(cfg Config) (Provider, error)

// Registry stores provider factories by name, providing discovery and
// duplication safeguards.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// DefaultRegistry returns a registry holding the built-in providers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(NameGoogle, func(cfg Config) (Provider, error) { return NewGoogle(cfg) })
	r.MustRegister(NameOpenAI, func(cfg Config) (Provider, error) { return NewOpenAI(cfg) })
	r.MustRegister(NameFile, func(cfg Config) (Provider, error) { return NewFile(cfg) })
	return r
}

// Register adds a factory. Names are case-insensitive; duplicates return an
// error.
func (r *Registry) Register(name string, factory Factory) error {
	if factory == nil {
		return fmt.Errorf("provider: factory is required")
	}
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return fmt.Errorf("provider: name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[key]; exists {
		return fmt.Errorf("provider: %q already registered", key)
	}
	r.factories[key] = factory
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(name string, factory Factory) {
	if err := r.Register(name, factory); err != nil {
		panic(err)
	}
}

// New builds the provider registered under name.
func (r *Registry) New(name string, cfg Config) (Provider, error) {
	key := strings.ToLower(strings.TrimSpace(name))

	r.mu.RLock()
	factory, ok := r.factories[key]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("provider: %q not found (available: %s)", name, strings.Join(r.List(), ", "))
	}
	p, err := factory(cfg)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// List returns the sorted provider names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a provider is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.factories[strings.ToLower(strings.TrimSpace(name))]
	return ok
}
