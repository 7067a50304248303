package breaker

import (
	"sort"
	"sync"
	"time"
)

// Registry holds one breaker per dependency name for the life of the
// process. Entries are created lazily and never removed, so iteration and
// insertion never conflict destructively. The registry is an explicit
// object owned by application start-up; there is no package-level instance.
type Registry struct {
	mu       sync.RWMutex
	breakers map[string]*Breaker
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{breakers: make(map[string]*Breaker)}
}

// Get returns the breaker registered under name, creating it from cfg on
// first use. The first registration wins: a later Get with a different
// config for the same name returns the existing breaker untouched. The
// breaker's name is always the registry key, regardless of cfg.Name.
func (r *Registry) Get(name string, cfg Config) *Breaker {
	r.mu.RLock()
	b, ok := r.breakers[name]
	r.mu.RUnlock()
	if ok {
		return b
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.breakers[name]; ok {
		return b
	}

	cfg.Name = name
	b = New(cfg)
	r.breakers[name] = b
	return b
}

// Lookup returns the breaker registered under name without creating one.
func (r *Registry) Lookup(name string) (*Breaker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.breakers[name]
	return b, ok
}

// Names returns the registered breaker names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.breakers))
	for name := range r.breakers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AllStats snapshots every registered breaker, keyed by name.
func (r *Registry) AllStats() map[string]Stats {
	r.mu.RLock()
	breakers := make([]*Breaker, 0, len(r.breakers))
	for _, b := range r.breakers {
		breakers = append(breakers, b)
	}
	r.mu.RUnlock()

	stats := make(map[string]Stats, len(breakers))
	for _, b := range breakers {
		stats[b.Name()] = b.Stats()
	}
	return stats
}

// ResetAll resets every registered breaker to its as-new state.
func (r *Registry) ResetAll() {
	r.mu.RLock()
	breakers := make([]*Breaker, 0, len(r.breakers))
	for _, b := range r.breakers {
		breakers = append(breakers, b)
	}
	r.mu.RUnlock()

	for _, b := range breakers {
		b.Reset()
	}
}

// NewDefaultRegistry creates a registry pre-seeded with breakers for the
// usual suspects: the backing database, which should trip fast, and
// general external APIs with the stock thresholds. Applications construct
// this at start-up; nothing is registered at package load.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Get("database", Config{
		FailureThreshold: 3,
		RecoveryTimeout:  15 * time.Second,
	})
	r.Get("external-api", Config{})
	return r
}
