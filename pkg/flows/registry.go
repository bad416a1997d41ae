package flows

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/novapay/pkg/domain"
)

// Registry holds wizard definitions by flow name.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]*domain.Definition
}

// NewRegistry creates a registry holding defs.
func NewRegistry(defs ...*domain.Definition) *Registry {
	r := &Registry{defs: make(map[string]*domain.Definition)}
	for _, def := range defs {
		r.Register(def)
	}
	return r
}

// Register adds or replaces a definition.
func (r *Registry) Register(def *domain.Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs[def.Name()] = def
}

// Get returns the definition for name.
func (r *Registry) Get(name string) (*domain.Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrFlowNotFound, name)
	}
	return def, nil
}

// Names lists the registered flows in lexical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definitions returns every definition ordered by name.
func (r *Registry) Definitions() []*domain.Definition {
	names := r.Names()
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Definition, 0, len(names))
	for _, name := range names {
		out = append(out, r.defs[name])
	}
	return out
}

// Builtin returns a registry with the four NovaPay flows.
func Builtin(opts ...Option) (*Registry, error) {
	builders := []func(...Option) (*domain.Definition, error){
		NewSendMoney,
		NewLoanApply,
		NewRegister,
		NewForgotPassword,
	}
	r := NewRegistry()
	for _, build := range builders {
		def, err := build(opts...)
		if err != nil {
			return nil, err
		}
		r.Register(def)
	}
	return r, nil
}
