// Package preferences holds the per-session UI preference flags (signed in,
// sidebar collapsed, theme). A Store is created once per session, passed
// down through context.Context and pushes changes to subscribers, so no
// component has to poll for them.
package preferences

import (
	"context"
	"fmt"
	"sync"
)

// Themes accepted by Preferences.Theme.
const (
	ThemeSystem = "system"
	ThemeLight  = "light"
	ThemeDark   = "dark"
)

// Preferences is a snapshot of the flags.
type Preferences struct {
	Authenticated    bool   `json:"authenticated" mapstructure:"authenticated"`
	SidebarCollapsed bool   `json:"sidebar_collapsed" mapstructure:"sidebar_collapsed"`
	Theme            string `json:"theme" mapstructure:"theme"`
}

// Validate checks the theme value.
func (p Preferences) Validate() error {
	switch p.Theme {
	case ThemeSystem, ThemeLight, ThemeDark:
		return nil
	default:
		return fmt.Errorf("unknown theme %q", p.Theme)
	}
}

// Default returns the signed-out, expanded, system-themed preferences.
func Default() Preferences {
	return Preferences{Theme: ThemeSystem}
}

// Store is the shared, observable owner of one Preferences value.
// Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	current Preferences
	subs    map[int]chan Preferences
	nextID  int
}

// NewStore creates a store holding initial.
func NewStore(initial Preferences) *Store {
	if initial.Theme == "" {
		initial.Theme = ThemeSystem
	}
	return &Store{current: initial, subs: make(map[int]chan Preferences)}
}

// Get returns the current snapshot.
func (s *Store) Get() Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update applies fn to a copy of the current value and publishes the result.
// An invalid result is rejected and nothing changes.
func (s *Store) Update(fn func(*Preferences)) (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current
	fn(&next)
	if err := next.Validate(); err != nil {
		return s.current, err
	}
	if next == s.current {
		return next, nil
	}
	s.current = next
	for _, ch := range s.subs {
		// Subscribers only care about the latest value: drop a stale one.
		select {
		case <-ch:
		default:
		}
		ch <- next
	}
	return next, nil
}

// Subscribe returns a channel that receives every change until ctx is done.
// Slow readers only see the most recent value.
func (s *Store) Subscribe(ctx context.Context) <-chan Preferences {
	ch := make(chan Preferences, 1)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()
	return ch
}

type ctxKey struct{}

// WithStore returns a context carrying s.
func WithStore(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the store carried by ctx, or nil.
func FromContext(ctx context.Context) *Store {
	s, _ := ctx.Value(ctxKey{}).(*Store)
	return s
}
