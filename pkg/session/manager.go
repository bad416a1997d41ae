package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/novapay/internal/logging"
	"github.com/aretw0/novapay/pkg/domain"
	"github.com/aretw0/novapay/pkg/ports"
	"github.com/google/uuid"
)

// DefaultLockTTL bounds how long a distributed session lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// inflight tracks an async action started by this process.
type inflight struct {
	attempt uint64
	cancel  context.CancelFunc
}

// StateObserver is notified after every persisted transition.
// prev is nil when the session was just created; next is nil after Delete.
type StateObserver func(ctx context.Context, prev, next *domain.State)

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.StateStore

	mu       sync.Mutex            // guards locks, inflight and controllers
	locks    map[string]*lockEntry // active locks
	inflight map[string]inflight   // async actions running in this process

	controllers map[string]ports.Controller

	locker        ports.DistributedLocker
	lockTTL       time.Duration
	actionTimeout time.Duration
	observers     []StateObserver
	logger        *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithActionTimeout bounds each async step action. Zero means no timeout.
func WithActionTimeout(d time.Duration) Option {
	return func(m *Manager) {
		m.actionTimeout = d
	}
}

// WithObserver registers a StateObserver.
func WithObserver(fn StateObserver) Option {
	return func(m *Manager) {
		if fn != nil {
			m.observers = append(m.observers, fn)
		}
	}
}

// WithController registers the controller for its definition's flow.
func WithController(ctrl ports.Controller) Option {
	return func(m *Manager) {
		m.controllers[ctrl.Definition().Name()] = ctrl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a new Session Manager with the given persistence store.
func NewManager(store ports.StateStore, opts ...Option) *Manager {
	m := &Manager{
		store:       store,
		locks:       make(map[string]*lockEntry),
		inflight:    make(map[string]inflight),
		controllers: make(map[string]ports.Controller),
		lockTTL:     DefaultLockTTL,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewID returns a fresh random session identifier.
func NewID() string {
	return uuid.NewString()
}

// Register adds or replaces the controller for its flow.
func (m *Manager) Register(ctrl ports.Controller) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.controllers[ctrl.Definition().Name()] = ctrl
}

// Flows lists the registered flow names.
func (m *Manager) Flows() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.controllers))
	for name := range m.controllers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Controller returns the controller registered for flow.
func (m *Manager) Controller(flow string) (ports.Controller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ctrl, ok := m.controllers[flow]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrFlowNotFound, flow)
	}
	return ctrl, nil
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Start creates and persists a new session for flow.
func (m *Manager) Start(ctx context.Context, flow string) (*domain.State, error) {
	ctrl, err := m.Controller(flow)
	if err != nil {
		return nil, err
	}
	sessionID := NewID()

	var state *domain.State
	err = m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		state = ctrl.Start(ctx, sessionID)
		if err := m.store.Save(ctx, sessionID, state); err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		m.notify(ctx, nil, state)
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.logger.Info("session started", "session_id", sessionID, "flow", flow)
	return state, nil
}

// Load retrieves an existing session from the store.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	var state *domain.State
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		state, err = m.store.Load(ctx, sessionID)
		return err
	})
	return state, err
}

// View loads a session and renders it through its controller.
func (m *Manager) View(ctx context.Context, sessionID string) (domain.View, error) {
	state, err := m.Load(ctx, sessionID)
	if err != nil {
		return domain.View{}, err
	}
	ctrl, err := m.Controller(state.Flow)
	if err != nil {
		return domain.View{}, err
	}
	return ctrl.Render(state)
}

// SubmitField merges one payload entry into the session.
func (m *Manager) SubmitField(ctx context.Context, sessionID, key string, value any) (*domain.State, error) {
	return m.mutate(ctx, sessionID, func(ctx context.Context, ctrl ports.Controller, state *domain.State) (*domain.State, error) {
		return ctrl.SubmitField(state, key, value), nil
	})
}

// SubmitFields merges several payload entries in one transition.
func (m *Manager) SubmitFields(ctx context.Context, sessionID string, fields map[string]any) (*domain.State, error) {
	return m.mutate(ctx, sessionID, func(ctx context.Context, ctrl ports.Controller, state *domain.State) (*domain.State, error) {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			state = ctrl.SubmitField(state, k, fields[k])
		}
		return state, nil
	})
}

// Advance moves the session forward. Async actions run outside the session
// lock: while one runs, other operations proceed and a concurrent Advance
// fails with a BusyError.
func (m *Manager) Advance(ctx context.Context, sessionID string) (*domain.State, error) {
	var (
		ctrl    ports.Controller
		pending *domain.State
	)
	actionCtx, cancel := m.actionContext(ctx)
	defer cancel()

	// The action is tracked before the lock is released so a Cancel that
	// follows the submitting save can always abort it.
	state, err := m.mutate(ctx, sessionID, func(ctx context.Context, c ports.Controller, state *domain.State) (*domain.State, error) {
		next, err := c.Begin(ctx, state)
		if err == nil && next.Status == domain.StatusSubmitting {
			ctrl, pending = c, next
			m.track(sessionID, next.Attempt, cancel)
		}
		return next, err
	})
	if pending != nil {
		defer m.untrack(sessionID, pending.Attempt)
	}
	if err != nil || pending == nil {
		return state, err
	}

	result, actionErr := ctrl.Execute(actionCtx, pending)

	// The caller's own context may be gone by now; the outcome is still recorded.
	settleCtx := context.WithoutCancel(ctx)
	return m.mutate(settleCtx, sessionID, func(ctx context.Context, c ports.Controller, current *domain.State) (*domain.State, error) {
		return c.Resolve(ctx, current, pending.Attempt, result, actionErr)
	})
}

// Retreat moves the session one step back.
func (m *Manager) Retreat(ctx context.Context, sessionID string) (*domain.State, error) {
	return m.mutate(ctx, sessionID, func(ctx context.Context, ctrl ports.Controller, state *domain.State) (*domain.State, error) {
		return ctrl.Retreat(ctx, state)
	})
}

// JumpTo moves the session to a previously reached step.
func (m *Manager) JumpTo(ctx context.Context, sessionID string, index int) (*domain.State, error) {
	return m.mutate(ctx, sessionID, func(ctx context.Context, ctrl ports.Controller, state *domain.State) (*domain.State, error) {
		return ctrl.JumpTo(ctx, state, index)
	})
}

// Reset restarts the session at its first step with an empty payload.
func (m *Manager) Reset(ctx context.Context, sessionID string) (*domain.State, error) {
	return m.mutate(ctx, sessionID, func(ctx context.Context, ctrl ports.Controller, state *domain.State) (*domain.State, error) {
		return ctrl.Reset(ctx, state), nil
	})
}

// Cancel abandons an in-flight async step. Its late result is discarded.
func (m *Manager) Cancel(ctx context.Context, sessionID string) (*domain.State, error) {
	return m.mutate(ctx, sessionID, func(ctx context.Context, ctrl ports.Controller, state *domain.State) (*domain.State, error) {
		return ctrl.Cancel(ctx, state), nil
	})
}

// Delete removes the session from the store, abandoning any in-flight action.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		m.abort(sessionID)
		prev, err := m.store.Load(ctx, sessionID)
		if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			return err
		}
		if err := m.store.Delete(ctx, sessionID); err != nil {
			return err
		}
		if prev != nil {
			m.notify(ctx, prev, nil)
		}
		return nil
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying state store.
func (m *Manager) Store() ports.StateStore {
	return m.store
}

type transition func(ctx context.Context, ctrl ports.Controller, state *domain.State) (*domain.State, error)

// mutate loads the session under lock, applies fn and persists the result.
// Rejected operations return their input state, which is not saved again.
func (m *Manager) mutate(ctx context.Context, sessionID string, fn transition) (*domain.State, error) {
	var (
		result *domain.State
		opErr  error
	)
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		state, err := m.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}
		ctrl, err := m.Controller(state.Flow)
		if err != nil {
			return err
		}

		next, err := fn(ctx, ctrl, state)
		result, opErr = next, err
		if next == nil || next == state {
			return nil
		}

		if state.Busy() && next.Attempt != state.Attempt {
			m.abort(sessionID)
		}
		if err := m.store.Save(ctx, sessionID, next); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		m.notify(ctx, state, next)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, opErr
}

func (m *Manager) actionContext(ctx context.Context) (context.Context, context.CancelFunc) {
	base := context.WithoutCancel(ctx)
	if m.actionTimeout > 0 {
		return context.WithTimeout(base, m.actionTimeout)
	}
	return context.WithCancel(base)
}

func (m *Manager) track(sessionID string, attempt uint64, cancel context.CancelFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inflight[sessionID] = inflight{attempt: attempt, cancel: cancel}
}

func (m *Manager) untrack(sessionID string, attempt uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.inflight[sessionID]; ok && f.attempt == attempt {
		delete(m.inflight, sessionID)
	}
}

// abort cancels the context of a local in-flight action, if any.
func (m *Manager) abort(sessionID string) {
	m.mu.Lock()
	f, ok := m.inflight[sessionID]
	delete(m.inflight, sessionID)
	m.mu.Unlock()

	if ok {
		f.cancel()
		m.logger.Debug("in-flight action aborted", "session_id", sessionID, "attempt", f.attempt)
	}
}

func (m *Manager) notify(ctx context.Context, prev, next *domain.State) {
	for _, fn := range m.observers {
		fn(ctx, prev, next)
	}
}
