package novapay

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/novapay/internal/logging"
	"github.com/aretw0/novapay/internal/runtime"
	"github.com/aretw0/novapay/pkg/adapters/memory"
	"github.com/aretw0/novapay/pkg/catalog"
	"github.com/aretw0/novapay/pkg/domain"
	"github.com/aretw0/novapay/pkg/flows"
	"github.com/aretw0/novapay/pkg/ports"
	"github.com/aretw0/novapay/pkg/session"
)

// Version is the release of the NovaPay wizard engine.
const Version = "0.4.0"

// App wires the flow registry, one controller per flow and the session
// manager that owns shared session state.
type App struct {
	Registry *flows.Registry
	Sessions *session.Manager
	Catalog  *catalog.Catalog

	store       ports.StateStore
	locker      ports.DistributedLocker
	lockTTL     time.Duration
	timeout     time.Duration
	hooks       domain.LifecycleHooks
	observers   []session.StateObserver
	flowOpts    []flows.Option
	definitions []*domain.Definition
	logger      *slog.Logger
}

// Option configures an App.
type Option func(*App)

// WithStore sets where sessions are persisted (default: in memory).
func WithStore(store ports.StateStore) Option {
	return func(a *App) {
		a.store = store
	}
}

// WithLocker coordinates sessions across processes.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(a *App) {
		a.locker = locker
		a.lockTTL = ttl
	}
}

// WithActionTimeout bounds every async step action.
func WithActionTimeout(d time.Duration) Option {
	return func(a *App) {
		a.timeout = d
	}
}

// WithLifecycleHooks registers observability hooks on every controller.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(a *App) {
		a.hooks = hooks
	}
}

// WithObserver is notified after every persisted transition.
func WithObserver(fn session.StateObserver) Option {
	return func(a *App) {
		a.observers = append(a.observers, fn)
	}
}

// WithFlowOptions configures the built-in flows (mock credentials, latency).
func WithFlowOptions(opts ...flows.Option) Option {
	return func(a *App) {
		a.flowOpts = append(a.flowOpts, opts...)
	}
}

// WithDefinitions adds flows beside the built-in ones. A definition named
// like a built-in flow replaces it.
func WithDefinitions(defs ...*domain.Definition) Option {
	return func(a *App) {
		a.definitions = append(a.definitions, defs...)
	}
}

// WithCatalog relabels flows from a YAML catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(a *App) {
		a.Catalog = c
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// New builds an App serving the four NovaPay flows plus any added with
// WithDefinitions.
func New(opts ...Option) (*App, error) {
	a := &App{}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logging.NewNop()
	}
	if a.store == nil {
		a.store = memory.NewStore()
	}

	reg, err := flows.Builtin(a.flowOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build flows: %w", err)
	}
	for _, def := range a.definitions {
		reg.Register(def)
	}
	if a.Catalog != nil {
		if err := a.Catalog.Apply(reg); err != nil {
			return nil, err
		}
	}
	a.Registry = reg

	mgrOpts := []session.Option{
		session.WithLogger(a.logger),
		session.WithActionTimeout(a.timeout),
	}
	if a.locker != nil {
		mgrOpts = append(mgrOpts, session.WithLocker(a.locker))
		if a.lockTTL > 0 {
			mgrOpts = append(mgrOpts, session.WithLockTTL(a.lockTTL))
		}
	}
	for _, obs := range a.observers {
		mgrOpts = append(mgrOpts, session.WithObserver(obs))
	}

	a.Sessions = session.NewManager(a.store, mgrOpts...)
	for _, def := range reg.Definitions() {
		a.Sessions.Register(runtime.NewEngine(def,
			runtime.WithLifecycleHooks(a.hooks),
			runtime.WithLogger(a.logger.With("flow", def.Name())),
		))
	}
	return a, nil
}

// Title returns the display title of a flow.
func (a *App) Title(flow string) string {
	return a.Catalog.Title(flow)
}

// Store returns the session store in use.
func (a *App) Store() ports.StateStore {
	return a.store
}
