package observation

import (
	"log/slog"

	"github.com/podhmo/go-observe/object"
)

// DefaultMaxRunCount is how many times an effect may re-run itself in a row
// before it fails with ErrMaxRecursion.
const DefaultMaxRunCount = 10

// Runtime is the observation hub of one logical thread: it owns the
// connectable switcher, the active batch and the observer locator.
// A Runtime is not safe for concurrent use; use one per goroutine.
type Runtime struct {
	logger      *slog.Logger
	metrics     *Metrics
	maxRunCount int

	switcher Switcher
	locator  *ObserverLocator
	batch    *batch
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(rt *Runtime) {
		rt.logger = logger
	}
}

// WithMaxRunCount sets the effect recursion cap.
func WithMaxRunCount(n int) Option {
	return func(rt *Runtime) {
		rt.maxRunCount = n
	}
}

// WithMetrics enables metrics collection.
func WithMetrics(m *Metrics) Option {
	return func(rt *Runtime) {
		rt.metrics = m
	}
}

// New creates a Runtime.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		maxRunCount: DefaultMaxRunCount,
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.logger == nil {
		rt.logger = slog.Default()
	}
	rt.locator = newObserverLocator(rt)
	return rt
}

// Logger returns the runtime's logger.
func (rt *Runtime) Logger() *slog.Logger { return rt.logger }

// Metrics returns the runtime's metrics, or nil.
func (rt *Runtime) Metrics() *Metrics { return rt.metrics }

// MaxRunCount returns the effect recursion cap.
func (rt *Runtime) MaxRunCount() int { return rt.maxRunCount }

// Switcher returns the connectable switcher.
func (rt *Runtime) Switcher() *Switcher { return &rt.switcher }

// Locator returns the observer locator.
func (rt *Runtime) Locator() *ObserverLocator { return rt.locator }

// Read returns obj[key], registering it as a dependency of the active
// connectable if there is one.
func (rt *Runtime) Read(obj object.Object, key string) object.Object {
	if rt.switcher.Connecting() {
		rt.switcher.current.Observe(obj, key)
	}
	return getProperty(obj, key)
}

// Write sets obj[key] through its observer.
func (rt *Runtime) Write(obj object.Object, key string, val object.Object) error {
	return rt.locator.GetObserver(obj, key).SetValue(val)
}

// Untracked runs fn with dependency registration suspended.
func (rt *Runtime) Untracked(fn func() error) error {
	prev := rt.switcher.paused
	rt.switcher.paused = true
	defer func() { rt.switcher.paused = prev }()
	return fn()
}

func getProperty(obj object.Object, key string) object.Object {
	if g, ok := obj.(object.Getter); ok {
		v, _ := g.Get(key)
		if v == nil {
			return object.UNDEFINED
		}
		return v
	}
	return object.UNDEFINED
}
