// Package observe wires the expression evaluator, the observation runtime and
// the resource registry into an Engine that watches expressions and runs
// effects.
package observe

import (
	"log/slog"

	"github.com/podhmo/go-observe/ast"
	"github.com/podhmo/go-observe/evaluator"
	"github.com/podhmo/go-observe/object"
	"github.com/podhmo/go-observe/observation"
	"github.com/podhmo/go-observe/resource"
	"github.com/podhmo/go-observe/scope"
)

type (
	// Object is a runtime value.
	Object = object.Object
	// Scope is a name resolution context.
	Scope = scope.Scope
	// Node is an expression node.
	Node = ast.Node
	// EffectFunc is the body of an effect.
	EffectFunc = observation.EffectFunc
	// WatcherCallback receives the new and old value of a watched expression.
	WatcherCallback = observation.WatcherCallback
)

// Engine evaluates and watches expressions. Like its Runtime, an Engine
// belongs to one goroutine; the Registry may be shared.
type Engine struct {
	Evaluator *evaluator.Evaluator
	Runtime   *observation.Runtime
	Registry  *resource.Registry
	Signaler  *resource.Signaler

	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRegistry shares a registry between engines.
func WithRegistry(r *resource.Registry) Option {
	return func(e *Engine) {
		e.Registry = r
	}
}

// WithSignaler shares a signaler between engines of the same goroutine.
func WithSignaler(s *resource.Signaler) Option {
	return func(e *Engine) {
		e.Signaler = s
	}
}

// New creates an Engine. A nil cfg means DefaultConfig(). Without
// WithRegistry the engine gets the built-in converters and behaviors.
func New(cfg *Config, opts ...Option) *Engine {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := *cfg
	c.Logger = cfg.logger()
	e := &Engine{
		Evaluator: evaluator.New(c.EvaluatorOptions()...),
		Runtime:   observation.New(c.RuntimeOptions()...),
		logger:    c.Logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.Registry == nil {
		e.Registry = resource.NewDefaultRegistry(e.logger)
	}
	if e.Signaler == nil {
		e.Signaler = resource.NewSignaler()
	}
	return e
}

// Logger returns the engine's logger.
func (e *Engine) Logger() *slog.Logger { return e.logger }

// NewScope creates a root scope over bc.
func (e *Engine) NewScope(bc object.Keyed) *scope.Scope { return scope.New(bc) }

// NewHost creates the resource host of one binding.
func (e *Engine) NewHost() *resource.Host { return resource.NewHost(e.Registry, e.Signaler) }

// Evaluate evaluates node once without tracking dependencies. Converters
// and behaviors resolve against the engine's registry.
func (e *Engine) Evaluate(node ast.Node, s *scope.Scope) (object.Object, error) {
	return e.Evaluator.Evaluate(node, s, e.NewHost(), nil)
}

// Assign writes val through node.
func (e *Engine) Assign(node ast.Node, s *scope.Scope, val object.Object) (object.Object, error) {
	return e.Evaluator.Assign(node, s, e.NewHost(), val)
}

// Binding is a bound expression watcher and its resource host.
type Binding struct {
	*observation.ExpressionWatcher
	Host *resource.Host
}

// Watch binds node against s and calls callback whenever its value
// changes. The initial value is available through Value.
func (e *Engine) Watch(node ast.Node, s *scope.Scope, callback WatcherCallback) (*Binding, error) {
	host := e.NewHost()
	w := e.Runtime.NewExpressionWatcher(e.Evaluator, s, node, host, callback)
	host.Attach(w)
	if err := w.Bind(); err != nil {
		return nil, err
	}
	e.logger.Debug("watch", "id", w.ID)
	return &Binding{ExpressionWatcher: w, Host: host}, nil
}

// Effect runs fn once and again whenever something it read changes.
func (e *Engine) Effect(fn EffectFunc) (*observation.Effect, error) {
	return e.Runtime.Effect(fn)
}

// Batch defers notifications raised by fn until it returns.
func (e *Engine) Batch(fn func() error) error { return e.Runtime.Batch(fn) }

// Signal re-evaluates every binding listening to name.
func (e *Engine) Signal(name string) error { return e.Signaler.Dispatch(name) }
