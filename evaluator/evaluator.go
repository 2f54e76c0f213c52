// Package evaluator interprets expression trees against a scope, reporting
// every property and collection read to a connectable so the caller can
// re-evaluate when one of them changes.
package evaluator

import (
	"context"
	"log/slog"

	"github.com/podhmo/go-observe/ast"
	"github.com/podhmo/go-observe/object"
	"github.com/podhmo/go-observe/scope"
)

// Connectable receives the dependencies of an evaluation.
type Connectable interface {
	Observe(obj object.Object, key string)
	ObserveCollection(collection object.Object)
}

// Capabilities are the per-call hooks of the binding that owns an
// evaluation. Every hook is optional; a caller implements any of StrictMode,
// BoundFunctions, ConverterUser, ConverterBinder and BehaviorBinder. A nil
// Capabilities uses the evaluator's defaults and no resources.
type Capabilities interface{}

// StrictMode overrides the evaluator's strictness for one binding.
type StrictMode interface {
	Strict() bool
}

// BoundFunctions overrides whether functions read from scope or members are
// bound to their owner.
type BoundFunctions interface {
	BoundFunctions() bool
}

// ConverterMode selects the direction of a value converter.
type ConverterMode int

const (
	ToView ConverterMode = iota
	FromView
)

func (m ConverterMode) String() string {
	if m == FromView {
		return "fromView"
	}
	return "toView"
}

// ConverterUser applies value converters.
type ConverterUser interface {
	UseConverter(name string, mode ConverterMode, val object.Object, args []object.Object) (object.Object, error)
}

// ConverterBinder is told when a converter enters and leaves a binding.
type ConverterBinder interface {
	BindConverter(name string) error
	UnbindConverter(name string) error
}

// BehaviorBinder applies and removes binding behaviors.
type BehaviorBinder interface {
	BindBehavior(name string, s *scope.Scope, args []object.Object) error
	UnbindBehavior(name string, s *scope.Scope) error
}

// CustomExpression is implemented by host-defined nodes of kind
// ast.KindCustom. They may also implement CustomAssigner and CustomBinder.
type CustomExpression interface {
	ast.Node
	Evaluate(s *scope.Scope, caps Capabilities, c Connectable) (object.Object, error)
}

// CustomAssigner is an assignable CustomExpression.
type CustomAssigner interface {
	Assign(s *scope.Scope, caps Capabilities, val object.Object) (object.Object, error)
}

// CustomBinder is a CustomExpression with lifecycle hooks.
type CustomBinder interface {
	Bind(s *scope.Scope, caps Capabilities) error
	Unbind(s *scope.Scope, caps Capabilities) error
}

// Evaluator interprets expression trees. It is stateless between calls and
// may be shared by goroutines that do not share values.
type Evaluator struct {
	strict  bool
	boundFn bool
	logger  *slog.Logger
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithStrict sets the default strictness.
func WithStrict(strict bool) Option {
	return func(ev *Evaluator) {
		ev.strict = strict
	}
}

// WithBoundFunctions makes functions read from a scope or member bound to
// their owner by default.
func WithBoundFunctions(bound bool) Option {
	return func(ev *Evaluator) {
		ev.boundFn = bound
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(ev *Evaluator) {
		ev.logger = logger
	}
}

// New creates an Evaluator.
func New(opts ...Option) *Evaluator {
	ev := &Evaluator{}
	for _, opt := range opts {
		opt(ev)
	}
	if ev.logger == nil {
		ev.logger = slog.Default()
	}
	return ev
}

func (ev *Evaluator) isStrict(caps Capabilities) bool {
	if s, ok := caps.(StrictMode); ok {
		return s.Strict()
	}
	return ev.strict
}

func (ev *Evaluator) isBoundFn(caps Capabilities) bool {
	if b, ok := caps.(BoundFunctions); ok {
		return b.BoundFunctions()
	}
	return ev.boundFn
}

// Evaluate computes the value of node in s. When c is not nil every property
// and collection read is reported to it.
func (ev *Evaluator) Evaluate(node ast.Node, s *scope.Scope, caps Capabilities, c Connectable) (object.Object, error) {
	v, err := ev.eval(node, s, caps, c)
	if err != nil {
		ev.logc(context.Background(), slog.LevelDebug, "evaluate failed", "kind", node.Kind(), "error", err)
		return nil, err
	}
	return v, nil
}

func (ev *Evaluator) eval(node ast.Node, s *scope.Scope, caps Capabilities, c Connectable) (object.Object, error) {
	switch n := node.(type) {
	case *ast.AccessThis:
		return evalAccessThis(n, s), nil
	case *ast.AccessBoundary:
		if bc := scope.Boundary(s); bc != nil {
			return bc, nil
		}
		return object.UNDEFINED, nil
	case *ast.AccessGlobal:
		v, _ := scope.Global().Get(n.Name)
		return v, nil
	case *ast.AccessScope:
		return ev.evalAccessScope(n, s, caps, c)
	case *ast.AccessMember, *ast.AccessKeyed, *ast.CallMember, *ast.CallFunction, *ast.CallScope:
		v, _, err := ev.evalChain(node, s, caps, c)
		return v, err
	case *ast.CallGlobal:
		return ev.evalCallGlobal(n, s, caps, c)
	case *ast.ArrayLiteral:
		return ev.evalArrayLiteral(n, s, caps, c)
	case *ast.ObjectLiteral:
		return ev.evalObjectLiteral(n, s, caps, c)
	case *ast.PrimitiveLiteral:
		if n.Value == nil {
			return object.UNDEFINED, nil
		}
		return n.Value, nil
	case *ast.Template:
		return ev.evalTemplate(n, s, caps, c)
	case *ast.TaggedTemplate:
		return ev.evalTaggedTemplate(n, s, caps, c)
	case *ast.Unary:
		return ev.evalUnary(n, s, caps, c)
	case *ast.Binary:
		return ev.evalBinary(n, s, caps, c)
	case *ast.Conditional:
		cond, err := ev.eval(n.Condition, s, caps, c)
		if err != nil {
			return nil, err
		}
		if object.Truthy(cond) {
			return ev.eval(n.Yes, s, caps, c)
		}
		return ev.eval(n.No, s, caps, c)
	case *ast.Assign:
		return ev.evalAssign(n, s, caps, c)
	case *ast.ArrowFunction:
		return ev.evalArrowFunction(n, s, caps, c), nil
	case *ast.ValueConverter:
		return ev.evalValueConverter(n, s, caps, c)
	case *ast.BindingBehavior:
		return ev.eval(n.Expression, s, caps, c)
	case *ast.BindingIdentifier:
		return object.String(n.Name), nil
	case *ast.ForOfStatement:
		return ev.eval(n.Iterable, s, caps, c)
	case *ast.Interpolation:
		return ev.evalInterpolation(n, s, caps, c)
	case *ast.ArrayBindingPattern, *ast.ObjectBindingPattern,
		*ast.ArrayDestructuring, *ast.ObjectDestructuring, *ast.DestructuringLeaf:
		// binding patterns only take part in assignment
		return object.UNDEFINED, nil
	case CustomExpression:
		return n.Evaluate(s, caps, c)
	}
	return object.UNDEFINED, nil
}

func (ev *Evaluator) evalArgs(args []ast.Node, s *scope.Scope, caps Capabilities, c Connectable) ([]object.Object, error) {
	vals := make([]object.Object, len(args))
	for i, a := range args {
		v, err := ev.eval(a, s, caps, c)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

// getProperty reads obj[key] without observing.
func getProperty(obj object.Object, key string) object.Object {
	g, ok := obj.(object.Getter)
	if !ok {
		return object.UNDEFINED
	}
	v, _ := g.Get(key)
	if v == nil {
		return object.UNDEFINED
	}
	return v
}
