package evaluator

import (
	"context"
	"log/slog"

	"github.com/podhmo/go-observe/ast"
	"github.com/podhmo/go-observe/scope"
)

// Bind runs the lifecycle hooks of the behaviors and converters in node.
// Only binding behaviors, value converters, for-of statements and custom
// nodes have hooks; the call recurses into the expression they wrap.
func (ev *Evaluator) Bind(node ast.Node, s *scope.Scope, caps Capabilities) error {
	switch n := node.(type) {
	case *ast.BindingBehavior:
		if b, ok := caps.(BehaviorBinder); ok {
			args, err := ev.evalArgs(n.Args, s, caps, nil)
			if err != nil {
				return err
			}
			if err := b.BindBehavior(n.Name, s, args); err != nil {
				ev.logc(context.Background(), slog.LevelDebug, "bind behavior failed", "name", n.Name, "error", err)
				return err
			}
		}
		return ev.Bind(n.Expression, s, caps)
	case *ast.ValueConverter:
		if b, ok := caps.(ConverterBinder); ok {
			if err := b.BindConverter(n.Name); err != nil {
				ev.logc(context.Background(), slog.LevelDebug, "bind converter failed", "name", n.Name, "error", err)
				return err
			}
		}
		return ev.Bind(n.Expression, s, caps)
	case *ast.ForOfStatement:
		return ev.Bind(n.Iterable, s, caps)
	case CustomExpression:
		if b, ok := n.(CustomBinder); ok {
			return b.Bind(s, caps)
		}
	}
	return nil
}

// Unbind reverses Bind.
func (ev *Evaluator) Unbind(node ast.Node, s *scope.Scope, caps Capabilities) error {
	switch n := node.(type) {
	case *ast.BindingBehavior:
		if b, ok := caps.(BehaviorBinder); ok {
			if err := b.UnbindBehavior(n.Name, s); err != nil {
				return err
			}
		}
		return ev.Unbind(n.Expression, s, caps)
	case *ast.ValueConverter:
		if b, ok := caps.(ConverterBinder); ok {
			if err := b.UnbindConverter(n.Name); err != nil {
				return err
			}
		}
		return ev.Unbind(n.Expression, s, caps)
	case *ast.ForOfStatement:
		return ev.Unbind(n.Iterable, s, caps)
	case CustomExpression:
		if b, ok := n.(CustomBinder); ok {
			return b.Unbind(s, caps)
		}
	}
	return nil
}
