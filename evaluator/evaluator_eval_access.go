package evaluator

import (
	"fmt"

	"github.com/podhmo/go-observe/ast"
	"github.com/podhmo/go-observe/object"
	"github.com/podhmo/go-observe/scope"
)

func evalAccessThis(n *ast.AccessThis, s *scope.Scope) object.Object {
	if a := scope.Ancestor(s, n.Ancestor); a != nil {
		return a.BindingContext
	}
	return object.UNDEFINED
}

func (ev *Evaluator) evalAccessScope(n *ast.AccessScope, s *scope.Scope, caps Capabilities, c Connectable) (object.Object, error) {
	ctx := scope.GetContext(s, n.Name, n.Ancestor)
	if ctx == nil {
		if n.Name == "$host" {
			return nil, ErrHostNotFound
		}
		return ev.looseEmpty(caps, object.UNDEFINED), nil
	}
	if c != nil {
		c.Observe(ctx, n.Name)
	}
	v, _ := ctx.Get(n.Name)
	if v == nil {
		v = object.UNDEFINED
	}
	if object.IsNullish(v) && n.Name == "$host" {
		return nil, ErrHostNotFound
	}
	if f, ok := v.(*object.Function); ok && ev.isBoundFn(caps) {
		return f.Bind(ctx), nil
	}
	return ev.looseEmpty(caps, v), nil
}

// looseEmpty turns a nullish scope read into "" outside strict mode.
func (ev *Evaluator) looseEmpty(caps Capabilities, v object.Object) object.Object {
	if !ev.isStrict(caps) && object.IsNullish(v) {
		return object.String("")
	}
	return v
}

// evalChain evaluates a member, keyed or call node that may be part of an
// optional chain. short reports that an optional link met a nullish value;
// every link above it then yields undefined without being evaluated.
func (ev *Evaluator) evalChain(node ast.Node, s *scope.Scope, caps Capabilities, c Connectable) (v object.Object, short bool, err error) {
	switch n := node.(type) {
	case *ast.AccessMember:
		return ev.evalAccessMember(n, s, caps, c)
	case *ast.AccessKeyed:
		return ev.evalAccessKeyed(n, s, caps, c)
	case *ast.CallMember:
		return ev.evalCallMember(n, s, caps, c)
	case *ast.CallFunction:
		return ev.evalCallFunction(n, s, caps, c)
	case *ast.CallScope:
		return ev.evalCallScope(n, s, caps, c)
	}
	v, err = ev.eval(node, s, caps, c)
	return v, false, err
}

// nullishBase decides what a link on a nullish base yields.
func (ev *Evaluator) nullishBase(caps Capabilities, optional bool, what string) (object.Object, bool, error) {
	if optional {
		return object.UNDEFINED, true, nil
	}
	if ev.isStrict(caps) {
		return nil, false, fmt.Errorf("%w: reading %q", ErrNullishAccess, what)
	}
	return object.UNDEFINED, false, nil
}

func (ev *Evaluator) evalAccessMember(n *ast.AccessMember, s *scope.Scope, caps Capabilities, c Connectable) (object.Object, bool, error) {
	obj, short, err := ev.evalChain(n.Object, s, caps, c)
	if err != nil || short {
		return object.UNDEFINED, short, err
	}
	if object.IsNullish(obj) {
		return ev.nullishBase(caps, n.Optional, n.Name)
	}
	if c != nil && !n.AccessGlobal {
		c.Observe(obj, n.Name)
	}
	v := getProperty(obj, n.Name)
	if f, ok := v.(*object.Function); ok && ev.isBoundFn(caps) {
		return f.Bind(obj), false, nil
	}
	return v, false, nil
}

func (ev *Evaluator) evalAccessKeyed(n *ast.AccessKeyed, s *scope.Scope, caps Capabilities, c Connectable) (object.Object, bool, error) {
	obj, short, err := ev.evalChain(n.Object, s, caps, c)
	if err != nil || short {
		return object.UNDEFINED, short, err
	}
	if n.Optional && object.IsNullish(obj) {
		return object.UNDEFINED, true, nil
	}
	key, err := ev.eval(n.Key, s, caps, c)
	if err != nil {
		return nil, false, err
	}
	name := object.ToString(key)
	if object.IsNullish(obj) {
		return ev.nullishBase(caps, n.Optional, name)
	}
	if c != nil && !n.AccessGlobal {
		c.Observe(obj, name)
	}
	return getProperty(obj, name), false, nil
}
