package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/podhmo/go-observe/ast"
	"github.com/podhmo/go-observe/object"
	"github.com/podhmo/go-observe/scope"
)

// Assign writes val to the location node denotes in s and returns the value
// written. Nodes that are not assignable are ignored and yield undefined.
func (ev *Evaluator) Assign(node ast.Node, s *scope.Scope, caps Capabilities, val object.Object) (object.Object, error) {
	v, err := ev.assign(node, s, caps, val)
	if err != nil {
		ev.logc(context.Background(), slog.LevelDebug, "assign failed", "kind", node.Kind(), "error", err)
		return nil, err
	}
	return v, nil
}

func (ev *Evaluator) assign(node ast.Node, s *scope.Scope, caps Capabilities, val object.Object) (object.Object, error) {
	if val == nil {
		val = object.UNDEFINED
	}
	switch n := node.(type) {
	case *ast.AccessScope:
		if n.Name == "$host" {
			return nil, ErrHostAssign
		}
		ctx := scope.GetContext(s, n.Name, n.Ancestor)
		if ctx == nil {
			return nil, fmt.Errorf("%w: no scope %d levels up for %q", ErrNullishAccess, n.Ancestor, n.Name)
		}
		return val, ctx.Set(n.Name, val)

	case *ast.AccessMember:
		obj, err := ev.eval(n.Object, s, caps, nil)
		if err != nil {
			return nil, err
		}
		if !object.IsObject(obj) {
			if _, ok := obj.(object.Keyed); !ok {
				// a primitive or nullish owner is replaced by a fresh record
				rec := object.NewRecord()
				rec.SetRaw(n.Name, val)
				if _, err := ev.assign(n.Object, s, caps, rec); err != nil {
					return nil, err
				}
				return val, nil
			}
		}
		return val, setProperty(obj, n.Name, val)

	case *ast.AccessKeyed:
		obj, err := ev.eval(n.Object, s, caps, nil)
		if err != nil {
			return nil, err
		}
		key, err := ev.eval(n.Key, s, caps, nil)
		if err != nil {
			return nil, err
		}
		name := object.ToString(key)
		if object.IsNullish(obj) {
			return nil, fmt.Errorf("%w: setting %q", ErrNullishAccess, name)
		}
		return val, setProperty(obj, name, val)

	case *ast.Assign:
		if _, err := ev.assign(n.Value, s, caps, val); err != nil {
			return nil, err
		}
		return ev.assign(n.Target, s, caps, val)

	case *ast.ValueConverter:
		args, err := ev.evalArgs(n.Args, s, caps, nil)
		if err != nil {
			return nil, err
		}
		if u, ok := caps.(ConverterUser); ok {
			val, err = u.UseConverter(n.Name, FromView, val, args)
			if err != nil {
				return nil, err
			}
		}
		return ev.assign(n.Expression, s, caps, val)

	case *ast.BindingBehavior:
		return ev.assign(n.Expression, s, caps, val)

	case *ast.ArrayDestructuring:
		return val, ev.assignList(n.List, s, caps, val)
	case *ast.ObjectDestructuring:
		return val, ev.assignList(n.List, s, caps, val)
	case *ast.DestructuringLeaf:
		return val, ev.assignLeaf(n, s, caps, val)

	case CustomExpression:
		if a, ok := n.(CustomAssigner); ok {
			return a.Assign(s, caps, val)
		}
	}
	return object.UNDEFINED, nil
}

// setProperty writes obj[key]. Array lengths go through SetLength so the
// array observer sees a splice.
func setProperty(obj object.Object, key string, val object.Object) error {
	if a, ok := obj.(*object.Array); ok && key == "length" {
		return a.SetLength(object.ToNumber(val))
	}
	if k, ok := obj.(object.Keyed); ok {
		return k.Set(key, val)
	}
	return fmt.Errorf("cannot set property %q on %s", key, object.TypeOf(obj))
}

func (ev *Evaluator) assignList(list []ast.Node, s *scope.Scope, caps Capabilities, val object.Object) error {
	for _, item := range list {
		switch it := item.(type) {
		case *ast.DestructuringLeaf:
			if err := ev.assignLeaf(it, s, caps, val); err != nil {
				return err
			}
		case *ast.ArrayDestructuring:
			if err := ev.assignNested(it, it.Source, it.Initializer, s, caps, val); err != nil {
				return err
			}
		case *ast.ObjectDestructuring:
			if err := ev.assignNested(it, it.Source, it.Initializer, s, caps, val); err != nil {
				return err
			}
		}
	}
	return nil
}

// assignNested reads the value of a nested pattern out of val and assigns it.
func (ev *Evaluator) assignNested(pattern, source, initializer ast.Node, s *scope.Scope, caps Capabilities, val object.Object) error {
	bc, ok := val.(object.Keyed)
	if !ok {
		return fmt.Errorf("%w: %s", ErrDestructuring, object.TypeOf(val))
	}
	v, err := ev.eval(source, scope.Create(bc, nil, false), caps, nil)
	if err != nil {
		return err
	}
	if v == object.Object(object.UNDEFINED) && initializer != nil {
		if v, err = ev.eval(initializer, s, caps, nil); err != nil {
			return err
		}
	}
	_, err = ev.assign(pattern, s, caps, v)
	return err
}

// assignLeaf assigns one target of a pattern. A nullish val leaves the
// target untouched.
func (ev *Evaluator) assignLeaf(n *ast.DestructuringLeaf, s *scope.Scope, caps Capabilities, val object.Object) error {
	if object.IsNullish(val) {
		return nil
	}
	bc, ok := val.(object.Keyed)
	if !ok {
		return fmt.Errorf("%w: %s", ErrDestructuring, object.TypeOf(val))
	}

	if !n.Rest {
		v, err := ev.eval(n.Source, scope.Create(bc, nil, false), caps, nil)
		if err != nil {
			return err
		}
		if v == object.Object(object.UNDEFINED) && n.Initializer != nil {
			if v, err = ev.eval(n.Initializer, s, caps, nil); err != nil {
				return err
			}
		}
		_, err = ev.assign(n.Target, s, caps, v)
		return err
	}

	var rest object.Object
	if n.RestOfArray() {
		a, ok := val.(*object.Array)
		if !ok {
			return fmt.Errorf("%w: array rest of %s", ErrDestructuring, object.TypeOf(val))
		}
		from := min(n.RestIndex, a.Len())
		rest = object.NewArray(append([]object.Object(nil), a.Elements[from:]...)...)
	} else {
		rec := object.NewRecord()
		for _, k := range bc.Keys() {
			if slices.Contains(n.RestExcluded, k) {
				continue
			}
			v, _ := bc.Get(k)
			rec.SetRaw(k, v)
		}
		rest = rec
	}
	_, err := ev.assign(n.Target, s, caps, rest)
	return err
}
