package evaluator

import (
	"fmt"
	"slices"

	"github.com/podhmo/go-observe/ast"
	"github.com/podhmo/go-observe/object"
	"github.com/podhmo/go-observe/scope"
)

// Read-only collection methods whose result depends on the whole collection.
// Calling one while collecting dependencies observes the collection.
var (
	autoObservedArrayMethods = []string{
		"at", "map", "filter", "includes", "indexOf", "lastIndexOf", "findIndex", "find",
		"flat", "flatMap", "join", "reduce", "reduceRight", "slice", "every", "some", "sort",
	}
	autoObservedSetMethods = []string{"has", "keys", "values", "entries", "forEach"}
	autoObservedMapMethods = []string{"get", "has", "keys", "values", "entries", "forEach"}
)

func autoObserved(obj object.Object, name string) bool {
	switch obj.(type) {
	case *object.Array:
		return slices.Contains(autoObservedArrayMethods, name)
	case *object.Set:
		return slices.Contains(autoObservedSetMethods, name)
	case *object.Map:
		return slices.Contains(autoObservedMapMethods, name)
	}
	return false
}

// resolveFunction checks that fn is callable. A nullish fn yields undefined
// outside strict mode, and short-circuits an optional call.
func (ev *Evaluator) resolveFunction(caps Capabilities, fn object.Object, optional bool, name string) (f *object.Function, v object.Object, short bool, err error) {
	if f, ok := fn.(*object.Function); ok {
		return f, nil, false, nil
	}
	if object.IsNullish(fn) {
		if optional {
			return nil, object.UNDEFINED, true, nil
		}
		if !ev.isStrict(caps) {
			return nil, object.UNDEFINED, false, nil
		}
	}
	return nil, nil, false, fmt.Errorf("%w: %s is %s", ErrNotAFunction, name, object.TypeOf(fn))
}

func (ev *Evaluator) evalCallScope(n *ast.CallScope, s *scope.Scope, caps Capabilities, c Connectable) (object.Object, bool, error) {
	ctx := scope.GetContext(s, n.Name, n.Ancestor)
	var this object.Object = object.UNDEFINED
	var fn object.Object = object.UNDEFINED
	if ctx != nil {
		this = ctx
		fn = getProperty(ctx, n.Name)
	}
	f, v, short, err := ev.resolveFunction(caps, fn, n.OptionalCall, n.Name)
	if f == nil {
		return v, short, err
	}
	args, err := ev.evalArgs(n.Args, s, caps, c)
	if err != nil {
		return nil, false, err
	}
	ret, err := f.Call(this, args)
	if err != nil {
		return nil, false, err
	}
	if c != nil && autoObserved(this, n.Name) {
		c.ObserveCollection(this)
	}
	return ret, false, nil
}

func (ev *Evaluator) evalCallMember(n *ast.CallMember, s *scope.Scope, caps Capabilities, c Connectable) (object.Object, bool, error) {
	obj, short, err := ev.evalChain(n.Object, s, caps, c)
	if err != nil || short {
		return object.UNDEFINED, short, err
	}
	if object.IsNullish(obj) {
		return ev.nullishBase(caps, n.OptionalMember, n.Name)
	}
	f, v, short, err := ev.resolveFunction(caps, getProperty(obj, n.Name), n.OptionalCall, n.Name)
	if f == nil {
		return v, short, err
	}
	args, err := ev.evalArgs(n.Args, s, caps, c)
	if err != nil {
		return nil, false, err
	}
	ret, err := f.Call(obj, args)
	if err != nil {
		return nil, false, err
	}
	if c != nil && autoObserved(obj, n.Name) {
		c.ObserveCollection(obj)
	}
	return ret, false, nil
}

func (ev *Evaluator) evalCallFunction(n *ast.CallFunction, s *scope.Scope, caps Capabilities, c Connectable) (object.Object, bool, error) {
	fn, short, err := ev.evalChain(n.Func, s, caps, c)
	if err != nil || short {
		return object.UNDEFINED, short, err
	}
	f, v, short, err := ev.resolveFunction(caps, fn, n.Optional, "expression")
	if f == nil {
		return v, short, err
	}
	args, err := ev.evalArgs(n.Args, s, caps, c)
	if err != nil {
		return nil, false, err
	}
	ret, err := f.Call(object.UNDEFINED, args)
	return ret, false, err
}

func (ev *Evaluator) evalCallGlobal(n *ast.CallGlobal, s *scope.Scope, caps Capabilities, c Connectable) (object.Object, error) {
	g := scope.Global()
	fn, _ := g.Get(n.Name)
	f, v, _, err := ev.resolveFunction(caps, fn, false, n.Name)
	if f == nil {
		return v, err
	}
	args, err := ev.evalArgs(n.Args, s, caps, c)
	if err != nil {
		return nil, err
	}
	return f.Call(g, args)
}
