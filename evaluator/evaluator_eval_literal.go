package evaluator

import (
	"fmt"
	"strings"

	"github.com/podhmo/go-observe/ast"
	"github.com/podhmo/go-observe/object"
	"github.com/podhmo/go-observe/scope"
)

func (ev *Evaluator) evalArrayLiteral(n *ast.ArrayLiteral, s *scope.Scope, caps Capabilities, c Connectable) (object.Object, error) {
	elements, err := ev.evalArgs(n.Elements, s, caps, c)
	if err != nil {
		return nil, err
	}
	return object.NewArray(elements...), nil
}

func (ev *Evaluator) evalObjectLiteral(n *ast.ObjectLiteral, s *scope.Scope, caps Capabilities, c Connectable) (object.Object, error) {
	rec := object.NewRecord()
	for i, k := range n.Keys {
		v, err := ev.eval(n.Values[i], s, caps, c)
		if err != nil {
			return nil, err
		}
		rec.SetRaw(k, v)
	}
	return rec, nil
}

func (ev *Evaluator) evalTemplate(n *ast.Template, s *scope.Scope, caps Capabilities, c Connectable) (object.Object, error) {
	var b strings.Builder
	b.WriteString(n.Cooked[0])
	for i, e := range n.Expressions {
		v, err := ev.eval(e, s, caps, c)
		if err != nil {
			return nil, err
		}
		b.WriteString(object.ToString(v))
		b.WriteString(n.Cooked[i+1])
	}
	return object.String(b.String()), nil
}

func (ev *Evaluator) evalTaggedTemplate(n *ast.TaggedTemplate, s *scope.Scope, caps Capabilities, c Connectable) (object.Object, error) {
	values, err := ev.evalArgs(n.Expressions, s, caps, c)
	if err != nil {
		return nil, err
	}
	fn, err := ev.eval(n.Func, s, caps, c)
	if err != nil {
		return nil, err
	}
	f, ok := fn.(*object.Function)
	if !ok {
		return nil, fmt.Errorf("%w: template tag is %s", ErrNotAFunction, object.TypeOf(fn))
	}
	cooked := make([]object.Object, len(n.Cooked))
	for i, part := range n.Cooked {
		cooked[i] = object.String(part)
	}
	args := append([]object.Object{object.NewArray(cooked...)}, values...)
	return f.Call(object.UNDEFINED, args)
}

func (ev *Evaluator) evalInterpolation(n *ast.Interpolation, s *scope.Scope, caps Capabilities, c Connectable) (object.Object, error) {
	var b strings.Builder
	b.WriteString(n.Parts[0])
	for i, e := range n.Expressions {
		v, err := ev.eval(e, s, caps, c)
		if err != nil {
			return nil, err
		}
		if !object.IsNullish(v) {
			b.WriteString(object.ToString(v))
		}
		b.WriteString(n.Parts[i+1])
	}
	return object.String(b.String()), nil
}

// evalArrowFunction closes over s, caps and c: reads made by the body while
// the function is called during this evaluation are observed as well.
func (ev *Evaluator) evalArrowFunction(n *ast.ArrowFunction, s *scope.Scope, caps Capabilities, c Connectable) object.Object {
	return object.NewFunction("", func(_ object.Object, args []object.Object) (object.Object, error) {
		bc := object.NewRecord()
		last := len(n.Args) - 1
		for i, param := range n.Args {
			if n.Rest && i == last {
				var rest []object.Object
				if i < len(args) {
					rest = append(rest, args[i:]...)
				}
				bc.SetRaw(param.Name, object.NewArray(rest...))
				continue
			}
			bc.SetRaw(param.Name, object.Arg(args, i))
		}
		return ev.eval(n.Body, scope.FromParent(s, bc, nil), caps, c)
	})
}

func (ev *Evaluator) evalValueConverter(n *ast.ValueConverter, s *scope.Scope, caps Capabilities, c Connectable) (object.Object, error) {
	v, err := ev.eval(n.Expression, s, caps, c)
	if err != nil {
		return nil, err
	}
	args, err := ev.evalArgs(n.Args, s, caps, c)
	if err != nil {
		return nil, err
	}
	u, ok := caps.(ConverterUser)
	if !ok {
		return v, nil
	}
	return u.UseConverter(n.Name, ToView, v, args)
}
