package evaluator

import (
	"fmt"
	"math/big"

	"github.com/podhmo/go-observe/ast"
	"github.com/podhmo/go-observe/object"
	"github.com/podhmo/go-observe/scope"
)

func (ev *Evaluator) evalUnary(n *ast.Unary, s *scope.Scope, caps Capabilities, c Connectable) (object.Object, error) {
	switch n.Operation {
	case "++", "--":
		if c != nil {
			return nil, fmt.Errorf("%w: %s", ErrIncrementInBinding, n.Operation)
		}
	case "void", "typeof", "!", "-", "+":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownUnaryOperator, n.Operation)
	}

	v, err := ev.eval(n.Expression, s, caps, c)
	if err != nil {
		return nil, err
	}
	switch n.Operation {
	case "void":
		return object.UNDEFINED, nil
	case "typeof":
		return object.String(object.TypeOf(v)), nil
	case "!":
		return object.Boolean(!object.Truthy(v)), nil
	case "-":
		if b, ok := v.(*object.BigInt); ok {
			return &object.BigInt{Value: new(big.Int).Neg(b.Value)}, nil
		}
		return object.Number(-object.ToNumber(v)), nil
	case "+":
		if _, ok := v.(*object.BigInt); ok {
			return nil, fmt.Errorf("%w: unary +", object.ErrMixedBigInt)
		}
		return object.Number(object.ToNumber(v)), nil
	}

	// ++ and --: the prefix form yields the new value, the postfix form the
	// old numeric value.
	old := object.ToNumber(v)
	next := old + 1
	if n.Operation == "--" {
		next = old - 1
	}
	assigned, err := ev.assign(n.Expression, s, caps, object.Number(next))
	if err != nil {
		return nil, err
	}
	if n.Pos == ast.Postfix {
		return object.Number(old), nil
	}
	return assigned, nil
}

func (ev *Evaluator) evalBinary(n *ast.Binary, s *scope.Scope, caps Capabilities, c Connectable) (object.Object, error) {
	left, err := ev.eval(n.Left, s, caps, c)
	if err != nil {
		return nil, err
	}

	// short-circuiting operators evaluate the right side lazily
	switch n.Operation {
	case "&&":
		if !object.Truthy(left) {
			return left, nil
		}
		return ev.eval(n.Right, s, caps, c)
	case "||":
		if object.Truthy(left) {
			return left, nil
		}
		return ev.eval(n.Right, s, caps, c)
	case "??":
		if !object.IsNullish(left) {
			return left, nil
		}
		return ev.eval(n.Right, s, caps, c)
	}

	right, err := ev.eval(n.Right, s, caps, c)
	if err != nil {
		return nil, err
	}
	switch n.Operation {
	case "==":
		return object.Boolean(object.LooseEquals(left, right)), nil
	case "===":
		return object.Boolean(object.StrictEquals(left, right)), nil
	case "!=":
		return object.Boolean(!object.LooseEquals(left, right)), nil
	case "!==":
		return object.Boolean(!object.StrictEquals(left, right)), nil
	case "instanceof":
		if f, ok := right.(*object.Function); ok && f.IsInstance != nil {
			return object.Boolean(f.IsInstance(left)), nil
		}
		return object.FALSE, nil
	case "in":
		return object.Boolean(hasProperty(right, object.ToString(left))), nil
	case "+":
		return ev.add(caps, left, right)
	case "-", "*", "/", "%", "**":
		return object.Arithmetic(n.Operation, left, right)
	case "<", ">", "<=", ">=":
		ok, err := object.Compare(n.Operation, left, right)
		if err != nil {
			return nil, err
		}
		return object.Boolean(ok), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBinaryOperator, n.Operation)
}

// add implements +. Outside strict mode a falsy operand is coerced towards
// the other operand's kind: 0 next to a number, "" next to a string or date.
func (ev *Evaluator) add(caps Capabilities, left, right object.Object) (object.Object, error) {
	if !ev.isStrict(caps) && (!object.Truthy(left) || !object.Truthy(right)) {
		switch {
		case isNumberOrBigInt(left) || isNumberOrBigInt(right):
			return object.Add(orDefault(left, object.Number(0)), orDefault(right, object.Number(0)))
		case isStringOrDate(left) || isStringOrDate(right):
			return object.Add(orDefault(left, object.String("")), orDefault(right, object.String("")))
		}
	}
	return object.Add(left, right)
}

func orDefault(v, def object.Object) object.Object {
	if object.Truthy(v) {
		return v
	}
	return def
}

func isNumberOrBigInt(v object.Object) bool {
	switch v.(type) {
	case object.Number, *object.BigInt:
		return true
	}
	return false
}

func isStringOrDate(v object.Object) bool {
	switch v.(type) {
	case object.String, *object.Date:
		return true
	}
	return false
}

func hasProperty(obj object.Object, key string) bool {
	switch x := obj.(type) {
	case object.Keyed:
		return x.Has(key)
	case object.Getter:
		if !object.IsObject(obj) {
			return false
		}
		_, ok := x.Get(key)
		return ok
	}
	return false
}

func (ev *Evaluator) evalAssign(n *ast.Assign, s *scope.Scope, caps Capabilities, c Connectable) (object.Object, error) {
	val, err := ev.eval(n.Value, s, caps, c)
	if err != nil {
		return nil, err
	}
	if n.Op != "" && n.Op != "=" {
		if c != nil {
			return nil, fmt.Errorf("%w: %s", ErrIncrementInBinding, n.Op)
		}
		target, err := ev.eval(n.Target, s, caps, c)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case "+=":
			val, err = object.Add(target, val)
		case "-=", "*=", "/=":
			val, err = object.Arithmetic(n.Op[:1], target, val)
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownBinaryOperator, n.Op)
		}
		if err != nil {
			return nil, err
		}
	}
	return ev.assign(n.Target, s, caps, val)
}
