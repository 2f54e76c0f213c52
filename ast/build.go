package ast

import "github.com/podhmo/go-observe/object"

// Shorthands for building trees by hand, mostly in tests and in host code
// that assembles expressions without the template compiler.

// Scope returns an AccessScope for name.
func Scope(name string) *AccessScope { return &AccessScope{Name: name} }

// Member returns obj.name.
func Member(obj Node, name string) *AccessMember { return &AccessMember{Object: obj, Name: name} }

// OptionalMember returns obj?.name.
func OptionalMember(obj Node, name string) *AccessMember {
	return &AccessMember{Object: obj, Name: name, Optional: true}
}

// Keyed returns obj[key].
func Keyed(obj, key Node) *AccessKeyed { return &AccessKeyed{Object: obj, Key: key} }

// Lit returns a primitive literal.
func Lit(v object.Object) *PrimitiveLiteral { return &PrimitiveLiteral{Value: v} }

// Num returns a number literal.
func Num(f float64) *PrimitiveLiteral { return Lit(object.Number(f)) }

// Str returns a string literal.
func Str(s string) *PrimitiveLiteral { return Lit(object.String(s)) }

// Bin returns left op right.
func Bin(op string, left, right Node) *Binary { return &Binary{Operation: op, Left: left, Right: right} }

// Call returns obj.name(args...).
func Call(obj Node, name string, args ...Node) *CallMember {
	return &CallMember{Object: obj, Name: name, Args: args}
}

// Arrow returns (params...) => body.
func Arrow(body Node, params ...string) *ArrowFunction {
	ids := make([]*BindingIdentifier, len(params))
	for i, p := range params {
		ids[i] = &BindingIdentifier{Name: p}
	}
	return &ArrowFunction{Args: ids, Body: body}
}
