// Package ast defines the expression nodes produced by the template compiler
// and interpreted by the evaluator. Nodes are plain immutable values; they
// own their children and never form cycles.
package ast

import "github.com/podhmo/go-observe/object"

// Kind identifies the variant of a Node.
type Kind int

// The closed set of node kinds.
const (
	KindAccessThis Kind = iota
	KindAccessBoundary
	KindAccessGlobal
	KindAccessScope
	KindAccessMember
	KindAccessKeyed
	KindCallScope
	KindCallMember
	KindCallFunction
	KindCallGlobal
	KindArrayLiteral
	KindObjectLiteral
	KindPrimitiveLiteral
	KindTemplate
	KindTaggedTemplate
	KindUnary
	KindBinary
	KindConditional
	KindAssign
	KindArrowFunction
	KindValueConverter
	KindBindingBehavior
	KindBindingIdentifier
	KindForOfStatement
	KindInterpolation
	KindArrayBindingPattern
	KindObjectBindingPattern
	KindArrayDestructuring
	KindObjectDestructuring
	KindDestructuringLeaf
	KindCustom
)

var kindNames = [...]string{
	KindAccessThis:           "AccessThis",
	KindAccessBoundary:       "AccessBoundary",
	KindAccessGlobal:         "AccessGlobal",
	KindAccessScope:          "AccessScope",
	KindAccessMember:         "AccessMember",
	KindAccessKeyed:          "AccessKeyed",
	KindCallScope:            "CallScope",
	KindCallMember:           "CallMember",
	KindCallFunction:         "CallFunction",
	KindCallGlobal:           "CallGlobal",
	KindArrayLiteral:         "ArrayLiteral",
	KindObjectLiteral:        "ObjectLiteral",
	KindPrimitiveLiteral:     "PrimitiveLiteral",
	KindTemplate:             "Template",
	KindTaggedTemplate:       "TaggedTemplate",
	KindUnary:                "Unary",
	KindBinary:               "Binary",
	KindConditional:          "Conditional",
	KindAssign:               "Assign",
	KindArrowFunction:        "ArrowFunction",
	KindValueConverter:       "ValueConverter",
	KindBindingBehavior:      "BindingBehavior",
	KindBindingIdentifier:    "BindingIdentifier",
	KindForOfStatement:       "ForOfStatement",
	KindInterpolation:        "Interpolation",
	KindArrayBindingPattern:  "ArrayBindingPattern",
	KindObjectBindingPattern: "ObjectBindingPattern",
	KindArrayDestructuring:   "ArrayDestructuring",
	KindObjectDestructuring:  "ObjectDestructuring",
	KindDestructuringLeaf:    "DestructuringLeaf",
	KindCustom:               "Custom",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Node is implemented by every expression node.
type Node interface {
	Kind() Kind
}

// AccessThis is $this (Ancestor 0) or $parent chains (Ancestor n).
type AccessThis struct {
	Ancestor int
}

// AccessBoundary is the binding context of the closest boundary scope.
type AccessBoundary struct{}

// AccessGlobal reads a host global by name without scope lookup.
type AccessGlobal struct {
	Name string
}

// AccessScope reads Name from the scope chain.
type AccessScope struct {
	Name     string
	Ancestor int
}

// AccessMember is Object.Name or Object?.Name.
type AccessMember struct {
	Object   Node
	Name     string
	Optional bool
	// AccessGlobal marks member reads on a host global; they are not observed.
	AccessGlobal bool
}

// AccessKeyed is Object[Key] or Object?.[Key].
type AccessKeyed struct {
	Object       Node
	Key          Node
	Optional     bool
	AccessGlobal bool
}

// CallScope calls the function named Name found in the scope chain.
type CallScope struct {
	Name         string
	Args         []Node
	Ancestor     int
	OptionalCall bool
}

// CallMember is Object.Name(Args), with optional chaining on the member
// (Object?.Name()) and/or the call (Object.Name?.()).
type CallMember struct {
	Object         Node
	Name           string
	Args           []Node
	OptionalMember bool
	OptionalCall   bool
}

// CallFunction calls the value of Func.
type CallFunction struct {
	Func     Node
	Args     []Node
	Optional bool
}

// CallGlobal calls a host global function by name.
type CallGlobal struct {
	Name string
	Args []Node
}

// ArrayLiteral is [e0, e1, ...].
type ArrayLiteral struct {
	Elements []Node
}

// ObjectLiteral is {k0: v0, ...}.
type ObjectLiteral struct {
	Keys   []string
	Values []Node
}

// PrimitiveLiteral is a constant.
type PrimitiveLiteral struct {
	Value object.Object
}

// Template is an untagged template literal; len(Cooked) == len(Expressions)+1.
type Template struct {
	Cooked      []string
	Expressions []Node
}

// TaggedTemplate is Func`...`.
type TaggedTemplate struct {
	Cooked      []string
	Func        Node
	Expressions []Node
}

// UnaryPosition tells prefix and postfix update operators apart.
type UnaryPosition int

const (
	Prefix  UnaryPosition = 0
	Postfix UnaryPosition = 1
)

// Unary is one of void, typeof, !, -, +, ++, --.
type Unary struct {
	Operation  string
	Expression Node
	Pos        UnaryPosition
}

// Binary is Left Operation Right.
type Binary struct {
	Operation string
	Left      Node
	Right     Node
}

// Conditional is Condition ? Yes : No.
type Conditional struct {
	Condition Node
	Yes       Node
	No        Node
}

// Assign is Target Op Value, Op being =, +=, -=, *= or /=.
type Assign struct {
	Target Node
	Value  Node
	Op     string
}

// ArrowFunction is (args) => Body. With Rest the last arg collects the rest.
type ArrowFunction struct {
	Args []*BindingIdentifier
	Body Node
	Rest bool
}

// ValueConverter is Expression | Name:arg0:arg1.
type ValueConverter struct {
	Expression Node
	Name       string
	Args       []Node
}

// BindingBehavior is Expression & Name:arg0:arg1.
type BindingBehavior struct {
	Expression Node
	Name       string
	Args       []Node
}

// BindingIdentifier is a declared local name.
type BindingIdentifier struct {
	Name string
}

// ForOfStatement is "Declaration of Iterable" as used by repeaters.
type ForOfStatement struct {
	Declaration Node
	Iterable    Node
	Semicolon   int
}

// Interpolation is "text ${expr} text"; len(Parts) == len(Expressions)+1.
type Interpolation struct {
	Parts       []string
	Expressions []Node
}

// IsMulti reports whether more than one expression is interpolated.
func (n *Interpolation) IsMulti() bool { return len(n.Expressions) > 1 }

// ArrayBindingPattern is [a, b] in a declaration position.
type ArrayBindingPattern struct {
	Elements []Node
}

// ObjectBindingPattern is {a, b: c} in a declaration position.
type ObjectBindingPattern struct {
	Keys   []string
	Values []Node
}

// ArrayDestructuring is an array destructuring assignment. Nested patterns
// read their value from Source evaluated against the outer value, falling
// back to Initializer.
type ArrayDestructuring struct {
	List        []Node
	Source      Node
	Initializer Node
}

// ObjectDestructuring is an object destructuring assignment.
type ObjectDestructuring struct {
	List        []Node
	Source      Node
	Initializer Node
}

// DestructuringLeaf assigns one target of a destructuring pattern.
//
// A single leaf evaluates Source against a scope rooted at the destructured
// value and assigns the result (or Initializer, evaluated in the outer scope,
// when the result is undefined) to Target.
//
// A rest leaf (Rest set) assigns the remainder: the elements from RestIndex
// on for arrays, or every property not listed in RestExcluded for objects.
type DestructuringLeaf struct {
	Target      *AccessMember
	Source      Node
	Initializer Node

	Rest         bool
	RestIndex    int
	RestExcluded []string
}

// RestOfArray reports whether a rest leaf slices an array.
func (n *DestructuringLeaf) RestOfArray() bool { return n.Rest && n.RestExcluded == nil }

func (*AccessThis) Kind() Kind           { return KindAccessThis }
func (*AccessBoundary) Kind() Kind       { return KindAccessBoundary }
func (*AccessGlobal) Kind() Kind         { return KindAccessGlobal }
func (*AccessScope) Kind() Kind          { return KindAccessScope }
func (*AccessMember) Kind() Kind         { return KindAccessMember }
func (*AccessKeyed) Kind() Kind          { return KindAccessKeyed }
func (*CallScope) Kind() Kind            { return KindCallScope }
func (*CallMember) Kind() Kind           { return KindCallMember }
func (*CallFunction) Kind() Kind         { return KindCallFunction }
func (*CallGlobal) Kind() Kind           { return KindCallGlobal }
func (*ArrayLiteral) Kind() Kind         { return KindArrayLiteral }
func (*ObjectLiteral) Kind() Kind        { return KindObjectLiteral }
func (*PrimitiveLiteral) Kind() Kind     { return KindPrimitiveLiteral }
func (*Template) Kind() Kind             { return KindTemplate }
func (*TaggedTemplate) Kind() Kind       { return KindTaggedTemplate }
func (*Unary) Kind() Kind                { return KindUnary }
func (*Binary) Kind() Kind               { return KindBinary }
func (*Conditional) Kind() Kind          { return KindConditional }
func (*Assign) Kind() Kind               { return KindAssign }
func (*ArrowFunction) Kind() Kind        { return KindArrowFunction }
func (*ValueConverter) Kind() Kind       { return KindValueConverter }
func (*BindingBehavior) Kind() Kind      { return KindBindingBehavior }
func (*BindingIdentifier) Kind() Kind    { return KindBindingIdentifier }
func (*ForOfStatement) Kind() Kind       { return KindForOfStatement }
func (*Interpolation) Kind() Kind        { return KindInterpolation }
func (*ArrayBindingPattern) Kind() Kind  { return KindArrayBindingPattern }
func (*ObjectBindingPattern) Kind() Kind { return KindObjectBindingPattern }
func (*ArrayDestructuring) Kind() Kind   { return KindArrayDestructuring }
func (*ObjectDestructuring) Kind() Kind  { return KindObjectDestructuring }
func (*DestructuringLeaf) Kind() Kind    { return KindDestructuringLeaf }
