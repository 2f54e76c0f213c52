package ast

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestKindString(t *testing.T) {
	nodes := []Node{
		&AccessThis{}, Scope("a"), Member(Scope("a"), "b"), Keyed(Scope("a"), Num(0)),
		Call(Scope("a"), "f"), Bin("+", Num(1), Num(2)), Arrow(Scope("x"), "x"),
		&DestructuringLeaf{},
	}
	var got []string
	for _, n := range nodes {
		got = append(got, n.Kind().String())
	}
	want := []string{
		"AccessThis", "AccessScope", "AccessMember", "AccessKeyed",
		"CallMember", "Binary", "ArrowFunction", "DestructuringLeaf",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("kind names mismatch (-want +got):\n%s", diff)
	}
	if got := Kind(-1).String(); got != "Unknown" {
		t.Errorf("Kind(-1) = %q", got)
	}
	if got := KindCustom.String(); got != "Custom" {
		t.Errorf("KindCustom = %q", got)
	}
}

func TestShapeHelpers(t *testing.T) {
	if !(&Interpolation{Expressions: []Node{Num(1), Num(2)}}).IsMulti() {
		t.Errorf("two expressions should be multi")
	}
	rest := &DestructuringLeaf{Rest: true, RestIndex: 1}
	if !rest.RestOfArray() {
		t.Errorf("rest without excluded keys slices an array")
	}
	rest.RestExcluded = []string{}
	if rest.RestOfArray() {
		t.Errorf("rest with excluded keys collects object properties")
	}
}
