package scope

import (
	"testing"

	"github.com/podhmo/go-observe/object"
)

func rec(kv ...any) *object.Record {
	r := object.NewRecord()
	for i := 0; i < len(kv); i += 2 {
		r.SetRaw(kv[i].(string), object.MustFromGo(kv[i+1]))
	}
	return r
}

func TestGetContext(t *testing.T) {
	rootBC := rec("a", 1, "shadowed", "root")
	root := New(rootBC)
	midBC := rec("b", 2)
	mid := FromParent(root, midBC, rec("$index", 0))
	leafBC := rec("shadowed", "leaf")
	leaf := FromParent(mid, leafBC, nil)

	tests := []struct {
		name     string
		scope    *Scope
		key      string
		ancestor int
		want     object.Keyed
	}{
		{"own binding context", leaf, "shadowed", 0, leafBC},
		{"parent binding context", leaf, "b", 0, midBC},
		{"override context wins", leaf, "$index", 0, mid.OverrideContext},
		{"root", leaf, "a", 0, rootBC},
		{"global", leaf, "Math", 0, Global()},
		{"missing falls back to the starting context", leaf, "nope", 0, leafBC},
		{"$parent", leaf, "shadowed", 1, midBC},
		{"$parent.$parent", leaf, "shadowed", 2, rootBC},
		{"too many hops", leaf, "a", 3, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetContext(tt.scope, tt.key, tt.ancestor)
			if got != tt.want {
				t.Errorf("GetContext(%q, %d) = %v, want %v", tt.key, tt.ancestor, inspect(got), inspect(tt.want))
			}
		})
	}
}

func inspect(k object.Keyed) string {
	if k == nil {
		return "<nil>"
	}
	return k.Inspect()
}

func TestGetContextBoundary(t *testing.T) {
	outerBC := rec("outer", true)
	outer := New(outerBC)
	boundaryBC := rec("inside", true)
	boundary := Create(boundaryBC, nil, true)
	boundary.Parent = outer
	child := FromParent(boundary, rec(), nil)

	if got := GetContext(child, "inside", 0); got != object.Keyed(boundaryBC) {
		t.Errorf("name inside the boundary: got %s", inspect(got))
	}
	if got := GetContext(child, "outer", 0); got != object.Keyed(boundaryBC) {
		t.Errorf("lookup must stop at the boundary, got %s", inspect(got))
	}
	if got := Boundary(child); got != object.Keyed(boundaryBC) {
		t.Errorf("Boundary() = %s", inspect(got))
	}
	if Boundary(outer) != nil {
		t.Errorf("outer scope has no boundary")
	}
}

func TestAncestor(t *testing.T) {
	root := New(nil)
	child := FromParent(root, nil, nil)
	if Ancestor(child, 1) != root {
		t.Errorf("Ancestor(child, 1) should be root")
	}
	if Ancestor(child, 0) != child {
		t.Errorf("Ancestor(child, 0) should be child")
	}
	if Ancestor(child, 5) != nil {
		t.Errorf("Ancestor past the root should be nil")
	}
}

func TestGlobalIsFrozen(t *testing.T) {
	g := Global()
	if !g.Frozen() {
		t.Fatalf("global context must be frozen")
	}
	if err := g.Set("Math", object.NULL); err == nil {
		t.Errorf("writing a global should fail")
	}
	if Global() != g {
		t.Errorf("Global() must return the shared instance")
	}
}
