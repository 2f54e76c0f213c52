package scope

import (
	"sync"

	"github.com/podhmo/go-observe/object"
)

// Scope holds the binding context of one level of a template, plus the
// override context for contextual names ($index, $first, ...).
type Scope struct {
	Parent          *Scope
	BindingContext  object.Keyed
	OverrideContext *object.Record
	// IsBoundary stops upward name resolution (e.g. slotted content).
	IsBoundary bool
}

// Create creates a top-level scope. A nil binding context is replaced by an
// empty record and a nil override context by an empty one.
func Create(bc object.Keyed, oc *object.Record, isBoundary bool) *Scope {
	if bc == nil {
		bc = object.NewRecord()
	}
	if oc == nil {
		oc = object.NewRecord()
	}
	return &Scope{BindingContext: bc, OverrideContext: oc, IsBoundary: isBoundary}
}

// New is a shorthand for Create(bc, nil, false).
func New(bc object.Keyed) *Scope {
	return Create(bc, nil, false)
}

// FromParent creates a scope enclosed by parent.
func FromParent(parent *Scope, bc object.Keyed, oc *object.Record) *Scope {
	s := Create(bc, oc, false)
	s.Parent = parent
	return s
}

// GetContext returns the context object that owns name.
//
// With ancestor > 0 it hops exactly that many parents and returns nil when
// the chain is shorter; it does not search further. With ancestor == 0 it
// walks up until the override or binding context has name, stopping at a
// boundary. When nothing is found the global context is tried, and finally
// the binding context where the walk stopped (the boundary scope, or s
// itself when the root was passed).
func GetContext(s *Scope, name string, ancestor int) object.Keyed {
	if s == nil {
		return nil
	}
	current := s
	if ancestor > 0 {
		for ; ancestor > 0; ancestor-- {
			current = current.Parent
			if current == nil {
				return nil
			}
		}
		if current.OverrideContext.Has(name) {
			return current.OverrideContext
		}
		return current.BindingContext
	}

	for current != nil && !current.IsBoundary && !owns(current, name) {
		current = current.Parent
	}
	if current != nil && owns(current, name) {
		if current.OverrideContext.Has(name) {
			return current.OverrideContext
		}
		return current.BindingContext
	}
	if g := Global(); g.Has(name) {
		return g
	}
	if current != nil {
		return current.BindingContext
	}
	return s.BindingContext
}

func owns(s *Scope, name string) bool {
	return s.OverrideContext.Has(name) || s.BindingContext.Has(name)
}

// Boundary returns the binding context of the closest boundary scope, or nil.
func Boundary(s *Scope) object.Keyed {
	for current := s; current != nil; current = current.Parent {
		if current.IsBoundary {
			return current.BindingContext
		}
	}
	return nil
}

// Ancestor returns the scope ancestor hops above s, or nil.
func Ancestor(s *Scope, ancestor int) *Scope {
	current := s
	for ; ancestor > 0 && current != nil; ancestor-- {
		current = current.Parent
	}
	return current
}

var global = sync.OnceValue(func() *object.Record {
	g := object.Globals()
	g.Freeze()
	return g
})

// Global returns the process-wide global context. It is frozen, so it is
// safe to share between goroutines.
func Global() *object.Record {
	return global()
}
