package evaluator

import (
	"fmt"
	"math"

	"github.com/podhmo/go-observe/ast"
	"github.com/podhmo/go-observe/object"
	"github.com/podhmo/go-observe/scope"
)

// Count returns how many items a for-of over collection produces. Null and
// undefined count as empty.
func Count(collection object.Object) (int, error) {
	switch x := collection.(type) {
	case nil, object.Undefined, object.Null:
		return 0, nil
	case *object.Array:
		return x.Len(), nil
	case *object.Set:
		return x.Size(), nil
	case *object.Map:
		return x.Size(), nil
	case object.Number:
		return numberCount(x), nil
	}
	return 0, fmt.Errorf("%w: %s", ErrNotCountable, object.TypeOf(collection))
}

func numberCount(n object.Number) int {
	f := float64(n)
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	return int(math.Ceil(f))
}

// Iterate calls fn for every item of collection: array elements, set
// values, [key, value] arrays for maps and 0..n-1 for a number n. Null and
// undefined produce nothing. Iteration stops at the first error.
func Iterate(collection object.Object, fn func(item object.Object, index int) error) error {
	switch x := collection.(type) {
	case nil, object.Undefined, object.Null:
		return nil
	case *object.Array:
		for i, el := range append([]object.Object(nil), x.Elements...) {
			if el == nil {
				el = object.UNDEFINED
			}
			if err := fn(el, i); err != nil {
				return err
			}
		}
		return nil
	case *object.Set:
		for i, v := range x.Values() {
			if err := fn(v, i); err != nil {
				return err
			}
		}
		return nil
	case *object.Map:
		for i, e := range x.Entries() {
			if err := fn(object.NewArray(e.Key, e.Value), i); err != nil {
				return err
			}
		}
		return nil
	case object.Number:
		for i := range numberCount(x) {
			if err := fn(object.Number(i), i); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNotIterable, object.TypeOf(collection))
}

// DeclareItem creates the child scope of one for-of item, declaring the
// loop variable (or destructuring the item into it).
func (ev *Evaluator) DeclareItem(forOf *ast.ForOfStatement, parent *scope.Scope, caps Capabilities, item object.Object) (*scope.Scope, error) {
	bc := object.NewRecord()
	child := scope.FromParent(parent, bc, nil)
	switch d := forOf.Declaration.(type) {
	case *ast.BindingIdentifier:
		bc.SetRaw(d.Name, item)
	case *ast.ArrayDestructuring, *ast.ObjectDestructuring, *ast.DestructuringLeaf:
		if _, err := ev.assign(d, child, caps, item); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported for-of declaration %s", forOf.Declaration.Kind())
	}
	return child, nil
}
