package observation

import (
	"fmt"

	"github.com/podhmo/go-observe/object"
)

// Inserted marks a slot of an IndexMap that holds a newly inserted item.
const Inserted = -2

// IndexMap describes how a collection changed since the last notification.
// Indices[i] is the previous position of the item now at i, or Inserted.
// DeletedIndices and DeletedItems list the previous positions and values of
// the removed items, in removal order.
type IndexMap struct {
	Indices        []int
	DeletedIndices []int
	DeletedItems   []object.Object
}

// NewIndexMap returns the identity map for a collection of length n.
func NewIndexMap(n int) *IndexMap {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	return &IndexMap{Indices: indices}
}

// Len returns the length of the collection the map describes.
func (m *IndexMap) Len() int { return len(m.Indices) }

// HasChanges reports whether the map differs from the identity.
func (m *IndexMap) HasChanges() bool {
	if len(m.DeletedIndices) > 0 {
		return true
	}
	for i, v := range m.Indices {
		if v != i {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (m *IndexMap) Clone() *IndexMap {
	return &IndexMap{
		Indices:        append([]int{}, m.Indices...),
		DeletedIndices: append([]int(nil), m.DeletedIndices...),
		DeletedItems:   append([]object.Object(nil), m.DeletedItems...),
	}
}

func (m *IndexMap) String() string {
	return fmt.Sprintf("IndexMap{Indices:%v Deleted:%v}", m.Indices, m.DeletedIndices)
}

// recordDeleted remembers the item at slot i unless it was inserted after
// the last notification.
func (m *IndexMap) recordDeleted(i int, item object.Object) {
	if prev := m.Indices[i]; prev > -1 {
		m.DeletedIndices = append(m.DeletedIndices, prev)
		m.DeletedItems = append(m.DeletedItems, item)
	}
}

func insertedSlots(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = Inserted
	}
	return s
}
