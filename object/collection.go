package object

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// ErrInvalidLength is returned when an array length is not a non-negative integer.
var ErrInvalidLength = fmt.Errorf("invalid array length")

// CompareFunc orders two elements; a negative result puts a before b.
type CompareFunc func(a, b Object) (int, error)

// ArrayIndex reports whether key is a canonical array index.
func ArrayIndex(key string) (int, bool) {
	if key == "" || (len(key) > 1 && key[0] == '0') {
		return 0, false
	}
	n, err := strconv.Atoi(key)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Splice removes deleteCount elements at start from s and inserts items there.
// start and deleteCount must already be clamped to s.
func Splice[T any](s []T, start, deleteCount int, items ...T) (result []T, removed []T) {
	removed = make([]T, deleteCount)
	copy(removed, s[start:start+deleteCount])
	result = make([]T, 0, len(s)-deleteCount+len(items))
	result = append(result, s[:start]...)
	result = append(result, items...)
	result = append(result, s[start+deleteCount:]...)
	return result, removed
}

// ClampSplice normalizes splice arguments against a collection of length n.
func ClampSplice(n, start, deleteCount int) (int, int) {
	if start < 0 {
		start = max(n+start, 0)
	} else {
		start = min(start, n)
	}
	deleteCount = max(min(deleteCount, n-start), 0)
	return start, deleteCount
}

// --- Array Object ---

// ArrayInterceptor takes over the mutating surface of an observed Array.
// Splice receives clamped arguments.
type ArrayInterceptor interface {
	Push(items []Object) (int, error)
	Unshift(items []Object) (int, error)
	Pop() (Object, error)
	Shift() (Object, error)
	Splice(start, deleteCount int, items []Object) ([]Object, error)
	Reverse() error
	Sort(cmp CompareFunc) error
}

// Array is an ordered list owned by the wrapper; mutations go through its
// methods so an installed observer can see them.
type Array struct {
	Elements []Object

	interceptor ArrayInterceptor
}

// NewArray creates an array holding elements.
func NewArray(elements ...Object) *Array {
	if elements == nil {
		elements = []Object{}
	}
	return &Array{Elements: elements}
}

// Type returns the type of the Array object.
func (a *Array) Type() ObjectType { return ARRAY_OBJ }

// Inspect returns a string representation of the Array.
func (a *Array) Inspect() string { return "[" + inspectList(a.Elements) + "]" }

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.Elements) }

// At returns the element at i or undefined.
func (a *Array) At(i int) Object {
	if i < 0 || i >= len(a.Elements) || a.Elements[i] == nil {
		return UNDEFINED
	}
	return a.Elements[i]
}

// Interceptor returns the installed interceptor, if any.
func (a *Array) Interceptor() ArrayInterceptor { return a.interceptor }

// SetInterceptor installs i. A nil i restores direct mutation.
func (a *Array) SetInterceptor(i ArrayInterceptor) { a.interceptor = i }

// Push appends items and returns the new length.
func (a *Array) Push(items ...Object) (int, error) {
	if a.interceptor != nil {
		return a.interceptor.Push(items)
	}
	a.Elements = append(a.Elements, items...)
	return len(a.Elements), nil
}

// Unshift prepends items and returns the new length.
func (a *Array) Unshift(items ...Object) (int, error) {
	if a.interceptor != nil {
		return a.interceptor.Unshift(items)
	}
	a.Elements, _ = Splice(a.Elements, 0, 0, items...)
	return len(a.Elements), nil
}

// Pop removes the last element.
func (a *Array) Pop() (Object, error) {
	if a.interceptor != nil {
		return a.interceptor.Pop()
	}
	if len(a.Elements) == 0 {
		return UNDEFINED, nil
	}
	last := a.Elements[len(a.Elements)-1]
	a.Elements = a.Elements[:len(a.Elements)-1]
	return last, nil
}

// Shift removes the first element.
func (a *Array) Shift() (Object, error) {
	if a.interceptor != nil {
		return a.interceptor.Shift()
	}
	if len(a.Elements) == 0 {
		return UNDEFINED, nil
	}
	first := a.Elements[0]
	a.Elements = a.Elements[1:]
	return first, nil
}

// Splice removes deleteCount elements from start, inserts items, and returns
// the removed elements. Negative start counts from the end.
func (a *Array) Splice(start, deleteCount int, items ...Object) ([]Object, error) {
	start, deleteCount = ClampSplice(len(a.Elements), start, deleteCount)
	if a.interceptor != nil {
		return a.interceptor.Splice(start, deleteCount, items)
	}
	var removed []Object
	a.Elements, removed = Splice(a.Elements, start, deleteCount, items...)
	return removed, nil
}

// Reverse reverses the array in place.
func (a *Array) Reverse() error {
	if a.interceptor != nil {
		return a.interceptor.Reverse()
	}
	for i, j := 0, len(a.Elements)-1; i < j; i, j = i+1, j-1 {
		a.Elements[i], a.Elements[j] = a.Elements[j], a.Elements[i]
	}
	return nil
}

// Sort sorts the array in place. A nil cmp compares string forms.
func (a *Array) Sort(cmp CompareFunc) error {
	if a.interceptor != nil {
		return a.interceptor.Sort(cmp)
	}
	return SortLockstep(a.Elements, cmp, nil)
}

// SetIndex writes the element at i, growing the array with undefined when i
// is past the end.
func (a *Array) SetIndex(i int, val Object) error {
	if val == nil {
		val = UNDEFINED
	}
	n := len(a.Elements)
	if i < n {
		if a.interceptor != nil {
			_, err := a.interceptor.Splice(i, 1, []Object{val})
			return err
		}
		a.Elements[i] = val
		return nil
	}
	items := make([]Object, i-n+1)
	for j := range items {
		items[j] = UNDEFINED
	}
	items[len(items)-1] = val
	_, err := a.Push(items...)
	return err
}

// SetLength truncates or pads the array.
func (a *Array) SetLength(n float64) error {
	if n < 0 || math.IsNaN(n) || n != math.Trunc(n) {
		return fmt.Errorf("%w: %v", ErrInvalidLength, n)
	}
	l := int(n)
	cur := len(a.Elements)
	switch {
	case l < cur:
		_, err := a.Splice(l, cur-l)
		return err
	case l > cur:
		pad := make([]Object, l-cur)
		for i := range pad {
			pad[i] = UNDEFINED
		}
		_, err := a.Push(pad...)
		return err
	}
	return nil
}

// Get exposes "length", indices and the array methods.
func (a *Array) Get(key string) (Object, bool) {
	if key == "length" {
		return Number(len(a.Elements)), true
	}
	if i, ok := ArrayIndex(key); ok {
		if i < len(a.Elements) {
			return a.At(i), true
		}
		return UNDEFINED, false
	}
	if m, ok := arrayMethods[key]; ok {
		return m.Bind(a), true
	}
	return UNDEFINED, false
}

// Set writes "length" or an index.
func (a *Array) Set(key string, val Object) error {
	if key == "length" {
		return a.SetLength(ToNumber(val))
	}
	if i, ok := ArrayIndex(key); ok {
		return a.SetIndex(i, val)
	}
	return fmt.Errorf("cannot set property %q on array", key)
}

// Has reports whether key is "length", an in-range index or a method.
func (a *Array) Has(key string) bool {
	_, ok := a.Get(key)
	return ok
}

// Keys returns the indices.
func (a *Array) Keys() []string {
	keys := make([]string, len(a.Elements))
	for i := range a.Elements {
		keys[i] = strconv.Itoa(i)
	}
	return keys
}

// SortLockstep stably sorts elements, moving undefined to the end without
// consulting cmp. onSwap, when given, is called for every swap so a parallel
// slice can follow the permutation.
func SortLockstep(elements []Object, cmp CompareFunc, onSwap func(i, j int)) error {
	if cmp == nil {
		cmp = compareStrings
	}
	s := &lockstepSorter{elements: elements, cmp: cmp, onSwap: onSwap}
	sort.Stable(s)
	return s.err
}

type lockstepSorter struct {
	elements []Object
	cmp      CompareFunc
	onSwap   func(i, j int)
	err      error
}

func (s *lockstepSorter) Len() int { return len(s.elements) }

func (s *lockstepSorter) Less(i, j int) bool {
	if s.err != nil {
		return false
	}
	a, b := s.elements[i], s.elements[j]
	aUndef, bUndef := a == nil || a == Object(UNDEFINED), b == nil || b == Object(UNDEFINED)
	switch {
	case aUndef:
		return false
	case bUndef:
		return true
	}
	c, err := s.cmp(a, b)
	if err != nil {
		s.err = err
		return false
	}
	return c < 0
}

func (s *lockstepSorter) Swap(i, j int) {
	s.elements[i], s.elements[j] = s.elements[j], s.elements[i]
	if s.onSwap != nil {
		s.onSwap(i, j)
	}
}

func compareStrings(a, b Object) (int, error) {
	x, y := ToString(a), ToString(b)
	switch {
	case x < y:
		return -1, nil
	case x > y:
		return 1, nil
	}
	return 0, nil
}

// --- Set Object ---

// SetInterceptor takes over the mutating surface of an observed Set.
type SetInterceptor interface {
	Add(val Object) error
	Delete(val Object) (bool, error)
	Clear() error
}

// Set is an insertion-ordered collection of unique values.
type Set struct {
	items []Object
	index map[any]struct{}

	interceptor SetInterceptor
}

// NewSet creates a set holding the unique values of items.
func NewSet(items ...Object) *Set {
	s := &Set{index: make(map[any]struct{})}
	for _, it := range items {
		s.AddRaw(it)
	}
	return s
}

// Type returns the type of the Set object.
func (s *Set) Type() ObjectType { return SET_OBJ }

// Inspect returns a string representation of the Set.
func (s *Set) Inspect() string { return "Set {" + inspectList(s.items) + "}" }

// Size returns the number of values.
func (s *Set) Size() int { return len(s.items) }

// Values returns a copy of the values in insertion order.
func (s *Set) Values() []Object { return append([]Object(nil), s.items...) }

// Contains reports membership.
func (s *Set) Contains(val Object) bool {
	_, ok := s.index[keyOf(val)]
	return ok
}

// IndexOf returns the insertion position of val or -1.
func (s *Set) IndexOf(val Object) int {
	k := keyOf(val)
	if _, ok := s.index[k]; !ok {
		return -1
	}
	for i, it := range s.items {
		if keyOf(it) == k {
			return i
		}
	}
	return -1
}

// Interceptor returns the installed interceptor, if any.
func (s *Set) Interceptor() SetInterceptor { return s.interceptor }

// SetInterceptor installs i. A nil i restores direct mutation.
func (s *Set) SetInterceptor(i SetInterceptor) { s.interceptor = i }

// Add inserts val.
func (s *Set) Add(val Object) error {
	if s.interceptor != nil {
		return s.interceptor.Add(val)
	}
	s.AddRaw(val)
	return nil
}

// Delete removes val and reports whether it was present.
func (s *Set) Delete(val Object) (bool, error) {
	if s.interceptor != nil {
		return s.interceptor.Delete(val)
	}
	return s.DeleteRaw(val), nil
}

// Clear removes every value.
func (s *Set) Clear() error {
	if s.interceptor != nil {
		return s.interceptor.Clear()
	}
	s.ClearRaw()
	return nil
}

// AddRaw inserts val without consulting the interceptor.
func (s *Set) AddRaw(val Object) bool {
	if val == nil {
		val = UNDEFINED
	}
	k := keyOf(val)
	if _, ok := s.index[k]; ok {
		return false
	}
	s.index[k] = struct{}{}
	s.items = append(s.items, val)
	return true
}

// DeleteRaw removes val without consulting the interceptor.
func (s *Set) DeleteRaw(val Object) bool {
	i := s.IndexOf(val)
	if i < 0 {
		return false
	}
	delete(s.index, keyOf(val))
	s.items, _ = Splice(s.items, i, 1)
	return true
}

// ClearRaw removes every value without consulting the interceptor.
func (s *Set) ClearRaw() {
	s.items = nil
	s.index = make(map[any]struct{})
}

// Get exposes "size" and the set methods.
func (s *Set) Get(key string) (Object, bool) {
	if key == "size" {
		return Number(len(s.items)), true
	}
	if m, ok := setMethods[key]; ok {
		return m.Bind(s), true
	}
	return UNDEFINED, false
}

// --- Map Object ---

// MapEntry is a single key/value pair of a Map.
type MapEntry struct {
	Key   Object
	Value Object
}

// MapInterceptor takes over the mutating surface of an observed Map.
type MapInterceptor interface {
	Set(key, val Object) error
	Delete(key Object) (bool, error)
	Clear() error
}

// Map is an insertion-ordered key/value collection with SameValueZero keys.
type Map struct {
	entries []MapEntry
	index   map[any]int

	interceptor MapInterceptor
}

// NewMap creates a map from entries.
func NewMap(entries ...MapEntry) *Map {
	m := &Map{index: make(map[any]int)}
	for _, e := range entries {
		m.PutRaw(e.Key, e.Value)
	}
	return m
}

// Type returns the type of the Map object.
func (m *Map) Type() ObjectType { return MAP_OBJ }

// Inspect returns a string representation of the Map.
func (m *Map) Inspect() string {
	parts := make([]Object, 0, len(m.entries))
	for _, e := range m.entries {
		parts = append(parts, String(e.Key.Inspect()+" => "+e.Value.Inspect()))
	}
	return "Map {" + inspectList(parts) + "}"
}

// Size returns the number of entries.
func (m *Map) Size() int { return len(m.entries) }

// Entries returns a copy of the entries in insertion order.
func (m *Map) Entries() []MapEntry { return append([]MapEntry(nil), m.entries...) }

// Lookup returns the value stored under key.
func (m *Map) Lookup(key Object) (Object, bool) {
	i, ok := m.index[keyOf(key)]
	if !ok {
		return UNDEFINED, false
	}
	return m.entries[i].Value, true
}

// HasKey reports whether key is present.
func (m *Map) HasKey(key Object) bool {
	_, ok := m.index[keyOf(key)]
	return ok
}

// IndexOfKey returns the insertion position of key or -1.
func (m *Map) IndexOfKey(key Object) int {
	if i, ok := m.index[keyOf(key)]; ok {
		return i
	}
	return -1
}

// Interceptor returns the installed interceptor, if any.
func (m *Map) Interceptor() MapInterceptor { return m.interceptor }

// SetInterceptor installs i. A nil i restores direct mutation.
func (m *Map) SetInterceptor(i MapInterceptor) { m.interceptor = i }

// Put stores val under key.
func (m *Map) Put(key, val Object) error {
	if m.interceptor != nil {
		return m.interceptor.Set(key, val)
	}
	m.PutRaw(key, val)
	return nil
}

// Remove deletes key and reports whether it was present.
func (m *Map) Remove(key Object) (bool, error) {
	if m.interceptor != nil {
		return m.interceptor.Delete(key)
	}
	return m.RemoveRaw(key), nil
}

// Clear removes every entry.
func (m *Map) Clear() error {
	if m.interceptor != nil {
		return m.interceptor.Clear()
	}
	m.ClearRaw()
	return nil
}

// PutRaw stores val under key without consulting the interceptor.
func (m *Map) PutRaw(key, val Object) {
	if key == nil {
		key = UNDEFINED
	}
	if val == nil {
		val = UNDEFINED
	}
	k := keyOf(key)
	if i, ok := m.index[k]; ok {
		m.entries[i].Value = val
		return
	}
	m.index[k] = len(m.entries)
	m.entries = append(m.entries, MapEntry{Key: key, Value: val})
}

// RemoveRaw deletes key without consulting the interceptor.
func (m *Map) RemoveRaw(key Object) bool {
	k := keyOf(key)
	i, ok := m.index[k]
	if !ok {
		return false
	}
	delete(m.index, k)
	m.entries, _ = Splice(m.entries, i, 1)
	for j := i; j < len(m.entries); j++ {
		m.index[keyOf(m.entries[j].Key)] = j
	}
	return true
}

// ClearRaw removes every entry without consulting the interceptor.
func (m *Map) ClearRaw() {
	m.entries = nil
	m.index = make(map[any]int)
}

// Get exposes "size" and the map methods.
func (m *Map) Get(key string) (Object, bool) {
	if key == "size" {
		return Number(len(m.entries)), true
	}
	if fn, ok := mapMethods[key]; ok {
		return fn.Bind(m), true
	}
	return UNDEFINED, false
}
