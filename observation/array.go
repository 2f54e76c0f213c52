package observation

import (
	"github.com/podhmo/go-observe/object"
)

// CollectionObserver observes the mutations of an array, set or map.
type CollectionObserver interface {
	Subscribable
	Collection() object.Object
	// IndexMap returns the changes pending since the last notification.
	IndexMap() *IndexMap

	flush() error
}

// --- Array Observer ---

// ArrayObserver intercepts every mutation of an Array, records it in an
// index map and notifies collection subscribers.
type ArrayObserver struct {
	rt         *Runtime
	collection *object.Array
	indexMap   *IndexMap
	subs       SubscriberRecord

	lengthObserver *CollectionLengthObserver
	indexObservers map[int]*ArrayIndexObserver
}

func newArrayObserver(rt *Runtime, a *object.Array) *ArrayObserver {
	o := &ArrayObserver{rt: rt, collection: a, indexMap: NewIndexMap(a.Len())}
	a.SetInterceptor(o)
	return o
}

// Collection returns the observed array.
func (o *ArrayObserver) Collection() object.Object { return o.collection }

// IndexMap returns the changes pending since the last notification.
func (o *ArrayObserver) IndexMap() *IndexMap { return o.indexMap }

// Subscribe adds sub.
func (o *ArrayObserver) Subscribe(sub Subscriber) { o.subs.Add(sub) }

// Unsubscribe removes sub.
func (o *ArrayObserver) Unsubscribe(sub Subscriber) { o.subs.Remove(sub) }

// LengthObserver returns the observer of the array's length.
func (o *ArrayObserver) LengthObserver() *CollectionLengthObserver {
	if o.lengthObserver == nil {
		o.lengthObserver = &CollectionLengthObserver{owner: o, value: o.collection.Len()}
	}
	return o.lengthObserver
}

// IndexObserver returns the observer of the element at index.
func (o *ArrayObserver) IndexObserver(index int) *ArrayIndexObserver {
	if io, ok := o.indexObservers[index]; ok {
		return io
	}
	if o.indexObservers == nil {
		o.indexObservers = make(map[int]*ArrayIndexObserver)
	}
	io := &ArrayIndexObserver{owner: o, index: index}
	io.value = io.GetValue()
	o.indexObservers[index] = io
	return io
}

// Push implements object.ArrayInterceptor.
func (o *ArrayObserver) Push(items []object.Object) (int, error) {
	a := o.collection
	if len(items) == 0 {
		return a.Len(), nil
	}
	a.Elements = append(a.Elements, items...)
	o.indexMap.Indices = append(o.indexMap.Indices, insertedSlots(len(items))...)
	return a.Len(), o.notify()
}

// Unshift implements object.ArrayInterceptor.
func (o *ArrayObserver) Unshift(items []object.Object) (int, error) {
	a := o.collection
	if len(items) == 0 {
		return a.Len(), nil
	}
	a.Elements, _ = object.Splice(a.Elements, 0, 0, items...)
	o.indexMap.Indices, _ = object.Splice(o.indexMap.Indices, 0, 0, insertedSlots(len(items))...)
	return a.Len(), o.notify()
}

// Pop implements object.ArrayInterceptor.
func (o *ArrayObserver) Pop() (object.Object, error) {
	a := o.collection
	n := a.Len()
	if n == 0 {
		return object.UNDEFINED, nil
	}
	last := a.At(n - 1)
	o.indexMap.recordDeleted(n-1, last)
	o.indexMap.Indices = o.indexMap.Indices[:n-1]
	a.Elements = a.Elements[:n-1]
	return last, o.notify()
}

// Shift implements object.ArrayInterceptor.
func (o *ArrayObserver) Shift() (object.Object, error) {
	a := o.collection
	if a.Len() == 0 {
		return object.UNDEFINED, nil
	}
	first := a.At(0)
	o.indexMap.recordDeleted(0, first)
	o.indexMap.Indices = o.indexMap.Indices[1:]
	a.Elements = a.Elements[1:]
	return first, o.notify()
}

// Splice implements object.ArrayInterceptor. start and deleteCount are
// already clamped.
func (o *ArrayObserver) Splice(start, deleteCount int, items []object.Object) ([]object.Object, error) {
	a := o.collection
	for i := start; i < start+deleteCount; i++ {
		o.indexMap.recordDeleted(i, a.At(i))
	}
	o.indexMap.Indices, _ = object.Splice(o.indexMap.Indices, start, deleteCount, insertedSlots(len(items))...)
	var removed []object.Object
	a.Elements, removed = object.Splice(a.Elements, start, deleteCount, items...)
	if deleteCount == 0 && len(items) == 0 {
		return removed, nil
	}
	return removed, o.notify()
}

// Reverse implements object.ArrayInterceptor.
func (o *ArrayObserver) Reverse() error {
	a := o.collection
	if a.Len() < 2 {
		return nil
	}
	indices := o.indexMap.Indices
	for i, j := 0, a.Len()-1; i < j; i, j = i+1, j-1 {
		a.Elements[i], a.Elements[j] = a.Elements[j], a.Elements[i]
		indices[i], indices[j] = indices[j], indices[i]
	}
	return o.notify()
}

// Sort implements object.ArrayInterceptor. The index map is permuted in
// lock-step with the elements.
func (o *ArrayObserver) Sort(cmp object.CompareFunc) error {
	indices := o.indexMap.Indices
	sortErr := object.SortLockstep(o.collection.Elements, cmp, func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})
	changed := false
	for i, v := range indices {
		if v != i {
			changed = true
			break
		}
	}
	if !changed && o.rt.batch == nil {
		return sortErr
	}
	return joinErrors(sortErr, o.notify())
}

func (o *ArrayObserver) notify() error {
	if o.rt.batch != nil {
		o.rt.batch.addCollection(o)
		return nil
	}
	im := o.indexMap
	o.indexMap = NewIndexMap(o.collection.Len())
	o.rt.metrics.notified("collection")
	return o.subs.NotifyCollection(o.collection, im)
}

func (o *ArrayObserver) flush() error {
	im := o.indexMap
	o.indexMap = NewIndexMap(o.collection.Len())
	if !im.HasChanges() {
		return nil
	}
	o.rt.metrics.notified("collection")
	return o.subs.NotifyCollection(o.collection, im)
}

// --- Length Observer ---

// CollectionLengthObserver observes the length of an array. It notifies only
// when a mutation actually changes the length.
type CollectionLengthObserver struct {
	owner *ArrayObserver
	value int
	subs  SubscriberRecord
}

// GetValue returns the current length.
func (o *CollectionLengthObserver) GetValue() object.Object {
	return object.Number(o.owner.collection.Len())
}

// SetValue truncates or pads the array.
func (o *CollectionLengthObserver) SetValue(val object.Object) error {
	return o.owner.collection.SetLength(object.ToNumber(val))
}

// Subscribe adds sub, subscribing to the array on the first one.
func (o *CollectionLengthObserver) Subscribe(sub Subscriber) {
	if o.subs.Add(sub) && o.subs.Count() == 1 {
		o.value = o.owner.collection.Len()
		o.owner.Subscribe(o)
	}
}

// Unsubscribe removes sub, leaving the array after the last one.
func (o *CollectionLengthObserver) Unsubscribe(sub Subscriber) {
	if o.subs.Remove(sub) && o.subs.Count() == 0 {
		o.owner.Unsubscribe(o)
	}
}

// HandleChange is a no-op; the length follows collection changes only.
func (o *CollectionLengthObserver) HandleChange(_, _ object.Object) error { return nil }

// HandleCollectionChange notifies when the length differs.
func (o *CollectionLengthObserver) HandleCollectionChange(_ object.Object, _ *IndexMap) error {
	old := o.value
	o.value = o.owner.collection.Len()
	if old == o.value {
		return nil
	}
	return o.owner.rt.notifyValue(&o.subs, object.Number(o.value), object.Number(old))
}

// --- Index Observer ---

// ArrayIndexObserver observes one element of an array.
type ArrayIndexObserver struct {
	owner *ArrayObserver
	index int
	value object.Object
	subs  SubscriberRecord
}

// GetValue returns the element, or undefined past the end.
func (o *ArrayIndexObserver) GetValue() object.Object {
	return o.owner.collection.At(o.index)
}

// SetValue replaces the element.
func (o *ArrayIndexObserver) SetValue(val object.Object) error {
	if val == nil {
		val = object.UNDEFINED
	}
	if object.SameValue(val, o.GetValue()) && o.index < o.owner.collection.Len() {
		return nil
	}
	return o.owner.collection.SetIndex(o.index, val)
}

// Subscribe adds sub, subscribing to the array on the first one.
func (o *ArrayIndexObserver) Subscribe(sub Subscriber) {
	if o.subs.Add(sub) && o.subs.Count() == 1 {
		o.value = o.GetValue()
		o.owner.Subscribe(o)
	}
}

// Unsubscribe removes sub, leaving the array after the last one.
func (o *ArrayIndexObserver) Unsubscribe(sub Subscriber) {
	if o.subs.Remove(sub) && o.subs.Count() == 0 {
		o.owner.Unsubscribe(o)
	}
}

// HandleChange is a no-op; the element follows collection changes only.
func (o *ArrayIndexObserver) HandleChange(_, _ object.Object) error { return nil }

// HandleCollectionChange notifies when the element at the index changed.
func (o *ArrayIndexObserver) HandleCollectionChange(_ object.Object, indexMap *IndexMap) error {
	if o.index < indexMap.Len() && indexMap.Indices[o.index] == o.index {
		return nil
	}
	old := o.value
	o.value = o.GetValue()
	if object.SameValue(old, o.value) {
		return nil
	}
	return o.owner.rt.notifyValue(&o.subs, o.value, old)
}
