package observation

import (
	"github.com/podhmo/go-observe/object"
)

// --- Set Observer ---

// SetObserver intercepts the mutations of a Set.
type SetObserver struct {
	rt         *Runtime
	collection *object.Set
	indexMap   *IndexMap
	subs       SubscriberRecord

	sizeObserver *CollectionSizeObserver
}

func newSetObserver(rt *Runtime, s *object.Set) *SetObserver {
	o := &SetObserver{rt: rt, collection: s, indexMap: NewIndexMap(s.Size())}
	s.SetInterceptor(o)
	return o
}

// Collection returns the observed set.
func (o *SetObserver) Collection() object.Object { return o.collection }

// IndexMap returns the changes pending since the last notification.
func (o *SetObserver) IndexMap() *IndexMap { return o.indexMap }

// Subscribe adds sub.
func (o *SetObserver) Subscribe(sub Subscriber) { o.subs.Add(sub) }

// Unsubscribe removes sub.
func (o *SetObserver) Unsubscribe(sub Subscriber) { o.subs.Remove(sub) }

// SizeObserver returns the observer of the set's size.
func (o *SetObserver) SizeObserver() *CollectionSizeObserver {
	if o.sizeObserver == nil {
		o.sizeObserver = newSizeObserver(o.rt, o, o.collection.Size)
	}
	return o.sizeObserver
}

// Add implements object.SetInterceptor.
func (o *SetObserver) Add(val object.Object) error {
	if !o.collection.AddRaw(val) {
		return nil
	}
	o.indexMap.Indices = append(o.indexMap.Indices, Inserted)
	return o.notify()
}

// Delete implements object.SetInterceptor.
func (o *SetObserver) Delete(val object.Object) (bool, error) {
	i := o.collection.IndexOf(val)
	if i < 0 {
		return false, nil
	}
	o.indexMap.recordDeleted(i, val)
	o.indexMap.Indices, _ = object.Splice(o.indexMap.Indices, i, 1)
	o.collection.DeleteRaw(val)
	return true, o.notify()
}

// Clear implements object.SetInterceptor.
func (o *SetObserver) Clear() error {
	if o.collection.Size() == 0 {
		return nil
	}
	for i, v := range o.collection.Values() {
		o.indexMap.recordDeleted(i, v)
	}
	o.indexMap.Indices = []int{}
	o.collection.ClearRaw()
	return o.notify()
}

func (o *SetObserver) notify() error {
	if o.rt.batch != nil {
		o.rt.batch.addCollection(o)
		return nil
	}
	im := o.indexMap
	o.indexMap = NewIndexMap(o.collection.Size())
	o.rt.metrics.notified("collection")
	return o.subs.NotifyCollection(o.collection, im)
}

func (o *SetObserver) flush() error {
	im := o.indexMap
	o.indexMap = NewIndexMap(o.collection.Size())
	if !im.HasChanges() {
		return nil
	}
	o.rt.metrics.notified("collection")
	return o.subs.NotifyCollection(o.collection, im)
}

// --- Map Observer ---

// MapObserver intercepts the mutations of a Map. Deleted items are reported
// as [key, value] arrays.
type MapObserver struct {
	rt         *Runtime
	collection *object.Map
	indexMap   *IndexMap
	subs       SubscriberRecord

	sizeObserver *CollectionSizeObserver
}

func newMapObserver(rt *Runtime, m *object.Map) *MapObserver {
	o := &MapObserver{rt: rt, collection: m, indexMap: NewIndexMap(m.Size())}
	m.SetInterceptor(o)
	return o
}

// Collection returns the observed map.
func (o *MapObserver) Collection() object.Object { return o.collection }

// IndexMap returns the changes pending since the last notification.
func (o *MapObserver) IndexMap() *IndexMap { return o.indexMap }

// Subscribe adds sub.
func (o *MapObserver) Subscribe(sub Subscriber) { o.subs.Add(sub) }

// Unsubscribe removes sub.
func (o *MapObserver) Unsubscribe(sub Subscriber) { o.subs.Remove(sub) }

// SizeObserver returns the observer of the map's size.
func (o *MapObserver) SizeObserver() *CollectionSizeObserver {
	if o.sizeObserver == nil {
		o.sizeObserver = newSizeObserver(o.rt, o, o.collection.Size)
	}
	return o.sizeObserver
}

// Set implements object.MapInterceptor. Overwriting a key with the same
// value is not a change.
func (o *MapObserver) Set(key, val object.Object) error {
	if val == nil {
		val = object.UNDEFINED
	}
	m := o.collection
	if i := m.IndexOfKey(key); i >= 0 {
		old, _ := m.Lookup(key)
		if object.SameValue(old, val) {
			return nil
		}
		o.indexMap.recordDeleted(i, object.NewArray(key, old))
		o.indexMap.Indices[i] = Inserted
		m.PutRaw(key, val)
		return o.notify()
	}
	m.PutRaw(key, val)
	o.indexMap.Indices = append(o.indexMap.Indices, Inserted)
	return o.notify()
}

// Delete implements object.MapInterceptor.
func (o *MapObserver) Delete(key object.Object) (bool, error) {
	m := o.collection
	i := m.IndexOfKey(key)
	if i < 0 {
		return false, nil
	}
	old, _ := m.Lookup(key)
	o.indexMap.recordDeleted(i, object.NewArray(key, old))
	o.indexMap.Indices, _ = object.Splice(o.indexMap.Indices, i, 1)
	m.RemoveRaw(key)
	return true, o.notify()
}

// Clear implements object.MapInterceptor.
func (o *MapObserver) Clear() error {
	m := o.collection
	if m.Size() == 0 {
		return nil
	}
	for i, e := range m.Entries() {
		o.indexMap.recordDeleted(i, object.NewArray(e.Key, e.Value))
	}
	o.indexMap.Indices = []int{}
	m.ClearRaw()
	return o.notify()
}

func (o *MapObserver) notify() error {
	if o.rt.batch != nil {
		o.rt.batch.addCollection(o)
		return nil
	}
	im := o.indexMap
	o.indexMap = NewIndexMap(o.collection.Size())
	o.rt.metrics.notified("collection")
	return o.subs.NotifyCollection(o.collection, im)
}

func (o *MapObserver) flush() error {
	im := o.indexMap
	o.indexMap = NewIndexMap(o.collection.Size())
	if !im.HasChanges() {
		return nil
	}
	o.rt.metrics.notified("collection")
	return o.subs.NotifyCollection(o.collection, im)
}

// --- Size Observer ---

// CollectionSizeObserver observes the read-only size of a set or map.
type CollectionSizeObserver struct {
	rt    *Runtime
	owner CollectionObserver
	size  func() int
	value int
	subs  SubscriberRecord
}

func newSizeObserver(rt *Runtime, owner CollectionObserver, size func() int) *CollectionSizeObserver {
	return &CollectionSizeObserver{rt: rt, owner: owner, size: size, value: size()}
}

// GetValue returns the current size.
func (o *CollectionSizeObserver) GetValue() object.Object { return object.Number(o.size()) }

// SetValue always fails; size is derived.
func (o *CollectionSizeObserver) SetValue(object.Object) error {
	return ErrReadOnlyProperty
}

// Subscribe adds sub, subscribing to the collection on the first one.
func (o *CollectionSizeObserver) Subscribe(sub Subscriber) {
	if o.subs.Add(sub) && o.subs.Count() == 1 {
		o.value = o.size()
		o.owner.Subscribe(o)
	}
}

// Unsubscribe removes sub, leaving the collection after the last one.
func (o *CollectionSizeObserver) Unsubscribe(sub Subscriber) {
	if o.subs.Remove(sub) && o.subs.Count() == 0 {
		o.owner.Unsubscribe(o)
	}
}

// HandleChange is a no-op; the size follows collection changes only.
func (o *CollectionSizeObserver) HandleChange(_, _ object.Object) error { return nil }

// HandleCollectionChange notifies when the size differs.
func (o *CollectionSizeObserver) HandleCollectionChange(_ object.Object, _ *IndexMap) error {
	old := o.value
	o.value = o.size()
	if old == o.value {
		return nil
	}
	return o.rt.notifyValue(&o.subs, object.Number(o.value), object.Number(old))
}
