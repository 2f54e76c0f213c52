package observation

import (
	"github.com/podhmo/go-observe/object"
)

// batch collects the notifications raised while Runtime.Batch runs.
// A value change keeps the first old value and the latest new value; a
// collection keeps accumulating into its observer's index map.
type batch struct {
	entries []batchEntry
	index   map[any]int
}

type batchEntry struct {
	subs     *SubscriberRecord
	newValue object.Object
	oldValue object.Object

	collection CollectionObserver
}

func newBatch() *batch {
	return &batch{index: make(map[any]int)}
}

func (b *batch) addValue(subs *SubscriberRecord, newValue, oldValue object.Object) {
	if i, ok := b.index[subs]; ok {
		b.entries[i].newValue = newValue
		return
	}
	b.index[subs] = len(b.entries)
	b.entries = append(b.entries, batchEntry{subs: subs, newValue: newValue, oldValue: oldValue})
}

func (b *batch) addCollection(o CollectionObserver) {
	if _, ok := b.index[o]; ok {
		return
	}
	b.index[o] = len(b.entries)
	b.entries = append(b.entries, batchEntry{collection: o})
}

// flush delivers the collected notifications in the order they were first
// raised. Changes that cancel out are dropped.
func (b *batch) flush(rt *Runtime) error {
	var errs []error
	for _, e := range b.entries {
		if e.collection != nil {
			errs = append(errs, e.collection.flush())
			continue
		}
		if object.SameValue(e.newValue, e.oldValue) {
			continue
		}
		rt.metrics.notified("value")
		errs = append(errs, e.subs.Notify(e.newValue, e.oldValue))
	}
	return joinErrors(errs...)
}

// Batch runs fn and defers every notification it raises until fn returns.
// Nested calls join the outermost batch. The batch is flushed even when fn
// fails; errors from fn and from subscribers are joined.
func (rt *Runtime) Batch(fn func() error) error {
	if rt.batch != nil {
		return fn()
	}
	b := newBatch()
	rt.batch = b
	err := func() error {
		defer func() { rt.batch = nil }()
		return fn()
	}()
	rt.metrics.batchFlushed()
	rt.debug("flush batch", "entries", len(b.entries))
	return joinErrors(err, b.flush(rt))
}

// Batching reports whether a batch is active.
func (rt *Runtime) Batching() bool { return rt.batch != nil }

func (rt *Runtime) notifyValue(subs *SubscriberRecord, newValue, oldValue object.Object) error {
	if rt.batch != nil {
		rt.batch.addValue(subs, newValue, oldValue)
		return nil
	}
	rt.metrics.notified("value")
	return subs.Notify(newValue, oldValue)
}
