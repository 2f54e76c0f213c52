package observation

import (
	"fmt"
	"slices"

	"github.com/podhmo/go-observe/object"
)

// Observable exposes a Record whose tracked properties register as
// dependencies when read while a connectable is active, and notify through
// their property observers when written.
type Observable struct {
	rt       *Runtime
	record   *object.Record
	tracked  []string
	computed map[string]*ComputedObserver
}

// Observable wraps rec, tracking props.
func (rt *Runtime) Observable(rec *object.Record, props ...string) *Observable {
	return &Observable{rt: rt, record: rec, tracked: props, computed: make(map[string]*ComputedObserver)}
}

// Record returns the wrapped record.
func (o *Observable) Record() *object.Record { return o.record }

// Tracked reports whether key is a tracked or computed property.
func (o *Observable) Tracked(key string) bool {
	_, ok := o.computed[key]
	return ok || slices.Contains(o.tracked, key)
}

// Get returns the property, registering it with the active connectable.
func (o *Observable) Get(key string) object.Object {
	if c, ok := o.computed[key]; ok {
		if o.rt.switcher.Connecting() {
			o.rt.switcher.current.SubscribeTo(c)
		}
		return c.GetValue()
	}
	if o.rt.switcher.Connecting() && slices.Contains(o.tracked, key) {
		o.rt.switcher.current.Observe(o.record, key)
	}
	v, _ := o.record.Get(key)
	return v
}

// Set writes the property. Computed properties are read-only.
func (o *Observable) Set(key string, val object.Object) error {
	if _, ok := o.computed[key]; ok {
		return fmt.Errorf("%w: computed property %s", ErrReadOnlyProperty, key)
	}
	if slices.Contains(o.tracked, key) {
		return o.rt.Write(o.record, key, val)
	}
	return o.record.Set(key, val)
}

// Computed defines a read-only property derived by get from the tracked
// properties listed in deps.
func (o *Observable) Computed(name string, deps []string, get func(o *Observable) object.Object) *ComputedObserver {
	c := &ComputedObserver{owner: o, deps: deps, get: get}
	o.computed[name] = c
	return c
}

// ComputedObserver is the observer of a property declared with
// Observable.Computed. While subscribed it caches the value and recomputes
// it when a dependency changes.
type ComputedObserver struct {
	owner *Observable
	deps  []string
	get   func(o *Observable) object.Object
	value object.Object
	subs  SubscriberRecord
}

// GetValue returns the cached value while subscribed, otherwise computes it.
func (c *ComputedObserver) GetValue() object.Object {
	if c.subs.Count() > 0 {
		return c.value
	}
	return c.compute()
}

// SetValue always fails.
func (c *ComputedObserver) SetValue(object.Object) error { return ErrReadOnlyProperty }

func (c *ComputedObserver) compute() object.Object {
	var v object.Object
	_ = c.owner.rt.Untracked(func() error {
		v = c.get(c.owner)
		return nil
	})
	if v == nil {
		v = object.UNDEFINED
	}
	return v
}

// Subscribe adds sub, subscribing to the dependencies on the first one.
func (c *ComputedObserver) Subscribe(sub Subscriber) {
	if c.subs.Add(sub) && c.subs.Count() == 1 {
		c.value = c.compute()
		for _, d := range c.deps {
			c.owner.rt.locator.GetObserver(c.owner.record, d).Subscribe(c)
		}
	}
}

// Unsubscribe removes sub, leaving the dependencies after the last one.
func (c *ComputedObserver) Unsubscribe(sub Subscriber) {
	if c.subs.Remove(sub) && c.subs.Count() == 0 {
		for _, d := range c.deps {
			c.owner.rt.locator.GetObserver(c.owner.record, d).Unsubscribe(c)
		}
	}
}

// HandleChange recomputes and notifies when the value differs.
func (c *ComputedObserver) HandleChange(_, _ object.Object) error {
	old := c.value
	c.value = c.compute()
	if object.SameValue(old, c.value) {
		return nil
	}
	return c.owner.rt.notifyValue(&c.subs, c.value, old)
}
