package observation

import (
	"fmt"

	"github.com/podhmo/go-observe/object"
)

// --- Property Observer ---

// PropertyObserver observes one property of a Record. It installs itself as
// the record's interceptor for the key, so plain writes notify.
type PropertyObserver struct {
	rt   *Runtime
	obj  *object.Record
	key  string
	subs SubscriberRecord
}

func newPropertyObserver(rt *Runtime, obj *object.Record, key string) *PropertyObserver {
	o := &PropertyObserver{rt: rt, obj: obj, key: key}
	obj.SetInterceptor(key, o)
	return o
}

// GetValue returns the current value.
func (o *PropertyObserver) GetValue() object.Object {
	v, _ := o.obj.Get(o.key)
	return v
}

// SetValue writes the property and notifies when the value differs.
func (o *PropertyObserver) SetValue(val object.Object) error {
	if val == nil {
		val = object.UNDEFINED
	}
	if o.obj.Frozen() {
		return fmt.Errorf("%w: %s", object.ErrFrozen, o.key)
	}
	old := o.GetValue()
	if object.SameValue(val, old) {
		return nil
	}
	o.obj.SetRaw(o.key, val)
	return o.rt.notifyValue(&o.subs, val, old)
}

// Subscribe adds sub.
func (o *PropertyObserver) Subscribe(sub Subscriber) { o.subs.Add(sub) }

// Unsubscribe removes sub.
func (o *PropertyObserver) Unsubscribe(sub Subscriber) { o.subs.Remove(sub) }

// --- Primitive Observer ---

// PrimitiveObserver reads a property of a primitive value. Primitives never
// change, so it never notifies and ignores writes.
type PrimitiveObserver struct {
	obj object.Object
	key string
}

// GetValue returns the property, or undefined for null and undefined.
func (o *PrimitiveObserver) GetValue() object.Object {
	if object.IsNullish(o.obj) {
		return object.UNDEFINED
	}
	return getProperty(o.obj, o.key)
}

// SetValue is a no-op.
func (o *PrimitiveObserver) SetValue(object.Object) error { return nil }

// Subscribe is a no-op.
func (o *PrimitiveObserver) Subscribe(Subscriber) {}

// Unsubscribe is a no-op.
func (o *PrimitiveObserver) Unsubscribe(Subscriber) {}

func (o *PrimitiveObserver) inert() {}

// --- Passive Observer ---

// PassiveObserver reads and writes a property it cannot intercept: a
// property of a frozen record, of a function, or of a host-defined object.
// It never notifies. Writes go through object.Keyed when the object is
// writable and fail with ErrReadOnlyProperty otherwise.
type PassiveObserver struct {
	obj object.Object
	key string
}

// GetValue returns the current value.
func (o *PassiveObserver) GetValue() object.Object {
	return getProperty(o.obj, o.key)
}

// SetValue writes through object.Keyed.
func (o *PassiveObserver) SetValue(val object.Object) error {
	if r, ok := o.obj.(*object.Record); ok && r.Frozen() {
		return fmt.Errorf("%w: %s", ErrReadOnlyProperty, o.key)
	}
	if k, ok := o.obj.(object.Keyed); ok {
		return k.Set(o.key, val)
	}
	return fmt.Errorf("%w: %s on %s", ErrReadOnlyProperty, o.key, o.obj.Type())
}

// Subscribe is a no-op.
func (o *PassiveObserver) Subscribe(Subscriber) {}

// Unsubscribe is a no-op.
func (o *PassiveObserver) Unsubscribe(Subscriber) {}

func (o *PassiveObserver) inert() {}
