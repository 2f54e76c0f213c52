package observation

import (
	"github.com/podhmo/go-observe/object"
)

// Adapter supplies observers for host-defined objects the locator does not
// know how to intercept.
type Adapter interface {
	GetObserver(rt *Runtime, obj object.Object, key string) (AccessorObserver, bool)
}

// AdapterFunc adapts a function to Adapter.
type AdapterFunc func(rt *Runtime, obj object.Object, key string) (AccessorObserver, bool)

// GetObserver calls f.
func (f AdapterFunc) GetObserver(rt *Runtime, obj object.Object, key string) (AccessorObserver, bool) {
	return f(rt, obj, key)
}

// ObserverLocator hands out the observer for a property or collection,
// creating it on first use. Observers live in the interceptor slots of the
// values they observe, so the same (object, key) always yields the same
// observer.
type ObserverLocator struct {
	rt       *Runtime
	adapters []Adapter
}

func newObserverLocator(rt *Runtime) *ObserverLocator {
	return &ObserverLocator{rt: rt}
}

// AddAdapter registers a. Adapters are consulted in registration order for
// values that are not records or collections.
func (l *ObserverLocator) AddAdapter(a Adapter) {
	l.adapters = append(l.adapters, a)
}

// GetObserver returns the observer of obj[key].
func (l *ObserverLocator) GetObserver(obj object.Object, key string) AccessorObserver {
	switch x := obj.(type) {
	case *object.Record:
		if x.Frozen() {
			return &PassiveObserver{obj: x, key: key}
		}
		if o, ok := x.Interceptor(key).(*PropertyObserver); ok {
			return o
		}
		return newPropertyObserver(l.rt, x, key)
	case *object.Array:
		if key == "length" {
			return l.GetArrayObserver(x).LengthObserver()
		}
		if i, ok := object.ArrayIndex(key); ok {
			return l.GetArrayObserver(x).IndexObserver(i)
		}
		return &PassiveObserver{obj: x, key: key}
	case *object.Set:
		if key == "size" {
			return l.GetSetObserver(x).SizeObserver()
		}
		return &PassiveObserver{obj: x, key: key}
	case *object.Map:
		if key == "size" {
			return l.GetMapObserver(x).SizeObserver()
		}
		return &PassiveObserver{obj: x, key: key}
	}
	if isPrimitive(obj) {
		if obj == nil {
			obj = object.UNDEFINED
		}
		return &PrimitiveObserver{obj: obj, key: key}
	}
	for _, a := range l.adapters {
		if o, ok := a.GetObserver(l.rt, obj, key); ok {
			return o
		}
	}
	return &PassiveObserver{obj: obj, key: key}
}

// GetCollectionObserver returns the observer of an array, set or map.
func (l *ObserverLocator) GetCollectionObserver(collection object.Object) (CollectionObserver, bool) {
	switch x := collection.(type) {
	case *object.Array:
		return l.GetArrayObserver(x), true
	case *object.Set:
		return l.GetSetObserver(x), true
	case *object.Map:
		return l.GetMapObserver(x), true
	}
	return nil, false
}

// GetArrayObserver returns the observer of a.
func (l *ObserverLocator) GetArrayObserver(a *object.Array) *ArrayObserver {
	if o, ok := a.Interceptor().(*ArrayObserver); ok {
		return o
	}
	return newArrayObserver(l.rt, a)
}

// GetSetObserver returns the observer of s.
func (l *ObserverLocator) GetSetObserver(s *object.Set) *SetObserver {
	if o, ok := s.Interceptor().(*SetObserver); ok {
		return o
	}
	return newSetObserver(l.rt, s)
}

// GetMapObserver returns the observer of m.
func (l *ObserverLocator) GetMapObserver(m *object.Map) *MapObserver {
	if o, ok := m.Interceptor().(*MapObserver); ok {
		return o
	}
	return newMapObserver(l.rt, m)
}

func isPrimitive(obj object.Object) bool {
	switch obj.(type) {
	case nil, object.Undefined, object.Null, object.Boolean, object.Number, object.String, *object.BigInt:
		return true
	}
	return false
}
