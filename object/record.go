package object

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iancoleman/orderedmap"
)

// ErrFrozen is returned when writing to a frozen record.
var ErrFrozen = fmt.Errorf("cannot assign to a frozen object")

// PropertyInterceptor takes over writes to one property of a Record. Property
// observers install themselves here so that a plain Set notifies subscribers.
type PropertyInterceptor interface {
	SetValue(val Object) error
}

// --- Record Object ---

// Record is a plain keyed object with insertion-ordered own properties and an
// optional prototype for inherited ones.
type Record struct {
	props        *orderedmap.OrderedMap
	interceptors map[string]PropertyInterceptor

	frozen bool

	// Proto is consulted by Get and Has when a key is not an own property.
	Proto *Record
}

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{props: orderedmap.New()}
}

// RecordOf creates a record from m. Keys are inserted in sorted order.
func RecordOf(m map[string]Object) *Record {
	r := NewRecord()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		r.SetRaw(k, m[k])
	}
	return r
}

// Type returns the type of the Record object.
func (r *Record) Type() ObjectType { return RECORD_OBJ }

// Inspect returns a string representation of the Record.
func (r *Record) Inspect() string {
	keys := r.props.Keys()
	parts := make([]string, len(keys))
	for i, k := range keys {
		v, _ := r.GetOwn(k)
		if s, ok := v.(String); ok {
			parts[i] = fmt.Sprintf("%s: %q", k, string(s))
			continue
		}
		parts[i] = k + ": " + v.Inspect()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// GetOwn returns an own property only.
func (r *Record) GetOwn(key string) (Object, bool) {
	v, ok := r.props.Get(key)
	if !ok {
		return UNDEFINED, false
	}
	if v == nil {
		return UNDEFINED, true
	}
	return v.(Object), true
}

// Get returns an own or inherited property.
func (r *Record) Get(key string) (Object, bool) {
	for cur := r; cur != nil; cur = cur.Proto {
		if v, ok := cur.GetOwn(key); ok {
			return v, true
		}
	}
	return UNDEFINED, false
}

// HasOwn reports whether key is an own property.
func (r *Record) HasOwn(key string) bool {
	_, ok := r.props.Get(key)
	return ok
}

// Has reports whether key is an own or inherited property.
func (r *Record) Has(key string) bool {
	for cur := r; cur != nil; cur = cur.Proto {
		if cur.HasOwn(key) {
			return true
		}
	}
	return false
}

// Keys returns the own keys in insertion order.
func (r *Record) Keys() []string {
	return r.props.Keys()
}

// Set writes key. When a property observer intercepts key the write goes
// through it.
func (r *Record) Set(key string, val Object) error {
	if val == nil {
		val = UNDEFINED
	}
	if r.frozen {
		return fmt.Errorf("%w: %s", ErrFrozen, key)
	}
	if i, ok := r.interceptors[key]; ok {
		return i.SetValue(val)
	}
	r.SetRaw(key, val)
	return nil
}

// SetRaw writes key without consulting interceptors.
func (r *Record) SetRaw(key string, val Object) {
	if val == nil {
		val = UNDEFINED
	}
	r.props.Set(key, val)
}

// Delete removes an own property.
func (r *Record) Delete(key string) {
	r.props.Delete(key)
}

// Interceptor returns the interceptor installed for key, if any.
func (r *Record) Interceptor(key string) PropertyInterceptor {
	return r.interceptors[key]
}

// SetInterceptor installs i for key. A nil i removes the interceptor.
func (r *Record) SetInterceptor(key string, i PropertyInterceptor) {
	if i == nil {
		delete(r.interceptors, key)
		return
	}
	if r.interceptors == nil {
		r.interceptors = make(map[string]PropertyInterceptor)
	}
	r.interceptors[key] = i
}

// Freeze makes the record and every record reachable through its properties
// (including function statics) read-only.
func (r *Record) Freeze() {
	if r.frozen {
		return
	}
	r.frozen = true
	for _, k := range r.Keys() {
		v, _ := r.GetOwn(k)
		switch x := v.(type) {
		case *Record:
			x.Freeze()
		case *Function:
			if x.Statics != nil {
				x.Statics.Freeze()
			}
		}
	}
}

// Frozen reports whether Freeze was called.
func (r *Record) Frozen() bool { return r.frozen }
