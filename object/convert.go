package object

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"sort"
	"time"

	"github.com/iancoleman/orderedmap"
)

// FromGo converts a native Go value into an Object. Maps become Records with
// sorted keys, slices become Arrays.
func FromGo(v any) (Object, error) {
	switch x := v.(type) {
	case nil:
		return NULL, nil
	case Object:
		return x, nil
	case bool:
		return Boolean(x), nil
	case string:
		return String(x), nil
	case float64:
		return Number(x), nil
	case float32:
		return Number(x), nil
	case int:
		return Number(x), nil
	case int64:
		return Number(x), nil
	case int32:
		return Number(x), nil
	case uint:
		return Number(x), nil
	case uint64:
		return Number(x), nil
	case *big.Int:
		return &BigInt{Value: x}, nil
	case time.Time:
		return &Date{Time: x}, nil
	case []any:
		elements := make([]Object, len(x))
		for i, el := range x {
			o, err := FromGo(el)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			elements[i] = o
		}
		return NewArray(elements...), nil
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		r := NewRecord()
		for _, k := range keys {
			o, err := FromGo(x[k])
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			r.SetRaw(k, o)
		}
		return r, nil
	case orderedmap.OrderedMap:
		return fromOrderedMap(&x)
	case *orderedmap.OrderedMap:
		return fromOrderedMap(x)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Number(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Number(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return Number(rv.Float()), nil
	case reflect.Slice, reflect.Array:
		elements := make([]Object, rv.Len())
		for i := range elements {
			o, err := FromGo(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			elements[i] = o
		}
		return NewArray(elements...), nil
	}
	return nil, fmt.Errorf("unsupported Go value of type %T", v)
}

func fromOrderedMap(m *orderedmap.OrderedMap) (Object, error) {
	r := NewRecord()
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		o, err := FromGo(v)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		r.SetRaw(k, o)
	}
	return r, nil
}

// MustFromGo is FromGo for literals known to be convertible.
func MustFromGo(v any) Object {
	o, err := FromGo(v)
	if err != nil {
		panic(err)
	}
	return o
}

// ToGo converts an Object into plain Go values: Records become
// insertion-ordered maps so that encoding keeps the key order.
func ToGo(o Object) any {
	switch v := o.(type) {
	case nil, Undefined, Null:
		return nil
	case Boolean:
		return bool(v)
	case Number:
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return f
	case String:
		return string(v)
	case *BigInt:
		return v.Value
	case *Date:
		return v.Time
	case *Array:
		out := make([]any, len(v.Elements))
		for i, el := range v.Elements {
			out[i] = ToGo(el)
		}
		return out
	case *Set:
		values := v.Values()
		out := make([]any, len(values))
		for i, el := range values {
			out[i] = ToGo(el)
		}
		return out
	case *Map:
		m := orderedmap.New()
		for _, e := range v.Entries() {
			m.Set(ToString(e.Key), ToGo(e.Value))
		}
		return m
	case *Record:
		m := orderedmap.New()
		for _, k := range v.Keys() {
			val, _ := v.GetOwn(k)
			if _, ok := val.(*Function); ok {
				continue
			}
			m.Set(k, ToGo(val))
		}
		return m
	}
	return nil
}
