package object

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strings"
	"time"
)

// ObjectType is a string representation of an object's type.
type ObjectType string

// Define the value types of the binding language.
const (
	UNDEFINED_OBJ ObjectType = "UNDEFINED"
	NULL_OBJ      ObjectType = "NULL"
	BOOLEAN_OBJ   ObjectType = "BOOLEAN"
	NUMBER_OBJ    ObjectType = "NUMBER"
	STRING_OBJ    ObjectType = "STRING"
	BIGINT_OBJ    ObjectType = "BIGINT"
	DATE_OBJ      ObjectType = "DATE"
	RECORD_OBJ    ObjectType = "RECORD"
	ARRAY_OBJ     ObjectType = "ARRAY"
	SET_OBJ       ObjectType = "SET"
	MAP_OBJ       ObjectType = "MAP"
	FUNCTION_OBJ  ObjectType = "FUNCTION"
)

// Object is the interface that all values seen by the evaluator implement.
type Object interface {
	// Type returns the type of the object.
	Type() ObjectType
	// Inspect returns a string representation of the object's value.
	Inspect() string
}

// Getter is implemented by values that expose named properties.
type Getter interface {
	// Get returns the own-or-inherited property named key.
	Get(key string) (Object, bool)
}

// Keyed is the capability interface of a binding context: get/set by string
// key and enumerate keys.
type Keyed interface {
	Object
	Getter
	// Set writes the property, routing through an installed interceptor.
	Set(key string, val Object) error
	// Has reports whether key is an own or inherited property.
	Has(key string) bool
	// Keys returns the own enumerable keys in insertion order.
	Keys() []string
}

// Hashable is an interface for objects that are compared by value when used
// as Set members or Map keys.
type Hashable interface {
	// HashKey returns a unique key for the object, used for lookups.
	HashKey() HashKey
}

// HashKey is used as a key in the internal index of Set and Map objects.
// Strings and BigInts are keyed by Text, other primitives by Value.
type HashKey struct {
	Type  ObjectType
	Value uint64
	Text  string
}

// valueKey keys a host value that Go cannot hash.
type valueKey struct {
	typ  reflect.Type
	repr string
}

// keyOf returns the SameValueZero identity of o: primitives by value,
// everything else by reference. Host values Go cannot hash are keyed by
// their type and printed contents.
func keyOf(o Object) any {
	if o == nil {
		return UNDEFINED.HashKey()
	}
	if h, ok := o.(Hashable); ok {
		return h.HashKey()
	}
	if !Comparable(o) {
		return valueKey{typ: reflect.TypeOf(o), repr: fmt.Sprintf("%#v", o)}
	}
	return o
}

// Comparable reports whether v can be compared with == and used as a map
// key without panicking. Interface fields are checked by their dynamic
// value.
func Comparable(v any) bool {
	if v == nil {
		return true
	}
	return comparableValue(reflect.ValueOf(v))
}

func comparableValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Slice, reflect.Map, reflect.Func:
		return false
	case reflect.Interface:
		return v.IsNil() || comparableValue(v.Elem())
	case reflect.Struct:
		for i := range v.NumField() {
			if !comparableValue(v.Field(i)) {
				return false
			}
		}
	case reflect.Array:
		for i := range v.Len() {
			if !comparableValue(v.Index(i)) {
				return false
			}
		}
	}
	return true
}

// --- Undefined Object ---

// Undefined is the absence of a value.
type Undefined struct{}

// UNDEFINED is the single undefined value.
var UNDEFINED = Undefined{}

// Type returns the type of the Undefined object.
func (Undefined) Type() ObjectType { return UNDEFINED_OBJ }

// Inspect returns a string representation of undefined.
func (Undefined) Inspect() string { return "undefined" }

// HashKey returns the hash key for undefined.
func (Undefined) HashKey() HashKey { return HashKey{Type: UNDEFINED_OBJ} }

// --- Null Object ---

// Null is the intentional absence of a value.
type Null struct{}

// NULL is the single null value.
var NULL = Null{}

// Type returns the type of the Null object.
func (Null) Type() ObjectType { return NULL_OBJ }

// Inspect returns a string representation of null.
func (Null) Inspect() string { return "null" }

// HashKey returns the hash key for null.
func (Null) HashKey() HashKey { return HashKey{Type: NULL_OBJ} }

// IsNullish reports whether o is nil, undefined or null.
func IsNullish(o Object) bool {
	switch o.(type) {
	case nil, Undefined, Null:
		return true
	}
	return false
}

// --- Boolean Object ---

// Boolean represents a boolean value.
type Boolean bool

// Boolean singletons.
const (
	TRUE  Boolean = true
	FALSE Boolean = false
)

// Type returns the type of the Boolean object.
func (b Boolean) Type() ObjectType { return BOOLEAN_OBJ }

// Inspect returns a string representation of the Boolean's value.
func (b Boolean) Inspect() string { return fmt.Sprintf("%t", bool(b)) }

// HashKey returns the hash key for a Boolean.
func (b Boolean) HashKey() HashKey {
	var value uint64
	if b {
		value = 1
	}
	return HashKey{Type: BOOLEAN_OBJ, Value: value}
}

// --- Number Object ---

// Number is an IEEE-754 double.
type Number float64

// Type returns the type of the Number object.
func (n Number) Type() ObjectType { return NUMBER_OBJ }

// Inspect returns a string representation of the Number's value.
func (n Number) Inspect() string { return formatNumber(float64(n)) }

// HashKey returns the hash key for a Number. NaN hashes to a single key and
// negative zero to positive zero.
func (n Number) HashKey() HashKey {
	f := float64(n)
	switch {
	case math.IsNaN(f):
		return HashKey{Type: NUMBER_OBJ, Value: math.Float64bits(math.NaN())}
	case f == 0:
		return HashKey{Type: NUMBER_OBJ}
	}
	return HashKey{Type: NUMBER_OBJ, Value: math.Float64bits(f)}
}

// --- String Object ---

// String represents a string value.
type String string

// Type returns the type of the String object.
func (s String) Type() ObjectType { return STRING_OBJ }

// Inspect returns a string representation of the String's value.
func (s String) Inspect() string { return string(s) }

// HashKey returns the hash key for a String.
func (s String) HashKey() HashKey {
	return HashKey{Type: STRING_OBJ, Text: string(s)}
}

// Get exposes "length" and the string methods.
func (s String) Get(key string) (Object, bool) {
	if key == "length" {
		return Number(len([]rune(string(s)))), true
	}
	if idx, ok := ArrayIndex(key); ok {
		runes := []rune(string(s))
		if idx < len(runes) {
			return String(runes[idx]), true
		}
		return UNDEFINED, false
	}
	if m, ok := stringMethods[key]; ok {
		return m.Bind(s), true
	}
	return UNDEFINED, false
}

// --- BigInt Object ---

// BigInt is an arbitrary precision integer.
type BigInt struct {
	Value *big.Int
}

// NewBigInt returns a BigInt holding v.
func NewBigInt(v int64) *BigInt { return &BigInt{Value: big.NewInt(v)} }

// Type returns the type of the BigInt object.
func (b *BigInt) Type() ObjectType { return BIGINT_OBJ }

// Inspect returns a string representation of the BigInt's value.
func (b *BigInt) Inspect() string { return b.Value.String() + "n" }

// HashKey returns the hash key for a BigInt.
func (b *BigInt) HashKey() HashKey {
	return HashKey{Type: BIGINT_OBJ, Text: b.Value.String()}
}

// --- Date Object ---

// Date wraps a point in time.
type Date struct {
	Time time.Time
}

// Type returns the type of the Date object.
func (d *Date) Type() ObjectType { return DATE_OBJ }

// Inspect returns a string representation of the Date.
func (d *Date) Inspect() string {
	return d.Time.Format("Mon Jan 02 2006 15:04:05 GMT-0700 (MST)")
}

// --- Function Object ---

// NativeFunc is the Go implementation behind a Function.
type NativeFunc func(this Object, args []Object) (Object, error)

// Function is a callable value. Arrow functions created by the evaluator,
// built-in methods and host functions are all Functions.
type Function struct {
	Name string
	Fn   NativeFunc

	// Statics holds properties reachable through the function itself
	// (e.g. Array.isArray).
	Statics *Record
	// IsInstance backs the instanceof operator when the function acts as a
	// constructor.
	IsInstance func(Object) bool

	this  Object
	bound bool
}

// Type returns the type of the Function object.
func (f *Function) Type() ObjectType { return FUNCTION_OBJ }

// Inspect returns a string representation of the function.
func (f *Function) Inspect() string {
	return fmt.Sprintf("function %s() { [native code] }", f.Name)
}

// Get exposes "name" and the statics.
func (f *Function) Get(key string) (Object, bool) {
	if key == "name" {
		return String(f.Name), true
	}
	if f.Statics != nil {
		return f.Statics.Get(key)
	}
	return UNDEFINED, false
}

// Bind returns a copy of f whose receiver is fixed to this.
func (f *Function) Bind(this Object) *Function {
	bound := *f
	bound.this = this
	bound.bound = true
	return &bound
}

// Call invokes the function. A bound function ignores the supplied receiver.
func (f *Function) Call(this Object, args []Object) (Object, error) {
	if f.bound {
		this = f.this
	}
	if this == nil {
		this = UNDEFINED
	}
	ret, err := f.Fn(this, args)
	if err != nil {
		return nil, err
	}
	if ret == nil {
		return UNDEFINED, nil
	}
	return ret, nil
}

// NewFunction is a shorthand for a named native function.
func NewFunction(name string, fn NativeFunc) *Function {
	return &Function{Name: name, Fn: fn}
}

// inspectList joins the Inspect form of each element.
func inspectList(elements []Object) string {
	parts := make([]string, len(elements))
	for i, el := range elements {
		if el == nil {
			el = UNDEFINED
		}
		if s, ok := el.(String); ok {
			parts[i] = fmt.Sprintf("%q", string(s))
			continue
		}
		parts[i] = el.Inspect()
	}
	return strings.Join(parts, ", ")
}
