package object

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iancoleman/orderedmap"
)

// Globals builds a fresh record holding the host's built-in globals
// (Math, JSON, parseInt, ...). Scopes fall back to it when a name is not
// found in any binding context.
func Globals() *Record {
	g := NewRecord()
	g.SetRaw("Infinity", Number(math.Inf(1)))
	g.SetRaw("NaN", Number(math.NaN()))
	g.SetRaw("undefined", UNDEFINED)
	g.SetRaw("Math", mathObject())
	g.SetRaw("JSON", jsonObject())
	g.SetRaw("parseInt", NewFunction("parseInt", func(_ Object, args []Object) (Object, error) {
		return Number(parseInt(ToString(Arg(args, 0)), toInteger(Arg(args, 1), 0))), nil
	}))
	g.SetRaw("parseFloat", NewFunction("parseFloat", func(_ Object, args []Object) (Object, error) {
		return Number(parseFloat(ToString(Arg(args, 0)))), nil
	}))
	g.SetRaw("isNaN", NewFunction("isNaN", func(_ Object, args []Object) (Object, error) {
		return Boolean(math.IsNaN(ToNumber(Arg(args, 0)))), nil
	}))
	g.SetRaw("isFinite", NewFunction("isFinite", func(_ Object, args []Object) (Object, error) {
		f := ToNumber(Arg(args, 0))
		return Boolean(!math.IsNaN(f) && !math.IsInf(f, 0)), nil
	}))
	g.SetRaw("encodeURIComponent", NewFunction("encodeURIComponent", func(_ Object, args []Object) (Object, error) {
		return String(strings.ReplaceAll(url.QueryEscape(ToString(Arg(args, 0))), "+", "%20")), nil
	}))
	g.SetRaw("decodeURIComponent", NewFunction("decodeURIComponent", func(_ Object, args []Object) (Object, error) {
		s, err := url.PathUnescape(ToString(Arg(args, 0)))
		if err != nil {
			return nil, fmt.Errorf("decodeURIComponent: %w", err)
		}
		return String(s), nil
	}))

	number := NewFunction("Number", func(_ Object, args []Object) (Object, error) {
		if len(args) == 0 {
			return Number(0), nil
		}
		return Number(ToNumber(args[0])), nil
	})
	number.IsInstance = func(Object) bool { return false }
	number.Statics = NewRecord()
	number.Statics.SetRaw("isInteger", NewFunction("isInteger", func(_ Object, args []Object) (Object, error) {
		n, ok := Arg(args, 0).(Number)
		f := float64(n)
		return Boolean(ok && !math.IsInf(f, 0) && f == math.Trunc(f)), nil
	}))
	number.Statics.SetRaw("isNaN", NewFunction("isNaN", func(_ Object, args []Object) (Object, error) {
		n, ok := Arg(args, 0).(Number)
		return Boolean(ok && math.IsNaN(float64(n))), nil
	}))
	g.SetRaw("Number", number)

	g.SetRaw("String", NewFunction("String", func(_ Object, args []Object) (Object, error) {
		if len(args) == 0 {
			return String(""), nil
		}
		return String(ToString(args[0])), nil
	}))
	g.SetRaw("Boolean", NewFunction("Boolean", func(_ Object, args []Object) (Object, error) {
		return Boolean(Truthy(Arg(args, 0))), nil
	}))

	array := NewFunction("Array", func(_ Object, args []Object) (Object, error) {
		return NewArray(append([]Object(nil), args...)...), nil
	})
	array.IsInstance = func(o Object) bool { _, ok := o.(*Array); return ok }
	array.Statics = NewRecord()
	array.Statics.SetRaw("isArray", NewFunction("isArray", func(_ Object, args []Object) (Object, error) {
		_, ok := Arg(args, 0).(*Array)
		return Boolean(ok), nil
	}))
	array.Statics.SetRaw("from", NewFunction("from", func(_ Object, args []Object) (Object, error) {
		switch v := Arg(args, 0).(type) {
		case *Array:
			return NewArray(append([]Object(nil), v.Elements...)...), nil
		case *Set:
			return NewArray(v.Values()...), nil
		case *Map:
			out := []Object{}
			for _, e := range v.Entries() {
				out = append(out, NewArray(e.Key, e.Value))
			}
			return NewArray(out...), nil
		case String:
			out := []Object{}
			for _, r := range string(v) {
				out = append(out, String(r))
			}
			return NewArray(out...), nil
		}
		return NewArray(), nil
	}))
	g.SetRaw("Array", array)

	obj := NewFunction("Object", func(_ Object, args []Object) (Object, error) {
		if v := Arg(args, 0); IsObject(v) {
			return v, nil
		}
		return NewRecord(), nil
	})
	obj.IsInstance = IsObject
	obj.Statics = NewRecord()
	obj.Statics.SetRaw("keys", NewFunction("keys", func(_ Object, args []Object) (Object, error) {
		k, ok := Arg(args, 0).(Keyed)
		if !ok {
			return NewArray(), nil
		}
		out := []Object{}
		for _, key := range k.Keys() {
			out = append(out, String(key))
		}
		return NewArray(out...), nil
	}))
	obj.Statics.SetRaw("values", NewFunction("values", func(_ Object, args []Object) (Object, error) {
		k, ok := Arg(args, 0).(Keyed)
		if !ok {
			return NewArray(), nil
		}
		out := []Object{}
		for _, key := range k.Keys() {
			v, _ := k.Get(key)
			out = append(out, v)
		}
		return NewArray(out...), nil
	}))
	obj.Statics.SetRaw("entries", NewFunction("entries", func(_ Object, args []Object) (Object, error) {
		k, ok := Arg(args, 0).(Keyed)
		if !ok {
			return NewArray(), nil
		}
		out := []Object{}
		for _, key := range k.Keys() {
			v, _ := k.Get(key)
			out = append(out, NewArray(String(key), v))
		}
		return NewArray(out...), nil
	}))
	obj.Statics.SetRaw("assign", NewFunction("assign", func(_ Object, args []Object) (Object, error) {
		target, ok := Arg(args, 0).(Keyed)
		if !ok {
			return nil, fmt.Errorf("Object.assign: target is %s", TypeOf(Arg(args, 0)))
		}
		for _, src := range args[1:] {
			k, ok := src.(Keyed)
			if !ok {
				continue
			}
			for _, key := range k.Keys() {
				v, _ := k.Get(key)
				if err := target.Set(key, v); err != nil {
					return nil, err
				}
			}
		}
		return target, nil
	}))
	g.SetRaw("Object", obj)

	date := NewFunction("Date", func(_ Object, args []Object) (Object, error) {
		if len(args) == 0 {
			return &Date{Time: time.Now()}, nil
		}
		return &Date{Time: time.UnixMilli(int64(ToNumber(args[0])))}, nil
	})
	date.IsInstance = func(o Object) bool { _, ok := o.(*Date); return ok }
	date.Statics = NewRecord()
	date.Statics.SetRaw("now", NewFunction("now", func(Object, []Object) (Object, error) {
		return Number(time.Now().UnixMilli()), nil
	}))
	g.SetRaw("Date", date)

	set := NewFunction("Set", func(_ Object, args []Object) (Object, error) {
		if a, ok := Arg(args, 0).(*Array); ok {
			return NewSet(a.Elements...), nil
		}
		return NewSet(), nil
	})
	set.IsInstance = func(o Object) bool { _, ok := o.(*Set); return ok }
	g.SetRaw("Set", set)

	m := NewFunction("Map", func(Object, []Object) (Object, error) { return NewMap(), nil })
	m.IsInstance = func(o Object) bool { _, ok := o.(*Map); return ok }
	g.SetRaw("Map", m)
	return g
}

func mathObject() *Record {
	r := NewRecord()
	r.SetRaw("PI", Number(math.Pi))
	r.SetRaw("E", Number(math.E))
	unary := func(name string, fn func(float64) float64) {
		r.SetRaw(name, NewFunction(name, func(_ Object, args []Object) (Object, error) {
			return Number(fn(ToNumber(Arg(args, 0)))), nil
		}))
	}
	unary("abs", math.Abs)
	unary("ceil", math.Ceil)
	unary("floor", math.Floor)
	unary("trunc", math.Trunc)
	unary("sqrt", math.Sqrt)
	unary("round", func(f float64) float64 { return math.Floor(f + 0.5) })
	unary("sign", func(f float64) float64 {
		switch {
		case f > 0:
			return 1
		case f < 0:
			return -1
		}
		return f
	})
	r.SetRaw("pow", NewFunction("pow", func(_ Object, args []Object) (Object, error) {
		return Number(math.Pow(ToNumber(Arg(args, 0)), ToNumber(Arg(args, 1)))), nil
	}))
	r.SetRaw("random", NewFunction("random", func(Object, []Object) (Object, error) {
		return Number(rand.Float64()), nil
	}))
	extreme := func(name string, init float64, pick func(a, b float64) float64) {
		r.SetRaw(name, NewFunction(name, func(_ Object, args []Object) (Object, error) {
			acc := init
			for _, a := range args {
				f := ToNumber(a)
				if math.IsNaN(f) {
					return Number(math.NaN()), nil
				}
				acc = pick(acc, f)
			}
			return Number(acc), nil
		}))
	}
	extreme("max", math.Inf(-1), math.Max)
	extreme("min", math.Inf(1), math.Min)
	return r
}

func jsonObject() *Record {
	r := NewRecord()
	r.SetRaw("stringify", NewFunction("stringify", func(_ Object, args []Object) (Object, error) {
		v := Arg(args, 0)
		if _, ok := v.(Undefined); ok {
			return UNDEFINED, nil
		}
		b, err := json.Marshal(ToGo(v))
		if err != nil {
			return nil, fmt.Errorf("JSON.stringify: %w", err)
		}
		return String(b), nil
	}))
	r.SetRaw("parse", NewFunction("parse", func(_ Object, args []Object) (Object, error) {
		return ParseJSON(ToString(Arg(args, 0)))
	}))
	return r
}

// ParseJSON decodes text keeping the key order of objects.
func ParseJSON(text string) (Object, error) {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") {
		m := orderedmap.New()
		if err := json.Unmarshal([]byte(trimmed), m); err != nil {
			return nil, fmt.Errorf("JSON.parse: %w", err)
		}
		return FromGo(m)
	}
	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		return nil, fmt.Errorf("JSON.parse: %w", err)
	}
	return FromGo(v)
}

func parseInt(s string, radix int) float64 {
	s = strings.TrimSpace(s)
	sign := 1.0
	if strings.HasPrefix(s, "-") {
		sign, s = -1, s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	if radix == 0 {
		radix = 10
		if strings.HasPrefix(strings.ToLower(s), "0x") {
			radix, s = 16, s[2:]
		}
	}
	if radix < 2 || radix > 36 {
		return math.NaN()
	}
	end := 0
	for end < len(s) {
		d, err := strconv.ParseInt(s[end:end+1], radix, 64)
		if err != nil || d >= int64(radix) {
			break
		}
		end++
	}
	if end == 0 {
		return math.NaN()
	}
	n, err := strconv.ParseInt(s[:end], radix, 64)
	if err != nil {
		f, _ := strconv.ParseFloat(s[:end], 64)
		return sign * f
	}
	return sign * float64(n)
}

func parseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	for end := len(s); end > 0; end-- {
		prefix := s[:end]
		if strings.Trim(strings.ToLower(prefix), "0123456789.e+-") != "" {
			continue
		}
		if f, err := strconv.ParseFloat(prefix, 64); err == nil {
			return f
		}
	}
	if strings.HasPrefix(s, "Infinity") {
		return math.Inf(1)
	}
	if strings.HasPrefix(s, "-Infinity") {
		return math.Inf(-1)
	}
	return math.NaN()
}
