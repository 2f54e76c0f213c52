package object

import (
	"fmt"
	"math"
	"strings"
)

// ErrNotCallable is returned when a built-in expects a callback and gets
// something else.
var ErrNotCallable = fmt.Errorf("value is not callable")

var (
	arrayMethods  map[string]*Function
	stringMethods map[string]*Function
	setMethods    map[string]*Function
	mapMethods    map[string]*Function
)

// Arg returns args[i] or undefined.
func Arg(args []Object, i int) Object {
	if i < len(args) && args[i] != nil {
		return args[i]
	}
	return UNDEFINED
}

func callbackArg(name string, args []Object, i int) (*Function, error) {
	fn, ok := Arg(args, i).(*Function)
	if !ok {
		return nil, fmt.Errorf("%s: %w: %s", name, ErrNotCallable, Arg(args, i).Inspect())
	}
	return fn, nil
}

func toInteger(o Object, def int) int {
	if _, ok := o.(Undefined); ok || o == nil {
		return def
	}
	f := ToNumber(o)
	switch {
	case math.IsNaN(f):
		return 0
	case math.IsInf(f, 1):
		return math.MaxInt32
	case math.IsInf(f, -1):
		return math.MinInt32
	}
	return int(math.Trunc(f))
}

// relativeIndex resolves a possibly negative index against length n.
func relativeIndex(i, n int) int {
	if i < 0 {
		return max(n+i, 0)
	}
	return min(i, n)
}

func sameValueZero(a, b Object) bool { return keyOf(a) == keyOf(b) }

func method(name string, fn NativeFunc) *Function { return &Function{Name: name, Fn: fn} }

func arrayMethod(name string, fn func(a *Array, args []Object) (Object, error)) *Function {
	return method(name, func(this Object, args []Object) (Object, error) {
		a, ok := this.(*Array)
		if !ok {
			return nil, fmt.Errorf("Array.prototype.%s called on %s", name, TypeOf(this))
		}
		return fn(a, args)
	})
}

// each calls fn for a snapshot of the elements with (element, index, array).
func each(a *Array, name string, args []Object, visit func(i int, el, ret Object) (bool, error)) error {
	cb, err := callbackArg(name, args, 0)
	if err != nil {
		return err
	}
	elements := append([]Object(nil), a.Elements...)
	for i, el := range elements {
		if el == nil {
			el = UNDEFINED
		}
		ret, err := cb.Call(Arg(args, 1), []Object{el, Number(i), a})
		if err != nil {
			return err
		}
		stop, err := visit(i, el, ret)
		if err != nil || stop {
			return err
		}
	}
	return nil
}

func flatten(dst []Object, elements []Object, depth int) []Object {
	for _, el := range elements {
		if inner, ok := el.(*Array); ok && depth > 0 {
			dst = flatten(dst, inner.Elements, depth-1)
			continue
		}
		dst = append(dst, el)
	}
	return dst
}

func reduce(a *Array, name string, args []Object, reverse bool) (Object, error) {
	cb, err := callbackArg(name, args, 0)
	if err != nil {
		return nil, err
	}
	elements := append([]Object(nil), a.Elements...)
	order := make([]int, len(elements))
	for i := range order {
		order[i] = i
		if reverse {
			order[i] = len(elements) - 1 - i
		}
	}
	var acc Object
	if len(args) > 1 {
		acc = args[1]
	} else {
		if len(order) == 0 {
			return nil, fmt.Errorf("%s of empty array with no initial value", name)
		}
		acc = elements[order[0]]
		order = order[1:]
	}
	for _, i := range order {
		acc, err = cb.Call(UNDEFINED, []Object{acc, elements[i], Number(i), a})
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// ComparatorOf adapts a comparator function value to a CompareFunc. A
// non-function yields nil, the default string ordering.
func ComparatorOf(o Object) CompareFunc {
	fn, ok := o.(*Function)
	if !ok {
		return nil
	}
	return func(a, b Object) (int, error) {
		ret, err := fn.Call(UNDEFINED, []Object{a, b})
		if err != nil {
			return 0, err
		}
		n := ToNumber(ret)
		switch {
		case n < 0:
			return -1, nil
		case n > 0:
			return 1, nil
		}
		return 0, nil
	}
}

func init() {
	arrayMethods = map[string]*Function{
		"at": arrayMethod("at", func(a *Array, args []Object) (Object, error) {
			i := toInteger(Arg(args, 0), 0)
			if i < 0 {
				i += a.Len()
			}
			return a.At(i), nil
		}),
		"map": arrayMethod("map", func(a *Array, args []Object) (Object, error) {
			out := make([]Object, 0, a.Len())
			err := each(a, "map", args, func(_ int, _, ret Object) (bool, error) {
				out = append(out, ret)
				return false, nil
			})
			if err != nil {
				return nil, err
			}
			return NewArray(out...), nil
		}),
		"filter": arrayMethod("filter", func(a *Array, args []Object) (Object, error) {
			out := []Object{}
			err := each(a, "filter", args, func(_ int, el, ret Object) (bool, error) {
				if Truthy(ret) {
					out = append(out, el)
				}
				return false, nil
			})
			if err != nil {
				return nil, err
			}
			return NewArray(out...), nil
		}),
		"forEach": arrayMethod("forEach", func(a *Array, args []Object) (Object, error) {
			return UNDEFINED, each(a, "forEach", args, func(int, Object, Object) (bool, error) { return false, nil })
		}),
		"find": arrayMethod("find", func(a *Array, args []Object) (Object, error) {
			var found Object = UNDEFINED
			err := each(a, "find", args, func(_ int, el, ret Object) (bool, error) {
				if Truthy(ret) {
					found = el
					return true, nil
				}
				return false, nil
			})
			return found, err
		}),
		"findIndex": arrayMethod("findIndex", func(a *Array, args []Object) (Object, error) {
			found := -1
			err := each(a, "findIndex", args, func(i int, _, ret Object) (bool, error) {
				if Truthy(ret) {
					found = i
					return true, nil
				}
				return false, nil
			})
			return Number(found), err
		}),
		"every": arrayMethod("every", func(a *Array, args []Object) (Object, error) {
			result := true
			err := each(a, "every", args, func(_ int, _, ret Object) (bool, error) {
				if !Truthy(ret) {
					result = false
					return true, nil
				}
				return false, nil
			})
			return Boolean(result), err
		}),
		"some": arrayMethod("some", func(a *Array, args []Object) (Object, error) {
			result := false
			err := each(a, "some", args, func(_ int, _, ret Object) (bool, error) {
				if Truthy(ret) {
					result = true
					return true, nil
				}
				return false, nil
			})
			return Boolean(result), err
		}),
		"includes": arrayMethod("includes", func(a *Array, args []Object) (Object, error) {
			from := relativeIndex(toInteger(Arg(args, 1), 0), a.Len())
			for i := from; i < a.Len(); i++ {
				if sameValueZero(a.At(i), Arg(args, 0)) {
					return TRUE, nil
				}
			}
			return FALSE, nil
		}),
		"indexOf": arrayMethod("indexOf", func(a *Array, args []Object) (Object, error) {
			from := relativeIndex(toInteger(Arg(args, 1), 0), a.Len())
			for i := from; i < a.Len(); i++ {
				if StrictEquals(a.At(i), Arg(args, 0)) {
					return Number(i), nil
				}
			}
			return Number(-1), nil
		}),
		"lastIndexOf": arrayMethod("lastIndexOf", func(a *Array, args []Object) (Object, error) {
			for i := a.Len() - 1; i >= 0; i-- {
				if StrictEquals(a.At(i), Arg(args, 0)) {
					return Number(i), nil
				}
			}
			return Number(-1), nil
		}),
		"flat": arrayMethod("flat", func(a *Array, args []Object) (Object, error) {
			return NewArray(flatten(nil, a.Elements, toInteger(Arg(args, 0), 1))...), nil
		}),
		"flatMap": arrayMethod("flatMap", func(a *Array, args []Object) (Object, error) {
			var out []Object
			err := each(a, "flatMap", args, func(_ int, _, ret Object) (bool, error) {
				out = flatten(out, []Object{ret}, 1)
				return false, nil
			})
			if err != nil {
				return nil, err
			}
			return NewArray(out...), nil
		}),
		"join": arrayMethod("join", func(a *Array, args []Object) (Object, error) {
			sep := ","
			if s := Arg(args, 0); !IsNullish(s) {
				sep = ToString(s)
			}
			parts := make([]string, a.Len())
			for i, el := range a.Elements {
				if !IsNullish(el) {
					parts[i] = ToString(el)
				}
			}
			return String(strings.Join(parts, sep)), nil
		}),
		"reduce": arrayMethod("reduce", func(a *Array, args []Object) (Object, error) {
			return reduce(a, "reduce", args, false)
		}),
		"reduceRight": arrayMethod("reduceRight", func(a *Array, args []Object) (Object, error) {
			return reduce(a, "reduceRight", args, true)
		}),
		"slice": arrayMethod("slice", func(a *Array, args []Object) (Object, error) {
			n := a.Len()
			start := relativeIndex(toInteger(Arg(args, 0), 0), n)
			end := relativeIndex(toInteger(Arg(args, 1), n), n)
			if end < start {
				end = start
			}
			return NewArray(append([]Object(nil), a.Elements[start:end]...)...), nil
		}),
		"concat": arrayMethod("concat", func(a *Array, args []Object) (Object, error) {
			out := append([]Object(nil), a.Elements...)
			out = flatten(out, args, 1)
			return NewArray(out...), nil
		}),
		"push": arrayMethod("push", func(a *Array, args []Object) (Object, error) {
			n, err := a.Push(args...)
			return Number(n), err
		}),
		"unshift": arrayMethod("unshift", func(a *Array, args []Object) (Object, error) {
			n, err := a.Unshift(args...)
			return Number(n), err
		}),
		"pop": arrayMethod("pop", func(a *Array, _ []Object) (Object, error) {
			return a.Pop()
		}),
		"shift": arrayMethod("shift", func(a *Array, _ []Object) (Object, error) {
			return a.Shift()
		}),
		"splice": arrayMethod("splice", func(a *Array, args []Object) (Object, error) {
			if len(args) == 0 {
				return NewArray(), nil
			}
			start := toInteger(args[0], 0)
			deleteCount := a.Len()
			if len(args) > 1 {
				deleteCount = toInteger(args[1], 0)
			}
			var items []Object
			if len(args) > 2 {
				items = args[2:]
			}
			removed, err := a.Splice(start, deleteCount, items...)
			if err != nil {
				return nil, err
			}
			return NewArray(removed...), nil
		}),
		"reverse": arrayMethod("reverse", func(a *Array, _ []Object) (Object, error) {
			return a, a.Reverse()
		}),
		"sort": arrayMethod("sort", func(a *Array, args []Object) (Object, error) {
			return a, a.Sort(ComparatorOf(Arg(args, 0)))
		}),
	}

	stringMethod := func(name string, fn func(s string, args []Object) (Object, error)) *Function {
		return method(name, func(this Object, args []Object) (Object, error) {
			return fn(ToString(this), args)
		})
	}
	stringMethods = map[string]*Function{
		"toUpperCase": stringMethod("toUpperCase", func(s string, _ []Object) (Object, error) {
			return String(strings.ToUpper(s)), nil
		}),
		"toLowerCase": stringMethod("toLowerCase", func(s string, _ []Object) (Object, error) {
			return String(strings.ToLower(s)), nil
		}),
		"trim": stringMethod("trim", func(s string, _ []Object) (Object, error) {
			return String(strings.TrimSpace(s)), nil
		}),
		"includes": stringMethod("includes", func(s string, args []Object) (Object, error) {
			return Boolean(strings.Contains(s, ToString(Arg(args, 0)))), nil
		}),
		"startsWith": stringMethod("startsWith", func(s string, args []Object) (Object, error) {
			return Boolean(strings.HasPrefix(s, ToString(Arg(args, 0)))), nil
		}),
		"endsWith": stringMethod("endsWith", func(s string, args []Object) (Object, error) {
			return Boolean(strings.HasSuffix(s, ToString(Arg(args, 0)))), nil
		}),
		"indexOf": stringMethod("indexOf", func(s string, args []Object) (Object, error) {
			i := strings.Index(s, ToString(Arg(args, 0)))
			if i < 0 {
				return Number(-1), nil
			}
			return Number(len([]rune(s[:i]))), nil
		}),
		"slice": stringMethod("slice", func(s string, args []Object) (Object, error) {
			runes := []rune(s)
			n := len(runes)
			start := relativeIndex(toInteger(Arg(args, 0), 0), n)
			end := relativeIndex(toInteger(Arg(args, 1), n), n)
			if end < start {
				end = start
			}
			return String(runes[start:end]), nil
		}),
		"split": stringMethod("split", func(s string, args []Object) (Object, error) {
			if IsNullish(Arg(args, 0)) {
				return NewArray(String(s)), nil
			}
			parts := strings.Split(s, ToString(args[0]))
			out := make([]Object, len(parts))
			for i, p := range parts {
				out[i] = String(p)
			}
			return NewArray(out...), nil
		}),
		"replace": stringMethod("replace", func(s string, args []Object) (Object, error) {
			return String(strings.Replace(s, ToString(Arg(args, 0)), ToString(Arg(args, 1)), 1)), nil
		}),
		"charAt": stringMethod("charAt", func(s string, args []Object) (Object, error) {
			runes := []rune(s)
			i := toInteger(Arg(args, 0), 0)
			if i < 0 || i >= len(runes) {
				return String(""), nil
			}
			return String(runes[i]), nil
		}),
		"padStart": stringMethod("padStart", func(s string, args []Object) (Object, error) {
			width := toInteger(Arg(args, 0), 0)
			pad := " "
			if p := Arg(args, 1); !IsNullish(p) {
				pad = ToString(p)
			}
			missing := width - len([]rune(s))
			if missing <= 0 || pad == "" {
				return String(s), nil
			}
			fill := []rune(strings.Repeat(pad, missing/len([]rune(pad))+1))
			return String(string(fill[:missing]) + s), nil
		}),
		"toString": stringMethod("toString", func(s string, _ []Object) (Object, error) {
			return String(s), nil
		}),
	}

	setMethod := func(name string, fn func(s *Set, args []Object) (Object, error)) *Function {
		return method(name, func(this Object, args []Object) (Object, error) {
			s, ok := this.(*Set)
			if !ok {
				return nil, fmt.Errorf("Set.prototype.%s called on %s", name, TypeOf(this))
			}
			return fn(s, args)
		})
	}
	setMethods = map[string]*Function{
		"has": setMethod("has", func(s *Set, args []Object) (Object, error) {
			return Boolean(s.Contains(Arg(args, 0))), nil
		}),
		"add": setMethod("add", func(s *Set, args []Object) (Object, error) {
			return s, s.Add(Arg(args, 0))
		}),
		"delete": setMethod("delete", func(s *Set, args []Object) (Object, error) {
			ok, err := s.Delete(Arg(args, 0))
			return Boolean(ok), err
		}),
		"clear": setMethod("clear", func(s *Set, _ []Object) (Object, error) {
			return UNDEFINED, s.Clear()
		}),
		"values": setMethod("values", func(s *Set, _ []Object) (Object, error) {
			return NewArray(s.Values()...), nil
		}),
		"forEach": setMethod("forEach", func(s *Set, args []Object) (Object, error) {
			cb, err := callbackArg("forEach", args, 0)
			if err != nil {
				return nil, err
			}
			for _, v := range s.Values() {
				if _, err := cb.Call(UNDEFINED, []Object{v, v, s}); err != nil {
					return nil, err
				}
			}
			return UNDEFINED, nil
		}),
	}

	mapMethod := func(name string, fn func(m *Map, args []Object) (Object, error)) *Function {
		return method(name, func(this Object, args []Object) (Object, error) {
			m, ok := this.(*Map)
			if !ok {
				return nil, fmt.Errorf("Map.prototype.%s called on %s", name, TypeOf(this))
			}
			return fn(m, args)
		})
	}
	mapMethods = map[string]*Function{
		"get": mapMethod("get", func(m *Map, args []Object) (Object, error) {
			v, _ := m.Lookup(Arg(args, 0))
			return v, nil
		}),
		"has": mapMethod("has", func(m *Map, args []Object) (Object, error) {
			return Boolean(m.HasKey(Arg(args, 0))), nil
		}),
		"set": mapMethod("set", func(m *Map, args []Object) (Object, error) {
			return m, m.Put(Arg(args, 0), Arg(args, 1))
		}),
		"delete": mapMethod("delete", func(m *Map, args []Object) (Object, error) {
			ok, err := m.Remove(Arg(args, 0))
			return Boolean(ok), err
		}),
		"clear": mapMethod("clear", func(m *Map, _ []Object) (Object, error) {
			return UNDEFINED, m.Clear()
		}),
		"keys": mapMethod("keys", func(m *Map, _ []Object) (Object, error) {
			out := []Object{}
			for _, e := range m.Entries() {
				out = append(out, e.Key)
			}
			return NewArray(out...), nil
		}),
		"values": mapMethod("values", func(m *Map, _ []Object) (Object, error) {
			out := []Object{}
			for _, e := range m.Entries() {
				out = append(out, e.Value)
			}
			return NewArray(out...), nil
		}),
		"entries": mapMethod("entries", func(m *Map, _ []Object) (Object, error) {
			out := []Object{}
			for _, e := range m.Entries() {
				out = append(out, NewArray(e.Key, e.Value))
			}
			return NewArray(out...), nil
		}),
		"forEach": mapMethod("forEach", func(m *Map, args []Object) (Object, error) {
			cb, err := callbackArg("forEach", args, 0)
			if err != nil {
				return nil, err
			}
			for _, e := range m.Entries() {
				if _, err := cb.Call(UNDEFINED, []Object{e.Value, e.Key, m}); err != nil {
					return nil, err
				}
			}
			return UNDEFINED, nil
		}),
	}
}
