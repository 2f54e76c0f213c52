package object

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// ErrMixedBigInt is returned when arithmetic combines a BigInt with another type.
var ErrMixedBigInt = fmt.Errorf("cannot mix BigInt and other types, use explicit conversions")

// Truthy reports the boolean interpretation of o.
func Truthy(o Object) bool {
	switch v := o.(type) {
	case nil, Undefined, Null:
		return false
	case Boolean:
		return bool(v)
	case Number:
		f := float64(v)
		return f != 0 && !math.IsNaN(f)
	case String:
		return v != ""
	case *BigInt:
		return v.Value.Sign() != 0
	}
	return true
}

// IsObject reports whether o is a reference value (what `typeof` calls
// "object" or "function", excluding null).
func IsObject(o Object) bool {
	switch o.(type) {
	case *Record, *Array, *Set, *Map, *Function, *Date:
		return true
	}
	return false
}

// TypeOf implements the typeof operator.
func TypeOf(o Object) string {
	switch o.(type) {
	case nil, Undefined:
		return "undefined"
	case Boolean:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case *BigInt:
		return "bigint"
	case *Function:
		return "function"
	}
	return "object"
}

// ToNumber converts o to a float64 the way unary plus does.
func ToNumber(o Object) float64 {
	switch v := o.(type) {
	case nil, Undefined:
		return math.NaN()
	case Null:
		return 0
	case Boolean:
		if v {
			return 1
		}
		return 0
	case Number:
		return float64(v)
	case String:
		return stringToNumber(string(v))
	case *BigInt:
		f, _ := new(big.Float).SetInt(v.Value).Float64()
		return f
	case *Date:
		return float64(v.Time.UnixMilli())
	case *Array:
		return stringToNumber(ToString(v))
	}
	return math.NaN()
}

func stringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	lower := strings.ToLower(s)
	for _, p := range []struct {
		prefix string
		base   int
	}{{"0x", 16}, {"0o", 8}, {"0b", 2}} {
		if strings.HasPrefix(lower, p.prefix) {
			n, err := strconv.ParseUint(s[2:], p.base, 64)
			if err != nil {
				return math.NaN()
			}
			return float64(n)
		}
	}
	// strconv accepts "inf", "nan", hex floats and underscores; the
	// language does not.
	if strings.Trim(lower, "0123456789.e+-") != "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// ToString converts o to its string form.
func ToString(o Object) string {
	switch v := o.(type) {
	case nil, Undefined:
		return "undefined"
	case Null:
		return "null"
	case Boolean:
		return v.Inspect()
	case Number:
		return formatNumber(float64(v))
	case String:
		return string(v)
	case *BigInt:
		return v.Value.String()
	case *Date:
		return v.Inspect()
	case *Array:
		parts := make([]string, len(v.Elements))
		for i, el := range v.Elements {
			if !IsNullish(el) {
				parts[i] = ToString(el)
			}
		}
		return strings.Join(parts, ",")
	case *Record:
		return "[object Object]"
	case *Set:
		return "[object Set]"
	case *Map:
		return "[object Map]"
	case *Function:
		return v.Inspect()
	}
	return o.Inspect()
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		// Go pads the exponent to two digits ("1e-07").
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		exp = strings.TrimLeft(exp[1:], "0")
		return mant + "e" + sign + exp
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ToPrimitive reduces reference values to a primitive for operators.
func ToPrimitive(o Object) Object {
	if o == nil {
		return UNDEFINED
	}
	switch v := o.(type) {
	case *Date:
		return String(v.Inspect())
	case *Record, *Array, *Set, *Map, *Function:
		return String(ToString(v))
	}
	return o
}

// StrictEquals implements ===.
func StrictEquals(a, b Object) bool {
	if a == nil {
		a = UNDEFINED
	}
	if b == nil {
		b = UNDEFINED
	}
	if x, ok := a.(*BigInt); ok {
		if y, ok := b.(*BigInt); ok {
			return x.Value.Cmp(y.Value) == 0
		}
		return false
	}
	switch a.(type) {
	case Undefined, Null, Boolean, Number, String:
		return a == b
	}
	if !Comparable(a) || !Comparable(b) {
		return keyOf(a) == keyOf(b)
	}
	return a == b
}

// SameValue is StrictEquals except NaN equals NaN and 0 differs from -0.
func SameValue(a, b Object) bool {
	x, xok := a.(Number)
	y, yok := b.(Number)
	if xok && yok {
		fx, fy := float64(x), float64(y)
		if math.IsNaN(fx) && math.IsNaN(fy) {
			return true
		}
		if fx == 0 && fy == 0 {
			return math.Signbit(fx) == math.Signbit(fy)
		}
		return fx == fy
	}
	return StrictEquals(a, b)
}

// LooseEquals implements ==.
func LooseEquals(a, b Object) bool {
	if a == nil {
		a = UNDEFINED
	}
	if b == nil {
		b = UNDEFINED
	}
	an, bn := IsNullish(a), IsNullish(b)
	if an || bn {
		return an && bn
	}
	if a.Type() == b.Type() {
		return StrictEquals(a, b)
	}
	if IsObject(a) && IsObject(b) {
		return false
	}
	if IsObject(a) {
		return LooseEquals(ToPrimitive(a), b)
	}
	if IsObject(b) {
		return LooseEquals(a, ToPrimitive(b))
	}
	if x, ok := a.(*BigInt); ok {
		return bigIntEqualsNumber(x, ToNumber(b))
	}
	if y, ok := b.(*BigInt); ok {
		return bigIntEqualsNumber(y, ToNumber(a))
	}
	return ToNumber(a) == ToNumber(b)
}

func bigIntEqualsNumber(b *BigInt, f float64) bool {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return false
	}
	bf := new(big.Float).SetInt(b.Value)
	return bf.Cmp(big.NewFloat(f)) == 0
}

// Add implements the native + operator.
func Add(a, b Object) (Object, error) {
	pa, pb := ToPrimitive(a), ToPrimitive(b)
	_, as := pa.(String)
	_, bs := pb.(String)
	if as || bs {
		return String(ToString(pa) + ToString(pb)), nil
	}
	x, xok := pa.(*BigInt)
	y, yok := pb.(*BigInt)
	switch {
	case xok && yok:
		return &BigInt{Value: new(big.Int).Add(x.Value, y.Value)}, nil
	case xok || yok:
		return nil, ErrMixedBigInt
	}
	return Number(ToNumber(pa) + ToNumber(pb)), nil
}

// Arithmetic implements -, *, /, % and **.
func Arithmetic(op string, a, b Object) (Object, error) {
	pa, pb := ToPrimitive(a), ToPrimitive(b)
	x, xok := pa.(*BigInt)
	y, yok := pb.(*BigInt)
	if xok && yok {
		r := new(big.Int)
		switch op {
		case "-":
			r.Sub(x.Value, y.Value)
		case "*":
			r.Mul(x.Value, y.Value)
		case "/", "%":
			if y.Value.Sign() == 0 {
				return nil, fmt.Errorf("division by zero")
			}
			if op == "/" {
				r.Quo(x.Value, y.Value)
			} else {
				r.Rem(x.Value, y.Value)
			}
		case "**":
			r.Exp(x.Value, y.Value, nil)
		default:
			return nil, fmt.Errorf("unknown arithmetic operator %q", op)
		}
		return &BigInt{Value: r}, nil
	}
	if xok || yok {
		return nil, ErrMixedBigInt
	}
	l, r := ToNumber(pa), ToNumber(pb)
	switch op {
	case "-":
		return Number(l - r), nil
	case "*":
		return Number(l * r), nil
	case "/":
		return Number(l / r), nil
	case "%":
		return Number(math.Mod(l, r)), nil
	case "**":
		return Number(math.Pow(l, r)), nil
	}
	return nil, fmt.Errorf("unknown arithmetic operator %q", op)
}

// Compare implements <, >, <= and >=.
func Compare(op string, a, b Object) (bool, error) {
	pa, pb := ToPrimitive(a), ToPrimitive(b)
	if x, ok := pa.(String); ok {
		if y, ok := pb.(String); ok {
			switch op {
			case "<":
				return x < y, nil
			case ">":
				return x > y, nil
			case "<=":
				return x <= y, nil
			case ">=":
				return x >= y, nil
			}
			return false, fmt.Errorf("unknown comparison operator %q", op)
		}
	}
	l, r := ToNumber(pa), ToNumber(pb)
	if math.IsNaN(l) || math.IsNaN(r) {
		return false, nil
	}
	switch op {
	case "<":
		return l < r, nil
	case ">":
		return l > r, nil
	case "<=":
		return l <= r, nil
	case ">=":
		return l >= r, nil
	}
	return false, fmt.Errorf("unknown comparison operator %q", op)
}
