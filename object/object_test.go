package object

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestObjectTypes(t *testing.T) {
	tests := []struct {
		obj             Object
		expectedType    ObjectType
		expectedInspect string
	}{
		{obj: UNDEFINED, expectedType: UNDEFINED_OBJ, expectedInspect: "undefined"},
		{obj: NULL, expectedType: NULL_OBJ, expectedInspect: "null"},
		{obj: TRUE, expectedType: BOOLEAN_OBJ, expectedInspect: "true"},
		{obj: Number(1.5), expectedType: NUMBER_OBJ, expectedInspect: "1.5"},
		{obj: Number(1e21), expectedType: NUMBER_OBJ, expectedInspect: "1e+21"},
		{obj: Number(1e-7), expectedType: NUMBER_OBJ, expectedInspect: "1e-7"},
		{obj: String("hi"), expectedType: STRING_OBJ, expectedInspect: "hi"},
		{obj: NewBigInt(42), expectedType: BIGINT_OBJ, expectedInspect: "42n"},
		{obj: NewArray(Number(1), String("a")), expectedType: ARRAY_OBJ, expectedInspect: `[1, "a"]`},
		{obj: RecordOf(map[string]Object{"b": Number(2), "a": String("x")}), expectedType: RECORD_OBJ, expectedInspect: `{a: "x", b: 2}`},
		{obj: NewSet(Number(1), Number(1), Number(2)), expectedType: SET_OBJ, expectedInspect: "Set {1, 2}"},
	}

	for _, tt := range tests {
		if tt.obj.Type() != tt.expectedType {
			t.Errorf("wrong type: expected=%q, got=%q", tt.expectedType, tt.obj.Type())
		}
		if tt.obj.Inspect() != tt.expectedInspect {
			t.Errorf("wrong inspect: expected=%q, got=%q", tt.expectedInspect, tt.obj.Inspect())
		}
	}
}

func TestToNumber(t *testing.T) {
	tests := []struct {
		in   Object
		want float64
	}{
		{NULL, 0},
		{TRUE, 1},
		{String(""), 0},
		{String("  12  "), 12},
		{String("0x1f"), 31},
		{String("1e3"), 1000},
		{String("-Infinity"), math.Inf(-1)},
		{NewBigInt(7), 7},
		{NewArray(Number(5)), 5},
		{NewArray(), 0},
	}
	for _, tt := range tests {
		if got := ToNumber(tt.in); got != tt.want {
			t.Errorf("ToNumber(%s) = %v, want %v", tt.in.Inspect(), got, tt.want)
		}
	}
	for _, in := range []Object{UNDEFINED, String("abc"), String("inf"), String("1_000"), NewRecord()} {
		if got := ToNumber(in); !math.IsNaN(got) {
			t.Errorf("ToNumber(%s) = %v, want NaN", in.Inspect(), got)
		}
	}
}

func TestToString(t *testing.T) {
	tests := []struct {
		in   Object
		want string
	}{
		{UNDEFINED, "undefined"},
		{NULL, "null"},
		{Number(-0.5), "-0.5"},
		{Number(math.NaN()), "NaN"},
		{NewArray(Number(1), NULL, String("x")), "1,,x"},
		{NewRecord(), "[object Object]"},
		{NewBigInt(-3), "-3"},
	}
	for _, tt := range tests {
		if got := ToString(tt.in); got != tt.want {
			t.Errorf("ToString(%s) = %q, want %q", tt.in.Inspect(), got, tt.want)
		}
	}
}

func TestEquality(t *testing.T) {
	rec := NewRecord()
	nan := Number(math.NaN())
	tests := []struct {
		name         string
		a, b         Object
		strict, same bool
		loose        bool
	}{
		{"numbers", Number(1), Number(1), true, true, true},
		{"nan", nan, nan, false, true, false},
		{"zeros", Number(0), Number(math.Copysign(0, -1)), true, false, true},
		{"null undefined", NULL, UNDEFINED, false, false, true},
		{"string number", String("1"), Number(1), false, false, true},
		{"bool number", TRUE, Number(1), false, false, true},
		{"bigint", NewBigInt(3), NewBigInt(3), true, true, true},
		{"bigint number", NewBigInt(3), Number(3), false, false, true},
		{"same record", rec, rec, true, true, true},
		{"other record", rec, NewRecord(), false, false, false},
		{"array string", NewArray(Number(1), Number(2)), String("1,2"), false, false, true},
		{"null zero", NULL, Number(0), false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := []bool{StrictEquals(tt.a, tt.b), SameValue(tt.a, tt.b), LooseEquals(tt.a, tt.b)}
			want := []bool{tt.strict, tt.same, tt.loose}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("[===, SameValue, ==] mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTruthyAndTypeOf(t *testing.T) {
	tests := []struct {
		in     Object
		truthy bool
		typeOf string
	}{
		{UNDEFINED, false, "undefined"},
		{NULL, false, "object"},
		{Number(0), false, "number"},
		{Number(math.NaN()), false, "number"},
		{String(""), false, "string"},
		{String("0"), true, "string"},
		{NewBigInt(0), false, "bigint"},
		{NewArray(), true, "object"},
		{NewFunction("f", nil), true, "function"},
	}
	for _, tt := range tests {
		if got := Truthy(tt.in); got != tt.truthy {
			t.Errorf("Truthy(%s) = %v, want %v", tt.in.Inspect(), got, tt.truthy)
		}
		if got := TypeOf(tt.in); got != tt.typeOf {
			t.Errorf("TypeOf(%s) = %q, want %q", tt.in.Inspect(), got, tt.typeOf)
		}
	}
}

func TestArithmetic(t *testing.T) {
	t.Run("add", func(t *testing.T) {
		tests := []struct {
			a, b Object
			want string
		}{
			{Number(1), Number(2), "3"},
			{String("a"), Number(1), "a1"},
			{NewArray(Number(1)), Number(1), "11"},
			{TRUE, NULL, "1"},
			{NewBigInt(2), NewBigInt(3), "5n"},
		}
		for _, tt := range tests {
			got, err := Add(tt.a, tt.b)
			if err != nil {
				t.Fatalf("Add(%s, %s): %v", tt.a.Inspect(), tt.b.Inspect(), err)
			}
			if got.Inspect() != tt.want {
				t.Errorf("Add(%s, %s) = %s, want %s", tt.a.Inspect(), tt.b.Inspect(), got.Inspect(), tt.want)
			}
		}
	})
	t.Run("mixed bigint", func(t *testing.T) {
		if _, err := Add(NewBigInt(1), Number(1)); !errors.Is(err, ErrMixedBigInt) {
			t.Errorf("want ErrMixedBigInt, got %v", err)
		}
		if _, err := Arithmetic("*", Number(1), NewBigInt(1)); !errors.Is(err, ErrMixedBigInt) {
			t.Errorf("want ErrMixedBigInt, got %v", err)
		}
	})
	t.Run("operators", func(t *testing.T) {
		tests := []struct {
			op   string
			want float64
		}{{"-", 4}, {"*", 12}, {"/", 3}, {"%", 0}, {"**", 36}}
		for _, tt := range tests {
			got, err := Arithmetic(tt.op, Number(6), Number(2))
			if err != nil {
				t.Fatal(err)
			}
			if got != Number(tt.want) {
				t.Errorf("6 %s 2 = %s, want %v", tt.op, got.Inspect(), tt.want)
			}
		}
	})
	t.Run("compare", func(t *testing.T) {
		tests := []struct {
			op   string
			a, b Object
			want bool
		}{
			{"<", String("a"), String("b"), true},
			{"<", String("10"), String("9"), true},
			{"<", Number(10), String("9"), false},
			{">=", Number(2), Number(2), true},
			{"<", Number(math.NaN()), Number(1), false},
			{"<=", UNDEFINED, Number(0), false},
		}
		for _, tt := range tests {
			got, err := Compare(tt.op, tt.a, tt.b)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("%s %s %s = %v, want %v", tt.a.Inspect(), tt.op, tt.b.Inspect(), got, tt.want)
			}
		}
	})
}

func TestRecord(t *testing.T) {
	proto := RecordOf(map[string]Object{"inherited": Number(1)})
	r := NewRecord()
	r.Proto = proto
	r.SetRaw("z", Number(1))
	r.SetRaw("a", Number(2))

	if diff := cmp.Diff([]string{"z", "a"}, r.Keys()); diff != "" {
		t.Errorf("insertion order mismatch (-want +got):\n%s", diff)
	}
	if !r.Has("inherited") || r.HasOwn("inherited") {
		t.Errorf("inherited property should be visible through Has only")
	}
	if v, ok := r.Get("inherited"); !ok || v != Number(1) {
		t.Errorf("Get(inherited) = %v, %v", v, ok)
	}
	if v, ok := r.Get("missing"); ok || v != UNDEFINED {
		t.Errorf("Get(missing) = %v, %v", v, ok)
	}

	r.Freeze()
	if err := r.Set("a", Number(3)); !errors.Is(err, ErrFrozen) {
		t.Errorf("want ErrFrozen, got %v", err)
	}
}

type recordingInterceptor struct{ got []Object }

func (i *recordingInterceptor) SetValue(v Object) error {
	i.got = append(i.got, v)
	return nil
}

func TestRecordInterceptor(t *testing.T) {
	r := NewRecord()
	i := &recordingInterceptor{}
	r.SetInterceptor("x", i)
	if err := r.Set("x", Number(1)); err != nil {
		t.Fatal(err)
	}
	if r.HasOwn("x") {
		t.Errorf("intercepted write must not reach storage")
	}
	r.SetInterceptor("x", nil)
	if err := r.Set("x", Number(2)); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]Object{Number(1)}, i.got); diff != "" {
		t.Errorf("interceptor calls mismatch (-want +got):\n%s", diff)
	}
	if v, _ := r.GetOwn("x"); v != Number(2) {
		t.Errorf("x = %s, want 2", v.Inspect())
	}
}

func TestStringProperties(t *testing.T) {
	s := String("héllo")
	if v, _ := s.Get("length"); v != Number(5) {
		t.Errorf("length = %s, want 5", v.Inspect())
	}
	if v, _ := s.Get("1"); v != String("é") {
		t.Errorf("[1] = %s", v.Inspect())
	}
	upper, _ := s.Get("toUpperCase")
	got, err := upper.(*Function).Call(UNDEFINED, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != String("HÉLLO") {
		t.Errorf("toUpperCase() = %s", got.Inspect())
	}
}

func TestFunctionBind(t *testing.T) {
	self := NewFunction("self", func(this Object, _ []Object) (Object, error) { return this, nil })
	rec := NewRecord()
	bound := self.Bind(rec)
	got, err := bound.Call(NULL, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != Object(rec) {
		t.Errorf("bound receiver ignored, got %s", got.Inspect())
	}
	got, _ = self.Call(nil, nil)
	if got != Object(UNDEFINED) {
		t.Errorf("nil receiver should become undefined, got %s", got.Inspect())
	}
}

func TestJSON(t *testing.T) {
	v, err := ParseJSON(`{"z": 1, "a": [true, null, {"k": "v"}]}`)
	if err != nil {
		t.Fatal(err)
	}
	rec, ok := v.(*Record)
	if !ok {
		t.Fatalf("want *Record, got %T", v)
	}
	if diff := cmp.Diff([]string{"z", "a"}, rec.Keys()); diff != "" {
		t.Errorf("key order mismatch (-want +got):\n%s", diff)
	}
	if got, want := rec.Inspect(), `{z: 1, a: [true, null, {k: "v"}]}`; got != want {
		t.Errorf("Inspect() = %s, want %s", got, want)
	}

	stringify, _ := Globals().Get("JSON")
	fn, _ := stringify.(*Record).Get("stringify")
	out, err := fn.(*Function).Call(UNDEFINED, []Object{rec})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := out, String(`{"z":1,"a":[true,null,{"k":"v"}]}`); got != Object(want) {
		t.Errorf("stringify = %s, want %s", got.Inspect(), want)
	}
}

func TestGlobals(t *testing.T) {
	g := Globals()
	call := func(name string, args ...Object) Object {
		t.Helper()
		v, ok := g.Get(name)
		if !ok {
			t.Fatalf("global %s missing", name)
		}
		out, err := v.(*Function).Call(UNDEFINED, args)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		return out
	}
	tests := []struct {
		got, want Object
	}{
		{call("parseInt", String("42px")), Number(42)},
		{call("parseInt", String("ff"), Number(16)), Number(255)},
		{call("parseFloat", String("3.5em")), Number(3.5)},
		{call("isNaN", String("x")), TRUE},
		{call("isFinite", Number(1)), TRUE},
		{call("encodeURIComponent", String("a b&c")), String("a%20b%26c")},
		{call("decodeURIComponent", String("a%20b")), String("a b")},
	}
	for i, tt := range tests {
		if !SameValue(tt.got, tt.want) {
			t.Errorf("#%d: got %s, want %s", i, tt.got.Inspect(), tt.want.Inspect())
		}
	}
}

func TestFromGo(t *testing.T) {
	v, err := FromGo(map[string]any{"b": []int{1, 2}, "a": nil})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := v.Inspect(), "{a: null, b: [1, 2]}"; got != want {
		t.Errorf("FromGo = %s, want %s", got, want)
	}
	if _, err := FromGo(struct{}{}); err == nil {
		t.Errorf("want error for unsupported value")
	}
}
