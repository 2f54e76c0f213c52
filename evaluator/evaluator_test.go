package evaluator

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/podhmo/go-observe/ast"
	"github.com/podhmo/go-observe/object"
	"github.com/podhmo/go-observe/scope"
)

// recorder is a Connectable that writes down every dependency it is given.
type recorder struct {
	names map[object.Object]string
	got   []string
}

func newRecorder() *recorder { return &recorder{names: map[object.Object]string{}} }

func (r *recorder) label(o object.Object, name string) { r.names[o] = name }

func (r *recorder) name(o object.Object) string {
	if n, ok := r.names[o]; ok {
		return n
	}
	return o.Inspect()
}

func (r *recorder) Observe(obj object.Object, key string) {
	r.got = append(r.got, r.name(obj)+"."+key)
}

func (r *recorder) ObserveCollection(c object.Object) {
	r.got = append(r.got, "collection:"+r.name(c))
}

// caps implements every capability hook and logs the calls it receives.
type caps struct {
	strict bool
	calls  []string
}

func (c *caps) Strict() bool { return c.strict }

func (c *caps) UseConverter(name string, mode ConverterMode, val object.Object, args []object.Object) (object.Object, error) {
	c.calls = append(c.calls, fmt.Sprintf("%s %s", mode, name))
	switch {
	case name == "upper" && mode == ToView:
		return object.String(strings.ToUpper(object.ToString(val))), nil
	case name == "upper" && mode == FromView:
		return object.String(strings.ToLower(object.ToString(val))), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrConverterNotFound, name)
}

func (c *caps) BindConverter(name string) error {
	c.calls = append(c.calls, "bind converter "+name)
	return nil
}

func (c *caps) UnbindConverter(name string) error {
	c.calls = append(c.calls, "unbind converter "+name)
	return nil
}

func (c *caps) BindBehavior(name string, _ *scope.Scope, args []object.Object) error {
	c.calls = append(c.calls, fmt.Sprintf("bind behavior %s %s", name, object.NewArray(args...).Inspect()))
	return nil
}

func (c *caps) UnbindBehavior(name string, _ *scope.Scope) error {
	c.calls = append(c.calls, "unbind behavior "+name)
	return nil
}

func mustRecord(t *testing.T, v any) *object.Record {
	t.Helper()
	o, err := object.FromGo(v)
	if err != nil {
		t.Fatal(err)
	}
	return o.(*object.Record)
}

func TestMemberAccessScenario(t *testing.T) {
	ev := New()
	bc := mustRecord(t, map[string]any{"a": map[string]any{"b": 1}})
	a, _ := bc.Get("a")
	s := scope.New(bc)
	r := newRecorder()
	r.label(bc, "bc")
	r.label(a, "a")

	node := ast.Bin("+", ast.Member(ast.Scope("a"), "b"), ast.Num(1))
	got, err := ev.Evaluate(node, s, nil, r)
	if err != nil {
		t.Fatal(err)
	}
	if got != object.Number(2) {
		t.Errorf("a.b + 1 = %s, want 2", got.Inspect())
	}
	if diff := cmp.Diff([]string{"bc.a", "a.b"}, r.got); diff != "" {
		t.Errorf("dependencies mismatch (-want +got):\n%s", diff)
	}

	if err := a.(*object.Record).Set("b", object.Number(5)); err != nil {
		t.Fatal(err)
	}
	got, err = ev.Evaluate(node, s, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != object.Number(6) {
		t.Errorf("after a.b = 5: %s, want 6", got.Inspect())
	}
}

func TestConditionalObservesTakenBranch(t *testing.T) {
	ev := New()
	bc := mustRecord(t, map[string]any{"flag": true, "yes": "y", "no": "n"})
	r := newRecorder()
	r.label(bc, "bc")
	node := &ast.Conditional{Condition: ast.Scope("flag"), Yes: ast.Scope("yes"), No: ast.Scope("no")}

	got, err := ev.Evaluate(node, scope.New(bc), nil, r)
	if err != nil {
		t.Fatal(err)
	}
	if got != object.String("y") {
		t.Errorf("got %s", got.Inspect())
	}
	if diff := cmp.Diff([]string{"bc.flag", "bc.yes"}, r.got); diff != "" {
		t.Errorf("dependencies mismatch (-want +got):\n%s", diff)
	}
}

func TestStrictAndLooseMode(t *testing.T) {
	bc := mustRecord(t, map[string]any{"obj": map[string]any{"n": 1}, "nul": nil})

	type want struct {
		value string
		err   error
	}
	tests := []struct {
		name          string
		node          ast.Node
		loose, strict want
	}{
		{"missing scope name", ast.Scope("missing"), want{value: ""}, want{value: "undefined"}},
		{"member of missing", ast.Member(ast.Scope("missing"), "x"), want{value: "undefined"}, want{err: ErrNullishAccess}},
		{"optional chain short-circuits", ast.Member(ast.OptionalMember(ast.Scope("missing"), "x"), "y"), want{value: "undefined"}, want{value: "undefined"}},
		{"keyed on null", ast.Keyed(ast.Scope("nul"), ast.Str("k")), want{value: "undefined"}, want{err: ErrNullishAccess}},
		{"optional keyed on null", &ast.AccessKeyed{Object: ast.Scope("nul"), Key: ast.Str("k"), Optional: true}, want{value: "undefined"}, want{value: "undefined"}},
		{"call of missing method", ast.Call(ast.Scope("obj"), "nope"), want{value: "undefined"}, want{err: ErrNotAFunction}},
		{"call of a number", ast.Call(ast.Scope("obj"), "n"), want{err: ErrNotAFunction}, want{err: ErrNotAFunction}},
		{"optional call", &ast.CallMember{Object: ast.Scope("obj"), Name: "nope", OptionalCall: true}, want{value: "undefined"}, want{value: "undefined"}},
		{"optional member call on null", &ast.CallMember{Object: ast.Scope("nul"), Name: "f", OptionalMember: true}, want{value: "undefined"}, want{value: "undefined"}},
		{"member call on null", ast.Call(ast.Scope("nul"), "f"), want{value: "undefined"}, want{err: ErrNullishAccess}},
		{"undefined + number", ast.Bin("+", ast.Lit(object.UNDEFINED), ast.Num(1)), want{value: "1"}, want{value: "NaN"}},
		{"null + string", ast.Bin("+", ast.Lit(object.NULL), ast.Str("a")), want{value: "a"}, want{value: "nulla"}},
		{"zero + string", ast.Bin("+", ast.Num(0), ast.Str("a")), want{value: "0a"}, want{value: "0a"}},
		{"missing + number", ast.Bin("+", ast.Scope("missing"), ast.Num(1)), want{value: "1"}, want{value: "NaN"}},
	}
	for _, tt := range tests {
		for _, mode := range []struct {
			name string
			ev   *Evaluator
			want want
		}{
			{"loose", New(), tt.loose},
			{"strict", New(WithStrict(true)), tt.strict},
		} {
			t.Run(tt.name+"/"+mode.name, func(t *testing.T) {
				got, err := mode.ev.Evaluate(tt.node, scope.New(bc), nil, nil)
				if mode.want.err != nil {
					if !errors.Is(err, mode.want.err) {
						t.Fatalf("want %v, got %v (value %v)", mode.want.err, err, got)
					}
					return
				}
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got.Inspect() != mode.want.value {
					t.Errorf("got %q, want %q", got.Inspect(), mode.want.value)
				}
			})
		}
	}
}

func TestStrictModeCapabilityOverridesDefault(t *testing.T) {
	ev := New()
	node := ast.Member(ast.Scope("missing"), "x")
	if _, err := ev.Evaluate(node, scope.New(nil), &caps{strict: true}, nil); !errors.Is(err, ErrNullishAccess) {
		t.Errorf("want ErrNullishAccess from a strict binding, got %v", err)
	}
}

func TestAutoObservedCollectionMethods(t *testing.T) {
	ev := New()
	items := object.NewArray(object.Number(1), object.Number(2))
	bc := object.RecordOf(map[string]object.Object{"items": items})
	s := scope.New(bc)

	t.Run("map observes the array", func(t *testing.T) {
		r := newRecorder()
		r.label(bc, "bc")
		r.label(items, "items")
		node := ast.Call(ast.Scope("items"), "map", ast.Arrow(ast.Bin("*", ast.Scope("x"), ast.Num(2)), "x"))
		got, err := ev.Evaluate(node, s, nil, r)
		if err != nil {
			t.Fatal(err)
		}
		if got.Inspect() != "[2, 4]" {
			t.Errorf("got %s", got.Inspect())
		}
		want := []string{"bc.items", "{x: 1}.x", "{x: 2}.x", "collection:items"}
		if diff := cmp.Diff(want, r.got); diff != "" {
			t.Errorf("dependencies mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("push does not", func(t *testing.T) {
		r := newRecorder()
		r.label(bc, "bc")
		if _, err := ev.Evaluate(ast.Call(ast.Scope("items"), "push", ast.Num(3)), s, nil, r); err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]string{"bc.items"}, r.got); diff != "" {
			t.Errorf("dependencies mismatch (-want +got):\n%s", diff)
		}
		if items.Len() != 3 {
			t.Errorf("push did not run, len = %d", items.Len())
		}
	})

	t.Run("set and map readers", func(t *testing.T) {
		set := object.NewSet(object.Number(1))
		m := object.NewMap(object.MapEntry{Key: object.String("k"), Value: object.Number(1)})
		bc := object.RecordOf(map[string]object.Object{"set": set, "map": m})
		r := newRecorder()
		r.label(bc, "bc")
		r.label(set, "set")
		r.label(m, "map")
		node := ast.Bin("&&",
			ast.Call(ast.Scope("set"), "has", ast.Num(1)),
			ast.Call(ast.Scope("map"), "get", ast.Str("k")))
		got, err := ev.Evaluate(node, scope.New(bc), nil, r)
		if err != nil {
			t.Fatal(err)
		}
		if got != object.Number(1) {
			t.Errorf("got %s", got.Inspect())
		}
		want := []string{"bc.set", "collection:set", "bc.map", "collection:map"}
		if diff := cmp.Diff(want, r.got); diff != "" {
			t.Errorf("dependencies mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestOperators(t *testing.T) {
	ev := New()
	bc := mustRecord(t, map[string]any{"obj": map[string]any{"a": 1}, "n": 3, "zero": 0})
	bc.SetRaw("arr", object.NewArray())
	s := scope.New(bc)

	tests := []struct {
		name string
		node ast.Node
		want string
	}{
		{"in", ast.Bin("in", ast.Str("a"), ast.Scope("obj")), "true"},
		{"in missing", ast.Bin("in", ast.Str("b"), ast.Scope("obj")), "false"},
		{"instanceof", ast.Bin("instanceof", ast.Scope("arr"), &ast.AccessGlobal{Name: "Array"}), "true"},
		{"instanceof other", ast.Bin("instanceof", ast.Scope("obj"), &ast.AccessGlobal{Name: "Array"}), "false"},
		{"typeof", &ast.Unary{Operation: "typeof", Expression: ast.Scope("n")}, "number"},
		{"void", &ast.Unary{Operation: "void", Expression: ast.Scope("n")}, "undefined"},
		{"not", &ast.Unary{Operation: "!", Expression: ast.Scope("n")}, "false"},
		{"negate", &ast.Unary{Operation: "-", Expression: ast.Scope("n")}, "-3"},
		{"nullish coalescing keeps zero", ast.Bin("??", ast.Scope("zero"), ast.Num(9)), "0"},
		{"or replaces zero", ast.Bin("||", ast.Scope("zero"), ast.Num(9)), "9"},
		{"and", ast.Bin("&&", ast.Scope("n"), ast.Str("x")), "x"},
		{"loose equality", ast.Bin("==", ast.Scope("n"), ast.Str("3")), "true"},
		{"strict equality", ast.Bin("===", ast.Scope("n"), ast.Str("3")), "false"},
		{"comparison", ast.Bin("<=", ast.Scope("n"), ast.Num(3)), "true"},
		{"exponent", ast.Bin("**", ast.Scope("n"), ast.Num(2)), "9"},
		{"global call", &ast.CallGlobal{Name: "parseInt", Args: []ast.Node{ast.Str("12px")}}, "12"},
		{"global member", ast.Member(&ast.AccessGlobal{Name: "Math"}, "PI"), "3.141592653589793"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ev.Evaluate(tt.node, s, nil, nil)
			if err != nil {
				t.Fatal(err)
			}
			if got.Inspect() != tt.want {
				t.Errorf("got %s, want %s", got.Inspect(), tt.want)
			}
		})
	}

	if _, err := ev.Evaluate(ast.Bin("<<", ast.Num(1), ast.Num(1)), s, nil, nil); !errors.Is(err, ErrUnknownBinaryOperator) {
		t.Errorf("want ErrUnknownBinaryOperator, got %v", err)
	}
	if _, err := ev.Evaluate(&ast.Unary{Operation: "~", Expression: ast.Num(1)}, s, nil, nil); !errors.Is(err, ErrUnknownUnaryOperator) {
		t.Errorf("want ErrUnknownUnaryOperator, got %v", err)
	}
}

func TestAccessThisAndHost(t *testing.T) {
	ev := New()
	root := scope.New(mustRecord(t, map[string]any{"name": "root"}))
	child := scope.FromParent(root, mustRecord(t, map[string]any{"name": "child"}), nil)

	got, err := ev.Evaluate(ast.Member(&ast.AccessThis{Ancestor: 1}, "name"), child, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != object.String("root") {
		t.Errorf("$parent.name = %s", got.Inspect())
	}
	got, _ = ev.Evaluate(&ast.AccessThis{Ancestor: 5}, child, nil, nil)
	if got != object.Object(object.UNDEFINED) {
		t.Errorf("$this past the root = %s", got.Inspect())
	}

	if _, err := ev.Evaluate(ast.Scope("$host"), child, nil, nil); !errors.Is(err, ErrHostNotFound) {
		t.Errorf("want ErrHostNotFound, got %v", err)
	}
	host := object.NewRecord()
	withHost := scope.Create(object.NewRecord(), object.RecordOf(map[string]object.Object{"$host": host}), false)
	got, err = ev.Evaluate(ast.Scope("$host"), withHost, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != object.Object(host) {
		t.Errorf("$host = %s", got.Inspect())
	}
}

func TestCallScopeReceivesContext(t *testing.T) {
	bc := object.NewRecord()
	bc.SetRaw("name", object.String("bob"))
	bc.SetRaw("greet", object.NewFunction("greet", func(this object.Object, args []object.Object) (object.Object, error) {
		name, _ := this.(object.Getter).Get("name")
		return object.String("hi " + object.ToString(name) + object.ToString(object.Arg(args, 0))), nil
	}))
	got, err := New().Evaluate(&ast.CallScope{Name: "greet", Args: []ast.Node{ast.Str("!")}}, scope.New(bc), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != object.String("hi bob!") {
		t.Errorf("got %s", got.Inspect())
	}
}

func TestBoundFunctions(t *testing.T) {
	bc := object.NewRecord()
	self := object.NewFunction("self", func(this object.Object, _ []object.Object) (object.Object, error) { return this, nil })
	bc.SetRaw("self", self)
	node := &ast.CallFunction{Func: ast.Scope("self")}

	got, _ := New().Evaluate(node, scope.New(bc), nil, nil)
	if got != object.Object(object.UNDEFINED) {
		t.Errorf("unbound call receiver = %s", got.Inspect())
	}
	got, _ = New(WithBoundFunctions(true)).Evaluate(node, scope.New(bc), nil, nil)
	if got != object.Object(bc) {
		t.Errorf("bound call receiver = %s", got.Inspect())
	}
}

func TestTemplatesAndFunctions(t *testing.T) {
	ev := New()
	s := scope.New(nil)
	tests := []struct {
		name string
		node ast.Node
		want string
	}{
		{"template stringifies null", &ast.Template{Cooked: []string{"a", "b"}, Expressions: []ast.Node{ast.Lit(object.NULL)}}, "anullb"},
		{"interpolation drops null", &ast.Interpolation{Parts: []string{"a", "b"}, Expressions: []ast.Node{ast.Lit(object.NULL)}}, "ab"},
		{"interpolation", &ast.Interpolation{Parts: []string{"", "-", ""}, Expressions: []ast.Node{ast.Num(1), ast.Str("x")}}, "1-x"},
		{
			"tagged template",
			&ast.TaggedTemplate{
				Cooked:      []string{"x", "y"},
				Func:        ast.Arrow(ast.Bin("+", ast.Member(ast.Scope("strings"), "length"), ast.Scope("v")), "strings", "v"),
				Expressions: []ast.Node{ast.Num(5)},
			},
			"7",
		},
		{
			"arrow rest parameter",
			&ast.CallFunction{
				Func: &ast.ArrowFunction{
					Args: []*ast.BindingIdentifier{{Name: "first"}, {Name: "rest"}},
					Rest: true,
					Body: ast.Member(ast.Scope("rest"), "length"),
				},
				Args: []ast.Node{ast.Num(1), ast.Num(2), ast.Num(3)},
			},
			"2",
		},
		{"array literal", &ast.ArrayLiteral{Elements: []ast.Node{ast.Num(1), ast.Str("a")}}, `[1, "a"]`},
		{"object literal", &ast.ObjectLiteral{Keys: []string{"b", "a"}, Values: []ast.Node{ast.Num(1), ast.Num(2)}}, "{b: 1, a: 2}"},
		{"binding pattern", &ast.ArrayBindingPattern{}, "undefined"},
		{"binding identifier", &ast.BindingIdentifier{Name: "item"}, "item"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ev.Evaluate(tt.node, s, nil, nil)
			if err != nil {
				t.Fatal(err)
			}
			if got.Inspect() != tt.want {
				t.Errorf("got %s, want %s", got.Inspect(), tt.want)
			}
		})
	}
}

type constNode struct {
	value  object.Object
	events []string
}

func (*constNode) Kind() ast.Kind { return ast.KindCustom }

func (n *constNode) Evaluate(_ *scope.Scope, _ Capabilities, _ Connectable) (object.Object, error) {
	return n.value, nil
}

func (n *constNode) Assign(_ *scope.Scope, _ Capabilities, val object.Object) (object.Object, error) {
	n.value = val
	return val, nil
}

func (n *constNode) Bind(*scope.Scope, Capabilities) error {
	n.events = append(n.events, "bind")
	return nil
}

func (n *constNode) Unbind(*scope.Scope, Capabilities) error {
	n.events = append(n.events, "unbind")
	return nil
}

func TestCustomExpression(t *testing.T) {
	ev := New()
	s := scope.New(nil)
	n := &constNode{value: object.Number(1)}

	if _, err := ev.Assign(n, s, nil, object.Number(2)); err != nil {
		t.Fatal(err)
	}
	got, err := ev.Evaluate(ast.Bin("+", n, ast.Num(1)), s, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != object.Number(3) {
		t.Errorf("got %s", got.Inspect())
	}
	if err := ev.Bind(&ast.BindingBehavior{Expression: n, Name: "x"}, s, nil); err != nil {
		t.Fatal(err)
	}
	if err := ev.Unbind(&ast.BindingBehavior{Expression: n, Name: "x"}, s, nil); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"bind", "unbind"}, n.events); diff != "" {
		t.Errorf("lifecycle mismatch (-want +got):\n%s", diff)
	}
}
