package observation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/podhmo/go-observe/object"
)

// changeLog is a subscriber that writes down every notification.
type changeLog struct {
	got []string
	err error
}

func (l *changeLog) HandleChange(newValue, oldValue object.Object) error {
	l.got = append(l.got, oldValue.Inspect()+" -> "+newValue.Inspect())
	return l.err
}

func (l *changeLog) HandleCollectionChange(_ object.Object, indexMap *IndexMap) error {
	l.got = append(l.got, indexMap.String())
	return l.err
}

func record(t *testing.T, v map[string]any) *object.Record {
	t.Helper()
	o, err := object.FromGo(v)
	if err != nil {
		t.Fatal(err)
	}
	return o.(*object.Record)
}

type nopConnectable struct{ name string }

func (*nopConnectable) Observe(object.Object, string)   {}
func (*nopConnectable) ObserveCollection(object.Object) {}
func (*nopConnectable) SubscribeTo(Subscribable)        {}

func TestSwitcher(t *testing.T) {
	var s Switcher
	a, b := &nopConnectable{"a"}, &nopConnectable{"b"}

	if err := s.Enter(nil); !errors.Is(err, ErrSwitchNullConnectable) {
		t.Errorf("Enter(nil): %v", err)
	}
	if err := s.Exit(a); !errors.Is(err, ErrSwitchInactive) {
		t.Errorf("Exit before Enter: %v", err)
	}
	if err := s.Enter(a); err != nil {
		t.Fatal(err)
	}
	if err := s.Enter(a); !errors.Is(err, ErrSwitchActive) {
		t.Errorf("Enter twice: %v", err)
	}
	if err := s.Enter(b); err != nil {
		t.Fatal(err)
	}
	if s.Current() != Connectable(b) {
		t.Errorf("current should be b")
	}
	if err := s.Exit(a); !errors.Is(err, ErrSwitchInactive) {
		t.Errorf("Exit of an interrupted connectable: %v", err)
	}

	s.Pause()
	if s.Connecting() {
		t.Errorf("paused switcher must not connect")
	}
	s.Resume()

	if err := s.Exit(b); err != nil {
		t.Fatal(err)
	}
	if s.Current() != Connectable(a) {
		t.Errorf("exit must restore the interrupted connectable")
	}
	if err := s.Exit(a); err != nil {
		t.Fatal(err)
	}
	if s.Current() != nil || s.Connecting() {
		t.Errorf("switcher should be idle")
	}
}

func TestObserverRecordVersions(t *testing.T) {
	rt := New()
	rec := record(t, map[string]any{"a": 1, "b": 2})
	a := rt.Locator().GetObserver(rec, "a")
	b := rt.Locator().GetObserver(rec, "b")
	owner := &changeLog{}
	r := NewObserverRecord(owner)

	r.Next()
	r.Add(a)
	r.Add(b)
	r.Add(a)
	r.Clear()
	if r.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", r.Count())
	}

	// second pass only sees b
	r.Next()
	r.Add(b)
	r.Clear()
	if r.Has(a) || !r.Has(b) || r.Count() != 1 {
		t.Errorf("stale dependency kept: has(a)=%v has(b)=%v count=%d", r.Has(a), r.Has(b), r.Count())
	}

	if err := rec.Set("a", object.Number(10)); err != nil {
		t.Fatal(err)
	}
	if err := rec.Set("b", object.Number(20)); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"2 -> 20"}, owner.got); diff != "" {
		t.Errorf("notifications mismatch (-want +got):\n%s", diff)
	}

	r.ClearAll()
	if r.Count() != 0 || r.Has(b) {
		t.Errorf("ClearAll left dependencies")
	}
	if err := rec.Set("b", object.Number(30)); err != nil {
		t.Fatal(err)
	}
	if len(owner.got) != 1 {
		t.Errorf("notified after ClearAll: %v", owner.got)
	}
}

func TestSubscriberRecord(t *testing.T) {
	var r SubscriberRecord
	a, b := &changeLog{}, &changeLog{err: errors.New("b failed")}
	if !r.Add(a) || r.Add(a) {
		t.Errorf("Add must report first insertion only")
	}
	r.Add(b)
	err := r.Notify(object.Number(1), object.Number(0))
	if err == nil || err.Error() != "b failed" {
		t.Errorf("Notify error = %v", err)
	}
	if len(a.got) != 1 || len(b.got) != 1 {
		t.Errorf("every subscriber must be called")
	}
	if !r.Remove(a) || r.Remove(a) || r.Count() != 1 {
		t.Errorf("Remove mismatch, count = %d", r.Count())
	}
}

// selfRemover unsubscribes itself while being notified.
type selfRemover struct {
	from  *SubscriberRecord
	calls int
}

func (s *selfRemover) HandleChange(_, _ object.Object) error {
	s.calls++
	s.from.Remove(s)
	return nil
}

func TestSubscriberRecordNotifiesSnapshot(t *testing.T) {
	var r SubscriberRecord
	first := &selfRemover{from: &r}
	second := &changeLog{}
	r.Add(first)
	r.Add(second)
	if err := r.Notify(object.TRUE, object.FALSE); err != nil {
		t.Fatal(err)
	}
	if first.calls != 1 || len(second.got) != 1 {
		t.Errorf("calls = %d, second = %v", first.calls, second.got)
	}
	if r.Count() != 1 {
		t.Errorf("Count() = %d, want 1", r.Count())
	}
}

func TestLocator(t *testing.T) {
	rt := New()
	l := rt.Locator()
	rec := record(t, map[string]any{"a": 1})

	if l.GetObserver(rec, "a") != l.GetObserver(rec, "a") {
		t.Errorf("the same property must yield the same observer")
	}

	arr := object.NewArray()
	if _, ok := l.GetObserver(arr, "length").(*CollectionLengthObserver); !ok {
		t.Errorf("array length observer type")
	}
	if _, ok := l.GetObserver(arr, "0").(*ArrayIndexObserver); !ok {
		t.Errorf("array index observer type")
	}
	if _, ok := l.GetObserver(object.NewSet(), "size").(*CollectionSizeObserver); !ok {
		t.Errorf("set size observer type")
	}
	if _, ok := l.GetCollectionObserver(object.Number(1)); ok {
		t.Errorf("numbers are not collections")
	}

	prim := l.GetObserver(object.String("abc"), "length")
	if v := prim.GetValue(); v != object.Number(3) {
		t.Errorf("primitive length = %s", v.Inspect())
	}
	if v := l.GetObserver(object.NULL, "x").GetValue(); v != object.Object(object.UNDEFINED) {
		t.Errorf("property of null = %s", v.Inspect())
	}

	frozen := record(t, map[string]any{"k": 1})
	frozen.Freeze()
	if err := l.GetObserver(frozen, "k").SetValue(object.Number(2)); !errors.Is(err, ErrReadOnlyProperty) {
		t.Errorf("want ErrReadOnlyProperty, got %v", err)
	}
}

// hostObject is a host-defined value the locator cannot intercept.
type hostObject struct{ value object.Object }

func (*hostObject) Type() object.ObjectType { return "HOST" }
func (h *hostObject) Inspect() string       { return fmt.Sprintf("host(%s)", h.value.Inspect()) }

type hostObserver struct {
	host *hostObject
	subs SubscriberRecord
}

func (o *hostObserver) GetValue() object.Object { return o.host.value }
func (o *hostObserver) SetValue(v object.Object) error {
	old := o.host.value
	o.host.value = v
	return o.subs.Notify(v, old)
}
func (o *hostObserver) Subscribe(sub Subscriber)   { o.subs.Add(sub) }
func (o *hostObserver) Unsubscribe(sub Subscriber) { o.subs.Remove(sub) }

func TestLocatorAdapter(t *testing.T) {
	rt := New()
	h := &hostObject{value: object.Number(1)}
	ho := &hostObserver{host: h}
	rt.Locator().AddAdapter(AdapterFunc(func(_ *Runtime, obj object.Object, key string) (AccessorObserver, bool) {
		if obj == object.Object(h) && key == "value" {
			return ho, true
		}
		return nil, false
	}))

	if rt.Locator().GetObserver(h, "value") != AccessorObserver(ho) {
		t.Fatalf("adapter observer not used")
	}
	if _, ok := rt.Locator().GetObserver(h, "other").(*PassiveObserver); !ok {
		t.Errorf("unknown keys fall back to a passive observer")
	}

	log := &changeLog{}
	w, err := rt.Watch(h, "value", func(n, o object.Object) (func(), error) {
		return nil, log.HandleChange(n, o)
	}, false)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	if err := rt.Write(h, "value", object.Number(2)); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"1 -> 2"}, log.got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

// listHost is a host value Go cannot hash.
type listHost struct{ xs []int }

func (listHost) Type() object.ObjectType { return "HOST" }
func (h listHost) Inspect() string       { return fmt.Sprint(h.xs) }
func (h listHost) Get(key string) (object.Object, bool) {
	if key == "x" {
		return object.Number(len(h.xs)), true
	}
	return object.UNDEFINED, false
}

// listObserver is an observer value Go cannot hash.
type listObserver struct{ seen []string }

func (listObserver) GetValue() object.Object      { return object.UNDEFINED }
func (listObserver) SetValue(object.Object) error { return nil }
func (listObserver) Subscribe(Subscriber)         {}
func (listObserver) Unsubscribe(Subscriber)       {}

func TestUnhashableHostValues(t *testing.T) {
	rt := New()
	rt.Locator().AddAdapter(AdapterFunc(func(_ *Runtime, obj object.Object, key string) (AccessorObserver, bool) {
		if key == "adapted" {
			return listObserver{}, true
		}
		return nil, false
	}))
	bc := object.NewRecord()
	bc.SetRaw("h", listHost{xs: []int{1}})

	var seen []string
	e, err := rt.Effect(func(e *Effect) error {
		h := e.Get(bc, "h")
		seen = append(seen, e.Get(h, "x").Inspect())
		e.Get(h, "adapted")
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	defer e.Stop()
	if e.Record().Count() != 1 {
		t.Errorf("only bc.h can notify, dependencies = %d", e.Record().Count())
	}
	if e.Record().Has(listObserver{}) {
		t.Errorf("an unhashable observer cannot be a dependency")
	}

	if err := bc.Set("h", listHost{xs: []int{1}}); err != nil {
		t.Fatal(err)
	}
	if err := bc.Set("h", listHost{xs: []int{1, 2}}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"1", "2"}, seen); diff != "" {
		t.Errorf("runs mismatch (-want +got):\n%s", diff)
	}
}
