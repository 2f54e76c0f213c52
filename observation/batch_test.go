package observation

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/podhmo/go-observe/object"
)

func TestBatch(t *testing.T) {
	setup := func(t *testing.T) (*Runtime, *object.Record, *changeLog, *changeLog) {
		rt := New()
		rec := record(t, map[string]any{"a": 1, "b": 1})
		a, b := &changeLog{}, &changeLog{}
		rt.Locator().GetObserver(rec, "a").Subscribe(a)
		rt.Locator().GetObserver(rec, "b").Subscribe(b)
		return rt, rec, a, b
	}

	t.Run("keeps the first old value", func(t *testing.T) {
		rt, rec, a, _ := setup(t)
		err := rt.Batch(func() error {
			for _, v := range []float64{2, 3, 4} {
				if err := rec.Set("a", object.Number(v)); err != nil {
					return err
				}
			}
			if len(a.got) != 0 {
				t.Errorf("notified inside the batch: %v", a.got)
			}
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]string{"1 -> 4"}, a.got); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("drops changes that cancel out", func(t *testing.T) {
		rt, rec, a, b := setup(t)
		err := rt.Batch(func() error {
			if err := rec.Set("a", object.Number(5)); err != nil {
				return err
			}
			if err := rec.Set("b", object.Number(2)); err != nil {
				return err
			}
			return rec.Set("a", object.Number(1))
		})
		if err != nil {
			t.Fatal(err)
		}
		if len(a.got) != 0 {
			t.Errorf("a changed back and must not notify: %v", a.got)
		}
		if diff := cmp.Diff([]string{"1 -> 2"}, b.got); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("nested batches flush once", func(t *testing.T) {
		rt, rec, a, _ := setup(t)
		err := rt.Batch(func() error {
			if err := rt.Batch(func() error { return rec.Set("a", object.Number(2)) }); err != nil {
				return err
			}
			if len(a.got) != 0 {
				t.Errorf("inner batch flushed: %v", a.got)
			}
			if !rt.Batching() {
				t.Errorf("outer batch should still be active")
			}
			return rec.Set("a", object.Number(3))
		})
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]string{"1 -> 3"}, a.got); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
		if rt.Batching() {
			t.Errorf("batch still active")
		}
	})

	t.Run("flushes and joins errors when fn fails", func(t *testing.T) {
		rt, rec, a, _ := setup(t)
		boom := errors.New("boom")
		a.err = errors.New("subscriber failed")
		err := rt.Batch(func() error {
			if err := rec.Set("a", object.Number(2)); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(err, boom) || !errors.Is(err, a.err) {
			t.Errorf("want both errors, got %v", err)
		}
		if len(a.got) != 1 {
			t.Errorf("batch was not flushed: %v", a.got)
		}
	})

	t.Run("notifies in first-raised order", func(t *testing.T) {
		rt, rec, _, _ := setup(t)
		var order []string
		rt.Locator().GetObserver(rec, "a").Subscribe(&subscriberFunc{func() { order = append(order, "a") }})
		rt.Locator().GetObserver(rec, "b").Subscribe(&subscriberFunc{func() { order = append(order, "b") }})
		err := rt.Batch(func() error {
			if err := rec.Set("b", object.Number(2)); err != nil {
				return err
			}
			if err := rec.Set("a", object.Number(2)); err != nil {
				return err
			}
			return rec.Set("b", object.Number(3))
		})
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]string{"b", "a"}, order); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})
}

type subscriberFunc struct{ fn func() }

func (f *subscriberFunc) HandleChange(_, _ object.Object) error {
	f.fn()
	return nil
}
