package observation

import (
	"github.com/google/uuid"
	"github.com/podhmo/go-observe/ast"
	"github.com/podhmo/go-observe/evaluator"
	"github.com/podhmo/go-observe/object"
	"github.com/podhmo/go-observe/scope"
)

// ChangeFilter is consulted by watchers before they react to a change. A
// false result drops the change.
type ChangeFilter interface {
	AllowChange() bool
}

// OneTimer makes a watcher evaluate once without collecting dependencies.
type OneTimer interface {
	OneTime() bool
}

// --- Watch ---

// WatchFunc is called with the new and old value of a watched property. The
// returned cleanup, if any, runs before the next call and on Stop.
type WatchFunc func(newValue, oldValue object.Object) (cleanup func(), err error)

// Watch calls back whenever one property changes.
type Watch struct {
	ID string

	observer AccessorObserver
	callback WatchFunc
	cleanup  func()
	running  bool
	stopped  bool
}

// Watch subscribes callback to obj[key]. With immediate, callback is called
// once right away with the current value and an undefined old value.
func (rt *Runtime) Watch(obj object.Object, key string, callback WatchFunc, immediate bool) (*Watch, error) {
	w := &Watch{
		ID:       uuid.NewString(),
		observer: rt.locator.GetObserver(obj, key),
		callback: callback,
	}
	w.observer.Subscribe(w)
	rt.debug("watch", "watch", w.ID, "key", key)
	if immediate {
		if err := w.HandleChange(w.observer.GetValue(), object.UNDEFINED); err != nil {
			return w, err
		}
	}
	return w, nil
}

// HandleChange runs the previous cleanup and calls back.
func (w *Watch) HandleChange(newValue, oldValue object.Object) error {
	if w.stopped || w.running {
		return nil
	}
	w.running = true
	defer func() { w.running = false }()
	if w.cleanup != nil {
		cleanup := w.cleanup
		w.cleanup = nil
		cleanup()
	}
	cleanup, err := w.callback(newValue, oldValue)
	w.cleanup = cleanup
	return err
}

// Stop unsubscribes and runs the pending cleanup.
func (w *Watch) Stop() {
	if w.stopped {
		return
	}
	w.stopped = true
	w.observer.Unsubscribe(w)
	if w.cleanup != nil {
		w.cleanup()
		w.cleanup = nil
	}
}

// --- Expression Watcher ---

// WatcherCallback receives the new and old value of a watched expression.
type WatcherCallback func(newValue, oldValue object.Object) error

// ExpressionWatcher evaluates an expression against a scope and calls back
// when its value changes.
type ExpressionWatcher struct {
	*Connector

	ID string

	ev       *evaluator.Evaluator
	scope    *scope.Scope
	node     ast.Node
	caps     evaluator.Capabilities
	callback WatcherCallback

	value object.Object
	bound bool
}

// NewExpressionWatcher creates an unbound watcher. caps may be nil.
func (rt *Runtime) NewExpressionWatcher(ev *evaluator.Evaluator, s *scope.Scope, node ast.Node, caps evaluator.Capabilities, callback WatcherCallback) *ExpressionWatcher {
	w := &ExpressionWatcher{
		ID:       uuid.NewString(),
		ev:       ev,
		scope:    s,
		node:     node,
		caps:     caps,
		callback: callback,
		value:    object.UNDEFINED,
	}
	w.Connector = NewConnector(rt, w)
	return w
}

// Value returns the last evaluated value.
func (w *ExpressionWatcher) Value() object.Object { return w.value }

// Bound reports whether Bind was called without a matching Unbind.
func (w *ExpressionWatcher) Bound() bool { return w.bound }

// Bind runs the expression's bind hooks and evaluates it once.
func (w *ExpressionWatcher) Bind() error {
	if w.bound {
		return nil
	}
	if err := w.ev.Bind(w.node, w.scope, w.caps); err != nil {
		return err
	}
	v, err := w.evaluate()
	if err != nil {
		w.obs.ClearAll()
		return joinErrors(err, w.ev.Unbind(w.node, w.scope, w.caps))
	}
	w.value = v
	w.bound = true
	return nil
}

// Assign writes val through the watched expression, as a two-way binding
// does when the view changes.
func (w *ExpressionWatcher) Assign(val object.Object) (object.Object, error) {
	return w.ev.Assign(w.node, w.scope, w.caps, val)
}

// Unbind drops every dependency and runs the expression's unbind hooks.
func (w *ExpressionWatcher) Unbind() error {
	if !w.bound {
		return nil
	}
	w.bound = false
	w.obs.ClearAll()
	w.value = object.UNDEFINED
	return w.ev.Unbind(w.node, w.scope, w.caps)
}

func (w *ExpressionWatcher) evaluate() (object.Object, error) {
	if ot, ok := w.caps.(OneTimer); ok && ot.OneTime() {
		w.obs.ClearAll()
		return w.ev.Evaluate(w.node, w.scope, w.caps, nil)
	}
	w.obs.Next()
	v, err := w.ev.Evaluate(w.node, w.scope, w.caps, w)
	w.obs.Clear()
	return v, err
}

// HandleChange re-evaluates and calls back when the value differs. A lone
// scope read reuses the notified value instead of re-evaluating, unless the
// evaluator would change it: nullish values and functions are re-read.
func (w *ExpressionWatcher) HandleChange(newValue, _ object.Object) error {
	if !w.bound {
		return nil
	}
	if f, ok := w.caps.(ChangeFilter); ok && !f.AllowChange() {
		return nil
	}
	if !w.reusable(newValue) {
		v, err := w.evaluate()
		if err != nil {
			return err
		}
		newValue = v
	}
	return w.update(newValue)
}

func (w *ExpressionWatcher) reusable(v object.Object) bool {
	if _, ok := w.node.(*ast.AccessScope); !ok || w.obs.Count() != 1 {
		return false
	}
	if _, ok := v.(*object.Function); ok {
		return false
	}
	return !object.IsNullish(v)
}

// HandleCollectionChange re-evaluates after a collection mutation.
func (w *ExpressionWatcher) HandleCollectionChange(_ object.Object, _ *IndexMap) error {
	return w.Refresh()
}

// Refresh re-evaluates unconditionally and calls back when the value differs.
func (w *ExpressionWatcher) Refresh() error {
	if !w.bound {
		return nil
	}
	v, err := w.evaluate()
	if err != nil {
		return err
	}
	return w.update(v)
}

func (w *ExpressionWatcher) update(v object.Object) error {
	old := w.value
	if object.SameValue(v, old) {
		return nil
	}
	w.value = v
	return w.callback(v, old)
}

// --- Computed Watcher ---

// ComputedGetter computes a value. Reads made through the runtime or an
// Observable while it runs become dependencies.
type ComputedGetter func(w *ComputedWatcher) (object.Object, error)

// ComputedWatcher runs a Go getter under the switcher and calls back when
// its result changes.
type ComputedWatcher struct {
	*Connector

	ID string

	getter   ComputedGetter
	callback WatcherCallback

	value   object.Object
	bound   bool
	running bool
}

// NewComputedWatcher creates an unbound computed watcher.
func (rt *Runtime) NewComputedWatcher(getter ComputedGetter, callback WatcherCallback) *ComputedWatcher {
	w := &ComputedWatcher{ID: uuid.NewString(), getter: getter, callback: callback, value: object.UNDEFINED}
	w.Connector = NewConnector(rt, w)
	return w
}

// Value returns the last computed value.
func (w *ComputedWatcher) Value() object.Object { return w.value }

// Bind computes the value once.
func (w *ComputedWatcher) Bind() error {
	if w.bound {
		return nil
	}
	w.bound = true
	if _, err := w.compute(); err != nil {
		w.bound = false
		w.obs.ClearAll()
		return err
	}
	return nil
}

// Unbind drops every dependency.
func (w *ComputedWatcher) Unbind() {
	if !w.bound {
		return
	}
	w.bound = false
	w.obs.ClearAll()
}

// HandleChange recomputes and calls back when the value differs.
func (w *ComputedWatcher) HandleChange(_, _ object.Object) error {
	return w.run()
}

// HandleCollectionChange recomputes and calls back when the value differs.
func (w *ComputedWatcher) HandleCollectionChange(_ object.Object, _ *IndexMap) error {
	return w.run()
}

func (w *ComputedWatcher) run() error {
	if !w.bound || w.running {
		return nil
	}
	old := w.value
	v, err := w.compute()
	if err != nil {
		return err
	}
	if object.SameValue(v, old) {
		return nil
	}
	return w.callback(v, old)
}

func (w *ComputedWatcher) compute() (v object.Object, err error) {
	w.running = true
	w.obs.Next()
	if err := w.rt.switcher.Enter(w); err != nil {
		w.running = false
		return nil, err
	}
	defer func() {
		w.obs.Clear()
		w.running = false
		if exitErr := w.rt.switcher.Exit(w); exitErr != nil && err == nil {
			err = exitErr
		}
	}()
	v, err = w.getter(w)
	if err != nil {
		return nil, err
	}
	if v == nil {
		v = object.UNDEFINED
	}
	w.value = v
	return v, nil
}
