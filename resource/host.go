package resource

import (
	"fmt"
	"time"

	"github.com/podhmo/go-observe/evaluator"
	"github.com/podhmo/go-observe/object"
	"github.com/podhmo/go-observe/observation"
	"github.com/podhmo/go-observe/scope"
	"golang.org/x/time/rate"
)

// Host carries the resource state of one binding. It implements the
// evaluator's converter and behavior hooks and the watcher's change filter,
// so it is passed as the Capabilities of the binding's evaluations.
type Host struct {
	registry *Registry
	signaler *Signaler
	owner    observation.Subscriber

	applied    map[string]Behavior
	signals    map[string]int
	signalArgs []object.Object

	limiter *rate.Limiter
	pending bool
	oneTime bool
	now     func() time.Time
}

var (
	_ evaluator.ConverterUser   = (*Host)(nil)
	_ evaluator.ConverterBinder = (*Host)(nil)
	_ evaluator.BehaviorBinder  = (*Host)(nil)
	_ observation.ChangeFilter  = (*Host)(nil)
	_ observation.OneTimer      = (*Host)(nil)
)

// NewHost creates a Host resolving names in registry. signaler may be nil,
// in which case signals are ignored.
func NewHost(registry *Registry, signaler *Signaler) *Host {
	return &Host{
		registry: registry,
		signaler: signaler,
		applied:  make(map[string]Behavior),
		signals:  make(map[string]int),
		now:      time.Now,
	}
}

// Attach sets the binding that signals and behaviors act on.
func (h *Host) Attach(owner observation.Subscriber) { h.owner = owner }

// Owner returns the attached binding.
func (h *Host) Owner() observation.Subscriber { return h.owner }

// SetClock replaces the clock used by rate limiting.
func (h *Host) SetClock(now func() time.Time) { h.now = now }

// UseConverter implements evaluator.ConverterUser. A converter without a
// from-view direction passes values written back through unchanged.
func (h *Host) UseConverter(name string, mode evaluator.ConverterMode, val object.Object, args []object.Object) (object.Object, error) {
	c, ok := h.registry.Converter(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", evaluator.ErrConverterNotFound, name)
	}
	if mode == evaluator.FromView {
		if fv, ok := c.(FromViewConverter); ok {
			return fv.FromView(val, args)
		}
		return val, nil
	}
	return c.ToView(val, args)
}

// BindConverter implements evaluator.ConverterBinder.
func (h *Host) BindConverter(name string) error {
	c, ok := h.registry.Converter(name)
	if !ok {
		return fmt.Errorf("%w: %s", evaluator.ErrConverterNotFound, name)
	}
	if src, ok := c.(SignalSource); ok {
		for _, sig := range src.Signals() {
			h.listen(sig)
		}
	}
	return nil
}

// UnbindConverter implements evaluator.ConverterBinder.
func (h *Host) UnbindConverter(name string) error {
	c, ok := h.registry.Converter(name)
	if !ok {
		return nil
	}
	if src, ok := c.(SignalSource); ok {
		for _, sig := range src.Signals() {
			h.unlisten(sig)
		}
	}
	return nil
}

// BindBehavior implements evaluator.BehaviorBinder. A behavior can be
// applied once per bind cycle.
func (h *Host) BindBehavior(name string, s *scope.Scope, args []object.Object) error {
	if _, dup := h.applied[name]; dup {
		return fmt.Errorf("%w: %s", evaluator.ErrDuplicateBehavior, name)
	}
	b, ok := h.registry.Behavior(name)
	if !ok {
		return fmt.Errorf("%w: %s", evaluator.ErrBehaviorNotFound, name)
	}
	if err := b.Bind(h, s, args); err != nil {
		return err
	}
	h.applied[name] = b
	return nil
}

// UnbindBehavior implements evaluator.BehaviorBinder.
func (h *Host) UnbindBehavior(name string, s *scope.Scope) error {
	b, ok := h.applied[name]
	if !ok {
		return nil
	}
	delete(h.applied, name)
	return b.Unbind(h, s)
}

// Applied reports whether the named behavior is applied.
func (h *Host) Applied(name string) bool {
	_, ok := h.applied[name]
	return ok
}

// AllowChange implements observation.ChangeFilter. Without a throttle every
// change is allowed; with one, changes beyond the rate are dropped and
// remembered as pending.
func (h *Host) AllowChange() bool {
	if h.limiter == nil {
		return true
	}
	if h.limiter.AllowN(h.now(), 1) {
		h.pending = false
		return true
	}
	h.pending = true
	return false
}

// Pending reports whether a throttled change was dropped since the last
// allowed one.
func (h *Host) Pending() bool { return h.pending }

// FlushPending re-evaluates the owner if a throttled change is pending.
func (h *Host) FlushPending() error {
	if !h.pending || h.owner == nil {
		return nil
	}
	h.pending = false
	if r, ok := h.owner.(Refresher); ok {
		return r.Refresh()
	}
	return h.owner.HandleChange(object.UNDEFINED, object.UNDEFINED)
}

// OneTime implements observation.OneTimer.
func (h *Host) OneTime() bool { return h.oneTime }

func (h *Host) listen(signal string) {
	if h.signaler == nil || h.owner == nil {
		return
	}
	if h.signals[signal] == 0 {
		h.signaler.AddSignalListener(signal, h.owner)
	}
	h.signals[signal]++
}

func (h *Host) unlisten(signal string) {
	if h.signaler == nil || h.owner == nil || h.signals[signal] == 0 {
		return
	}
	h.signals[signal]--
	if h.signals[signal] == 0 {
		delete(h.signals, signal)
		h.signaler.RemoveSignalListener(signal, h.owner)
	}
}
