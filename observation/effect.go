package observation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/podhmo/go-observe/object"
)

// EffectFunc is the body of an effect. Reads made through the effect (or
// through the runtime while the effect runs) become its dependencies.
type EffectFunc func(e *Effect) error

// Effect re-runs a function whenever one of the dependencies it read during
// its last run changes.
//
// A change raised by the effect's own run is queued and causes one more run
// after the current one; more than the runtime's MaxRunCount consecutive
// re-runs fail with ErrMaxRecursion.
type Effect struct {
	*Connector

	ID string

	fn       EffectFunc
	cleanups []func()

	queued   bool
	running  bool
	stopped  bool
	runCount int
}

// NewEffect creates an effect without running it.
func (rt *Runtime) NewEffect(fn EffectFunc) *Effect {
	e := &Effect{ID: uuid.NewString(), fn: fn}
	e.Connector = NewConnector(rt, e)
	return e
}

// Effect creates an effect and runs it once.
func (rt *Runtime) Effect(fn EffectFunc) (*Effect, error) {
	e := rt.NewEffect(fn)
	if err := e.Run(); err != nil {
		return e, err
	}
	return e, nil
}

// Get reads obj[key] and records it as a dependency.
func (e *Effect) Get(obj object.Object, key string) object.Object {
	e.Observe(obj, key)
	return getProperty(obj, key)
}

// OnCleanup registers fn to run before the next run and on Stop.
func (e *Effect) OnCleanup(fn func()) {
	e.cleanups = append(e.cleanups, fn)
}

// Running reports whether the effect body is executing.
func (e *Effect) Running() bool { return e.running }

// Stopped reports whether Stop was called.
func (e *Effect) Stopped() bool { return e.stopped }

// HandleChange queues a re-run and runs unless already running.
func (e *Effect) HandleChange(_, _ object.Object) error {
	e.queued = true
	return e.Run()
}

// HandleCollectionChange queues a re-run and runs unless already running.
func (e *Effect) HandleCollectionChange(_ object.Object, _ *IndexMap) error {
	e.queued = true
	return e.Run()
}

// Run executes the effect body, then re-runs it while changes raised during
// the run are queued.
func (e *Effect) Run() error {
	if e.stopped {
		return ErrStoppedEffect
	}
	if e.running {
		return nil
	}
	e.runCount++
	e.running = true
	e.queued = false
	e.obs.Next()

	start := time.Now()
	err := e.runOnce()
	if err != nil {
		e.runCount = 0
		e.queued = false
		e.rt.metrics.effectRan("error", time.Since(start).Seconds())
		return err
	}
	e.rt.metrics.effectRan("ok", time.Since(start).Seconds())

	if !e.queued {
		e.runCount = 0
		return nil
	}
	if e.runCount > e.rt.maxRunCount {
		e.runCount = 0
		e.queued = false
		e.rt.metrics.effectRan("recursion", 0)
		e.rt.logger.Warn("effect recursion limit reached", "effect", e.ID, "max", e.rt.maxRunCount)
		return fmt.Errorf("%w: effect %s re-ran more than %d times", ErrMaxRecursion, e.ID, e.rt.maxRunCount)
	}
	return e.Run()
}

func (e *Effect) runOnce() (err error) {
	e.runCleanups()
	if err := e.rt.switcher.Enter(e); err != nil {
		e.running = false
		return err
	}
	defer func() {
		e.obs.Clear()
		e.running = false
		if exitErr := e.rt.switcher.Exit(e); exitErr != nil && err == nil {
			err = exitErr
		}
	}()
	e.rt.debug("run effect", "effect", e.ID, "runCount", e.runCount)
	return e.fn(e)
}

func (e *Effect) runCleanups() {
	cleanups := e.cleanups
	e.cleanups = nil
	for _, fn := range cleanups {
		fn()
	}
}

// Stop runs the pending cleanups and drops every dependency. Stopping twice
// is a no-op.
func (e *Effect) Stop() {
	if e.stopped {
		return
	}
	e.runCleanups()
	e.stopped = true
	e.obs.ClearAll()
	e.rt.debug("stop effect", "effect", e.ID)
}
