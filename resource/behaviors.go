package resource

import (
	"fmt"
	"math"
	"time"

	"github.com/podhmo/go-observe/object"
	"github.com/podhmo/go-observe/scope"
	"golang.org/x/time/rate"
)

// DefaultThrottleDelay is the interval used by `& throttle` without an argument.
const DefaultThrottleDelay = 200 * time.Millisecond

// ThrottleBehavior limits how often the binding reacts to changes:
// `expr & throttle:500` allows one change per 500ms.
type ThrottleBehavior struct{}

// Bind installs a rate limiter on h.
func (ThrottleBehavior) Bind(h *Host, _ *scope.Scope, args []object.Object) error {
	delay := DefaultThrottleDelay
	if len(args) > 0 && !object.IsNullish(args[0]) {
		ms := object.ToNumber(args[0])
		if math.IsNaN(ms) || ms < 0 {
			return fmt.Errorf("throttle: invalid delay %s", args[0].Inspect())
		}
		delay = time.Duration(ms * float64(time.Millisecond))
	}
	h.limiter = rate.NewLimiter(rate.Every(delay), 1)
	return nil
}

// Unbind removes the limiter.
func (ThrottleBehavior) Unbind(h *Host, _ *scope.Scope) error {
	h.limiter = nil
	h.pending = false
	return nil
}

// OneTimeBehavior makes the binding evaluate once without collecting
// dependencies: `expr & oneTime`.
type OneTimeBehavior struct{}

// Bind marks h one-time.
func (OneTimeBehavior) Bind(h *Host, _ *scope.Scope, _ []object.Object) error {
	h.oneTime = true
	return nil
}

// Unbind clears the mark.
func (OneTimeBehavior) Unbind(h *Host, _ *scope.Scope) error {
	h.oneTime = false
	return nil
}

// SignalBehavior re-evaluates the binding when one of the named signals is
// dispatched: `expr & signal:'locale-changed'`.
type SignalBehavior struct{}

// Bind subscribes the owner to the signals named by args.
func (SignalBehavior) Bind(h *Host, _ *scope.Scope, args []object.Object) error {
	if len(args) == 0 {
		return fmt.Errorf("signal: at least one signal name is required")
	}
	for _, a := range args {
		h.listen(object.ToString(a))
	}
	h.signalArgs = args
	return nil
}

// Unbind unsubscribes the owner.
func (SignalBehavior) Unbind(h *Host, _ *scope.Scope) error {
	for _, a := range h.signalArgs {
		h.unlisten(object.ToString(a))
	}
	h.signalArgs = nil
	return nil
}
