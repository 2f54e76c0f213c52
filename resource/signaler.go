package resource

import (
	"github.com/hashicorp/go-multierror"
	"github.com/podhmo/go-observe/object"
	"github.com/podhmo/go-observe/observation"
)

// Refresher is implemented by bindings that can re-evaluate without a
// changed value, such as observation.ExpressionWatcher.
type Refresher interface {
	Refresh() error
}

// Signaler dispatches named signals to the bindings listening to them. Like
// a Runtime it belongs to one goroutine.
type Signaler struct {
	listeners map[string][]observation.Subscriber
}

// NewSignaler creates a Signaler.
func NewSignaler() *Signaler {
	return &Signaler{listeners: make(map[string][]observation.Subscriber)}
}

// AddSignalListener subscribes sub to name. Adding twice is a no-op.
func (s *Signaler) AddSignalListener(name string, sub observation.Subscriber) {
	for _, l := range s.listeners[name] {
		if l == sub {
			return
		}
	}
	s.listeners[name] = append(s.listeners[name], sub)
}

// RemoveSignalListener unsubscribes sub from name.
func (s *Signaler) RemoveSignalListener(name string, sub observation.Subscriber) {
	ls := s.listeners[name]
	for i, l := range ls {
		if l == sub {
			s.listeners[name], _ = object.Splice(ls, i, 1)
			break
		}
	}
	if len(s.listeners[name]) == 0 {
		delete(s.listeners, name)
	}
}

// Listeners returns the number of listeners of name.
func (s *Signaler) Listeners(name string) int { return len(s.listeners[name]) }

// Dispatch makes every listener of name re-evaluate. Every listener is
// called; their errors are aggregated.
func (s *Signaler) Dispatch(name string) error {
	snapshot := append([]observation.Subscriber(nil), s.listeners[name]...)
	var result *multierror.Error
	for _, l := range snapshot {
		var err error
		if r, ok := l.(Refresher); ok {
			err = r.Refresh()
		} else {
			err = l.HandleChange(object.UNDEFINED, object.UNDEFINED)
		}
		if err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
