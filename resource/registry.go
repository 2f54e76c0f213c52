// Package resource provides the named value converters and binding behaviors
// referenced from expressions, and the per-binding Host that applies them.
package resource

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/podhmo/go-observe/object"
	"github.com/podhmo/go-observe/scope"
)

// Converter transforms a value on its way to the view.
type Converter interface {
	ToView(val object.Object, args []object.Object) (object.Object, error)
}

// FromViewConverter also transforms values written back from the view.
type FromViewConverter interface {
	Converter
	FromView(val object.Object, args []object.Object) (object.Object, error)
}

// SignalSource is a converter whose output depends on state outside the
// expression. A binding using it re-evaluates when one of the signals is
// dispatched.
type SignalSource interface {
	Signals() []string
}

// ConverterFunc adapts a function to a to-view-only Converter.
type ConverterFunc func(val object.Object, args []object.Object) (object.Object, error)

// ToView calls f.
func (f ConverterFunc) ToView(val object.Object, args []object.Object) (object.Object, error) {
	return f(val, args)
}

type signalingConverter struct {
	Converter
	signals []string
}

func (c signalingConverter) Signals() []string { return c.signals }

func (c signalingConverter) FromView(val object.Object, args []object.Object) (object.Object, error) {
	if fv, ok := c.Converter.(FromViewConverter); ok {
		return fv.FromView(val, args)
	}
	return val, nil
}

// WithSignals wraps c so that bindings using it listen to signals.
func WithSignals(c Converter, signals ...string) Converter {
	return signalingConverter{Converter: c, signals: signals}
}

// Behavior changes how the binding it is applied to behaves. State belongs
// to the Host; one Behavior value serves every binding.
type Behavior interface {
	Bind(h *Host, s *scope.Scope, args []object.Object) error
	Unbind(h *Host, s *scope.Scope) error
}

// Registry maps names to converters and behaviors. It is safe for
// concurrent use.
type Registry struct {
	mu         sync.RWMutex
	converters map[string]Converter
	behaviors  map[string]Behavior
	logger     *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		converters: make(map[string]Converter),
		behaviors:  make(map[string]Behavior),
		logger:     logger,
	}
}

// NewDefaultRegistry creates a registry holding the built-in converters and
// behaviors.
func NewDefaultRegistry(logger *slog.Logger) *Registry {
	r := NewRegistry(logger)
	RegisterBuiltins(r)
	return r
}

// RegisterConverter adds or replaces a converter.
func (r *Registry) RegisterConverter(name string, c Converter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.converters[name] = c
	r.logger.Debug("register converter", "name", name)
}

// RegisterBehavior adds or replaces a behavior.
func (r *Registry) RegisterBehavior(name string, b Behavior) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.behaviors[name] = b
	r.logger.Debug("register behavior", "name", name)
}

// Converter looks up a converter.
func (r *Registry) Converter(name string) (Converter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.converters[name]
	return c, ok
}

// Behavior looks up a behavior.
func (r *Registry) Behavior(name string) (Behavior, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.behaviors[name]
	return b, ok
}

// Names returns the registered converter and behavior names, sorted.
func (r *Registry) Names() (converters, behaviors []string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for k := range r.converters {
		converters = append(converters, k)
	}
	for k := range r.behaviors {
		behaviors = append(behaviors, k)
	}
	sort.Strings(converters)
	sort.Strings(behaviors)
	return converters, behaviors
}
