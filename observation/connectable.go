package observation

import (
	"github.com/podhmo/go-observe/object"
)

// Connectable is the receiver of dependency registrations made while an
// expression or effect is evaluated.
type Connectable interface {
	Observe(obj object.Object, key string)
	ObserveCollection(collection object.Object)
	SubscribeTo(s Subscribable)
}

// ObserverRecord tracks the subscribables a connectable currently depends on.
//
// Each evaluation pass bumps Version; Add stamps a dependency with the
// current version and Clear drops every dependency not stamped during the
// latest pass. The record subscribes to dependencies on behalf of its owner
// and forwards their notifications to it.
type ObserverRecord struct {
	owner   Subscriber
	version int
	count   int
	deps    map[Subscribable]int

	metrics *Metrics
}

// NewObserverRecord creates an empty record forwarding to owner.
func NewObserverRecord(owner Subscriber) *ObserverRecord {
	return &ObserverRecord{owner: owner, deps: make(map[Subscribable]int)}
}

// Version returns the current pass number.
func (r *ObserverRecord) Version() int { return r.version }

// Next starts a new evaluation pass.
func (r *ObserverRecord) Next() { r.version++ }

// Count returns the number of live dependencies.
func (r *ObserverRecord) Count() int { return r.count }

// Has reports whether s is a live dependency.
func (r *ObserverRecord) Has(s Subscribable) bool {
	if !object.Comparable(s) {
		return false
	}
	_, ok := r.deps[s]
	return ok
}

// inert is implemented by observers that never notify. They are not
// recorded as dependencies.
type inert interface{ inert() }

// Add registers s as a dependency of the current pass. The record subscribes
// only the first time it sees s. Observers that never notify, and values Go
// cannot use as map keys, are not recorded.
func (r *ObserverRecord) Add(s Subscribable) {
	if _, ok := s.(inert); ok || !object.Comparable(s) {
		return
	}
	if _, ok := r.deps[s]; !ok {
		s.Subscribe(r)
		r.count++
		r.metrics.subscribed(1)
	}
	r.deps[s] = r.version
}

// Clear unsubscribes from every dependency not seen during the current pass.
func (r *ObserverRecord) Clear() {
	for s, v := range r.deps {
		if v != r.version {
			s.Unsubscribe(r)
			delete(r.deps, s)
			r.metrics.subscribed(-1)
		}
	}
	r.count = len(r.deps)
}

// ClearAll unsubscribes from every dependency.
func (r *ObserverRecord) ClearAll() {
	for s := range r.deps {
		s.Unsubscribe(r)
	}
	r.metrics.subscribed(-float64(len(r.deps)))
	clear(r.deps)
	r.count = 0
}

// HandleChange forwards to the owner.
func (r *ObserverRecord) HandleChange(newValue, oldValue object.Object) error {
	return r.owner.HandleChange(newValue, oldValue)
}

// HandleCollectionChange forwards to the owner. Owners that do not handle
// collections see a plain change with the collection as both values.
func (r *ObserverRecord) HandleCollectionChange(collection object.Object, indexMap *IndexMap) error {
	if cs, ok := r.owner.(CollectionSubscriber); ok {
		return cs.HandleCollectionChange(collection, indexMap)
	}
	return r.owner.HandleChange(collection, collection)
}

// Connector implements Connectable for an owner: it resolves observers
// through the runtime's locator and records them in an ObserverRecord.
type Connector struct {
	rt  *Runtime
	obs *ObserverRecord
}

// NewConnector creates a connector whose dependencies notify owner.
func NewConnector(rt *Runtime, owner Subscriber) *Connector {
	obs := NewObserverRecord(owner)
	obs.metrics = rt.metrics
	return &Connector{rt: rt, obs: obs}
}

// Runtime returns the runtime the connector resolves observers in.
func (c *Connector) Runtime() *Runtime { return c.rt }

// Record returns the dependency record.
func (c *Connector) Record() *ObserverRecord { return c.obs }

// Observe subscribes to the property key of obj.
func (c *Connector) Observe(obj object.Object, key string) {
	c.obs.Add(c.rt.locator.GetObserver(obj, key))
}

// ObserveCollection subscribes to the mutations of an array, set or map.
// Other values are ignored.
func (c *Connector) ObserveCollection(collection object.Object) {
	if o, ok := c.rt.locator.GetCollectionObserver(collection); ok {
		c.obs.Add(o)
	}
}

// SubscribeTo subscribes to s directly.
func (c *Connector) SubscribeTo(s Subscribable) {
	c.obs.Add(s)
}
