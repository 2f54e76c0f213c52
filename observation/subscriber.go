package observation

import (
	"github.com/podhmo/go-observe/object"
)

// Subscriber receives value change notifications.
type Subscriber interface {
	HandleChange(newValue, oldValue object.Object) error
}

// CollectionSubscriber receives collection change notifications. Collection
// observers deliver to subscribers that implement it and skip the rest.
type CollectionSubscriber interface {
	HandleCollectionChange(collection object.Object, indexMap *IndexMap) error
}

// Subscribable is anything a connectable can depend on.
type Subscribable interface {
	Subscribe(sub Subscriber)
	Unsubscribe(sub Subscriber)
}

// AccessorObserver reads and writes one property and notifies on change.
type AccessorObserver interface {
	Subscribable
	GetValue() object.Object
	SetValue(val object.Object) error
}

// SubscriberRecord is the ordered, duplicate-free subscriber list kept by
// every observer.
type SubscriberRecord struct {
	subs []Subscriber
}

// Add appends sub and reports whether it was not yet present.
func (r *SubscriberRecord) Add(sub Subscriber) bool {
	if r.Has(sub) {
		return false
	}
	r.subs = append(r.subs, sub)
	return true
}

// Remove drops sub and reports whether it was present.
func (r *SubscriberRecord) Remove(sub Subscriber) bool {
	for i, s := range r.subs {
		if s == sub {
			r.subs, _ = object.Splice(r.subs, i, 1)
			return true
		}
	}
	return false
}

// Has reports whether sub is subscribed.
func (r *SubscriberRecord) Has(sub Subscriber) bool {
	for _, s := range r.subs {
		if s == sub {
			return true
		}
	}
	return false
}

// Count returns the number of subscribers.
func (r *SubscriberRecord) Count() int { return len(r.subs) }

// Notify calls HandleChange on a snapshot of the subscribers, so handlers
// may subscribe or unsubscribe while being notified. Every subscriber is
// called; their errors are joined.
func (r *SubscriberRecord) Notify(newValue, oldValue object.Object) error {
	if len(r.subs) == 0 {
		return nil
	}
	snapshot := append([]Subscriber(nil), r.subs...)
	var errs []error
	for _, s := range snapshot {
		errs = append(errs, s.HandleChange(newValue, oldValue))
	}
	return joinErrors(errs...)
}

// NotifyCollection calls HandleCollectionChange on a snapshot of the
// collection subscribers.
func (r *SubscriberRecord) NotifyCollection(collection object.Object, indexMap *IndexMap) error {
	if len(r.subs) == 0 {
		return nil
	}
	snapshot := append([]Subscriber(nil), r.subs...)
	var errs []error
	for _, s := range snapshot {
		if cs, ok := s.(CollectionSubscriber); ok {
			errs = append(errs, cs.HandleCollectionChange(collection, indexMap))
		}
	}
	return joinErrors(errs...)
}
