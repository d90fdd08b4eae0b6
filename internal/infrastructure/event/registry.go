package event

import (
	"sync"

	"github.com/dinehub/backend/internal/domain/shared"
)

// subscription binds one handler to one namespace with its own serial
// delivery queue. The per-subscription goroutine preserves publish order for
// everything the handler sees; fan-out across subscriptions is parallel.
type subscription struct {
	ns      shared.Namespace
	handler shared.EventHandler
	types   map[string]struct{} // empty means all event types on the namespace
	queue   chan shared.DomainEvent
}

// wants reports whether the subscription should receive the event type
func (s *subscription) wants(eventType string) bool {
	if len(s.types) == 0 {
		return true
	}
	_, ok := s.types[eventType]
	return ok
}

// subscriptionRegistry tracks subscriptions per namespace
type subscriptionRegistry struct {
	mu   sync.RWMutex
	subs map[shared.Namespace][]*subscription
}

func newSubscriptionRegistry() *subscriptionRegistry {
	return &subscriptionRegistry{
		subs: make(map[shared.Namespace][]*subscription),
	}
}

// add registers a subscription under its namespace
func (r *subscriptionRegistry) add(sub *subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[sub.ns] = append(r.subs[sub.ns], sub)
}

// forNamespace returns the subscriptions registered for a namespace
func (r *subscriptionRegistry) forNamespace(ns shared.Namespace) []*subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()
	subs := r.subs[ns]
	out := make([]*subscription, len(subs))
	copy(out, subs)
	return out
}

// all returns every registered subscription
func (r *subscriptionRegistry) all() []*subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*subscription
	for _, subs := range r.subs {
		out = append(out, subs...)
	}
	return out
}
