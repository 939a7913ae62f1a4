package event

import (
	"github.com/juju/loggo"
)

var logger = loggo.GetLogger("sqlx.nestedtx.event")

type subscription struct {
	id       uint64
	name     Name // zero matches every name
	observer Observer
}

// Hub is a synchronous Emitter. Observers run in subscription order on
// the emitting goroutine.
//
// Hub is not safe for concurrent use; like the coordinator it feeds, it
// belongs to a single session.
type Hub struct {
	nextID uint64
	subs   []subscription
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{}
}

// Subscribe registers observer for the named lifecycle point and returns
// a function removing it.
func (h *Hub) Subscribe(name Name, observer Observer) (unsubscribe func()) {
	return h.add(name, observer)
}

// SubscribeAll registers observer for every lifecycle point.
func (h *Hub) SubscribeAll(observer Observer) (unsubscribe func()) {
	return h.add(0, observer)
}

func (h *Hub) add(name Name, observer Observer) func() {
	h.nextID++
	id := h.nextID
	h.subs = append(h.subs, subscription{id: id, name: name, observer: observer})
	return func() { h.remove(id) }
}

func (h *Hub) remove(id uint64) {
	for i, s := range h.subs {
		if s.id == id {
			h.subs = append(h.subs[:i:i], h.subs[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered observers.
func (h *Hub) Len() int {
	if h == nil {
		return 0
	}
	return len(h.subs)
}

// Emit implements Emitter.
func (h *Hub) Emit(p Payload, sig *Signal) {
	if h == nil {
		return
	}
	// Observers may unsubscribe while we iterate.
	subs := append([]subscription(nil), h.subs...)
	for _, s := range subs {
		if sig.Cancelled() {
			return
		}
		if s.name != 0 && s.name != p.Name {
			continue
		}
		s.observer(p, sig)
		if sig.Cancelled() {
			logger.Tracef("%s: chain cancelled by observer %d", p.Name, s.id)
		}
	}
}
