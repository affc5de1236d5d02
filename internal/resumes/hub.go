package resumes

import (
	"context"
	"sync"
)

// Notifier publishes record changes to subscribers.
type Notifier interface {
	Publish(ctx context.Context, change Change) error
}

// Hub fans changes out to in-process listeners. Listeners must not block.
type Hub struct {
	mu        sync.RWMutex
	nextID    uint64
	listeners map[string]map[uint64]func()
}

// NewHub constructs an empty hub.
func NewHub() *Hub {
	return &Hub{listeners: make(map[string]map[uint64]func())}
}

func ownerTopic(ownerID string) string { return "owner:" + ownerID }
func resumeTopic(id string) string     { return "resume:" + id }

// Publish dispatches the change locally. It never fails.
func (h *Hub) Publish(ctx context.Context, change Change) error {
	h.Dispatch(change)
	return nil
}

// Dispatch notifies listeners of the owner and record topics.
func (h *Hub) Dispatch(change Change) {
	h.mu.RLock()
	fns := make([]func(), 0)
	for _, topic := range []string{ownerTopic(change.OwnerID), resumeTopic(change.ID)} {
		for _, fn := range h.listeners[topic] {
			fns = append(fns, fn)
		}
	}
	h.mu.RUnlock()
	for _, fn := range fns {
		fn()
	}
}

// listen registers fn on topic and returns a remover. The remover is idempotent.
func (h *Hub) listen(topic string, fn func()) func() {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	if h.listeners[topic] == nil {
		h.listeners[topic] = make(map[uint64]func())
	}
	h.listeners[topic][id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if m := h.listeners[topic]; m != nil {
			delete(m, id)
			if len(m) == 0 {
				delete(h.listeners, topic)
			}
		}
	}
}

// Listeners returns the number of registered listeners.
func (h *Hub) Listeners() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, m := range h.listeners {
		n += len(m)
	}
	return n
}

var _ Notifier = (*Hub)(nil)
