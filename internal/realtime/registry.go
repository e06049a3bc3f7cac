package realtime

import (
	"sync"

	"github.com/google/uuid"
)

type registration struct {
	id      string
	handler Handler
}

// registry is an ordered list of subscriptions keyed by a generated handle.
type registry struct {
	mu      sync.RWMutex
	entries []registration
}

func (r *registry) add(h Handler) func() {
	id := uuid.NewString()
	r.mu.Lock()
	r.entries = append(r.entries, registration{id: id, handler: h})
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { r.remove(id) })
	}
}

func (r *registry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, entry := range r.entries {
		if entry.id == id {
			r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
			return
		}
	}
}

// snapshot returns the current handlers. Subscribing or unsubscribing
// during a dispatch pass affects the next message, not this one.
func (r *registry) snapshot() []Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Handler, len(r.entries))
	for i, entry := range r.entries {
		out[i] = entry.handler
	}
	return out
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
