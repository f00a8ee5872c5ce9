// Package events fans menu change notifications out to in-process
// subscribers (websocket clients, the response cache purger).
package events

import (
	"context"
	"log"
	"sync"

	"github.com/iliyamo/menu-factory/internal/metrics"
	"github.com/iliyamo/menu-factory/internal/queue"
)

// Hub is a non-blocking broadcaster.  A subscriber whose buffer is full
// misses the event; it is expected to re-read the snapshot anyway.
type Hub struct {
	mu     sync.RWMutex
	subs   map[int]chan queue.MenuChangedEvent
	next   int
	buffer int
}

// NewHub returns a hub whose subscriber channels hold buffer events.
func NewHub(buffer int) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{subs: map[int]chan queue.MenuChangedEvent{}, buffer: buffer}
}

// Subscribe registers a new subscriber.  The cancel func unregisters it and
// closes the channel; calling it twice is safe.
func (h *Hub) Subscribe() (<-chan queue.MenuChangedEvent, func()) {
	ch := make(chan queue.MenuChangedEvent, h.buffer)
	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = ch
	h.mu.Unlock()
	metrics.Subscribers.Inc()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
			metrics.Subscribers.Dec()
		})
	}
}

// Publish delivers ev to every subscriber without blocking.
func (h *Hub) Publish(_ context.Context, ev queue.MenuChangedEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			log.Printf("events: subscriber %d is slow, dropped %s", id, ev.Kind)
		}
	}
	return nil
}

// Len returns the number of live subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
