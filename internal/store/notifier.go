package store

import (
	"context"
	"sync"
)

// Notifier fans out "this user's cellar changed" signals. Signals carry no
// payload; listeners reload the cellar on receipt.
type Notifier interface {
	Notify(ctx context.Context, userID string) error

	// Listen registers for signals about userID. The returned channel is
	// closed after stop is called. Bursts may be coalesced into a single
	// signal.
	Listen(ctx context.Context, userID string) (signals <-chan struct{}, stop func(), err error)
}

// Hub is the in-process Notifier.
type Hub struct {
	mu        sync.Mutex
	listeners map[string]map[chan struct{}]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{listeners: map[string]map[chan struct{}]struct{}{}}
}

// Notify signals every listener of userID without blocking.
func (h *Hub) Notify(_ context.Context, userID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.listeners[userID] {
		signal(ch)
	}
	return nil
}

// Listen registers a listener for userID.
func (h *Hub) Listen(_ context.Context, userID string) (<-chan struct{}, func(), error) {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	if h.listeners[userID] == nil {
		h.listeners[userID] = map[chan struct{}]struct{}{}
	}
	h.listeners[userID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if set := h.listeners[userID]; set != nil {
				delete(set, ch)
				if len(set) == 0 {
					delete(h.listeners, userID)
				}
			}
			close(ch)
		})
	}
	return ch, stop, nil
}

// listenerCount reports the number of live listeners for userID.
func (h *Hub) listenerCount(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners[userID])
}

// signal does a non-blocking send; a pending signal already covers this one.
func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
