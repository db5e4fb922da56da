package events

import (
	"context"
	"sync"

	"finboard/internal/logger"
)

// DefaultBuffer is the per-subscriber channel capacity.
const DefaultBuffer = 16

type subscriber struct {
	userID string
	ch     chan ChangeEvent
	// fn is set for watchers, which are called inline and never miss events.
	fn func(ChangeEvent)
}

// Hub fans events out to in-process subscribers. A channel subscriber whose
// buffer is full misses the event; Publish never blocks on one. Watchers run
// inline on the publishing goroutine.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]*subscriber
	closed bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]*subscriber)}
}

// Subscribe registers for events of userID, or all owners when userID is
// empty. The returned cancel func unregisters and closes the channel.
func (h *Hub) Subscribe(userID string) (<-chan ChangeEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan ChangeEvent, DefaultBuffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	id := h.nextID
	h.nextID++
	h.subs[id] = &subscriber{userID: userID, ch: ch}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if s, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(s.ch)
			}
		})
	}
}

// Watch calls fn for every event of userID, or all owners when userID is
// empty, on the goroutine that publishes it. fn must be quick and must not
// call back into the hub. The returned cancel func unregisters it.
func (h *Hub) Watch(userID string, fn func(ChangeEvent)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return func() {}
	}
	id := h.nextID
	h.nextID++
	h.subs[id] = &subscriber{userID: userID, fn: fn}

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
		})
	}
}

// Publish delivers ev to every matching subscriber. Events for all owners
// (empty UserID) reach every subscriber.
func (h *Hub) Publish(_ context.Context, ev ChangeEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, s := range h.subs {
		if s.userID != "" && ev.UserID != "" && s.userID != ev.UserID {
			continue
		}
		if s.fn != nil {
			s.fn(ev)
			continue
		}
		select {
		case s.ch <- ev:
		default:
			logger.Named("events.hub").Warnw("Dropping change event for slow subscriber",
				"subscriber_user_id", s.userID,
				"event_user_id", ev.UserID,
				"op", ev.Op,
			)
		}
	}
	return nil
}

// Subscribers returns the current subscriber and watcher count.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close closes every subscriber channel. Later subscriptions receive a
// closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, s := range h.subs {
		if s.ch != nil {
			close(s.ch)
		}
		delete(h.subs, id)
	}
}
