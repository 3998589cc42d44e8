package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/meetinghours/attendance-backend/internal/pkg/telemetry"
)

const subscriberBuffer = 16

// Event is one server-sent event.
type Event struct {
	Name string
	Data interface{}
}

// Hub fans events out to the open streams of each user.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
	closed      bool
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers a stream for userID. The returned cleanup unregisters
// it and closes the channel; it must be called exactly once.
func (h *Hub) Subscribe(userID string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	if h.subscribers[userID] == nil {
		h.subscribers[userID] = make(map[chan Event]struct{})
	}
	h.subscribers[userID][ch] = struct{}{}
	telemetry.StreamSubscribers.Inc()

	cleanup := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subscribers[userID][ch]; !ok {
			return // closed by Close
		}
		delete(h.subscribers[userID], ch)
		close(ch)
		if len(h.subscribers[userID]) == 0 {
			delete(h.subscribers, userID)
		}
		telemetry.StreamSubscribers.Dec()
	}

	return ch, cleanup
}

// Publish sends event to every stream of userID. Streams whose buffer is
// full miss the event.
func (h *Hub) Publish(userID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[userID] {
		select {
		case ch <- event:
		default:
			telemetry.StreamEventsDropped.Inc()
		}
	}
}

// Close ends every open stream and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, subs := range h.subscribers {
		for ch := range subs {
			close(ch)
			telemetry.StreamSubscribers.Dec()
		}
	}
	h.subscribers = make(map[string]map[chan Event]struct{})
	h.closed = true
}

// SubscriberCount returns the number of open streams for a user.
func (h *Hub) SubscriberCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[userID])
}

// Write frames event in the text/event-stream format with JSON data.
func Write(w io.Writer, event Event) error {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Name, err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Name, data)
	return err
}
