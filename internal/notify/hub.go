// Package notify pushes store mutation events to connected UI clients over
// websockets, so open grading and course views refresh without polling.
package notify

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const (
	subscriberBuffer = 16
	writeTimeout     = 5 * time.Second
)

// Event describes a mutation worth telling the UI about.
type Event struct {
	Type     string    `json:"type"`
	EntityID string    `json:"entity_id"`
	At       time.Time `json:"at"`
}

// Hub fans events out to websocket subscribers. A nil *Hub is a valid
// no-op publisher.
type Hub struct {
	mu          sync.Mutex
	subscribers map[chan Event]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[chan Event]struct{}),
	}
}

// Publish broadcasts an event to all subscribers. Subscribers that cannot
// keep up miss the event rather than blocking the publisher.
func (h *Hub) Publish(eventType, entityID string) {
	if h == nil {
		return
	}

	event := Event{Type: eventType, EntityID: entityID, At: time.Now()}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// SubscriberCount returns the number of connected subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

func (h *Hub) subscribe() chan Event {
	ch := make(chan Event, subscriberBuffer)
	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) unsubscribe(ch chan Event) {
	h.mu.Lock()
	delete(h.subscribers, ch)
	h.mu.Unlock()
}

// ServeHTTP upgrades the request to a websocket and streams events until
// the client disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // same-origin policy is the UI's concern
	})
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "hub closing")

	ch := h.subscribe()
	defer h.unsubscribe(ch)

	// CloseRead turns inbound frames into context cancellation; the event
	// stream is one-way.
	ctx := conn.CloseRead(r.Context())

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case event := <-ch:
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(writeCtx, conn, event)
			cancel()
			if err != nil {
				slog.Debug("dropping websocket subscriber", "error", err)
				return
			}
		}
	}
}
