// Package status fans out live bot status events to status page subscribers.
package status

import (
	"sync"
	"time"

	"github.com/DenisKhanov/RouteBOT/internal/routebot/models"
	"github.com/sirupsen/logrus"
)

const subscriberBuffer = 16

// Hub broadcasts status events. Slow subscribers lose events instead of blocking publishers.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan models.StatusEvent]struct{}
	ready       *models.StatusEvent // Last ready event, replayed to new subscribers
	turns       uint64
	transport   string
}

// NewHub creates an empty Hub for the named transport.
func NewHub(transport string) *Hub {
	return &Hub{
		subscribers: make(map[chan models.StatusEvent]struct{}),
		transport:   transport,
	}
}

// Publish sends event to every subscriber without blocking.
// Sends happen under the lock so that a concurrent cancel never closes a channel mid-send.
func (h *Hub) Publish(event models.StatusEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	switch event.Type {
	case models.StatusEventReady:
		ready := event
		h.ready = &ready
	case models.StatusEventTurn:
		h.turns++
	}
	for ch := range h.subscribers {
		select {
		case ch <- event:
		default:
			logrus.Debug("Status subscriber is too slow, event dropped")
		}
	}
}

// MarkReady publishes the ready event for the connected transport.
func (h *Hub) MarkReady(message string) {
	h.Publish(models.StatusEvent{Type: models.StatusEventReady, Message: message})
}

// Subscribe registers a new subscriber. The returned cancel func must be called
// to release it. A subscriber joining after MarkReady receives the ready event first.
func (h *Hub) Subscribe() (<-chan models.StatusEvent, func()) {
	ch := make(chan models.StatusEvent, subscriberBuffer)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	if h.ready != nil {
		ch <- *h.ready
	}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Snapshot describes the current bot status.
type Snapshot struct {
	Transport   string `json:"transport"`
	Ready       bool   `json:"ready"`
	Turns       uint64 `json:"turns"`
	Subscribers int    `json:"subscribers"`
}

// Snapshot returns the current status.
func (h *Hub) Snapshot() Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return Snapshot{
		Transport:   h.transport,
		Ready:       h.ready != nil,
		Turns:       h.turns,
		Subscribers: len(h.subscribers),
	}
}
