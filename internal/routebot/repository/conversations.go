// Package repository provides conversation state storage for the routing bot.
// Conversations live in memory for the process lifetime, or in Redis with a TTL.
package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/DenisKhanov/RouteBOT/internal/routebot/models"
	"github.com/sirupsen/logrus"
)

// ErrEmptyConversationID is returned for operations on a conversation without id.
var ErrEmptyConversationID = errors.New("conversation id is empty")

// Conversations manages the dialogue state of every remote party in memory.
// With a zero capacity the store is unbounded; EvictIdle bounds it by age.
type Conversations struct {
	buffer           map[string]models.Conversation // In-memory store of conversations by remote address
	maxConversations int                            // Capacity, 0 means unbounded
	mu               sync.RWMutex                   // Protects buffer from concurrent access
	now              func() time.Time
}

// NewConversations creates an empty in-memory store.
// Arguments:
//   - maxConversations: capacity of the store; when it is full, the least recently
//     updated conversation is dropped to make room. 0 disables the limit.
//
// Returns a pointer to a Conversations.
func NewConversations(maxConversations int) *Conversations {
	if maxConversations < 0 {
		maxConversations = 0
	}
	return &Conversations{
		buffer:           make(map[string]models.Conversation),
		maxConversations: maxConversations,
		now:              time.Now,
	}
}

// GetOrCreate returns a copy of the conversation for id, creating it in StateStart on first use.
func (c *Conversations) GetOrCreate(_ context.Context, id string) (models.Conversation, error) {
	if id == "" {
		return models.Conversation{}, ErrEmptyConversationID
	}

	c.mu.RLock()
	conv, ok := c.buffer[id]
	c.mu.RUnlock()
	if ok {
		return conv, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if conv, ok = c.buffer[id]; ok {
		return conv, nil
	}
	conv = models.NewConversation(id)
	conv.UpdatedAt = c.now()
	c.makeRoom()
	c.buffer[id] = conv
	return conv, nil
}

// Save stores conv, replacing the previous state of the same id.
func (c *Conversations) Save(_ context.Context, conv models.Conversation) error {
	if conv.ID == "" {
		return ErrEmptyConversationID
	}
	if conv.UpdatedAt.IsZero() {
		conv.UpdatedAt = c.now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.buffer[conv.ID]; !ok {
		c.makeRoom()
	}
	c.buffer[conv.ID] = conv
	return nil
}

// makeRoom drops the least recently updated conversation when the store is full.
// The caller must hold the write lock.
func (c *Conversations) makeRoom() {
	if c.maxConversations == 0 || len(c.buffer) < c.maxConversations {
		return
	}
	var (
		oldestID string
		oldestAt time.Time
	)
	for id, conv := range c.buffer {
		if oldestID == "" || conv.UpdatedAt.Before(oldestAt) {
			oldestID, oldestAt = id, conv.UpdatedAt
		}
	}
	delete(c.buffer, oldestID)
	logrus.WithField("conversation", oldestID).Debug("Conversation store full, dropped oldest conversation")
}

// EvictIdle removes conversations not updated for longer than ttl.
// Returns the number of removed conversations.
func (c *Conversations) EvictIdle(ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	deadline := c.now().Add(-ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := 0
	for id, conv := range c.buffer {
		if conv.UpdatedAt.Before(deadline) {
			delete(c.buffer, id)
			evicted++
		}
	}
	if evicted > 0 {
		logrus.Infof("Evicted %d idle conversations, %d left", evicted, len(c.buffer))
	}
	return evicted
}

// Len returns the number of stored conversations.
func (c *Conversations) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.buffer)
}
