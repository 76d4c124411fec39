package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/DenisKhanov/RouteBOT/internal/routebot/models"
	"github.com/redis/go-redis/v9"
)

const conversationKeyPrefix = "conversation:"

// RedisConversations stores conversations as JSON documents in Redis.
// Every Save refreshes the key TTL, so idle conversations expire on their own.
type RedisConversations struct {
	redis *redis.Client
	ttl   time.Duration // 0 keeps keys forever
	now   func() time.Time
}

// NewRedisConversations creates a Redis backed store.
// Arguments:
//   - client: connected Redis client.
//   - ttl: idle lifetime of a conversation, 0 disables expiry.
//
// Returns a pointer to a RedisConversations.
func NewRedisConversations(client *redis.Client, ttl time.Duration) *RedisConversations {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisConversations{redis: client, ttl: ttl, now: time.Now}
}

// GetOrCreate returns the stored conversation for id or a new one in StateStart.
// A new conversation is not written until Save.
func (r *RedisConversations) GetOrCreate(ctx context.Context, id string) (models.Conversation, error) {
	if id == "" {
		return models.Conversation{}, ErrEmptyConversationID
	}
	data, err := r.redis.Get(ctx, conversationKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		conv := models.NewConversation(id)
		conv.UpdatedAt = r.now()
		return conv, nil
	}
	if err != nil {
		return models.Conversation{}, fmt.Errorf("get conversation %s: %w", id, err)
	}

	var conv models.Conversation
	if err = json.Unmarshal(data, &conv); err != nil {
		return models.Conversation{}, fmt.Errorf("unmarshal conversation %s: %w", id, err)
	}
	return conv, nil
}

// Save writes conv and resets its TTL.
func (r *RedisConversations) Save(ctx context.Context, conv models.Conversation) error {
	if conv.ID == "" {
		return ErrEmptyConversationID
	}
	if conv.UpdatedAt.IsZero() {
		conv.UpdatedAt = r.now()
	}
	data, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("marshal conversation %s: %w", conv.ID, err)
	}
	if err = r.redis.Set(ctx, conversationKey(conv.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save conversation %s: %w", conv.ID, err)
	}
	return nil
}

// Ping checks the connection to Redis.
func (r *RedisConversations) Ping(ctx context.Context) error {
	return r.redis.Ping(ctx).Err()
}

func conversationKey(id string) string {
	return conversationKeyPrefix + id
}
