package message

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Publisher pushes new-message events to connected clients
type Publisher interface {
	PublishNewMessage(ctx context.Context, msg *Message) error
}

// Event is the payload published for each new direct message
type Event struct {
	Type    string   `json:"type"`
	Message *Message `json:"message"`
}

// RedisPublisher publishes events on a per-recipient channel
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher returns nil when client is nil so publishing is skipped
func NewRedisPublisher(client *redis.Client) Publisher {
	if client == nil {
		return nil
	}
	return &RedisPublisher{client: client}
}

// Channel returns the Redis channel for a recipient
func Channel(userID int64) string {
	return fmt.Sprintf("messages:user:%d", userID)
}

func (p *RedisPublisher) PublishNewMessage(ctx context.Context, msg *Message) error {
	payload, err := json.Marshal(Event{Type: "new_message", Message: msg})
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, Channel(msg.ReceiverID), payload).Err()
}
