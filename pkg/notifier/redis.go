package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// envelope is the wire format published to the notification channel
type envelope struct {
	RecipientID string                 `json:"recipient_id"`
	Event       EventType              `json:"event"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
	SentAt      time.Time              `json:"sent_at"`
}

// RedisNotifier publishes events to a redis channel consumed by the
// delivery workers (push/SMS live outside this service)
type RedisNotifier struct {
	client  *redis.Client
	channel string
}

// NewRedisNotifier connects to redis and returns a publishing Notifier
func NewRedisNotifier(addr, channel string) (*RedisNotifier, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisNotifier{client: client, channel: channel}, nil
}

// Notify implements Notifier
func (n *RedisNotifier) Notify(ctx context.Context, recipientID string, event EventType, payload map[string]interface{}) error {
	body, err := json.Marshal(envelope{
		RecipientID: recipientID,
		Event:       event,
		Payload:     payload,
		SentAt:      time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	if err := n.client.Publish(ctx, n.channel, body).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	return nil
}

// Close releases the redis connection
func (n *RedisNotifier) Close() error {
	return n.client.Close()
}
