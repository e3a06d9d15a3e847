package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/EDU-PR/edudash-presence/internal/models"
)

const presenceChannel = "presence:changes"

type RedisFeed struct {
	client *redis.Client
	logger *log.Logger
}

func NewRedisFeed(client *redis.Client, logger *log.Logger) *RedisFeed {
	return &RedisFeed{client: client, logger: logger}
}

func (f *RedisFeed) Publish(ctx context.Context, event models.PresenceEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal presence event: %w", err)
	}

	if err := f.client.Publish(ctx, presenceChannel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish presence event: %w", err)
	}
	return nil
}

func (f *RedisFeed) Subscribe(ctx context.Context, fn Handler) (Handle, error) {
	sub := f.client.Subscribe(ctx, presenceChannel)

	// Confirm the subscription is established before returning so events
	// published after Subscribe are not missed.
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", presenceChannel, err)
	}

	go func() {
		for msg := range sub.Channel() {
			var event models.PresenceEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				f.logger.Printf("warning: dropping malformed presence event: %v", err)
				continue
			}
			fn(event)
		}
	}()

	return &redisHandle{sub: sub}, nil
}

type redisHandle struct {
	sub *redis.PubSub
}

// Unsubscribe closes the subscription and ends the delivery goroutine.
func (h *redisHandle) Unsubscribe() error {
	return h.sub.Close()
}
