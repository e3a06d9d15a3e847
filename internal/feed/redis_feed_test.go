package feed

import (
	"context"
	"io"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EDU-PR/edudash-presence/internal/models"
)

func getTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	opts, err := redis.ParseURL(url)
	require.NoError(t, err)

	client := redis.NewClient(opts)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisFeed_PublishSubscribeRoundTrip(t *testing.T) {
	fd := NewRedisFeed(getTestRedis(t), log.New(io.Discard, "", 0))
	ctx := context.Background()

	var mu sync.Mutex
	var received []models.PresenceEvent
	handle, err := fd.Subscribe(ctx, func(event models.PresenceEvent) {
		mu.Lock()
		received = append(received, event)
		mu.Unlock()
	})
	require.NoError(t, err)
	defer handle.Unsubscribe()

	event := models.PresenceEvent{
		Type: models.EventInsert,
		Record: models.Presence{
			UserID:     uuid.New(),
			Status:     string(models.StatusOnline),
			LastSeenAt: time.Now().UTC().Truncate(time.Millisecond),
		},
	}
	require.NoError(t, fd.Publish(ctx, event))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, got := range received {
			if got.Record.UserID == event.Record.UserID {
				return got.Type == models.EventInsert &&
					got.Record.Status == event.Record.Status
			}
		}
		return false
	}, 5*time.Second, 50*time.Millisecond, "published event should reach the subscriber")
}

func TestRedisFeed_UnsubscribeStopsDelivery(t *testing.T) {
	fd := NewRedisFeed(getTestRedis(t), log.New(io.Discard, "", 0))
	ctx := context.Background()

	handle, err := fd.Subscribe(ctx, func(models.PresenceEvent) {})
	require.NoError(t, err)

	assert.NoError(t, handle.Unsubscribe())
}
