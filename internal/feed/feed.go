package feed

import (
	"context"

	"github.com/EDU-PR/edudash-presence/internal/models"
)

// Handler receives one change event from the presence feed. Delivery is
// at-least-once and unordered; a missed event is corrected by the next
// event or a full reload.
type Handler func(event models.PresenceEvent)

// Handle is an active subscription.
type Handle interface {
	Unsubscribe() error
}

// Feed fans presence change events out to every subscribed client. The
// underlying transport owns reconnection and backoff; callers never see it.
type Feed interface {
	Publish(ctx context.Context, event models.PresenceEvent) error
	Subscribe(ctx context.Context, fn Handler) (Handle, error)
}
