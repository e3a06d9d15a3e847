package repositories

import (
	"context"

	"github.com/EDU-PR/edudash-presence/internal/models"
	"github.com/google/uuid"
)

type PresenceRepository interface {
	// UpsertPresence replaces the user's row, stamping last_seen_at
	// server-side. inserted reports whether the row was newly created.
	UpsertPresence(ctx context.Context, userID uuid.UUID, status models.PresenceStatus) (*models.Presence, bool, error)
	// GetPresence returns the user's row; a missing row comes back as an
	// offline record with a zero LastSeenAt, not an error.
	GetPresence(ctx context.Context, userID uuid.UUID) (*models.Presence, error)
	// LoadAllPresence returns every presence row. A store that has not
	// been provisioned yet yields zero rows, not an error.
	LoadAllPresence(ctx context.Context) ([]models.Presence, error)
	DeletePresence(ctx context.Context, userID uuid.UUID) (*models.Presence, error)
}

type BadgeRepository interface {
	Increment(ctx context.Context, userID uuid.UUID) (int64, error)
	Count(ctx context.Context, userID uuid.UUID) (int64, error)
	Reset(ctx context.Context, userID uuid.UUID) error
}
