package repositories

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EDU-PR/edudash-presence/internal/models"
)

// getTestPool connects to the database named by TEST_DATABASE_URL and
// provisions the presence table, skipping the test when unset.
func getTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err, "Failed to connect to test database")
	t.Cleanup(pool.Close)

	_, err = pool.Exec(context.Background(), `
		CREATE TABLE IF NOT EXISTS user_presence (
			user_id UUID PRIMARY KEY,
			status TEXT NOT NULL CHECK (status IN ('online', 'away', 'offline')),
			last_seen_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	require.NoError(t, err, "Failed to provision presence table")

	return pool
}

func TestPresenceRepository_UpsertLastWriteWins(t *testing.T) {
	pool := getTestPool(t)
	repo := NewPostgresPresenceRepository(pool)
	ctx := context.Background()
	userID := uuid.New()

	first, inserted, err := repo.UpsertPresence(ctx, userID, models.StatusOnline)
	require.NoError(t, err)
	assert.True(t, inserted, "first write should create the row")
	assert.Equal(t, string(models.StatusOnline), first.Status)

	second, inserted, err := repo.UpsertPresence(ctx, userID, models.StatusAway)
	require.NoError(t, err)
	assert.False(t, inserted, "second write should replace the row")
	assert.Equal(t, string(models.StatusAway), second.Status)
	assert.False(t, second.LastSeenAt.Before(first.LastSeenAt), "last_seen_at should track the latest write")

	// Only the last write survives
	got, err := repo.GetPresence(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, string(models.StatusAway), got.Status)

	_, err = repo.DeletePresence(ctx, userID)
	require.NoError(t, err)
}

func TestPresenceRepository_GetMissingUserIsOffline(t *testing.T) {
	pool := getTestPool(t)
	repo := NewPostgresPresenceRepository(pool)

	got, err := repo.GetPresence(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, string(models.StatusOffline), got.Status)
	assert.True(t, got.LastSeenAt.IsZero(), "missing row should carry a zero timestamp")
}

func TestPresenceRepository_LoadAllIncludesUpserted(t *testing.T) {
	pool := getTestPool(t)
	repo := NewPostgresPresenceRepository(pool)
	ctx := context.Background()
	userID := uuid.New()

	_, _, err := repo.UpsertPresence(ctx, userID, models.StatusOnline)
	require.NoError(t, err)
	defer repo.DeletePresence(ctx, userID)

	records, err := repo.LoadAllPresence(ctx)
	require.NoError(t, err)

	var found bool
	for _, rec := range records {
		if rec.UserID == userID {
			found = true
		}
	}
	assert.True(t, found, "load-all should include the upserted row")
}

func TestPresenceRepository_DeleteMissingRow(t *testing.T) {
	pool := getTestPool(t)
	repo := NewPostgresPresenceRepository(pool)

	_, err := repo.DeletePresence(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
