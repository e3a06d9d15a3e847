package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/EDU-PR/edudash-presence/internal/models"
)

var ErrNotFound = errors.New("not found")

// SQLSTATE for a relation that does not exist. Seen when the presence
// table has not been provisioned yet; reads treat it as an empty table.
const undefinedTableCode = "42P01"

type PostgresPresenceRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresPresenceRepository(pool *pgxpool.Pool) *PostgresPresenceRepository {
	return &PostgresPresenceRepository{pool: pool}
}

// UpsertPresence creates or replaces the user's presence row. The write is
// a full replace keyed by user_id with last_seen_at stamped by the server,
// so repeated writes are idempotent and the last one wins.
func (r *PostgresPresenceRepository) UpsertPresence(ctx context.Context, userID uuid.UUID, status models.PresenceStatus) (*models.Presence, bool, error) {
	query := `INSERT INTO user_presence (user_id, status, last_seen_at)
	          VALUES ($1, $2, NOW())
	          ON CONFLICT (user_id) DO UPDATE
	          SET status = EXCLUDED.status, last_seen_at = NOW()
	          RETURNING user_id, status, last_seen_at, (xmax = 0) AS inserted`

	var presence models.Presence
	var inserted bool
	err := r.pool.QueryRow(ctx, query, userID, string(status)).Scan(
		&presence.UserID,
		&presence.Status,
		&presence.LastSeenAt,
		&inserted,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert presence: %w", err)
	}
	return &presence, inserted, nil
}

func (r *PostgresPresenceRepository) GetPresence(ctx context.Context, userID uuid.UUID) (*models.Presence, error) {
	query := `SELECT user_id, status, last_seen_at FROM user_presence WHERE user_id = $1`

	var presence models.Presence
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&presence.UserID,
		&presence.Status,
		&presence.LastSeenAt,
	)
	if errors.Is(err, pgx.ErrNoRows) || isUndefinedTable(err) {
		// No row = user is offline
		return &models.Presence{
			UserID:     userID,
			Status:     string(models.StatusOffline),
			LastSeenAt: time.Time{}, // Zero time indicates unknown
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get presence: %w", err)
	}
	return &presence, nil
}

func (r *PostgresPresenceRepository) LoadAllPresence(ctx context.Context) ([]models.Presence, error) {
	query := `SELECT user_id, status, last_seen_at FROM user_presence`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		if isUndefinedTable(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query presence: %w", err)
	}
	defer rows.Close()

	var records []models.Presence
	for rows.Next() {
		var presence models.Presence
		if err := rows.Scan(&presence.UserID, &presence.Status, &presence.LastSeenAt); err != nil {
			return nil, fmt.Errorf("failed to scan presence: %w", err)
		}
		records = append(records, presence)
	}

	if err := rows.Err(); err != nil {
		if isUndefinedTable(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("error iterating presence: %w", err)
	}

	return records, nil
}

func (r *PostgresPresenceRepository) DeletePresence(ctx context.Context, userID uuid.UUID) (*models.Presence, error) {
	query := `DELETE FROM user_presence
	          WHERE user_id = $1
	          RETURNING user_id, status, last_seen_at`

	var presence models.Presence
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&presence.UserID,
		&presence.Status,
		&presence.LastSeenAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete presence: %w", err)
	}
	return &presence, nil
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == undefinedTableCode
}
