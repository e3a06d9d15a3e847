package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const badgeKeyPrefix = "badge:"

type RedisBadgeRepository struct {
	client *redis.Client
}

func NewRedisBadgeRepository(client *redis.Client) *RedisBadgeRepository {
	return &RedisBadgeRepository{client: client}
}

func (r *RedisBadgeRepository) Increment(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := r.client.Incr(ctx, badgeKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment badge count: %w", err)
	}
	return count, nil
}

func (r *RedisBadgeRepository) Count(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := r.client.Get(ctx, badgeKey(userID)).Int64()
	if err == redis.Nil {
		// No key = no unread notifications
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get badge count: %w", err)
	}
	return count, nil
}

func (r *RedisBadgeRepository) Reset(ctx context.Context, userID uuid.UUID) error {
	if err := r.client.Del(ctx, badgeKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to reset badge count: %w", err)
	}
	return nil
}

// Helper: build Redis key for a user's badge count
func badgeKey(userID uuid.UUID) string {
	return badgeKeyPrefix + userID.String()
}
