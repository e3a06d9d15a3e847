package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/EDU-PR/edudash-presence/internal/feed"
	"github.com/EDU-PR/edudash-presence/internal/models"
	"github.com/EDU-PR/edudash-presence/internal/repositories"
)

var ErrInvalidStatus = errors.New("invalid presence status")

// PresenceService is the server half of the presence subsystem: it owns the
// shared store and republishes every accepted write onto the change feed,
// which fans it out to all subscribed clients.
type PresenceService struct {
	presenceRepo repositories.PresenceRepository
	feed         feed.Feed
	logger       *log.Logger
}

func NewPresenceService(presenceRepo repositories.PresenceRepository, fd feed.Feed, logger *log.Logger) *PresenceService {
	return &PresenceService{
		presenceRepo: presenceRepo,
		feed:         fd,
		logger:       logger,
	}
}

// SetStatus replaces the user's presence row and publishes the matching
// change event. The event type reflects whether the row was created or
// replaced, as a table-level change feed would report it.
func (s *PresenceService) SetStatus(ctx context.Context, userID uuid.UUID, status models.PresenceStatus) (*models.Presence, error) {
	if !models.ValidStatus(string(status)) {
		return nil, ErrInvalidStatus
	}

	record, inserted, err := s.presenceRepo.UpsertPresence(ctx, userID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert presence: %w", err)
	}

	eventType := models.EventUpdate
	if inserted {
		eventType = models.EventInsert
	}
	s.publish(ctx, models.PresenceEvent{Type: eventType, Record: *record})

	return record, nil
}

func (s *PresenceService) GetPresence(ctx context.Context, userID uuid.UUID) (*models.Presence, error) {
	record, err := s.presenceRepo.GetPresence(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get presence: %w", err)
	}
	return record, nil
}

func (s *PresenceService) ListPresence(ctx context.Context) ([]models.Presence, error) {
	records, err := s.presenceRepo.LoadAllPresence(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load presence: %w", err)
	}
	return records, nil
}

// Disconnect removes the user's row and publishes a delete event so every
// client drops the entry from its local snapshot. Deleting an absent row
// is a no-op.
func (s *PresenceService) Disconnect(ctx context.Context, userID uuid.UUID) error {
	record, err := s.presenceRepo.DeletePresence(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete presence: %w", err)
	}

	s.publish(ctx, models.PresenceEvent{Type: models.EventDelete, Record: *record})
	return nil
}

func (s *PresenceService) publish(ctx context.Context, event models.PresenceEvent) {
	if err := s.feed.Publish(ctx, event); err != nil {
		// Delivery is at-least-once best-effort; a missed event ages out
		// of subscribers through the grace periods or the next reload.
		s.logger.Printf("warning: failed to publish presence event: %v", err)
	}
}
