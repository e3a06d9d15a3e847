package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/EDU-PR/edudash-presence/internal/models"
)

type MockPresenceRepository struct {
	mock.Mock
}

func (m *MockPresenceRepository) UpsertPresence(ctx context.Context, userID uuid.UUID, status models.PresenceStatus) (*models.Presence, bool, error) {
	args := m.Called(ctx, userID, status)
	var record *models.Presence
	if args.Get(0) != nil {
		record = args.Get(0).(*models.Presence)
	}
	return record, args.Bool(1), args.Error(2)
}

func (m *MockPresenceRepository) GetPresence(ctx context.Context, userID uuid.UUID) (*models.Presence, error) {
	args := m.Called(ctx, userID)
	var record *models.Presence
	if args.Get(0) != nil {
		record = args.Get(0).(*models.Presence)
	}
	return record, args.Error(1)
}

func (m *MockPresenceRepository) LoadAllPresence(ctx context.Context) ([]models.Presence, error) {
	args := m.Called(ctx)
	var records []models.Presence
	if args.Get(0) != nil {
		records = args.Get(0).([]models.Presence)
	}
	return records, args.Error(1)
}

func (m *MockPresenceRepository) DeletePresence(ctx context.Context, userID uuid.UUID) (*models.Presence, error) {
	args := m.Called(ctx, userID)
	var record *models.Presence
	if args.Get(0) != nil {
		record = args.Get(0).(*models.Presence)
	}
	return record, args.Error(1)
}

type MockBadgeRepository struct {
	mock.Mock
}

func (m *MockBadgeRepository) Increment(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBadgeRepository) Count(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBadgeRepository) Reset(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
