package feed

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/EDU-PR/edudash-presence/internal/models"
)

type MockFeed struct {
	mock.Mock
}

func (m *MockFeed) Publish(ctx context.Context, event models.PresenceEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockFeed) Subscribe(ctx context.Context, fn Handler) (Handle, error) {
	args := m.Called(ctx, fn)
	var handle Handle
	if args.Get(0) != nil {
		handle = args.Get(0).(Handle)
	}
	return handle, args.Error(1)
}

type MockHandle struct {
	mock.Mock
}

func (m *MockHandle) Unsubscribe() error {
	args := m.Called()
	return args.Error(0)
}
