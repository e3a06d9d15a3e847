// Package badge tracks per-user notification badge counts. The manager is
// an explicitly constructed, owned object with an injected persistence
// port and a Run/Stop lifecycle, not ambient global state.
package badge

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/EDU-PR/edudash-presence/internal/repositories"
)

const (
	updateQueueSize = 256
	storeTimeout    = 5 * time.Second
)

type Manager struct {
	store  repositories.BadgeRepository
	logger *log.Logger

	updates chan uuid.UUID
	done    chan struct{}
}

func NewManager(store repositories.BadgeRepository, logger *log.Logger) *Manager {
	return &Manager{
		store:   store,
		logger:  logger,
		updates: make(chan uuid.UUID, updateQueueSize),
		done:    make(chan struct{}),
	}
}

// Run starts the background worker that persists queued increments.
func (m *Manager) Run() {
	go m.processUpdates()
}

// Stop drains the queue and stops the worker. Increment must not be called
// after Stop.
func (m *Manager) Stop() {
	close(m.updates)
	<-m.done
}

func (m *Manager) processUpdates() {
	defer close(m.done)
	for userID := range m.updates {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		if _, err := m.store.Increment(ctx, userID); err != nil {
			m.logger.Printf("warning: failed to persist badge increment for %s: %v", userID, err)
		}
		cancel()
	}
}

// Increment queues a badge bump for the user. It never blocks the caller:
// notification handlers run on delivery paths that must not stall, so a
// full queue drops the update instead.
func (m *Manager) Increment(userID uuid.UUID) {
	select {
	case m.updates <- userID:
	default:
		m.logger.Printf("warning: badge update queue full, dropping increment for %s", userID)
	}
}

func (m *Manager) Count(ctx context.Context, userID uuid.UUID) (int64, error) {
	return m.store.Count(ctx, userID)
}

func (m *Manager) Clear(ctx context.Context, userID uuid.UUID) error {
	return m.store.Reset(ctx, userID)
}

// ShouldGlow reports whether the user's badge should draw attention. A
// store error reads as no glow rather than failing the caller.
func (m *Manager) ShouldGlow(ctx context.Context, userID uuid.UUID) bool {
	count, err := m.store.Count(ctx, userID)
	if err != nil {
		m.logger.Printf("warning: failed to get badge count for %s: %v", userID, err)
		return false
	}
	return count > 0
}
