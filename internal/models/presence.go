package models

import (
	"time"

	"github.com/google/uuid"
)

type Presence struct {
	UserID     uuid.UUID `json:"user_id"`
	Status     string    `json:"status"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

type PresenceStatus string

const (
	StatusOnline  PresenceStatus = "online"
	StatusOffline PresenceStatus = "offline"
	StatusAway    PresenceStatus = "away"
)

// ValidStatus reports whether s is one of the three presence states.
func ValidStatus(s string) bool {
	switch PresenceStatus(s) {
	case StatusOnline, StatusAway, StatusOffline:
		return true
	}
	return false
}
