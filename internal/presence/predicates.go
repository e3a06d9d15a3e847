package presence

import (
	"fmt"
	"math"
	"time"

	"github.com/EDU-PR/edudash-presence/internal/models"
)

// IsOnline reports whether a record should display as online at time now.
// A missing or offline record is never online. Otherwise the record's age
// is held against a status-dependent grace period: a short one for online
// users (a few missed heartbeats), a long one for away users, who may be
// unable to heartbeat at all while the OS keeps them backgrounded.
func IsOnline(rec *models.Presence, now time.Time, onlineGrace, awayGrace time.Duration) bool {
	if rec == nil || rec.Status == string(models.StatusOffline) || rec.Status == "" {
		return false
	}

	grace := onlineGrace
	if rec.Status == string(models.StatusAway) {
		grace = awayGrace
	}
	return now.Sub(rec.LastSeenAt) <= grace
}

// LastSeenText renders a record as display text: "Online" while the online
// predicate holds, otherwise the elapsed time since last_seen_at in human
// buckets, falling back to a calendar date after a week.
func LastSeenText(rec *models.Presence, now time.Time, onlineGrace, awayGrace time.Duration) string {
	if rec == nil || rec.LastSeenAt.IsZero() {
		return "Offline"
	}
	if IsOnline(rec, now, onlineGrace, awayGrace) {
		return "Online"
	}

	elapsed := now.Sub(rec.LastSeenAt)
	if mins := int(elapsed.Minutes()); mins < 1 {
		return "Just now"
	} else if mins < 60 {
		return fmt.Sprintf("%d min ago", mins)
	}

	if elapsed < 24*time.Hour {
		hours := int(math.Round(elapsed.Minutes() / 60))
		return fmt.Sprintf("%dh ago", hours)
	}

	days := int(elapsed.Hours() / 24)
	if days == 1 {
		return "Yesterday"
	}
	if days < 7 {
		return fmt.Sprintf("%d days ago", days)
	}
	return rec.LastSeenAt.Format("Jan 2, 2006")
}
