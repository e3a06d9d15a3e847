package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/EDU-PR/edudash-presence/internal/models"
	"github.com/EDU-PR/edudash-presence/internal/presence"
	"github.com/EDU-PR/edudash-presence/internal/services"
)

type setPresenceRequest struct {
	Status string `json:"status"`
}

type presenceResponse struct {
	models.Presence
	Online       bool   `json:"online"`
	LastSeenText string `json:"last_seen_text"`
}

type badgeResponse struct {
	Count int64 `json:"count"`
	Glow  bool  `json:"glow"`
}

type incrementBadgeRequest struct {
	UserID uuid.UUID `json:"user_id"`
}

func (s *Server) setPresence(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		s.writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req setPresenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := s.presence.SetStatus(r.Context(), userID, models.PresenceStatus(req.Status))
	if errors.Is(err, services.ErrInvalidStatus) {
		s.writeError(w, http.StatusBadRequest, "invalid presence status")
		return
	}
	if err != nil {
		s.log.Printf("failed to set presence: %v", err)
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.writeJSON(w, http.StatusOK, record)
}

func (s *Server) listPresence(w http.ResponseWriter, r *http.Request) {
	records, err := s.presence.ListPresence(r.Context())
	if err != nil {
		s.log.Printf("failed to list presence: %v", err)
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if records == nil {
		records = []models.Presence{}
	}
	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) getPresence(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	record, err := s.presence.GetPresence(r.Context(), userID)
	if err != nil {
		s.log.Printf("failed to get presence: %v", err)
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	now := time.Now()
	s.writeJSON(w, http.StatusOK, presenceResponse{
		Presence:     *record,
		Online:       presence.IsOnline(record, now, s.cfg.OnlineGracePeriod, s.cfg.AwayGracePeriod),
		LastSeenText: presence.LastSeenText(record, now, s.cfg.OnlineGracePeriod, s.cfg.AwayGracePeriod),
	})
}

func (s *Server) deletePresence(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		s.writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := s.presence.Disconnect(r.Context(), userID); err != nil {
		s.log.Printf("failed to disconnect presence: %v", err)
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getBadge(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		s.writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	count, err := s.badges.Count(r.Context(), userID)
	if err != nil {
		s.log.Printf("failed to get badge count: %v", err)
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.writeJSON(w, http.StatusOK, badgeResponse{Count: count, Glow: count > 0})
}

// incrementBadge bumps the target user's badge. Callers are notification
// producers (messaging, announcements); the bump is queued and the response
// does not wait for persistence.
func (s *Server) incrementBadge(w http.ResponseWriter, r *http.Request) {
	var req incrementBadgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == uuid.Nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.badges.Increment(req.UserID)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) clearBadge(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		s.writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := s.badges.Clear(r.Context(), userID); err != nil {
		s.log.Printf("failed to clear badge: %v", err)
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
