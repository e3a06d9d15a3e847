package api

import (
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/EDU-PR/edudash-presence/internal/badge"
	"github.com/EDU-PR/edudash-presence/internal/config"
	"github.com/EDU-PR/edudash-presence/internal/feed"
	"github.com/EDU-PR/edudash-presence/internal/models"
	"github.com/EDU-PR/edudash-presence/internal/repositories"
	"github.com/EDU-PR/edudash-presence/internal/services"
)

type testEnv struct {
	server       *httptest.Server
	tokens       *services.TokenService
	presenceRepo *repositories.MockPresenceRepository
	badgeRepo    *repositories.MockBadgeRepository
	feed         *feed.MockFeed
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := log.New(io.Discard, "", 0)
	presenceRepo := &repositories.MockPresenceRepository{}
	badgeRepo := &repositories.MockBadgeRepository{}
	mockFeed := &feed.MockFeed{}

	tokens := services.NewTokenService("test-secret", time.Hour)
	presenceService := services.NewPresenceService(presenceRepo, mockFeed, logger)

	badgeManager := badge.NewManager(badgeRepo, logger)
	badgeManager.Run()
	t.Cleanup(badgeManager.Stop)

	cfg := &config.Config{
		OnlineGracePeriod: config.DefaultOnlineGracePeriod,
		AwayGracePeriod:   config.DefaultAwayGracePeriod,
	}

	s := NewServer(logger, presenceService, tokens, badgeManager, cfg)
	router := chi.NewRouter()
	router.Mount("/api", s.Routes())

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testEnv{
		server:       server,
		tokens:       tokens,
		presenceRepo: presenceRepo,
		badgeRepo:    badgeRepo,
		feed:         mockFeed,
	}
}

func (e *testEnv) request(t *testing.T, method, path, body string, userID uuid.UUID) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, e.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)

	if userID != uuid.Nil {
		token, _, err := e.tokens.IssueToken(userID)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestAPI_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, http.MethodGet, "/api/presence", "", uuid.Nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_SetPresenceWritesOwnRow(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()
	record := &models.Presence{UserID: userID, Status: string(models.StatusOnline), LastSeenAt: time.Now()}

	// The upsert must be keyed by the authenticated user, not anything in
	// the request body.
	env.presenceRepo.On("UpsertPresence", mock.Anything, userID, models.StatusOnline).Return(record, true, nil)
	env.feed.On("Publish", mock.Anything, mock.Anything).Return(nil)

	resp := env.request(t, http.MethodPut, "/api/presence", `{"status":"online"}`, userID)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	env.presenceRepo.AssertExpectations(t)
}

func TestAPI_SetPresenceInvalidStatus(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, http.MethodPut, "/api/presence", `{"status":"busy"}`, uuid.New())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_ListPresence(t *testing.T) {
	env := newTestEnv(t)
	records := []models.Presence{
		{UserID: uuid.New(), Status: string(models.StatusOnline), LastSeenAt: time.Now()},
		{UserID: uuid.New(), Status: string(models.StatusAway), LastSeenAt: time.Now()},
	}
	env.presenceRepo.On("LoadAllPresence", mock.Anything).Return(records, nil)

	resp := env.request(t, http.MethodGet, "/api/presence", "", uuid.New())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), records[0].UserID.String())
	assert.Contains(t, string(body), records[1].UserID.String())
}

func TestAPI_GetPresenceDerivedFields(t *testing.T) {
	env := newTestEnv(t)
	target := uuid.New()
	record := &models.Presence{UserID: target, Status: string(models.StatusOnline), LastSeenAt: time.Now()}
	env.presenceRepo.On("GetPresence", mock.Anything, target).Return(record, nil)

	resp := env.request(t, http.MethodGet, "/api/presence/"+target.String(), "", uuid.New())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"online":true`)
	assert.Contains(t, string(body), `"last_seen_text":"Online"`)
}

func TestAPI_GetPresenceInvalidID(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, http.MethodGet, "/api/presence/not-a-uuid", "", uuid.New())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_DeletePresence(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()
	record := &models.Presence{UserID: userID, Status: string(models.StatusOnline), LastSeenAt: time.Now()}

	env.presenceRepo.On("DeletePresence", mock.Anything, userID).Return(record, nil)
	env.feed.On("Publish", mock.Anything, mock.Anything).Return(nil)

	resp := env.request(t, http.MethodDelete, "/api/presence", "", userID)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestAPI_GetBadge(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()
	env.badgeRepo.On("Count", mock.Anything, userID).Return(int64(4), nil)

	resp := env.request(t, http.MethodGet, "/api/badge", "", userID)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"count":4`)
	assert.Contains(t, string(body), `"glow":true`)
}

func TestAPI_IncrementBadgeAccepted(t *testing.T) {
	env := newTestEnv(t)
	target := uuid.New()
	env.badgeRepo.On("Increment", mock.Anything, target).Return(int64(1), nil)

	resp := env.request(t, http.MethodPost, "/api/badge/increment", `{"user_id":"`+target.String()+`"}`, uuid.New())
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
}

func TestAPI_ClearBadge(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()
	env.badgeRepo.On("Reset", mock.Anything, userID).Return(nil)

	resp := env.request(t, http.MethodPost, "/api/badge/clear", "", userID)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
