package presence

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/EDU-PR/edudash-presence/internal/config"
	"github.com/EDU-PR/edudash-presence/internal/feed"
	"github.com/EDU-PR/edudash-presence/internal/models"
)

// AppState is the host runtime's lifecycle signal.
type AppState string

const (
	AppStateActive     AppState = "active"
	AppStateBackground AppState = "background"
	AppStateInactive   AppState = "inactive"
)

// Store is the tracker's view of the shared presence table. Every write is
// an idempotent last-write-wins replace of the caller's own row.
type Store interface {
	UpsertPresence(ctx context.Context, userID uuid.UUID, status models.PresenceStatus) (*models.Presence, bool, error)
	LoadAllPresence(ctx context.Context) ([]models.Presence, error)
}

// Subscriber is the subscribe half of the change feed.
type Subscriber interface {
	Subscribe(ctx context.Context, fn feed.Handler) (feed.Handle, error)
}

type Options struct {
	HeartbeatInterval      time.Duration
	AwayTimeout            time.Duration
	OnlineGracePeriod      time.Duration
	AwayGracePeriod        time.Duration
	BackgroundWriteTimeout time.Duration
	WriteTimeout           time.Duration
}

func (o *Options) applyDefaults() {
	if o.HeartbeatInterval <= 0 {
		o.HeartbeatInterval = config.DefaultHeartbeatInterval
	}
	if o.AwayTimeout <= 0 {
		o.AwayTimeout = config.DefaultAwayTimeout
	}
	if o.OnlineGracePeriod <= 0 {
		o.OnlineGracePeriod = config.DefaultOnlineGracePeriod
	}
	if o.AwayGracePeriod <= 0 {
		o.AwayGracePeriod = config.DefaultAwayGracePeriod
	}
	if o.BackgroundWriteTimeout <= 0 {
		o.BackgroundWriteTimeout = config.DefaultBackgroundWriteTimeout
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = config.DefaultWriteTimeout
	}
}

// Tracker is the per-device presence state machine. Lifecycle signals and a
// heartbeat ticker drive status transitions; every transition writes through
// to the store, and a feed subscription keeps the local snapshot of all
// users current. Presence is best-effort throughout: a failed write degrades
// to a local-only state change and is never surfaced to the caller.
type Tracker struct {
	userID uuid.UUID
	store  Store
	feed   Subscriber
	logger *log.Logger
	opts   Options

	now func() time.Time

	mu           sync.Mutex
	myStatus     models.PresenceStatus
	foreground   bool
	lastActivity time.Time
	online       map[uuid.UUID]models.Presence

	handle feed.Handle
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewTracker(userID uuid.UUID, store Store, fd Subscriber, logger *log.Logger, opts Options) *Tracker {
	opts.applyDefaults()
	if logger == nil {
		logger = log.Default()
	}
	return &Tracker{
		userID:   userID,
		store:    store,
		feed:     fd,
		logger:   logger,
		opts:     opts,
		now:      time.Now,
		myStatus: models.StatusOffline,
		online:   make(map[uuid.UUID]models.Presence),
	}
}

// Start subscribes to the change feed, hydrates the local snapshot and
// begins the heartbeat. A failed subscription or hydration only logs:
// presence degrades to "temporarily unknown," it never fails the session.
func (t *Tracker) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	handle, err := t.feed.Subscribe(ctx, t.applyEvent)
	if err != nil {
		t.logger.Printf("warning: presence feed subscription failed: %v", err)
	} else {
		t.handle = handle
	}

	t.reload(ctx)

	t.wg.Add(1)
	go t.heartbeatLoop(ctx)
}

// Stop tears the session down: best-effort final offline write, then
// unsubscribe. The write shares the background deadline; the process may
// already be exiting and must not wait indefinitely.
func (t *Tracker) Stop() {
	if t.cancel != nil {
		t.cancel()
	}

	if t.handle != nil {
		if err := t.handle.Unsubscribe(); err != nil {
			t.logger.Printf("warning: presence feed unsubscribe failed: %v", err)
		}
		t.handle = nil
	}

	// Let in-flight writes finish (each is bounded by its own deadline) so
	// the final offline write is the last one out.
	t.wg.Wait()

	t.mu.Lock()
	t.myStatus = models.StatusOffline
	t.foreground = false
	t.mu.Unlock()

	// Fresh context: the session context is already canceled.
	t.writeThrough(context.Background(), models.StatusOffline, t.opts.BackgroundWriteTimeout)
}

// SetAppState applies a host-lifecycle transition. Foregrounding goes
// online, re-arms the inactivity timer and refreshes the snapshot.
// Backgrounding goes away with a hard write deadline: the OS can suspend
// the process within a second or two, and a write that misses the window
// is dropped rather than retried.
func (t *Tracker) SetAppState(ctx context.Context, state AppState) {
	switch state {
	case AppStateActive:
		t.mu.Lock()
		t.foreground = true
		t.myStatus = models.StatusOnline
		t.lastActivity = t.now()
		t.mu.Unlock()

		t.writeThroughAsync(ctx, models.StatusOnline, t.opts.WriteTimeout)
		t.wg.Add(1)
		go func() {
			defer t.wg.Done()
			t.reload(ctx)
		}()
	case AppStateBackground, AppStateInactive:
		t.mu.Lock()
		t.foreground = false
		t.myStatus = models.StatusAway
		t.mu.Unlock()

		t.writeThroughAsync(ctx, models.StatusAway, t.opts.BackgroundWriteTimeout)
	}
}

// RecordActivity defers the inactivity-driven away transition. It does not
// change status; returning to online takes a foreground transition.
func (t *Tracker) RecordActivity() {
	t.mu.Lock()
	t.lastActivity = t.now()
	t.mu.Unlock()
}

func (t *Tracker) MyStatus() models.PresenceStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.myStatus
}

// Snapshot returns a copy of the last-known presence of every observed user.
func (t *Tracker) Snapshot() map[uuid.UUID]models.Presence {
	t.mu.Lock()
	defer t.mu.Unlock()
	snapshot := make(map[uuid.UUID]models.Presence, len(t.online))
	for id, rec := range t.online {
		snapshot[id] = rec
	}
	return snapshot
}

func (t *Tracker) IsOnline(userID uuid.UUID) bool {
	t.mu.Lock()
	rec, ok := t.online[userID]
	t.mu.Unlock()
	if !ok {
		return false
	}
	return IsOnline(&rec, t.now(), t.opts.OnlineGracePeriod, t.opts.AwayGracePeriod)
}

func (t *Tracker) LastSeenText(userID uuid.UUID) string {
	t.mu.Lock()
	rec, ok := t.online[userID]
	t.mu.Unlock()
	if !ok {
		return "Offline"
	}
	return LastSeenText(&rec, t.now(), t.opts.OnlineGracePeriod, t.opts.AwayGracePeriod)
}

func (t *Tracker) heartbeatLoop(ctx context.Context) {
	defer t.wg.Done()
	ticker := time.NewTicker(t.opts.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.heartbeat(ctx)
		}
	}
}

// heartbeat re-asserts presence while the app is foregrounded, demoting to
// away after the inactivity timeout. A backgrounded heartbeat performs no
// write at all: the background transition already carried its own.
func (t *Tracker) heartbeat(ctx context.Context) {
	t.mu.Lock()
	if !t.foreground {
		t.mu.Unlock()
		return
	}
	if t.now().Sub(t.lastActivity) > t.opts.AwayTimeout {
		t.myStatus = models.StatusAway
	}
	status := t.myStatus
	t.mu.Unlock()

	t.writeThrough(ctx, status, t.opts.WriteTimeout)
}

// applyEvent folds one feed event into the local snapshot. Entries are only
// removed on explicit deletes; a stale entry ages out of the online
// predicate via its timestamp.
func (t *Tracker) applyEvent(event models.PresenceEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch event.Type {
	case models.EventDelete:
		delete(t.online, event.Record.UserID)
	case models.EventInsert, models.EventUpdate:
		t.online[event.Record.UserID] = event.Record
	}
}

// reload merges the full remote table into the snapshot. Errors (including
// a not-yet-provisioned store) degrade to keeping whatever is already held.
func (t *Tracker) reload(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, t.opts.WriteTimeout)
	defer cancel()

	records, err := t.store.LoadAllPresence(ctx)
	if err != nil {
		t.logger.Printf("warning: presence reload failed: %v", err)
		return
	}

	t.mu.Lock()
	for _, rec := range records {
		t.online[rec.UserID] = rec
	}
	t.mu.Unlock()
}

func (t *Tracker) writeThroughAsync(ctx context.Context, status models.PresenceStatus, timeout time.Duration) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		t.writeThrough(ctx, status, timeout)
	}()
}

func (t *Tracker) writeThrough(ctx context.Context, status models.PresenceStatus, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if _, _, err := t.store.UpsertPresence(ctx, t.userID, status); err != nil {
		t.logger.Printf("warning: presence write-through (%s) failed: %v", status, err)
	}
}
