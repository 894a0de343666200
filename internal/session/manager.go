package session

import (
	"context"
	"sync"
	"time"

	"github.com/GauthierNelkinsky/shipshipship-template-default/internal/api"
	"github.com/GauthierNelkinsky/shipshipship-template-default/internal/feed"
	"github.com/GauthierNelkinsky/shipshipship-template-default/internal/feedback"
	"github.com/GauthierNelkinsky/shipshipship-template-default/internal/store"
	"github.com/GauthierNelkinsky/shipshipship-template-default/internal/vote"
)

const (
	idleTimeout     = 30 * time.Minute
	cleanupInterval = time.Minute
)

// Session is one visitor's page instance: their vote controller and
// feedback guard. Vote membership lives only for the session; the
// feedback rate-limit record persists in the store across sessions.
type Session struct {
	Votes    *vote.Controller
	Feedback *feedback.Guard
}

type sessionEntry struct {
	session  *Session
	lastSeen time.Time
}

// Manager hands out per-visitor sessions and evicts idle ones.
type Manager struct {
	client *api.Client
	store  store.Store
	loader *feed.Loader

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

func NewManager(client *api.Client, st store.Store, loader *feed.Loader) *Manager {
	m := &Manager{
		client:   client,
		store:    st,
		loader:   loader,
		sessions: make(map[string]*sessionEntry),
	}

	// Evict idle sessions every minute
	go m.cleanup()

	return m
}

func (m *Manager) cleanup() {
	for {
		time.Sleep(cleanupInterval)
		m.mu.Lock()
		for id, entry := range m.sessions {
			if time.Since(entry.lastSeen) > idleTimeout {
				delete(m.sessions, id)
			}
		}
		m.mu.Unlock()
	}
}

// Get returns the visitor's session, creating it on first use. Creating
// a session anchors the feedback guard's formStartTime, the page
// instance's dwell-time clock.
func (m *Manager) Get(ctx context.Context, visitorID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry, ok := m.sessions[visitorID]; ok {
		entry.lastSeen = time.Now()
		return entry.session
	}

	sess := &Session{
		Votes: vote.NewController(m.client, visitorID, m.loader.ApplyVote),
		Feedback: feedback.NewGuard(ctx, m.client, m.store, visitorID, func(ctx context.Context) {
			// Feedback may surface as a new backlog item. A failed
			// refresh is not the submitter's problem; the next page
			// load retries anyway.
			m.loader.Invalidate()
			_, _ = m.loader.Load(ctx)
		}),
	}
	m.sessions[visitorID] = &sessionEntry{session: sess, lastSeen: time.Now()}
	return sess
}

// Len reports the number of live sessions (health/metrics).
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
