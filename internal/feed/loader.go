package feed

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/yuin/goldmark"

	"github.com/GauthierNelkinsky/shipshipship-template-default/internal/api"
	"github.com/GauthierNelkinsky/shipshipship-template-default/internal/models"
	"github.com/GauthierNelkinsky/shipshipship-template-default/pkg/logger"
)

// Groups is the presentation-ready partition of the event collection.
// Exactly one bucket per event, API order preserved within each bucket.
type Groups struct {
	Backlog  []models.Event `json:"backlog"`
	Proposed []models.Event `json:"proposed"`
	Release  []models.Event `json:"release"`
	Upcoming []models.Event `json:"upcoming"`
	Archived []models.Event `json:"archived"`
}

type Option func(*Loader)

// WithCacheTTL keeps the last upstream fetch for ttl and serves it to
// concurrent loads instead of hammering the admin backend.
func WithCacheTTL(ttl time.Duration) Option {
	return func(l *Loader) { l.cacheTTL = ttl }
}

// Loader fetches the event collection, normalizes it, and re-derives the
// status groupings. Grouping is a pure projection of the latest fetch;
// the snapshot is only replaced wholesale, never edited in place, except
// for authoritative vote counts merged in by key.
type Loader struct {
	client   *api.Client
	markdown goldmark.Markdown
	cacheTTL time.Duration

	mu        sync.RWMutex
	events    []models.Event
	groups    Groups
	fetchedAt time.Time
}

func NewLoader(client *api.Client, opts ...Option) *Loader {
	l := &Loader{
		client:   client,
		markdown: goldmark.New(),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Load fetches the event collection and recomputes the groupings.
// Transport and parse failures come back as-is; no retry here.
func (l *Loader) Load(ctx context.Context) (Groups, error) {
	if l.cacheTTL > 0 {
		l.mu.RLock()
		if !l.fetchedAt.IsZero() && time.Since(l.fetchedAt) < l.cacheTTL {
			groups := l.groups
			l.mu.RUnlock()
			return groups, nil
		}
		l.mu.RUnlock()
	}

	events, err := l.client.GetEvents(ctx)
	if err != nil {
		return Groups{}, err
	}

	for i := range events {
		events[i].ContentHTML = l.render(events[i].Content)
	}

	groups := partition(events)

	l.mu.Lock()
	l.events = events
	l.groups = groups
	l.fetchedAt = time.Now()
	l.mu.Unlock()

	return groups, nil
}

// Invalidate drops the cached fetch so the next Load hits the backend.
// Called after a successful feedback submission, which may surface as a
// new backlog item.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	l.fetchedAt = time.Time{}
	l.mu.Unlock()
}

// ProposedIDs lists the ids open for voting, in display order. The vote
// controller re-queries membership for exactly this set after each load.
func (g Groups) ProposedIDs() []int {
	ids := make([]int, len(g.Proposed))
	for i, ev := range g.Proposed {
		ids[i] = ev.ID
	}
	return ids
}

// Groups returns the last computed partition without refetching.
func (l *Loader) Groups() Groups {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.groups
}

// ApplyVote merges an authoritative vote count into the snapshot. A
// stale result for an event that no longer exists is discarded by
// key-miss.
func (l *Loader) ApplyVote(eventID, votes int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.events {
		if l.events[i].ID == eventID {
			l.events[i].Votes = votes
			l.groups = partition(l.events)
			return
		}
	}
}

func (l *Loader) render(markdown string) string {
	var buf bytes.Buffer
	if err := l.markdown.Convert([]byte(markdown), &buf); err != nil {
		logger.Warn().Err(err).Msg("Failed to render event content")
		return ""
	}
	return buf.String()
}

// partition splits events into the five buckets, keeping the API's
// relative order within each bucket.
func partition(events []models.Event) Groups {
	g := Groups{
		Backlog:  []models.Event{},
		Proposed: []models.Event{},
		Release:  []models.Event{},
		Upcoming: []models.Event{},
		Archived: []models.Event{},
	}
	for _, ev := range events {
		switch ev.Status {
		case models.EventStatusProposed:
			g.Proposed = append(g.Proposed, ev)
		case models.EventStatusRelease:
			g.Release = append(g.Release, ev)
		case models.EventStatusUpcoming:
			g.Upcoming = append(g.Upcoming, ev)
		case models.EventStatusArchived:
			g.Archived = append(g.Archived, ev)
		default:
			g.Backlog = append(g.Backlog, ev)
		}
	}
	return g
}
