package vote

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/GauthierNelkinsky/shipshipship-template-default/internal/api"
	"github.com/GauthierNelkinsky/shipshipship-template-default/pkg/logger"
)

const defaultErrorTTL = 3 * time.Second

// genericVoteError hides transport detail from visitors.
const genericVoteError = "Failed to vote. Please try again."

// CountHook receives the authoritative vote count after a successful
// toggle, so the feed snapshot can adopt it.
type CountHook func(eventID, votes int)

type Option func(*Controller)

// WithErrorTTL overrides how long a per-event error stays visible.
func WithErrorTTL(ttl time.Duration) Option {
	return func(c *Controller) { c.errTTL = ttl }
}

// Controller tracks one visitor's vote membership across the proposed
// events and owns the single write path for toggling. Membership and
// errors live in maps keyed by event id; each async completion only
// touches its own key, and for the same key the last response wins.
type Controller struct {
	client    *api.Client
	visitorID string
	errTTL    time.Duration
	onCount   CountHook

	mu         sync.Mutex
	membership map[int]bool
	errs       map[int]string
	errGen     map[int]uint64
}

func NewController(client *api.Client, visitorID string, onCount CountHook, opts ...Option) *Controller {
	c := &Controller{
		client:     client,
		visitorID:  visitorID,
		errTTL:     defaultErrorTTL,
		onCount:    onCount,
		membership: make(map[int]bool),
		errs:       make(map[int]string),
		errGen:     make(map[int]uint64),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Refresh queries vote status for each proposed event once. A failed
// check is logged and treated as "not voted" — the page never blocks on
// membership. Events no longer proposed are dropped from the set.
func (c *Controller) Refresh(ctx context.Context, eventIDs []int) {
	seen := make(map[int]bool, len(eventIDs))
	for _, id := range eventIDs {
		seen[id] = true
		status, err := c.client.CheckVoteStatus(ctx, c.visitorID, id)
		if err != nil {
			logger.Warn().Err(err).Int("event_id", id).Msg("Vote status check failed")
			c.setMembership(id, false)
			continue
		}
		c.setMembership(id, status.Voted)
	}

	c.mu.Lock()
	for id := range c.membership {
		if !seen[id] {
			delete(c.membership, id)
		}
	}
	c.mu.Unlock()
}

// Toggle performs one vote request regardless of local membership state;
// the backend decides whether it counts as a vote or an un-vote. The
// response fully replaces local state for that event.
func (c *Controller) Toggle(ctx context.Context, eventID int) (api.VoteResult, error) {
	result, err := c.client.VoteEvent(ctx, c.visitorID, eventID)
	if err != nil {
		c.setError(eventID, ErrorMessage(err))
		return api.VoteResult{}, err
	}

	c.mu.Lock()
	c.membership[eventID] = result.Voted
	delete(c.errs, eventID)
	c.mu.Unlock()

	if c.onCount != nil {
		c.onCount(eventID, result.Votes)
	}
	return result, nil
}

// Voted reports membership for one event.
func (c *Controller) Voted(eventID int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.membership[eventID]
}

// Membership returns a copy of the current vote set.
func (c *Controller) Membership() map[int]bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[int]bool, len(c.membership))
	for id, voted := range c.membership {
		out[id] = voted
	}
	return out
}

// Errors returns the per-event transient errors currently visible.
func (c *Controller) Errors() map[int]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[int]string, len(c.errs))
	for id, msg := range c.errs {
		out[id] = msg
	}
	return out
}

func (c *Controller) setMembership(eventID int, voted bool) {
	c.mu.Lock()
	c.membership[eventID] = voted
	c.mu.Unlock()
}

// setError stores a scoped error and schedules its clear. The generation
// counter keeps a newer error alive when an older timer for the same
// event fires late.
func (c *Controller) setError(eventID int, msg string) {
	c.mu.Lock()
	c.errGen[eventID]++
	gen := c.errGen[eventID]
	c.errs[eventID] = msg
	c.mu.Unlock()

	time.AfterFunc(c.errTTL, func() {
		c.mu.Lock()
		if c.errGen[eventID] == gen {
			delete(c.errs, eventID)
		}
		c.mu.Unlock()
	})
}

// ErrorMessage passes known backend phrasing through verbatim and
// collapses everything else to a generic message.
func ErrorMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if strings.Contains(msg, "Rate limit exceeded") || strings.Contains(msg, "session expired") {
			return msg
		}
	}
	return genericVoteError
}
