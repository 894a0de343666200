package feedback

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/GauthierNelkinsky/shipshipship-template-default/internal/api"
	"github.com/GauthierNelkinsky/shipshipship-template-default/internal/store"
	"github.com/GauthierNelkinsky/shipshipship-template-default/pkg/logger"
)

const (
	minDwellTime     = 3 * time.Second
	baseCooldown     = 60 * time.Second
	lockoutWindow    = 5 * time.Minute
	lockoutThreshold = 3
	resetWindow      = 24 * time.Hour
	successTTL       = 3 * time.Second

	dwellMessage = "Please take your time to fill out the form properly."
)

// ErrEmptyFields marks a submission with a blank title or description.
// It is a UI-affordance guard, not a reported error: callers drop it
// silently.
var ErrEmptyFields = errors.New("feedback: empty title or description")

// ErrSubmitFailed is the catch-all shown for any failure that is not a
// recognized rate-limit or dwell-time rejection. Raw detail is logged,
// never shown.
var ErrSubmitFailed = errors.New("Failed to submit feedback. Please try again.")

// RateLimitedError is an admission rejection with a user-facing message,
// either computed locally or passed through verbatim from the backend.
type RateLimitedError struct {
	Message string
}

func (e *RateLimitedError) Error() string {
	return e.Message
}

// rateState is the single persisted record, one per visitor.
type rateState struct {
	LastSubmissionTime int64 `json:"lastSubmissionTime"` // unix millis
	SubmissionCount    int   `json:"submissionCount"`
}

// SuccessHook runs after an accepted submission; it triggers the event
// feed refresh (feedback may surface as a new backlog item).
type SuccessHook func(ctx context.Context)

type Option func(*Guard)

// WithClock substitutes the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(g *Guard) { g.now = now }
}

// WithSuccessTTL overrides how long the success indicator stays up.
func WithSuccessTTL(ttl time.Duration) Option {
	return func(g *Guard) { g.successTTL = ttl }
}

// Guard enforces the client-side admission checks in front of the
// feedback endpoint: minimum dwell time, fixed cooldown, and progressive
// lockout after repeated submissions. These are a UX convenience; the
// backend validates independently using the forwarded formStartTime.
type Guard struct {
	client     *api.Client
	store      store.Store
	visitorID  string
	onSuccess  SuccessHook
	now        func() time.Time
	successTTL time.Duration

	mu         sync.Mutex
	rate       rateState
	formStart  time.Time
	success    bool
	successGen uint64
	lastError  string
}

// NewGuard loads the visitor's persisted rate-limit state and anchors
// formStartTime to now. The 24-hour submission-count reset is evaluated
// here, at load time, not continuously.
func NewGuard(ctx context.Context, client *api.Client, st store.Store, visitorID string, onSuccess SuccessHook, opts ...Option) *Guard {
	g := &Guard{
		client:     client,
		store:      st,
		visitorID:  visitorID,
		onSuccess:  onSuccess,
		now:        time.Now,
		successTTL: successTTL,
	}
	for _, o := range opts {
		o(g)
	}

	if err := store.CacheGet(ctx, st, g.stateKey(), &g.rate); err != nil && !errors.Is(err, store.ErrNotFound) {
		logger.Warn().Err(err).Str("visitor", visitorID).Msg("Failed to load rate-limit state")
	}
	if g.rate.LastSubmissionTime > 0 {
		elapsed := g.now().UnixMilli() - g.rate.LastSubmissionTime
		if elapsed > resetWindow.Milliseconds() {
			g.rate.SubmissionCount = 0
		}
	}
	g.formStart = g.now()
	return g
}

// ResetFormStart re-anchors the dwell-time clock. Called when the form
// is (re)opened on a page instance that already has a session.
func (g *Guard) ResetFormStart() {
	g.mu.Lock()
	g.formStart = g.now()
	g.mu.Unlock()
}

// Submit runs the admission checks in order and only then forwards the
// trimmed fields to the backend. Returns nil on acceptance,
// ErrEmptyFields for the silent no-op, *RateLimitedError for admission
// rejections, and ErrSubmitFailed for everything else.
func (g *Guard) Submit(ctx context.Context, title, description string) error {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" || description == "" {
		return ErrEmptyFields
	}

	now := g.now()

	g.mu.Lock()
	formStart := g.formStart
	rate := g.rate
	g.mu.Unlock()

	if now.Sub(formStart) < minDwellTime {
		return g.reject(dwellMessage)
	}

	sinceLast := time.Duration(now.UnixMilli()-rate.LastSubmissionTime) * time.Millisecond

	// The escalated window wins over the base cooldown once the visitor
	// has burned through the threshold, so the message always reports
	// the real remaining wait.
	if rate.LastSubmissionTime > 0 && rate.SubmissionCount >= lockoutThreshold && sinceLast < lockoutWindow {
		minutes := ceilDiv(lockoutWindow-sinceLast, time.Minute)
		return g.reject(fmt.Sprintf("Please wait %d minutes before submitting again.", minutes))
	}

	if rate.LastSubmissionTime > 0 && sinceLast < baseCooldown {
		seconds := ceilDiv(baseCooldown-sinceLast, time.Second)
		return g.reject(fmt.Sprintf("Please wait %d seconds before submitting again.", seconds))
	}

	if err := g.client.SubmitFeedback(ctx, g.visitorID, title, description, formStart); err != nil {
		return g.submitFailed(err, now)
	}

	g.mu.Lock()
	g.rate.SubmissionCount++
	g.rate.LastSubmissionTime = now.UnixMilli()
	g.formStart = now
	g.lastError = ""
	g.success = true
	g.successGen++
	gen := g.successGen
	persisted := g.rate
	g.mu.Unlock()

	if err := store.CacheSet(ctx, g.store, g.stateKey(), persisted, resetWindow); err != nil {
		logger.Warn().Err(err).Str("visitor", g.visitorID).Msg("Failed to persist rate-limit state")
	}

	time.AfterFunc(g.successTTL, func() {
		g.mu.Lock()
		if g.successGen == gen {
			g.success = false
		}
		g.mu.Unlock()
	})

	if g.onSuccess != nil {
		g.onSuccess(ctx)
	}
	return nil
}

// submitFailed maps a backend rejection onto user-facing wording. Known
// rate-limit and session phrasing passes through verbatim; a dwell-time
// rejection also restarts the dwell window.
func (g *Guard) submitFailed(err error, now time.Time) error {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		switch {
		case strings.Contains(msg, "take your time"):
			g.mu.Lock()
			g.formStart = now
			g.mu.Unlock()
			return g.reject(msg)
		case strings.Contains(msg, "Rate limit exceeded"),
			strings.Contains(msg, "Too many submissions"),
			strings.Contains(msg, "session expired"):
			return g.reject(msg)
		}
	}

	logger.Error().Err(err).Str("visitor", g.visitorID).Msg("Feedback submission failed")
	g.mu.Lock()
	g.lastError = ErrSubmitFailed.Error()
	g.mu.Unlock()
	return ErrSubmitFailed
}

func (g *Guard) reject(msg string) error {
	g.mu.Lock()
	g.lastError = msg
	g.mu.Unlock()
	return &RateLimitedError{Message: msg}
}

// State is the guard's display snapshot for the page.
type State struct {
	Success         bool   `json:"success"`
	LastError       string `json:"lastError,omitempty"`
	SubmissionCount int    `json:"submissionCount"`
}

func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return State{
		Success:         g.success,
		LastError:       g.lastError,
		SubmissionCount: g.rate.SubmissionCount,
	}
}

func (g *Guard) stateKey() string {
	return "feedback:rate:" + g.visitorID
}

// ceilDiv rounds the remaining wait up to whole units so the message
// never promises less time than is actually left.
func ceilDiv(d, unit time.Duration) int {
	return int((d + unit - 1) / unit)
}
