package feedback

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/GauthierNelkinsky/shipshipship-template-default/internal/api"
	"github.com/GauthierNelkinsky/shipshipship-template-default/internal/store"
)

// testClock is a manually advanced time source.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type submittedPayload struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	FormStartTime int64  `json:"form_start_time"`
}

// okBackend accepts every submission and records the last payload.
type okBackend struct {
	mu   sync.Mutex
	last *submittedPayload
}

func (b *okBackend) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p submittedPayload
		json.NewDecoder(r.Body).Decode(&p)
		b.mu.Lock()
		b.last = &p
		b.mu.Unlock()
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
}

func (b *okBackend) lastPayload() *submittedPayload {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

func errorBackend(status int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	})
}

func newTestGuard(t *testing.T, backend http.Handler, st store.Store, clock *testClock, opts ...Option) *Guard {
	t.Helper()
	ts := httptest.NewServer(backend)
	t.Cleanup(ts.Close)

	if st == nil {
		st = store.NewMemoryStore()
	}
	client := api.NewClient(ts.URL, "test-token")
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return NewGuard(context.Background(), client, st, "visitor-1", nil, opts...)
}

func TestSubmitEmptyFieldsIsSilentNoOp(t *testing.T) {
	clock := newTestClock()
	called := false
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	g := newTestGuard(t, backend, nil, clock)
	clock.Advance(10 * time.Second)

	assert.ErrorIs(t, g.Submit(context.Background(), "   ", "something"), ErrEmptyFields)
	assert.ErrorIs(t, g.Submit(context.Background(), "title", "\t\n"), ErrEmptyFields)
	assert.False(t, called, "empty submissions must never reach the network")
}

func TestSubmitRejectsFastForm(t *testing.T) {
	clock := newTestClock()
	g := newTestGuard(t, (&okBackend{}).handler(), nil, clock)
	clock.Advance(2 * time.Second)

	err := g.Submit(context.Background(), "Add dark mode", "Please add a dark theme option.")

	var rl *RateLimitedError
	assert.ErrorAs(t, err, &rl)
	assert.Equal(t, "Please take your time to fill out the form properly.", rl.Message)
}

func TestSubmitHappyPath(t *testing.T) {
	clock := newTestClock()
	backend := &okBackend{}
	st := store.NewMemoryStore()
	g := newTestGuard(t, backend.handler(), st, clock)
	formStart := clock.Now()
	clock.Advance(5 * time.Second)

	err := g.Submit(context.Background(), "  Add dark mode  ", "Please add a dark theme option.")
	assert.NoError(t, err)

	payload := backend.lastPayload()
	if assert.NotNil(t, payload) {
		assert.Equal(t, "Add dark mode", payload.Title)
		assert.Equal(t, "Please add a dark theme option.", payload.Description)
		assert.Equal(t, formStart.UnixMilli(), payload.FormStartTime)
	}

	state := g.State()
	assert.True(t, state.Success)
	assert.Equal(t, 1, state.SubmissionCount)

	var persisted rateState
	assert.NoError(t, store.CacheGet(context.Background(), st, "feedback:rate:visitor-1", &persisted))
	assert.Equal(t, clock.Now().UnixMilli(), persisted.LastSubmissionTime)
	assert.Equal(t, 1, persisted.SubmissionCount)
}

func TestCooldownReportsRemainingSeconds(t *testing.T) {
	clock := newTestClock()
	g := newTestGuard(t, (&okBackend{}).handler(), nil, clock)
	clock.Advance(5 * time.Second)

	assert.NoError(t, g.Submit(context.Background(), "Add dark mode", "Please add a dark theme option."))

	// Retried 10 seconds later with a valid draft: 50 seconds remain.
	clock.Advance(10 * time.Second)
	err := g.Submit(context.Background(), "Add dark mode", "Please add a dark theme option.")

	var rl *RateLimitedError
	assert.ErrorAs(t, err, &rl)
	assert.Contains(t, rl.Message, "50 seconds")
}

func TestProgressiveLockoutReportsMinutes(t *testing.T) {
	clock := newTestClock()
	st := store.NewMemoryStore()
	seed := rateState{
		LastSubmissionTime: clock.Now().Add(-90 * time.Second).UnixMilli(),
		SubmissionCount:    3,
	}
	assert.NoError(t, store.CacheSet(context.Background(), st, "feedback:rate:visitor-1", seed, 0))

	g := newTestGuard(t, (&okBackend{}).handler(), st, clock)
	clock.Advance(5 * time.Second)

	// 95s since the last submission: past the base cooldown but inside
	// the 5-minute lockout. ceil(205s / 60s) = 4 minutes remain.
	err := g.Submit(context.Background(), "Add dark mode", "Please add a dark theme option.")

	var rl *RateLimitedError
	assert.ErrorAs(t, err, &rl)
	assert.Contains(t, rl.Message, "4 minutes")
}

func TestLockoutWinsOverCooldownMessage(t *testing.T) {
	clock := newTestClock()
	st := store.NewMemoryStore()
	seed := rateState{
		LastSubmissionTime: clock.Now().Add(-30 * time.Second).UnixMilli(),
		SubmissionCount:    5,
	}
	assert.NoError(t, store.CacheSet(context.Background(), st, "feedback:rate:visitor-1", seed, 0))

	g := newTestGuard(t, (&okBackend{}).handler(), st, clock)
	clock.Advance(5 * time.Second)

	// Inside both windows; the lockout message must win.
	err := g.Submit(context.Background(), "Add dark mode", "Please add a dark theme option.")

	var rl *RateLimitedError
	assert.ErrorAs(t, err, &rl)
	assert.Contains(t, rl.Message, "minutes")
	assert.NotContains(t, rl.Message, "seconds")
}

func TestSubmissionCountResetsAfter24Hours(t *testing.T) {
	clock := newTestClock()
	st := store.NewMemoryStore()
	seed := rateState{
		LastSubmissionTime: clock.Now().Add(-25 * time.Hour).UnixMilli(),
		SubmissionCount:    5,
	}
	assert.NoError(t, store.CacheSet(context.Background(), st, "feedback:rate:visitor-1", seed, 0))

	g := newTestGuard(t, (&okBackend{}).handler(), st, clock)
	assert.Equal(t, 0, g.State().SubmissionCount)

	clock.Advance(5 * time.Second)
	assert.NoError(t, g.Submit(context.Background(), "Add dark mode", "Please add a dark theme option."))
}

func TestServerRateLimitPassesThroughVerbatim(t *testing.T) {
	clock := newTestClock()
	backend := errorBackend(http.StatusTooManyRequests, `{"error":"Rate limit exceeded. Try again in an hour."}`)
	g := newTestGuard(t, backend, nil, clock)
	clock.Advance(5 * time.Second)

	err := g.Submit(context.Background(), "Add dark mode", "Please add a dark theme option.")

	var rl *RateLimitedError
	assert.ErrorAs(t, err, &rl)
	assert.Equal(t, "Rate limit exceeded. Try again in an hour.", rl.Message)
}

func TestServerDwellRejectionResetsFormStart(t *testing.T) {
	clock := newTestClock()
	backend := errorBackend(http.StatusBadRequest, `{"error":"Please take your time to fill out the form properly."}`)
	g := newTestGuard(t, backend, nil, clock)
	clock.Advance(5 * time.Second)

	err := g.Submit(context.Background(), "Add dark mode", "Please add a dark theme option.")
	var rl *RateLimitedError
	assert.ErrorAs(t, err, &rl)
	assert.Contains(t, rl.Message, "take your time")

	// The dwell window restarted: an immediate retry is rejected
	// locally, before any network call.
	err = g.Submit(context.Background(), "Add dark mode", "Please add a dark theme option.")
	assert.ErrorAs(t, err, &rl)
	assert.Equal(t, "Please take your time to fill out the form properly.", rl.Message)
}

func TestUnknownFailureCollapsesToGenericMessage(t *testing.T) {
	clock := newTestClock()
	backend := errorBackend(http.StatusInternalServerError, `{"error":"pq: connection refused"}`)
	g := newTestGuard(t, backend, nil, clock)
	clock.Advance(5 * time.Second)

	err := g.Submit(context.Background(), "Add dark mode", "Please add a dark theme option.")
	assert.ErrorIs(t, err, ErrSubmitFailed)
	assert.NotContains(t, err.Error(), "connection refused")
}

func TestSuccessIndicatorAutoDismisses(t *testing.T) {
	clock := newTestClock()
	g := newTestGuard(t, (&okBackend{}).handler(), nil, clock, WithSuccessTTL(50*time.Millisecond))
	clock.Advance(5 * time.Second)

	assert.NoError(t, g.Submit(context.Background(), "Add dark mode", "Please add a dark theme option."))
	assert.True(t, g.State().Success)

	time.Sleep(150 * time.Millisecond)
	assert.False(t, g.State().Success)
}
