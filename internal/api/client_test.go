package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRequestCarriesTokenAndVisitorHeader(t *testing.T) {
	var gotAuth, gotVisitor string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotVisitor = r.Header.Get("X-Visitor-Id")
		w.Write([]byte(`{"voted":true}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "secret-token")
	status, err := c.CheckVoteStatus(context.Background(), "visitor-9", 5)
	assert.NoError(t, err)
	assert.True(t, status.Voted)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "visitor-9", gotVisitor)
}

func TestGetEventsNormalizesRecords(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/events", r.URL.Path)
		w.Write([]byte(`{"events":[
			{"id":1,"slug":"a","title":"A","status":"proposed","votes":2},
			{"id":2,"slug":"b","title":"B","status":"release","date":"2024-03-10"},
			{"id":3,"slug":"c","title":"C","status":"weird"}
		]}`))
	}))
	defer ts.Close()

	events, err := NewClient(ts.URL, "").GetEvents(context.Background())
	assert.NoError(t, err)
	if !assert.Len(t, events, 3) {
		return
	}

	assert.Nil(t, events[0].Date)
	assert.NotNil(t, events[0].Tags, "tags normalize to an empty slice")
	assert.NotNil(t, events[0].Media)

	if assert.NotNil(t, events[1].Date) {
		assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), *events[1].Date)
	}

	// Unknown status lands in backlog instead of dropping the event.
	assert.Equal(t, "backlog", string(events[2].Status))
}

func TestSubmitFeedbackForwardsFormStartMillis(t *testing.T) {
	var payload struct {
		Title         string `json:"title"`
		Description   string `json:"description"`
		FormStartTime int64  `json:"form_start_time"`
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&payload)
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer ts.Close()

	formStart := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	err := NewClient(ts.URL, "").SubmitFeedback(context.Background(), "v", "Title", "Body", formStart)
	assert.NoError(t, err)
	assert.Equal(t, "Title", payload.Title)
	assert.Equal(t, "Body", payload.Description)
	assert.Equal(t, formStart.UnixMilli(), payload.FormStartTime)
}

func TestErrorBodyParsing(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"error field", `{"error":"Rate limit exceeded"}`, "Rate limit exceeded"},
		{"message field", `{"message":"Too many submissions"}`, "Too many submissions"},
		{"message wins over error", `{"error":"x","message":"session expired"}`, "session expired"},
		{"plain text fallback", `gateway timeout`, "gateway timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := parseError(http.StatusServiceUnavailable, []byte(tt.body))
			assert.Equal(t, tt.want, apiErr.Message)
			assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
		})
	}
}

func TestVoteEventParsesAuthoritativeResult(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/events/42/vote", r.URL.Path)
		w.Write([]byte(`{"votes":8,"voted":true}`))
	}))
	defer ts.Close()

	result, err := NewClient(ts.URL, "").VoteEvent(context.Background(), "visitor-1", 42)
	assert.NoError(t, err)
	assert.Equal(t, VoteResult{Votes: 8, Voted: true}, result)
}
