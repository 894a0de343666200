package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/GauthierNelkinsky/shipshipship-template-default/internal/models"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 8 << 20
)

// Client handles communication with the remote admin backend. The API
// token stays inside this process; browsers only ever talk to our own
// handlers.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient creates a new admin API client
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// eventRecord is the raw wire shape of an event as the admin backend
// returns it. Dates arrive as strings and may be absent for undated
// backlog/proposed items.
type eventRecord struct {
	ID     int          `json:"id"`
	Slug   string       `json:"slug"`
	Title  string       `json:"title"`
	Content string      `json:"content"`
	Date   string       `json:"date"`
	Status string       `json:"status"`
	Tags   []models.Tag `json:"tags"`
	Media  []string     `json:"media"`
	Votes  int          `json:"votes"`
}

type eventsResponse struct {
	Events []eventRecord `json:"events"`
}

// VoteStatus is the backend's answer for one event and one visitor.
type VoteStatus struct {
	Voted bool `json:"voted"`
}

// VoteResult is the authoritative state after a toggle. It fully
// replaces whatever the caller held for that event.
type VoteResult struct {
	Votes int  `json:"votes"`
	Voted bool `json:"voted"`
}

// GetEvents retrieves the full event collection
func (c *Client) GetEvents(ctx context.Context) ([]models.Event, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/events", "", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}

	var resp eventsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse events response: %w", err)
	}

	events := make([]models.Event, len(resp.Events))
	for i, r := range resp.Events {
		events[i] = convertEventRecord(r)
	}
	return events, nil
}

// GetSettings retrieves the page settings (title, favicon, newsletter flag)
func (c *Client) GetSettings(ctx context.Context) (models.Settings, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/settings", "", nil)
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to fetch settings: %w", err)
	}

	var settings models.Settings
	if err := json.Unmarshal(body, &settings); err != nil {
		return models.Settings{}, fmt.Errorf("failed to parse settings response: %w", err)
	}
	return settings, nil
}

// CheckVoteStatus asks whether the visitor has an active vote on the event
func (c *Client) CheckVoteStatus(ctx context.Context, visitorID string, eventID int) (VoteStatus, error) {
	path := fmt.Sprintf("/api/events/%d/vote", eventID)
	body, err := c.do(ctx, http.MethodGet, path, visitorID, nil)
	if err != nil {
		return VoteStatus{}, fmt.Errorf("failed to check vote status for event %d: %w", eventID, err)
	}

	var status VoteStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return VoteStatus{}, fmt.Errorf("failed to parse vote status response: %w", err)
	}
	return status, nil
}

// VoteEvent performs one toggle request. The backend decides whether this
// is a vote or an un-vote; the response is authoritative.
func (c *Client) VoteEvent(ctx context.Context, visitorID string, eventID int) (VoteResult, error) {
	path := fmt.Sprintf("/api/events/%d/vote", eventID)
	body, err := c.do(ctx, http.MethodPost, path, visitorID, nil)
	if err != nil {
		return VoteResult{}, fmt.Errorf("failed to toggle vote for event %d: %w", eventID, err)
	}

	var result VoteResult
	if err := json.Unmarshal(body, &result); err != nil {
		return VoteResult{}, fmt.Errorf("failed to parse vote response: %w", err)
	}
	return result, nil
}

// SubmitFeedback forwards a feedback submission. FormStartTime rides
// along so the backend can run its own dwell-time validation.
func (c *Client) SubmitFeedback(ctx context.Context, visitorID, title, description string, formStartTime time.Time) error {
	payload := map[string]any{
		"title":           title,
		"description":     description,
		"form_start_time": formStartTime.UnixMilli(),
	}
	if _, err := c.do(ctx, http.MethodPost, "/api/feedback", visitorID, payload); err != nil {
		return err
	}
	return nil
}

// SubscribeToNewsletter subscribes an email address
func (c *Client) SubscribeToNewsletter(ctx context.Context, email string) error {
	payload := map[string]any{"email": email}
	if _, err := c.do(ctx, http.MethodPost, "/api/newsletter/subscribe", "", payload); err != nil {
		return err
	}
	return nil
}

// UnsubscribeFromNewsletter removes an email address
func (c *Client) UnsubscribeFromNewsletter(ctx context.Context, email string) error {
	payload := map[string]any{"email": email}
	if _, err := c.do(ctx, http.MethodPost, "/api/newsletter/unsubscribe", "", payload); err != nil {
		return err
	}
	return nil
}

// do performs one request. No retries: every write on this API is
// user-visible, so callers decide whether to try again.
func (c *Client) do(ctx context.Context, method, path, visitorID string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if visitorID != "" {
		req.Header.Set("X-Visitor-Id", visitorID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, parseError(resp.StatusCode, body)
	}
	return body, nil
}
