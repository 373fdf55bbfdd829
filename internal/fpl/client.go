// Package fpl consumes the Fantasy Premier League API: gameweek events with
// their deadlines, teams, and per-event fixtures with scores. It is the
// system's result source — read-only upstream data that the import step
// materializes into fixture rows.
//
// FPL publishes no rate limits but throttles aggressively, so every request
// goes through a token bucket limiter and the bootstrap payload is cached.
package fpl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/Joshmanser1/last-man-standing/internal/cache"
)

const bootstrapTTL = 1 * time.Hour

// Event is one FPL gameweek.
type Event struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	DeadlineTime time.Time `json:"deadline_time"`
	IsCurrent    bool      `json:"is_current"`
	IsNext       bool      `json:"is_next"`
	Finished     bool      `json:"finished"`
}

// Team is one FPL club.
type Team struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}

// Fixture is one FPL match, possibly unplayed.
type Fixture struct {
	ID                  int        `json:"id"`
	Event               *int       `json:"event"`
	TeamH               int        `json:"team_h"`
	TeamA               int        `json:"team_a"`
	TeamHScore          *int       `json:"team_h_score"`
	TeamAScore          *int       `json:"team_a_score"`
	KickoffTime         *time.Time `json:"kickoff_time"`
	Finished            bool       `json:"finished"`
	FinishedProvisional bool       `json:"finished_provisional"`
}

// Done reports whether the fixture has a final (possibly provisional) score.
func (f Fixture) Done() bool {
	return (f.Finished || f.FinishedProvisional) && f.TeamHScore != nil && f.TeamAScore != nil
}

// Bootstrap is the subset of /bootstrap-static/ the system needs.
type Bootstrap struct {
	Events []Event `json:"events"`
	Teams  []Team  `json:"teams"`
}

// Client is the rate-limited FPL HTTP client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	cache      *cache.Cache
	logger     *slog.Logger
}

// NewClient creates an FPL client. appCache may be a disabled cache.
func NewClient(baseURL string, requestsPerMinute int, appCache *cache.Cache, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if requestsPerMinute <= 0 {
		requestsPerMinute = 30
	}
	rps := float64(requestsPerMinute) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		cache:      appCache,
		logger:     logger,
	}
}

// get performs a rate-limited GET request to an FPL endpoint.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("FPL %s returned %d: %s", path, resp.StatusCode, truncate(body, 200))
	}
	return body, nil
}

// GetBootstrap fetches /bootstrap-static/, serving from cache when fresh.
// The payload is large and changes rarely compared to the tick cadence.
func (c *Client) GetBootstrap(ctx context.Context) (*Bootstrap, error) {
	const key = "fpl:bootstrap"
	body, ok := c.cache.Get(key)
	if !ok {
		var err error
		body, err = c.get(ctx, "/bootstrap-static/")
		if err != nil {
			return nil, err
		}
		c.cache.Set(key, body, bootstrapTTL)
	}

	var bs Bootstrap
	if err := json.Unmarshal(body, &bs); err != nil {
		return nil, fmt.Errorf("decode bootstrap: %w", err)
	}
	return &bs, nil
}

// FixturesForEvent fetches all fixtures of one gameweek.
func (c *Client) FixturesForEvent(ctx context.Context, event int) ([]Fixture, error) {
	body, err := c.get(ctx, fmt.Sprintf("/fixtures/?event=%d", event))
	if err != nil {
		return nil, err
	}
	var fixtures []Fixture
	if err := json.Unmarshal(body, &fixtures); err != nil {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	return fixtures, nil
}

// SmartCurrentEvent picks the most relevant gameweek: the current one, else
// the next one, else the last finished one.
func (c *Client) SmartCurrentEvent(ctx context.Context) (int, error) {
	bs, err := c.GetBootstrap(ctx)
	if err != nil {
		return 0, err
	}
	for _, e := range bs.Events {
		if e.IsCurrent {
			return e.ID, nil
		}
	}
	for _, e := range bs.Events {
		if e.IsNext {
			return e.ID, nil
		}
	}
	last := 0
	for _, e := range bs.Events {
		if e.Finished && e.ID > last {
			last = e.ID
		}
	}
	if last == 0 {
		return 0, fmt.Errorf("no current, next, or finished event in bootstrap")
	}
	return last, nil
}

// EventForDate returns the first gameweek whose deadline is at or after t,
// used to map a league start date onto the FPL calendar.
func (c *Client) EventForDate(ctx context.Context, t time.Time) (int, error) {
	bs, err := c.GetBootstrap(ctx)
	if err != nil {
		return 0, err
	}
	for _, e := range bs.Events {
		if !e.DeadlineTime.Before(t) {
			return e.ID, nil
		}
	}
	return 0, fmt.Errorf("no event with deadline at or after %s", t.Format(time.RFC3339))
}

// EventDeadline returns the pick deadline of a gameweek.
func (c *Client) EventDeadline(ctx context.Context, event int) (time.Time, error) {
	bs, err := c.GetBootstrap(ctx)
	if err != nil {
		return time.Time{}, err
	}
	for _, e := range bs.Events {
		if e.ID == event {
			return e.DeadlineTime, nil
		}
	}
	return time.Time{}, fmt.Errorf("event %d not in bootstrap", event)
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
