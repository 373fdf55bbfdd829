package fpl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Joshmanser1/last-man-standing/internal/cache"
)

const bootstrapBody = `{
	"events": [
		{"id": 1, "name": "Gameweek 1", "deadline_time": "2026-08-15T17:00:00Z", "is_current": false, "is_next": false, "finished": true},
		{"id": 2, "name": "Gameweek 2", "deadline_time": "2026-08-22T17:00:00Z", "is_current": true, "is_next": false, "finished": false},
		{"id": 3, "name": "Gameweek 3", "deadline_time": "2026-08-29T17:00:00Z", "is_current": false, "is_next": true, "finished": false}
	],
	"teams": [
		{"id": 1, "name": "Arsenal", "short_name": "ARS"},
		{"id": 2, "name": "Chelsea", "short_name": "CHE"},
		{"id": 3, "name": "Liverpool", "short_name": "LIV"},
		{"id": 4, "name": "Everton", "short_name": "EVE"}
	]
}`

const fixturesBody = `[
	{"id": 10, "event": 2, "team_h": 1, "team_a": 2, "team_h_score": 2, "team_a_score": 0,
	 "kickoff_time": "2026-08-22T14:00:00Z", "finished": true, "finished_provisional": true},
	{"id": 11, "event": 2, "team_h": 3, "team_a": 4, "team_h_score": null, "team_a_score": null,
	 "kickoff_time": "2026-08-23T15:30:00Z", "finished": false, "finished_provisional": false}
]`

// newFPLServer serves canned bootstrap and fixtures payloads and counts
// bootstrap hits so tests can observe caching.
func newFPLServer(t *testing.T, bootstrapHits *atomic.Int64) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/bootstrap-static/", func(w http.ResponseWriter, r *http.Request) {
		if bootstrapHits != nil {
			bootstrapHits.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(bootstrapBody))
	})
	mux.HandleFunc("/fixtures/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("event") != "2" {
			w.Write([]byte("[]"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(fixturesBody))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, baseURL string, cached bool) *Client {
	t.Helper()
	return NewClient(baseURL, 600, cache.New(cached), nil)
}

func TestGetBootstrap(t *testing.T) {
	srv := newFPLServer(t, nil)
	client := newTestClient(t, srv.URL, false)

	bs, err := client.GetBootstrap(context.Background())
	if err != nil {
		t.Fatalf("GetBootstrap: %v", err)
	}
	if len(bs.Events) != 3 || len(bs.Teams) != 4 {
		t.Fatalf("bootstrap = %d events, %d teams", len(bs.Events), len(bs.Teams))
	}
	if bs.Teams[0].ShortName != "ARS" {
		t.Fatalf("first team short name = %q", bs.Teams[0].ShortName)
	}
	want := time.Date(2026, 8, 22, 17, 0, 0, 0, time.UTC)
	if !bs.Events[1].DeadlineTime.Equal(want) {
		t.Fatalf("event 2 deadline = %s", bs.Events[1].DeadlineTime)
	}
}

func TestBootstrapIsCached(t *testing.T) {
	var hits atomic.Int64
	srv := newFPLServer(t, &hits)
	client := newTestClient(t, srv.URL, true)

	for i := 0; i < 3; i++ {
		if _, err := client.GetBootstrap(context.Background()); err != nil {
			t.Fatalf("GetBootstrap #%d: %v", i+1, err)
		}
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("upstream hit %d times, want 1", got)
	}
}

func TestFixturesForEvent(t *testing.T) {
	srv := newFPLServer(t, nil)
	client := newTestClient(t, srv.URL, false)

	fixtures, err := client.FixturesForEvent(context.Background(), 2)
	if err != nil {
		t.Fatalf("FixturesForEvent: %v", err)
	}
	if len(fixtures) != 2 {
		t.Fatalf("got %d fixtures, want 2", len(fixtures))
	}
	if !fixtures[0].Done() {
		t.Fatal("finished fixture with scores must be done")
	}
	if fixtures[1].Done() {
		t.Fatal("unplayed fixture must not be done")
	}
}

func TestSmartCurrentEvent(t *testing.T) {
	cases := []struct {
		name string
		body string
		want int
	}{
		{"current wins", bootstrapBody, 2},
		{
			"next when no current",
			`{"events":[{"id":1,"finished":true},{"id":2,"is_next":true}],"teams":[]}`,
			2,
		},
		{
			"last finished as fallback",
			`{"events":[{"id":1,"finished":true},{"id":2,"finished":true}],"teams":[]}`,
			2,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			client := newTestClient(t, srv.URL, false)
			got, err := client.SmartCurrentEvent(context.Background())
			if err != nil {
				t.Fatalf("SmartCurrentEvent: %v", err)
			}
			if got != tc.want {
				t.Fatalf("event = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestSmartCurrentEventEmptySeason(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"events":[],"teams":[]}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, false)
	if _, err := client.SmartCurrentEvent(context.Background()); err == nil {
		t.Fatal("expected an error for an empty event list")
	}
}

func TestEventForDate(t *testing.T) {
	srv := newFPLServer(t, nil)
	client := newTestClient(t, srv.URL, false)

	got, err := client.EventForDate(context.Background(), time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("EventForDate: %v", err)
	}
	if got != 2 {
		t.Fatalf("event = %d, want 2", got)
	}

	if _, err := client.EventForDate(context.Background(), time.Date(2027, 6, 1, 0, 0, 0, 0, time.UTC)); err == nil {
		t.Fatal("expected an error for a date past the season")
	}
}

func TestEventDeadline(t *testing.T) {
	srv := newFPLServer(t, nil)
	client := newTestClient(t, srv.URL, false)

	got, err := client.EventDeadline(context.Background(), 3)
	if err != nil {
		t.Fatalf("EventDeadline: %v", err)
	}
	want := time.Date(2026, 8, 29, 17, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("deadline = %s, want %s", got, want)
	}

	if _, err := client.EventDeadline(context.Background(), 99); err == nil {
		t.Fatal("expected an error for an unknown event")
	}
}

func TestUpstreamErrorIncludesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, false)
	_, err := client.GetBootstrap(context.Background())
	if err == nil {
		t.Fatal("expected an error for a 503 response")
	}
}
