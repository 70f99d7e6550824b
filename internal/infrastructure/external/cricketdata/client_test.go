package cricketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/crickarena/fantasy-cricket/internal/platform/logging"
	"github.com/crickarena/fantasy-cricket/internal/platform/resilience"
	"github.com/crickarena/fantasy-cricket/internal/usecase"
)

const seriesInfoBody = `{
	"status": "success",
	"data": {
		"info": {"id": "series-1", "name": "World Cricket League 2025"},
		"matchList": [
			{
				"id": "match-2",
				"name": "India vs Australia",
				"status": "live",
				"venue": "MCG",
				"dateTimeGMT": "2025-03-02T09:00:00",
				"teams": ["India", "Australia"],
				"matchEnded": false
			},
			{
				"id": "match-1",
				"name": "England vs Pakistan",
				"status": "England won by 5 wickets",
				"venue": "Lord's",
				"dateTimeGMT": "2025-03-01T10:30:00",
				"teams": ["England", "Pakistan"],
				"matchEnded": true
			}
		]
	}
}`

const scorecardBody = `{
	"status": "success",
	"data": {
		"id": "match-1",
		"name": "England vs Pakistan",
		"status": "England won by 5 wickets",
		"scorecard": [
			{
				"inning": "Pakistan Inning 1",
				"batting": [
					{"batsman": {"name": "Babar Azam"}, "r": 68, "b": 52, "4s": 7, "6s": 1}
				],
				"bowling": [
					{"bowler": {"name": "Jofra Archer"}, "o": 9.4, "r": 41, "w": 3}
				],
				"catching": [
					{"catcher": {"name": "Jos Buttler"}, "catch": 1, "stumped": 1}
				]
			},
			{
				"inning": "England Inning 1",
				"batting": [
					{"batsman": {"name": "Jos Buttler"}, "r": 45, "b": 30, "4s": 4, "6s": 2}
				],
				"bowling": [],
				"catching": []
			}
		]
	}
}`

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		BaseURL:           server.URL,
		APIKey:            "key-123",
		Timeout:           2 * time.Second,
		RequestsPerMinute: 6000,
		Logger:            logging.NewNop(),
		CircuitBreaker:    resilience.CircuitBreakerConfig{Enabled: false},
	})
	return client, server
}

func TestFetchSeriesMatches_ParsesAndSortsByStartTime(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/series_info" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("apikey") != "key-123" {
			t.Errorf("missing apikey query param")
		}
		if r.URL.Query().Get("id") != "series-1" {
			t.Errorf("unexpected series id %q", r.URL.Query().Get("id"))
		}
		_, _ = w.Write([]byte(seriesInfoBody))
	}))

	matches, payloads, err := client.FetchSeriesMatches(context.Background(), "series-1")
	if err != nil {
		t.Fatalf("fetch series matches: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Ref != "match-1" || matches[1].Ref != "match-2" {
		t.Fatalf("expected chronological order, got %q then %q", matches[0].Ref, matches[1].Ref)
	}
	if !matches[0].Ended || matches[1].Ended {
		t.Fatalf("unexpected ended flags: %v %v", matches[0].Ended, matches[1].Ended)
	}
	if len(matches[0].Teams) != 2 || matches[0].Teams[0] != "England" {
		t.Fatalf("unexpected teams: %v", matches[0].Teams)
	}
	if matches[0].StartsAt == nil || matches[0].StartsAt.Hour() != 10 {
		t.Fatalf("unexpected start time: %v", matches[0].StartsAt)
	}
	if len(payloads) != 1 || payloads[0].Source != "cricketdata" {
		t.Fatalf("expected one raw payload from cricketdata, got %+v", payloads)
	}
}

func TestFetchScorecard_CollapsesPlayerLines(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(scorecardBody))
	}))

	card, payload, err := client.FetchScorecard(context.Background(), "match-1")
	if err != nil {
		t.Fatalf("fetch scorecard: %v", err)
	}
	if card.MatchRef != "match-1" {
		t.Fatalf("unexpected match ref %q", card.MatchRef)
	}
	if len(card.Lines) != 3 {
		t.Fatalf("expected 3 collapsed lines, got %d", len(card.Lines))
	}

	var buttler *usecase.ExternalPlayerLine
	for i := range card.Lines {
		if card.Lines[i].Name == "Jos Buttler" {
			buttler = &card.Lines[i]
		}
	}
	if buttler == nil {
		t.Fatalf("expected a line for Jos Buttler")
	}
	if buttler.Runs != 45 || buttler.Catches != 1 || buttler.Stumpings != 1 {
		t.Fatalf("expected fielding merged into batting line, got %+v", *buttler)
	}
	if payload.Ref != "match_scorecard/match-1" {
		t.Fatalf("unexpected payload ref %q", payload.Ref)
	}
}

func TestExecuteRequest_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(seriesInfoBody))
	}))
	client.maxRetries = 1

	if _, _, err := client.FetchSeriesMatches(context.Background(), "series-1"); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
}

func TestExecuteRequest_NonRetryableStatusFailsFast(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	client.maxRetries = 2

	if _, _, err := client.FetchSeriesMatches(context.Background(), "series-1"); err == nil {
		t.Fatalf("expected error for 401 response")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single call for non-retryable status, got %d", calls.Load())
	}
}

func TestSanitizeSensitiveText_RedactsAPIKey(t *testing.T) {
	t.Parallel()

	got := sanitizeSensitiveText(`Get "https://api.example/v1/series_info?apikey=key-123": timeout`, "key-123")
	if want := `Get "https://api.example/v1/series_info?apikey=REDACTED": timeout`; got != want {
		t.Fatalf("unexpected sanitized text: %q", got)
	}
}
