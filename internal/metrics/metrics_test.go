package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"trip-dashboard/internal/playback"
	"trip-dashboard/internal/trip"
)

func scrape(t *testing.T, c *Collector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	b, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func expectLines(t *testing.T, body string, lines ...string) {
	t.Helper()
	for _, l := range lines {
		if !strings.Contains(body, l+"\n") {
			t.Errorf("expected metric line %q", l)
		}
	}
}

func TestCollectorDefaults(t *testing.T) {
	c := NewCollector()
	expectLines(t, scrape(t, c),
		"dashboard_playback_speed 1",
		"dashboard_playback_tick_period_seconds 0.5",
		`dashboard_playback_state{state="empty"} 1`,
		`dashboard_playback_state{state="playing"} 0`,
	)
}

func TestObserveFrame(t *testing.T) {
	c := NewCollector()
	pos := trip.Position{Lat: 1, Lng: 2}
	c.ObserveFrame(playback.Frame{Reason: playback.ReasonControl, Total: 4, Playing: true, Speed: 2, PeriodMs: 250, State: playback.StatePlaying, Position: &pos})
	c.ObserveFrame(playback.Frame{Reason: playback.ReasonTick, Index: 1, Total: 4, Playing: true, Speed: 2, PeriodMs: 250, State: playback.StatePlaying, Position: &pos})
	c.ObserveFrame(playback.Frame{Reason: playback.ReasonTick, Index: 3, Total: 4, Playing: true, Speed: 2, PeriodMs: 250, State: playback.StateFinished, Position: &pos})

	expectLines(t, scrape(t, c),
		"dashboard_playback_ticks_total 2",
		`dashboard_playback_frames_total{reason="tick"} 2`,
		`dashboard_playback_frames_total{reason="control"} 1`,
		"dashboard_playback_index 3",
		"dashboard_trip_positions 4",
		"dashboard_playback_playing 1",
		"dashboard_playback_speed 2",
		"dashboard_playback_tick_period_seconds 0.25",
		`dashboard_playback_state{state="finished"} 1`,
		`dashboard_playback_state{state="playing"} 0`,
	)
}

func TestLoadObserve(t *testing.T) {
	c := NewCollector()
	c.LoadObserve("http", 20*time.Millisecond, nil)
	c.LoadObserve("file", time.Millisecond, errors.New("missing"))
	c.LoadObserve("file", time.Millisecond, errors.New("missing"))

	body := scrape(t, c)
	expectLines(t, body,
		`dashboard_trip_loads_total{result="ok",source="http"} 1`,
		`dashboard_trip_loads_total{result="error",source="file"} 2`,
		"dashboard_trip_load_duration_seconds_count 3",
	)
}

func TestStreamClients(t *testing.T) {
	c := NewCollector()
	c.StreamOpened()
	c.StreamOpened()
	c.StreamClosed()
	expectLines(t, scrape(t, c), "dashboard_stream_clients 1")
}
