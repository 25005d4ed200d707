package trip

import (
	"testing"
	"time"
)

func TestSummarize(t *testing.T) {
	payload := `[
		{"timestamp": "2024-05-01T08:00:00Z", "location": {"lat": 0, "lng": 0}},
		{"timestamp": "2024-05-01T08:30:00Z", "event": "gps_lost"},
		{"timestamp": "2024-05-01T09:00:00Z", "location": {"lat": 0, "lng": 1}},
		{"time": 1714557600, "location": {"lat": 1, "lng": 1}}
	]`
	tr, err := Parse([]byte(payload))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	s := Summarize(tr)
	if s.Samples != 4 {
		t.Errorf("expected 4 samples, got: %d", s.Samples)
	}
	if s.Positions != 3 {
		t.Errorf("expected 3 positions, got: %d", s.Positions)
	}
	// two legs of one degree each, roughly 111 km apiece
	if s.DistanceMeters < 220000 || s.DistanceMeters > 225000 {
		t.Errorf("unexpected distance: %.0f", s.DistanceMeters)
	}
	// 1714557600 is 2024-05-01T10:00:00Z
	if s.Duration != 2*time.Hour {
		t.Errorf("expected 2h duration, got: %s", s.Duration)
	}
	if s.Bounds == nil || s.Bounds.MaxLat != 1 || s.Bounds.MinLng != 0 {
		t.Errorf("unexpected bounds: %+v", s.Bounds)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Samples != 0 || s.Positions != 0 || s.DistanceMeters != 0 {
		t.Errorf("expected zero summary, got: %+v", s)
	}
	if s.Bounds != nil || s.Start != nil || s.Duration != 0 {
		t.Errorf("expected no bounds or times, got: %+v", s)
	}
}

func TestSampleTime(t *testing.T) {
	tr, _ := Parse([]byte(`[
		{"timestamp": "not a time"},
		{"recorded_at": "1714550400"},
		{"timestamp": 1714550400.5}
	]`))

	if _, ok := tr[0].Time(); ok {
		t.Error("expected unparseable timestamp to be ignored")
	}
	ts, ok := tr[1].Time()
	if !ok || !ts.Equal(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected time from string seconds: %v %v", ts, ok)
	}
	ts, ok = tr[2].Time()
	if !ok || ts.Nanosecond() != 500000000 {
		t.Errorf("unexpected fractional time: %v %v", ts, ok)
	}
}
