package playback

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestPeriod(t *testing.T) {
	tests := []struct {
		speed Speed
		want  time.Duration
	}{
		{0.5, 1000 * time.Millisecond},
		{1, 500 * time.Millisecond},
		{1.5, 333 * time.Millisecond},
		{2, 250 * time.Millisecond},
		{2.5, 200 * time.Millisecond},
		{3, 166 * time.Millisecond},
		{20, 50 * time.Millisecond},
		{1000, 50 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := Period(tt.speed); got != tt.want {
			t.Errorf("speed %v: expected %s, got: %s", tt.speed, tt.want, got)
		}
	}

	for s := MinSpeed; s <= MaxSpeed; s += SpeedStep {
		if Period(s) < MinPeriod {
			t.Errorf("speed %v: period below floor", s)
		}
	}
	if Period(0) != BasePeriod {
		t.Error("expected base period for zero speed")
	}
}

func TestParseSpeed(t *testing.T) {
	for _, v := range []float64{0.5, 1, 1.5, 2, 2.5, 3} {
		s, err := ParseSpeed(v)
		if err != nil {
			t.Errorf("speed %v: unexpected error: %v", v, err)
		}
		if float64(s) != v {
			t.Errorf("speed %v: stored %v", v, s)
		}
	}

	for _, v := range []float64{0, 0.25, 0.75, 3.5, -1, 1.2, math.NaN(), math.Inf(1)} {
		if _, err := ParseSpeed(v); !errors.Is(err, ErrInvalidSpeed) {
			t.Errorf("speed %v: expected ErrInvalidSpeed, got: %v", v, err)
		}
	}
}
