package geo

import (
	"math"
	"testing"
)

func TestHaversine(t *testing.T) {
	// one degree of latitude
	d := Haversine(0, 0, 1, 0)
	if math.Abs(d-111195) > 5 {
		t.Errorf("expected ~111195m, got: %.1f", d)
	}
	if Haversine(10, 20, 10, 20) != 0 {
		t.Error("expected zero distance for identical points")
	}
}

func TestBearing(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
	}{
		{"north", 0, 0, 1, 0, 0},
		{"east", 0, 0, 0, 1, 90},
		{"south", 1, 0, 0, 0, 180},
		{"west", 0, 1, 0, 0, 270},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Bearing(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("expected %.1f, got: %.6f", tt.want, got)
			}
		})
	}
}

func TestCumDistances(t *testing.T) {
	if CumDistances(nil, nil) != nil {
		t.Error("expected nil for no points")
	}
	cum := CumDistances([]float64{0, 1, 2}, []float64{0, 0, 0})
	if len(cum) != 3 || cum[0] != 0 {
		t.Fatalf("unexpected cumulative distances: %v", cum)
	}
	if math.Abs(cum[2]-2*cum[1]) > 1 {
		t.Errorf("expected evenly spaced legs, got: %v", cum)
	}
}

func TestBoundsOf(t *testing.T) {
	if _, ok := BoundsOf(nil, nil); ok {
		t.Error("expected no bounds for empty input")
	}
	b, ok := BoundsOf([]float64{10, -5, 3}, []float64{20, 40, -7})
	if !ok {
		t.Fatal("expected bounds")
	}
	want := Bounds{MinLat: -5, MinLng: -7, MaxLat: 10, MaxLng: 40}
	if b != want {
		t.Errorf("expected %+v, got: %+v", want, b)
	}
}
