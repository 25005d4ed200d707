package scene

import (
	"strings"
	"testing"

	"trip-dashboard/internal/playback"
	"trip-dashboard/internal/trip"
)

func TestBuild(t *testing.T) {
	icons := DefaultIcons("/")
	positions := []trip.Position{{Lat: 10, Lng: 20}, {Lat: 11, Lng: 21}, {Lat: 12, Lng: 22}}

	t.Run("markers", func(t *testing.T) {
		s := Build(positions, playback.Frame{Seq: 7, Index: 1, Total: 3}, icons)

		if s.Route == nil || len(s.Route.Positions) != 3 || s.Route.Color != RouteColor {
			t.Fatalf("unexpected route: %+v", s.Route)
		}
		if s.Start == nil || s.Start.Position != positions[0] || s.Start.Label != "Start" {
			t.Errorf("unexpected start marker: %+v", s.Start)
		}
		if s.End == nil || s.End.Position != positions[2] || s.End.Label != "End" {
			t.Errorf("unexpected end marker: %+v", s.End)
		}
		if s.Vehicle == nil {
			t.Fatal("expected a vehicle marker")
		}
		if s.Vehicle.Position != positions[1] {
			t.Errorf("expected vehicle at %v, got: %v", positions[1], s.Vehicle.Position)
		}
		if s.Vehicle.Label != "Vehicle moving... index: 1" {
			t.Errorf("unexpected vehicle label: %q", s.Vehicle.Label)
		}
		if s.Vehicle.Key != "vehicle-7" {
			t.Errorf("expected key vehicle-7, got: %q", s.Vehicle.Key)
		}
	})

	t.Run("icons", func(t *testing.T) {
		s := Build(positions, playback.Frame{}, icons)
		if s.Start.Icon.URL == "" || s.End.Icon.URL == "" || s.Vehicle.Icon.URL == "" {
			t.Fatal("expected every marker to carry an icon")
		}
		if !strings.HasSuffix(s.Vehicle.Icon.URL, "car-icon.svg") {
			t.Errorf("expected the moving icon on the vehicle, got: %q", s.Vehicle.Icon.URL)
		}
		if s.Start.Icon != icons.Start || s.End.Icon != icons.End {
			t.Error("expected fixed markers to use their own icons")
		}
	})

	t.Run("key per frame", func(t *testing.T) {
		a := Build(positions, playback.Frame{Seq: 1, Index: 1}, icons)
		b := Build(positions, playback.Frame{Seq: 2, Index: 1}, icons)
		if a.Vehicle.Key == b.Vehicle.Key {
			t.Errorf("expected distinct keys, got: %q twice", a.Vehicle.Key)
		}
	})

	t.Run("index clamped", func(t *testing.T) {
		s := Build(positions, playback.Frame{Index: 9}, icons)
		if s.Vehicle.Position != positions[2] {
			t.Errorf("expected vehicle at last position, got: %v", s.Vehicle.Position)
		}
	})

	t.Run("single position", func(t *testing.T) {
		one := positions[:1]
		s := Build(one, playback.Frame{}, icons)
		if s.Start.Position != s.End.Position || s.Vehicle.Position != one[0] {
			t.Errorf("expected all markers on the only position, got: %+v", s)
		}
	})

	t.Run("empty", func(t *testing.T) {
		f := playback.Frame{State: playback.StateEmpty}
		s := Build(nil, f, icons)
		if s.Route != nil || s.Start != nil || s.End != nil || s.Vehicle != nil {
			t.Errorf("expected an empty scene, got: %+v", s)
		}
		if s.Frame.State != playback.StateEmpty {
			t.Errorf("expected frame to be kept, got: %+v", s.Frame)
		}
	})
}

func TestDefaultIcons(t *testing.T) {
	icons := DefaultIcons("/app/")
	if icons.Start.URL != "/app/static/marker-icon.svg" {
		t.Errorf("unexpected start icon: %q", icons.Start.URL)
	}
	if icons.Start.ShadowURL != "/app/static/marker-shadow.svg" {
		t.Errorf("unexpected shadow: %q", icons.Start.ShadowURL)
	}
	if icons.Moving.URL != "/app/static/car-icon.svg" {
		t.Errorf("unexpected moving icon: %q", icons.Moving.URL)
	}
}
