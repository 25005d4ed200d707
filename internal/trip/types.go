package trip

import (
	"encoding/json"
	"math"
)

// Position is a filtered (lat, lng) pair.
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Sample is one recorded point of a trip. Only Location is consumed by
// playback; every other field is kept verbatim in Fields.
type Sample struct {
	Location *Location                 // nil when missing or not an object
	Fields   map[string]json.RawMessage // all top-level fields, location included
	Raw      json.RawMessage           // element as it appeared in the payload
}

// Location holds the decoded coordinates. Lat/Lng are only meaningful when
// the matching Valid flag is set (the JSON value was a finite number).
type Location struct {
	Lat      float64
	Lng      float64
	LatValid bool
	LngValid bool
}

// Trip is the ordered, immutable collection of samples for one journey.
type Trip []Sample

func (s Sample) valid() bool {
	if s.Location == nil || !s.Location.LatValid || !s.Location.LngValid {
		return false
	}
	return isFinite(s.Location.Lat) && isFinite(s.Location.Lng)
}

// Position returns the sample's coordinates and whether they are usable.
func (s Sample) Position() (Position, bool) {
	if !s.valid() {
		return Position{}, false
	}
	return Position{Lat: s.Location.Lat, Lng: s.Location.Lng}, true
}

// Positions drops samples without numeric coordinates and projects the rest
// to positions, preserving order.
func Positions(t Trip) []Position {
	out := make([]Position, 0, len(t))
	for _, s := range t {
		if p, ok := s.Position(); ok {
			out = append(out, p)
		}
	}
	return out
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
