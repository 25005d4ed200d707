package scene

import (
	"strconv"

	"trip-dashboard/internal/playback"
	"trip-dashboard/internal/trip"
)

// Icon describes a marker image. Every marker carries its own icon; there
// are no shared defaults.
type Icon struct {
	URL       string `json:"url"`
	ShadowURL string `json:"shadowUrl,omitempty"`
	Size      [2]int `json:"size"`
	Anchor    [2]int `json:"anchor"`
}

// Icons is the set of images markers are drawn with.
type Icons struct {
	Start  Icon
	End    Icon
	Moving Icon
}

// DefaultIcons points at the embedded static assets.
func DefaultIcons(base string) Icons {
	pin := Icon{
		URL:       base + "static/marker-icon.svg",
		ShadowURL: base + "static/marker-shadow.svg",
		Size:      [2]int{25, 41},
		Anchor:    [2]int{12, 41},
	}
	return Icons{
		Start: pin,
		End:   pin,
		Moving: Icon{
			URL:    base + "static/car-icon.svg",
			Size:   [2]int{36, 36},
			Anchor: [2]int{18, 18},
		},
	}
}

type Marker struct {
	Key      string        `json:"key"`
	Position trip.Position `json:"position"`
	Label    string        `json:"label"`
	Icon     Icon          `json:"icon"`
	Bearing  float64       `json:"bearing,omitempty"`
}

type Polyline struct {
	Positions []trip.Position `json:"positions"`
	Color     string          `json:"color"`
}

// Scene is everything the map draws for one frame.
type Scene struct {
	Route   *Polyline      `json:"route,omitempty"`
	Start   *Marker        `json:"start,omitempty"`
	End     *Marker        `json:"end,omitempty"`
	Vehicle *Marker        `json:"vehicle,omitempty"`
	Frame   playback.Frame `json:"frame"`
}

// RouteColor is the polyline color.
const RouteColor = "blue"

// Build lays out the route, the fixed start/end markers and the moving
// marker. With no positions the scene carries only the frame.
func Build(positions []trip.Position, f playback.Frame, icons Icons) Scene {
	s := Scene{Frame: f}
	n := len(positions)
	if n == 0 {
		return s
	}

	s.Route = &Polyline{Positions: positions, Color: RouteColor}
	s.Start = &Marker{Key: "start", Position: positions[0], Label: "Start", Icon: icons.Start}
	s.End = &Marker{Key: "end", Position: positions[n-1], Label: "End", Icon: icons.End}

	idx := f.Index
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	s.Vehicle = &Marker{
		Key:      "vehicle-" + strconv.FormatUint(f.Seq, 10),
		Position: positions[idx],
		Label:    "Vehicle moving... index: " + strconv.Itoa(idx),
		Icon:     icons.Moving,
		Bearing:  f.Bearing,
	}
	return s
}
