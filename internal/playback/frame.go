package playback

import (
	"time"

	"trip-dashboard/internal/trip"
)

// Frame is one observable player state. Seq changes on every emitted frame
// so views can give the moving marker a fresh identity per tick.
type Frame struct {
	Seq      uint64         `json:"seq"`
	Reason   Reason         `json:"reason,omitempty"`
	Index    int            `json:"index"`
	Total    int            `json:"total"`
	Position *trip.Position `json:"position,omitempty"`
	Bearing  float64        `json:"bearing"`
	Progress float64        `json:"progress"`
	Playing  bool           `json:"playing"`
	Speed    Speed          `json:"speed"`
	PeriodMs int64          `json:"periodMs"`
	State    State          `json:"state"`
	At       time.Time      `json:"at"`
}
