package trip

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"trip-dashboard/internal/geo"
)

// Summary describes a loaded trip for the side panel.
type Summary struct {
	Samples        int           `json:"samples"`
	Positions      int           `json:"positions"`
	DistanceMeters float64       `json:"distanceMeters"`
	Start          *time.Time    `json:"start,omitempty"`
	End            *time.Time    `json:"end,omitempty"`
	Duration       time.Duration `json:"durationNs"`
	Bounds         *geo.Bounds   `json:"bounds,omitempty"`
}

// timestamp keys checked in order
var timeKeys = []string{"timestamp", "time", "recordedAt", "recorded_at"}

// Summarize computes distance, duration and bounds for t. Duration is only
// set when the first and last positioned samples carry a parseable time.
func Summarize(t Trip) Summary {
	s := Summary{Samples: len(t)}

	lats := make([]float64, 0, len(t))
	lons := make([]float64, 0, len(t))
	var first, last *time.Time
	for _, smp := range t {
		p, ok := smp.Position()
		if !ok {
			continue
		}
		lats = append(lats, p.Lat)
		lons = append(lons, p.Lng)
		if ts, ok := smp.Time(); ok {
			if first == nil {
				first = &ts
			}
			last = &ts
		}
	}
	s.Positions = len(lats)

	if cum := geo.CumDistances(lats, lons); len(cum) > 0 {
		s.DistanceMeters = cum[len(cum)-1]
	}
	if b, ok := geo.BoundsOf(lats, lons); ok {
		s.Bounds = &b
	}
	if first != nil && last != nil && !last.Before(*first) {
		s.Start, s.End = first, last
		s.Duration = last.Sub(*first)
	}
	return s
}

// Time returns the sample's recorded time when one of the known timestamp
// fields holds an RFC 3339 string or unix seconds.
func (s Sample) Time() (time.Time, bool) {
	for _, k := range timeKeys {
		raw, ok := s.Fields[k]
		if !ok {
			continue
		}
		if ts, ok := parseTime(raw); ok {
			return ts, true
		}
	}
	return time.Time{}, false
}

func parseTime(raw json.RawMessage) (time.Time, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return time.Time{}, false
	}
	if raw[0] == '"' {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return time.Time{}, false
		}
		if ts, err := time.Parse(time.RFC3339Nano, str); err == nil {
			return ts, true
		}
		if f, err := strconv.ParseFloat(str, 64); err == nil {
			return unixSeconds(f), true
		}
		return time.Time{}, false
	}
	if f, ok := jsonNumber(raw); ok {
		return unixSeconds(f), true
	}
	return time.Time{}, false
}

func unixSeconds(f float64) time.Time {
	sec := int64(f)
	nsec := int64((f - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC()
}
