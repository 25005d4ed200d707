package trip

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotArray is returned when a trip payload is valid JSON but not an array.
var ErrNotArray = errors.New("trip payload is not a JSON array")

// Parse decodes a trip payload. The payload must be a JSON array; elements
// that are not objects, or whose location is malformed, are kept as samples
// without a usable position.
func Parse(data []byte) (Trip, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("decode trip: empty payload")
	}
	if data[0] != '[' {
		if !json.Valid(data) {
			return nil, fmt.Errorf("decode trip: invalid JSON")
		}
		return nil, ErrNotArray
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, fmt.Errorf("decode trip: %w", err)
	}

	t := make(Trip, 0, len(elems))
	for _, raw := range elems {
		t = append(t, parseSample(raw))
	}
	return t, nil
}

func parseSample(raw json.RawMessage) Sample {
	s := Sample{Raw: raw}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		// null, string, number, array
		return s
	}
	s.Fields = fields

	locRaw, ok := fields["location"]
	if !ok {
		return s
	}
	var loc map[string]json.RawMessage
	if err := json.Unmarshal(locRaw, &loc); err != nil || loc == nil {
		return s
	}

	l := &Location{}
	l.Lat, l.LatValid = jsonNumber(loc["lat"])
	l.Lng, l.LngValid = jsonNumber(loc["lng"])
	s.Location = l
	return s
}

// jsonNumber reports whether raw is a JSON number literal. Quoted numbers,
// booleans and null do not count.
func jsonNumber(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}
	c := raw[0]
	if c != '-' && (c < '0' || c > '9') {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	return f, true
}

// NewSample builds a sample from known coordinates. Used by sources that do
// not go through a JSON payload, such as the database loader.
func NewSample(lat, lng float64, fields map[string]json.RawMessage) Sample {
	if fields == nil {
		fields = map[string]json.RawMessage{}
	}
	loc, _ := json.Marshal(map[string]float64{"lat": lat, "lng": lng})
	fields["location"] = loc
	raw, _ := json.Marshal(fields)
	return Sample{
		Location: &Location{Lat: lat, Lng: lng, LatValid: true, LngValid: true},
		Fields:   fields,
		Raw:      raw,
	}
}
