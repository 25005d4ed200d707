package geo

import "math"

const earthRadiusMeters = 6371000.0

// Haversine distance in meters
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// Bearing returns the initial bearing from a to b in degrees, [0, 360).
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	y := math.Sin((lon2-lon1)*math.Pi/180.0) * math.Cos(lat2*math.Pi/180.0)
	x := math.Cos(lat1*math.Pi/180.0)*math.Sin(lat2*math.Pi/180.0) - math.Sin(lat1*math.Pi/180.0)*math.Cos(lat2*math.Pi/180.0)*math.Cos((lon2-lon1)*math.Pi/180.0)
	brng := math.Atan2(y, x) * 180.0 / math.Pi
	if brng < 0 {
		brng += 360
	}
	return brng
}

// CumDistances returns the cumulative path length at each point. lats and
// lons must have the same length.
func CumDistances(lats, lons []float64) []float64 {
	n := len(lats)
	if n == 0 {
		return nil
	}
	cum := make([]float64, n)
	sum := 0.0
	for i := 1; i < n; i++ {
		sum += Haversine(lats[i-1], lons[i-1], lats[i], lons[i])
		cum[i] = sum
	}
	return cum
}

// Bounds is a lat/lng bounding box.
type Bounds struct {
	MinLat float64 `json:"minLat"`
	MinLng float64 `json:"minLng"`
	MaxLat float64 `json:"maxLat"`
	MaxLng float64 `json:"maxLng"`
}

// Extend grows b to include the point.
func (b Bounds) Extend(lat, lng float64) Bounds {
	b.MinLat = math.Min(b.MinLat, lat)
	b.MinLng = math.Min(b.MinLng, lng)
	b.MaxLat = math.Max(b.MaxLat, lat)
	b.MaxLng = math.Max(b.MaxLng, lng)
	return b
}

// BoundsOf returns the bounding box of the points, or ok=false when empty.
func BoundsOf(lats, lons []float64) (b Bounds, ok bool) {
	if len(lats) == 0 {
		return Bounds{}, false
	}
	b = Bounds{MinLat: lats[0], MinLng: lons[0], MaxLat: lats[0], MaxLng: lons[0]}
	for i := 1; i < len(lats); i++ {
		b = b.Extend(lats[i], lons[i])
	}
	return b, true
}
