package dashboard

import (
	"encoding/json"
	"fmt"
	"net/http"

	"trip-dashboard/internal/playback"
)

type speedBounds struct {
	Min  playback.Speed `json:"min"`
	Max  playback.Speed `json:"max"`
	Step playback.Speed `json:"step"`
}

// handleDynamic renders page settings as JS globals.
func (s *Server) handleDynamic(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")

	tileURI, _ := json.Marshal(s.cfg.MapTileURI)
	attribution, _ := json.Marshal(s.cfg.MapAttribution)
	center, _ := json.Marshal([2]float64{s.cfg.MapCenterLat, s.cfg.MapCenterLng})
	zoom, _ := json.Marshal(s.cfg.MapZoom)
	carIcon, _ := json.Marshal(s.icons.Moving)
	speeds, _ := json.Marshal(speedBounds{Min: playback.MinSpeed, Max: playback.MaxSpeed, Step: playback.SpeedStep})

	fmt.Fprintf(w, "var TILE_URI = %s;\n", tileURI)
	fmt.Fprintf(w, "var ATTRIBUTION = %s;\n", attribution)
	fmt.Fprintf(w, "var MAP_CENTER = %s;\n", center)
	fmt.Fprintf(w, "var MAP_ZOOM = %s;\n", zoom)
	fmt.Fprintf(w, "var CAR_ICON = %s;\n", carIcon)
	fmt.Fprintf(w, "var SPEED_BOUNDS = %s;\n", speeds)
}
