package dashboard

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"

	"trip-dashboard/internal/playback"
	"trip-dashboard/internal/scene"
	"trip-dashboard/internal/trip"
)

type playbackResponse struct {
	Controls playback.Controls `json:"controls"`
	Frame    playback.Frame    `json:"frame"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	positions := s.player.Positions()
	f := s.player.Snapshot()
	writeJSON(w, http.StatusOK, scene.Build(positions, f, s.icons))
}

type summaryResponse struct {
	Name string `json:"name"`
	trip.Summary
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, summaryResponse{
		Name:    s.tripName,
		Summary: trip.Summarize(s.player.Trip()),
	})
}

func (s *Server) handlePlayback(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.playbackState())
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	s.panel.Toggle()
	writeJSON(w, http.StatusOK, s.playbackState())
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	v, err := readSpeed(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if _, err := s.panel.SetSpeed(v); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, playback.ErrInvalidSpeed) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.playbackState())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) playbackState() playbackResponse {
	return playbackResponse{
		Controls: s.panel.State(),
		Frame:    s.player.Snapshot(),
	}
}

// readSpeed accepts {"speed": 1.5} or a speed form/query value.
func readSpeed(r *http.Request) (float64, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		var body struct {
			Speed *float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return 0, errors.New("invalid JSON body")
		}
		if body.Speed == nil {
			return 0, errors.New("missing speed")
		}
		return *body.Speed, nil
	}
	if err := r.ParseForm(); err != nil {
		return 0, errors.New("invalid form body")
	}
	raw := r.FormValue("speed")
	if raw == "" {
		return 0, errors.New("missing speed")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New("speed must be a number")
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
