package dashboard

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"trip-dashboard/internal/playback"
)

// handleStream sends player frames as server-sent events. The current frame
// is sent first so a fresh client can draw immediately.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)

	frames, cancel := s.player.Subscribe()
	defer cancel()

	if s.metrics != nil {
		s.metrics.StreamOpened()
		defer s.metrics.StreamClosed()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeFrame(w, s.player.Snapshot()); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		log.Debug().Err(err).Msg("stream flush unsupported")
		return
	}

	keepAlive := time.NewTicker(s.keepAlive)
	defer keepAlive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case f, ok := <-frames:
			if !ok {
				return
			}
			if err := writeFrame(w, f); err != nil {
				return
			}
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func writeFrame(w http.ResponseWriter, f playback.Frame) error {
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %d\nevent: frame\ndata: %s\n\n", f.Seq, b)
	return err
}
