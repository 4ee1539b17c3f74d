package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/vbonduro/toyinv/internal/inventory"
)

// handleEvents streams an "event: state" message after every state change.
// Pages react by fetching /toys/screen. Changes that arrive while a message
// is being written are coalesced into the next one.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	// The stream outlives the server write timeout.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		s.logger.Debug("clear write deadline failed", "error", err)
	}

	changed := make(chan struct{}, 1)
	unsubscribe := s.app.Subscribe(func(inventory.State) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if !s.writeEvent(w, rc, "state", s.app.State().Version) {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-changed:
			if !s.writeEvent(w, rc, "state", s.app.State().Version) {
				return
			}
		}
	}
}

func (s *Server) writeEvent(w http.ResponseWriter, rc *http.ResponseController, event string, version uint64) bool {
	data, err := json.Marshal(map[string]uint64{"version": version})
	if err != nil {
		s.logger.Error("encode event failed", "error", err)
		return false
	}
	if _, err := w.Write([]byte("event: " + event + "\ndata: " + string(data) + "\n\n")); err != nil {
		return false
	}
	if err := rc.Flush(); err != nil {
		s.logger.Debug("flush event failed", "error", err)
		return false
	}
	return true
}
