package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const eventsKeepAlive = 25 * time.Second

type stateEvent struct {
	Revision uint64 `json:"revision"`
	Frames   int    `json:"frames"`
	Busy     bool   `json:"busy"`
	Progress int    `json:"progress,omitempty"`
}

// eventsHandler streams a "state" event whenever the session changes.
// Bursts of changes collapse into one event; clients refetch /state.
func eventsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			WriteError(w, http.StatusInternalServerError, "streaming unsupported", "INTERNAL_ERROR")
			return
		}

		// The listener runs under the studio lock, so it only signals.
		changed := make(chan struct{}, 1)
		cancel := cfg.Studio.Subscribe(func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
		defer cancel()

		h := w.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		h.Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)

		if err := writeStateEvent(w, cfg); err != nil {
			return
		}
		flusher.Flush()

		ticker := time.NewTicker(eventsKeepAlive)
		defer ticker.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-changed:
				if err := writeStateEvent(w, cfg); err != nil {
					return
				}
			case <-ticker.C:
				if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
					return
				}
			}
			flusher.Flush()
		}
	}
}

func writeStateEvent(w http.ResponseWriter, cfg ServerConfig) error {
	st := cfg.Studio.State()
	ev := stateEvent{Revision: st.Revision, Frames: len(st.Frames), Busy: st.Busy}
	if st.Job != nil && st.Busy {
		ev.Progress = st.Job.Progress
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: state\ndata: %s\n\n", data)
	return err
}
