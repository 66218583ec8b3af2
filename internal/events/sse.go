package events

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

var ssePingInterval = 15 * time.Second

func WriteSSE(w http.ResponseWriter, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if ev.EventID != "" {
		if _, err := fmt.Fprintf(w, "id: %s\n", ev.EventID); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "event: %s\n", ev.Event); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	return nil
}

// SetSSEHeaders applies headers that keep event streams stable across proxies.
func SetSSEHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache, no-transform")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	h.Set("X-Content-Type-Options", "nosniff")
}

// SSEHandler streams buffered events after Last-Event-ID and then live ones.
func SSEHandler(buf *Buffer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "stream_not_supported", http.StatusInternalServerError)
			return
		}
		SetSSEHeaders(w)
		metricStreams.Add(1)
		defer metricStreams.Add(-1)

		ch := buf.Subscribe()
		defer buf.Unsubscribe(ch)

		lastID := r.Header.Get("Last-Event-ID")
		if lastID == "" {
			lastID = r.URL.Query().Get("last_event_id")
		}
		sent := lastID
		for _, ev := range buf.ReplayAfter(lastID) {
			if err := WriteSSE(w, ev); err != nil {
				return
			}
			sent = ev.EventID
		}
		flusher.Flush()

		ticker := time.NewTicker(ssePingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-r.Context().Done():
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				if !newer(ev.EventID, sent) {
					continue
				}
				if err := WriteSSE(w, ev); err != nil {
					return
				}
				sent = ev.EventID
				flusher.Flush()
			case <-ticker.C:
				ping := Event{Event: "ping", ServerTS: time.Now().UnixMilli(), Data: map[string]any{}}
				if err := WriteSSE(w, ping); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}

// newer guards against sending an event twice when it was published between
// Subscribe and ReplayAfter.
func newer(id, last string) bool {
	if last == "" {
		return true
	}
	if len(id) != len(last) {
		return len(id) > len(last)
	}
	return id > last
}
