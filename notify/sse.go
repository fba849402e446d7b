package notify

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/user/inkwell-go/apperror"
	"github.com/user/inkwell-go/logging"
)

const heartbeatInterval = 25 * time.Second

// StreamHandler serves GET /api/events?topic=<topic> as a text/event-stream.
type StreamHandler struct {
	hub       *Hub
	log       logging.Logger
	topics    map[string]bool
	heartbeat time.Duration
}

func NewStreamHandler(hub *Hub, log logging.Logger, topics ...string) *StreamHandler {
	allowed := make(map[string]bool, len(topics))
	for _, t := range topics {
		allowed[t] = true
	}
	return &StreamHandler{hub: hub, log: log.With("component", "sse"), topics: allowed, heartbeat: heartbeatInterval}
}

// ServeHTTP godoc
// @Summary Subscribe to change notifications
// @Tags Events
// @Produce text/event-stream
// @Param topic query string false "blogs or comments" default(blogs)
// @Success 200 {string} string "event stream"
// @Failure 400 {object} apperror.ErrorResponse "Unknown topic"
// @Router /api/events [get]
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("topic")
	if topic == "" {
		topic = TopicBlogs
	}
	if !h.topics[topic] {
		apperror.WriteError(w, r, apperror.NewBadRequestError(fmt.Sprintf("unknown topic %q", topic), nil))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		apperror.WriteError(w, r, apperror.NewInternalError("streaming unsupported", nil))
		return
	}

	// Streams outlive the server's write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	id, events := h.hub.Subscribe(topic)
	defer h.hub.Unsubscribe(id)
	h.log.Debug(r.Context(), "sse client connected", "client_id", id, "topic", topic)

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.log.Debug(r.Context(), "sse client disconnected", "client_id", id)
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(w, ev); err != nil {
				h.log.Warn(r.Context(), "failed to write sse event", "client_id", id, "error", err)
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, ev Event) error {
	data, err := json.Marshal(ev.Data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, data)
	return err
}
