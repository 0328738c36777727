package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/romfetch/pkg/infra/events"
)

// EventStreamHandler relays download events as server-sent events
type EventStreamHandler struct {
	broker *events.Broker
}

// NewEventStreamHandler creates a new EventStreamHandler
func NewEventStreamHandler(broker *events.Broker) *EventStreamHandler {
	return &EventStreamHandler{broker: broker}
}

// Handle streams events until the client disconnects. With ?id= only events
// of that download are sent.
//
//	event: download:progress
//	data: {"download_id":"...","filesize":100,"transferred":50,...}
func (h *EventStreamHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(ctx, w, goerr.New("streaming is not supported"), http.StatusInternalServerError)
		return
	}

	sub := h.broker.Subscribe()
	defer sub.Close()

	filter := r.URL.Query().Get("id")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// Tells the client the subscription is live.
	if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-sub.Events():
			if filter != "" && ev.Payload.DownloadID != filter {
				continue
			}

			data, err := json.Marshal(ev.Payload)
			if err != nil {
				logger.Error("Failed to marshal event", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, data); err != nil {
				logger.Debug("Event stream closed", "error", err)
				return
			}
			flusher.Flush()
		}
	}
}
