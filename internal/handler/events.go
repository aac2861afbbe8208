package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/lunabot/werewolf-server-go/internal/events"
	redisclient "github.com/lunabot/werewolf-server-go/internal/redis"
)

// EventsHandler streams engine notifications to a transport client over SSE.
type EventsHandler struct {
	broker *events.Broker
}

func NewEventsHandler(broker *events.Broker) *EventsHandler {
	return &EventsHandler{broker: broker}
}

// GET /v1/games/{id}/events?participantId=...
// Streams the session's public events, plus the participant's private events
// (role reveal) when participantId is given.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Streaming not supported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	sessionClient := h.broker.Subscribe(redisclient.SessionChannel(sessionID))
	defer h.broker.Unsubscribe(sessionClient)

	var participantEvents chan events.Event
	if participantID := r.URL.Query().Get("participantId"); participantID != "" {
		participantClient := h.broker.Subscribe(redisclient.ParticipantChannel(participantID))
		defer h.broker.Unsubscribe(participantClient)
		participantEvents = participantClient.Events
	}

	log.Info().Str("sessionId", sessionID).Msg("event stream established")

	heartbeat := time.NewTicker(events.HeartbeatInterval)
	defer heartbeat.Stop()

	ctx := r.Context()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sessionClient.Done:
			return
		case event := <-sessionClient.Events:
			h.sendEvent(w, flusher, event)
		case event := <-participantEvents:
			h.sendEvent(w, flusher, event)
		case <-heartbeat.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}

func (h *EventsHandler) sendEvent(w http.ResponseWriter, flusher http.Flusher, event events.Event) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data)
	flusher.Flush()
}
