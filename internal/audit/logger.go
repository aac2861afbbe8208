package audit

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type EventType string

const (
	EventSessionCreate    EventType = "session_create"
	EventSessionDissolve  EventType = "session_dissolve"
	EventGameStart        EventType = "game_start"
	EventGameEnd          EventType = "game_end"
	EventAdminAdvance     EventType = "admin_advance"
	EventAdminAuthFailure EventType = "admin_auth_failure"
)

type Event struct {
	Type      EventType
	SessionID string
	ActorID   string
	IP        string
	Details   map[string]interface{}
}

// Log writes a structured audit line. Audit entries share the application
// log stream but carry a fixed marker so they can be filtered downstream.
func Log(ctx context.Context, event Event) {
	logger := log.With().
		Str("audit", "game").
		Str("event_type", string(event.Type)).
		Time("timestamp", time.Now()).
		Logger()

	if event.SessionID != "" {
		logger = logger.With().Str("session_id", event.SessionID).Logger()
	}
	if event.ActorID != "" {
		logger = logger.With().Str("actor_id", event.ActorID).Logger()
	}
	if event.IP != "" {
		logger = logger.With().Str("ip", event.IP).Logger()
	}

	logEvent := logger.Info()
	for k, v := range event.Details {
		logEvent = addField(logEvent, k, v)
	}
	logEvent.Msg("game audit event")
}

func addField(e *zerolog.Event, key string, value interface{}) *zerolog.Event {
	switch v := value.(type) {
	case string:
		return e.Str(key, v)
	case int:
		return e.Int(key, v)
	case int64:
		return e.Int64(key, v)
	case bool:
		return e.Bool(key, v)
	default:
		return e.Interface(key, v)
	}
}
