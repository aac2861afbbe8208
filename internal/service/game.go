// Package service implements the game session engine: lifecycle, role
// assignment, phase resolution and win evaluation. All mutating operations on
// one session are serialized behind a per-session lock; different sessions
// proceed independently.
package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/lunabot/werewolf-server-go/internal/events"
	"github.com/lunabot/werewolf-server-go/internal/repository"
	"github.com/lunabot/werewolf-server-go/internal/rules"
)

// Publisher delivers outbound notification payloads. The transport decides
// how they reach players; the engine only emits them.
type Publisher interface {
	PublishSession(ctx context.Context, sessionID string, event events.Event) error
	PublishParticipant(ctx context.Context, participantID string, event events.Event) error
}

var _ Publisher = (*events.Broker)(nil)

type GameService struct {
	sessions     repository.SessionRepository
	participants repository.ParticipantRepository
	rules        rules.Ruleset
	publisher    Publisher
	locks        *sessionLocks
}

func NewGameService(
	sessions repository.SessionRepository,
	participants repository.ParticipantRepository,
	ruleset rules.Ruleset,
	publisher Publisher,
) *GameService {
	return &GameService{
		sessions:     sessions,
		participants: participants,
		rules:        ruleset,
		publisher:    publisher,
		locks:        newSessionLocks(),
	}
}

// emitSession publishes on the session channel. Delivery is best effort; a
// failed publish never fails the operation that produced it.
func (s *GameService) emitSession(ctx context.Context, sessionID string, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSession(ctx, sessionID, event); err != nil {
		log.Warn().Err(err).Str("sessionId", sessionID).Str("event", string(event.Type)).Msg("failed to publish session event")
	}
}

func (s *GameService) emitParticipant(ctx context.Context, participantID string, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishParticipant(ctx, participantID, event); err != nil {
		log.Warn().Err(err).Str("participantId", participantID).Str("event", string(event.Type)).Msg("failed to publish participant event")
	}
}
