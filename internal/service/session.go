package service

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apperrors "github.com/lunabot/werewolf-server-go/internal/errors"
	"github.com/lunabot/werewolf-server-go/internal/events"
	"github.com/lunabot/werewolf-server-go/internal/model"
	"github.com/lunabot/werewolf-server-go/internal/repository"
	"github.com/lunabot/werewolf-server-go/internal/rules"
	"github.com/lunabot/werewolf-server-go/internal/util"
)

const (
	minNameLength = 3
	maxNameLength = 50

	// joinCodeAttempts bounds the retry loop when the store reports a
	// join-code collision.
	joinCodeAttempts = 5
)

func (s *GameService) CreateSession(ctx context.Context, ownerID, name string) (*model.Session, error) {
	if ownerID == "" {
		return nil, apperrors.New(apperrors.ErrCodeValidation, "Owner id is required")
	}
	if n := utf8.RuneCountInString(name); n < minNameLength || n > maxNameLength {
		return nil, apperrors.InvalidName("Session name must be between 3 and 50 characters")
	}

	for attempt := 0; attempt < joinCodeAttempts; attempt++ {
		code, err := util.GenerateJoinCode()
		if err != nil {
			return nil, apperrors.Internal("Failed to generate join code").WithCause(err)
		}

		session, err := s.sessions.Create(ctx, model.CreateSessionParams{
			ID:              uuid.NewString(),
			Name:            name,
			OwnerID:         ownerID,
			JoinCode:        code,
			MinParticipants: s.rules.MinParticipants,
			MaxParticipants: s.rules.MaxParticipants,
		})
		if repository.IsUniqueViolation(err) {
			log.Debug().Str("joinCode", code).Msg("join code collision, retrying")
			continue
		}
		if err != nil {
			return nil, apperrors.Database("Failed to create session", err)
		}

		log.Info().
			Str("sessionId", session.ID).
			Str("ownerId", ownerID).
			Str("joinCode", session.JoinCode).
			Msg("session created")

		s.emitSession(ctx, session.ID, events.NewEvent(events.TypeSessionCreated, events.SessionCreated{
			SessionID: session.ID,
			Name:      session.Name,
			JoinCode:  session.JoinCode,
			OwnerID:   session.OwnerID,
		}))

		return session, nil
	}

	return nil, apperrors.Internal("Could not allocate a unique join code")
}

func (s *GameService) JoinSession(ctx context.Context, sessionID, externalID, displayName string) (*model.Participant, error) {
	release := s.locks.acquire(sessionID)
	defer release()

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.StatusLobby {
		return nil, apperrors.NotJoinable("Session is no longer accepting players")
	}

	existing, err := s.participants.FindByExternalID(ctx, sessionID, externalID)
	if err != nil {
		return nil, apperrors.Database("Failed to look up participant", err)
	}
	if existing != nil {
		return nil, apperrors.AlreadyJoined()
	}

	count, err := s.participants.CountBySession(ctx, sessionID)
	if err != nil {
		return nil, apperrors.Database("Failed to count participants", err)
	}
	if count >= session.MaxParticipants {
		return nil, apperrors.SessionFull()
	}

	participant, err := s.participants.Create(ctx, model.CreateParticipantParams{
		ID:          uuid.NewString(),
		SessionID:   sessionID,
		ExternalID:  externalID,
		DisplayName: displayName,
	})
	if err != nil {
		return nil, apperrors.Database("Failed to create participant", err)
	}

	session.LastActivityAt = time.Now()
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, apperrors.Database("Failed to save session", err)
	}

	log.Info().
		Str("sessionId", sessionID).
		Str("participantId", participant.ID).
		Str("externalId", externalID).
		Msg("participant joined")

	s.emitSession(ctx, sessionID, events.NewEvent(events.TypeParticipantJoined, events.ParticipantJoined{
		SessionID:        sessionID,
		ParticipantID:    participant.ID,
		DisplayName:      participant.DisplayName,
		ParticipantCount: count + 1,
		OwnerID:          session.OwnerID,
	}))

	return participant, nil
}

type LeaveResult struct {
	Session *model.Session
	// Dissolved is set when the last lobby participant left and the session
	// was deleted.
	Dissolved bool
	// NewOwnerID is set when ownership moved to the earliest-joined remaining
	// participant.
	NewOwnerID *string
	// Died is set when the leaver was in an active game: the record stays and
	// the character dies instead.
	Died bool
	End  *EndResult
}

func (s *GameService) LeaveSession(ctx context.Context, sessionID, externalID string) (*LeaveResult, error) {
	release := s.locks.acquire(sessionID)
	defer release()

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	participant, err := s.participants.FindByExternalID(ctx, sessionID, externalID)
	if err != nil {
		return nil, apperrors.Database("Failed to look up participant", err)
	}
	if participant == nil {
		return nil, apperrors.NotFound("Participant")
	}

	switch session.Status {
	case model.StatusLobby:
		return s.leaveLobby(ctx, session, participant)
	case model.StatusActive:
		return s.leaveActive(ctx, session, participant)
	default:
		return nil, apperrors.NotJoinable("Session has already ended")
	}
}

func (s *GameService) leaveLobby(ctx context.Context, session *model.Session, participant *model.Participant) (*LeaveResult, error) {
	if err := s.participants.Delete(ctx, participant.ID); err != nil {
		return nil, apperrors.Database("Failed to remove participant", err)
	}

	result := &LeaveResult{Session: session}

	if session.OwnerID == participant.ExternalID {
		remaining, err := s.participants.ListBySession(ctx, session.ID)
		if err != nil {
			return nil, apperrors.Database("Failed to list participants", err)
		}
		if len(remaining) == 0 {
			if err := s.sessions.Delete(ctx, session.ID); err != nil {
				return nil, apperrors.Database("Failed to delete session", err)
			}
			log.Info().Str("sessionId", session.ID).Msg("empty lobby dissolved")
			result.Dissolved = true

			s.emitSession(ctx, session.ID, events.NewEvent(events.TypeParticipantLeft, events.ParticipantLeft{
				SessionID:     session.ID,
				ParticipantID: participant.ID,
				DisplayName:   participant.DisplayName,
				Dissolved:     true,
			}))
			return result, nil
		}

		// Earliest joined inherits the lobby.
		session.OwnerID = remaining[0].ExternalID
		result.NewOwnerID = &remaining[0].ExternalID
		log.Info().
			Str("sessionId", session.ID).
			Str("newOwnerId", session.OwnerID).
			Msg("lobby ownership reassigned")
	}

	session.LastActivityAt = time.Now()
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, apperrors.Database("Failed to save session", err)
	}

	s.emitSession(ctx, session.ID, events.NewEvent(events.TypeParticipantLeft, events.ParticipantLeft{
		SessionID:     session.ID,
		ParticipantID: participant.ID,
		DisplayName:   participant.DisplayName,
		NewOwnerID:    result.NewOwnerID,
	}))

	return result, nil
}

// leaveActive keeps the participant record so roles and votes stay coherent
// for phase resolution; the character just dies.
func (s *GameService) leaveActive(ctx context.Context, session *model.Session, participant *model.Participant) (*LeaveResult, error) {
	if participant.Alive {
		participant.Alive = false
		if err := s.participants.Save(ctx, participant); err != nil {
			return nil, apperrors.Database("Failed to save participant", err)
		}
	}

	session.LastActivityAt = time.Now()
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, apperrors.Database("Failed to save session", err)
	}

	log.Info().
		Str("sessionId", session.ID).
		Str("participantId", participant.ID).
		Msg("participant left active game, character died")

	s.emitSession(ctx, session.ID, events.NewEvent(events.TypeParticipantLeft, events.ParticipantLeft{
		SessionID:     session.ID,
		ParticipantID: participant.ID,
		DisplayName:   participant.DisplayName,
		Died:          true,
	}))

	participants, err := s.participants.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, apperrors.Database("Failed to list participants", err)
	}

	end, err := s.checkWin(ctx, session, participants)
	if err != nil {
		return nil, err
	}

	return &LeaveResult{Session: session, Died: true, End: end}, nil
}

type Assignment struct {
	ParticipantID string         `json:"participantId"`
	ExternalID    string         `json:"externalId"`
	DisplayName   string         `json:"displayName"`
	Role          rules.RoleName `json:"role"`
}

type StartResult struct {
	Session *model.Session
	// Assignments are returned for individual delivery; the caller must not
	// broadcast them together.
	Assignments []Assignment
}

func (s *GameService) StartSession(ctx context.Context, sessionID, callerExternalID string) (*StartResult, error) {
	release := s.locks.acquire(sessionID)
	defer release()

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.OwnerID != callerExternalID {
		return nil, apperrors.Unauthorized("Only the session owner can start the game")
	}
	if session.Status != model.StatusLobby || session.RolesAssigned {
		return nil, apperrors.AlreadyStarted()
	}

	participants, err := s.participants.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, apperrors.Database("Failed to list participants", err)
	}
	if len(participants) < session.MinParticipants {
		return nil, apperrors.NotEnoughPlayers(session.MinParticipants, len(participants))
	}

	roles := dealRoles(len(participants), s.rules)

	assignments := make([]Assignment, 0, len(participants))
	for i := range participants {
		role := roles[i]
		participants[i].Role = &role
		if err := s.participants.Save(ctx, &participants[i]); err != nil {
			// Roles are not committed until the session flips to active
			// below; the caller retries the whole start.
			return nil, apperrors.Database("Failed to save role assignment", err)
		}
		assignments = append(assignments, Assignment{
			ParticipantID: participants[i].ID,
			ExternalID:    participants[i].ExternalID,
			DisplayName:   participants[i].DisplayName,
			Role:          role,
		})
	}

	session.RolesAssigned = true
	session.Status = model.StatusActive
	session.Phase = model.PhaseNight
	session.Day = 1
	session.LastActivityAt = time.Now()
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, apperrors.Database("Failed to save session", err)
	}

	log.Info().
		Str("sessionId", sessionID).
		Int("participants", len(participants)).
		Msg("session started, roles assigned")

	for _, a := range assignments {
		role, _ := rules.Lookup(a.Role)
		s.emitParticipant(ctx, a.ParticipantID, events.NewEvent(events.TypeRoleAssigned, events.RoleAssigned{
			SessionID:     sessionID,
			ParticipantID: a.ParticipantID,
			Role:          a.Role,
			Faction:       role.Faction,
		}))
	}

	return &StartResult{Session: session, Assignments: assignments}, nil
}

func (s *GameService) loadSession(ctx context.Context, sessionID string) (*model.Session, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, apperrors.Database("Failed to load session", err)
	}
	if session == nil {
		return nil, apperrors.NotFound("Session")
	}
	return session, nil
}
