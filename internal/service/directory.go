package service

import (
	"context"

	apperrors "github.com/lunabot/werewolf-server-go/internal/errors"
	"github.com/lunabot/werewolf-server-go/internal/model"
	"github.com/lunabot/werewolf-server-go/internal/rules"
)

// FindSession looks a session up by id.
func (s *GameService) FindSession(ctx context.Context, id string) (*model.Session, error) {
	return s.loadSession(ctx, id)
}

// FindSessionByJoinCode looks a session up by its public join code.
func (s *GameService) FindSessionByJoinCode(ctx context.Context, code string) (*model.Session, error) {
	session, err := s.sessions.FindByJoinCode(ctx, code)
	if err != nil {
		return nil, apperrors.Database("Failed to load session", err)
	}
	if session == nil {
		return nil, apperrors.NotFound("Session")
	}
	return session, nil
}

// ListJoinable returns lobby sessions with room left. This read skips the
// per-session lock; counts may trail in-flight joins.
func (s *GameService) ListJoinable(ctx context.Context) ([]model.SessionSummary, error) {
	sessions, err := s.sessions.ListJoinable(ctx)
	if err != nil {
		return nil, apperrors.Database("Failed to list sessions", err)
	}
	return sessions, nil
}

type ParticipantView struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Alive       bool   `json:"alive"`
	// Role is only revealed once the session has ended.
	Role *rules.RoleName `json:"role,omitempty"`
}

type SessionSnapshot struct {
	Session      *model.Session    `json:"session"`
	Participants []ParticipantView `json:"participants"`
}

// Snapshot returns the public view of a session and its roster. Roles stay
// hidden until the game ends.
func (s *GameService) Snapshot(ctx context.Context, sessionID string) (*SessionSnapshot, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	participants, err := s.participants.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, apperrors.Database("Failed to list participants", err)
	}

	views := make([]ParticipantView, 0, len(participants))
	for i := range participants {
		p := &participants[i]
		view := ParticipantView{
			ID:          p.ID,
			DisplayName: p.DisplayName,
			Alive:       p.Alive,
		}
		if session.Status == model.StatusEnded {
			view.Role = p.Role
		}
		views = append(views, view)
	}

	return &SessionSnapshot{Session: session, Participants: views}, nil
}
