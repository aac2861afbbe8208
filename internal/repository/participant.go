package repository

import (
	"context"

	"github.com/lunabot/werewolf-server-go/internal/database"
	"github.com/lunabot/werewolf-server-go/internal/model"
)

type ParticipantRepository interface {
	FindByID(ctx context.Context, id string) (*model.Participant, error)
	FindByExternalID(ctx context.Context, sessionID, externalID string) (*model.Participant, error)
	// ListBySession returns participants ordered by join time, earliest first.
	ListBySession(ctx context.Context, sessionID string) ([]model.Participant, error)
	CountBySession(ctx context.Context, sessionID string) (int, error)
	Create(ctx context.Context, params model.CreateParticipantParams) (*model.Participant, error)
	// Save writes every mutable participant field; last write wins.
	Save(ctx context.Context, participant *model.Participant) error
	Delete(ctx context.Context, id string) error
	// ResetActions clears pending_target, has_acted and acted_at for every
	// participant of the session, at the start of a new phase.
	ResetActions(ctx context.Context, sessionID string) error
}

type participantRepo struct {
	db database.DBTX
}

func NewParticipantRepository(db database.DBTX) ParticipantRepository {
	return &participantRepo{db: db}
}

func (r *participantRepo) FindByID(ctx context.Context, id string) (*model.Participant, error) {
	var participant model.Participant
	err := r.db.GetContext(ctx, &participant, `
		SELECT * FROM participants WHERE id = $1
	`, id)
	return HandleNotFound(&participant, err)
}

func (r *participantRepo) FindByExternalID(ctx context.Context, sessionID, externalID string) (*model.Participant, error) {
	var participant model.Participant
	err := r.db.GetContext(ctx, &participant, `
		SELECT * FROM participants
		WHERE session_id = $1 AND external_id = $2
	`, sessionID, externalID)
	return HandleNotFound(&participant, err)
}

func (r *participantRepo) ListBySession(ctx context.Context, sessionID string) ([]model.Participant, error) {
	var participants []model.Participant
	err := r.db.SelectContext(ctx, &participants, `
		SELECT * FROM participants
		WHERE session_id = $1
		ORDER BY joined_at ASC, id ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *participantRepo) CountBySession(ctx context.Context, sessionID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM participants WHERE session_id = $1
	`, sessionID)
	return count, err
}

func (r *participantRepo) Create(ctx context.Context, params model.CreateParticipantParams) (*model.Participant, error) {
	var participant model.Participant
	err := r.db.GetContext(ctx, &participant, `
		INSERT INTO participants (id, session_id, external_id, display_name, alive)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING *
	`, params.ID, params.SessionID, params.ExternalID, params.DisplayName)
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

func (r *participantRepo) Save(ctx context.Context, participant *model.Participant) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE participants SET
			display_name = $2,
			role = $3,
			alive = $4,
			pending_target = $5,
			has_acted = $6,
			acted_at = $7
		WHERE id = $1
	`, participant.ID, participant.DisplayName, participant.Role, participant.Alive,
		participant.PendingTarget, participant.HasActed, participant.ActedAt)
	return err
}

func (r *participantRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM participants WHERE id = $1
	`, id)
	return err
}

func (r *participantRepo) ResetActions(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE participants SET
			pending_target = NULL,
			has_acted = FALSE,
			acted_at = NULL
		WHERE session_id = $1
	`, sessionID)
	return err
}
