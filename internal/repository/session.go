package repository

import (
	"context"
	"time"

	"github.com/lunabot/werewolf-server-go/internal/database"
	"github.com/lunabot/werewolf-server-go/internal/model"
)

type SessionRepository interface {
	FindByID(ctx context.Context, id string) (*model.Session, error)
	FindByJoinCode(ctx context.Context, code string) (*model.Session, error)
	Create(ctx context.Context, params model.CreateSessionParams) (*model.Session, error)
	// Save writes every mutable session field; last write wins.
	Save(ctx context.Context, session *model.Session) error
	Delete(ctx context.Context, id string) error
	ListJoinable(ctx context.Context) ([]model.SessionSummary, error)
	// ListStalled returns active sessions whose last activity predates cutoff.
	ListStalled(ctx context.Context, cutoff time.Time) ([]model.Session, error)
	// DeleteAbandoned removes lobby sessions idle since before cutoff.
	// Participants go with them (FK cascade).
	DeleteAbandoned(ctx context.Context, cutoff time.Time) (int64, error)
}

type sessionRepo struct {
	db database.DBTX
}

func NewSessionRepository(db database.DBTX) SessionRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	var session model.Session
	err := r.db.GetContext(ctx, &session, `
		SELECT * FROM sessions WHERE id = $1
	`, id)
	return HandleNotFound(&session, err)
}

func (r *sessionRepo) FindByJoinCode(ctx context.Context, code string) (*model.Session, error) {
	var session model.Session
	err := r.db.GetContext(ctx, &session, `
		SELECT * FROM sessions WHERE join_code = $1
	`, code)
	return HandleNotFound(&session, err)
}

func (r *sessionRepo) Create(ctx context.Context, params model.CreateSessionParams) (*model.Session, error) {
	var session model.Session
	err := r.db.GetContext(ctx, &session, `
		INSERT INTO sessions (id, name, owner_id, join_code, status, phase, day, min_participants, max_participants)
		VALUES ($1, $2, $3, $4, 'lobby', 'day', 0, $5, $6)
		RETURNING *
	`, params.ID, params.Name, params.OwnerID, params.JoinCode, params.MinParticipants, params.MaxParticipants)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) Save(ctx context.Context, session *model.Session) error {
	session.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET
			owner_id = $2,
			status = $3,
			phase = $4,
			day = $5,
			roles_assigned = $6,
			winner = $7,
			last_activity_at = $8,
			updated_at = $9
		WHERE id = $1
	`, session.ID, session.OwnerID, session.Status, session.Phase, session.Day,
		session.RolesAssigned, session.Winner, session.LastActivityAt, session.UpdatedAt)
	return err
}

func (r *sessionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM sessions WHERE id = $1
	`, id)
	return err
}

func (r *sessionRepo) ListJoinable(ctx context.Context) ([]model.SessionSummary, error) {
	var sessions []model.SessionSummary
	err := r.db.SelectContext(ctx, &sessions, `
		SELECT s.*, COUNT(p.id) AS participant_count
		FROM sessions s
		LEFT JOIN participants p ON p.session_id = s.id
		WHERE s.status = 'lobby'
		GROUP BY s.id
		HAVING COUNT(p.id) < s.max_participants
		ORDER BY s.name ASC
	`)
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepo) ListStalled(ctx context.Context, cutoff time.Time) ([]model.Session, error) {
	var sessions []model.Session
	err := r.db.SelectContext(ctx, &sessions, `
		SELECT * FROM sessions
		WHERE status = 'active' AND last_activity_at < $1
		ORDER BY last_activity_at ASC
	`, cutoff)
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepo) DeleteAbandoned(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM sessions
		WHERE status = 'lobby' AND last_activity_at < $1
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
