package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lib/pq"

	"github.com/lunabot/werewolf-server-go/internal/events"
	"github.com/lunabot/werewolf-server-go/internal/model"
)

// memSessionRepo is an in-memory SessionRepository for engine tests.
type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
	// createErrs is a queue of errors returned by Create before it succeeds,
	// to exercise the join-code collision retry.
	createErrs []error
	saveErr    error
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[string]*model.Session)}
}

func uniqueViolation() error {
	return &pq.Error{Code: "23505"}
}

func (r *memSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, nil
}

func (r *memSessionRepo) FindByJoinCode(ctx context.Context, code string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.JoinCode == code {
			copied := *s
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memSessionRepo) Create(ctx context.Context, params model.CreateSessionParams) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.createErrs) > 0 {
		err := r.createErrs[0]
		r.createErrs = r.createErrs[1:]
		return nil, err
	}
	for _, s := range r.sessions {
		if s.JoinCode == params.JoinCode {
			return nil, uniqueViolation()
		}
	}

	now := time.Now()
	session := &model.Session{
		ID:              params.ID,
		Name:            params.Name,
		OwnerID:         params.OwnerID,
		JoinCode:        params.JoinCode,
		Status:          model.StatusLobby,
		Phase:           model.PhaseDay,
		Day:             0,
		MinParticipants: params.MinParticipants,
		MaxParticipants: params.MaxParticipants,
		LastActivityAt:  now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	r.sessions[session.ID] = session
	copied := *session
	return &copied, nil
}

func (r *memSessionRepo) Save(ctx context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	copied := *session
	r.sessions[session.ID] = &copied
	return nil
}

func (r *memSessionRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *memSessionRepo) ListJoinable(ctx context.Context) ([]model.SessionSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.SessionSummary
	for _, s := range r.sessions {
		if s.Status == model.StatusLobby {
			out = append(out, model.SessionSummary{Session: *s})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memSessionRepo) ListStalled(ctx context.Context, cutoff time.Time) ([]model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Session
	for _, s := range r.sessions {
		if s.Status == model.StatusActive && s.LastActivityAt.Before(cutoff) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *memSessionRepo) DeleteAbandoned(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for id, s := range r.sessions {
		if s.Status == model.StatusLobby && s.LastActivityAt.Before(cutoff) {
			delete(r.sessions, id)
			count++
		}
	}
	return count, nil
}

// memParticipantRepo is an in-memory ParticipantRepository. Join order is
// tracked with a monotonic sequence so earliest-joined is deterministic.
type memParticipantRepo struct {
	mu           sync.Mutex
	participants map[string]*model.Participant
	seq          int
	saveErr      error
}

func newMemParticipantRepo() *memParticipantRepo {
	return &memParticipantRepo{participants: make(map[string]*model.Participant)}
}

func (r *memParticipantRepo) FindByID(ctx context.Context, id string) (*model.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.participants[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, nil
}

func (r *memParticipantRepo) FindByExternalID(ctx context.Context, sessionID, externalID string) (*model.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.participants {
		if p.SessionID == sessionID && p.ExternalID == externalID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memParticipantRepo) ListBySession(ctx context.Context, sessionID string) ([]model.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Participant
	for _, p := range r.participants {
		if p.SessionID == sessionID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].JoinedAt.Before(out[j].JoinedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *memParticipantRepo) CountBySession(ctx context.Context, sessionID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, p := range r.participants {
		if p.SessionID == sessionID {
			count++
		}
	}
	return count, nil
}

func (r *memParticipantRepo) Create(ctx context.Context, params model.CreateParticipantParams) (*model.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	participant := &model.Participant{
		ID:          params.ID,
		SessionID:   params.SessionID,
		ExternalID:  params.ExternalID,
		DisplayName: params.DisplayName,
		Alive:       true,
		JoinedAt:    time.Unix(0, int64(r.seq)),
	}
	r.participants[participant.ID] = participant
	copied := *participant
	return &copied, nil
}

func (r *memParticipantRepo) Save(ctx context.Context, participant *model.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	existing, ok := r.participants[participant.ID]
	if !ok {
		copied := *participant
		r.participants[participant.ID] = &copied
		return nil
	}
	joinedAt := existing.JoinedAt
	copied := *participant
	copied.JoinedAt = joinedAt
	r.participants[participant.ID] = &copied
	return nil
}

func (r *memParticipantRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.participants, id)
	return nil
}

func (r *memParticipantRepo) ResetActions(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.participants {
		if p.SessionID == sessionID {
			p.PendingTarget = nil
			p.HasActed = false
			p.ActedAt = nil
		}
	}
	return nil
}

// fakePublisher records published events instead of hitting Redis.
type fakePublisher struct {
	mu          sync.Mutex
	session     map[string][]events.Event
	participant map[string][]events.Event
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{
		session:     make(map[string][]events.Event),
		participant: make(map[string][]events.Event),
	}
}

func (p *fakePublisher) PublishSession(ctx context.Context, sessionID string, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.session[sessionID] = append(p.session[sessionID], event)
	return nil
}

func (p *fakePublisher) PublishParticipant(ctx context.Context, participantID string, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.participant[participantID] = append(p.participant[participantID], event)
	return nil
}

func (p *fakePublisher) sessionTypes(sessionID string) []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	var types []events.Type
	for _, e := range p.session[sessionID] {
		types = append(types, e.Type)
	}
	return types
}
