package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/lunabot/werewolf-server-go/internal/errors"
	"github.com/lunabot/werewolf-server-go/internal/model"
	"github.com/lunabot/werewolf-server-go/internal/repository"
)

// AdvanceFunc forces a stalled phase to resolve; backed by the game
// service. The call goes through the per-session lock, so racing a late
// action submission is safe.
type AdvanceFunc func(ctx context.Context, sessionID string) error

// SweeperJob periodically deletes abandoned lobbies and force-advances
// active sessions whose phase sat idle past the deadline.
type SweeperJob struct {
	sessions     repository.SessionRepository
	advancer     AdvanceFunc
	interval     time.Duration
	lobbyTTL     time.Duration
	phaseTimeout time.Duration
	done         chan struct{}
}

func NewSweeperJob(
	sessions repository.SessionRepository,
	advance AdvanceFunc,
	interval, lobbyTTL, phaseTimeout time.Duration,
) *SweeperJob {
	return &SweeperJob{
		sessions:     sessions,
		advancer:     advance,
		interval:     interval,
		lobbyTTL:     lobbyTTL,
		phaseTimeout: phaseTimeout,
		done:         make(chan struct{}),
	}
}

func (j *SweeperJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("sweeper job started")
}

func (j *SweeperJob) Stop() {
	close(j.done)
	log.Info().Msg("sweeper job stopped")
}

func (j *SweeperJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.sweep()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

func (j *SweeperJob) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	j.sweepLobbies(ctx)
	j.sweepStalledPhases(ctx)
}

func (j *SweeperJob) sweepLobbies(ctx context.Context) {
	count, err := j.sessions.DeleteAbandoned(ctx, time.Now().Add(-j.lobbyTTL))
	if err != nil {
		log.Error().Err(err).Msg("failed to sweep abandoned lobbies")
	} else if count > 0 {
		log.Info().Int64("count", count).Msg("swept abandoned lobbies")
	}
}

func (j *SweeperJob) sweepStalledPhases(ctx context.Context) {
	stalled, err := j.sessions.ListStalled(ctx, time.Now().Add(-j.phaseTimeout))
	if err != nil {
		log.Error().Err(err).Msg("failed to list stalled sessions")
		return
	}

	for _, session := range j.filterActive(stalled) {
		if err := j.advancer(ctx, session.ID); err != nil {
			// The session may have resolved or ended between the listing and
			// the lock; that race is expected.
			if apperrors.CodeOf(err) == apperrors.ErrCodeNotYourTurn || apperrors.CodeOf(err) == apperrors.ErrCodeNotFound {
				log.Debug().Str("sessionId", session.ID).Msg("stalled session resolved before forced advance")
				continue
			}
			log.Error().Err(err).Str("sessionId", session.ID).Msg("failed to force phase advance")
			continue
		}
		log.Info().Str("sessionId", session.ID).Msg("stalled phase force-advanced")
	}
}

func (j *SweeperJob) filterActive(sessions []model.Session) []model.Session {
	active := sessions[:0]
	for _, s := range sessions {
		if s.Status == model.StatusActive {
			active = append(active, s)
		}
	}
	return active
}
