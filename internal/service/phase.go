package service

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/lunabot/werewolf-server-go/internal/errors"
	"github.com/lunabot/werewolf-server-go/internal/events"
	"github.com/lunabot/werewolf-server-go/internal/model"
	"github.com/lunabot/werewolf-server-go/internal/rules"
)

// Resolution describes one closed-out phase.
type Resolution struct {
	Session *model.Session
	// Eliminated is the participant killed by this resolution, if any.
	Eliminated *model.Participant
	// End is set when the elimination decided the game.
	End *EndResult
}

type ActionResult struct {
	Session     *model.Session
	Participant *model.Participant
	// Advanced is set when this was the last pending actor and the phase
	// resolved synchronously within the same critical section.
	Advanced   bool
	Resolution *Resolution
}

func (s *GameService) SubmitNightAction(ctx context.Context, sessionID, actorExternalID, targetID string) (*ActionResult, error) {
	release := s.locks.acquire(sessionID)
	defer release()

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.StatusActive || session.Phase != model.PhaseNight {
		return nil, apperrors.NotYourTurn("Night actions are only valid during the night")
	}

	actor, err := s.loadActor(ctx, sessionID, actorExternalID)
	if err != nil {
		return nil, err
	}
	if !actor.ActsAtNight() {
		return nil, apperrors.NotYourTurn("Your role has no night action")
	}

	target, err := s.loadTarget(ctx, session, targetID)
	if err != nil {
		return nil, err
	}
	if target.Faction() == actor.Faction() {
		return nil, apperrors.InvalidTarget("Cannot target a member of your own faction")
	}

	if err := s.recordAction(ctx, session, actor, target.ID); err != nil {
		return nil, err
	}

	log.Info().
		Str("sessionId", sessionID).
		Str("actorId", actor.ID).
		Str("targetId", target.ID).
		Msg("night action submitted")

	participants, err := s.participants.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, apperrors.Database("Failed to list participants", err)
	}

	result := &ActionResult{Session: session, Participant: actor}
	if allNightActorsActed(participants) {
		resolution, err := s.resolveNight(ctx, session, participants)
		if err != nil {
			return nil, err
		}
		result.Advanced = true
		result.Resolution = resolution
	}
	return result, nil
}

func (s *GameService) SubmitVote(ctx context.Context, sessionID, voterExternalID, targetID string) (*ActionResult, error) {
	release := s.locks.acquire(sessionID)
	defer release()

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.StatusActive || session.Phase != model.PhaseDay {
		return nil, apperrors.NotYourTurn("Votes are only valid during the day")
	}

	voter, err := s.loadActor(ctx, sessionID, voterExternalID)
	if err != nil {
		return nil, err
	}

	target, err := s.loadTarget(ctx, session, targetID)
	if err != nil {
		return nil, err
	}

	if err := s.recordAction(ctx, session, voter, target.ID); err != nil {
		return nil, err
	}

	log.Info().
		Str("sessionId", sessionID).
		Str("voterId", voter.ID).
		Str("targetId", target.ID).
		Msg("vote submitted")

	participants, err := s.participants.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, apperrors.Database("Failed to list participants", err)
	}

	result := &ActionResult{Session: session, Participant: voter}
	if allLivingVoted(participants) {
		resolution, err := s.resolveDay(ctx, session, participants)
		if err != nil {
			return nil, err
		}
		result.Advanced = true
		result.Resolution = resolution
	}
	return result, nil
}

// ForceAdvance closes out the current phase regardless of pending actors,
// for wall-clock timeouts. It takes the same per-session lock as action
// submission, so racing a final action is safe: whichever enters first wins
// and the loser observes the new phase.
func (s *GameService) ForceAdvance(ctx context.Context, sessionID string) (*Resolution, error) {
	release := s.locks.acquire(sessionID)
	defer release()

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.StatusActive {
		return nil, apperrors.NotYourTurn("Session is not in an active phase")
	}

	participants, err := s.participants.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, apperrors.Database("Failed to list participants", err)
	}

	log.Info().
		Str("sessionId", sessionID).
		Str("phase", string(session.Phase)).
		Msg("phase advance forced")

	if session.Phase == model.PhaseNight {
		return s.resolveNight(ctx, session, participants)
	}
	return s.resolveDay(ctx, session, participants)
}

func (s *GameService) loadActor(ctx context.Context, sessionID, externalID string) (*model.Participant, error) {
	actor, err := s.participants.FindByExternalID(ctx, sessionID, externalID)
	if err != nil {
		return nil, apperrors.Database("Failed to look up participant", err)
	}
	if actor == nil {
		return nil, apperrors.NotFound("Participant")
	}
	if !actor.Alive {
		return nil, apperrors.NotYourTurn("Dead participants cannot act")
	}
	if actor.HasActed {
		return nil, apperrors.NotYourTurn("Already acted this phase")
	}
	return actor, nil
}

func (s *GameService) loadTarget(ctx context.Context, session *model.Session, targetID string) (*model.Participant, error) {
	target, err := s.participants.FindByID(ctx, targetID)
	if err != nil {
		return nil, apperrors.Database("Failed to look up target", err)
	}
	if target == nil || target.SessionID != session.ID {
		return nil, apperrors.InvalidTarget("Target is not in this session")
	}
	if !target.Alive {
		return nil, apperrors.InvalidTarget("Target is not alive")
	}
	return target, nil
}

func (s *GameService) recordAction(ctx context.Context, session *model.Session, actor *model.Participant, targetID string) error {
	now := time.Now()
	actor.PendingTarget = &targetID
	actor.HasActed = true
	actor.ActedAt = &now
	if err := s.participants.Save(ctx, actor); err != nil {
		return apperrors.Database("Failed to save action", err)
	}

	session.LastActivityAt = now
	if err := s.sessions.Save(ctx, session); err != nil {
		return apperrors.Database("Failed to save session", err)
	}
	return nil
}

func allNightActorsActed(participants []model.Participant) bool {
	any := false
	for i := range participants {
		p := &participants[i]
		if !p.Alive || !p.ActsAtNight() {
			continue
		}
		any = true
		if !p.HasActed {
			return false
		}
	}
	return any
}

func allLivingVoted(participants []model.Participant) bool {
	any := false
	for i := range participants {
		p := &participants[i]
		if !p.Alive {
			continue
		}
		any = true
		if !p.HasActed {
			return false
		}
	}
	return any
}

// resolveNight closes the night: picks the victim per the tie-break policy,
// kills them, resets actions and flips to day. The day counter does not move
// here; it advances when the day closes.
func (s *GameService) resolveNight(ctx context.Context, session *model.Session, participants []model.Participant) (*Resolution, error) {
	victimID := nightVictim(participants, s.rules.NightTieBreak)

	var eliminated *model.Participant
	if victimID != nil {
		if victim := findParticipant(participants, *victimID); victim != nil && victim.Alive {
			victim.Alive = false
			if err := s.participants.Save(ctx, victim); err != nil {
				return nil, apperrors.Database("Failed to save victim", err)
			}
			eliminated = victim
		}
	}

	if err := s.finishPhase(ctx, session, participants, model.PhaseDay); err != nil {
		return nil, err
	}

	resolution := &Resolution{Session: session, Eliminated: eliminated}

	end, err := s.checkWin(ctx, session, participants)
	if err != nil {
		return nil, err
	}
	resolution.End = end
	if end != nil {
		return resolution, nil
	}

	payload := events.NightResolved{SessionID: session.ID, Day: session.Day}
	if eliminated != nil {
		payload.VictimID = &eliminated.ID
		payload.VictimName = &eliminated.DisplayName
		payload.VictimRole = eliminated.Role
	}
	s.emitSession(ctx, session.ID, events.NewEvent(events.TypeNightResolved, payload))

	log.Info().
		Str("sessionId", session.ID).
		Int("day", session.Day).
		Bool("death", eliminated != nil).
		Msg("night resolved")

	return resolution, nil
}

// resolveDay tallies votes among the living: a strict plurality is lynched,
// a tie lynches nobody. The day counter advances entering the next night.
func (s *GameService) resolveDay(ctx context.Context, session *model.Session, participants []model.Participant) (*Resolution, error) {
	lynchedID := tallyVotes(participants)

	var eliminated *model.Participant
	if lynchedID != nil {
		if lynched := findParticipant(participants, *lynchedID); lynched != nil && lynched.Alive {
			lynched.Alive = false
			if err := s.participants.Save(ctx, lynched); err != nil {
				return nil, apperrors.Database("Failed to save lynched participant", err)
			}
			eliminated = lynched
		}
	}

	session.Day++
	if err := s.finishPhase(ctx, session, participants, model.PhaseNight); err != nil {
		return nil, err
	}

	resolution := &Resolution{Session: session, Eliminated: eliminated}

	end, err := s.checkWin(ctx, session, participants)
	if err != nil {
		return nil, err
	}
	resolution.End = end
	if end != nil {
		return resolution, nil
	}

	payload := events.DayResolved{SessionID: session.ID, Day: session.Day}
	if eliminated != nil {
		payload.LynchedID = &eliminated.ID
		payload.LynchedName = &eliminated.DisplayName
		payload.LynchedRole = eliminated.Role
	}
	s.emitSession(ctx, session.ID, events.NewEvent(events.TypeDayResolved, payload))

	log.Info().
		Str("sessionId", session.ID).
		Int("day", session.Day).
		Bool("death", eliminated != nil).
		Msg("day resolved")

	return resolution, nil
}

// finishPhase resets per-phase action state and persists the session in its
// next phase.
func (s *GameService) finishPhase(ctx context.Context, session *model.Session, participants []model.Participant, next model.Phase) error {
	if err := s.participants.ResetActions(ctx, session.ID); err != nil {
		return apperrors.Database("Failed to reset actions", err)
	}
	for i := range participants {
		participants[i].PendingTarget = nil
		participants[i].HasActed = false
		participants[i].ActedAt = nil
	}

	session.Phase = next
	session.LastActivityAt = time.Now()
	if err := s.sessions.Save(ctx, session); err != nil {
		return apperrors.Database("Failed to save session", err)
	}
	return nil
}

// nightVictim resolves the night's kill from the acted night roles. With a
// single wolf its pick wins outright; with several, policy decides.
func nightVictim(participants []model.Participant, policy rules.NightTieBreak) *string {
	type act struct {
		target string
		at     time.Time
	}
	var acts []act
	for i := range participants {
		p := &participants[i]
		if !p.Alive || !p.ActsAtNight() || !p.HasActed || p.PendingTarget == nil {
			continue
		}
		at := time.Time{}
		if p.ActedAt != nil {
			at = *p.ActedAt
		}
		acts = append(acts, act{target: *p.PendingTarget, at: at})
	}
	if len(acts) == 0 {
		return nil
	}

	sort.SliceStable(acts, func(i, j int) bool { return acts[i].at.Before(acts[j].at) })

	if policy == rules.TieBreakMajority {
		counts := make(map[string]int)
		for _, a := range acts {
			counts[a.target]++
		}
		best := acts[0].target
		for _, a := range acts {
			if counts[a.target] > counts[best] {
				best = a.target
			}
		}
		return &best
	}

	// First actor wins.
	return &acts[0].target
}

// tallyVotes returns the target with a strict plurality among living voters,
// or nil on a tie or no votes. Recomputing over the same pending targets
// always yields the same decision.
func tallyVotes(participants []model.Participant) *string {
	counts := make(map[string]int)
	for i := range participants {
		p := &participants[i]
		if !p.Alive || !p.HasActed || p.PendingTarget == nil {
			continue
		}
		counts[*p.PendingTarget]++
	}
	if len(counts) == 0 {
		return nil
	}

	var best string
	bestCount, tied := 0, false
	for target, count := range counts {
		switch {
		case count > bestCount:
			best, bestCount, tied = target, count, false
		case count == bestCount:
			tied = true
		}
	}
	if tied {
		return nil
	}
	return &best
}

func findParticipant(participants []model.Participant, id string) *model.Participant {
	for i := range participants {
		if participants[i].ID == id {
			return &participants[i]
		}
	}
	return nil
}
