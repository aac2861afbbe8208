package service

import (
	"context"

	"github.com/rs/zerolog/log"

	apperrors "github.com/lunabot/werewolf-server-go/internal/errors"
	"github.com/lunabot/werewolf-server-go/internal/events"
	"github.com/lunabot/werewolf-server-go/internal/model"
	"github.com/lunabot/werewolf-server-go/internal/rules"
)

// EndResult carries the verdict and the full roster with roles revealed, for
// the end-of-game broadcast.
type EndResult struct {
	// Winner is nil on a draw.
	Winner *rules.Faction
	Roster []events.RosterEntry
}

// evaluateWin partitions the living by faction and applies the win
// conditions: nobody left is a draw; wolves extinct means the villagers won;
// wolves matching or outnumbering villagers means the wolves won.
func evaluateWin(participants []model.Participant) (bool, *rules.Faction) {
	wolves, villagers := 0, 0
	for i := range participants {
		p := &participants[i]
		if !p.Alive {
			continue
		}
		switch p.Faction() {
		case rules.FactionWolves:
			wolves++
		case rules.FactionVillagers:
			villagers++
		}
	}

	switch {
	case wolves == 0 && villagers == 0:
		return true, nil
	case wolves == 0:
		f := rules.FactionVillagers
		return true, &f
	case wolves >= villagers:
		f := rules.FactionWolves
		return true, &f
	}
	return false, nil
}

// checkWin runs the win evaluator and, on a decision, ends the session and
// broadcasts the final roster. Returns nil when the game goes on.
func (s *GameService) checkWin(ctx context.Context, session *model.Session, participants []model.Participant) (*EndResult, error) {
	ended, winner := evaluateWin(participants)
	if !ended {
		return nil, nil
	}

	session.Status = model.StatusEnded
	session.Winner = winner
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, apperrors.Database("Failed to save session", err)
	}

	roster := make([]events.RosterEntry, 0, len(participants))
	for i := range participants {
		p := &participants[i]
		entry := events.RosterEntry{
			ParticipantID: p.ID,
			DisplayName:   p.DisplayName,
			Alive:         p.Alive,
		}
		if p.Role != nil {
			entry.Role = *p.Role
		}
		roster = append(roster, entry)
	}

	result := &EndResult{Winner: winner, Roster: roster}

	winnerLabel := "draw"
	if winner != nil {
		winnerLabel = string(*winner)
	}
	log.Info().
		Str("sessionId", session.ID).
		Str("winner", winnerLabel).
		Msg("game ended")

	s.emitSession(ctx, session.ID, events.NewEvent(events.TypeGameEnded, events.GameEnded{
		SessionID: session.ID,
		Winner:    winner,
		Roster:    roster,
	}))

	return result, nil
}
