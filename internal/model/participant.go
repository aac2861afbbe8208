package model

import (
	"time"

	"github.com/lunabot/werewolf-server-go/internal/rules"
)

type Participant struct {
	ID            string          `db:"id" json:"id"`
	SessionID     string          `db:"session_id" json:"sessionId"`
	ExternalID    string          `db:"external_id" json:"externalId"`
	DisplayName   string          `db:"display_name" json:"displayName"`
	Role          *rules.RoleName `db:"role" json:"-"`
	Alive         bool            `db:"alive" json:"alive"`
	PendingTarget *string         `db:"pending_target" json:"-"`
	HasActed      bool            `db:"has_acted" json:"-"`
	ActedAt       *time.Time      `db:"acted_at" json:"-"`
	JoinedAt      time.Time       `db:"joined_at" json:"joinedAt"`
}

type CreateParticipantParams struct {
	ID          string
	SessionID   string
	ExternalID  string
	DisplayName string
}

// ActsAtNight reports whether the participant's assigned role has a night
// action. False while no role is assigned.
func (p *Participant) ActsAtNight() bool {
	if p.Role == nil {
		return false
	}
	role, ok := rules.Lookup(*p.Role)
	return ok && role.ActsAtNight
}

// Faction returns the participant's faction, or empty while unassigned.
func (p *Participant) Faction() rules.Faction {
	if p.Role == nil {
		return ""
	}
	role, ok := rules.Lookup(*p.Role)
	if !ok {
		return ""
	}
	return role.Faction
}
