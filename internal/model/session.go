package model

import (
	"time"

	"github.com/lunabot/werewolf-server-go/internal/rules"
)

type Session struct {
	ID              string         `db:"id" json:"id"`
	Name            string         `db:"name" json:"name"`
	OwnerID         string         `db:"owner_id" json:"ownerId"`
	JoinCode        string         `db:"join_code" json:"joinCode"`
	Status          SessionStatus  `db:"status" json:"status"`
	Phase           Phase          `db:"phase" json:"phase"`
	Day             int            `db:"day" json:"day"`
	MinParticipants int            `db:"min_participants" json:"minParticipants"`
	MaxParticipants int            `db:"max_participants" json:"maxParticipants"`
	RolesAssigned   bool           `db:"roles_assigned" json:"-"`
	Winner          *rules.Faction `db:"winner" json:"winner,omitempty"`
	LastActivityAt  time.Time      `db:"last_activity_at" json:"lastActivityAt"`
	CreatedAt       time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updatedAt"`
}

type CreateSessionParams struct {
	ID              string
	Name            string
	OwnerID         string
	JoinCode        string
	MinParticipants int
	MaxParticipants int
}

// SessionSummary is a Session joined with its current participant count,
// as returned by directory listings.
type SessionSummary struct {
	Session
	ParticipantCount int `db:"participant_count" json:"participantCount"`
}
