// Package events defines the outbound notification payloads the engine
// produces and the broker that fans them out to connected transports.
package events

import (
	"encoding/json"

	"github.com/lunabot/werewolf-server-go/internal/rules"
)

type Type string

const (
	TypeSessionCreated    Type = "session_created"
	TypeParticipantJoined Type = "participant_joined"
	TypeParticipantLeft   Type = "participant_left"
	TypeRoleAssigned      Type = "role_assigned"
	TypeNightResolved     Type = "night_resolved"
	TypeDayResolved       Type = "day_resolved"
	TypeGameEnded         Type = "game_ended"
)

type Event struct {
	Type Type            `json:"type"`
	Data json.RawMessage `json:"data"`
}

// NewEvent marshals payload into an Event. Payload structs below are all
// marshalable; an error here is a programming bug, so it panics.
func NewEvent(t Type, payload any) Event {
	data, err := json.Marshal(payload)
	if err != nil {
		panic("events: unmarshalable payload: " + err.Error())
	}
	return Event{Type: t, Data: data}
}

type SessionCreated struct {
	SessionID string `json:"sessionId"`
	Name      string `json:"name"`
	JoinCode  string `json:"joinCode"`
	OwnerID   string `json:"ownerId"`
}

type ParticipantJoined struct {
	SessionID        string `json:"sessionId"`
	ParticipantID    string `json:"participantId"`
	DisplayName      string `json:"displayName"`
	ParticipantCount int    `json:"participantCount"`
	OwnerID          string `json:"ownerId"`
}

type ParticipantLeft struct {
	SessionID     string  `json:"sessionId"`
	ParticipantID string  `json:"participantId"`
	DisplayName   string  `json:"displayName"`
	NewOwnerID    *string `json:"newOwnerId,omitempty"`
	Dissolved     bool    `json:"dissolved"`
	// Died is set when the leaver was in an active game and their character
	// was killed off instead of removed.
	Died bool `json:"died"`
}

// RoleAssigned is delivered on the participant's private channel only. The
// engine never broadcasts role assignments together.
type RoleAssigned struct {
	SessionID     string         `json:"sessionId"`
	ParticipantID string         `json:"participantId"`
	Role          rules.RoleName `json:"role"`
	Faction       rules.Faction  `json:"faction"`
}

type NightResolved struct {
	SessionID  string          `json:"sessionId"`
	Day        int             `json:"day"`
	VictimID   *string         `json:"victimId,omitempty"`
	VictimName *string         `json:"victimName,omitempty"`
	VictimRole *rules.RoleName `json:"victimRole,omitempty"`
}

type DayResolved struct {
	SessionID   string          `json:"sessionId"`
	Day         int             `json:"day"`
	LynchedID   *string         `json:"lynchedId,omitempty"`
	LynchedName *string         `json:"lynchedName,omitempty"`
	LynchedRole *rules.RoleName `json:"lynchedRole,omitempty"`
}

type RosterEntry struct {
	ParticipantID string         `json:"participantId"`
	DisplayName   string         `json:"displayName"`
	Role          rules.RoleName `json:"role"`
	Alive         bool           `json:"alive"`
}

type GameEnded struct {
	SessionID string         `json:"sessionId"`
	Winner    *rules.Faction `json:"winner,omitempty"`
	Roster    []RosterEntry  `json:"roster"`
}
