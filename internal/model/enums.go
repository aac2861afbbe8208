package model

type SessionStatus string

const (
	StatusLobby  SessionStatus = "lobby"
	StatusActive SessionStatus = "active"
	StatusEnded  SessionStatus = "ended"
)

type Phase string

const (
	PhaseNight Phase = "night"
	PhaseDay   Phase = "day"
)
