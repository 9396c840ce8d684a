// File: models/roster.go
package models

const (
	UnknownPlayerName = "Unknown"
	NoCaptain         = "None"
)

// RosterEntry is one resolved team member.
type RosterEntry struct {
	SignupID     string `json:"signupId"`
	PlayerID     string `json:"playerId"`
	Name         string `json:"name"`
	IsCaptain    bool   `json:"isCaptain"`
	Availability string `json:"availability,omitempty"`
}

// Roster is a team joined against current signups and players.
type Roster struct {
	TeamID  string        `json:"teamId"`
	Name    string        `json:"name"`
	Captain string        `json:"captain"`
	Players []RosterEntry `json:"players"`
}

type Driver struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

type Rider struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

type Carpool struct {
	Drivers []Driver `json:"drivers"`
	Riders  []Rider  `json:"riders"`
}
