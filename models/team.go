package models

import (
	"strings"
	"time"
)

// TeamSlot references a signup, not a player: only signed-up players can be
// on a team.
type TeamSlot struct {
	SignupID  string `json:"signupId"`
	IsCaptain bool   `json:"isCaptain"`
}

type Team struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Players   []TeamSlot `json:"players"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Validate does not check that signups exist; dangling references are
// tolerated by the roster.
func (t *Team) Validate() error {
	errs := FieldErrors{}
	if strings.TrimSpace(t.Name) == "" {
		errs.Add("name", "is required")
	}
	seen := make(map[string]struct{}, len(t.Players))
	for _, slot := range t.Players {
		if strings.TrimSpace(slot.SignupID) == "" {
			errs.Add("players", "signupId is required")
			continue
		}
		if _, dup := seen[slot.SignupID]; dup {
			errs.Add("players", "signup "+slot.SignupID+" is listed twice")
		}
		seen[slot.SignupID] = struct{}{}
	}
	return errs.OrNil()
}
