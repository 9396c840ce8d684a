package models

import (
	"net/mail"
	"strings"
	"time"
)

// Role определяет права пользователя в клубе.
type Role string

const (
	RolePlayer Role = "player"
	RoleParent Role = "parent"
	RoleCoach  Role = "coach"
	RoleAlumni Role = "alumni"
)

func (r Role) Valid() bool {
	switch r {
	case RolePlayer, RoleParent, RoleCoach, RoleAlumni:
		return true
	}
	return false
}

// User is keyed by the auth provider uid.
type User struct {
	UID           string    `json:"uid"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	Email         string    `json:"email"`
	Role          Role      `json:"role"`
	LinkedPlayers []string  `json:"linkedPlayers"`
	Suburb        string    `json:"suburb,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (u *User) IsCoach() bool  { return u.Role == RoleCoach }
func (u *User) IsPlayer() bool { return u.Role == RolePlayer }
func (u *User) IsParent() bool { return u.Role == RoleParent }

// CanLinkPlayers is false for players: they sign up as themselves.
func (u *User) CanLinkPlayers() bool {
	return u.Role != RolePlayer
}

// EffectivePlayerIDs returns the player ids this account signs up for:
// itself for a player, the single favorite for a coach, every linked
// player otherwise.
func (u *User) EffectivePlayerIDs() []string {
	switch u.Role {
	case RolePlayer:
		return []string{u.UID}
	case RoleCoach:
		if len(u.LinkedPlayers) > 1 {
			return []string{u.LinkedPlayers[0]}
		}
	}
	out := make([]string, len(u.LinkedPlayers))
	copy(out, u.LinkedPlayers)
	return out
}

// Represents reports whether playerID is one of the effective players.
func (u *User) Represents(playerID string) bool {
	for _, id := range u.EffectivePlayerIDs() {
		if id == playerID {
			return true
		}
	}
	return false
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) Validate() error {
	errs := FieldErrors{}
	if strings.TrimSpace(u.UID) == "" {
		errs.Add("uid", "is required")
	}
	if strings.TrimSpace(u.FirstName) == "" {
		errs.Add("firstName", "is required")
	}
	if strings.TrimSpace(u.LastName) == "" {
		errs.Add("lastName", "is required")
	}
	if !ValidEmail(u.Email) {
		errs.Add("email", "must be a valid email address")
	}
	if !u.Role.Valid() {
		errs.Add("role", "must be one of player, parent, coach, alumni")
	}
	if u.Role == RolePlayer && len(u.LinkedPlayers) > 0 {
		errs.Add("linkedPlayers", "players cannot link other players")
	}
	if u.Role == RoleCoach && len(u.LinkedPlayers) > 1 {
		errs.Add("linkedPlayers", "a coach has at most one favorite player")
	}
	if hasDuplicates(u.LinkedPlayers) {
		errs.Add("linkedPlayers", "must not contain duplicates")
	}
	return errs.OrNil()
}

func ValidEmail(email string) bool {
	if strings.TrimSpace(email) == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func hasDuplicates(ids []string) bool {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return true
		}
		seen[id] = struct{}{}
	}
	return false
}
