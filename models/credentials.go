package models

import (
	"strings"
	"time"
)

const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
)

// Credentials belong to the auth provider, not to the club data. The
// document id is the uid.
type Credentials struct {
	UID          string    `json:"uid"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	Provider     string    `json:"provider"`
	Subject      string    `json:"subject,omitempty"` // google "sub"
	CreatedAt    time.Time `json:"createdAt"`
}

func (c *Credentials) Validate() error {
	errs := FieldErrors{}
	if strings.TrimSpace(c.UID) == "" {
		errs.Add("uid", "is required")
	}
	if !ValidEmail(c.Email) {
		errs.Add("email", "must be a valid email address")
	}
	switch c.Provider {
	case ProviderPassword:
		if c.PasswordHash == "" {
			errs.Add("passwordHash", "is required for password accounts")
		}
	case ProviderGoogle:
		if c.Subject == "" {
			errs.Add("subject", "is required for google accounts")
		}
	default:
		errs.Add("provider", "must be password or google")
	}
	return errs.OrNil()
}
