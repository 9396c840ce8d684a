package models

import (
	"strings"
	"time"
)

type Player struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Grade       string    `json:"grade,omitempty"`
	LinkedUsers []string  `json:"linkedUsers"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (p *Player) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

func (p *Player) HasLinkedUser(uid string) bool {
	for _, id := range p.LinkedUsers {
		if id == uid {
			return true
		}
	}
	return false
}

func (p *Player) Validate() error {
	errs := FieldErrors{}
	if strings.TrimSpace(p.ID) == "" {
		errs.Add("id", "is required")
	}
	if strings.TrimSpace(p.FirstName) == "" {
		errs.Add("firstName", "is required")
	}
	if strings.TrimSpace(p.LastName) == "" {
		errs.Add("lastName", "is required")
	}
	if hasDuplicates(p.LinkedUsers) {
		errs.Add("linkedUsers", "must not contain duplicates")
	}
	return errs.OrNil()
}
