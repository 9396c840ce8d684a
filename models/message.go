package models

import "strings"

const (
	SelectorRole       = "role"
	SelectorTeam       = "team"
	SelectorTournament = "tournament"
)

// GroupSelector names a recipient group. Team selectors also carry the
// tournament the team belongs to.
type GroupSelector struct {
	Type         string `json:"type"`
	Value        string `json:"value"`
	TournamentID string `json:"tournamentId,omitempty"`
}

func (g GroupSelector) Validate() error {
	errs := FieldErrors{}
	if strings.TrimSpace(g.Value) == "" {
		errs.Add("value", "is required")
	}
	switch g.Type {
	case SelectorRole:
		if !Role(g.Value).Valid() {
			errs.Add("value", "unknown role")
		}
	case SelectorTeam:
		if strings.TrimSpace(g.TournamentID) == "" {
			errs.Add("tournamentId", "is required for team groups")
		}
	case SelectorTournament:
	default:
		errs.Add("type", "must be role, team or tournament")
	}
	return errs.OrNil()
}

// Message is a group email composed by a coach.
type Message struct {
	Groups  []GroupSelector `json:"groups"`
	Subject string          `json:"subject"`
	Body    string          `json:"body"`
}

func (m *Message) Validate() error {
	errs := FieldErrors{}
	if strings.TrimSpace(m.Subject) == "" {
		errs.Add("subject", "is required")
	}
	if strings.TrimSpace(m.Body) == "" {
		errs.Add("body", "is required")
	}
	if len(m.Groups) == 0 {
		errs.Add("groups", "select at least one group with members")
	}
	for _, g := range m.Groups {
		if err := g.Validate(); err != nil {
			errs.Add("groups", err.Error())
			break
		}
	}
	return errs.OrNil()
}

// Recipients is the deduplicated outcome of resolving group selectors.
// Unresolved lists player ids whose account email could not be found.
// These are player ids with no user account; they are reported, not mailed.
type Recipients struct {
	Emails     []string `json:"emails"`
	Unresolved []string `json:"unresolved,omitempty"`
}

// AccessRequest is sent by someone without an account asking a coach to
// add them.
type AccessRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message,omitempty"`
}

func (a *AccessRequest) Validate() error {
	errs := FieldErrors{}
	if strings.TrimSpace(a.Name) == "" {
		errs.Add("name", "is required")
	}
	if !ValidEmail(a.Email) {
		errs.Add("email", "must be a valid email address")
	}
	return errs.OrNil()
}
