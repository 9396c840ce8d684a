package models

const (
	LabelAttending    = "Attending"
	LabelNotAttending = "Not Attending"
	LabelLeavingEarly = "Leaving Early"
	LabelArrivingLate = "Arriving Late"
	LabelLateAndEarly = "Late Arrival & Early Departure"
	LabelSignedUp     = "Signed Up"
	LabelNotSignedUp  = "Not Signed Up"
)

// TournamentStatusLine is one row of a user's signup overview.
type TournamentStatusLine struct {
	TournamentID string `json:"tournamentId"`
	EventName    string `json:"eventName"`
	Date         string `json:"date"`
	Status       string `json:"status"`
}

// SignupOverview is a user's status across upcoming tournaments. NoPlayerLinked
// means the account represents no player; Statuses is then empty.
type SignupOverview struct {
	NoPlayerLinked bool                   `json:"noPlayerLinked"`
	Statuses       []TournamentStatusLine `json:"statuses"`
}
