package models

import (
	"strings"
	"time"
)

// TournamentStatus представляет статусы турнира.
type TournamentStatus string

const (
	StatusTentative TournamentStatus = "tentative"
	StatusConfirmed TournamentStatus = "confirmed"
	StatusCancelled TournamentStatus = "cancelled"
)

func (s TournamentStatus) Valid() bool {
	switch s {
	case StatusTentative, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	// DefaultEventDuration applies when a tournament has no end time.
	DefaultEventDuration = 2 * time.Hour
)

// Tournament представляет турнир. Date and times are kept as the strings the
// club enters them in; they are interpreted in the club's calendar time zone.
type Tournament struct {
	ID              string           `json:"id"`
	EventName       string           `json:"eventName"`
	EventType       string           `json:"eventType"`
	Status          TournamentStatus `json:"status"`
	Date            string           `json:"date"`
	StartTime       string           `json:"startTime"`
	EndTime         string           `json:"endTime,omitempty"`
	Location        string           `json:"location"`
	RSVPDate        string           `json:"rsvpDate,omitempty"`
	ShirtColor      string           `json:"shirtColor,omitempty"`
	AdditionalInfo  string           `json:"additionalInfo,omitempty"`
	CalendarEventID string           `json:"calendarEventId,omitempty"`
	FlyerKey        string           `json:"flyerKey,omitempty"`
	CreatedBy       string           `json:"createdBy,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`

	// Заполняется при чтении, в базе не хранится.
	FlyerURL string `json:"flyerUrl,omitempty"`
}

// Window returns the event start and end in loc. End defaults to start plus
// DefaultEventDuration.
func (t *Tournament) Window(loc *time.Location) (start, end time.Time, err error) {
	start, err = time.ParseInLocation(DateLayout+" "+TimeLayout, t.Date+" "+t.StartTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if t.EndTime == "" {
		return start, start.Add(DefaultEventDuration), nil
	}
	end, err = time.ParseInLocation(DateLayout+" "+TimeLayout, t.Date+" "+t.EndTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// OnOrAfter compares calendar dates; the layout sorts lexically.
func (t *Tournament) OnOrAfter(day string) bool {
	return t.Date >= day
}

func (t *Tournament) Validate() error {
	errs := FieldErrors{}
	if strings.TrimSpace(t.EventName) == "" {
		errs.Add("eventName", "is required")
	}
	if strings.TrimSpace(t.EventType) == "" {
		errs.Add("eventType", "is required")
	}
	if strings.TrimSpace(t.Location) == "" {
		errs.Add("location", "is required")
	}
	if !t.Status.Valid() {
		errs.Add("status", "must be one of tentative, confirmed, cancelled")
	}

	date, dateErr := time.Parse(DateLayout, t.Date)
	if dateErr != nil {
		errs.Add("date", "must be YYYY-MM-DD")
	}
	start, startErr := time.Parse(TimeLayout, t.StartTime)
	if startErr != nil {
		errs.Add("startTime", "must be HH:MM")
	}
	if t.EndTime != "" {
		end, err := time.Parse(TimeLayout, t.EndTime)
		switch {
		case err != nil:
			errs.Add("endTime", "must be HH:MM")
		case startErr == nil && !end.After(start):
			errs.Add("endTime", "must be after startTime")
		}
	}
	if t.RSVPDate != "" {
		rsvp, err := time.Parse(DateLayout, t.RSVPDate)
		switch {
		case err != nil:
			errs.Add("rsvpDate", "must be YYYY-MM-DD")
		case dateErr == nil && rsvp.After(date):
			errs.Add("rsvpDate", "must not be after the tournament date")
		}
	}
	return errs.OrNil()
}
