package models

import (
	"strings"
	"time"
)

const (
	AvailabilityYes       = "yes"
	AvailabilityNo        = "no"
	AvailabilityEarly     = "early"
	AvailabilityLate      = "late"
	AvailabilityLateEarly = "late_early"
)

const (
	CarpoolCanDrive  = "can-drive"
	CarpoolNeedsRide = "needs-ride"
	CarpoolNone      = "none"
)

// Signup is one player's entry for one tournament. Stored under
// tournaments/{id}/signups with the player id as document id.
type Signup struct {
	ID              string    `json:"id"`
	PlayerID        string    `json:"playerId"`
	Availability    string    `json:"availability"`
	Carpool         string    `json:"carpool,omitempty"`
	DriveCapacity   *int      `json:"driveCapacity,omitempty"`
	CanModerate     bool      `json:"canModerate"`
	CanScorekeep    bool      `json:"canScorekeep"`
	ParentAttending bool      `json:"parentAttending"`
	AdditionalInfo  string    `json:"additionalInfo,omitempty"`
	UpdatedBy       string    `json:"updatedBy,omitempty"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Capacity is the number of seats offered, zero when not given.
func (s *Signup) Capacity() int {
	if s.DriveCapacity == nil {
		return 0
	}
	return *s.DriveCapacity
}

// Validate checks the stored shape. Older entries may carry availability or
// carpool values outside the current choice lists, so those are not checked
// here; see ValidateChoices.
func (s *Signup) Validate() error {
	errs := FieldErrors{}
	if strings.TrimSpace(s.PlayerID) == "" {
		errs.Add("playerId", "is required")
	}
	if s.DriveCapacity != nil && *s.DriveCapacity < 0 {
		errs.Add("driveCapacity", "must not be negative")
	}
	return errs.OrNil()
}

// ValidateChoices is applied to new or edited signups.
func (s *Signup) ValidateChoices() error {
	errs := FieldErrors{}
	if err := s.Validate(); err != nil {
		for f, msg := range err.(FieldErrors) {
			errs.Add(f, msg)
		}
	}
	switch s.Availability {
	case AvailabilityYes, AvailabilityNo, AvailabilityEarly, AvailabilityLate, AvailabilityLateEarly:
	default:
		errs.Add("availability", "must be one of yes, no, early, late, late_early")
	}
	switch s.Carpool {
	case "", CarpoolNone, CarpoolNeedsRide:
		if s.DriveCapacity != nil && *s.DriveCapacity > 0 {
			errs.Add("driveCapacity", "only drivers offer seats")
		}
	case CarpoolCanDrive:
	default:
		errs.Add("carpool", "must be one of can-drive, needs-ride, none")
	}
	return errs.OrNil()
}
