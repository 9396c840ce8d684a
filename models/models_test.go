package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectivePlayerIDs(t *testing.T) {
	player := User{UID: "u1", Role: RolePlayer}
	assert.Equal(t, []string{"u1"}, player.EffectivePlayerIDs())

	parent := User{UID: "u2", Role: RoleParent, LinkedPlayers: []string{"p1", "p2"}}
	assert.Equal(t, []string{"p1", "p2"}, parent.EffectivePlayerIDs())
	assert.True(t, parent.Represents("p2"))
	assert.False(t, parent.Represents("u2"))

	coach := User{UID: "c1", Role: RoleCoach, LinkedPlayers: []string{"p1", "p9"}}
	assert.Equal(t, []string{"p1"}, coach.EffectivePlayerIDs())

	lonely := User{UID: "u3", Role: RoleAlumni}
	assert.Empty(t, lonely.EffectivePlayerIDs())
}

func TestUserValidate(t *testing.T) {
	u := User{UID: "u1", FirstName: "Ada", LastName: "L", Email: "ada@example.com", Role: RoleParent}
	require.NoError(t, u.Validate())

	u.Role = "captain"
	u.Email = "not-an-email"
	err := u.Validate()
	require.Error(t, err)
	fe, ok := err.(FieldErrors)
	require.True(t, ok)
	assert.Contains(t, fe, "role")
	assert.Contains(t, fe, "email")

	coach := User{UID: "c", FirstName: "C", LastName: "D", Email: "c@example.com", Role: RoleCoach, LinkedPlayers: []string{"a", "b"}}
	assert.Error(t, coach.Validate())

	player := User{UID: "p", FirstName: "P", LastName: "Q", Email: "p@example.com", Role: RolePlayer, LinkedPlayers: []string{"x"}}
	assert.Error(t, player.Validate())
}

func TestTournamentValidate(t *testing.T) {
	valid := Tournament{
		EventName: "State Champs", EventType: "competition", Status: StatusConfirmed,
		Date: "2026-11-07", StartTime: "09:00", EndTime: "15:30", Location: "Olympic Park",
		RSVPDate: "2026-10-30",
	}
	require.NoError(t, valid.Validate())

	bad := valid
	bad.Date = "07/11/2026"
	bad.EndTime = "08:00"
	bad.Status = "maybe"
	err := bad.Validate()
	require.Error(t, err)
	fe := err.(FieldErrors)
	assert.Contains(t, fe, "date")
	assert.Contains(t, fe, "status")

	late := valid
	late.RSVPDate = "2026-11-08"
	assert.Contains(t, late.Validate().(FieldErrors), "rsvpDate")

	backwards := valid
	backwards.EndTime = "08:00"
	assert.Contains(t, backwards.Validate().(FieldErrors), "endTime")
}

func TestTournamentWindowDefaultsEnd(t *testing.T) {
	loc, err := time.LoadLocation("UTC")
	require.NoError(t, err)

	tr := Tournament{Date: "2026-11-07", StartTime: "09:00"}
	start, end, err := tr.Window(loc)
	require.NoError(t, err)
	assert.Equal(t, 9, start.Hour())
	assert.Equal(t, 2*time.Hour, end.Sub(start))

	tr.EndTime = "12:15"
	_, end, err = tr.Window(loc)
	require.NoError(t, err)
	assert.Equal(t, 12, end.Hour())
	assert.Equal(t, 15, end.Minute())
}

func TestSignupValidation(t *testing.T) {
	legacy := Signup{PlayerID: "p1", Availability: "maybe"}
	assert.NoError(t, legacy.Validate(), "stored entries with unknown availability still decode")
	assert.Error(t, legacy.ValidateChoices())

	seats := 3
	driver := Signup{PlayerID: "p1", Availability: AvailabilityYes, Carpool: CarpoolCanDrive, DriveCapacity: &seats}
	assert.NoError(t, driver.ValidateChoices())
	assert.Equal(t, 3, driver.Capacity())

	rider := Signup{PlayerID: "p1", Availability: AvailabilityLate, Carpool: CarpoolNeedsRide, DriveCapacity: &seats}
	assert.Error(t, rider.ValidateChoices())

	noSeats := Signup{PlayerID: "p1", Carpool: CarpoolCanDrive}
	assert.Equal(t, 0, noSeats.Capacity())
}

func TestTeamValidateRejectsDuplicateSignups(t *testing.T) {
	team := Team{Name: "Red", Players: []TeamSlot{{SignupID: "s1"}, {SignupID: "s1", IsCaptain: true}}}
	assert.Error(t, team.Validate())

	team.Players = []TeamSlot{{SignupID: "s1"}, {SignupID: "ghost", IsCaptain: true}}
	assert.NoError(t, team.Validate())
}

func TestMessageValidate(t *testing.T) {
	m := Message{Subject: "Training", Body: "Bring water"}
	fe := m.Validate().(FieldErrors)
	assert.Equal(t, "select at least one group with members", fe["groups"])

	m.Groups = []GroupSelector{{Type: SelectorTeam, Value: "t1"}}
	assert.Error(t, m.Validate(), "team selector needs its tournament")

	m.Groups = []GroupSelector{{Type: SelectorRole, Value: "coach"}, {Type: SelectorTeam, Value: "t1", TournamentID: "tr1"}}
	assert.NoError(t, m.Validate())
}
