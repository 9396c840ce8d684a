package services

import (
	"testing"

	"github.com/Dosada05/clubhub/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRosterDropsDanglingSlots(t *testing.T) {
	team := &models.Team{ID: "team1", Name: "Reds", Players: []models.TeamSlot{{SignupID: "ghost", IsCaptain: true}}}

	roster := BuildRoster(team, nil, nil)
	assert.Empty(t, roster.Players)
	assert.Equal(t, "None", roster.Captain)
	assert.Equal(t, "Reds", roster.Name)
}

func TestBuildRosterResolvesNamesAndCaptain(t *testing.T) {
	signups := []*models.Signup{
		{ID: "a", PlayerID: "a", Availability: "yes"},
		{ID: "b", PlayerID: "b", Availability: "late"},
		{ID: "c", PlayerID: "c"},
	}
	players := map[string]*models.Player{
		"a": {ID: "a", FirstName: "Ann", LastName: "Lee"},
		"b": {ID: "b", FirstName: "Bo", LastName: "Ng"},
	}
	team := &models.Team{ID: "team1", Name: "Reds", Players: []models.TeamSlot{
		{SignupID: "ghost", IsCaptain: true},
		{SignupID: "b", IsCaptain: true},
		{SignupID: "c"},
		{SignupID: "a", IsCaptain: true},
	}}

	roster := BuildRoster(team, signups, players)
	require.Len(t, roster.Players, 3)
	assert.Equal(t, "Bo Ng", roster.Captain, "first flagged member in list order")
	assert.Equal(t, "Bo Ng", roster.Players[0].Name)
	assert.Equal(t, "Unknown", roster.Players[1].Name)
	assert.Equal(t, "Ann Lee", roster.Players[2].Name)

	var badges int
	for _, p := range roster.Players {
		if p.IsCaptain {
			badges++
		}
	}
	assert.Equal(t, 2, badges, "badges are not deduplicated")
}

func TestBuildCarpool(t *testing.T) {
	signups := []*models.Signup{
		{ID: "a", PlayerID: "a", Carpool: "can-drive"},
		{ID: "b", PlayerID: "b", Carpool: "can-drive", DriveCapacity: intPtr(4)},
		{ID: "c", PlayerID: "c", Carpool: "needs-ride"},
		{ID: "d", PlayerID: "d", Carpool: "none"},
		{ID: "e", PlayerID: "e", Carpool: "bicycle"},
		{ID: "f", PlayerID: "f"},
	}
	players := map[string]*models.Player{"a": {ID: "a", FirstName: "Ann", LastName: "Lee"}}

	pool := BuildCarpool(signups, players)
	require.Len(t, pool.Drivers, 2)
	assert.Equal(t, models.Driver{PlayerID: "a", Name: "Ann Lee", Capacity: 0}, pool.Drivers[0])
	assert.Equal(t, 4, pool.Drivers[1].Capacity)
	assert.Equal(t, "Unknown", pool.Drivers[1].Name)
	require.Len(t, pool.Riders, 1)
	assert.Equal(t, "c", pool.Riders[0].PlayerID)
}

func newRosterService(f *fixture) RosterService {
	return NewRosterService(f.tournaments, f.teams, f.signups, f.players, f.live, fixedClock, f.logger)
}

func TestRosterServiceTeamLifecycle(t *testing.T) {
	f := newFixture(t)
	svc := newRosterService(f)
	tr := f.tournament(t, "Regional", "2026-11-07")
	f.player(t, "a", "Ann", "Lee")
	f.signup(t, tr.ID, "a", "yes")
	f.signup(t, tr.ID, "b", "no")

	_, err := svc.CreateTeam(f.ctx, tr.ID, TeamInput{Name: ""})
	assert.ErrorIs(t, err, ErrValidationFailed)
	_, err = svc.CreateTeam(f.ctx, "missing", TeamInput{Name: "Reds"})
	assert.ErrorIs(t, err, ErrTournamentNotFound)
	_, err = svc.CreateTeam(f.ctx, tr.ID, TeamInput{Name: "Reds", Players: []models.TeamSlot{{SignupID: "a"}, {SignupID: "a"}}})
	assert.ErrorIs(t, err, ErrValidationFailed)

	team, err := svc.CreateTeam(f.ctx, tr.ID, TeamInput{Name: "Reds", Players: []models.TeamSlot{{SignupID: "a", IsCaptain: true}, {SignupID: "b"}}})
	require.NoError(t, err)
	require.NotEmpty(t, team.ID)

	roster, err := svc.GetRoster(f.ctx, tr.ID, team.ID)
	require.NoError(t, err)
	require.Len(t, roster.Players, 2)
	assert.Equal(t, "Ann Lee", roster.Captain)
	assert.Equal(t, "Unknown", roster.Players[1].Name)

	// b withdraws; the slot disappears from the roster but stays on the team
	require.NoError(t, f.signups.Delete(f.ctx, nil, tr.ID, "b"))
	rosters, err := svc.ListRosters(f.ctx, tr.ID)
	require.NoError(t, err)
	require.Len(t, rosters, 1)
	assert.Len(t, rosters[0].Players, 1)

	updated, err := svc.UpdateTeam(f.ctx, tr.ID, team.ID, TeamInput{Name: "Blues"})
	require.NoError(t, err)
	assert.Equal(t, "Blues", updated.Name)
	assert.Empty(t, updated.Players)

	require.NoError(t, svc.DeleteTeam(f.ctx, tr.ID, team.ID))
	_, err = svc.GetRoster(f.ctx, tr.ID, team.ID)
	assert.ErrorIs(t, err, ErrTeamNotFound)
	assert.ErrorIs(t, svc.DeleteTeam(f.ctx, tr.ID, team.ID), ErrTeamNotFound)

	var kinds []string
	for _, e := range f.live.Events() {
		kinds = append(kinds, e.Event)
	}
	assert.Equal(t, []string{EventTeamUpdated, EventTeamUpdated, EventTeamDeleted}, kinds)
}

func TestRosterServiceCarpool(t *testing.T) {
	f := newFixture(t)
	svc := newRosterService(f)
	tr := f.tournament(t, "Regional", "2026-11-07")
	f.player(t, "a", "Ann", "Lee")
	require.NoError(t, f.signups.Upsert(f.ctx, nil, tr.ID, &models.Signup{PlayerID: "a", Availability: "yes", Carpool: "can-drive"}))

	pool, err := svc.GetCarpool(f.ctx, tr.ID)
	require.NoError(t, err)
	require.Len(t, pool.Drivers, 1)
	assert.Equal(t, 0, pool.Drivers[0].Capacity)
	assert.Empty(t, pool.Riders)

	_, err = svc.GetCarpool(f.ctx, "missing")
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}
