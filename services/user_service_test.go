package services

import (
	"testing"

	"github.com/Dosada05/clubhub/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(f *fixture) UserService {
	return NewUserService(f.store, f.users, f.players, f.creds, f.logger)
}

func strPtr(s string) *string { return &s }

func rolePtr(r models.Role) *models.Role { return &r }

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(f)
	f.user(t, "parent1", models.RoleParent)

	u, err := svc.UpdateProfile(f.ctx, "parent1", UpdateProfileInput{FirstName: strPtr(" Robin "), Suburb: strPtr("Newtown")})
	require.NoError(t, err)
	assert.Equal(t, "Robin", u.FirstName)
	assert.Equal(t, "Lastparent1", u.LastName)
	assert.Equal(t, "Newtown", u.Suburb)

	_, err = svc.UpdateProfile(f.ctx, "parent1", UpdateProfileInput{Role: rolePtr(models.RoleCoach)})
	assert.ErrorIs(t, err, ErrRoleChangeNotAllowed)
	_, err = svc.UpdateProfile(f.ctx, "parent1", UpdateProfileInput{FirstName: strPtr("")})
	assert.ErrorIs(t, err, ErrValidationFailed)

	u, err = svc.UpdateProfile(f.ctx, "parent1", UpdateProfileInput{Role: rolePtr(models.RoleAlumni)})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAlumni, u.Role)
}

func TestPlayerBecomingAlumniFollowsOwnRecord(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(f)
	f.user(t, "kid", models.RolePlayer)
	f.player(t, "kid", "Kid", "One")

	u, err := svc.UpdateProfile(f.ctx, "kid", UpdateProfileInput{Role: rolePtr(models.RoleAlumni)})
	require.NoError(t, err)
	assert.Equal(t, []string{"kid"}, u.LinkedPlayers)
	assert.Equal(t, []string{"kid"}, u.EffectivePlayerIDs())

	p, err := f.players.GetByID(f.ctx, nil, "kid")
	require.NoError(t, err)
	assert.Equal(t, []string{"kid"}, p.LinkedUsers)
}

func TestDeleteUserCascades(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(f)
	rel := newRelationshipService(f)

	f.user(t, "kid", models.RolePlayer)
	f.player(t, "kid", "Kid", "One")
	f.player(t, "sib", "Sib", "One")
	f.user(t, "parent1", models.RoleParent)
	_, err := rel.LinkPlayer(f.ctx, "parent1", "kid")
	require.NoError(t, err)
	_, err = rel.LinkPlayer(f.ctx, "parent1", "sib")
	require.NoError(t, err)

	// deleting a player account removes the player record and the parent's link
	require.NoError(t, svc.DeleteUser(f.ctx, "kid"))
	_, err = f.players.GetByID(f.ctx, nil, "kid")
	assert.ErrorIs(t, err, ErrPlayerNotFound)
	parent, err := f.users.GetByID(f.ctx, nil, "parent1")
	require.NoError(t, err)
	assert.Equal(t, []string{"sib"}, parent.LinkedPlayers)

	// deleting the parent clears them from the remaining player
	require.NoError(t, svc.DeleteUser(f.ctx, "parent1"))
	sib, err := f.players.GetByID(f.ctx, nil, "sib")
	require.NoError(t, err)
	assert.Empty(t, sib.LinkedUsers)

	assert.ErrorIs(t, svc.DeleteUser(f.ctx, "parent1"), ErrUserNotFound)
}

func TestListUsers(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(f)
	f.user(t, "c1", models.RoleCoach)
	f.user(t, "p1", models.RoleParent)

	all, err := svc.ListUsers(f.ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
	coaches, err := svc.ListUsers(f.ctx, "coach")
	require.NoError(t, err)
	require.Len(t, coaches, 1)
	assert.Equal(t, "c1", coaches[0].UID)
	_, err = svc.ListUsers(f.ctx, "admin")
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestSetRoleTrimsLinks(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(f)
	rel := newRelationshipService(f)
	f.user(t, "parent1", models.RoleParent)
	f.player(t, "a", "A", "A")
	f.player(t, "b", "B", "B")
	_, err := rel.LinkPlayer(f.ctx, "parent1", "a")
	require.NoError(t, err)
	_, err = rel.LinkPlayer(f.ctx, "parent1", "b")
	require.NoError(t, err)

	u, err := svc.SetRole(f.ctx, "PARENT1@example.com", models.RoleCoach)
	require.NoError(t, err)
	assert.Equal(t, models.RoleCoach, u.Role)
	assert.Equal(t, []string{"a"}, u.LinkedPlayers)
	b, err := f.players.GetByID(f.ctx, nil, "b")
	require.NoError(t, err)
	assert.Empty(t, b.LinkedUsers)

	_, err = svc.SetRole(f.ctx, "nobody@example.com", models.RoleCoach)
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = svc.SetRole(f.ctx, "parent1@example.com", "admin")
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestPlayerServiceDeleteUnlinksUsers(t *testing.T) {
	f := newFixture(t)
	svc := NewPlayerService(f.store, f.players, f.users, fixedClock, f.logger)
	rel := newRelationshipService(f)
	f.user(t, "parent1", models.RoleParent)

	_, err := svc.Create(f.ctx, PlayerInput{FirstName: "", LastName: "X"})
	assert.ErrorIs(t, err, ErrValidationFailed)
	p, err := svc.Create(f.ctx, PlayerInput{FirstName: "Kid", LastName: "One", Grade: "7"})
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)

	_, err = rel.LinkPlayer(f.ctx, "parent1", p.ID)
	require.NoError(t, err)

	updated, err := svc.Update(f.ctx, p.ID, PlayerInput{FirstName: "Kid", LastName: "Uno"})
	require.NoError(t, err)
	assert.Equal(t, []string{"parent1"}, updated.LinkedUsers)

	require.NoError(t, svc.Delete(f.ctx, p.ID))
	parent, err := f.users.GetByID(f.ctx, nil, "parent1")
	require.NoError(t, err)
	assert.Empty(t, parent.LinkedPlayers)
	assert.ErrorIs(t, svc.Delete(f.ctx, p.ID), ErrPlayerNotFound)
}
