package services

import (
	"testing"

	"github.com/Dosada05/clubhub/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRelationshipService(f *fixture) RelationshipService {
	return NewRelationshipService(f.store, f.users, f.players, f.logger)
}

func (f *fixture) assertLinked(t *testing.T, uid, playerID string, want bool) {
	t.Helper()
	u, err := f.users.GetByID(f.ctx, nil, uid)
	require.NoError(t, err)
	p, err := f.players.GetByID(f.ctx, nil, playerID)
	require.NoError(t, err)
	assert.Equal(t, want, contains(u.LinkedPlayers, playerID), "user side")
	assert.Equal(t, want, p.HasLinkedUser(uid), "player side")
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func TestLinkPlayerIsSymmetric(t *testing.T) {
	f := newFixture(t)
	svc := newRelationshipService(f)
	f.user(t, "parent1", models.RoleParent)
	f.player(t, "p1", "Kid", "One")
	f.player(t, "p2", "Kid", "Two")

	u, err := svc.LinkPlayer(f.ctx, "parent1", "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, u.LinkedPlayers)
	f.assertLinked(t, "parent1", "p1", true)

	// parents link additively and without duplicates
	_, err = svc.LinkPlayer(f.ctx, "parent1", "p2")
	require.NoError(t, err)
	u, err = svc.LinkPlayer(f.ctx, "parent1", "p1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p1", "p2"}, u.LinkedPlayers)

	u, err = svc.UnlinkPlayer(f.ctx, "parent1", "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p2"}, u.LinkedPlayers)
	f.assertLinked(t, "parent1", "p1", false)
	f.assertLinked(t, "parent1", "p2", true)
}

func TestCoachFavoriteIsReplaced(t *testing.T) {
	f := newFixture(t)
	svc := newRelationshipService(f)
	f.user(t, "coach1", models.RoleCoach)
	f.player(t, "p1", "Kid", "One")
	f.player(t, "p2", "Kid", "Two")

	_, err := svc.LinkPlayer(f.ctx, "coach1", "p1")
	require.NoError(t, err)
	u, err := svc.LinkPlayer(f.ctx, "coach1", "p2")
	require.NoError(t, err)

	assert.Equal(t, []string{"p2"}, u.LinkedPlayers)
	p1, err := f.players.GetByID(f.ctx, nil, "p1")
	require.NoError(t, err)
	assert.NotContains(t, p1.LinkedUsers, "coach1")
	f.assertLinked(t, "coach1", "p2", true)
}

func TestPlayersCannotLink(t *testing.T) {
	f := newFixture(t)
	svc := newRelationshipService(f)
	f.user(t, "kid", models.RolePlayer)
	f.player(t, "p1", "Kid", "One")

	_, err := svc.LinkPlayer(f.ctx, "kid", "p1")
	assert.ErrorIs(t, err, ErrPlayersCannotLink)

	p1, err := f.players.GetByID(f.ctx, nil, "p1")
	require.NoError(t, err)
	assert.Empty(t, p1.LinkedUsers)
}

func TestLinkMissingPlayerLeavesUserUntouched(t *testing.T) {
	f := newFixture(t)
	svc := newRelationshipService(f)
	f.user(t, "parent1", models.RoleParent)

	_, err := svc.LinkPlayer(f.ctx, "parent1", "ghost")
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	u, err := f.users.GetByID(f.ctx, nil, "parent1")
	require.NoError(t, err)
	assert.Empty(t, u.LinkedPlayers)

	_, err = svc.LinkPlayer(f.ctx, "nobody", "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUnlinkToleratesDeletedPlayer(t *testing.T) {
	f := newFixture(t)
	svc := newRelationshipService(f)
	f.user(t, "parent1", models.RoleParent)
	f.player(t, "p1", "Kid", "One")
	_, err := svc.LinkPlayer(f.ctx, "parent1", "p1")
	require.NoError(t, err)
	require.NoError(t, f.players.Delete(f.ctx, nil, "p1"))

	u, err := svc.UnlinkPlayer(f.ctx, "parent1", "p1")
	require.NoError(t, err)
	assert.Empty(t, u.LinkedPlayers)
}
