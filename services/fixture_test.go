package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Dosada05/clubhub/docstore"
	"github.com/Dosada05/clubhub/models"
	"github.com/Dosada05/clubhub/repositories"
	"github.com/stretchr/testify/require"
)

// fixedNow is Saturday 2026-10-17 10:00 UTC.
var fixedNow = time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type broadcast struct {
	TournamentID string
	Event        string
	Payload      any
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []broadcast
}

func (b *recordingBroadcaster) Broadcast(tournamentID, event string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, broadcast{tournamentID, event, payload})
}

func (b *recordingBroadcaster) Events() []broadcast {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]broadcast(nil), b.events...)
}

type fixture struct {
	ctx         context.Context
	store       *docstore.MemoryStore
	users       repositories.UserRepository
	players     repositories.PlayerRepository
	tournaments repositories.TournamentRepository
	signups     repositories.SignupRepository
	teams       repositories.TeamRepository
	creds       repositories.CredentialsRepository
	live        *recordingBroadcaster
	logger      *slog.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := docstore.NewMemoryStore()
	return &fixture{
		ctx:         context.Background(),
		store:       store,
		users:       repositories.NewUserRepository(store),
		players:     repositories.NewPlayerRepository(store),
		tournaments: repositories.NewTournamentRepository(store),
		signups:     repositories.NewSignupRepository(store),
		teams:       repositories.NewTeamRepository(store),
		creds:       repositories.NewCredentialsRepository(store),
		live:        &recordingBroadcaster{},
		logger:      discardLogger(),
	}
}

func (f *fixture) user(t *testing.T, uid string, role models.Role, linked ...string) *models.User {
	t.Helper()
	u := &models.User{
		UID: uid, FirstName: "First" + uid, LastName: "Last" + uid,
		Email: uid + "@example.com", Role: role, LinkedPlayers: linked,
	}
	require.NoError(t, f.users.Create(f.ctx, nil, u))
	return u
}

func (f *fixture) player(t *testing.T, id, first, last string, linkedUsers ...string) *models.Player {
	t.Helper()
	if linkedUsers == nil {
		linkedUsers = []string{}
	}
	p := &models.Player{ID: id, FirstName: first, LastName: last, LinkedUsers: linkedUsers}
	require.NoError(t, f.players.Create(f.ctx, nil, p))
	return p
}

func (f *fixture) tournament(t *testing.T, name, date string) *models.Tournament {
	t.Helper()
	tr := &models.Tournament{
		EventName: name, EventType: "competition", Status: models.StatusConfirmed,
		Date: date, StartTime: "09:00", Location: "Town Hall",
	}
	require.NoError(t, f.tournaments.Create(f.ctx, tr))
	return tr
}

func (f *fixture) signup(t *testing.T, tournamentID, playerID, availability string) *models.Signup {
	t.Helper()
	s := &models.Signup{PlayerID: playerID, Availability: availability}
	require.NoError(t, f.signups.Upsert(f.ctx, nil, tournamentID, s))
	return s
}

func (f *fixture) identity(t *testing.T, uid string) *Identity {
	t.Helper()
	u, err := f.users.GetByID(f.ctx, nil, uid)
	require.NoError(t, err)
	return NewIdentity(u)
}

func intPtr(v int) *int { return &v }
