package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/Dosada05/clubhub/models"
	"github.com/Dosada05/clubhub/repositories"
)

// BuildRoster joins a team against the current signups and players.
// Slots whose signup no longer exists are dropped. A signup whose player is
// missing is shown as "Unknown". The captain is the first flagged member;
// every member keeps their own badge.
func BuildRoster(team *models.Team, signups []*models.Signup, players map[string]*models.Player) models.Roster {
	roster := models.Roster{
		TeamID:  team.ID,
		Name:    team.Name,
		Captain: models.NoCaptain,
		Players: []models.RosterEntry{},
	}

	byID := make(map[string]*models.Signup, len(signups))
	for _, s := range signups {
		byID[s.ID] = s
	}

	captainSet := false
	for _, slot := range team.Players {
		signup, ok := byID[slot.SignupID]
		if !ok {
			continue
		}
		entry := models.RosterEntry{
			SignupID:     signup.ID,
			PlayerID:     signup.PlayerID,
			Name:         playerName(players, signup.PlayerID),
			IsCaptain:    slot.IsCaptain,
			Availability: signup.Availability,
		}
		if slot.IsCaptain && !captainSet {
			roster.Captain = entry.Name
			captainSet = true
		}
		roster.Players = append(roster.Players, entry)
	}
	return roster
}

// BuildCarpool splits a tournament's full signup list into drivers and
// riders. Anything other than can-drive or needs-ride is in neither list.
func BuildCarpool(signups []*models.Signup, players map[string]*models.Player) models.Carpool {
	pool := models.Carpool{Drivers: []models.Driver{}, Riders: []models.Rider{}}
	for _, s := range signups {
		switch s.Carpool {
		case models.CarpoolCanDrive:
			pool.Drivers = append(pool.Drivers, models.Driver{
				PlayerID: s.PlayerID,
				Name:     playerName(players, s.PlayerID),
				Capacity: s.Capacity(),
			})
		case models.CarpoolNeedsRide:
			pool.Riders = append(pool.Riders, models.Rider{
				PlayerID: s.PlayerID,
				Name:     playerName(players, s.PlayerID),
			})
		}
	}
	return pool
}

func playerName(players map[string]*models.Player, id string) string {
	if p, ok := players[id]; ok && p != nil {
		return p.FullName()
	}
	return models.UnknownPlayerName
}

type TeamInput struct {
	Name    string            `json:"name"`
	Players []models.TeamSlot `json:"players"`
}

type RosterService interface {
	CreateTeam(ctx context.Context, tournamentID string, input TeamInput) (*models.Team, error)
	UpdateTeam(ctx context.Context, tournamentID, teamID string, input TeamInput) (*models.Team, error)
	DeleteTeam(ctx context.Context, tournamentID, teamID string) error
	ListTeams(ctx context.Context, tournamentID string) ([]*models.Team, error)
	GetRoster(ctx context.Context, tournamentID, teamID string) (*models.Roster, error)
	ListRosters(ctx context.Context, tournamentID string) ([]models.Roster, error)
	GetCarpool(ctx context.Context, tournamentID string) (*models.Carpool, error)
}

type rosterService struct {
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	signupRepo     repositories.SignupRepository
	playerRepo     repositories.PlayerRepository
	live           Broadcaster
	now            Clock
	logger         *slog.Logger
}

func NewRosterService(
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	signupRepo repositories.SignupRepository,
	playerRepo repositories.PlayerRepository,
	live Broadcaster,
	now Clock,
	logger *slog.Logger,
) RosterService {
	if live == nil {
		live = noopBroadcaster{}
	}
	if now == nil {
		now = time.Now
	}
	return &rosterService{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		signupRepo:     signupRepo,
		playerRepo:     playerRepo,
		live:           live,
		now:            now,
		logger:         logger,
	}
}

func (s *rosterService) requireTournament(ctx context.Context, tournamentID string) error {
	_, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	return mapRepoError(err)
}

func (s *rosterService) CreateTeam(ctx context.Context, tournamentID string, input TeamInput) (*models.Team, error) {
	team := &models.Team{Name: input.Name, Players: input.Players, CreatedAt: s.now().UTC()}
	if team.Players == nil {
		team.Players = []models.TeamSlot{}
	}
	if err := team.Validate(); err != nil {
		return nil, asValidation(err)
	}
	if err := s.requireTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	if err := s.teamRepo.Create(ctx, tournamentID, team); err != nil {
		return nil, mapRepoError(err)
	}
	s.live.Broadcast(tournamentID, EventTeamUpdated, team)
	return team, nil
}

func (s *rosterService) UpdateTeam(ctx context.Context, tournamentID, teamID string, input TeamInput) (*models.Team, error) {
	existing, err := s.teamRepo.GetByID(ctx, tournamentID, teamID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	existing.Name = input.Name
	existing.Players = input.Players
	if existing.Players == nil {
		existing.Players = []models.TeamSlot{}
	}
	if err := existing.Validate(); err != nil {
		return nil, asValidation(err)
	}
	if err := s.teamRepo.Update(ctx, tournamentID, existing); err != nil {
		return nil, mapRepoError(err)
	}
	s.live.Broadcast(tournamentID, EventTeamUpdated, existing)
	return existing, nil
}

func (s *rosterService) DeleteTeam(ctx context.Context, tournamentID, teamID string) error {
	if _, err := s.teamRepo.GetByID(ctx, tournamentID, teamID); err != nil {
		return mapRepoError(err)
	}
	if err := s.teamRepo.Delete(ctx, tournamentID, teamID); err != nil {
		return mapRepoError(err)
	}
	s.live.Broadcast(tournamentID, EventTeamDeleted, map[string]string{"teamId": teamID})
	return nil
}

func (s *rosterService) ListTeams(ctx context.Context, tournamentID string) ([]*models.Team, error) {
	if err := s.requireTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return teams, nil
}

// loadSignupsAndPlayers returns the tournament's signups and the players
// they reference.
func (s *rosterService) loadSignupsAndPlayers(ctx context.Context, tournamentID string) ([]*models.Signup, map[string]*models.Player, error) {
	signups, err := s.signupRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, nil, mapRepoError(err)
	}
	ids := make([]string, 0, len(signups))
	for _, su := range signups {
		ids = append(ids, su.PlayerID)
	}
	players, err := s.playerRepo.GetMany(ctx, dedupeStrings(ids))
	if err != nil {
		return nil, nil, mapRepoError(err)
	}
	if missing := len(dedupeStrings(ids)) - len(players); missing > 0 {
		s.logger.WarnContext(ctx, "signups reference missing players",
			slog.String("tournament_id", tournamentID), slog.Int("missing", missing))
	}
	return signups, players, nil
}

func (s *rosterService) GetRoster(ctx context.Context, tournamentID, teamID string) (*models.Roster, error) {
	team, err := s.teamRepo.GetByID(ctx, tournamentID, teamID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	signups, players, err := s.loadSignupsAndPlayers(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	roster := BuildRoster(team, signups, players)
	if dropped := len(team.Players) - len(roster.Players); dropped > 0 {
		s.logger.DebugContext(ctx, "roster dropped dangling slots",
			slog.String("team_id", teamID), slog.Int("dropped", dropped))
	}
	return &roster, nil
}

func (s *rosterService) ListRosters(ctx context.Context, tournamentID string) ([]models.Roster, error) {
	teams, err := s.ListTeams(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	signups, players, err := s.loadSignupsAndPlayers(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	rosters := make([]models.Roster, 0, len(teams))
	for _, team := range teams {
		rosters = append(rosters, BuildRoster(team, signups, players))
	}
	return rosters, nil
}

func (s *rosterService) GetCarpool(ctx context.Context, tournamentID string) (*models.Carpool, error) {
	if err := s.requireTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	signups, players, err := s.loadSignupsAndPlayers(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	pool := BuildCarpool(signups, players)
	return &pool, nil
}
