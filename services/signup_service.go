package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Dosada05/clubhub/models"
	"github.com/Dosada05/clubhub/repositories"
	"golang.org/x/sync/errgroup"
)

// maxParallelReads bounds concurrent per-tournament reads.
const maxParallelReads = 8

// StatusLabel maps a signup's availability to its display label. Anything
// unrecognised, including an empty value, is just "Signed Up".
func StatusLabel(availability string) string {
	switch availability {
	case models.AvailabilityYes:
		return models.LabelAttending
	case models.AvailabilityNo:
		return models.LabelNotAttending
	case models.AvailabilityEarly:
		return models.LabelLeavingEarly
	case models.AvailabilityLate:
		return models.LabelArrivingLate
	case models.AvailabilityLateEarly:
		return models.LabelLateAndEarly
	}
	return models.LabelSignedUp
}

// TournamentSignups pairs a tournament with its current signup entries.
type TournamentSignups struct {
	Tournament *models.Tournament
	Signups    []*models.Signup
}

// ComputeSignupStatus reports, for every tournament dated today or later
// (earliest first), the user's status. A user representing no player gets
// NoPlayerLinked and no per-tournament statuses.
func ComputeSignupStatus(user *models.User, tournaments []TournamentSignups, today string) models.SignupOverview {
	effective := user.EffectivePlayerIDs()
	if len(effective) == 0 {
		return models.SignupOverview{NoPlayerLinked: true, Statuses: []models.TournamentStatusLine{}}
	}
	represented := make(map[string]struct{}, len(effective))
	for _, id := range effective {
		represented[id] = struct{}{}
	}

	upcoming := make([]TournamentSignups, 0, len(tournaments))
	for _, ts := range tournaments {
		if ts.Tournament != nil && ts.Tournament.OnOrAfter(today) {
			upcoming = append(upcoming, ts)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		a, b := upcoming[i].Tournament, upcoming[j].Tournament
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		return a.StartTime < b.StartTime
	})

	lines := make([]models.TournamentStatusLine, 0, len(upcoming))
	for _, ts := range upcoming {
		status := models.LabelNotSignedUp
		for _, s := range ts.Signups {
			if _, ok := represented[s.PlayerID]; ok {
				status = StatusLabel(s.Availability)
				break
			}
		}
		lines = append(lines, models.TournamentStatusLine{
			TournamentID: ts.Tournament.ID,
			EventName:    ts.Tournament.EventName,
			Date:         ts.Tournament.Date,
			Status:       status,
		})
	}
	return models.SignupOverview{Statuses: lines}
}

type SignupInput struct {
	Availability    string `json:"availability"`
	Carpool         string `json:"carpool,omitempty"`
	DriveCapacity   *int   `json:"driveCapacity,omitempty"`
	CanModerate     bool   `json:"canModerate"`
	CanScorekeep    bool   `json:"canScorekeep"`
	ParentAttending bool   `json:"parentAttending"`
	AdditionalInfo  string `json:"additionalInfo,omitempty"`
}

type SignupService interface {
	Overview(ctx context.Context, user *models.User) (*models.SignupOverview, error)
	// Upsert creates or replaces playerID's entry for the tournament.
	Upsert(ctx context.Context, actor *Identity, tournamentID, playerID string, input SignupInput) (*models.Signup, error)
	Get(ctx context.Context, actor *Identity, tournamentID, playerID string) (*models.Signup, error)
	Delete(ctx context.Context, actor *Identity, tournamentID, playerID string) error
	ListByTournament(ctx context.Context, actor *Identity, tournamentID string) ([]*models.Signup, error)
}

type signupService struct {
	tournamentRepo repositories.TournamentRepository
	signupRepo     repositories.SignupRepository
	playerRepo     repositories.PlayerRepository
	live           Broadcaster
	now            Clock
	loc            *time.Location
	logger         *slog.Logger
}

func NewSignupService(
	tournamentRepo repositories.TournamentRepository,
	signupRepo repositories.SignupRepository,
	playerRepo repositories.PlayerRepository,
	live Broadcaster,
	now Clock,
	loc *time.Location,
	logger *slog.Logger,
) SignupService {
	if live == nil {
		live = noopBroadcaster{}
	}
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &signupService{
		tournamentRepo: tournamentRepo,
		signupRepo:     signupRepo,
		playerRepo:     playerRepo,
		live:           live,
		now:            now,
		loc:            loc,
		logger:         logger,
	}
}

func (s *signupService) Overview(ctx context.Context, user *models.User) (*models.SignupOverview, error) {
	if len(user.EffectivePlayerIDs()) == 0 {
		overview := ComputeSignupStatus(user, nil, "")
		return &overview, nil
	}

	day := today(s.now(), s.loc)
	tournaments, err := s.tournamentRepo.ListUpcoming(ctx, day)
	if err != nil {
		return nil, mapRepoError(err)
	}

	pairs := make([]TournamentSignups, len(tournaments))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelReads)
	for i, t := range tournaments {
		g.Go(func() error {
			signups, err := s.signupRepo.ListByTournament(gctx, t.ID)
			if err != nil {
				return fmt.Errorf("failed to load signups for %s: %w", t.ID, err)
			}
			pairs[i] = TournamentSignups{Tournament: t, Signups: signups}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	overview := ComputeSignupStatus(user, pairs, day)
	return &overview, nil
}

// canActFor: a player for themself, anyone else for a player they represent.
func canActFor(actor *Identity, playerID string) bool {
	return actor != nil && actor.Represents(playerID)
}

func (s *signupService) Upsert(ctx context.Context, actor *Identity, tournamentID, playerID string, input SignupInput) (*models.Signup, error) {
	if !canActFor(actor, playerID) {
		return nil, ErrForbiddenOperation
	}
	signup := &models.Signup{
		ID:              playerID,
		PlayerID:        playerID,
		Availability:    input.Availability,
		Carpool:         input.Carpool,
		DriveCapacity:   input.DriveCapacity,
		CanModerate:     input.CanModerate,
		CanScorekeep:    input.CanScorekeep,
		ParentAttending: input.ParentAttending,
		AdditionalInfo:  input.AdditionalInfo,
		UpdatedBy:       actor.UID,
		UpdatedAt:       s.now().UTC(),
	}
	if err := signup.ValidateChoices(); err != nil {
		return nil, asValidation(err)
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if _, err := s.playerRepo.GetByID(ctx, nil, playerID); err != nil {
		return nil, mapRepoError(err)
	}
	if !tournament.OnOrAfter(today(s.now(), s.loc)) {
		s.logger.InfoContext(ctx, "signup edited after tournament date",
			slog.String("tournament_id", tournamentID), slog.String("player_id", playerID))
	}

	if err := s.signupRepo.Upsert(ctx, nil, tournamentID, signup); err != nil {
		return nil, mapRepoError(err)
	}
	s.live.Broadcast(tournamentID, EventSignupUpdated, signup)
	return signup, nil
}

func (s *signupService) Get(ctx context.Context, actor *Identity, tournamentID, playerID string) (*models.Signup, error) {
	if actor == nil || (!actor.Represents(playerID) && !actor.IsCoach) {
		return nil, ErrForbiddenOperation
	}
	signup, err := s.signupRepo.GetByPlayer(ctx, tournamentID, playerID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return signup, nil
}

func (s *signupService) Delete(ctx context.Context, actor *Identity, tournamentID, playerID string) error {
	if !canActFor(actor, playerID) {
		return ErrForbiddenOperation
	}
	if _, err := s.signupRepo.GetByPlayer(ctx, tournamentID, playerID); err != nil {
		return mapRepoError(err)
	}
	if err := s.signupRepo.Delete(ctx, nil, tournamentID, playerID); err != nil {
		return mapRepoError(err)
	}
	s.live.Broadcast(tournamentID, EventSignupDeleted, map[string]string{"playerId": playerID})
	return nil
}

func (s *signupService) ListByTournament(ctx context.Context, actor *Identity, tournamentID string) ([]*models.Signup, error) {
	if actor == nil || !actor.IsCoach {
		return nil, ErrForbiddenOperation
	}
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, mapRepoError(err)
	}
	signups, err := s.signupRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return signups, nil
}
