package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/clubhub/docstore"
	"github.com/Dosada05/clubhub/models"
	"github.com/google/uuid"
)

const teamsSubcollection = "teams"

var ErrTeamNotFound = errors.New("team not found")

type TeamRepository interface {
	Create(ctx context.Context, tournamentID string, team *models.Team) error
	GetByID(ctx context.Context, tournamentID, teamID string) (*models.Team, error)
	ListByTournament(ctx context.Context, tournamentID string) ([]*models.Team, error)
	Update(ctx context.Context, tournamentID string, team *models.Team) error
	Delete(ctx context.Context, tournamentID, teamID string) error
}

type docTeamRepository struct {
	store docstore.Store
}

func NewTeamRepository(store docstore.Store) TeamRepository {
	return &docTeamRepository{store: store}
}

func teamsPath(tournamentID string) string {
	return docstore.Collection(tournamentsCollection, tournamentID, teamsSubcollection)
}

func setTeamID(t *models.Team, id string) { t.ID = id }

func (r *docTeamRepository) Create(ctx context.Context, tournamentID string, team *models.Team) error {
	if err := team.Validate(); err != nil {
		return err
	}
	if team.ID == "" {
		team.ID = uuid.NewString()
	}
	if team.Players == nil {
		team.Players = []models.TeamSlot{}
	}
	if err := r.store.Set(ctx, teamsPath(tournamentID), team.ID, team); err != nil {
		return fmt.Errorf("failed to create team: %w", err)
	}
	return nil
}

func (r *docTeamRepository) GetByID(ctx context.Context, tournamentID, teamID string) (*models.Team, error) {
	doc, err := r.store.Get(ctx, teamsPath(tournamentID), teamID)
	if err != nil {
		return nil, mapNotFound(err, ErrTeamNotFound)
	}
	return decode[models.Team](doc, setTeamID)
}

func (r *docTeamRepository) ListByTournament(ctx context.Context, tournamentID string) ([]*models.Team, error) {
	docs, err := r.store.List(ctx, teamsPath(tournamentID), docstore.Query{OrderBy: "name"})
	if err != nil {
		return nil, fmt.Errorf("failed to list teams of tournament %s: %w", tournamentID, err)
	}
	return decodeAll[models.Team](docs, setTeamID)
}

func (r *docTeamRepository) Update(ctx context.Context, tournamentID string, team *models.Team) error {
	if err := team.Validate(); err != nil {
		return err
	}
	return r.store.RunInTx(ctx, func(ctx context.Context, tx docstore.Tx) error {
		if _, err := tx.Get(ctx, teamsPath(tournamentID), team.ID); err != nil {
			return mapNotFound(err, ErrTeamNotFound)
		}
		return tx.Set(ctx, teamsPath(tournamentID), team.ID, team)
	})
}

func (r *docTeamRepository) Delete(ctx context.Context, tournamentID, teamID string) error {
	return r.store.Delete(ctx, teamsPath(tournamentID), teamID)
}
