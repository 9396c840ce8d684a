package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/clubhub/docstore"
	"github.com/Dosada05/clubhub/models"
	"github.com/google/uuid"
)

const tournamentsCollection = "tournaments"

var ErrTournamentNotFound = errors.New("tournament not found")

type TournamentRepository interface {
	Create(ctx context.Context, t *models.Tournament) error
	GetByID(ctx context.Context, exec Executor, id string) (*models.Tournament, error)
	// ListUpcoming returns tournaments dated on or after fromDate, earliest first.
	ListUpcoming(ctx context.Context, fromDate string) ([]*models.Tournament, error)
	ListAll(ctx context.Context) ([]*models.Tournament, error)
	Update(ctx context.Context, exec Executor, t *models.Tournament) error
	// Delete removes the tournament together with its signups and teams.
	Delete(ctx context.Context, exec Executor, id string) error
}

type docTournamentRepository struct {
	store docstore.Store
}

func NewTournamentRepository(store docstore.Store) TournamentRepository {
	return &docTournamentRepository{store: store}
}

func setTournamentID(t *models.Tournament, id string) { t.ID = id }

func (r *docTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	stored := *t
	stored.FlyerURL = ""
	if err := r.store.Set(ctx, tournamentsCollection, t.ID, &stored); err != nil {
		return fmt.Errorf("failed to create tournament: %w", err)
	}
	return nil
}

func (r *docTournamentRepository) GetByID(ctx context.Context, exec Executor, id string) (*models.Tournament, error) {
	doc, err := getExecutor(r.store, exec).Get(ctx, tournamentsCollection, id)
	if err != nil {
		return nil, mapNotFound(err, ErrTournamentNotFound)
	}
	return decode[models.Tournament](doc, setTournamentID)
}

func (r *docTournamentRepository) ListUpcoming(ctx context.Context, fromDate string) ([]*models.Tournament, error) {
	docs, err := r.store.List(ctx, tournamentsCollection, docstore.Query{
		Filters: []docstore.Filter{docstore.Where("date", docstore.OpGreaterEqual, fromDate)},
		OrderBy: "date",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming tournaments: %w", err)
	}
	return decodeAll[models.Tournament](docs, setTournamentID)
}

func (r *docTournamentRepository) ListAll(ctx context.Context) ([]*models.Tournament, error) {
	docs, err := r.store.List(ctx, tournamentsCollection, docstore.Query{OrderBy: "date"})
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return decodeAll[models.Tournament](docs, setTournamentID)
}

func (r *docTournamentRepository) Update(ctx context.Context, exec Executor, t *models.Tournament) error {
	if err := t.Validate(); err != nil {
		return err
	}
	executor := getExecutor(r.store, exec)
	if _, err := executor.Get(ctx, tournamentsCollection, t.ID); err != nil {
		return mapNotFound(err, ErrTournamentNotFound)
	}
	stored := *t
	stored.FlyerURL = ""
	return executor.Set(ctx, tournamentsCollection, t.ID, &stored)
}

func (r *docTournamentRepository) Delete(ctx context.Context, exec Executor, id string) error {
	executor := getExecutor(r.store, exec)
	for _, sub := range []string{signupsSubcollection, teamsSubcollection} {
		coll := docstore.Collection(tournamentsCollection, id, sub)
		docs, err := executor.List(ctx, coll, docstore.Query{})
		if err != nil {
			return fmt.Errorf("failed to list %s of tournament %s: %w", sub, id, err)
		}
		for _, d := range docs {
			if err := executor.Delete(ctx, coll, d.ID); err != nil {
				return fmt.Errorf("failed to delete %s/%s: %w", coll, d.ID, err)
			}
		}
	}
	return executor.Delete(ctx, tournamentsCollection, id)
}
