package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/clubhub/docstore"
	"github.com/Dosada05/clubhub/models"
)

const signupsSubcollection = "signups"

var ErrSignupNotFound = errors.New("signup not found")

type SignupRepository interface {
	// Upsert writes the entry under the player id, replacing any earlier
	// entry for the same player and tournament.
	Upsert(ctx context.Context, exec Executor, tournamentID string, s *models.Signup) error
	GetByPlayer(ctx context.Context, tournamentID, playerID string) (*models.Signup, error)
	ListByTournament(ctx context.Context, tournamentID string) ([]*models.Signup, error)
	Delete(ctx context.Context, exec Executor, tournamentID, signupID string) error
}

type docSignupRepository struct {
	store docstore.Store
}

func NewSignupRepository(store docstore.Store) SignupRepository {
	return &docSignupRepository{store: store}
}

func signupsPath(tournamentID string) string {
	return docstore.Collection(tournamentsCollection, tournamentID, signupsSubcollection)
}

func setSignupID(s *models.Signup, id string) { s.ID = id }

func (r *docSignupRepository) Upsert(ctx context.Context, exec Executor, tournamentID string, s *models.Signup) error {
	if err := s.Validate(); err != nil {
		return err
	}
	s.ID = s.PlayerID
	if err := getExecutor(r.store, exec).Set(ctx, signupsPath(tournamentID), s.ID, s); err != nil {
		return fmt.Errorf("failed to save signup: %w", err)
	}
	return nil
}

func (r *docSignupRepository) GetByPlayer(ctx context.Context, tournamentID, playerID string) (*models.Signup, error) {
	doc, err := r.store.Get(ctx, signupsPath(tournamentID), playerID)
	if err != nil {
		return nil, mapNotFound(err, ErrSignupNotFound)
	}
	return decode[models.Signup](doc, setSignupID)
}

func (r *docSignupRepository) ListByTournament(ctx context.Context, tournamentID string) ([]*models.Signup, error) {
	docs, err := r.store.List(ctx, signupsPath(tournamentID), docstore.Query{})
	if err != nil {
		return nil, fmt.Errorf("failed to list signups of tournament %s: %w", tournamentID, err)
	}
	return decodeAll[models.Signup](docs, setSignupID)
}

func (r *docSignupRepository) Delete(ctx context.Context, exec Executor, tournamentID, signupID string) error {
	return getExecutor(r.store, exec).Delete(ctx, signupsPath(tournamentID), signupID)
}
