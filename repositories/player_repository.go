package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/clubhub/docstore"
	"github.com/Dosada05/clubhub/models"
	"github.com/google/uuid"
)

const playersCollection = "players"

var ErrPlayerNotFound = errors.New("player not found")

type PlayerRepository interface {
	// Create stores the player. An empty ID gets a generated one.
	Create(ctx context.Context, exec Executor, player *models.Player) error
	GetByID(ctx context.Context, exec Executor, id string) (*models.Player, error)
	// GetMany returns the players that exist among ids, keyed by id.
	GetMany(ctx context.Context, ids []string) (map[string]*models.Player, error)
	List(ctx context.Context) ([]*models.Player, error)
	Update(ctx context.Context, exec Executor, player *models.Player) error
	Delete(ctx context.Context, exec Executor, id string) error
	AddLinkedUser(ctx context.Context, exec Executor, playerID, uid string) error
	RemoveLinkedUser(ctx context.Context, exec Executor, playerID, uid string) error
}

type docPlayerRepository struct {
	store docstore.Store
}

func NewPlayerRepository(store docstore.Store) PlayerRepository {
	return &docPlayerRepository{store: store}
}

func setPlayerID(p *models.Player, id string) { p.ID = id }

func (r *docPlayerRepository) Create(ctx context.Context, exec Executor, player *models.Player) error {
	if player.ID == "" {
		player.ID = uuid.NewString()
	}
	if player.LinkedUsers == nil {
		player.LinkedUsers = []string{}
	}
	if err := player.Validate(); err != nil {
		return err
	}
	if err := getExecutor(r.store, exec).Set(ctx, playersCollection, player.ID, player); err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

func (r *docPlayerRepository) GetByID(ctx context.Context, exec Executor, id string) (*models.Player, error) {
	doc, err := getExecutor(r.store, exec).Get(ctx, playersCollection, id)
	if err != nil {
		return nil, mapNotFound(err, ErrPlayerNotFound)
	}
	return decode[models.Player](doc, setPlayerID)
}

func (r *docPlayerRepository) GetMany(ctx context.Context, ids []string) (map[string]*models.Player, error) {
	out := make(map[string]*models.Player, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	// Players keep their id inside the document, which makes an "in" query
	// on it possible.
	docs, err := r.store.List(ctx, playersCollection, docstore.Query{
		Filters: []docstore.Filter{docstore.Where("id", docstore.OpIn, ids)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load players: %w", err)
	}
	players, err := decodeAll[models.Player](docs, setPlayerID)
	if err != nil {
		return nil, err
	}
	for _, p := range players {
		out[p.ID] = p
	}
	return out, nil
}

func (r *docPlayerRepository) List(ctx context.Context) ([]*models.Player, error) {
	docs, err := r.store.List(ctx, playersCollection, docstore.Query{OrderBy: "lastName"})
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	return decodeAll[models.Player](docs, setPlayerID)
}

func (r *docPlayerRepository) Update(ctx context.Context, exec Executor, player *models.Player) error {
	if err := player.Validate(); err != nil {
		return err
	}
	executor := getExecutor(r.store, exec)
	if _, err := executor.Get(ctx, playersCollection, player.ID); err != nil {
		return mapNotFound(err, ErrPlayerNotFound)
	}
	return executor.Set(ctx, playersCollection, player.ID, player)
}

func (r *docPlayerRepository) Delete(ctx context.Context, exec Executor, id string) error {
	return getExecutor(r.store, exec).Delete(ctx, playersCollection, id)
}

func (r *docPlayerRepository) AddLinkedUser(ctx context.Context, exec Executor, playerID, uid string) error {
	err := getExecutor(r.store, exec).Update(ctx, playersCollection, playerID, docstore.ArrayUnion("linkedUsers", uid))
	return mapNotFound(err, ErrPlayerNotFound)
}

func (r *docPlayerRepository) RemoveLinkedUser(ctx context.Context, exec Executor, playerID, uid string) error {
	err := getExecutor(r.store, exec).Update(ctx, playersCollection, playerID, docstore.ArrayRemove("linkedUsers", uid))
	return mapNotFound(err, ErrPlayerNotFound)
}
