package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/clubhub/docstore"
	"github.com/Dosada05/clubhub/models"
)

const usersCollection = "users"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserEmailConflict = errors.New("user email conflict")
)

type UserRepository interface {
	Create(ctx context.Context, exec Executor, user *models.User) error
	GetByID(ctx context.Context, exec Executor, uid string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, exec Executor, user *models.User) error
	Delete(ctx context.Context, exec Executor, uid string) error
	ListByRole(ctx context.Context, role models.Role) ([]*models.User, error)
	ListAll(ctx context.Context) ([]*models.User, error)
	// ListLinkedTo returns users whose linkedPlayers contains playerID.
	ListLinkedTo(ctx context.Context, exec Executor, playerID string) ([]*models.User, error)
	AddLinkedPlayer(ctx context.Context, exec Executor, uid, playerID string) error
	RemoveLinkedPlayer(ctx context.Context, exec Executor, uid, playerID string) error
}

type docUserRepository struct {
	store docstore.Store
}

func NewUserRepository(store docstore.Store) UserRepository {
	return &docUserRepository{store: store}
}

func decodeUser(doc *docstore.Document) (*models.User, error) {
	return decode[models.User](doc, func(u *models.User, id string) { u.UID = id })
}

func (r *docUserRepository) Create(ctx context.Context, exec Executor, user *models.User) error {
	if err := user.Validate(); err != nil {
		return err
	}
	executor := getExecutor(r.store, exec)

	existing, err := executor.List(ctx, usersCollection, docstore.Query{
		Filters: []docstore.Filter{docstore.Where("email", docstore.OpEqual, user.Email)},
		Limit:   1,
	})
	if err != nil {
		return fmt.Errorf("failed to check user email: %w", err)
	}
	if len(existing) > 0 && existing[0].ID != user.UID {
		return ErrUserEmailConflict
	}
	if user.LinkedPlayers == nil {
		user.LinkedPlayers = []string{}
	}
	if err := executor.Set(ctx, usersCollection, user.UID, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *docUserRepository) GetByID(ctx context.Context, exec Executor, uid string) (*models.User, error) {
	doc, err := getExecutor(r.store, exec).Get(ctx, usersCollection, uid)
	if err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}
	return decodeUser(doc)
}

func (r *docUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	docs, err := r.store.List(ctx, usersCollection, docstore.Query{
		Filters: []docstore.Filter{docstore.Where("email", docstore.OpEqual, email)},
		Limit:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query user by email: %w", err)
	}
	if len(docs) == 0 {
		return nil, ErrUserNotFound
	}
	return decodeUser(docs[0])
}

func (r *docUserRepository) Update(ctx context.Context, exec Executor, user *models.User) error {
	if err := user.Validate(); err != nil {
		return err
	}
	executor := getExecutor(r.store, exec)
	if _, err := executor.Get(ctx, usersCollection, user.UID); err != nil {
		return mapNotFound(err, ErrUserNotFound)
	}
	return executor.Set(ctx, usersCollection, user.UID, user)
}

func (r *docUserRepository) Delete(ctx context.Context, exec Executor, uid string) error {
	return getExecutor(r.store, exec).Delete(ctx, usersCollection, uid)
}

func (r *docUserRepository) ListByRole(ctx context.Context, role models.Role) ([]*models.User, error) {
	docs, err := r.store.List(ctx, usersCollection, docstore.Query{
		Filters: []docstore.Filter{docstore.Where("role", docstore.OpEqual, string(role))},
		OrderBy: "lastName",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list users by role: %w", err)
	}
	return decodeAll[models.User](docs, func(u *models.User, id string) { u.UID = id })
}

func (r *docUserRepository) ListAll(ctx context.Context) ([]*models.User, error) {
	docs, err := r.store.List(ctx, usersCollection, docstore.Query{OrderBy: "lastName"})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return decodeAll[models.User](docs, func(u *models.User, id string) { u.UID = id })
}

func (r *docUserRepository) ListLinkedTo(ctx context.Context, exec Executor, playerID string) ([]*models.User, error) {
	docs, err := getExecutor(r.store, exec).List(ctx, usersCollection, docstore.Query{
		Filters: []docstore.Filter{docstore.Where("linkedPlayers", docstore.OpArrayContains, playerID)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list users linked to player %s: %w", playerID, err)
	}
	return decodeAll[models.User](docs, func(u *models.User, id string) { u.UID = id })
}

func (r *docUserRepository) AddLinkedPlayer(ctx context.Context, exec Executor, uid, playerID string) error {
	err := getExecutor(r.store, exec).Update(ctx, usersCollection, uid, docstore.ArrayUnion("linkedPlayers", playerID))
	return mapNotFound(err, ErrUserNotFound)
}

func (r *docUserRepository) RemoveLinkedPlayer(ctx context.Context, exec Executor, uid, playerID string) error {
	err := getExecutor(r.store, exec).Update(ctx, usersCollection, uid, docstore.ArrayRemove("linkedPlayers", playerID))
	return mapNotFound(err, ErrUserNotFound)
}
