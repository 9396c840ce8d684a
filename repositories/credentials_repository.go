package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/clubhub/docstore"
	"github.com/Dosada05/clubhub/models"
)

const credentialsCollection = "credentials"

var (
	ErrCredentialsNotFound      = errors.New("credentials not found")
	ErrCredentialsEmailConflict = errors.New("an account with this email already exists")
)

type CredentialsRepository interface {
	Create(ctx context.Context, exec Executor, c *models.Credentials) error
	GetByUID(ctx context.Context, uid string) (*models.Credentials, error)
	GetByEmail(ctx context.Context, email string) (*models.Credentials, error)
	UpdatePasswordHash(ctx context.Context, uid, hash string) error
	Delete(ctx context.Context, exec Executor, uid string) error
}

type docCredentialsRepository struct {
	store docstore.Store
}

func NewCredentialsRepository(store docstore.Store) CredentialsRepository {
	return &docCredentialsRepository{store: store}
}

func setCredentialsUID(c *models.Credentials, id string) { c.UID = id }

// NormalizeEmail is the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *docCredentialsRepository) Create(ctx context.Context, exec Executor, c *models.Credentials) error {
	c.Email = NormalizeEmail(c.Email)
	if err := c.Validate(); err != nil {
		return err
	}
	executor := getExecutor(r.store, exec)
	existing, err := executor.List(ctx, credentialsCollection, docstore.Query{
		Filters: []docstore.Filter{docstore.Where("email", docstore.OpEqual, c.Email)},
		Limit:   1,
	})
	if err != nil {
		return fmt.Errorf("failed to check credentials email: %w", err)
	}
	if len(existing) > 0 {
		return ErrCredentialsEmailConflict
	}
	if err := executor.Set(ctx, credentialsCollection, c.UID, c); err != nil {
		return fmt.Errorf("failed to create credentials: %w", err)
	}
	return nil
}

func (r *docCredentialsRepository) GetByUID(ctx context.Context, uid string) (*models.Credentials, error) {
	doc, err := r.store.Get(ctx, credentialsCollection, uid)
	if err != nil {
		return nil, mapNotFound(err, ErrCredentialsNotFound)
	}
	return decode[models.Credentials](doc, setCredentialsUID)
}

func (r *docCredentialsRepository) GetByEmail(ctx context.Context, email string) (*models.Credentials, error) {
	docs, err := r.store.List(ctx, credentialsCollection, docstore.Query{
		Filters: []docstore.Filter{docstore.Where("email", docstore.OpEqual, NormalizeEmail(email))},
		Limit:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query credentials: %w", err)
	}
	if len(docs) == 0 {
		return nil, ErrCredentialsNotFound
	}
	return decode[models.Credentials](docs[0], setCredentialsUID)
}

func (r *docCredentialsRepository) UpdatePasswordHash(ctx context.Context, uid, hash string) error {
	err := r.store.Update(ctx, credentialsCollection, uid, docstore.SetField("passwordHash", hash))
	return mapNotFound(err, ErrCredentialsNotFound)
}

func (r *docCredentialsRepository) Delete(ctx context.Context, exec Executor, uid string) error {
	return getExecutor(r.store, exec).Delete(ctx, credentialsCollection, uid)
}
