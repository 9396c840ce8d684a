package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/clubhub/models"
	"github.com/Dosada05/clubhub/repositories"
)

// Identity is a signed-in principal resolved to its club account. Role on the
// stored user is the only source of truth for authorization.
type Identity struct {
	*models.User
	IsCoach  bool `json:"isCoach"`
	IsPlayer bool `json:"isPlayer"`
	IsParent bool `json:"isParent"`
}

func NewIdentity(u *models.User) *Identity {
	return &Identity{
		User:     u,
		IsCoach:  u.IsCoach(),
		IsPlayer: u.IsPlayer(),
		IsParent: u.IsParent(),
	}
}

type IdentityService interface {
	// Resolve looks up the User for uid. A principal without a User is
	// ErrUnauthorizedIdentity; no account is created and no access granted.
	Resolve(ctx context.Context, uid string) (*Identity, error)
	// RequireCoach returns ErrForbiddenOperation unless id is a coach.
	RequireCoach(id *Identity) error
}

type identityService struct {
	userRepo repositories.UserRepository
}

func NewIdentityService(userRepo repositories.UserRepository) IdentityService {
	return &identityService{userRepo: userRepo}
}

func (s *identityService) Resolve(ctx context.Context, uid string) (*Identity, error) {
	if uid == "" {
		return nil, ErrSessionInvalid
	}
	user, err := s.userRepo.GetByID(ctx, nil, uid)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUnauthorizedIdentity
		}
		return nil, fmt.Errorf("failed to resolve identity %s: %w", uid, err)
	}
	return NewIdentity(user), nil
}

func (s *identityService) RequireCoach(id *Identity) error {
	if id == nil {
		return ErrSessionInvalid
	}
	if !id.IsCoach {
		return ErrForbiddenOperation
	}
	return nil
}
