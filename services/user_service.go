package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/clubhub/docstore"
	"github.com/Dosada05/clubhub/models"
	"github.com/Dosada05/clubhub/repositories"
)

// UpdateProfileInput is a partial self-edit; nil fields are left unchanged.
type UpdateProfileInput struct {
	FirstName *string      `json:"firstName,omitempty"`
	LastName  *string      `json:"lastName,omitempty"`
	Suburb    *string      `json:"suburb,omitempty"`
	Role      *models.Role `json:"role,omitempty"`
}

type UserService interface {
	GetByID(ctx context.Context, uid string) (*models.User, error)
	// UpdateProfile applies a self-edit. Role may only move to alumni.
	UpdateProfile(ctx context.Context, uid string, input UpdateProfileInput) (*models.User, error)
	ListUsers(ctx context.Context, role string) ([]*models.User, error)
	// DeleteUser removes the account, its sign-in credentials and every link
	// to it. For a player the player record goes too.
	DeleteUser(ctx context.Context, uid string) error
	// SetRole is the operator path for granting roles, e.g. coach.
	SetRole(ctx context.Context, email string, role models.Role) (*models.User, error)
}

type userService struct {
	store      docstore.Store
	userRepo   repositories.UserRepository
	playerRepo repositories.PlayerRepository
	credRepo   repositories.CredentialsRepository
	logger     *slog.Logger
}

func NewUserService(store docstore.Store, userRepo repositories.UserRepository, playerRepo repositories.PlayerRepository, credRepo repositories.CredentialsRepository, logger *slog.Logger) UserService {
	return &userService{store: store, userRepo: userRepo, playerRepo: playerRepo, credRepo: credRepo, logger: logger}
}

func (s *userService) GetByID(ctx context.Context, uid string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, nil, uid)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, uid string, input UpdateProfileInput) (*models.User, error) {
	if input.Role != nil && *input.Role != models.RoleAlumni {
		return nil, ErrRoleChangeNotAllowed
	}

	var updated *models.User
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx docstore.Tx) error {
		user, err := s.userRepo.GetByID(ctx, tx, uid)
		if err != nil {
			return err
		}
		if input.FirstName != nil {
			user.FirstName = strings.TrimSpace(*input.FirstName)
		}
		if input.LastName != nil {
			user.LastName = strings.TrimSpace(*input.LastName)
		}
		if input.Suburb != nil {
			user.Suburb = strings.TrimSpace(*input.Suburb)
		}

		if input.Role != nil && user.Role != models.RoleAlumni {
			wasPlayer := user.IsPlayer()
			user.Role = models.RoleAlumni
			// A former player keeps following their own player record.
			if wasPlayer {
				err = s.playerRepo.AddLinkedUser(ctx, tx, uid, uid)
				switch {
				case err == nil:
					user.LinkedPlayers = appendMissing(user.LinkedPlayers, uid)
				case !isPlayerGone(err):
					return err
				}
			}
		}

		if err := s.userRepo.Update(ctx, tx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, mapRepoError(err)
	}
	return updated, nil
}

func appendMissing(list []string, id string) []string {
	for _, v := range list {
		if v == id {
			return list
		}
	}
	return append(list, id)
}

func (s *userService) ListUsers(ctx context.Context, role string) ([]*models.User, error) {
	var (
		users []*models.User
		err   error
	)
	if role == "" {
		users, err = s.userRepo.ListAll(ctx)
	} else {
		r := models.Role(role)
		if !r.Valid() {
			return nil, newValidationError("role", "must be one of player, parent, coach, alumni")
		}
		users, err = s.userRepo.ListByRole(ctx, r)
	}
	if err != nil {
		return nil, mapRepoError(err)
	}
	return users, nil
}

func (s *userService) DeleteUser(ctx context.Context, uid string) error {
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx docstore.Tx) error {
		user, err := s.userRepo.GetByID(ctx, tx, uid)
		if err != nil {
			return err
		}
		if err := unlinkUserFromPlayers(ctx, tx, s.playerRepo, user); err != nil {
			return err
		}
		if user.IsPlayer() {
			if err := s.deletePlayerRecord(ctx, tx, uid); err != nil {
				return err
			}
		}
		if err := s.credRepo.Delete(ctx, tx, uid); err != nil {
			return fmt.Errorf("failed to delete credentials: %w", err)
		}
		return s.userRepo.Delete(ctx, tx, uid)
	})
	if err != nil {
		return mapRepoError(err)
	}
	s.logger.InfoContext(ctx, "user deleted", slog.String("uid", uid))
	return nil
}

// deletePlayerRecord removes a player and takes it out of every linked
// user's linkedPlayers.
func (s *userService) deletePlayerRecord(ctx context.Context, tx docstore.Tx, playerID string) error {
	player, err := s.playerRepo.GetByID(ctx, tx, playerID)
	if err != nil {
		if isPlayerGone(err) {
			return nil
		}
		return err
	}
	for _, linked := range player.LinkedUsers {
		err := s.userRepo.RemoveLinkedPlayer(ctx, tx, linked, playerID)
		if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
			return fmt.Errorf("failed to unlink user %s: %w", linked, err)
		}
	}
	return s.playerRepo.Delete(ctx, tx, playerID)
}

func (s *userService) SetRole(ctx context.Context, email string, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, newValidationError("role", "must be one of player, parent, coach, alumni")
	}
	found, err := s.userRepo.GetByEmail(ctx, repositories.NormalizeEmail(email))
	if err != nil {
		return nil, mapRepoError(err)
	}

	var updated *models.User
	err = s.store.RunInTx(ctx, func(ctx context.Context, tx docstore.Tx) error {
		user, err := s.userRepo.GetByID(ctx, tx, found.UID)
		if err != nil {
			return err
		}
		// Drop links the new role cannot hold.
		keep := len(user.LinkedPlayers)
		switch role {
		case models.RolePlayer:
			keep = 0
		case models.RoleCoach:
			keep = min(keep, 1)
		}
		for _, pid := range user.LinkedPlayers[keep:] {
			if err := s.playerRepo.RemoveLinkedUser(ctx, tx, pid, user.UID); err != nil && !isPlayerGone(err) {
				return err
			}
		}
		user.LinkedPlayers = user.LinkedPlayers[:keep]
		user.Role = role
		if err := s.userRepo.Update(ctx, tx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, mapRepoError(err)
	}
	s.logger.InfoContext(ctx, "user role changed", slog.String("uid", updated.UID), slog.String("role", string(role)))
	return updated, nil
}
