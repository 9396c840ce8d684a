package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/clubhub/docstore"
	"github.com/Dosada05/clubhub/models"
	"github.com/Dosada05/clubhub/repositories"
)

// RelationshipService keeps user.linkedPlayers and player.linkedUsers
// mirrored. Both sides are written in one transaction.
type RelationshipService interface {
	// LinkPlayer adds the link. For a coach it replaces the current
	// favorite player instead.
	LinkPlayer(ctx context.Context, uid, playerID string) (*models.User, error)
	UnlinkPlayer(ctx context.Context, uid, playerID string) (*models.User, error)
}

type relationshipService struct {
	store      docstore.Store
	userRepo   repositories.UserRepository
	playerRepo repositories.PlayerRepository
	logger     *slog.Logger
}

func NewRelationshipService(store docstore.Store, userRepo repositories.UserRepository, playerRepo repositories.PlayerRepository, logger *slog.Logger) RelationshipService {
	return &relationshipService{store: store, userRepo: userRepo, playerRepo: playerRepo, logger: logger}
}

func (s *relationshipService) LinkPlayer(ctx context.Context, uid, playerID string) (*models.User, error) {
	var updated *models.User
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx docstore.Tx) error {
		user, err := s.userRepo.GetByID(ctx, tx, uid)
		if err != nil {
			return err
		}
		if !user.CanLinkPlayers() {
			return ErrPlayersCannotLink
		}
		if _, err := s.playerRepo.GetByID(ctx, tx, playerID); err != nil {
			return err
		}

		if user.IsCoach() {
			// favorite player: clear every previous link on both sides
			for _, prev := range user.LinkedPlayers {
				if prev == playerID {
					continue
				}
				if err := s.userRepo.RemoveLinkedPlayer(ctx, tx, uid, prev); err != nil {
					return err
				}
				if err := s.playerRepo.RemoveLinkedUser(ctx, tx, prev, uid); err != nil && !isPlayerGone(err) {
					return err
				}
			}
		}

		if err := s.userRepo.AddLinkedPlayer(ctx, tx, uid, playerID); err != nil {
			return err
		}
		if err := s.playerRepo.AddLinkedUser(ctx, tx, playerID, uid); err != nil {
			return err
		}
		updated, err = s.userRepo.GetByID(ctx, tx, uid)
		return err
	})
	if err != nil {
		return nil, mapRepoError(err)
	}
	s.logger.InfoContext(ctx, "player linked", slog.String("uid", uid), slog.String("player_id", playerID))
	return updated, nil
}

func (s *relationshipService) UnlinkPlayer(ctx context.Context, uid, playerID string) (*models.User, error) {
	var updated *models.User
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx docstore.Tx) error {
		if _, err := s.userRepo.GetByID(ctx, tx, uid); err != nil {
			return err
		}
		if err := s.userRepo.RemoveLinkedPlayer(ctx, tx, uid, playerID); err != nil {
			return err
		}
		// The player may already be gone; the user side still gets cleaned.
		if err := s.playerRepo.RemoveLinkedUser(ctx, tx, playerID, uid); err != nil && !isPlayerGone(err) {
			return err
		}
		var err error
		updated, err = s.userRepo.GetByID(ctx, tx, uid)
		return err
	})
	if err != nil {
		return nil, mapRepoError(err)
	}
	s.logger.InfoContext(ctx, "player unlinked", slog.String("uid", uid), slog.String("player_id", playerID))
	return updated, nil
}

func isPlayerGone(err error) bool {
	return errors.Is(err, repositories.ErrPlayerNotFound)
}

// unlinkUserFromPlayers drops user from the linkedUsers of every player it
// links. Used when the user is deleted.
func unlinkUserFromPlayers(ctx context.Context, tx docstore.Tx, players repositories.PlayerRepository, user *models.User) error {
	for _, pid := range user.LinkedPlayers {
		if err := players.RemoveLinkedUser(ctx, tx, pid, user.UID); err != nil && !isPlayerGone(err) {
			return fmt.Errorf("failed to unlink player %s: %w", pid, err)
		}
	}
	return nil
}
