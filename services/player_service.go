package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/clubhub/docstore"
	"github.com/Dosada05/clubhub/models"
	"github.com/Dosada05/clubhub/repositories"
)

type PlayerInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Grade     string `json:"grade,omitempty"`
}

// PlayerService manages player records created by coaches, independent of
// any account.
type PlayerService interface {
	Create(ctx context.Context, input PlayerInput) (*models.Player, error)
	GetByID(ctx context.Context, id string) (*models.Player, error)
	List(ctx context.Context) ([]*models.Player, error)
	Update(ctx context.Context, id string, input PlayerInput) (*models.Player, error)
	// Delete removes the player and its links on every user.
	Delete(ctx context.Context, id string) error
}

type playerService struct {
	store      docstore.Store
	playerRepo repositories.PlayerRepository
	userRepo   repositories.UserRepository
	now        Clock
	logger     *slog.Logger
}

func NewPlayerService(store docstore.Store, playerRepo repositories.PlayerRepository, userRepo repositories.UserRepository, now Clock, logger *slog.Logger) PlayerService {
	if now == nil {
		now = time.Now
	}
	return &playerService{store: store, playerRepo: playerRepo, userRepo: userRepo, now: now, logger: logger}
}

func (in PlayerInput) validate() error {
	errs := models.FieldErrors{}
	if strings.TrimSpace(in.FirstName) == "" {
		errs.Add("firstName", "is required")
	}
	if strings.TrimSpace(in.LastName) == "" {
		errs.Add("lastName", "is required")
	}
	return asValidation(errs.OrNil())
}

func (s *playerService) Create(ctx context.Context, input PlayerInput) (*models.Player, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	player := &models.Player{
		FirstName:   strings.TrimSpace(input.FirstName),
		LastName:    strings.TrimSpace(input.LastName),
		Grade:       strings.TrimSpace(input.Grade),
		LinkedUsers: []string{},
		CreatedAt:   s.now().UTC(),
	}
	if err := s.playerRepo.Create(ctx, nil, player); err != nil {
		return nil, mapRepoError(err)
	}
	return player, nil
}

func (s *playerService) GetByID(ctx context.Context, id string) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return player, nil
}

func (s *playerService) List(ctx context.Context) ([]*models.Player, error) {
	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return players, nil
}

func (s *playerService) Update(ctx context.Context, id string, input PlayerInput) (*models.Player, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	var updated *models.Player
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx docstore.Tx) error {
		player, err := s.playerRepo.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		player.FirstName = strings.TrimSpace(input.FirstName)
		player.LastName = strings.TrimSpace(input.LastName)
		player.Grade = strings.TrimSpace(input.Grade)
		if err := s.playerRepo.Update(ctx, tx, player); err != nil {
			return err
		}
		updated = player
		return nil
	})
	if err != nil {
		return nil, mapRepoError(err)
	}
	return updated, nil
}

func (s *playerService) Delete(ctx context.Context, id string) error {
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx docstore.Tx) error {
		player, err := s.playerRepo.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		// linkedUsers may be stale; the array-contains query catches the rest.
		linked, err := s.userRepo.ListLinkedTo(ctx, tx, id)
		if err != nil {
			return err
		}
		uids := append([]string{}, player.LinkedUsers...)
		for _, u := range linked {
			uids = append(uids, u.UID)
		}
		for _, uid := range dedupeStrings(uids) {
			err := s.userRepo.RemoveLinkedPlayer(ctx, tx, uid, id)
			if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
				return fmt.Errorf("failed to unlink user %s: %w", uid, err)
			}
		}
		return s.playerRepo.Delete(ctx, tx, id)
	})
	if err != nil {
		return mapRepoError(err)
	}
	s.logger.InfoContext(ctx, "player deleted", slog.String("player_id", id))
	return nil
}
