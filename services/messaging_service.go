package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/clubhub/models"
	"github.com/Dosada05/clubhub/repositories"
	"golang.org/x/sync/errgroup"
)

type MessagingService interface {
	// ResolveRecipients turns group selectors into a deduplicated email set.
	// An empty result is ErrNoRecipients.
	ResolveRecipients(ctx context.Context, groups []models.GroupSelector) (*models.Recipients, error)
	// Send emails msg to every resolved recipient in one Bcc message.
	Send(ctx context.Context, actor *Identity, msg models.Message) (*models.Recipients, error)
	RequestAccess(ctx context.Context, req models.AccessRequest) error
}

type messagingService struct {
	userRepo   repositories.UserRepository
	teamRepo   repositories.TeamRepository
	signupRepo repositories.SignupRepository
	email      *EmailService
	logger     *slog.Logger
}

func NewMessagingService(
	userRepo repositories.UserRepository,
	teamRepo repositories.TeamRepository,
	signupRepo repositories.SignupRepository,
	email *EmailService,
	logger *slog.Logger,
) MessagingService {
	return &messagingService{
		userRepo:   userRepo,
		teamRepo:   teamRepo,
		signupRepo: signupRepo,
		email:      email,
		logger:     logger,
	}
}

// groupResult is what one selector resolved to.
type groupResult struct {
	emails     []string
	unresolved []string
}

func (s *messagingService) ResolveRecipients(ctx context.Context, groups []models.GroupSelector) (*models.Recipients, error) {
	if len(groups) == 0 {
		return nil, ErrNoRecipients
	}
	for _, g := range groups {
		if err := g.Validate(); err != nil {
			return nil, asValidation(err)
		}
	}

	results := make([]groupResult, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelReads)
	for i, sel := range groups {
		g.Go(func() error {
			res, err := s.resolveGroup(gctx, sel)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Union in selector order keeps the output stable.
	seen := make(map[string]struct{})
	out := &models.Recipients{Emails: []string{}}
	var unresolved []string
	for _, res := range results {
		for _, email := range res.emails {
			key := strings.ToLower(strings.TrimSpace(email))
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out.Emails = append(out.Emails, strings.TrimSpace(email))
		}
		unresolved = append(unresolved, res.unresolved...)
	}
	if len(out.Emails) == 0 {
		return nil, ErrNoRecipients
	}
	if len(unresolved) > 0 {
		out.Unresolved = dedupeStrings(unresolved)
	}
	return out, nil
}

func (s *messagingService) resolveGroup(ctx context.Context, sel models.GroupSelector) (groupResult, error) {
	switch sel.Type {
	case models.SelectorRole:
		users, err := s.userRepo.ListByRole(ctx, models.Role(sel.Value))
		if err != nil {
			return groupResult{}, mapRepoError(err)
		}
		res := groupResult{}
		for _, u := range users {
			res.emails = append(res.emails, u.Email)
		}
		return res, nil

	case models.SelectorTeam:
		team, err := s.teamRepo.GetByID(ctx, sel.TournamentID, sel.Value)
		if err != nil {
			return groupResult{}, mapRepoError(err)
		}
		signups, err := s.signupRepo.ListByTournament(ctx, sel.TournamentID)
		if err != nil {
			return groupResult{}, mapRepoError(err)
		}
		byID := make(map[string]string, len(signups))
		for _, su := range signups {
			byID[su.ID] = su.PlayerID
		}
		var playerIDs []string
		for _, slot := range team.Players {
			if pid, ok := byID[slot.SignupID]; ok {
				playerIDs = append(playerIDs, pid)
			}
		}
		return s.usersForPlayers(ctx, playerIDs)

	case models.SelectorTournament:
		signups, err := s.signupRepo.ListByTournament(ctx, sel.Value)
		if err != nil {
			return groupResult{}, mapRepoError(err)
		}
		playerIDs := make([]string, 0, len(signups))
		for _, su := range signups {
			playerIDs = append(playerIDs, su.PlayerID)
		}
		return s.usersForPlayers(ctx, playerIDs)
	}
	return groupResult{}, newValidationError("type", "must be role, team or tournament")
}

// usersForPlayers collects the emails of everyone linked to each player plus
// the player's own account when they signed up themselves. Players nobody
// can be found for are reported by id.
func (s *messagingService) usersForPlayers(ctx context.Context, playerIDs []string) (groupResult, error) {
	res := groupResult{}
	for _, pid := range dedupeStrings(playerIDs) {
		found := false
		linked, err := s.userRepo.ListLinkedTo(ctx, nil, pid)
		if err != nil {
			return groupResult{}, mapRepoError(err)
		}
		for _, u := range linked {
			if u.Email != "" {
				res.emails = append(res.emails, u.Email)
				found = true
			}
		}

		self, err := s.userRepo.GetByID(ctx, nil, pid)
		switch {
		case err == nil:
			if self.Email != "" {
				res.emails = append(res.emails, self.Email)
				found = true
			}
		case errors.Is(err, repositories.ErrUserNotFound):
		default:
			return groupResult{}, mapRepoError(err)
		}

		if !found {
			res.unresolved = append(res.unresolved, pid)
		}
	}
	return res, nil
}

func (s *messagingService) Send(ctx context.Context, actor *Identity, msg models.Message) (*models.Recipients, error) {
	if actor == nil || !actor.IsCoach {
		return nil, ErrForbiddenOperation
	}
	if err := msg.Validate(); err != nil {
		return nil, asValidation(err)
	}
	recipients, err := s.ResolveRecipients(ctx, msg.Groups)
	if err != nil {
		return nil, err
	}

	if err := s.email.SendGroupEmail(ctx, recipients.Emails, msg.Subject, msg.Body, actor.FullName()); err != nil {
		s.logger.ErrorContext(ctx, "group email failed",
			slog.String("from", actor.UID), slog.Int("recipients", len(recipients.Emails)), slog.Any("error", err))
		return nil, err
	}
	s.logger.InfoContext(ctx, "group email sent",
		slog.String("from", actor.UID), slog.Int("recipients", len(recipients.Emails)))
	return recipients, nil
}

func (s *messagingService) RequestAccess(ctx context.Context, req models.AccessRequest) error {
	if err := req.Validate(); err != nil {
		return asValidation(err)
	}
	coaches, err := s.userRepo.ListByRole(ctx, models.RoleCoach)
	if err != nil {
		return mapRepoError(err)
	}
	emails := make([]string, 0, len(coaches))
	for _, c := range coaches {
		if c.Email != "" {
			emails = append(emails, c.Email)
		}
	}
	if len(emails) == 0 {
		return fmt.Errorf("%w: no coach accounts", ErrNoRecipients)
	}
	if err := s.email.SendAccessRequest(ctx, dedupeStrings(emails), req.Name, req.Email, req.Message); err != nil {
		s.logger.ErrorContext(ctx, "access request email failed", slog.String("email", req.Email), slog.Any("error", err))
		return err
	}
	return nil
}
