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
	"github.com/Dosada05/clubhub/session"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/idtoken"
)

const minPasswordLength = 8

type AuthService interface {
	// SignUp is the only path that creates a User.
	SignUp(ctx context.Context, input SignUpInput) (*AuthResult, error)
	SignIn(ctx context.Context, input SignInInput) (*AuthResult, error)
	SignInWithGoogle(ctx context.Context, idToken string) (*AuthResult, error)
	SignOut(ctx context.Context, claims *SessionClaims) error
	// Authenticate verifies a session token and that it was not signed out.
	Authenticate(ctx context.Context, token string) (*SessionClaims, error)
	ChangePassword(ctx context.Context, uid string, input ChangePasswordInput) error
}

type SignUpInput struct {
	FirstName       string      `json:"firstName"`
	LastName        string      `json:"lastName"`
	Email           string      `json:"email"`
	Password        string      `json:"password"`
	PasswordConfirm string      `json:"passwordConfirm"`
	Role            models.Role `json:"role"`
	Suburb          string      `json:"suburb,omitempty"`
	// GoogleIDToken replaces the password for Google accounts.
	GoogleIDToken string `json:"googleIdToken,omitempty"`
}

type SignInInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChangePasswordInput struct {
	CurrentPassword    string `json:"currentPassword"`
	NewPassword        string `json:"newPassword"`
	NewPasswordConfirm string `json:"newPasswordConfirm"`
}

type AuthResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Identity  *Identity `json:"user"`
}

// GoogleIdentity is the verified content of a Google ID token.
type GoogleIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
}

type IDTokenVerifier interface {
	Verify(ctx context.Context, token string) (*GoogleIdentity, error)
}

type googleIDTokenVerifier struct {
	clientID string
}

// NewGoogleIDTokenVerifier returns nil when clientID is empty.
func NewGoogleIDTokenVerifier(clientID string) IDTokenVerifier {
	if clientID == "" {
		return nil
	}
	return &googleIDTokenVerifier{clientID: clientID}
}

func (v *googleIDTokenVerifier) Verify(ctx context.Context, token string) (*GoogleIdentity, error) {
	payload, err := idtoken.Validate(ctx, token, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	email, _ := payload.Claims["email"].(string)
	verified, _ := payload.Claims["email_verified"].(bool)
	return &GoogleIdentity{Subject: payload.Subject, Email: email, EmailVerified: verified}, nil
}

type authService struct {
	store       docstore.Store
	credRepo    repositories.CredentialsRepository
	userRepo    repositories.UserRepository
	playerRepo  repositories.PlayerRepository
	identity    IdentityService
	tokens      *TokenIssuer
	revocations session.Revocations
	state       *session.State
	google      IDTokenVerifier
	email       *EmailService
	now         Clock
	logger      *slog.Logger
}

type AuthDeps struct {
	Store       docstore.Store
	Credentials repositories.CredentialsRepository
	Users       repositories.UserRepository
	Players     repositories.PlayerRepository
	Identity    IdentityService
	Tokens      *TokenIssuer
	Revocations session.Revocations
	State       *session.State
	Google      IDTokenVerifier
	Email       *EmailService
	Clock       Clock
	Logger      *slog.Logger
}

func NewAuthService(d AuthDeps) AuthService {
	now := d.Clock
	if now == nil {
		now = time.Now
	}
	return &authService{
		store:       d.Store,
		credRepo:    d.Credentials,
		userRepo:    d.Users,
		playerRepo:  d.Players,
		identity:    d.Identity,
		tokens:      d.Tokens,
		revocations: d.Revocations,
		state:       d.State,
		google:      d.Google,
		email:       d.Email,
		now:         now,
		logger:      d.Logger,
	}
}

func validatePassword(field, password, confirm string) error {
	if len(password) < minPasswordLength {
		return newValidationError(field, ErrPasswordTooShort.Error())
	}
	if password != confirm {
		return newValidationError(field+"Confirm", ErrPasswordMismatch.Error())
	}
	return nil
}

func (s *authService) SignUp(ctx context.Context, input SignUpInput) (*AuthResult, error) {
	input.Email = repositories.NormalizeEmail(input.Email)
	switch input.Role {
	case models.RolePlayer, models.RoleParent, models.RoleAlumni:
	case models.RoleCoach:
		return nil, newValidationError("role", "coach accounts are granted by the club, sign up as another role")
	default:
		return nil, newValidationError("role", "must be one of player, parent, alumni")
	}

	cred := &models.Credentials{Email: input.Email}
	if input.GoogleIDToken != "" {
		if s.google == nil {
			return nil, ErrOAuthNotAvailable
		}
		gid, err := s.google.Verify(ctx, input.GoogleIDToken)
		if err != nil {
			return nil, err
		}
		if !gid.EmailVerified || repositories.NormalizeEmail(gid.Email) != input.Email {
			return nil, newValidationError("email", "must match the verified Google account email")
		}
		cred.Provider = models.ProviderGoogle
		cred.Subject = gid.Subject
	} else {
		if err := validatePassword("password", input.Password, input.PasswordConfirm); err != nil {
			return nil, err
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("ошибка хеширования пароля: %w", err)
		}
		cred.Provider = models.ProviderPassword
		cred.PasswordHash = string(hashed)
	}

	uid := uuid.NewString()
	created := s.now().UTC()
	cred.UID = uid
	cred.CreatedAt = created
	user := &models.User{
		UID:           uid,
		FirstName:     strings.TrimSpace(input.FirstName),
		LastName:      strings.TrimSpace(input.LastName),
		Email:         input.Email,
		Role:          input.Role,
		LinkedPlayers: []string{},
		Suburb:        strings.TrimSpace(input.Suburb),
		CreatedAt:     created,
	}
	if err := user.Validate(); err != nil {
		return nil, asValidation(err)
	}

	err := s.store.RunInTx(ctx, func(ctx context.Context, tx docstore.Tx) error {
		if err := s.credRepo.Create(ctx, tx, cred); err != nil {
			return err
		}
		if err := s.userRepo.Create(ctx, tx, user); err != nil {
			return err
		}
		if user.Role == models.RolePlayer {
			// a self-registered player's Player record shares the uid
			return s.playerRepo.Create(ctx, tx, &models.Player{
				ID:          uid,
				FirstName:   user.FirstName,
				LastName:    user.LastName,
				LinkedUsers: []string{},
				CreatedAt:   created,
			})
		}
		return nil
	})
	if err != nil {
		return nil, mapRepoError(err)
	}

	s.logger.InfoContext(ctx, "user signed up", slog.String("uid", uid), slog.String("role", string(user.Role)))
	if err := s.email.SendWelcomeEmail(ctx, user.Email, user.FirstName, string(user.Role)); err != nil {
		s.logger.WarnContext(ctx, "failed to send welcome email", slog.String("uid", uid), slog.Any("error", err))
	}

	return s.startSession(ctx, NewIdentity(user))
}

func (s *authService) SignIn(ctx context.Context, input SignInInput) (*AuthResult, error) {
	if strings.TrimSpace(input.Email) == "" || input.Password == "" {
		return nil, &ValidationError{Fields: map[string]string{"email": "is required", "password": "is required"}}
	}
	cred, err := s.credRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrCredentialsNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find credentials by email: %w", err)
	}
	if cred.Provider != models.ProviderPassword {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(input.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}
	return s.signInResolved(ctx, cred.UID)
}

func (s *authService) SignInWithGoogle(ctx context.Context, idToken string) (*AuthResult, error) {
	if s.google == nil {
		return nil, ErrOAuthNotAvailable
	}
	gid, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}
	if !gid.EmailVerified {
		return nil, ErrInvalidCredentials
	}
	cred, err := s.credRepo.GetByEmail(ctx, gid.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrCredentialsNotFound) {
			// Known to Google, unknown to the club.
			return nil, ErrUnauthorizedIdentity
		}
		return nil, fmt.Errorf("failed to find credentials by email: %w", err)
	}
	if cred.Provider == models.ProviderGoogle && cred.Subject != gid.Subject {
		return nil, ErrInvalidCredentials
	}
	return s.signInResolved(ctx, cred.UID)
}

// signInResolved never creates a User: an unknown principal is rejected.
func (s *authService) signInResolved(ctx context.Context, uid string) (*AuthResult, error) {
	id, err := s.identity.Resolve(ctx, uid)
	if err != nil {
		if errors.Is(err, ErrUnauthorizedIdentity) {
			s.logger.WarnContext(ctx, "sign-in without club account", slog.String("uid", uid))
		}
		return nil, err
	}
	return s.startSession(ctx, id)
}

func (s *authService) startSession(ctx context.Context, id *Identity) (*AuthResult, error) {
	token, claims, err := s.tokens.Issue(id.UID)
	if err != nil {
		return nil, err
	}
	s.state.Publish(session.Event{UID: id.UID, SignedIn: true})
	return &AuthResult{Token: token, ExpiresAt: claims.ExpiresAt, Identity: id}, nil
}

func (s *authService) SignOut(ctx context.Context, claims *SessionClaims) error {
	if claims == nil {
		return ErrSessionInvalid
	}
	if err := s.revocations.Revoke(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		return fmt.Errorf("%w: %v", ErrExternalService, err)
	}
	s.state.Publish(session.Event{UID: claims.UID, SignedIn: false})
	return nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*SessionClaims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	revoked, err := s.revocations.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalService, err)
	}
	if revoked {
		return nil, fmt.Errorf("%w: signed out", ErrSessionInvalid)
	}
	return claims, nil
}

func (s *authService) ChangePassword(ctx context.Context, uid string, input ChangePasswordInput) error {
	if err := validatePassword("newPassword", input.NewPassword, input.NewPasswordConfirm); err != nil {
		return err
	}
	cred, err := s.credRepo.GetByUID(ctx, uid)
	if err != nil {
		return mapRepoError(err)
	}
	if cred.Provider != models.ProviderPassword {
		return newValidationError("currentPassword", "this account signs in with Google")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(input.CurrentPassword)); err != nil {
		return ErrInvalidCredentials
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("ошибка хеширования пароля: %w", err)
	}
	return mapRepoError(s.credRepo.UpdatePasswordHash(ctx, uid, string(hashed)))
}
