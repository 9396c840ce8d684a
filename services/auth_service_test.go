package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dosada05/clubhub/models"
	"github.com/Dosada05/clubhub/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerifier struct {
	identities map[string]*GoogleIdentity
}

func (v *fakeVerifier) Verify(ctx context.Context, token string) (*GoogleIdentity, error) {
	if id, ok := v.identities[token]; ok {
		return id, nil
	}
	return nil, ErrInvalidCredentials
}

type authFixture struct {
	*fixture
	svc    AuthService
	mailer *RecordingMailer
	state  *session.State
	google *fakeVerifier
}

func newAuthFixture(t *testing.T) *authFixture {
	f := newFixture(t)
	mailer := &RecordingMailer{}
	state := session.NewState()
	google := &fakeVerifier{identities: map[string]*GoogleIdentity{}}
	svc := NewAuthService(AuthDeps{
		Store:       f.store,
		Credentials: f.creds,
		Users:       f.users,
		Players:     f.players,
		Identity:    NewIdentityService(f.users),
		// wall clock: revocations expire against real time
		Tokens:      NewTokenIssuer("test-secret", time.Hour, nil),
		Revocations: session.NewMemoryRevocations(),
		State:       state,
		Google:      google,
		Email:       NewEmailService(mailer, "https://club.example.com"),
		Logger:      f.logger,
	})
	return &authFixture{fixture: f, svc: svc, mailer: mailer, state: state, google: google}
}

func signUpInput(role models.Role) SignUpInput {
	return SignUpInput{
		FirstName: "Sam", LastName: "Lee", Email: " Sam@Example.com ",
		Password: "hunter22", PasswordConfirm: "hunter22", Role: role,
	}
}

func TestSignUpPlayerCreatesUserAndPlayer(t *testing.T) {
	f := newAuthFixture(t)
	res, err := f.svc.SignUp(f.ctx, signUpInput(models.RolePlayer))
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	assert.True(t, res.Identity.IsPlayer)
	assert.Equal(t, "sam@example.com", res.Identity.Email)

	uid := res.Identity.UID
	player, err := f.players.GetByID(f.ctx, nil, uid)
	require.NoError(t, err)
	assert.Equal(t, "Sam", player.FirstName)

	require.Len(t, f.mailer.Sent, 1)
	assert.Equal(t, "sam@example.com", f.mailer.Sent[0].To)

	claims, err := f.svc.Authenticate(f.ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, uid, claims.UID)

	var events []session.Event
	f.state.Subscribe(uid, func(e session.Event) { events = append(events, e) })
	require.NoError(t, f.svc.SignOut(f.ctx, claims))
	require.Len(t, events, 1)
	assert.False(t, events[0].SignedIn)

	_, err = f.svc.Authenticate(f.ctx, res.Token)
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestSignUpValidation(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.SignUp(f.ctx, signUpInput(models.RoleCoach))
	assert.ErrorIs(t, err, ErrValidationFailed, "coaches are granted, not self-registered")

	short := signUpInput(models.RoleParent)
	short.Password, short.PasswordConfirm = "short", "short"
	_, err = f.svc.SignUp(f.ctx, short)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, ErrPasswordTooShort.Error(), verr.Fields["password"])

	mismatch := signUpInput(models.RoleParent)
	mismatch.PasswordConfirm = "hunter23"
	_, err = f.svc.SignUp(f.ctx, mismatch)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, ErrPasswordMismatch.Error(), verr.Fields["passwordConfirm"])

	_, err = f.svc.SignUp(f.ctx, signUpInput(models.RoleParent))
	require.NoError(t, err)
	_, err = f.svc.SignUp(f.ctx, signUpInput(models.RoleAlumni))
	assert.ErrorIs(t, err, ErrUserEmailConflict)

	users, err := f.users.ListAll(f.ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestSignUpSurvivesEmailFailure(t *testing.T) {
	f := newAuthFixture(t)
	f.mailer.Err = errors.New("smtp down")

	res, err := f.svc.SignUp(f.ctx, signUpInput(models.RoleParent))
	require.NoError(t, err)
	assert.True(t, res.Identity.IsParent)
}

func TestSignIn(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.SignUp(f.ctx, signUpInput(models.RoleParent))
	require.NoError(t, err)

	res, err := f.svc.SignIn(f.ctx, SignInInput{Email: "SAM@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, "Sam", res.Identity.FirstName)

	_, err = f.svc.SignIn(f.ctx, SignInInput{Email: "sam@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.SignIn(f.ctx, SignInInput{Email: "nobody@example.com", Password: "hunter22"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.SignIn(f.ctx, SignInInput{})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestSignInWithoutClubAccountIsUnauthorized(t *testing.T) {
	f := newAuthFixture(t)
	res, err := f.svc.SignUp(f.ctx, signUpInput(models.RoleParent))
	require.NoError(t, err)

	// a coach removed the account; credentials remain with the provider
	require.NoError(t, f.users.Delete(f.ctx, nil, res.Identity.UID))

	_, err = f.svc.SignIn(f.ctx, SignInInput{Email: "sam@example.com", Password: "hunter22"})
	assert.ErrorIs(t, err, ErrUnauthorizedIdentity)

	users, err := f.users.ListAll(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, users, "sign-in never creates an account")
}

func TestSignInWithGoogle(t *testing.T) {
	f := newAuthFixture(t)
	f.google.identities["known"] = &GoogleIdentity{Subject: "g-1", Email: "sam@example.com", EmailVerified: true}
	f.google.identities["stranger"] = &GoogleIdentity{Subject: "g-2", Email: "x@example.com", EmailVerified: true}

	_, err := f.svc.SignInWithGoogle(f.ctx, "stranger")
	assert.ErrorIs(t, err, ErrUnauthorizedIdentity)

	in := signUpInput(models.RoleParent)
	in.Password, in.PasswordConfirm, in.GoogleIDToken = "", "", "known"
	_, err = f.svc.SignUp(f.ctx, in)
	require.NoError(t, err)

	res, err := f.svc.SignInWithGoogle(f.ctx, "known")
	require.NoError(t, err)
	assert.Equal(t, "sam@example.com", res.Identity.Email)

	_, err = f.svc.SignIn(f.ctx, SignInInput{Email: "sam@example.com", Password: "anything"})
	assert.ErrorIs(t, err, ErrInvalidCredentials, "google accounts have no password")
}

func TestChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	res, err := f.svc.SignUp(f.ctx, signUpInput(models.RoleParent))
	require.NoError(t, err)
	uid := res.Identity.UID

	err = f.svc.ChangePassword(f.ctx, uid, ChangePasswordInput{CurrentPassword: "wrong-one", NewPassword: "new-password", NewPasswordConfirm: "new-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	err = f.svc.ChangePassword(f.ctx, uid, ChangePasswordInput{CurrentPassword: "hunter22", NewPassword: "new-password", NewPasswordConfirm: "new-passw0rd"})
	assert.ErrorIs(t, err, ErrValidationFailed)

	require.NoError(t, f.svc.ChangePassword(f.ctx, uid, ChangePasswordInput{CurrentPassword: "hunter22", NewPassword: "new-password", NewPasswordConfirm: "new-password"}))
	_, err = f.svc.SignIn(f.ctx, SignInInput{Email: "sam@example.com", Password: "new-password"})
	assert.NoError(t, err)
}

func TestTokenIssuerExpiry(t *testing.T) {
	now := fixedNow
	issuer := NewTokenIssuer("secret", time.Hour, func() time.Time { return now })
	token, claims, err := issuer.Issue("u1")
	require.NoError(t, err)

	parsed, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, claims.TokenID, parsed.TokenID)
	assert.Equal(t, "u1", parsed.UID)

	now = now.Add(2 * time.Hour)
	_, err = issuer.Parse(token)
	assert.ErrorIs(t, err, ErrSessionInvalid)

	other := NewTokenIssuer("other-secret", time.Hour, nil)
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrSessionInvalid)
	_, err = issuer.Parse("garbage")
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestDeletedUserCanSignUpAgain(t *testing.T) {
	f := newAuthFixture(t)
	users := NewUserService(f.store, f.users, f.players, f.creds, f.logger)

	first, err := f.svc.SignUp(f.ctx, signUpInput(models.RoleParent))
	require.NoError(t, err)
	require.NoError(t, users.DeleteUser(f.ctx, first.Identity.UID))

	_, err = f.creds.GetByEmail(f.ctx, "sam@example.com")
	assert.Error(t, err)
	_, err = f.svc.SignIn(f.ctx, SignInInput{Email: "sam@example.com", Password: "hunter22"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	second, err := f.svc.SignUp(f.ctx, signUpInput(models.RoleParent))
	require.NoError(t, err)
	assert.NotEqual(t, first.Identity.UID, second.Identity.UID)

	promoted, err := users.SetRole(f.ctx, "sam@example.com", models.RoleCoach)
	require.NoError(t, err)
	assert.Equal(t, models.RoleCoach, promoted.Role)
}
