package services

import (
	"errors"

	"github.com/Dosada05/clubhub/models"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed     = errors.New("validation failed")
	ErrPasswordTooShort     = errors.New("password must be at least 8 characters")
	ErrPasswordMismatch     = errors.New("password confirmation does not match")
	ErrNoRecipients         = errors.New("select at least one group with members")
	ErrPlayersCannotLink    = errors.New("players sign up as themselves and cannot link players")
	ErrRoleChangeNotAllowed = errors.New("role can only be changed to alumni")
	ErrUnsupportedFileType  = errors.New("unsupported file type")
	ErrFileTooLarge         = errors.New("file is too large")

	// Ошибки конфликтов
	ErrUserEmailConflict = errors.New("email address is already in use")

	// Ошибки аутентификации и авторизации
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnauthorizedIdentity: the principal is authenticated but has no club
	// account. The caller should ask a coach for access.
	ErrUnauthorizedIdentity = errors.New("no club account for this sign-in, please contact a coach")
	ErrSessionInvalid       = errors.New("session is missing, invalid or expired")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")

	// Ошибки, специфичные для сущностей
	ErrUserNotFound       = errors.New("user not found")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrSignupNotFound     = errors.New("signup not found")
	ErrTeamNotFound       = errors.New("team not found")

	// Внешние сервисы. Never retried.
	ErrExternalService   = errors.New("external service failed, please try again later")
	ErrEmailDisabled     = errors.New("email sending is not configured")
	ErrCalendarDisabled  = errors.New("calendar sync is not configured")
	ErrUploadsDisabled   = errors.New("file uploads are not configured")
	ErrOAuthNotAvailable = errors.New("google sign-in is not configured")
)

// ValidationError carries per-field problems found before any store or
// external call is made.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return models.FieldErrors(e.Fields).Error()
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

func newValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// asValidation turns model FieldErrors into a ValidationError and passes any
// other error through.
func asValidation(err error) error {
	var fe models.FieldErrors
	if errors.As(err, &fe) {
		return &ValidationError{Fields: fe}
	}
	return err
}
