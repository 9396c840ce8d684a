package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/clubhub/models"
	"github.com/Dosada05/clubhub/repositories"
	"github.com/Dosada05/clubhub/storage"
)

// Clock returns the current time. Services take one so tests can pin "today".
type Clock func() time.Time

// Broadcaster pushes a change notice to everyone watching a tournament.
type Broadcaster interface {
	Broadcast(tournamentID string, event string, payload any)
}

type noopBroadcaster struct{}

func (noopBroadcaster) Broadcast(string, string, any) {}

// Live update event names.
const (
	EventSignupUpdated     = "signup.updated"
	EventSignupDeleted     = "signup.deleted"
	EventTeamUpdated       = "team.updated"
	EventTeamDeleted       = "team.deleted"
	EventTournamentUpdated = "tournament.updated"
	EventTournamentDeleted = "tournament.deleted"
)

// today is the calendar date of now in loc, in the layout tournaments use.
func today(now time.Time, loc *time.Location) string {
	return now.In(loc).Format(models.DateLayout)
}

// mapRepoError переводит ошибки репозиториев в ошибки сервисного слоя.
func mapRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrUserNotFound), errors.Is(err, repositories.ErrCredentialsNotFound):
		return ErrUserNotFound
	case errors.Is(err, repositories.ErrPlayerNotFound):
		return ErrPlayerNotFound
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrSignupNotFound):
		return ErrSignupNotFound
	case errors.Is(err, repositories.ErrTeamNotFound):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrUserEmailConflict), errors.Is(err, repositories.ErrCredentialsEmailConflict):
		return ErrUserEmailConflict
	}
	return asValidation(err)
}

func populateFlyerURL(t *models.Tournament, uploader storage.FileUploader) {
	if t != nil && t.FlyerKey != "" && uploader != nil {
		t.FlyerURL = uploader.GetPublicURL(t.FlyerKey)
	}
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// GetExtensionFromContentType maps an image content type to a file extension.
func GetExtensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	}
	if strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, contentType)
	}
	return "", fmt.Errorf("%w: expected an image, got '%s'", ErrUnsupportedFileType, contentType)
}
