package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Dosada05/clubhub/docstore"
	"github.com/Dosada05/clubhub/models"
	"github.com/Dosada05/clubhub/repositories"
	"github.com/Dosada05/clubhub/storage"
	"github.com/google/uuid"
)

// MaxFlyerSize is the largest accepted flyer upload.
const MaxFlyerSize = 5 << 20

type TournamentInput struct {
	EventName      string                  `json:"eventName"`
	EventType      string                  `json:"eventType"`
	Status         models.TournamentStatus `json:"status"`
	Date           string                  `json:"date"`
	StartTime      string                  `json:"startTime"`
	EndTime        string                  `json:"endTime,omitempty"`
	Location       string                  `json:"location"`
	RSVPDate       string                  `json:"rsvpDate,omitempty"`
	ShirtColor     string                  `json:"shirtColor,omitempty"`
	AdditionalInfo string                  `json:"additionalInfo,omitempty"`
}

func (in TournamentInput) apply(t *models.Tournament) {
	t.EventName = in.EventName
	t.EventType = in.EventType
	t.Status = in.Status
	t.Date = in.Date
	t.StartTime = in.StartTime
	t.EndTime = in.EndTime
	t.Location = in.Location
	t.RSVPDate = in.RSVPDate
	t.ShirtColor = in.ShirtColor
	t.AdditionalInfo = in.AdditionalInfo
}

type TournamentService interface {
	// ListUpcoming returns tournaments dated today or later, earliest first.
	ListUpcoming(ctx context.Context) ([]*models.Tournament, error)
	ListAll(ctx context.Context) ([]*models.Tournament, error)
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	Create(ctx context.Context, actor *Identity, input TournamentInput) (*models.Tournament, error)
	Update(ctx context.Context, id string, input TournamentInput) (*models.Tournament, error)
	// Delete removes the tournament with all of its signups and teams.
	Delete(ctx context.Context, id string) error
	// SyncCalendar writes the tournament to the club calendar and stores the
	// event id.
	SyncCalendar(ctx context.Context, id string) (*models.Tournament, error)
	UploadFlyer(ctx context.Context, id string, file io.Reader, contentType string, size int64) (*models.Tournament, error)
}

type tournamentService struct {
	store          docstore.Store
	tournamentRepo repositories.TournamentRepository
	calendar       CalendarClient
	uploader       storage.FileUploader
	live           Broadcaster
	now            Clock
	loc            *time.Location
	logger         *slog.Logger
}

type TournamentDeps struct {
	Store       docstore.Store
	Tournaments repositories.TournamentRepository
	Calendar    CalendarClient
	// Uploader may be nil when uploads are not configured.
	Uploader storage.FileUploader
	Live     Broadcaster
	Clock    Clock
	Location *time.Location
	Logger   *slog.Logger
}

func NewTournamentService(deps TournamentDeps) TournamentService {
	s := &tournamentService{
		store:          deps.Store,
		tournamentRepo: deps.Tournaments,
		calendar:       deps.Calendar,
		uploader:       deps.Uploader,
		live:           deps.Live,
		now:            deps.Clock,
		loc:            deps.Location,
		logger:         deps.Logger,
	}
	if s.calendar == nil {
		s.calendar = DisabledCalendar()
	}
	if s.live == nil {
		s.live = noopBroadcaster{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	return s
}

func (s *tournamentService) populate(ts ...*models.Tournament) {
	for _, t := range ts {
		populateFlyerURL(t, s.uploader)
	}
}

func (s *tournamentService) ListUpcoming(ctx context.Context) ([]*models.Tournament, error) {
	list, err := s.tournamentRepo.ListUpcoming(ctx, today(s.now(), s.loc))
	if err != nil {
		return nil, mapRepoError(err)
	}
	s.populate(list...)
	return list, nil
}

func (s *tournamentService) ListAll(ctx context.Context) ([]*models.Tournament, error) {
	list, err := s.tournamentRepo.ListAll(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	s.populate(list...)
	return list, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	s.populate(t)
	return t, nil
}

func (s *tournamentService) Create(ctx context.Context, actor *Identity, input TournamentInput) (*models.Tournament, error) {
	t := &models.Tournament{CreatedAt: s.now().UTC()}
	input.apply(t)
	if t.Status == "" {
		t.Status = models.StatusTentative
	}
	if actor != nil {
		t.CreatedBy = actor.UID
	}
	if err := t.Validate(); err != nil {
		return nil, asValidation(err)
	}
	if err := s.tournamentRepo.Create(ctx, t); err != nil {
		return nil, mapRepoError(err)
	}
	s.logger.InfoContext(ctx, "tournament created", slog.String("tournament_id", t.ID), slog.String("event", t.EventName))
	return t, nil
}

func (s *tournamentService) Update(ctx context.Context, id string, input TournamentInput) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	input.apply(t)
	if t.Status == "" {
		t.Status = models.StatusTentative
	}
	if err := t.Validate(); err != nil {
		return nil, asValidation(err)
	}
	if err := s.tournamentRepo.Update(ctx, nil, t); err != nil {
		return nil, mapRepoError(err)
	}
	s.populate(t)
	s.live.Broadcast(id, EventTournamentUpdated, t)
	return t, nil
}

func (s *tournamentService) Delete(ctx context.Context, id string) error {
	var flyerKey string
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx docstore.Tx) error {
		t, err := s.tournamentRepo.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		flyerKey = t.FlyerKey
		return s.tournamentRepo.Delete(ctx, tx, id)
	})
	if err != nil {
		return mapRepoError(err)
	}

	if flyerKey != "" && s.uploader != nil {
		if err := s.uploader.Delete(ctx, flyerKey); err != nil {
			s.logger.WarnContext(ctx, "failed to delete flyer of removed tournament",
				slog.String("tournament_id", id), slog.String("key", flyerKey), slog.Any("error", err))
		}
	}
	s.live.Broadcast(id, EventTournamentDeleted, map[string]string{"tournamentId": id})
	s.logger.InfoContext(ctx, "tournament deleted", slog.String("tournament_id", id))
	return nil
}

func (s *tournamentService) SyncCalendar(ctx context.Context, id string) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	start, end, err := t.Window(s.loc)
	if err != nil {
		return nil, newValidationError("date", "tournament date or time cannot be parsed")
	}

	eventID, err := s.calendar.InsertEvent(ctx, CalendarEvent{
		Summary:     t.EventName,
		Location:    t.Location,
		Description: t.AdditionalInfo,
		Start:       start,
		End:         end,
		TimeZone:    s.loc.String(),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "calendar insert failed", slog.String("tournament_id", id), slog.Any("error", err))
		return nil, err
	}

	t.CalendarEventID = eventID
	if err := s.tournamentRepo.Update(ctx, nil, t); err != nil {
		return nil, mapRepoError(err)
	}
	s.populate(t)
	return t, nil
}

func (s *tournamentService) UploadFlyer(ctx context.Context, id string, file io.Reader, contentType string, size int64) (*models.Tournament, error) {
	if s.uploader == nil {
		return nil, ErrUploadsDisabled
	}
	if size > MaxFlyerSize {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, MaxFlyerSize)
	}
	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, err
	}
	t, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapRepoError(err)
	}

	key := fmt.Sprintf("tournaments/%s/flyer-%s%s", id, uuid.NewString(), ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, io.LimitReader(file, MaxFlyerSize+1)); err != nil {
		return nil, fmt.Errorf("%w: flyer upload: %v", ErrExternalService, err)
	}

	oldKey := t.FlyerKey
	t.FlyerKey = key
	if err := s.tournamentRepo.Update(ctx, nil, t); err != nil {
		if delErr := s.uploader.Delete(ctx, key); delErr != nil {
			s.logger.WarnContext(ctx, "failed to remove orphaned flyer", slog.String("key", key), slog.Any("error", delErr))
		}
		return nil, mapRepoError(err)
	}
	if oldKey != "" {
		if err := s.uploader.Delete(ctx, oldKey); err != nil {
			s.logger.WarnContext(ctx, "failed to delete previous flyer", slog.String("key", oldKey), slog.Any("error", err))
		}
	}
	s.populate(t)
	s.live.Broadcast(id, EventTournamentUpdated, t)
	return t, nil
}
