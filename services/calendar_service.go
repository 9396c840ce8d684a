package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Dosada05/clubhub/config"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// CalendarEvent is what gets written to the club calendar.
type CalendarEvent struct {
	Summary     string
	Location    string
	Description string
	Start       time.Time
	End         time.Time
	TimeZone    string
}

// CalendarClient inserts events; the service-account credentials stay on
// the server.
type CalendarClient interface {
	InsertEvent(ctx context.Context, ev CalendarEvent) (string, error)
}

type GoogleCalendar struct {
	events     *calendar.EventsService
	calendarID string
}

func NewGoogleCalendar(ctx context.Context, cfg config.CalendarConfig) (*GoogleCalendar, error) {
	svc, err := calendar.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(calendar.CalendarEventsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create google calendar client: %w", err)
	}
	return &GoogleCalendar{events: svc.Events, calendarID: cfg.CalendarID}, nil
}

func (g *GoogleCalendar) InsertEvent(ctx context.Context, ev CalendarEvent) (string, error) {
	created, err := g.events.Insert(g.calendarID, &calendar.Event{
		Summary:     ev.Summary,
		Location:    ev.Location,
		Description: ev.Description,
		Start: &calendar.EventDateTime{
			DateTime: ev.Start.Format(time.RFC3339),
			TimeZone: ev.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: ev.End.Format(time.RFC3339),
			TimeZone: ev.TimeZone,
		},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%w: google calendar: %v", ErrExternalService, err)
	}
	return created.Id, nil
}

type disabledCalendar struct{}

func (disabledCalendar) InsertEvent(context.Context, CalendarEvent) (string, error) {
	return "", ErrCalendarDisabled
}

// DisabledCalendar is used when no calendar is configured.
func DisabledCalendar() CalendarClient { return disabledCalendar{} }
