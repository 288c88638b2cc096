package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/controle-c/jarvis/pkg/agenda"
	"github.com/controle-c/jarvis/pkg/user"
	log "github.com/sirupsen/logrus"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// calendarId of the calendar all dashboard events live in.
const calendarId = "primary"

// CalendarProvider adapts the Google Calendar API to the agenda.Provider
// contract. All state lives upstream; this type holds only the auth plumbing.
type CalendarProvider struct {
	auth *GoogleAuth
}

func NewCalendarProvider(auth *GoogleAuth) *CalendarProvider {
	return &CalendarProvider{auth: auth}
}

func (p *CalendarProvider) service(ctx context.Context) (*gcal.Service, *time.Location, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get current user: %w", err)
	}

	client, err := p.auth.Client(ctx, currentUser.Id)
	if err != nil {
		return nil, nil, err
	}

	service, err := gcal.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		err := fmt.Errorf("unable to create Calendar client: %v", err)
		log.Error(err)
		return nil, nil, err
	}

	loc, err := time.LoadLocation(currentUser.Settings.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return service, loc, nil
}

func (p *CalendarProvider) GetEvents(ctx context.Context, from, to time.Time) ([]agenda.Event, error) {
	service, loc, err := p.service(ctx)
	if err != nil {
		return nil, err
	}

	googleEvents, err := service.Events.List(calendarId).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapCalendarError("retrieve events from", err)
	}

	events := make([]agenda.Event, 0, len(googleEvents.Items))
	for _, item := range googleEvents.Items {
		// Birthday entries are synthetic; the dashboard never shows them.
		if item.EventType == "birthday" {
			continue
		}
		event, err := googleEventToEvent(item, loc)
		if err != nil {
			log.Warnf("skipping unparsable calendar event %s: %v", item.Id, err)
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

func (p *CalendarProvider) CreateEvent(ctx context.Context, event agenda.Event) (agenda.Event, error) {
	service, loc, err := p.service(ctx)
	if err != nil {
		return agenda.Event{}, err
	}
	log.Debugf("Adding event %q to calendar %s", event.Summary, calendarId)

	result, err := service.Events.Insert(calendarId, eventToGoogleEvent(event)).Context(ctx).Do()
	if err != nil {
		return agenda.Event{}, wrapCalendarError("insert event in", err)
	}
	created, err := googleEventToEvent(result, loc)
	if err != nil {
		return agenda.Event{}, err
	}
	return created, nil
}

func (p *CalendarProvider) UpdateEvent(ctx context.Context, event agenda.Event) (agenda.Event, error) {
	service, loc, err := p.service(ctx)
	if err != nil {
		return agenda.Event{}, err
	}

	result, err := service.Events.Update(calendarId, event.ID, eventToGoogleEvent(event)).Context(ctx).Do()
	if err != nil {
		return agenda.Event{}, wrapCalendarError("update event in", err)
	}
	updated, err := googleEventToEvent(result, loc)
	if err != nil {
		return agenda.Event{}, err
	}
	return updated, nil
}

func (p *CalendarProvider) DeleteEvent(ctx context.Context, eventId string) error {
	service, _, err := p.service(ctx)
	if err != nil {
		return err
	}
	if err := service.Events.Delete(calendarId, eventId).Context(ctx).Do(); err != nil {
		return wrapCalendarError("delete event from", err)
	}
	return nil
}

// googleEventToEvent maps an API event to the agenda model. Date-only values
// mark all-day events; they are parsed in the user's timezone and never
// placed on the hourly grid.
func googleEventToEvent(item *gcal.Event, loc *time.Location) (agenda.Event, error) {
	event := agenda.Event{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
		Location:    item.Location,
	}

	if item.Start == nil || item.End == nil {
		return agenda.Event{}, fmt.Errorf("event %s has no start or end", item.Id)
	}

	if item.Start.Date != "" {
		start, err := time.ParseInLocation("2006-01-02", item.Start.Date, loc)
		if err != nil {
			return agenda.Event{}, fmt.Errorf("invalid all-day start %q: %w", item.Start.Date, err)
		}
		end, err := time.ParseInLocation("2006-01-02", item.End.Date, loc)
		if err != nil {
			return agenda.Event{}, fmt.Errorf("invalid all-day end %q: %w", item.End.Date, err)
		}
		event.AllDay = true
		event.StartTime = start
		event.EndTime = end
		return event, nil
	}

	start, err := time.Parse(time.RFC3339, item.Start.DateTime)
	if err != nil {
		return agenda.Event{}, fmt.Errorf("invalid start %q: %w", item.Start.DateTime, err)
	}
	end, err := time.Parse(time.RFC3339, item.End.DateTime)
	if err != nil {
		return agenda.Event{}, fmt.Errorf("invalid end %q: %w", item.End.DateTime, err)
	}
	event.StartTime = start.In(loc)
	event.EndTime = end.In(loc)
	return event, nil
}

func eventToGoogleEvent(event agenda.Event) *gcal.Event {
	googleEvent := &gcal.Event{
		Summary:     event.Summary,
		Description: event.Description,
		Location:    event.Location,
	}
	if event.AllDay {
		googleEvent.Start = &gcal.EventDateTime{Date: event.StartTime.Format("2006-01-02")}
		googleEvent.End = &gcal.EventDateTime{Date: event.EndTime.Format("2006-01-02")}
	} else {
		googleEvent.Start = &gcal.EventDateTime{DateTime: event.StartTime.Format(time.RFC3339)}
		googleEvent.End = &gcal.EventDateTime{DateTime: event.EndTime.Format(time.RFC3339)}
	}
	return googleEvent
}

func wrapCalendarError(action string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusUnauthorized {
		return fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	wrapped := fmt.Errorf("unable to %s Google Calendar: %v", action, err)
	log.Error(wrapped)
	return wrapped
}
