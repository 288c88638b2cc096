package agenda

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/controle-c/jarvis/internal/event_bus"
	"github.com/controle-c/jarvis/pkg/user"
	log "github.com/sirupsen/logrus"
)

// cachedRange is the transient per-user event cache: the last fetched span
// and its events. seq is incremented every time a fetch is issued for the
// user; a response whose seq is no longer the latest is discarded, so a slow
// reply for a superseded window can never overwrite fresher data.
type cachedRange struct {
	from, to time.Time
	events   []Event
	valid    bool
	seq      uint64
}

type Service struct {
	provider Provider
	bus      *event_bus.EventBus

	mu    sync.Mutex
	cache map[int]*cachedRange
}

func NewService(provider Provider, bus *event_bus.EventBus) *Service {
	s := &Service{
		provider: provider,
		bus:      bus,
		cache:    map[int]*cachedRange{},
	}
	if bus != nil {
		event_bus.SubscribeTyped[event_bus.AgendaChangedData](bus, event_bus.AgendaChanged,
			func(e event_bus.EventT[event_bus.AgendaChangedData]) error {
				s.Invalidate(e.Data.UserId)
				return nil
			})
	}
	return s
}

// EventsWithin returns all events overlapping [from, to). Served from the
// cache when the cached span covers the requested one, otherwise fetched
// from the provider and cached.
func (s *Service) EventsWithin(ctx context.Context, from, to time.Time) ([]Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	s.mu.Lock()
	entry := s.cache[userId]
	if entry == nil {
		entry = &cachedRange{}
		s.cache[userId] = entry
	}
	if entry.valid && !from.Before(entry.from) && !to.After(entry.to) {
		events := filterEvents(entry.events, from, to)
		s.mu.Unlock()
		log.Tracef("agenda cache hit for user %d: %s - %s", userId, from, to)
		return events, nil
	}
	entry.seq++
	seq := entry.seq
	s.mu.Unlock()

	events, err := s.provider.GetEvents(ctx, from, to)
	if err != nil {
		// Cached data, if any, stays in place for the loading transition;
		// the caller still gets an explicit error, never a silent empty list.
		return nil, fmt.Errorf("%w: %v", ErrNoData, err)
	}

	s.mu.Lock()
	if seq == entry.seq {
		entry.from = from
		entry.to = to
		entry.events = events
		entry.valid = true
	} else {
		log.Debugf("discarding stale agenda fetch for user %d (seq %d < %d)", userId, seq, entry.seq)
	}
	s.mu.Unlock()

	return filterEvents(events, from, to), nil
}

// WeekGrid builds the positioned grid for the week containing date. The
// secondary date is the other view's navigation cursor (mobile strip vs
// desktop grid); both are covered by one conservative fetch.
func (s *Service) WeekGrid(ctx context.Context, date time.Time, secondary time.Time) (WeekGrid, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return WeekGrid{}, fmt.Errorf("failed to get current user: %w", err)
	}
	loc, err := time.LoadLocation(currentUser.Settings.Timezone)
	if err != nil {
		log.Warnf("invalid timezone %q for user %d, falling back to UTC", currentUser.Settings.Timezone, currentUser.Id)
		loc = time.UTC
	}

	anchor := currentUser.Settings.WeekFirstDay
	primary := NewWeekWindow(date.In(loc), anchor)
	other := primary
	if !secondary.IsZero() {
		other = NewWeekWindow(secondary.In(loc), anchor)
	}

	from, to := FetchRange(primary, other, DefaultFetchBufferDays)
	events, err := s.EventsWithin(ctx, from, to)
	if err != nil {
		return WeekGrid{}, err
	}

	return BuildWeekGrid(events, primary), nil
}

func (s *Service) CreateEvent(ctx context.Context, event Event) (Event, error) {
	created, err := s.provider.CreateEvent(ctx, event)
	if err != nil {
		return Event{}, fmt.Errorf("failed to create event: %w", err)
	}
	s.notifyChanged(ctx, created.ID)
	return created, nil
}

func (s *Service) UpdateEvent(ctx context.Context, event Event) (Event, error) {
	updated, err := s.provider.UpdateEvent(ctx, event)
	if err != nil {
		return Event{}, fmt.Errorf("failed to update event: %w", err)
	}
	s.notifyChanged(ctx, updated.ID)
	return updated, nil
}

func (s *Service) DeleteEvent(ctx context.Context, eventId string) error {
	if err := s.provider.DeleteEvent(ctx, eventId); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	s.notifyChanged(ctx, eventId)
	return nil
}

// Invalidate drops the cached events for the user; the next read refetches
// the full combined range. There is no incremental patching.
func (s *Service) Invalidate(userId int) {
	s.mu.Lock()
	if entry := s.cache[userId]; entry != nil {
		entry.valid = false
		entry.events = nil
	}
	s.mu.Unlock()
}

func (s *Service) notifyChanged(ctx context.Context, eventId string) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return
	}
	if s.bus == nil {
		s.Invalidate(userId)
		return
	}
	err = s.bus.Publish(event_bus.NewEvent(ctx, event_bus.AgendaChanged, event_bus.AgendaChangedData{
		UserId:  userId,
		EventId: eventId,
	}))
	if err != nil {
		log.Errorf("failed to publish agenda change: %v", err)
	}
}

func filterEvents(events []Event, from, to time.Time) []Event {
	filtered := make([]Event, 0, len(events))
	for _, ev := range events {
		if ev.StartTime.Before(to) && ev.EndTime.After(from) {
			filtered = append(filtered, ev)
		}
	}
	return filtered
}
