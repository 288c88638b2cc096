package agenda

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
)

// StubProvider is an in-memory Provider used in tests.
type StubProvider struct {
	data       map[string]Event
	FetchCalls int
	FailFetch  error
}

func NewStubProvider() *StubProvider {
	return &StubProvider{data: map[string]Event{}}
}

func (p *StubProvider) GetEvents(_ context.Context, from, to time.Time) ([]Event, error) {
	p.FetchCalls++
	if p.FailFetch != nil {
		return nil, p.FailFetch
	}
	var events []Event
	for _, ev := range p.data {
		if ev.StartTime.Before(to) && ev.EndTime.After(from) {
			events = append(events, ev)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].StartTime.Before(events[j].StartTime)
	})
	return events, nil
}

func (p *StubProvider) CreateEvent(_ context.Context, event Event) (Event, error) {
	event.ID = uuid.NewString()
	p.data[event.ID] = event
	return event, nil
}

func (p *StubProvider) UpdateEvent(_ context.Context, event Event) (Event, error) {
	if _, ok := p.data[event.ID]; !ok {
		return Event{}, errors.New("event not found")
	}
	p.data[event.ID] = event
	return event, nil
}

func (p *StubProvider) DeleteEvent(_ context.Context, eventId string) error {
	if _, ok := p.data[eventId]; !ok {
		return errors.New("event not found")
	}
	delete(p.data, eventId)
	return nil
}

func (p *StubProvider) Cleanup() {
	p.data = map[string]Event{}
	p.FetchCalls = 0
	p.FailFetch = nil
}
