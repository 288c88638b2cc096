package agenda

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/controle-c/jarvis/internal/event_bus"
	"github.com/controle-c/jarvis/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServiceTest(t *testing.T) (*Service, *StubProvider, context.Context) {
	t.Helper()
	provider := NewStubProvider()
	service := NewService(provider, event_bus.NewEventBus())
	ctx := user.WithUser(context.Background(), user.User{
		Id:       1,
		Username: "test-user",
		Settings: user.Settings{
			Timezone:     "UTC",
			WeekFirstDay: time.Monday,
		},
	})
	return service, provider, ctx
}

func TestEventsWithin_CachesFetchedRange(t *testing.T) {
	service, provider, ctx := setupServiceTest(t)

	from := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 14)
	_, err := provider.CreateEvent(ctx, Event{
		Summary:   "Dentist",
		StartTime: from.Add(10 * time.Hour),
		EndTime:   from.Add(11 * time.Hour),
	})
	require.NoError(t, err)
	provider.FetchCalls = 0

	events, err := service.EventsWithin(ctx, from, to)
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, 1, provider.FetchCalls)

	// A narrower range inside the cached span must not hit the provider.
	events, err = service.EventsWithin(ctx, from, from.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, 1, provider.FetchCalls)

	// A wider range does.
	_, err = service.EventsWithin(ctx, from, to.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Equal(t, 2, provider.FetchCalls)
}

// gatedProvider blocks its first GetEvents call until released, so a test
// can run a second fetch while the first is still in flight.
type gatedProvider struct {
	*StubProvider
	mu      sync.Mutex
	calls   int
	entered chan struct{}
	release chan struct{}
}

func (p *gatedProvider) GetEvents(ctx context.Context, from, to time.Time) ([]Event, error) {
	p.mu.Lock()
	p.calls++
	first := p.calls == 1
	p.mu.Unlock()
	if first {
		close(p.entered)
		<-p.release
	}
	return p.StubProvider.GetEvents(ctx, from, to)
}

func TestEventsWithin_SlowFetchDoesNotOverwriteNewerOne(t *testing.T) {
	stub := NewStubProvider()
	provider := &gatedProvider{
		StubProvider: stub,
		entered:      make(chan struct{}),
		release:      make(chan struct{}),
	}
	service := NewService(provider, event_bus.NewEventBus())
	ctx := user.WithUser(context.Background(), user.User{
		Id:       1,
		Username: "test-user",
		Settings: user.Settings{Timezone: "UTC", WeekFirstDay: time.Monday},
	})

	weekA := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	weekB := weekA.AddDate(0, 0, 14)
	_, err := stub.CreateEvent(ctx, Event{
		Summary:   "Old week",
		StartTime: weekA.Add(9 * time.Hour),
		EndTime:   weekA.Add(10 * time.Hour),
	})
	require.NoError(t, err)
	_, err = stub.CreateEvent(ctx, Event{
		Summary:   "New week",
		StartTime: weekB.Add(9 * time.Hour),
		EndTime:   weekB.Add(10 * time.Hour),
	})
	require.NoError(t, err)

	// First fetch hangs inside the provider.
	done := make(chan error, 1)
	go func() {
		_, err := service.EventsWithin(ctx, weekA, weekA.AddDate(0, 0, 7))
		done <- err
	}()
	<-provider.entered

	// A second fetch for a different window completes while the first is
	// still in flight.
	events, err := service.EventsWithin(ctx, weekB, weekB.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "New week", events[0].Summary)

	close(provider.release)
	require.NoError(t, <-done)

	// The cache must still hold the later fetch: its window is served
	// without another provider call, the superseded one is not.
	calls := provider.calls
	events, err = service.EventsWithin(ctx, weekB, weekB.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "New week", events[0].Summary)
	assert.Equal(t, calls, provider.calls)

	_, err = service.EventsWithin(ctx, weekA, weekA.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Equal(t, calls+1, provider.calls)
}

func TestMutationInvalidatesCache(t *testing.T) {
	service, provider, ctx := setupServiceTest(t)

	from := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)

	_, err := service.EventsWithin(ctx, from, to)
	require.NoError(t, err)
	calls := provider.FetchCalls

	created, err := service.CreateEvent(ctx, Event{
		Summary:   "Lunch",
		StartTime: from.Add(12 * time.Hour),
		EndTime:   from.Add(13 * time.Hour),
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	// The cache was dropped: the next read refetches and sees the new event.
	events, err := service.EventsWithin(ctx, from, to)
	require.NoError(t, err)
	assert.Equal(t, calls+1, provider.FetchCalls)
	require.Len(t, events, 1)
	assert.Equal(t, "Lunch", events[0].Summary)

	require.NoError(t, service.DeleteEvent(ctx, created.ID))
	events, err = service.EventsWithin(ctx, from, to)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEventsWithin_UpstreamFailureIsExplicit(t *testing.T) {
	service, provider, ctx := setupServiceTest(t)

	provider.FailFetch = errors.New("upstream boom")
	from := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)

	_, err := service.EventsWithin(ctx, from, from.AddDate(0, 0, 7))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestWeekGrid_UsesUserWeekAnchor(t *testing.T) {
	service, provider, ctx := setupServiceTest(t)

	// Wednesday
	date := time.Date(2024, time.March, 6, 0, 0, 0, 0, time.UTC)
	_, err := provider.CreateEvent(ctx, Event{
		Summary:   "Standup",
		StartTime: time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2024, time.March, 4, 9, 15, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	grid, err := service.WeekGrid(ctx, date, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-04", grid.WeekStart)
	require.Len(t, grid.Events, 1)
	assert.InDelta(t, 0.0, grid.Events[0].Rect.LeftPct, 0.0001)
}

func TestWeekGrid_SecondaryWindowWidensFetch(t *testing.T) {
	service, provider, ctx := setupServiceTest(t)

	desktop := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	mobile := desktop.AddDate(0, 0, 14)

	_, err := service.WeekGrid(ctx, desktop, mobile)
	require.NoError(t, err)
	require.Equal(t, 1, provider.FetchCalls)

	// Navigating the grid to the mobile window's week is already covered by
	// the combined range: no refetch.
	_, err = service.WeekGrid(ctx, mobile, desktop)
	require.NoError(t, err)
	assert.Equal(t, 1, provider.FetchCalls)
}
