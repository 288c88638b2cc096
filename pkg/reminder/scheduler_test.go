package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/controle-c/jarvis/internal/event_bus"
	"github.com/controle-c/jarvis/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectDue(bus *event_bus.EventBus) *[]event_bus.ReminderDueData {
	var received []event_bus.ReminderDueData
	event_bus.SubscribeTyped[event_bus.ReminderDueData](bus, event_bus.ReminderDue,
		func(e event_bus.EventT[event_bus.ReminderDueData]) error {
			received = append(received, e.Data)
			return nil
		})
	return &received
}

func TestScan_PublishesDueReminders(t *testing.T) {
	repo := NewStubReminderRepo()
	bus := event_bus.NewEventBus()
	clock := &utils.MockClock{FixedNow: at(10, 12)}
	scheduler := NewScheduler(repo, bus, clock)

	id, err := repo.Store(context.Background(), 123, Reminder{Title: "lunch", At: at(10, 12).Add(30 * time.Second), Enabled: true})
	require.NoError(t, err)

	received := collectDue(bus)

	scheduler.Scan(context.Background()) // establishes the baseline interval
	clock.SetNow(at(10, 13))
	scheduler.Scan(context.Background())

	require.Len(t, *received, 1)
	assert.Equal(t, 123, (*received)[0].UserId)
	assert.Equal(t, id, (*received)[0].ReminderId)
	assert.Equal(t, "lunch", (*received)[0].Title)
}

func TestScan_FiresOncePerOccurrence(t *testing.T) {
	repo := NewStubReminderRepo()
	bus := event_bus.NewEventBus()
	clock := &utils.MockClock{FixedNow: at(10, 11)}
	scheduler := NewScheduler(repo, bus, clock)

	_, err := repo.Store(context.Background(), 123, Reminder{Title: "lunch", At: at(10, 12), Enabled: true})
	require.NoError(t, err)

	received := collectDue(bus)

	scheduler.Scan(context.Background())
	clock.SetNow(at(10, 12))
	scheduler.Scan(context.Background())
	clock.SetNow(at(10, 13))
	scheduler.Scan(context.Background())

	assert.Len(t, *received, 1)
}

func TestScan_SkipsDisabledReminders(t *testing.T) {
	repo := NewStubReminderRepo()
	bus := event_bus.NewEventBus()
	clock := &utils.MockClock{FixedNow: at(10, 11)}
	scheduler := NewScheduler(repo, bus, clock)

	_, err := repo.Store(context.Background(), 123, Reminder{Title: "muted", At: at(10, 12), Enabled: false})
	require.NoError(t, err)

	received := collectDue(bus)

	scheduler.Scan(context.Background())
	clock.SetNow(at(10, 13))
	scheduler.Scan(context.Background())

	assert.Empty(t, *received)
}

func TestScan_RecurringReminder(t *testing.T) {
	repo := NewStubReminderRepo()
	bus := event_bus.NewEventBus()
	clock := &utils.MockClock{FixedNow: at(1, 8)}
	scheduler := NewScheduler(repo, bus, clock)

	_, err := repo.Store(context.Background(), 123, Reminder{
		Title: "standup", At: at(1, 9), RRule: "FREQ=DAILY", Enabled: true,
	})
	require.NoError(t, err)

	received := collectDue(bus)

	scheduler.Scan(context.Background())
	// Two occurrences pass without a scan; both fire on the next one.
	clock.SetNow(at(3, 8))
	scheduler.Scan(context.Background())

	require.Len(t, *received, 2)
	assert.Equal(t, at(1, 9), (*received)[0].At)
	assert.Equal(t, at(2, 9), (*received)[1].At)
}
