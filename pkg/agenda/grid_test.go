package agenda

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWindow() WeekWindow {
	// Monday 2024-03-04
	return NewWeekWindow(time.Date(2024, time.March, 6, 0, 0, 0, 0, time.UTC), time.Monday)
}

func timedEvent(day, hour, minute, durationMinutes int) Event {
	start := time.Date(2024, time.March, day, hour, minute, 0, 0, time.UTC)
	return Event{
		ID:        "ev",
		Summary:   "Meeting",
		StartTime: start,
		EndTime:   start.Add(time.Duration(durationMinutes) * time.Minute),
	}
}

func TestPositionEvent_HorizontalPlacement(t *testing.T) {
	w := testWindow()

	for offset := 0; offset <= 6; offset++ {
		rect, ok := PositionEvent(timedEvent(4+offset, 10, 0, 60), w)
		require.True(t, ok)
		assert.InDelta(t, float64(offset)*DayWidthPct, rect.LeftPct, 0.0001)
		assert.InDelta(t, DayWidthPct, rect.WidthPct, 0.0001)
		assert.LessOrEqual(t, rect.LeftPct+rect.WidthPct, 100.0+0.0001)
		assert.GreaterOrEqual(t, rect.TopPx, 0.0)
	}
}

func TestPositionEvent_ColumnUnchangedByDST(t *testing.T) {
	newYork, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	// Week of the US spring-forward transition (Sunday 2024-03-10 is 23h long).
	w := NewWeekWindow(time.Date(2024, time.March, 10, 0, 0, 0, 0, newYork), time.Sunday)

	start := time.Date(2024, time.March, 11, 10, 0, 0, 0, newYork)
	rect, ok := PositionEvent(Event{
		ID:        "ev",
		Summary:   "Monday meeting",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	}, w)
	require.True(t, ok)
	assert.InDelta(t, 1*DayWidthPct, rect.LeftPct, 0.0001)

	saturday := time.Date(2024, time.March, 16, 10, 0, 0, 0, newYork)
	rect, ok = PositionEvent(Event{
		ID:        "ev2",
		Summary:   "Saturday brunch",
		StartTime: saturday,
		EndTime:   saturday.Add(time.Hour),
	}, w)
	require.True(t, ok)
	assert.InDelta(t, 6*DayWidthPct, rect.LeftPct, 0.0001)
}

func TestPositionEvent_VerticalPlacement(t *testing.T) {
	w := testWindow()

	rect, ok := PositionEvent(timedEvent(4, 9, 30, 90), w)
	require.True(t, ok)
	assert.InDelta(t, 9.5*HourHeight, rect.TopPx, 0.0001)
	assert.InDelta(t, 1.5*HourHeight, rect.HeightPx, 0.0001)
}

func TestPositionEvent_OutsideWindowNotVisible(t *testing.T) {
	w := testWindow()

	_, ok := PositionEvent(timedEvent(3, 10, 0, 60), w) // Sunday before
	assert.False(t, ok)
	_, ok = PositionEvent(timedEvent(11, 10, 0, 60), w) // Monday after
	assert.False(t, ok)
}

func TestPositionEvent_MinimumHeightFloor(t *testing.T) {
	w := testWindow()

	// Degenerate: start == end
	rect, ok := PositionEvent(timedEvent(5, 14, 0, 0), w)
	require.True(t, ok)
	assert.Equal(t, MinEventHeight, rect.HeightPx)

	// Malformed: end before start must still not go negative
	rect, ok = PositionEvent(timedEvent(5, 14, 0, -30), w)
	require.True(t, ok)
	assert.Equal(t, MinEventHeight, rect.HeightPx)

	// Very short events get stretched to the floor
	rect, ok = PositionEvent(timedEvent(5, 14, 0, 5), w)
	require.True(t, ok)
	assert.Equal(t, MinEventHeight, rect.HeightPx)
}

func TestPositionEvent_AllDayNotOnHourlyGrid(t *testing.T) {
	w := testWindow()
	ev := Event{
		Summary:   "Conference",
		StartTime: time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2024, time.March, 6, 0, 0, 0, 0, time.UTC),
		AllDay:    true,
	}
	_, ok := PositionEvent(ev, w)
	assert.False(t, ok)
}

func TestBuildWeekGrid(t *testing.T) {
	w := testWindow()
	allDay := Event{
		Summary:   "Holiday",
		StartTime: time.Date(2024, time.March, 8, 0, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC),
		AllDay:    true,
	}
	outside := timedEvent(20, 10, 0, 60)
	inside := timedEvent(6, 8, 0, 120)

	grid := BuildWeekGrid([]Event{allDay, outside, inside}, w)

	assert.Equal(t, "2024-03-04", grid.WeekStart)
	require.Len(t, grid.Events, 1)
	assert.Equal(t, inside.StartTime, grid.Events[0].Event.StartTime)
	require.Len(t, grid.AllDay, 1)
	assert.Equal(t, "Holiday", grid.AllDay[0].Summary)
}
