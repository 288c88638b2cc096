package agenda

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var warsaw, _ = time.LoadLocation("Europe/Warsaw")

func TestStartOfWeek_AlwaysLandsOnAnchor(t *testing.T) {
	for day := 0; day < 21; day++ {
		d := time.Date(2024, time.February, 1, 15, 30, 0, 0, warsaw).AddDate(0, 0, day)
		start := StartOfWeek(d, time.Monday)
		assert.Equal(t, time.Monday, start.Weekday(), "week start for %s", d)
		assert.Equal(t, 0, start.Hour())
		assert.False(t, start.After(d))
	}
}

func TestStartOfWeek_Idempotent(t *testing.T) {
	dates := []time.Time{
		time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.February, 29, 23, 59, 0, 0, warsaw),
		time.Date(2023, time.December, 31, 12, 0, 0, 0, warsaw),
	}
	for _, d := range dates {
		once := StartOfWeek(d, time.Monday)
		assert.Equal(t, once, StartOfWeek(once, time.Monday))
	}
}

func TestStartOfWeek_RespectsAnchor(t *testing.T) {
	// Wednesday 2024-03-06
	d := time.Date(2024, time.March, 6, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Sunday, StartOfWeek(d, time.Sunday).Weekday())
	assert.Equal(t, time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC), StartOfWeek(d, time.Sunday))
}

func TestAddDays_RoundTrip(t *testing.T) {
	base := time.Date(2024, time.January, 31, 8, 0, 0, 0, warsaw)
	for _, n := range []int{-400, -31, -1, 0, 1, 28, 365} {
		assert.Equal(t, base, AddDays(AddDays(base, n), -n), "n=%d", n)
	}
}

func TestAddDays_MonthRollover(t *testing.T) {
	d := time.Date(2024, time.January, 30, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, time.February, 2, 0, 0, 0, 0, time.UTC), AddDays(d, 3))
	assert.Equal(t, time.Date(2023, time.December, 29, 0, 0, 0, 0, time.UTC), AddDays(d, -32))
}

func TestWeekWindow_DayOffset(t *testing.T) {
	w := NewWeekWindow(time.Date(2024, time.March, 6, 0, 0, 0, 0, time.UTC), time.Monday)
	assert.Equal(t, time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC), w.Start)

	assert.Equal(t, 0, w.DayOffset(time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, 6, w.DayOffset(time.Date(2024, time.March, 10, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, -1, w.DayOffset(time.Date(2024, time.March, 3, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, 7, w.DayOffset(time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC)))

	assert.True(t, w.Contains(time.Date(2024, time.March, 10, 1, 0, 0, 0, time.UTC)))
	assert.False(t, w.Contains(time.Date(2024, time.March, 11, 1, 0, 0, 0, time.UTC)))
}

func TestWeekWindow_DayOffsetAcrossDSTTransition(t *testing.T) {
	// US DST starts 2am Sunday 2024-03-10: that Sunday is only 23h long,
	// so hour-based day arithmetic would shift the rest of the week.
	newYork, err := time.LoadLocation("America/New_York")
	assert.NoError(t, err)
	w := NewWeekWindow(time.Date(2024, time.March, 10, 12, 0, 0, 0, newYork), time.Sunday)
	assert.Equal(t, time.Date(2024, time.March, 10, 0, 0, 0, 0, newYork), w.Start)

	assert.Equal(t, 0, w.DayOffset(time.Date(2024, time.March, 10, 9, 0, 0, 0, newYork)))
	assert.Equal(t, 1, w.DayOffset(time.Date(2024, time.March, 11, 9, 0, 0, 0, newYork)))
	assert.Equal(t, 6, w.DayOffset(time.Date(2024, time.March, 16, 9, 0, 0, 0, newYork)))
	assert.Equal(t, 7, w.DayOffset(time.Date(2024, time.March, 17, 9, 0, 0, 0, newYork)))

	assert.True(t, w.Contains(time.Date(2024, time.March, 16, 23, 30, 0, 0, newYork)))
	assert.False(t, w.Contains(time.Date(2024, time.March, 17, 0, 30, 0, 0, newYork)))
}

func TestWeekWindow_DayOffsetAcrossFallBack(t *testing.T) {
	// US DST ends 2am Sunday 2024-11-03: a 25h Sunday must still count as one day.
	newYork, err := time.LoadLocation("America/New_York")
	assert.NoError(t, err)
	w := NewWeekWindow(time.Date(2024, time.November, 3, 12, 0, 0, 0, newYork), time.Sunday)

	assert.Equal(t, 1, w.DayOffset(time.Date(2024, time.November, 4, 9, 0, 0, 0, newYork)))
	assert.Equal(t, 6, w.DayOffset(time.Date(2024, time.November, 9, 9, 0, 0, 0, newYork)))
}

func TestFetchRange_CoversBothWindows(t *testing.T) {
	w1 := NewWeekWindow(time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC), time.Monday)
	w3 := NewWeekWindow(time.Date(2024, time.March, 18, 0, 0, 0, 0, time.UTC), time.Monday)

	from, to := FetchRange(w1, w3, DefaultFetchBufferDays)
	assert.Equal(t, w1.Start, from)
	assert.False(t, to.Before(AddDays(w3.Start, 6+DefaultFetchBufferDays)))

	// Order of the windows must not matter.
	from2, to2 := FetchRange(w3, w1, DefaultFetchBufferDays)
	assert.Equal(t, from, from2)
	assert.Equal(t, to, to2)
}

func TestFetchRange_SameWindow(t *testing.T) {
	w := NewWeekWindow(time.Date(2024, time.March, 6, 0, 0, 0, 0, time.UTC), time.Monday)
	from, to := FetchRange(w, w, 7)
	assert.Equal(t, w.Start, from)
	assert.Equal(t, AddDays(w.End(), 7), to)
}
