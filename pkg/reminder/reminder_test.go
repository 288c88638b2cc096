package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(day, hour int) time.Time {
	return time.Date(2025, 7, day, hour, 0, 0, 0, time.UTC)
}

func TestValidate(t *testing.T) {
	valid := Reminder{Title: "water plants", At: at(1, 9), RRule: "FREQ=DAILY"}
	assert.NoError(t, valid.Validate())

	assert.ErrorIs(t, Reminder{At: at(1, 9)}.Validate(), ErrEmptyTitle)
	assert.ErrorIs(t, Reminder{Title: "x"}.Validate(), ErrMissingTime)
	assert.ErrorIs(t, Reminder{Title: "x", At: at(1, 9), RRule: "FREQ=SOMETIMES"}.Validate(), ErrInvalidRule)
}

func TestOccurrencesBetween_SingleShot(t *testing.T) {
	reminder := Reminder{Title: "dentist", At: at(10, 14)}

	times, err := reminder.OccurrencesBetween(at(10, 0), at(11, 0))
	require.NoError(t, err)
	assert.Equal(t, []time.Time{at(10, 14)}, times)

	times, err = reminder.OccurrencesBetween(at(11, 0), at(12, 0))
	require.NoError(t, err)
	assert.Empty(t, times)
}

func TestOccurrencesBetween_BoundsInclusive(t *testing.T) {
	reminder := Reminder{Title: "dentist", At: at(10, 14)}

	times, err := reminder.OccurrencesBetween(at(10, 14), at(10, 14))
	require.NoError(t, err)
	assert.Len(t, times, 1)
}

func TestOccurrencesBetween_DailyRule(t *testing.T) {
	reminder := Reminder{Title: "standup", At: at(1, 9), RRule: "FREQ=DAILY"}

	times, err := reminder.OccurrencesBetween(at(3, 0), at(5, 23))
	require.NoError(t, err)
	assert.Equal(t, []time.Time{at(3, 9), at(4, 9), at(5, 9)}, times)
}

func TestOccurrencesBetween_WeeklyRule(t *testing.T) {
	// July 7th 2025 is a Monday.
	reminder := Reminder{Title: "report", At: at(7, 17), RRule: "FREQ=WEEKLY;BYDAY=MO"}

	times, err := reminder.OccurrencesBetween(at(7, 0), at(21, 23))
	require.NoError(t, err)
	assert.Equal(t, []time.Time{at(7, 17), at(14, 17), at(21, 17)}, times)
}

func TestOccurrencesBetween_CapsExpansion(t *testing.T) {
	reminder := Reminder{Title: "tick", At: at(1, 0), RRule: "FREQ=MINUTELY"}

	times, err := reminder.OccurrencesBetween(at(1, 0), at(31, 23))
	require.NoError(t, err)
	assert.Len(t, times, maxOccurrences)
}

func TestOccurrencesBetween_InvalidRule(t *testing.T) {
	reminder := Reminder{Title: "x", At: at(1, 0), RRule: "FREQ=SOMETIMES"}

	_, err := reminder.OccurrencesBetween(at(1, 0), at(2, 0))
	assert.ErrorIs(t, err, ErrInvalidRule)
}
