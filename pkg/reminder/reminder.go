package reminder

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// maxOccurrences caps recurrence expansion per reminder so a malformed or
// unbounded rule cannot blow up a listing request.
const maxOccurrences = 100

var ErrReminderNotFound = errors.New("reminder not found")
var ErrEmptyTitle = errors.New("reminder title must not be empty")
var ErrMissingTime = errors.New("reminder time must be set")
var ErrInvalidRule = errors.New("invalid recurrence rule")

// Reminder is a one-shot or recurring notification anchor. At is the first
// (or only) occurrence; RRule, when set, is an iCalendar recurrence rule
// expanded relative to At.
type Reminder struct {
	Id      int
	Title   string
	At      time.Time
	RRule   string
	Enabled bool
}

// Occurrence is one concrete firing of a reminder within a window.
type Occurrence struct {
	ReminderId int
	Title      string
	At         time.Time
}

func (r Reminder) Validate() error {
	if r.Title == "" {
		return ErrEmptyTitle
	}
	if r.At.IsZero() {
		return ErrMissingTime
	}
	if r.RRule != "" {
		if _, err := rrule.StrToRRule(r.RRule); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRule, err)
		}
	}
	return nil
}

// OccurrencesBetween expands the reminder into concrete firings within
// [from, to], capped at maxOccurrences. A reminder without a rule yields at
// most its single anchor time.
func (r Reminder) OccurrencesBetween(from, to time.Time) ([]time.Time, error) {
	if r.RRule == "" {
		if !r.At.Before(from) && !r.At.After(to) {
			return []time.Time{r.At}, nil
		}
		return nil, nil
	}

	rule, err := rrule.StrToRRule(r.RRule)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	rule.DTStart(r.At)

	occurrences := rule.Between(from.In(r.At.Location()), to.In(r.At.Location()), true)
	if len(occurrences) > maxOccurrences {
		occurrences = occurrences[:maxOccurrences]
	}
	return occurrences, nil
}
