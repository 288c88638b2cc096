package agenda

import "time"

// DefaultFetchBufferDays is the forward lookahead added to every combined
// fetch range so that navigating one week ahead does not hit an empty cache.
const DefaultFetchBufferDays = 7

// StartOfWeek truncates t to midnight and rolls back to the nearest
// weekStartsOn weekday. It is idempotent: applying it twice yields the same
// date.
func StartOfWeek(t time.Time, weekStartsOn time.Weekday) time.Time {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	diff := (int(midnight.Weekday()) - int(weekStartsOn) + 7) % 7
	return midnight.AddDate(0, 0, -diff)
}

// AddDays shifts t by n calendar days (n may be negative). Month and year
// rollover follow the standard library's date normalization.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// WeekWindow is a span of 7 consecutive days anchored to a fixed weekday.
// The desktop and mobile views each hold their own window; the two are
// reconciled into one fetch range by FetchRange.
type WeekWindow struct {
	Start time.Time
}

// NewWeekWindow returns the window containing ref, anchored to weekStartsOn.
func NewWeekWindow(ref time.Time, weekStartsOn time.Weekday) WeekWindow {
	return WeekWindow{Start: StartOfWeek(ref, weekStartsOn)}
}

// End returns the exclusive upper bound of the window (midnight after day 7).
func (w WeekWindow) End() time.Time {
	return AddDays(w.Start, 7)
}

// DayOffset returns the number of calendar days between the window start
// and the day containing t, evaluated in the window's location. The count is
// taken on the dates themselves, so a day shortened or stretched by a DST
// transition still counts as exactly one day. Events with an offset outside
// [0,6] are not visible in this window.
func (w WeekWindow) DayOffset(t time.Time) int {
	day := t.In(w.Start.Location())
	from := time.Date(w.Start.Year(), w.Start.Month(), w.Start.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

// Contains reports whether t falls on one of the window's 7 days.
func (w WeekWindow) Contains(t time.Time) bool {
	offset := w.DayOffset(t)
	return offset >= 0 && offset <= 6
}

// Next returns the window one week forward.
func (w WeekWindow) Next() WeekWindow {
	return WeekWindow{Start: AddDays(w.Start, 7)}
}

// Previous returns the window one week back.
func (w WeekWindow) Previous() WeekWindow {
	return WeekWindow{Start: AddDays(w.Start, -7)}
}

// FetchRange reconciles two independently navigated windows into a single
// fetch span: from the earlier window start to the later window end plus a
// forward buffer. Deliberately conservative: it over-fetches so that week
// navigation within the buffer shows data without a refetch.
func FetchRange(a, b WeekWindow, bufferDays int) (time.Time, time.Time) {
	from := a.Start
	if b.Start.Before(from) {
		from = b.Start
	}
	to := a.End()
	if b.End().After(to) {
		to = b.End()
	}
	return from, AddDays(to, bufferDays)
}
