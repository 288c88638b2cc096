package agenda

// Pixel geometry of the hour-by-day grid. One hour renders as HourHeight
// pixels; events shorter than MinEventHeight are stretched to it so they
// stay clickable.
const (
	HourHeight     = 120.0
	MinEventHeight = 40.0
	DayWidthPct    = 100.0 / 7.0
)

// GridRectangle is the position of one event on the weekly grid: horizontal
// placement as percentages (day column), vertical placement in pixels
// (time of day). Recomputed on every request, never persisted.
type GridRectangle struct {
	LeftPct  float64 `json:"leftPct"`
	WidthPct float64 `json:"widthPct"`
	TopPx    float64 `json:"topPx"`
	HeightPx float64 `json:"heightPx"`
}

// PositionedEvent pairs an event with its computed rectangle.
type PositionedEvent struct {
	Event Event         `json:"event"`
	Rect  GridRectangle `json:"rect"`
}

// WeekGrid is the fully positioned view of one week: timed events on the
// hourly grid, all-day events listed separately per the day they fall on.
type WeekGrid struct {
	WeekStart string            `json:"weekStart"`
	Events    []PositionedEvent `json:"events"`
	AllDay    []Event           `json:"allDay"`
}

// PositionEvent maps a timed event onto the grid of the given window.
// The second return value is false when the event is not visible there:
// its start day is outside the window, or it is an all-day event (those are
// listed separately, not placed on the hourly grid).
func PositionEvent(ev Event, w WeekWindow) (GridRectangle, bool) {
	if ev.AllDay {
		return GridRectangle{}, false
	}
	offset := w.DayOffset(ev.StartTime)
	if offset < 0 || offset > 6 {
		return GridRectangle{}, false
	}

	start := ev.StartTime.In(w.Start.Location())
	end := ev.EndTime.In(w.Start.Location())
	startMinutes := float64(start.Hour()*60 + start.Minute())
	endMinutes := float64(end.Hour()*60 + end.Minute())

	// Malformed upstream events (end before start) must never produce a
	// negative height; clamp to the floor.
	height := (endMinutes - startMinutes) * HourHeight / 60
	if height < MinEventHeight {
		height = MinEventHeight
	}

	return GridRectangle{
		LeftPct:  float64(offset) * DayWidthPct,
		WidthPct: DayWidthPct,
		TopPx:    startMinutes * HourHeight / 60,
		HeightPx: height,
	}, true
}

// BuildWeekGrid positions every visible timed event of the window and
// collects its all-day events.
func BuildWeekGrid(events []Event, w WeekWindow) WeekGrid {
	grid := WeekGrid{
		WeekStart: w.Start.Format("2006-01-02"),
		Events:    make([]PositionedEvent, 0, len(events)),
		AllDay:    make([]Event, 0),
	}
	for _, ev := range events {
		if ev.AllDay {
			if w.Contains(ev.StartTime) {
				grid.AllDay = append(grid.AllDay, ev)
			}
			continue
		}
		if rect, ok := PositionEvent(ev, w); ok {
			grid.Events = append(grid.Events, PositionedEvent{Event: ev, Rect: rect})
		}
	}
	return grid
}
