package agenda

import (
	"context"
	"errors"
	"time"
)

// ErrNoData is returned when an upstream fetch fails and there is no
// previously fetched data to fall back to. Handlers must surface it as an
// explicit error state, never as an empty agenda.
var ErrNoData = errors.New("agenda data unavailable")

// Event is a single calendar entry fetched from the external provider.
// For all-day events StartTime/EndTime carry the date only (midnight in the
// user's timezone) and AllDay is set.
type Event struct {
	ID          string
	Summary     string
	Description string
	Location    string
	StartTime   time.Time
	EndTime     time.Time
	AllDay      bool
}

// Provider is the external calendar the agenda reads from and writes to.
// The application holds no copy of this data beyond a transient cache:
// every mutation invalidates the cache and forces a full refetch.
type Provider interface {
	GetEvents(ctx context.Context, from, to time.Time) ([]Event, error)
	CreateEvent(ctx context.Context, event Event) (Event, error)
	UpdateEvent(ctx context.Context, event Event) (Event, error)
	DeleteEvent(ctx context.Context, eventId string) error
}
