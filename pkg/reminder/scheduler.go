package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/controle-c/jarvis/internal/event_bus"
	"github.com/controle-c/jarvis/internal/utils"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Scheduler scans enabled reminders once a minute and publishes a due event
// for every occurrence that fell inside the elapsed interval. Delivery
// (notifications, voice announcements) is up to the subscribers.
type Scheduler struct {
	repo  Repo
	bus   *event_bus.EventBus
	clock utils.Clock
	cron  *cron.Cron

	mu       sync.Mutex
	lastScan time.Time
}

func NewScheduler(repo Repo, bus *event_bus.EventBus, clock utils.Clock) *Scheduler {
	return &Scheduler{
		repo:  repo,
		bus:   bus,
		clock: clock,
		cron:  cron.New(),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	s.lastScan = s.clock.Now()
	s.mu.Unlock()

	if _, err := s.cron.AddFunc("* * * * *", func() { s.Scan(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule reminder scan: %w", err)
	}
	s.cron.Start()
	log.Info("Reminder scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info("Reminder scheduler stopped")
}

// Scan publishes a ReminderDue event for every occurrence in
// (lastScan, now]. The interval is half-open so an occurrence on the exact
// boundary fires once, never twice.
func (s *Scheduler) Scan(ctx context.Context) {
	now := s.clock.Now()

	s.mu.Lock()
	from := s.lastScan
	s.lastScan = now
	s.mu.Unlock()

	reminders, err := s.repo.ListAllEnabled(ctx)
	if err != nil {
		log.Errorf("reminder scan failed: %v", err)
		return
	}

	for _, owned := range reminders {
		times, err := owned.Reminder.OccurrencesBetween(from, now)
		if err != nil {
			log.Warnf("skipping reminder %d with invalid rule: %v", owned.Reminder.Id, err)
			continue
		}
		for _, at := range times {
			if !at.After(from) {
				continue
			}
			s.publishDue(ctx, owned, at)
		}
	}
}

func (s *Scheduler) publishDue(ctx context.Context, owned OwnedReminder, at time.Time) {
	err := s.bus.Publish(event_bus.NewEvent(ctx, event_bus.ReminderDue, event_bus.ReminderDueData{
		UserId:     owned.UserId,
		ReminderId: owned.Reminder.Id,
		Title:      owned.Reminder.Title,
		At:         at,
	}))
	if err != nil {
		log.Errorf("failed to publish due reminder %d: %v", owned.Reminder.Id, err)
	}
}
