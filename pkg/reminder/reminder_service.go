package reminder

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/controle-c/jarvis/pkg/user"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	CreateReminder(ctx context.Context, reminder Reminder) (Reminder, error)
	GetReminders(ctx context.Context) ([]Reminder, error)
	UpdateReminder(ctx context.Context, reminder Reminder) (Reminder, error)
	DeleteReminder(ctx context.Context, id int) error
	Upcoming(ctx context.Context, from, to time.Time) ([]Occurrence, error)
}

type ReminderServiceImpl struct {
	repo Repo
}

func NewReminderService(repo Repo) *ReminderServiceImpl {
	return &ReminderServiceImpl{repo: repo}
}

func (s *ReminderServiceImpl) CreateReminder(ctx context.Context, reminder Reminder) (Reminder, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Reminder{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := reminder.Validate(); err != nil {
		return Reminder{}, err
	}

	id, err := s.repo.Store(ctx, userId, reminder)
	if err != nil {
		return Reminder{}, err
	}
	reminder.Id = id
	return reminder, nil
}

func (s *ReminderServiceImpl) GetReminders(ctx context.Context) ([]Reminder, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetAll(ctx, userId)
}

func (s *ReminderServiceImpl) UpdateReminder(ctx context.Context, reminder Reminder) (Reminder, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Reminder{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := reminder.Validate(); err != nil {
		return Reminder{}, err
	}

	if err := s.repo.Update(ctx, userId, reminder); err != nil {
		return Reminder{}, err
	}
	return reminder, nil
}

func (s *ReminderServiceImpl) DeleteReminder(ctx context.Context, id int) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Delete(ctx, userId, id)
}

// Upcoming expands the user's enabled reminders into concrete occurrences
// within [from, to], sorted chronologically.
func (s *ReminderServiceImpl) Upcoming(ctx context.Context, from, to time.Time) ([]Occurrence, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	reminders, err := s.repo.GetAll(ctx, userId)
	if err != nil {
		return nil, err
	}

	var occurrences []Occurrence
	for _, reminder := range reminders {
		if !reminder.Enabled {
			continue
		}
		times, err := reminder.OccurrencesBetween(from, to)
		if err != nil {
			// A rule that no longer parses should not hide the others.
			log.Warnf("skipping reminder %d with invalid rule: %v", reminder.Id, err)
			continue
		}
		for _, at := range times {
			occurrences = append(occurrences, Occurrence{
				ReminderId: reminder.Id,
				Title:      reminder.Title,
				At:         at,
			})
		}
	}

	sort.Slice(occurrences, func(i, j int) bool {
		return occurrences[i].At.Before(occurrences[j].At)
	})
	return occurrences, nil
}
