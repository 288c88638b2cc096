package reminder

import (
	"context"
	"sort"
)

// StubReminderRepo is an in-memory Repo used by service and scheduler tests.
type StubReminderRepo struct {
	reminders map[int][]Reminder
	nextId    int
}

func NewStubReminderRepo() *StubReminderRepo {
	return &StubReminderRepo{reminders: map[int][]Reminder{}, nextId: 1}
}

func (s *StubReminderRepo) Store(_ context.Context, userId int, reminder Reminder) (int, error) {
	reminder.Id = s.nextId
	s.nextId++
	s.reminders[userId] = append(s.reminders[userId], reminder)
	return reminder.Id, nil
}

func (s *StubReminderRepo) Get(_ context.Context, userId int, id int) (Reminder, error) {
	for _, r := range s.reminders[userId] {
		if r.Id == id {
			return r, nil
		}
	}
	return Reminder{}, ErrReminderNotFound
}

func (s *StubReminderRepo) GetAll(_ context.Context, userId int) ([]Reminder, error) {
	reminders := make([]Reminder, len(s.reminders[userId]))
	copy(reminders, s.reminders[userId])
	sort.SliceStable(reminders, func(i, j int) bool {
		return reminders[i].At.Before(reminders[j].At)
	})
	return reminders, nil
}

func (s *StubReminderRepo) Update(_ context.Context, userId int, reminder Reminder) error {
	for i, r := range s.reminders[userId] {
		if r.Id == reminder.Id {
			s.reminders[userId][i] = reminder
			return nil
		}
	}
	return ErrReminderNotFound
}

func (s *StubReminderRepo) Delete(_ context.Context, userId int, id int) error {
	list := s.reminders[userId]
	for i, r := range list {
		if r.Id == id {
			s.reminders[userId] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return ErrReminderNotFound
}

func (s *StubReminderRepo) ListAllEnabled(_ context.Context) ([]OwnedReminder, error) {
	var owned []OwnedReminder
	userIds := make([]int, 0, len(s.reminders))
	for userId := range s.reminders {
		userIds = append(userIds, userId)
	}
	sort.Ints(userIds)
	for _, userId := range userIds {
		for _, r := range s.reminders[userId] {
			if r.Enabled {
				owned = append(owned, OwnedReminder{UserId: userId, Reminder: r})
			}
		}
	}
	return owned, nil
}
