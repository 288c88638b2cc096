package task

import (
	"context"
	"sort"
)

// StubTaskRepo is an in-memory Repo used by service tests.
type StubTaskRepo struct {
	tasks  map[int][]Task
	nextId int

	PositionUpdates int
}

func NewStubTaskRepo() *StubTaskRepo {
	return &StubTaskRepo{tasks: map[int][]Task{}, nextId: 1}
}

func (s *StubTaskRepo) Store(_ context.Context, userId int, task Task) (int, error) {
	task.Id = s.nextId
	s.nextId++
	s.tasks[userId] = append(s.tasks[userId], task)
	return task.Id, nil
}

func (s *StubTaskRepo) Get(_ context.Context, userId int, id int) (Task, error) {
	for _, t := range s.tasks[userId] {
		if t.Id == id {
			return t, nil
		}
	}
	return Task{}, ErrTaskNotFound
}

func (s *StubTaskRepo) GetAll(_ context.Context, userId int) ([]Task, error) {
	tasks := make([]Task, len(s.tasks[userId]))
	copy(tasks, s.tasks[userId])
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].Position != tasks[j].Position {
			return tasks[i].Position < tasks[j].Position
		}
		return tasks[i].Id < tasks[j].Id
	})
	return tasks, nil
}

func (s *StubTaskRepo) Update(_ context.Context, userId int, task Task) error {
	for i, t := range s.tasks[userId] {
		if t.Id == task.Id {
			s.tasks[userId][i] = task
			return nil
		}
	}
	return ErrTaskNotFound
}

func (s *StubTaskRepo) UpdatePosition(_ context.Context, userId int, id int, position int) error {
	for i, t := range s.tasks[userId] {
		if t.Id == id {
			s.tasks[userId][i].Position = position
			s.PositionUpdates++
			return nil
		}
	}
	return ErrTaskNotFound
}

func (s *StubTaskRepo) Delete(_ context.Context, userId int, id int) error {
	list := s.tasks[userId]
	for i, t := range list {
		if t.Id == id {
			s.tasks[userId] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return ErrTaskNotFound
}

func (s *StubTaskRepo) FindMaxPosition(_ context.Context, userId int, status Status) (int, error) {
	max := 0
	for _, t := range s.tasks[userId] {
		if t.Status == status && t.Position > max {
			max = t.Position
		}
	}
	return max, nil
}
