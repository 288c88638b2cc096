package task

import (
	"context"
	"fmt"

	"github.com/controle-c/jarvis/internal/utils"
	"github.com/controle-c/jarvis/pkg/user"
	log "github.com/sirupsen/logrus"
)

// positionGap is the spacing between consecutive cards. A drag lands halfway
// between its new neighbours; the column is renumbered only when the gap is
// exhausted.
const positionGap = 100

type Service interface {
	CreateTask(ctx context.Context, task Task) (Task, error)
	GetTasks(ctx context.Context) ([]Task, error)
	UpdateTask(ctx context.Context, task Task) (Task, error)
	DeleteTask(ctx context.Context, id int) error
	MoveAfter(ctx context.Context, id, precedingId int) error
	Transition(ctx context.Context, id int, target Status) (Task, error)
}

type TaskServiceImpl struct {
	repo  Repo
	clock utils.Clock
}

func NewTaskService(repo Repo, clock utils.Clock) *TaskServiceImpl {
	return &TaskServiceImpl{repo: repo, clock: clock}
}

func (s *TaskServiceImpl) CreateTask(ctx context.Context, task Task) (Task, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Task{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if task.Status == "" {
		task.Status = StatusTodo
	}
	if !task.Status.Valid() {
		return Task{}, ErrInvalidStatus
	}

	maxPosition, err := s.repo.FindMaxPosition(ctx, userId, task.Status)
	if err != nil {
		return Task{}, err
	}
	task.Position = maxPosition + positionGap
	task.CompletedAt = nil

	id, err := s.repo.Store(ctx, userId, task)
	if err != nil {
		return Task{}, err
	}
	task.Id = id
	return task, nil
}

func (s *TaskServiceImpl) GetTasks(ctx context.Context) ([]Task, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetAll(ctx, userId)
}

func (s *TaskServiceImpl) UpdateTask(ctx context.Context, task Task) (Task, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Task{}, fmt.Errorf("failed to get current user: %w", err)
	}
	current, err := s.repo.Get(ctx, userId, task.Id)
	if err != nil {
		return Task{}, err
	}
	// Status changes go through Transition so completion stamping stays in
	// one place.
	task.Status = current.Status
	task.Position = current.Position
	task.CompletedAt = current.CompletedAt

	if err := s.repo.Update(ctx, userId, task); err != nil {
		return Task{}, err
	}
	return task, nil
}

func (s *TaskServiceImpl) DeleteTask(ctx context.Context, id int) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Delete(ctx, userId, id)
}

// Transition moves a task to another column. Entering done stamps the
// completion time; leaving done clears it. The moved task lands at the bottom
// of its new column.
func (s *TaskServiceImpl) Transition(ctx context.Context, id int, target Status) (Task, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Task{}, fmt.Errorf("failed to get current user: %w", err)
	}

	task, err := s.repo.Get(ctx, userId, id)
	if err != nil {
		return Task{}, err
	}
	if err := task.Status.CanTransitionTo(target); err != nil {
		return Task{}, err
	}

	maxPosition, err := s.repo.FindMaxPosition(ctx, userId, target)
	if err != nil {
		return Task{}, err
	}

	task.Status = target
	task.Position = maxPosition + positionGap
	if target == StatusDone {
		now := s.clock.Now()
		task.CompletedAt = &now
	} else {
		task.CompletedAt = nil
	}

	if err := s.repo.Update(ctx, userId, task); err != nil {
		return Task{}, err
	}
	return task, nil
}

// MoveAfter places the task directly after precedingId within its column.
// precedingId 0 moves it to the top. The new position is the midpoint of its
// neighbours; when no integer fits between them the whole column is
// renumbered with fresh gaps first.
func (s *TaskServiceImpl) MoveAfter(ctx context.Context, id, precedingId int) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}

	all, err := s.repo.GetAll(ctx, userId)
	if err != nil {
		return err
	}
	moving := findTask(id, all)
	if moving == nil {
		return ErrTaskNotFound
	}

	column := tasksInStatus(all, moving.Status)
	if precedingId != 0 && findTask(precedingId, column) == nil {
		return fmt.Errorf("preceding task %d is not in the %s column: %w", precedingId, moving.Status, ErrTaskNotFound)
	}

	prevPos, nextPos := neighbourPositions(precedingId, id, column)
	var newPos int
	switch {
	case nextPos == -1:
		newPos = prevPos + positionGap
	case nextPos-prevPos > 1:
		newPos = prevPos + (nextPos-prevPos)/2
	default:
		// Gap exhausted: renumber the column in its new order, then the
		// moved task keeps the position the renumbering gave it.
		log.Debugf("renumbering %s column for user %d", moving.Status, userId)
		return s.renumber(ctx, userId, reorderAfter(column, id, precedingId))
	}

	return s.repo.UpdatePosition(ctx, userId, id, newPos)
}

func (s *TaskServiceImpl) renumber(ctx context.Context, userId int, column []Task) error {
	for i, t := range column {
		if err := s.repo.UpdatePosition(ctx, userId, t.Id, (i+1)*positionGap); err != nil {
			return err
		}
	}
	return nil
}

// neighbourPositions returns the positions the moved task must land between:
// the preceding task's position and the one after it (skipping the moved task
// itself). nextPos -1 means "end of column".
func neighbourPositions(precedingId, movingId int, column []Task) (int, int) {
	prevPos := 0
	seenPreceding := precedingId == 0
	for _, t := range column {
		if t.Id == movingId {
			continue
		}
		if !seenPreceding {
			if t.Id == precedingId {
				seenPreceding = true
				prevPos = t.Position
			}
			continue
		}
		return prevPos, t.Position
	}
	return prevPos, -1
}

// reorderAfter returns the column with the moved task repositioned directly
// after precedingId (or first, for precedingId 0).
func reorderAfter(column []Task, movingId, precedingId int) []Task {
	var moving Task
	rest := make([]Task, 0, len(column))
	for _, t := range column {
		if t.Id == movingId {
			moving = t
			continue
		}
		rest = append(rest, t)
	}

	reordered := make([]Task, 0, len(column))
	if precedingId == 0 {
		reordered = append(reordered, moving)
	}
	for _, t := range rest {
		reordered = append(reordered, t)
		if t.Id == precedingId {
			reordered = append(reordered, moving)
		}
	}
	return reordered
}

func tasksInStatus(tasks []Task, status Status) []Task {
	var filtered []Task
	for _, t := range tasks {
		if t.Status == status {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

func findTask(id int, tasks []Task) *Task {
	for i := range tasks {
		if tasks[i].Id == id {
			return &tasks[i]
		}
	}
	return nil
}
