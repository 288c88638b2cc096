package task

import (
	"errors"
	"fmt"
	"time"
)

// Status is the board column a task sits in.
type Status string

const (
	StatusTodo  Status = "todo"
	StatusDoing Status = "doing"
	StatusDone  Status = "done"
)

var ErrTaskNotFound = errors.New("task not found")
var ErrInvalidStatus = errors.New("task status must be todo, doing or done")

// Task is one card on the board. Position is a sparse ordering value within
// the task's column; new tasks get max+100 so drags can usually land between
// neighbours without renumbering. CompletedAt is set only while the task is
// done.
type Task struct {
	Id          int
	Title       string
	Status      Status
	Position    int
	CompletedAt *time.Time
}

func (s Status) Valid() bool {
	return s == StatusTodo || s == StatusDoing || s == StatusDone
}

// CanTransitionTo reports whether moving from s to target is a legal board
// move. Any column change is allowed; the check exists to reject unknown
// statuses and no-op transitions explicitly.
func (s Status) CanTransitionTo(target Status) error {
	if !target.Valid() {
		return ErrInvalidStatus
	}
	if s == target {
		return fmt.Errorf("task is already %s", s)
	}
	return nil
}
