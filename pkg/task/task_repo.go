package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

type Repo interface {
	Store(ctx context.Context, userId int, task Task) (int, error)
	Get(ctx context.Context, userId int, id int) (Task, error)
	GetAll(ctx context.Context, userId int) ([]Task, error)
	Update(ctx context.Context, userId int, task Task) error
	UpdatePosition(ctx context.Context, userId int, id int, position int) error
	Delete(ctx context.Context, userId int, id int) error
	FindMaxPosition(ctx context.Context, userId int, status Status) (int, error)
}

type TaskRepoImpl struct {
	db *sql.DB
}

func NewTaskRepo(db *sql.DB) *TaskRepoImpl {
	return &TaskRepoImpl{db: db}
}

func (r *TaskRepoImpl) Store(ctx context.Context, userId int, task Task) (int, error) {
	query := `INSERT INTO tasks (user_id, title, status, position, completed_at, created_at)
				VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	var id int
	err := r.db.QueryRowContext(ctx, query,
		userId,
		task.Title,
		string(task.Status),
		task.Position,
		formatCompletedAt(task.CompletedAt),
		time.Now().UTC().Format(time.RFC3339),
	).Scan(&id)
	if err != nil {
		err := fmt.Errorf("could not store task: %w", err)
		log.Error(err)
		return 0, err
	}
	return id, nil
}

func (r *TaskRepoImpl) Get(ctx context.Context, userId int, id int) (Task, error) {
	query := `SELECT id, title, status, position, completed_at
				FROM tasks WHERE user_id = $1 AND id = $2`
	return r.scanTask(r.db.QueryRowContext(ctx, query, userId, id))
}

// GetAll returns the whole board ordered by column position, so each status
// bucket comes out in display order.
func (r *TaskRepoImpl) GetAll(ctx context.Context, userId int) ([]Task, error) {
	query := `SELECT id, title, status, position, completed_at
				FROM tasks WHERE user_id = $1 ORDER BY position, id`
	rows, err := r.db.QueryContext(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query tasks: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		task, err := scanTaskRow(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepoImpl) Update(ctx context.Context, userId int, task Task) error {
	query := `UPDATE tasks SET title = $1, status = $2, position = $3, completed_at = $4
				WHERE user_id = $5 AND id = $6`
	result, err := r.db.ExecContext(ctx, query,
		task.Title,
		string(task.Status),
		task.Position,
		formatCompletedAt(task.CompletedAt),
		userId,
		task.Id,
	)
	if err != nil {
		err := fmt.Errorf("could not update task: %w", err)
		log.Error(err)
		return err
	}
	return requireRow(result)
}

func (r *TaskRepoImpl) UpdatePosition(ctx context.Context, userId int, id int, position int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET position = $1 WHERE user_id = $2 AND id = $3`, position, userId, id)
	if err != nil {
		err := fmt.Errorf("could not update task position: %w", err)
		log.Error(err)
		return err
	}
	return requireRow(result)
}

func (r *TaskRepoImpl) Delete(ctx context.Context, userId int, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE user_id = $1 AND id = $2`, userId, id)
	if err != nil {
		err := fmt.Errorf("could not delete task: %w", err)
		log.Error(err)
		return err
	}
	return requireRow(result)
}

func (r *TaskRepoImpl) FindMaxPosition(ctx context.Context, userId int, status Status) (int, error) {
	query := `SELECT COALESCE(MAX(position), 0) FROM tasks WHERE user_id = $1 AND status = $2`
	var max int
	if err := r.db.QueryRowContext(ctx, query, userId, string(status)).Scan(&max); err != nil {
		err := fmt.Errorf("could not find max task position: %w", err)
		log.Error(err)
		return 0, err
	}
	return max, nil
}

func (r *TaskRepoImpl) scanTask(row *sql.Row) (Task, error) {
	var task Task
	var completedAt sql.NullString
	err := row.Scan(&task.Id, &task.Title, &task.Status, &task.Position, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, ErrTaskNotFound
	} else if err != nil {
		log.Errorf("failed to get task: %v", err)
		return Task{}, err
	}
	return withCompletedAt(task, completedAt)
}

func scanTaskRow(rows *sql.Rows) (Task, error) {
	var task Task
	var completedAt sql.NullString
	if err := rows.Scan(&task.Id, &task.Title, &task.Status, &task.Position, &completedAt); err != nil {
		err := fmt.Errorf("could not scan task: %w", err)
		log.Error(err)
		return Task{}, err
	}
	return withCompletedAt(task, completedAt)
}

func withCompletedAt(task Task, completedAt sql.NullString) (Task, error) {
	if !completedAt.Valid || completedAt.String == "" {
		return task, nil
	}
	t, err := time.Parse(time.RFC3339, completedAt.String)
	if err != nil {
		return Task{}, fmt.Errorf("invalid stored completion time %q: %w", completedAt.String, err)
	}
	task.CompletedAt = &t
	return task, nil
}

func formatCompletedAt(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func requireRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}
