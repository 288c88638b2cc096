package reminder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// OwnedReminder pairs a reminder with its owner. Used by the scheduler,
// which scans across all users.
type OwnedReminder struct {
	UserId   int
	Reminder Reminder
}

type Repo interface {
	Store(ctx context.Context, userId int, reminder Reminder) (int, error)
	Get(ctx context.Context, userId int, id int) (Reminder, error)
	GetAll(ctx context.Context, userId int) ([]Reminder, error)
	Update(ctx context.Context, userId int, reminder Reminder) error
	Delete(ctx context.Context, userId int, id int) error
	ListAllEnabled(ctx context.Context) ([]OwnedReminder, error)
}

type ReminderRepoImpl struct {
	db *sql.DB
}

func NewReminderRepo(db *sql.DB) *ReminderRepoImpl {
	return &ReminderRepoImpl{db: db}
}

func (r *ReminderRepoImpl) Store(ctx context.Context, userId int, reminder Reminder) (int, error) {
	query := `INSERT INTO reminders (user_id, title, scheduled_at, rrule, enabled, created_at)
				VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	var id int
	err := r.db.QueryRowContext(ctx, query,
		userId,
		reminder.Title,
		reminder.At.UTC().Format(time.RFC3339),
		reminder.RRule,
		reminder.Enabled,
		time.Now().UTC().Format(time.RFC3339),
	).Scan(&id)
	if err != nil {
		err := fmt.Errorf("could not store reminder: %w", err)
		log.Error(err)
		return 0, err
	}
	return id, nil
}

func (r *ReminderRepoImpl) Get(ctx context.Context, userId int, id int) (Reminder, error) {
	query := `SELECT id, title, scheduled_at, rrule, enabled
				FROM reminders WHERE user_id = $1 AND id = $2`
	row := r.db.QueryRowContext(ctx, query, userId, id)

	var reminder Reminder
	var scheduledAt string
	err := row.Scan(&reminder.Id, &reminder.Title, &scheduledAt, &reminder.RRule, &reminder.Enabled)
	if errors.Is(err, sql.ErrNoRows) {
		return Reminder{}, ErrReminderNotFound
	} else if err != nil {
		log.Errorf("failed to get reminder: %v", err)
		return Reminder{}, err
	}
	if reminder.At, err = time.Parse(time.RFC3339, scheduledAt); err != nil {
		return Reminder{}, fmt.Errorf("invalid stored reminder time %q: %w", scheduledAt, err)
	}
	return reminder, nil
}

func (r *ReminderRepoImpl) GetAll(ctx context.Context, userId int) ([]Reminder, error) {
	query := `SELECT id, title, scheduled_at, rrule, enabled
				FROM reminders WHERE user_id = $1 ORDER BY scheduled_at, id`
	rows, err := r.db.QueryContext(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query reminders: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var reminders []Reminder
	for rows.Next() {
		var reminder Reminder
		var scheduledAt string
		if err := rows.Scan(&reminder.Id, &reminder.Title, &scheduledAt, &reminder.RRule, &reminder.Enabled); err != nil {
			err := fmt.Errorf("could not scan reminder: %w", err)
			log.Error(err)
			return nil, err
		}
		if reminder.At, err = time.Parse(time.RFC3339, scheduledAt); err != nil {
			return nil, fmt.Errorf("invalid stored reminder time %q: %w", scheduledAt, err)
		}
		reminders = append(reminders, reminder)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return reminders, nil
}

func (r *ReminderRepoImpl) Update(ctx context.Context, userId int, reminder Reminder) error {
	query := `UPDATE reminders SET title = $1, scheduled_at = $2, rrule = $3, enabled = $4
				WHERE user_id = $5 AND id = $6`
	result, err := r.db.ExecContext(ctx, query,
		reminder.Title,
		reminder.At.UTC().Format(time.RFC3339),
		reminder.RRule,
		reminder.Enabled,
		userId,
		reminder.Id,
	)
	if err != nil {
		err := fmt.Errorf("could not update reminder: %w", err)
		log.Error(err)
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrReminderNotFound
	}
	return nil
}

func (r *ReminderRepoImpl) Delete(ctx context.Context, userId int, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE user_id = $1 AND id = $2`, userId, id)
	if err != nil {
		err := fmt.Errorf("could not delete reminder: %w", err)
		log.Error(err)
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrReminderNotFound
	}
	return nil
}

// ListAllEnabled returns every enabled reminder across all users. The
// scheduler calls this once per scan tick.
func (r *ReminderRepoImpl) ListAllEnabled(ctx context.Context) ([]OwnedReminder, error) {
	query := `SELECT user_id, id, title, scheduled_at, rrule, enabled
				FROM reminders WHERE enabled ORDER BY user_id, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not query enabled reminders: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var reminders []OwnedReminder
	for rows.Next() {
		var owned OwnedReminder
		var scheduledAt string
		if err := rows.Scan(&owned.UserId, &owned.Reminder.Id, &owned.Reminder.Title, &scheduledAt,
			&owned.Reminder.RRule, &owned.Reminder.Enabled); err != nil {
			err := fmt.Errorf("could not scan reminder: %w", err)
			log.Error(err)
			return nil, err
		}
		if owned.Reminder.At, err = time.Parse(time.RFC3339, scheduledAt); err != nil {
			return nil, fmt.Errorf("invalid stored reminder time %q: %w", scheduledAt, err)
		}
		reminders = append(reminders, owned)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return reminders, nil
}
