package transaction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

type Repo interface {
	Store(ctx context.Context, userId int, transaction Transaction) (Transaction, error)
	Get(ctx context.Context, userId int, id int) (Transaction, error)
	List(ctx context.Context, userId int, filter Filter) ([]Transaction, error)
	Update(ctx context.Context, userId int, transaction Transaction) (Transaction, error)
	Delete(ctx context.Context, userId int, id int) error
	Summarize(ctx context.Context, userId int, filter Filter) (Summary, error)
}

type TransactionRepoImpl struct {
	db *sql.DB
}

func NewTransactionRepo(db *sql.DB) *TransactionRepoImpl {
	return &TransactionRepoImpl{db: db}
}

func (r *TransactionRepoImpl) Store(ctx context.Context, userId int, transaction Transaction) (Transaction, error) {
	query := `INSERT INTO transactions (user_id, title, category, type, amount_cents, occurred_on, notes, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	var id int
	err := r.db.QueryRowContext(ctx, query,
		userId,
		transaction.Title,
		transaction.Category,
		string(transaction.Type),
		transaction.Amount,
		transaction.Date.Format(dateLayout),
		transaction.Notes,
		time.Now().UTC().Format(time.RFC3339),
	).Scan(&id)
	if err != nil {
		err := fmt.Errorf("could not store transaction: %w", err)
		log.Error(err)
		return Transaction{}, err
	}
	transaction.Id = id
	return transaction, nil
}

func (r *TransactionRepoImpl) Get(ctx context.Context, userId int, id int) (Transaction, error) {
	query := `SELECT id, title, category, type, amount_cents, occurred_on, notes
				FROM transactions WHERE user_id = $1 AND id = $2`
	return r.scanTransaction(r.db.QueryRowContext(ctx, query, userId, id))
}

func (r *TransactionRepoImpl) List(ctx context.Context, userId int, filter Filter) ([]Transaction, error) {
	where, args := buildFilter(userId, filter)
	query := fmt.Sprintf(`SELECT id, title, category, type, amount_cents, occurred_on, notes
				FROM transactions WHERE %s ORDER BY occurred_on DESC, id DESC`, where)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query transactions: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var transactions []Transaction
	for rows.Next() {
		var t Transaction
		var occurredOn string
		if err := rows.Scan(&t.Id, &t.Title, &t.Category, &t.Type, &t.Amount, &occurredOn, &t.Notes); err != nil {
			err := fmt.Errorf("could not scan transaction: %w", err)
			log.Error(err)
			return nil, err
		}
		t.Date, err = time.Parse(dateLayout, occurredOn)
		if err != nil {
			return nil, fmt.Errorf("invalid stored date %q: %w", occurredOn, err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return transactions, nil
}

func (r *TransactionRepoImpl) Update(ctx context.Context, userId int, transaction Transaction) (Transaction, error) {
	query := `UPDATE transactions SET title = $1, category = $2, type = $3, amount_cents = $4,
				occurred_on = $5, notes = $6 WHERE user_id = $7 AND id = $8`
	result, err := r.db.ExecContext(ctx, query,
		transaction.Title,
		transaction.Category,
		string(transaction.Type),
		transaction.Amount,
		transaction.Date.Format(dateLayout),
		transaction.Notes,
		userId,
		transaction.Id,
	)
	if err != nil {
		err := fmt.Errorf("could not update transaction: %w", err)
		log.Error(err)
		return Transaction{}, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return Transaction{}, fmt.Errorf("could not get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return Transaction{}, ErrTransactionNotFound
	}
	return transaction, nil
}

func (r *TransactionRepoImpl) Delete(ctx context.Context, userId int, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE user_id = $1 AND id = $2`, userId, id)
	if err != nil {
		err := fmt.Errorf("could not delete transaction: %w", err)
		log.Error(err)
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

// Summarize computes (income, expense, balance) in SQL over the same filter
// the listing uses, so the header figures always agree with the visible rows.
func (r *TransactionRepoImpl) Summarize(ctx context.Context, userId int, filter Filter) (Summary, error) {
	where, args := buildFilter(userId, filter)
	query := fmt.Sprintf(`SELECT
				COALESCE(SUM(CASE WHEN type = 'entrada' THEN amount_cents ELSE 0 END), 0),
				COALESCE(SUM(CASE WHEN type = 'saida' THEN amount_cents ELSE 0 END), 0)
				FROM transactions WHERE %s`, where)

	var summary Summary
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&summary.Income, &summary.Expense); err != nil {
		err := fmt.Errorf("could not summarize transactions: %w", err)
		log.Error(err)
		return Summary{}, err
	}
	summary.Balance = summary.Income - summary.Expense
	return summary, nil
}

func (r *TransactionRepoImpl) scanTransaction(row *sql.Row) (Transaction, error) {
	var t Transaction
	var occurredOn string
	err := row.Scan(&t.Id, &t.Title, &t.Category, &t.Type, &t.Amount, &occurredOn, &t.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return Transaction{}, ErrTransactionNotFound
	} else if err != nil {
		log.Errorf("failed to get transaction: %v", err)
		return Transaction{}, err
	}
	t.Date, err = time.Parse(dateLayout, occurredOn)
	if err != nil {
		return Transaction{}, fmt.Errorf("invalid stored date %q: %w", occurredOn, err)
	}
	return t, nil
}

// buildFilter assembles the WHERE clause shared by List and Summarize.
// The search term matches title or category case-insensitively, and the date
// bounds are inclusive on both ends.
func buildFilter(userId int, filter Filter) (string, []any) {
	clauses := []string{"user_id = $1"}
	args := []any{userId}

	next := func() int { return len(args) + 1 }

	if !filter.From.IsZero() {
		clauses = append(clauses, fmt.Sprintf("occurred_on >= $%d", next()))
		args = append(args, filter.From.Format(dateLayout))
	}
	if !filter.To.IsZero() {
		clauses = append(clauses, fmt.Sprintf("occurred_on <= $%d", next()))
		args = append(args, filter.To.Format(dateLayout))
	}
	if filter.Search != "" {
		n := next()
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE LOWER($%d) OR LOWER(category) LIKE LOWER($%d))", n, n+1))
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}
	if filter.Type != "" {
		clauses = append(clauses, fmt.Sprintf("type = $%d", next()))
		args = append(args, string(filter.Type))
	}
	if filter.Category != "" {
		clauses = append(clauses, fmt.Sprintf("category = $%d", next()))
		args = append(args, filter.Category)
	}

	return strings.Join(clauses, " AND "), args
}
