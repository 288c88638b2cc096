package transaction

import (
	"errors"
	"time"
)

// Type distinguishes money coming in from money going out. The wire values
// match the Portuguese labels the dashboard uses.
type Type string

const (
	TypeIncome  Type = "entrada"
	TypeExpense Type = "saida"
)

var ErrTransactionNotFound = errors.New("transaction not found")
var ErrInvalidType = errors.New("transaction type must be entrada or saida")
var ErrInvalidAmount = errors.New("transaction amount must be positive")

// Transaction is a single financial entry. Amount is stored in cents to keep
// the arithmetic exact.
type Transaction struct {
	Id       int
	Title    string
	Category string
	Type     Type
	Amount   int64
	Date     time.Time
	Notes    string
}

// Filter narrows listing and summary queries. Zero values mean "no
// constraint". From and To are inclusive date bounds; Search is a
// case-insensitive substring match over title and category.
type Filter struct {
	From     time.Time
	To       time.Time
	Search   string
	Type     Type
	Category string
}

// Summary is the aggregate the dashboard header shows: totals per direction
// plus their difference, computed server-side over the same filter the list
// uses.
type Summary struct {
	Income  int64
	Expense int64
	Balance int64
}

func (t Type) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}
