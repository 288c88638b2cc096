package transaction

import (
	"context"
	"sort"
	"strings"
)

// StubTransactionRepo is an in-memory Repo used by service and handler tests.
type StubTransactionRepo struct {
	transactions map[int][]Transaction
	nextId       int
}

func NewStubTransactionRepo() *StubTransactionRepo {
	return &StubTransactionRepo{transactions: map[int][]Transaction{}, nextId: 1}
}

func (s *StubTransactionRepo) Store(_ context.Context, userId int, transaction Transaction) (Transaction, error) {
	transaction.Id = s.nextId
	s.nextId++
	s.transactions[userId] = append(s.transactions[userId], transaction)
	return transaction, nil
}

func (s *StubTransactionRepo) Get(_ context.Context, userId int, id int) (Transaction, error) {
	for _, t := range s.transactions[userId] {
		if t.Id == id {
			return t, nil
		}
	}
	return Transaction{}, ErrTransactionNotFound
}

func (s *StubTransactionRepo) List(_ context.Context, userId int, filter Filter) ([]Transaction, error) {
	var matched []Transaction
	for _, t := range s.transactions[userId] {
		if matches(t, filter) {
			matched = append(matched, t)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Date.After(matched[j].Date)
	})
	return matched, nil
}

func (s *StubTransactionRepo) Update(_ context.Context, userId int, transaction Transaction) (Transaction, error) {
	for i, t := range s.transactions[userId] {
		if t.Id == transaction.Id {
			s.transactions[userId][i] = transaction
			return transaction, nil
		}
	}
	return Transaction{}, ErrTransactionNotFound
}

func (s *StubTransactionRepo) Delete(_ context.Context, userId int, id int) error {
	list := s.transactions[userId]
	for i, t := range list {
		if t.Id == id {
			s.transactions[userId] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return ErrTransactionNotFound
}

func (s *StubTransactionRepo) Summarize(ctx context.Context, userId int, filter Filter) (Summary, error) {
	matched, err := s.List(ctx, userId, filter)
	if err != nil {
		return Summary{}, err
	}
	var summary Summary
	for _, t := range matched {
		if t.Type == TypeIncome {
			summary.Income += t.Amount
		} else {
			summary.Expense += t.Amount
		}
	}
	summary.Balance = summary.Income - summary.Expense
	return summary, nil
}

func matches(t Transaction, filter Filter) bool {
	if !filter.From.IsZero() && t.Date.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && t.Date.After(filter.To) {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Category), needle) {
			return false
		}
	}
	if filter.Type != "" && t.Type != filter.Type {
		return false
	}
	if filter.Category != "" && t.Category != filter.Category {
		return false
	}
	return true
}
