package transaction

import (
	"context"
	"fmt"

	"github.com/controle-c/jarvis/internal/event_bus"
	"github.com/controle-c/jarvis/pkg/user"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	CreateTransaction(ctx context.Context, transaction Transaction) (Transaction, error)
	GetTransaction(ctx context.Context, id int) (Transaction, error)
	ListTransactions(ctx context.Context, filter Filter) ([]Transaction, error)
	UpdateTransaction(ctx context.Context, transaction Transaction) (Transaction, error)
	DeleteTransaction(ctx context.Context, id int) error
	Summarize(ctx context.Context, filter Filter) (Summary, error)
	CategoryBreakdown(ctx context.Context, filter Filter) ([]CategoryTotal, error)
	BalanceHistory(ctx context.Context, filter Filter) ([]BalancePoint, error)
}

type TransactionServiceImpl struct {
	repo Repo
	bus  *event_bus.EventBus
}

func NewTransactionService(repo Repo, bus *event_bus.EventBus) *TransactionServiceImpl {
	return &TransactionServiceImpl{repo: repo, bus: bus}
}

func (s *TransactionServiceImpl) CreateTransaction(ctx context.Context, transaction Transaction) (Transaction, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := transaction.Validate(); err != nil {
		return Transaction{}, err
	}

	created, err := s.repo.Store(ctx, userId, transaction)
	if err != nil {
		return Transaction{}, err
	}
	s.notifyRecorded(ctx, userId, created)
	return created, nil
}

func (s *TransactionServiceImpl) GetTransaction(ctx context.Context, id int) (Transaction, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Get(ctx, userId, id)
}

func (s *TransactionServiceImpl) ListTransactions(ctx context.Context, filter Filter) ([]Transaction, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.List(ctx, userId, filter)
}

func (s *TransactionServiceImpl) UpdateTransaction(ctx context.Context, transaction Transaction) (Transaction, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := transaction.Validate(); err != nil {
		return Transaction{}, err
	}

	updated, err := s.repo.Update(ctx, userId, transaction)
	if err != nil {
		return Transaction{}, err
	}
	s.notifyRecorded(ctx, userId, updated)
	return updated, nil
}

func (s *TransactionServiceImpl) DeleteTransaction(ctx context.Context, id int) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Delete(ctx, userId, id)
}

func (s *TransactionServiceImpl) Summarize(ctx context.Context, filter Filter) (Summary, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Summarize(ctx, userId, filter)
}

// CategoryBreakdown returns per-category expense totals for the pie chart,
// sorted descending.
func (s *TransactionServiceImpl) CategoryBreakdown(ctx context.Context, filter Filter) ([]CategoryTotal, error) {
	transactions, err := s.ListTransactions(ctx, filter)
	if err != nil {
		return nil, err
	}
	return CategoryTotals(transactions), nil
}

// BalanceHistory returns the running balance over time for the line chart.
func (s *TransactionServiceImpl) BalanceHistory(ctx context.Context, filter Filter) ([]BalancePoint, error) {
	transactions, err := s.ListTransactions(ctx, filter)
	if err != nil {
		return nil, err
	}
	return BalanceSeries(transactions), nil
}

func (s *TransactionServiceImpl) notifyRecorded(ctx context.Context, userId int, transaction Transaction) {
	if s.bus == nil {
		return
	}
	err := s.bus.Publish(event_bus.NewEvent(ctx, event_bus.TransactionRecorded, event_bus.TransactionRecordedData{
		UserId: userId,
		Id:     transaction.Id,
		Type:   string(transaction.Type),
		Amount: transaction.Amount,
	}))
	if err != nil {
		log.Errorf("failed to publish transaction event: %v", err)
	}
}
