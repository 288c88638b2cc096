package transaction

import (
	"context"
	"database/sql"
	"testing"

	"github.com/controle-c/jarvis/internal/test_utils"
	"github.com/controle-c/jarvis/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepoTest(t *testing.T) (*TransactionRepoImpl, int, *sql.DB) {
	t.Helper()
	db := test_utils.SetupTestDB(t)

	userRepo := user.NewUserRepo(db)
	userId, err := userRepo.CreateUser(context.Background(), user.User{Uid: "uid-1", Username: "test_user"})
	require.NoError(t, err)

	return NewTransactionRepo(db), userId, db
}

func storeAll(t *testing.T, repo *TransactionRepoImpl, userId int, transactions []Transaction) {
	t.Helper()
	for _, tr := range transactions {
		_, err := repo.Store(context.Background(), userId, tr)
		require.NoError(t, err)
	}
}

func TestTransactionRepo_StoreAndGet(t *testing.T) {
	repo, userId, _ := setupRepoTest(t)

	stored, err := repo.Store(context.Background(), userId, Transaction{
		Title:    "Gasolina",
		Category: "Transporte",
		Type:     TypeExpense,
		Amount:   150_00,
		Date:     day(10),
		Notes:    "posto da esquina",
	})
	require.NoError(t, err)
	assert.NotZero(t, stored.Id)

	got, err := repo.Get(context.Background(), userId, stored.Id)
	require.NoError(t, err)
	assert.Equal(t, stored, got)
}

func TestTransactionRepo_GetNotFound(t *testing.T) {
	repo, userId, _ := setupRepoTest(t)

	_, err := repo.Get(context.Background(), userId, 999)
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestTransactionRepo_ListScopedToUser(t *testing.T) {
	repo, userId, db := setupRepoTest(t)

	otherId, err := user.NewUserRepo(db).CreateUser(context.Background(), user.User{Uid: "uid-2", Username: "other_user"})
	require.NoError(t, err)

	storeAll(t, repo, userId, []Transaction{{Title: "Mine", Type: TypeExpense, Amount: 10_00, Date: day(1)}})
	storeAll(t, repo, otherId, []Transaction{{Title: "Theirs", Type: TypeExpense, Amount: 20_00, Date: day(1)}})

	transactions, err := repo.List(context.Background(), userId, Filter{})
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, "Mine", transactions[0].Title)
}

func TestTransactionRepo_FilterDateBoundsInclusive(t *testing.T) {
	repo, userId, _ := setupRepoTest(t)
	storeAll(t, repo, userId, []Transaction{
		{Title: "before", Type: TypeExpense, Amount: 1_00, Date: day(4)},
		{Title: "lower", Type: TypeExpense, Amount: 1_00, Date: day(5)},
		{Title: "upper", Type: TypeExpense, Amount: 1_00, Date: day(10)},
		{Title: "after", Type: TypeExpense, Amount: 1_00, Date: day(11)},
	})

	transactions, err := repo.List(context.Background(), userId, Filter{From: day(5), To: day(10)})
	require.NoError(t, err)

	titles := make([]string, 0, len(transactions))
	for _, tr := range transactions {
		titles = append(titles, tr.Title)
	}
	assert.ElementsMatch(t, []string{"lower", "upper"}, titles)
}

func TestTransactionRepo_SearchMatchesTitleAndCategoryCaseInsensitive(t *testing.T) {
	repo, userId, _ := setupRepoTest(t)
	storeAll(t, repo, userId, []Transaction{
		{Title: "Uber para casa", Category: "Transporte", Type: TypeExpense, Amount: 1_00, Date: day(1)},
		{Title: "Cinema", Category: "Lazer", Type: TypeExpense, Amount: 1_00, Date: day(2)},
		{Title: "Onibus", Category: "TRANSPORTE", Type: TypeExpense, Amount: 1_00, Date: day(3)},
	})

	transactions, err := repo.List(context.Background(), userId, Filter{Search: "transporte"})
	require.NoError(t, err)
	assert.Len(t, transactions, 2)

	transactions, err = repo.List(context.Background(), userId, Filter{Search: "UBER"})
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, "Uber para casa", transactions[0].Title)
}

func TestTransactionRepo_FilterTypeAndCategory(t *testing.T) {
	repo, userId, _ := setupRepoTest(t)
	storeAll(t, repo, userId, []Transaction{
		{Title: "Salario", Category: "Trabalho", Type: TypeIncome, Amount: 500_00, Date: day(1)},
		{Title: "Mercado", Category: "Alimentacao", Type: TypeExpense, Amount: 80_00, Date: day(2)},
		{Title: "Restaurante", Category: "Alimentacao", Type: TypeExpense, Amount: 60_00, Date: day(3)},
	})

	transactions, err := repo.List(context.Background(), userId, Filter{Type: TypeIncome})
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, "Salario", transactions[0].Title)

	transactions, err = repo.List(context.Background(), userId, Filter{Category: "Alimentacao"})
	require.NoError(t, err)
	assert.Len(t, transactions, 2)
}

func TestTransactionRepo_ListOrderedByDateDescending(t *testing.T) {
	repo, userId, _ := setupRepoTest(t)
	storeAll(t, repo, userId, []Transaction{
		{Title: "first", Type: TypeExpense, Amount: 1_00, Date: day(1)},
		{Title: "third", Type: TypeExpense, Amount: 1_00, Date: day(20)},
		{Title: "second", Type: TypeExpense, Amount: 1_00, Date: day(10)},
	})

	transactions, err := repo.List(context.Background(), userId, Filter{})
	require.NoError(t, err)
	require.Len(t, transactions, 3)
	assert.Equal(t, "third", transactions[0].Title)
	assert.Equal(t, "second", transactions[1].Title)
	assert.Equal(t, "first", transactions[2].Title)
}

func TestTransactionRepo_Summarize(t *testing.T) {
	repo, userId, _ := setupRepoTest(t)
	storeAll(t, repo, userId, []Transaction{
		{Title: "Salario", Type: TypeIncome, Amount: 500_00, Date: day(1)},
		{Title: "Mercado", Type: TypeExpense, Amount: 80_00, Date: day(2)},
		{Title: "Cinema", Type: TypeExpense, Amount: 20_00, Date: day(3)},
	})

	summary, err := repo.Summarize(context.Background(), userId, Filter{})
	require.NoError(t, err)
	assert.Equal(t, Summary{Income: 500_00, Expense: 100_00, Balance: 400_00}, summary)
}

func TestTransactionRepo_SummarizeHonorsFilter(t *testing.T) {
	repo, userId, _ := setupRepoTest(t)
	storeAll(t, repo, userId, []Transaction{
		{Title: "Salario", Type: TypeIncome, Amount: 500_00, Date: day(1)},
		{Title: "Mercado", Type: TypeExpense, Amount: 80_00, Date: day(15)},
	})

	summary, err := repo.Summarize(context.Background(), userId, Filter{From: day(10)})
	require.NoError(t, err)
	assert.Equal(t, Summary{Income: 0, Expense: 80_00, Balance: -80_00}, summary)
}

func TestTransactionRepo_SummarizeEmpty(t *testing.T) {
	repo, userId, _ := setupRepoTest(t)

	summary, err := repo.Summarize(context.Background(), userId, Filter{})
	require.NoError(t, err)
	assert.Equal(t, Summary{}, summary)
}

func TestTransactionRepo_UpdateAndDelete(t *testing.T) {
	repo, userId, _ := setupRepoTest(t)

	stored, err := repo.Store(context.Background(), userId, Transaction{
		Title: "Mercado", Type: TypeExpense, Amount: 80_00, Date: day(2),
	})
	require.NoError(t, err)

	stored.Amount = 90_00
	stored.Category = "Alimentacao"
	updated, err := repo.Update(context.Background(), userId, stored)
	require.NoError(t, err)

	got, err := repo.Get(context.Background(), userId, stored.Id)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	require.NoError(t, repo.Delete(context.Background(), userId, stored.Id))
	_, err = repo.Get(context.Background(), userId, stored.Id)
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestTransactionRepo_UpdateOtherUsersRow(t *testing.T) {
	repo, userId, db := setupRepoTest(t)

	otherId, err := user.NewUserRepo(db).CreateUser(context.Background(), user.User{Uid: "uid-2", Username: "other_user"})
	require.NoError(t, err)

	stored, err := repo.Store(context.Background(), otherId, Transaction{
		Title: "Theirs", Type: TypeExpense, Amount: 10_00, Date: day(1),
	})
	require.NoError(t, err)

	stored.Title = "hijacked"
	_, err = repo.Update(context.Background(), userId, stored)
	assert.ErrorIs(t, err, ErrTransactionNotFound)

	err = repo.Delete(context.Background(), userId, stored.Id)
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}
