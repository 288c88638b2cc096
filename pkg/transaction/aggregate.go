package transaction

import (
	"sort"
	"time"
)

// CategoryTotal is one slice of the expenses pie chart.
type CategoryTotal struct {
	Name  string
	Value int64
}

// BalancePoint is one step of the running-balance line chart.
type BalancePoint struct {
	Date    time.Time
	Balance int64
}

// CategoryTotals sums expense amounts per category and returns the totals
// sorted descending by value. Income entries are excluded; ties break
// alphabetically so the output is stable.
func CategoryTotals(transactions []Transaction) []CategoryTotal {
	byCategory := map[string]int64{}
	for _, t := range transactions {
		if t.Type != TypeExpense {
			continue
		}
		byCategory[t.Category] += t.Amount
	}

	totals := make([]CategoryTotal, 0, len(byCategory))
	for name, value := range byCategory {
		totals = append(totals, CategoryTotal{Name: name, Value: value})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Value != totals[j].Value {
			return totals[i].Value > totals[j].Value
		}
		return totals[i].Name < totals[j].Name
	})
	return totals
}

// BalanceSeries folds the transactions into a running balance ordered by
// date. Income adds, expense subtracts. Multiple transactions on the same
// day collapse into one point carrying the end-of-day balance.
func BalanceSeries(transactions []Transaction) []BalancePoint {
	sorted := make([]Transaction, len(transactions))
	copy(sorted, transactions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	var series []BalancePoint
	var balance int64
	for _, t := range sorted {
		if t.Type == TypeIncome {
			balance += t.Amount
		} else {
			balance -= t.Amount
		}
		if n := len(series); n > 0 && series[n-1].Date.Equal(t.Date) {
			series[n-1].Balance = balance
			continue
		}
		series = append(series, BalancePoint{Date: t.Date, Balance: balance})
	}
	return series
}
