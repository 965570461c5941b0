// Package dashboard computes the dashboard summary from fetched records.
package dashboard

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tw-accounting/twacc/pkg/domain"
)

const (
	// Window is how far back monthly income and expenses look.
	Window = 30 * 24 * time.Hour
	// RecentLimit caps the recent transactions and accounts shown.
	RecentLimit = 5
)

// Summary is the aggregated dashboard view.
type Summary struct {
	TotalBalance   decimal.Decimal
	MonthlyIncome  decimal.Decimal
	MonthlyExpense decimal.Decimal
	AccountCount   int
	CryptoAccounts []domain.Account
	OtherAccounts  []domain.Account
	Accounts       []domain.Account      // first RecentLimit, in API order
	Recent         []domain.Transaction // first RecentLimit, in API order
}

// Summarize aggregates accounts and transactions as of now. Balances are
// summed across currencies as plain numbers; transactions count toward the
// monthly totals when dated strictly after now minus Window.
func Summarize(accounts []domain.Account, txs []domain.Transaction, now time.Time) Summary {
	s := Summary{
		TotalBalance:   decimal.Zero,
		MonthlyIncome:  decimal.Zero,
		MonthlyExpense: decimal.Zero,
		AccountCount:   len(accounts),
		CryptoAccounts: []domain.Account{},
		OtherAccounts:  []domain.Account{},
	}

	for _, a := range accounts {
		s.TotalBalance = s.TotalBalance.Add(a.Balance)
		if a.IsCrypto() {
			s.CryptoAccounts = append(s.CryptoAccounts, a)
		} else {
			s.OtherAccounts = append(s.OtherAccounts, a)
		}
	}

	cutoff := now.Add(-Window)
	for _, tx := range txs {
		if !tx.Date.After(cutoff) {
			continue
		}
		switch tx.Type {
		case domain.TransactionIncome:
			s.MonthlyIncome = s.MonthlyIncome.Add(tx.Amount)
		case domain.TransactionExpense:
			s.MonthlyExpense = s.MonthlyExpense.Add(tx.Amount)
		}
	}

	s.Accounts = head(accounts, RecentLimit)
	s.Recent = head(txs, RecentLimit)
	return s
}

func head[T any](xs []T, n int) []T {
	if len(xs) > n {
		xs = xs[:n]
	}
	return append([]T{}, xs...)
}
