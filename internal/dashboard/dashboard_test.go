package dashboard

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tw-accounting/twacc/pkg/domain"
)

var now = time.Date(2025, 9, 26, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ts(t time.Time) domain.Timestamp { return domain.NewTimestamp(t) }

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, nil, now)
	if !s.TotalBalance.IsZero() || !s.MonthlyIncome.IsZero() || !s.MonthlyExpense.IsZero() {
		t.Errorf("sums = %s/%s/%s, want zeros", s.TotalBalance, s.MonthlyIncome, s.MonthlyExpense)
	}
	if s.AccountCount != 0 || len(s.CryptoAccounts) != 0 || len(s.OtherAccounts) != 0 || len(s.Recent) != 0 {
		t.Errorf("summary = %+v, want empty", s)
	}
	if s.CryptoAccounts == nil || s.Recent == nil {
		t.Error("lists should be empty, not nil")
	}
}

func TestSummarizeBalances(t *testing.T) {
	accounts := []domain.Account{
		{ID: 1, Type: domain.AccountBank, Balance: dec("100")},
		{ID: 2, Type: domain.AccountCrypto, Balance: dec("-30")},
	}
	s := Summarize(accounts, nil, now)
	if !s.TotalBalance.Equal(dec("70")) {
		t.Errorf("TotalBalance = %s, want 70", s.TotalBalance)
	}
	if s.AccountCount != 2 {
		t.Errorf("AccountCount = %d, want 2", s.AccountCount)
	}
	if len(s.CryptoAccounts) != 1 || s.CryptoAccounts[0].ID != 2 {
		t.Errorf("CryptoAccounts = %+v", s.CryptoAccounts)
	}
	if len(s.OtherAccounts) != 1 || s.OtherAccounts[0].ID != 1 {
		t.Errorf("OtherAccounts = %+v", s.OtherAccounts)
	}
}

func TestSummarizeMonthlyWindow(t *testing.T) {
	tests := []struct {
		name        string
		txs         []domain.Transaction
		wantIncome  string
		wantExpense string
	}{
		{
			name: "income today, old expense",
			txs: []domain.Transaction{
				{Type: domain.TransactionIncome, Amount: dec("50"), Date: ts(now)},
				{Type: domain.TransactionExpense, Amount: dec("20"), Date: ts(now.AddDate(0, 0, -40))},
			},
			wantIncome: "50", wantExpense: "0",
		},
		{
			name: "exactly at the cutoff is excluded",
			txs: []domain.Transaction{
				{Type: domain.TransactionExpense, Amount: dec("10"), Date: ts(now.Add(-Window))},
				{Type: domain.TransactionExpense, Amount: dec("5"), Date: ts(now.Add(-Window + time.Second))},
			},
			wantIncome: "0", wantExpense: "5",
		},
		{
			name: "transfers ignored, decimals exact",
			txs: []domain.Transaction{
				{Type: domain.TransactionTransfer, Amount: dec("999"), Date: ts(now)},
				{Type: domain.TransactionIncome, Amount: dec("0.1"), Date: ts(now)},
				{Type: domain.TransactionIncome, Amount: dec("0.2"), Date: ts(now)},
			},
			wantIncome: "0.3", wantExpense: "0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Summarize(nil, tt.txs, now)
			if !s.MonthlyIncome.Equal(dec(tt.wantIncome)) {
				t.Errorf("MonthlyIncome = %s, want %s", s.MonthlyIncome, tt.wantIncome)
			}
			if !s.MonthlyExpense.Equal(dec(tt.wantExpense)) {
				t.Errorf("MonthlyExpense = %s, want %s", s.MonthlyExpense, tt.wantExpense)
			}
		})
	}
}

func TestSummarizeRecentKeepsOrder(t *testing.T) {
	var txs []domain.Transaction
	var accounts []domain.Account
	for i := 1; i <= 8; i++ {
		txs = append(txs, domain.Transaction{ID: i, Date: ts(now)})
		accounts = append(accounts, domain.Account{ID: i})
	}
	s := Summarize(accounts, txs, now)
	if len(s.Recent) != RecentLimit || len(s.Accounts) != RecentLimit {
		t.Fatalf("len(Recent)=%d len(Accounts)=%d, want %d", len(s.Recent), len(s.Accounts), RecentLimit)
	}
	for i, tx := range s.Recent {
		if tx.ID != i+1 {
			t.Errorf("Recent[%d].ID = %d, want %d", i, tx.ID, i+1)
		}
	}
	s.Recent[0].ID = 100
	if txs[0].ID != 1 {
		t.Error("Recent aliases the input slice")
	}
}
