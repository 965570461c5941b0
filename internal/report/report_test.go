package report

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tw-accounting/twacc/internal/format"
	"github.com/tw-accounting/twacc/pkg/domain"
)

func ptr(i int) *int { return &i }

var (
	from = time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	to   = time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
)

func fixture() Input {
	day := func(d int) domain.Timestamp { return domain.NewTimestamp(from.AddDate(0, 0, d)) }
	return Input{
		Accounts: []domain.Account{
			{ID: 1, Name: "Main | USD", Type: domain.AccountBank, Currency: "USD", Balance: decimal.NewFromInt(1500)},
		},
		Categories: []domain.Category{{ID: 10, Name: "Salary"}, {ID: 11, Name: "Hosting"}},
		Projects:   []domain.Project{{ID: 20, Name: "Website"}},
		Transactions: []domain.Transaction{
			{Type: domain.TransactionIncome, Amount: decimal.NewFromInt(1000), Date: day(2), CategoryID: ptr(10), ProjectID: ptr(20)},
			{Type: domain.TransactionExpense, Amount: decimal.NewFromInt(120), Date: day(3), CategoryID: ptr(11), ProjectID: ptr(20)},
			{Type: domain.TransactionExpense, Amount: decimal.NewFromInt(30), Date: day(4)},
			{Type: domain.TransactionExpense, Amount: decimal.NewFromInt(999), Date: day(5), Status: domain.StatusCancelled},
			{Type: domain.TransactionTransfer, Amount: decimal.NewFromInt(500), Date: day(6)},
			{Type: domain.TransactionIncome, Amount: decimal.NewFromInt(77), Date: domain.NewTimestamp(to)},
			{Type: domain.TransactionIncome, Amount: decimal.NewFromInt(5), Date: day(7), CategoryID: ptr(99)},
		},
	}
}

func TestBuild(t *testing.T) {
	r := Build(fixture(), from, to)

	if !r.Income.Equal(decimal.NewFromInt(1005)) {
		t.Errorf("Income = %s, want 1005", r.Income)
	}
	if !r.Expense.Equal(decimal.NewFromInt(150)) {
		t.Errorf("Expense = %s, want 150", r.Expense)
	}
	if r.Count != 4 {
		t.Errorf("Count = %d, want 4", r.Count)
	}

	var names []string
	for _, l := range r.Categories {
		names = append(names, l.Name)
	}
	if got := strings.Join(names, ","); got != "#99,Hosting,Salary," {
		t.Errorf("category order = %q", got)
	}
	if len(r.Projects) != 2 || r.Projects[0].Name != "Website" || !r.Projects[0].Net().Equal(decimal.NewFromInt(880)) {
		t.Errorf("Projects = %+v", r.Projects)
	}
}

func TestMarkdown(t *testing.T) {
	r := Build(fixture(), from, to)
	md, err := Markdown(r, format.Formatter{Locale: format.EN, Location: time.UTC}, "USD")
	if err != nil {
		t.Fatalf("Markdown() error: %v", err)
	}
	for _, want := range []string{
		"# Income and expense report",
		"09/01/2025 – 09/30/2025",
		"| Income | $1,005.00 |",
		"| Salary | $1,000.00 | $0.00 | $1,000.00 |",
		"_Uncategorized_",
		`Main \| USD`,
		"$1,500.00",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestMarkdownEmptyPeriod(t *testing.T) {
	md, err := Markdown(Build(Input{}, from, to), format.New(format.RU), "USD")
	if err != nil {
		t.Fatalf("Markdown() error: %v", err)
	}
	if !strings.Contains(md, "Нет данных за период.") {
		t.Errorf("markdown = %s", md)
	}
	if strings.Contains(md, "По категориям") {
		t.Error("empty report should not have breakdown tables")
	}
}

func TestRender(t *testing.T) {
	out, err := Render("# Title\n\nbody text", "notty", 60)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(out, "Title") || !strings.Contains(out, "body text") {
		t.Errorf("Render() = %q", out)
	}
}
