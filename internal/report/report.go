// Package report builds the income and expense report and renders it as
// markdown, optionally styled for the terminal.
package report

import (
	"cmp"
	"embed"
	"fmt"
	"slices"
	"strings"
	"text/template"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/shopspring/decimal"

	"github.com/tw-accounting/twacc/internal/format"
	"github.com/tw-accounting/twacc/pkg/domain"
)

//go:embed templates/*.md
var templates embed.FS

// Line is one row of a breakdown table.
type Line struct {
	Name    string
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// Net is income minus expense.
func (l Line) Net() decimal.Decimal { return l.Income.Sub(l.Expense) }

// Report is an income and expense breakdown over [From, To).
type Report struct {
	From, To   time.Time
	Income     decimal.Decimal
	Expense    decimal.Decimal
	Count      int
	Categories []Line
	Projects   []Line
	Accounts   []domain.Account
}

// Net is total income minus total expense.
func (r Report) Net() decimal.Decimal { return r.Income.Sub(r.Expense) }

// Input is everything a report is built from.
type Input struct {
	Accounts     []domain.Account
	Transactions []domain.Transaction
	Categories   []domain.Category
	Projects     []domain.Project
}

// Build aggregates in over [from, to). Cancelled transactions and transfers
// are left out; records without a category or project are grouped under an
// empty name.
func Build(in Input, from, to time.Time) Report {
	r := Report{From: from, To: to, Accounts: in.Accounts}

	catNames := make(map[int]string, len(in.Categories))
	for _, c := range in.Categories {
		catNames[c.ID] = c.Name
	}
	projNames := make(map[int]string, len(in.Projects))
	for _, p := range in.Projects {
		projNames[p.ID] = p.Name
	}

	byCat := map[string]*Line{}
	byProj := map[string]*Line{}
	for _, tx := range in.Transactions {
		if tx.Status == domain.StatusCancelled || tx.Type == domain.TransactionTransfer {
			continue
		}
		if tx.Date.Before(from) || !tx.Date.Before(to) {
			continue
		}
		r.Count++
		cat := accumulate(byCat, lookup(catNames, tx.CategoryID))
		proj := accumulate(byProj, lookup(projNames, tx.ProjectID))
		switch tx.Type {
		case domain.TransactionIncome:
			r.Income = r.Income.Add(tx.Amount)
			cat.Income = cat.Income.Add(tx.Amount)
			proj.Income = proj.Income.Add(tx.Amount)
		case domain.TransactionExpense:
			r.Expense = r.Expense.Add(tx.Amount)
			cat.Expense = cat.Expense.Add(tx.Amount)
			proj.Expense = proj.Expense.Add(tx.Amount)
		}
	}

	r.Categories = sorted(byCat)
	r.Projects = sorted(byProj)
	return r
}

func lookup(names map[int]string, id *int) string {
	if id == nil {
		return ""
	}
	if n, ok := names[*id]; ok {
		return n
	}
	return fmt.Sprintf("#%d", *id)
}

func accumulate(m map[string]*Line, name string) *Line {
	l, ok := m[name]
	if !ok {
		l = &Line{Name: name}
		m[name] = l
	}
	return l
}

// sorted returns the lines by name with the unnamed group last.
func sorted(m map[string]*Line) []Line {
	out := make([]Line, 0, len(m))
	for _, l := range m {
		out = append(out, *l)
	}
	slices.SortFunc(out, func(a, b Line) int {
		if (a.Name == "") != (b.Name == "") {
			if a.Name == "" {
				return 1
			}
			return -1
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

var phrases = map[format.Locale]map[string]string{
	format.RU: {
		"title":      "Отчет о доходах и расходах",
		"period":     "Период",
		"summary":    "Итоги",
		"income":     "Доходы",
		"expense":    "Расходы",
		"net":        "Итого",
		"count":      "Транзакций",
		"categories": "По категориям",
		"projects":   "По проектам",
		"accounts":   "Счета",
		"name":       "Название",
		"type":       "Тип",
		"balance":    "Баланс",
		"none":       "Без категории",
		"noproject":  "Без проекта",
		"empty":      "Нет данных за период.",
	},
	format.EN: {
		"title":      "Income and expense report",
		"period":     "Period",
		"summary":    "Summary",
		"income":     "Income",
		"expense":    "Expenses",
		"net":        "Net",
		"count":      "Transactions",
		"categories": "By category",
		"projects":   "By project",
		"accounts":   "Accounts",
		"name":       "Name",
		"type":       "Type",
		"balance":    "Balance",
		"none":       "Uncategorized",
		"noproject":  "No project",
		"empty":      "No data for the period.",
	},
}

// Markdown renders r as markdown. Totals are shown in currency.
func Markdown(r Report, f format.Formatter, currency string) (string, error) {
	words := phrases[f.Locale]
	if words == nil {
		words = phrases[format.RU]
	}
	funcs := template.FuncMap{
		"t":     func(key string) string { return words[key] },
		"money": func(d decimal.Decimal) string { return f.Currency(d, currency) },
		"date":  f.Date,
		// the period end is exclusive; show the last day covered.
		"lastDay":     func(t time.Time) string { return f.Date(t.Add(-time.Nanosecond)) },
		"accountType": f.AccountType,
		"accountBalance": func(a domain.Account) string {
			return f.Currency(a.Balance, a.Currency)
		},
		"cell": func(s string) string { return strings.ReplaceAll(s, "|", `\|`) },
	}

	tmpl, err := template.New("report.md").Funcs(funcs).ParseFS(templates, "templates/report.md")
	if err != nil {
		return "", fmt.Errorf("report.Markdown: %w", err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, r); err != nil {
		return "", fmt.Errorf("report.Markdown: %w", err)
	}
	return b.String(), nil
}

// Render styles markdown for a terminal of the given width. Style is a
// glamour standard style name such as "dark", "light" or "notty".
func Render(markdown, style string, width int) (string, error) {
	if style == "" {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("report.Render: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("report.Render: %w", err)
	}
	return out, nil
}
