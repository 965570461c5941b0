package tui

import (
	"context"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tw-accounting/twacc/internal/query"
	"github.com/tw-accounting/twacc/pkg/domain"
)

func idText(id int) string { return strconv.Itoa(id) }

func activeText(active bool) string {
	if active {
		return "активен"
	}
	return "неактивен"
}

func activeStyle(active bool) lipgloss.Style {
	if active {
		return okStyle
	}
	return metaStyle
}

func optionalDate(d Deps, ts *domain.Timestamp) string {
	if ts == nil || ts.IsZero() {
		return "-"
	}
	return d.Format.Date(ts.Time)
}

func optionalRef(id *int) string {
	if id == nil {
		return "-"
	}
	return "#" + strconv.Itoa(*id)
}

func detailRow(label, value string) string {
	return dimStyle.Render(cell(label, 18)) + normalStyle.Render(value)
}

func newAccountsModel(d Deps, w, h int) recordsModel[domain.Account] {
	f := d.Format
	return recordsModel[domain.Account]{
		deps:  d,
		title: "Счета",
		key:   query.KeyAccounts,
		empty: "Нет счетов",
		fetch: d.API.ListAccounts,
		id:    func(a domain.Account) int { return a.ID },
		columns: []column[domain.Account]{
			{title: "ID", width: 5, right: true, render: func(a domain.Account) string { return idText(a.ID) }},
			{title: "Название", render: func(a domain.Account) string { return a.Name }},
			{title: "Тип", width: 14, render: func(a domain.Account) string { return f.AccountType(a.Type) }},
			{title: "Валюта", width: 6, render: func(a domain.Account) string { return a.Currency }},
			{title: "Баланс", width: 18, right: true, render: func(a domain.Account) string { return f.Currency(a.Balance, a.Currency) },
				style: func(a domain.Account) lipgloss.Style {
					if a.Balance.IsNegative() {
						return expenseStyle
					}
					return selectedStyle
				}},
			{title: "Статус", width: 10, render: func(a domain.Account) string { return activeText(a.IsActive) },
				style: func(a domain.Account) lipgloss.Style { return activeStyle(a.IsActive) }},
		},
		detail: loadAccountDetail,
		width:  w,
		height: h,
	}
}

// loadAccountDetail compares the stored balance with the one derived from
// ledger postings.
func loadAccountDetail(d Deps, a domain.Account) tea.Cmd {
	key := query.KeyAccounts + "/" + strconv.Itoa(a.ID)
	return func() tea.Msg {
		ctx, cancel := loadContext()
		defer cancel()
		bal, err := query.Fetch(ctx, d.Cache, key, func(ctx context.Context) (*domain.AccountBalance, error) {
			return d.API.GetAccountBalance(ctx, a.ID)
		})
		if err != nil {
			return detailLoadedMsg{id: a.ID, err: err}
		}
		f := d.Format
		lines := []string{
			titleStyle.Render(a.Name),
			"",
			detailRow("Тип", f.AccountType(a.Type)),
			detailRow("Валюта", a.Currency),
			detailRow("Баланс", f.Currency(a.Balance, a.Currency)),
			detailRow("По проводкам", f.Currency(bal.Balance, a.Currency)),
			detailRow("Описание", orDash(a.Description)),
			detailRow("Создан", f.DateTime(a.CreatedAt.Time)),
		}
		if !bal.Balance.Equal(a.Balance) {
			lines = append(lines, "", goldStyle.Render("Баланс счета расходится с проводками"))
		}
		return detailLoadedMsg{id: a.ID, lines: lines}
	}
}

func newTransactionsModel(d Deps, w, h int) recordsModel[domain.Transaction] {
	f := d.Format
	typeStyle := func(t domain.Transaction) lipgloss.Style { return TypeStyle(t.Type) }
	return recordsModel[domain.Transaction]{
		deps:  d,
		title: "Транзакции",
		key:   query.KeyTransactions,
		empty: "Нет транзакций",
		fetch: listAllTransactions(d),
		id:    func(t domain.Transaction) int { return t.ID },
		columns: []column[domain.Transaction]{
			{title: "ID", width: 5, right: true, render: func(t domain.Transaction) string { return idText(t.ID) }},
			{title: "Дата", width: 10, render: func(t domain.Transaction) string { return f.Date(t.Date.Time) }},
			{title: "Описание", render: func(t domain.Transaction) string { return t.Description }},
			{title: "Тип", width: 10, render: func(t domain.Transaction) string { return f.TransactionType(t.Type) }, style: typeStyle},
			{title: "Сумма", width: 16, right: true, render: func(t domain.Transaction) string { return f.Currency(t.Amount, "USD") }, style: typeStyle},
			{title: "Статус", width: 12, render: func(t domain.Transaction) string { return f.TransactionStatus(t.Status) },
				style: func(t domain.Transaction) lipgloss.Style { return StatusStyle(t.Status) }},
		},
		detail: loadTransactionDetail,
		width:  w,
		height: h,
	}
}

// loadTransactionDetail fetches the double-entry postings of t.
func loadTransactionDetail(d Deps, t domain.Transaction) tea.Cmd {
	key := query.KeyTransactions + "/" + strconv.Itoa(t.ID)
	return func() tea.Msg {
		ctx, cancel := loadContext()
		defer cancel()
		entries, err := query.Fetch(ctx, d.Cache, key, func(ctx context.Context) ([]domain.TransactionEntry, error) {
			return d.API.ListTransactionEntries(ctx, t.ID)
		})
		if err != nil {
			return detailLoadedMsg{id: t.ID, err: err}
		}
		f := d.Format
		lines := []string{
			titleStyle.Render(orDash(t.Description)),
			"",
			detailRow("Тип", TypeStyle(t.Type).Render(f.TransactionType(t.Type))),
			detailRow("Статус", StatusStyle(t.Status).Render(f.TransactionStatus(t.Status))),
			detailRow("Сумма", f.Currency(t.Amount, "USD")),
			detailRow("Дата", f.DateTime(t.Date.Time)),
			detailRow("Проект", optionalRef(t.ProjectID)),
			detailRow("Категория", optionalRef(t.CategoryID)),
			detailRow("Контрагент", optionalRef(t.CounterpartyID)),
			"",
			sectionHeaderStyle.Render("Проводки"),
		}
		if len(entries) == 0 {
			lines = append(lines, dimStyle.Render("Нет проводок"))
		}
		for _, e := range entries {
			side := "Дт"
			style := incomeStyle
			if e.Direction == domain.Credit {
				side, style = "Кт", expenseStyle
			}
			lines = append(lines, strings.Join([]string{
				style.Render(cell(side, 3)),
				normalStyle.Render(cell(orDash(e.AccountName), 24)),
				style.Render(rcell(f.Number(e.Amount, 2), 14)),
				metaStyle.Render(e.Description),
			}, " "))
		}
		return detailLoadedMsg{id: t.ID, lines: lines}
	}
}

func newProjectsModel(d Deps, w, h int) recordsModel[domain.Project] {
	f := d.Format
	return recordsModel[domain.Project]{
		deps:  d,
		title: "Проекты",
		key:   query.KeyProjects,
		empty: "Нет проектов",
		fetch: d.API.ListProjects,
		id:    func(p domain.Project) int { return p.ID },
		columns: []column[domain.Project]{
			{title: "ID", width: 5, right: true, render: func(p domain.Project) string { return idText(p.ID) }},
			{title: "Название", render: func(p domain.Project) string { return p.Name }},
			{title: "Статус", width: 12, render: func(p domain.Project) string { return f.ProjectStatus(p.Status) }},
			{title: "Начало", width: 10, render: func(p domain.Project) string { return optionalDate(d, p.StartDate) }},
			{title: "Окончание", width: 10, render: func(p domain.Project) string { return optionalDate(d, p.EndDate) }},
			{title: "Описание", render: func(p domain.Project) string { return orDash(p.Description) }, style: func(domain.Project) lipgloss.Style { return dimStyle }},
		},
		width:  w,
		height: h,
	}
}

func newCategoriesModel(d Deps, w, h int) recordsModel[domain.Category] {
	f := d.Format
	return recordsModel[domain.Category]{
		deps:  d,
		title: "Категории",
		key:   query.KeyCategories,
		empty: "Нет категорий",
		fetch: d.API.ListCategories,
		id:    func(c domain.Category) int { return c.ID },
		columns: []column[domain.Category]{
			{title: "ID", width: 5, right: true, render: func(c domain.Category) string { return idText(c.ID) }},
			{title: "Название", render: func(c domain.Category) string { return c.Name }},
			{title: "Тип", width: 10, render: func(c domain.Category) string { return f.CategoryType(c.Type) },
				style: func(c domain.Category) lipgloss.Style {
					switch c.Type {
					case domain.CategoryIncome:
						return incomeStyle
					case domain.CategoryExpense:
						return expenseStyle
					}
					return transferStyle
				}},
			{title: "Родитель", width: 9, render: func(c domain.Category) string { return optionalRef(c.ParentID) }},
			{title: "Статус", width: 10, render: func(c domain.Category) string { return activeText(c.IsActive) },
				style: func(c domain.Category) lipgloss.Style { return activeStyle(c.IsActive) }},
		},
		width:  w,
		height: h,
	}
}

func newCounterpartiesModel(d Deps, w, h int) recordsModel[domain.Counterparty] {
	f := d.Format
	return recordsModel[domain.Counterparty]{
		deps:  d,
		title: "Контрагенты",
		key:   query.KeyCounterparties,
		empty: "Нет контрагентов",
		fetch: d.API.ListCounterparties,
		id:    func(c domain.Counterparty) int { return c.ID },
		columns: []column[domain.Counterparty]{
			{title: "ID", width: 5, right: true, render: func(c domain.Counterparty) string { return idText(c.ID) }},
			{title: "Название", render: func(c domain.Counterparty) string { return c.Name }},
			{title: "Тип", width: 12, render: func(c domain.Counterparty) string { return f.CounterpartyType(c.Type) }},
			{title: "ИНН", width: 12, render: func(c domain.Counterparty) string { return orDash(c.TaxID) }},
			{title: "Контакты", render: func(c domain.Counterparty) string { return orDash(c.ContactInfo) }, style: func(domain.Counterparty) lipgloss.Style { return dimStyle }},
		},
		width:  w,
		height: h,
	}
}
