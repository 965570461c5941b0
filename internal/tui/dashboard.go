package tui

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tw-accounting/twacc/internal/dashboard"
	"github.com/tw-accounting/twacc/internal/format"
	"github.com/tw-accounting/twacc/internal/query"
	"github.com/tw-accounting/twacc/pkg/domain"
)

// dashboardModel shows summary cards, accounts, crypto rates and recent
// transactions. Its three sources load independently and each section
// renders as soon as its data arrives.
type dashboardModel struct {
	deps Deps

	accounts     []domain.Account
	transactions []domain.Transaction
	rates        *domain.CryptoRates

	loadingAccounts     bool
	loadingTransactions bool
	loadingRates        bool
	accountsErr         string
	transactionsErr     string
	ratesErr            string

	width  int
	height int
}

func newDashboardModel(d Deps, w, h int) dashboardModel {
	return dashboardModel{deps: d, width: w, height: h}
}

func (m dashboardModel) enter() (dashboardModel, tea.Cmd) {
	m.loadingAccounts = true
	m.loadingTransactions = true
	m.loadingRates = true
	return m, tea.Batch(
		loadAccounts(m.deps),
		loadTransactions(m.deps),
		loadRates(m.deps),
		ratesTick(m.deps.RatesRefresh),
	)
}

func (m dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case accountsLoadedMsg:
		m.loadingAccounts = false
		m.accountsErr = ""
		if msg.err != nil {
			m.accountsErr = errText(msg.err)
		} else {
			m.accounts = msg.accounts
		}
	case transactionsLoadedMsg:
		m.loadingTransactions = false
		m.transactionsErr = ""
		if msg.err != nil {
			m.transactionsErr = errText(msg.err)
		} else {
			m.transactions = msg.transactions
		}
	case ratesLoadedMsg:
		m.loadingRates = false
		m.ratesErr = ""
		if msg.err != nil {
			m.ratesErr = errText(msg.err)
		} else {
			m.rates = msg.rates
		}
	case ratesTickMsg:
		return m, refreshRates(m.deps)
	case tea.KeyMsg:
		if msg.String() == "r" {
			m.deps.Cache.Invalidate(query.KeyAccounts)
			m.deps.Cache.Invalidate(query.KeyTransactions)
			m.deps.Cache.Invalidate(query.KeyCryptoRates)
			m.loadingAccounts, m.loadingTransactions, m.loadingRates = true, true, true
			return m, tea.Batch(loadAccounts(m.deps), loadTransactions(m.deps), loadRates(m.deps))
		}
	}
	return m, nil
}

func (m dashboardModel) view() string {
	f := m.deps.Format
	s := dashboard.Summarize(m.accounts, m.transactions, m.deps.Now())

	var b strings.Builder
	b.WriteString(titleStyle.Render("Главная панель") + "\n\n")

	cardW := max((m.width-8)/4, 16)
	card := func(title, value string, style lipgloss.Style) string {
		return cardStyle.Width(cardW).Render(dimStyle.Render(title) + "\n" + style.Render(value))
	}
	pending := func(loading bool, value string) string {
		if loading {
			return "..."
		}
		return value
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		card("Общий баланс", pending(m.loadingAccounts, f.Currency(s.TotalBalance, "USD")), selectedStyle),
		card("Доходы за месяц", pending(m.loadingTransactions, f.Currency(s.MonthlyIncome, "USD")), incomeStyle),
		card("Расходы за месяц", pending(m.loadingTransactions, f.Currency(s.MonthlyExpense, "USD")), expenseStyle),
		card("Количество счетов", pending(m.loadingAccounts, strconv.Itoa(s.AccountCount)), goldStyle),
	))
	b.WriteString("\n\n")

	half := max((m.width-2)/2, 20)
	left := m.accountsSection(s, half)
	right := m.cryptoSection(s, half)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(half).Render(left), "  ", right))
	b.WriteString("\n\n")
	b.WriteString(m.recentSection(s))
	return b.String()
}

func (m dashboardModel) accountsSection(s dashboard.Summary, width int) string {
	f := m.deps.Format
	var b strings.Builder
	b.WriteString(sectionHeaderStyle.Render("Счета") + "\n")
	switch {
	case m.loadingAccounts:
		b.WriteString(dimStyle.Render("loading..."))
	case m.accountsErr != "":
		b.WriteString(errorStyle.Render("error: " + m.accountsErr))
	case len(s.Accounts) == 0:
		b.WriteString(dimStyle.Render("Нет счетов"))
	default:
		for _, a := range s.Accounts {
			amount := f.Currency(a.Balance, a.Currency)
			name := cell(a.Name, max(width-lipgloss.Width(amount)-2, 8))
			b.WriteString(normalStyle.Render(name) + "  " + selectedStyle.Render(amount) + "\n")
			b.WriteString(metaStyle.Render(f.AccountType(a.Type)+" · "+a.Currency) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m dashboardModel) cryptoSection(s dashboard.Summary, width int) string {
	f := m.deps.Format
	var b strings.Builder
	b.WriteString(sectionHeaderStyle.Render("Криптовалюты") + "\n")
	switch {
	case m.loadingRates && m.rates == nil:
		b.WriteString(dimStyle.Render("loading...") + "\n")
	case m.ratesErr != "" && m.rates == nil:
		b.WriteString(errorStyle.Render("error: "+m.ratesErr) + "\n")
	case m.rates != nil:
		b.WriteString(rateLine(m.rates.Rates, f))
	}
	if len(s.CryptoAccounts) > 0 {
		b.WriteString("\n" + dimStyle.Render("Крипто-счета") + "\n")
		for _, a := range s.CryptoAccounts {
			amount := f.Currency(a.Balance, a.Currency)
			b.WriteString(normalStyle.Render(cell(a.Name, max(width-lipgloss.Width(amount)-2, 8))) + "  " + amount + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// rateLine renders the two supported assets with their display precision.
func rateLine(r domain.Rates, f format.Formatter) string {
	return accentStyle.Render(cell("TRX", 5)) + normalStyle.Render("$"+f.Number(r.TRX, 6)) + "\n" +
		accentStyle.Render(cell("USDT", 5)) + normalStyle.Render("$"+f.Number(r.USDT, 3)) + "\n"
}

func (m dashboardModel) recentSection(s dashboard.Summary) string {
	f := m.deps.Format
	var b strings.Builder
	b.WriteString(sectionHeaderStyle.Render("Последние транзакции") + "\n")
	switch {
	case m.loadingTransactions:
		b.WriteString(dimStyle.Render("loading..."))
		return b.String()
	case m.transactionsErr != "":
		b.WriteString(errorStyle.Render("error: " + m.transactionsErr))
		return b.String()
	case len(s.Recent) == 0:
		b.WriteString(dimStyle.Render("Нет транзакций"))
		return b.String()
	}

	descW := max(m.width-12-10-16-12-8, 12)
	b.WriteString(metaStyle.Render(cell("Описание", descW)+"  "+cell("Тип", 10)+"  "+rcell("Сумма", 16)+"  "+cell("Статус", 12)+"  "+"Дата") + "\n")
	for _, tx := range s.Recent {
		b.WriteString(normalStyle.Render(cell(tx.Description, descW)) + "  " +
			TypeStyle(tx.Type).Render(cell(f.TransactionType(tx.Type), 10)) + "  " +
			TypeStyle(tx.Type).Render(rcell(f.Currency(tx.Amount, "USD"), 16)) + "  " +
			StatusStyle(tx.Status).Render(cell(f.TransactionStatus(tx.Status), 12)) + "  " +
			metaStyle.Render(f.Date(tx.Date.Time)) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m dashboardModel) help() [][2]string {
	return [][2]string{{"r", "обновить"}, {"tab", "след. раздел"}}
}
