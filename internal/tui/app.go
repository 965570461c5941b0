package tui

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tw-accounting/twacc/internal/browser"
	"github.com/tw-accounting/twacc/internal/format"
	"github.com/tw-accounting/twacc/internal/query"
	"github.com/tw-accounting/twacc/internal/session"
	"github.com/tw-accounting/twacc/pkg/domain"
)

// API is the slice of the accounting client the pages read from.
type API interface {
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	GetAccountBalance(ctx context.Context, id int) (*domain.AccountBalance, error)
	ListTransactions(ctx context.Context, f domain.TransactionFilter) ([]domain.Transaction, error)
	ListTransactionEntries(ctx context.Context, id int) ([]domain.TransactionEntry, error)
	ListProjects(ctx context.Context) ([]domain.Project, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListCounterparties(ctx context.Context) ([]domain.Counterparty, error)
	GetCryptoRates(ctx context.Context) (*domain.CryptoRates, error)
	ValidateWallet(ctx context.Context, address, network string) (*domain.WalletValidation, error)
}

// Session is the authentication state the shell routes on.
type Session interface {
	State() session.State
	Login(ctx context.Context, creds domain.Credentials) error
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error)
	UpdateProfile(ctx context.Context, upd domain.ProfileUpdate) error
	Logout()
}

// Deps is everything the pages need from the host process.
type Deps struct {
	API     API
	Session Session
	Cache   *query.Cache
	Format  format.Formatter

	APIURL       string
	RatesRefresh time.Duration
	ExplorerURL  string
	ReportStyle  string

	Now       func() time.Time
	Clipboard func(string) error
	OpenURL   func(string) error
}

func (d Deps) withDefaults() Deps {
	if d.Cache == nil {
		d.Cache = query.New()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Clipboard == nil {
		d.Clipboard = clipboard.WriteAll
	}
	if d.OpenURL == nil {
		d.OpenURL = browser.Open
	}
	return d
}

// loadTimeout bounds every request a page issues.
const loadTimeout = 30 * time.Second

func loadContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), loadTimeout)
}

// SessionChangedMsg tells the shell the session changed outside of its own
// commands, e.g. a 401 cleared it. The host sends it from a session
// subscription.
type SessionChangedMsg struct {
	State session.State
}

// pageMsg carries a page command result stamped with the navigation
// generation that issued it.
type pageMsg struct {
	gen int
	msg tea.Msg
}

const (
	sidebarWidth = 22
	// Chrome: status(1) + help(1)
	chromeHeight = 2
)

// App is the root Bubbletea model.
type App struct {
	deps  Deps
	route route
	gen   int
	state session.State

	login          loginModel
	dashboard      dashboardModel
	accounts       recordsModel[domain.Account]
	transactions   recordsModel[domain.Transaction]
	projects       recordsModel[domain.Project]
	categories     recordsModel[domain.Category]
	counterparties recordsModel[domain.Counterparty]
	crypto         cryptoModel
	reports        reportsModel
	settings       settingsModel

	pending tea.Cmd
	width   int
	height  int
	frame   int // logo shimmer animation frame
}

// NewApp creates the shell and opens path, subject to the access rules.
func NewApp(deps Deps, path string) App {
	a := App{deps: deps.withDefaults(), width: 100, height: 30}
	a.state = a.deps.Session.State()
	var cmd tea.Cmd
	a, cmd = a.navigate(routeFromPath(path))
	a.pending = cmd
	return a
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.pending, shimmerTickCmd())
}

// navigate opens r with a fresh page model. Bumping the generation orphans
// every result still in flight for the previous page.
func (a App) navigate(r route) (App, tea.Cmd) {
	r = resolve(r, a.state.IsAuthenticated)
	a.route = r
	a.gen++
	w, h := a.bodySize()
	d := a.deps

	var cmd tea.Cmd
	switch r {
	case routeLogin:
		a.login = newLoginModel(d)
	case routeDashboard:
		a.dashboard, cmd = newDashboardModel(d, w, h).enter()
	case routeAccounts:
		a.accounts, cmd = newAccountsModel(d, w, h).enter()
	case routeTransactions:
		a.transactions, cmd = newTransactionsModel(d, w, h).enter()
	case routeProjects:
		a.projects, cmd = newProjectsModel(d, w, h).enter()
	case routeCategories:
		a.categories, cmd = newCategoriesModel(d, w, h).enter()
	case routeCounterparties:
		a.counterparties, cmd = newCounterpartiesModel(d, w, h).enter()
	case routeCrypto:
		a.crypto, cmd = newCryptoModel(d, w, h).enter()
	case routeReports:
		a.reports, cmd = newReportsModel(d, w, h).enter()
	case routeSettings:
		a.settings, cmd = newSettingsModel(d, a.state.User).enter()
	}
	return a, a.tag(cmd)
}

func (a App) tag(cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	gen := a.gen
	return func() tea.Msg {
		return pageMsg{gen: gen, msg: cmd()}
	}
}

// syncSession re-reads the session and moves to wherever the access rules
// say the current route should be.
func (a App) syncSession() (App, tea.Cmd) {
	a.state = a.deps.Session.State()
	if !a.state.IsAuthenticated {
		a.deps.Cache.Clear()
	}
	if a.route == routeSettings && !a.settings.editing {
		a.settings.user = a.state.User
	}
	if target := resolve(a.route, a.state.IsAuthenticated); target != a.route {
		return a.navigate(target)
	}
	return a, nil
}

func (a App) bodySize() (int, int) {
	w := a.width - sidebarWidth - 2
	if a.route.public() {
		w = a.width
	}
	return max(w, 20), max(a.height-chromeHeight, 1)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		w, h := a.bodySize()
		a = a.resize(w, h)
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case SessionChangedMsg:
		return a.syncSession()

	case pageMsg:
		if msg.gen != a.gen {
			return a, nil
		}
		if batch, ok := msg.msg.(tea.BatchMsg); ok {
			cmds := make([]tea.Cmd, 0, len(batch))
			for _, c := range batch {
				cmds = append(cmds, a.tag(c))
			}
			return a, tea.Batch(cmds...)
		}
		var cmd tea.Cmd
		a, cmd = a.updatePage(msg.msg)
		var redirect tea.Cmd
		a, redirect = a.syncSession()
		return a, tea.Batch(cmd, redirect)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if !a.isEditing() {
			if m, cmd, ok := a.handleGlobalKey(msg.String()); ok {
				return m, cmd
			}
		}
		return a.updatePage(msg)
	}
	return a, nil
}

func (a App) handleGlobalKey(key string) (App, tea.Cmd, bool) {
	switch key {
	case "q":
		return a, tea.Quit, true
	}
	if !a.state.IsAuthenticated {
		return a, nil, false
	}
	switch key {
	case "L":
		a.deps.Session.Logout()
		m, cmd := a.syncSession()
		return m, cmd, true
	case "tab", "shift+tab":
		i := navIndex(a.route)
		if key == "tab" {
			i = (i + 1) % len(navItems)
		} else {
			i = (i - 1 + len(navItems)) % len(navItems)
		}
		m, cmd := a.navigate(navItems[i].route)
		return m, cmd, true
	}
	if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(navItems) {
		target := navItems[n-1].route
		if target == a.route {
			return a, nil, true
		}
		m, cmd := a.navigate(target)
		return m, cmd, true
	}
	return a, nil, false
}

func (a App) updatePage(msg tea.Msg) (App, tea.Cmd) {
	var cmd tea.Cmd
	switch a.route {
	case routeLogin:
		a.login, cmd = a.login.update(msg)
	case routeDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case routeAccounts:
		a.accounts, cmd = a.accounts.update(msg)
	case routeTransactions:
		a.transactions, cmd = a.transactions.update(msg)
	case routeProjects:
		a.projects, cmd = a.projects.update(msg)
	case routeCategories:
		a.categories, cmd = a.categories.update(msg)
	case routeCounterparties:
		a.counterparties, cmd = a.counterparties.update(msg)
	case routeCrypto:
		a.crypto, cmd = a.crypto.update(msg)
	case routeReports:
		a.reports, cmd = a.reports.update(msg)
	case routeSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, a.tag(cmd)
}

func (a App) resize(w, h int) App {
	a.dashboard.width, a.dashboard.height = w, h
	a.accounts.width, a.accounts.height = w, h
	a.transactions.width, a.transactions.height = w, h
	a.projects.width, a.projects.height = w, h
	a.categories.width, a.categories.height = w, h
	a.counterparties.width, a.counterparties.height = w, h
	a.crypto.width, a.crypto.height = w, h
	a.reports = a.reports.resize(w, h)
	return a
}

func (a App) isEditing() bool {
	switch a.route {
	case routeLogin:
		return true
	case routeCrypto:
		return a.crypto.editing
	case routeSettings:
		return a.settings.editing
	}
	return false
}

func (a App) View() string {
	var body, status string
	var help [][2]string
	switch a.route {
	case routeLogin:
		body, status, help = a.login.view(), a.login.status(), a.login.help()
	case routeDashboard:
		body, help = a.dashboard.view(), a.dashboard.help()
	case routeAccounts:
		body, help = a.accounts.view(), a.accounts.help()
	case routeTransactions:
		body, help = a.transactions.view(), a.transactions.help()
	case routeProjects:
		body, help = a.projects.view(), a.projects.help()
	case routeCategories:
		body, help = a.categories.view(), a.categories.help()
	case routeCounterparties:
		body, help = a.counterparties.view(), a.counterparties.help()
	case routeCrypto:
		body, status, help = a.crypto.view(), a.crypto.status, a.crypto.help()
	case routeReports:
		body, help = a.reports.view(), a.reports.help()
	case routeSettings:
		body, status, help = a.settings.view(), a.settings.status, a.settings.help()
	}

	bodyHeight := max(a.height-chromeHeight, 1)
	body = strings.TrimRight(truncateToHeight(body, bodyHeight), "\n")

	var main string
	if a.route.public() {
		main = lipgloss.Place(a.width, bodyHeight, lipgloss.Center, lipgloss.Center, body)
	} else {
		help = append(help, [2]string{"1-9", "меню"}, [2]string{"L", "выйти"}, [2]string{"q", "выход"})
		bodyBlock := lipgloss.NewStyle().Height(bodyHeight).Render(body)
		main = lipgloss.JoinHorizontal(lipgloss.Top, a.sidebarView(bodyHeight), " ", bodyBlock)
	}
	return main + "\n" + " " + status + "\n" + helpBar(help...)
}

func (a App) sidebarView(height int) string {
	var b strings.Builder
	b.WriteString(renderShimmerLogo(a.frame) + "\n")
	if u := a.state.User; u != nil {
		b.WriteString(dimStyle.Render(truncStr(u.DisplayName(), sidebarWidth-2)) + "\n")
		role := "Пользователь"
		if u.IsSuperuser {
			role = "Администратор"
		}
		b.WriteString(metaStyle.Render(role) + "\n")
	}
	b.WriteString("\n")
	for i, it := range navItems {
		key := strconv.Itoa(i + 1)
		if it.route == a.route {
			b.WriteString(accentStyle.Render(key) + " " + navActiveStyle.Render(it.label) + "\n")
		} else {
			b.WriteString(metaStyle.Render(key) + " " + dimStyle.Render(it.label) + "\n")
		}
	}
	return sidebarStyle.Width(sidebarWidth).Height(height).Render(strings.TrimRight(b.String(), "\n"))
}
