package tui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tw-accounting/twacc/internal/apitest"
	"github.com/tw-accounting/twacc/internal/format"
	"github.com/tw-accounting/twacc/internal/query"
	"github.com/tw-accounting/twacc/internal/session"
	"github.com/tw-accounting/twacc/internal/storage"
	"github.com/tw-accounting/twacc/pkg/client"
	"github.com/tw-accounting/twacc/pkg/domain"
)

const explorer = "https://tronscan.org/#/address/"

// harness wires the shell to an in-memory API the same way the binary does.
type harness struct {
	srv   *apitest.Server
	store *session.Store
	deps  Deps

	mu     sync.Mutex
	copied []string
	opened []string
}

func newHarness(t *testing.T, loggedIn bool) *harness {
	t.Helper()
	h := &harness{srv: apitest.New(t)}
	auth := storage.NewAuthStore(storage.NewMemoryKV())
	var store *session.Store
	c := client.New(h.srv.URL,
		client.WithTokenStore(auth),
		client.WithUnauthorizedHandler(func() { store.Logout() }),
	)
	store = session.New(c, auth)
	h.store = store
	if loggedIn {
		creds := domain.Credentials{Username: "alice@example.com", Password: apitest.Password}
		if err := store.Login(context.Background(), creds); err != nil {
			t.Fatalf("Login: %v", err)
		}
	}
	h.deps = Deps{
		API:         c,
		Session:     store,
		Cache:       query.New(query.WithRetry(1, time.Millisecond)),
		Format:      format.New(format.EN),
		APIURL:      h.srv.URL,
		ExplorerURL: explorer,
		ReportStyle: "notty",
		Clipboard: func(s string) error {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.copied = append(h.copied, s)
			return nil
		},
		OpenURL: func(u string) error {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.opened = append(h.opened, u)
			return nil
		},
	}
	return h
}

// start opens path and settles every command the first page issues.
func (h *harness) start(t *testing.T, path string) App {
	t.Helper()
	a := NewApp(h.deps, path)
	m, _ := a.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	return drain(t, m.(App), a.pending)
}

// drain runs cmd and everything it leads to, feeding results back into a.
// Tick commands are never produced because the harness disables refresh.
func drain(t *testing.T, a App, cmd tea.Cmd) App {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 200 {
			t.Fatal("command queue did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := c()
		switch msg := msg.(type) {
		case nil:
			continue
		case tea.QuitMsg:
			continue
		case tea.BatchMsg:
			queue = append(queue, msg...)
			continue
		}
		m, next := a.Update(msg)
		a = m.(App)
		queue = append(queue, next)
	}
	return a
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

func press(t *testing.T, a App, keys ...string) App {
	t.Helper()
	for _, k := range keys {
		m, cmd := a.Update(keyMsg(k))
		a = drain(t, m.(App), cmd)
	}
	return a
}

// typeText delivers s as one multi-rune event, the way a paste arrives.
func typeText(t *testing.T, a App, s string) App {
	t.Helper()
	m, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return drain(t, m.(App), cmd)
}

func TestRouteFromPath(t *testing.T) {
	tests := []struct {
		path string
		want route
	}{
		{"/dashboard", routeDashboard},
		{"/accounts", routeAccounts},
		{"accounts", routeAccounts},
		{"/crypto/", routeCrypto},
		{"/login", routeLogin},
		{"/", routeDashboard},
		{"", routeDashboard},
		{"/no-such-page", routeDashboard},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			if got := routeFromPath(tc.path); got != tc.want {
				t.Errorf("routeFromPath(%q) = %v, want %v", tc.path, got, tc.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		r    route
		auth bool
		want route
	}{
		{"protected without session", routeAccounts, false, routeLogin},
		{"login without session", routeLogin, false, routeLogin},
		{"protected with session", routeReports, true, routeReports},
		{"login with session", routeLogin, true, routeDashboard},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := resolve(tc.r, tc.auth); got != tc.want {
				t.Errorf("resolve(%v, %v) = %v, want %v", tc.r, tc.auth, got, tc.want)
			}
		})
	}
}

func TestNavItemsCoverProtectedRoutes(t *testing.T) {
	if len(navItems) != 9 {
		t.Fatalf("len(navItems) = %d, want 9", len(navItems))
	}
	seen := map[route]bool{}
	for _, it := range navItems {
		if it.route.public() {
			t.Errorf("nav item %q points at a public route", it.label)
		}
		seen[it.route] = true
	}
	if len(seen) != 9 {
		t.Errorf("nav items repeat a route: %v", seen)
	}
}

func TestUnauthenticatedLandsOnLogin(t *testing.T) {
	h := newHarness(t, false)
	a := h.start(t, "/accounts")
	if a.route != routeLogin {
		t.Fatalf("route = %v, want /login", a.route)
	}
	if h.srv.Hits("/api/accounts/") != 0 {
		t.Error("protected data was fetched without a session")
	}
}

func TestLoginFlow(t *testing.T) {
	h := newHarness(t, false)
	a := h.start(t, "/")

	a = typeText(t, a, "alice@example.com")
	a = press(t, a, "tab")
	a = typeText(t, a, apitest.Password)
	a = press(t, a, "enter")

	if a.route != routeDashboard {
		t.Fatalf("route = %v, want /dashboard", a.route)
	}
	if !h.store.State().IsAuthenticated {
		t.Fatal("session not authenticated after login")
	}
	if len(a.dashboard.accounts) != 2 {
		t.Errorf("dashboard accounts = %d, want 2", len(a.dashboard.accounts))
	}
}

func TestLoginWrongPassword(t *testing.T) {
	h := newHarness(t, false)
	a := h.start(t, "/login")

	a = typeText(t, a, "alice@example.com")
	a = press(t, a, "tab")
	a = typeText(t, a, "nope")
	a = press(t, a, "enter")

	if a.route != routeLogin {
		t.Fatalf("route = %v, want /login", a.route)
	}
	if !strings.Contains(a.login.err, "Incorrect email or password") {
		t.Errorf("login err = %q", a.login.err)
	}
	if a.login.fields[fieldPassword].value != "" {
		t.Error("password should be cleared after a failed attempt")
	}
	if h.store.State().IsAuthenticated {
		t.Error("session authenticated after failed login")
	}
}

func TestLoginValidatesEmailLocally(t *testing.T) {
	h := newHarness(t, false)
	a := h.start(t, "/login")

	a = typeText(t, a, "not-an-email")
	a = press(t, a, "tab")
	a = typeText(t, a, "pw")
	a = press(t, a, "enter")

	if a.login.err == "" {
		t.Fatal("expected a validation error")
	}
	if a.login.focus != fieldEmail {
		t.Errorf("focus = %d, want email field", a.login.focus)
	}
	if h.srv.Hits("/api/auth/login") != 0 {
		t.Error("invalid email reached the server")
	}
}

func TestRegisterThenLogin(t *testing.T) {
	h := newHarness(t, false)
	a := h.start(t, "/login")

	a = press(t, a, "ctrl+r")
	if !a.login.register {
		t.Fatal("ctrl+r did not switch to registration")
	}
	a = typeText(t, a, "bob@example.com")
	a = press(t, a, "tab")
	a = typeText(t, a, apitest.Password)
	a = press(t, a, "tab")
	a = typeText(t, a, "Bob")
	a = press(t, a, "enter")

	if a.login.register {
		t.Error("form should return to login mode after registering")
	}
	if a.login.notice == "" {
		t.Error("expected a registration notice")
	}
	if h.store.State().IsAuthenticated {
		t.Error("registration must not sign in")
	}
	if a.login.fields[fieldEmail].value != "bob@example.com" {
		t.Errorf("email = %q, want it kept for the login", a.login.fields[fieldEmail].value)
	}
}

func TestNavigationKeys(t *testing.T) {
	h := newHarness(t, true)
	a := h.start(t, "/dashboard")

	a = press(t, a, "2")
	if a.route != routeAccounts {
		t.Fatalf("after 2: route = %v, want /accounts", a.route)
	}
	if len(a.accounts.items) != 2 {
		t.Errorf("accounts = %d, want 2", len(a.accounts.items))
	}

	a = press(t, a, "tab")
	if a.route != routeTransactions {
		t.Errorf("after tab: route = %v, want /transactions", a.route)
	}
	a = press(t, a, "shift+tab", "shift+tab")
	if a.route != routeDashboard {
		t.Errorf("after shift+tab x2: route = %v, want /dashboard", a.route)
	}
	a = press(t, a, "shift+tab")
	if a.route != routeSettings {
		t.Errorf("shift+tab should wrap to /settings, got %v", a.route)
	}
	a = press(t, a, "9")
	if a.route != routeSettings {
		t.Errorf("after 9: route = %v, want /settings", a.route)
	}
}

func TestStaleResultsAreDiscarded(t *testing.T) {
	h := newHarness(t, true)
	a := h.start(t, "/dashboard")

	// Leave /accounts before its load completes.
	m, slow := a.Update(keyMsg("2"))
	a = m.(App)
	a = press(t, a, "5")
	if a.route != routeProjects {
		t.Fatalf("route = %v, want /projects", a.route)
	}

	a = drain(t, a, slow)
	if a.accounts.items != nil {
		t.Error("result for a page that was left leaked into its model")
	}
	if len(a.projects.items) != 1 {
		t.Errorf("projects = %d, want 1", len(a.projects.items))
	}
}

func TestUnauthorizedRoutesToLogin(t *testing.T) {
	h := newHarness(t, true)
	a := h.start(t, "/dashboard")
	if _, ok := query.Peek[[]domain.Account](h.deps.Cache, query.KeyAccounts); !ok {
		t.Fatal("dashboard should have cached accounts")
	}

	h.srv.RevokeAll()
	a = press(t, a, "5") // projects are not cached yet

	if a.route != routeLogin {
		t.Fatalf("route = %v, want /login after 401", a.route)
	}
	if st := h.store.State(); st.IsAuthenticated || st.Token != "" {
		t.Errorf("session = %+v, want cleared", st)
	}
	if _, ok := query.Peek[[]domain.Account](h.deps.Cache, query.KeyAccounts); ok {
		t.Error("cache should be cleared on logout")
	}
}

func TestSessionChangedMsgRoutes(t *testing.T) {
	h := newHarness(t, true)
	a := h.start(t, "/reports")

	h.store.Logout()
	m, cmd := a.Update(SessionChangedMsg{State: h.store.State()})
	a = drain(t, m.(App), cmd)
	if a.route != routeLogin {
		t.Errorf("route = %v, want /login", a.route)
	}
}

func TestLogoutKey(t *testing.T) {
	h := newHarness(t, true)
	a := h.start(t, "/dashboard")

	a = press(t, a, "L")
	if a.route != routeLogin {
		t.Errorf("route = %v, want /login", a.route)
	}
	if h.store.State().IsAuthenticated {
		t.Error("L did not log out")
	}
}

func TestQuitKeys(t *testing.T) {
	h := newHarness(t, true)
	a := h.start(t, "/dashboard")

	_, cmd := a.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("expected quit command on q")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestQTypesOnLoginScreen(t *testing.T) {
	h := newHarness(t, false)
	a := h.start(t, "/login")

	m, _ := a.Update(keyMsg("q"))
	a = m.(App)
	if a.login.fields[fieldEmail].value != "q" {
		t.Errorf("email = %q, want q typed into the field", a.login.fields[fieldEmail].value)
	}

	_, cmd := a.Update(keyMsg("ctrl+c"))
	if cmd == nil {
		t.Fatal("ctrl+c should quit from the login screen")
	}
}

func TestViewRendersSidebar(t *testing.T) {
	h := newHarness(t, true)
	a := h.start(t, "/accounts")

	view := a.View()
	for _, it := range navItems {
		if !strings.Contains(view, it.label) {
			t.Errorf("sidebar missing %q", it.label)
		}
	}
	if !strings.Contains(view, "Alice") {
		t.Error("sidebar should show the user's name")
	}
}

func TestLayoutFitsTerminal(t *testing.T) {
	h := newHarness(t, true)
	a := h.start(t, "/dashboard")

	lines := strings.Split(a.View(), "\n")
	if len(lines) != 30 {
		t.Errorf("View() has %d lines, want 30", len(lines))
		for i, l := range lines {
			t.Logf("  %2d: %q", i, l)
		}
	}
}

func TestShimmerFrameIncrements(t *testing.T) {
	h := newHarness(t, false)
	a := h.start(t, "/login")
	initial := a.frame

	m, _ := a.Update(shimmerTickMsg{})
	if got := m.(App).frame; got != initial+1 {
		t.Errorf("frame = %d, want %d", got, initial+1)
	}
}
