package tui

import "strings"

type route int

const (
	routeLogin route = iota
	routeDashboard
	routeAccounts
	routeTransactions
	routeCrypto
	routeProjects
	routeCategories
	routeCounterparties
	routeReports
	routeSettings
)

var routePaths = map[route]string{
	routeLogin:          "/login",
	routeDashboard:      "/dashboard",
	routeAccounts:       "/accounts",
	routeTransactions:   "/transactions",
	routeCrypto:         "/crypto",
	routeProjects:       "/projects",
	routeCategories:     "/categories",
	routeCounterparties: "/counterparties",
	routeReports:        "/reports",
	routeSettings:       "/settings",
}

func (r route) String() string { return routePaths[r] }

// public reports whether the route is reachable without a session.
func (r route) public() bool { return r == routeLogin }

// navItem is one sidebar entry.
type navItem struct {
	route route
	label string
}

// navItems is the sidebar in display order; entry i is bound to key i+1.
var navItems = []navItem{
	{routeDashboard, "Главная"},
	{routeAccounts, "Счета"},
	{routeTransactions, "Транзакции"},
	{routeCrypto, "Криптовалюты"},
	{routeProjects, "Проекты"},
	{routeCategories, "Категории"},
	{routeCounterparties, "Контрагенты"},
	{routeReports, "Отчеты"},
	{routeSettings, "Настройки"},
}

// routeFromPath maps a path to a route. The root and unknown paths land on
// the dashboard.
func routeFromPath(path string) route {
	path = "/" + strings.Trim(strings.TrimSpace(path), "/")
	for r, p := range routePaths {
		if p == path {
			return r
		}
	}
	return routeDashboard
}

// resolve applies the access rules: protected routes require a session and
// an authenticated user has no business on the login screen.
func resolve(r route, authenticated bool) route {
	switch {
	case !authenticated && !r.public():
		return routeLogin
	case authenticated && r == routeLogin:
		return routeDashboard
	default:
		return r
	}
}

// navIndex returns the sidebar position of r, or -1.
func navIndex(r route) int {
	for i, it := range navItems {
		if it.route == r {
			return i
		}
	}
	return -1
}
