package tui

import (
	"strings"
	"testing"
	"time"
)

const tronAddr = "TLyqzVGLV1srkB7dToTAEqgDSfPtXRJZYH"

func TestDashboardSummary(t *testing.T) {
	h := newHarness(t, true)
	a := h.start(t, "/dashboard")

	if a.dashboard.loadingAccounts || a.dashboard.loadingTransactions || a.dashboard.loadingRates {
		t.Fatal("dashboard still loading after its commands settled")
	}
	view := a.View()
	for _, want := range []string{
		"Главная панель",
		"$70.00", // 100 + (-30)
		"$50.00", // income inside the window
		"Invoice #12",
		"0.081235", // TRX, 6 decimals
		"1.000",    // USDT, 3 decimals
		"Tron wallet",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("dashboard view missing %q", want)
		}
	}
}

func TestDashboardRatesTickRefetches(t *testing.T) {
	h := newHarness(t, true)
	a := h.start(t, "/dashboard")
	before := h.srv.Hits("/api/crypto/rates")

	m, cmd := a.Update(pageMsg{gen: a.gen, msg: ratesTickMsg{}})
	a = drain(t, m.(App), cmd)

	if got := h.srv.Hits("/api/crypto/rates"); got != before+1 {
		t.Errorf("rates hits = %d, want %d", got, before+1)
	}
	if a.dashboard.rates == nil {
		t.Error("rates missing after refresh")
	}
}

func TestRecordsRefreshInvalidates(t *testing.T) {
	h := newHarness(t, true)
	a := h.start(t, "/accounts")
	if got := h.srv.Hits("/api/accounts/"); got != 1 {
		t.Fatalf("initial hits = %d, want 1", got)
	}

	// Revisiting within the stale time is served from the cache.
	a = press(t, a, "1", "2")
	if got := h.srv.Hits("/api/accounts/"); got != 1 {
		t.Errorf("hits after revisit = %d, want 1", got)
	}

	a = press(t, a, "r")
	if got := h.srv.Hits("/api/accounts/"); got != 2 {
		t.Errorf("hits after r = %d, want 2", got)
	}
	if len(a.accounts.items) != 2 {
		t.Errorf("accounts = %d, want 2", len(a.accounts.items))
	}
}

func TestRecordsCursor(t *testing.T) {
	h := newHarness(t, true)
	a := h.start(t, "/categories")

	a = press(t, a, "j", "j", "j")
	if a.categories.cursor != 1 {
		t.Errorf("cursor = %d, want clamped at 1", a.categories.cursor)
	}
	a = press(t, a, "k", "k")
	if a.categories.cursor != 0 {
		t.Errorf("cursor = %d, want 0", a.categories.cursor)
	}
	a = press(t, a, "G")
	if a.categories.cursor != 1 {
		t.Errorf("cursor after G = %d, want 1", a.categories.cursor)
	}
}

func TestRecordPagesRenderLabels(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"/accounts", []string{"Main bank", "Bank", "$100.00"}},
		{"/transactions", []string{"Invoice #12", "Income", "Completed"}},
		{"/projects", []string{"Website", "Active"}},
		{"/categories", []string{"Sales", "Infrastructure", "Expense"}},
		{"/counterparties", []string{"ACME", "Customer"}},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			h := newHarness(t, true)
			view := h.start(t, tc.path).View()
			for _, w := range tc.want {
				if !strings.Contains(view, w) {
					t.Errorf("%s view missing %q", tc.path, w)
				}
			}
		})
	}
}

func TestAccountDetail(t *testing.T) {
	h := newHarness(t, true)
	a := h.start(t, "/accounts")

	a = press(t, a, "enter")
	if !a.accounts.detailOpen {
		t.Fatal("enter did not open the detail panel")
	}
	if h.srv.Hits("/api/transactions/accounts/1/balance") != 1 {
		t.Error("balance was not fetched for the selected account")
	}
	if !strings.Contains(strings.Join(a.accounts.detailLines, "\n"), "По проводкам") {
		t.Errorf("detail lines = %q", a.accounts.detailLines)
	}

	a = press(t, a, "esc")
	if a.accounts.detailOpen {
		t.Error("esc did not close the detail panel")
	}
}

func TestTransactionDetailShowsEntries(t *testing.T) {
	h := newHarness(t, true)
	a := h.start(t, "/transactions")

	for i, tx := range a.transactions.items {
		if tx.ID == 1 {
			for range i {
				a = press(t, a, "j")
			}
		}
	}
	a = press(t, a, "enter")

	detail := strings.Join(a.transactions.detailLines, "\n")
	if !strings.Contains(detail, "Revenue") || !strings.Contains(detail, "Main bank") {
		t.Errorf("entries missing from detail:\n%s", detail)
	}
}

func TestCryptoWalletValidation(t *testing.T) {
	h := newHarness(t, true)
	a := h.start(t, "/crypto")

	if len(a.crypto.accounts) != 1 {
		t.Errorf("crypto accounts = %d, want 1", len(a.crypto.accounts))
	}

	a = press(t, a, "/")
	a = typeText(t, a, "abc")
	a = press(t, a, "enter")
	if a.crypto.validation == nil || a.crypto.validation.Valid {
		t.Fatalf("validation = %+v, want local rejection", a.crypto.validation)
	}
	if h.srv.Hits("/api/crypto/wallet-validation/abc") != 0 {
		t.Error("malformed address reached the server")
	}

	a = press(t, a, "/", "backspace", "backspace", "backspace")
	if a.crypto.validation != nil {
		t.Error("editing the address should reset the verdict")
	}
	a = typeText(t, a, tronAddr)
	a = press(t, a, "enter")
	if a.crypto.validation == nil || !a.crypto.validation.Valid {
		t.Fatalf("validation = %+v, want valid", a.crypto.validation)
	}
	if h.srv.Hits("/api/crypto/wallet-validation/"+tronAddr) != 1 {
		t.Error("well-formed address was not checked by the server")
	}
}

func TestCryptoCopyAndOpen(t *testing.T) {
	h := newHarness(t, true)
	a := h.start(t, "/crypto")

	a = press(t, a, "c")
	if len(h.copied) != 0 {
		t.Error("copied with no address")
	}

	a = press(t, a, "/")
	a = typeText(t, a, tronAddr)
	a = press(t, a, "esc", "c", "o")

	if len(h.copied) != 1 || h.copied[0] != tronAddr {
		t.Errorf("copied = %q", h.copied)
	}
	if len(h.opened) != 1 || h.opened[0] != explorer+tronAddr {
		t.Errorf("opened = %q", h.opened)
	}
	if !strings.Contains(a.crypto.status, "Адрес скопирован") {
		t.Errorf("status = %q", a.crypto.status)
	}
}

func TestReportsPage(t *testing.T) {
	h := newHarness(t, true)
	a := h.start(t, "/reports")

	if a.reports.loading || a.reports.err != "" {
		t.Fatalf("reports loading=%v err=%q", a.reports.loading, a.reports.err)
	}
	if len(a.reports.lines) == 0 {
		t.Fatal("report rendered no lines")
	}
	if !strings.Contains(a.View(), "Income") {
		t.Error("report view missing the income row")
	}

	from := a.reports.from
	a = press(t, a, "[")
	if want := from.AddDate(0, -1, 0); !a.reports.from.Equal(want) {
		t.Errorf("from = %v, want %v", a.reports.from, want)
	}
	if a.reports.loading {
		t.Error("previous month did not load")
	}
}

func TestReportsIgnoresResultForOtherMonth(t *testing.T) {
	h := newHarness(t, true)
	a := h.start(t, "/reports")

	old := a.reports.from.AddDate(0, -3, 0)
	m, _ := a.Update(pageMsg{gen: a.gen, msg: reportLoadedMsg{from: old, rendered: "stale"}})
	a = m.(App)
	if strings.Contains(strings.Join(a.reports.lines, "\n"), "stale") {
		t.Error("report for another month replaced the current one")
	}
}

func TestSettingsEditName(t *testing.T) {
	h := newHarness(t, true)
	a := h.start(t, "/settings")

	a = press(t, a, "e")
	if !a.settings.editing {
		t.Fatal("e did not start editing")
	}
	a = press(t, a, "backspace", "backspace", "backspace", "backspace", "backspace")
	a = typeText(t, a, "Bob")
	a = press(t, a, "enter")

	if a.route != routeSettings {
		t.Fatalf("route = %v, want /settings", a.route)
	}
	if got := h.store.State().User.Name; got != "Bob" {
		t.Errorf("session name = %q, want Bob", got)
	}
	if a.settings.user == nil || a.settings.user.Name != "Bob" {
		t.Errorf("settings user = %+v", a.settings.user)
	}
	if !strings.Contains(a.settings.status, "Профиль сохранен") {
		t.Errorf("status = %q", a.settings.status)
	}
}

func TestSettingsEditingBlocksNavigation(t *testing.T) {
	h := newHarness(t, true)
	a := h.start(t, "/settings")

	a = press(t, a, "e", "2")
	if a.route != routeSettings {
		t.Errorf("route = %v, typing a digit should not navigate", a.route)
	}
	if !strings.HasSuffix(a.settings.name.value, "2") {
		t.Errorf("name = %q, want the digit typed", a.settings.name.value)
	}
}

func TestMonthStart(t *testing.T) {
	got := monthStart(time.Date(2025, 9, 17, 13, 5, 0, 0, time.UTC))
	if want := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("monthStart = %v, want %v", got, want)
	}
}
