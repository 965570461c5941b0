package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tw-accounting/twacc/internal/query"
	"github.com/tw-accounting/twacc/pkg/client"
	"github.com/tw-accounting/twacc/pkg/domain"
)

// Shared loader results. The dashboard, crypto and reports pages all read
// through the query cache, so a page switch rarely hits the network.
type accountsLoadedMsg struct {
	accounts []domain.Account
	err      error
}

type transactionsLoadedMsg struct {
	transactions []domain.Transaction
	err          error
}

type ratesLoadedMsg struct {
	rates *domain.CryptoRates
	err   error
}

type ratesTickMsg struct{}

// copyResultMsg reports the outcome of a clipboard write.
type copyResultMsg struct {
	err error
}

// openResultMsg reports the outcome of launching the browser.
type openResultMsg struct {
	err error
}

func loadAccounts(d Deps) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := loadContext()
		defer cancel()
		accounts, err := query.Fetch(ctx, d.Cache, query.KeyAccounts, d.API.ListAccounts)
		return accountsLoadedMsg{accounts: accounts, err: err}
	}
}

func listAllTransactions(d Deps) func(context.Context) ([]domain.Transaction, error) {
	return func(ctx context.Context) ([]domain.Transaction, error) {
		return d.API.ListTransactions(ctx, domain.TransactionFilter{})
	}
}

func loadTransactions(d Deps) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := loadContext()
		defer cancel()
		txs, err := query.Fetch(ctx, d.Cache, query.KeyTransactions, listAllTransactions(d))
		return transactionsLoadedMsg{transactions: txs, err: err}
	}
}

func loadRates(d Deps) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := loadContext()
		defer cancel()
		rates, err := query.Fetch(ctx, d.Cache, query.KeyCryptoRates, d.API.GetCryptoRates)
		return ratesLoadedMsg{rates: rates, err: err}
	}
}

// ratesTick schedules the next rates refresh; a zero interval disables it.
func ratesTick(every time.Duration) tea.Cmd {
	if every <= 0 {
		return nil
	}
	return tea.Tick(every, func(time.Time) tea.Msg { return ratesTickMsg{} })
}

// refreshRates drops the cached rates, refetches them and schedules the
// next tick.
func refreshRates(d Deps) tea.Cmd {
	d.Cache.Invalidate(query.KeyCryptoRates)
	return tea.Batch(loadRates(d), ratesTick(d.RatesRefresh))
}

func copyCmd(d Deps, text string) tea.Cmd {
	return func() tea.Msg {
		return copyResultMsg{err: d.Clipboard(text)}
	}
}

func openCmd(d Deps, url string) tea.Cmd {
	return func() tea.Msg {
		return openResultMsg{err: d.OpenURL(url)}
	}
}

// errText is the message shown to the user for err.
func errText(err error) string {
	var httpErr *client.HTTPError
	if errors.As(err, &httpErr) && httpErr.Message != "" {
		return httpErr.Message
	}
	return err.Error()
}
