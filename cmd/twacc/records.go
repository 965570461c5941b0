package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/subcommands"

	"github.com/tw-accounting/twacc/internal/format"
	"github.com/tw-accounting/twacc/pkg/domain"
)

// printTable writes rows as a bordered table. Columns listed in right are
// right-aligned.
func printTable(w io.Writer, headers []string, rows [][]string, right ...int) {
	alignRight := make(map[int]bool, len(right))
	for _, c := range right {
		alignRight[c] = true
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(_, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if alignRight[col] {
				s = s.Align(lipgloss.Right)
			}
			return s
		})
	fmt.Fprintln(w, t.Render())
}

func idOrDash(id *int) string {
	if id == nil {
		return "-"
	}
	return strconv.Itoa(*id)
}

type accountsCmd struct {
	io stdio
	id int
}

func (*accountsCmd) Name() string     { return "accounts" }
func (*accountsCmd) Synopsis() string { return "list accounts and balances" }
func (*accountsCmd) Usage() string {
	return `accounts [-id <account>]

Lists every account. With -id, shows one account with its ledger balance.
`
}

func (c *accountsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.id, "id", 0, "show a single account")
}

func (c *accountsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		return fail(c.io, err)
	}
	defer a.Close()
	if err := a.requireLogin(); err != nil {
		return fail(c.io, err)
	}
	f := a.format

	if c.id > 0 {
		acc, err := a.api.GetAccount(ctx, c.id)
		if err != nil {
			return fail(c.io, err)
		}
		bal, err := a.api.GetAccountBalance(ctx, c.id)
		if err != nil {
			return fail(c.io, err)
		}
		fmt.Fprintf(c.io.out, "%s (#%d)\n", acc.Name, acc.ID)
		fmt.Fprintf(c.io.out, "type:     %s\n", f.AccountType(acc.Type))
		fmt.Fprintf(c.io.out, "balance:  %s\n", f.Currency(acc.Balance, acc.Currency))
		fmt.Fprintf(c.io.out, "ledger:   %s\n", f.Currency(bal.Balance, acc.Currency))
		if !acc.Balance.Equal(bal.Balance) {
			fmt.Fprintln(c.io.out, "warning: stored balance differs from the ledger")
		}
		return subcommands.ExitSuccess
	}

	accounts, err := a.api.ListAccounts(ctx)
	if err != nil {
		return fail(c.io, err)
	}
	if len(accounts) == 0 {
		fmt.Fprintln(c.io.out, "No accounts.")
		return subcommands.ExitSuccess
	}
	rows := make([][]string, 0, len(accounts))
	for _, acc := range accounts {
		status := "active"
		if !acc.IsActive {
			status = "inactive"
		}
		rows = append(rows, []string{
			strconv.Itoa(acc.ID), acc.Name, f.AccountType(acc.Type), acc.Currency,
			f.Currency(acc.Balance, acc.Currency), status,
		})
	}
	printTable(c.io.out, []string{"ID", "Name", "Type", "Currency", "Balance", "Status"}, rows, 4)
	return subcommands.ExitSuccess
}

type transactionsCmd struct {
	io       stdio
	id       int
	txType   string
	project  int
	category int
}

func (*transactionsCmd) Name() string     { return "transactions" }
func (*transactionsCmd) Synopsis() string { return "list transactions" }
func (*transactionsCmd) Usage() string {
	return `transactions [-type income|expense|transfer] [-project <id>] [-category <id>]
transactions -id <transaction>

Lists transactions, optionally filtered. With -id, shows one transaction
with its ledger entries.
`
}

func (c *transactionsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.id, "id", 0, "show a single transaction with its entries")
	f.StringVar(&c.txType, "type", "", "filter by type")
	f.IntVar(&c.project, "project", 0, "filter by project id")
	f.IntVar(&c.category, "category", 0, "filter by category id")
}

func (c *transactionsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	filter := domain.TransactionFilter{
		Type:       domain.TransactionType(c.txType),
		ProjectID:  c.project,
		CategoryID: c.category,
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return fail(c.io, fmt.Errorf("unknown transaction type %q", c.txType))
	}

	a, err := newApp(ctx)
	if err != nil {
		return fail(c.io, err)
	}
	defer a.Close()
	if err := a.requireLogin(); err != nil {
		return fail(c.io, err)
	}

	if c.id > 0 {
		return c.show(ctx, a)
	}

	txs, err := a.api.ListTransactions(ctx, filter)
	if err != nil {
		return fail(c.io, err)
	}
	if len(txs) == 0 {
		fmt.Fprintln(c.io.out, "No transactions.")
		return subcommands.ExitSuccess
	}
	f := a.format
	rows := make([][]string, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, []string{
			strconv.Itoa(tx.ID), f.Date(tx.Date.Time), tx.Description,
			f.TransactionType(tx.Type), f.TransactionStatus(tx.Status),
			f.Currency(tx.Amount, "USD"), idOrDash(tx.ProjectID), idOrDash(tx.CategoryID),
		})
	}
	printTable(c.io.out, []string{"ID", "Date", "Description", "Type", "Status", "Amount", "Project", "Category"}, rows, 5)
	return subcommands.ExitSuccess
}

func (c *transactionsCmd) show(ctx context.Context, a *app) subcommands.ExitStatus {
	tx, err := a.api.GetTransaction(ctx, c.id)
	if err != nil {
		return fail(c.io, err)
	}
	entries, err := a.api.ListTransactionEntries(ctx, c.id)
	if err != nil {
		return fail(c.io, err)
	}
	f := a.format
	fmt.Fprintf(c.io.out, "%s (#%d)\n", tx.Description, tx.ID)
	fmt.Fprintf(c.io.out, "%s  %s  %s  %s\n", f.Date(tx.Date.Time), f.TransactionType(tx.Type),
		f.TransactionStatus(tx.Status), f.Currency(tx.Amount, "USD"))
	if len(entries) == 0 {
		fmt.Fprintln(c.io.out, "No entries.")
		return subcommands.ExitSuccess
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{string(e.Direction), e.AccountName, f.Number(e.Amount, 2)})
	}
	printTable(c.io.out, []string{"Side", "Account", "Amount"}, rows, 2)
	return subcommands.ExitSuccess
}

type ratesCmd struct {
	io         stdio
	currencies bool
}

func (*ratesCmd) Name() string     { return "rates" }
func (*ratesCmd) Synopsis() string { return "show crypto exchange rates" }
func (*ratesCmd) Usage() string {
	return `rates [-currencies]

Prints the current TRX and USDT rates. -currencies lists the supported
currencies instead.
`
}

func (c *ratesCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.currencies, "currencies", false, "list supported currencies")
}

func (c *ratesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		return fail(c.io, err)
	}
	defer a.Close()
	if err := a.requireLogin(); err != nil {
		return fail(c.io, err)
	}

	if c.currencies {
		cur, err := a.api.ListSupportedCurrencies(ctx)
		if err != nil {
			return fail(c.io, err)
		}
		rows := make([][]string, 0, len(cur))
		for _, sc := range cur {
			rows = append(rows, []string{sc.Code, sc.Name, sc.Network, strconv.Itoa(sc.Decimals)})
		}
		printTable(c.io.out, []string{"Code", "Name", "Network", "Decimals"}, rows, 3)
		return subcommands.ExitSuccess
	}

	r, err := a.api.GetCryptoRates(ctx)
	if err != nil {
		return fail(c.io, err)
	}
	f := a.format
	base := r.BaseCurrency
	if base == "" {
		base = "USD"
	}
	fmt.Fprintf(c.io.out, "TRX   %s %s\n", f.Number(r.Rates.TRX, 6), base)
	fmt.Fprintf(c.io.out, "USDT  %s %s\n", f.Number(r.Rates.USDT, 3), base)
	if !r.UpdatedAt.IsZero() {
		fmt.Fprintf(c.io.out, "updated %s\n", f.DateTime(r.UpdatedAt.Time))
	}
	return subcommands.ExitSuccess
}

type walletCmd struct {
	io stdio
	tx bool
}

func (*walletCmd) Name() string     { return "wallet" }
func (*walletCmd) Synopsis() string { return "validate a TRON wallet address or transaction" }
func (*walletCmd) Usage() string {
	return `wallet <address>
wallet -tx <hash>

Checks a TRON address locally and with the API. With -tx, validates a TRON
transaction hash instead.
`
}

func (c *walletCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.tx, "tx", false, "validate a transaction hash")
}

func (c *walletCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprint(c.io.err, c.Usage())
		return subcommands.ExitUsageError
	}
	arg := f.Arg(0)
	if !c.tx && !format.ValidateTronAddress(arg) {
		return fail(c.io, fmt.Errorf("%s is not a TRON address", arg))
	}

	a, err := newApp(ctx)
	if err != nil {
		return fail(c.io, err)
	}
	defer a.Close()
	if err := a.requireLogin(); err != nil {
		return fail(c.io, err)
	}

	if c.tx {
		v, err := a.api.ValidateTronTransaction(ctx, arg)
		if err != nil {
			return fail(c.io, err)
		}
		if !v.Valid {
			return fail(c.io, errors.New(orReason(v.Error, "transaction not found")))
		}
		fmt.Fprintf(c.io.out, "transaction %s is valid\n", format.TruncateAddress(arg, 8, 8))
		if info := v.TransactionInfo; info != nil {
			fmt.Fprintf(c.io.out, "from %s to %s\n", info.FromAddress, info.ToAddress)
		}
		return subcommands.ExitSuccess
	}

	v, err := a.api.ValidateWallet(ctx, arg, domain.NetworkTron)
	if err != nil {
		return fail(c.io, err)
	}
	if !v.Valid {
		return fail(c.io, errors.New(orReason(v.Error, "address rejected by the API")))
	}
	fmt.Fprintf(c.io.out, "%s is a valid %s address (%s)\n", arg, domain.NetworkTron, v.Format)
	return subcommands.ExitSuccess
}

func orReason(reason, fallback string) string {
	if reason != "" {
		return reason
	}
	return fallback
}
