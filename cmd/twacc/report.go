package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"time"

	"github.com/google/subcommands"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/tw-accounting/twacc/internal/dashboard"
	"github.com/tw-accounting/twacc/internal/report"
	"github.com/tw-accounting/twacc/pkg/domain"
)

const reportCurrency = "USD"

type reportCmd struct {
	io    stdio
	month string
	style string
	raw   bool
	width int
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "print the monthly income and expense report" }
func (*reportCmd) Usage() string {
	return `report [-month YYYY-MM] [-style <glamour style>] [-raw]

Aggregates one calendar month by category and project. -raw prints the
markdown source instead of rendering it.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.month, "month", "", "month to report (default: current)")
	f.StringVar(&c.style, "style", "", "glamour style (default: TWACC_REPORT_STYLE)")
	f.BoolVar(&c.raw, "raw", false, "print markdown")
	f.IntVar(&c.width, "width", 0, "wrap width (default: terminal width)")
}

func (c *reportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	from := monthStart(time.Now())
	if c.month != "" {
		t, err := time.ParseInLocation("2006-01", c.month, time.Local)
		if err != nil {
			return fail(c.io, fmt.Errorf("invalid month %q, want YYYY-MM", c.month))
		}
		from = t
	}

	a, err := newApp(ctx)
	if err != nil {
		return fail(c.io, err)
	}
	defer a.Close()
	if err := a.requireLogin(); err != nil {
		return fail(c.io, err)
	}

	in, err := report.Gather(ctx, a.api)
	if err != nil {
		return fail(c.io, err)
	}
	rep := report.Build(in, from, from.AddDate(0, 1, 0))
	md, err := report.Markdown(rep, a.format, reportCurrency)
	if err != nil {
		return fail(c.io, err)
	}
	if c.raw {
		fmt.Fprint(c.io.out, md)
		return subcommands.ExitSuccess
	}

	style := c.style
	if style == "" {
		style = a.cfg.ReportStyle
	}
	out, err := report.Render(md, style, c.wrapWidth())
	if err != nil {
		return fail(c.io, err)
	}
	fmt.Fprint(c.io.out, out)
	return subcommands.ExitSuccess
}

func (c *reportCmd) wrapWidth() int {
	if c.width > 0 {
		return c.width
	}
	if w, _, err := term.GetSize(1); err == nil && w > 0 {
		return w
	}
	return 80
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

type dashboardCmd struct{ io stdio }

func (*dashboardCmd) Name() string             { return "dashboard" }
func (*dashboardCmd) Synopsis() string         { return "print the dashboard summary" }
func (*dashboardCmd) Usage() string            { return "dashboard\n" }
func (*dashboardCmd) SetFlags(f *flag.FlagSet) {}

func (c *dashboardCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		return fail(c.io, err)
	}
	defer a.Close()
	if err := a.requireLogin(); err != nil {
		return fail(c.io, err)
	}

	var (
		accounts []domain.Account
		txs      []domain.Transaction
		rates    *domain.CryptoRates
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		accounts, err = a.api.ListAccounts(gctx)
		return err
	})
	g.Go(func() (err error) {
		txs, err = a.api.ListTransactions(gctx, domain.TransactionFilter{})
		return err
	})
	g.Go(func() (err error) {
		rates, err = a.api.GetCryptoRates(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return fail(c.io, err)
	}

	s := dashboard.Summarize(accounts, txs, time.Now())
	f := a.format
	fmt.Fprintf(c.io.out, "Total balance     %s\n", f.Currency(s.TotalBalance, reportCurrency))
	fmt.Fprintf(c.io.out, "Monthly income    %s\n", f.Currency(s.MonthlyIncome, reportCurrency))
	fmt.Fprintf(c.io.out, "Monthly expenses  %s\n", f.Currency(s.MonthlyExpense, reportCurrency))
	fmt.Fprintf(c.io.out, "Accounts          %d\n", s.AccountCount)
	fmt.Fprintf(c.io.out, "TRX %s  USDT %s\n", f.Number(rates.Rates.TRX, 6), f.Number(rates.Rates.USDT, 3))

	if len(s.Recent) > 0 {
		fmt.Fprintln(c.io.out)
		rows := make([][]string, 0, len(s.Recent))
		for _, tx := range s.Recent {
			rows = append(rows, []string{
				strconv.Itoa(tx.ID), f.Date(tx.Date.Time), tx.Description,
				f.TransactionType(tx.Type), f.Currency(tx.Amount, reportCurrency),
			})
		}
		printTable(c.io.out, []string{"ID", "Date", "Description", "Type", "Amount"}, rows, 4)
	}
	return subcommands.ExitSuccess
}
