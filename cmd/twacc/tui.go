package main

import (
	"context"
	"flag"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/subcommands"

	"github.com/tw-accounting/twacc/internal/session"
	"github.com/tw-accounting/twacc/internal/tui"
)

type tuiCmd struct {
	io   stdio
	page string
}

func (*tuiCmd) Name() string     { return "tui" }
func (*tuiCmd) Synopsis() string { return "open the interactive terminal UI (default)" }
func (*tuiCmd) Usage() string {
	return `tui [-page <path>]

Opens the full-screen client. -page selects the starting page, e.g.
/transactions or /crypto; unauthenticated sessions always start at /login.
`
}

func (c *tuiCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.page, "page", "/", "starting page path")
}

func (c *tuiCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		return fail(c.io, err)
	}
	defer a.Close()

	model := tui.NewApp(tui.Deps{
		API:          a.api,
		Session:      a.session,
		Cache:        a.newCache(),
		Format:       a.format,
		APIURL:       a.cfg.APIURL,
		RatesRefresh: a.cfg.RatesRefresh,
		ExplorerURL:  a.cfg.ExplorerURL,
		ReportStyle:  a.cfg.ReportStyle,
	}, c.page)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	// Session changes can originate inside Update (logout key) where a
	// blocking Send would deadlock the program loop.
	unsubscribe := a.session.Subscribe(func(st session.State) {
		go p.Send(tui.SessionChangedMsg{State: st})
	})
	defer unsubscribe()

	if _, err := p.Run(); err != nil {
		return fail(c.io, fmt.Errorf("tui error: %w", err))
	}
	return subcommands.ExitSuccess
}
