package tui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tw-accounting/twacc/internal/query"
	"github.com/tw-accounting/twacc/internal/report"
	"github.com/tw-accounting/twacc/pkg/domain"
)

// reportCurrency is the currency report totals are shown in.
const reportCurrency = "USD"

type reportLoadedMsg struct {
	from     time.Time
	markdown string
	rendered string
	err      error
}

// cachedSource serves report inputs through the query cache so the report
// shares data with the other pages.
type cachedSource struct{ d Deps }

func (s cachedSource) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	return query.Fetch(ctx, s.d.Cache, query.KeyAccounts, s.d.API.ListAccounts)
}

func (s cachedSource) ListTransactions(ctx context.Context, _ domain.TransactionFilter) ([]domain.Transaction, error) {
	return query.Fetch(ctx, s.d.Cache, query.KeyTransactions, listAllTransactions(s.d))
}

func (s cachedSource) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return query.Fetch(ctx, s.d.Cache, query.KeyCategories, s.d.API.ListCategories)
}

func (s cachedSource) ListProjects(ctx context.Context) ([]domain.Project, error) {
	return query.Fetch(ctx, s.d.Cache, query.KeyProjects, s.d.API.ListProjects)
}

// reportsModel renders the monthly income/expense report.
type reportsModel struct {
	deps Deps

	from     time.Time // first day of the month shown
	markdown string
	lines    []string
	offset   int
	loading  bool
	err      string

	width  int
	height int
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func newReportsModel(d Deps, w, h int) reportsModel {
	return reportsModel{deps: d, from: monthStart(d.Now()), width: w, height: h}
}

func (m reportsModel) enter() (reportsModel, tea.Cmd) {
	m.loading = true
	return m, m.load()
}

func (m reportsModel) load() tea.Cmd {
	d, from, width := m.deps, m.from, m.width
	return func() tea.Msg {
		ctx, cancel := loadContext()
		defer cancel()
		in, err := report.Gather(ctx, cachedSource{d})
		if err != nil {
			return reportLoadedMsg{from: from, err: err}
		}
		r := report.Build(in, from, from.AddDate(0, 1, 0))
		md, err := report.Markdown(r, d.Format, reportCurrency)
		if err != nil {
			return reportLoadedMsg{from: from, err: err}
		}
		out, err := report.Render(md, d.ReportStyle, width)
		if err != nil {
			return reportLoadedMsg{from: from, err: err}
		}
		return reportLoadedMsg{from: from, markdown: md, rendered: out}
	}
}

func (m reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportLoadedMsg:
		if !msg.from.Equal(m.from) {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = errText(msg.err)
			return m, nil
		}
		m.err = ""
		m.markdown = msg.markdown
		m.lines = strings.Split(strings.TrimRight(msg.rendered, "\n"), "\n")
		m.offset = 0
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m reportsModel) handleKey(msg tea.KeyMsg) (reportsModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.offset < len(m.lines)-1 {
			m.offset++
		}
	case "k", "up":
		if m.offset > 0 {
			m.offset--
		}
	case "[", "h":
		m.from = m.from.AddDate(0, -1, 0)
		m.loading = true
		return m, m.load()
	case "]", "l":
		m.from = m.from.AddDate(0, 1, 0)
		m.loading = true
		return m, m.load()
	case "r":
		for _, k := range []string{query.KeyAccounts, query.KeyTransactions, query.KeyCategories, query.KeyProjects} {
			m.deps.Cache.Invalidate(k)
		}
		m.loading = true
		return m, m.load()
	}
	return m, nil
}

// resize re-wraps the last report for the new width.
func (m reportsModel) resize(w, h int) reportsModel {
	changed := w != m.width
	m.width, m.height = w, h
	if changed && m.markdown != "" {
		if out, err := report.Render(m.markdown, m.deps.ReportStyle, w); err == nil {
			m.lines = strings.Split(strings.TrimRight(out, "\n"), "\n")
			m.offset = clampCursor(m.offset, len(m.lines))
		}
	}
	return m
}

func (m reportsModel) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Отчеты") + "  " +
		metaStyle.Render(m.deps.Format.Date(m.from)+" - "+m.deps.Format.Date(m.from.AddDate(0, 1, -1))) + "\n")

	switch {
	case m.loading && len(m.lines) == 0:
		b.WriteString(dimStyle.Render("loading...") + "\n")
	case m.err != "":
		b.WriteString(errorStyle.Render("error: "+m.err) + "\n")
	default:
		visible := max(m.height-1, 1)
		end := min(m.offset+visible, len(m.lines))
		b.WriteString(strings.Join(m.lines[m.offset:end], "\n"))
	}
	return b.String()
}

func (m reportsModel) help() [][2]string {
	return [][2]string{{"[/]", "месяц"}, {"j/k", "прокрутка"}, {"r", "обновить"}}
}
