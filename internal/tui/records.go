package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tw-accounting/twacc/internal/query"
)

// column describes one table column of a record page. A zero width makes
// the column absorb the remaining space.
type column[T any] struct {
	title  string
	width  int
	right  bool
	render func(T) string
	style  func(T) lipgloss.Style
}

type recordsLoadedMsg[T any] struct {
	items []T
	err   error
}

type detailLoadedMsg struct {
	id    int
	lines []string
	err   error
}

// recordsModel is a read-only table over one API collection, with an
// optional detail panel for the selected row.
type recordsModel[T any] struct {
	deps    Deps
	title   string
	key     string
	empty   string
	fetch   func(context.Context) ([]T, error)
	columns []column[T]
	id      func(T) int
	detail  func(Deps, T) tea.Cmd

	items   []T
	cursor  int
	loading bool
	err     string

	detailOpen    bool
	detailID      int
	detailLines   []string
	detailLoading bool
	detailErr     string

	width  int
	height int
}

func (m recordsModel[T]) enter() (recordsModel[T], tea.Cmd) {
	m.loading = true
	return m, m.load()
}

func (m recordsModel[T]) load() tea.Cmd {
	d, key, fetch := m.deps, m.key, m.fetch
	return func() tea.Msg {
		ctx, cancel := loadContext()
		defer cancel()
		items, err := query.Fetch(ctx, d.Cache, key, fetch)
		return recordsLoadedMsg[T]{items: items, err: err}
	}
}

func (m recordsModel[T]) update(msg tea.Msg) (recordsModel[T], tea.Cmd) {
	switch msg := msg.(type) {
	case recordsLoadedMsg[T]:
		m.loading = false
		if msg.err != nil {
			m.err = errText(msg.err)
			return m, nil
		}
		m.err = ""
		m.items = msg.items
		m.cursor = clampCursor(m.cursor, len(m.items))
		return m, nil

	case detailLoadedMsg:
		if !m.detailOpen || msg.id != m.detailID {
			return m, nil
		}
		m.detailLoading = false
		if msg.err != nil {
			m.detailErr = errText(msg.err)
			return m, nil
		}
		m.detailErr = ""
		m.detailLines = msg.lines
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m recordsModel[T]) handleKey(msg tea.KeyMsg) (recordsModel[T], tea.Cmd) {
	if m.detailOpen {
		switch msg.String() {
		case "esc", "backspace":
			m.detailOpen = false
			m.detailLines = nil
			m.detailErr = ""
		case "r":
			return m.openDetail(true)
		}
		return m, nil
	}

	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		m.cursor = clampCursor(len(m.items)-1, len(m.items))
	case "r":
		m.deps.Cache.Invalidate(m.key)
		m.loading = true
		return m, m.load()
	case "enter":
		return m.openDetail(false)
	}
	return m, nil
}

func (m recordsModel[T]) openDetail(refresh bool) (recordsModel[T], tea.Cmd) {
	if m.detail == nil || len(m.items) == 0 {
		return m, nil
	}
	item := m.items[m.cursor]
	m.detailOpen = true
	m.detailID = m.id(item)
	m.detailLoading = true
	m.detailErr = ""
	if refresh {
		m.deps.Cache.Invalidate(m.recordKey(m.detailID))
	}
	return m, m.detail(m.deps, item)
}

// recordKey is the cache key for per-record data of id.
func (m recordsModel[T]) recordKey(id int) string {
	return m.key + "/" + strconv.Itoa(id)
}

func (m recordsModel[T]) view() string {
	var b strings.Builder
	header := titleStyle.Render(m.title)
	if !m.loading && m.err == "" {
		header += "  " + metaStyle.Render(fmt.Sprintf("%d", len(m.items)))
	}
	b.WriteString(header + "\n\n")

	if m.loading && len(m.items) == 0 {
		b.WriteString(dimStyle.Render("  loading...") + "\n")
		return b.String()
	}
	if m.err != "" {
		b.WriteString(errorStyle.Render("  error: "+m.err) + "\n")
		return b.String()
	}
	if m.detailOpen {
		b.WriteString(m.detailView())
		return b.String()
	}
	if len(m.items) == 0 {
		b.WriteString(dimStyle.Render("  "+m.empty) + "\n")
		return b.String()
	}

	widths := m.columnWidths()
	titles := make([]string, len(m.columns))
	for i, c := range m.columns {
		titles[i] = m.fit(c, c.title, widths[i])
	}
	b.WriteString("  " + metaStyle.Render(strings.Join(titles, "  ")) + "\n")

	// Rows: title(2) + header(1)
	visible := max(m.height-3, 1)
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := min(start+visible, len(m.items))
	for i := start; i < end; i++ {
		item := m.items[i]
		cells := make([]string, len(m.columns))
		for j, c := range m.columns {
			text := m.fit(c, c.render(item), widths[j])
			style := normalStyle
			if c.style != nil {
				style = c.style(item)
			}
			if i == m.cursor {
				style = style.Bold(true)
			}
			cells[j] = style.Render(text)
		}
		line := strings.Join(cells, "  ")
		if i == m.cursor {
			b.WriteString(selectedRowBg.Render(accentStyle.Render("> ") + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m recordsModel[T]) fit(c column[T], s string, width int) string {
	if c.right {
		return rcell(s, width)
	}
	return cell(s, width)
}

func (m recordsModel[T]) columnWidths() []int {
	widths := make([]int, len(m.columns))
	fixed, flex := 0, 0
	for i, c := range m.columns {
		widths[i] = c.width
		if c.width == 0 {
			flex++
		}
		fixed += c.width
	}
	if flex == 0 {
		return widths
	}
	gaps := 2 * (len(m.columns) - 1)
	share := max((m.width-2-gaps-fixed)/flex, 8)
	for i := range widths {
		if widths[i] == 0 {
			widths[i] = share
		}
	}
	return widths
}

func (m recordsModel[T]) detailView() string {
	var b strings.Builder
	switch {
	case m.detailLoading && len(m.detailLines) == 0:
		b.WriteString(dimStyle.Render("  loading...") + "\n")
	case m.detailErr != "":
		b.WriteString(errorStyle.Render("  error: "+m.detailErr) + "\n")
	default:
		for _, l := range m.detailLines {
			b.WriteString("  " + l + "\n")
		}
	}
	return b.String()
}

func (m recordsModel[T]) help() [][2]string {
	if m.detailOpen {
		return [][2]string{{"esc", "назад"}, {"r", "обновить"}}
	}
	h := [][2]string{{"j/k", "навигация"}, {"r", "обновить"}}
	if m.detail != nil {
		h = append(h, [2]string{"enter", "подробнее"})
	}
	return h
}
