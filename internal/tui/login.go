package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tw-accounting/twacc/internal/format"
	"github.com/tw-accounting/twacc/pkg/domain"
)

const (
	fieldEmail = iota
	fieldPassword
	fieldName
)

type loginResultMsg struct {
	err error
}

type registerResultMsg struct {
	user *domain.User
	err  error
}

// loginModel is the public sign-in screen. ctrl+r flips it into a
// registration form.
type loginModel struct {
	deps       Deps
	register   bool
	fields     []field
	focus      int
	submitting bool
	err        string
	notice     string
}

func newLoginModel(d Deps) loginModel {
	return loginModel{
		deps: d,
		fields: []field{
			{label: "Email", placeholder: "user@example.com"},
			{label: "Пароль", masked: true},
			{label: "Имя", placeholder: "необязательно"},
		},
	}
}

// visible is the number of fields shown in the current mode.
func (m loginModel) visible() int {
	if m.register {
		return 3
	}
	return 2
}

func (m loginModel) update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.err = errText(msg.err)
			m.fields[fieldPassword].value = ""
		}
		return m, nil

	case registerResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.err = errText(msg.err)
			return m, nil
		}
		m.register = false
		m.focus = fieldPassword
		m.fields[fieldPassword].value = ""
		m.notice = "Аккаунт создан, войдите с новым паролем"
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m loginModel) handleKey(msg tea.KeyMsg) (loginModel, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	key := msg.String()
	switch key {
	case "tab", "down":
		m.focus = (m.focus + 1) % m.visible()
	case "shift+tab", "up":
		m.focus = (m.focus - 1 + m.visible()) % m.visible()
	case "ctrl+r":
		m.register = !m.register
		m.focus = clampCursor(m.focus, m.visible())
		m.err, m.notice = "", ""
	case "esc":
		m.err, m.notice = "", ""
	case "enter":
		return m.submit()
	default:
		m.fields[m.focus] = m.fields[m.focus].edit(msg)
	}
	return m, nil
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	email := strings.TrimSpace(m.fields[fieldEmail].value)
	password := m.fields[fieldPassword].value
	switch {
	case !format.ValidateEmail(email):
		m.err = "Некорректный email"
		m.focus = fieldEmail
		return m, nil
	case password == "":
		m.err = "Введите пароль"
		m.focus = fieldPassword
		return m, nil
	}

	m.err, m.notice = "", ""
	m.submitting = true
	sess := m.deps.Session
	if m.register {
		req := domain.RegisterRequest{
			Email:    email,
			Password: password,
			Name:     strings.TrimSpace(m.fields[fieldName].value),
		}
		return m, func() tea.Msg {
			ctx, cancel := loadContext()
			defer cancel()
			user, err := sess.Register(ctx, req)
			return registerResultMsg{user: user, err: err}
		}
	}
	creds := domain.Credentials{Username: email, Password: password}
	return m, func() tea.Msg {
		ctx, cancel := loadContext()
		defer cancel()
		return loginResultMsg{err: sess.Login(ctx, creds)}
	}
}

func (m loginModel) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("TW Accounting") + "\n")
	if m.register {
		b.WriteString(dimStyle.Render("Регистрация") + "\n\n")
	} else {
		b.WriteString(dimStyle.Render("Вход в систему") + "\n\n")
	}
	for i := 0; i < m.visible(); i++ {
		b.WriteString(m.fields[i].render(i == m.focus) + "\n")
	}
	b.WriteString("\n")
	if m.submitting {
		b.WriteString(dimStyle.Render("  loading..."))
	}
	return cardStyle.Width(48).Render(strings.TrimRight(b.String(), "\n"))
}

func (m loginModel) status() string {
	switch {
	case m.err != "":
		return errorStyle.Render("error: " + m.err)
	case m.notice != "":
		return okStyle.Render(m.notice)
	}
	return ""
}

func (m loginModel) help() [][2]string {
	mode := "регистрация"
	submit := "войти"
	if m.register {
		mode = "вход"
		submit = "создать"
	}
	return [][2]string{{"tab", "поле"}, {"enter", submit}, {"ctrl+r", mode}, {"ctrl+c", "выход"}}
}
