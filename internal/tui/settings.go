package tui

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tw-accounting/twacc/pkg/domain"
)

type profileUpdatedMsg struct {
	err error
}

// settingsModel shows the profile and edits the display name.
type settingsModel struct {
	deps    Deps
	user    *domain.User
	editing bool
	name    field
	saving  bool
	status  string
}

func newSettingsModel(d Deps, u *domain.User) settingsModel {
	return settingsModel{deps: d, user: u, name: field{label: "Имя", placeholder: "Ваше имя"}}
}

func (m settingsModel) enter() (settingsModel, tea.Cmd) {
	return m, nil
}

func (m settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case profileUpdatedMsg:
		m.saving = false
		if msg.err != nil {
			m.status = errorStyle.Render("error: " + errText(msg.err))
			return m, nil
		}
		m.user = m.deps.Session.State().User
		m.status = okStyle.Render("Профиль сохранен")
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.handleInput(msg)
		}
		switch msg.String() {
		case "e", "enter":
			if m.user == nil || m.saving {
				return m, nil
			}
			m.editing = true
			m.name.value = m.user.Name
			m.status = ""
		}
	}
	return m, nil
}

func (m settingsModel) handleInput(msg tea.KeyMsg) (settingsModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editing = false
		return m, nil
	case "enter":
		m.editing = false
		name := strings.TrimSpace(m.name.value)
		if m.user != nil && name == m.user.Name {
			return m, nil
		}
		m.saving = true
		sess := m.deps.Session
		return m, func() tea.Msg {
			ctx, cancel := loadContext()
			defer cancel()
			return profileUpdatedMsg{err: sess.UpdateProfile(ctx, domain.ProfileUpdate{Name: &name})}
		}
	}
	m.name = m.name.edit(msg)
	return m, nil
}

func (m settingsModel) view() string {
	f := m.deps.Format
	var b strings.Builder
	b.WriteString(titleStyle.Render("Настройки") + "\n\n")
	b.WriteString(sectionHeaderStyle.Render("Профиль") + "\n")
	if m.user == nil {
		b.WriteString(dimStyle.Render("loading...") + "\n")
		return b.String()
	}
	u := m.user
	role := "Пользователь"
	if u.IsSuperuser {
		role = "Администратор"
	}
	if m.editing {
		b.WriteString(m.name.render(true) + "\n")
	} else {
		b.WriteString(detailRow("Имя", orDash(u.Name)) + "\n")
	}
	b.WriteString(detailRow("Email", u.Email) + "\n")
	b.WriteString(detailRow("ID", strconv.Itoa(u.ID)) + "\n")
	b.WriteString(detailRow("Роль", role) + "\n")
	b.WriteString(detailRow("Статус", activeText(u.IsActive)) + "\n")
	if !u.CreatedAt.IsZero() {
		b.WriteString(detailRow("Зарегистрирован", f.DateTime(u.CreatedAt.Time)) + "\n")
	}
	if m.saving {
		b.WriteString(dimStyle.Render("сохранение...") + "\n")
	}

	b.WriteString("\n" + sectionHeaderStyle.Render("Подключение") + "\n")
	b.WriteString(detailRow("API", orDash(m.deps.APIURL)) + "\n")
	b.WriteString(detailRow("Язык", string(f.Locale)) + "\n")
	return b.String()
}

func (m settingsModel) help() [][2]string {
	if m.editing {
		return [][2]string{{"enter", "сохранить"}, {"esc", "отмена"}}
	}
	return [][2]string{{"e", "изменить имя"}}
}
