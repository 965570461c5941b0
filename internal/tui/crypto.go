package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tw-accounting/twacc/internal/format"
	"github.com/tw-accounting/twacc/internal/query"
	"github.com/tw-accounting/twacc/pkg/domain"
)

type walletValidatedMsg struct {
	address string
	result  *domain.WalletValidation
	err     error
}

// cryptoModel shows rates and crypto accounts and validates TRON wallet
// addresses.
type cryptoModel struct {
	deps Deps

	rates           *domain.CryptoRates
	accounts        []domain.Account
	loadingRates    bool
	loadingAccounts bool
	ratesErr        string
	accountsErr     string

	address    string
	editing    bool
	validating bool
	validation *domain.WalletValidation
	status     string

	width  int
	height int
}

func newCryptoModel(d Deps, w, h int) cryptoModel {
	return cryptoModel{deps: d, width: w, height: h}
}

func (m cryptoModel) enter() (cryptoModel, tea.Cmd) {
	m.loadingRates = true
	m.loadingAccounts = true
	return m, tea.Batch(loadRates(m.deps), loadAccounts(m.deps), ratesTick(m.deps.RatesRefresh))
}

func (m cryptoModel) update(msg tea.Msg) (cryptoModel, tea.Cmd) {
	switch msg := msg.(type) {
	case ratesLoadedMsg:
		m.loadingRates = false
		m.ratesErr = ""
		if msg.err != nil {
			m.ratesErr = errText(msg.err)
		} else {
			m.rates = msg.rates
		}
	case accountsLoadedMsg:
		m.loadingAccounts = false
		m.accountsErr = ""
		if msg.err != nil {
			m.accountsErr = errText(msg.err)
			return m, nil
		}
		var crypto []domain.Account
		for _, a := range msg.accounts {
			if a.IsCrypto() {
				crypto = append(crypto, a)
			}
		}
		m.accounts = crypto
	case ratesTickMsg:
		return m, refreshRates(m.deps)
	case walletValidatedMsg:
		if msg.address != m.address {
			return m, nil
		}
		m.validating = false
		if msg.err != nil {
			m.status = errorStyle.Render("error: " + errText(msg.err))
			return m, nil
		}
		m.validation = msg.result
	case copyResultMsg:
		if msg.err != nil {
			m.status = errorStyle.Render("error: " + msg.err.Error())
		} else {
			m.status = okStyle.Render("Адрес скопирован")
		}
	case openResultMsg:
		if msg.err != nil {
			m.status = errorStyle.Render("error: " + msg.err.Error())
		}
	case tea.KeyMsg:
		if m.editing {
			return m.handleInput(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m cryptoModel) handleKey(msg tea.KeyMsg) (cryptoModel, tea.Cmd) {
	switch msg.String() {
	case "/", "a", "enter":
		m.editing = true
		m.status = ""
	case "c":
		if m.address == "" {
			m.status = dimStyle.Render("Введите адрес")
			return m, nil
		}
		return m, copyCmd(m.deps, m.address)
	case "o":
		if !format.ValidateTronAddress(m.address) {
			m.status = dimStyle.Render("Введите корректный адрес TRON")
			return m, nil
		}
		return m, openCmd(m.deps, m.deps.ExplorerURL+m.address)
	case "r":
		m.deps.Cache.Invalidate(query.KeyAccounts)
		m.loadingRates, m.loadingAccounts = true, true
		return m, tea.Batch(refreshRates(m.deps), loadAccounts(m.deps))
	}
	return m, nil
}

func (m cryptoModel) handleInput(msg tea.KeyMsg) (cryptoModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editing = false
		return m, nil
	case "enter":
		m.editing = false
		return m.validate()
	}
	next := strings.TrimSpace(editKey(m.address, msg))
	if next != m.address {
		m.address = next
		m.validation = nil
		m.validating = false
	}
	return m, nil
}

// validate checks the address format locally and only asks the server when
// the format is plausible.
func (m cryptoModel) validate() (cryptoModel, tea.Cmd) {
	addr := m.address
	if addr == "" {
		return m, nil
	}
	if !format.ValidateTronAddress(addr) {
		m.validation = &domain.WalletValidation{
			Valid:   false,
			Address: addr,
			Network: domain.NetworkTron,
			Error:   "Неверный формат адреса TRON",
		}
		return m, nil
	}
	m.validating = true
	m.validation = nil
	api := m.deps.API
	return m, func() tea.Msg {
		ctx, cancel := loadContext()
		defer cancel()
		res, err := api.ValidateWallet(ctx, addr, domain.NetworkTron)
		return walletValidatedMsg{address: addr, result: res, err: err}
	}
}

func (m cryptoModel) view() string {
	f := m.deps.Format
	var b strings.Builder
	b.WriteString(titleStyle.Render("Криптовалюты") + "\n\n")

	b.WriteString(sectionHeaderStyle.Render("Курсы") + "\n")
	switch {
	case m.rates != nil:
		b.WriteString(rateLine(m.rates.Rates, f))
		b.WriteString(metaStyle.Render("обновлено "+f.DateTime(m.rates.UpdatedAt.Time)) + "\n")
	case m.ratesErr != "":
		b.WriteString(errorStyle.Render("error: "+m.ratesErr) + "\n")
	default:
		b.WriteString(dimStyle.Render("loading...") + "\n")
	}
	b.WriteString("\n")

	b.WriteString(sectionHeaderStyle.Render("Крипто-счета") + "\n")
	switch {
	case m.loadingAccounts && len(m.accounts) == 0:
		b.WriteString(dimStyle.Render("loading...") + "\n")
	case m.accountsErr != "":
		b.WriteString(errorStyle.Render("error: "+m.accountsErr) + "\n")
	case len(m.accounts) == 0:
		b.WriteString(dimStyle.Render("Нет крипто-счетов") + "\n")
	default:
		for _, a := range m.accounts {
			b.WriteString(normalStyle.Render(cell(a.Name, 28)) + "  " +
				metaStyle.Render(cell(a.Currency, 6)) + "  " +
				selectedStyle.Render(f.Currency(a.Balance, a.Currency)) + "\n")
		}
	}
	b.WriteString("\n")

	b.WriteString(sectionHeaderStyle.Render("Проверка кошелька") + "\n")
	b.WriteString(field{label: "Адрес", value: m.address, placeholder: "T..."}.render(m.editing) + "\n")
	if m.address != "" && !m.editing {
		b.WriteString(metaStyle.Render("  "+format.TruncateAddress(m.address, 6, 4)) + "\n")
	}
	switch {
	case m.validating:
		b.WriteString(dimStyle.Render("  проверка...") + "\n")
	case m.validation != nil:
		b.WriteString("  " + validationLine(m.validation) + "\n")
	}
	return b.String()
}

func validationLine(v *domain.WalletValidation) string {
	if v.Valid {
		parts := []string{"Адрес корректен"}
		if v.Format != "" {
			parts = append(parts, v.Format)
		}
		return okStyle.Render(strings.Join(parts, " · "))
	}
	msg := v.Error
	if msg == "" {
		msg = "Адрес некорректен"
	}
	return errorStyle.Render(msg)
}

func (m cryptoModel) help() [][2]string {
	if m.editing {
		return [][2]string{{"enter", "проверить"}, {"esc", "готово"}}
	}
	return [][2]string{{"/", "адрес"}, {"c", "копировать"}, {"o", "обозреватель"}, {"r", "обновить"}}
}

