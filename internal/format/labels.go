package format

import "github.com/tw-accounting/twacc/pkg/domain"

var transactionTypeLabels = map[Locale]map[domain.TransactionType]string{
	RU: {
		domain.TransactionIncome:   "Доход",
		domain.TransactionExpense:  "Расход",
		domain.TransactionTransfer: "Перевод",
	},
	EN: {
		domain.TransactionIncome:   "Income",
		domain.TransactionExpense:  "Expense",
		domain.TransactionTransfer: "Transfer",
	},
}

var transactionStatusLabels = map[Locale]map[domain.TransactionStatus]string{
	RU: {
		domain.StatusPending:   "Ожидание",
		domain.StatusCompleted: "Завершено",
		domain.StatusCancelled: "Отменено",
		domain.StatusDraft:     "Черновик",
	},
	EN: {
		domain.StatusPending:   "Pending",
		domain.StatusCompleted: "Completed",
		domain.StatusCancelled: "Cancelled",
		domain.StatusDraft:     "Draft",
	},
}

var accountTypeLabels = map[Locale]map[domain.AccountType]string{
	RU: {
		domain.AccountBank:       "Банковский",
		domain.AccountCash:       "Наличные",
		domain.AccountCrypto:     "Криптовалютный",
		domain.AccountInvestment: "Инвестиционный",
	},
	EN: {
		domain.AccountBank:       "Bank",
		domain.AccountCash:       "Cash",
		domain.AccountCrypto:     "Crypto",
		domain.AccountInvestment: "Investment",
	},
}

var categoryTypeLabels = map[Locale]map[domain.CategoryType]string{
	RU: {
		domain.CategoryIncome:   "Доходы",
		domain.CategoryExpense:  "Расходы",
		domain.CategoryTransfer: "Переводы",
	},
	EN: {
		domain.CategoryIncome:   "Income",
		domain.CategoryExpense:  "Expenses",
		domain.CategoryTransfer: "Transfers",
	},
}

var counterpartyTypeLabels = map[Locale]map[domain.CounterpartyType]string{
	RU: {
		domain.CounterpartyCustomer: "Клиент",
		domain.CounterpartySupplier: "Поставщик",
		domain.CounterpartyPartner:  "Партнер",
		domain.CounterpartyOther:    "Прочие",
	},
	EN: {
		domain.CounterpartyCustomer: "Customer",
		domain.CounterpartySupplier: "Supplier",
		domain.CounterpartyPartner:  "Partner",
		domain.CounterpartyOther:    "Other",
	},
}

var projectStatusLabels = map[Locale]map[domain.ProjectStatus]string{
	RU: {
		domain.ProjectActive:    "Активный",
		domain.ProjectCompleted: "Завершен",
		domain.ProjectOnHold:    "Приостановлен",
		domain.ProjectCancelled: "Отменен",
	},
	EN: {
		domain.ProjectActive:    "Active",
		domain.ProjectCompleted: "Completed",
		domain.ProjectOnHold:    "On hold",
		domain.ProjectCancelled: "Cancelled",
	},
}

// label looks key up in the locale's table, falling back to ru-RU and then
// to the raw key.
func label[K ~string](tables map[Locale]map[K]string, l Locale, key K) string {
	if s, ok := tables[l][key]; ok {
		return s
	}
	if s, ok := tables[RU][key]; ok {
		return s
	}
	return string(key)
}

func (f Formatter) TransactionType(t domain.TransactionType) string {
	return label(transactionTypeLabels, f.Locale, t)
}

func (f Formatter) TransactionStatus(s domain.TransactionStatus) string {
	return label(transactionStatusLabels, f.Locale, s)
}

func (f Formatter) AccountType(t domain.AccountType) string {
	return label(accountTypeLabels, f.Locale, t)
}

func (f Formatter) CategoryType(t domain.CategoryType) string {
	return label(categoryTypeLabels, f.Locale, t)
}

func (f Formatter) CounterpartyType(t domain.CounterpartyType) string {
	return label(counterpartyTypeLabels, f.Locale, t)
}

func (f Formatter) ProjectStatus(s domain.ProjectStatus) string {
	return label(projectStatusLabels, f.Locale, s)
}
