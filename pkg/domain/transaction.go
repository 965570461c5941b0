package domain

import "github.com/shopspring/decimal"

// TransactionType is the business kind of a transaction.
type TransactionType string

const (
	TransactionIncome   TransactionType = "income"
	TransactionExpense  TransactionType = "expense"
	TransactionTransfer TransactionType = "transfer"
)

// TransactionTypes lists every transaction type.
var TransactionTypes = []TransactionType{TransactionIncome, TransactionExpense, TransactionTransfer}

// Valid returns true if t is a known transaction type.
func (t TransactionType) Valid() bool { return valid(TransactionTypes, t) }

// TransactionStatus is the lifecycle state of a transaction.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusCancelled TransactionStatus = "cancelled"
	StatusDraft     TransactionStatus = "draft"
)

// TransactionStatuses lists every transaction status.
var TransactionStatuses = []TransactionStatus{StatusPending, StatusCompleted, StatusCancelled, StatusDraft}

// Valid returns true if s is a known transaction status.
func (s TransactionStatus) Valid() bool { return valid(TransactionStatuses, s) }

// Transaction is a posted business transaction. Its ledger postings are
// available separately as TransactionEntry values.
type Transaction struct {
	ID             int               `json:"id"`
	Description    string            `json:"description"`
	Type           TransactionType   `json:"type"`
	Status         TransactionStatus `json:"status"`
	Amount         decimal.Decimal   `json:"amount"`
	Date           Timestamp         `json:"date"`
	ProjectID      *int              `json:"project_id"`
	CategoryID     *int              `json:"category_id"`
	CounterpartyID *int              `json:"counterparty_id"`
	CreatedAt      Timestamp         `json:"created_at"`
	UpdatedAt      *Timestamp        `json:"updated_at,omitempty"`
}

// EntryDirection is the side of a double-entry posting.
type EntryDirection string

const (
	Debit  EntryDirection = "DEBIT"
	Credit EntryDirection = "CREDIT"
)

// EntryDirections lists both posting sides.
var EntryDirections = []EntryDirection{Debit, Credit}

// Valid returns true if d is DEBIT or CREDIT.
func (d EntryDirection) Valid() bool { return valid(EntryDirections, d) }

// TransactionEntry is one posting of a transaction against an account.
type TransactionEntry struct {
	ID          int             `json:"id"`
	AccountID   int             `json:"account_id"`
	AccountName string          `json:"account_name"`
	Amount      decimal.Decimal `json:"amount"`
	Direction   EntryDirection  `json:"direction"`
	Description string          `json:"description"`
}

// TransactionCreate is the payload for the income, expense and transfer
// endpoints. Which account ids are required depends on the endpoint.
type TransactionCreate struct {
	Amount           decimal.Decimal `json:"amount"`
	Description      string          `json:"description"`
	IncomeAccountID  *int            `json:"income_account_id,omitempty"`
	ExpenseAccountID *int            `json:"expense_account_id,omitempty"`
	BankAccountID    *int            `json:"bank_account_id,omitempty"`
	FromAccountID    *int            `json:"from_account_id,omitempty"`
	ToAccountID      *int            `json:"to_account_id,omitempty"`
	ProjectID        *int            `json:"project_id,omitempty"`
	CategoryID       *int            `json:"category_id,omitempty"`
	CounterpartyID   *int            `json:"counterparty_id,omitempty"`
	Date             *Timestamp      `json:"date,omitempty"`
}

// TransactionFilter narrows a transaction listing. Zero fields are ignored.
type TransactionFilter struct {
	Type       TransactionType
	ProjectID  int
	CategoryID int
}
