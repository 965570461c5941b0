package domain

import "github.com/shopspring/decimal"

// AccountType is the kind of ledger account.
type AccountType string

const (
	AccountBank       AccountType = "bank"
	AccountCash       AccountType = "cash"
	AccountCrypto     AccountType = "crypto"
	AccountInvestment AccountType = "investment"
)

// AccountTypes lists every account type.
var AccountTypes = []AccountType{AccountBank, AccountCash, AccountCrypto, AccountInvestment}

// Valid returns true if t is a known account type.
func (t AccountType) Valid() bool { return valid(AccountTypes, t) }

// Account is a ledger account snapshot.
type Account struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Type        AccountType     `json:"type"`
	Currency    string          `json:"currency"`
	Balance     decimal.Decimal `json:"balance"`
	Description string          `json:"description,omitempty"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   Timestamp       `json:"created_at"`
	UpdatedAt   *Timestamp      `json:"updated_at,omitempty"`
}

// IsCrypto reports whether the account holds crypto assets.
func (a Account) IsCrypto() bool { return a.Type == AccountCrypto }

// AccountCreate is the payload for creating an account.
type AccountCreate struct {
	Name        string      `json:"name"`
	Type        AccountType `json:"type"`
	Currency    string      `json:"currency"`
	Description string      `json:"description,omitempty"`
}

// AccountUpdate is a partial account update.
type AccountUpdate struct {
	Name        *string      `json:"name,omitempty"`
	Type        *AccountType `json:"type,omitempty"`
	Currency    *string      `json:"currency,omitempty"`
	Description *string      `json:"description,omitempty"`
}

// AccountBalance is the ledger-derived balance of one account.
type AccountBalance struct {
	AccountID int             `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
}
