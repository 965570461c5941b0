package domain

import "github.com/shopspring/decimal"

// CryptoCurrency is a crypto asset supported by the accounting API.
type CryptoCurrency string

const (
	TRX  CryptoCurrency = "TRX"
	USDT CryptoCurrency = "USDT"
)

// CryptoCurrencies lists the supported assets.
var CryptoCurrencies = []CryptoCurrency{TRX, USDT}

// Valid returns true if c is a supported asset.
func (c CryptoCurrency) Valid() bool { return valid(CryptoCurrencies, c) }

// NetworkTron is the only wallet network the API validates.
const NetworkTron = "tron"

// CryptoTransaction is the payload for the crypto income and expense endpoints.
// FeeCrypto is only honored for expenses.
type CryptoTransaction struct {
	AmountCrypto    decimal.Decimal  `json:"amount_crypto"`
	Currency        CryptoCurrency   `json:"currency"`
	Description     string           `json:"description"`
	CryptoAccountID int              `json:"crypto_account_id"`
	USDAccountID    int              `json:"usd_account_id"`
	TxHash          string           `json:"tx_hash,omitempty"`
	WalletFrom      string           `json:"wallet_from,omitempty"`
	WalletTo        string           `json:"wallet_to,omitempty"`
	FeeCrypto       *decimal.Decimal `json:"fee_crypto,omitempty"`
	ProjectID       *int             `json:"project_id,omitempty"`
	CategoryID      *int             `json:"category_id,omitempty"`
	CounterpartyID  *int             `json:"counterparty_id,omitempty"`
}

// CryptoTransactionDetail is the on-chain side of a crypto transaction.
type CryptoTransactionDetail struct {
	TransactionID     int              `json:"transaction_id"`
	Currency          string           `json:"currency"`
	AmountCrypto      decimal.Decimal  `json:"amount_crypto"`
	RateToUSD         decimal.Decimal  `json:"rate_to_usd"`
	TxHash            string           `json:"tx_hash,omitempty"`
	WalletFrom        string           `json:"wallet_from,omitempty"`
	WalletTo          string           `json:"wallet_to,omitempty"`
	Fee               *decimal.Decimal `json:"fee,omitempty"`
	BlockNumber       *int64           `json:"block_number,omitempty"`
	ConfirmationCount *int             `json:"confirmation_count,omitempty"`
}

// Rates holds the USD price of each supported asset.
type Rates struct {
	TRX  decimal.Decimal `json:"TRX"`
	USDT decimal.Decimal `json:"USDT"`
}

// CryptoRates is one fetch of the rates endpoint.
type CryptoRates struct {
	Rates        Rates     `json:"rates"`
	BaseCurrency string    `json:"base_currency"`
	UpdatedAt    Timestamp `json:"updated_at"`
}

// WalletValidation is the server's verdict on a wallet address.
type WalletValidation struct {
	Valid   bool   `json:"valid"`
	Address string `json:"address,omitempty"`
	Network string `json:"network,omitempty"`
	Format  string `json:"format,omitempty"`
	Error   string `json:"error,omitempty"`
}

// TronTransactionInfo describes a transaction found on the TRON network.
type TronTransactionInfo struct {
	Hash          string `json:"hash"`
	Success       bool   `json:"success"`
	BlockNumber   *int64 `json:"block_number,omitempty"`
	Timestamp     *int64 `json:"timestamp,omitempty"`
	FromAddress   string `json:"from_address,omitempty"`
	ToAddress     string `json:"to_address,omitempty"`
	Amount        *int64 `json:"amount,omitempty"`
	Fee           *int64 `json:"fee,omitempty"`
	Confirmations *bool  `json:"confirmations,omitempty"`
}

// TronValidation is the result of validating a TRON transaction hash.
type TronValidation struct {
	Valid           bool                 `json:"valid"`
	TransactionInfo *TronTransactionInfo `json:"transaction_info,omitempty"`
	Error           string               `json:"error,omitempty"`
}

// SupportedCurrency describes an asset the API can account for.
type SupportedCurrency struct {
	Code            string `json:"code"`
	Name            string `json:"name"`
	Network         string `json:"network"`
	Decimals        int    `json:"decimals"`
	Type            string `json:"type"`
	ContractAddress string `json:"contract_address,omitempty"`
}
