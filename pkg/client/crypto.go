package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/tw-accounting/twacc/pkg/domain"
)

// GetCryptoRates returns the current USD rates of the supported assets.
func (c *Client) GetCryptoRates(ctx context.Context) (*domain.CryptoRates, error) {
	var r domain.CryptoRates
	if err := c.get(ctx, "/api/crypto/rates", &r); err != nil {
		return nil, fmt.Errorf("client.GetCryptoRates: %w", err)
	}
	return &r, nil
}

func (c *Client) ListSupportedCurrencies(ctx context.Context) ([]domain.SupportedCurrency, error) {
	var resp struct {
		Currencies []domain.SupportedCurrency `json:"currencies"`
	}
	if err := c.get(ctx, "/api/crypto/supported-currencies", &resp); err != nil {
		return nil, fmt.Errorf("client.ListSupportedCurrencies: %w", err)
	}
	return resp.Currencies, nil
}

// CreateCryptoTransaction posts a crypto income or expense.
func (c *Client) CreateCryptoTransaction(ctx context.Context, kind domain.TransactionType, req domain.CryptoTransaction) (*domain.Transaction, error) {
	if kind != domain.TransactionIncome && kind != domain.TransactionExpense {
		return nil, fmt.Errorf("client.CreateCryptoTransaction: unsupported kind %q", kind)
	}
	var tx domain.Transaction
	if err := c.post(ctx, "/api/crypto/"+string(kind), req, &tx); err != nil {
		return nil, fmt.Errorf("client.CreateCryptoTransaction: %w", err)
	}
	return &tx, nil
}

func (c *Client) GetCryptoTransactionDetails(ctx context.Context, id int) (*domain.CryptoTransactionDetail, error) {
	var d domain.CryptoTransactionDetail
	if err := c.get(ctx, fmt.Sprintf("/api/crypto/transactions/%d/details", id), &d); err != nil {
		return nil, fmt.Errorf("client.GetCryptoTransactionDetails: %w", err)
	}
	return &d, nil
}

// ValidateWallet asks the server whether address is a valid wallet on
// network. An empty network means TRON.
func (c *Client) ValidateWallet(ctx context.Context, address, network string) (*domain.WalletValidation, error) {
	if network == "" {
		network = domain.NetworkTron
	}
	path := "/api/crypto/wallet-validation/" + url.PathEscape(address) + "?network=" + url.QueryEscape(network)
	var v domain.WalletValidation
	if err := c.get(ctx, path, &v); err != nil {
		return nil, fmt.Errorf("client.ValidateWallet: %w", err)
	}
	return &v, nil
}

// ValidateTronTransaction looks up a transaction hash on the TRON network.
func (c *Client) ValidateTronTransaction(ctx context.Context, txHash string) (*domain.TronValidation, error) {
	body := map[string]string{"tx_hash": txHash}
	var v domain.TronValidation
	if err := c.post(ctx, "/api/crypto/validate-tron", body, &v); err != nil {
		return nil, fmt.Errorf("client.ValidateTronTransaction: %w", err)
	}
	return &v, nil
}
