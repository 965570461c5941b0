package client

import (
	"context"
	"fmt"

	"github.com/tw-accounting/twacc/pkg/domain"
)

// ListAccounts returns every account visible to the user.
func (c *Client) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	var accounts []domain.Account
	if err := c.get(ctx, "/api/accounts/", &accounts); err != nil {
		return nil, fmt.Errorf("client.ListAccounts: %w", err)
	}
	return accounts, nil
}

// GetAccount returns one account by id.
func (c *Client) GetAccount(ctx context.Context, id int) (*domain.Account, error) {
	var a domain.Account
	if err := c.get(ctx, fmt.Sprintf("/api/accounts/%d", id), &a); err != nil {
		return nil, fmt.Errorf("client.GetAccount: %w", err)
	}
	return &a, nil
}

func (c *Client) CreateAccount(ctx context.Context, req domain.AccountCreate) (*domain.Account, error) {
	var a domain.Account
	if err := c.post(ctx, "/api/accounts/", req, &a); err != nil {
		return nil, fmt.Errorf("client.CreateAccount: %w", err)
	}
	return &a, nil
}

func (c *Client) UpdateAccount(ctx context.Context, id int, upd domain.AccountUpdate) (*domain.Account, error) {
	var a domain.Account
	if err := c.patch(ctx, fmt.Sprintf("/api/accounts/%d", id), upd, &a); err != nil {
		return nil, fmt.Errorf("client.UpdateAccount: %w", err)
	}
	return &a, nil
}

func (c *Client) DeleteAccount(ctx context.Context, id int) error {
	if err := c.delete(ctx, fmt.Sprintf("/api/accounts/%d", id)); err != nil {
		return fmt.Errorf("client.DeleteAccount: %w", err)
	}
	return nil
}

// GetAccountBalance returns the balance computed from the account's ledger
// entries, which can differ from the cached Account.Balance.
func (c *Client) GetAccountBalance(ctx context.Context, id int) (*domain.AccountBalance, error) {
	var b domain.AccountBalance
	if err := c.get(ctx, fmt.Sprintf("/api/transactions/accounts/%d/balance", id), &b); err != nil {
		return nil, fmt.Errorf("client.GetAccountBalance: %w", err)
	}
	return &b, nil
}
