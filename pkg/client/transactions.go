package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/tw-accounting/twacc/pkg/domain"
)

// ListTransactions returns transactions matching f.
func (c *Client) ListTransactions(ctx context.Context, f domain.TransactionFilter) ([]domain.Transaction, error) {
	params := url.Values{}
	if f.Type != "" {
		params.Set("type", string(f.Type))
	}
	if f.ProjectID != 0 {
		params.Set("project_id", strconv.Itoa(f.ProjectID))
	}
	if f.CategoryID != 0 {
		params.Set("category_id", strconv.Itoa(f.CategoryID))
	}

	path := "/api/transactions/"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var txs []domain.Transaction
	if err := c.get(ctx, path, &txs); err != nil {
		return nil, fmt.Errorf("client.ListTransactions: %w", err)
	}
	return txs, nil
}

func (c *Client) GetTransaction(ctx context.Context, id int) (*domain.Transaction, error) {
	var tx domain.Transaction
	if err := c.get(ctx, fmt.Sprintf("/api/transactions/%d", id), &tx); err != nil {
		return nil, fmt.Errorf("client.GetTransaction: %w", err)
	}
	return &tx, nil
}

// ListTransactionEntries returns the double-entry postings of a transaction.
func (c *Client) ListTransactionEntries(ctx context.Context, id int) ([]domain.TransactionEntry, error) {
	var entries []domain.TransactionEntry
	if err := c.get(ctx, fmt.Sprintf("/api/transactions/%d/entries", id), &entries); err != nil {
		return nil, fmt.Errorf("client.ListTransactionEntries: %w", err)
	}
	return entries, nil
}

// CreateTransaction posts a transaction of the given kind. Only income,
// expense and transfer have endpoints.
func (c *Client) CreateTransaction(ctx context.Context, kind domain.TransactionType, req domain.TransactionCreate) (*domain.Transaction, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("client.CreateTransaction: unknown kind %q", kind)
	}
	var tx domain.Transaction
	if err := c.post(ctx, "/api/transactions/"+string(kind), req, &tx); err != nil {
		return nil, fmt.Errorf("client.CreateTransaction: %w", err)
	}
	return &tx, nil
}

func (c *Client) DeleteTransaction(ctx context.Context, id int) error {
	if err := c.delete(ctx, fmt.Sprintf("/api/transactions/%d", id)); err != nil {
		return fmt.Errorf("client.DeleteTransaction: %w", err)
	}
	return nil
}
