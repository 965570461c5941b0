package client

import (
	"context"
	"fmt"

	"github.com/tw-accounting/twacc/pkg/domain"
)

func (c *Client) ListCounterparties(ctx context.Context) ([]domain.Counterparty, error) {
	var cps []domain.Counterparty
	if err := c.get(ctx, "/api/counterparties/", &cps); err != nil {
		return nil, fmt.Errorf("client.ListCounterparties: %w", err)
	}
	return cps, nil
}

func (c *Client) CreateCounterparty(ctx context.Context, req domain.CounterpartyCreate) (*domain.Counterparty, error) {
	var cp domain.Counterparty
	if err := c.post(ctx, "/api/counterparties/", req, &cp); err != nil {
		return nil, fmt.Errorf("client.CreateCounterparty: %w", err)
	}
	return &cp, nil
}

func (c *Client) UpdateCounterparty(ctx context.Context, id int, upd domain.CounterpartyUpdate) (*domain.Counterparty, error) {
	var cp domain.Counterparty
	if err := c.patch(ctx, fmt.Sprintf("/api/counterparties/%d", id), upd, &cp); err != nil {
		return nil, fmt.Errorf("client.UpdateCounterparty: %w", err)
	}
	return &cp, nil
}

func (c *Client) DeleteCounterparty(ctx context.Context, id int) error {
	if err := c.delete(ctx, fmt.Sprintf("/api/counterparties/%d", id)); err != nil {
		return fmt.Errorf("client.DeleteCounterparty: %w", err)
	}
	return nil
}
