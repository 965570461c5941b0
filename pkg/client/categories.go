package client

import (
	"context"
	"fmt"

	"github.com/tw-accounting/twacc/pkg/domain"
)

func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if err := c.get(ctx, "/api/categories/", &categories); err != nil {
		return nil, fmt.Errorf("client.ListCategories: %w", err)
	}
	return categories, nil
}

func (c *Client) CreateCategory(ctx context.Context, req domain.CategoryCreate) (*domain.Category, error) {
	var cat domain.Category
	if err := c.post(ctx, "/api/categories/", req, &cat); err != nil {
		return nil, fmt.Errorf("client.CreateCategory: %w", err)
	}
	return &cat, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id int, upd domain.CategoryUpdate) (*domain.Category, error) {
	var cat domain.Category
	if err := c.patch(ctx, fmt.Sprintf("/api/categories/%d", id), upd, &cat); err != nil {
		return nil, fmt.Errorf("client.UpdateCategory: %w", err)
	}
	return &cat, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id int) error {
	if err := c.delete(ctx, fmt.Sprintf("/api/categories/%d", id)); err != nil {
		return fmt.Errorf("client.DeleteCategory: %w", err)
	}
	return nil
}
