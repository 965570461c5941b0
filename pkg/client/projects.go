package client

import (
	"context"
	"fmt"

	"github.com/tw-accounting/twacc/pkg/domain"
)

func (c *Client) ListProjects(ctx context.Context) ([]domain.Project, error) {
	var projects []domain.Project
	if err := c.get(ctx, "/api/projects/", &projects); err != nil {
		return nil, fmt.Errorf("client.ListProjects: %w", err)
	}
	return projects, nil
}

func (c *Client) CreateProject(ctx context.Context, req domain.ProjectCreate) (*domain.Project, error) {
	var p domain.Project
	if err := c.post(ctx, "/api/projects/", req, &p); err != nil {
		return nil, fmt.Errorf("client.CreateProject: %w", err)
	}
	return &p, nil
}

func (c *Client) UpdateProject(ctx context.Context, id int, upd domain.ProjectUpdate) (*domain.Project, error) {
	var p domain.Project
	if err := c.patch(ctx, fmt.Sprintf("/api/projects/%d", id), upd, &p); err != nil {
		return nil, fmt.Errorf("client.UpdateProject: %w", err)
	}
	return &p, nil
}

func (c *Client) DeleteProject(ctx context.Context, id int) error {
	if err := c.delete(ctx, fmt.Sprintf("/api/projects/%d", id)); err != nil {
		return fmt.Errorf("client.DeleteProject: %w", err)
	}
	return nil
}
