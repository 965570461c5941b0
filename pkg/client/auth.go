package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/tw-accounting/twacc/pkg/domain"
)

// Login exchanges credentials for an access token. The endpoint expects an
// OAuth2 password form, not JSON.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthToken, error) {
	form := url.Values{}
	form.Set("username", creds.Username)
	form.Set("password", creds.Password)
	var tok domain.AuthToken
	if err := c.postForm(ctx, "/api/auth/login", form, &tok); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	return &tok, nil
}

// Register creates a new user. It does not log the user in.
func (c *Client) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	var u domain.User
	if err := c.post(ctx, "/api/auth/register", req, &u); err != nil {
		return nil, fmt.Errorf("client.Register: %w", err)
	}
	return &u, nil
}

// GetMe returns the authenticated user's profile.
func (c *Client) GetMe(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := c.get(ctx, "/api/auth/me", &u); err != nil {
		return nil, fmt.Errorf("client.GetMe: %w", err)
	}
	return &u, nil
}

// GetMeWithToken fetches the profile for token regardless of what the token
// store currently holds. Used right after login, before the token is stored.
func (c *Client) GetMeWithToken(ctx context.Context, token string) (*domain.User, error) {
	return c.WithToken(token).GetMe(ctx)
}

// UpdateMe sends a partial profile update and returns the full updated user.
func (c *Client) UpdateMe(ctx context.Context, upd domain.ProfileUpdate) (*domain.User, error) {
	var u domain.User
	if err := c.patch(ctx, "/api/auth/me", upd, &u); err != nil {
		return nil, fmt.Errorf("client.UpdateMe: %w", err)
	}
	return &u, nil
}
