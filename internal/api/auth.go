package api

import (
	"context"
	"net/http"

	"github.com/nurpe/drillfleet/internal/model"
)

// Login exchanges credentials for a token. It does not require an existing session.
func (c *Client) Login(ctx context.Context, creds model.LoginCredentials) (*model.AuthResponse, error) {
	var resp model.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login/", creds, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Register(ctx context.Context, creds model.RegisterCredentials) (*model.AuthResponse, error) {
	var resp model.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register/", creds, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.post(ctx, "/auth/logout/", nil, nil)
}

// CurrentUser returns the profile the token belongs to.
func (c *Client) CurrentUser(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.get(ctx, "/auth/user/", &user); err != nil {
		return nil, err
	}
	return &user, nil
}
