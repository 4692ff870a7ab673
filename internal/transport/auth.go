package transport

import (
	"context"

	"github.com/mcoot/sovereign-client/internal/model"
)

// Credentials is the login and register payload
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Login exchanges credentials for a token and an initial snapshot
func (c *Client) Login(ctx context.Context, username, password string) (*model.AuthResponse, error) {
	var resp model.AuthResponse
	if err := c.Post(ctx, "/login", Credentials{Username: username, Password: password}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account. The response may be the minimal {token} form
// or carry no token at all; callers handle both.
func (c *Client) Register(ctx context.Context, username, password string) (*model.AuthResponse, error) {
	var resp model.AuthResponse
	if err := c.Post(ctx, "/register", Credentials{Username: username, Password: password}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ChangePassword replaces the current password
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	return c.Post(ctx, "/change_password", changePasswordRequest{
		OldPassword: oldPassword,
		NewPassword: newPassword,
	}, nil)
}
