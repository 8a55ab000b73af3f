package client

import (
	"context"
	"net/http"
	"strings"

	"todo-planner/internal/model"
	"todo-planner/internal/validation"
)

// SignUp creates an account and stores the returned token in the session.
func (c *Client) SignUp(ctx context.Context, creds model.Credentials) (model.AuthResult, error) {
	return c.authenticate(ctx, "/api/auth/signup", creds)
}

// Login signs in and stores the returned token in the session.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (model.AuthResult, error) {
	return c.authenticate(ctx, "/api/auth/login", creds)
}

func (c *Client) authenticate(ctx context.Context, path string, creds model.Credentials) (model.AuthResult, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if err := validation.Credentials(creds); err != nil {
		return model.AuthResult{}, ValidationError(err)
	}

	var result model.AuthResult
	if err := c.do(ctx, http.MethodPost, path, nil, creds, &result); err != nil {
		return model.AuthResult{}, err
	}
	c.session.Set(result)
	c.logger.InfoContext(ctx, "Signed in", "user_id", result.User.ID)
	return result, nil
}

// Me fetches the current user and refreshes the session copy.
func (c *Client) Me(ctx context.Context) (model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &user); err != nil {
		return model.User{}, err
	}
	c.session.SetUser(user)
	return user, nil
}

// Logout revokes the token on the server when possible. The local session
// is cleared whether or not the request succeeds.
func (c *Client) Logout(ctx context.Context) error {
	defer c.session.Clear()
	if !c.session.Authenticated() {
		return nil
	}
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil)
	if err != nil {
		c.logger.WarnContext(ctx, "Server logout failed", "error", err)
	}
	return err
}
