package api

import (
	"context"
	"net/http"

	"github.com/mfekih/jobtrack/internal/model"
)

// Me resolves the identity behind the stored credential.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
