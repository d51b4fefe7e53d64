package api

import (
	"context"
	"net/http"

	"github.com/mfekih/jobtrack/internal/model"
)

// Stats fetches the aggregate snapshot. No parameters, no pagination.
func (c *Client) Stats(ctx context.Context) (*model.Stats, error) {
	var stats model.Stats
	if err := c.do(ctx, http.MethodGet, "/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
