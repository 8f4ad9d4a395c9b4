package wallapi

import (
	"context"
	"encoding/json"
	"fmt"
)

// CurrentUserID returns the authenticated user's identity. Services mark own
// items and derive the user's reactions with it.
func (c *Client) CurrentUserID(ctx context.Context) (string, error) {
	data, err := c.Get(ctx, "/api/v1/me")
	if err != nil {
		return "", fmt.Errorf("fetching current user: %w", err)
	}

	var resp struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("parsing current user: %w", err)
	}
	return resp.User.ID, nil
}
