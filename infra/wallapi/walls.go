package wallapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"wallterm/app"
	"wallterm/domain"
)

type wallService struct {
	client *Client
}

// NewWallService creates the wall server implementation of app.WallService.
func NewWallService(client *Client) app.WallService {
	return &wallService{client: client}
}

func (s *wallService) Walls(ctx context.Context) ([]domain.Wall, error) {
	data, err := s.client.Get(ctx, "/api/v1/walls")
	if err != nil {
		return nil, fmt.Errorf("listing walls: %w", err)
	}

	var resp struct {
		Walls []rawWall `json:"walls"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parsing walls: %w", err)
	}

	walls := make([]domain.Wall, 0, len(resp.Walls))
	for _, w := range resp.Walls {
		walls = append(walls, w.toWall())
	}
	return walls, nil
}

func (s *wallService) Join(ctx context.Context, wallID string) (bool, error) {
	data, err := s.client.PostJSON(ctx, "/api/v1/walls/"+url.PathEscape(wallID)+"/join", nil)
	if err != nil {
		return false, fmt.Errorf("joining wall: %w", err)
	}

	var resp struct {
		Pending bool `json:"pending"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return false, fmt.Errorf("parsing join response: %w", err)
	}
	return resp.Pending, nil
}

func (s *wallService) Leave(ctx context.Context, wallID string) error {
	if _, err := s.client.PostJSON(ctx, "/api/v1/walls/"+url.PathEscape(wallID)+"/leave", nil); err != nil {
		return fmt.Errorf("leaving wall: %w", err)
	}
	return nil
}
