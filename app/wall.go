package app

import (
	"context"

	"wallterm/domain"
)

// WallService manages wall membership.
type WallService interface {
	// Walls lists the walls visible to the current user.
	Walls(ctx context.Context) ([]domain.Wall, error)

	// Join requests membership of a wall. pending is true when the wall
	// requires admin approval and the join is not yet effective.
	Join(ctx context.Context, wallID string) (pending bool, err error)

	// Leave drops membership of a wall.
	Leave(ctx context.Context, wallID string) error
}
