package app

import (
	"context"

	"wallterm/domain"
)

// EventType tags a push event from the wall server.
type EventType string

const (
	EventMessageReceived EventType = "messageReceived"
	EventVideoProcessed  EventType = "videoProcessed"
	EventCallReceived    EventType = "callReceived"
)

// Event is a push event scoped to a joined wall.
type Event struct {
	Type   EventType
	WallID string

	// messageReceived
	Message domain.FeedItem

	// videoProcessed
	MessageID string
	VideoID   string
	HLSPath   string

	// callReceived
	Caller string
}

// EventStream delivers push events for a wall until ctx is cancelled.
type EventStream interface {
	Subscribe(ctx context.Context, wallID string) (<-chan Event, error)
}
