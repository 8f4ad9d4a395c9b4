package app

import (
	"context"

	"wallterm/domain"
)

// FeedService talks to the wall server for messages, comments, likes and
// reactions. Implementations live in infra.
type FeedService interface {
	// WallMessages returns one page of a wall's messages, newest first.
	// Pages are 1-indexed.
	WallMessages(ctx context.Context, wallID string, page, limit int) ([]domain.FeedItem, error)

	// CreateMessage publishes a new message on a wall.
	CreateMessage(ctx context.Context, wallID, content string, attachments []domain.Attachment, tags []string) (domain.FeedItem, error)

	// UpdateMessage replaces a message's content.
	UpdateMessage(ctx context.Context, id, content string) error

	// DeleteMessage removes a message.
	DeleteMessage(ctx context.Context, id string) error

	// ToggleLike flips the current user's like and returns the server's
	// authoritative count and state.
	ToggleLike(ctx context.Context, id string) (likes int, liked bool, err error)

	// ToggleReaction flips the current user's emoji reaction on a message and
	// returns the server's authoritative reaction map and the user's
	// resulting reaction (empty if removed).
	ToggleReaction(ctx context.Context, id, emoji string) (map[string]domain.ReactionGroup, string, error)

	// Comments returns the flat, unordered comment records of a message.
	Comments(ctx context.Context, messageID string) ([]domain.FeedItem, error)

	// AddComment posts a comment, optionally as a reply to another comment.
	AddComment(ctx context.Context, messageID, content, parentCommentID string, attachments []domain.Attachment) (domain.FeedItem, error)

	// ToggleCommentReaction is ToggleReaction for comments.
	ToggleCommentReaction(ctx context.Context, commentID, emoji string) (map[string]domain.ReactionGroup, string, error)

	// Report flags a message for moderation.
	Report(ctx context.Context, id, reason string) error
}
