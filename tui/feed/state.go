package feed

import (
	"time"

	"wallterm/domain"
)

// Messages produced by background commands. Every message carries the wall
// ID it was requested for; responses for a wall that is no longer active are
// dropped. Page loads additionally carry the request sequence number so a
// refresh invalidates responses of superseded requests.

// PageLoadedMsg delivers one fetched page of wall messages.
type PageLoadedMsg struct {
	WallID string
	Seq    int
	Page   int
	Items  []domain.FeedItem
	Err    error
}

// CommentsLoadedMsg delivers the flat comment records of a message.
type CommentsLoadedMsg struct {
	WallID    string
	MessageID string
	Seq       int
	Records   []domain.FeedItem
	Err       error
}

// CreateResultMsg resolves an optimistic message creation.
type CreateResultMsg struct {
	WallID string
	TempID string
	Item   domain.FeedItem
	Err    error
}

// CommentResultMsg resolves an optimistic comment creation.
type CommentResultMsg struct {
	WallID string
	TempID string
	Item   domain.FeedItem
	Err    error
}

// EditResultMsg resolves an optimistic edit.
type EditResultMsg struct {
	WallID string
	ID     string
	Err    error
}

// DeleteResultMsg resolves an optimistic delete.
type DeleteResultMsg struct {
	WallID string
	ID     string
	Err    error
}

// LikeResultMsg resolves an optimistic like toggle with the server's
// authoritative count.
type LikeResultMsg struct {
	WallID string
	ID     string
	Likes  int
	Liked  bool
	Err    error
}

// ReactionResultMsg resolves an optimistic reaction toggle with the server's
// authoritative reaction map.
type ReactionResultMsg struct {
	WallID    string
	ID        string
	Reactions map[string]domain.ReactionGroup
	Mine      string
	Err       error
}

// ReportResultMsg resolves a moderation report.
type ReportResultMsg struct {
	WallID string
	ID     string
	Err    error
}

// WallInfoMsg delivers the active wall's metadata.
type WallInfoMsg struct {
	WallID string
	Wall   domain.Wall
	Err    error
}

// JoinResultMsg resolves a join request.
type JoinResultMsg struct {
	WallID  string
	Pending bool
	Err     error
}

// LeaveResultMsg resolves a leave request.
type LeaveResultMsg struct {
	WallID string
	Err    error
}

// StreamClosedMsg signals that the push stream ended and a resubscribe is due.
type StreamClosedMsg struct {
	WallID string
}

// flushDateMsg fires after scrolling settles to force-publish the in-view
// date past the throttle.
type flushDateMsg struct {
	WallID string
}

// ComposeRequestMsg asks the root model to open the composer. Exactly one of
// the target fields is set: empty for a new message, EditID for an edit,
// ReplyToMessageID (plus optional ReplyToCommentID) for a comment.
type ComposeRequestMsg struct {
	Inline  bool
	Content string // Pre-filled content when editing.

	EditID           string
	ReplyToMessageID string
	ReplyToCommentID string
	ReplyToAuthor    string
}

// ComposeDoneMsg returns the composer's outcome to the feed. Cancelled set
// means no mutation should be staged.
type ComposeDoneMsg struct {
	Cancelled   bool
	Content     string
	Attachments []domain.Attachment

	EditID           string
	ReplyToMessageID string
	ReplyToCommentID string
}

// Deferred mutation intents, queued on the engine while the target entity
// has an unresolved operation and replayed on resolution.

type editIntent struct {
	ID      string
	Content string
}

type deleteIntent struct {
	ID string
}

type likeIntent struct {
	ID string
}

type reactionIntent struct {
	ID    string
	Emoji string
}

type commentIntent struct {
	MessageID       string
	ParentCommentID string
	Content         string
	Attachments     []domain.Attachment
}

// reactionPalette is the fixed emoji choice offered by the react prompt.
var reactionPalette = []string{"👍", "❤️", "😂", "😮", "😢", "🔥"}

// jumpDateLayout is the accepted input format of the go-to-date prompt.
const jumpDateLayout = "2006-01-02"

// scrollSettleDelay is how long the cursor must rest before the in-view date
// is force-published.
const scrollSettleDelay = 300 * time.Millisecond
