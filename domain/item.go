package domain

import "time"

// AttachmentKind classifies a feed item attachment.
type AttachmentKind string

const (
	AttachmentImage   AttachmentKind = "image"
	AttachmentVideo   AttachmentKind = "video"
	AttachmentGIF     AttachmentKind = "gif"
	AttachmentSticker AttachmentKind = "sticker"
)

// Attachment describes a single piece of media attached to a feed item.
type Attachment struct {
	Kind       AttachmentKind
	URL        string
	Filename   string
	Transcoded bool // True once server-side video processing finished.
}

// ReactionGroup holds the per-emoji tally for a feed item.
type ReactionGroup struct {
	Count   int
	UserIDs []string
}

// FeedItem is the unified shape for wall messages and comments.
//
// Identity is either a server-assigned ID or a temporary local ID carrying
// the LocalIDPrefix until the server confirms the entity.
type FeedItem struct {
	ID          string
	AuthorID    string
	AuthorName  string
	AvatarURL   string
	Content     string
	CreatedAt   time.Time
	Attachments []Attachment
	LikeCount   int
	Liked       bool
	// ReplyCount is a cached denormalization from the server. Children are
	// lazily fetched, so it may disagree with the loaded child list length
	// and must never be recomputed by counting children.
	ReplyCount   int
	Tags         []string
	Edited       bool
	EditedAt     time.Time
	Reactions    map[string]ReactionGroup
	UserReaction string // At most one emoji, empty if none.

	// Comment-only fields.
	ParentID string // Parent comment ID; empty for messages and root comments.
	IsOwn    bool   // True if the item belongs to the authenticated user.
}

// LocalIDPrefix marks identities that have not been confirmed by the server.
const LocalIDPrefix = "local-"

// IsLocal reports whether the item still carries a temporary identity.
func (f FeedItem) IsLocal() bool {
	return len(f.ID) >= len(LocalIDPrefix) && f.ID[:len(LocalIDPrefix)] == LocalIDPrefix
}

// CloneReactions deep-copies the reaction map so snapshots cannot alias
// live state.
func CloneReactions(in map[string]ReactionGroup) map[string]ReactionGroup {
	if in == nil {
		return nil
	}
	out := make(map[string]ReactionGroup, len(in))
	for emoji, g := range in {
		users := make([]string, len(g.UserIDs))
		copy(users, g.UserIDs)
		out[emoji] = ReactionGroup{Count: g.Count, UserIDs: users}
	}
	return out
}

// Clone deep-copies the item, including attachments, tags and reactions.
func (f FeedItem) Clone() FeedItem {
	out := f
	out.Attachments = append([]Attachment(nil), f.Attachments...)
	out.Tags = append([]string(nil), f.Tags...)
	out.Reactions = CloneReactions(f.Reactions)
	return out
}
