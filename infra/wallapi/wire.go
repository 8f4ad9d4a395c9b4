package wallapi

import (
	"time"

	"wallterm/domain"
)

// Wire shapes for the wall server's JSON API. Reactions come over the wire
// as an array of per-emoji tallies and are folded into the domain map.

type rawAuthor struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl"`
}

type rawAttachment struct {
	Type       string `json:"type"`
	URL        string `json:"url"`
	Filename   string `json:"filename"`
	Transcoded bool   `json:"transcoded"`
}

type rawReaction struct {
	Emoji string   `json:"emoji"`
	Count int      `json:"count"`
	Users []string `json:"users"`
}

type rawMessage struct {
	ID            string          `json:"id"`
	Author        rawAuthor       `json:"author"`
	Content       string          `json:"content"`
	CreatedAt     time.Time       `json:"createdAt"`
	Attachments   []rawAttachment `json:"attachments"`
	LikesCount    int             `json:"likesCount"`
	HasLiked      bool            `json:"hasLiked"`
	CommentsCount int             `json:"commentsCount"`
	Tags          []string        `json:"tags"`
	Edited        bool            `json:"edited"`
	EditedAt      time.Time       `json:"editedAt"`
	Reactions     []rawReaction   `json:"reactions"`
}

type rawComment struct {
	rawMessage
	MessageID       string `json:"messageId"`
	ParentCommentID string `json:"parentCommentId"`
}

type rawWall struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	Category         string `json:"category"`
	ParticipantCount int    `json:"participantCount"`
	IsMember         bool   `json:"isMember"`
	IsAdmin          bool   `json:"isAdmin"`
	RequiresApproval bool   `json:"requiresApproval"`
}

func reactionMap(raws []rawReaction) map[string]domain.ReactionGroup {
	if len(raws) == 0 {
		return nil
	}
	out := make(map[string]domain.ReactionGroup, len(raws))
	for _, r := range raws {
		if r.Count <= 0 {
			continue
		}
		users := append([]string(nil), r.Users...)
		out[r.Emoji] = domain.ReactionGroup{Count: r.Count, UserIDs: users}
	}
	return out
}

func userReactionIn(raws []rawReaction, userID string) string {
	for _, r := range raws {
		for _, u := range r.Users {
			if u == userID {
				return r.Emoji
			}
		}
	}
	return ""
}

func attachmentsOf(raws []rawAttachment) []domain.Attachment {
	if len(raws) == 0 {
		return nil
	}
	out := make([]domain.Attachment, 0, len(raws))
	for _, a := range raws {
		out = append(out, domain.Attachment{
			Kind:       domain.AttachmentKind(a.Type),
			URL:        a.URL,
			Filename:   a.Filename,
			Transcoded: a.Transcoded,
		})
	}
	return out
}

func rawAttachmentsOf(atts []domain.Attachment) []rawAttachment {
	out := make([]rawAttachment, 0, len(atts))
	for _, a := range atts {
		out = append(out, rawAttachment{
			Type:       string(a.Kind),
			URL:        a.URL,
			Filename:   a.Filename,
			Transcoded: a.Transcoded,
		})
	}
	return out
}

func (m rawMessage) toItem(currentUserID string) domain.FeedItem {
	return domain.FeedItem{
		ID:           m.ID,
		AuthorID:     m.Author.ID,
		AuthorName:   m.Author.Username,
		AvatarURL:    m.Author.AvatarURL,
		Content:      m.Content,
		CreatedAt:    m.CreatedAt,
		Attachments:  attachmentsOf(m.Attachments),
		LikeCount:    m.LikesCount,
		Liked:        m.HasLiked,
		ReplyCount:   m.CommentsCount,
		Tags:         append([]string(nil), m.Tags...),
		Edited:       m.Edited,
		EditedAt:     m.EditedAt,
		Reactions:    reactionMap(m.Reactions),
		UserReaction: userReactionIn(m.Reactions, currentUserID),
		IsOwn:        m.Author.ID == currentUserID,
	}
}

func (c rawComment) toItem(currentUserID string) domain.FeedItem {
	item := c.rawMessage.toItem(currentUserID)
	item.ParentID = c.ParentCommentID
	return item
}

func (w rawWall) toWall() domain.Wall {
	return domain.Wall{
		ID:               w.ID,
		Name:             w.Name,
		Description:      w.Description,
		Category:         w.Category,
		Participants:     w.ParticipantCount,
		IsMember:         w.IsMember,
		IsAdmin:          w.IsAdmin,
		RequiresApproval: w.RequiresApproval,
	}
}
