package wallapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"wallterm/app"
	"wallterm/domain"
)

type feedService struct {
	client        *Client
	currentUserID string
}

// NewFeedService creates the wall server implementation of app.FeedService.
// currentUserID is used to mark the user's own items and reactions.
func NewFeedService(client *Client, currentUserID string) app.FeedService {
	return &feedService{client: client, currentUserID: currentUserID}
}

func (s *feedService) WallMessages(ctx context.Context, wallID string, page, limit int) ([]domain.FeedItem, error) {
	path := fmt.Sprintf("/api/v1/walls/%s/messages?page=%d&limit=%d", url.PathEscape(wallID), page, limit)
	data, err := s.client.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("fetching messages: %w", err)
	}

	var resp struct {
		Messages []rawMessage `json:"messages"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parsing messages: %w", err)
	}

	items := make([]domain.FeedItem, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		items = append(items, m.toItem(s.currentUserID))
	}
	return items, nil
}

func (s *feedService) CreateMessage(ctx context.Context, wallID, content string, attachments []domain.Attachment, tags []string) (domain.FeedItem, error) {
	body := struct {
		WallID      string          `json:"wallId"`
		Content     string          `json:"content"`
		Attachments []rawAttachment `json:"attachments,omitempty"`
		Tags        []string        `json:"tags,omitempty"`
	}{
		WallID:      wallID,
		Content:     content,
		Attachments: rawAttachmentsOf(attachments),
		Tags:        tags,
	}

	data, err := s.client.PostJSON(ctx, "/api/v1/messages", body)
	if err != nil {
		return domain.FeedItem{}, fmt.Errorf("posting message: %w", err)
	}

	var resp struct {
		Message rawMessage `json:"message"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return domain.FeedItem{}, fmt.Errorf("parsing posted message: %w", err)
	}
	return resp.Message.toItem(s.currentUserID), nil
}

func (s *feedService) UpdateMessage(ctx context.Context, id, content string) error {
	body := struct {
		Content string `json:"content"`
	}{Content: content}

	if _, err := s.client.PutJSON(ctx, "/api/v1/messages/"+url.PathEscape(id), body); err != nil {
		return fmt.Errorf("updating message: %w", err)
	}
	return nil
}

func (s *feedService) DeleteMessage(ctx context.Context, id string) error {
	if _, err := s.client.Delete(ctx, "/api/v1/messages/"+url.PathEscape(id)); err != nil {
		return fmt.Errorf("deleting message: %w", err)
	}
	return nil
}

func (s *feedService) ToggleLike(ctx context.Context, id string) (int, bool, error) {
	data, err := s.client.PostJSON(ctx, "/api/v1/messages/"+url.PathEscape(id)+"/like", nil)
	if err != nil {
		return 0, false, fmt.Errorf("toggling like: %w", err)
	}

	var resp struct {
		LikesCount int  `json:"likesCount"`
		HasLiked   bool `json:"hasLiked"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return 0, false, fmt.Errorf("parsing like response: %w", err)
	}
	return resp.LikesCount, resp.HasLiked, nil
}

func (s *feedService) ToggleReaction(ctx context.Context, id, emoji string) (map[string]domain.ReactionGroup, string, error) {
	return s.toggleReaction(ctx, "/api/v1/messages/"+url.PathEscape(id)+"/reactions", emoji)
}

func (s *feedService) ToggleCommentReaction(ctx context.Context, commentID, emoji string) (map[string]domain.ReactionGroup, string, error) {
	return s.toggleReaction(ctx, "/api/v1/comments/"+url.PathEscape(commentID)+"/reactions", emoji)
}

func (s *feedService) toggleReaction(ctx context.Context, path, emoji string) (map[string]domain.ReactionGroup, string, error) {
	body := struct {
		Emoji string `json:"emoji"`
	}{Emoji: emoji}

	data, err := s.client.PostJSON(ctx, path, body)
	if err != nil {
		return nil, "", fmt.Errorf("toggling reaction: %w", err)
	}

	var resp struct {
		Reactions []rawReaction `json:"reactions"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, "", fmt.Errorf("parsing reaction response: %w", err)
	}
	return reactionMap(resp.Reactions), userReactionIn(resp.Reactions, s.currentUserID), nil
}

func (s *feedService) Comments(ctx context.Context, messageID string) ([]domain.FeedItem, error) {
	data, err := s.client.Get(ctx, "/api/v1/messages/"+url.PathEscape(messageID)+"/comments")
	if err != nil {
		return nil, fmt.Errorf("fetching comments: %w", err)
	}

	var resp struct {
		Comments []rawComment `json:"comments"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parsing comments: %w", err)
	}

	items := make([]domain.FeedItem, 0, len(resp.Comments))
	for _, c := range resp.Comments {
		items = append(items, c.toItem(s.currentUserID))
	}
	return items, nil
}

func (s *feedService) AddComment(ctx context.Context, messageID, content, parentCommentID string, attachments []domain.Attachment) (domain.FeedItem, error) {
	body := struct {
		Content         string          `json:"content"`
		ParentCommentID string          `json:"parentCommentId,omitempty"`
		Attachments     []rawAttachment `json:"attachments,omitempty"`
	}{
		Content:         content,
		ParentCommentID: parentCommentID,
		Attachments:     rawAttachmentsOf(attachments),
	}

	data, err := s.client.PostJSON(ctx, "/api/v1/messages/"+url.PathEscape(messageID)+"/comments", body)
	if err != nil {
		return domain.FeedItem{}, fmt.Errorf("posting comment: %w", err)
	}

	var resp struct {
		Comment rawComment `json:"comment"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return domain.FeedItem{}, fmt.Errorf("parsing posted comment: %w", err)
	}
	return resp.Comment.toItem(s.currentUserID), nil
}

func (s *feedService) Report(ctx context.Context, id, reason string) error {
	body := struct {
		Reason string `json:"reason"`
	}{Reason: reason}

	if _, err := s.client.PostJSON(ctx, "/api/v1/messages/"+url.PathEscape(id)+"/report", body); err != nil {
		return fmt.Errorf("reporting message: %w", err)
	}
	return nil
}
