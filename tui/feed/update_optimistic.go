package feed

import (
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"wallterm/domain"
	"wallterm/wall"
)

// Staging helpers. Each stages an optimistic mutation and returns the API
// command, or defers the intent when the target already has an unresolved
// operation. A nil command means nothing was dispatched.

func (m *Model) stageLike(id string) tea.Cmd {
	if err := m.engine.StageLike(id); err != nil {
		if errors.Is(err, wall.ErrOperationPending) {
			m.engine.Defer(id, likeIntent{ID: id})
			return nil
		}
		m.errText = err.Error()
		return nil
	}
	return m.toggleLike(id)
}

func (m *Model) stageReaction(id, emoji string) tea.Cmd {
	if err := m.engine.StageReaction(id, emoji); err != nil {
		if errors.Is(err, wall.ErrOperationPending) {
			m.engine.Defer(id, reactionIntent{ID: id, Emoji: emoji})
			return nil
		}
		m.errText = err.Error()
		return nil
	}
	isComment := m.engine.Arena().Parent(id) != ""
	return m.toggleReaction(id, emoji, isComment)
}

func (m *Model) stageEdit(id, content string) tea.Cmd {
	if err := m.engine.StageEdit(id, content, time.Now()); err != nil {
		if errors.Is(err, wall.ErrOperationPending) {
			m.engine.Defer(id, editIntent{ID: id, Content: content})
			return nil
		}
		m.errText = err.Error()
		return nil
	}
	return m.editMessage(id, content)
}

func (m *Model) stageDelete(id string) tea.Cmd {
	if err := m.engine.StageDelete(id); err != nil {
		if errors.Is(err, wall.ErrOperationPending) {
			m.engine.Defer(id, deleteIntent{ID: id})
			return nil
		}
		m.errText = err.Error()
		return nil
	}
	return m.deleteMessage(id)
}

func (m *Model) stageCreate(content string, attachments []domain.Attachment) tea.Cmd {
	tags := domain.ExtractTags(content)
	item := domain.FeedItem{
		ID:          wall.NewLocalID(),
		AuthorID:    m.userID,
		AuthorName:  "you",
		Content:     content,
		CreatedAt:   time.Now(),
		Attachments: attachments,
		Tags:        tags,
		IsOwn:       true,
	}
	if err := m.engine.StageCreateMessage(item); err != nil {
		m.errText = err.Error()
		return nil
	}
	m.pager.AddRoot(item.ID, item.CreatedAt)
	if m.cursor > 0 {
		m.cursor++
	}
	return m.createMessage(item.ID, content, attachments, tags)
}

func (m *Model) stageComment(messageID, parentCommentID, content string, attachments []domain.Attachment) tea.Cmd {
	parentID := messageID
	if parentCommentID != "" {
		parentID = parentCommentID
	}
	item := domain.FeedItem{
		ID:          wall.NewLocalCommentID(),
		AuthorID:    m.userID,
		AuthorName:  "you",
		Content:     content,
		CreatedAt:   time.Now(),
		Attachments: attachments,
		IsOwn:       true,
	}
	if parentCommentID != "" {
		item.ParentID = parentCommentID
	}
	if err := m.engine.StageCreateComment(parentID, item); err != nil {
		if errors.Is(err, wall.ErrOperationPending) {
			m.engine.Defer(parentID, commentIntent{
				MessageID:       messageID,
				ParentCommentID: parentCommentID,
				Content:         content,
				Attachments:     attachments,
			})
			return nil
		}
		m.errText = err.Error()
		return nil
	}
	return m.addComment(item.ID, messageID, content, parentCommentID, attachments)
}

// Result handlers. Every handler resolves the pending operation and replays
// whatever was queued behind it.

func (m Model) updateCreateResult(msg CreateResultMsg) (Model, tea.Cmd) {
	if msg.WallID != m.wallID {
		return m, nil
	}
	var deferred []any
	if msg.Err != nil {
		deferred = m.engine.RollbackCreate(msg.TempID)
		m.pager.RemoveRoot(msg.TempID)
		m.errText = "Post failed: " + msg.Err.Error()
		if m.cursor > 0 {
			m.cursor--
		}
	} else {
		item := msg.Item
		item.IsOwn = true
		var err error
		deferred, err = m.engine.CommitCreate(msg.TempID, item)
		if err != nil {
			// The staged entity vanished (refresh replaced the tree); the
			// confirmed message arrives with the next page.
			return m, nil
		}
		m.pager.ReplaceID(msg.TempID, item.ID)
		m.notice = "Posted."
	}
	return m, m.batchReplay(deferred)
}

func (m Model) updateCommentResult(msg CommentResultMsg) (Model, tea.Cmd) {
	if msg.WallID != m.wallID {
		return m, nil
	}
	var deferred []any
	if msg.Err != nil {
		deferred = m.engine.RollbackCreate(msg.TempID)
		m.errText = "Comment failed: " + msg.Err.Error()
	} else {
		item := msg.Item
		item.IsOwn = true
		var err error
		deferred, err = m.engine.CommitCreate(msg.TempID, item)
		if err != nil {
			return m, nil
		}
	}
	return m, m.batchReplay(deferred)
}

func (m Model) updateEditResult(msg EditResultMsg) (Model, tea.Cmd) {
	if msg.WallID != m.wallID {
		return m, nil
	}
	var deferred []any
	if msg.Err != nil {
		deferred = m.engine.RollbackEdit(msg.ID)
		m.errText = "Edit failed: " + msg.Err.Error()
	} else {
		deferred = m.engine.CommitEdit(msg.ID)
		m.notice = "Updated."
	}
	return m, m.batchReplay(deferred)
}

func (m Model) updateDeleteResult(msg DeleteResultMsg) (Model, tea.Cmd) {
	if msg.WallID != m.wallID {
		return m, nil
	}
	var deferred []any
	if msg.Err != nil {
		deferred = m.engine.RollbackDelete(msg.ID)
		m.errText = "Delete failed: " + msg.Err.Error()
	} else {
		deferred = m.engine.CommitDelete(msg.ID)
		m.pager.RemoveRoot(msg.ID)
		m.notice = "Deleted."
		m.clampCursor()
	}
	return m, m.batchReplay(deferred)
}

func (m Model) updateLikeResult(msg LikeResultMsg) (Model, tea.Cmd) {
	if msg.WallID != m.wallID {
		return m, nil
	}
	var deferred []any
	if msg.Err != nil {
		deferred = m.engine.RollbackLike(msg.ID)
		m.errText = "Like failed: " + msg.Err.Error()
	} else {
		deferred = m.engine.CommitLike(msg.ID, msg.Likes, msg.Liked)
	}
	return m, m.batchReplay(deferred)
}

func (m Model) updateReactionResult(msg ReactionResultMsg) (Model, tea.Cmd) {
	if msg.WallID != m.wallID {
		return m, nil
	}
	var deferred []any
	if msg.Err != nil {
		deferred = m.engine.RollbackReaction(msg.ID)
		m.errText = "Reaction failed: " + msg.Err.Error()
	} else {
		deferred = m.engine.CommitReactions(msg.ID, msg.Reactions, msg.Mine)
	}
	return m, m.batchReplay(deferred)
}

func (m *Model) batchReplay(deferred []any) tea.Cmd {
	cmds := m.replayDeferred(deferred)
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func (m *Model) clampCursor() {
	n := len(m.engine.Arena().RootIDs())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
