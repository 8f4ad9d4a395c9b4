package feed

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"wallterm/app"
	"wallterm/domain"
	"wallterm/wall"
)

func (m Model) loadPage(page int) tea.Cmd {
	wallID, seq := m.wallID, m.seq
	return func() tea.Msg {
		items, err := m.svc.WallMessages(context.Background(), wallID, page, wall.PageSize)
		return PageLoadedMsg{WallID: wallID, Seq: seq, Page: page, Items: items, Err: err}
	}
}

func (m Model) loadComments(messageID string) tea.Cmd {
	wallID, seq := m.wallID, m.commentSeq
	return func() tea.Msg {
		records, err := m.svc.Comments(context.Background(), messageID)
		return CommentsLoadedMsg{WallID: wallID, MessageID: messageID, Seq: seq, Records: records, Err: err}
	}
}

func (m Model) createMessage(tempID, content string, attachments []domain.Attachment, tags []string) tea.Cmd {
	wallID := m.wallID
	return func() tea.Msg {
		item, err := m.svc.CreateMessage(context.Background(), wallID, content, attachments, tags)
		return CreateResultMsg{WallID: wallID, TempID: tempID, Item: item, Err: err}
	}
}

func (m Model) addComment(tempID, messageID, content, parentCommentID string, attachments []domain.Attachment) tea.Cmd {
	wallID := m.wallID
	return func() tea.Msg {
		item, err := m.svc.AddComment(context.Background(), messageID, content, parentCommentID, attachments)
		return CommentResultMsg{WallID: wallID, TempID: tempID, Item: item, Err: err}
	}
}

func (m Model) editMessage(id, content string) tea.Cmd {
	wallID := m.wallID
	return func() tea.Msg {
		err := m.svc.UpdateMessage(context.Background(), id, content)
		return EditResultMsg{WallID: wallID, ID: id, Err: err}
	}
}

func (m Model) deleteMessage(id string) tea.Cmd {
	wallID := m.wallID
	return func() tea.Msg {
		err := m.svc.DeleteMessage(context.Background(), id)
		return DeleteResultMsg{WallID: wallID, ID: id, Err: err}
	}
}

func (m Model) toggleLike(id string) tea.Cmd {
	wallID := m.wallID
	return func() tea.Msg {
		likes, liked, err := m.svc.ToggleLike(context.Background(), id)
		return LikeResultMsg{WallID: wallID, ID: id, Likes: likes, Liked: liked, Err: err}
	}
}

// toggleReaction targets a message or a comment; the arena does not care,
// but the API routes them differently.
func (m Model) toggleReaction(id, emoji string, isComment bool) tea.Cmd {
	wallID := m.wallID
	return func() tea.Msg {
		var (
			reactions map[string]domain.ReactionGroup
			mine      string
			err       error
		)
		if isComment {
			reactions, mine, err = m.svc.ToggleCommentReaction(context.Background(), id, emoji)
		} else {
			reactions, mine, err = m.svc.ToggleReaction(context.Background(), id, emoji)
		}
		return ReactionResultMsg{WallID: wallID, ID: id, Reactions: reactions, Mine: mine, Err: err}
	}
}

func (m Model) reportMessage(id, reason string) tea.Cmd {
	wallID := m.wallID
	return func() tea.Msg {
		err := m.svc.Report(context.Background(), id, reason)
		return ReportResultMsg{WallID: wallID, ID: id, Err: err}
	}
}

func (m Model) loadWallInfo() tea.Cmd {
	wallID := m.wallID
	return func() tea.Msg {
		walls, err := m.walls.Walls(context.Background())
		if err != nil {
			return WallInfoMsg{WallID: wallID, Err: err}
		}
		for _, w := range walls {
			if w.ID == wallID {
				return WallInfoMsg{WallID: wallID, Wall: w}
			}
		}
		return WallInfoMsg{WallID: wallID, Err: domain.ErrNotMember}
	}
}

func (m Model) joinWall() tea.Cmd {
	wallID := m.wallID
	return func() tea.Msg {
		pending, err := m.walls.Join(context.Background(), wallID)
		return JoinResultMsg{WallID: wallID, Pending: pending, Err: err}
	}
}

func (m Model) leaveWall() tea.Cmd {
	wallID := m.wallID
	return func() tea.Msg {
		err := m.walls.Leave(context.Background(), wallID)
		return LeaveResultMsg{WallID: wallID, Err: err}
	}
}

// subscribe opens the push stream and hands the channel to waitForEvent.
func (m Model) subscribe() tea.Cmd {
	wallID := m.wallID
	stream := m.stream
	return func() tea.Msg {
		ch, err := stream.Subscribe(context.Background(), wallID)
		if err != nil {
			return StreamClosedMsg{WallID: wallID}
		}
		return waitForEvent(wallID, ch)()
	}
}

// waitForEvent blocks on the next push event. Each delivered event re-arms
// itself from the update loop.
func waitForEvent(wallID string, ch <-chan app.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return StreamClosedMsg{WallID: wallID}
		}
		return remoteEventMsg{Event: ev, ch: ch}
	}
}

// remoteEventMsg is the internal carrier that keeps the channel for re-arming.
type remoteEventMsg struct {
	Event app.Event
	ch    <-chan app.Event
}
