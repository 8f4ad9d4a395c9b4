package feed

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"wallterm/app"
	"wallterm/domain"
	"wallterm/wall"
)

// Update handles one message. It returns the updated model by value.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case PageLoadedMsg:
		return m.updatePageLoaded(msg)

	case CommentsLoadedMsg:
		return m.updateCommentsLoaded(msg)

	case CreateResultMsg:
		return m.updateCreateResult(msg)

	case CommentResultMsg:
		return m.updateCommentResult(msg)

	case EditResultMsg:
		return m.updateEditResult(msg)

	case DeleteResultMsg:
		return m.updateDeleteResult(msg)

	case LikeResultMsg:
		return m.updateLikeResult(msg)

	case ReactionResultMsg:
		return m.updateReactionResult(msg)

	case ReportResultMsg:
		if msg.WallID != m.wallID {
			return m, nil
		}
		if msg.Err != nil {
			m.errText = "Report failed: " + msg.Err.Error()
		} else {
			m.notice = "Message reported."
		}
		return m, nil

	case WallInfoMsg:
		if msg.WallID != m.wallID {
			return m, nil
		}
		if msg.Err == nil {
			m.wallInfo = msg.Wall
			m.haveInfo = true
		}
		return m, nil

	case JoinResultMsg:
		if msg.WallID != m.wallID {
			return m, nil
		}
		switch {
		case msg.Err != nil:
			m.errText = "Join failed: " + msg.Err.Error()
		case msg.Pending:
			m.notice = "Join request sent, waiting for approval."
		default:
			m.wallInfo.ApplyJoin()
			m.notice = "Joined " + m.wallInfo.Name + "."
		}
		return m, nil

	case LeaveResultMsg:
		if msg.WallID != m.wallID {
			return m, nil
		}
		if msg.Err != nil {
			m.errText = "Leave failed: " + msg.Err.Error()
		} else {
			m.wallInfo.ApplyLeave()
			m.notice = "Left " + m.wallInfo.Name + "."
		}
		return m, nil

	case ComposeDoneMsg:
		return m.updateComposeDone(msg)

	case remoteEventMsg:
		return m.updateRemoteEvent(msg)

	case StreamClosedMsg:
		if msg.WallID != m.wallID {
			return m, nil
		}
		// Retry after a pause; the stream drops on network blips.
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return resubscribeMsg{WallID: msg.WallID}
		})

	case resubscribeMsg:
		if msg.WallID != m.wallID {
			return m, nil
		}
		return m, m.subscribe()

	case flushDateMsg:
		if msg.WallID != m.wallID {
			return m, nil
		}
		m.pager.FlushVisibleDate()
		return m, nil
	}

	return m, nil
}

type resubscribeMsg struct {
	WallID string
}

func (m Model) updatePageLoaded(msg PageLoadedMsg) (Model, tea.Cmd) {
	if msg.WallID != m.wallID || msg.Seq != m.seq {
		return m, nil
	}
	if msg.Err != nil {
		m.pager.FailPage()
		m.errText = "Load failed: " + msg.Err.Error()
		return m, nil
	}

	refresh := m.pager.State() == wall.PageLoading
	arena := m.engine.Arena()
	if refresh {
		// Refresh replaces the tree; staged optimistic entities are resolved
		// or rolled back by their own callbacks, which no-op once gone.
		*arena = *wall.NewArena()
		m.cursor = 0
	}
	for _, it := range msg.Items {
		arena.AppendRoot(it)
	}
	m.pager.CompletePage(msg.Items, len(msg.Items))
	m.errText = ""
	m.observeCursor()
	return m, nil
}

func (m Model) updateCommentsLoaded(msg CommentsLoadedMsg) (Model, tea.Cmd) {
	if msg.WallID != m.wallID || msg.Seq != m.commentSeq {
		return m, nil
	}
	m.threadLoading = false
	if msg.Err != nil {
		m.errText = "Comments failed: " + msg.Err.Error()
		return m, nil
	}
	if err := m.engine.Arena().LoadComments(msg.MessageID, m.userID, msg.Records); err != nil {
		m.errText = err.Error()
		return m, nil
	}
	m.errText = ""
	return m, nil
}

// replayDeferred re-stages mutations that were queued behind a resolved
// operation, in arrival order.
func (m *Model) replayDeferred(deferred []any) []tea.Cmd {
	var cmds []tea.Cmd
	for _, payload := range deferred {
		switch in := payload.(type) {
		case likeIntent:
			if cmd := m.stageLike(in.ID); cmd != nil {
				cmds = append(cmds, cmd)
			}
		case reactionIntent:
			if cmd := m.stageReaction(in.ID, in.Emoji); cmd != nil {
				cmds = append(cmds, cmd)
			}
		case editIntent:
			if cmd := m.stageEdit(in.ID, in.Content); cmd != nil {
				cmds = append(cmds, cmd)
			}
		case deleteIntent:
			if cmd := m.stageDelete(in.ID); cmd != nil {
				cmds = append(cmds, cmd)
			}
		case commentIntent:
			if cmd := m.stageComment(in.MessageID, in.ParentCommentID, in.Content, in.Attachments); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
	}
	return cmds
}

func (m Model) updateRemoteEvent(msg remoteEventMsg) (Model, tea.Cmd) {
	rearm := waitForEvent(m.wallID, msg.ch)
	ev := msg.Event
	if ev.WallID != "" && ev.WallID != m.wallID {
		return m, rearm
	}

	switch ev.Type {
	case app.EventMessageReceived:
		if m.engine.MergeRemoteMessage(ev.Message) {
			m.pager.AddRoot(ev.Message.ID, ev.Message.CreatedAt)
			// A new message above the cursor shifts the selection down one.
			if m.cursor > 0 || m.mode != modeList {
				m.cursor++
			}
		}

	case app.EventVideoProcessed:
		m.engine.Arena().Update(ev.MessageID, func(it *domain.FeedItem) {
			for i := range it.Attachments {
				a := &it.Attachments[i]
				if a.Kind == domain.AttachmentVideo && !a.Transcoded {
					a.URL = ev.HLSPath
					a.Transcoded = true
				}
			}
		})

	case app.EventCallReceived:
		m.notice = "Incoming call from " + ev.Caller + "."
	}
	return m, rearm
}
