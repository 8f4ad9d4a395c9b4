package feed

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"wallterm/tui/common"
)

func (m Model) updateKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	keys := common.DefaultKeyMap()

	switch m.mode {
	case modeJumpPrompt:
		return m.updateJumpPrompt(msg, keys)
	case modeReactPrompt:
		return m.updateReactPrompt(msg, keys)
	case modeConfirmDelete:
		return m.updateConfirm(msg, true)
	case modeConfirmReport:
		return m.updateConfirm(msg, false)
	}

	// Transient text clears on the next interaction.
	m.notice = ""
	m.errText = ""

	switch {
	case key.Matches(msg, keys.Up):
		m.moveCursor(-1)
		return m, m.scheduleDateFlush()

	case key.Matches(msg, keys.Down):
		moved := m.moveCursor(1)
		// Running off the end of the loaded feed pulls the next page in.
		if !moved && m.mode == modeList && m.pager.BeginLoadMore() {
			return m, m.loadPage(m.pager.Page())
		}
		return m, m.scheduleDateFlush()

	case key.Matches(msg, keys.Refresh):
		if m.mode != modeList {
			return m, nil
		}
		m.seq++
		if m.pager.BeginLoad() {
			return m, m.loadPage(m.pager.Page())
		}
		return m, nil

	case key.Matches(msg, keys.LoadMore):
		if m.mode == modeList && m.pager.BeginLoadMore() {
			return m, m.loadPage(m.pager.Page())
		}
		return m, nil

	case key.Matches(msg, keys.Comments):
		if m.mode != modeList {
			return m, nil
		}
		id := m.selectedID()
		if id == "" {
			return m, nil
		}
		m.mode = modeThread
		m.threadID = id
		m.threadCursor = 0
		m.threadLoading = true
		m.commentSeq++
		return m, m.loadComments(id)

	case key.Matches(msg, keys.Back):
		if m.mode == modeThread {
			m.mode = modeList
			m.threadID = ""
		}
		return m, nil

	case key.Matches(msg, keys.Like):
		id := m.selectedID()
		if id == "" {
			return m, nil
		}
		return m, m.stageLike(id)

	case key.Matches(msg, keys.React):
		if m.selectedID() == "" {
			return m, nil
		}
		m.mode = modeReactPrompt
		m.reactCursor = 0
		return m, nil

	case key.Matches(msg, keys.NewEditor), key.Matches(msg, keys.NewInline):
		if m.mode != modeList {
			return m, nil
		}
		if m.haveInfo && !m.wallInfo.IsMember {
			m.notice = "Join the wall before posting."
			return m, nil
		}
		inline := key.Matches(msg, keys.NewInline)
		return m, func() tea.Msg { return ComposeRequestMsg{Inline: inline} }

	case key.Matches(msg, keys.Reply):
		id := m.selectedID()
		if id == "" {
			return m, nil
		}
		if m.haveInfo && !m.wallInfo.IsMember {
			m.notice = "Join the wall before commenting."
			return m, nil
		}
		return m, m.composeReply(id)

	case key.Matches(msg, keys.Edit):
		id := m.selectedID()
		item, ok := m.engine.Arena().Get(id)
		if !ok || !item.IsOwn {
			return m, nil
		}
		content := item.Content
		editID := item.ID
		return m, func() tea.Msg {
			return ComposeRequestMsg{EditID: editID, Content: content}
		}

	case key.Matches(msg, keys.Delete):
		id := m.selectedID()
		item, ok := m.engine.Arena().Get(id)
		if !ok || !item.IsOwn {
			return m, nil
		}
		m.mode = modeConfirmDelete
		m.confirmTarget = item.ID
		return m, nil

	case key.Matches(msg, keys.Report):
		id := m.selectedID()
		item, ok := m.engine.Arena().Get(id)
		if !ok || item.IsOwn {
			return m, nil
		}
		m.mode = modeConfirmReport
		m.confirmTarget = item.ID
		return m, nil

	case key.Matches(msg, keys.JumpToDate):
		if m.mode != modeList {
			return m, nil
		}
		m.mode = modeJumpPrompt
		m.jumpInput.SetValue("")
		m.jumpInput.Focus()
		return m, nil

	case key.Matches(msg, keys.Join):
		if m.haveInfo && m.wallInfo.IsMember {
			m.notice = "Already a member."
			return m, nil
		}
		return m, m.joinWall()

	case key.Matches(msg, keys.Leave):
		if m.haveInfo && !m.wallInfo.IsMember {
			return m, nil
		}
		return m, m.leaveWall()

	case key.Matches(msg, keys.ToggleHints):
		m.showHints = !m.showHints
		return m, nil
	}

	return m, nil
}

// composeReply resolves the selected entity into a compose request targeting
// the hosting message, with the comment as parent when one is selected.
func (m Model) composeReply(id string) tea.Cmd {
	arena := m.engine.Arena()
	msgID := arena.MessageOf(id)
	req := ComposeRequestMsg{ReplyToMessageID: msgID}
	if id != msgID {
		req.ReplyToCommentID = id
	}
	if item, ok := arena.Get(id); ok {
		req.ReplyToAuthor = "@" + item.AuthorName
	}
	return func() tea.Msg { return req }
}

func (m Model) updateJumpPrompt(msg tea.KeyMsg, keys common.KeyMap) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		m.mode = modeList
		m.jumpInput.Blur()
		return m, nil

	case msg.Type == tea.KeyEnter:
		raw := strings.TrimSpace(m.jumpInput.Value())
		m.mode = modeList
		m.jumpInput.Blur()
		want, err := time.ParseInLocation(jumpDateLayout, raw, time.Local)
		if err != nil {
			m.errText = "Enter a date as " + jumpDateLayout + "."
			return m, nil
		}
		res, ok := m.pager.JumpToDate(want)
		if !ok {
			m.notice = "Nothing loaded yet."
			return m, nil
		}
		if res.Fallback {
			m.notice = res.Notice
		}
		m.moveCursorTo(res.ItemID)
		m.pager.ObserveTopPartition(res.Partition)
		m.pager.FlushVisibleDate()
		return m, nil
	}

	var cmd tea.Cmd
	m.jumpInput, cmd = m.jumpInput.Update(msg)
	return m, cmd
}

func (m Model) updateReactPrompt(msg tea.KeyMsg, keys common.KeyMap) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		m.mode = m.promptReturnMode()
		return m, nil

	case key.Matches(msg, keys.Up):
		if m.reactCursor > 0 {
			m.reactCursor--
		}
		return m, nil

	case key.Matches(msg, keys.Down):
		if m.reactCursor < len(reactionPalette)-1 {
			m.reactCursor++
		}
		return m, nil

	case msg.Type == tea.KeyEnter:
		id := m.selectedID()
		emoji := reactionPalette[m.reactCursor]
		m.mode = m.promptReturnMode()
		if id == "" {
			return m, nil
		}
		return m, m.stageReaction(id, emoji)
	}
	return m, nil
}

func (m Model) updateConfirm(msg tea.KeyMsg, isDelete bool) (Model, tea.Cmd) {
	switch strings.ToLower(msg.String()) {
	case "y":
		target := m.confirmTarget
		m.mode = m.promptReturnMode()
		m.confirmTarget = ""
		if isDelete {
			return m, m.stageDelete(target)
		}
		return m, m.reportMessage(target, "inappropriate content")
	case "n", "esc":
		m.mode = m.promptReturnMode()
		m.confirmTarget = ""
		return m, nil
	}
	return m, nil
}

// promptReturnMode picks the mode a closed prompt falls back to.
func (m Model) promptReturnMode() viewMode {
	if m.threadID != "" {
		return modeThread
	}
	return modeList
}

// moveCursor shifts the selection and reports whether it actually moved.
func (m *Model) moveCursor(delta int) bool {
	if m.mode == modeThread {
		max := len(m.threadItems()) // thread cursor 0 is the message itself
		next := m.threadCursor + delta
		if next < 0 || next > max {
			return false
		}
		m.threadCursor = next
		return true
	}
	n := len(m.engine.Arena().RootIDs())
	next := m.cursor + delta
	if next < 0 || next >= n {
		return false
	}
	m.cursor = next
	m.observeCursor()
	return true
}

func (m *Model) moveCursorTo(id string) {
	for i, rid := range m.engine.Arena().RootIDs() {
		if rid == id {
			m.cursor = i
			return
		}
	}
}

// observeCursor reports the selected message's partition to the pager, which
// throttles publication of the in-view date.
func (m *Model) observeCursor() {
	roots := m.engine.Arena().RootIDs()
	if m.cursor < 0 || m.cursor >= len(roots) {
		return
	}
	if idx, ok := m.pager.PartitionOf(roots[m.cursor]); ok {
		m.pager.ObserveTopPartition(idx)
	}
}

// scheduleDateFlush arms the scroll-settle publication of the in-view date.
func (m Model) scheduleDateFlush() tea.Cmd {
	wallID := m.wallID
	return tea.Tick(scrollSettleDelay, func(time.Time) tea.Msg {
		return flushDateMsg{WallID: wallID}
	})
}

func (m Model) updateComposeDone(msg ComposeDoneMsg) (Model, tea.Cmd) {
	if msg.Cancelled {
		m.notice = "Cancelled."
		return m, nil
	}
	content := strings.TrimSpace(msg.Content)
	if content == "" && len(msg.Attachments) == 0 {
		m.errText = "Message is empty, nothing posted."
		return m, nil
	}

	switch {
	case msg.EditID != "":
		return m, m.stageEdit(msg.EditID, content)
	case msg.ReplyToMessageID != "":
		return m, m.stageComment(msg.ReplyToMessageID, msg.ReplyToCommentID, content, msg.Attachments)
	default:
		return m, m.stageCreate(content, msg.Attachments)
	}
}
