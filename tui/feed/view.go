package feed

import (
	"fmt"
	"strings"
	"time"

	"wallterm/domain"
	"wallterm/tui/common"
	"wallterm/wall"
)

// View renders the feed.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.viewHeader())
	b.WriteString("\n")

	switch {
	case m.pager.State() == wall.PageLoading:
		b.WriteString("\n " + m.spinner.View() + " loading messages...\n")
	case m.mode == modeThread || (m.threadID != "" && m.mode != modeList):
		b.WriteString(m.viewThread())
	default:
		b.WriteString(m.viewList())
	}

	switch m.mode {
	case modeJumpPrompt:
		b.WriteString("\n " + common.DateHeadingStyle.Render("Go to date:") + " " + m.jumpInput.View() + "\n")
	case modeReactPrompt:
		b.WriteString(m.viewReactPrompt())
	case modeConfirmDelete:
		b.WriteString("\n" + common.ConfirmStyle.Render("Delete this message? (y/n)") + "\n")
	case modeConfirmReport:
		b.WriteString("\n" + common.ConfirmStyle.Render("Report this message? (y/n)") + "\n")
	}

	b.WriteString(m.viewStatusBar())
	return clipToWidth(b.String(), m.width)
}

func (m Model) viewHeader() string {
	name := m.wallID
	if m.haveInfo {
		name = m.wallInfo.Name
	}
	title := common.AppTitleStyle.Render("wallterm") + " " + common.WallNameStyle.Render("~"+name)
	date := common.DayHeading(m.pager.VisibleDate(), time.Now())
	return title + "  " + common.DateHeadingStyle.Render(date)
}

func (m Model) viewList() string {
	roots := m.engine.Arena().Roots()
	if len(roots) == 0 {
		if m.pager.State() == wall.PageIdle {
			return "\n No messages here yet.\n"
		}
		return "\n This wall is quiet. Post something.\n"
	}

	var b strings.Builder
	now := time.Now()
	var lastDay time.Time
	for i, item := range roots {
		day := wall.DayOf(item.CreatedAt)
		if !day.Equal(lastDay) {
			b.WriteString("\n " + common.DateHeadingStyle.Render("── "+common.DayHeading(day, now)+" ──") + "\n")
			lastDay = day
		}
		b.WriteString(m.renderItem(item, i == m.cursor, 0, now))
	}

	if m.pager.State() == wall.PageLoadingMore {
		b.WriteString("\n " + m.spinner.View() + " loading older messages...\n")
	} else if !m.pager.HasMore() {
		b.WriteString("\n " + common.TimestampStyle.Render("— beginning of wall —") + "\n")
	}
	return b.String()
}

func (m Model) viewThread() string {
	arena := m.engine.Arena()
	msg, ok := arena.Get(m.threadID)
	if !ok {
		return "\n Message is gone.\n"
	}

	var b strings.Builder
	now := time.Now()
	b.WriteString(m.renderItem(msg, m.threadCursor == 0, 0, now))

	if m.threadLoading {
		b.WriteString("\n " + m.spinner.View() + " loading comments...\n")
		return b.String()
	}

	flat := m.threadItems()
	if len(flat) == 0 {
		b.WriteString("\n " + common.TimestampStyle.Render("No comments yet.") + "\n")
		return b.String()
	}
	for i, item := range flat {
		depth := m.depthOf(item.ID)
		b.WriteString(m.renderItem(item, m.threadCursor == i+1, depth, now))
	}
	return b.String()
}

// depthOf counts the parent hops from a comment up to its hosting message.
func (m Model) depthOf(id string) int {
	arena := m.engine.Arena()
	depth := 0
	for {
		p := arena.Parent(id)
		if p == "" || p == m.threadID {
			return depth + 1
		}
		id = p
		depth++
	}
}

func (m Model) renderItem(item domain.FeedItem, selected bool, depth int, now time.Time) string {
	var meta strings.Builder
	meta.WriteString(authorStyleFor(item.AuthorName, item.IsOwn).Render(item.AuthorName))
	if item.IsOwn {
		meta.WriteString(common.OwnBadgeStyle.Render("(you)"))
	}
	meta.WriteString(" " + common.TimestampStyle.Render(common.RelativeTime(item.CreatedAt, now)))
	if item.Edited {
		meta.WriteString(common.TimestampStyle.Render(" · edited"))
	}
	if item.IsLocal() {
		meta.WriteString(" " + common.PendingStyle.Render("sending..."))
	}

	text := item.Content
	if m.mode == modeList {
		text = truncateToTwoLines(text, m.blockWidth(depth)-2)
	}
	content := common.ContentStyle.Render(text)
	if item.IsLocal() {
		content = common.PendingStyle.Render(text)
	}

	lines := []string{meta.String(), content}
	if att := renderAttachments(item.Attachments); att != "" {
		lines = append(lines, att)
	}
	if counters := m.renderCounters(item); counters != "" {
		lines = append(lines, counters)
	}

	style := common.UnselectedStyle
	if selected {
		style = common.SelectedStyle
	}
	block := style.Width(m.blockWidth(depth)).Render(strings.Join(lines, "\n"))
	if depth > 0 {
		pad := strings.Repeat("  ", depth)
		indented := make([]string, 0)
		for _, ln := range strings.Split(block, "\n") {
			indented = append(indented, pad+ln)
		}
		block = strings.Join(indented, "\n")
	}
	return block + "\n"
}

func (m Model) blockWidth(depth int) int {
	w := m.width - 4 - depth*2
	if m.width == 0 || w < 20 {
		return 60
	}
	return w
}

func renderAttachments(atts []domain.Attachment) string {
	if len(atts) == 0 {
		return ""
	}
	parts := make([]string, 0, len(atts))
	for _, a := range atts {
		label := string(a.Kind)
		if a.Kind == domain.AttachmentVideo && !a.Transcoded {
			label += " (processing)"
		}
		parts = append(parts, "["+label+": "+a.Filename+"]")
	}
	return common.UploadLabelStyle.Render(strings.Join(parts, " "))
}

func (m Model) renderCounters(item domain.FeedItem) string {
	var parts []string
	if item.LikeCount > 0 || item.Liked {
		heart := "♡"
		if item.Liked {
			heart = "♥"
		}
		parts = append(parts, fmt.Sprintf("%s %d", heart, item.LikeCount))
	}
	for _, emoji := range reactionPalette {
		if g, ok := item.Reactions[emoji]; ok && g.Count > 0 {
			tag := fmt.Sprintf("%s %d", emoji, g.Count)
			if item.UserReaction == emoji {
				tag = "[" + tag + "]"
			}
			parts = append(parts, tag)
		}
	}
	if item.ReplyCount > 0 {
		parts = append(parts, fmt.Sprintf("💬 %d", item.ReplyCount))
	}
	if len(parts) == 0 {
		return ""
	}
	return common.ReactionStyle.Render(strings.Join(parts, "  "))
}

func (m Model) viewReactPrompt() string {
	var b strings.Builder
	b.WriteString("\n " + common.DateHeadingStyle.Render("React:") + "\n")
	for i, emoji := range reactionPalette {
		marker := "  "
		if i == m.reactCursor {
			marker = "> "
		}
		b.WriteString(" " + marker + emoji + "\n")
	}
	return b.String()
}

func (m Model) viewStatusBar() string {
	var parts []string
	if m.errText != "" {
		parts = append(parts, common.ErrorStyle.Render(m.errText))
	}
	if m.notice != "" {
		parts = append(parts, common.NoticeStyle.Render(m.notice))
	}
	if m.showHints {
		hints := "↑/↓ move · enter thread · l like · x react · c comment · p post · g date · m older · r refresh · ? hints · q quit"
		if m.mode == modeThread {
			hints = "↑/↓ move · esc back · l like · x react · c reply"
		}
		parts = append(parts, common.StatusBarStyle.Render(hints))
	}
	if len(parts) == 0 {
		return ""
	}
	return "\n" + strings.Join(parts, "\n")
}
