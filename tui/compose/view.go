package compose

import (
	"path/filepath"
	"strings"

	"wallterm/domain"
	"wallterm/tui/common"
)

// View renders the composer.
func (m Model) View() string {
	var b strings.Builder

	switch {
	case m.target.EditID != "":
		b.WriteString(common.AppTitleStyle.Render("Edit message") + "\n")
	case m.target.ReplyToMessageID != "":
		who := m.target.ReplyToAuthor
		if who == "" {
			who = "thread"
		}
		b.WriteString(common.AppTitleStyle.Render("Reply to "+who) + "\n")
	default:
		b.WriteString(common.AppTitleStyle.Render("New message") + "\n")
	}

	if m.mode == inlineInput {
		b.WriteString("\n" + m.textarea.View() + "\n")
	} else {
		b.WriteString("\n " + common.TimestampStyle.Render("Waiting for $EDITOR...") + "\n")
	}

	if m.attachPrompt {
		b.WriteString("\n " + common.UploadLabelStyle.Render("Attach file:") + " " + m.attachInput.View() + "\n")
	}

	if len(m.queue) > 0 {
		b.WriteString("\n")
		for _, u := range m.queue {
			b.WriteString(m.renderUpload(u.Job))
		}
	}

	if m.status != "" {
		b.WriteString("\n " + common.NoticeStyle.Render(m.status) + "\n")
	}

	b.WriteString("\n" + common.StatusBarStyle.Render(
		"ctrl+s send · ctrl+a attach · ctrl+x cancel upload · esc cancel") + "\n")
	return b.String()
}

func (m Model) renderUpload(job domain.UploadJob) string {
	name := filepath.Base(job.Path)
	label := common.UploadLabelStyle.Render(name) + " " + common.TimestampStyle.Render(job.Status)

	switch job.State {
	case domain.UploadUploading, domain.UploadProcessing:
		bar := m.progress.ViewAs(float64(job.Progress) / 100.0)
		return " " + label + "\n " + bar + "\n"
	case domain.UploadComplete:
		return " " + label + " " + common.SuccessStyle.Render("✓") + "\n"
	case domain.UploadFailed:
		return " " + label + " " + common.ErrorStyle.Render("✗") + "\n"
	default:
		return " " + label + "\n"
	}
}
