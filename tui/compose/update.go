package compose

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"wallterm/domain"
	"wallterm/wall"
)

// Update handles one message. It returns the updated model by value.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKey(msg)

	case editorFinishedMsg:
		return m.updateEditorFinished(msg)

	case thumbnailDoneMsg:
		if msg.idx != m.active {
			return m, nil
		}
		m.queue[msg.idx].ThumbnailDone(msg.path, msg.err)
		return m, m.uploadVideo(msg.idx, m.queue[msg.idx].Job.Path)

	case uploadStartedMsg:
		if msg.idx == m.active {
			m.queue[msg.idx].SetVideoID(msg.videoID)
			m.activeVID = msg.videoID
		}
		return m, listenUpload(msg.ch)

	case uploadProgressMsg:
		if msg.idx != m.active {
			return m, listenUpload(msg.ch)
		}
		m.queue[msg.idx].TransferProgress(msg.sent, msg.total)
		var cmds []tea.Cmd
		if msg.total > 0 && msg.sent >= msg.total &&
			m.queue[msg.idx].Job.State == domain.UploadUploading {
			m.queue[msg.idx].EnterProcessing()
			cmds = append(cmds, processingTick(msg.idx))
		}
		cmds = append(cmds, listenUpload(msg.ch))
		return m, tea.Batch(cmds...)

	case processingTickMsg:
		if msg.idx != m.active || m.queue[msg.idx].Job.State != domain.UploadProcessing {
			return m, nil
		}
		m.queue[msg.idx].ProcessingTick(m.rng)
		return m, processingTick(msg.idx)

	case uploadDoneMsg:
		return m.updateUploadDone(msg)
	}

	if m.mode == inlineInput && !m.attachPrompt {
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.attachPrompt {
		switch msg.Type {
		case tea.KeyEsc:
			m.attachPrompt = false
			m.attachInput.Blur()
			return m, nil
		case tea.KeyEnter:
			path := strings.TrimSpace(m.attachInput.Value())
			m.attachPrompt = false
			m.attachInput.Blur()
			if path == "" {
				return m, nil
			}
			return m.enqueueFile(path)
		}
		var cmd tea.Cmd
		m.attachInput, cmd = m.attachInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "esc":
		if cmd := m.cancelActive(); cmd != nil {
			return m, cmd
		}
		return m, func() tea.Msg { return m.done(DoneMsg{Cancelled: true}) }

	case "ctrl+c":
		return m, tea.Quit

	case "ctrl+a":
		m.attachPrompt = true
		m.attachInput.SetValue("")
		m.attachInput.Focus()
		return m, nil

	case "ctrl+x":
		return m, m.cancelActive()

	case "ctrl+s", "ctrl+d":
		return m.submit()
	}

	if m.mode == inlineInput {
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		return m, cmd
	}
	return m, nil
}

// enqueueFile validates and queues a local media file, starting it when the
// pipeline is idle.
func (m Model) enqueueFile(path string) (Model, tea.Cmd) {
	if _, err := os.Stat(path); err != nil {
		m.status = "Cannot read " + path
		return m, nil
	}
	m.queue = append(m.queue, wall.NewUpload(path, classifyAttachment(path)))
	m.status = "Queued " + filepath.Base(path)
	return m, m.startNext()
}

func (m Model) updateEditorFinished(msg editorFinishedMsg) (Model, tea.Cmd) {
	if msg.err != nil {
		return m, func() tea.Msg { return m.done(DoneMsg{Err: msg.err}) }
	}
	content, err := m.editor.ReadContent(msg.tmpPath)
	if err != nil {
		return m, func() tea.Msg { return m.done(DoneMsg{Err: err}) }
	}
	if strings.TrimSpace(content) == "" || content == strings.TrimSpace(m.target.Content) {
		return m, func() tea.Msg { return m.done(DoneMsg{Cancelled: true}) }
	}
	m.pendingContent = content
	if m.uploading() {
		m.status = "Waiting for uploads to finish..."
		return m, nil
	}
	return m.finish(content)
}

func (m Model) updateUploadDone(msg uploadDoneMsg) (Model, tea.Cmd) {
	if msg.idx >= len(m.queue) {
		return m, nil
	}
	u := &m.queue[msg.idx]

	switch {
	case u.Job.State == domain.UploadCancelled:
		// Cancelled locally; the late result is irrelevant.

	case msg.err != nil:
		if errors.Is(msg.err, domain.ErrUploadCancelled) {
			u.Cancel()
		} else {
			u.Fail(msg.err)
			m.failures = append(m.failures, filepath.Base(u.Job.Path))
			m.status = "Upload failed: " + msg.err.Error()
		}

	case u.Job.Kind == domain.AttachmentVideo:
		u.Complete(msg.result.VideoID, msg.result.HLSPath)
		m.attached = append(m.attached, domain.Attachment{
			Kind:     domain.AttachmentVideo,
			URL:      msg.result.HLSPath,
			Filename: filepath.Base(u.Job.Path),
		})

	default:
		att := msg.att
		if att.Filename == "" {
			att.Filename = filepath.Base(u.Job.Path)
		}
		u.Complete("", att.URL)
		m.attached = append(m.attached, att)
	}

	if msg.idx == m.active {
		m.active = -1
		m.activeVID = ""
		m.cancel = nil
	}

	cmd := m.startNext()
	if cmd == nil && m.pendingContent != "" && !m.uploading() {
		return m.finish(m.pendingContent)
	}
	return m, cmd
}

// submit closes an inline composition.
func (m Model) submit() (Model, tea.Cmd) {
	content := strings.TrimSpace(m.textarea.Value())
	if content == "" && len(m.attached) == 0 {
		m.status = "Nothing to post."
		return m, nil
	}
	if m.uploading() {
		m.pendingContent = content
		m.status = "Waiting for uploads to finish..."
		return m, nil
	}
	return m.finish(content)
}

// finish emits the outcome with whatever uploads succeeded. Failed files are
// simply not attached; the message still goes out.
func (m Model) finish(content string) (Model, tea.Cmd) {
	out := m.done(DoneMsg{Content: content, Attachments: m.attached})
	return m, func() tea.Msg { return out }
}
