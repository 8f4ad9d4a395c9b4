package compose

import (
	"math/rand"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"wallterm/app"
	"wallterm/domain"
	"wallterm/infra/editor"
	"wallterm/wall"
)

// DoneMsg reports the composer's outcome to the root model.
type DoneMsg struct {
	Cancelled   bool
	Content     string
	Attachments []domain.Attachment
	Err         error

	EditID           string
	ReplyToMessageID string
	ReplyToCommentID string
}

type inputMode int

const (
	inlineInput inputMode = iota
	editorInput
)

// Target carries what the composition is for.
type Target struct {
	EditID           string
	Content          string // Pre-filled content when editing.
	ReplyToMessageID string
	ReplyToCommentID string
	ReplyToAuthor    string
}

// Model is the message composer: an inline textarea or an external $EDITOR
// session, plus the media attachment queue with its staged upload pipeline.
type Model struct {
	uploads  app.UploadService
	editor   *editor.EnvEditor
	mode     inputMode
	target   Target
	textarea textarea.Model

	queue     []wall.Upload
	active    int // Index of the in-flight upload, -1 when idle.
	attached  []domain.Attachment
	failures  []string
	cancel    func() // Cancels the active upload's transport context.
	activeVID string // Server job identity of the active video, when known.

	attachInput  textinput.Model
	attachPrompt bool
	progress     progress.Model

	pendingContent string // Submitted text waiting for uploads to drain.
	rng            *rand.Rand

	status string
}

// NewInline creates a composer using the inline textarea.
func NewInline(uploads app.UploadService, target Target) Model {
	m := newModel(uploads, nil, target)
	m.mode = inlineInput
	m.textarea.SetValue(target.Content)
	m.textarea.Focus()
	return m
}

// NewEditor creates a composer that opens $EDITOR.
func NewEditor(uploads app.UploadService, env *editor.EnvEditor, target Target) Model {
	m := newModel(uploads, env, target)
	m.mode = editorInput
	return m
}

func newModel(uploads app.UploadService, env *editor.EnvEditor, target Target) Model {
	ta := textarea.New()
	ta.Placeholder = "What's happening on this wall?"
	ta.CharLimit = 2000
	ta.SetHeight(5)

	ti := textinput.New()
	ti.Placeholder = "/path/to/media"
	ti.Width = 48

	return Model{
		uploads:     uploads,
		editor:      env,
		target:      target,
		textarea:    ta,
		active:      -1,
		attachInput: ti,
		progress:    progress.New(progress.WithDefaultGradient()),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Init starts the editor session in editor mode; the inline mode just blinks.
func (m Model) Init() tea.Cmd {
	if m.mode == editorInput {
		return m.launchEditor()
	}
	return textarea.Blink
}

func (m Model) launchEditor() tea.Cmd {
	cmd, tmpPath, err := m.editor.Cmd(m.target.Content, m.target.ReplyToAuthor)
	if err != nil {
		return func() tea.Msg { return m.done(DoneMsg{Err: err}) }
	}
	return tea.ExecProcess(cmd, func(execErr error) tea.Msg {
		return editorFinishedMsg{tmpPath: tmpPath, err: execErr}
	})
}

type editorFinishedMsg struct {
	tmpPath string
	err     error
}

// done stamps the composition target onto an outcome.
func (m Model) done(msg DoneMsg) DoneMsg {
	msg.EditID = m.target.EditID
	msg.ReplyToMessageID = m.target.ReplyToMessageID
	msg.ReplyToCommentID = m.target.ReplyToCommentID
	return msg
}

// uploading reports whether any queued file is not yet terminal.
func (m Model) uploading() bool {
	if m.active >= 0 {
		return true
	}
	for _, u := range m.queue {
		if !u.Job.State.Terminal() {
			return true
		}
	}
	return false
}

// classifyAttachment derives the attachment kind from the file extension.
func classifyAttachment(path string) domain.AttachmentKind {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".mp4"),
		strings.HasSuffix(lower, ".mov"),
		strings.HasSuffix(lower, ".webm"),
		strings.HasSuffix(lower, ".mkv"):
		return domain.AttachmentVideo
	case strings.HasSuffix(lower, ".gif"):
		return domain.AttachmentGIF
	default:
		return domain.AttachmentImage
	}
}
