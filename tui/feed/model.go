package feed

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"wallterm/app"
	"wallterm/domain"
	"wallterm/wall"
)

type viewMode int

const (
	modeList viewMode = iota
	modeThread
	modeJumpPrompt
	modeReactPrompt
	modeConfirmDelete
	modeConfirmReport
)

// Model is the feed view: one wall's reverse-chronological message list with
// day partitions, lazily loaded comment threads, and optimistic mutations.
type Model struct {
	svc    app.FeedService
	walls  app.WallService
	stream app.EventStream

	wallID   string
	userID   string
	wallInfo domain.Wall
	haveInfo bool

	engine *wall.Engine
	pager  *wall.Pager

	// seq invalidates in-flight page loads after a refresh; commentSeq does
	// the same for comment loads.
	seq        int
	commentSeq int

	mode          viewMode
	cursor        int    // Selected root message index.
	threadID      string // Message whose thread is open.
	threadCursor  int    // Selected index in the flattened thread.
	threadLoading bool
	reactCursor   int
	confirmTarget string // Entity the delete/report prompt refers to.

	jumpInput textinput.Model
	spinner   spinner.Model

	notice    string
	errText   string
	showHints bool
	width     int
	height    int
}

// New creates the feed model for a wall.
func New(svc app.FeedService, walls app.WallService, stream app.EventStream, wallID, userID string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6600"))

	ti := textinput.New()
	ti.Placeholder = jumpDateLayout
	ti.CharLimit = len(jumpDateLayout)
	ti.Width = len(jumpDateLayout) + 2

	arena := wall.NewArena()
	return Model{
		svc:       svc,
		walls:     walls,
		stream:    stream,
		wallID:    wallID,
		userID:    userID,
		engine:    wall.NewEngine(arena, userID),
		pager:     wall.NewPager(wallID),
		jumpInput: ti,
		spinner:   sp,
		showHints: true,
	}
}

// Init arms the first page load, wall metadata fetch and event subscription.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.loadWallInfo(), m.subscribe()}
	if m.pager.BeginLoad() {
		cmds = append(cmds, m.loadPage(m.pager.Page()))
	}
	return tea.Batch(cmds...)
}

// InThread reports whether a comment thread is open; the root model keeps
// the quit key inert inside a thread so esc/q navigates instead of exiting.
func (m Model) InThread() bool {
	return m.mode != modeList
}

// Engine exposes the mutation engine for the root model's compose flow.
func (m Model) Engine() *wall.Engine { return m.engine }

// WallID returns the wall this model renders.
func (m Model) WallID() string { return m.wallID }

// selectedID returns the identity of the currently selected entity, which is
// a root message in list mode and a comment (or the message) in thread mode.
func (m Model) selectedID() string {
	switch m.mode {
	case modeThread, modeReactPrompt, modeConfirmDelete, modeConfirmReport:
		if m.threadID != "" {
			flat := m.threadItems()
			if m.threadCursor > 0 && m.threadCursor-1 < len(flat) {
				return flat[m.threadCursor-1].ID
			}
			return m.threadID
		}
		fallthrough
	default:
		roots := m.engine.Arena().RootIDs()
		if m.cursor >= 0 && m.cursor < len(roots) {
			return roots[m.cursor]
		}
	}
	return ""
}

// threadItems returns the open thread's comments, parents before children.
func (m Model) threadItems() []domain.FeedItem {
	if m.threadID == "" {
		return nil
	}
	arena := m.engine.Arena()
	var out []domain.FeedItem
	var walk func(id string)
	walk = func(id string) {
		for _, child := range arena.Children(id) {
			out = append(out, child)
			walk(child.ID)
		}
	}
	walk(m.threadID)
	return out
}
