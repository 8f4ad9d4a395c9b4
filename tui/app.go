package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"wallterm/app"
	"wallterm/infra/editor"
	"wallterm/tui/common"
	"wallterm/tui/compose"
	"wallterm/tui/feed"
)

// Deps holds all dependencies the TUI needs. Plain struct, not a DI container.
type Deps struct {
	Feed    app.FeedService
	Walls   app.WallService
	Uploads app.UploadService
	Events  app.EventStream
	Editor  *editor.EnvEditor
	WallID  string
	UserID  string
}

type activeView int

const (
	feedView activeView = iota
	composeView
)

// App is the root Bubble Tea model. It routes between the feed and the
// composer.
type App struct {
	deps    Deps
	active  activeView
	feed    feed.Model
	compose compose.Model
	keys    common.KeyMap
}

// NewApp creates the root model with all dependencies wired.
func NewApp(deps Deps) App {
	return App{
		deps: deps,
		feed: feed.New(deps.Feed, deps.Walls, deps.Events, deps.WallID, deps.UserID),
		keys: common.DefaultKeyMap(),
	}
}

// Init delegates to the feed.
func (a App) Init() tea.Cmd {
	return a.feed.Init()
}

// Update handles messages and routes to the active sub-model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, a.keys.ForceQuit) {
			return a, tea.Quit
		}
		if a.active == feedView {
			if key.Matches(msg, a.keys.Quit) && !a.feed.InThread() {
				return a, tea.Quit
			}
			var cmd tea.Cmd
			a.feed, cmd = a.feed.Update(msg)
			return a, cmd
		}
		var cmd tea.Cmd
		a.compose, cmd = a.compose.Update(msg)
		return a, cmd

	case feed.ComposeRequestMsg:
		a.active = composeView
		target := compose.Target{
			EditID:           msg.EditID,
			Content:          msg.Content,
			ReplyToMessageID: msg.ReplyToMessageID,
			ReplyToCommentID: msg.ReplyToCommentID,
			ReplyToAuthor:    msg.ReplyToAuthor,
		}
		if msg.Inline {
			a.compose = compose.NewInline(a.deps.Uploads, target)
		} else {
			a.compose = compose.NewEditor(a.deps.Uploads, a.deps.Editor, target)
		}
		return a, a.compose.Init()

	case compose.DoneMsg:
		a.active = feedView
		done := feed.ComposeDoneMsg{
			Cancelled:        msg.Cancelled || msg.Err != nil,
			Content:          msg.Content,
			Attachments:      msg.Attachments,
			EditID:           msg.EditID,
			ReplyToMessageID: msg.ReplyToMessageID,
			ReplyToCommentID: msg.ReplyToCommentID,
		}
		var cmd tea.Cmd
		a.feed, cmd = a.feed.Update(done)
		return a, cmd
	}

	// Background messages always reach the feed; the composer additionally
	// sees them while it is active (upload progress, editor completion).
	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.feed, cmd = a.feed.Update(msg)
	cmds = append(cmds, cmd)
	if a.active == composeView {
		a.compose, cmd = a.compose.Update(msg)
		cmds = append(cmds, cmd)
	}
	return a, tea.Batch(cmds...)
}

// View renders the active sub-model.
func (a App) View() string {
	if a.active == composeView {
		return a.compose.View()
	}
	return a.feed.View()
}
