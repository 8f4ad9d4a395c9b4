package feed

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"wallterm/app"
	"wallterm/domain"
	"wallterm/wall"
)

type fakeFeed struct {
	app.FeedService
}

type fakeWalls struct{}

func (fakeWalls) Walls(context.Context) ([]domain.Wall, error) {
	return []domain.Wall{{ID: "w1", Name: "general", IsMember: true}}, nil
}
func (fakeWalls) Join(context.Context, string) (bool, error) { return false, nil }
func (fakeWalls) Leave(context.Context, string) error        { return nil }

type fakeStream struct{}

func (fakeStream) Subscribe(context.Context, string) (<-chan app.Event, error) {
	ch := make(chan app.Event)
	close(ch)
	return ch, nil
}

func newTestModel() Model {
	return New(fakeFeed{}, fakeWalls{}, fakeStream{}, "w1", "me")
}

func msgAt(id string, day time.Time, content string) domain.FeedItem {
	return domain.FeedItem{
		ID:         id,
		AuthorID:   "u2",
		AuthorName: "alice",
		Content:    content,
		CreatedAt:  day.Add(12 * time.Hour),
	}
}

func loadedModel(t *testing.T, items []domain.FeedItem) Model {
	t.Helper()
	m := newTestModel()
	if !m.pager.BeginLoad() {
		t.Fatalf("BeginLoad refused")
	}
	m, _ = m.Update(PageLoadedMsg{WallID: "w1", Seq: 0, Page: 1, Items: items})
	return m
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestPageLoaded_PopulatesArenaAndPartitions(t *testing.T) {
	day1 := wall.DayOf(time.Now())
	day2 := day1.AddDate(0, 0, -1)
	m := loadedModel(t, []domain.FeedItem{
		msgAt("m1", day1, "a"),
		msgAt("m2", day1, "b"),
		msgAt("m3", day2, "c"),
	})

	if got := len(m.engine.Arena().RootIDs()); got != 3 {
		t.Fatalf("roots = %d, want 3", got)
	}
	if got := len(m.pager.Partitions()); got != 2 {
		t.Fatalf("partitions = %d, want 2", got)
	}
	if m.pager.HasMore() {
		t.Errorf("3 items should mark the feed exhausted")
	}
}

func TestPageLoaded_StaleResponsesDropped(t *testing.T) {
	m := newTestModel()
	m.pager.BeginLoad()
	m.seq = 5

	m, _ = m.Update(PageLoadedMsg{WallID: "w1", Seq: 4, Items: []domain.FeedItem{msgAt("m1", wall.DayOf(time.Now()), "old")}})
	if m.engine.Arena().Len() != 0 {
		t.Errorf("stale seq response applied")
	}

	m, _ = m.Update(PageLoadedMsg{WallID: "other", Seq: 5, Items: []domain.FeedItem{msgAt("m1", wall.DayOf(time.Now()), "old")}})
	if m.engine.Arena().Len() != 0 {
		t.Errorf("stale wall response applied")
	}
}

func TestComposeDone_NewMessageOptimisticThenCommit(t *testing.T) {
	m := loadedModel(t, []domain.FeedItem{msgAt("m1", wall.DayOf(time.Now()), "existing")})

	m, cmd := m.Update(ComposeDoneMsg{Content: "hello #go"})
	if cmd == nil {
		t.Fatalf("expected API command")
	}
	roots := m.engine.Arena().Roots()
	if len(roots) != 2 || !roots[0].IsLocal() {
		t.Fatalf("optimistic message not at top: %+v", roots)
	}
	if len(roots[0].Tags) != 1 || roots[0].Tags[0] != "go" {
		t.Errorf("tags not extracted: %v", roots[0].Tags)
	}
	tempID := roots[0].ID
	if _, ok := m.pager.PartitionOf(tempID); !ok {
		t.Errorf("optimistic message missing from the date tracker")
	}

	confirmed := msgAt("srv-1", wall.DayOf(time.Now()), "hello #go")
	confirmed.AuthorID = "me"
	m, _ = m.Update(CreateResultMsg{WallID: "w1", TempID: tempID, Item: confirmed})

	roots = m.engine.Arena().Roots()
	if roots[0].ID != "srv-1" || roots[0].IsLocal() {
		t.Fatalf("promotion failed: %+v", roots[0])
	}
	if !roots[0].IsOwn {
		t.Errorf("confirmed message not marked own")
	}
	if _, ok := m.pager.PartitionOf("srv-1"); !ok {
		t.Errorf("promoted identity missing from the date tracker")
	}
}

func TestComposeDone_FailureRollsBack(t *testing.T) {
	m := loadedModel(t, []domain.FeedItem{msgAt("m1", wall.DayOf(time.Now()), "existing")})

	m, _ = m.Update(ComposeDoneMsg{Content: "doomed"})
	tempID := m.engine.Arena().RootIDs()[0]

	m, _ = m.Update(CreateResultMsg{WallID: "w1", TempID: tempID, Err: context.DeadlineExceeded})
	roots := m.engine.Arena().RootIDs()
	if len(roots) != 1 || roots[0] != "m1" {
		t.Fatalf("rollback left roots %v", roots)
	}
	if _, ok := m.pager.PartitionOf(tempID); ok {
		t.Errorf("rolled-back message still tracked by the date tracker")
	}
	if m.errText == "" {
		t.Errorf("failure not surfaced")
	}
}

func TestComposeDone_EmptyRejectedLocally(t *testing.T) {
	m := loadedModel(t, nil)
	m, cmd := m.Update(ComposeDoneMsg{Content: "   "})
	if cmd != nil {
		t.Fatalf("empty message dispatched a command")
	}
	if m.errText == "" {
		t.Errorf("expected validation message")
	}
}

func TestLikeKey_StagesAndServerCountWins(t *testing.T) {
	m := loadedModel(t, []domain.FeedItem{msgAt("m1", wall.DayOf(time.Now()), "x")})

	m, cmd := m.Update(keyRune('l'))
	if cmd == nil {
		t.Fatalf("like dispatched no command")
	}
	item, _ := m.engine.Arena().Get("m1")
	if !item.Liked || item.LikeCount != 1 {
		t.Fatalf("optimistic like missing: %+v", item)
	}

	// Server says 5: other users liked meanwhile.
	m, _ = m.Update(LikeResultMsg{WallID: "w1", ID: "m1", Likes: 5, Liked: true})
	item, _ = m.engine.Arena().Get("m1")
	if item.LikeCount != 5 {
		t.Errorf("server count not applied: %d", item.LikeCount)
	}
}

func TestSecondLikeWhilePendingIsDeferred(t *testing.T) {
	m := loadedModel(t, []domain.FeedItem{msgAt("m1", wall.DayOf(time.Now()), "x")})

	m, cmd := m.Update(keyRune('l'))
	if cmd == nil {
		t.Fatalf("first like dispatched no command")
	}
	m, cmd = m.Update(keyRune('l'))
	if cmd != nil {
		t.Fatalf("second like should be deferred, got a command")
	}

	// Resolving the first replays the queued one.
	m, cmd = m.Update(LikeResultMsg{WallID: "w1", ID: "m1", Likes: 1, Liked: true})
	if cmd == nil {
		t.Fatalf("deferred like not replayed")
	}
	item, _ := m.engine.Arena().Get("m1")
	if item.Liked || item.LikeCount != 0 {
		t.Errorf("replayed toggle not applied: %+v", item)
	}
}

func TestRemoteEvent_MergeAndVideoProcessed(t *testing.T) {
	day := wall.DayOf(time.Now())
	withVideo := msgAt("m1", day, "clip")
	withVideo.Attachments = []domain.Attachment{{Kind: domain.AttachmentVideo, Filename: "clip.mp4"}}
	m := loadedModel(t, []domain.FeedItem{withVideo})

	ch := make(chan app.Event)
	m, _ = m.Update(remoteEventMsg{
		Event: app.Event{Type: app.EventMessageReceived, WallID: "w1", Message: msgAt("m9", day, "new")},
		ch:    ch,
	})
	if got := m.engine.Arena().RootIDs()[0]; got != "m9" {
		t.Fatalf("pushed message not on top: %v", got)
	}
	if _, ok := m.pager.PartitionOf("m9"); !ok {
		t.Errorf("pushed message missing from the date tracker")
	}

	// Duplicate push is dropped.
	m, _ = m.Update(remoteEventMsg{
		Event: app.Event{Type: app.EventMessageReceived, WallID: "w1", Message: msgAt("m9", day, "new")},
		ch:    ch,
	})
	if got := len(m.engine.Arena().RootIDs()); got != 2 {
		t.Fatalf("duplicate merged, roots = %d", got)
	}

	m, _ = m.Update(remoteEventMsg{
		Event: app.Event{Type: app.EventVideoProcessed, WallID: "w1", MessageID: "m1", VideoID: "v1", HLSPath: "/hls/v1.m3u8"},
		ch:    ch,
	})
	item, _ := m.engine.Arena().Get("m1")
	if !item.Attachments[0].Transcoded || item.Attachments[0].URL != "/hls/v1.m3u8" {
		t.Errorf("video attachment not updated: %+v", item.Attachments[0])
	}
}

func TestJumpPrompt_FallbackNotice(t *testing.T) {
	day := time.Date(2026, 8, 20, 0, 0, 0, 0, time.Local)
	m := loadedModel(t, []domain.FeedItem{msgAt("m1", day, "x")})

	m, _ = m.Update(keyRune('g'))
	if m.mode != modeJumpPrompt {
		t.Fatalf("g did not open the jump prompt")
	}
	m.jumpInput.SetValue("2026-08-25")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if m.mode != modeList {
		t.Fatalf("prompt did not close")
	}
	if !strings.Contains(m.notice, "Aug 25") || !strings.Contains(m.notice, "Aug 20") {
		t.Errorf("fallback notice = %q", m.notice)
	}
	if m.cursor != 0 {
		t.Errorf("cursor = %d", m.cursor)
	}
}

func TestThread_OpenLoadsComments(t *testing.T) {
	day := wall.DayOf(time.Now())
	root := msgAt("m1", day, "parent")
	root.ReplyCount = 2
	m := loadedModel(t, []domain.FeedItem{root})

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.mode != modeThread || cmd == nil {
		t.Fatalf("thread did not open with a load command")
	}

	records := []domain.FeedItem{
		{ID: "c1", Content: "first", CreatedAt: day.Add(time.Hour)},
		{ID: "c2", Content: "nested", ParentID: "c1", CreatedAt: day.Add(2 * time.Hour)},
	}
	m, _ = m.Update(CommentsLoadedMsg{WallID: "w1", MessageID: "m1", Seq: m.commentSeq, Records: records})

	flat := m.threadItems()
	if len(flat) != 2 || flat[0].ID != "c1" || flat[1].ID != "c2" {
		t.Fatalf("thread items = %+v", flat)
	}
	if m.depthOf("c2") != 2 {
		t.Errorf("nested depth = %d, want 2", m.depthOf("c2"))
	}
}

func TestNotMember_PostBlockedLocally(t *testing.T) {
	m := loadedModel(t, nil)
	m.wallInfo = domain.Wall{ID: "w1", Name: "general", IsMember: false}
	m.haveInfo = true

	m, cmd := m.Update(keyRune('p'))
	if cmd != nil {
		t.Fatalf("compose opened for a non-member")
	}
	if !strings.Contains(m.notice, "Join") {
		t.Errorf("notice = %q", m.notice)
	}
}
