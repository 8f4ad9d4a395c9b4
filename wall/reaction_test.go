package wall

import (
	"reflect"
	"testing"

	"wallterm/domain"
)

func TestToggleReaction_Involution(t *testing.T) {
	item := domain.FeedItem{
		ID: "M1",
		Reactions: map[string]domain.ReactionGroup{
			"🔥": {Count: 2, UserIDs: []string{"a", "b"}},
		},
	}
	before := item.Clone()

	ToggleReaction(&item, "👍", "me")
	if item.UserReaction != "👍" || item.Reactions["👍"].Count != 1 {
		t.Fatalf("first toggle did not add reaction: %#v", item.Reactions)
	}
	ToggleReaction(&item, "👍", "me")

	if !reflect.DeepEqual(before.Reactions, item.Reactions) || item.UserReaction != "" {
		t.Fatalf("double toggle did not restore map:\nwant %#v\ngot  %#v", before.Reactions, item.Reactions)
	}
}

func TestToggleReaction_SwitchEmoji(t *testing.T) {
	// React 👍 then immediately ❤️ on a message with no prior reactions.
	item := domain.FeedItem{ID: "M2"}

	ToggleReaction(&item, "👍", "me")
	ToggleReaction(&item, "❤️", "me")

	if _, ok := item.Reactions["👍"]; ok {
		t.Fatalf("👍 key should be gone once its count reaches 0: %#v", item.Reactions)
	}
	heart := item.Reactions["❤️"]
	if heart.Count != 1 || len(heart.UserIDs) != 1 || heart.UserIDs[0] != "me" {
		t.Fatalf("unexpected ❤️ group: %#v", heart)
	}
	if item.UserReaction != "❤️" {
		t.Fatalf("expected userReaction ❤️, got %q", item.UserReaction)
	}
}

func TestToggleReaction_KeepsOtherUsers(t *testing.T) {
	item := domain.FeedItem{
		ID:           "M3",
		UserReaction: "👍",
		Reactions: map[string]domain.ReactionGroup{
			"👍": {Count: 3, UserIDs: []string{"a", "me", "b"}},
		},
	}
	ToggleReaction(&item, "👍", "me")
	g := item.Reactions["👍"]
	if g.Count != 2 || !reflect.DeepEqual(g.UserIDs, []string{"a", "b"}) {
		t.Fatalf("other users disturbed: %#v", g)
	}
}

func TestStageReaction_RollbackRestoresSnapshot(t *testing.T) {
	e := seededEngine(t)
	e.Arena().Update("C200", func(it *domain.FeedItem) {
		it.Reactions = map[string]domain.ReactionGroup{
			"🎉": {Count: 1, UserIDs: []string{"other"}},
		}
	})
	before, _ := e.Arena().Get("C200")

	// Nested comment located by identity at depth, not by flat position.
	if err := e.StageReaction("C200", "🎉"); err != nil {
		t.Fatalf("stage: %v", err)
	}
	e.RollbackReaction("C200")

	after, _ := e.Arena().Get("C200")
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("reaction rollback diverged:\nwant %#v\ngot  %#v", before, after)
	}
}

func TestCommitReactions_ServerWinsVerbatim(t *testing.T) {
	e := seededEngine(t)
	if err := e.StageReaction("M1", "👍"); err != nil {
		t.Fatalf("stage: %v", err)
	}
	// Concurrent reactions from others landed between the optimistic update
	// and the response; the server map replaces the local one verbatim.
	server := map[string]domain.ReactionGroup{
		"👍": {Count: 4, UserIDs: []string{"me", "x", "y", "z"}},
		"😂": {Count: 1, UserIDs: []string{"x"}},
	}
	e.CommitReactions("M1", server, "👍")

	got, _ := e.Arena().Get("M1")
	if !reflect.DeepEqual(got.Reactions, server) || got.UserReaction != "👍" {
		t.Fatalf("server map not applied verbatim: %#v", got.Reactions)
	}
	// The committed map must not alias the server's.
	server["👍"].UserIDs[0] = "mutated"
	fresh, _ := e.Arena().Get("M1")
	if fresh.Reactions["👍"].UserIDs[0] == "mutated" {
		t.Fatalf("committed reaction map aliases caller data")
	}
}

func TestWallParticipants_JoinLeaveConservation(t *testing.T) {
	w := domain.Wall{ID: "w1", Participants: 7}

	w.ApplyJoin()
	if w.Participants != 8 || !w.IsMember {
		t.Fatalf("join: %#v", w)
	}
	w.ApplyLeave()
	if w.Participants != 7 || w.IsMember {
		t.Fatalf("leave did not conserve participants: %#v", w)
	}

	// Never negative.
	empty := domain.Wall{ID: "w2", IsMember: true, Participants: 0}
	empty.ApplyLeave()
	if empty.Participants != 0 {
		t.Fatalf("participants went negative: %d", empty.Participants)
	}
}
