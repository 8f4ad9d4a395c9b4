package wall

import (
	"fmt"
	"testing"
	"time"

	"wallterm/domain"
)

func comment(id, parent string, at time.Time) domain.FeedItem {
	return domain.FeedItem{
		ID:        id,
		ParentID:  parent,
		Content:   "c-" + id,
		CreatedAt: at,
	}
}

func TestBuildCommentTree_RoundTrip(t *testing.T) {
	base := time.Date(2025, 10, 20, 12, 0, 0, 0, time.UTC)
	records := []domain.FeedItem{
		comment("c3", "c1", base.Add(3*time.Minute)),
		comment("c1", "", base),
		comment("c4", "c3", base.Add(4*time.Minute)),
		comment("c2", "M1", base.Add(2*time.Minute)),
		comment("c5", "c1", base.Add(5*time.Minute)),
	}

	roots := BuildCommentTree("M1", "me", records)
	flat := FlattenDepthFirst(roots)
	if len(flat) != len(records) {
		t.Fatalf("flatten: want %d records, got %d", len(records), len(flat))
	}
	seen := map[string]bool{}
	for _, it := range flat {
		if seen[it.ID] {
			t.Fatalf("duplicate record %s", it.ID)
		}
		seen[it.ID] = true
	}

	// Parent/child pointers are mutually consistent.
	var check func(n *CommentNode)
	check = func(n *CommentNode) {
		for _, r := range n.Replies {
			if r.Item.ParentID != n.Item.ID {
				t.Fatalf("child %s has parent %q, nested under %s", r.Item.ID, r.Item.ParentID, n.Item.ID)
			}
			check(r)
		}
	}
	for _, n := range roots {
		check(n)
	}
}

func TestBuildCommentTree_SiblingsOldestFirst(t *testing.T) {
	base := time.Now()
	records := []domain.FeedItem{
		comment("b", "", base.Add(2*time.Minute)),
		comment("a", "", base),
		comment("c", "", base.Add(time.Minute)),
	}
	roots := BuildCommentTree("M1", "me", records)
	got := ""
	for _, n := range roots {
		got += n.Item.ID
	}
	if got != "acb" {
		t.Fatalf("expected siblings ordered oldest first (acb), got %s", got)
	}
}

func TestBuildCommentTree_OrphanPromotedToRoot(t *testing.T) {
	records := []domain.FeedItem{
		comment("c1", "M1", time.Now()),
		comment("c2", "gone", time.Now().Add(time.Second)),
	}
	roots := BuildCommentTree("M1", "me", records)
	if len(roots) != 2 {
		t.Fatalf("expected orphan promoted to root, got %d roots", len(roots))
	}
	var orphan *CommentNode
	for _, n := range roots {
		if n.Item.ID == "c2" {
			orphan = n
		}
	}
	if orphan == nil || !orphan.Orphaned {
		t.Fatalf("expected c2 flagged as orphaned, got %#v", orphan)
	}
}

func TestBuildCommentTree_EmptyInput(t *testing.T) {
	if roots := BuildCommentTree("M1", "me", nil); len(roots) != 0 {
		t.Fatalf("expected empty root list, got %d", len(roots))
	}
}

func TestBuildCommentTree_DerivesUserReaction(t *testing.T) {
	rec := comment("c1", "", time.Now())
	rec.Reactions = map[string]domain.ReactionGroup{
		"👍":  {Count: 2, UserIDs: []string{"other", "me"}},
		"❤️": {Count: 1, UserIDs: []string{"third"}},
	}
	roots := BuildCommentTree("M1", "me", []domain.FeedItem{rec})
	if got := roots[0].Item.UserReaction; got != "👍" {
		t.Fatalf("expected user reaction 👍, got %q", got)
	}
	// Pure function: input record untouched.
	if rec.UserReaction != "" {
		t.Fatalf("input record mutated")
	}
}

func TestBuildCommentTree_DeepNesting(t *testing.T) {
	base := time.Now()
	var records []domain.FeedItem
	parent := ""
	for i := 0; i < 12; i++ {
		id := fmt.Sprintf("c%d", i)
		records = append(records, comment(id, parent, base.Add(time.Duration(i)*time.Second)))
		parent = id
	}
	roots := BuildCommentTree("M1", "me", records)
	depth := 0
	for n := roots[0]; n != nil; {
		depth++
		if len(n.Replies) == 0 {
			n = nil
		} else {
			n = n.Replies[0]
		}
	}
	if depth != 12 {
		t.Fatalf("expected chain depth 12, got %d", depth)
	}
}
