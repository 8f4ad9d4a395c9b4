package wall

import (
	"sort"

	"wallterm/domain"
)

// CommentNode is one comment with its nested replies materialized.
type CommentNode struct {
	Item     domain.FeedItem
	Orphaned bool // Parent comment missing from the record set; promoted to root.
	Replies  []*CommentNode
}

// BuildCommentTree turns the flat, unordered comment records of a message
// into the ordered root-level comment list with replies nested to arbitrary
// depth. Records whose declared parent is the message itself are roots.
// Records referencing a parent that is absent from the input are promoted to
// root rather than dropped. Siblings are ordered oldest first.
//
// currentUserID is used to derive each comment's UserReaction from its
// reaction map. The function is pure: records are copied, not mutated.
func BuildCommentTree(messageID, currentUserID string, records []domain.FeedItem) []*CommentNode {
	if len(records) == 0 {
		return nil
	}

	byID := make(map[string]*CommentNode, len(records))
	order := make([]string, 0, len(records))
	for _, rec := range records {
		item := rec.Clone()
		item.UserReaction = userReactionOf(item.Reactions, currentUserID)
		byID[item.ID] = &CommentNode{Item: item}
		order = append(order, item.ID)
	}

	var roots []*CommentNode
	for _, id := range order {
		n := byID[id]
		parentID := n.Item.ParentID
		if parentID == "" || parentID == messageID {
			roots = append(roots, n)
			continue
		}
		parent, ok := byID[parentID]
		if !ok {
			n.Orphaned = true
			roots = append(roots, n)
			continue
		}
		parent.Replies = append(parent.Replies, n)
	}

	sortTree(roots)
	return roots
}

func sortTree(nodes []*CommentNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Item.CreatedAt.Before(nodes[j].Item.CreatedAt)
	})
	for _, n := range nodes {
		sortTree(n.Replies)
	}
}

// FlattenDepthFirst lists every comment of a tree, parents before children.
func FlattenDepthFirst(roots []*CommentNode) []domain.FeedItem {
	var out []domain.FeedItem
	var walk func(*CommentNode)
	walk = func(n *CommentNode) {
		out = append(out, n.Item)
		for _, r := range n.Replies {
			walk(r)
		}
	}
	for _, n := range roots {
		walk(n)
	}
	return out
}

// LoadComments attaches a message's comment tree to the arena, replacing any
// previously loaded comments of that message.
func (a *Arena) LoadComments(messageID, currentUserID string, records []domain.FeedItem) error {
	messageID = a.resolve(messageID)
	if _, ok := a.nodes[messageID]; !ok {
		return errNotLoaded(messageID)
	}
	for _, cid := range append([]string(nil), a.nodes[messageID].children...) {
		a.remove(cid)
	}
	roots := BuildCommentTree(messageID, currentUserID, records)
	var insert func(parentID string, nodes []*CommentNode) error
	insert = func(parentID string, nodes []*CommentNode) error {
		for _, n := range nodes {
			item := n.Item
			item.ParentID = ""
			if parentID != messageID {
				item.ParentID = parentID
			}
			if err := a.InsertChild(parentID, item); err != nil {
				return err
			}
			if err := insert(item.ID, n.Replies); err != nil {
				return err
			}
		}
		return nil
	}
	return insert(messageID, roots)
}

func errNotLoaded(id string) error {
	return &notLoadedError{id: id}
}

type notLoadedError struct{ id string }

func (e *notLoadedError) Error() string { return "message " + e.id + " not loaded" }
