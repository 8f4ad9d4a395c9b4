package wall

import (
	"fmt"

	"github.com/google/uuid"

	"wallterm/domain"
)

// Arena holds every loaded feed item of one wall as a flat map keyed by
// identity. Parent/child links are identity references, never pointers, so
// a tree rewrite is always "replace node at key" and cannot form cycles.
type Arena struct {
	nodes   map[string]*node
	parents map[string]string // child ID -> parent ID ("" for root messages)
	roots   []string          // ordered message IDs, newest first
	aliases map[string]string // promoted temp ID -> server ID
}

type node struct {
	item     domain.FeedItem
	children []string // ordered child comment IDs
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{
		nodes:   make(map[string]*node),
		parents: make(map[string]string),
		aliases: make(map[string]string),
	}
}

// NewLocalID mints a temporary message identity.
func NewLocalID() string {
	return domain.LocalIDPrefix + uuid.NewString()
}

// NewLocalCommentID mints a temporary comment identity.
func NewLocalCommentID() string {
	return domain.LocalIDPrefix + "comment-" + uuid.NewString()
}

// resolve follows promotion aliases so commits and rollbacks that still hold
// a temporary identity find the promoted node.
func (a *Arena) resolve(id string) string {
	for {
		next, ok := a.aliases[id]
		if !ok {
			return id
		}
		id = next
	}
}

// Get returns the item for id, following promotion aliases.
func (a *Arena) Get(id string) (domain.FeedItem, bool) {
	n, ok := a.nodes[a.resolve(id)]
	if !ok {
		return domain.FeedItem{}, false
	}
	return n.item, true
}

// Has reports whether id (or its promoted identity) is loaded.
func (a *Arena) Has(id string) bool {
	_, ok := a.nodes[a.resolve(id)]
	return ok
}

// Len returns the number of loaded items, messages and comments both.
func (a *Arena) Len() int {
	return len(a.nodes)
}

// Roots returns the ordered messages.
func (a *Arena) Roots() []domain.FeedItem {
	out := make([]domain.FeedItem, 0, len(a.roots))
	for _, id := range a.roots {
		out = append(out, a.nodes[id].item)
	}
	return out
}

// RootIDs returns the ordered message identities.
func (a *Arena) RootIDs() []string {
	return append([]string(nil), a.roots...)
}

// Children returns the ordered child comments of id.
func (a *Arena) Children(id string) []domain.FeedItem {
	n, ok := a.nodes[a.resolve(id)]
	if !ok {
		return nil
	}
	out := make([]domain.FeedItem, 0, len(n.children))
	for _, cid := range n.children {
		out = append(out, a.nodes[cid].item)
	}
	return out
}

// Parent returns the parent identity of id ("" for root messages).
func (a *Arena) Parent(id string) string {
	return a.parents[a.resolve(id)]
}

// MessageOf walks up to the root message hosting id.
func (a *Arena) MessageOf(id string) string {
	id = a.resolve(id)
	for {
		p, ok := a.parents[id]
		if !ok || p == "" {
			return id
		}
		id = p
	}
}

// PrependRoot inserts a message at the top of the feed.
func (a *Arena) PrependRoot(item domain.FeedItem) {
	a.nodes[item.ID] = &node{item: item}
	a.parents[item.ID] = ""
	a.roots = append([]string{item.ID}, a.roots...)
}

// AppendRoot inserts a message at the bottom of the feed (older pages).
// Duplicate identities are ignored.
func (a *Arena) AppendRoot(item domain.FeedItem) bool {
	if _, ok := a.nodes[item.ID]; ok {
		return false
	}
	a.nodes[item.ID] = &node{item: item}
	a.parents[item.ID] = ""
	a.roots = append(a.roots, item.ID)
	return true
}

// InsertChild appends item under parentID. The parent may sit at any depth.
func (a *Arena) InsertChild(parentID string, item domain.FeedItem) error {
	parentID = a.resolve(parentID)
	p, ok := a.nodes[parentID]
	if !ok {
		return fmt.Errorf("parent %s not loaded", parentID)
	}
	a.nodes[item.ID] = &node{item: item}
	a.parents[item.ID] = parentID
	p.children = append(p.children, item.ID)
	return nil
}

// Replace swaps the stored item for id in place, keeping position, parent
// and children untouched.
func (a *Arena) Replace(item domain.FeedItem) bool {
	n, ok := a.nodes[a.resolve(item.ID)]
	if !ok {
		return false
	}
	n.item = item
	return true
}

// Update applies fn to the item for id in place.
func (a *Arena) Update(id string, fn func(*domain.FeedItem)) bool {
	n, ok := a.nodes[a.resolve(id)]
	if !ok {
		return false
	}
	fn(&n.item)
	return true
}

// Promote swaps a temporary identity for the server identity in place: same
// parent, same position, children re-parented, and an alias recorded so late
// callbacks holding the temporary identity still resolve.
func (a *Arena) Promote(tempID string, confirmed domain.FeedItem) error {
	tempID = a.resolve(tempID)
	n, ok := a.nodes[tempID]
	if !ok {
		return fmt.Errorf("unknown local item %s", tempID)
	}
	if tempID == confirmed.ID {
		n.item = confirmed
		return nil
	}
	if _, exists := a.nodes[confirmed.ID]; exists {
		// The server entity already landed (remote echo); drop the local one.
		a.remove(tempID)
		a.aliases[tempID] = confirmed.ID
		return nil
	}

	delete(a.nodes, tempID)
	n.item = confirmed
	a.nodes[confirmed.ID] = n

	parentID := a.parents[tempID]
	delete(a.parents, tempID)
	a.parents[confirmed.ID] = parentID
	if parentID == "" {
		for i, id := range a.roots {
			if id == tempID {
				a.roots[i] = confirmed.ID
				break
			}
		}
	} else {
		p := a.nodes[parentID]
		for i, id := range p.children {
			if id == tempID {
				p.children[i] = confirmed.ID
				break
			}
		}
	}
	for _, cid := range n.children {
		a.parents[cid] = confirmed.ID
		a.nodes[cid].item.ParentID = confirmed.ID
	}
	a.aliases[tempID] = confirmed.ID
	return nil
}

// Remove detaches id and its whole subtree. Take a Snapshot first if the
// removal may need to be rolled back.
func (a *Arena) Remove(id string) bool {
	id = a.resolve(id)
	if _, exists := a.nodes[id]; !exists {
		return false
	}
	a.remove(id)
	return true
}

func (a *Arena) remove(id string) {
	n := a.nodes[id]
	for _, cid := range append([]string(nil), n.children...) {
		a.remove(cid)
	}
	parentID := a.parents[id]
	if parentID == "" {
		for i, rid := range a.roots {
			if rid == id {
				a.roots = append(a.roots[:i], a.roots[i+1:]...)
				break
			}
		}
	} else if p, ok := a.nodes[parentID]; ok {
		for i, cid := range p.children {
			if cid == id {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
	}
	delete(a.nodes, id)
	delete(a.parents, id)
}

// subtreeSnapshot captures a node and its descendants for exact restoration.
type subtreeSnapshot struct {
	parentID string
	index    int // position within parent's children (or roots)
	items    []snapshotNode
}

type snapshotNode struct {
	parentID string
	item     domain.FeedItem
	children []string
}

// Snapshot captures id's subtree and position.
func (a *Arena) Snapshot(id string) (subtreeSnapshot, bool) {
	id = a.resolve(id)
	if _, ok := a.nodes[id]; !ok {
		return subtreeSnapshot{}, false
	}
	parentID := a.parents[id]
	index := -1
	siblings := a.roots
	if parentID != "" {
		siblings = a.nodes[parentID].children
	}
	for i, sid := range siblings {
		if sid == id {
			index = i
			break
		}
	}
	snap := subtreeSnapshot{parentID: parentID, index: index}
	a.capture(id, &snap)
	return snap, true
}

func (a *Arena) capture(id string, snap *subtreeSnapshot) {
	n := a.nodes[id]
	snap.items = append(snap.items, snapshotNode{
		parentID: a.parents[id],
		item:     n.item.Clone(),
		children: append([]string(nil), n.children...),
	})
	for _, cid := range n.children {
		a.capture(cid, snap)
	}
}

// RestoreRemoved splices a snapshot taken by Snapshot back into the tree at
// its original position.
func (a *Arena) RestoreRemoved(snap subtreeSnapshot) {
	if len(snap.items) == 0 {
		return
	}
	for _, sn := range snap.items {
		a.nodes[sn.item.ID] = &node{item: sn.item.Clone(), children: append([]string(nil), sn.children...)}
		a.parents[sn.item.ID] = sn.parentID
	}
	rootID := snap.items[0].item.ID
	if snap.parentID == "" {
		a.roots = insertAt(a.roots, snap.index, rootID)
	} else if p, ok := a.nodes[snap.parentID]; ok {
		p.children = insertAt(p.children, snap.index, rootID)
	}
}

func insertAt(list []string, i int, id string) []string {
	if i < 0 || i > len(list) {
		return append(list, id)
	}
	list = append(list, "")
	copy(list[i+1:], list[i:])
	list[i] = id
	return list
}
