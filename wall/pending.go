package wall

import (
	"errors"
	"fmt"
	"time"

	"wallterm/domain"
)

// OpKind tags a pending mutation.
type OpKind int

const (
	OpCreate OpKind = iota
	OpEdit
	OpDelete
	OpReaction
	OpLike
)

// OpResolution is the lifecycle state of a pending operation.
type OpResolution int

const (
	OpPending OpResolution = iota
	OpCommitted
	OpRolledBack
)

// ErrOperationPending is returned when a mutation targets an entity that
// already has an unresolved operation. Callers queue the mutation with Defer
// and replay it once Resolve hands it back.
var ErrOperationPending = errors.New("operation already pending for entity")

// PendingOp records one staged optimistic mutation together with the undo
// snapshot needed to restore pre-mutation state exactly.
type PendingOp struct {
	TargetID   string
	Kind       OpKind
	Resolution OpResolution

	// Undo state. Which fields are set depends on Kind.
	itemSnap     domain.FeedItem // edit/reaction/like: pre-mutation item
	subtreeSnap  subtreeSnapshot // delete: removed subtree + position
	counterSnaps []counterSnap   // create: reply counters bumped on the path
}

type counterSnap struct {
	id         string
	replyCount int
}

// Engine applies optimistic mutations to an arena and owns the pending
// operation log. One unresolved operation per entity: later mutations for
// the same entity are deferred until the first resolves.
type Engine struct {
	arena   *Arena
	userID  string
	pending map[string]*PendingOp
	queued  map[string][]any // deferred replay payloads per entity
}

// NewEngine wraps an arena for the given current user.
func NewEngine(arena *Arena, userID string) *Engine {
	return &Engine{
		arena:   arena,
		userID:  userID,
		pending: make(map[string]*PendingOp),
		queued:  make(map[string][]any),
	}
}

// Arena exposes the underlying tree for reads.
func (e *Engine) Arena() *Arena { return e.arena }

// Busy reports whether the entity has an unresolved operation.
func (e *Engine) Busy(id string) bool {
	_, ok := e.pending[e.arena.resolve(id)]
	return ok
}

// Defer queues a replay payload behind the entity's unresolved operation.
func (e *Engine) Defer(id string, payload any) {
	id = e.arena.resolve(id)
	e.queued[id] = append(e.queued[id], payload)
}

// resolveOp finalizes the entity's pending operation and returns any
// deferred payloads for re-staging. PendingOperations are destroyed on
// resolution, never retried. The op may be keyed by a temporary identity
// that was promoted mid-flight, so the raw key is tried before aliasing.
func (e *Engine) resolveOp(id string, res OpResolution) []any {
	key := id
	if _, ok := e.pending[key]; !ok {
		key = e.arena.resolve(id)
	}
	if op, ok := e.pending[key]; ok {
		op.Resolution = res
		delete(e.pending, key)
	}
	deferred := e.queued[key]
	delete(e.queued, key)
	if key != id {
		deferred = append(deferred, e.queued[id]...)
		delete(e.queued, id)
	}
	return deferred
}

// --- create ---

// StageCreateMessage splices a locally-authored message at the top of the
// feed under a temporary identity.
func (e *Engine) StageCreateMessage(item domain.FeedItem) error {
	if _, ok := e.pending[item.ID]; ok {
		return ErrOperationPending
	}
	e.arena.PrependRoot(item)
	e.pending[item.ID] = &PendingOp{TargetID: item.ID, Kind: OpCreate}
	return nil
}

// StageCreateComment splices a locally-authored comment under parentID
// (the message itself or any loaded comment) and bumps the reply counters
// of the direct parent and the hosting message by exactly one each.
func (e *Engine) StageCreateComment(parentID string, item domain.FeedItem) error {
	parentID = e.arena.resolve(parentID)
	if _, ok := e.pending[item.ID]; ok {
		return ErrOperationPending
	}
	if e.Busy(parentID) {
		return ErrOperationPending
	}
	op := &PendingOp{TargetID: item.ID, Kind: OpCreate}
	for _, id := range e.counterPath(parentID) {
		n := e.arena.nodes[id]
		op.counterSnaps = append(op.counterSnaps, counterSnap{id: id, replyCount: n.item.ReplyCount})
		n.item.ReplyCount++
	}
	if err := e.arena.InsertChild(parentID, item); err != nil {
		for _, cs := range op.counterSnaps {
			e.arena.nodes[cs.id].item.ReplyCount = cs.replyCount
		}
		return err
	}
	e.pending[item.ID] = op
	return nil
}

// counterPath lists the entities whose reply counter a new child under
// parentID affects: the direct parent and, if different, the hosting
// message. Counters move by ±1, never by recount.
func (e *Engine) counterPath(parentID string) []string {
	msgID := e.arena.MessageOf(parentID)
	if msgID == parentID {
		return []string{parentID}
	}
	return []string{parentID, msgID}
}

// CommitCreate promotes the temporary entity to its server-confirmed form in
// place and returns deferred mutations queued against the temporary
// identity.
func (e *Engine) CommitCreate(tempID string, confirmed domain.FeedItem) ([]any, error) {
	tempID = e.arena.resolve(tempID)
	op, ok := e.pending[tempID]
	if !ok || op.Kind != OpCreate {
		return nil, fmt.Errorf("no pending create for %s", tempID)
	}
	if err := e.arena.Promote(tempID, confirmed); err != nil {
		return nil, err
	}
	return e.resolveOp(tempID, OpCommitted), nil
}

// RollbackCreate removes the staged entity and restores the bumped
// counters. The tree is left deep-equal to its pre-stage value.
func (e *Engine) RollbackCreate(tempID string) []any {
	tempID = e.arena.resolve(tempID)
	op, ok := e.pending[tempID]
	if ok && op.Kind == OpCreate {
		e.arena.Remove(tempID)
		for _, cs := range op.counterSnaps {
			if n, found := e.arena.nodes[cs.id]; found {
				n.item.ReplyCount = cs.replyCount
			}
		}
	}
	return e.resolveOp(tempID, OpRolledBack)
}

// --- edit ---

// StageEdit applies new content optimistically and snapshots the old item.
func (e *Engine) StageEdit(id, content string, now time.Time) error {
	id = e.arena.resolve(id)
	if e.Busy(id) {
		return ErrOperationPending
	}
	n, ok := e.arena.nodes[id]
	if !ok {
		return errNotLoaded(id)
	}
	op := &PendingOp{TargetID: id, Kind: OpEdit, itemSnap: n.item.Clone()}
	n.item.Content = content
	n.item.Tags = domain.ExtractTags(content)
	n.item.Edited = true
	n.item.EditedAt = now
	e.pending[id] = op
	return nil
}

// CommitEdit keeps the optimistic content (the server call returns no body).
func (e *Engine) CommitEdit(id string) []any {
	return e.resolveOp(id, OpCommitted)
}

// RollbackEdit restores the snapshot taken at stage time.
func (e *Engine) RollbackEdit(id string) []any {
	id = e.arena.resolve(id)
	if op, ok := e.pending[id]; ok && op.Kind == OpEdit {
		e.arena.Replace(op.itemSnap.Clone())
	}
	return e.resolveOp(id, OpRolledBack)
}

// --- delete ---

// StageDelete removes the entity (and its subtree) immediately, adjusting
// the reply counters on the path by exactly minus one, and snapshots
// everything needed to splice it back.
func (e *Engine) StageDelete(id string) error {
	id = e.arena.resolve(id)
	if e.Busy(id) {
		return ErrOperationPending
	}
	snap, ok := e.arena.Snapshot(id)
	if !ok {
		return errNotLoaded(id)
	}
	op := &PendingOp{TargetID: id, Kind: OpDelete, subtreeSnap: snap}
	if parentID := e.arena.parents[id]; parentID != "" {
		for _, cid := range e.counterPath(parentID) {
			n := e.arena.nodes[cid]
			op.counterSnaps = append(op.counterSnaps, counterSnap{id: cid, replyCount: n.item.ReplyCount})
			if n.item.ReplyCount > 0 {
				n.item.ReplyCount--
			}
		}
	}
	e.arena.Remove(id)
	e.pending[id] = op
	return nil
}

// CommitDelete finalizes a staged delete.
func (e *Engine) CommitDelete(id string) []any {
	return e.resolveOp(id, OpCommitted)
}

// RollbackDelete splices the removed subtree back at its original position
// and restores the counters.
func (e *Engine) RollbackDelete(id string) []any {
	id = e.arena.resolve(id)
	if op, ok := e.pending[id]; ok && op.Kind == OpDelete {
		e.arena.RestoreRemoved(op.subtreeSnap)
		for _, cs := range op.counterSnaps {
			if n, found := e.arena.nodes[cs.id]; found {
				n.item.ReplyCount = cs.replyCount
			}
		}
	}
	return e.resolveOp(id, OpRolledBack)
}

// --- like ---

// StageLike toggles the like flag and moves the counter by exactly one.
func (e *Engine) StageLike(id string) error {
	id = e.arena.resolve(id)
	if e.Busy(id) {
		return ErrOperationPending
	}
	n, ok := e.arena.nodes[id]
	if !ok {
		return errNotLoaded(id)
	}
	op := &PendingOp{TargetID: id, Kind: OpLike, itemSnap: n.item.Clone()}
	if n.item.Liked {
		n.item.Liked = false
		if n.item.LikeCount > 0 {
			n.item.LikeCount--
		}
	} else {
		n.item.Liked = true
		n.item.LikeCount++
	}
	e.pending[id] = op
	return nil
}

// CommitLike applies the server's authoritative count and state.
func (e *Engine) CommitLike(id string, likes int, liked bool) []any {
	id = e.arena.resolve(id)
	e.arena.Update(id, func(it *domain.FeedItem) {
		it.LikeCount = likes
		it.Liked = liked
	})
	return e.resolveOp(id, OpCommitted)
}

// RollbackLike restores the pre-toggle state.
func (e *Engine) RollbackLike(id string) []any {
	id = e.arena.resolve(id)
	if op, ok := e.pending[id]; ok && op.Kind == OpLike {
		e.arena.Replace(op.itemSnap.Clone())
	}
	return e.resolveOp(id, OpRolledBack)
}

// --- reaction ---

// StageReaction recomputes the entity's reaction map locally for the
// current user choosing emoji. The pre-mutation map is the undo snapshot.
func (e *Engine) StageReaction(id, emoji string) error {
	id = e.arena.resolve(id)
	if e.Busy(id) {
		return ErrOperationPending
	}
	n, ok := e.arena.nodes[id]
	if !ok {
		return errNotLoaded(id)
	}
	op := &PendingOp{TargetID: id, Kind: OpReaction, itemSnap: n.item.Clone()}
	ToggleReaction(&n.item, emoji, e.userID)
	e.pending[id] = op
	return nil
}

// CommitReactions replaces the local reaction map verbatim with the
// server's authoritative one; concurrent reactions from other users may
// have landed since the optimistic update.
func (e *Engine) CommitReactions(id string, reactions map[string]domain.ReactionGroup, userReaction string) []any {
	id = e.arena.resolve(id)
	e.arena.Update(id, func(it *domain.FeedItem) {
		it.Reactions = domain.CloneReactions(reactions)
		it.UserReaction = userReaction
	})
	return e.resolveOp(id, OpCommitted)
}

// RollbackReaction restores the pre-toggle reaction map.
func (e *Engine) RollbackReaction(id string) []any {
	id = e.arena.resolve(id)
	if op, ok := e.pending[id]; ok && op.Kind == OpReaction {
		e.arena.Replace(op.itemSnap.Clone())
	}
	return e.resolveOp(id, OpRolledBack)
}

// --- remote merge ---

// MergeRemoteMessage folds a push-delivered message into the feed through
// the same commit shape local mutations use. It deduplicates against both
// confirmed entities and the echo of the user's own still-pending create.
func (e *Engine) MergeRemoteMessage(item domain.FeedItem) bool {
	if e.arena.Has(item.ID) {
		return false
	}
	if item.AuthorID == e.userID {
		// Echo of our own action: the optimistic entity (or its promoted
		// form) already owns this position.
		for id, op := range e.pending {
			if op.Kind == OpCreate {
				if n, ok := e.arena.nodes[id]; ok && n.item.Content == item.Content {
					return false
				}
			}
		}
	}
	e.arena.PrependRoot(item)
	return true
}
