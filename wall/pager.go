package wall

import (
	"fmt"
	"sort"
	"time"

	"wallterm/domain"
)

// PageSize is the fixed page length of wall message requests.
const PageSize = 20

// visibleDateMinInterval bounds how often the visible date may republish
// during continuous scrolling.
const visibleDateMinInterval = 250 * time.Millisecond

// PageState is the load state of a wall's feed.
type PageState int

const (
	PageIdle PageState = iota
	PageLoading
	PageLoaded
	PageLoadingMore
)

// Partition groups the feed items sharing one calendar day.
type Partition struct {
	Date    time.Time // Local midnight.
	ItemIDs []string  // Newest first, matching feed order.
}

// Pager tracks pagination and calendar-day partitions for one wall's
// reverse-chronological feed. It is rendering-agnostic: the view layer
// feeds it the index of the topmost visible partition and reads the
// published date back.
type Pager struct {
	wallID     string
	state      PageState
	page       int
	hasMore    bool
	partitions []Partition
	index      map[string]int // item ID -> partition index
	seen       map[string]struct{}

	visibleDate time.Time
	lastPublish time.Time
	pendingIdx  int
	havePending bool
	now         func() time.Time
}

// NewPager creates a pager for a wall.
func NewPager(wallID string) *Pager {
	return &Pager{
		wallID:  wallID,
		hasMore: true,
		index:   make(map[string]int),
		seen:    make(map[string]struct{}),
		now:     time.Now,
	}
}

// WallID returns the wall this pager belongs to, used to discard stale
// responses after the active wall changed.
func (p *Pager) WallID() string { return p.wallID }

// State returns the current load state.
func (p *Pager) State() PageState { return p.state }

// Loading reports whether any fetch is in flight.
func (p *Pager) Loading() bool {
	return p.state == PageLoading || p.state == PageLoadingMore
}

// HasMore reports whether an older page may still exist.
func (p *Pager) HasMore() bool { return p.hasMore }

// Page returns the last requested 1-indexed page.
func (p *Pager) Page() int { return p.page }

// BeginLoad arms the initial (or refresh) fetch of page 1. It returns false
// while another load is in flight.
func (p *Pager) BeginLoad() bool {
	if p.Loading() {
		return false
	}
	p.state = PageLoading
	p.page = 1
	return true
}

// BeginLoadMore arms the fetch of the next page. Disabled while a load is
// in flight or after a short page signalled exhaustion.
func (p *Pager) BeginLoadMore() bool {
	if p.Loading() || !p.hasMore || p.state == PageIdle {
		return false
	}
	p.state = PageLoadingMore
	p.page++
	return true
}

// CompletePage folds a fetched page into the partitions. Pass the items of
// the page in feed order (newest first). rawCount is the unfiltered server
// count; a page shorter than PageSize marks the feed exhausted.
func (p *Pager) CompletePage(items []domain.FeedItem, rawCount int) {
	if p.state == PageLoading {
		p.partitions = nil
		p.index = make(map[string]int)
		p.seen = make(map[string]struct{})
		// A throttled observation refers to the replaced partitions.
		p.havePending = false
		p.pendingIdx = 0
	}
	for _, it := range items {
		if _, dup := p.seen[it.ID]; dup {
			continue
		}
		p.seen[it.ID] = struct{}{}
		day := DayOf(it.CreatedAt)
		idx := len(p.partitions) - 1
		if idx < 0 || !p.partitions[idx].Date.Equal(day) {
			if existing, ok := p.partitionFor(day); ok {
				idx = existing
			} else {
				p.partitions = append(p.partitions, Partition{Date: day})
				idx = len(p.partitions) - 1
			}
		}
		p.partitions[idx].ItemIDs = append(p.partitions[idx].ItemIDs, it.ID)
		p.index[it.ID] = idx
	}
	p.hasMore = rawCount == PageSize
	p.state = PageLoaded
}

// FailPage returns the state machine to loaded (or idle if nothing was
// ever loaded) after a fetch error.
func (p *Pager) FailPage() {
	if p.state == PageLoading {
		p.state = PageIdle
		return
	}
	if p.state == PageLoadingMore {
		p.page--
		p.state = PageLoaded
	}
}

func (p *Pager) partitionFor(day time.Time) (int, bool) {
	for i := range p.partitions {
		if p.partitions[i].Date.Equal(day) {
			return i, true
		}
	}
	return 0, false
}

// Partitions returns the day partitions, newest first.
func (p *Pager) Partitions() []Partition { return p.partitions }

// ActiveDates returns the distinct days that currently contain data,
// newest first.
func (p *Pager) ActiveDates() []time.Time {
	out := make([]time.Time, 0, len(p.partitions))
	for _, part := range p.partitions {
		out = append(out, part.Date)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].After(out[j]) })
	return out
}

// AddRoot registers a message that entered the feed outside a page load:
// optimistic creations and pushed remote messages. The item joins the front
// of its calendar day's partition; a missing day is created at the front,
// since such messages are the newest in the feed.
func (p *Pager) AddRoot(id string, createdAt time.Time) {
	if _, dup := p.seen[id]; dup {
		return
	}
	p.seen[id] = struct{}{}
	day := DayOf(createdAt)
	idx, ok := p.partitionFor(day)
	if !ok {
		p.partitions = append([]Partition{{Date: day}}, p.partitions...)
		idx = 0
		for itemID, i := range p.index {
			p.index[itemID] = i + 1
		}
		if p.havePending {
			p.pendingIdx++
		}
	}
	p.partitions[idx].ItemIDs = append([]string{id}, p.partitions[idx].ItemIDs...)
	p.index[id] = idx
}

// ReplaceID renames a tracked item after temp-identity promotion.
func (p *Pager) ReplaceID(oldID, newID string) {
	idx, ok := p.index[oldID]
	if !ok {
		return
	}
	delete(p.index, oldID)
	delete(p.seen, oldID)
	p.index[newID] = idx
	p.seen[newID] = struct{}{}
	ids := p.partitions[idx].ItemIDs
	for i, id := range ids {
		if id == oldID {
			ids[i] = newID
			break
		}
	}
}

// RemoveRoot drops a tracked item after a rollback or delete. A partition
// left empty is removed with the indices of the remaining items shifted.
func (p *Pager) RemoveRoot(id string) {
	idx, ok := p.index[id]
	if !ok {
		return
	}
	delete(p.index, id)
	delete(p.seen, id)
	ids := p.partitions[idx].ItemIDs
	for i, v := range ids {
		if v == id {
			p.partitions[idx].ItemIDs = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(p.partitions[idx].ItemIDs) > 0 {
		return
	}
	p.partitions = append(p.partitions[:idx], p.partitions[idx+1:]...)
	for itemID, i := range p.index {
		if i > idx {
			p.index[itemID] = i - 1
		}
	}
	if p.havePending {
		if p.pendingIdx == idx {
			p.havePending = false
		} else if p.pendingIdx > idx {
			p.pendingIdx--
		}
	}
}

// PartitionOf returns the partition index holding item id.
func (p *Pager) PartitionOf(id string) (int, bool) {
	idx, ok := p.index[id]
	return idx, ok
}

// ObserveTopPartition records the topmost partition currently in view, as
// reported by the rendering layer. Publication of the derived date is
// throttled; it returns true when the published date changed.
func (p *Pager) ObserveTopPartition(idx int) bool {
	if idx < 0 || idx >= len(p.partitions) {
		return false
	}
	p.pendingIdx = idx
	p.havePending = true
	return p.publishPending(false)
}

// FlushVisibleDate force-publishes the last observed position, bypassing
// the throttle. The scroll-settle path calls this.
func (p *Pager) FlushVisibleDate() bool {
	return p.publishPending(true)
}

func (p *Pager) publishPending(force bool) bool {
	if !p.havePending {
		return false
	}
	if p.pendingIdx < 0 || p.pendingIdx >= len(p.partitions) {
		p.havePending = false
		return false
	}
	nowT := p.now()
	if !force && !p.lastPublish.IsZero() && nowT.Sub(p.lastPublish) < visibleDateMinInterval {
		return false
	}
	date := p.partitions[p.pendingIdx].Date
	p.lastPublish = nowT
	p.havePending = false
	if date.Equal(p.visibleDate) {
		return false
	}
	p.visibleDate = date
	return true
}

// VisibleDate returns the published in-view day; today when nothing is
// loaded yet.
func (p *Pager) VisibleDate() time.Time {
	if p.visibleDate.IsZero() {
		return DayOf(p.now())
	}
	return p.visibleDate
}

// JumpResult describes where a jump-to-date landed.
type JumpResult struct {
	Date      time.Time // The day actually scrolled to.
	ItemID    string    // First item of that partition.
	Partition int
	Fallback  bool
	Notice    string // User-facing explanation when a fallback was used.
}

// JumpToDate finds the partition for the requested day. When the day holds
// no messages it falls back to the nearest earlier active day, or the
// earliest active day overall if none is earlier. The search never falls
// forward to a later day.
func (p *Pager) JumpToDate(want time.Time) (JumpResult, bool) {
	if len(p.partitions) == 0 {
		return JumpResult{}, false
	}
	day := DayOf(want)
	if idx, ok := p.partitionFor(day); ok {
		return p.jumpTo(idx, day, false), true
	}

	dates := p.ActiveDates() // newest first
	for _, d := range dates {
		if d.Before(day) {
			idx, _ := p.partitionFor(d)
			return p.jumpTo(idx, day, true), true
		}
	}
	oldest := dates[len(dates)-1]
	idx, _ := p.partitionFor(oldest)
	return p.jumpTo(idx, day, true), true
}

func (p *Pager) jumpTo(idx int, requested time.Time, fallback bool) JumpResult {
	part := p.partitions[idx]
	res := JumpResult{Date: part.Date, Partition: idx, Fallback: fallback}
	if len(part.ItemIDs) > 0 {
		res.ItemID = part.ItemIDs[0]
	}
	if fallback {
		res.Notice = fmt.Sprintf("No messages on %s, showing %s instead",
			requested.Format("Jan 2"), part.Date.Format("Jan 2"))
	}
	return res
}

// DayOf normalizes a timestamp to local midnight.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Local().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}
