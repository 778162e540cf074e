package outline

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"checklist-cli/internal/model"
)

const copySuffix = " (Copy)"

// node pairs an item with an editor-local key. Parent linkage uses keys, never order_index, so it
// survives renumbering. The persisted parent_id is derived from it by Recalculate.
type node struct {
	key    uuid.UUID
	parent uuid.UUID
	item   model.ChecklistItem

	num  int
	rank int
}

// Editor holds one template's items as an ordered flat list and applies structural edits.
// Every mutation ends with Recalculate, so Items always satisfies the two-level encoding.
type Editor struct {
	nodes []*node
	log   *zap.Logger
}

type Option func(*Editor)

func WithLogger(l *zap.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.log = l
		}
	}
}

// NewEditor loads items (nested or flat) into an editor. The input is not modified.
func NewEditor(items []model.ChecklistItem, opts ...Option) *Editor {
	e := &Editor{log: zap.NewNop()}
	for _, o := range opts {
		o(e)
	}
	for _, it := range Flatten(items) {
		e.nodes = append(e.nodes, newNode(it))
	}
	e.Recalculate()
	return e
}

func newNode(it model.ChecklistItem) *node {
	it.Children = nil
	return &node{key: uuid.New(), item: it}
}

func (e *Editor) Len() int { return len(e.nodes) }

// Items returns a copy of the current flat list.
func (e *Editor) Items() []model.ChecklistItem {
	out := make([]model.ChecklistItem, 0, len(e.nodes))
	for _, n := range e.nodes {
		out = append(out, n.item.Clone())
	}
	return out
}

func (e *Editor) Item(i int) (model.ChecklistItem, error) {
	if err := e.checkIndex("item", i); err != nil {
		return model.ChecklistItem{}, err
	}
	return e.nodes[i].item.Clone(), nil
}

// Update replaces the non-structural fields of the item at i. Structure (level, order, parent)
// is kept.
func (e *Editor) Update(i int, fn func(*model.ChecklistItem)) error {
	if err := e.checkIndex("update", i); err != nil {
		return err
	}
	n := e.nodes[i]
	it := n.item.Clone()
	fn(&it)
	it.Level = n.item.Level
	it.OrderIndex = n.item.OrderIndex
	it.ParentID = n.item.ParentID
	it.Children = nil
	n.item = it
	return nil
}

// Move relocates the item at from to position to and re-parents it from its new neighbours:
//
//	nothing above                          -> parent
//	parent above, child or nothing below   -> child of the parent above
//	child above                            -> joins that child's group
//	parent above and parent below          -> parent
//
// A moved parent takes its children along, placed directly after it in their original order.
func (e *Editor) Move(from, to int) error {
	if err := e.checkIndex("move", from); err != nil {
		return err
	}
	if err := e.checkIndex("move", to); err != nil {
		return err
	}
	if from == to {
		return nil
	}

	moved := e.nodes[from]
	var children []*node
	if moved.item.Level == 0 {
		children = e.childrenOf(moved.key)
	}

	e.nodes = relocate(e.nodes, from, to)
	e.reparent(to)
	if len(children) > 0 {
		e.nodes = placeAfter(e.nodes, moved, children)
	}
	e.Recalculate()

	e.log.Debug("item moved",
		zap.Int("from", from),
		zap.Int("to", to),
		zap.Int("level", moved.item.Level),
		zap.Int("children", len(children)),
	)
	return nil
}

func (e *Editor) MoveUp(i int) error {
	if err := e.checkIndex("move-up", i); err != nil {
		return err
	}
	if i == 0 {
		return nil
	}
	return e.Move(i, i-1)
}

func (e *Editor) MoveDown(i int) error {
	if err := e.checkIndex("move-down", i); err != nil {
		return err
	}
	if i == len(e.nodes)-1 {
		return nil
	}
	return e.Move(i, i+1)
}

// Promote makes the item at i a parent in place. Items after it in its old group become its
// children.
func (e *Editor) Promote(i int) error {
	if err := e.checkIndex("promote", i); err != nil {
		return err
	}
	makeParent(e.nodes[i])
	e.Recalculate()
	return nil
}

// Demote nests the parent at i under the nearest parent above it. Its own children join the
// same group so depth stays at two.
func (e *Editor) Demote(i int) error {
	if err := e.checkIndex("demote", i); err != nil {
		return err
	}
	n := e.nodes[i]
	if n.item.Level != 0 {
		return ErrMaxDepth
	}
	above := -1
	for j := i - 1; j >= 0; j-- {
		if e.nodes[j].item.Level == 0 {
			above = j
			break
		}
	}
	if above < 0 {
		return ErrNoParentAbove
	}
	target := e.nodes[above].key
	for _, c := range e.childrenOf(n.key) {
		c.parent = target
	}
	makeChild(n, target)
	e.Recalculate()
	return nil
}

// Remove deletes the item at i. Removing a parent also removes its children.
func (e *Editor) Remove(i int) error {
	if err := e.checkIndex("remove", i); err != nil {
		return err
	}
	victim := e.nodes[i]
	out := e.nodes[:0:0]
	removed := 0
	for _, n := range e.nodes {
		if n == victim || (victim.item.Level == 0 && n.parent == victim.key) {
			removed++
			continue
		}
		out = append(out, n)
	}
	e.nodes = out
	e.Recalculate()
	e.log.Debug("item removed", zap.Int("index", i), zap.Int("removed", removed))
	return nil
}

// Add appends a new parent item and returns its index.
func (e *Editor) Add(it model.ChecklistItem) int {
	n := newNode(fresh(it))
	makeParent(n)
	e.nodes = append(e.nodes, n)
	e.Recalculate()
	return len(e.nodes) - 1
}

// AddSubItem appends a new child at the end of the group that owns the item at i.
func (e *Editor) AddSubItem(i int, it model.ChecklistItem) (int, error) {
	if err := e.checkIndex("add-sub", i); err != nil {
		return 0, err
	}
	owner := e.nodes[i]
	if owner.item.Level != 0 {
		owner = e.nodeByKey(owner.parent)
	}
	at := e.groupEnd(e.indexOf(owner))
	n := newNode(fresh(it))
	makeChild(n, owner.key)
	e.insert(at, n)
	e.Recalculate()
	return at, nil
}

// AddAbove inserts a new item at i with the same level and group as the item currently there.
func (e *Editor) AddAbove(i int, it model.ChecklistItem) (int, error) {
	if err := e.checkIndex("add-above", i); err != nil {
		return 0, err
	}
	n := newNode(fresh(it))
	sibling(n, e.nodes[i])
	e.insert(i, n)
	e.Recalculate()
	return i, nil
}

// AddBelow inserts a new sibling after the item at i. For a parent the new parent goes after
// the whole group so it does not take over the existing children.
func (e *Editor) AddBelow(i int, it model.ChecklistItem) (int, error) {
	if err := e.checkIndex("add-below", i); err != nil {
		return 0, err
	}
	n := newNode(fresh(it))
	sibling(n, e.nodes[i])
	at := e.siblingSlot(i)
	e.insert(at, n)
	e.Recalculate()
	return at, nil
}

// Duplicate copies the item at i (without id or children) as its next sibling, with
// " (Copy)" appended to the title.
func (e *Editor) Duplicate(i int) (int, error) {
	if err := e.checkIndex("duplicate", i); err != nil {
		return 0, err
	}
	src := e.nodes[i]
	cp := fresh(src.item)
	cp.Title += copySuffix
	n := newNode(cp)
	sibling(n, src)
	at := e.siblingSlot(i)
	e.insert(at, n)
	e.Recalculate()
	return at, nil
}

func (e *Editor) checkIndex(op string, i int) error {
	if i < 0 || i >= len(e.nodes) {
		return &IndexError{Op: op, Index: i, Len: len(e.nodes)}
	}
	return nil
}

// reparent applies the neighbour rules to the item that just landed at i.
func (e *Editor) reparent(i int) {
	moved := e.nodes[i]
	var above, below *node
	if i > 0 {
		above = e.nodes[i-1]
	}
	if i+1 < len(e.nodes) {
		below = e.nodes[i+1]
	}

	switch {
	case above == nil:
		makeParent(moved)
	case above.item.Level == 0 && (below == nil || below.item.Level != 0):
		makeChild(moved, above.key)
	case above.item.Level != 0:
		makeChild(moved, above.parent)
	default:
		makeParent(moved)
	}
	// A parent dropped among its own children stays a parent.
	if moved.item.Level != 0 && moved.parent == moved.key {
		makeParent(moved)
	}
}

func (e *Editor) childrenOf(key uuid.UUID) []*node {
	var out []*node
	for _, n := range e.nodes {
		if n.item.Level != 0 && n.parent == key {
			out = append(out, n)
		}
	}
	return out
}

func (e *Editor) nodeByKey(key uuid.UUID) *node {
	for _, n := range e.nodes {
		if n.key == key {
			return n
		}
	}
	return nil
}

func (e *Editor) indexOf(target *node) int {
	for i, n := range e.nodes {
		if n == target {
			return i
		}
	}
	return -1
}

// groupEnd returns the index just past the parent at i and its children.
func (e *Editor) groupEnd(i int) int {
	j := i + 1
	for j < len(e.nodes) && e.nodes[j].item.Level != 0 {
		j++
	}
	return j
}

func (e *Editor) siblingSlot(i int) int {
	if e.nodes[i].item.Level == 0 {
		return e.groupEnd(i)
	}
	return i + 1
}

func (e *Editor) insert(at int, n *node) {
	e.nodes = append(e.nodes, nil)
	copy(e.nodes[at+1:], e.nodes[at:])
	e.nodes[at] = n
}

func relocate(nodes []*node, from, to int) []*node {
	moved := nodes[from]
	out := make([]*node, 0, len(nodes))
	out = append(out, nodes[:from]...)
	out = append(out, nodes[from+1:]...)
	out = append(out, nil)
	copy(out[to+1:], out[to:])
	out[to] = moved
	return out
}

// placeAfter pulls group out of nodes and reinserts it, in order, right after anchor.
func placeAfter(nodes []*node, anchor *node, group []*node) []*node {
	skip := make(map[*node]bool, len(group))
	for _, g := range group {
		skip[g] = true
	}
	out := make([]*node, 0, len(nodes))
	for _, n := range nodes {
		if skip[n] {
			continue
		}
		out = append(out, n)
		if n == anchor {
			out = append(out, group...)
		}
	}
	return out
}

func makeParent(n *node) {
	n.item.Level = 0
	n.parent = uuid.Nil
}

func makeChild(n *node, parent uuid.UUID) {
	n.item.Level = 1
	n.parent = parent
}

func sibling(n, of *node) {
	if of.item.Level == 0 {
		makeParent(n)
		return
	}
	makeChild(n, of.parent)
}

// fresh strips identity from an item about to be created.
func fresh(it model.ChecklistItem) model.ChecklistItem {
	out := it.Clone()
	out.ID = nil
	out.Children = nil
	for i := range out.SampleImages {
		out.SampleImages[i].ID = nil
	}
	for i := range out.SampleVideos {
		out.SampleVideos[i].ID = nil
	}
	return out
}
