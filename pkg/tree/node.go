package tree

import (
	"fmt"

	"github.com/go-drift/datatree/pkg/errors"
	"github.com/go-drift/datatree/pkg/lifetime"
	"github.com/go-drift/datatree/pkg/undo"
)

// Node is a shared reference to a tree node. The zero value is empty.
// Nodes are comparable: n == other reports whether both handles alias
// the same underlying node.
type Node struct {
	data *nodeData
}

// nodeData is the shared state behind one or more Node handles.
type nodeData struct {
	typeID    string
	props     propertySet
	children  []*nodeData
	parent    *nodeData
	history   *undo.History
	listeners *listenerSet
	life      *lifetime.Lifetime
}

// New creates a root node with the given type id and no undo binding.
func New(typeID string) Node {
	return NewWithHistory(typeID, nil)
}

// NewWithHistory creates a root node bound to the given history.
// Every mutation on the node (and on children attached to it) is
// recorded there. A nil history means mutations apply directly.
func NewWithHistory(typeID string, h *undo.History) Node {
	return Node{data: &nodeData{
		typeID:  typeID,
		history: h,
		life:    lifetime.New(),
	}}
}

// Exists reports whether the handle is bound to a live node.
func (n Node) Exists() bool {
	return n.data != nil && n.data.life.Alive()
}

// Type returns the immutable type id set at creation, or "" for an
// empty handle.
func (n Node) Type() string {
	if !n.Exists() {
		return ""
	}
	return n.data.typeID
}

// History returns the bound undo history, or nil.
func (n Node) History() *undo.History {
	if !n.Exists() {
		return nil
	}
	return n.data.history
}

// SetHistory binds the node and its subtree to a history.
func (n Node) SetHistory(h *undo.History) {
	if n.Exists() {
		n.data.setHistoryRecursive(h)
	}
}

// Parent returns the enclosing node, or an empty handle for a root.
func (n Node) Parent() Node {
	if !n.Exists() || n.data.parent == nil {
		return Node{}
	}
	return Node{data: n.data.parent}
}

// Root walks the parent chain to the top.
func (n Node) Root() Node {
	if !n.Exists() {
		return Node{}
	}
	d := n.data
	for d.parent != nil {
		d = d.parent
	}
	return Node{data: d}
}

// NumChildren returns the number of immediate children.
func (n Node) NumChildren() int {
	if !n.Exists() {
		return 0
	}
	return len(n.data.children)
}

// Child returns the child at the given index, or an empty handle if
// the index is out of range.
func (n Node) Child(index int) Node {
	if !n.Exists() || index < 0 || index >= len(n.data.children) {
		return Node{}
	}
	return Node{data: n.data.children[index]}
}

// ChildWithName returns the first immediate child with the given type
// id, or an empty handle.
func (n Node) ChildWithName(typeID string) Node {
	if !n.Exists() {
		return Node{}
	}
	for _, c := range n.data.children {
		if c.typeID == typeID {
			return Node{data: c}
		}
	}
	return Node{}
}

// Children returns a snapshot of the immediate children.
func (n Node) Children() []Node {
	if !n.Exists() {
		return nil
	}
	out := make([]Node, len(n.data.children))
	for i, c := range n.data.children {
		out[i] = Node{data: c}
	}
	return out
}

// IndexOf returns the position of child among the immediate children,
// or -1.
func (n Node) IndexOf(child Node) int {
	if !n.Exists() || child.data == nil {
		return -1
	}
	for i, c := range n.data.children {
		if c == child.data {
			return i
		}
	}
	return -1
}

// IsChildOf reports whether possibleParent is the direct parent of n.
func (n Node) IsChildOf(possibleParent Node) bool {
	if !n.Exists() {
		return false
	}
	return n.data.parent != nil && n.data.parent == possibleParent.data
}

// AddChild attaches child at the given index; -1 appends. The child
// must not already have a parent: attaching a parented node returns a
// KindInvalidOp error. Empty handles on either side are a no-op.
//
// The attachment is reversible: the child inherits this node's undo
// binding, and undoing the action detaches it again.
func (n Node) AddChild(child Node, index int) error {
	if !n.Exists() || !child.Exists() {
		return nil
	}
	if child.data.parent != nil {
		return errors.Report(&errors.TreeError{
			Op:       "tree.AddChild",
			Kind:     errors.KindInvalidOp,
			Err:      fmt.Errorf("node already has a parent"),
			NodeType: child.data.typeID,
		})
	}

	childData := child.data
	n.perform(func(target Node, isUndo bool) bool {
		c := Node{data: childData}
		if isUndo {
			target.notifyChildChanged(c, false)
			target.data.detach(childData)
			c.notifyParentChanged()
		} else {
			target.data.attach(childData, index)
			target.notifyChildChanged(c, true)
			c.notifyParentChanged()
		}
		return true
	})
	return nil
}

// RemoveChild detaches child from this node. Returns false without
// touching the tree if child is not currently one of its children.
func (n Node) RemoveChild(child Node) bool {
	if !n.Exists() || !child.Exists() {
		return false
	}
	idx := n.IndexOf(child)
	if idx == -1 {
		return false
	}

	childData := child.data
	n.perform(func(target Node, isUndo bool) bool {
		c := Node{data: childData}
		if isUndo {
			target.data.attach(childData, idx)
			target.notifyChildChanged(c, true)
			c.notifyParentChanged()
		} else {
			target.notifyChildChanged(c, false)
			target.data.detach(childData)
			c.notifyParentChanged()
		}
		return true
	})
	return true
}

// MoveChild reorders the child at oldIndex to newIndex as a reversible
// action. Out-of-range indexes return false.
func (n Node) MoveChild(oldIndex, newIndex int) bool {
	if !n.Exists() {
		return false
	}
	count := len(n.data.children)
	if oldIndex < 0 || oldIndex >= count || newIndex < 0 || newIndex >= count || oldIndex == newIndex {
		return false
	}

	n.perform(func(target Node, isUndo bool) bool {
		from, to := oldIndex, newIndex
		if isUndo {
			from, to = newIndex, oldIndex
		}
		target.data.move(from, to)
		target.notifyChildMoved(from, to)
		return true
	})
	return true
}

// GetOrCreateChild returns the first immediate child with the given
// type id, creating and appending one if absent. The creation is a
// normal reversible action; callers that want it isolated as its own
// undo step should wrap the call in History.Isolate.
func (n Node) GetOrCreateChild(typeID string) Node {
	if !n.Exists() {
		return Node{}
	}
	if c := n.ChildWithName(typeID); c.Exists() {
		return c
	}
	child := New(typeID)
	n.AddChild(child, -1)
	return child
}

// ForEach visits this node and every descendant in depth-first
// pre-order. The visitor returns true to stop early; ForEach returns
// true iff the traversal was stopped.
func (n Node) ForEach(visit func(Node) bool) bool {
	if !n.Exists() {
		return false
	}
	if visit(n) {
		return true
	}
	for _, c := range n.data.children {
		if (Node{data: c}).ForEach(visit) {
			return true
		}
	}
	return false
}

// ForEachParent visits this node and every ancestor up to the root.
// The visitor returns true to stop early; ForEachParent returns true
// iff the walk was stopped.
func (n Node) ForEachParent(visit func(Node) bool) bool {
	if !n.Exists() {
		return false
	}
	if visit(n) {
		return true
	}
	return n.Parent().ForEachParent(visit)
}

// Destroy permanently deletes the node and its subtree, outside the
// undo timeline's awareness. The node is detached from its parent
// without recording, and every liveness token in the subtree ends so
// that undo actions still referencing these nodes report empty and
// are pruned instead of resurrecting dead data.
func (n Node) Destroy() {
	if !n.Exists() {
		return
	}
	if p := n.data.parent; p != nil {
		p.detach(n.data)
	}
	n.ForEach(func(c Node) bool {
		c.data.life.End()
		return false
	})
}

// perform routes a reversible mutation. With a bound history the
// function is wrapped in an action holding the node's liveness token
// and submitted there; without one it executes directly, forward only.
func (n Node) perform(fn func(target Node, isUndo bool) bool) bool {
	if !n.Exists() {
		return false
	}
	if h := n.data.history; h != nil {
		data := n.data
		return h.Perform(data.life, func(isUndo bool) bool {
			return fn(Node{data: data}, isUndo)
		})
	}
	return fn(n, false)
}

// attach links child into the children list and propagates the undo
// binding through the attached subtree. index -1 appends.
func (d *nodeData) attach(child *nodeData, index int) {
	child.parent = d
	child.setHistoryRecursive(d.history)
	if index < 0 || index > len(d.children) {
		d.children = append(d.children, child)
		return
	}
	d.children = append(d.children, nil)
	copy(d.children[index+1:], d.children[index:])
	d.children[index] = child
}

// detach unlinks child and clears its parent and undo binding.
func (d *nodeData) detach(child *nodeData) bool {
	for i, c := range d.children {
		if c == child {
			d.children = append(d.children[:i], d.children[i+1:]...)
			child.parent = nil
			child.setHistoryRecursive(nil)
			return true
		}
	}
	return false
}

func (d *nodeData) setHistoryRecursive(h *undo.History) {
	d.history = h
	for _, c := range d.children {
		c.setHistoryRecursive(h)
	}
}

func (d *nodeData) move(from, to int) {
	child := d.children[from]
	d.children = append(d.children[:from], d.children[from+1:]...)
	d.children = append(d.children, nil)
	copy(d.children[to+1:], d.children[to:])
	d.children[to] = child
}
