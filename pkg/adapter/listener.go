package adapter

import "github.com/go-drift/datatree/pkg/tree"

// Listener receives the facade's six callbacks. Events fire for the
// wrapped node and its whole subtree. Embed ListenerBase to implement
// only the hooks you need.
type Listener interface {
	// PropertyChanged fires after a property write or removal anywhere
	// in the subtree; origin wraps the node that changed.
	PropertyChanged(origin Tree, key string)
	// ChildAdded fires after a node is attached.
	ChildAdded(parent, child Tree)
	// ChildRemoved fires as a node is detached, while its index is
	// still observable.
	ChildRemoved(parent, child Tree, oldIndex int)
	// ChildMoved fires after a reorder.
	ChildMoved(parent Tree, oldIndex, newIndex int)
	// ParentChanged fires on the wrapped node's listeners when its own
	// parent link changes.
	ParentChanged(t Tree)
	// Redirected fires when the facade handle is pointed at a
	// different node.
	Redirected(t Tree)
}

// ListenerBase is a no-op implementation of every hook.
type ListenerBase struct{}

func (ListenerBase) PropertyChanged(Tree, string) {}
func (ListenerBase) ChildAdded(Tree, Tree)        {}
func (ListenerBase) ChildRemoved(Tree, Tree, int) {}
func (ListenerBase) ChildMoved(Tree, int, int)    {}
func (ListenerBase) ParentChanged(Tree)           {}
func (ListenerBase) Redirected(Tree)              {}

// AddListener registers a listener on the facade. The first listener
// lazily creates the bridge registrations on the wrapped node.
func (t Tree) AddListener(l Listener) {
	if t.s == nil || l == nil {
		return
	}
	t.s.listeners = append(t.s.listeners, l)
	if len(t.s.listeners) == 1 {
		t.attachBridge()
	}
}

// RemoveListener unregisters a listener; removing the last one drops
// the bridge registrations.
func (t Tree) RemoveListener(l Listener) {
	if t.s == nil {
		return
	}
	for i, existing := range t.s.listeners {
		if existing == l {
			t.s.listeners = append(t.s.listeners[:i], t.s.listeners[i+1:]...)
			break
		}
	}
	if len(t.s.listeners) == 0 {
		t.detachBridge()
	}
}

// bridgeListener translates the tree's native notifications into the
// facade's callbacks. One bridge serves all facade listeners.
type bridgeListener struct {
	tree.ListenerBase
	owner Tree
}

func (b *bridgeListener) Matches(string) bool { return true }

func (b *bridgeListener) PropertyChanged(origin tree.Node, key string) {
	for _, l := range b.owner.snapshotListeners() {
		l.PropertyChanged(Wrap(origin), key)
	}
}

func (b *bridgeListener) ChildAddedOrRemoved(child tree.Node, added bool) {
	parent := Wrap(child.Parent())
	if added {
		for _, l := range b.owner.snapshotListeners() {
			l.ChildAdded(parent, Wrap(child))
		}
		return
	}
	// Removal notifies before the detach, so the index is still there.
	idx := child.Parent().IndexOf(child)
	for _, l := range b.owner.snapshotListeners() {
		l.ChildRemoved(parent, Wrap(child), idx)
	}
}

func (b *bridgeListener) ChildMoved(parent tree.Node, oldIndex, newIndex int) {
	for _, l := range b.owner.snapshotListeners() {
		l.ChildMoved(Wrap(parent), oldIndex, newIndex)
	}
}

func (b *bridgeListener) ParentChanged(child tree.Node) {
	for _, l := range b.owner.snapshotListeners() {
		l.ParentChanged(Wrap(child))
	}
}

func (t Tree) snapshotListeners() []Listener {
	return append([]Listener(nil), t.s.listeners...)
}

func (t Tree) attachBridge() {
	if t.s == nil || len(t.s.listeners) == 0 || !t.s.node.Exists() {
		return
	}
	if t.s.propL == nil {
		t.s.propL = &bridgeListener{
			ListenerBase: tree.NewListenerBase(tree.ScopeRecursive),
			owner:        t,
		}
	}
	t.s.node.AddPropertyListener(t.s.propL)
	t.s.node.AddChildListener(t.s.propL)
}

func (t Tree) detachBridge() {
	if t.s == nil || t.s.propL == nil {
		return
	}
	t.s.node.RemovePropertyListener(t.s.propL)
	t.s.node.RemoveChildListener(t.s.propL)
}
