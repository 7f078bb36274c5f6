package inspect

import (
	"sync"

	"github.com/go-drift/datatree/pkg/tree"
)

// Mirror keeps an up-to-date Snapshot of a live tree. It registers
// recursive listeners on the root, marks itself stale on every
// property or child change, and recaptures on the next read, so
// tooling always sees the tree's current shape without touching the
// tree itself.
type Mirror struct {
	mu      sync.Mutex
	root    tree.Node
	current Snapshot
	dirty   bool

	listener *mirrorListener
	closed   bool
}

// NewMirror starts mirroring the subtree rooted at n.
func NewMirror(n tree.Node) *Mirror {
	m := &Mirror{root: n}
	m.listener = &mirrorListener{
		ListenerBase: tree.NewListenerBase(tree.ScopeRecursive),
		invalidate:   m.invalidate,
	}
	n.AddPropertyListener(m.listener)
	n.AddChildListener(m.listener)
	m.current = Capture(n)
	return m
}

// Current returns a snapshot reflecting every change delivered so far.
func (m *Mirror) Current() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dirty && !m.closed {
		m.current = Capture(m.root)
		m.dirty = false
	}
	return m.current
}

// Close detaches the mirror's listeners. The last snapshot stays
// readable.
func (m *Mirror) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	if m.dirty {
		m.current = Capture(m.root)
		m.dirty = false
	}
	m.closed = true
	m.root.RemovePropertyListener(m.listener)
	m.root.RemoveChildListener(m.listener)
}

func (m *Mirror) invalidate() {
	m.mu.Lock()
	m.dirty = true
	m.mu.Unlock()
}

// mirrorListener funnels both listener interfaces into an
// invalidation.
type mirrorListener struct {
	tree.ListenerBase
	invalidate func()
}

func (l *mirrorListener) Matches(string) bool                 { return true }
func (l *mirrorListener) PropertyChanged(tree.Node, string)   { l.invalidate() }
func (l *mirrorListener) ChildAddedOrRemoved(tree.Node, bool) { l.invalidate() }
func (l *mirrorListener) ChildMoved(tree.Node, int, int)      { l.invalidate() }
