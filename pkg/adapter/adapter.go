// Package adapter exposes the tree through a compatibility facade in
// which every mutation names its undo expectation explicitly: each
// call takes the history the caller believes is in charge. The facade
// reconciles that expectation with the node's actual binding instead
// of trusting either side.
//
// Three cases per call: expectation and binding agree, the mutation
// runs normally; the caller expects undo but the node is unbound (or
// bound elsewhere), the call fails with a KindUndoMismatch error; the
// node is bound but the caller asked for no undo, the bound history is
// suspended for the duration of the call.
package adapter

import (
	"fmt"

	"github.com/go-drift/datatree/pkg/errors"
	"github.com/go-drift/datatree/pkg/tree"
	"github.com/go-drift/datatree/pkg/undo"
	"github.com/go-drift/datatree/pkg/value"
)

// Tree is a redirectable facade handle. Unlike tree.Node, a Tree can
// be pointed at a different node after creation; listeners registered
// on it follow the handle, not the node.
type Tree struct {
	s *state
}

type state struct {
	node      tree.Node
	listeners []Listener
	propL     *bridgeListener
}

// Wrap returns a facade over the given node.
func Wrap(n tree.Node) Tree {
	return Tree{s: &state{node: n}}
}

// Node returns the currently wrapped node.
func (t Tree) Node() tree.Node {
	if t.s == nil {
		return tree.Node{}
	}
	return t.s.node
}

// Valid reports whether the facade wraps a live node.
func (t Tree) Valid() bool {
	return t.s != nil && t.s.node.Exists()
}

// Equals reports whether both facades currently wrap the same node.
func (t Tree) Equals(other Tree) bool {
	return t.Node() == other.Node()
}

// GetProperty reads a property. Reads never involve undo, so no
// history expectation applies.
func (t Tree) GetProperty(key string) value.Value {
	return t.Node().GetProperty(key)
}

// SetProperty writes a property under the caller's undo expectation.
func (t Tree) SetProperty(key string, v value.Value, h *undo.History) error {
	return t.withExpectation("adapter.SetProperty", h, func() {
		t.Node().SetProperty(key, v)
	})
}

// RemoveProperty deletes a property under the caller's undo
// expectation.
func (t Tree) RemoveProperty(key string, h *undo.History) error {
	return t.withExpectation("adapter.RemoveProperty", h, func() {
		t.Node().RemoveProperty(key)
	})
}

// AddChild attaches child at index (-1 appends) under the caller's
// undo expectation.
func (t Tree) AddChild(child Tree, index int, h *undo.History) error {
	var inner error
	err := t.withExpectation("adapter.AddChild", h, func() {
		inner = t.Node().AddChild(child.Node(), index)
	})
	if err != nil {
		return err
	}
	return inner
}

// RemoveChild detaches child under the caller's undo expectation.
func (t Tree) RemoveChild(child Tree, h *undo.History) error {
	return t.withExpectation("adapter.RemoveChild", h, func() {
		t.Node().RemoveChild(child.Node())
	})
}

// MoveChild reorders a child under the caller's undo expectation.
func (t Tree) MoveChild(oldIndex, newIndex int, h *undo.History) error {
	return t.withExpectation("adapter.MoveChild", h, func() {
		t.Node().MoveChild(oldIndex, newIndex)
	})
}

// Redirect points the facade at a different node. Listeners stay
// registered on the facade: they detach from the old node, attach to
// the new one, and receive a Redirected callback.
func (t Tree) Redirect(to tree.Node) {
	if t.s == nil || t.s.node == to {
		return
	}
	t.detachBridge()
	t.s.node = to
	t.attachBridge()
	for _, l := range append([]Listener(nil), t.s.listeners...) {
		l.Redirected(t)
	}
}

// withExpectation reconciles the caller's undo expectation with the
// wrapped node's binding, then runs fn.
func (t Tree) withExpectation(op string, h *undo.History, fn func()) error {
	if !t.Valid() {
		return nil
	}
	bound := t.Node().History()
	switch {
	case h != nil && bound != h:
		detail := "node has no bound history"
		if bound != nil {
			detail = "node is bound to a different history"
		}
		return errors.Report(&errors.TreeError{
			Op:       op,
			Kind:     errors.KindUndoMismatch,
			Err:      fmt.Errorf("caller expects undo but %s", detail),
			NodeType: t.Node().Type(),
		})
	case h == nil && bound != nil:
		bound.WithSuspended(fn)
		return nil
	default:
		fn()
		return nil
	}
}
