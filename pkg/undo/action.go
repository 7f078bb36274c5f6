package undo

import "github.com/go-drift/datatree/pkg/lifetime"

// Action is a single reversible step in the timeline.
//
// Implementations must hold only non-owning references to the objects
// they operate on: if the target dies before the action runs again,
// IsEmpty must report true so the history can prune the action instead
// of touching a dead object.
type Action interface {
	// IsEmpty reports whether the action no longer has an effect,
	// typically because its target object was destroyed.
	IsEmpty() bool
	// Apply executes the action. isUndo selects the direction.
	// It returns whether the action remains valid after execution.
	Apply(isUndo bool) bool
}

// funcAction binds a callback to a liveness token. The callback runs
// only while the token is alive.
type funcAction struct {
	target lifetime.Liveness
	fn     func(isUndo bool) bool
}

func (a *funcAction) IsEmpty() bool {
	return !a.target.Alive()
}

func (a *funcAction) Apply(isUndo bool) bool {
	if !a.target.Alive() {
		return false
	}
	return a.fn(isUndo)
}

// group is an ordered batch of actions committed as one undo step.
// Redo applies children in forward order, undo in reverse order.
// Children that report invalid are pruned during traversal.
type group struct {
	children []Action
}

func (g *group) IsEmpty() bool {
	return len(g.children) == 0
}

func (g *group) Apply(isUndo bool) bool {
	if isUndo {
		for i := len(g.children) - 1; i >= 0; i-- {
			if !g.children[i].Apply(isUndo) {
				g.children = append(g.children[:i], g.children[i+1:]...)
			}
		}
	} else {
		for i := 0; i < len(g.children); {
			if !g.children[i].Apply(isUndo) {
				g.children = append(g.children[:i], g.children[i+1:]...)
				continue
			}
			i++
		}
	}
	return len(g.children) > 0
}

func (g *group) add(a Action) {
	g.children = append(g.children, a)
}
