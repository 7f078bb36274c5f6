package tree

import (
	"fmt"

	"go.uber.org/multierr"
)

// CheckIntegrity verifies the structural invariants of the subtree
// rooted at n and returns every violation found, combined into a
// single error. It is a debugging aid: a healthy tree always returns
// nil.
//
// Checked invariants: every child's parent pointer refers back to its
// container, no node appears twice in one children list, every child
// shares its parent's undo binding, and the parent chain contains no
// cycle.
func CheckIntegrity(n Node) error {
	if !n.Exists() {
		return nil
	}

	var err error
	n.ForEach(func(current Node) bool {
		d := current.data
		seen := make(map[*nodeData]bool, len(d.children))
		for i, c := range d.children {
			if c.parent != d {
				err = multierr.Append(err, fmt.Errorf(
					"node %q: child %d (%q) has wrong parent pointer", d.typeID, i, c.typeID))
			}
			if seen[c] {
				err = multierr.Append(err, fmt.Errorf(
					"node %q: child %q appears more than once", d.typeID, c.typeID))
			}
			seen[c] = true
			if c.history != d.history {
				err = multierr.Append(err, fmt.Errorf(
					"node %q: child %q has a different undo binding", d.typeID, c.typeID))
			}
		}
		return false
	})

	// Cycle check on the parent chain above n.
	slow, fast := n.data, n.data
	for fast != nil && fast.parent != nil {
		slow = slow.parent
		fast = fast.parent.parent
		if slow == fast && slow != nil {
			err = multierr.Append(err, fmt.Errorf("parent chain of %q contains a cycle", n.data.typeID))
			break
		}
	}
	return err
}
