package tree

import (
	"fmt"
	"io"
)

// Dump writes a human-readable listing of the subtree to w: one line
// per property, prefixed with the dotted path of type ids leading to
// its node. Intended for debugging sessions, not machine consumption.
func (n Node) Dump(w io.Writer) {
	if !n.Exists() {
		fmt.Fprintln(w, "<empty>")
		return
	}
	fmt.Fprintf(w, "Dumping tree %s ====================\n", n.Type())
	n.ForEach(func(current Node) bool {
		path := ""
		current.ForEachParent(func(parent Node) bool {
			path = parent.Type() + "." + path
			return false
		})
		for _, key := range current.PropertyNames() {
			fmt.Fprintf(w, "  %s%s: %s\n", path, key, current.GetProperty(key).String())
		}
		return false
	})
	fmt.Fprintln(w, "End of dump ==================================")
}
