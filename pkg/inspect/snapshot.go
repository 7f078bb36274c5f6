// Package inspect provides debug introspection for trees: plain
// snapshot records for tooling, a continuously refreshed mirror, and
// an HTTP server exposing both. Nothing here belongs in production
// data flow.
package inspect

import "github.com/go-drift/datatree/pkg/tree"

// Snapshot is a plain, fully-detached copy of a node: stringified
// properties and recursively snapshotted children. It is safe to hand
// to tooling because it shares no state with the live tree.
type Snapshot struct {
	Type       string            `json:"type" yaml:"type"`
	Properties map[string]string `json:"properties,omitempty" yaml:"properties,omitempty"`
	Children   []Snapshot        `json:"children,omitempty" yaml:"children,omitempty"`
}

// Capture takes a snapshot of the subtree rooted at n. An empty
// handle yields the zero Snapshot.
func Capture(n tree.Node) Snapshot {
	if !n.Exists() {
		return Snapshot{}
	}
	s := Snapshot{Type: n.Type()}
	if keys := n.PropertyNames(); len(keys) > 0 {
		s.Properties = make(map[string]string, len(keys))
		for _, key := range keys {
			s.Properties[key] = n.GetProperty(key).String()
		}
	}
	for _, child := range n.Children() {
		s.Children = append(s.Children, Capture(child))
	}
	return s
}

// NodeCount returns the number of nodes in the snapshot.
func (s Snapshot) NodeCount() int {
	count := 1
	for _, c := range s.Children {
		count += c.NodeCount()
	}
	return count
}
