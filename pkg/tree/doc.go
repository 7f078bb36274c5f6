// Package tree provides the observable, hierarchical property tree
// that backs data binding in UI code.
//
// # Core Types
//
// Node is a lightweight, copyable handle to shared node data. Copying
// a Node aliases the same underlying node; two handles are equal iff
// they reference the same node. The zero Node is empty, and every
// query on an empty handle returns an empty/zero result rather than
// panicking.
//
// Nodes hold an ordered set of named properties (dynamically-typed
// values from the value package) and an ordered list of children.
// Every child points back at its parent; a node has at most one
// parent at a time.
//
// # Undo Integration
//
// A node created with NewWithHistory routes every mutation through its
// undo.History: the mutation is captured as a reversible action,
// executed forward immediately, and appended to the history's
// accumulating group. A child attached to a parent inherits the
// parent's history binding; detaching clears it.
//
// # Listeners
//
// Two listener tiers observe the tree: property listeners and child
// listeners. Each carries a scope: ScopeOwn fires only for events
// originating at the exact node the listener is attached to, while
// ScopeRecursive also fires for events originating anywhere in the
// subtree below it. Property listeners can additionally filter by key.
//
// Listeners bound to an external object through a lifetime token are
// pruned automatically once that object dies.
//
// # Threading
//
// A tree instance belongs to a single logical owner thread. Mutations
// from other threads write their data synchronously but have their
// notifications marshaled onto the owner queue (see the dispatch
// package).
package tree
