// Package testing provides deterministic test doubles for the
// datatree library: a fake scheduler that simulates the passage of
// time for undo coalescing, and a fake dispatch queue that captures
// deferred notifications so tests can drain them explicitly.
//
// Import it under an alias to avoid clashing with the standard
// library's testing package:
//
//	import treetest "github.com/go-drift/datatree/pkg/testing"
package testing
