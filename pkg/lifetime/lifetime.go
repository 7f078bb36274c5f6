// Package lifetime provides explicit liveness tokens.
//
// The tree and undo packages never hold owning references to the
// objects their callbacks and actions target. Instead, each target
// issues a Lifetime and the holder checks Alive before touching it.
// Once the target ends its lifetime, stale registrations report as
// dangling and are pruned lazily instead of dereferencing a dead
// object.
package lifetime

// Liveness is the read side of a lifetime token.
type Liveness interface {
	// Alive reports whether the issuing object still exists.
	Alive() bool
}

// Lifetime is a liveness token issued by an object that other
// components may outlive. The zero value is not usable; call New.
type Lifetime struct {
	dead bool
}

// New returns a live token.
func New() *Lifetime {
	return &Lifetime{}
}

// Alive reports whether End has not been called yet.
func (l *Lifetime) Alive() bool {
	return l != nil && !l.dead
}

// End marks the token dead. Holders observe the change on their next
// Alive check. Ending twice is a no-op.
func (l *Lifetime) End() {
	if l != nil {
		l.dead = true
	}
}

// Forever is a Liveness that never dies, for callers that have no
// natural owner to bind to.
var Forever Liveness = foreverToken{}

type foreverToken struct{}

func (foreverToken) Alive() bool { return true }
