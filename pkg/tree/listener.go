package tree

import (
	"github.com/go-drift/datatree/pkg/dispatch"
	"github.com/go-drift/datatree/pkg/errors"
	"github.com/go-drift/datatree/pkg/lifetime"
)

// Scope selects which events reach a listener.
type Scope int

const (
	// ScopeOwn fires only for events originating at the node the
	// listener is attached to.
	ScopeOwn Scope = iota
	// ScopeRecursive also fires for events originating at any
	// descendant of the attached node.
	ScopeRecursive
)

// ListenerBase carries the state shared by all listeners: the
// notification scope and an attachment counter used to catch leaked
// registrations. Embed it (directly or via PropertyListenerBase) in
// custom listener implementations.
type ListenerBase struct {
	scope       Scope
	attachments int
}

// NewListenerBase returns a base with the given scope.
func NewListenerBase(scope Scope) ListenerBase {
	return ListenerBase{scope: scope}
}

// Scope returns the listener's notification scope.
func (b *ListenerBase) Scope() Scope { return b.scope }

// Dangling reports whether the listener's external owner has died.
// The base implementation never dangles.
func (b *ListenerBase) Dangling() bool { return false }

// Attachments returns how many nodes the listener is currently
// registered with. A listener must be fully detached (zero) before it
// is discarded; tests assert this.
func (b *ListenerBase) Attachments() int { return b.attachments }

func (b *ListenerBase) attach(add bool) {
	if add {
		b.attachments++
	} else if b.attachments > 0 {
		b.attachments--
	}
}

func (b *ListenerBase) base() *ListenerBase { return b }

// PropertyListener observes property changes. Implementations embed
// PropertyListenerBase (or ListenerBase plus their own Matches).
type PropertyListener interface {
	Scope() Scope
	Dangling() bool
	// Matches reports whether the listener wants events for this key.
	Matches(key string) bool
	// PropertyChanged is called with the node the change originated at.
	PropertyChanged(origin Node, key string)

	base() *ListenerBase
}

// ChildListener observes structural changes. Implementations may
// additionally implement ChildMoved(parent, oldIndex, newIndex) and
// ParentChanged(child) to receive reorder and reparent events.
type ChildListener interface {
	Scope() Scope
	Dangling() bool
	// ChildAddedOrRemoved is called on the parent's listeners when a
	// child is attached (added=true) or detached (added=false).
	ChildAddedOrRemoved(child Node, added bool)

	base() *ListenerBase
}

// PropertyListenerBase is ListenerBase plus an optional key filter.
// An empty filter matches every key.
type PropertyListenerBase struct {
	ListenerBase
	keys []string
}

// NewPropertyListenerBase returns a base with the given scope and key
// filter.
func NewPropertyListenerBase(scope Scope, keys ...string) PropertyListenerBase {
	return PropertyListenerBase{ListenerBase: NewListenerBase(scope), keys: keys}
}

// Matches reports whether the key passes the filter.
func (b *PropertyListenerBase) Matches(key string) bool {
	if len(b.keys) == 0 {
		return true
	}
	for _, k := range b.keys {
		if k == key {
			return true
		}
	}
	return false
}

// FuncPropertyListener adapts a callback into a PropertyListener,
// optionally bound to an external owner's liveness token. Once the
// owner dies the listener reports dangling and is pruned lazily on the
// next property dispatch.
type FuncPropertyListener struct {
	PropertyListenerBase
	owner lifetime.Liveness
	fn    func(origin Node, key string)
}

// OnPropertyChanged returns a callback listener with the given scope
// and key filter.
func OnPropertyChanged(scope Scope, fn func(origin Node, key string), keys ...string) *FuncPropertyListener {
	return &FuncPropertyListener{
		PropertyListenerBase: NewPropertyListenerBase(scope, keys...),
		owner:                lifetime.Forever,
		fn:                   fn,
	}
}

// BindPropertyChanged is like OnPropertyChanged but ties the listener
// to an external owner: the callback fires only while owner is alive.
func BindPropertyChanged(owner lifetime.Liveness, scope Scope, fn func(origin Node, key string), keys ...string) *FuncPropertyListener {
	l := OnPropertyChanged(scope, fn, keys...)
	l.owner = owner
	return l
}

// Dangling reports whether the bound owner has died.
func (l *FuncPropertyListener) Dangling() bool { return !l.owner.Alive() }

// PropertyChanged invokes the callback if the owner is still alive.
func (l *FuncPropertyListener) PropertyChanged(origin Node, key string) {
	if l.owner.Alive() && l.fn != nil {
		l.fn(origin, key)
	}
}

// FuncChildListener adapts a callback into a ChildListener.
type FuncChildListener struct {
	ListenerBase
	fn func(child Node, added bool)
}

// OnChildChanged returns a callback child listener.
func OnChildChanged(scope Scope, fn func(child Node, added bool)) *FuncChildListener {
	return &FuncChildListener{ListenerBase: NewListenerBase(scope), fn: fn}
}

// ChildAddedOrRemoved invokes the callback.
func (l *FuncChildListener) ChildAddedOrRemoved(child Node, added bool) {
	if l.fn != nil {
		l.fn(child, added)
	}
}

// listenerSet is the lazily-created listener bundle of a node.
type listenerSet struct {
	property []PropertyListener
	child    []ChildListener
}

// getListeners returns the node's listener bundle, creating it only on
// demand: a node that never had a listener registered does no
// notification work at all.
func (n Node) getListeners(createIfMissing bool) *listenerSet {
	if !n.Exists() {
		return nil
	}
	if n.data.listeners == nil && createIfMissing {
		n.data.listeners = &listenerSet{}
	}
	return n.data.listeners
}

// AddPropertyListener registers a property listener on this node and
// increments its attachment marker.
func (n Node) AddPropertyListener(l PropertyListener) {
	if ls := n.getListeners(true); ls != nil {
		ls.property = append(ls.property, l)
		l.base().attach(true)
	}
}

// RemovePropertyListener unregisters the listener and decrements its
// attachment marker.
func (n Node) RemovePropertyListener(l PropertyListener) {
	ls := n.getListeners(false)
	if ls == nil {
		return
	}
	for i, existing := range ls.property {
		if existing == l {
			ls.property = append(ls.property[:i], ls.property[i+1:]...)
			l.base().attach(false)
			return
		}
	}
}

// AddChildListener registers a child listener on this node.
func (n Node) AddChildListener(l ChildListener) {
	if ls := n.getListeners(true); ls != nil {
		ls.child = append(ls.child, l)
		l.base().attach(true)
	}
}

// RemoveChildListener unregisters the listener.
func (n Node) RemoveChildListener(l ChildListener) {
	ls := n.getListeners(false)
	if ls == nil {
		return
	}
	for i, existing := range ls.child {
		if existing == l {
			ls.child = append(ls.child[:i], ls.child[i+1:]...)
			l.base().attach(false)
			return
		}
	}
}

// pruneDangling drops property listeners whose external owner has
// died. Called opportunistically before each property dispatch.
func (ls *listenerSet) pruneDangling() {
	for i := 0; i < len(ls.property); {
		if ls.property[i].Dangling() {
			ls.property[i].base().attach(false)
			ls.property = append(ls.property[:i], ls.property[i+1:]...)
			continue
		}
		i++
	}
}

// notifyPropertyChanged delivers a property change originating at
// origin: the origin's own listener set fires first, then each
// ancestor's, walking up to the root. At every level an own-scoped
// listener fires only if that level is the origin itself; recursive
// listeners always fire. Delivery is synchronous on the owner thread
// and deferred onto it otherwise.
func (n Node) notifyPropertyChanged(origin Node, key string) {
	n.deliver(func() {
		for d := n.data; d != nil; d = d.parent {
			ls := d.listeners
			if ls == nil {
				continue
			}
			ls.pruneDangling()
			for _, l := range snapshot(ls.property) {
				shouldFire := l.Scope() == ScopeRecursive || origin.data == d
				if shouldFire && l.Matches(key) {
					l.PropertyChanged(origin, key)
				}
			}
		}
	})
}

// notifyChildChanged delivers an add/remove event. The parent's own
// listener set fires regardless of scope; ancestors beyond it fire
// only their recursive child listeners.
func (n Node) notifyChildChanged(child Node, added bool) {
	n.deliver(func() {
		originData := n.data
		for d := n.data; d != nil; d = d.parent {
			ls := d.listeners
			if ls == nil {
				continue
			}
			for _, l := range snapshot(ls.child) {
				if d == originData || l.Scope() == ScopeRecursive {
					l.ChildAddedOrRemoved(child, added)
				}
			}
		}
	})
}

// notifyChildMoved delivers a reorder event to child listeners that
// implement the optional ChildMoved hook.
func (n Node) notifyChildMoved(oldIndex, newIndex int) {
	n.deliver(func() {
		originData := n.data
		for d := n.data; d != nil; d = d.parent {
			ls := d.listeners
			if ls == nil {
				continue
			}
			for _, l := range snapshot(ls.child) {
				mover, ok := l.(interface {
					ChildMoved(parent Node, oldIndex, newIndex int)
				})
				if ok && (d == originData || l.Scope() == ScopeRecursive) {
					mover.ChildMoved(Node{data: originData}, oldIndex, newIndex)
				}
			}
		}
	})
}

// notifyParentChanged tells the node's own child listeners that its
// parent link changed, for listeners implementing the optional
// ParentChanged hook.
func (n Node) notifyParentChanged() {
	n.deliver(func() {
		ls := n.data.listeners
		if ls == nil {
			return
		}
		for _, l := range snapshot(ls.child) {
			if watcher, ok := l.(interface{ ParentChanged(child Node) }); ok {
				watcher.ParentChanged(n)
			}
		}
	})
}

// deliver runs fn now when called on the owner thread, and posts it to
// the owner queue otherwise. The data write has already happened by
// the time deliver is called; only listener dispatch is deferred. A
// panicking listener is reported through the errors handler rather
// than unwinding into the mutation that triggered it.
func (n Node) deliver(fn func()) {
	run := func() {
		defer errors.Recover("tree.notify")
		fn()
	}
	q := dispatch.Active()
	if q.IsOwner() {
		run()
		return
	}
	q.Post(run)
}

// snapshot copies a listener slice so that listeners may detach
// themselves (or others) during dispatch without corrupting iteration.
func snapshot[T any](list []T) []T {
	out := make([]T, len(list))
	copy(out, list)
	return out
}
