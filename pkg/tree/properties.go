package tree

import "github.com/go-drift/datatree/pkg/value"

// propertySet stores named values preserving insertion order, so that
// iteration and structural export are deterministic.
type propertySet struct {
	keys   []string
	values map[string]value.Value
}

func (p *propertySet) get(key string) (value.Value, bool) {
	v, ok := p.values[key]
	return v, ok
}

func (p *propertySet) set(key string, v value.Value) {
	if p.values == nil {
		p.values = make(map[string]value.Value)
	}
	if _, exists := p.values[key]; !exists {
		p.keys = append(p.keys, key)
	}
	p.values[key] = v
}

func (p *propertySet) remove(key string) {
	if _, exists := p.values[key]; !exists {
		return
	}
	delete(p.values, key)
	for i, k := range p.keys {
		if k == key {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			break
		}
	}
}

// GetProperty returns the stored value for key, or the void value if
// the property is absent or the handle is empty. Reads never route
// through the undo history.
func (n Node) GetProperty(key string) value.Value {
	if !n.Exists() {
		return value.Void()
	}
	v, _ := n.data.props.get(key)
	return v
}

// HasProperty reports whether the property is defined.
func (n Node) HasProperty(key string) bool {
	if !n.Exists() {
		return false
	}
	_, ok := n.data.props.get(key)
	return ok
}

// PropertyNames returns the property keys in insertion order.
func (n Node) PropertyNames() []string {
	if !n.Exists() {
		return nil
	}
	return append([]string(nil), n.data.props.keys...)
}

// SetProperty writes a property as a reversible action capturing the
// previous value (or its absence: undoing the first write removes the
// key again). After the write, a property-change notification fires at
// this node and propagates to every ancestor. Returns false only on an
// empty handle.
func (n Node) SetProperty(key string, v value.Value) bool {
	if !n.Exists() {
		return false
	}
	old, had := n.data.props.get(key)
	return n.perform(func(target Node, isUndo bool) bool {
		if isUndo {
			if had {
				target.data.props.set(key, old)
			} else {
				target.data.props.remove(key)
			}
		} else {
			target.data.props.set(key, v)
		}
		target.notifyPropertyChanged(target, key)
		return true
	})
}

// RemoveProperty deletes a property as a reversible action. Returns
// false if the property was not defined.
func (n Node) RemoveProperty(key string) bool {
	if !n.Exists() {
		return false
	}
	old, had := n.data.props.get(key)
	if !had {
		return false
	}
	return n.perform(func(target Node, isUndo bool) bool {
		if isUndo {
			target.data.props.set(key, old)
		} else {
			target.data.props.remove(key)
		}
		target.notifyPropertyChanged(target, key)
		return true
	})
}

// ReadOnlyProp is a short-lived accessor bound to (node, key) offering
// read access only. Obtain one from Node.ReadOnly. Code holding a
// ReadOnlyProp cannot write the property: there is no Set method, so
// misuse fails at compile time rather than at runtime.
type ReadOnlyProp struct {
	node Node
	key  string
}

// Prop is the mutable accessor counterpart, obtained from
// Node.Property. Writes dispatch through Node.SetProperty.
type Prop struct {
	ReadOnlyProp
}

// Property returns a mutable accessor for the given key.
func (n Node) Property(key string) Prop {
	return Prop{ReadOnlyProp{node: n, key: key}}
}

// ReadOnly returns a read-only accessor for the given key.
func (n Node) ReadOnly(key string) ReadOnlyProp {
	return ReadOnlyProp{node: n, key: key}
}

// Valid reports whether the accessor points at a live node. The
// property itself may still be undefined.
func (p ReadOnlyProp) Valid() bool {
	return p.node.Exists()
}

// IsDefined reports whether the property currently holds a value.
func (p ReadOnlyProp) IsDefined() bool {
	return p.node.HasProperty(p.key)
}

// Key returns the property key the accessor is bound to.
func (p ReadOnlyProp) Key() string {
	return p.key
}

// Get returns the current value, or def if the property is undefined.
func (p ReadOnlyProp) Get(def value.Value) value.Value {
	if !p.IsDefined() {
		return def
	}
	return p.node.GetProperty(p.key)
}

// Set writes the property through the node's undo routing.
func (p Prop) Set(v value.Value) bool {
	return p.node.SetProperty(p.key, v)
}
