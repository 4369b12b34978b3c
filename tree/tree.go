// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package tree implements a mutable working copy of a JSON document.
//
// A tree is built from an immutable ast.Value with Build. Objects and arrays
// become *Object and *Array nodes that can be edited in place; scalar values
// are wrapped in Leaf nodes that share the underlying ast.Value, since a scalar
// is only ever replaced wholesale.
//
// The operations in this package enforce only the structural rules of JSON
// (for example, that object keys are unique). Higher-level rules, such as how
// a patch interprets an array index, are left to the caller.
//
// A tree is not safe for concurrent modification.
package tree

import (
	"fmt"
	"iter"
	"slices"

	"github.com/creachadair/jpatch/ast"
	"go4.org/mem"
)

// A Node is an element of a working tree. The concrete type of a Node is one
// of *Object, *Array, or Leaf.
type Node interface {
	isNode()
}

// A Leaf is a scalar node: a string, number, Boolean, or null.
type Leaf struct{ ast.Value }

func (Leaf) isNode() {}

// An Object is an ordered collection of uniquely-keyed nodes. Keys are kept in
// the order they were first inserted.
type Object struct {
	members []member
	index   map[string]int // key → offset in members
}

type member struct {
	key  string
	node Node
}

func (*Object) isNode() {}

// NewObject constructs a new empty object.
func NewObject() *Object { return &Object{index: make(map[string]int)} }

// Len reports the number of members in o.
func (o *Object) Len() int { return len(o.members) }

// Get returns the node for key in o, and reports whether it was present.
func (o *Object) Get(key string) (Node, bool) {
	i, ok := o.index[key]
	if !ok {
		return nil, false
	}
	return o.members[i].node, true
}

// Lookup is as Get, but takes the key as a read-only view.
func (o *Object) Lookup(key mem.RO) (Node, bool) {
	var buf [64]byte
	i, ok := o.index[string(mem.Append(buf[:0], key))]
	if !ok {
		return nil, false
	}
	return o.members[i].node, true
}

// Set sets the node for key in o. If key is already present, its node is
// replaced in its current position; otherwise key is added at the end.
func (o *Object) Set(key string, n Node) {
	if i, ok := o.index[key]; ok {
		o.members[i].node = n
		return
	}
	if o.index == nil {
		o.index = make(map[string]int)
	}
	o.index[key] = len(o.members)
	o.members = append(o.members, member{key: key, node: n})
}

// Remove removes key from o and returns its node. If key is not present,
// Remove returns nil, false and o is unchanged.
func (o *Object) Remove(key string) (Node, bool) {
	i, ok := o.index[key]
	if !ok {
		return nil, false
	}
	old := o.members[i].node
	o.members = slices.Delete(o.members, i, i+1)
	delete(o.index, key)
	for j := i; j < len(o.members); j++ {
		o.index[o.members[j].key] = j
	}
	return old, true
}

// Keys returns the keys of o in order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.members))
	for i, m := range o.members {
		keys[i] = m.key
	}
	return keys
}

// Each is a range function over the keys and nodes of o, in order.
// The object must not be modified during the iteration.
func (o *Object) Each() iter.Seq2[string, Node] {
	return func(yield func(string, Node) bool) {
		for _, m := range o.members {
			if !yield(m.key, m.node) {
				return
			}
		}
	}
}

// An Array is an ordered sequence of nodes.
type Array struct {
	elts []Node
}

func (*Array) isNode() {}

// NewArray constructs a new array containing the given nodes.
func NewArray(elts ...Node) *Array { return &Array{elts: elts} }

// Len reports the number of elements in a.
func (a *Array) Len() int { return len(a.elts) }

// Get returns the element at offset i of a. It panics if i is out of range.
func (a *Array) Get(i int) Node { return a.elts[i] }

// Set replaces the element at offset i of a. It panics if i is out of range.
func (a *Array) Set(i int, n Node) { a.elts[i] = n }

// Insert inserts n at offset i of a, shifting the elements at i and after up
// by one. Inserting at a.Len() is equivalent to Append.
// It panics if i < 0 or i > a.Len().
func (a *Array) Insert(i int, n Node) { a.elts = slices.Insert(a.elts, i, n) }

// Append adds n to the end of a.
func (a *Array) Append(n Node) { a.elts = append(a.elts, n) }

// Remove removes and returns the element at offset i of a, shifting the
// elements after it down by one. It panics if i is out of range.
func (a *Array) Remove(i int) Node {
	old := a.elts[i]
	a.elts = slices.Delete(a.elts, i, i+1)
	return old
}

// All is a range function over the offsets and elements of a, in order.
func (a *Array) All() iter.Seq2[int, Node] { return slices.All(a.elts) }

// Build constructs a working tree from v. The tree shares no mutable state
// with v. If an object in v has duplicate keys, the value of the last
// occurrence wins, in the position of the first. A nil Value becomes a null
// leaf.
func Build(v ast.Value) Node {
	switch t := v.(type) {
	case nil:
		return Leaf{ast.Null}
	case ast.Object:
		o := &Object{members: make([]member, 0, len(t)), index: make(map[string]int, len(t))}
		for _, m := range t {
			o.Set(m.Key, Build(m.Value))
		}
		return o
	case ast.Array:
		a := &Array{elts: make([]Node, len(t))}
		for i, elt := range t {
			a.elts[i] = Build(elt)
		}
		return a
	case *ast.Member:
		// A bare member is not a JSON value; take its value.
		return Build(t.Value)
	default:
		return Leaf{v}
	}
}

// Clone returns a deep copy of n. Containers are copied recursively; leaves
// are shared, since they are immutable.
func Clone(n Node) Node {
	switch t := n.(type) {
	case *Object:
		o := &Object{members: make([]member, len(t.members)), index: make(map[string]int, len(t.members))}
		for i, m := range t.members {
			o.members[i] = member{key: m.key, node: Clone(m.node)}
			o.index[m.key] = i
		}
		return o
	case *Array:
		a := &Array{elts: make([]Node, len(t.elts))}
		for i, elt := range t.elts {
			a.elts[i] = Clone(elt)
		}
		return a
	default:
		return n
	}
}

// Value converts n into an immutable ast.Value.
func Value(n Node) ast.Value {
	switch t := n.(type) {
	case *Object:
		o := make(ast.Object, len(t.members))
		for i, m := range t.members {
			o[i] = &ast.Member{Key: m.key, Value: Value(m.node)}
		}
		return o
	case *Array:
		a := make(ast.Array, len(t.elts))
		for i, elt := range t.elts {
			a[i] = Value(elt)
		}
		return a
	case Leaf:
		if t.Value == nil {
			return ast.Null
		}
		return t.Value
	default:
		panic(fmt.Sprintf("unknown node type %T", n))
	}
}

// Equal reports whether n is structurally equal to v, using the rules of
// ast.Equal. Objects must have the same set of keys, with equal values for
// each key; arrays must have the same length and pairwise equal elements.
func Equal(n Node, v ast.Value) bool {
	switch t := n.(type) {
	case *Object:
		obj, ok := v.(ast.Object)
		if !ok {
			return false
		}
		seen := make(map[string]bool, len(obj))
		for _, m := range obj {
			seen[m.Key] = true
		}
		if len(seen) != t.Len() {
			return false
		}
		for key := range seen {
			elt, ok := t.Get(key)
			if !ok || !Equal(elt, obj.Find(key).Value) {
				return false
			}
		}
		return true

	case *Array:
		arr, ok := v.(ast.Array)
		if !ok || len(arr) != t.Len() {
			return false
		}
		for i, elt := range t.elts {
			if !Equal(elt, arr[i]) {
				return false
			}
		}
		return true

	case Leaf:
		if v == nil {
			v = ast.Null
		}
		return ast.EqualScalar(Value(t), v)

	default:
		return false
	}
}
