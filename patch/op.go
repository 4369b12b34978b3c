// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package patch implements JSON Patch (RFC 6902).
//
// A Patch is an ordered sequence of operations, each of which edits the
// structure of a JSON document at locations given by JSON pointers. Use Parse
// or ParseValue to read a patch in the standard wire format, and Apply or
// ApplyValue to apply it to a document:
//
//	p, err := patch.Parse(strings.NewReader(`[
//	  {"op": "add", "path": "/a/-", "value": 4}
//	]`))
//	...
//	out, err := p.ApplyValue(doc)
//
// Applying a patch never modifies the source document. The operations are
// applied in order to a working copy of the document, and if any operation
// fails the whole patch fails and no output is produced.
//
// A Patch is not modified by applying it, and may be applied concurrently to
// any number of documents.
package patch

import (
	"github.com/creachadair/jpatch/ast"
	"github.com/creachadair/jpatch/pointer"
)

// A Patch is an ordered sequence of operations.
type Patch []Operation

// An Operation is a single patch operation. The concrete type of an Operation
// is one of Add, Remove, Replace, Copy, Move, or Test.
type Operation interface {
	// Kind reports which kind of operation this is.
	Kind() Kind

	// Target returns the pointer to the location affected by the operation.
	Target() *pointer.Pointer

	apply(*document) error
}

// Kind identifies the kind of an operation.
type Kind byte

// Constants defining the valid Kind values.
const (
	Invalid Kind = iota
	KindAdd
	KindRemove
	KindReplace
	KindCopy
	KindMove
	KindTest
)

var kindStr = [...]string{
	Invalid:     "invalid",
	KindAdd:     "add",
	KindRemove:  "remove",
	KindReplace: "replace",
	KindCopy:    "copy",
	KindMove:    "move",
	KindTest:    "test",
}

func (k Kind) String() string {
	if int(k) < len(kindStr) {
		return kindStr[k]
	}
	return kindStr[Invalid]
}

// ParseKind returns the Kind whose name is s, or Invalid.
func ParseKind(s string) Kind {
	for k, name := range kindStr {
		if k != int(Invalid) && name == s {
			return Kind(k)
		}
	}
	return Invalid
}

// Add adds Value at Path. If Path names an existing object member, its value
// is replaced. If Path names an array index, Value is inserted before the
// element at that index; the token "-" appends to the array.
type Add struct {
	Path  *pointer.Pointer
	Value ast.Value
}

// Remove removes the value at Path, which must exist.
type Remove struct {
	Path *pointer.Pointer
}

// Replace replaces the value at Path, which must exist, with Value.
type Replace struct {
	Path  *pointer.Pointer
	Value ast.Value
}

// Copy copies the value at From to Path, as if by Add.
type Copy struct {
	Path *pointer.Pointer
	From *pointer.Pointer
}

// Move removes the value at From and adds it at Path.
type Move struct {
	Path *pointer.Pointer
	From *pointer.Pointer
}

// Test checks that the value at Path is equal to Value.
type Test struct {
	Path  *pointer.Pointer
	Value ast.Value
}

func (Add) Kind() Kind     { return KindAdd }
func (Remove) Kind() Kind  { return KindRemove }
func (Replace) Kind() Kind { return KindReplace }
func (Copy) Kind() Kind    { return KindCopy }
func (Move) Kind() Kind    { return KindMove }
func (Test) Kind() Kind    { return KindTest }

func (o Add) Target() *pointer.Pointer     { return o.Path }
func (o Remove) Target() *pointer.Pointer  { return o.Path }
func (o Replace) Target() *pointer.Pointer { return o.Path }
func (o Copy) Target() *pointer.Pointer    { return o.Path }
func (o Move) Target() *pointer.Pointer    { return o.Path }
func (o Test) Target() *pointer.Pointer    { return o.Path }
