// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package tree

import (
	"fmt"

	"github.com/creachadair/jpatch"
	"github.com/creachadair/jpatch/ast"
)

// Write writes the structure of n to e. Object members are written in order
// of insertion, array elements in order, and leaves are written verbatim.
func Write(n Node, e jpatch.Emitter) error {
	switch t := n.(type) {
	case *Object:
		if err := e.BeginObject(); err != nil {
			return err
		}
		for _, m := range t.members {
			if err := e.Name(m.key); err != nil {
				return err
			} else if err := Write(m.node, e); err != nil {
				return err
			}
		}
		return e.EndObject()

	case *Array:
		if err := e.BeginArray(); err != nil {
			return err
		}
		for _, elt := range t.elts {
			if err := Write(elt, e); err != nil {
				return err
			}
		}
		return e.EndArray()

	case Leaf:
		return ast.Emit(t.Value, e)

	default:
		return fmt.Errorf("unknown node type %T", n)
	}
}
