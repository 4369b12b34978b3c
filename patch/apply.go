// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package patch

import (
	"errors"
	"fmt"

	"github.com/creachadair/jpatch"
	"github.com/creachadair/jpatch/ast"
	"github.com/creachadair/jpatch/pointer"
	"github.com/creachadair/jpatch/tree"
	"go4.org/mem"
)

// Errors wrapped by an *ApplyError to report why an operation failed.
var (
	// ErrNotFound reports that a path does not resolve to a value.
	ErrNotFound = pointer.ErrNotFound

	// ErrIndex reports an invalid or out-of-range array index.
	ErrIndex = pointer.ErrIndex

	// ErrType reports a path that traverses a value that is not an object or
	// an array.
	ErrType = pointer.ErrType

	// ErrTestFailed reports that a test operation did not match.
	ErrTestFailed = errors.New("test failed")

	// ErrRoot reports an operation that is not permitted on the whole
	// document, such as removing it.
	ErrRoot = errors.New("operation not permitted at the document root")
)

// ApplyError is the concrete type of errors reported when applying a patch.
type ApplyError struct {
	Index int       // the offset of the failed operation in the patch
	Op    Operation // the operation that failed
	Err   error     // the underlying error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("operation %d (%s %q): %v", e.Index, e.Op.Kind(), e.Op.Target(), e.Err)
}

func (e *ApplyError) Unwrap() error { return e.Err }

// Apply applies p to a working copy of doc and, if every operation succeeds,
// writes the resulting document to out. If any operation fails, Apply returns
// an *ApplyError describing it and nothing is written to out. The value of
// doc is not modified.
func (p Patch) Apply(doc ast.Value, out jpatch.Emitter) error {
	d, err := p.apply(doc)
	if err != nil {
		return err
	}
	return tree.Write(d.root, out)
}

// ApplyValue applies p to a working copy of doc and returns the resulting
// document. If any operation fails, ApplyValue returns nil and an
// *ApplyError describing the failure. The value of doc is not modified.
func (p Patch) ApplyValue(doc ast.Value) (ast.Value, error) {
	d, err := p.apply(doc)
	if err != nil {
		return nil, err
	}
	return tree.Value(d.root), nil
}

func (p Patch) apply(doc ast.Value) (*document, error) {
	d := &document{root: tree.Build(doc)}
	for i, op := range p {
		if err := op.apply(d); err != nil {
			return nil, &ApplyError{Index: i, Op: op, Err: err}
		}
	}
	return d, nil
}

// A document is the working state of a patch application.
type document struct {
	root tree.Node
}

func (o Add) apply(d *document) error { return d.add(o.Path, tree.Build(o.Value)) }

func (o Remove) apply(d *document) error {
	_, err := d.remove(o.Path)
	return err
}

func (o Replace) apply(d *document) error {
	if o.Path.Depth() == 0 {
		d.root = tree.Build(o.Value)
		return nil
	}
	return d.replace(o.Path, tree.Build(o.Value))
}

func (o Copy) apply(d *document) error {
	n, err := d.find(o.From)
	if err != nil {
		return fmt.Errorf("from: %w", err)
	}
	return d.add(o.Path, tree.Clone(n))
}

func (o Move) apply(d *document) error {
	n, err := d.remove(o.From)
	if err != nil {
		return fmt.Errorf("from: %w", err)
	}
	return d.add(o.Path, n)
}

func (o Test) apply(d *document) error {
	n, err := d.find(o.Path)
	if err != nil {
		return err
	} else if !tree.Equal(n, o.Value) {
		return fmt.Errorf("%w: value at %q is not equal to %s", ErrTestFailed, o.Path, valueJSON(o.Value))
	}
	return nil
}

// add adds n at the location given by p. Adding at the root replaces the
// whole document.
func (d *document) add(p *pointer.Pointer, n tree.Node) error {
	if p.Depth() == 0 {
		d.root = n
		return nil
	}
	return d.walk(p, func(parent tree.Node, tok mem.RO) error {
		switch t := parent.(type) {
		case *tree.Object:
			t.Set(tok.StringCopy(), n)
		case *tree.Array:
			if pointer.IsEnd(tok) {
				t.Append(n)
				return nil
			}
			i, err := pointer.ParseIndex(tok)
			if err != nil {
				return err
			} else if i > t.Len() {
				return fmt.Errorf("%w: index %d out of range for insert (n=%d)", ErrIndex, i, t.Len())
			}
			t.Insert(i, n)
		default:
			return fmt.Errorf("%w: cannot add to %s", ErrType, p.Parent())
		}
		return nil
	})
}

// remove removes and returns the node at the location given by p.
// The root cannot be removed.
func (d *document) remove(p *pointer.Pointer) (tree.Node, error) {
	if p.Depth() == 0 {
		return nil, ErrRoot
	}
	var old tree.Node
	err := d.walk(p, func(parent tree.Node, tok mem.RO) error {
		switch t := parent.(type) {
		case *tree.Object:
			key := tok.StringCopy()
			n, ok := t.Remove(key)
			if !ok {
				return fmt.Errorf("%w: key %q", ErrNotFound, key)
			}
			old = n
		case *tree.Array:
			i, err := arrayIndex(t, tok)
			if err != nil {
				return err
			}
			old = t.Remove(i)
		default:
			return fmt.Errorf("%w: cannot remove from %s", ErrType, p.Parent())
		}
		return nil
	})
	return old, err
}

// replace replaces the existing node at the location given by p with n. This
// has the effect of a remove followed by an add, except that an object member
// keeps its position.
func (d *document) replace(p *pointer.Pointer, n tree.Node) error {
	return d.walk(p, func(parent tree.Node, tok mem.RO) error {
		switch t := parent.(type) {
		case *tree.Object:
			key := tok.StringCopy()
			if _, ok := t.Get(key); !ok {
				return fmt.Errorf("%w: key %q", ErrNotFound, key)
			}
			t.Set(key, n)
		case *tree.Array:
			i, err := arrayIndex(t, tok)
			if err != nil {
				return err
			}
			t.Set(i, n)
		default:
			return fmt.Errorf("%w: cannot replace in %s", ErrType, p.Parent())
		}
		return nil
	})
}

// find returns the node at the location given by p.
func (d *document) find(p *pointer.Pointer) (tree.Node, error) {
	if p.Depth() == 0 {
		return d.root, nil
	}
	var found tree.Node
	err := d.walk(p, func(parent tree.Node, tok mem.RO) error {
		n, err := child(parent, tok)
		if err != nil {
			return err
		}
		found = n
		return nil
	})
	return found, err
}

// walk traverses the tree to the parent of the location given by p, and calls
// last with that parent and the final token of p. The depth of p must be
// positive.
func (d *document) walk(p *pointer.Pointer, last func(parent tree.Node, tok mem.RO) error) error {
	final := p.Depth() - 1
	cur := d.root
	return pointer.Evaluate(p, &cur, func(tok mem.RO, depth int, cur *tree.Node) error {
		if depth == final {
			return last(*cur, tok)
		}
		next, err := child(*cur, tok)
		if err != nil {
			return fmt.Errorf("at %q: %w", p.Prefix(depth+1), err)
		}
		*cur = next
		return nil
	})
}

// child returns the child of n named by tok.
func child(n tree.Node, tok mem.RO) (tree.Node, error) {
	switch t := n.(type) {
	case *tree.Object:
		c, ok := t.Lookup(tok)
		if !ok {
			return nil, fmt.Errorf("%w: key %q", ErrNotFound, tok.StringCopy())
		}
		return c, nil
	case *tree.Array:
		i, err := arrayIndex(t, tok)
		if err != nil {
			return nil, err
		}
		return t.Get(i), nil
	default:
		return nil, fmt.Errorf("%w: cannot index a scalar with %q", ErrType, tok.StringCopy())
	}
}

// arrayIndex parses tok as the index of an existing element of a.
func arrayIndex(a *tree.Array, tok mem.RO) (int, error) {
	if pointer.IsEnd(tok) {
		return 0, fmt.Errorf("%w: no element after the end of the array", ErrNotFound)
	}
	i, err := pointer.ParseIndex(tok)
	if err != nil {
		return 0, err
	} else if i >= a.Len() {
		return 0, fmt.Errorf("%w: index %d out of range (n=%d)", ErrNotFound, i, a.Len())
	}
	return i, nil
}

func valueJSON(v ast.Value) string {
	if v == nil {
		return "null"
	}
	return v.JSON()
}
