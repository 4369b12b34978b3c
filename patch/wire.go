// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package patch

import (
	"errors"
	"fmt"
	"io"

	"github.com/creachadair/jpatch"
	"github.com/creachadair/jpatch/ast"
	"github.com/creachadair/jpatch/pointer"
)

// FieldError is the concrete type of errors reported by Parse and ParseValue
// for a patch document that is not well-formed.
type FieldError struct {
	Index int    // the offset of the operation in the patch, or -1
	Field string // the name of the offending field, if known
	Err   error  // the underlying error
}

func (e *FieldError) Error() string {
	switch {
	case e.Index < 0:
		return fmt.Sprintf("invalid patch: %v", e.Err)
	case e.Field == "":
		return fmt.Sprintf("operation %d: %v", e.Index, e.Err)
	default:
		return fmt.Sprintf("operation %d: field %q: %v", e.Index, e.Field, e.Err)
	}
}

func (e *FieldError) Unwrap() error { return e.Err }

var errMissing = errors.New("missing required field")

// Parse reads a patch document from r. The input must consist of a single
// JSON array of operation objects in the format defined by RFC 6902.
// Unknown object members are ignored.
//
// An error in the JSON syntax of the input is reported as-is; otherwise, a
// malformed patch is reported as a *FieldError.
func Parse(r io.Reader) (Patch, error) {
	v, err := ast.ParseSingle(r)
	if err != nil {
		return nil, err
	}
	return ParseValue(v)
}

// ParseValue constructs a patch from a JSON array of operation objects.
// In case of error, the concrete type of the error is *FieldError.
func ParseValue(v ast.Value) (Patch, error) {
	arr, ok := v.(ast.Array)
	if !ok {
		return nil, &FieldError{Index: -1, Err: fmt.Errorf("got %s, want array", typeName(v))}
	}
	out := make(Patch, len(arr))
	for i, elt := range arr {
		obj, ok := elt.(ast.Object)
		if !ok {
			return nil, &FieldError{Index: i, Err: fmt.Errorf("got %s, want object", typeName(elt))}
		}
		op, err := parseOp(obj)
		if err != nil {
			err.Index = i
			return nil, err
		}
		out[i] = op
	}
	return out, nil
}

func parseOp(obj ast.Object) (Operation, *FieldError) {
	name, err := stringField(obj, "op")
	if err != nil {
		return nil, err
	}
	kind := ParseKind(name)
	if kind == Invalid {
		return nil, &FieldError{Field: "op", Err: fmt.Errorf("unknown operation %q", name)}
	}
	path, err := pointerField(obj, "path")
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindRemove:
		return Remove{Path: path}, nil
	case KindCopy, KindMove:
		from, err := pointerField(obj, "from")
		if err != nil {
			return nil, err
		}
		if kind == KindCopy {
			return Copy{Path: path, From: from}, nil
		}
		return Move{Path: path, From: from}, nil
	}

	m := obj.Find("value")
	if m == nil {
		return nil, &FieldError{Field: "value", Err: errMissing}
	}
	switch kind {
	case KindAdd:
		return Add{Path: path, Value: m.Value}, nil
	case KindReplace:
		return Replace{Path: path, Value: m.Value}, nil
	default:
		return Test{Path: path, Value: m.Value}, nil
	}
}

func stringField(obj ast.Object, name string) (string, *FieldError) {
	m := obj.Find(name)
	if m == nil {
		return "", &FieldError{Field: name, Err: errMissing}
	}
	s, ok := m.Value.(ast.Text)
	if !ok {
		return "", &FieldError{Field: name, Err: fmt.Errorf("got %s, want string", typeName(m.Value))}
	}
	return string(s.Unquote()), nil
}

func pointerField(obj ast.Object, name string) (*pointer.Pointer, *FieldError) {
	s, ferr := stringField(obj, name)
	if ferr != nil {
		return nil, ferr
	}
	p, err := pointer.Parse(s)
	if err != nil {
		return nil, &FieldError{Field: name, Err: err}
	}
	return p, nil
}

func typeName(v ast.Value) string {
	switch v.(type) {
	case ast.Object:
		return "object"
	case ast.Array:
		return "array"
	case ast.Text:
		return "string"
	case ast.Number:
		return "number"
	case ast.Bool:
		return "Boolean"
	case nil:
		return "nothing"
	default:
		if v == ast.Null {
			return "null"
		}
		return fmt.Sprintf("%T", v)
	}
}

// Value returns the wire representation of p as a JSON array of operation
// objects.
func (p Patch) Value() ast.Value {
	out := make(ast.Array, len(p))
	for i, op := range p {
		obj := ast.Object{
			{Key: "op", Value: ast.String(op.Kind().String())},
			{Key: "path", Value: ast.String(op.Target().String())},
		}
		switch t := op.(type) {
		case Add:
			obj = append(obj, &ast.Member{Key: "value", Value: nullable(t.Value)})
		case Replace:
			obj = append(obj, &ast.Member{Key: "value", Value: nullable(t.Value)})
		case Test:
			obj = append(obj, &ast.Member{Key: "value", Value: nullable(t.Value)})
		case Copy:
			obj = append(obj, &ast.Member{Key: "from", Value: ast.String(t.From.String())})
		case Move:
			obj = append(obj, &ast.Member{Key: "from", Value: ast.String(t.From.String())})
		}
		out[i] = obj
	}
	return out
}

// Encode writes the wire representation of p to e.
func (p Patch) Encode(e jpatch.Emitter) error { return ast.Emit(p.Value(), e) }

// JSON returns the compact wire encoding of p.
func (p Patch) JSON() string { return p.Value().JSON() }

func nullable(v ast.Value) ast.Value {
	if v == nil {
		return ast.Null
	}
	return v
}
