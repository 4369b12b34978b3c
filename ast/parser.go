// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package ast

import (
	"errors"
	"fmt"
	"io"

	"github.com/creachadair/jpatch"
)

// ErrExtraInput is reported by ParseSingle when the input contains data after
// the first complete value.
var ErrExtraInput = errors.New("extra input after value")

// Parse parses and returns the JSON values from r. In case of error, any
// complete values already parsed are returned along with the error.
func Parse(r io.Reader) ([]Value, error) {
	h := new(parseHandler)
	st := jpatch.NewStream(r)
	for {
		if err := st.ParseOne(h); err == io.EOF {
			return h.done, nil
		} else if err != nil {
			return h.done, err
		}
	}
}

// ParseSingle parses and returns a single JSON value from r. It reports an
// error if r does not contain exactly one value. If r contains data after the
// first value, ParseSingle returns the first value along with an error that
// wraps ErrExtraInput.
func ParseSingle(r io.Reader) (Value, error) {
	h := new(parseHandler)
	st := jpatch.NewStream(r)
	if err := st.ParseOne(h); err == io.EOF {
		return nil, errors.New("no value in input")
	} else if err != nil {
		return nil, err
	}
	v := h.done[0]
	if err := st.ParseOne(h); err == nil {
		return v, ErrExtraInput
	} else if err != io.EOF {
		return v, errors.Join(ErrExtraInput, err)
	}
	return v, nil
}

// A parseHandler implements the jpatch.Handler interface to construct values
// from a stream.
type parseHandler struct{ valueStack }

func (h *parseHandler) BeginObject(loc jpatch.Anchor) error { h.beginObject(); return nil }

func (h *parseHandler) EndObject(loc jpatch.Anchor) error { return h.endObject() }

func (h *parseHandler) BeginArray(loc jpatch.Anchor) error { h.beginArray(); return nil }

func (h *parseHandler) EndArray(loc jpatch.Anchor) error { return h.endArray() }

func (h *parseHandler) BeginMember(loc jpatch.Anchor) error {
	key, err := jpatch.Unquote(string(loc.Text()))
	if err != nil {
		return fmt.Errorf("invalid key: %w", err)
	}
	return h.beginMember(string(key))
}

// EndMember is a no-op, since the member is complete once its value has been
// reduced.
func (h *parseHandler) EndMember(loc jpatch.Anchor) error { return nil }

func (h *parseHandler) Value(loc jpatch.Anchor) error {
	v, err := scalar(loc.Token(), string(loc.Text()))
	if err != nil {
		return err
	}
	return h.value(v)
}

func (h *parseHandler) EndOfInput(loc jpatch.Anchor) {}

// scalar constructs a Value for a scalar token with the given text.
func scalar(tok jpatch.Token, text string) (Value, error) {
	switch tok {
	case jpatch.String:
		return NewQuoted(text), nil
	case jpatch.Integer, jpatch.Number:
		return Number{text: text}, nil
	case jpatch.True, jpatch.False:
		return Bool(tok == jpatch.True), nil
	case jpatch.Null:
		return Null, nil
	default:
		return nil, fmt.Errorf("unknown value %v", tok)
	}
}

// A valueStack accumulates values from a sequence of structural events.
// Incomplete objects, arrays, and members are held as pointers on the stack
// until they are reduced into their parent.
type valueStack struct {
	stk  []any   // *Object, *Array, or *Member
	done []Value // completed top-level values
}

func (s *valueStack) push(v any) { s.stk = append(s.stk, v) }

func (s *valueStack) pop() any {
	last := s.stk[len(s.stk)-1]
	s.stk = s.stk[:len(s.stk)-1]
	return last
}

func (s *valueStack) top() any {
	if len(s.stk) == 0 {
		return nil
	}
	return s.stk[len(s.stk)-1]
}

func (s *valueStack) beginObject() { s.push(&Object{}) }

func (s *valueStack) beginArray() { s.push(&Array{}) }

func (s *valueStack) beginMember(key string) error {
	obj, ok := s.top().(*Object)
	if !ok {
		return errors.New("member outside an object")
	}
	m := &Member{Key: key}
	*obj = append(*obj, m)
	s.push(m)
	return nil
}

func (s *valueStack) endObject() error {
	obj, ok := s.top().(*Object)
	if !ok {
		return errors.New("unbalanced end of object")
	}
	s.pop()
	return s.value(*obj)
}

func (s *valueStack) endArray() error {
	arr, ok := s.top().(*Array)
	if !ok {
		return errors.New("unbalanced end of array")
	}
	s.pop()
	return s.value(*arr)
}

// value reduces a complete value v into the value atop the stack, or records
// it as a complete top-level value if the stack is empty.
func (s *valueStack) value(v Value) error {
	switch t := s.top().(type) {
	case nil:
		s.done = append(s.done, v)
	case *Member:
		t.Value = v
		s.pop()
	case *Array:
		*t = append(*t, v)
	case *Object:
		return errors.New("object value without a member name")
	}
	return nil
}
