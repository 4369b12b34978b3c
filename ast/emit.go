// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package ast

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/creachadair/jpatch"
)

// Emit writes the structure of v to e. A nil Value is emitted as null.
func Emit(v Value, e jpatch.Emitter) error {
	switch t := v.(type) {
	case nil:
		return e.Raw("null")
	case Object:
		if err := e.BeginObject(); err != nil {
			return err
		}
		for _, m := range t {
			if err := e.Name(m.Key); err != nil {
				return err
			} else if err := Emit(m.Value, e); err != nil {
				return err
			}
		}
		return e.EndObject()
	case *Member:
		return fmt.Errorf("cannot emit a bare member (key %q)", t.Key)
	case Array:
		if err := e.BeginArray(); err != nil {
			return err
		}
		for _, elt := range t {
			if err := Emit(elt, e); err != nil {
				return err
			}
		}
		return e.EndArray()
	default:
		return e.Raw(v.JSON())
	}
}

// A Builder is a jpatch.Emitter that constructs Values from the events it
// receives. Each complete top-level value is appended to the results reported
// by Values.
type Builder struct{ valueStack }

// NewBuilder constructs a new empty Builder.
func NewBuilder() *Builder { return new(Builder) }

// Values returns the complete values constructed by b so far.
func (b *Builder) Values() []Value { return b.done }

// Value returns the most recent complete value constructed by b, or nil if
// there is none.
func (b *Builder) Value() Value {
	if len(b.done) == 0 {
		return nil
	}
	return b.done[len(b.done)-1]
}

// BeginObject satisfies the jpatch.Emitter interface.
func (b *Builder) BeginObject() error { b.beginObject(); return nil }

// EndObject satisfies the jpatch.Emitter interface.
func (b *Builder) EndObject() error { return b.endObject() }

// BeginArray satisfies the jpatch.Emitter interface.
func (b *Builder) BeginArray() error { b.beginArray(); return nil }

// EndArray satisfies the jpatch.Emitter interface.
func (b *Builder) EndArray() error { return b.endArray() }

// Name satisfies the jpatch.Emitter interface.
func (b *Builder) Name(key string) error { return b.beginMember(key) }

// Raw satisfies the jpatch.Emitter interface. The text must be the JSON
// encoding of a single scalar value.
func (b *Builder) Raw(text string) error {
	v, err := ParseScalar(text)
	if err != nil {
		return err
	}
	return b.value(v)
}

// ParseScalar parses text as a single JSON string, number, Boolean, or null.
func ParseScalar(text string) (Value, error) {
	s := jpatch.NewScanner(strings.NewReader(text))
	if err := s.Next(); err != nil {
		return nil, fmt.Errorf("invalid scalar %q: %w", text, err)
	} else if !s.Token().IsValue() {
		return nil, fmt.Errorf("invalid scalar %q: unexpected %v", text, s.Token())
	}
	v, err := scalar(s.Token(), string(s.Text()))
	if err != nil {
		return nil, err
	}
	if s.Next() != io.EOF {
		return nil, errors.New("extra input after scalar")
	}
	return v, nil
}
