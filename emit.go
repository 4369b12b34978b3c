// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jpatch

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/creachadair/jpatch/internal/escape"

	"go4.org/mem"
)

// An Emitter accepts the structure of a JSON value as a sequence of calls.
// It is the output counterpart of a Handler.
//
// Within an object, each member is reported by a call to Name followed by the
// calls for its value. Raw reports a complete scalar value (string, number,
// true, false, or null) in its JSON encoding; strings must be quoted.
type Emitter interface {
	BeginObject() error
	EndObject() error
	BeginArray() error
	EndArray() error
	Name(key string) error
	Raw(text string) error
}

// An Encoder is an Emitter that writes JSON text to an io.Writer. By default
// the output is compact, with no insignificant whitespace; use SetIndent to
// enable multi-line output.
//
// Each complete top-level value is followed by a newline. Output is buffered:
// call Flush when emission is complete.
type Encoder struct {
	w       *bufio.Writer
	prefix  string
	indent  string
	stk     []frame
	named   bool // a member name is pending its value
	scratch []byte
}

type frame struct {
	obj bool // object (true) or array (false)
	n   int  // number of values or members written so far
}

// NewEncoder constructs an Encoder that writes output to w.
func NewEncoder(w io.Writer) *Encoder { return &Encoder{w: bufio.NewWriter(w)} }

// SetIndent configures e to emit each array element and object member on its
// own line, beginning with prefix followed by one copy of indent per level
// of nesting. If both are empty, output is compact.
func (e *Encoder) SetIndent(prefix, indent string) { e.prefix, e.indent = prefix, indent }

// Flush writes any buffered output to the underlying writer.
func (e *Encoder) Flush() error { return e.w.Flush() }

// BeginObject satisfies the Emitter interface.
func (e *Encoder) BeginObject() error { return e.open('{', true) }

// EndObject satisfies the Emitter interface.
func (e *Encoder) EndObject() error { return e.close('}', true) }

// BeginArray satisfies the Emitter interface.
func (e *Encoder) BeginArray() error { return e.open('[', false) }

// EndArray satisfies the Emitter interface.
func (e *Encoder) EndArray() error { return e.close(']', false) }

// Name satisfies the Emitter interface.
func (e *Encoder) Name(key string) error {
	if len(e.stk) == 0 || !e.stk[len(e.stk)-1].obj {
		return errors.New("member name outside an object")
	} else if e.named {
		return errors.New("member name without a value")
	}
	e.separate()
	e.scratch = escape.AppendQuote(e.scratch[:0], mem.S(key))
	e.scratch = append(e.scratch, ':')
	if e.indented() {
		e.scratch = append(e.scratch, ' ')
	}
	e.named = true
	_, err := e.w.Write(e.scratch)
	return err
}

// Raw satisfies the Emitter interface.
func (e *Encoder) Raw(text string) error {
	if err := e.beginValue(); err != nil {
		return err
	}
	_, err := e.w.WriteString(text)
	return e.endValue(err)
}

func (e *Encoder) open(c byte, obj bool) error {
	if err := e.beginValue(); err != nil {
		return err
	}
	e.stk = append(e.stk, frame{obj: obj})
	return e.w.WriteByte(c)
}

func (e *Encoder) close(c byte, obj bool) error {
	n := len(e.stk)
	if n == 0 || e.stk[n-1].obj != obj {
		return errors.New("unbalanced " + string(c))
	} else if e.named {
		return errors.New("member name without a value")
	}
	nonEmpty := e.stk[n-1].n != 0
	e.stk = e.stk[:n-1]
	if nonEmpty && e.indented() {
		e.newline()
	}
	return e.endValue(e.w.WriteByte(c))
}

// beginValue checks that a value is permitted at the current position, and
// writes any separator required before it.
func (e *Encoder) beginValue() error {
	n := len(e.stk)
	if n != 0 && e.stk[n-1].obj {
		if !e.named {
			return errors.New("object value without a member name")
		}
		e.named = false
		e.stk[n-1].n++
		return nil
	}
	if n != 0 {
		e.separate()
		e.stk[n-1].n++
	}
	return nil
}

func (e *Encoder) endValue(err error) error {
	if err == nil && len(e.stk) == 0 {
		err = e.w.WriteByte('\n')
	}
	return err
}

func (e *Encoder) separate() {
	if e.stk[len(e.stk)-1].n != 0 {
		e.w.WriteByte(',')
	}
	if e.indented() {
		e.newline()
	}
}

func (e *Encoder) newline() {
	e.w.WriteByte('\n')
	e.w.WriteString(e.prefix)
	e.w.WriteString(strings.Repeat(e.indent, len(e.stk)))
}

func (e *Encoder) indented() bool { return e.prefix != "" || e.indent != "" }
