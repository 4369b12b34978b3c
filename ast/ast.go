// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package ast defines an immutable representation of JSON values, a parser
// that constructs values from JSON source, and support for writing values to
// a jpatch.Emitter.
//
// Values produced by this package are never modified once constructed, so
// they may be shared freely, including between goroutines.
package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/creachadair/jpatch"
)

// A Value is an arbitrary JSON value. The concrete type is one of Object,
// *Member, Array, Quoted, String, Number, Bool, or the type of Null.
type Value interface {
	// JSON returns the compact JSON encoding of the value.
	JSON() string
}

// A Text is a Value that represents a JSON string.
type Text interface {
	Value

	// Unquote returns the decoded contents of the string.
	Unquote() String
}

// An Object is a collection of key-value members.
type Object []*Member

// Len reports the number of members in o.
func (o Object) Len() int { return len(o) }

// Find returns the member of o with the given key, or nil. If o contains more
// than one member with that key, the last one is returned, so that a later
// occurrence of a key overrides an earlier one.
func (o Object) Find(key string) *Member {
	for i := len(o) - 1; i >= 0; i-- {
		if o[i].Key == key {
			return o[i]
		}
	}
	return nil
}

func (o Object) JSON() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(m.JSON())
	}
	sb.WriteByte('}')
	return sb.String()
}

func (o Object) String() string { return fmt.Sprintf("Object(len=%d)", len(o)) }

// A Member is a single key-value pair belonging to an Object.
type Member struct {
	Key   string // the decoded key
	Value Value
}

// Field constructs an object member with the given key and value.
// The value must be acceptable to ToValue.
func Field(key string, value any) *Member {
	return &Member{Key: key, Value: ToValue(value)}
}

func (m *Member) JSON() string { return jpatch.Quote(m.Key) + ":" + valueJSON(m.Value) }

func (m *Member) String() string { return fmt.Sprintf("Member(key=%q)", m.Key) }

// An Array is a sequence of values.
type Array []Value

// Len reports the number of elements in a.
func (a Array) Len() int { return len(a) }

func (a Array) JSON() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range a {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(valueJSON(v))
	}
	sb.WriteByte(']')
	return sb.String()
}

func (a Array) String() string { return fmt.Sprintf("Array(len=%d)", len(a)) }

// A Quoted is a string value in its original quoted JSON encoding, as it
// appeared in source text.
type Quoted struct{ text string }

// NewQuoted returns a Quoted for the given JSON string encoding, which must
// include the enclosing quotation marks.
func NewQuoted(text string) Quoted { return Quoted{text: text} }

// JSON returns the original encoded text of q.
func (q Quoted) JSON() string { return q.text }

// Unquote returns the decoded contents of q. Invalid escapes decode to the
// Unicode replacement rune. If q is not quoted, or ends in an incomplete
// escape sequence, Unquote returns an empty string.
func (q Quoted) Unquote() String {
	dec, err := jpatch.Unquote(q.text)
	if err != nil {
		return ""
	}
	return String(dec)
}

func (q Quoted) String() string { return q.text }

// A String is a string value constructed in memory.
type String string

func (s String) JSON() string { return jpatch.Quote(string(s)) }

// Unquote returns s itself.
func (s String) Unquote() String { return s }

// A Number is a numeric value, stored in its JSON text encoding.
type Number struct{ text string }

// Int constructs a Number for an integer value.
func Int(z int64) Number { return Number{text: strconv.FormatInt(z, 10)} }

// Float constructs a Number for a floating-point value.
func Float(f float64) Number { return Number{text: strconv.FormatFloat(f, 'g', -1, 64)} }

func (n Number) JSON() string { return n.text }

func (n Number) String() string { return n.text }

// IsInt reports whether n is written as an integer, with no fraction or
// exponent.
func (n Number) IsInt() bool { return !strings.ContainsAny(n.text, ".eE") }

// Int64 returns the value of n as an int64, truncating any fractional part.
// It returns 0 if n is out of range.
func (n Number) Int64() int64 {
	if n.IsInt() {
		v, err := strconv.ParseInt(n.text, 10, 64)
		if err == nil {
			return v
		}
	}
	return int64(n.Float64())
}

// Float64 returns the value of n as a float64.
func (n Number) Float64() float64 {
	v, _ := strconv.ParseFloat(n.text, 64)
	return v
}

// A Bool is a Boolean constant, true or false.
type Bool bool

func (b Bool) JSON() string { return strconv.FormatBool(bool(b)) }

type null struct{}

func (null) JSON() string   { return "null" }
func (null) String() string { return "null" }

// Null is the null constant. All null values compare equal to Null.
var Null Value = null{}

// ToValue converts a Go value into a Value. The input must be a string,
// integer, floating-point number, bool, nil, or a Value; otherwise ToValue
// panics.
func ToValue(v any) Value {
	switch t := v.(type) {
	case Value:
		return t
	case nil:
		return Null
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint:
		return Number{text: strconv.FormatUint(uint64(t), 10)}
	case uint64:
		return Number{text: strconv.FormatUint(t, 10)}
	case float32:
		return Float(float64(t))
	case float64:
		return Float(t)
	default:
		panic(fmt.Sprintf("cannot convert %T to a JSON value", v))
	}
}

// valueJSON renders v, treating a nil Value as null.
func valueJSON(v Value) string {
	if v == nil {
		return "null"
	}
	return v.JSON()
}
