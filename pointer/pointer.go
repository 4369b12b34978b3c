// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package pointer implements JSON Pointer (RFC 6901) expressions.
//
// A pointer is a string of zero or more reference tokens, each introduced by
// a slash. The empty pointer "" refers to a whole document; "/a/0" refers to
// element 0 of the array in member "a" of the document object. Within a
// token, "~1" stands for "/" and "~0" stands for "~".
//
// Parsing a pointer records only the boundaries of its tokens. Escape
// sequences are decoded lazily when the tokens are visited by Evaluate, and
// tokens without escapes are visited without copying.
//
// A *Pointer is immutable once constructed, and is safe for concurrent use by
// multiple goroutines.
package pointer

import (
	"errors"
	"fmt"
	"strings"

	"go4.org/mem"
)

// A Pointer is a parsed JSON Pointer.
type Pointer struct {
	text   string
	toks   []token
	maxEsc int // length of the longest token requiring decoding
}

// A token records the location of a reference token in the pointer text.
type token struct {
	pos, end int // start and end offsets in text (noninclusive)
	esc      int // offset of the first "~" relative to pos, or -1
}

// Root returns a new empty pointer, which refers to a whole document.
func Root() *Pointer { return new(Pointer) }

// Parse parses s as a JSON pointer. In case of error, the concrete type of the
// error is *SyntaxError.
func Parse(s string) (*Pointer, error) {
	if s == "" {
		return Root(), nil
	} else if s[0] != '/' {
		return nil, &SyntaxError{Input: s, Offset: 0, Message: `pointer must begin with "/"`}
	}

	p := &Pointer{text: s, toks: make([]token, 0, strings.Count(s, "/"))}
	for pos := 1; ; {
		end := strings.IndexByte(s[pos:], '/')
		if end < 0 {
			end = len(s)
		} else {
			end += pos
		}

		tok := token{pos: pos, end: end, esc: mem.IndexByte(mem.S(s).Slice(pos, end), '~')}
		if tok.esc >= 0 {
			for i := pos + tok.esc; i < end; i++ {
				if s[i] != '~' {
					continue
				} else if i+1 == end {
					return nil, &SyntaxError{Input: s, Offset: i, Message: `incomplete escape "~"`}
				} else if c := s[i+1]; c != '0' && c != '1' {
					return nil, &SyntaxError{Input: s, Offset: i, Message: fmt.Sprintf("invalid escape %q", "~"+string(c))}
				}
				i++
			}
			p.maxEsc = max(p.maxEsc, end-pos)
		}
		p.toks = append(p.toks, tok)

		if end == len(s) {
			return p, nil
		}
		pos = end + 1
	}
}

// MustParse parses s as a JSON pointer, and panics if parsing fails.
func MustParse(s string) *Pointer {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

var escaper = strings.NewReplacer("~", "~0", "/", "~1")

// New constructs a pointer from the given unescaped reference tokens.
func New(tokens ...string) *Pointer { return Root().Append(tokens...) }

// Append returns a pointer that extends p with the given unescaped reference
// tokens. The pointer p is not modified.
func (p *Pointer) Append(tokens ...string) *Pointer {
	if len(tokens) == 0 {
		return p
	}
	var sb strings.Builder
	sb.WriteString(p.String())
	for _, tok := range tokens {
		sb.WriteByte('/')
		escaper.WriteString(&sb, tok)
	}
	return MustParse(sb.String())
}

// String returns the text of p, as it was originally parsed.
func (p *Pointer) String() string {
	if p == nil {
		return ""
	}
	return p.text
}

// Depth reports the number of reference tokens in p. The root pointer has
// depth 0.
func (p *Pointer) Depth() int {
	if p == nil {
		return 0
	}
	return len(p.toks)
}

// Equal reports whether p and q have the same text.
func (p *Pointer) Equal(q *Pointer) bool { return p.String() == q.String() }

// Tokens returns the decoded reference tokens of p.
func (p *Pointer) Tokens() []string {
	out := make([]string, 0, p.Depth())
	p.Walk(func(tok mem.RO, _ int) error {
		out = append(out, tok.StringCopy())
		return nil
	})
	return out
}

// Last returns the decoded last reference token of p, or "" if p is the root.
func (p *Pointer) Last() string {
	n := p.Depth()
	if n == 0 {
		return ""
	}
	var buf []byte
	return p.decode(p.toks[n-1], &buf).StringCopy()
}

// Parent returns the pointer to the value containing the one addressed by p.
// The parent of the root is the root.
func (p *Pointer) Parent() *Pointer {
	n := p.Depth()
	if n <= 1 {
		return Root()
	}
	last := p.toks[n-1]
	return &Pointer{text: p.text[:last.pos-1], toks: p.toks[: n-1 : n-1], maxEsc: p.maxEsc}
}

// MarshalText implements the encoding.TextMarshaler interface.
func (p *Pointer) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (p *Pointer) UnmarshalText(text []byte) error {
	q, err := Parse(string(text))
	if err != nil {
		return err
	}
	*p = *q
	return nil
}

// decode returns a view of the decoded text of tok. If tok contains escapes,
// they are decoded into *buf, which is grown as needed.
func (p *Pointer) decode(tok token, buf *[]byte) mem.RO {
	raw := mem.S(p.text).Slice(tok.pos, tok.end)
	if tok.esc < 0 {
		return raw
	}
	out := mem.Append((*buf)[:0], raw.SliceTo(tok.esc))
	for i := tok.esc; i < raw.Len(); i++ {
		c := raw.At(i)
		if c == '~' {
			i++
			if raw.At(i) == '1' {
				c = '/'
			}
		}
		out = append(out, c)
	}
	*buf = out
	return mem.B(out)
}

// A SyntaxError reports a malformed JSON pointer.
type SyntaxError struct {
	Input   string // the complete input
	Offset  int    // the offset of the error in Input
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid JSON pointer %q at offset %d: %s", e.Input, e.Offset, e.Message)
}

// Errors reported when a pointer does not resolve.
var (
	// ErrNotFound indicates that an object key or array element is missing.
	ErrNotFound = errors.New("value not found")

	// ErrIndex indicates a token that is not a valid array index.
	ErrIndex = errors.New("invalid array index")

	// ErrType indicates an attempt to traverse a value that is not an object
	// or an array.
	ErrType = errors.New("value is not a container")
)
