// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package pointer

import (
	"fmt"
	"math"

	"github.com/creachadair/jpatch/ast"
	"go4.org/mem"
)

// A Visitor is called by Evaluate for each reference token of a pointer, in
// order. The depth is the zero-based index of the token. The visitor may
// update *state to carry information between steps.
//
// The token view is only valid for the duration of the call; a visitor that
// needs to retain it must copy it, for example with tok.StringCopy().
type Visitor[S any] func(tok mem.RO, depth int, state *S) error

// Evaluate calls visit with each decoded reference token of p in order,
// threading state through the calls. If visit reports an error, evaluation
// stops and that error is returned to the caller. Evaluating the root pointer
// does not call visit.
//
// Tokens without escape sequences are passed to visit without copying.
// Escaped tokens are decoded into a scratch buffer that is private to this
// call, so a single *Pointer may be evaluated concurrently.
func Evaluate[S any](p *Pointer, state *S, visit Visitor[S]) error {
	if p.Depth() == 0 {
		return nil
	}
	var buf []byte
	if p.maxEsc > 0 {
		buf = make([]byte, 0, p.maxEsc)
	}
	for i, tok := range p.toks {
		if err := visit(p.decode(tok, &buf), i, state); err != nil {
			return err
		}
	}
	return nil
}

// Walk calls visit with each decoded reference token of p in order. It is a
// convenience wrapper for Evaluate when no state is required.
func (p *Pointer) Walk(visit func(tok mem.RO, depth int) error) error {
	return Evaluate(p, (*struct{})(nil), func(tok mem.RO, depth int, _ *struct{}) error {
		return visit(tok, depth)
	})
}

// Prefix returns the text of the pointer consisting of the first n reference
// tokens of p. If n ≥ p.Depth(), Prefix returns the text of p.
func (p *Pointer) Prefix(n int) string {
	if n <= 0 {
		return ""
	} else if n >= p.Depth() {
		return p.String()
	}
	return p.text[:p.toks[n-1].end]
}

// ParseIndex parses tok as an array index. A valid index is a nonempty string
// of decimal digits with no leading zeroes, except for "0" itself. The
// end-of-array token "-" is not accepted here; callers that permit it must
// check for it separately.
//
// In case of error, ParseIndex returns an error that wraps ErrIndex.
func ParseIndex(tok mem.RO) (int, error) {
	if tok.Len() == 0 {
		return 0, fmt.Errorf("%w: empty token", ErrIndex)
	} else if tok.Len() > 1 && tok.At(0) == '0' {
		return 0, fmt.Errorf("%w: %q has leading zeroes", ErrIndex, tok.StringCopy())
	}
	var n int
	for i := 0; i < tok.Len(); i++ {
		c := tok.At(i)
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w: %q is not a number", ErrIndex, tok.StringCopy())
		}
		d := int(c - '0')
		if n > (math.MaxInt-d)/10 {
			return 0, fmt.Errorf("%w: %q is out of range", ErrIndex, tok.StringCopy())
		}
		n = n*10 + d
	}
	return n, nil
}

// IsEnd reports whether tok is the end-of-array token "-".
func IsEnd(tok mem.RO) bool { return tok.EqualString("-") }

// Resolve returns the value addressed by p within root. The root pointer
// resolves to root itself. Object members are matched by their decoded keys;
// if an object has duplicate keys, the last one wins.
//
// If p does not resolve, the error wraps one of ErrNotFound, ErrIndex, or
// ErrType.
func (p *Pointer) Resolve(root ast.Value) (ast.Value, error) {
	cur := root
	err := Evaluate(p, &cur, func(tok mem.RO, depth int, cur *ast.Value) error {
		switch t := (*cur).(type) {
		case ast.Object:
			for i := len(t) - 1; i >= 0; i-- {
				if tok.EqualString(t[i].Key) {
					*cur = t[i].Value
					return nil
				}
			}
			return fmt.Errorf("%w: key %q in %q", ErrNotFound, tok.StringCopy(), p.Prefix(depth))

		case ast.Array:
			if IsEnd(tok) {
				return fmt.Errorf("%w: end of array in %q", ErrNotFound, p.Prefix(depth))
			}
			i, err := ParseIndex(tok)
			if err != nil {
				return fmt.Errorf("at %q: %w", p.Prefix(depth+1), err)
			} else if i >= len(t) {
				return fmt.Errorf("%w: index %d out of range (n=%d) in %q", ErrNotFound, i, len(t), p.Prefix(depth))
			}
			*cur = t[i]
			return nil

		default:
			return fmt.Errorf("%w: cannot traverse %v at %q", ErrType, *cur, p.Prefix(depth))
		}
	})
	if err != nil {
		return nil, err
	}
	return cur, nil
}
