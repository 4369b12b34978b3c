// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package ast

import "math/big"

// Equal reports whether a and b are structurally equal JSON values.
//
// Objects are equal if they have the same set of keys and the values for each
// key are equal; member order does not matter. Arrays are equal if they have
// the same length and their elements are pairwise equal. Strings are equal if
// their decoded contents are equal, regardless of how they are escaped.
// Numbers are equal if they have the same numeric value, so 1, 1.0, and 10e-1
// are all equal. A nil Value is treated as null.
func Equal(a, b Value) bool {
	if a == nil {
		a = Null
	}
	if b == nil {
		b = Null
	}
	switch x := a.(type) {
	case Object:
		y, ok := b.(Object)
		if !ok {
			return false
		}
		kx, ky := keySet(x), keySet(y)
		if len(kx) != len(ky) {
			return false
		}
		for key := range kx {
			if _, ok := ky[key]; !ok {
				return false
			} else if !Equal(x.Find(key).Value, y.Find(key).Value) {
				return false
			}
		}
		return true

	case Array:
		y, ok := b.(Array)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true

	case *Member:
		y, ok := b.(*Member)
		return ok && x.Key == y.Key && Equal(x.Value, y.Value)

	default:
		return EqualScalar(a, b)
	}
}

// EqualScalar reports whether a and b are equal scalar values (strings,
// numbers, Booleans, or null), using the rules described by Equal. It reports
// false if either value is an object, member, or array.
func EqualScalar(a, b Value) bool {
	switch x := a.(type) {
	case Text:
		y, ok := b.(Text)
		return ok && x.Unquote() == y.Unquote()
	case Number:
		y, ok := b.(Number)
		return ok && numberEqual(x, y)
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	default:
		return a == Null && b == Null
	}
}

func keySet(o Object) map[string]struct{} {
	keys := make(map[string]struct{}, len(o))
	for _, m := range o {
		keys[m.Key] = struct{}{}
	}
	return keys
}

// numberEqual compares numbers by value. Integers are compared exactly;
// otherwise the values are compared with extended precision.
func numberEqual(x, y Number) bool {
	if x.text == y.text {
		return true
	}
	if x.IsInt() && y.IsInt() {
		bx, ok1 := new(big.Int).SetString(x.text, 10)
		by, ok2 := new(big.Int).SetString(y.text, 10)
		return ok1 && ok2 && bx.Cmp(by) == 0
	}
	const prec = 256
	fx, _, err1 := big.ParseFloat(x.text, 10, prec, big.ToNearestEven)
	fy, _, err2 := big.ParseFloat(y.text, 10, prec, big.ToNearestEven)
	return err1 == nil && err2 == nil && fx.Cmp(fy) == 0
}
