// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package tree_test

import (
	"strings"
	"testing"

	"github.com/creachadair/jpatch"
	"github.com/creachadair/jpatch/ast"
	"github.com/creachadair/jpatch/tree"
	"github.com/creachadair/mds/mtest"
	"github.com/google/go-cmp/cmp"
	"go4.org/mem"
)

func mustBuild(t *testing.T, s string) (ast.Value, tree.Node) {
	t.Helper()
	v, err := ast.ParseSingle(strings.NewReader(s))
	if err != nil {
		t.Fatalf("ParseSingle %q: %v", s, err)
	}
	return v, tree.Build(v)
}

func writeJSON(t *testing.T, n tree.Node) string {
	t.Helper()
	var buf strings.Builder
	enc := jpatch.NewEncoder(&buf)
	if err := tree.Write(n, enc); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := enc.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func TestBuildWrite(t *testing.T) {
	tests := []string{
		`null`,
		`true`,
		`"a\u0000b"`,
		`-1.5e10`,
		`[]`,
		`{}`,
		`[1,[2,[3]],{"a":[]}]`,
		`{"z":1,"a":2,"m":{"q":null,"b":"x"}}`,
	}
	for _, input := range tests {
		v, n := mustBuild(t, input)
		if got := writeJSON(t, n); got != input {
			t.Errorf("Write %s: got %s", input, got)
		}
		if got := tree.Value(n).JSON(); got != input {
			t.Errorf("Value %s: got %s", input, got)
		}
		if !tree.Equal(n, v) {
			t.Errorf("Equal %s: tree is not equal to its source", input)
		}
	}
}

func TestDuplicateKeys(t *testing.T) {
	_, n := mustBuild(t, `{"a":1,"b":2,"a":3}`)
	if got, want := writeJSON(t, n), `{"a":3,"b":2}`; got != want {
		t.Errorf("Write: got %s, want %s", got, want)
	}
}

func TestObject(t *testing.T) {
	o := tree.NewObject()
	o.Set("x", tree.Leaf{Value: ast.Int(1)})
	o.Set("y", tree.Leaf{Value: ast.Int(2)})
	o.Set("z", tree.Leaf{Value: ast.Int(3)})
	o.Set("x", tree.Leaf{Value: ast.Int(4)})

	if got := o.Len(); got != 3 {
		t.Errorf("Len: got %d, want 3", got)
	}
	if diff := cmp.Diff(o.Keys(), []string{"x", "y", "z"}); diff != "" {
		t.Errorf("Keys (-got, +want):\n%s", diff)
	}
	if n, ok := o.Get("x"); !ok || tree.Value(n).JSON() != "4" {
		t.Errorf("Get x: got %v, %v; want 4", n, ok)
	}
	if n, ok := o.Lookup(mem.S("y")); !ok || tree.Value(n).JSON() != "2" {
		t.Errorf("Lookup y: got %v, %v; want 2", n, ok)
	}
	long := strings.Repeat("k", 100)
	o.Set(long, tree.Leaf{Value: ast.Null})
	if _, ok := o.Lookup(mem.S(long)); !ok {
		t.Error("Lookup of a long key failed")
	}
	o.Remove(long)

	if old, ok := o.Remove("y"); !ok || tree.Value(old).JSON() != "2" {
		t.Errorf("Remove y: got %v, %v; want 2", old, ok)
	}
	if _, ok := o.Remove("y"); ok {
		t.Error("Remove y again: got true, want false")
	}
	if _, ok := o.Get("y"); ok {
		t.Error("Get y after removal: got true, want false")
	}
	if n, ok := o.Get("z"); !ok || tree.Value(n).JSON() != "3" {
		t.Errorf("Get z after removal: got %v, %v; want 3", n, ok)
	}

	var keys []string
	for key := range o.Each() {
		keys = append(keys, key)
	}
	if diff := cmp.Diff(keys, []string{"x", "z"}); diff != "" {
		t.Errorf("Each (-got, +want):\n%s", diff)
	}

	var zero tree.Object
	zero.Set("ok", tree.Leaf{Value: ast.Bool(true)})
	if got, want := writeJSON(t, &zero), `{"ok":true}`; got != want {
		t.Errorf("Zero object: got %s, want %s", got, want)
	}
}

func TestArray(t *testing.T) {
	leaf := func(z int64) tree.Node { return tree.Leaf{Value: ast.Int(z)} }

	a := tree.NewArray(leaf(1), leaf(2))
	a.Append(leaf(4))
	a.Insert(2, leaf(3))
	a.Insert(0, leaf(0))
	a.Insert(a.Len(), leaf(5))
	if got, want := writeJSON(t, a), `[0,1,2,3,4,5]`; got != want {
		t.Errorf("Array: got %s, want %s", got, want)
	}
	if old := a.Remove(0); tree.Value(old).JSON() != "0" {
		t.Errorf("Remove 0: got %v, want 0", old)
	}
	a.Set(0, leaf(9))
	if got, want := writeJSON(t, a), `[9,2,3,4,5]`; got != want {
		t.Errorf("Array: got %s, want %s", got, want)
	}
	if got := tree.Value(a.Get(4)).JSON(); got != "5" {
		t.Errorf("Get 4: got %s, want 5", got)
	}

	mtest.MustPanic(t, func() { a.Get(5) })
	mtest.MustPanic(t, func() { a.Insert(7, leaf(0)) })
	mtest.MustPanic(t, func() { a.Remove(-1) })
}

func TestClone(t *testing.T) {
	src, n := mustBuild(t, `{"a":[1,{"b":2}],"c":"d"}`)
	c := tree.Clone(n)

	obj := c.(*tree.Object)
	obj.Set("c", tree.Leaf{Value: ast.String("changed")})
	arr, _ := obj.Get("a")
	arr.(*tree.Array).Append(tree.Leaf{Value: ast.Null})
	inner := arr.(*tree.Array).Get(1).(*tree.Object)
	inner.Remove("b")

	if got, want := writeJSON(t, n), src.JSON(); got != want {
		t.Errorf("Original changed: got %s, want %s", got, want)
	}
	if got, want := writeJSON(t, c), `{"a":[1,{},null],"c":"changed"}`; got != want {
		t.Errorf("Clone: got %s, want %s", got, want)
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{`null`, `null`, true},
		{`null`, `false`, false},
		{`1`, `1.0`, true},
		{`"A"`, `"A"`, true},
		{`"A"`, `"B"`, false},
		{`[1,2]`, `[1,2]`, true},
		{`[1,2]`, `[1,2,3]`, false},
		{`[1,2]`, `{"0":1,"1":2}`, false},
		{`{"a":1,"b":[true]}`, `{"b":[true],"a":1}`, true},
		{`{"a":1}`, `{"a":1,"b":1}`, false},
		{`{"a":1,"b":1}`, `{"a":1}`, false},
		{`{"a":1,"b":1}`, `{"a":1,"c":1}`, false},
		{`{"a":1,"a":2}`, `{"a":2}`, true},
		{`{}`, `[]`, false},
	}
	for _, tc := range tests {
		_, n := mustBuild(t, tc.a)
		b, _ := mustBuild(t, tc.b)
		if got := tree.Equal(n, b); got != tc.want {
			t.Errorf("Equal(%s, %s): got %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}
