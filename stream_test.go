// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jpatch_test

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/creachadair/jpatch"
	"github.com/google/go-cmp/cmp"
)

func TestStream(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"Empty", "", []string{"."}},
		{"Blank", " \n\t ", []string{"."}},
		{"EmptyPatch", "\n  [\n  ]\n", []string{"BeginArray", "EndArray", "."}},

		{"Remove", `[{"op":"remove","path":"/a~1b"}]`, []string{
			"BeginArray",
			"BeginObject",
			`Member "op"`, `Value string "remove"`, `EndMember ","`,
			`Member "path"`, `Value string "/a~1b"`, `EndMember "}"`,
			"EndObject",
			"EndArray",
			".",
		}},

		{"AddValues", `{"op": "add", "path": "/n",
 "value": [0, -1.5e3, true, false, null, "é", {}]}`, []string{
			"BeginObject",
			`Member "op"`, `Value string "add"`, `EndMember ","`,
			`Member "path"`, `Value string "/n"`, `EndMember ","`,
			`Member "value"`,
			"BeginArray",
			"Value integer 0",
			"Value number -1.5e3",
			"Value true true",
			"Value false false",
			"Value null null",
			`Value string "é"`,
			"BeginObject", "EndObject",
			"EndArray",
			`EndMember "}"`,
			"EndObject",
			".",
		}},

		{"Sequence", `[] {"op":"test"} null`, []string{
			"BeginArray", "EndArray",
			"BeginObject", `Member "op"`, `Value string "test"`, `EndMember "}"`, "EndObject",
			"Value null null",
			".",
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var rec recorder
			if err := jpatch.NewStream(strings.NewReader(tc.input)).Parse(&rec); err != nil {
				t.Fatalf("Parse %#q: unexpected error: %v", tc.input, err)
			}
			if diff := cmp.Diff(rec.events, tc.want); diff != "" {
				t.Errorf("Parse %#q events (-got, +want):\n%s", tc.input, diff)
			}
		})
	}
}

func TestStreamLocation(t *testing.T) {
	const input = `[
  {"op": "test",
   "path": "/x"}
]`
	var rec recorder
	rec.where = true
	if err := jpatch.NewStream(strings.NewReader(input)).Parse(&rec); err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	want := []string{
		"BeginArray",
		"BeginObject",
		`Member "op" @ 2:3`, `Value string "test" @ 2:9`, `EndMember ","`,
		`Member "path" @ 3:3`, `Value string "/x" @ 3:11`, `EndMember "}"`,
		"EndObject",
		"EndArray",
		".",
	}
	if diff := cmp.Diff(rec.events, want); diff != "" {
		t.Errorf("Events (-got, +want):\n%s", diff)
	}
}

func TestStreamErrors(t *testing.T) {
	tests := []struct {
		input string
		want  []string
		estr  string
	}{
		{`[{"op":"add"`,
			[]string{"BeginArray", "BeginObject", `Member "op"`, `Value string "add"`},
			`at 1:12: expected "}" or ",", got error: EOF`},
		{`[{"op":"add",}]`,
			[]string{"BeginArray", "BeginObject", `Member "op"`, `Value string "add"`, `EndMember ","`},
			`at 1:13: expected string, got "}"`},
		{`[{"op" "add"}]`,
			[]string{"BeginArray", "BeginObject", `Member "op"`},
			`at 1:7: expected ":", got string`},
		{`[{op:"add"}]`,
			[]string{"BeginArray", "BeginObject"},
			`at 1:2: expected "}" or string, got error: unexpected 'o' (offset 3)`},
		{`[{"op":"add","path":"/a`,
			[]string{"BeginArray", "BeginObject",
				`Member "op"`, `Value string "add"`, `EndMember ","`, `Member "path"`},
			`at 1:20: expected more input, got error: unterminated string (offset 23)`},
		{`[{"value":tru}]`,
			[]string{"BeginArray", "BeginObject", `Member "value"`},
			`at 1:10: expected more input, got error: unknown constant "tru" (offset 13)`},
		{`[{"op":"remove"}]]`,
			[]string{"BeginArray", "BeginObject",
				`Member "op"`, `Value string "remove"`, `EndMember "}"`, "EndObject", "EndArray"},
			`at 1:17: unexpected "]"`},
		{`[{"op":"copy"},]`,
			[]string{"BeginArray", "BeginObject",
				`Member "op"`, `Value string "copy"`, `EndMember "}"`, "EndObject"},
			`at 1:15: unexpected "]"`},
		{`:`, nil, `at 1:0: unexpected ":"`},
	}

	for _, tc := range tests {
		var rec recorder
		err := jpatch.NewStream(strings.NewReader(tc.input)).Parse(&rec)
		if err == nil {
			t.Errorf("Parse %#q: got nil, want error", tc.input)
			continue
		}
		var serr *jpatch.SyntaxError
		if !errors.As(err, &serr) {
			t.Errorf("Parse %#q: got %T, want *SyntaxError", tc.input, err)
		}
		if diff := cmp.Diff(rec.events, tc.want); diff != "" {
			t.Errorf("Parse %#q events (-got, +want):\n%s", tc.input, diff)
		}
		if got := err.Error(); got != tc.estr {
			t.Errorf("Parse %#q error:\ngot:  %s\nwant: %s", tc.input, got, tc.estr)
		}
	}
}

func TestStreamHandlerError(t *testing.T) {
	errStop := errors.New("no values allowed")
	rec := recorder{stopAt: `"value"`, stop: errStop}
	const input = `[{"op":"test","path":"","value":1},{"op":"remove","path":"/a"}]`

	err := jpatch.NewStream(strings.NewReader(input)).Parse(&rec)
	if !errors.Is(err, errStop) {
		t.Fatalf("Parse: got error %v, want %v", err, errStop)
	}
	var serr *jpatch.SyntaxError
	if errors.As(err, &serr) {
		t.Errorf("Parse: handler error reported as a syntax error: %v", err)
	}
	want := []string{
		"BeginArray", "BeginObject",
		`Member "op"`, `Value string "test"`, `EndMember ","`,
		`Member "path"`, `Value string ""`, `EndMember ","`,
	}
	if diff := cmp.Diff(rec.events, want); diff != "" {
		t.Errorf("Events (-got, +want):\n%s", diff)
	}
}

func TestParseOne(t *testing.T) {
	const input = `[{"op":"remove","path":"/a"}] [] {"op":"move"}`
	want := []string{
		"BeginArray", "BeginObject",
		`Member "op"`, `Value string "remove"`, `EndMember ","`,
		`Member "path"`, `Value string "/a"`, `EndMember "}"`,
		"EndObject", "EndArray",
		"---",
		"BeginArray", "EndArray",
		"---",
		"BeginObject", `Member "op"`, `Value string "move"`, `EndMember "}"`, "EndObject",
		"---",
		".",
	}

	var rec recorder
	st := jpatch.NewStream(strings.NewReader(input))
	for {
		err := st.ParseOne(&rec)
		if err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("ParseOne failed: %v", err)
		}
		rec.events = append(rec.events, "---")
	}
	if diff := cmp.Diff(rec.events, want); diff != "" {
		t.Errorf("Events (-got, +want):\n%s", diff)
	}
}

// recorder is a jpatch.Handler that records a summary of each event.
type recorder struct {
	events []string
	where  bool // include locations of keys and values

	stopAt string // if non-empty, fail BeginMember with this key text
	stop   error
}

func (r *recorder) add(loc jpatch.Anchor, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if r.where {
		msg += " @ " + loc.Location().First.String()
	}
	r.events = append(r.events, msg)
}

func (r *recorder) BeginObject(jpatch.Anchor) error { r.events = append(r.events, "BeginObject"); return nil }
func (r *recorder) EndObject(jpatch.Anchor) error   { r.events = append(r.events, "EndObject"); return nil }
func (r *recorder) BeginArray(jpatch.Anchor) error  { r.events = append(r.events, "BeginArray"); return nil }
func (r *recorder) EndArray(jpatch.Anchor) error    { r.events = append(r.events, "EndArray"); return nil }
func (r *recorder) EndOfInput(jpatch.Anchor)        { r.events = append(r.events, ".") }

func (r *recorder) BeginMember(loc jpatch.Anchor) error {
	if r.stopAt != "" && string(loc.Text()) == r.stopAt {
		return r.stop
	}
	r.add(loc, "Member %s", loc.Text())
	return nil
}

func (r *recorder) EndMember(loc jpatch.Anchor) error {
	r.events = append(r.events, "EndMember "+loc.Token().String())
	return nil
}

func (r *recorder) Value(loc jpatch.Anchor) error {
	r.add(loc, "Value %v %s", loc.Token(), loc.Text())
	return nil
}
