// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/creachadair/jpatch"
	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(text), 0600); err != nil {
		t.Fatalf("Write %q: %v", name, err)
	}
	return path
}

func TestApplyFiles(t *testing.T) {
	dir := t.TempDir()
	docPath := writeFile(t, dir, "doc.json", `{
  // A relaxed document.
  "a": [1, 2, 3,],
}`)
	patchPath := writeFile(t, dir, "patch.json", `[
  {"op": "add", "path": "/a/-", "value": 4},
  {"op": "test", "path": "/a/0", "value": 1}, // trailing comma
]`)
	outPath := filepath.Join(dir, "out.json")

	saved := flags
	defer func() { flags = saved }()

	flags.Relaxed = false
	if _, err := readValue(docPath); err == nil {
		t.Error("readValue without --relaxed: got nil, want error")
	}

	flags.Relaxed = true
	flags.Indent = "  "
	flags.Output = outPath

	doc, err := readValue(docPath)
	if err != nil {
		t.Fatalf("readValue: %v", err)
	}
	p, err := readPatch(patchPath)
	if err != nil {
		t.Fatalf("readPatch: %v", err)
	}
	if err := writeOutput(func(e jpatch.Emitter) error { return p.Apply(doc, e) }); err != nil {
		t.Fatalf("writeOutput: %v", err)
	}

	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("Read output: %v", err)
	}
	const want = `{
  "a": [
    1,
    2,
    3,
    4
  ]
}
`
	if diff := cmp.Diff(string(got), want); diff != "" {
		t.Errorf("Output (-got, +want):\n%s", diff)
	}

	// A failing patch does not write output.
	os.Remove(outPath)
	bad := writeFile(t, dir, "bad.json", `[{"op":"remove","path":"/nonesuch"}]`)
	p, err = readPatch(bad)
	if err != nil {
		t.Fatalf("readPatch: %v", err)
	}
	if err := writeOutput(func(e jpatch.Emitter) error { return p.Apply(doc, e) }); err == nil {
		t.Error("writeOutput: got nil, want error")
	}
	if _, err := os.Stat(outPath); !os.IsNotExist(err) {
		t.Errorf("Output file exists after a failed patch: %v", err)
	}
}
