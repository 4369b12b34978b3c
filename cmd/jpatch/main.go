// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Program jpatch applies JSON Patch (RFC 6902) documents to JSON values, and
// resolves JSON Pointer (RFC 6901) expressions.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/creachadair/command"
	"github.com/creachadair/jpatch"
	"github.com/creachadair/jpatch/ast"
	"github.com/creachadair/jpatch/patch"
	"github.com/creachadair/jpatch/pointer"
	"github.com/mattn/go-isatty"
	"github.com/tailscale/hujson"
)

var flags struct {
	Relaxed bool
	Verbose bool
	Indent  string
	Output  string
}

func main() {
	root := &command.C{
		Name:  command.ProgramName(),
		Usage: "<command> [arguments]\nhelp [<command>]",
		Help: `Apply JSON Patch documents and resolve JSON Pointers.

Inputs named "-" are read from stdin. With --relaxed, inputs may contain
comments and trailing commas.`,

		SetFlags: func(env *command.Env, fs *flag.FlagSet) {
			fs.BoolVar(&flags.Relaxed, "relaxed", false, "Accept comments and trailing commas in inputs")
			fs.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
			fs.StringVar(&flags.Indent, "indent", "", "Indent output with this string (default compact, or two spaces on a terminal)")
			fs.StringVar(&flags.Output, "o", "", "Write output to this file (default stdout)")
		},
		Init: func(env *command.Env) error {
			level := slog.LevelInfo
			if flags.Verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return nil
		},

		Commands: []*command.C{
			{
				Name:  "apply",
				Usage: "<document> <patch>",
				Help: `Apply a patch to a document and print the result.

The patch must be a JSON array of operations as defined by RFC 6902.
If any operation fails, no output is written and the failing operation
is reported.`,
				Run: runApply,
			},
			{
				Name:  "get",
				Usage: "<document> <pointer>",
				Help:  "Print the value addressed by a JSON Pointer in a document.",
				Run:   runGet,
			},
			{
				Name:  "check",
				Usage: "<patch>",
				Help:  "Check that a patch is well-formed, and print it in canonical form.",
				Run:   runCheck,
			},
			command.HelpCommand(nil),
			command.VersionCommand(),
		},
	}
	command.RunOrFail(root.NewEnv(nil), os.Args[1:])
}

func runApply(env *command.Env) error {
	if len(env.Args) != 2 {
		return env.Usagef("got %d arguments, want <document> <patch>", len(env.Args))
	}
	doc, err := readValue(env.Args[0])
	if err != nil {
		return err
	}
	p, err := readPatch(env.Args[1])
	if err != nil {
		return err
	}
	for i, op := range p {
		slog.Debug("operation", "index", i, "op", op.Kind(), "path", op.Target().String())
	}
	return writeOutput(func(e jpatch.Emitter) error {
		err := p.Apply(doc, e)
		var aerr *patch.ApplyError
		if errors.As(err, &aerr) {
			slog.Debug("patch failed", "index", aerr.Index, "op", aerr.Op.Kind(), "error", aerr.Err)
		}
		return err
	})
}

func runGet(env *command.Env) error {
	if len(env.Args) != 2 {
		return env.Usagef("got %d arguments, want <document> <pointer>", len(env.Args))
	}
	ptr, err := pointer.Parse(env.Args[1])
	if err != nil {
		return err
	}
	slog.Debug("parsed pointer", "pointer", ptr.String(), "tokens", ptr.Tokens())
	doc, err := readValue(env.Args[0])
	if err != nil {
		return err
	}
	v, err := ptr.Resolve(doc)
	if err != nil {
		return err
	}
	return writeOutput(func(e jpatch.Emitter) error { return ast.Emit(v, e) })
}

func runCheck(env *command.Env) error {
	if len(env.Args) != 1 {
		return env.Usagef("got %d arguments, want <patch>", len(env.Args))
	}
	p, err := readPatch(env.Args[0])
	if err != nil {
		return err
	}
	slog.Debug("patch is valid", "operations", len(p))
	return writeOutput(p.Encode)
}

// readInput reads the contents of the named file, or stdin if name is "-".
// If --relaxed is set, the input is converted to standard JSON.
func readInput(name string) ([]byte, error) {
	var data []byte
	var err error
	if name == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, err
	}
	slog.Debug("read input", "name", name, "bytes", len(data))
	if flags.Relaxed {
		std, err := hujson.Standardize(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return std, nil
	}
	return data, nil
}

func readValue(name string) (ast.Value, error) {
	data, err := readInput(name)
	if err != nil {
		return nil, err
	}
	v, err := ast.ParseSingle(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

func readPatch(name string) (patch.Patch, error) {
	data, err := readInput(name)
	if err != nil {
		return nil, err
	}
	p, err := patch.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return p, nil
}

// writeOutput calls emit with an encoder for the output selected by the
// flags. Nothing is written to a named output file unless emit succeeds.
func writeOutput(emit func(jpatch.Emitter) error) error {
	var buf bytes.Buffer
	enc := jpatch.NewEncoder(&buf)
	if flags.Indent != "" {
		enc.SetIndent("", flags.Indent)
	} else if flags.Output == "" && isatty.IsTerminal(os.Stdout.Fd()) {
		enc.SetIndent("", "  ")
	}
	if err := emit(enc); err != nil {
		return err
	} else if err := enc.Flush(); err != nil {
		return err
	}
	if flags.Output == "" {
		_, err := os.Stdout.Write(buf.Bytes())
		return err
	}
	slog.Debug("writing output", "file", flags.Output, "bytes", buf.Len())
	return os.WriteFile(flags.Output, buf.Bytes(), 0644)
}
