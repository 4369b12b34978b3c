// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package jpatch implements the JSON text layer used by the JSON Patch
// packages in this module: a lexical scanner, an event-driven stream parser,
// and an event-driven encoder.
//
// The patch engine itself lives in package [github.com/creachadair/jpatch/patch],
// JSON Pointer support in [github.com/creachadair/jpatch/pointer], and the
// immutable document model in [github.com/creachadair/jpatch/ast].
//
// # Scanning
//
// The Scanner type implements a lexical scanner for JSON.  Construct a scanner
// from an io.Reader and call its Next method to iterate over the stream. Next
// advances to the next input token and returns nil, or reports an error:
//
//	s := jpatch.NewScanner(input)
//	for s.Next() == nil {
//	   log.Printf("Next token: %v", s.Token())
//	}
//
// Next returns io.EOF when the input has been fully consumed. Any other error
// indicates an I/O or lexical error in the input.
//
// # Streaming
//
// The Stream type implements an event-driven stream parser for JSON.  The
// parser works by calling methods on a Handler value to report the structure
// of the input. In case of error, parsing is terminated and an error of
// concrete type *jpatch.SyntaxError is returned.
//
//	s := jpatch.NewStream(input)
//	if err := s.Parse(handler); err != nil {
//	   log.Fatalf("Parse failed: %v", err)
//	}
//
// To parse a single value from the front of the input, call ParseOne. This
// method returns io.EOF if no further values are available.
//
// # Handlers
//
// The Handler interface accepts parser events from a Stream. The methods of
// a handler correspond to the syntax of JSON values:
//
//	JSON type  | Methods                   | Description
//	---------- | ------------------------- | ---------------------------------
//	object     | BeginObject, EndObject    | { ... }
//	array      | BeginArray, EndArray      | [ ... ]
//	member     | BeginMember, EndMember    | "key": value
//	value      | Value                     | true, false, null, number, string
//	--         | EndOfInput                | end of input
//
// Each method is passed an Anchor value that can be used to retrieve location
// and type information. The Anchor passed to a handler method is only valid
// for the duration of that method call.
//
// # Emitting
//
// The Emitter interface is the output counterpart of Handler: a producer
// describes a value by calling BeginObject, Name, Raw, and so on. The Encoder
// type implements Emitter by writing JSON text to an io.Writer:
//
//	enc := jpatch.NewEncoder(os.Stdout)
//	enc.BeginObject()
//	enc.Name("ok")
//	enc.Raw("true")
//	enc.EndObject()
//	enc.Flush() // {"ok":true}
package jpatch
