// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pberrs defines the typed error kinds shared by the runtime and
// compiler halves of the toolchain: MalformedWire, InvalidUTF8, JSONParse,
// CapacityExceeded, EndOfInput, SchemaViolation and IOFailure.
//
// Every error surfaced across a package boundary in this module is one of
// these kinds, so callers can use errors.As to recover the kind-specific
// context (offset, field name) instead of parsing error strings; parse
// errors carry file:line in their message text only.
package pberrs

import "fmt"

// Kind identifies one of the error categories named in the error-handling
// design: which cause produced a failure, not which Go type represents it.
type Kind int

const (
	// MalformedWire covers truncated input, invalid varints, and
	// wire-type/field-type mismatches the decoder cannot safely skip.
	MalformedWire Kind = iota
	// InvalidUTF8 covers invalid UTF-8 in string fields or JSON decode.
	InvalidUTF8
	// JSONParse covers the lexer reaching unexpected input.
	JSONParse
	// CapacityExceeded covers a write past a finite-capacity cursor.
	CapacityExceeded
	// EndOfInput covers a sequential read past the cursor's limit.
	EndOfInput
	// SchemaViolation covers duplicate field numbers, fields in reserved
	// ranges, and unresolved type references during code generation.
	SchemaViolation
	// IOFailure covers an underlying stream failing during a stream-backed
	// cursor's read or write.
	IOFailure
)

func (k Kind) String() string {
	switch k {
	case MalformedWire:
		return "malformed wire data"
	case InvalidUTF8:
		return "invalid UTF-8"
	case JSONParse:
		return "JSON parse error"
	case CapacityExceeded:
		return "capacity exceeded"
	case EndOfInput:
		return "end of input"
	case SchemaViolation:
		return "schema violation"
	case IOFailure:
		return "I/O failure"
	default:
		return "unknown error"
	}
}

// Error is the concrete error type returned across package boundaries. Field
// and Offset are zero-valued when not applicable to the Kind.
type Error struct {
	Kind    Kind
	Message string
	Field   string // proto field name, when relevant
	Offset  int64  // byte offset into the input, when relevant
	Err     error  // wrapped cause, if any
}

func (e *Error) Error() string {
	switch {
	case e.Field != "" && e.Offset != 0:
		return fmt.Sprintf("pbj: %s: %s (field %q, offset %d)", e.Kind, e.Message, e.Field, e.Offset)
	case e.Field != "":
		return fmt.Sprintf("pbj: %s: %s (field %q)", e.Kind, e.Message, e.Field)
	case e.Offset != 0:
		return fmt.Sprintf("pbj: %s: %s (offset %d)", e.Kind, e.Message, e.Offset)
	default:
		return fmt.Sprintf("pbj: %s: %s", e.Kind, e.Message)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same Kind, so callers can
// write errors.Is(err, pberrs.New(pberrs.EndOfInput, "")) — but more usually
// they will use errors.As to recover the *Error and inspect its Kind field
// directly.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// New constructs an *Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithOffset returns a copy of e with Offset set.
func (e *Error) WithOffset(off int64) *Error {
	c := *e
	c.Offset = off
	return &c
}

// WithField returns a copy of e with Field set.
func (e *Error) WithField(name string) *Error {
	c := *e
	c.Field = name
	return &c
}

// Wrap returns a copy of e with Err set to cause.
func (e *Error) Wrap(cause error) *Error {
	c := *e
	c.Err = cause
	return &c
}
