// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pbjson

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/hashgraph/pbj-go/internal/pberrs"
)

// encFrame mirrors containerFrame on the write side: whether the open
// container being written is an array (vs. an object), and whether the
// next entry needs a leading comma.
type encFrame struct {
	isArray bool
	first   bool
}

// Encoder writes out JSON in the canonical protobuf JSON mapping. The
// caller is responsible for producing a valid sequence of calls; generated
// marshal code does this by construction, so Encoder does not validate
// call order the way Decoder validates input syntax.
type Encoder struct {
	indent string
	stack  []encFrame
	out    []byte
}

// NewEncoder returns an Encoder. If indent is non-empty, every entry of an
// object or array is preceded by a newline and indent repeated once per
// nesting level.
func NewEncoder(indent string) (*Encoder, error) {
	if len(indent) > 0 && strings.Trim(indent, " \t") != "" {
		return nil, pberrs.New(pberrs.JSONParse, "indent may only be composed of space or tab characters")
	}
	return &Encoder{indent: indent}, nil
}

// Bytes returns the bytes written so far.
func (e *Encoder) Bytes() []byte { return e.out }

// beforeValue inserts the comma and/or indentation needed ahead of a value
// written as an array element. A value written as an object's field value
// needs neither, since WriteName already produced the separator and the
// ':' that precedes it.
func (e *Encoder) beforeValue() {
	if len(e.stack) == 0 {
		return
	}
	top := &e.stack[len(e.stack)-1]
	if !top.isArray {
		return
	}
	if !top.first {
		e.out = append(e.out, ',')
	}
	top.first = false
	if len(e.indent) > 0 {
		e.out = append(e.out, '\n')
		e.writeIndent(len(e.stack))
	}
}

func (e *Encoder) writeIndent(depth int) {
	for i := 0; i < depth; i++ {
		e.out = append(e.out, e.indent...)
	}
}

// WriteNull writes the null literal.
func (e *Encoder) WriteNull() {
	e.beforeValue()
	e.out = append(e.out, "null"...)
}

// WriteBool writes a boolean value.
func (e *Encoder) WriteBool(b bool) {
	e.beforeValue()
	if b {
		e.out = append(e.out, "true"...)
	} else {
		e.out = append(e.out, "false"...)
	}
}

// WriteString writes a quoted, escaped string value.
func (e *Encoder) WriteString(s string) error {
	e.beforeValue()
	var err error
	e.out, err = appendString(e.out, s)
	return err
}

// WriteFloat writes a float value using the canonical NaN/Infinity
// spellings for the special values.
func (e *Encoder) WriteFloat(n float64, bitSize int) {
	e.beforeValue()
	e.out = appendFloat(e.out, n, bitSize)
}

// WriteQuotedInt64 writes a signed integer as a quoted decimal string, per
// the canonical mapping for int64/sint64/sfixed64 fields.
func (e *Encoder) WriteQuotedInt64(n int64) {
	e.beforeValue()
	e.out = append(e.out, '"')
	e.out = strconv.AppendInt(e.out, n, 10)
	e.out = append(e.out, '"')
}

// WriteQuotedUint64 writes an unsigned integer as a quoted decimal string.
func (e *Encoder) WriteQuotedUint64(n uint64) {
	e.beforeValue()
	e.out = append(e.out, '"')
	e.out = strconv.AppendUint(e.out, n, 10)
	e.out = append(e.out, '"')
}

// WriteInt writes a bare decimal integer (32-bit integer types).
func (e *Encoder) WriteInt(n int64) {
	e.beforeValue()
	e.out = strconv.AppendInt(e.out, n, 10)
}

// WriteUint writes a bare decimal unsigned integer (32-bit integer types).
func (e *Encoder) WriteUint(n uint64) {
	e.beforeValue()
	e.out = strconv.AppendUint(e.out, n, 10)
}

// Raw splices in an already-encoded JSON value verbatim, for embedding the
// output of a nested message's own MarshalJSON.
func (e *Encoder) Raw(b []byte) {
	e.beforeValue()
	e.out = append(e.out, b...)
}

// StartObject writes '{' and opens a new object context.
func (e *Encoder) StartObject() {
	e.beforeValue()
	e.out = append(e.out, '{')
	e.stack = append(e.stack, encFrame{first: true})
}

// EndObject closes the current object context and writes '}'.
func (e *Encoder) EndObject() {
	top := e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]
	if len(e.indent) > 0 && !top.first {
		e.out = append(e.out, '\n')
		e.writeIndent(len(e.stack))
	}
	e.out = append(e.out, '}')
}

// StartArray writes '[' and opens a new array context.
func (e *Encoder) StartArray() {
	e.beforeValue()
	e.out = append(e.out, '[')
	e.stack = append(e.stack, encFrame{isArray: true, first: true})
}

// EndArray closes the current array context and writes ']'.
func (e *Encoder) EndArray() {
	top := e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]
	if len(e.indent) > 0 && !top.first {
		e.out = append(e.out, '\n')
		e.writeIndent(len(e.stack))
	}
	e.out = append(e.out, ']')
}

// WriteName writes a quoted object field name followed by the ':' name
// separator (and a space, when indenting).
func (e *Encoder) WriteName(s string) error {
	top := &e.stack[len(e.stack)-1]
	if !top.first {
		e.out = append(e.out, ',')
	}
	top.first = false
	if len(e.indent) > 0 {
		e.out = append(e.out, '\n')
		e.writeIndent(len(e.stack))
	}
	var err error
	e.out, err = appendString(e.out, s)
	e.out = append(e.out, ':')
	if len(e.indent) > 0 {
		e.out = append(e.out, ' ')
	}
	return err
}

// appendFloat formats n as JSON, using bitSize-appropriate precision and
// the canonical protobuf JSON spellings for the special values.
func appendFloat(out []byte, n float64, bitSize int) []byte {
	switch {
	case math.IsNaN(n):
		return append(out, `"NaN"`...)
	case math.IsInf(n, +1):
		return append(out, `"Infinity"`...)
	case math.IsInf(n, -1):
		return append(out, `"-Infinity"`...)
	}

	fmtByte := byte('f')
	if abs := math.Abs(n); abs != 0 {
		if bitSize == 64 && (abs < 1e-6 || abs >= 1e21) ||
			bitSize == 32 && (float32(abs) < 1e-6 || float32(abs) >= 1e21) {
			fmtByte = 'e'
		}
	}
	out = strconv.AppendFloat(out, n, fmtByte, -1, bitSize)
	if fmtByte == 'e' {
		// Collapse a two-digit exponent with a leading zero, e.g. e-09 to
		// e-9, matching the Go-style output protobuf JSON expects.
		n := len(out)
		if n >= 4 && out[n-4] == 'e' && out[n-3] == '-' && out[n-2] == '0' {
			out[n-2] = out[n-1]
			out = out[:n-1]
		}
	}
	return out
}

// appendString appends the JSON-quoted, escaped encoding of in to out,
// scanning one rune at a time rather than skipping ahead over escape-free
// runs: the canonical protobuf JSON mapping writes comparatively small
// field names and string values, so the simpler loop is not worth trading
// for the extra bookkeeping.
func appendString(out []byte, in string) ([]byte, error) {
	out = append(out, '"')
	var invalidErr error
	for i := 0; i < len(in); {
		r, size := utf8.DecodeRuneInString(in[i:])
		switch {
		case r == utf8.RuneError && size <= 1:
			invalidErr = pberrs.New(pberrs.InvalidUTF8, "string field contains invalid UTF-8")
			i++
		case r == '"' || r == '\\':
			out = append(out, '\\', byte(r))
			i += size
		case r == '\b':
			out = append(out, '\\', 'b')
			i += size
		case r == '\f':
			out = append(out, '\\', 'f')
			i += size
		case r == '\n':
			out = append(out, '\\', 'n')
			i += size
		case r == '\r':
			out = append(out, '\\', 'r')
			i += size
		case r == '\t':
			out = append(out, '\\', 't')
			i += size
		case r < ' ':
			out = append(out, '\\', 'u')
			out = appendHex4(out, uint16(r))
			i += size
		default:
			out = append(out, in[i:i+size]...)
			i += size
		}
	}
	out = append(out, '"')
	return out, invalidErr
}

func appendHex4(out []byte, v uint16) []byte {
	const hex = "0123456789abcdef"
	return append(out, hex[v>>12&0xf], hex[v>>8&0xf], hex[v>>4&0xf], hex[v&0xf])
}
