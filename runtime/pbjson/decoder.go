// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pbjson implements the canonical protobuf JSON mapping directly
// against a byte buffer. Decoder and Encoder are schema-driven: unlike a
// general-purpose JSON library, the caller always knows which grammar
// production it expects next (an object key, a repeated field's array of
// elements, a quoted or bare 64-bit integer), so there is no generic token
// stream or sniff-the-next-token dispatcher sitting underneath them. Each
// pull/push method scans or writes exactly the construct it was asked for.
package pbjson

import (
	"encoding/base64"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/hashgraph/pbj-go/internal/pberrs"
)

// containerFrame tracks one open object or array: whether it is an array
// (vs. an object) and whether the next entry is the first one, which
// decides whether a leading comma is required.
type containerFrame struct {
	isArray bool
	first   bool
}

// Decoder is a pull reader over JSON text driven by generated UnmarshalJSON
// methods, the way jsonpb's unmarshalMessage loop drives its underlying
// decoder: open a container, ask for the next field name (or a close), and
// read the value once the field's proto type is known.
type Decoder struct {
	buf   []byte
	pos   int
	stack []containerFrame
}

// NewDecoder returns a Decoder reading b.
func NewDecoder(b []byte) *Decoder {
	return &Decoder{buf: b}
}

// Offset returns the byte offset of the next unconsumed input byte, for
// error reporting.
func (d *Decoder) Offset() int64 { return int64(d.pos) }

func (d *Decoder) errorAt(kind pberrs.Kind, f string, x ...interface{}) error {
	return pberrs.New(kind, f, x...).WithOffset(d.Offset())
}

func (d *Decoder) syntaxErrorf(f string, x ...interface{}) error {
	return d.errorAt(pberrs.JSONParse, f, x...)
}

func (d *Decoder) unexpectedEOF() error {
	return d.errorAt(pberrs.EndOfInput, "unexpected end of JSON input")
}

func (d *Decoder) skipSpace() {
	for d.pos < len(d.buf) {
		switch d.buf[d.pos] {
		case ' ', '\t', '\n', '\r':
			d.pos++
		default:
			return
		}
	}
}

// peek skips leading whitespace and returns the next byte without
// consuming it.
func (d *Decoder) peek() (byte, bool) {
	d.skipSpace()
	if d.pos >= len(d.buf) {
		return 0, false
	}
	return d.buf[d.pos], true
}

func (d *Decoder) top() (*containerFrame, error) {
	if len(d.stack) == 0 {
		return nil, d.syntaxErrorf("no open object or array")
	}
	return &d.stack[len(d.stack)-1], nil
}

// OpenObject consumes a '{'.
func (d *Decoder) OpenObject() error {
	b, ok := d.peek()
	if !ok {
		return d.unexpectedEOF()
	}
	if b != '{' {
		return d.syntaxErrorf("expected object, got %q", b)
	}
	d.pos++
	d.stack = append(d.stack, containerFrame{first: true})
	return nil
}

// CloseObject consumes a trailing '}' directly, for objects known to be
// empty or already fully drained by NextFieldOrClose.
func (d *Decoder) CloseObject() error {
	b, ok := d.peek()
	if !ok {
		return d.unexpectedEOF()
	}
	if b != '}' {
		return d.syntaxErrorf("expected '}', got %q", b)
	}
	d.pos++
	d.stack = d.stack[:len(d.stack)-1]
	return nil
}

// NextFieldOrClose returns the next object key, or ok=false once the '}'
// has been consumed.
func (d *Decoder) NextFieldOrClose() (name string, ok bool, err error) {
	top, err := d.top()
	if err != nil {
		return "", false, err
	}
	b, have := d.peek()
	if !have {
		return "", false, d.unexpectedEOF()
	}
	if b == '}' {
		d.pos++
		d.stack = d.stack[:len(d.stack)-1]
		return "", false, nil
	}
	if !top.first {
		if b != ',' {
			return "", false, d.syntaxErrorf("expected ',' or '}', got %q", b)
		}
		d.pos++
		if b, have = d.peek(); !have {
			return "", false, d.unexpectedEOF()
		}
	}
	if b != '"' {
		return "", false, d.syntaxErrorf("expected object field name, got %q", b)
	}
	top.first = false
	name, err = d.scanString()
	if err != nil {
		return "", false, err
	}
	cb, have := d.peek()
	if !have {
		return "", false, d.unexpectedEOF()
	}
	if cb != ':' {
		return "", false, d.syntaxErrorf(`missing ":" after object field name`)
	}
	d.pos++
	return name, true, nil
}

// OpenArray consumes a '['.
func (d *Decoder) OpenArray() error {
	b, ok := d.peek()
	if !ok {
		return d.unexpectedEOF()
	}
	if b != '[' {
		return d.syntaxErrorf("expected array, got %q", b)
	}
	d.pos++
	d.stack = append(d.stack, containerFrame{isArray: true, first: true})
	return nil
}

// PeekEndArray reports whether the current array is finished, consuming
// the closing ']' or a pending element separator as it determines that.
func (d *Decoder) PeekEndArray() (bool, error) {
	top, err := d.top()
	if err != nil {
		return false, err
	}
	b, ok := d.peek()
	if !ok {
		return false, d.unexpectedEOF()
	}
	if b == ']' {
		d.pos++
		d.stack = d.stack[:len(d.stack)-1]
		return true, nil
	}
	if !top.first {
		if b != ',' {
			return false, d.syntaxErrorf("expected ',' or ']', got %q", b)
		}
		d.pos++
	}
	top.first = false
	return false, nil
}

// ReadString reads a JSON string value.
func (d *Decoder) ReadString() (string, error) {
	b, ok := d.peek()
	if !ok {
		return "", d.unexpectedEOF()
	}
	if b != '"' {
		return "", d.syntaxErrorf("expected string, got %q", b)
	}
	return d.scanString()
}

// ReadBoolean reads a JSON boolean literal.
func (d *Decoder) ReadBoolean() (bool, error) {
	b, ok := d.peek()
	if !ok {
		return false, d.unexpectedEOF()
	}
	switch b {
	case 't':
		if !d.consumeWord("true") {
			return false, d.syntaxErrorf("invalid literal")
		}
		return true, nil
	case 'f':
		if !d.consumeWord("false") {
			return false, d.syntaxErrorf("invalid literal")
		}
		return false, nil
	}
	return false, d.syntaxErrorf("expected bool, got %q", b)
}

// ReadNull consumes a JSON null literal.
func (d *Decoder) ReadNull() error {
	b, ok := d.peek()
	if !ok {
		return d.unexpectedEOF()
	}
	if b != 'n' || !d.consumeWord("null") {
		return d.syntaxErrorf("expected null, got %q", b)
	}
	return nil
}

// PeekIsNull reports whether the next token is a null literal, without
// consuming anything when it is not.
func (d *Decoder) PeekIsNull() (bool, error) {
	b, ok := d.peek()
	if !ok {
		return false, d.unexpectedEOF()
	}
	if b != 'n' {
		return false, nil
	}
	end := d.pos + 4
	if end > len(d.buf) || string(d.buf[d.pos:end]) != "null" {
		return false, nil
	}
	if end < len(d.buf) && isWordByte(d.buf[end]) {
		return false, nil
	}
	return true, nil
}

// ReadDouble reads a JSON number, or the quoted NaN/Infinity/-Infinity
// spellings, or a quoted decimal literal, as a float64/float32-precision
// double.
func (d *Decoder) ReadDouble(bitSize int) (float64, error) {
	b, ok := d.peek()
	if !ok {
		return 0, d.unexpectedEOF()
	}
	if b == '"' {
		s, err := d.scanString()
		if err != nil {
			return 0, err
		}
		switch s {
		case "NaN":
			return math.NaN(), nil
		case "Infinity":
			return math.Inf(1), nil
		case "-Infinity":
			return math.Inf(-1), nil
		}
		f, err := strconv.ParseFloat(s, bitSize)
		if err != nil {
			return 0, d.syntaxErrorf("invalid double literal %q", s)
		}
		return f, nil
	}
	lit, err := d.scanNumberLiteral()
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(lit, bitSize)
	if err != nil {
		return 0, d.syntaxErrorf("invalid number %q", lit)
	}
	return f, nil
}

// ReadSignedInteger reads a JSON number or its quoted-string form (used for
// 64-bit integer fields) as a signed integer fitting bitSize bits.
func (d *Decoder) ReadSignedInteger(bitSize int) (int64, error) {
	b, ok := d.peek()
	if !ok {
		return 0, d.unexpectedEOF()
	}
	if b == '"' {
		s, err := d.scanString()
		if err != nil {
			return 0, err
		}
		n, err := strconv.ParseInt(s, 10, bitSize)
		if err != nil {
			return 0, d.syntaxErrorf("invalid quoted integer %q: %v", s, err)
		}
		return n, nil
	}
	lit, err := d.scanNumberLiteral()
	if err != nil {
		return 0, err
	}
	digits, ok := normalizeNumberLiteralToIntegerDigits(lit)
	if !ok {
		return 0, d.syntaxErrorf("%q is not an integer", lit)
	}
	n, err := strconv.ParseInt(digits, 10, bitSize)
	if err != nil {
		return 0, d.syntaxErrorf("integer %q out of range: %v", digits, err)
	}
	return n, nil
}

// ReadUnsignedInteger reads a JSON number or its quoted-string form as an
// unsigned integer fitting bitSize bits.
func (d *Decoder) ReadUnsignedInteger(bitSize int) (uint64, error) {
	b, ok := d.peek()
	if !ok {
		return 0, d.unexpectedEOF()
	}
	if b == '"' {
		s, err := d.scanString()
		if err != nil {
			return 0, err
		}
		n, err := strconv.ParseUint(s, 10, bitSize)
		if err != nil {
			return 0, d.syntaxErrorf("invalid quoted unsigned integer %q: %v", s, err)
		}
		return n, nil
	}
	lit, err := d.scanNumberLiteral()
	if err != nil {
		return 0, err
	}
	digits, ok := normalizeNumberLiteralToIntegerDigits(lit)
	if !ok {
		return 0, d.syntaxErrorf("%q is not an integer", lit)
	}
	n, err := strconv.ParseUint(digits, 10, bitSize)
	if err != nil {
		return 0, d.syntaxErrorf("unsigned integer %q out of range: %v", digits, err)
	}
	return n, nil
}

// ReadBytes reads a Base64-encoded string value, accepting both the
// canonical standard-padded alphabet and the URL-safe unpadded one.
func (d *Decoder) ReadBytes() ([]byte, error) {
	s, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		if b2, err2 := base64.RawURLEncoding.DecodeString(s); err2 == nil {
			return b2, nil
		}
		return nil, d.syntaxErrorf("invalid base64 bytes literal: %v", err)
	}
	return b, nil
}

// ReadEnum reads a JSON string (an enum member name, resolved via lookup),
// a bare JSON number (the ordinal), or null (the zero value).
func (d *Decoder) ReadEnum(lookup func(name string) (int32, bool)) (int32, error) {
	b, ok := d.peek()
	if !ok {
		return 0, d.unexpectedEOF()
	}
	switch {
	case b == '"':
		s, err := d.scanString()
		if err != nil {
			return 0, err
		}
		n, found := lookup(s)
		if !found {
			return 0, d.errorAt(pberrs.SchemaViolation, "unknown enum member %q", s)
		}
		return n, nil
	case b == 'n':
		return 0, d.ReadNull()
	case b == '-' || (b >= '0' && b <= '9'):
		lit, err := d.scanNumberLiteral()
		if err != nil {
			return 0, err
		}
		n, err := strconv.ParseInt(lit, 10, 32)
		if err != nil {
			return 0, d.syntaxErrorf("invalid enum ordinal %q", lit)
		}
		return int32(n), nil
	}
	return 0, d.syntaxErrorf("expected enum value, got %q", b)
}

// RawValue returns the exact input bytes spanning the next JSON value,
// without interpreting them, so generated code can delegate a nested
// message field to that message's own UnmarshalJSON.
func (d *Decoder) RawValue() ([]byte, error) {
	start := d.pos
	if err := d.SkipValue(); err != nil {
		return nil, err
	}
	return d.buf[start:d.pos], nil
}

// SkipValue discards the next value, descending into objects and arrays,
// for unknown-field handling.
func (d *Decoder) SkipValue() error {
	b, ok := d.peek()
	if !ok {
		return d.unexpectedEOF()
	}
	switch {
	case b == '{':
		if err := d.OpenObject(); err != nil {
			return err
		}
		for {
			_, more, err := d.NextFieldOrClose()
			if err != nil {
				return err
			}
			if !more {
				return nil
			}
			if err := d.SkipValue(); err != nil {
				return err
			}
		}
	case b == '[':
		if err := d.OpenArray(); err != nil {
			return err
		}
		for {
			done, err := d.PeekEndArray()
			if err != nil {
				return err
			}
			if done {
				return nil
			}
			if err := d.SkipValue(); err != nil {
				return err
			}
		}
	case b == '"':
		_, err := d.scanString()
		return err
	case b == 't':
		if !d.consumeWord("true") {
			return d.syntaxErrorf("invalid literal")
		}
		return nil
	case b == 'f':
		if !d.consumeWord("false") {
			return d.syntaxErrorf("invalid literal")
		}
		return nil
	case b == 'n':
		if !d.consumeWord("null") {
			return d.syntaxErrorf("invalid literal")
		}
		return nil
	case b == '-' || (b >= '0' && b <= '9'):
		_, err := d.scanNumberLiteral()
		return err
	}
	return d.syntaxErrorf("unexpected character %q", b)
}

// isWordByte reports whether c can continue a bare literal or number token,
// used to reject inputs like "nullable" being accepted as "null".
func isWordByte(c byte) bool {
	return c == '-' || c == '+' || c == '.' || c == '_' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// consumeWord advances past word if the input at the current position is
// exactly word followed by a delimiter (or EOF).
func (d *Decoder) consumeWord(word string) bool {
	end := d.pos + len(word)
	if end > len(d.buf) || string(d.buf[d.pos:end]) != word {
		return false
	}
	if end < len(d.buf) && isWordByte(d.buf[end]) {
		return false
	}
	d.pos = end
	return true
}

// scanNumberLiteral validates and returns the raw JSON number token (RFC
// 8259 §6) starting at the current position, without interpreting it.
func (d *Decoder) scanNumberLiteral() (string, error) {
	start := d.pos
	b := d.buf
	i := d.pos

	if i < len(b) && b[i] == '-' {
		i++
	}
	switch {
	case i < len(b) && b[i] == '0':
		i++
	case i < len(b) && b[i] >= '1' && b[i] <= '9':
		for i < len(b) && b[i] >= '0' && b[i] <= '9' {
			i++
		}
	default:
		return "", d.syntaxErrorf("invalid number literal")
	}

	if i < len(b) && b[i] == '.' {
		j := i + 1
		if j >= len(b) || b[j] < '0' || b[j] > '9' {
			return "", d.syntaxErrorf("invalid number literal")
		}
		for j < len(b) && b[j] >= '0' && b[j] <= '9' {
			j++
		}
		i = j
	}

	if i < len(b) && (b[i] == 'e' || b[i] == 'E') {
		j := i + 1
		if j < len(b) && (b[j] == '+' || b[j] == '-') {
			j++
		}
		if j >= len(b) || b[j] < '0' || b[j] > '9' {
			return "", d.syntaxErrorf("invalid number literal")
		}
		for j < len(b) && b[j] >= '0' && b[j] <= '9' {
			j++
		}
		i = j
	}

	if i < len(b) && isWordByte(b[i]) {
		return "", d.syntaxErrorf("invalid number literal")
	}

	d.pos = i
	return string(b[start:i]), nil
}

// normalizeNumberLiteralToIntegerDigits renders the JSON number literal lit
// as a base-10 integer string, failing when lit has a non-zero fractional
// part. Protobuf JSON permits E-notation and fractional literals for
// integer fields as long as the represented value is a whole number (e.g.
// "1e2" means 100), so a plain strconv.ParseInt on lit is not enough.
func normalizeNumberLiteralToIntegerDigits(lit string) (string, bool) {
	neg := strings.HasPrefix(lit, "-")
	if neg {
		lit = lit[1:]
	}

	mantissa, expPart, hasExp := cutAny(lit, "eE")
	intPart, fracPart, _ := strings.Cut(mantissa, ".")

	exp := 0
	if hasExp {
		e, err := strconv.Atoi(expPart)
		if err != nil {
			return "", false
		}
		exp = e
	}

	digits := intPart + fracPart
	shift := exp - len(fracPart)
	switch {
	case shift > 0:
		digits += strings.Repeat("0", shift)
	case shift < 0:
		cut := len(digits) + shift
		if cut < 0 {
			return "", false
		}
		for _, c := range digits[cut:] {
			if c != '0' {
				return "", false
			}
		}
		digits = digits[:cut]
	}

	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return "0", true
	}
	if neg {
		return "-" + digits, true
	}
	return digits, true
}

// cutAny is strings.Cut generalized to either of two separator bytes, for
// splitting a number literal's mantissa from an 'e' or 'E' exponent.
func cutAny(s, seps string) (before, after string, found bool) {
	i := strings.IndexAny(s, seps)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+1:], true
}

// scanString reads a JSON string literal starting at the current '"',
// decoding escapes and validating UTF-8 as it goes.
func (d *Decoder) scanString() (string, error) {
	d.pos++ // opening quote, already confirmed present by the caller
	var out []byte
	for {
		if d.pos >= len(d.buf) {
			return "", d.errorAt(pberrs.EndOfInput, "unterminated string literal")
		}
		r, size := utf8.DecodeRune(d.buf[d.pos:])
		switch {
		case r == utf8.RuneError && size <= 1:
			return "", d.errorAt(pberrs.InvalidUTF8, "string contains invalid UTF-8")
		case r == '"':
			d.pos++
			return string(out), nil
		case r == '\\':
			v, err := d.scanEscape()
			if err != nil {
				return "", err
			}
			out = append(out, v...)
		case r < ' ':
			return "", d.syntaxErrorf("invalid control character %q in string", r)
		default:
			out = append(out, d.buf[d.pos:d.pos+size]...)
			d.pos += size
		}
	}
}

// scanEscape decodes one backslash escape sequence at the current position
// (which must be the backslash) and returns its UTF-8 encoding.
func (d *Decoder) scanEscape() ([]byte, error) {
	if d.pos+1 >= len(d.buf) {
		return nil, d.errorAt(pberrs.EndOfInput, "unterminated escape sequence")
	}
	c := d.buf[d.pos+1]
	switch c {
	case '"', '\\', '/':
		d.pos += 2
		return []byte{c}, nil
	case 'b':
		d.pos += 2
		return []byte{'\b'}, nil
	case 'f':
		d.pos += 2
		return []byte{'\f'}, nil
	case 'n':
		d.pos += 2
		return []byte{'\n'}, nil
	case 'r':
		d.pos += 2
		return []byte{'\r'}, nil
	case 't':
		d.pos += 2
		return []byte{'\t'}, nil
	case 'u':
		cp, err := d.scanHex4(d.pos + 2)
		if err != nil {
			return nil, err
		}
		d.pos += 6
		r := rune(cp)
		if utf16.IsSurrogate(r) {
			if d.pos+1 >= len(d.buf) || d.buf[d.pos] != '\\' || d.buf[d.pos+1] != 'u' {
				return nil, d.syntaxErrorf("invalid surrogate pair")
			}
			cp2, err := d.scanHex4(d.pos + 2)
			if err != nil {
				return nil, err
			}
			r2 := utf16.DecodeRune(r, rune(cp2))
			if r2 == unicode.ReplacementChar {
				return nil, d.syntaxErrorf("invalid surrogate pair")
			}
			d.pos += 6
			r = r2
		}
		return []byte(string(r)), nil
	}
	return nil, d.syntaxErrorf("invalid escape code %q", d.buf[d.pos:d.pos+2])
}

// scanHex4 parses the 4 hex digits of a \uXXXX escape starting at at.
func (d *Decoder) scanHex4(at int) (uint64, error) {
	if at+4 > len(d.buf) {
		return 0, d.errorAt(pberrs.EndOfInput, "unterminated \\u escape")
	}
	v, err := strconv.ParseUint(string(d.buf[at:at+4]), 16, 16)
	if err != nil {
		return 0, d.syntaxErrorf("invalid escape code %q", d.buf[at-2:at+4])
	}
	return v, nil
}
