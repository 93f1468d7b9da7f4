// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wire implements the low-level protobuf wire format: tags,
// varints, zig-zag encoding, fixed-width integers, and length-delimited
// values. See spec.md §4.C.
//
// The Append/Consume functions operate directly on []byte, the way
// generated encode/decode loops want them: size-then-write (append into a
// pre-sized buffer with no patching) and decode-in-a-single-forward-pass
// (consume returns the number of bytes read, or a negative error code the
// caller turns into a *pberrs.Error via ParseError).
package wire

import (
	"encoding/binary"
	"math"
	"math/bits"

	"github.com/hashgraph/pbj-go/internal/pberrs"
)

// Number is a protobuf field number.
type Number int32

// MinValidNumber and MaxValidNumber bound the field numbers protoc accepts;
// 19000-19999 is the reserved range for implementation use.
const (
	MinValidNumber       Number = 1
	MaxValidNumber       Number = 1<<29 - 1
	FirstReservedNumber  Number = 19000
	LastReservedNumber   Number = 19999
)

// IsReserved reports whether n falls in the implementation-reserved range.
func (n Number) IsReserved() bool {
	return n >= FirstReservedNumber && n <= LastReservedNumber
}

// IsValid reports whether n is usable as a wire field number.
func (n Number) IsValid() bool {
	return n >= MinValidNumber && n <= MaxValidNumber && !n.IsReserved()
}

// Type is one of the four wire types protobuf 3 uses. Groups (3, 4) are not
// supported, per spec.md §4.C.
type Type int8

const (
	VarintType Type = 0
	Fixed64Type Type = 1
	BytesType   Type = 2
	Fixed32Type Type = 5
)

// Negative return values from Consume* functions are error codes; they are
// turned into *pberrs.Error by ParseError. The encoding mirrors the
// reference Go protobuf implementation's protowire package.
const (
	errCodeTruncated = -1 - iota
	errCodeFieldNumber
	errCodeOverflow
	errCodeReserved
	errCodeEndGroup
)

// ParseError converts a negative n returned by a Consume function into a
// *pberrs.Error.
func ParseError(n int) error {
	if n >= 0 {
		panic("wire: ParseError called with non-negative code")
	}
	switch n {
	case errCodeTruncated:
		return pberrs.New(pberrs.MalformedWire, "truncated input")
	case errCodeFieldNumber:
		return pberrs.New(pberrs.MalformedWire, "invalid field number")
	case errCodeOverflow:
		return pberrs.New(pberrs.MalformedWire, "variable length integer overflow")
	case errCodeReserved:
		return pberrs.New(pberrs.MalformedWire, "cannot parse reserved wire type")
	default:
		return pberrs.New(pberrs.MalformedWire, "invalid wire encoding")
	}
}

// EncodeTag combines a field number and wire type into a tag.
func EncodeTag(num Number, typ Type) uint64 {
	return uint64(num)<<3 | uint64(typ&7)
}

// DecodeTag splits a tag into its field number and wire type. It returns
// (0, 0) if the tag is out of range.
func DecodeTag(tag uint64) (Number, Type) {
	num := tag >> 3
	if num == 0 || num > uint64(MaxValidNumber) {
		return 0, 0
	}
	return Number(num), Type(tag & 7)
}

// --- Size ---

// SizeTag returns the number of bytes required to encode a tag for the
// given field number (the wire type occupies no additional bytes since it
// is packed into the tag's low 3 bits).
func SizeTag(num Number) int { return SizeVarint(EncodeTag(num, 0)) }

// SizeVarint returns the number of bytes the base-128 varint encoding of v
// occupies.
func SizeVarint(v uint64) int {
	// Each byte carries 7 bits of payload; bits.Len64(0) is 0 and still
	// needs 1 byte, hence the max-with-1.
	return max(1, (bits.Len64(v)+6)/7)
}

// SizeFixed32 is always 4.
func SizeFixed32() int { return 4 }

// SizeFixed64 is always 8.
func SizeFixed64() int { return 8 }

// SizeBytes returns the size of a length-delimited field with payload of n
// bytes: the varint length prefix plus the payload itself.
func SizeBytes(n int) int { return SizeVarint(uint64(n)) + n }

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// --- Zig-zag ---

// EncodeZigZag32 maps a signed 32-bit integer to an unsigned one so that
// small absolute values produce small varints.
func EncodeZigZag32(v int32) uint32 { return uint32(v<<1) ^ uint32(v>>31) }

// DecodeZigZag32 is the inverse of EncodeZigZag32.
func DecodeZigZag32(v uint32) int32 { return int32(v>>1) ^ -int32(v&1) }

// EncodeZigZag64 maps a signed 64-bit integer to an unsigned one.
func EncodeZigZag64(v int64) uint64 { return uint64(v<<1) ^ uint64(v>>63) }

// DecodeZigZag64 is the inverse of EncodeZigZag64.
func DecodeZigZag64(v uint64) int64 { return int64(v>>1) ^ -int64(v&1) }

// --- Append (encode) ---

// AppendTag appends the tag for (num, typ) to b.
func AppendTag(b []byte, num Number, typ Type) []byte {
	return AppendVarint(b, EncodeTag(num, typ))
}

// AppendVarint appends the base-128 varint encoding of v to b.
func AppendVarint(b []byte, v uint64) []byte {
	switch {
	case v < 1<<7:
		return append(b, byte(v))
	case v < 1<<14:
		return append(b, byte(v|0x80), byte(v>>7))
	}
	// General case, 3-10 bytes.
	for v >= 0x80 {
		b = append(b, byte(v)|0x80)
		v >>= 7
	}
	return append(b, byte(v))
}

// AppendFixed32 appends v as little-endian 4 bytes.
func AppendFixed32(b []byte, v uint32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return append(b, buf[:]...)
}

// AppendFixed64 appends v as little-endian 8 bytes.
func AppendFixed64(b []byte, v uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return append(b, buf[:]...)
}

// AppendBytes appends a varint length prefix followed by v.
func AppendBytes(b []byte, v []byte) []byte {
	b = AppendVarint(b, uint64(len(v)))
	return append(b, v...)
}

// AppendFloat32/64 append the IEEE 754 bit pattern as a fixed-width field.
func AppendFloat32(b []byte, v float32) []byte {
	return AppendFixed32(b, math.Float32bits(v))
}
func AppendFloat64(b []byte, v float64) []byte {
	return AppendFixed64(b, math.Float64bits(v))
}

// --- Consume (decode) ---

// ConsumeTag parses a tag at the start of b, returning the field number,
// wire type and the number of bytes consumed. n is negative on error.
func ConsumeTag(b []byte) (Number, Type, int) {
	v, n := ConsumeVarint(b)
	if n < 0 {
		return 0, 0, n
	}
	num, typ := DecodeTag(v)
	if num == 0 {
		return 0, 0, errCodeFieldNumber
	}
	return num, typ, n
}

// ConsumeVarint parses a base-128 varint at the start of b. It fails with
// errCodeOverflow after more than 10 continuation bytes, or if the high
// bits of the 10th byte exceed 1, per spec.md §4.C.
func ConsumeVarint(b []byte) (v uint64, n int) {
	var y uint64
	if len(b) <= 0 {
		return 0, errCodeTruncated
	}
	v = uint64(b[0])
	if v < 0x80 {
		return v, 1
	}
	v -= 0x80

	if len(b) <= 1 {
		return 0, errCodeTruncated
	}
	y = uint64(b[1])
	v += y << 7
	if y < 0x80 {
		return v, 2
	}
	v -= 0x80 << 7

	if len(b) <= 2 {
		return 0, errCodeTruncated
	}
	y = uint64(b[2])
	v += y << 14
	if y < 0x80 {
		return v, 3
	}
	v -= 0x80 << 14

	if len(b) <= 3 {
		return 0, errCodeTruncated
	}
	y = uint64(b[3])
	v += y << 21
	if y < 0x80 {
		return v, 4
	}
	v -= 0x80 << 21

	if len(b) <= 4 {
		return 0, errCodeTruncated
	}
	y = uint64(b[4])
	v += y << 28
	if y < 0x80 {
		return v, 5
	}
	v -= 0x80 << 28

	if len(b) <= 5 {
		return 0, errCodeTruncated
	}
	y = uint64(b[5])
	v += y << 35
	if y < 0x80 {
		return v, 6
	}
	v -= 0x80 << 35

	if len(b) <= 6 {
		return 0, errCodeTruncated
	}
	y = uint64(b[6])
	v += y << 42
	if y < 0x80 {
		return v, 7
	}
	v -= 0x80 << 42

	if len(b) <= 7 {
		return 0, errCodeTruncated
	}
	y = uint64(b[7])
	v += y << 49
	if y < 0x80 {
		return v, 8
	}
	v -= 0x80 << 49

	if len(b) <= 8 {
		return 0, errCodeTruncated
	}
	y = uint64(b[8])
	v += y << 56
	if y < 0x80 {
		return v, 9
	}
	v -= 0x80 << 56

	if len(b) <= 9 {
		return 0, errCodeTruncated
	}
	y = uint64(b[9])
	v += y << 63
	if y < 2 {
		return v, 10
	}
	return 0, errCodeOverflow
}

// ConsumeFixed32 parses a little-endian 4-byte field.
func ConsumeFixed32(b []byte) (v uint32, n int) {
	if len(b) < 4 {
		return 0, errCodeTruncated
	}
	return binary.LittleEndian.Uint32(b), 4
}

// ConsumeFixed64 parses a little-endian 8-byte field.
func ConsumeFixed64(b []byte) (v uint64, n int) {
	if len(b) < 8 {
		return 0, errCodeTruncated
	}
	return binary.LittleEndian.Uint64(b), 8
}

// ConsumeBytes parses a varint length prefix followed by that many bytes.
// The returned slice shares storage with b.
func ConsumeBytes(b []byte) (v []byte, n int) {
	m, n := ConsumeVarint(b)
	if n < 0 {
		return nil, n
	}
	if m > uint64(len(b)-n) {
		return nil, errCodeTruncated
	}
	if int64(m) < 0 {
		return nil, errCodeOverflow
	}
	v = b[n : n+int(m) : n+int(m)]
	return v, n + int(m)
}

// ConsumeFieldValue parses and discards the value of a field with the given
// number and wire type, without regard for its wire-format validity beyond
// being well-formed enough to skip. It's used to skip unknown fields.
func ConsumeFieldValue(num Number, typ Type, b []byte) (n int) {
	switch typ {
	case VarintType:
		_, n = ConsumeVarint(b)
		return n
	case Fixed32Type:
		_, n = ConsumeFixed32(b)
		return n
	case Fixed64Type:
		_, n = ConsumeFixed64(b)
		return n
	case BytesType:
		_, n = ConsumeBytes(b)
		return n
	default:
		return errCodeReserved
	}
}
