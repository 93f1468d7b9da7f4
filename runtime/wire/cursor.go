// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wire

import (
	"github.com/hashgraph/pbj-go/internal/pberrs"
	"github.com/hashgraph/pbj-go/runtime/pbio"
)

// This file layers the wire-format primitives on top of the pbio cursor
// abstraction, for generated code that streams rather than buffers a whole
// message at once. The byte-slice Append/Consume functions in wire.go
// remain the fast path for the common size-then-write-into-one-buffer case
// (spec.md §4.G's "size-then-write" design note); these cursor-based
// variants exist for stream-backed cursors, which have no contiguous []byte
// to slice.

// ReadTag reads a tag from r.
func ReadTag(r pbio.Reader) (Number, Type, error) {
	v, err := ReadVarint(r)
	if err != nil {
		return 0, 0, err
	}
	num, typ := DecodeTag(v)
	if num == 0 {
		return 0, 0, pberrs.New(pberrs.MalformedWire, "invalid field number in tag")
	}
	return num, typ, nil
}

// ReadVarint reads a base-128 varint one byte at a time from r.
func ReadVarint(r pbio.Reader) (uint64, error) {
	var v uint64
	for shift := uint(0); shift < 64; shift += 7 {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		if shift == 63 && b > 1 {
			return 0, pberrs.New(pberrs.MalformedWire, "variable length integer overflow")
		}
		v |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, pberrs.New(pberrs.MalformedWire, "variable length integer overflow")
}

// ReadFixed32 reads a little-endian 32-bit value from r.
func ReadFixed32(r pbio.Reader) (uint32, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	v, _ := ConsumeFixed32(b)
	return v, nil
}

// ReadFixed64 reads a little-endian 64-bit value from r.
func ReadFixed64(r pbio.Reader) (uint64, error) {
	b, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	v, _ := ConsumeFixed64(b)
	return v, nil
}

// ReadBytes reads a varint length prefix followed by that many bytes.
func ReadBytes(r pbio.Reader) ([]byte, error) {
	n, err := ReadVarint(r)
	if err != nil {
		return nil, err
	}
	if int64(n) < 0 || (r.Remaining() >= 0 && int64(n) > r.Remaining()) {
		return nil, pberrs.New(pberrs.MalformedWire, "length-delimited field length %d exceeds remaining input", n)
	}
	return r.ReadBytes(int(n))
}

// SkipValue skips the value of a field with the given wire type, for
// unknown-field handling.
func SkipValue(r pbio.Reader, typ Type) error {
	switch typ {
	case VarintType:
		_, err := ReadVarint(r)
		return err
	case Fixed32Type:
		_, err := ReadFixed32(r)
		return err
	case Fixed64Type:
		_, err := ReadFixed64(r)
		return err
	case BytesType:
		_, err := ReadBytes(r)
		return err
	default:
		return pberrs.New(pberrs.MalformedWire, "unsupported wire type %d", typ)
	}
}

// WriteTag writes the tag for (num, typ) to w.
func WriteTag(w pbio.Writer, num Number, typ Type) error {
	return WriteVarint(w, EncodeTag(num, typ))
}

// WriteVarint writes v to w as a base-128 varint.
func WriteVarint(w pbio.Writer, v uint64) error {
	for v >= 0x80 {
		if err := w.WriteByte(byte(v) | 0x80); err != nil {
			return err
		}
		v >>= 7
	}
	return w.WriteByte(byte(v))
}

// WriteFixed32 writes v to w as little-endian.
func WriteFixed32(w pbio.Writer, v uint32) error {
	return w.WriteBytes(AppendFixed32(nil, v))
}

// WriteFixed64 writes v to w as little-endian.
func WriteFixed64(w pbio.Writer, v uint64) error {
	return w.WriteBytes(AppendFixed64(nil, v))
}

// WriteBytes writes a varint length prefix followed by v.
func WriteBytes(w pbio.Writer, v []byte) error {
	if err := WriteVarint(w, uint64(len(v))); err != nil {
		return err
	}
	return w.WriteBytes(v)
}
