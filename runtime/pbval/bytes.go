// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pbval provides Bytes, an immutable, shareable view over a byte
// region used as the wire-format representation of the proto bytes type and
// as the storage for length-delimited reads.
package pbval

import (
	"encoding/base64"
	"encoding/hex"
	"hash/fnv"
	"unicode/utf8"

	"github.com/hashgraph/pbj-go/internal/pberrs"
)

// Bytes is an immutable, content-comparable view over a byte region. The
// zero value is the empty Bytes. Bytes is backed by a Go string, which is
// itself immutable, so slicing never copies and equality/hash are free
// structural operations — the same trick protoreflect.Value relies on for
// scalar values.
type Bytes struct {
	s string
}

// Empty is the distinguished empty Bytes singleton.
var Empty = Bytes{}

// FromBytes copies b into a new Bytes.
func FromBytes(b []byte) Bytes {
	if len(b) == 0 {
		return Empty
	}
	return Bytes{s: string(b)}
}

// FromString wraps s (which is already immutable) with no copy.
func FromString(s string) Bytes {
	return Bytes{s: s}
}

// Len returns the number of bytes.
func (b Bytes) Len() int { return len(b.s) }

// At returns the byte at offset i. It panics if i is out of range, mirroring
// the out-of-range failure spec.md §4.A requires; generated code is expected
// to bounds-check via Len() first when the index is untrusted.
func (b Bytes) At(i int) byte {
	if i < 0 || i >= len(b.s) {
		panic(pberrs.New(pberrs.MalformedWire, "index %d out of range [0, %d)", i, len(b.s)))
	}
	return b.s[i]
}

// Slice returns the sub-region [start, start+length), sharing storage with
// b. It panics if the range is out of bounds.
func (b Bytes) Slice(start, length int) Bytes {
	if start < 0 || length < 0 || start+length > len(b.s) {
		panic(pberrs.New(pberrs.MalformedWire, "slice [%d:%d] out of range for length %d", start, start+length, len(b.s)))
	}
	return Bytes{s: b.s[start : start+length]}
}

// ToArray always copies the contents into a fresh []byte.
func (b Bytes) ToArray() []byte {
	if len(b.s) == 0 {
		return nil
	}
	out := make([]byte, len(b.s))
	copy(out, b.s)
	return out
}

// AsUTF8 decodes b as strict UTF-8, failing on the first invalid sequence.
func (b Bytes) AsUTF8() (string, error) {
	if !utf8.ValidString(b.s) {
		return "", pberrs.New(pberrs.InvalidUTF8, "bytes value is not valid UTF-8")
	}
	return b.s, nil
}

// Hex renders b as lowercase hexadecimal.
func (b Bytes) Hex() string { return hex.EncodeToString([]byte(b.s)) }

// Base64 renders b as standard (non-URL) Base64, the encoding canonical
// protobuf JSON requires for the bytes type.
func (b Bytes) Base64() string { return base64.StdEncoding.EncodeToString([]byte(b.s)) }

// ParseBase64 decodes a standard Base64 string into Bytes.
func ParseBase64(s string) (Bytes, error) {
	out, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return Empty, pberrs.New(pberrs.InvalidUTF8, "invalid base64: %v", err)
	}
	return FromBytes(out), nil
}

// Concat returns a new Bytes holding the concatenation of b and other,
// copying both into a freshly allocated backing string. When either side is
// empty, the other side is returned unchanged.
func (b Bytes) Concat(other Bytes) Bytes {
	if b.Len() == 0 {
		return other
	}
	if other.Len() == 0 {
		return b
	}
	return Bytes{s: b.s + other.s}
}

// Equal reports whether b and o have identical contents.
func (b Bytes) Equal(o Bytes) bool { return b.s == o.s }

// Hash returns a content-based hash, stable across equal instances.
func (b Bytes) Hash() uint64 {
	h := fnv.New64a()
	h.Write([]byte(b.s))
	return h.Sum64()
}

// String implements fmt.Stringer for debug output; it renders as hex since
// bytes fields are rarely printable text.
func (b Bytes) String() string { return "0x" + b.Hex() }
