// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pbval

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBytesBasics(t *testing.T) {
	b := FromBytes([]byte("hello"))
	if b.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", b.Len())
	}
	if b.At(0) != 'h' {
		t.Fatalf("At(0) = %q, want 'h'", b.At(0))
	}
	if diff := cmp.Diff([]byte("hello"), b.ToArray()); diff != "" {
		t.Fatalf("ToArray() mismatch (-want +got):\n%s", diff)
	}
}

func TestBytesSliceSharesStorage(t *testing.T) {
	b := FromBytes([]byte("hello world"))
	sub := b.Slice(6, 5)
	if got, err := sub.AsUTF8(); err != nil || got != "world" {
		t.Fatalf("AsUTF8() = %q, %v, want %q, nil", got, err, "world")
	}
}

func TestBytesSliceOutOfRangePanics(t *testing.T) {
	b := FromBytes([]byte("hi"))
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on out-of-range slice")
		}
	}()
	b.Slice(1, 5)
}

func TestBytesEqualAndHash(t *testing.T) {
	a := FromBytes([]byte("same"))
	b := FromBytes([]byte("same"))
	if !a.Equal(b) {
		t.Fatalf("Equal() = false, want true")
	}
	if a.Hash() != b.Hash() {
		t.Fatalf("Hash() differs for equal Bytes")
	}
}

func TestBytesConcat(t *testing.T) {
	a := FromBytes([]byte("foo"))
	b := FromBytes([]byte("bar"))
	got := a.Concat(b)
	if got.s != "foobar" {
		t.Fatalf("Concat() = %q, want %q", got.s, "foobar")
	}
	// The inputs must be untouched: Concat never mutates.
	if a.s != "foo" || b.s != "bar" {
		t.Fatalf("Concat mutated an input")
	}
}

func TestBytesBase64RoundTrip(t *testing.T) {
	b := FromBytes([]byte{0x00, 0x01, 0xFF, 0x7F})
	s := b.Base64()
	got, err := ParseBase64(s)
	if err != nil {
		t.Fatalf("ParseBase64: %v", err)
	}
	if !got.Equal(b) {
		t.Fatalf("round trip mismatch: got %v, want %v", got, b)
	}
}

func TestBytesInvalidUTF8(t *testing.T) {
	b := FromBytes([]byte{0xff, 0xfe})
	if _, err := b.AsUTF8(); err == nil {
		t.Fatalf("expected InvalidUTF8 error")
	}
}

func TestEmptyIsDistinguishedSingleton(t *testing.T) {
	if FromBytes(nil) != Empty {
		t.Fatalf("FromBytes(nil) != Empty")
	}
	if FromBytes([]byte{}) != Empty {
		t.Fatalf("FromBytes([]byte{}) != Empty")
	}
}
