// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wire

import (
	"testing"

	"github.com/hashgraph/pbj-go/runtime/pbio"
)

func TestCursorVarintRoundTrip(t *testing.T) {
	buf := pbio.NewBuffer(16)
	if err := WriteVarint(buf, 300); err != nil {
		t.Fatalf("WriteVarint: %v", err)
	}
	buf.Flip()
	got, err := ReadVarint(buf)
	if err != nil {
		t.Fatalf("ReadVarint: %v", err)
	}
	if got != 300 {
		t.Fatalf("got %d, want 300", got)
	}
}

func TestCursorTagAndBytesRoundTrip(t *testing.T) {
	buf := pbio.NewBuffer(32)
	if err := WriteTag(buf, 5, BytesType); err != nil {
		t.Fatalf("WriteTag: %v", err)
	}
	if err := WriteBytes(buf, []byte("payload")); err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}
	buf.Flip()

	num, typ, err := ReadTag(buf)
	if err != nil || num != 5 || typ != BytesType {
		t.Fatalf("ReadTag() = %d, %d, %v", num, typ, err)
	}
	got, err := ReadBytes(buf)
	if err != nil || string(got) != "payload" {
		t.Fatalf("ReadBytes() = %q, %v", got, err)
	}
}

func TestCursorSkipValue(t *testing.T) {
	buf := pbio.NewBuffer(32)
	if err := WriteVarint(buf, 42); err != nil {
		t.Fatalf("WriteVarint: %v", err)
	}
	if err := WriteTag(buf, 2, VarintType); err != nil {
		t.Fatalf("WriteTag: %v", err)
	}
	if err := WriteVarint(buf, 7); err != nil {
		t.Fatalf("WriteVarint: %v", err)
	}
	buf.Flip()

	if err := SkipValue(buf, VarintType); err != nil {
		t.Fatalf("SkipValue: %v", err)
	}
	num, typ, err := ReadTag(buf)
	if err != nil || num != 2 || typ != VarintType {
		t.Fatalf("ReadTag after skip = %d, %d, %v", num, typ, err)
	}
}
