// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pbio

import (
	"bytes"
	"strings"
	"testing"
)

func TestBufferWriteReadRoundTrip(t *testing.T) {
	b := NewBuffer(16)
	if err := b.WriteBytes([]byte("hello")); err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}
	b.Flip()
	if b.Position() != 0 || b.Limit() != 5 {
		t.Fatalf("Flip() gave position=%d limit=%d, want 0, 5", b.Position(), b.Limit())
	}
	got, err := b.ReadBytes(5)
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("ReadBytes() = %q, want %q", got, "hello")
	}
	if b.Remaining() != 0 {
		t.Fatalf("Remaining() = %d, want 0", b.Remaining())
	}
}

func TestBufferReadPastLimitFails(t *testing.T) {
	b := NewBufferView([]byte("ab"))
	if _, err := b.ReadBytes(3); err == nil {
		t.Fatalf("expected EndOfInput error")
	}
}

func TestBufferWritePastCapacityFails(t *testing.T) {
	b := NewBuffer(2)
	if err := b.WriteBytes([]byte("abc")); err == nil {
		t.Fatalf("expected CapacityExceeded error")
	}
}

func TestBufferViewIsReadOnly(t *testing.T) {
	b := NewBufferView([]byte("abc"))
	if err := b.WriteByte('z'); err == nil {
		t.Fatalf("expected write to a view to fail")
	}
}

func TestBufferSetPositionBounds(t *testing.T) {
	b := NewBufferView([]byte("abcd"))
	if err := b.SetPosition(4); err != nil {
		t.Fatalf("SetPosition(limit): %v", err)
	}
	if err := b.SetPosition(5); err == nil {
		t.Fatalf("expected SetPosition past limit to fail")
	}
}

func TestStreamReaderSignalsEndOfInput(t *testing.T) {
	r := NewStreamReader(strings.NewReader("ab"))
	if _, err := r.ReadBytes(2); err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if _, err := r.ReadByte(); err == nil {
		t.Fatalf("expected EndOfInput from exhausted stream")
	}
}

func TestStreamWriterRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewStreamWriter(&buf)
	if err := w.WriteBytes([]byte("xyz")); err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}
	if err := w.Skip(2); err != nil {
		t.Fatalf("Skip: %v", err)
	}
	if buf.String() != "xyz\x00\x00" {
		t.Fatalf("got %q", buf.String())
	}
}
