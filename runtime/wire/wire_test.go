// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func hexBytes(t *testing.T, s string) []byte {
	t.Helper()
	out, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
	if err != nil {
		t.Fatalf("bad hex literal %q: %v", s, err)
	}
	return out
}

func TestVarintRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 16383, 16384, 1 << 34, ^uint64(0)}
	for _, v := range cases {
		b := AppendVarint(nil, v)
		got, n := ConsumeVarint(b)
		if n != len(b) || got != v {
			t.Errorf("ConsumeVarint(AppendVarint(%d)) = %d, %d, want %d, %d", v, got, n, v, len(b))
		}
	}
}

func TestVarintByteLengthBoundaries(t *testing.T) {
	cases := []struct {
		v    uint64
		want int
	}{
		{0, 1},
		{127, 1},
		{128, 2},
		{1<<14 - 1, 2},
		{1 << 14, 3},
		{^uint64(0), 10},
	}
	for _, c := range cases {
		if got := SizeVarint(c.v); got != c.want {
			t.Errorf("SizeVarint(%d) = %d, want %d", c.v, got, c.want)
		}
		if got := len(AppendVarint(nil, c.v)); got != c.want {
			t.Errorf("len(AppendVarint(%d)) = %d, want %d", c.v, got, c.want)
		}
	}
}

func TestConsumeVarintMalformed(t *testing.T) {
	// Nine continuation bytes, then a 10th byte whose value exceeds 1: invalid.
	b := []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x02}
	if _, n := ConsumeVarint(b); n >= 0 {
		t.Fatalf("expected overflow error for 10th byte high bits set")
	}
}

func TestZigZag64(t *testing.T) {
	cases := []int64{0, -1, 1, -2, 2, 1<<62 - 1, -(1 << 62)}
	for _, v := range cases {
		if got := DecodeZigZag64(EncodeZigZag64(v)); got != v {
			t.Errorf("zigzag round trip for %d: got %d", v, got)
		}
	}
}

func TestZigZag32(t *testing.T) {
	cases := []int32{0, -1, 1, -2, 2, 1<<30 - 1, -(1 << 30)}
	for _, v := range cases {
		if got := DecodeZigZag32(EncodeZigZag32(v)); got != v {
			t.Errorf("zigzag round trip for %d: got %d", v, got)
		}
	}
}

// TestTimestampScenario covers spec.md §8 Scenario 1: a message
// {seconds: int64=1234, nanos: int32=567} encodes to the exact bytes
// 08 D2 09 10 B7 04.
func TestTimestampScenario(t *testing.T) {
	var b []byte
	b = AppendTag(b, 1, VarintType)
	b = AppendVarint(b, 1234)
	b = AppendTag(b, 2, VarintType)
	b = AppendVarint(b, 567)

	want := hexBytes(t, "08 D2 09 10 B7 04")
	if diff := cmp.Diff(want, b); diff != "" {
		t.Fatalf("encoded bytes mismatch (-want +got):\n%s", diff)
	}
	if got := len(b); got != 6 {
		t.Fatalf("size = %d, want 6", got)
	}
}

// TestPackedVsUnpackedScenario covers spec.md §8 Scenario 3.
func TestPackedVsUnpackedScenario(t *testing.T) {
	var packed []byte
	packed = AppendTag(packed, 100, BytesType)
	var content []byte
	for _, v := range []uint64{1, 2, 3} {
		content = AppendVarint(content, v)
	}
	packed = AppendBytes(packed, content)
	wantPacked := hexBytes(t, "A2 06 03 01 02 03")
	if diff := cmp.Diff(wantPacked, packed); diff != "" {
		t.Fatalf("packed bytes mismatch (-want +got):\n%s", diff)
	}

	var unpacked []byte
	for _, v := range []uint64{1, 2, 3} {
		unpacked = AppendTag(unpacked, 100, VarintType)
		unpacked = AppendVarint(unpacked, v)
	}
	wantUnpacked := hexBytes(t, "A0 06 01 A0 06 02 A0 06 03")
	if diff := cmp.Diff(wantUnpacked, unpacked); diff != "" {
		t.Fatalf("unpacked bytes mismatch (-want +got):\n%s", diff)
	}

	// Both forms decode to the same values: a decoder that dispatches by
	// field number first and inspects the wire type (spec.md §9 design
	// note) must accept both.
	var gotPacked, gotUnpacked []int32
	b := packed
	num, typ, n := ConsumeTag(b)
	if num != 100 || typ != BytesType {
		t.Fatalf("packed tag mismatch")
	}
	b = b[n:]
	payload, n := ConsumeBytes(b)
	if n < 0 {
		t.Fatalf("ConsumeBytes failed")
	}
	for len(payload) > 0 {
		v, n := ConsumeVarint(payload)
		if n < 0 {
			t.Fatalf("ConsumeVarint failed in packed payload")
		}
		gotPacked = append(gotPacked, int32(v))
		payload = payload[n:]
	}

	b = unpacked
	for len(b) > 0 {
		num, typ, n := ConsumeTag(b)
		if num != 100 || typ != VarintType {
			t.Fatalf("unpacked tag mismatch")
		}
		b = b[n:]
		v, n := ConsumeVarint(b)
		if n < 0 {
			t.Fatalf("ConsumeVarint failed")
		}
		gotUnpacked = append(gotUnpacked, int32(v))
		b = b[n:]
	}

	if len(gotPacked) != 3 || len(gotUnpacked) != 3 {
		t.Fatalf("got %v, %v, want 3 elements each", gotPacked, gotUnpacked)
	}
	for i := range gotPacked {
		if gotPacked[i] != gotUnpacked[i] {
			t.Fatalf("packed[%d]=%d != unpacked[%d]=%d", i, gotPacked[i], i, gotUnpacked[i])
		}
	}
}

func TestConsumeFieldValueSkipsUnknown(t *testing.T) {
	var b []byte
	b = AppendTag(b, 999, BytesType)
	b = AppendBytes(b, []byte("ignored payload"))
	num, typ, n := ConsumeTag(b)
	if num != 999 {
		t.Fatalf("field number = %d, want 999", num)
	}
	skipped := ConsumeFieldValue(num, typ, b[n:])
	if skipped < 0 {
		t.Fatalf("ConsumeFieldValue failed")
	}
	if n+skipped != len(b) {
		t.Fatalf("did not skip the whole unknown field: consumed %d of %d", n+skipped, len(b))
	}
}

