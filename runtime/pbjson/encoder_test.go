// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pbjson

import "testing"

func TestEncoderObjectAndArray(t *testing.T) {
	e, err := NewEncoder("")
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	e.StartObject()
	e.WriteName("name")
	e.WriteString("alice")
	e.WriteName("tags")
	e.StartArray()
	e.WriteString("a")
	e.WriteString("b")
	e.EndArray()
	e.EndObject()

	want := `{"name":"alice","tags":["a","b"]}`
	if got := string(e.Bytes()); got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestEncoderQuotedInt64(t *testing.T) {
	e, _ := NewEncoder("")
	e.StartObject()
	e.WriteName("id")
	e.WriteQuotedInt64(9007199254740993)
	e.EndObject()

	want := `{"id":"9007199254740993"}`
	if got := string(e.Bytes()); got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestEncoderFloatSpecials(t *testing.T) {
	e, _ := NewEncoder("")
	e.StartArray()
	e.WriteFloat(nan(), 64)
	e.WriteFloat(inf(1), 64)
	e.WriteFloat(inf(-1), 64)
	e.EndArray()

	want := `["NaN","Infinity","-Infinity"]`
	if got := string(e.Bytes()); got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestEncoderIndent(t *testing.T) {
	e, err := NewEncoder("  ")
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	e.StartObject()
	e.WriteName("a")
	e.WriteInt(1)
	e.EndObject()

	want := "{\n  \"a\": 1\n}"
	if got := string(e.Bytes()); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
