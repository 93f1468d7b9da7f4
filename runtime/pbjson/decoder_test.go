// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pbjson

import "testing"

func TestDecoderObjectWalk(t *testing.T) {
	d := NewDecoder([]byte(`{"name": "alice", "age": 30, "tags": ["a", "b"]}`))
	if err := d.OpenObject(); err != nil {
		t.Fatalf("OpenObject: %v", err)
	}

	got := map[string]interface{}{}
	for {
		name, ok, err := d.NextFieldOrClose()
		if err != nil {
			t.Fatalf("NextFieldOrClose: %v", err)
		}
		if !ok {
			break
		}
		switch name {
		case "name":
			s, err := d.ReadString()
			if err != nil {
				t.Fatalf("ReadString: %v", err)
			}
			got["name"] = s
		case "age":
			n, err := d.ReadSignedInteger(32)
			if err != nil {
				t.Fatalf("ReadSignedInteger: %v", err)
			}
			got["age"] = n
		case "tags":
			if err := d.OpenArray(); err != nil {
				t.Fatalf("OpenArray: %v", err)
			}
			var tags []string
			for {
				done, err := d.PeekEndArray()
				if err != nil {
					t.Fatalf("PeekEndArray: %v", err)
				}
				if done {
					break
				}
				s, err := d.ReadString()
				if err != nil {
					t.Fatalf("ReadString in array: %v", err)
				}
				tags = append(tags, s)
			}
			got["tags"] = tags
		}
	}

	if got["name"] != "alice" || got["age"] != int64(30) {
		t.Fatalf("got %v", got)
	}
	tags := got["tags"].([]string)
	if len(tags) != 2 || tags[0] != "a" || tags[1] != "b" {
		t.Fatalf("tags = %v", tags)
	}
}

func TestDecoderQuotedInt64(t *testing.T) {
	d := NewDecoder([]byte(`"123456789012345"`))
	n, err := d.ReadSignedInteger(64)
	if err != nil {
		t.Fatalf("ReadSignedInteger: %v", err)
	}
	if n != 123456789012345 {
		t.Fatalf("got %d", n)
	}
}

func TestDecoderBytesBase64(t *testing.T) {
	d := NewDecoder([]byte(`"aGVsbG8="`))
	b, err := d.ReadBytes()
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if string(b) != "hello" {
		t.Fatalf("got %q", b)
	}
}

func TestDecoderEnumByName(t *testing.T) {
	d := NewDecoder([]byte(`"ACTIVE"`))
	n, err := d.ReadEnum(func(name string) (int32, bool) {
		if name == "ACTIVE" {
			return 1, true
		}
		return 0, false
	})
	if err != nil || n != 1 {
		t.Fatalf("got %d, %v", n, err)
	}
}

func TestDecoderSkipUnknownField(t *testing.T) {
	d := NewDecoder([]byte(`{"known": 1, "unknown": {"nested": [1, 2, {"x": true}]}, "after": 2}`))
	if err := d.OpenObject(); err != nil {
		t.Fatalf("OpenObject: %v", err)
	}
	var seen []string
	for {
		name, ok, err := d.NextFieldOrClose()
		if err != nil {
			t.Fatalf("NextFieldOrClose: %v", err)
		}
		if !ok {
			break
		}
		if name == "unknown" {
			if err := d.SkipValue(); err != nil {
				t.Fatalf("SkipValue: %v", err)
			}
			continue
		}
		seen = append(seen, name)
		if _, err := d.ReadSignedInteger(32); err != nil {
			t.Fatalf("ReadSignedInteger: %v", err)
		}
	}
	if len(seen) != 2 || seen[0] != "known" || seen[1] != "after" {
		t.Fatalf("seen = %v", seen)
	}
}

func TestDecoderRejectsInvalidEscape(t *testing.T) {
	d := NewDecoder([]byte(`"\q"`))
	if _, err := d.ReadString(); err == nil {
		t.Fatalf("expected error for invalid escape")
	}
}

func TestDecoderIntegerFromExponentLiteral(t *testing.T) {
	d := NewDecoder([]byte(`1.5e2`))
	n, err := d.ReadSignedInteger(32)
	if err != nil {
		t.Fatalf("ReadSignedInteger: %v", err)
	}
	if n != 150 {
		t.Fatalf("got %d, want 150", n)
	}
}

func TestDecoderRejectsNonIntegerExponentLiteral(t *testing.T) {
	d := NewDecoder([]byte(`1.25e1`))
	if _, err := d.ReadSignedInteger(32); err == nil {
		t.Fatalf("expected error for non-integral value")
	}
}

func TestDecoderRejectsTrailingGarbageAfterLiteral(t *testing.T) {
	d := NewDecoder([]byte(`nullable`))
	if err := d.ReadNull(); err == nil {
		t.Fatalf("expected error, \"nullable\" is not the null literal")
	}
}
