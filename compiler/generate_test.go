// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compiler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleProto = `
syntax = "proto3";
package acct.v1;

// <<<target_package = "acctv1">>>

message Address {
  string city = 1;
}

message Account {
  string account_id = 1;
  int64 balance = 2;
  Address home = 3;
  Status status = 4;
  repeated string tags = 5;

  enum Status {
    UNKNOWN = 0;
    ACTIVE = 1;
  }
}
`

func TestRunGeneratesModelAndCodecFiles(t *testing.T) {
	protoRoot := t.TempDir()
	destRoot := t.TempDir()

	if err := os.WriteFile(filepath.Join(protoRoot, "account.proto"), []byte(sampleProto), 0o644); err != nil {
		t.Fatalf("writing sample proto: %v", err)
	}

	result, err := Run(protoRoot, destRoot, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.FilesWritten) != 3 {
		t.Fatalf("FilesWritten = %v, want 3 entries", result.FilesWritten)
	}

	var model, binary, jsonCodec string
	for _, path := range result.FilesWritten {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("reading %s: %v", path, err)
		}
		switch {
		case strings.HasSuffix(path, "_binary.pbj.go"):
			binary = string(data)
		case strings.HasSuffix(path, "_json.pbj.go"):
			jsonCodec = string(data)
		case strings.HasSuffix(path, ".pbj.go"):
			model = string(data)
		}
	}

	for _, want := range []string{
		"type Account struct {",
		"func (m *Account) GetHome() *Address {",
		"func (m *Account) GetStatus() Account_Status {",
	} {
		if !strings.Contains(model, want) {
			t.Errorf("model missing %q\n---\n%s", want, model)
		}
	}

	for _, want := range []string{
		"func (m *Account) SizeBinary() int {",
		"func (m *Account) MarshalBinary() ([]byte, error) {",
		"func (m *Account) UnmarshalBinary(b []byte) error {",
	} {
		if !strings.Contains(binary, want) {
			t.Errorf("binary codec missing %q\n---\n%s", want, binary)
		}
	}

	for _, want := range []string{
		"func (m *Account) MarshalJSON() ([]byte, error) {",
		"func (m *Account) UnmarshalJSON(data []byte) error {",
		`case "home":`,
	} {
		if !strings.Contains(jsonCodec, want) {
			t.Errorf("JSON codec missing %q\n---\n%s", want, jsonCodec)
		}
	}
}

func TestRunFailsFastOnReservedRangeViolation(t *testing.T) {
	protoRoot := t.TempDir()
	destRoot := t.TempDir()

	bad := `
syntax = "proto3";
package bad;

message M {
  reserved 1 to 5;
  int32 x = 3;
}
`
	if err := os.WriteFile(filepath.Join(protoRoot, "bad.proto"), []byte(bad), 0o644); err != nil {
		t.Fatalf("writing proto: %v", err)
	}

	if _, err := Run(protoRoot, destRoot, nil); err == nil {
		t.Fatalf("expected a schema violation for a field number in a reserved range")
	}
}

func TestCacheRoundTripsThroughSave(t *testing.T) {
	protoRoot := t.TempDir()
	destRoot := t.TempDir()
	cachePath := filepath.Join(t.TempDir(), "lookup_cache.json")

	if err := os.WriteFile(filepath.Join(protoRoot, "address.proto"), []byte(sampleProto), 0o644); err != nil {
		t.Fatalf("writing proto: %v", err)
	}

	cache, err := LoadCache(cachePath)
	if err != nil {
		t.Fatalf("LoadCache: %v", err)
	}
	if _, err := Run(protoRoot, destRoot, cache); err != nil {
		t.Fatalf("Run: %v", err)
	}

	reloaded, err := LoadCache(cachePath)
	if err != nil {
		t.Fatalf("LoadCache after Save: %v", err)
	}
	found := false
	for _, name := range reloaded.Messages {
		if name == "Account" {
			found = true
		}
	}
	if !found {
		t.Fatalf("reloaded cache missing Account: %+v", reloaded.Messages)
	}
}
