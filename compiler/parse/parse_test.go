// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parse

import (
	"testing"

	"github.com/hashgraph/pbj-go/compiler/ast"
)

const sample = `
syntax = "proto3";
package example.v1;

// <<<target_package = "examplev1">>>

// Account is a holder of balances.
message Account {
  string id = 1;
  int64 balance = 2;
  repeated string tags = 3;
  reserved 4, 5 to 7;
  reserved "legacy_name";

  message Nested {
    bool flag = 1;
  }

  enum Status {
    UNKNOWN = 0;
    ACTIVE = 1;
  }

  oneof contact {
    string email = 10;
    string phone = 11;
  }
}
`

func TestParseFileBasics(t *testing.T) {
	f, err := File("example.proto", []byte(sample))
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if f.Pkg != "example.v1" {
		t.Fatalf("Pkg = %q", f.Pkg)
	}
	if f.TargetPackage != "examplev1" {
		t.Fatalf("TargetPackage = %q", f.TargetPackage)
	}
	if len(f.Messages) != 1 {
		t.Fatalf("Messages = %d, want 1", len(f.Messages))
	}
	m := f.Messages[0]
	if m.Name != "Account" || m.FullName != "Account" {
		t.Fatalf("m = %+v", m)
	}
	if len(m.Fields) != 5 {
		t.Fatalf("Fields = %d, want 5 (id, balance, tags, email, phone)", len(m.Fields))
	}
	if len(m.Reserved) != 3 {
		t.Fatalf("Reserved = %d, want 3", len(m.Reserved))
	}
	if len(m.Nested) != 1 || m.Nested[0].FullName != "Account.Nested" {
		t.Fatalf("Nested = %+v", m.Nested)
	}
	if len(m.Enums) != 1 || m.Enums[0].FullName != "Account.Status" {
		t.Fatalf("Enums = %+v", m.Enums)
	}
	if len(m.Oneofs) != 1 || m.Oneofs[0].Name != "contact" {
		t.Fatalf("Oneofs = %+v", m.Oneofs)
	}

	var emailField *ast.Field
	for _, f := range m.Fields {
		if f.Name == "email" {
			emailField = f
		}
	}
	if emailField == nil || emailField.OneofIndex != 0 {
		t.Fatalf("email field = %+v", emailField)
	}

	tagsField := m.Fields[2]
	if tagsField.Name != "tags" || tagsField.Label != ast.LabelRepeated || tagsField.JSONName != "tags" {
		t.Fatalf("tags field = %+v", tagsField)
	}
}

func TestParseRejectsMalformedInput(t *testing.T) {
	if _, err := File("bad.proto", []byte(`message {}`)); err == nil {
		t.Fatalf("expected parse error for missing message name")
	}
}
