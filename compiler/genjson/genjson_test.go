// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package genjson

import (
	"strings"
	"testing"

	"github.com/hashgraph/pbj-go/compiler/ast"
	"github.com/hashgraph/pbj-go/compiler/lookup"
)

func sampleFile() *ast.File {
	status := &ast.Enum{
		Name:     "Status",
		FullName: "acct.Status",
		Values: []*ast.EnumValue{
			{Name: "UNKNOWN", Number: 0},
			{Name: "ACTIVE", Number: 1},
		},
	}
	address := &ast.Message{
		Name:     "Address",
		FullName: "acct.Address",
		Fields: []*ast.Field{
			{Name: "city", JSONName: "city", Number: 1, Type: ast.TypeString, OneofIndex: -1},
		},
	}
	account := &ast.Message{
		Name:     "Account",
		FullName: "acct.Account",
		Fields: []*ast.Field{
			{Name: "account_id", JSONName: "accountId", Number: 1, Type: ast.TypeString, OneofIndex: -1},
			{Name: "balance", JSONName: "balance", Number: 2, Type: ast.TypeInt64, OneofIndex: -1},
			{Name: "raw", JSONName: "raw", Number: 3, Type: ast.TypeBytes, OneofIndex: -1},
			{Name: "home", JSONName: "home", Number: 4, Type: ast.TypeMessage, TypeName: ".acct.Address", OneofIndex: -1},
			{Name: "status", JSONName: "status", Number: 5, Type: ast.TypeEnum, TypeName: ".acct.Status", OneofIndex: -1},
			{Name: "tags", JSONName: "tags", Number: 6, Type: ast.TypeString, Label: ast.LabelRepeated, OneofIndex: -1},
		},
	}
	return &ast.File{Pkg: "acct", Messages: []*ast.Message{address, account}, Enums: []*ast.Enum{status}}
}

func TestGenerateFileProducesJSONCodecMethods(t *testing.T) {
	f := sampleFile()
	tbl, err := lookup.Build([]*ast.File{f})
	if err != nil {
		t.Fatalf("lookup.Build: %v", err)
	}
	g, err := GenerateFile(f, tbl)
	if err != nil {
		t.Fatalf("GenerateFile: %v", err)
	}
	out, err := g.Content()
	if err != nil {
		t.Fatalf("Content: %v", err)
	}
	src := string(out)

	for _, want := range []string{
		"func (m *acct_Account) MarshalJSON() ([]byte, error) {",
		"func (m *acct_Account) UnmarshalJSON(data []byte) error {",
		`e.WriteName("accountId")`,
		"e.WriteQuotedInt64(int64(",
		`case "accountId":`,
		`case "tags":`,
		"d.OpenArray()",
		"elem.UnmarshalJSON(sub)",
		"d.ReadEnum(func(s string) (int32, bool) { v, ok := acct_Status_value[s]; return v, ok })",
		`"github.com/hashgraph/pbj-go/runtime/pbjson"`,
		`"github.com/hashgraph/pbj-go/runtime/pbval"`,
	} {
		if !strings.Contains(src, want) {
			t.Errorf("generated source missing %q\n---\n%s", want, src)
		}
	}
}

func oneofSampleFile() *ast.File {
	contact := &ast.Message{
		Name:     "Contact",
		FullName: "acct.Contact",
		Oneofs:   []*ast.Oneof{{Name: "method"}},
		Fields: []*ast.Field{
			{Name: "id", JSONName: "id", Number: 1, Type: ast.TypeString, OneofIndex: -1},
			{Name: "email", JSONName: "email", Number: 2, Type: ast.TypeString, OneofIndex: 0},
			{Name: "phone", JSONName: "phone", Number: 3, Type: ast.TypeString, OneofIndex: 0},
		},
	}
	return &ast.File{Pkg: "acct", Messages: []*ast.Message{contact}}
}

func TestOneofFieldsMarshalAndUnmarshalThroughDiscriminator(t *testing.T) {
	f := oneofSampleFile()
	tbl, err := lookup.Build([]*ast.File{f})
	if err != nil {
		t.Fatalf("lookup.Build: %v", err)
	}
	g, err := GenerateFile(f, tbl)
	if err != nil {
		t.Fatalf("GenerateFile: %v", err)
	}
	out, err := g.Content()
	if err != nil {
		t.Fatalf("Content: %v", err)
	}
	src := string(out)

	for _, want := range []string{
		"switch v := m.method.(type) {",
		"case *acct_Contact_Email:",
		"case *acct_Contact_Phone:",
		`case "email":`,
		`case "phone":`,
		"m.method = &acct_Contact_Email{Email: v}",
		"m.method = &acct_Contact_Phone{Phone: v}",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("generated source missing %q\n---\n%s", want, src)
		}
	}
}

func TestFileUsesBytesDetectsNestedBytes(t *testing.T) {
	f := sampleFile()
	if !fileUsesBytes(f) {
		t.Fatalf("expected fileUsesBytes to detect the raw bytes field")
	}
}
