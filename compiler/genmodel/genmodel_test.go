// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package genmodel

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
	account := &ast.Message{
		Name:     "Account",
		FullName: "acct.Account",
		Fields: []*ast.Field{
			{Name: "id", JSONName: "id", Number: 1, Type: ast.TypeString, OneofIndex: -1},
			{Name: "balance", JSONName: "balance", Number: 2, Type: ast.TypeInt64, OneofIndex: -1},
			{Name: "tags", JSONName: "tags", Number: 3, Type: ast.TypeString, Label: ast.LabelRepeated, OneofIndex: -1},
			{Name: "raw", JSONName: "raw", Number: 4, Type: ast.TypeBytes, OneofIndex: -1},
			{Name: "status", JSONName: "status", Number: 5, Type: ast.TypeEnum, TypeName: ".acct.Status", OneofIndex: -1},
		},
	}
	return &ast.File{Pkg: "acct", Messages: []*ast.Message{account}, Enums: []*ast.Enum{status}}
}

func TestGenerateFileProducesAccessorsAndBuilder(t *testing.T) {
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
		"type acct_Account struct {",
		"func (m *acct_Account) GetId() string {",
		"func (m *acct_Account) GetBalance() int64 {",
		"func (m *acct_Account) GetTags() []string {",
		"func (m *acct_Account) GetRaw() pbval.Bytes {",
		"func (m *acct_Account) GetStatus() acct_Status {",
		"type acct_AccountBuilder struct",
		"func (b *acct_AccountBuilder) SetId(v string) *acct_AccountBuilder {",
		"func (b *acct_AccountBuilder) Build() *acct_Account {",
		"type acct_Status int32",
		"acct_Status_UNKNOWN acct_Status = 0",
		"func (x acct_Status) String() string {",
		`"github.com/hashgraph/pbj-go/runtime/pbval"`,
		"var acct_Account_DEFAULT = &acct_Account{}",
		"func (m *acct_Account) CopyBuilder() *acct_AccountBuilder { return &acct_AccountBuilder{v: *m} }",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("generated source missing %q\n---\n%s", want, src)
		}
	}
}

func TestGenerateFileProducesOneofWrapperAndBuilderSetters(t *testing.T) {
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
	f := &ast.File{Pkg: "acct", Messages: []*ast.Message{contact}}
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
		"isacct_Contact_Method",
		"acct_Contact_Email",
		"acct_Contact_Phone",
		"Email string",
		"Phone string",
		"func (m *acct_Contact) GetMethod() isacct_Contact_Method",
		"func (b *acct_ContactBuilder) SetEmail(v string) *acct_ContactBuilder {",
		"b.v.method = &acct_Contact_Email{Email: v}",
		"func (b *acct_ContactBuilder) SetPhone(v string) *acct_ContactBuilder {",
		"type acct_Contact_MethodKind int32",
		"acct_Contact_MethodKind_UNSET acct_Contact_MethodKind = 0",
		"acct_Contact_MethodKind_Email acct_Contact_MethodKind = 2",
		"acct_Contact_MethodKind_Phone acct_Contact_MethodKind = 3",
		"func (m *acct_Contact) MethodKind() acct_Contact_MethodKind {",
		"func (m *acct_Contact) GetEmail() (string, bool) {",
		"func (m *acct_Contact) GetPhone() (string, bool) {",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("generated source missing %q\n---\n%s", want, src)
		}
	}
}

func TestOneofBuildPanicsOnNilMessagePayload(t *testing.T) {
	inner := &ast.Message{Name: "Inner", FullName: "acct.Inner"}
	wrapper := &ast.Message{
		Name:     "Wrapper",
		FullName: "acct.Wrapper",
		Oneofs:   []*ast.Oneof{{Name: "which"}},
		Fields: []*ast.Field{
			{Name: "inner", JSONName: "inner", Number: 1, Type: ast.TypeMessage, TypeName: ".acct.Inner", OneofIndex: 0},
		},
	}
	f := &ast.File{Pkg: "acct", Messages: []*ast.Message{inner, wrapper}}
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
	if !strings.Contains(src, `panic("acct_Wrapper.which: Inner variant set with a nil payload")`) {
		t.Errorf("Build() should guard against a nil payload under a set oneof variant:\n%s", src)
	}
}

func TestGoNameFlattensNestedNames(t *testing.T) {
	if got := GoName("Outer.Inner"); got != "Outer_Inner" {
		t.Fatalf("GoName = %q, want Outer_Inner", got)
	}
}

func TestGenerateFileSkipsPbvalImportWithoutBytes(t *testing.T) {
	m := &ast.Message{
		Name:     "Plain",
		FullName: "p.Plain",
		Fields:   []*ast.Field{{Name: "n", Number: 1, Type: ast.TypeInt32, OneofIndex: -1}},
	}
	f := &ast.File{Pkg: "p", Messages: []*ast.Message{m}}
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
	if strings.Contains(string(out), "pbval") {
		t.Fatalf("unexpected pbval import for message with no bytes fields:\n%s", out)
	}
}
