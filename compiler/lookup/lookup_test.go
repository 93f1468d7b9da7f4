// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lookup

import (
	"testing"

	"github.com/hashgraph/pbj-go/compiler/ast"
)

func TestBuildAndResolve(t *testing.T) {
	outer := &ast.Message{Name: "Outer", FullName: "pkg.Outer"}
	inner := &ast.Message{Name: "Inner", FullName: "pkg.Outer.Inner"}
	outer.Nested = []*ast.Message{inner}
	status := &ast.Enum{Name: "Status", FullName: "pkg.Outer.Status"}
	outer.Enums = []*ast.Enum{status}

	f := &ast.File{Pkg: "pkg", Messages: []*ast.Message{outer}}
	tbl, err := Build([]*ast.File{f})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if m, err := tbl.ResolveMessage("pkg.Outer", "Inner"); err != nil || m != inner {
		t.Fatalf("ResolveMessage Inner: %v, %v", m, err)
	}
	if m, err := tbl.ResolveMessage("pkg.Outer.Inner", "Outer"); err != nil || m != outer {
		t.Fatalf("ResolveMessage Outer from nested scope: %v, %v", m, err)
	}
	if m, err := tbl.ResolveMessage("", ".pkg.Outer"); err != nil || m != outer {
		t.Fatalf("ResolveMessage fully-qualified: %v, %v", m, err)
	}
	if _, err := tbl.ResolveMessage("pkg.Outer", "DoesNotExist"); err == nil {
		t.Fatalf("expected error resolving unknown type")
	}
	if e, err := tbl.ResolveEnum("pkg.Outer", "Status"); err != nil || e != status {
		t.Fatalf("ResolveEnum: %v, %v", e, err)
	}
}

func TestBuildDetectsDuplicateNames(t *testing.T) {
	a := &ast.Message{Name: "Dup", FullName: "pkg.Dup"}
	b := &ast.Message{Name: "Dup", FullName: "pkg.Dup"}
	f := &ast.File{Pkg: "pkg", Messages: []*ast.Message{a, b}}
	if _, err := Build([]*ast.File{f}); err == nil {
		t.Fatalf("expected duplicate-name error")
	}
}

func TestResolveFieldTypesCorrectsEnumAndQualifies(t *testing.T) {
	status := &ast.Enum{Name: "Status", FullName: "pkg.Status", Values: []*ast.EnumValue{{Name: "OK", Number: 0}}}
	inner := &ast.Message{Name: "Inner", FullName: "pkg.Outer.Inner"}
	outer := &ast.Message{
		Name:     "Outer",
		FullName: "pkg.Outer",
		Nested:   []*ast.Message{inner},
		Fields: []*ast.Field{
			{Name: "state", TypeName: "Status", Type: ast.TypeMessage, OneofIndex: -1},
			{Name: "child", TypeName: "Inner", Type: ast.TypeMessage, OneofIndex: -1},
		},
	}
	f := &ast.File{Pkg: "pkg", Messages: []*ast.Message{outer}, Enums: []*ast.Enum{status}}
	tbl, err := Build([]*ast.File{f})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := tbl.ResolveFieldTypes(); err != nil {
		t.Fatalf("ResolveFieldTypes: %v", err)
	}
	if outer.Fields[0].Type != ast.TypeEnum || outer.Fields[0].TypeName != ".pkg.Status" {
		t.Fatalf("state field not resolved to enum: %+v", outer.Fields[0])
	}
	if outer.Fields[1].Type != ast.TypeMessage || outer.Fields[1].TypeName != ".pkg.Outer.Inner" {
		t.Fatalf("child field not resolved to message: %+v", outer.Fields[1])
	}
}

func TestValidateReservedRanges(t *testing.T) {
	m := &ast.Message{
		FullName: "pkg.M",
		Fields:   []*ast.Field{{Name: "x", Number: 5}},
		Reserved: []ast.ReservedRange{{Start: 4, End: 8}},
	}
	if err := ValidateReservedRanges(m); err == nil {
		t.Fatalf("expected reserved-range violation")
	}

	m2 := &ast.Message{
		FullName: "pkg.M2",
		Fields:   []*ast.Field{{Name: "ok", Number: 1}},
	}
	if err := ValidateReservedRanges(m2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
