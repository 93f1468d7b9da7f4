// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lookup resolves the fully-qualified type references produced by
// compiler/parse into concrete *ast.Message / *ast.Enum nodes, the way
// reflect/protoregistry resolves a protoreflect.FullName against a set of
// registered file descriptors.
package lookup

import (
	"strings"

	"github.com/hashgraph/pbj-go/compiler/ast"
	"github.com/hashgraph/pbj-go/internal/pberrs"
)

// Table is the set of messages and enums known across every file passed to
// Build, keyed by fully-qualified name.
type Table struct {
	Messages map[string]*ast.Message
	Enums    map[string]*ast.Enum
	Files    []*ast.File
}

// Build indexes every message and enum (including nested ones) declared
// across files, and returns an error if any two declarations collide on the
// same fully-qualified name.
func Build(files []*ast.File) (*Table, error) {
	t := &Table{
		Messages: make(map[string]*ast.Message),
		Enums:    make(map[string]*ast.Enum),
		Files:    files,
	}
	for _, f := range files {
		for _, m := range f.Messages {
			if err := t.addMessage(m); err != nil {
				return nil, err
			}
		}
		for _, e := range f.Enums {
			if err := t.addEnum(e); err != nil {
				return nil, err
			}
		}
	}
	return t, nil
}

func (t *Table) addMessage(m *ast.Message) error {
	if _, dup := t.Messages[m.FullName]; dup {
		return pberrs.New(pberrs.SchemaViolation, "duplicate message name %q", m.FullName).WithField(m.FullName)
	}
	t.Messages[m.FullName] = m
	for _, nested := range m.Nested {
		if err := t.addMessage(nested); err != nil {
			return err
		}
	}
	for _, e := range m.Enums {
		if err := t.addEnum(e); err != nil {
			return err
		}
	}
	return nil
}

func (t *Table) addEnum(e *ast.Enum) error {
	if _, dup := t.Enums[e.FullName]; dup {
		return pberrs.New(pberrs.SchemaViolation, "duplicate enum name %q", e.FullName).WithField(e.FullName)
	}
	t.Enums[e.FullName] = e
	return nil
}

// ResolveMessage looks up a message reference seen while declaring field,
// which is scoped to the message/file named by scope (a fully-qualified
// name, possibly ""  for file scope at the proto package itself). It tries
// progressively shorter scope prefixes, mirroring C++-style nested-name
// lookup in the proto compiler.
func (t *Table) ResolveMessage(scope, name string) (*ast.Message, error) {
	for _, candidate := range candidates(scope, name) {
		if m, ok := t.Messages[candidate]; ok {
			return m, nil
		}
	}
	return nil, pberrs.New(pberrs.SchemaViolation, "unresolved message type %q (scope %q)", name, scope)
}

// ResolveEnum is ResolveMessage for enum references.
func (t *Table) ResolveEnum(scope, name string) (*ast.Enum, error) {
	for _, candidate := range candidates(scope, name) {
		if e, ok := t.Enums[candidate]; ok {
			return e, nil
		}
	}
	return nil, pberrs.New(pberrs.SchemaViolation, "unresolved enum type %q (scope %q)", name, scope)
}

// candidates yields the fully-qualified names to try, in order, for a type
// reference named name appearing within scope: fully-qualified as given
// (".a.b.C" or bare), then name qualified under scope, then under each
// progressively shorter prefix of scope.
func candidates(scope, name string) []string {
	if strings.HasPrefix(name, ".") {
		return []string{strings.TrimPrefix(name, ".")}
	}

	var out []string
	prefix := scope
	for {
		if prefix == "" {
			out = append(out, name)
			break
		}
		out = append(out, prefix+"."+name)
		i := strings.LastIndexByte(prefix, '.')
		if i < 0 {
			out = append(out, name)
			break
		}
		prefix = prefix[:i]
	}
	return out
}

// ResolveFieldTypes rewrites every message/enum-typed field's TypeName to its
// fully-qualified, leading-dot form and corrects Type from the parser's
// tentative TypeMessage to TypeEnum where the reference actually names an
// enum, the way protoc itself resolves a FieldDescriptorProto's type_name
// only after every file in the set has been parsed.
func (t *Table) ResolveFieldTypes() error {
	for _, f := range t.Files {
		for _, m := range f.Messages {
			if err := t.resolveMessageFieldTypes(m); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *Table) resolveMessageFieldTypes(m *ast.Message) error {
	for _, f := range m.Fields {
		if f.Type != ast.TypeMessage {
			continue
		}
		if resolved, err := t.ResolveMessage(m.FullName, f.TypeName); err == nil {
			f.TypeName = "." + resolved.FullName
			continue
		}
		resolved, err := t.ResolveEnum(m.FullName, f.TypeName)
		if err != nil {
			return pberrs.New(pberrs.SchemaViolation, "field %q of message %q: %v", f.Name, m.FullName, err).WithField(f.Name)
		}
		f.Type = ast.TypeEnum
		f.TypeName = "." + resolved.FullName
	}
	for _, nested := range m.Nested {
		if err := t.resolveMessageFieldTypes(nested); err != nil {
			return err
		}
	}
	return nil
}

// ValidateReservedRanges reports an error if m declares a field whose
// number falls within one of its own reserved ranges, or reuses a reserved
// name.
func ValidateReservedRanges(m *ast.Message) error {
	for _, f := range m.Fields {
		for _, r := range m.Reserved {
			if r.Name != "" {
				if r.Name == f.Name {
					return pberrs.New(pberrs.SchemaViolation, "field %q reuses reserved name in message %q", f.Name, m.FullName).WithField(f.Name)
				}
				continue
			}
			if int32(f.Number) >= r.Start && int32(f.Number) < r.End {
				return pberrs.New(pberrs.SchemaViolation, "field %q number %d falls in reserved range [%d,%d) of message %q", f.Name, f.Number, r.Start, r.End, m.FullName).WithField(f.Name)
			}
		}
		if f.Number.IsReserved() {
			return pberrs.New(pberrs.SchemaViolation, "field %q uses reserved field number %d", f.Name, f.Number).WithField(f.Name)
		}
	}
	return nil
}
