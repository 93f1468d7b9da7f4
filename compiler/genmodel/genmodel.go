// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package genmodel emits the immutable Go value type and builder for each
// message, and the named-int32 type for each enum, the way protoc-gen-go's
// generator.go emits a struct per message and a named type per enum — but
// with unexported fields and generated accessors instead of exported
// struct fields, so a *Message value is safe to share and compare the way
// runtime/pbval.Bytes is.
package genmodel

import (
	"fmt"
	"strings"

	"github.com/op/go-logging"

	"github.com/hashgraph/pbj-go/compiler/ast"
	"github.com/hashgraph/pbj-go/compiler/gen"
	"github.com/hashgraph/pbj-go/compiler/lookup"
)

var log = logging.MustGetLogger("genmodel")

// GenerateFile emits the model file for every top-level message and enum
// declared directly in f (nested types are emitted alongside their
// innermost Go name, flattened, the way protoc-gen-go flattens nested Go
// types into the enclosing file rather than nesting Go struct definitions).
func GenerateFile(f *ast.File, tbl *lookup.Table) (*gen.File, error) {
	pkg := f.TargetPackage
	if pkg == "" {
		pkg = defaultPackageName(f.Pkg)
	}
	g := gen.NewFile(pkg)
	log.Debugf("generating model for %s (%d message(s), %d enum(s))", f.Name, len(f.Messages), len(f.Enums))
	if fileUsesBytes(f) {
		g.Import("github.com/hashgraph/pbj-go/runtime/pbval")
	}

	for _, e := range f.Enums {
		writeEnum(g, e)
	}
	for _, m := range f.Messages {
		if err := writeMessageTree(g, m, tbl); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func writeMessageTree(g *gen.File, m *ast.Message, tbl *lookup.Table) error {
	if err := writeMessage(g, m, tbl); err != nil {
		return err
	}
	for _, e := range m.Enums {
		writeEnum(g, e)
	}
	for _, nested := range m.Nested {
		if err := writeMessageTree(g, nested, tbl); err != nil {
			return err
		}
	}
	return nil
}

// GoName returns the Go identifier for a fully-qualified proto message or
// enum name: dots become underscores, so a nested type "Outer.Inner" becomes
// the flattened Go name "Outer_Inner", matching protoc-gen-go's convention
// for nested message types.
func GoName(fullName string) string {
	return strings.ReplaceAll(fullName, ".", "_")
}

func fileUsesBytes(f *ast.File) bool {
	for _, m := range f.Messages {
		if messageUsesBytes(m) {
			return true
		}
	}
	return false
}

func messageUsesBytes(m *ast.Message) bool {
	for _, fld := range m.Fields {
		if fld.Type == ast.TypeBytes {
			return true
		}
	}
	for _, nested := range m.Nested {
		if messageUsesBytes(nested) {
			return true
		}
	}
	return false
}

func defaultPackageName(protoPkg string) string {
	parts := strings.Split(protoPkg, ".")
	return parts[len(parts)-1]
}

func writeEnum(g *gen.File, e *ast.Enum) {
	goName := GoName(e.FullName)
	if e.Doc != "" {
		writeDocComment(g, e.Doc)
	}
	g.P("type ", goName, " int32")
	g.P()
	g.P("const (")
	for _, v := range e.Values {
		if v.Doc != "" {
			writeDocComment(g, v.Doc)
		}
		g.P(goName, "_", v.Name, " ", goName, " = ", v.Number)
	}
	g.P(")")
	g.P()
	g.P("var ", goName, "_name = map[int32]string{")
	for _, v := range e.Values {
		g.P(v.Number, ": ", fmt.Sprintf("%q", v.Name), ",")
	}
	g.P("}")
	g.P()
	g.P("var ", goName, "_value = map[string]int32{")
	for _, v := range e.Values {
		g.P(fmt.Sprintf("%q", v.Name), ": ", v.Number, ",")
	}
	g.P("}")
	g.P()
	g.P("func (x ", goName, ") String() string {")
	g.P("if s, ok := ", goName, "_name[int32(x)]; ok {")
	g.P("return s")
	g.P("}")
	g.P(`return "UNKNOWN"`)
	g.P("}")
	g.P()
}

func writeMessage(g *gen.File, m *ast.Message, tbl *lookup.Table) error {
	goName := GoName(m.FullName)

	if m.Doc != "" {
		writeDocComment(g, m.Doc)
	}
	g.P("type ", goName, " struct {")
	for _, f := range m.Fields {
		goType, err := goFieldType(f, tbl)
		if err != nil {
			return err
		}
		g.P(unexportedFieldName(f.Name), " ", goType)
	}
	for _, o := range m.Oneofs {
		g.P(unexportedFieldName(o.Name), " is", goName, "_", exportedName(o.Name))
	}
	g.P("}")
	g.P()

	g.P("// ", goName, "_DEFAULT is the all-defaults instance: every scalar at its")
	g.P("// proto3 zero value, every message-valued field absent, every repeated")
	g.P("// field empty, every oneof UNSET.")
	g.P("var ", goName, "_DEFAULT = &", goName, "{}")
	g.P()

	for _, f := range m.Fields {
		if f.OneofIndex >= 0 {
			continue
		}
		if err := writeAccessor(g, goName, f, tbl); err != nil {
			return err
		}
	}
	for i, o := range m.Oneofs {
		writeOneofInterface(g, goName, o, m, i)
	}

	writeBuilder(g, goName, m, tbl)
	return nil
}

func writeOneofInterface(g *gen.File, goName string, o *ast.Oneof, m *ast.Message, idx int) {
	ifaceName := fmt.Sprintf("is%s_%s", goName, exportedName(o.Name))
	kindName := fmt.Sprintf("%s_%sKind", goName, exportedName(o.Name))

	g.P("type ", ifaceName, " interface { ", ifaceName, "() }")
	g.P()

	// Discriminator enum: UNSET plus one member per variant, ordinals equal
	// to the variant's wire field number so the kind and the wire tag never
	// drift apart as fields are added.
	g.P("type ", kindName, " int32")
	g.P()
	g.P("const (")
	g.P(kindName, "_UNSET ", kindName, " = 0")
	for _, f := range m.Fields {
		if f.OneofIndex != idx {
			continue
		}
		g.P(kindName, "_", exportedName(f.Name), " ", kindName, " = ", f.Number)
	}
	g.P(")")
	g.P()

	for _, f := range m.Fields {
		if f.OneofIndex != idx {
			continue
		}
		wrapperName := OneofWrapperName(goName, f.Name)
		goType, _ := goFieldType(&ast.Field{Type: f.Type, TypeName: f.TypeName, Label: ast.LabelSingular}, nil)
		g.P("type ", wrapperName, " struct { ", exportedName(f.Name), " ", goType, " }")
		g.P()
		g.P("func (*", wrapperName, ") ", ifaceName, "() {}")
		g.P()
	}
	g.P("func (m *", goName, ") Get", exportedName(o.Name), "() ", ifaceName, " { return m.", unexportedFieldName(o.Name), " }")
	g.P()

	g.P("// ", exportedName(o.Name), "Kind reports which variant of the ", o.Name, " oneof is")
	g.P("// set, or ", kindName, "_UNSET if none is.")
	g.P("func (m *", goName, ") ", exportedName(o.Name), "Kind() ", kindName, " {")
	g.P("switch m.", unexportedFieldName(o.Name), ".(type) {")
	for _, f := range m.Fields {
		if f.OneofIndex != idx {
			continue
		}
		g.P("case *", OneofWrapperName(goName, f.Name), ":")
		g.P("return ", kindName, "_", exportedName(f.Name))
	}
	g.P("default:")
	g.P("return ", kindName, "_UNSET")
	g.P("}")
	g.P("}")
	g.P()

	for _, f := range m.Fields {
		if f.OneofIndex != idx {
			continue
		}
		wrapperName := OneofWrapperName(goName, f.Name)
		goType, _ := goFieldType(&ast.Field{Type: f.Type, TypeName: f.TypeName, Label: ast.LabelSingular}, nil)
		g.P("// Get", exportedName(f.Name), " returns the payload of the ", o.Name, " oneof's ", f.Name, "")
		g.P("// variant and true if that variant is set, otherwise the zero value and")
		g.P("// false.")
		g.P("func (m *", goName, ") Get", exportedName(f.Name), "() (", goType, ", bool) {")
		g.P("if v, ok := m.", unexportedFieldName(o.Name), ".(*", wrapperName, "); ok {")
		g.P("return v.", exportedName(f.Name), ", true")
		g.P("}")
		g.P("return ", zeroValue(goType), ", false")
		g.P("}")
		g.P()
	}
}

// OneofWrapperName returns the Go type of the wrapper struct holding the
// named oneof variant, e.g. "Account_Email" for field "email" of message
// "Account", matching the type writeOneofInterface emits.
func OneofWrapperName(msgGoName, fieldName string) string {
	return msgGoName + "_" + exportedName(fieldName)
}

// OneofFieldName returns the exported Go struct field name a oneof wrapper
// uses to hold fieldName's value.
func OneofFieldName(fieldName string) string {
	return exportedName(fieldName)
}

func writeAccessor(g *gen.File, goName string, f *ast.Field, tbl *lookup.Table) error {
	goType, err := goFieldType(f, tbl)
	if err != nil {
		return err
	}
	fieldName := unexportedFieldName(f.Name)
	if f.Doc != "" {
		writeDocComment(g, fmt.Sprintf("**%d** %s", f.Number, f.Doc))
	}
	if f.Deprecated {
		g.P("// Deprecated: do not use.")
	}
	g.P("func (m *", goName, ") Get", exportedName(f.Name), "() ", goType, " {")
	g.P("if m == nil {")
	g.P("return ", zeroValue(goType))
	g.P("}")
	g.P("return m.", fieldName)
	g.P("}")
	g.P()
	return nil
}

func writeBuilder(g *gen.File, goName string, m *ast.Message, tbl *lookup.Table) {
	builderName := goName + "Builder"
	g.P("// ", builderName, " builds an immutable ", goName, " value field by field.")
	g.P("type ", builderName, " struct { v ", goName, " }")
	g.P()
	g.P("func New", builderName, "() *", builderName, " { return &", builderName, "{} }")
	g.P()
	g.P("// CopyBuilder returns a builder pre-populated with m's current field values.")
	g.P("func (m *", goName, ") CopyBuilder() *", builderName, " { return &", builderName, "{v: *m} }")
	g.P()
	for _, f := range m.Fields {
		if f.OneofIndex >= 0 {
			continue
		}
		goType, err := goFieldType(f, tbl)
		if err != nil {
			continue
		}
		fieldName := unexportedFieldName(f.Name)
		g.P("func (b *", builderName, ") Set", exportedName(f.Name), "(v ", goType, ") *", builderName, " {")
		g.P("b.v.", fieldName, " = v")
		g.P("return b")
		g.P("}")
		g.P()
	}
	for oi, o := range m.Oneofs {
		oneofFieldName := unexportedFieldName(o.Name)
		for _, f := range m.Fields {
			if f.OneofIndex != oi {
				continue
			}
			goType, err := goFieldType(&ast.Field{Type: f.Type, TypeName: f.TypeName, Label: ast.LabelSingular}, tbl)
			if err != nil {
				continue
			}
			wrapperName := OneofWrapperName(goName, f.Name)
			g.P("// Set", exportedName(f.Name), " selects this variant of the ", o.Name, " oneof,")
			g.P("// clearing whichever variant was set before.")
			g.P("func (b *", builderName, ") Set", exportedName(f.Name), "(v ", goType, ") *", builderName, " {")
			g.P("b.v.", oneofFieldName, " = &", wrapperName, "{", exportedName(f.Name), ": v}")
			g.P("return b")
			g.P("}")
			g.P()
		}
	}
	g.P("func (b *", builderName, ") Build() *", goName, " {")
	for oi, o := range m.Oneofs {
		oneofFieldName := unexportedFieldName(o.Name)
		for _, f := range m.Fields {
			if f.OneofIndex != oi || f.Type != ast.TypeMessage {
				continue
			}
			// A selected variant may not wrap a nil payload: UNSET is the
			// only null-like state a oneof may be in.
			wrapperName := OneofWrapperName(goName, f.Name)
			g.P("if v, ok := b.v.", oneofFieldName, ".(*", wrapperName, "); ok && v.", exportedName(f.Name), " == nil {")
			g.P(`panic("`, goName, ".", o.Name, `: `, exportedName(f.Name), ` variant set with a nil payload")`)
			g.P("}")
		}
	}
	g.P("v := b.v")
	g.P("return &v")
	g.P("}")
	g.P()
}

func goFieldType(f *ast.Field, tbl *lookup.Table) (string, error) {
	base, err := scalarGoType(f, tbl)
	if err != nil {
		return "", err
	}
	if f.Label == ast.LabelRepeated {
		return "[]" + base, nil
	}
	return base, nil
}

func scalarGoType(f *ast.Field, tbl *lookup.Table) (string, error) {
	switch f.Type {
	case ast.TypeDouble:
		return "float64", nil
	case ast.TypeFloat:
		return "float32", nil
	case ast.TypeInt32, ast.TypeSint32, ast.TypeSfixed32:
		return "int32", nil
	case ast.TypeInt64, ast.TypeSint64, ast.TypeSfixed64:
		return "int64", nil
	case ast.TypeUint32, ast.TypeFixed32:
		return "uint32", nil
	case ast.TypeUint64, ast.TypeFixed64:
		return "uint64", nil
	case ast.TypeBool:
		return "bool", nil
	case ast.TypeString:
		return "string", nil
	case ast.TypeBytes:
		return "pbval.Bytes", nil
	case ast.TypeEnum:
		return GoName(strings.TrimPrefix(f.TypeName, ".")), nil
	case ast.TypeMessage:
		return "*" + GoName(strings.TrimPrefix(f.TypeName, ".")), nil
	}
	return "", fmt.Errorf("unhandled field type %v", f.Type)
}

func zeroValue(goType string) string {
	switch {
	case strings.HasPrefix(goType, "*") || strings.HasPrefix(goType, "[]"):
		return "nil"
	case goType == "string":
		return `""`
	case goType == "bool":
		return "false"
	case goType == "pbval.Bytes":
		return "pbval.Empty"
	default:
		return "0"
	}
}

func exportedName(s string) string {
	parts := strings.Split(s, "_")
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

func unexportedFieldName(s string) string {
	name := exportedName(s)
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}

func writeDocComment(g *gen.File, doc string) {
	for _, line := range strings.Split(strings.TrimRight(doc, "\n"), "\n") {
		g.P("// ", line)
	}
}
