// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package genjson emits MarshalJSON/UnmarshalJSON methods implementing the
// canonical protobuf JSON mapping for each message, built on top of
// runtime/pbjson the way jsonpb/encode.go and jsonpb/decode.go are built on
// top of internal/encoding/json.
package genjson

import (
	"fmt"
	"strings"

	"github.com/op/go-logging"

	"github.com/hashgraph/pbj-go/compiler/ast"
	"github.com/hashgraph/pbj-go/compiler/gen"
	"github.com/hashgraph/pbj-go/compiler/genmodel"
	"github.com/hashgraph/pbj-go/compiler/lookup"
)

var log = logging.MustGetLogger("genjson")

// GenerateFile emits JSON codec methods for every message declared in f.
func GenerateFile(f *ast.File, tbl *lookup.Table) (*gen.File, error) {
	pkg := f.TargetPackage
	if pkg == "" {
		parts := strings.Split(f.Pkg, ".")
		pkg = parts[len(parts)-1]
	}
	g := gen.NewFile(pkg)
	log.Debugf("generating JSON codec for %s (%d message(s))", f.Name, len(f.Messages))
	g.Import("github.com/hashgraph/pbj-go/runtime/pbjson")
	if fileUsesBytes(f) {
		g.Import("github.com/hashgraph/pbj-go/runtime/pbval")
	}

	var walk func(m *ast.Message) error
	walk = func(m *ast.Message) error {
		if err := writeMessageJSON(g, m, tbl); err != nil {
			return err
		}
		for _, nested := range m.Nested {
			if err := walk(nested); err != nil {
				return err
			}
		}
		return nil
	}
	for _, m := range f.Messages {
		if err := walk(m); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func writeMessageJSON(g *gen.File, m *ast.Message, tbl *lookup.Table) error {
	goName := genmodel.GoName(m.FullName)

	g.P("// MarshalJSON encodes m using the canonical protobuf JSON mapping:")
	g.P("// lowerCamelCase names, 64-bit integers as strings, bytes as base64.")
	g.P("func (m *", goName, ") MarshalJSON() ([]byte, error) {")
	g.P("e, err := pbjson.NewEncoder(\"\")")
	g.P("if err != nil {")
	g.P("return nil, err")
	g.P("}")
	g.P("e.StartObject()")
	for _, f := range m.Fields {
		if f.OneofIndex >= 0 {
			continue
		}
		if err := writeFieldJSONMarshal(g, f); err != nil {
			return err
		}
	}
	for oi, o := range m.Oneofs {
		g.P("switch v := m.", unexported(o.Name), ".(type) {")
		for _, f := range m.Fields {
			if f.OneofIndex != oi {
				continue
			}
			wrapperName := genmodel.OneofWrapperName(goName, f.Name)
			fieldName := genmodel.OneofFieldName(f.Name)
			g.P("case *", wrapperName, ":")
			if err := writeOneofMemberJSONMarshal(g, f, "v."+fieldName); err != nil {
				return err
			}
		}
		g.P("}")
	}
	g.P("e.EndObject()")
	g.P("return e.Bytes(), nil")
	g.P("}")
	g.P()

	g.P("// UnmarshalJSON decodes m from the canonical protobuf JSON mapping,")
	g.P("// accepting unknown fields silently, per the mapping's forward-")
	g.P("// compatibility rule.")
	g.P("func (m *", goName, ") UnmarshalJSON(data []byte) error {")
	g.P("d := pbjson.NewDecoder(data)")
	g.P("if err := d.OpenObject(); err != nil {")
	g.P("return err")
	g.P("}")
	g.P("for {")
	g.P("name, ok, err := d.NextFieldOrClose()")
	g.P("if err != nil {")
	g.P("return err")
	g.P("}")
	g.P("if !ok {")
	g.P("break")
	g.P("}")
	g.P("isNull, err := d.PeekIsNull()")
	g.P("if err != nil {")
	g.P("return err")
	g.P("}")
	g.P("if isNull {")
	g.P("d.ReadNull()")
	g.P("continue")
	g.P("}")
	g.P("switch name {")
	for _, f := range m.Fields {
		if f.OneofIndex >= 0 {
			continue
		}
		if err := writeFieldJSONUnmarshalCase(g, f); err != nil {
			return err
		}
	}
	for oi, o := range m.Oneofs {
		oneofField := unexported(o.Name)
		for _, f := range m.Fields {
			if f.OneofIndex != oi {
				continue
			}
			if err := writeOneofMemberJSONUnmarshalCase(g, goName, oneofField, f); err != nil {
				return err
			}
		}
	}
	g.P("default:")
	g.P("if err := d.SkipValue(); err != nil {")
	g.P("return err")
	g.P("}")
	g.P("}")
	g.P("}")
	g.P("return nil")
	g.P("}")
	g.P()
	return nil
}

// writeOneofMemberJSONMarshal writes one oneof variant unconditionally: a
// selected variant is always present in the output, even if it holds its
// type's zero value, since oneof presence is carried by the discriminator
// rather than by value.
func writeOneofMemberJSONMarshal(g *gen.File, f *ast.Field, expr string) error {
	g.P("e.WriteName(", fmt.Sprintf("%q", f.JSONName), ")")
	return writeScalarJSONWrite(g, f, expr)
}

// writeOneofMemberJSONUnmarshalCase mirrors writeFieldJSONUnmarshalCase's
// singular-field branch, but wraps the decoded value and assigns it to the
// discriminator field instead of a plain struct field. Oneof members cannot
// be repeated in proto3.
func writeOneofMemberJSONUnmarshalCase(g *gen.File, goName, oneofFieldName string, f *ast.Field) error {
	g.P("case ", fmt.Sprintf("%q", f.JSONName), ":")
	wrapperName := genmodel.OneofWrapperName(goName, f.Name)
	fieldName := genmodel.OneofFieldName(f.Name)
	target := "m." + oneofFieldName

	if f.Type == ast.TypeMessage {
		goType, _ := messageGoType(f)
		g.P("sub, err := d.RawValue()")
		g.P("if err != nil {")
		g.P("return err")
		g.P("}")
		g.P("elem := &", goType, "{}")
		g.P("if err := elem.UnmarshalJSON(sub); err != nil {")
		g.P("return err")
		g.P("}")
		g.P(target, " = &", wrapperName, "{", fieldName, ": elem}")
		return nil
	}
	if err := writeScalarJSONRead(g, f, "v"); err != nil {
		return err
	}
	g.P(target, " = &", wrapperName, "{", fieldName, ": v}")
	return nil
}

func writeFieldJSONMarshal(g *gen.File, f *ast.Field) error {
	name := "m." + unexported(f.Name)
	jsonName := fmt.Sprintf("%q", f.JSONName)

	if f.Label == ast.LabelRepeated {
		g.P("if len(", name, ") > 0 {")
		g.P("e.WriteName(", jsonName, ")")
		g.P("e.StartArray()")
		g.P("for _, v := range ", name, " {")
		if err := writeScalarJSONWrite(g, f, "v"); err != nil {
			return err
		}
		g.P("}")
		g.P("e.EndArray()")
		g.P("}")
		return nil
	}

	switch f.Type {
	case ast.TypeMessage:
		g.P("if ", name, " != nil {")
		g.P("e.WriteName(", jsonName, ")")
		g.P("sub, err := ", name, ".MarshalJSON()")
		g.P("if err != nil {")
		g.P("return nil, err")
		g.P("}")
		g.P("e.Raw(sub)")
		g.P("}")
	case ast.TypeString:
		g.P("if len(", name, ") > 0 {")
		g.P("e.WriteName(", jsonName, ")")
		g.P("e.WriteString(", name, ")")
		g.P("}")
	case ast.TypeBytes:
		g.P("if ", name, ".Len() > 0 {")
		g.P("e.WriteName(", jsonName, ")")
		g.P("e.WriteString(", name, ".Base64())")
		g.P("}")
	case ast.TypeBool:
		g.P("if ", name, " {")
		g.P("e.WriteName(", jsonName, ")")
		g.P("e.WriteBool(", name, ")")
		g.P("}")
	default:
		g.P("if ", name, " != 0 {")
		g.P("e.WriteName(", jsonName, ")")
		if err := writeScalarJSONWrite(g, f, name); err != nil {
			return err
		}
		g.P("}")
	}
	return nil
}

func writeScalarJSONWrite(g *gen.File, f *ast.Field, expr string) error {
	switch f.Type {
	case ast.TypeString:
		g.P("e.WriteString(", expr, ")")
	case ast.TypeBytes:
		g.P("e.WriteString(", expr, ".Base64())")
	case ast.TypeBool:
		g.P("e.WriteBool(", expr, ")")
	case ast.TypeInt32, ast.TypeSint32, ast.TypeSfixed32:
		g.P("e.WriteInt(int64(", expr, "))")
	case ast.TypeUint32, ast.TypeFixed32:
		g.P("e.WriteUint(uint64(", expr, "))")
	case ast.TypeInt64, ast.TypeSint64, ast.TypeSfixed64:
		g.P("e.WriteQuotedInt64(int64(", expr, "))")
	case ast.TypeUint64, ast.TypeFixed64:
		g.P("e.WriteQuotedUint64(uint64(", expr, "))")
	case ast.TypeFloat:
		g.P("e.WriteFloat(float64(", expr, "), 32)")
	case ast.TypeDouble:
		g.P("e.WriteFloat(", expr, ", 64)")
	case ast.TypeEnum:
		g.P("e.WriteString(", expr, ".String())")
	case ast.TypeMessage:
		g.P("sub, err := ", expr, ".MarshalJSON()")
		g.P("if err != nil {")
		g.P("return nil, err")
		g.P("}")
		g.P("e.Raw(sub)")
	default:
		return fmt.Errorf("unhandled JSON scalar type %v", f.Type)
	}
	return nil
}

func writeFieldJSONUnmarshalCase(g *gen.File, f *ast.Field) error {
	g.P("case ", fmt.Sprintf("%q", f.JSONName), ":")
	name := "m." + unexported(f.Name)

	if f.Label == ast.LabelRepeated {
		g.P("if err := d.OpenArray(); err != nil {")
		g.P("return err")
		g.P("}")
		g.P("for {")
		g.P("done, err := d.PeekEndArray()")
		g.P("if err != nil {")
		g.P("return err")
		g.P("}")
		g.P("if done {")
		g.P("break")
		g.P("}")
		if f.Type == ast.TypeMessage {
			goType, _ := messageGoType(f)
			g.P("sub, err := d.RawValue()")
			g.P("if err != nil {")
			g.P("return err")
			g.P("}")
			g.P("v := &", goType, "{}")
			g.P("if err := v.UnmarshalJSON(sub); err != nil {")
			g.P("return err")
			g.P("}")
		} else if err := writeScalarJSONRead(g, f, "v"); err != nil {
			return err
		}
		g.P(name, " = append(", name, ", v)")
		g.P("}")
		return nil
	}

	switch f.Type {
	case ast.TypeMessage:
		goType, _ := messageGoType(f)
		g.P("sub, err := d.RawValue()")
		g.P("if err != nil {")
		g.P("return err")
		g.P("}")
		g.P("elem := &", goType, "{}")
		g.P("if err := elem.UnmarshalJSON(sub); err != nil {")
		g.P("return err")
		g.P("}")
		g.P(name, " = elem")
	default:
		if err := writeScalarJSONRead(g, f, "v"); err != nil {
			return err
		}
		g.P(name, " = v")
	}
	return nil
}

func writeScalarJSONRead(g *gen.File, f *ast.Field, target string) error {
	switch f.Type {
	case ast.TypeString:
		g.P(target, ", err := d.ReadString()")
		g.P("if err != nil {")
		g.P("return err")
		g.P("}")
	case ast.TypeBytes:
		g.P("raw, err := d.ReadBytes()")
		g.P("if err != nil {")
		g.P("return err")
		g.P("}")
		g.P(target, " := pbval.FromBytes(raw)")
	case ast.TypeBool:
		g.P(target, ", err := d.ReadBoolean()")
		g.P("if err != nil {")
		g.P("return err")
		g.P("}")
	case ast.TypeInt32, ast.TypeSint32, ast.TypeSfixed32:
		g.P("raw, err := d.ReadSignedInteger(32)")
		g.P("if err != nil {")
		g.P("return err")
		g.P("}")
		g.P(target, " := int32(raw)")
	case ast.TypeInt64, ast.TypeSint64, ast.TypeSfixed64:
		g.P("raw, err := d.ReadSignedInteger(64)")
		g.P("if err != nil {")
		g.P("return err")
		g.P("}")
		g.P(target, " := raw")
	case ast.TypeUint32, ast.TypeFixed32:
		g.P("raw, err := d.ReadUnsignedInteger(32)")
		g.P("if err != nil {")
		g.P("return err")
		g.P("}")
		g.P(target, " := uint32(raw)")
	case ast.TypeUint64, ast.TypeFixed64:
		g.P("raw, err := d.ReadUnsignedInteger(64)")
		g.P("if err != nil {")
		g.P("return err")
		g.P("}")
		g.P(target, " := raw")
	case ast.TypeFloat:
		g.P("raw, err := d.ReadDouble(32)")
		g.P("if err != nil {")
		g.P("return err")
		g.P("}")
		g.P(target, " := float32(raw)")
	case ast.TypeDouble:
		g.P(target, ", err := d.ReadDouble(64)")
		g.P("if err != nil {")
		g.P("return err")
		g.P("}")
	case ast.TypeEnum:
		goType, _ := messageGoType(f)
		g.P("raw, err := d.ReadEnum(func(s string) (int32, bool) { v, ok := ", goType, "_value[s]; return v, ok })")
		g.P("if err != nil {")
		g.P("return err")
		g.P("}")
		g.P(target, " := ", goType, "(raw)")
	default:
		return fmt.Errorf("unhandled JSON scalar type %v", f.Type)
	}
	return nil
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

func messageGoType(f *ast.Field) (string, error) {
	return genmodel.GoName(strings.TrimPrefix(f.TypeName, ".")), nil
}

func unexported(s string) string {
	parts := strings.Split(s, "_")
	var b strings.Builder
	for i, p := range parts {
		if p == "" {
			continue
		}
		if i == 0 {
			b.WriteString(strings.ToLower(p[:1]))
			b.WriteString(p[1:])
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}
