// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package genbinary emits the binary wire encode/size/decode methods for
// each message, grounded on the size-then-write traversal in proto/size.go
// and proto/decode.go: a Size method computes the exact encoded length
// before Marshal ever touches a buffer, so Marshal can allocate once.
package genbinary

import (
	"fmt"
	"strings"

	"github.com/op/go-logging"

	"github.com/hashgraph/pbj-go/compiler/ast"
	"github.com/hashgraph/pbj-go/compiler/gen"
	"github.com/hashgraph/pbj-go/compiler/genmodel"
	"github.com/hashgraph/pbj-go/compiler/lookup"
)

var log = logging.MustGetLogger("genbinary")

// GenerateFile emits SizeBinary/MarshalBinary/UnmarshalBinary methods for
// every message declared in f, recursing into nested messages the way
// GenerateFile in genmodel does.
func GenerateFile(f *ast.File, tbl *lookup.Table) (*gen.File, error) {
	pkg := f.TargetPackage
	if pkg == "" {
		parts := strings.Split(f.Pkg, ".")
		pkg = parts[len(parts)-1]
	}
	g := gen.NewFile(pkg)
	log.Debugf("generating binary codec for %s (%d message(s))", f.Name, len(f.Messages))
	g.Import("errors")
	g.Import("github.com/hashgraph/pbj-go/runtime/wire")
	g.Import("github.com/hashgraph/pbj-go/runtime/pbio")
	g.Import("github.com/hashgraph/pbj-go/internal/pberrs")
	if fileUsesBytes(f) {
		g.Import("github.com/hashgraph/pbj-go/runtime/pbval")
	}
	if fileUsesFloat(f) {
		g.Import("math")
	}

	g.P("func boolToUint64(b bool) uint64 {")
	g.P("if b {")
	g.P("return 1")
	g.P("}")
	g.P("return 0")
	g.P("}")
	g.P()

	var walk func(m *ast.Message) error
	walk = func(m *ast.Message) error {
		if err := writeMessageCodec(g, m, tbl); err != nil {
			return err
		}
		if err := writeMessageStreamCodec(g, m, tbl); err != nil {
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

func writeMessageCodec(g *gen.File, m *ast.Message, tbl *lookup.Table) error {
	goName := genmodel.GoName(m.FullName)

	g.P("// SizeBinary returns the exact number of bytes MarshalBinary would write.")
	g.P("func (m *", goName, ") SizeBinary() int {")
	g.P("if m == nil {")
	g.P("return 0")
	g.P("}")
	g.P("var n int")
	for _, f := range m.Fields {
		if f.OneofIndex >= 0 {
			continue
		}
		writeFieldSize(g, f)
	}
	writeOneofSize(g, goName, m)
	g.P("return n")
	g.P("}")
	g.P()

	g.P("// MarshalBinary encodes m to the canonical protobuf wire format,")
	g.P("// suppressing proto3 default-valued singular fields.")
	g.P("func (m *", goName, ") MarshalBinary() ([]byte, error) {")
	g.P("out := make([]byte, 0, m.SizeBinary())")
	g.P("return m.appendBinary(out)")
	g.P("}")
	g.P()

	g.P("func (m *", goName, ") appendBinary(b []byte) ([]byte, error) {")
	g.P("if m == nil {")
	g.P("return b, nil")
	g.P("}")
	if messageHasMessageField(m) {
		g.P("var err error")
	}
	for _, f := range m.Fields {
		if f.OneofIndex >= 0 {
			continue
		}
		writeFieldMarshal(g, f)
	}
	writeOneofMarshal(g, goName, m)
	g.P("return b, nil")
	g.P("}")
	g.P()

	g.P("// UnmarshalBinary decodes m from the canonical protobuf wire format,")
	g.P("// merging into any fields already set (duplicate scalars overwrite,")
	g.P("// duplicate messages recursively merge, repeated fields concatenate).")
	g.P("func (m *", goName, ") UnmarshalBinary(b []byte) error {")
	g.P("for len(b) > 0 {")
	g.P("num, typ, n := wire.ConsumeTag(b)")
	g.P("if n < 0 {")
	g.P("return pberrs.New(pberrs.MalformedWire, \"invalid tag\")")
	g.P("}")
	g.P("b = b[n:]")
	g.P("switch num {")
	for _, f := range m.Fields {
		if f.OneofIndex >= 0 {
			continue
		}
		if err := writeFieldUnmarshalCase(g, f); err != nil {
			return err
		}
	}
	for oi, o := range m.Oneofs {
		oneofField := unexported(o.Name)
		for _, f := range m.Fields {
			if f.OneofIndex != oi {
				continue
			}
			if err := writeOneofMemberUnmarshalCase(g, goName, oneofField, f); err != nil {
				return err
			}
		}
	}
	g.P("default:")
	g.P("// Unknown fields are not errors and are not preserved: skip and discard.")
	g.P("skip := wire.ConsumeFieldValue(num, typ, b)")
	g.P("if skip < 0 {")
	g.P("return pberrs.New(pberrs.MalformedWire, \"invalid field value for field %d\", num)")
	g.P("}")
	g.P("b = b[skip:]")
	g.P("}")
	g.P("}")
	g.P("return nil")
	g.P("}")
	g.P()
	return nil
}

// writeMessageStreamCodec emits MarshalTo/UnmarshalFrom, the pbio.Writer/
// pbio.Reader-backed counterpart to MarshalBinary/UnmarshalBinary: the
// former writes the size-then-write buffer to the cursor in one call, the
// latter re-implements the field switch in terms of wire's cursor-based
// Read* primitives so a stream-backed source never needs its whole
// contents buffered up front just to satisfy a []byte-shaped decoder.
func writeMessageStreamCodec(g *gen.File, m *ast.Message, tbl *lookup.Table) error {
	goName := genmodel.GoName(m.FullName)

	g.P("// MarshalTo writes m's canonical wire-format encoding to w, computing the")
	g.P("// size once and writing the result in a single call, the way the")
	g.P("// size-then-write strategy is meant to reach a stream-backed destination.")
	g.P("func (m *", goName, ") MarshalTo(w pbio.Writer) error {")
	g.P("b, err := m.MarshalBinary()")
	g.P("if err != nil {")
	g.P("return err")
	g.P("}")
	g.P("return w.WriteBytes(b)")
	g.P("}")
	g.P()

	g.P("// UnmarshalFrom decodes m from r, merging into any fields already set the")
	g.P("// way UnmarshalBinary does. It stops cleanly when r reports no bytes")
	g.P("// remain (buffer-backed) or the stream ends at a tag boundary")
	g.P("// (stream-backed); a short read in the middle of a value is an error.")
	g.P("func (m *", goName, ") UnmarshalFrom(r pbio.Reader) error {")
	g.P("for r.Remaining() != 0 {")
	g.P("num, typ, tagErr := wire.ReadTag(r)")
	g.P("if tagErr != nil {")
	g.P("if errors.Is(tagErr, pberrs.New(pberrs.EndOfInput, \"\")) {")
	g.P("break")
	g.P("}")
	g.P("return tagErr")
	g.P("}")
	g.P("switch num {")
	for _, f := range m.Fields {
		if f.OneofIndex >= 0 {
			continue
		}
		if err := writeFieldUnmarshalCaseStream(g, f); err != nil {
			return err
		}
	}
	for oi, o := range m.Oneofs {
		oneofField := unexported(o.Name)
		for _, f := range m.Fields {
			if f.OneofIndex != oi {
				continue
			}
			if err := writeOneofMemberUnmarshalCaseStream(g, goName, oneofField, f); err != nil {
				return err
			}
		}
	}
	g.P("default:")
	g.P("if err := wire.SkipValue(r, typ); err != nil {")
	g.P("return err")
	g.P("}")
	g.P("}")
	g.P("}")
	g.P("return nil")
	g.P("}")
	g.P()
	return nil
}

// writeFieldUnmarshalCaseStream mirrors writeFieldUnmarshalCase, reading
// through a pbio.Reader via wire's cursor-based primitives instead of
// slicing a []byte.
func writeFieldUnmarshalCaseStream(g *gen.File, f *ast.Field) error {
	name := "m." + unexported(f.Name)
	g.P("case ", fmt.Sprintf("%d", f.Number), ":")

	if f.Label == ast.LabelRepeated {
		switch f.Type {
		case ast.TypeString:
			g.P("if typ != wire.BytesType {")
			g.P("if err := wire.SkipValue(r, typ); err != nil {\nreturn err\n}")
			g.P("} else {")
			g.P("s, err := wire.ReadBytes(r)")
			g.P("if err != nil {\nreturn err\n}")
			g.P(name, " = append(", name, ", string(s))")
			g.P("}")
		case ast.TypeBytes:
			g.P("if typ != wire.BytesType {")
			g.P("if err := wire.SkipValue(r, typ); err != nil {\nreturn err\n}")
			g.P("} else {")
			g.P("s, err := wire.ReadBytes(r)")
			g.P("if err != nil {\nreturn err\n}")
			g.P(name, " = append(", name, ", pbval.FromBytes(append([]byte(nil), s...)))")
			g.P("}")
		case ast.TypeMessage:
			goType, _ := messageGoType(f)
			g.P("if typ != wire.BytesType {")
			g.P("if err := wire.SkipValue(r, typ); err != nil {\nreturn err\n}")
			g.P("} else {")
			g.P("s, err := wire.ReadBytes(r)")
			g.P("if err != nil {\nreturn err\n}")
			g.P("elem := &", goType, "{}")
			g.P("if err := elem.UnmarshalBinary(s); err != nil {\nreturn err\n}")
			g.P(name, " = append(", name, ", elem)")
			g.P("}")
		default:
			readExpr, advance, err := consumeExprForScalar(f)
			if err != nil {
				return err
			}
			streamExpr, err := streamConsumeExprForScalar(f)
			if err != nil {
				return err
			}
			g.P("if typ == wire.BytesType {")
			g.P("payload, err := wire.ReadBytes(r)")
			g.P("if err != nil {\nreturn err\n}")
			g.P("for len(payload) > 0 {")
			g.P(readExpr)
			g.P(name, " = append(", name, ", v)")
			g.P("payload = payload[", advance, ":]")
			g.P("}")
			g.P("} else if typ == ", wireTypeConst(f.Type), " {")
			g.P(streamExpr)
			g.P(name, " = append(", name, ", v)")
			g.P("} else {")
			g.P("if err := wire.SkipValue(r, typ); err != nil {\nreturn err\n}")
			g.P("}")
		}
		return nil
	}

	switch f.Type {
	case ast.TypeString:
		g.P("if typ != wire.BytesType {")
		g.P("if err := wire.SkipValue(r, typ); err != nil {\nreturn err\n}")
		g.P("} else {")
		g.P("s, err := wire.ReadBytes(r)")
		g.P("if err != nil {\nreturn err\n}")
		g.P(name, " = string(s)")
		g.P("}")
	case ast.TypeBytes:
		g.P("if typ != wire.BytesType {")
		g.P("if err := wire.SkipValue(r, typ); err != nil {\nreturn err\n}")
		g.P("} else {")
		g.P("s, err := wire.ReadBytes(r)")
		g.P("if err != nil {\nreturn err\n}")
		g.P(name, " = pbval.FromBytes(append([]byte(nil), s...))")
		g.P("}")
	case ast.TypeMessage:
		goType, _ := messageGoType(f)
		g.P("if typ != wire.BytesType {")
		g.P("if err := wire.SkipValue(r, typ); err != nil {\nreturn err\n}")
		g.P("} else {")
		g.P("s, err := wire.ReadBytes(r)")
		g.P("if err != nil {\nreturn err\n}")
		g.P("if ", name, " == nil {")
		g.P(name, " = &", goType, "{}")
		g.P("}")
		g.P("if err := ", name, ".UnmarshalBinary(s); err != nil {\nreturn err\n}")
		g.P("}")
	default:
		streamExpr, err := streamConsumeExprForScalar(f)
		if err != nil {
			return err
		}
		g.P("if typ != ", wireTypeConst(f.Type), " {")
		g.P("if err := wire.SkipValue(r, typ); err != nil {\nreturn err\n}")
		g.P("} else {")
		g.P(streamExpr)
		g.P(name, " = v")
		g.P("}")
	}
	return nil
}

// writeOneofMemberUnmarshalCaseStream mirrors writeOneofMemberUnmarshalCase
// for the cursor-based decode loop.
func writeOneofMemberUnmarshalCaseStream(g *gen.File, goName, oneofFieldName string, f *ast.Field) error {
	g.P("case ", fmt.Sprintf("%d", f.Number), ":")
	wrapperName := genmodel.OneofWrapperName(goName, f.Name)
	fieldName := genmodel.OneofFieldName(f.Name)
	target := "m." + oneofFieldName

	switch f.Type {
	case ast.TypeString:
		g.P("if typ != wire.BytesType {")
		g.P("if err := wire.SkipValue(r, typ); err != nil {\nreturn err\n}")
		g.P("} else {")
		g.P("s, err := wire.ReadBytes(r)")
		g.P("if err != nil {\nreturn err\n}")
		g.P(target, " = &", wrapperName, "{", fieldName, ": string(s)}")
		g.P("}")
	case ast.TypeBytes:
		g.P("if typ != wire.BytesType {")
		g.P("if err := wire.SkipValue(r, typ); err != nil {\nreturn err\n}")
		g.P("} else {")
		g.P("s, err := wire.ReadBytes(r)")
		g.P("if err != nil {\nreturn err\n}")
		g.P(target, " = &", wrapperName, "{", fieldName, ": pbval.FromBytes(append([]byte(nil), s...))}")
		g.P("}")
	case ast.TypeMessage:
		goType, _ := messageGoType(f)
		g.P("if typ != wire.BytesType {")
		g.P("if err := wire.SkipValue(r, typ); err != nil {\nreturn err\n}")
		g.P("} else {")
		g.P("s, err := wire.ReadBytes(r)")
		g.P("if err != nil {\nreturn err\n}")
		g.P("elem := &", goType, "{}")
		g.P("if err := elem.UnmarshalBinary(s); err != nil {\nreturn err\n}")
		g.P(target, " = &", wrapperName, "{", fieldName, ": elem}")
		g.P("}")
	default:
		streamExpr, err := streamConsumeExprForScalar(f)
		if err != nil {
			return err
		}
		g.P("if typ != ", wireTypeConst(f.Type), " {")
		g.P("if err := wire.SkipValue(r, typ); err != nil {\nreturn err\n}")
		g.P("} else {")
		g.P(streamExpr)
		g.P(target, " = &", wrapperName, "{", fieldName, ": v}")
		g.P("}")
	}
	return nil
}

// streamConsumeExprForScalar mirrors consumeExprForScalar's per-type
// decoding, reading a single value through a pbio.Reader via wire's
// cursor-based Read* primitives instead of slicing a []byte.
func streamConsumeExprForScalar(f *ast.Field) (string, error) {
	switch f.Type {
	case ast.TypeInt32, ast.TypeInt64, ast.TypeUint32, ast.TypeUint64, ast.TypeEnum:
		return "raw, err := wire.ReadVarint(r)\nif err != nil {\nreturn err\n}\nv := " + scalarAssignExpr(f, "raw"), nil
	case ast.TypeBool:
		return "raw, err := wire.ReadVarint(r)\nif err != nil {\nreturn err\n}\nv := raw != 0", nil
	case ast.TypeSint32:
		return "raw, err := wire.ReadVarint(r)\nif err != nil {\nreturn err\n}\nv := wire.DecodeZigZag32(uint32(raw))", nil
	case ast.TypeSint64:
		return "raw, err := wire.ReadVarint(r)\nif err != nil {\nreturn err\n}\nv := wire.DecodeZigZag64(raw)", nil
	case ast.TypeFixed32, ast.TypeSfixed32:
		return "raw, err := wire.ReadFixed32(r)\nif err != nil {\nreturn err\n}\nv := " + scalarAssignExpr(f, "raw"), nil
	case ast.TypeFixed64, ast.TypeSfixed64:
		return "raw, err := wire.ReadFixed64(r)\nif err != nil {\nreturn err\n}\nv := " + scalarAssignExpr(f, "raw"), nil
	case ast.TypeFloat:
		return "raw, err := wire.ReadFixed32(r)\nif err != nil {\nreturn err\n}\nv := math.Float32frombits(raw)", nil
	case ast.TypeDouble:
		return "raw, err := wire.ReadFixed64(r)\nif err != nil {\nreturn err\n}\nv := math.Float64frombits(raw)", nil
	}
	return "", fmt.Errorf("unhandled scalar type for streaming decode: %v", f.Type)
}

// writeOneofSize emits, per oneof declared on m, a type switch over the
// discriminator interface adding the size of whichever variant is set. A
// selected oneof variant is always encoded, even when it holds its type's
// zero value, since presence is carried by the variant selection rather
// than by value (unlike a plain singular field).
func writeOneofSize(g *gen.File, goName string, m *ast.Message) {
	for oi, o := range m.Oneofs {
		g.P("switch v := m.", unexported(o.Name), ".(type) {")
		for _, f := range m.Fields {
			if f.OneofIndex != oi {
				continue
			}
			wrapperName := genmodel.OneofWrapperName(goName, f.Name)
			fieldName := genmodel.OneofFieldName(f.Name)
			g.P("case *", wrapperName, ":")
			writeOneofMemberSize(g, f, "v."+fieldName)
		}
		g.P("}")
	}
}

func writeOneofMemberSize(g *gen.File, f *ast.Field, expr string) {
	tagSize := fmt.Sprintf("wire.SizeTag(%d)", f.Number)
	switch f.Type {
	case ast.TypeMessage:
		g.P("if ", expr, " != nil {")
		g.P("inner := ", expr, ".SizeBinary()")
		g.P("n += ", tagSize, " + wire.SizeVarint(uint64(inner)) + inner")
		g.P("}")
	case ast.TypeString:
		g.P("n += ", tagSize, " + wire.SizeBytes(len(", expr, "))")
	case ast.TypeBytes:
		g.P("n += ", tagSize, " + wire.SizeBytes(", expr, ".Len())")
	default:
		g.P("n += ", tagSize, " + ", sizeExprForScalar(f, expr))
	}
}

// writeOneofMarshal mirrors writeOneofSize for appendBinary.
func writeOneofMarshal(g *gen.File, goName string, m *ast.Message) {
	for oi, o := range m.Oneofs {
		g.P("switch v := m.", unexported(o.Name), ".(type) {")
		for _, f := range m.Fields {
			if f.OneofIndex != oi {
				continue
			}
			wrapperName := genmodel.OneofWrapperName(goName, f.Name)
			fieldName := genmodel.OneofFieldName(f.Name)
			g.P("case *", wrapperName, ":")
			writeOneofMemberMarshal(g, f, "v."+fieldName)
		}
		g.P("}")
	}
}

func writeOneofMemberMarshal(g *gen.File, f *ast.Field, expr string) {
	num := fmt.Sprintf("%d", f.Number)
	switch f.Type {
	case ast.TypeMessage:
		g.P("if ", expr, " != nil {")
		g.P("b = wire.AppendTag(b, ", num, ", wire.BytesType)")
		g.P("b = wire.AppendVarint(b, uint64(", expr, ".SizeBinary()))")
		g.P("if b, err = ", expr, ".appendBinary(b); err != nil {")
		g.P("return nil, err")
		g.P("}")
		g.P("}")
	case ast.TypeString:
		g.P("b = wire.AppendTag(b, ", num, ", wire.BytesType)")
		g.P("b = wire.AppendBytes(b, []byte(", expr, "))")
	case ast.TypeBytes:
		g.P("b = wire.AppendTag(b, ", num, ", wire.BytesType)")
		g.P("b = wire.AppendBytes(b, ", expr, ".ToArray())")
	default:
		g.P("b = wire.AppendTag(b, ", num, ", ", wireTypeConst(f.Type), ")")
		g.P("b = ", appendExprForScalar(f, "b", expr))
	}
}

// writeOneofMemberUnmarshalCase emits the wire-tag case for one oneof
// variant: decode the value the same way a singular field would, then wrap
// it and assign it to the discriminator field, replacing whatever variant
// (if any) was previously set.
func writeOneofMemberUnmarshalCase(g *gen.File, goName, oneofFieldName string, f *ast.Field) error {
	g.P("case ", fmt.Sprintf("%d", f.Number), ":")
	wrapperName := genmodel.OneofWrapperName(goName, f.Name)
	fieldName := genmodel.OneofFieldName(f.Name)
	target := "m." + oneofFieldName

	switch f.Type {
	case ast.TypeString:
		g.P("if typ != wire.BytesType {")
		writeSkipMismatchedWireType(g)
		g.P("} else {")
		g.P("s, n := wire.ConsumeBytes(b)")
		g.P("if n < 0 {")
		g.P(`return pberrs.New(pberrs.MalformedWire, "truncated string field")`)
		g.P("}")
		g.P(target, " = &", wrapperName, "{", fieldName, ": string(s)}")
		g.P("b = b[n:]")
		g.P("}")
	case ast.TypeBytes:
		g.P("if typ != wire.BytesType {")
		writeSkipMismatchedWireType(g)
		g.P("} else {")
		g.P("s, n := wire.ConsumeBytes(b)")
		g.P("if n < 0 {")
		g.P(`return pberrs.New(pberrs.MalformedWire, "truncated bytes field")`)
		g.P("}")
		g.P(target, " = &", wrapperName, "{", fieldName, ": pbval.FromBytes(append([]byte(nil), s...))}")
		g.P("b = b[n:]")
		g.P("}")
	case ast.TypeMessage:
		goType, _ := messageGoType(f)
		g.P("if typ != wire.BytesType {")
		writeSkipMismatchedWireType(g)
		g.P("} else {")
		g.P("s, n := wire.ConsumeBytes(b)")
		g.P("if n < 0 {")
		g.P(`return pberrs.New(pberrs.MalformedWire, "truncated message field")`)
		g.P("}")
		g.P("elem := &", goType, "{}")
		g.P("if err := elem.UnmarshalBinary(s); err != nil {")
		g.P("return err")
		g.P("}")
		g.P(target, " = &", wrapperName, "{", fieldName, ": elem}")
		g.P("b = b[n:]")
		g.P("}")
	default:
		readExpr, advance, err := consumeExprForScalar(f)
		if err != nil {
			return err
		}
		g.P("if typ != ", wireTypeConst(f.Type), " {")
		writeSkipMismatchedWireType(g)
		g.P("} else {")
		g.P("payload := b")
		g.P(readExpr)
		g.P(target, " = &", wrapperName, "{", fieldName, ": v}")
		g.P("b = payload[", advance, ":]")
		g.P("}")
	}
	return nil
}

// writeSkipMismatchedWireType emits the unknown-field skip-and-discard
// path for a field whose number is recognized but whose on-wire type
// doesn't match any encoding this field's declared type can produce
// (including, for repeated scalars, the packed alternative). The field is
// never misinterpreted by assuming the schema's "canonical" wire type.
func writeSkipMismatchedWireType(g *gen.File) {
	g.P("skip := wire.ConsumeFieldValue(num, typ, b)")
	g.P("if skip < 0 {")
	g.P(`return pberrs.New(pberrs.MalformedWire, "invalid field value for field %d", num)`)
	g.P("}")
	g.P("b = b[skip:]")
}

func writeFieldSize(g *gen.File, f *ast.Field) {
	name := "m." + unexported(f.Name)
	tagSize := fmt.Sprintf("wire.SizeTag(%d)", f.Number)

	if f.Label == ast.LabelRepeated {
		if f.Type.IsScalar() && f.Type != ast.TypeString && f.Type != ast.TypeBytes {
			g.P("if len(", name, ") > 0 {")
			g.P("var inner int")
			g.P("for _, v := range ", name, " {")
			g.P("inner += ", sizeExprForScalar(f, "v"))
			g.P("}")
			g.P("n += ", tagSize, " + wire.SizeVarint(uint64(inner)) + inner")
			g.P("}")
			return
		}
		g.P("for _, v := range ", name, " {")
		g.P("_ = v")
		g.P("n += ", tagSize, " + ", sizeExprForElement(f, "v"))
		g.P("}")
		return
	}

	switch f.Type {
	case ast.TypeMessage:
		g.P("if ", name, " != nil {")
		g.P("inner := ", name, ".SizeBinary()")
		g.P("n += ", tagSize, " + wire.SizeVarint(uint64(inner)) + inner")
		g.P("}")
	case ast.TypeString:
		g.P("if len(", name, ") > 0 {")
		g.P("n += ", tagSize, " + wire.SizeBytes(len(", name, "))")
		g.P("}")
	case ast.TypeBytes:
		g.P("if ", name, ".Len() > 0 {")
		g.P("n += ", tagSize, " + wire.SizeBytes(", name, ".Len())")
		g.P("}")
	default:
		zero := zeroCheck(f, name)
		g.P("if ", zero, " {")
		g.P("n += ", tagSize, " + ", sizeExprForScalar(f, name))
		g.P("}")
	}
}

func sizeExprForScalar(f *ast.Field, expr string) string {
	switch f.Type {
	case ast.TypeInt32, ast.TypeInt64, ast.TypeUint32, ast.TypeUint64, ast.TypeBool, ast.TypeEnum:
		return fmt.Sprintf("wire.SizeVarint(uint64(%s))", expr)
	case ast.TypeSint32:
		return fmt.Sprintf("wire.SizeVarint(uint64(wire.EncodeZigZag32(%s)))", expr)
	case ast.TypeSint64:
		return fmt.Sprintf("wire.SizeVarint(uint64(wire.EncodeZigZag64(%s)))", expr)
	case ast.TypeFixed32, ast.TypeSfixed32, ast.TypeFloat:
		return "4"
	case ast.TypeFixed64, ast.TypeSfixed64, ast.TypeDouble:
		return "8"
	}
	return "0"
}

func sizeExprForElement(f *ast.Field, expr string) string {
	switch f.Type {
	case ast.TypeString:
		return fmt.Sprintf("wire.SizeBytes(len(%s))", expr)
	case ast.TypeBytes:
		return fmt.Sprintf("wire.SizeBytes(%s.Len())", expr)
	case ast.TypeMessage:
		return fmt.Sprintf("wire.SizeVarint(uint64(%s.SizeBinary())) + %s.SizeBinary()", expr, expr)
	}
	return sizeExprForScalar(f, expr)
}

func zeroCheck(f *ast.Field, name string) string {
	switch f.Type {
	case ast.TypeBool:
		return name
	default:
		return name + " != 0"
	}
}

func writeFieldMarshal(g *gen.File, f *ast.Field) {
	name := "m." + unexported(f.Name)
	num := fmt.Sprintf("%d", f.Number)

	if f.Label == ast.LabelRepeated {
		if f.Type.IsScalar() && f.Type != ast.TypeString && f.Type != ast.TypeBytes {
			g.P("if len(", name, ") > 0 {")
			g.P("b = wire.AppendTag(b, ", num, ", wire.BytesType)")
			g.P("var inner []byte")
			g.P("for _, v := range ", name, " {")
			g.P("inner = ", appendExprForScalar(f, "inner", "v"))
			g.P("}")
			g.P("b = wire.AppendBytes(b, inner)")
			g.P("}")
			return
		}
		g.P("for _, v := range ", name, " {")
		writeElementMarshal(g, f, num, "v")
		g.P("}")
		return
	}

	switch f.Type {
	case ast.TypeMessage:
		g.P("if ", name, " != nil {")
		g.P("b = wire.AppendTag(b, ", num, ", wire.BytesType)")
		g.P("b = wire.AppendVarint(b, uint64(", name, ".SizeBinary()))")
		g.P("if b, err = ", name, ".appendBinary(b); err != nil {")
		g.P("return nil, err")
		g.P("}")
		g.P("}")
	case ast.TypeString:
		g.P("if len(", name, ") > 0 {")
		g.P("b = wire.AppendTag(b, ", num, ", wire.BytesType)")
		g.P("b = wire.AppendBytes(b, []byte(", name, "))")
		g.P("}")
	case ast.TypeBytes:
		g.P("if ", name, ".Len() > 0 {")
		g.P("b = wire.AppendTag(b, ", num, ", wire.BytesType)")
		g.P("b = wire.AppendBytes(b, ", name, ".ToArray())")
		g.P("}")
	default:
		g.P("if ", zeroCheck(f, name), " {")
		g.P("b = wire.AppendTag(b, ", num, ", ", wireTypeConst(f.Type), ")")
		g.P("b = ", appendExprForScalar(f, "b", name))
		g.P("}")
	}
}

func writeElementMarshal(g *gen.File, f *ast.Field, num, expr string) {
	switch f.Type {
	case ast.TypeString:
		g.P("b = wire.AppendTag(b, ", num, ", wire.BytesType)")
		g.P("b = wire.AppendBytes(b, []byte(", expr, "))")
	case ast.TypeBytes:
		g.P("b = wire.AppendTag(b, ", num, ", wire.BytesType)")
		g.P("b = wire.AppendBytes(b, ", expr, ".ToArray())")
	case ast.TypeMessage:
		g.P("b = wire.AppendTag(b, ", num, ", wire.BytesType)")
		g.P("b = wire.AppendVarint(b, uint64(", expr, ".SizeBinary()))")
		g.P("if b, err = ", expr, ".appendBinary(b); err != nil {")
		g.P("return nil, err")
		g.P("}")
	default:
		g.P("b = wire.AppendTag(b, ", num, ", ", wireTypeConst(f.Type), ")")
		g.P("b = ", appendExprForScalar(f, "b", expr))
	}
}

func appendExprForScalar(f *ast.Field, buf, expr string) string {
	switch f.Type {
	case ast.TypeInt32, ast.TypeInt64:
		return fmt.Sprintf("wire.AppendVarint(%s, uint64(%s))", buf, expr)
	case ast.TypeUint32, ast.TypeUint64:
		return fmt.Sprintf("wire.AppendVarint(%s, uint64(%s))", buf, expr)
	case ast.TypeBool:
		return fmt.Sprintf("wire.AppendVarint(%s, boolToUint64(%s))", buf, expr)
	case ast.TypeEnum:
		return fmt.Sprintf("wire.AppendVarint(%s, uint64(%s))", buf, expr)
	case ast.TypeSint32:
		return fmt.Sprintf("wire.AppendVarint(%s, uint64(wire.EncodeZigZag32(%s)))", buf, expr)
	case ast.TypeSint64:
		return fmt.Sprintf("wire.AppendVarint(%s, uint64(wire.EncodeZigZag64(%s)))", buf, expr)
	case ast.TypeFixed32, ast.TypeSfixed32:
		return fmt.Sprintf("wire.AppendFixed32(%s, uint32(%s))", buf, expr)
	case ast.TypeFixed64, ast.TypeSfixed64:
		return fmt.Sprintf("wire.AppendFixed64(%s, uint64(%s))", buf, expr)
	case ast.TypeFloat:
		return fmt.Sprintf("wire.AppendFloat32(%s, %s)", buf, expr)
	case ast.TypeDouble:
		return fmt.Sprintf("wire.AppendFloat64(%s, %s)", buf, expr)
	}
	return buf
}

func wireTypeConst(t ast.FieldType) string {
	switch t.WireType() {
	case 0:
		return "wire.VarintType"
	case 1:
		return "wire.Fixed64Type"
	case 5:
		return "wire.Fixed32Type"
	}
	return "wire.BytesType"
}

func writeFieldUnmarshalCase(g *gen.File, f *ast.Field) error {
	name := "m." + unexported(f.Name)
	g.P("case ", fmt.Sprintf("%d", f.Number), ":")

	readExpr, advance, err := consumeExprForScalar(f)
	if err != nil {
		return err
	}

	if f.Label == ast.LabelRepeated {
		switch f.Type {
		case ast.TypeString:
			g.P("if typ != wire.BytesType {")
			writeSkipMismatchedWireType(g)
			g.P("} else {")
			g.P("s, n := wire.ConsumeBytes(b)")
			g.P("if n < 0 {")
			g.P(`return pberrs.New(pberrs.MalformedWire, "truncated string field")`)
			g.P("}")
			g.P(name, " = append(", name, ", string(s))")
			g.P("b = b[n:]")
			g.P("}")
		case ast.TypeBytes:
			g.P("if typ != wire.BytesType {")
			writeSkipMismatchedWireType(g)
			g.P("} else {")
			g.P("s, n := wire.ConsumeBytes(b)")
			g.P("if n < 0 {")
			g.P(`return pberrs.New(pberrs.MalformedWire, "truncated bytes field")`)
			g.P("}")
			g.P(name, " = append(", name, ", pbval.FromBytes(append([]byte(nil), s...)))")
			g.P("b = b[n:]")
			g.P("}")
		case ast.TypeMessage:
			goType, _ := messageGoType(f)
			g.P("if typ != wire.BytesType {")
			writeSkipMismatchedWireType(g)
			g.P("} else {")
			g.P("s, n := wire.ConsumeBytes(b)")
			g.P("if n < 0 {")
			g.P(`return pberrs.New(pberrs.MalformedWire, "truncated message field")`)
			g.P("}")
			g.P("elem := &", goType, "{}")
			g.P("if err := elem.UnmarshalBinary(s); err != nil {")
			g.P("return err")
			g.P("}")
			g.P(name, " = append(", name, ", elem)")
			g.P("b = b[n:]")
			g.P("}")
		default:
			g.P("if typ == wire.BytesType {")
			g.P("payload, n := wire.ConsumeBytes(b)")
			g.P("if n < 0 {")
			g.P(`return pberrs.New(pberrs.MalformedWire, "truncated packed field")`)
			g.P("}")
			g.P("for len(payload) > 0 {")
			g.P(readExpr)
			g.P(name, " = append(", name, ", v)")
			g.P("payload = payload[", advance, ":]")
			g.P("}")
			g.P("b = b[n:]")
			g.P("} else if typ == ", wireTypeConst(f.Type), " {")
			g.P("payload := b")
			g.P(readExpr)
			g.P(name, " = append(", name, ", v)")
			g.P("b = payload[", advance, ":]")
			g.P("} else {")
			writeSkipMismatchedWireType(g)
			g.P("}")
		}
		return nil
	}

	switch f.Type {
	case ast.TypeString:
		g.P("if typ != wire.BytesType {")
		writeSkipMismatchedWireType(g)
		g.P("} else {")
		g.P("s, n := wire.ConsumeBytes(b)")
		g.P("if n < 0 {")
		g.P(`return pberrs.New(pberrs.MalformedWire, "truncated string field")`)
		g.P("}")
		g.P(name, " = string(s)")
		g.P("b = b[n:]")
		g.P("}")
	case ast.TypeBytes:
		g.P("if typ != wire.BytesType {")
		writeSkipMismatchedWireType(g)
		g.P("} else {")
		g.P("s, n := wire.ConsumeBytes(b)")
		g.P("if n < 0 {")
		g.P(`return pberrs.New(pberrs.MalformedWire, "truncated bytes field")`)
		g.P("}")
		g.P(name, " = pbval.FromBytes(append([]byte(nil), s...))")
		g.P("b = b[n:]")
		g.P("}")
	case ast.TypeMessage:
		goType, _ := messageGoType(f)
		g.P("if typ != wire.BytesType {")
		writeSkipMismatchedWireType(g)
		g.P("} else {")
		g.P("s, n := wire.ConsumeBytes(b)")
		g.P("if n < 0 {")
		g.P(`return pberrs.New(pberrs.MalformedWire, "truncated message field")`)
		g.P("}")
		g.P("if ", name, " == nil {")
		g.P(name, " = &", goType, "{}")
		g.P("}")
		g.P("if err := ", name, ".UnmarshalBinary(s); err != nil {")
		g.P("return err")
		g.P("}")
		g.P("b = b[n:]")
		g.P("}")
	default:
		g.P("if typ != ", wireTypeConst(f.Type), " {")
		writeSkipMismatchedWireType(g)
		g.P("} else {")
		g.P("payload := b")
		g.P(readExpr)
		g.P(name, " = v")
		g.P("b = payload[", advance, ":]")
		g.P("}")
	}
	return nil
}

func scalarAssignExpr(f *ast.Field, v string) string {
	switch f.Type {
	case ast.TypeInt32, ast.TypeSint32, ast.TypeSfixed32:
		return fmt.Sprintf("int32(%s)", v)
	case ast.TypeInt64, ast.TypeSint64, ast.TypeSfixed64:
		return fmt.Sprintf("int64(%s)", v)
	case ast.TypeUint32, ast.TypeFixed32:
		return fmt.Sprintf("uint32(%s)", v)
	case ast.TypeUint64, ast.TypeFixed64:
		return fmt.Sprintf("uint64(%s)", v)
	case ast.TypeEnum:
		goType, _ := messageGoType(f)
		return fmt.Sprintf("%s(int32(%s))", goType, v)
	}
	return v
}

func messageGoType(f *ast.Field) (string, error) {
	return genmodel.GoName(strings.TrimPrefix(f.TypeName, ".")), nil
}

// consumeExprForScalar returns a statement (assigning to a local "v") that
// consumes one scalar value of f's type from a local []byte named "payload",
// plus the Go expression for how many bytes it consumed.
func consumeExprForScalar(f *ast.Field) (stmt string, advance string, err error) {
	switch f.Type {
	case ast.TypeInt32, ast.TypeInt64, ast.TypeUint32, ast.TypeUint64, ast.TypeEnum:
		return "raw, n := wire.ConsumeVarint(payload)\nif n < 0 {\nreturn pberrs.New(pberrs.MalformedWire, \"invalid varint\")\n}\nv := " + scalarAssignExpr(f, "raw"), "n", nil
	case ast.TypeBool:
		return "raw, n := wire.ConsumeVarint(payload)\nif n < 0 {\nreturn pberrs.New(pberrs.MalformedWire, \"invalid varint\")\n}\nv := raw != 0", "n", nil
	case ast.TypeSint32:
		return "raw, n := wire.ConsumeVarint(payload)\nif n < 0 {\nreturn pberrs.New(pberrs.MalformedWire, \"invalid varint\")\n}\nv := wire.DecodeZigZag32(uint32(raw))", "n", nil
	case ast.TypeSint64:
		return "raw, n := wire.ConsumeVarint(payload)\nif n < 0 {\nreturn pberrs.New(pberrs.MalformedWire, \"invalid varint\")\n}\nv := wire.DecodeZigZag64(raw)", "n", nil
	case ast.TypeFixed32, ast.TypeSfixed32:
		return "raw, n := wire.ConsumeFixed32(payload)\nif n < 0 {\nreturn pberrs.New(pberrs.MalformedWire, \"invalid fixed32\")\n}\nv := " + scalarAssignExpr(f, "raw"), "n", nil
	case ast.TypeFixed64, ast.TypeSfixed64:
		return "raw, n := wire.ConsumeFixed64(payload)\nif n < 0 {\nreturn pberrs.New(pberrs.MalformedWire, \"invalid fixed64\")\n}\nv := " + scalarAssignExpr(f, "raw"), "n", nil
	case ast.TypeFloat:
		return "raw, n := wire.ConsumeFixed32(payload)\nif n < 0 {\nreturn pberrs.New(pberrs.MalformedWire, \"invalid fixed32\")\n}\nv := math.Float32frombits(raw)", "n", nil
	case ast.TypeDouble:
		return "raw, n := wire.ConsumeFixed64(payload)\nif n < 0 {\nreturn pberrs.New(pberrs.MalformedWire, \"invalid fixed64\")\n}\nv := math.Float64frombits(raw)", "n", nil
	}
	return "", "", fmt.Errorf("unhandled scalar type %v", f.Type)
}

func fileUsesBytes(f *ast.File) bool {
	for _, m := range f.Messages {
		if messageUsesType(m, ast.TypeBytes) {
			return true
		}
	}
	return false
}

func fileUsesFloat(f *ast.File) bool {
	for _, m := range f.Messages {
		if messageUsesType(m, ast.TypeFloat) || messageUsesType(m, ast.TypeDouble) {
			return true
		}
	}
	return false
}

// messageHasMessageField reports whether m has any field (singular or
// repeated) whose type is a nested message, the only case whose marshal code
// assigns to the local "err".
func messageHasMessageField(m *ast.Message) bool {
	for _, f := range m.Fields {
		if f.Type == ast.TypeMessage {
			return true
		}
	}
	return false
}

func messageUsesType(m *ast.Message, t ast.FieldType) bool {
	for _, fld := range m.Fields {
		if fld.Type == t {
			return true
		}
	}
	for _, nested := range m.Nested {
		if messageUsesType(nested, t) {
			return true
		}
	}
	return false
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
