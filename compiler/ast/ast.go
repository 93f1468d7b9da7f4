// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ast defines the in-memory representation of a parsed proto3
// schema file, the way types/descriptor models a FileDescriptorProto and
// reflect/protodesc walks one into a richer tree.
package ast

import "github.com/hashgraph/pbj-go/runtime/wire"

// File is one parsed .proto file.
type File struct {
	Name string // path relative to the proto root, e.g. "a/b.proto"
	Pkg  string // proto package, e.g. "a.b.c"

	// TargetPackage is the Go package name to emit into, taken from the
	// non-standard "<<<target_package = \"...\">>>" directive when present.
	// Empty means derive it from Pkg the way protoc-gen-go derives one from
	// the proto package when go_package is absent.
	TargetPackage string

	Messages []*Message
	Enums    []*Enum

	Doc string // file-level leading doc comment, if any
}

// Message is one message declaration, possibly nested inside another.
type Message struct {
	Name     string // simple name, e.g. "Inner"
	FullName string // dotted name within the file's package, e.g. "Outer.Inner"; the proto package is not included
	Doc      string

	Fields  []*Field
	Oneofs  []*Oneof
	Nested  []*Message
	Enums   []*Enum
	Reserved []ReservedRange

	File *File // the file that declares it
}

// Field is one field declaration within a Message.
type Field struct {
	Name     string
	JSONName string // lowerCamelCase, derived unless overridden
	Number   wire.Number
	Type     FieldType
	TypeName string // fully-qualified message/enum name, when Type is TypeMessage/TypeEnum
	Label    Label
	OneofIndex int // index into Message.Oneofs, or -1
	Deprecated bool
	Doc      string
}

// Oneof is a oneof declaration: a discriminator plus the fields that share
// its storage.
type Oneof struct {
	Name string
	Doc  string
}

// ReservedRange is an inclusive-exclusive range of reserved field numbers,
// or a reserved name when Name is non-empty.
type ReservedRange struct {
	Start, End int32 // [Start, End), per descriptor.proto convention
	Name       string
}

// Enum is one enum declaration.
type Enum struct {
	Name     string
	FullName string
	Doc      string
	Values   []*EnumValue
	File     *File
}

// EnumValue is one member of an Enum.
type EnumValue struct {
	Name   string
	Number int32
	Doc    string
}

// FieldType is the scalar/message/enum kind of a Field.
type FieldType int

const (
	TypeDouble FieldType = iota
	TypeFloat
	TypeInt32
	TypeInt64
	TypeUint32
	TypeUint64
	TypeSint32
	TypeSint64
	TypeFixed32
	TypeFixed64
	TypeSfixed32
	TypeSfixed64
	TypeBool
	TypeString
	TypeBytes
	TypeMessage
	TypeEnum
)

// Label is the repeated/optional/singular cardinality of a Field.
type Label int

const (
	LabelSingular Label = iota
	LabelOptional
	LabelRepeated
)

// WireType returns the wire type used to encode a single value of t. The
// length-delimited packed form of a repeated scalar is not reflected here.
func (t FieldType) WireType() wire.Type {
	switch t {
	case TypeInt32, TypeInt64, TypeUint32, TypeUint64, TypeSint32, TypeSint64, TypeBool, TypeEnum:
		return wire.VarintType
	case TypeFixed32, TypeSfixed32, TypeFloat:
		return wire.Fixed32Type
	case TypeFixed64, TypeSfixed64, TypeDouble:
		return wire.Fixed64Type
	case TypeString, TypeBytes, TypeMessage:
		return wire.BytesType
	}
	return wire.VarintType
}

// IsPackable reports whether t may use the packed repeated encoding.
func (t FieldType) IsPackable() bool {
	return t.WireType() != wire.BytesType
}

// IsScalar reports whether t is neither a message nor an enum.
func (t FieldType) IsScalar() bool {
	return t != TypeMessage && t != TypeEnum
}
