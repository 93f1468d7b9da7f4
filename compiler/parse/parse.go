// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package parse implements a hand-rolled recursive-descent parser for the
// subset of proto3 this toolchain supports: messages (arbitrarily nested),
// enums, oneof groups, reserved ranges/names, and the repeated/optional
// field labels, plus the non-standard "<<<target_package = \"...\">>>"
// directive. It deliberately does not implement services, extensions,
// custom options, or imports — grammar features the specification leaves
// unaddressed and this toolchain has no generator stage for.
package parse

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/hashgraph/pbj-go/compiler/ast"
	"github.com/hashgraph/pbj-go/internal/pberrs"
	"github.com/hashgraph/pbj-go/runtime/wire"
)

// File parses the contents of a .proto file named name (used for error
// messages) into an *ast.File. Cross-file type references are left
// unresolved; use compiler/lookup to resolve them once every file in a
// build is parsed.
func File(name string, src []byte) (*ast.File, error) {
	p := &parser{lex: newTokenizer(name, src)}
	f, err := p.parseFile()
	if err != nil {
		return nil, err
	}
	f.Name = name
	return f, nil
}

type parser struct {
	lex *tokenizer
	tok token
}

func (p *parser) next() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) parseFile() (*ast.File, error) {
	f := &ast.File{}
	if err := p.next(); err != nil {
		return nil, err
	}
	for p.tok.kind != tokEOF {
		switch {
		case p.tok.is(tokIdent, "syntax"):
			if err := p.skipStatement(); err != nil {
				return nil, err
			}
		case p.tok.is(tokIdent, "package"):
			pkg, err := p.parsePackage()
			if err != nil {
				return nil, err
			}
			f.Pkg = pkg
		case p.tok.is(tokIdent, "import"):
			if err := p.skipStatement(); err != nil {
				return nil, err
			}
		case p.tok.is(tokIdent, "option"):
			if err := p.skipStatement(); err != nil {
				return nil, err
			}
		case p.tok.is(tokIdent, "message"):
			m, err := p.parseMessage(f, "")
			if err != nil {
				return nil, err
			}
			f.Messages = append(f.Messages, m)
		case p.tok.is(tokIdent, "enum"):
			e, err := p.parseEnum(f, "")
			if err != nil {
				return nil, err
			}
			f.Enums = append(f.Enums, e)
		case p.tok.kind == tokDirective:
			if err := applyDirective(f, p.tok.text); err != nil {
				return nil, err
			}
			if err := p.next(); err != nil {
				return nil, err
			}
		default:
			return nil, p.errorf("unexpected token %q at file scope", p.tok.text)
		}
	}
	return f, nil
}

// applyDirective parses "target_package = \"value\"" out of a <<<...>>>
// directive body and applies it to f.
func applyDirective(f *ast.File, body string) error {
	parts := strings.SplitN(body, "=", 2)
	if len(parts) != 2 {
		return pberrs.New(pberrs.SchemaViolation, "malformed directive %q", body)
	}
	key := strings.TrimSpace(parts[0])
	val := strings.TrimSpace(parts[1])
	val = strings.Trim(val, `"`)
	switch key {
	case "target_package":
		f.TargetPackage = val
	default:
		return pberrs.New(pberrs.SchemaViolation, "unknown directive key %q", key)
	}
	return nil
}

func (p *parser) parsePackage() (string, error) {
	if err := p.next(); err != nil {
		return "", err
	}
	var b strings.Builder
	for {
		if p.tok.kind != tokIdent {
			return "", p.errorf("expected identifier in package name")
		}
		b.WriteString(p.tok.text)
		if err := p.next(); err != nil {
			return "", err
		}
		if p.tok.kind == tokDot {
			b.WriteByte('.')
			if err := p.next(); err != nil {
				return "", err
			}
			continue
		}
		break
	}
	return b.String(), p.expect(tokSemi)
}

// skipStatement consumes tokens up to and including the next top-level ';'.
func (p *parser) skipStatement() error {
	for p.tok.kind != tokSemi {
		if p.tok.kind == tokEOF {
			return p.errorf("unexpected EOF skipping statement")
		}
		if err := p.next(); err != nil {
			return err
		}
	}
	return p.next()
}

func (p *parser) parseMessage(file *ast.File, outerFQN string) (*ast.Message, error) {
	doc := p.tok.doc
	if err := p.next(); err != nil { // consume "message"
		return nil, err
	}
	if p.tok.kind != tokIdent {
		return nil, p.errorf("expected message name")
	}
	m := &ast.Message{Name: p.tok.text, File: file, Doc: doc}
	m.FullName = join(outerFQN, m.Name)
	if err := p.next(); err != nil {
		return nil, err
	}
	if err := p.expect(tokLBrace); err != nil {
		return nil, err
	}
	for p.tok.kind != tokRBrace {
		if err := p.parseMessageMember(file, m); err != nil {
			return nil, err
		}
	}
	return m, p.next()
}

func (p *parser) parseMessageMember(file *ast.File, m *ast.Message) error {
	switch {
	case p.tok.is(tokIdent, "message"):
		nested, err := p.parseMessage(file, m.FullName)
		if err != nil {
			return err
		}
		m.Nested = append(m.Nested, nested)
		return nil
	case p.tok.is(tokIdent, "enum"):
		e, err := p.parseEnum(file, m.FullName)
		if err != nil {
			return err
		}
		m.Enums = append(m.Enums, e)
		return nil
	case p.tok.is(tokIdent, "oneof"):
		return p.parseOneof(m)
	case p.tok.is(tokIdent, "reserved"):
		return p.parseReserved(m)
	case p.tok.is(tokIdent, "option"):
		return p.skipStatement()
	case p.tok.kind == tokSemi:
		return p.next()
	default:
		f, err := p.parseField(-1)
		if err != nil {
			return err
		}
		m.Fields = append(m.Fields, f)
		return nil
	}
}

func (p *parser) parseOneof(m *ast.Message) error {
	if err := p.next(); err != nil { // consume "oneof"
		return err
	}
	if p.tok.kind != tokIdent {
		return p.errorf("expected oneof name")
	}
	o := &ast.Oneof{Name: p.tok.text}
	idx := len(m.Oneofs)
	m.Oneofs = append(m.Oneofs, o)
	if err := p.next(); err != nil {
		return err
	}
	if err := p.expect(tokLBrace); err != nil {
		return err
	}
	for p.tok.kind != tokRBrace {
		f, err := p.parseField(idx)
		if err != nil {
			return err
		}
		m.Fields = append(m.Fields, f)
	}
	return p.next()
}

func (p *parser) parseReserved(m *ast.Message) error {
	if err := p.next(); err != nil { // consume "reserved"
		return err
	}
	if p.tok.kind == tokString {
		for {
			m.Reserved = append(m.Reserved, ast.ReservedRange{Name: p.tok.text})
			if err := p.next(); err != nil {
				return err
			}
			if p.tok.kind != tokComma {
				break
			}
			if err := p.next(); err != nil {
				return err
			}
		}
		return p.expect(tokSemi)
	}
	for {
		start, err := p.parseInt()
		if err != nil {
			return err
		}
		end := start + 1
		if p.tok.is(tokIdent, "to") {
			if err := p.next(); err != nil {
				return err
			}
			if p.tok.is(tokIdent, "max") {
				end = int32(wire.MaxValidNumber) + 1
				if err := p.next(); err != nil {
					return err
				}
			} else {
				e, err := p.parseInt()
				if err != nil {
					return err
				}
				end = e + 1
			}
		}
		m.Reserved = append(m.Reserved, ast.ReservedRange{Start: start, End: end})
		if p.tok.kind != tokComma {
			break
		}
		if err := p.next(); err != nil {
			return err
		}
	}
	return p.expect(tokSemi)
}

func (p *parser) parseInt() (int32, error) {
	if p.tok.kind != tokNumber {
		return 0, p.errorf("expected integer")
	}
	n, err := strconv.ParseInt(p.tok.text, 10, 32)
	if err != nil {
		return 0, p.errorf("invalid integer %q: %v", p.tok.text, err)
	}
	return int32(n), p.next()
}

func (p *parser) parseField(oneofIndex int) (*ast.Field, error) {
	f := &ast.Field{OneofIndex: oneofIndex, Label: ast.LabelSingular, Doc: p.tok.doc}
	if p.tok.is(tokIdent, "repeated") {
		f.Label = ast.LabelRepeated
		if err := p.next(); err != nil {
			return nil, err
		}
	} else if p.tok.is(tokIdent, "optional") {
		f.Label = ast.LabelOptional
		if err := p.next(); err != nil {
			return nil, err
		}
	}

	typ, typeName, err := p.parseType()
	if err != nil {
		return nil, err
	}
	f.Type, f.TypeName = typ, typeName

	if p.tok.kind != tokIdent {
		return nil, p.errorf("expected field name")
	}
	f.Name = p.tok.text
	f.JSONName = toLowerCamel(f.Name)
	if err := p.next(); err != nil {
		return nil, err
	}
	if err := p.expect(tokEquals); err != nil {
		return nil, err
	}
	num, err := p.parseInt()
	if err != nil {
		return nil, err
	}
	f.Number = wire.Number(num)

	if p.tok.kind == tokLBracket {
		if err := p.parseFieldOptions(f); err != nil {
			return nil, err
		}
	}
	return f, p.expect(tokSemi)
}

func (p *parser) parseFieldOptions(f *ast.Field) error {
	if err := p.next(); err != nil { // consume '['
		return err
	}
	for {
		if p.tok.kind != tokIdent {
			return p.errorf("expected option name")
		}
		name := p.tok.text
		if err := p.next(); err != nil {
			return err
		}
		if err := p.expect(tokEquals); err != nil {
			return err
		}
		val := p.tok.text
		if err := p.next(); err != nil {
			return err
		}
		if name == "deprecated" && val == "true" {
			f.Deprecated = true
		}
		if p.tok.kind == tokComma {
			if err := p.next(); err != nil {
				return err
			}
			continue
		}
		break
	}
	return p.expect(tokRBracket)
}

var scalarTypes = map[string]ast.FieldType{
	"double":   ast.TypeDouble,
	"float":    ast.TypeFloat,
	"int32":    ast.TypeInt32,
	"int64":    ast.TypeInt64,
	"uint32":   ast.TypeUint32,
	"uint64":   ast.TypeUint64,
	"sint32":   ast.TypeSint32,
	"sint64":   ast.TypeSint64,
	"fixed32":  ast.TypeFixed32,
	"fixed64":  ast.TypeFixed64,
	"sfixed32": ast.TypeSfixed32,
	"sfixed64": ast.TypeSfixed64,
	"bool":     ast.TypeBool,
	"string":   ast.TypeString,
	"bytes":    ast.TypeBytes,
}

// parseType parses a scalar type name or a (possibly dotted, possibly
// leading-dot) message/enum type reference. Which of the two it is can't be
// known until lookup's Table.ResolveFieldTypes resolves it against the full
// type table, so unknown names are tentatively recorded as TypeMessage and
// corrected to TypeEnum there once resolution succeeds.
func (p *parser) parseType() (ast.FieldType, string, error) {
	if t, ok := scalarTypes[p.tok.text]; ok && p.tok.kind == tokIdent {
		if err := p.next(); err != nil {
			return 0, "", err
		}
		return t, "", nil
	}

	var b strings.Builder
	if p.tok.kind == tokDot {
		b.WriteByte('.')
		if err := p.next(); err != nil {
			return 0, "", err
		}
	}
	for {
		if p.tok.kind != tokIdent {
			return 0, "", p.errorf("expected type name")
		}
		b.WriteString(p.tok.text)
		if err := p.next(); err != nil {
			return 0, "", err
		}
		if p.tok.kind == tokDot {
			b.WriteByte('.')
			if err := p.next(); err != nil {
				return 0, "", err
			}
			continue
		}
		break
	}
	return ast.TypeMessage, b.String(), nil
}

func (p *parser) parseEnum(file *ast.File, outerFQN string) (*ast.Enum, error) {
	if err := p.next(); err != nil { // consume "enum"
		return nil, err
	}
	if p.tok.kind != tokIdent {
		return nil, p.errorf("expected enum name")
	}
	e := &ast.Enum{Name: p.tok.text, File: file}
	e.FullName = join(outerFQN, e.Name)
	if err := p.next(); err != nil {
		return nil, err
	}
	if err := p.expect(tokLBrace); err != nil {
		return nil, err
	}
	for p.tok.kind != tokRBrace {
		if p.tok.is(tokIdent, "option") || p.tok.is(tokIdent, "reserved") {
			if err := p.skipStatement(); err != nil {
				return nil, err
			}
			continue
		}
		if p.tok.kind != tokIdent {
			return nil, p.errorf("expected enum value name")
		}
		v := &ast.EnumValue{Name: p.tok.text}
		if err := p.next(); err != nil {
			return nil, err
		}
		if err := p.expect(tokEquals); err != nil {
			return nil, err
		}
		neg := false
		if p.tok.kind == tokMinus {
			neg = true
			if err := p.next(); err != nil {
				return nil, err
			}
		}
		n, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		if neg {
			n = -n
		}
		v.Number = n
		if p.tok.kind == tokLBracket {
			if err := p.skipFieldOptionsBracket(); err != nil {
				return nil, err
			}
		}
		if err := p.expect(tokSemi); err != nil {
			return nil, err
		}
		e.Values = append(e.Values, v)
	}
	return e, p.next()
}

func (p *parser) skipFieldOptionsBracket() error {
	depth := 0
	for {
		switch p.tok.kind {
		case tokLBracket:
			depth++
		case tokRBracket:
			depth--
		case tokEOF:
			return p.errorf("unexpected EOF in options")
		}
		if err := p.next(); err != nil {
			return err
		}
		if depth == 0 {
			return nil
		}
	}
}

func (p *parser) expect(k tokenKind) error {
	if p.tok.kind != k {
		return p.errorf("expected %v, got %q", k, p.tok.text)
	}
	return p.next()
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return pberrs.New(pberrs.SchemaViolation, "%s:%d: %s", p.lex.name, p.lex.line, fmt.Sprintf(format, args...))
}

func join(scope, name string) string {
	if scope == "" {
		return name
	}
	return scope + "." + name
}

// toLowerCamel derives the canonical JSON name from a proto field name
// (snake_case to lowerCamelCase), matching the JSON mapping's default.
func toLowerCamel(s string) string {
	var b strings.Builder
	upperNext := false
	for i, r := range s {
		switch {
		case r == '_':
			upperNext = true
		case upperNext:
			b.WriteRune(unicode.ToUpper(r))
			upperNext = false
		case i == 0:
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
