// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parse

import (
	"strings"

	"github.com/hashgraph/pbj-go/internal/pberrs"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokDirective // the body of a <<<...>>> comment directive
	tokLBrace
	tokRBrace
	tokLBracket
	tokRBracket
	tokEquals
	tokSemi
	tokComma
	tokDot
	tokMinus
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "EOF"
	case tokIdent:
		return "identifier"
	case tokNumber:
		return "number"
	case tokString:
		return "string literal"
	case tokDirective:
		return "directive"
	case tokLBrace:
		return "'{'"
	case tokRBrace:
		return "'}'"
	case tokLBracket:
		return "'['"
	case tokRBracket:
		return "']'"
	case tokEquals:
		return "'='"
	case tokSemi:
		return "';'"
	case tokComma:
		return "','"
	case tokDot:
		return "'.'"
	case tokMinus:
		return "'-'"
	}
	return "?"
}

type token struct {
	kind tokenKind
	text string
	doc  string // leading line-comments immediately preceding this token
}

func (t token) is(k tokenKind, text string) bool {
	return t.kind == k && t.text == text
}

// tokenizer is a hand-rolled scanner for the proto3 subset this toolchain
// parses, modeled on the single-pass, rune-at-a-time style of the runtime's
// own JSON lexer rather than a generated tool, since the grammar needed here
// is a small fixed subset.
type tokenizer struct {
	name string
	src  []byte
	pos  int
	line int
}

func newTokenizer(name string, src []byte) *tokenizer {
	return &tokenizer{name: name, src: src, line: 1}
}

func (t *tokenizer) next() (token, error) {
	doc, directive, err := t.skipSpaceAndComments()
	if err != nil {
		return token{}, err
	}
	if directive != "" {
		return token{kind: tokDirective, text: directive, doc: doc}, nil
	}
	if t.pos >= len(t.src) {
		return token{kind: tokEOF, doc: doc}, nil
	}

	c := t.src[t.pos]
	switch {
	case c == '{':
		t.pos++
		return token{kind: tokLBrace, text: "{", doc: doc}, nil
	case c == '}':
		t.pos++
		return token{kind: tokRBrace, text: "}", doc: doc}, nil
	case c == '[':
		t.pos++
		return token{kind: tokLBracket, text: "[", doc: doc}, nil
	case c == ']':
		t.pos++
		return token{kind: tokRBracket, text: "]", doc: doc}, nil
	case c == '=':
		t.pos++
		return token{kind: tokEquals, text: "=", doc: doc}, nil
	case c == ';':
		t.pos++
		return token{kind: tokSemi, text: ";", doc: doc}, nil
	case c == ',':
		t.pos++
		return token{kind: tokComma, text: ",", doc: doc}, nil
	case c == '.' && !(t.pos+1 < len(t.src) && isDigit(t.src[t.pos+1])):
		t.pos++
		return token{kind: tokDot, text: ".", doc: doc}, nil
	case c == '-':
		t.pos++
		return token{kind: tokMinus, text: "-", doc: doc}, nil
	case c == '"':
		return t.scanString(doc)
	case isDigit(c) || c == '.':
		return t.scanNumber(doc)
	case isIdentStart(c):
		return t.scanIdent(doc)
	}
	return token{}, t.errorf("unexpected character %q", string(rune(c)))
}

func (t *tokenizer) scanIdent(doc string) (token, error) {
	start := t.pos
	for t.pos < len(t.src) && isIdentCont(t.src[t.pos]) {
		t.pos++
	}
	return token{kind: tokIdent, text: string(t.src[start:t.pos]), doc: doc}, nil
}

func (t *tokenizer) scanNumber(doc string) (token, error) {
	start := t.pos
	for t.pos < len(t.src) && (isDigit(t.src[t.pos]) || t.src[t.pos] == '.' ||
		t.src[t.pos] == 'x' || t.src[t.pos] == 'X' ||
		(t.src[t.pos] >= 'a' && t.src[t.pos] <= 'f') ||
		(t.src[t.pos] >= 'A' && t.src[t.pos] <= 'F')) {
		t.pos++
	}
	return token{kind: tokNumber, text: string(t.src[start:t.pos]), doc: doc}, nil
}

func (t *tokenizer) scanString(doc string) (token, error) {
	t.pos++ // opening quote
	var b strings.Builder
	for {
		if t.pos >= len(t.src) {
			return token{}, t.errorf("unterminated string literal")
		}
		c := t.src[t.pos]
		if c == '"' {
			t.pos++
			break
		}
		if c == '\\' && t.pos+1 < len(t.src) {
			b.WriteByte(t.src[t.pos+1])
			t.pos += 2
			continue
		}
		b.WriteByte(c)
		t.pos++
	}
	return token{kind: tokString, text: b.String(), doc: doc}, nil
}

// skipSpaceAndComments advances past whitespace and comments. It returns
// any "//"-style line comments immediately preceding the next token, joined
// as a doc string, and the body of a "<<<target_package = \"v\">>>"
// directive comment if one was passed over (in which case scanning stops
// there, letting the caller surface it as a token before resuming).
func (t *tokenizer) skipSpaceAndComments() (doc string, directive string, err error) {
	var lines []string
	for t.pos < len(t.src) {
		c := t.src[t.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			t.pos++
		case c == '\n':
			t.pos++
			t.line++
		case c == '/' && t.pos+1 < len(t.src) && t.src[t.pos+1] == '/':
			line, isDirective := t.readLineComment()
			if isDirective {
				return strings.Join(lines, "\n"), line, nil
			}
			lines = append(lines, line)
		case c == '/' && t.pos+1 < len(t.src) && t.src[t.pos+1] == '*':
			t.pos += 2
			for t.pos+1 < len(t.src) && !(t.src[t.pos] == '*' && t.src[t.pos+1] == '/') {
				if t.src[t.pos] == '\n' {
					t.line++
				}
				t.pos++
			}
			t.pos += 2
		default:
			return strings.Join(lines, "\n"), "", nil
		}
	}
	return strings.Join(lines, "\n"), "", nil
}

// readLineComment consumes a "// ..." comment through end of line and
// reports its trimmed text, and whether it is a "<<<target = \"v\">>>"
// directive line.
func (t *tokenizer) readLineComment() (string, bool) {
	start := t.pos
	for t.pos < len(t.src) && t.src[t.pos] != '\n' {
		t.pos++
	}
	text := strings.TrimSpace(string(t.src[start+2 : t.pos]))
	if strings.HasPrefix(text, "<<<") && strings.HasSuffix(text, ">>>") {
		return strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(text, "<<<"), ">>>")), true
	}
	return text, false
}

func (t *tokenizer) errorf(format string, args ...interface{}) error {
	return pberrs.New(pberrs.SchemaViolation, "%s:%d: "+format, append([]interface{}{t.name, t.line}, args...)...)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
