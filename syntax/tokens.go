// Package syntax implements the eproto tokenizer and parser: §4.1 and §4.2.
package syntax

import (
	"unicode/utf8"

	"github.com/DanielSharp01/eprotoc/diag"
	"github.com/DanielSharp01/eprotoc/sourcemap"
)

// TokenKind is the tagged variant of §3's Token data model.
type TokenKind uint8

const (
	T_EOF TokenKind = iota
	T_KEYWORD
	T_SYMBOL
	T_IDENT
	T_STRING
	T_NUMBER
	T_COMMENT
	T_UNKNOWN
)

func (k TokenKind) String() string {
	switch k {
	case T_EOF:
		return "EOF"
	case T_KEYWORD:
		return "keyword"
	case T_SYMBOL:
		return "symbol"
	case T_IDENT:
		return "identifier"
	case T_STRING:
		return "string-literal"
	case T_NUMBER:
		return "numeric-literal"
	case T_COMMENT:
		return "comment"
	case T_UNKNOWN:
		return "unknown"
	default:
		return "?"
	}
}

// keywords is the fixed keyword set of §4.1.
var keywords = map[string]bool{
	"package":  true,
	"message":  true,
	"enum":     true,
	"service":  true,
	"rpc":      true,
	"stream":   true,
	"returns":  true,
	"optional": true,
}

// symbolChars is the fixed single-character symbol set of §4.1.
const symbolChars = "<>();{}=,."

// Token is one lexical unit with its source span and, where applicable,
// its literal value.
type Token struct {
	Kind TokenKind
	Span sourcemap.Span

	// Text is the raw source text of the token (identifier name, keyword
	// spelling, symbol character, comment body including its leading
	// sigil, or the string literal including its surrounding quotes).
	Text string

	// IntValue holds the parsed value of a T_NUMBER token.
	IntValue int64

	// StringValue holds the unescaped value of a T_STRING token: '\' is
	// dropped and the following code unit is kept verbatim, per §4.1 (no
	// interpretation of \n, \", etc. at lex time).
	StringValue string
}

// Tokens lexes a single file lazily: each call to Next produces the next
// token and advances past it. It never backtracks.
type Tokens struct {
	file   *sourcemap.File
	src    []byte
	offset int
	diags  *diag.Bag
}

// NewTokens builds a tokenizer over a file already registered in a source
// map. Diagnostics (lex-unknown-symbol) are reported into diags as they
// are discovered; the stream keeps producing tokens afterwards.
func NewTokens(file *sourcemap.File, diags *diag.Bag) *Tokens {
	return &Tokens{
		file:  file,
		src:   []byte(file.Text),
		diags: diags,
	}
}

func (t *Tokens) span(start, end int) sourcemap.Span {
	return t.file.Span(start, end)
}

// Next produces the next token. A stream that has reached the end of input
// yields T_EOF forever after.
func (t *Tokens) Next() Token {
	for {
		if t.offset >= len(t.src) {
			return Token{Kind: T_EOF, Span: t.span(t.offset, t.offset)}
		}
		c := t.src[t.offset]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			t.offset++
			continue
		case c == '/' && t.offset+1 < len(t.src) && t.src[t.offset+1] == '/':
			return t.lexLineComment()
		case c == '/' && t.offset+1 < len(t.src) && t.src[t.offset+1] == '*':
			return t.lexBlockComment()
		case c == '"':
			return t.lexString()
		case c >= '0' && c <= '9':
			return t.lexNumber()
		case isIdentStart(c):
			return t.lexIdent()
		case indexByte(symbolChars, c) >= 0:
			start := t.offset
			t.offset++
			return Token{Kind: T_SYMBOL, Span: t.span(start, t.offset), Text: string(c)}
		default:
			r, size := utf8.DecodeRune(t.src[t.offset:])
			start := t.offset
			t.offset += size
			span := t.span(start, t.offset)
			t.diags.Add(diag.ErrUnknownSymbol(span, r))
			return Token{Kind: T_UNKNOWN, Span: span, Text: string(r)}
		}
	}
}

func indexByte(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}

func isIdentStart(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '_'
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func (t *Tokens) lexLineComment() Token {
	start := t.offset
	t.offset += 2
	for t.offset < len(t.src) && t.src[t.offset] != '\n' {
		t.offset++
	}
	return Token{Kind: T_COMMENT, Span: t.span(start, t.offset), Text: string(t.src[start:t.offset])}
}

func (t *Tokens) lexBlockComment() Token {
	start := t.offset
	t.offset += 2
	for t.offset+1 < len(t.src) {
		if t.src[t.offset] == '*' && t.src[t.offset+1] == '/' {
			t.offset += 2
			return Token{Kind: T_COMMENT, Span: t.span(start, t.offset), Text: string(t.src[start:t.offset])}
		}
		t.offset++
	}
	t.offset = len(t.src)
	return Token{Kind: T_COMMENT, Span: t.span(start, t.offset), Text: string(t.src[start:t.offset])}
}

func (t *Tokens) lexString() Token {
	start := t.offset
	t.offset++ // opening quote
	var value []byte
	for t.offset < len(t.src) {
		c := t.src[t.offset]
		if c == '"' {
			t.offset++
			return Token{
				Kind:        T_STRING,
				Span:        t.span(start, t.offset),
				Text:        string(t.src[start:t.offset]),
				StringValue: string(value),
			}
		}
		if c == '\\' && t.offset+1 < len(t.src) {
			value = append(value, t.src[t.offset+1])
			t.offset += 2
			continue
		}
		value = append(value, c)
		t.offset++
	}
	// Unterminated: stop at EOF, let the parser raise parse-expect on the
	// missing closing quote rather than growing a second error kind.
	return Token{
		Kind:        T_STRING,
		Span:        t.span(start, t.offset),
		Text:        string(t.src[start:t.offset]),
		StringValue: string(value),
	}
}

func (t *Tokens) lexNumber() Token {
	start := t.offset
	for t.offset < len(t.src) && t.src[t.offset] >= '0' && t.src[t.offset] <= '9' {
		t.offset++
	}
	text := string(t.src[start:t.offset])
	var value int64
	for _, c := range []byte(text) {
		value = value*10 + int64(c-'0')
	}
	return Token{Kind: T_NUMBER, Span: t.span(start, t.offset), Text: text, IntValue: value}
}

func (t *Tokens) lexIdent() Token {
	start := t.offset
	t.offset++
	for t.offset < len(t.src) && isIdentCont(t.src[t.offset]) {
		t.offset++
	}
	text := string(t.src[start:t.offset])
	span := t.span(start, t.offset)
	if keywords[text] {
		return Token{Kind: T_KEYWORD, Span: span, Text: text}
	}
	return Token{Kind: T_IDENT, Span: span, Text: text}
}

// Tokenize drains the stream into a slice, for callers (like the LSP
// query surface) that want the full token list including comments.
func Tokenize(file *sourcemap.File, diags *diag.Bag) []Token {
	toks := NewTokens(file, diags)
	var out []Token
	for {
		tok := toks.Next()
		out = append(out, tok)
		if tok.Kind == T_EOF {
			return out
		}
	}
}
