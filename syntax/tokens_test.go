package syntax_test

import (
	"testing"

	"github.com/DanielSharp01/eprotoc/diag"
	"github.com/DanielSharp01/eprotoc/sourcemap"
	"github.com/DanielSharp01/eprotoc/syntax"
)

func tokenize(t *testing.T, src string) ([]syntax.Token, *diag.Bag) {
	t.Helper()
	file := sourcemap.NewFile("a.eproto", src)
	bag := diag.NewBag()
	return syntax.Tokenize(file, bag), bag
}

func TestTokenizeKeywordsIdentifiersAndSymbols(t *testing.T) {
	toks, bag := tokenize(t, "message Foo<T> { optional T x = 1; }")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.All())
	}
	var kinds []syntax.TokenKind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	want := []syntax.TokenKind{
		syntax.T_KEYWORD, syntax.T_IDENT, syntax.T_SYMBOL, syntax.T_IDENT, syntax.T_SYMBOL,
		syntax.T_SYMBOL, syntax.T_KEYWORD, syntax.T_IDENT, syntax.T_IDENT, syntax.T_SYMBOL,
		syntax.T_NUMBER, syntax.T_SYMBOL, syntax.T_SYMBOL, syntax.T_EOF,
	}
	if len(kinds) != len(want) {
		t.Fatalf("got %d tokens %v, want %d", len(kinds), kinds, len(want))
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestTokenizeCommentsAreEmittedAsTokens(t *testing.T) {
	toks, _ := tokenize(t, "// hi\npackage p; /* block */")
	if toks[0].Kind != syntax.T_COMMENT || toks[0].Text != "// hi" {
		t.Fatalf("expected a line comment token, got %+v", toks[0])
	}
	foundBlock := false
	for _, tok := range toks {
		if tok.Kind == syntax.T_COMMENT && tok.Text == "/* block */" {
			foundBlock = true
		}
	}
	if !foundBlock {
		t.Fatal("expected a block comment token")
	}
}

func TestTokenizeStringLiteralEscapesAreVerbatim(t *testing.T) {
	toks, _ := tokenize(t, `"a\nb\"c"`)
	if toks[0].Kind != syntax.T_STRING {
		t.Fatalf("expected string literal, got %+v", toks[0])
	}
	if toks[0].StringValue != "anb\"c" {
		t.Fatalf("got %q, want literal backslash-n kept verbatim as 'n'", toks[0].StringValue)
	}
}

func TestTokenizeUnknownSymbolRaisesDiagnostic(t *testing.T) {
	_, bag := tokenize(t, "message M { int32 a ~ 1; }")
	all := bag.All()
	if len(all) != 1 || all[0].Kind != diag.KindLexUnknownSymbol {
		t.Fatalf("expected one lex-unknown-symbol diagnostic, got %v", all)
	}
}

func TestTokenizeEndsWithEOF(t *testing.T) {
	toks, _ := tokenize(t, "")
	if len(toks) != 1 || toks[0].Kind != syntax.T_EOF {
		t.Fatalf("expected a single EOF token, got %v", toks)
	}
	// Calling past EOF keeps yielding EOF rather than panicking.
	file := sourcemap.NewFile("a.eproto", "")
	stream := syntax.NewTokens(file, diag.NewBag())
	stream.Next()
	again := stream.Next()
	if again.Kind != syntax.T_EOF {
		t.Fatalf("expected EOF again, got %v", again)
	}
}
