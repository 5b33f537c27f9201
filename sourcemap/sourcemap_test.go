package sourcemap_test

import (
	"testing"

	"github.com/DanielSharp01/eprotoc/sourcemap"
)

func TestNewFileNormalizesCRLF(t *testing.T) {
	f := sourcemap.NewFile("a.eproto", "package p;\r\nmessage M {}\r\n")
	if f.Text != "package p;\nmessage M {}\n" {
		t.Fatalf("CRLF not normalized: %q", f.Text)
	}
}

func TestPositionLineAndColumn(t *testing.T) {
	f := sourcemap.NewFile("a.eproto", "package p;\nmessage M {\n  int32 a = 1;\n}\n")
	pos := f.Position(len("package p;\nmessage M {\n  "))
	if pos.Line != 2 || pos.Col != 2 {
		t.Fatalf("got %+v, want line=2 col=2", pos)
	}
	if pos.Line1() != 3 || pos.Col1() != 3 {
		t.Fatalf("1-indexed presentation wrong: %+v", pos)
	}
}

func TestSpanContains(t *testing.T) {
	span := sourcemap.Span{
		File:  "a.eproto",
		Start: sourcemap.Position{Line: 1, Col: 2},
		End:   sourcemap.Position{Line: 1, Col: 5},
	}
	if !span.Contains(sourcemap.Position{Line: 1, Col: 2}) {
		t.Fatal("expected start to be contained")
	}
	if span.Contains(sourcemap.Position{Line: 1, Col: 5}) {
		t.Fatal("end should be exclusive")
	}
	if span.Contains(sourcemap.Position{Line: 0, Col: 4}) {
		t.Fatal("different line should not be contained")
	}
}

func TestMapRemoveInvalidates(t *testing.T) {
	m := sourcemap.NewMap()
	m.Put("a.eproto", "package p;")
	if _, ok := m.Get("a.eproto"); !ok {
		t.Fatal("expected file to be present")
	}
	m.Remove("a.eproto")
	if _, ok := m.Get("a.eproto"); ok {
		t.Fatal("expected file to be removed")
	}
}

func TestSupplementaryPlaneAdvancesColumnByTwo(t *testing.T) {
	// U+1F600 GRINNING FACE is a 4-byte UTF-8 sequence outside the BMP.
	f := sourcemap.NewFile("a.eproto", "// \U0001F600x\n")
	pos := f.Position(len("// \U0001F600"))
	if pos.Col != 5 {
		t.Fatalf("got col=%d, want 5 (3 + 2 for the supplementary rune)", pos.Col)
	}
}
