package analysis_test

import (
	"testing"

	"github.com/DanielSharp01/eprotoc/analysis"
	"github.com/DanielSharp01/eprotoc/diag"
	"github.com/DanielSharp01/eprotoc/types"
)

func kinds(ds []*diag.Diagnostic) map[diag.Kind]int {
	out := make(map[diag.Kind]int)
	for _, d := range ds {
		out[d.Kind]++
	}
	return out
}

func TestOrdinalNotMonotonic(t *testing.T) {
	a := analysis.NewAnalyzer()
	a.AnalyzeFile("a.eproto", `package a;
message M {
  int32 x = 2;
  int32 y = 1;
}`)
	a.Analyze()

	ds := a.Diags.ForFile("a.eproto")
	if kinds(ds)[diag.KindOrdinalNotMonotonic] != 1 {
		t.Fatalf("expected one ordinal-not-monotonic diagnostic, got %+v", ds)
	}

	def, ok := a.Registry().Lookup("a", "M")
	if !ok {
		t.Fatal("expected M to be defined")
	}
	if len(def.Fields) != 2 || def.Fields[0].Ordinal != 2 || def.Fields[1].Ordinal != 3 {
		t.Fatalf("unexpected field ordinals: %+v", def.Fields)
	}
}

func TestOrdinalNonpositive(t *testing.T) {
	a := analysis.NewAnalyzer()
	a.AnalyzeFile("a.eproto", `package a;
message M {
  int32 x = 0;
}`)
	a.Analyze()

	ds := a.Diags.ForFile("a.eproto")
	if kinds(ds)[diag.KindOrdinalNonpositive] != 1 {
		t.Fatalf("expected one ordinal-nonpositive diagnostic, got %+v", ds)
	}
}

func TestUnknownTypeContinuesAnalysis(t *testing.T) {
	a := analysis.NewAnalyzer()
	a.AnalyzeFile("a.eproto", `package a;
message M {
  Nope x = 1;
  int32 y = 2;
}`)
	a.Analyze()

	ds := a.Diags.All()
	if kinds(ds)[diag.KindUnknownType] != 1 {
		t.Fatalf("expected one unknown-type diagnostic, got %+v", ds)
	}

	def, ok := a.Registry().Lookup("a", "M")
	if !ok {
		t.Fatal("expected M to be defined despite the unknown field type")
	}
	if len(def.Fields) != 2 {
		t.Fatalf("expected both fields to be materialized, got %+v", def.Fields)
	}
	if def.Fields[0].Type.Kind != types.InstUnknown {
		t.Fatalf("expected first field to resolve to Unknown, got %+v", def.Fields[0].Type)
	}
	if def.Fields[1].Type.Kind != types.InstReal {
		t.Fatalf("expected second field to resolve normally, got %+v", def.Fields[1].Type)
	}
}

func TestRedefinitionAcrossFiles(t *testing.T) {
	a := analysis.NewAnalyzer()
	a.AnalyzeFile("a.eproto", `package p; message M { int32 x = 1; }`)
	a.AnalyzeFile("b.eproto", `package p; message M { int32 y = 1; }`)
	a.Analyze()

	ds := a.Diags.All()
	if kinds(ds)[diag.KindRedefinition] != 1 {
		t.Fatalf("expected one redefinition diagnostic, got %+v", ds)
	}
}

func TestCrossFileTypeResolution(t *testing.T) {
	a := analysis.NewAnalyzer()
	a.AnalyzeFile("a.eproto", `package a;
message Fruit { string name = 1; }`)
	a.AnalyzeFile("b.eproto", `package b;
message Basket { a.Fruit contents = 1; }`)
	a.Analyze()

	if a.Diags.HasErrors() {
		t.Fatalf("expected no diagnostics, got %+v", a.Diags.All())
	}
	def, ok := a.Registry().Lookup("b", "Basket")
	if !ok {
		t.Fatal("expected Basket to be defined")
	}
	if def.Fields[0].Type.Kind != types.InstReal || def.Fields[0].Type.Def.Name != "Fruit" {
		t.Fatalf("expected Basket.contents to resolve to Fruit, got %+v", def.Fields[0].Type)
	}
}

func TestGenericRealizationCollectionFixpoint(t *testing.T) {
	a := analysis.NewAnalyzer()
	a.AnalyzeFile("a.eproto", `package a;
message Pagination<T> {
  T current = 1;
  optional T next = 2;
}
message Response<T, U> {
  T data = 1;
  U meta = 2;
}
message Meta {
  int32 total = 1;
}
service Items {
  rpc List(Meta) returns (Response<Pagination<int32>, Meta>);
}`)
	a.Analyze()

	if a.Diags.HasErrors() {
		t.Fatalf("expected no diagnostics, got %+v", a.Diags.All())
	}

	pagination, ok := a.Registry().Lookup("a", "Pagination")
	if !ok {
		t.Fatal("expected Pagination to be defined")
	}
	if len(pagination.Realizations()) != 1 {
		t.Fatalf("expected exactly one Pagination realization, got %d", len(pagination.Realizations()))
	}

	response, ok := a.Registry().Lookup("a", "Response")
	if !ok {
		t.Fatal("expected Response to be defined")
	}
	if len(response.Realizations()) != 1 {
		t.Fatalf("expected exactly one Response realization, got %d", len(response.Realizations()))
	}
}

func TestReanalyzeAfterFileEditIsIdempotent(t *testing.T) {
	a := analysis.NewAnalyzer()
	a.AnalyzeFile("a.eproto", `package a; message M { int32 x = 1; }`)
	a.Analyze()
	first := len(a.Diags.All())

	a.AnalyzeFile("a.eproto", `package a; message M { int32 x = 1; }`)
	a.Analyze()
	second := len(a.Diags.All())

	if first != second {
		t.Fatalf("expected idempotent diagnostic count, got %d then %d", first, second)
	}
}
