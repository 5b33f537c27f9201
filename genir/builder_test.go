package genir_test

import (
	"testing"

	"github.com/DanielSharp01/eprotoc/genir"
	"github.com/DanielSharp01/eprotoc/types"
)

func TestBuildScalarWireTypes(t *testing.T) {
	r := types.NewRegistry()
	cases := []struct {
		name types.BuiltinName
		wire int
	}{
		{types.Int32, genir.WireVarint},
		{types.Fixed64, genir.WireI64},
		{types.Float, genir.WireI32},
		{types.String, genir.WireLen},
	}
	for _, c := range cases {
		n := genir.Build(types.Real(r.Builtin(c.name)), genir.Native)
		if n.WireType != c.wire {
			t.Errorf("%s: expected wire %d, got %d", c.name, c.wire, n.WireType)
		}
	}
}

func TestBuildNullableNativeUsesOneFieldWrapper(t *testing.T) {
	r := types.NewRegistry()
	inst := types.Real(r.Builtin(types.NullCon), types.Real(r.Builtin(types.Int32)))
	n := genir.Build(inst, genir.Native)
	if n.Kind != genir.KindLen {
		t.Fatalf("expected outer Len, got %v", n.Kind)
	}
	if n.Sub.Kind != genir.KindStruct || len(n.Sub.Fields) != 1 {
		t.Fatalf("expected one-field struct wrapper under native, got %+v", n.Sub)
	}
	if n.Sub.Fields[0].Condition.Kind != genir.CondNotNull {
		t.Fatalf("expected not-null condition on the wrapped field")
	}
}

func TestBuildNullableEvolvedUsesDiscriminant(t *testing.T) {
	r := types.NewRegistry()
	inst := types.Real(r.Builtin(types.NullCon), types.Real(r.Builtin(types.Int32)))
	n := genir.Build(inst, genir.Evolved)
	if n.Kind != genir.KindLen || n.Sub.Kind != genir.KindNullable {
		t.Fatalf("expected Len(Nullable(...)) under evolved, got %+v", n)
	}
}

func TestBuildNestedArrayNativeWraps(t *testing.T) {
	r := types.NewRegistry()
	inner := types.Real(r.Builtin(types.ArrayCon), types.Real(r.Builtin(types.Int32)))
	outer := types.Real(r.Builtin(types.ArrayCon), inner)
	n := genir.Build(outer, genir.Native)
	arrNode := n.Sub
	if arrNode.Kind != genir.KindArray {
		t.Fatalf("expected array node, got %+v", n)
	}
	if arrNode.Sub.Kind != genir.KindLen || arrNode.Sub.Sub.Kind != genir.KindStruct {
		t.Fatalf("expected nested array elements wrapped in a one-field struct under native, got %+v", arrNode.Sub)
	}
}

func TestBuildMessageBodyUnwrapsTopLevelLen(t *testing.T) {
	r := types.NewRegistry()
	fields := []types.MessageField{
		{Ordinal: 1, Name: "x", Type: types.Real(r.Builtin(types.Int32))},
		{Ordinal: 2, Name: "y", Optional: true, Type: types.Real(r.Builtin(types.Int32))},
	}
	body := genir.BuildMessageBody(fields, genir.Native)
	if body.Kind != genir.KindStruct {
		t.Fatalf("expected a bare Struct with no wrapping Len, got %v", body.Kind)
	}
	if len(body.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(body.Fields))
	}
	if body.Fields[1].Sub.Kind != genir.KindLen {
		t.Fatalf("expected optional field to be Nullable-wrapped, got %+v", body.Fields[1].Sub)
	}
}

func TestBuildAnySwitchBranchOrder(t *testing.T) {
	n := genir.Build(&types.Instance{Kind: types.InstReal, Def: types.NewRegistry().Builtin(types.Any)}, genir.Native)
	if n.Kind != genir.KindLen {
		t.Fatalf("expected a directly field-typed any to be Len-framed, got %v", n.Kind)
	}
	sw := n.Sub
	if sw.Kind != genir.KindSwitch {
		t.Fatalf("expected a Switch node for any, got %v", sw.Kind)
	}
	if sw.WireType != genir.WireLen {
		t.Fatalf("expected the Switch itself to carry wire type LEN, got %d", sw.WireType)
	}
	wantOrdinals := map[string]int64{"null": 1, "number": 2, "string": 3, "boolean": 4, "object": 5, "array": 6}
	for _, b := range sw.Branches {
		if b.Field.Ordinal != wantOrdinals[b.Predicate] {
			t.Errorf("predicate %q: expected ordinal %d, got %d", b.Predicate, wantOrdinals[b.Predicate], b.Field.Ordinal)
		}
	}
}

func TestBuildAnyBodyIsUnwrappedForFunctionBody(t *testing.T) {
	body := genir.BuildAnyBody()
	if body.Kind != genir.KindSwitch {
		t.Fatalf("expected BuildAnyBody to return the bare Switch, got %v", body.Kind)
	}
}

func TestBuildMessageRefIsLenFramed(t *testing.T) {
	r := types.NewRegistry()
	def := &types.Definition{Kind: types.DefMessage, Name: "Fruit"}
	if err := r.Define("fruit.eproto", def); err != nil {
		t.Fatal(err)
	}
	n := genir.Build(types.Real(def), genir.Native)
	if n.Kind != genir.KindLen {
		t.Fatalf("expected a message reference to be Len-framed, got %v", n.Kind)
	}
	if n.Sub.Kind != genir.KindMessageRef {
		t.Fatalf("expected the framed node to wrap a MessageRef, got %v", n.Sub.Kind)
	}
	if n.TypeLabel != "Fruit" {
		t.Fatalf("expected the outer framed node to carry the type label, got %q", n.TypeLabel)
	}
}

func TestFrameTopLevelWrapsBareScalarUnderNativeOnly(t *testing.T) {
	r := types.NewRegistry()
	inst := types.Real(r.Builtin(types.Int32))

	native := genir.FrameTopLevel(genir.Build(inst, genir.Native), genir.Native)
	if native.Kind != genir.KindLen || native.Sub.Kind != genir.KindStruct {
		t.Fatalf("expected a native top-level scalar to be wrapped in a one-field message, got %+v", native)
	}

	evolved := genir.FrameTopLevel(genir.Build(inst, genir.Evolved), genir.Evolved)
	if evolved.Kind != genir.KindPrimitive {
		t.Fatalf("expected an evolved top-level scalar to stay bare, got %v", evolved.Kind)
	}
}

func TestFrameTopLevelLeavesSelfFramedNodesAlone(t *testing.T) {
	r := types.NewRegistry()
	inst := types.Real(r.Builtin(types.ArrayCon), types.Real(r.Builtin(types.Int32)))
	n := genir.Build(inst, genir.Native)
	framed := genir.FrameTopLevel(n, genir.Native)
	if framed != n {
		t.Fatalf("expected an already Len-framed node to be returned unchanged")
	}
}
