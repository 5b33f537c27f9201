package mono_test

import (
	"testing"

	"github.com/DanielSharp01/eprotoc/mono"
	"github.com/DanielSharp01/eprotoc/types"
)

func TestMonomorphizeSubstitutesGenerics(t *testing.T) {
	r := types.NewRegistry()
	pagination := &types.Definition{
		Kind:      types.DefMessage,
		PackageID: "p",
		Name:      "Pagination",
		Generics:  []types.GenericParam{{Name: "T"}},
		Fields: []types.MessageField{
			{Ordinal: 1, Name: "current", Type: types.Generic("T")},
			{Ordinal: 2, Name: "next", Optional: true, Type: types.Generic("T")},
		},
	}
	tuple := types.ArgTuple{Args: []*types.Instance{types.Real(r.Builtin(types.Int32))}}

	inst := mono.Monomorphize(pagination, tuple)
	if len(inst.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(inst.Fields))
	}
	for _, f := range inst.Fields {
		if !f.Type.DeeplyReal() {
			t.Fatalf("expected field %q to be deeply real after substitution, got %+v", f.Name, f.Type)
		}
	}
	if inst.Fields[1].Name != "next" || !inst.Fields[1].Optional {
		t.Fatalf("expected ordinal/optionality preserved, got %+v", inst.Fields[1])
	}
}

func TestAllProducesOneInstancePerRealization(t *testing.T) {
	r := types.NewRegistry()
	pagination := &types.Definition{
		Kind:      types.DefMessage,
		PackageID: "p",
		Name:      "Pagination",
		Generics:  []types.GenericParam{{Name: "T"}},
		Fields: []types.MessageField{
			{Ordinal: 1, Name: "current", Type: types.Generic("T")},
		},
	}
	pagination.AddRealization(types.ArgTuple{Args: []*types.Instance{types.Real(r.Builtin(types.Int32))}})
	pagination.AddRealization(types.ArgTuple{Args: []*types.Instance{types.Real(r.Builtin(types.String))}})

	instances := mono.All(pagination)
	if len(instances) != 2 {
		t.Fatalf("expected 2 monomorphizations, got %d", len(instances))
	}
}
