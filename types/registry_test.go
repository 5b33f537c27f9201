package types_test

import (
	"testing"

	"github.com/DanielSharp01/eprotoc/types"
)

func TestNewRegistrySeedsBuiltins(t *testing.T) {
	r := types.NewRegistry()
	for _, name := range []types.BuiltinName{types.Int32, types.ArrayCon, types.NullCon, types.MapCon, types.Any, types.DateName} {
		if r.Builtin(name) == nil {
			t.Fatalf("expected builtin %q to be seeded", name)
		}
	}
	if r.Builtin(types.ArrayCon).Arity() != 1 {
		t.Fatalf("expected Array arity 1, got %d", r.Builtin(types.ArrayCon).Arity())
	}
	if r.Builtin(types.MapCon).Arity() != 2 {
		t.Fatalf("expected Map arity 2, got %d", r.Builtin(types.MapCon).Arity())
	}
}

func TestDefineAndInvalidateFile(t *testing.T) {
	r := types.NewRegistry()
	def := &types.Definition{Kind: types.DefMessage, PackageID: "p", Name: "M"}
	if err := r.Define("a.eproto", def); err != nil {
		t.Fatal(err)
	}
	if _, ok := r.Lookup("p", "M"); !ok {
		t.Fatal("expected to find defined message")
	}
	r.InvalidateFile("a.eproto")
	if _, ok := r.Lookup("p", "M"); ok {
		t.Fatal("expected message to be removed after file invalidation")
	}
}

func TestRealizationDedup(t *testing.T) {
	r := types.NewRegistry()
	pagination := &types.Definition{
		Kind:      types.DefMessage,
		PackageID: "p",
		Name:      "Pagination",
		Generics:  []types.GenericParam{{Name: "T"}},
	}
	r.Define("a.eproto", pagination)

	tupleA := types.ArgTuple{Args: []*types.Instance{types.Real(r.Builtin(types.Int32))}}
	tupleB := types.ArgTuple{Args: []*types.Instance{types.Real(r.Builtin(types.Int32))}}

	if !pagination.AddRealization(tupleA) {
		t.Fatal("expected first realization to be new")
	}
	if pagination.AddRealization(tupleB) {
		t.Fatal("expected structurally-equal tuple to be deduped")
	}
	if len(pagination.Realizations()) != 1 {
		t.Fatalf("expected exactly one realization, got %d", len(pagination.Realizations()))
	}
}

func TestInstanceDeeplyReal(t *testing.T) {
	r := types.NewRegistry()
	arr := r.Builtin(types.ArrayCon)
	real := types.Real(arr, types.Real(r.Builtin(types.Int32)))
	if !real.DeeplyReal() {
		t.Fatal("expected Array<int32> to be deeply real")
	}
	withGeneric := types.Real(arr, types.Generic("T"))
	if withGeneric.DeeplyReal() {
		t.Fatal("expected Array<T> to not be deeply real")
	}
	withUnknown := types.Real(arr, types.Unknown())
	if withUnknown.DeeplyReal() {
		t.Fatal("expected Array<Unknown> to not be deeply real")
	}
}

func TestInstanceSubstitute(t *testing.T) {
	r := types.NewRegistry()
	arr := r.Builtin(types.ArrayCon)
	tmpl := types.Real(arr, types.Generic("T"))
	bound := tmpl.Substitute(map[string]*types.Instance{"T": types.Real(r.Builtin(types.Int32))})
	if !bound.DeeplyReal() {
		t.Fatalf("expected substituted instance to be deeply real, got %+v", bound)
	}
	if bound.CanonicalKey() != types.Real(arr, types.Real(r.Builtin(types.Int32))).CanonicalKey() {
		t.Fatalf("unexpected canonical key %q", bound.CanonicalKey())
	}
}
