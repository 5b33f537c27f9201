// Package mono implements the Generic Monomorphizer (§2.7/§4.4): for a
// generic message definition and one of its realized argument tuples, it
// produces a MessageInstance — the field list with every Generic
// occurrence substituted by a concrete Deeply-Real type, ordinals and
// optionality preserved unchanged.
package mono

import "github.com/DanielSharp01/eprotoc/types"

// MessageInstance is one realized message: the definition it came from,
// the tuple that realized it, and its substituted field list. Its name
// in generated code is genir.Label of the realized instance (the
// definition's name followed by each argument's label), so
// `Pagination<int32>` and `Pagination<string>` become distinct emitted
// types.
type MessageInstance struct {
	Def    *types.Definition
	Tuple  types.ArgTuple
	Fields []types.MessageField
}

// Monomorphize substitutes tuple's arguments for def's formal generics
// in every field, per §4.4's "pure tree rewrite; ordinals and
// optionality are preserved."
func Monomorphize(def *types.Definition, tuple types.ArgTuple) *MessageInstance {
	bindings := make(map[string]*types.Instance, len(def.Generics))
	for i, g := range def.Generics {
		if i < len(tuple.Args) {
			bindings[g.Name] = tuple.Args[i]
		}
	}

	fields := make([]types.MessageField, len(def.Fields))
	for i, f := range def.Fields {
		fields[i] = types.MessageField{
			Ordinal:  f.Ordinal,
			Name:     f.Name,
			Optional: f.Optional,
			Type:     f.Type.Substitute(bindings),
			Span:     f.Span,
		}
	}

	return &MessageInstance{Def: def, Tuple: tuple, Fields: fields}
}

// All produces one MessageInstance per tuple recorded in def's
// realization set (§2.7: "one realized field list per recorded argument
// tuple"). For a non-generic message, def.Realizations() is empty and a
// caller should instead build its single, already-deeply-real field list
// directly — monomorphization only applies to messages with >= 1 formal.
func All(def *types.Definition) []*MessageInstance {
	tuples := def.Realizations()
	out := make([]*MessageInstance, 0, len(tuples))
	for _, t := range tuples {
		out = append(out, Monomorphize(def, t))
	}
	return out
}
