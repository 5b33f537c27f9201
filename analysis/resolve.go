package analysis

import (
	"strings"

	"github.com/DanielSharp01/eprotoc/diag"
	"github.com/DanielSharp01/eprotoc/syntax"
	"github.com/DanielSharp01/eprotoc/types"
)

// resolver implements the type resolution algorithm of §4.3: given a
// TypeRef and the package/generics it appears in, produce a Type
// Instance, reporting unknown-type and arity-mismatch diagnostics as it
// goes. It never fails outright — every path returns a usable Instance,
// falling back to Unknown so the rest of the tree still gets walked.
type resolver struct {
	analyzer *Analyzer
	reg      *types.Registry
}

func (r *resolver) resolveType(ref *syntax.TypeRef, currentPackageID string, generics []types.GenericParam) *types.Instance {
	if ref == nil || len(ref.Parts) == 0 {
		return types.Unknown()
	}

	if len(ref.Parts) == 1 {
		name := ref.Parts[0]
		for _, g := range generics {
			if g.Name == name {
				if len(ref.Args) > 0 {
					// Raised during the global pass, so it is filed with the
					// global diagnostics that each Analyze call clears.
					r.analyzer.Diags.AddGlobal(diag.ErrGenericHasArgs(ref.Span, name))
				}
				return types.Generic(name)
			}
		}
	}

	prefix := strings.Join(ref.Parts[:len(ref.Parts)-1], "")
	typeName := ref.Parts[len(ref.Parts)-1]

	def := r.reg.Builtin(types.BuiltinName(ref.Dotted()))
	if def == nil {
		if d, ok := r.reg.Lookup(currentPackageID, typeName); ok {
			def = d
		}
	}
	if def == nil && prefix != "" {
		if d, ok := r.reg.Lookup(prefix, typeName); ok {
			def = d
		} else if currentPackageID != unknownPackageID {
			if d, ok := r.reg.Lookup(currentPackageID+prefix, typeName); ok {
				def = d
			}
		}
	}

	if def == nil {
		r.analyzer.Diags.Add(diag.ErrUnknownType(ref.Span, ref.Dotted()))
		for _, a := range ref.Args {
			r.resolveType(a, currentPackageID, generics)
		}
		return types.Unknown()
	}

	arity := def.Arity()
	args := make([]*types.Instance, 0, arity)
	for i, argRef := range ref.Args {
		resolved := r.resolveType(argRef, currentPackageID, generics)
		if i < arity {
			args = append(args, resolved)
		}
	}
	if len(ref.Args) > arity {
		r.analyzer.Diags.Add(diag.ErrArityMismatch(ref.Span, ref.Dotted(), arity, len(ref.Args)))
	}
	for len(args) < arity {
		args = append(args, types.Unknown())
	}

	return types.Real(def, args...)
}
