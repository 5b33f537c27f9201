package analysis

import "github.com/DanielSharp01/eprotoc/types"

type realizationWork struct {
	def   *types.Definition
	tuple types.ArgTuple
}

// recordInstance records a newly seen Real instance whose definition is
// generic into worklist, then recurses into its argument sub-trees, per
// the "traversal recurses into argument sub-trees" rule of §4.3.
func recordInstance(i *types.Instance, worklist *[]realizationWork) {
	if i == nil || i.Kind != types.InstReal {
		return
	}
	if i.Def.IsGeneric() {
		tuple := types.ArgTuple{Args: i.Args}
		if i.Def.AddRealization(tuple) {
			*worklist = append(*worklist, realizationWork{def: i.Def, tuple: tuple})
		}
	}
	for _, a := range i.Args {
		recordInstance(a, worklist)
	}
}

// collectGenericInstances implements §4.3's generic instance collection:
// walk every RPC's request/response instance tree recording realized
// argument tuples, then reach the fixpoint described in §2.7/§9 ("plus
// tuples reachable from other monomorphizations") by substituting each
// newly realized tuple into its message's own field types and walking
// those too — a field may itself reference another generic message
// parameterized by the formal being realized, which only becomes visible
// after substitution.
func collectGenericInstances(svcReg *types.ServiceRegistry) {
	var worklist []realizationWork

	for _, svc := range svcReg.All() {
		for _, rpc := range svc.RPCs {
			recordInstance(rpc.RequestType, &worklist)
			recordInstance(rpc.ResponseType, &worklist)
		}
	}

	for len(worklist) > 0 {
		w := worklist[0]
		worklist = worklist[1:]

		bindings := make(map[string]*types.Instance, len(w.def.Generics))
		for i, g := range w.def.Generics {
			if i < len(w.tuple.Args) {
				bindings[g.Name] = w.tuple.Args[i]
			}
		}

		for _, f := range w.def.Fields {
			recordInstance(f.Type.Substitute(bindings), &worklist)
		}
	}
}
