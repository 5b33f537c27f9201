package emit

import (
	"sort"

	"github.com/DanielSharp01/eprotoc/genir"
	"github.com/DanielSharp01/eprotoc/mono"
	"github.com/DanielSharp01/eprotoc/types"
)

// ref identifies one cross-file definition reference.
type ref struct {
	packageID string
	name      string
}

// importHeader computes, per §4.7, "the set of cross-file definitions
// used" by everything emitted for one source file, and renders one
// import statement per contributing source file, aliasing each imported
// symbol as `<packageId>__<name>`.
func (e *Emitter) importHeader(defs []*types.Definition, svcs []*types.Service, usesAny bool) string {
	local := make(map[ref]bool, len(defs))
	for _, d := range defs {
		local[ref{d.PackageID, d.Name}] = true
	}

	used := map[ref]bool{}
	collect := func(n *genir.Node) { collectRefs(n, used) }

	for _, def := range defs {
		if def.Kind != types.DefMessage {
			continue
		}
		if def.IsGeneric() {
			for _, inst := range mono.All(def) {
				collect(genir.BuildMessageBody(inst.Fields, e.Strategy))
			}
		} else {
			collect(genir.BuildMessageBody(def.Fields, e.Strategy))
		}
	}
	for _, svc := range svcs {
		for _, rpc := range svc.RPCs {
			collect(buildRPCNode(rpc.RequestType, e.Strategy))
			collect(buildRPCNode(rpc.ResponseType, e.Strategy))
		}
	}

	byFile := map[string][]ref{}
	for r := range used {
		if local[r] {
			continue
		}
		file, ok := e.Registry.FileOf(r.packageID, r.name)
		if !ok {
			continue
		}
		byFile[file] = append(byFile[file], r)
	}

	files := make([]string, 0, len(byFile))
	for f := range byFile {
		files = append(files, f)
	}
	sort.Strings(files)

	b := &builder{}
	if usesAny {
		b.linef("import * as %s from %q;", aliasAny, "./"+anyFilePath)
	}
	for _, f := range files {
		refs := byFile[f]
		sort.Slice(refs, func(i, j int) bool {
			if refs[i].packageID != refs[j].packageID {
				return refs[i].packageID < refs[j].packageID
			}
			return refs[i].name < refs[j].name
		})
		for _, r := range refs {
			b.linef("import { %s as %s } from %q;", r.name, e.qualify(r.packageID, r.name), "./"+e.OutputPath(f))
		}
	}
	if b.String() != "" {
		b.line("")
	}
	return b.String()
}

func collectRefs(n *genir.Node, out map[ref]bool) {
	if n == nil {
		return
	}
	if n.Kind == genir.KindMessageRef {
		out[ref{n.RefPackageID, n.RefName}] = true
	}
	collectRefs(n.Sub, out)
	for _, a := range n.RefArgs {
		collectRefs(a, out)
	}
	for _, f := range n.Fields {
		collectRefs(f.Sub, out)
	}
	for _, br := range n.Branches {
		collectRefs(br.Field.Sub, out)
	}
}
