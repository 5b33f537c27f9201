package emit

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/DanielSharp01/eprotoc/genir"
	"github.com/DanielSharp01/eprotoc/mono"
	"github.com/DanielSharp01/eprotoc/types"
)

// aliasAny is the fixed import alias for the synthetic Any file (§4.7):
// "imported with the alias Builtin__Any."
const aliasAny = "Builtin__Any"

// anyFilePath is where the synthetic Any serialize/deserialize pair
// lives, emitted once at the output root when referenced (§6).
const anyFilePath = "any.eproto.out"

// File is one generated output artifact.
type File struct {
	Path     string
	Contents string
}

// Emitter lowers a resolved Registry/ServiceRegistry pair to output
// files under the configured wire-format Strategy (§2.9/§4.7).
type Emitter struct {
	Strategy genir.Strategy
	Registry *types.Registry
	Services *types.ServiceRegistry

	// OutputExt is the target extension swapped in for each source
	// file's own extension, per §6 ("original file extension swapped
	// to the target extension").
	OutputExt string
}

func New(reg *types.Registry, svc *types.ServiceRegistry, strategy genir.Strategy, outputExt string) *Emitter {
	return &Emitter{Strategy: strategy, Registry: reg, Services: svc, OutputExt: outputExt}
}

// qualify renders a cross-reference target expression: bare (same
// package, no aliasing needed against the current file) or aliased
// `<packageId>__<name>` per §4.7. Since the emitter here does not track
// a "current file" per call (each node-emission call is file-scoped by
// its caller, EmitSourceFile), qualify always returns the alias form;
// EmitSourceFile skips importing symbols the file itself defines.
func (e *Emitter) qualify(packageID, name string) string {
	return packageID + "__" + name
}

func genericSuffix(args []*genir.Node) string {
	if len(args) == 0 {
		return ""
	}
	var b strings.Builder
	for _, a := range args {
		b.WriteString(a.TypeLabel)
	}
	return b.String()
}

// OutputPath swaps sourcePath's extension for OutputExt and keeps the
// rest of the path unchanged; it does not make the path relative to the
// source directory.
func (e *Emitter) OutputPath(sourcePath string) string {
	ext := filepath.Ext(sourcePath)
	return strings.TrimSuffix(sourcePath, ext) + e.OutputExt
}

// EmitSourceFile generates the output for every definition and service
// contributed by sourceFile. defNames/svcNames are the (packageID, name)
// pairs the caller already knows belong to that file (Output walks
// Registry.All()/Services.All() grouping by FileOf — see output.go).
func (e *Emitter) EmitSourceFile(sourcePath string, defs []*types.Definition, svcs []*types.Service) File {
	b := &builder{}
	usesAny := false

	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	for _, def := range defs {
		used := e.emitDefinition(b, def)
		usesAny = usesAny || used
	}
	sort.Slice(svcs, func(i, j int) bool { return svcs[i].Name < svcs[j].Name })
	for _, svc := range svcs {
		used := e.emitService(b, svc)
		usesAny = usesAny || used
	}

	header := e.importHeader(defs, svcs, usesAny)
	return File{Path: e.OutputPath(sourcePath), Contents: header + b.String()}
}

// emitDefinition writes one definition's serialize/deserialize
// functions: one pair for a non-generic message, one pair per
// realization for a generic message (§2.7), and nothing for an enum or
// string-enum.
// Returns whether the Any pseudo-type was referenced anywhere within.
func (e *Emitter) emitDefinition(b *builder, def *types.Definition) bool {
	usesAny := false
	switch def.Kind {
	case types.DefMessage:
		if def.IsGeneric() {
			for _, inst := range mono.All(def) {
				name := genir.Label(types.Real(def, inst.Tuple.Args...))
				body := genir.BuildMessageBody(inst.Fields, e.Strategy)
				usesAny = e.emitMessageFunctions(b, name, body) || usesAny
			}
		} else {
			body := genir.BuildMessageBody(def.Fields, e.Strategy)
			usesAny = e.emitMessageFunctions(b, def.Name, body) || usesAny
		}
	case types.DefEnum, types.DefStringEnum:
		// Enums and string-enums have no struct body of their own; they
		// are only ever referenced inline via genir.Build from a
		// containing message, so there is nothing to emit standalone.
	}
	return usesAny
}

func (e *Emitter) emitMessageFunctions(b *builder, name string, body *genir.Node) bool {
	usesAny := containsAnyRef(body)

	b.linef("function serialize%s(writer, value, end) {", name)
	b.in()
	e.serializeGenNode(b, body, "value")
	b.dedent()
	b.line("}")
	b.line("")

	b.linef("function deserialize%s(reader, end) {", name)
	b.in()
	b.line("let value;")
	e.deserializeGenNode(b, body, "value")
	b.line("return value;")
	b.dedent()
	b.line("}")
	b.line("")

	return usesAny
}

// emitService writes one service's RPC descriptor table, per §4.7: one
// descriptor per RPC with path, streaming flags, and four closures.
func (e *Emitter) emitService(b *builder, svc *types.Service) bool {
	usesAny := false
	b.linef("const %s = {", svc.Name)
	b.in()
	for _, rpc := range svc.RPCs {
		reqNode := buildRPCNode(rpc.RequestType, e.Strategy)
		respNode := buildRPCNode(rpc.ResponseType, e.Strategy)
		usesAny = usesAny || containsAnyRef(reqNode) || containsAnyRef(respNode)

		b.linef("%s: {", rpc.Name)
		b.in()
		b.linef("path: %q,", rpc.Path)
		b.linef("requestStream: %t,", rpc.RequestIsStream)
		b.linef("responseStream: %t,", rpc.ResponseIsStream)
		e.emitRPCClosure(b, "requestSerialize", reqNode, true)
		e.emitRPCClosure(b, "requestDeserialize", reqNode, false)
		e.emitRPCClosure(b, "responseSerialize", respNode, true)
		e.emitRPCClosure(b, "responseDeserialize", respNode, false)
		b.dedent()
		b.line("},")
	}
	b.dedent()
	b.line("};")
	b.line("")
	return usesAny
}

func (e *Emitter) emitRPCClosure(b *builder, name string, node *genir.Node, serialize bool) {
	if node == nil {
		// void: serialize returns an empty byte array, deserialize
		// returns a neutral empty value, neither touching the wire
		// (§4.7).
		if serialize {
			b.linef("%s: (value) => new Uint8Array(0),", name)
		} else {
			b.linef("%s: (bytes) => ({}),", name)
		}
		return
	}
	if serialize {
		b.linef("%s: (value) => {", name)
		b.in()
		b.line("const writer = new Writer();")
		e.serializeGenNode(b, node, "value")
		b.line("return writer.finish();")
		b.dedent()
		b.line("},")
	} else {
		b.linef("%s: (bytes) => {", name)
		b.in()
		b.line("const reader = new Reader(bytes);")
		b.line("const end = bytes.length;")
		b.line("let value;")
		e.deserializeGenNode(b, node, "value")
		b.line("return value;")
		b.dedent()
		b.line("},")
	}
}

// buildRPCNode is genir.Build with the void special-case of §4.7: a void
// request/response type has no wire representation at all.
func buildRPCNode(inst *types.Instance, strategy genir.Strategy) *genir.Node {
	if inst != nil && inst.Kind == types.InstReal && inst.Def.Kind == types.DefBuiltin && inst.Def.BuiltinName == types.Void {
		return nil
	}
	return genir.FrameTopLevel(genir.Build(inst, strategy), strategy)
}

func containsAnyRef(n *genir.Node) bool {
	if n == nil {
		return false
	}
	if n.Kind == genir.KindAnyRef {
		return true
	}
	if containsAnyRef(n.Sub) {
		return true
	}
	for _, a := range n.RefArgs {
		if containsAnyRef(a) {
			return true
		}
	}
	for _, f := range n.Fields {
		if containsAnyRef(f.Sub) {
			return true
		}
	}
	for _, br := range n.Branches {
		if containsAnyRef(br.Field.Sub) {
			return true
		}
	}
	return false
}

func sanitizeKey(s string) string {
	r := strings.NewReplacer("#", "_", "<", "_", ">", "_", ",", "_", "[", "_", "]", "_")
	return r.Replace(s)
}
