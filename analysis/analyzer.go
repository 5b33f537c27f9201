// Package analysis implements the Semantic Analyzer of §2.6/§4.3: it turns
// parsed ASTs into resolved definitions, enforcing the two-level namespace,
// ordinal and redefinition rules, and collecting the generic realization
// sets reachable from service RPCs.
//
// The analyzer is deliberately two-phase at the API boundary to match §5's
// LSP-host contract: AnalyzeFile re-tokenizes/re-parses exactly one file
// and records its file-intrinsic ("local") diagnostics; Analyze reruns the
// cross-file pass (type resolution, redefinition, generic collection)
// over every currently tracked file. A caller editing one file calls
// AnalyzeFile for that file, then Analyze once to pick up the change
// everywhere it might matter — steps 1-4 of §5.
package analysis

import (
	"sort"
	"strings"

	"github.com/DanielSharp01/eprotoc/diag"
	"github.com/DanielSharp01/eprotoc/sourcemap"
	"github.com/DanielSharp01/eprotoc/syntax"
	"github.com/DanielSharp01/eprotoc/types"
)

// unknownPackageID is the sentinel used when a file has no package
// declaration (§4.3 phase 1: "Missing -> unknown-package sentinel").
// It can never collide with a builtin's packageID ("") or a real
// package's id (always >= 1 identifier segment, so never empty and never
// containing a NUL byte).
const unknownPackageID = "\x00unknown-package"

// Analyzer owns the source map, registries, diagnostics, and the
// per-file local records needed to re-run the global pass.
type Analyzer struct {
	Sources *sourcemap.Map
	Diags   *diag.Bag

	reg    *types.Registry
	svcReg *types.ServiceRegistry

	files map[string]*fileRecord
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{
		Sources: sourcemap.NewMap(),
		Diags:   diag.NewBag(),
		reg:     types.NewRegistry(),
		svcReg:  types.NewServiceRegistry(),
		files:   make(map[string]*fileRecord),
	}
}

// Registry exposes the current (post-Analyze) type registry, for the
// monomorphizer, GenIR builder, emitter, and query surface.
func (a *Analyzer) Registry() *types.Registry { return a.reg }

// Services exposes the current (post-Analyze) service registry.
func (a *Analyzer) Services() *types.ServiceRegistry { return a.svcReg }

// AST returns the parsed AST for a currently-loaded file, for callers
// that dump it directly (the CLI's -a/--ast flag) instead of
// re-parsing.
func (a *Analyzer) AST(name string) (*syntax.File, bool) {
	rec, ok := a.files[name]
	if !ok {
		return nil, false
	}
	return rec.ast, true
}

// Files returns the names of every currently-loaded file.
func (a *Analyzer) Files() []string {
	out := make([]string, 0, len(a.files))
	for name := range a.files {
		out = append(out, name)
	}
	return out
}

// fileRecord holds one file's parsed-and-locally-checked state, i.e. the
// output of Phase 1 (§4.3) before cross-file type resolution.
type fileRecord struct {
	name       string
	ast        *syntax.File
	packageID  string // unknownPackageID sentinel if no package decl
	hasPackage bool

	messages    []*localMessage
	enums       []*localEnum
	stringEnums []*localStringEnum
	services    []*localService
}

type localMessage struct {
	node     *syntax.Message
	generics []types.GenericParam
	fields   []localField
}

type localField struct {
	ordinal  int64
	name     string
	optional bool
	typeRef  *syntax.TypeRef
	span     sourcemap.Span
}

type localEnum struct {
	node    *syntax.Enum
	members []types.EnumMember
}

type localStringEnum struct {
	node   *syntax.StringEnum
	values []string
}

type localService struct {
	node *syntax.Service
	rpcs []localRPC
}

type localRPC struct {
	name       string
	span       sourcemap.Span
	reqStream  bool
	reqType    *syntax.TypeRef
	reqSpan    sourcemap.Span
	respStream bool
	respType   *syntax.TypeRef
	respSpan   sourcemap.Span
}

func joinSegments(segments []string) string {
	return strings.Join(segments, "")
}

// AnalyzeFile re-tokenizes and re-parses one file, recomputes its
// file-intrinsic ("local") diagnostics (lex/parse errors, package-decl
// shape, field/enum/RPC name collisions, field ordinals, enum values),
// and replaces its record. It does not touch the shared type/service
// registries — that happens in Analyze, since name and type resolution
// are cross-file concerns (§5 steps 1-3).
func (a *Analyzer) AnalyzeFile(name, text string) {
	a.Diags.InvalidateFile(name)

	file := a.Sources.Put(name, text)
	ast := syntax.ParseFile(file, a.Diags)

	rec := &fileRecord{name: name, ast: ast}
	a.determinePackage(rec)
	a.collectLocal(rec)
	a.files[name] = rec
}

// InvalidateFile removes a file entirely: its source text, its local
// diagnostics, and its record. Used when a file is deleted from the
// workspace rather than edited (§5's LSP host owns calling this instead
// of AnalyzeFile in that case).
func (a *Analyzer) InvalidateFile(name string) {
	a.Diags.InvalidateFile(name)
	a.Sources.Remove(name)
	delete(a.files, name)
}

func (a *Analyzer) determinePackage(rec *fileRecord) {
	packages := rec.ast.Packages()
	if len(packages) == 0 {
		rec.packageID = unknownPackageID
		rec.hasPackage = false
		span := sourcemap.Span{File: rec.name}
		if len(rec.ast.Nodes) > 0 {
			span = rec.ast.Nodes[0].NodeSpan()
		}
		a.Diags.AddLocal(rec.name, diag.ErrMissingPackage(span))
		return
	}

	first := packages[0]
	rec.packageID = joinSegments(first.Segments)
	rec.hasPackage = true

	if len(rec.ast.Nodes) == 0 || rec.ast.Nodes[0] != syntax.Node(first) {
		a.Diags.AddLocal(rec.name, diag.ErrPackageNotFirst(first.Span))
	}
	for _, extra := range packages[1:] {
		a.Diags.AddLocal(rec.name, diag.ErrMultiplePackages(extra.Span))
	}
}

func (a *Analyzer) collectLocal(rec *fileRecord) {
	for _, n := range rec.ast.Nodes {
		switch node := n.(type) {
		case *syntax.Message:
			rec.messages = append(rec.messages, a.collectMessage(rec, node))
		case *syntax.Enum:
			rec.enums = append(rec.enums, a.collectEnum(rec, node))
		case *syntax.StringEnum:
			rec.stringEnums = append(rec.stringEnums, &localStringEnum{node: node, values: node.Values})
		case *syntax.Service:
			rec.services = append(rec.services, a.collectService(rec, node))
		}
	}
}

func (a *Analyzer) collectMessage(rec *fileRecord, node *syntax.Message) *localMessage {
	generics := make([]types.GenericParam, 0, len(node.Generics))
	for _, g := range node.Generics {
		generics = append(generics, types.GenericParam{Name: g.Name})
	}

	seen := make(map[string]bool)
	var k int64 = 1
	fields := make([]localField, 0, len(node.Fields))
	for _, f := range node.Fields {
		if f.Name != "" {
			if seen[f.Name] {
				a.Diags.AddLocal(rec.name, diag.ErrFieldRedefinition(f.NameSpan, f.Name))
			}
			seen[f.Name] = true
		}

		effective := k
		if f.HasOrdinal {
			n := f.Ordinal
			if n < k {
				if n < 1 {
					a.Diags.AddLocal(rec.name, diag.ErrOrdinalNonpositive(f.OrdinalSpan, n))
				} else {
					a.Diags.AddLocal(rec.name, diag.ErrOrdinalNotMonotonic(f.OrdinalSpan, n, k))
				}
			} else {
				effective = n
				k = n
			}
		}
		fields = append(fields, localField{
			ordinal:  effective,
			name:     f.Name,
			optional: f.Optional,
			typeRef:  f.Type,
			span:     f.Span,
		})
		k++
	}
	return &localMessage{node: node, generics: generics, fields: fields}
}

func (a *Analyzer) collectEnum(rec *fileRecord, node *syntax.Enum) *localEnum {
	seen := make(map[string]bool)
	var next int64
	members := make([]types.EnumMember, 0, len(node.Fields))
	for _, f := range node.Fields {
		if f.Name != "" {
			if seen[f.Name] {
				a.Diags.AddLocal(rec.name, diag.ErrFieldRedefinition(f.NameSpan, f.Name))
			}
			seen[f.Name] = true
		}
		val := next
		if f.HasValue {
			val = f.Value
		}
		members = append(members, types.EnumMember{Name: f.Name, Value: val, Span: f.Span})
		next = val + 1
	}
	return &localEnum{node: node, members: members}
}

func (a *Analyzer) collectService(rec *fileRecord, node *syntax.Service) *localService {
	seen := make(map[string]bool)
	rpcs := make([]localRPC, 0, len(node.RPCs))
	for _, r := range node.RPCs {
		if r.Name != "" {
			if seen[r.Name] {
				a.Diags.AddLocal(rec.name, diag.ErrFieldRedefinition(r.NameSpan, r.Name))
			}
			seen[r.Name] = true
		}
		rpcs = append(rpcs, localRPC{
			name:       r.Name,
			span:       r.Span,
			reqStream:  r.ReqStream,
			reqType:    r.ReqType,
			reqSpan:    r.ReqType.Span,
			respStream: r.RespStream,
			respType:   r.RespType,
			respSpan:   r.RespType.Span,
		})
	}
	return &localService{node: node, rpcs: rpcs}
}

// Analyze reruns the global pass (§4.3 phase 2, §5 step 4): it rebuilds
// the type and service registries from the currently tracked files'
// local records in deterministic order (files sorted by name; within a
// file, messages first, then enums, string-enums, and services, each in
// source order), enforcing cross-file name uniqueness, so when one name
// is used by two kinds in the same file the redefinition diagnostic goes
// to the one later in that kind order, not to the later one in the
// source. It then resolves every field and RPC
// type, and collects the generic realization fixpoint (§4.3's generic
// instance collection). It is safe to call repeatedly: each call clears
// global diagnostics and rebuilds the registries from scratch, so results
// are idempotent in the currently tracked fileset (§8 property 2).
func (a *Analyzer) Analyze() {
	a.Diags.ClearGlobal()

	reg := types.NewRegistry()
	svcReg := types.NewServiceRegistry()

	names := make([]string, 0, len(a.files))
	for name := range a.files {
		names = append(names, name)
	}
	sort.Strings(names)

	type claim struct {
		span sourcemap.Span
		file string
	}
	claimed := make(map[string]claim) // "<packageID>\x00<name>" -> first claim

	type msgBinding struct {
		file string
		rec  *localMessage
		def  *types.Definition
	}
	var msgBindings []msgBinding

	type svcBinding struct {
		file string
		rec  *localService
		svc  *types.Service
	}
	var svcBindings []svcBinding

	tryClaim := func(file, packageID, name string, span sourcemap.Span) bool {
		k := packageID + "\x00" + name
		if prev, ok := claimed[k]; ok {
			a.Diags.AddGlobal(diag.ErrRedefinition(span, name, prev.span))
			return false
		}
		claimed[k] = claim{span: span, file: file}
		return true
	}

	for _, name := range names {
		rec := a.files[name]
		pkg := rec.packageID

		for _, m := range rec.messages {
			if m.node.Name == "" {
				continue
			}
			if !tryClaim(name, pkg, m.node.Name, m.node.NameSpan) {
				continue
			}
			def := &types.Definition{
				Kind:      types.DefMessage,
				PackageID: pkg,
				Name:      m.node.Name,
				Span:      m.node.Span,
				Generics:  m.generics,
			}
			_ = reg.Define(name, def)
			msgBindings = append(msgBindings, msgBinding{file: name, rec: m, def: def})
		}

		for _, e := range rec.enums {
			if e.node.Name == "" {
				continue
			}
			if !tryClaim(name, pkg, e.node.Name, e.node.NameSpan) {
				continue
			}
			def := &types.Definition{
				Kind:        types.DefEnum,
				PackageID:   pkg,
				Name:        e.node.Name,
				Span:        e.node.Span,
				EnumMembers: e.members,
			}
			_ = reg.Define(name, def)
		}

		for _, se := range rec.stringEnums {
			if se.node.Name == "" {
				continue
			}
			if !tryClaim(name, pkg, se.node.Name, se.node.NameSpan) {
				continue
			}
			def := &types.Definition{
				Kind:         types.DefStringEnum,
				PackageID:    pkg,
				Name:         se.node.Name,
				Span:         se.node.Span,
				StringValues: se.values,
			}
			_ = reg.Define(name, def)
		}

		for _, s := range rec.services {
			if s.node.Name == "" {
				continue
			}
			if !tryClaim(name, pkg, s.node.Name, s.node.NameSpan) {
				continue
			}
			svc := &types.Service{PackageID: pkg, Name: s.node.Name, Span: s.node.Span}
			svcReg.Define(name, svc)
			svcBindings = append(svcBindings, svcBinding{file: name, rec: s, svc: svc})
		}
	}

	a.reg = reg
	a.svcReg = svcReg

	r := &resolver{analyzer: a, reg: reg}

	for _, b := range msgBindings {
		pkg := a.files[b.file].packageID
		fields := make([]types.MessageField, 0, len(b.rec.fields))
		for _, f := range b.rec.fields {
			inst := r.resolveType(f.typeRef, pkg, b.def.Generics)
			fields = append(fields, types.MessageField{
				Ordinal:  f.ordinal,
				Name:     f.name,
				Optional: f.optional,
				Type:     inst,
				Span:     f.span,
			})
		}
		b.def.Fields = fields
	}

	for _, b := range svcBindings {
		pkg := a.files[b.file].packageID
		rpcs := make([]*types.RPC, 0, len(b.rec.rpcs))
		for _, rpc := range b.rec.rpcs {
			reqInst := r.resolveType(rpc.reqType, pkg, nil)
			respInst := r.resolveType(rpc.respType, pkg, nil)
			rpcs = append(rpcs, &types.RPC{
				Name:             rpc.name,
				Path:             "/" + b.svc.Name + "/" + rpc.name,
				Span:             rpc.span,
				RequestSpan:      rpc.reqSpan,
				RequestType:      reqInst,
				RequestIsStream:  rpc.reqStream,
				ResponseSpan:     rpc.respSpan,
				ResponseType:     respInst,
				ResponseIsStream: rpc.respStream,
			})
		}
		b.svc.RPCs = rpcs
	}

	collectGenericInstances(svcReg)
}
