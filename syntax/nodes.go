package syntax

import "github.com/DanielSharp01/eprotoc/sourcemap"

// Node is the tagged-variant AST node of §3: every concrete node type below
// implements it. IsComplete reports whether every required sub-part parsed
// without the parser substituting an error token, so later passes can
// short-circuit on malformed subtrees instead of pattern-matching on nils.
type Node interface {
	NodeSpan() sourcemap.Span
	Complete() bool
	isNode()
}

// TypeRef is the parsed (unresolved) form of the `type` production:
// a dotted identifier plus an optional generic argument list.
type TypeRef struct {
	Span       sourcemap.Span
	Parts      []string // dotted segments, e.g. ["a", "Fruit"]
	PartSpans  []sourcemap.Span
	Args       []*TypeRef
	IsComplete bool
}

func (t *TypeRef) NodeSpan() sourcemap.Span { return t.Span }
func (t *TypeRef) Complete() bool           { return t.IsComplete }
func (*TypeRef) isNode()                    {}

// Dotted joins the parsed segments with '.', the textual form used in
// diagnostics and in the resolution algorithm of §4.3.
func (t *TypeRef) Dotted() string {
	out := t.Parts[0]
	for _, p := range t.Parts[1:] {
		out += "." + p
	}
	return out
}

// GenericParam is a formal generic parameter declared on a message, e.g.
// the `T` in `message Pagination<T> { ... }`.
type GenericParam struct {
	Name string
	Span sourcemap.Span
}

// Field is one message field: `messageField := 'optional'? type ident ('=' number)? ';'`.
type Field struct {
	Span        sourcemap.Span
	Optional    bool
	Type        *TypeRef
	Name        string
	NameSpan    sourcemap.Span
	HasOrdinal  bool
	Ordinal     int64
	OrdinalSpan sourcemap.Span
	IsComplete  bool
}

func (f *Field) NodeSpan() sourcemap.Span { return f.Span }
func (f *Field) Complete() bool           { return f.IsComplete }
func (*Field) isNode()                    {}

// EnumField is one numeric enum member: `ident ('=' number)?`.
type EnumField struct {
	Span       sourcemap.Span
	Name       string
	NameSpan   sourcemap.Span
	HasValue   bool
	Value      int64
	ValueSpan  sourcemap.Span
	IsComplete bool
}

func (f *EnumField) NodeSpan() sourcemap.Span { return f.Span }
func (f *EnumField) Complete() bool           { return f.IsComplete }
func (*EnumField) isNode()                    {}

// RPC is one service method: `'rpc' ident '(' 'stream'? type ')' 'returns' '(' 'stream'? type ')' ';'`.
type RPC struct {
	Span       sourcemap.Span
	Name       string
	NameSpan   sourcemap.Span
	ReqStream  bool
	ReqType    *TypeRef
	RespStream bool
	RespType   *TypeRef
	IsComplete bool
}

func (r *RPC) NodeSpan() sourcemap.Span { return r.Span }
func (r *RPC) Complete() bool           { return r.IsComplete }
func (*RPC) isNode()                    {}

// PackageDecl is a `package a.b.c;` statement. The grammar allows only one
// per file as the first top-level node; whether a given parse produced
// zero, one, or several is an analyzer concern (§4.3 phase 1), not a parser
// concern, so the parser simply records every one it finds in order.
type PackageDecl struct {
	Span       sourcemap.Span
	Segments   []string
	IsComplete bool
}

func (p *PackageDecl) NodeSpan() sourcemap.Span { return p.Span }
func (p *PackageDecl) Complete() bool           { return p.IsComplete }
func (*PackageDecl) isNode()                    {}

// Message is a `message Name<T, U> { field* }` declaration.
type Message struct {
	Span       sourcemap.Span
	Name       string
	NameSpan   sourcemap.Span
	Generics   []GenericParam
	Fields     []*Field
	IsComplete bool
}

func (m *Message) NodeSpan() sourcemap.Span { return m.Span }
func (m *Message) Complete() bool           { return m.IsComplete }
func (*Message) isNode()                    {}

// Enum is a numeric `enum Name { A = 0, B, ... }` declaration.
type Enum struct {
	Span       sourcemap.Span
	Name       string
	NameSpan   sourcemap.Span
	Fields     []*EnumField
	IsComplete bool
}

func (e *Enum) NodeSpan() sourcemap.Span { return e.Span }
func (e *Enum) Complete() bool           { return e.IsComplete }
func (*Enum) isNode()                    {}

// StringEnum is a `string enum Name { "a", "b", ... }` declaration.
type StringEnum struct {
	Span       sourcemap.Span
	Name       string
	NameSpan   sourcemap.Span
	Values     []string
	ValueSpans []sourcemap.Span
	IsComplete bool
}

func (e *StringEnum) NodeSpan() sourcemap.Span { return e.Span }
func (e *StringEnum) Complete() bool           { return e.IsComplete }
func (*StringEnum) isNode()                    {}

// Service is a `service Name { rpc* }` declaration.
type Service struct {
	Span       sourcemap.Span
	Name       string
	NameSpan   sourcemap.Span
	RPCs       []*RPC
	IsComplete bool
}

func (s *Service) NodeSpan() sourcemap.Span { return s.Span }
func (s *Service) Complete() bool           { return s.IsComplete }
func (*Service) isNode()                    {}

// File is the root of one parsed source file: an ordered list of top-level
// nodes, exactly as produced by the grammar's `file := packageDecl topLevel*`
// production (permissively: any node may appear in any position; the
// analyzer enforces package-first/package-unique, per §4.3).
type File struct {
	Nodes []Node
}

// Packages returns every PackageDecl node found in the file, in source order.
func (f *File) Packages() []*PackageDecl {
	var out []*PackageDecl
	for _, n := range f.Nodes {
		if p, ok := n.(*PackageDecl); ok {
			out = append(out, p)
		}
	}
	return out
}
