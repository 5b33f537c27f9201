// Package types holds the canonical set of type definitions (§2.5, §3):
// builtins, enums, string-enums, and messages, keyed by (packageId, name),
// plus the type-instance variants used inside field and RPC signatures.
package types

import "github.com/DanielSharp01/eprotoc/sourcemap"

// BuiltinName enumerates the fixed builtin set of §3.
type BuiltinName string

const (
	Int32    BuiltinName = "int32"
	Int64    BuiltinName = "int64"
	Uint32   BuiltinName = "uint32"
	Uint64   BuiltinName = "uint64"
	Float    BuiltinName = "float"
	Double   BuiltinName = "double"
	Sint32   BuiltinName = "sint32"
	Sint64   BuiltinName = "sint64"
	Fixed32  BuiltinName = "fixed32"
	Fixed64  BuiltinName = "fixed64"
	Sfixed32 BuiltinName = "sfixed32"
	Sfixed64 BuiltinName = "sfixed64"
	Bool     BuiltinName = "bool"
	String   BuiltinName = "string"
	Bytes    BuiltinName = "bytes"
	DateName BuiltinName = "Date"
	Void     BuiltinName = "void"
	Any      BuiltinName = "any"
	ArrayCon BuiltinName = "Array"
	NullCon  BuiltinName = "Nullable"
	MapCon   BuiltinName = "Map"
)

// builtinArity is the formal arity of every builtin, per §3: scalars and
// pseudo-types take no arguments; the three generic constructors do.
var builtinArity = map[BuiltinName]int{
	Int32: 0, Int64: 0, Uint32: 0, Uint64: 0, Float: 0, Double: 0,
	Sint32: 0, Sint64: 0, Fixed32: 0, Fixed64: 0, Sfixed32: 0, Sfixed64: 0,
	Bool: 0, String: 0, Bytes: 0, DateName: 0, Void: 0, Any: 0,
	ArrayCon: 1, NullCon: 1, MapCon: 2,
}

// Builtins is the full set named in §3, used to seed a fresh Registry.
var Builtins = func() []BuiltinName {
	out := make([]BuiltinName, 0, len(builtinArity))
	for name := range builtinArity {
		out = append(out, name)
	}
	return out
}()

func (n BuiltinName) Arity() int { return builtinArity[n] }

// DefKind tags the Definition variant, mirroring the AST node tagged
// variant of §3.
type DefKind uint8

const (
	DefBuiltin DefKind = iota
	DefEnum
	DefStringEnum
	DefMessage
)

// EnumMember is one numeric enum field: {name, value}.
type EnumMember struct {
	Name  string
	Value int64
	Span  sourcemap.Span
}

// MessageField is one ordered, resolved message field.
type MessageField struct {
	Ordinal  int64
	Name     string
	Optional bool
	Type     *Instance
	Span     sourcemap.Span
}

// GenericParam is a formal generic parameter, in scope only within its
// enclosing message (§3).
type GenericParam struct {
	Name string
}

// ArgTuple is a concrete argument list substituted for a generic message's
// formal parameters when it is realized (§2.7, §3).
type ArgTuple struct {
	Args []*Instance
}

// Key returns a canonical textual encoding of the tuple, used to dedup the
// realization set under structural equality per the Design Notes (§9):
// a trie keyed by definition-id then by each argument's canonical form is
// one valid implementation; a canonical string key is another, and is
// simpler to reason about for a front-end of this size.
func (a ArgTuple) Key() string {
	s := ""
	for i, arg := range a.Args {
		if i > 0 {
			s += ","
		}
		s += arg.CanonicalKey()
	}
	return s
}

// Definition is a type definition: §3's tagged variant over
// {Builtin, Enum, StringEnum, Message}. A Definition is identified by its
// (PackageID, Name) pair. Its fields hold type instances, and a Real
// instance points directly at the Definition it references (Instance.Def)
// rather than naming it symbolically, so messages that reference each
// other form a cycle of pointers.
type Definition struct {
	Kind DefKind

	PackageID string
	Name      string
	Span      sourcemap.Span

	// Builtin
	BuiltinName BuiltinName

	// Enum
	EnumMembers []EnumMember

	// StringEnum
	StringValues []string

	// Message
	Generics     []GenericParam
	Fields       []MessageField
	realizations map[string]ArgTuple
}

func (d *Definition) Arity() int {
	switch d.Kind {
	case DefBuiltin:
		return d.BuiltinName.Arity()
	case DefMessage:
		return len(d.Generics)
	default:
		return 0
	}
}

// IsGeneric reports whether this message definition has formal parameters.
func (d *Definition) IsGeneric() bool {
	return d.Kind == DefMessage && len(d.Generics) > 0
}

// GenericIndex returns the index of name among this message's formal
// parameters, or -1.
func (d *Definition) GenericIndex(name string) int {
	for i, g := range d.Generics {
		if g.Name == name {
			return i
		}
	}
	return -1
}

// AddRealization records a concrete argument tuple reachable from an RPC
// signature (or transitively from another realization), deduplicated by
// structural equality (§3 invariant: "realArgTuples contains no duplicates
// under structural equality"). Returns true the first time a given tuple
// is recorded, so the analyzer's generic-instance collection fixpoint
// loop only revisits newly discovered tuples.
func (d *Definition) AddRealization(tuple ArgTuple) bool {
	if d.realizations == nil {
		d.realizations = make(map[string]ArgTuple)
	}
	key := tuple.Key()
	if _, ok := d.realizations[key]; ok {
		return false
	}
	d.realizations[key] = tuple
	return true
}

// Realizations returns the realized argument tuples recorded so far, in
// unspecified order.
func (d *Definition) Realizations() []ArgTuple {
	out := make([]ArgTuple, 0, len(d.realizations))
	for _, t := range d.realizations {
		out = append(out, t)
	}
	return out
}
