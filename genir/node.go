// Package genir is the code-generation intermediate representation of
// §4.5/§4.6: a small, output-language-independent tree of serialize/
// deserialize combinators, built once per realized (Deeply-Real) type and
// lowered to text by the emit package's two traversals.
package genir

// Kind tags the GenIR node variant of §4.5's table.
type Kind uint8

const (
	KindPrimitive Kind = iota
	KindNullable
	KindLen
	KindArray
	KindStruct
	KindSwitch
	KindMapValue
	// KindMessageRef is the "Message -> Len(Primitive(call M.serialize<Args>,
	// call M.deserialize<Args>))" rule of §4.6: a cross-reference to another
	// realized message's generated serialize/deserialize pair, rather than
	// an inline primitive.
	KindMessageRef
	// KindAnyRef is a self-reference to the single, pre-built Any switch
	// (§4.6), used wherever `any` recurs into itself (array of any, map
	// values of type any) without rebuilding the switch each time.
	KindAnyRef
)

// Wire type constants, fixed per §4.5: "protobuf conventions."
const (
	WireVarint = 0
	WireI64    = 1
	WireLen    = 2
	WireI32    = 5
)

// SelectorKind is the ADT alternative to a first-class-function selector,
// per the Design Notes (§9): "an implementation may replace these with
// small ADT variants... to avoid first-class-function captures entirely."
type SelectorKind uint8

const (
	SelIdentity SelectorKind = iota
	SelFieldName
	SelArrayIndex
)

type Selector struct {
	Kind SelectorKind
	Name string // meaningful when Kind == SelFieldName
}

// ConditionKind is the ADT alternative to a first-class-function
// condition predicate, same rationale as Selector.
type ConditionKind uint8

const (
	CondNone ConditionKind = iota
	CondNotNull
	CondNotUndefined
)

type Condition struct {
	Kind ConditionKind
}

// Node is one GenIR tree node. Only the fields relevant to Kind are
// populated; this mirrors the tagged-variant style used throughout the
// analyzer's own AST and type-instance types. WireType is the node's own
// wire type where one applies (every non-Struct node has exactly one, per
// §4.5: "Wire type for Array/Map/Nullable/Message is always LEN"). Switch
// also carries WireType LEN, since a directly field-typed `any` needs the
// same Len-framing as any other non-scalar node.
type Node struct {
	Kind     Kind
	WireType int

	// TypeLabel is an identifier-safe label for the instance this node
	// was built from (e.g. "Int32", "ArrayInt32", "PaginationInt32"),
	// used by the emit package to name monomorphized functions and to
	// mangle a MessageRef's generic argument suffix.
	TypeLabel string

	// Primitive: a scalar builtin's writer/reader pair, named by the
	// builtin's own name ("int32", "bool", "Date", ...); emit owns the
	// name -> writer-fn/reader-fn/expression mapping.
	PrimitiveName string

	// MessageRef
	RefPackageID string
	RefName      string
	RefArgs      []*Node // realized argument GenIR, for the emitted generic suffix

	// Nullable, Len, Array single-child wrapper
	Sub *Node

	// Struct
	InitValue string
	Fields    []*Field

	// Switch
	Branches []SwitchBranch

	// MapValue
	MapSerialize   string
	MapDeserialize string
}

// Field is one labelled struct member: §4.5's `Field` node.
type Field struct {
	Ordinal   int64
	WireType  int
	Name      string
	Selector  Selector
	Condition Condition
	Sub       *Node
}

// SwitchBranch is one `any` alternative: a runtime-type predicate plus
// the Field it maps to.
type SwitchBranch struct {
	Predicate string // "null" | "number" | "string" | "boolean" | "array" | "object"
	Field     *Field
}
