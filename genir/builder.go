package genir

import (
	"strings"

	"github.com/DanielSharp01/eprotoc/types"
)

// Strategy selects the wire-format rewrite rules of §4.6/§6.
type Strategy uint8

const (
	Native Strategy = iota
	Evolved
)

// scalarWire is the fixed builtin -> wire-type table of §4.5.
var scalarWire = map[types.BuiltinName]int{
	types.Int32: WireVarint, types.Int64: WireVarint,
	types.Uint32: WireVarint, types.Uint64: WireVarint,
	types.Sint32: WireVarint, types.Sint64: WireVarint,
	types.Fixed32: WireI32, types.Sfixed32: WireI32, types.Float: WireI32,
	types.Fixed64: WireI64, types.Sfixed64: WireI64, types.Double: WireI64,
	types.String: WireLen, types.Bytes: WireLen, types.DateName: WireLen,
}

// Build lowers one Deeply-Real type instance to a GenIR tree per §4.6.
// inst must be Deeply-Real — callers only ever reach Build with resolved
// field/RPC types, which the analyzer already guarantees are Real.
func Build(inst *types.Instance, strategy Strategy) *Node {
	if inst == nil || inst.Kind != types.InstReal {
		return nil
	}
	n := buildInstance(inst, strategy)
	if n != nil {
		n.TypeLabel = Label(inst)
	}
	return n
}

func buildInstance(inst *types.Instance, strategy Strategy) *Node {
	switch inst.Def.Kind {
	case types.DefBuiltin:
		return buildBuiltin(inst, strategy)
	case types.DefEnum:
		return &Node{
			Kind: KindMapValue, WireType: WireVarint,
			MapSerialize: "enum-to-int", MapDeserialize: "int-to-enum",
			Sub: &Node{Kind: KindPrimitive, WireType: WireVarint, PrimitiveName: "uint32"},
		}
	case types.DefStringEnum:
		return &Node{Kind: KindPrimitive, WireType: WireLen, PrimitiveName: "string"}
	case types.DefMessage:
		args := make([]*Node, len(inst.Args))
		for i, a := range inst.Args {
			args[i] = Build(a, strategy)
		}
		return &Node{
			Kind: KindLen, WireType: WireLen,
			Sub: &Node{
				Kind: KindMessageRef, WireType: WireLen,
				RefPackageID: inst.Def.PackageID, RefName: inst.Def.Name, RefArgs: args,
			},
		}
	default:
		return nil
	}
}

// Label builds an identifier-safe name for a Deeply-Real instance, used
// to name monomorphized message functions and to mangle a MessageRef's
// generic-argument suffix (e.g. Pagination<int32> -> "PaginationInt32").
func Label(inst *types.Instance) string {
	if inst == nil {
		return "T"
	}
	switch inst.Kind {
	case types.InstReal:
		if inst.Def.Kind == types.DefBuiltin {
			return strings.ToUpper(string(inst.Def.BuiltinName[:1])) + string(inst.Def.BuiltinName[1:])
		}
		label := inst.Def.Name
		for _, a := range inst.Args {
			label += Label(a)
		}
		return label
	case types.InstGeneric:
		return inst.GenericName
	default:
		return "Unknown"
	}
}

func buildBool() *Node {
	return &Node{
		Kind: KindMapValue, WireType: WireVarint,
		MapSerialize: "bool-to-int", MapDeserialize: "int-to-bool",
		Sub: &Node{Kind: KindPrimitive, WireType: WireVarint, PrimitiveName: "uint32"},
	}
}

func buildBuiltin(inst *types.Instance, strategy Strategy) *Node {
	name := inst.Def.BuiltinName
	switch name {
	case types.Bool:
		return buildBool()
	case types.Any:
		return &Node{Kind: KindLen, WireType: WireLen, Sub: buildAny()}
	case types.ArrayCon:
		return buildArray(inst.Args[0], strategy)
	case types.NullCon:
		return buildNullable(inst.Args[0], strategy)
	case types.MapCon:
		return buildMap(inst.Args[0], inst.Args[1], strategy)
	default:
		return &Node{Kind: KindPrimitive, WireType: scalarWire[name], PrimitiveName: string(name)}
	}
}

// buildArray implements "Array<U> -> Len(Array(sub(U)))", plus the
// native-strategy nested-array wrapper of §4.6.
func buildArray(elem *types.Instance, strategy Strategy) *Node {
	sub := Build(elem, strategy)
	if strategy == Native && elem.Kind == types.InstReal && elem.Def.Kind == types.DefBuiltin && elem.Def.BuiltinName == types.ArrayCon {
		sub = &Node{
			Kind: KindLen, WireType: WireLen,
			Sub: &Node{
				Kind: KindStruct, InitValue: "{}",
				Fields: []*Field{{
					Ordinal: 1, WireType: WireLen,
					Selector: Selector{Kind: SelIdentity},
					Sub:      &Node{Kind: KindLen, WireType: WireLen, Sub: sub},
				}},
			},
		}
	}
	return &Node{
		Kind: KindLen, WireType: WireLen,
		Sub: &Node{Kind: KindArray, WireType: WireLen, Sub: sub},
	}
}

// buildNullable implements the strategy-dependent Nullable<U> rule: a
// compact discriminant body under `evolved`, a one-field wrapper message
// under `native`.
func buildNullable(elem *types.Instance, strategy Strategy) *Node {
	sub := Build(elem, strategy)
	if strategy == Evolved {
		return &Node{
			Kind: KindLen, WireType: WireLen,
			Sub: &Node{Kind: KindNullable, WireType: WireLen, Sub: sub},
		}
	}
	return &Node{
		Kind: KindLen, WireType: WireLen,
		Sub: &Node{
			Kind: KindStruct, InitValue: "null",
			Fields: []*Field{{
				Ordinal: 1, WireType: sub.WireType,
				Selector: Selector{Kind: SelIdentity}, Condition: Condition{Kind: CondNotNull},
				Sub: sub,
			}},
		},
	}
}

// buildMap implements "Map<K,V> -> MapValue(Object.entries, new Map(...),
// Len(Array(Struct(Field(#1,K), Field(#2,V)))))".
func buildMap(keyInst, valInst *types.Instance, strategy Strategy) *Node {
	key := Build(keyInst, strategy)
	val := Build(valInst, strategy)
	entry := &Node{
		Kind: KindStruct, InitValue: "{}",
		Fields: []*Field{
			{Ordinal: 1, WireType: key.WireType, Selector: Selector{Kind: SelFieldName, Name: "key"}, Sub: key},
			{Ordinal: 2, WireType: val.WireType, Selector: Selector{Kind: SelFieldName, Name: "value"}, Sub: val},
		},
	}
	return &Node{
		Kind: KindMapValue, WireType: WireLen,
		MapSerialize: "Object.entries", MapDeserialize: "new Map",
		Sub: &Node{
			Kind: KindLen, WireType: WireLen,
			Sub: &Node{Kind: KindArray, WireType: WireLen, Sub: &Node{Kind: KindLen, WireType: WireLen, Sub: entry}},
		},
	}
}

// buildAny constructs the fixed Any switch of §4.6. Every call builds a
// fresh copy; recursive occurrences of `any` inside it (array elements,
// map values) are KindAnyRef nodes that call the shared serializeAny/
// deserializeAny pair instead of nesting another switch. The Switch's own WireType is LEN (§4.5: every multi-field
// construct other than a bare Primitive carries LEN), so a directly
// field-typed `any` gets the same Len-framing every other non-scalar node
// gets instead of a second, conflicting outer tag.
func buildAny() *Node {
	anyRef := &Node{Kind: KindAnyRef, WireType: WireLen}
	return &Node{
		Kind: KindSwitch, WireType: WireLen,
		Branches: []SwitchBranch{
			{Predicate: "null", Field: &Field{Ordinal: 1, WireType: WireVarint, Sub: &Node{Kind: KindPrimitive, WireType: WireVarint, PrimitiveName: "uint32"}}},
			{Predicate: "number", Field: &Field{Ordinal: 2, WireType: WireI64, Sub: &Node{Kind: KindPrimitive, WireType: WireI64, PrimitiveName: "double"}}},
			{Predicate: "string", Field: &Field{Ordinal: 3, WireType: WireLen, Sub: &Node{Kind: KindPrimitive, WireType: WireLen, PrimitiveName: "string"}}},
			{Predicate: "boolean", Field: &Field{Ordinal: 4, WireType: WireVarint, Sub: buildBool()}},
			{Predicate: "object", Field: &Field{Ordinal: 5, WireType: WireLen, Sub: buildMapOfAny(anyRef)}},
			{Predicate: "array", Field: &Field{Ordinal: 6, WireType: WireLen, Sub: &Node{
				Kind: KindLen, WireType: WireLen,
				Sub: &Node{Kind: KindArray, WireType: WireLen, Sub: anyRef},
			}}},
		},
	}
}

func buildMapOfAny(anyRef *Node) *Node {
	entry := &Node{
		Kind: KindStruct, InitValue: "{}",
		Fields: []*Field{
			{Ordinal: 1, WireType: WireLen, Selector: Selector{Kind: SelFieldName, Name: "key"}, Sub: &Node{Kind: KindPrimitive, WireType: WireLen, PrimitiveName: "string"}},
			{Ordinal: 2, WireType: WireLen, Selector: Selector{Kind: SelFieldName, Name: "value"}, Sub: anyRef},
		},
	}
	return &Node{
		Kind: KindMapValue, WireType: WireLen,
		MapSerialize: "Object.entries", MapDeserialize: "new Map",
		Sub: &Node{
			Kind: KindLen, WireType: WireLen,
			Sub: &Node{Kind: KindArray, WireType: WireLen, Sub: &Node{Kind: KindLen, WireType: WireLen, Sub: entry}},
		},
	}
}

// BuildAnyBody returns the bare Any switch, unwrapped, for the synthetic
// serializeAny/deserializeAny function pair: the function body itself owns
// the length boundary the same way a message's own body does (see
// BuildMessageBody), so the Len that every other reference to `any` is
// wrapped in would be redundant here.
func BuildAnyBody() *Node {
	return buildAny()
}

// FrameTopLevel applies native strategy's one-field wrapper-message
// convention (§4.6, the same rule wrapOptional and buildArray's nested-
// array case apply) to a bare top-level RPC payload, so a scalar/enum/
// string-enum request or response type is still a valid length-delimited
// protobuf message rather than a dangling unframed primitive. Types that
// already self-frame (array, nullable, map, message, any) are returned
// unchanged. Under evolved strategy a bare top-level scalar is an
// intentional relaxation (§4.6) and is left as-is.
func FrameTopLevel(n *Node, strategy Strategy) *Node {
	selfFramedMap := n != nil && n.Kind == KindMapValue && n.Sub != nil && n.Sub.Kind == KindLen
	if n == nil || n.Kind == KindLen || selfFramedMap || strategy != Native {
		return n
	}
	return &Node{
		Kind: KindLen, WireType: WireLen,
		Sub: &Node{
			Kind: KindStruct, InitValue: "{}",
			Fields: []*Field{{
				Ordinal: 1, WireType: n.WireType,
				Selector: Selector{Kind: SelIdentity},
				Sub:      n,
			}},
		},
	}
}

// BuildMessageBody lowers a realized message's field list to its top-level
// Struct node. The top-level Len that Build would otherwise wrap a message
// reference in is intentionally absent here: the generated serialize/
// deserialize function already owns the length boundary, per §4.6 ("the
// top-level Len of a message body is unwrapped because the caller already
// owns the end boundary").
func BuildMessageBody(fields []types.MessageField, strategy Strategy) *Node {
	out := &Node{Kind: KindStruct, InitValue: "{}"}
	for _, f := range fields {
		sub := Build(f.Type, strategy)
		if f.Optional {
			sub = wrapOptional(sub, strategy)
		}
		out.Fields = append(out.Fields, &Field{
			Ordinal:  f.Ordinal,
			WireType: sub.WireType,
			Selector: Selector{Kind: SelFieldName, Name: f.Name},
			Sub:      sub,
		})
	}
	return out
}

// wrapOptional applies the same Nullable<U> construction of §4.6 to an
// `optional` field's already-built GenIR, since an absent optional field
// and a null Nullable<U> value share one wire representation.
func wrapOptional(sub *Node, strategy Strategy) *Node {
	if strategy == Evolved {
		return &Node{Kind: KindLen, WireType: WireLen, Sub: &Node{Kind: KindNullable, WireType: WireLen, Sub: sub}}
	}
	return &Node{
		Kind: KindLen, WireType: WireLen,
		Sub: &Node{
			Kind: KindStruct, InitValue: "null",
			Fields: []*Field{{
				Ordinal: 1, WireType: sub.WireType,
				Selector: Selector{Kind: SelIdentity}, Condition: Condition{Kind: CondNotNull},
				Sub: sub,
			}},
		},
	}
}
