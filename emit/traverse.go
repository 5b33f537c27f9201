package emit

import (
	"fmt"

	"github.com/DanielSharp01/eprotoc/genir"
)

// serializeGenNode and deserializeGenNode are the two mutually-recursive
// traversals of §4.7: "serializeGenNode(node, valueExpr) -> lines[]" and
// its mirror. valueExpr is an arbitrary target-language L-value
// expression (`value.foo`, `value[i]`, a local temp); loop induction
// variables and intermediate bindings are mangled from it per §4.7.
func (e *Emitter) serializeGenNode(b *builder, n *genir.Node, valueExpr string) {
	switch n.Kind {
	case genir.KindPrimitive:
		b.linef("writer.%s(%s);", n.PrimitiveName, valueExpr)

	case genir.KindNullable:
		b.linef("writer.uint32(%s === null || %s === undefined ? 0 : 1);", valueExpr, valueExpr)
		b.linef("if (%s !== null && %s !== undefined) {", valueExpr, valueExpr)
		b.in()
		e.serializeGenNode(b, n.Sub, valueExpr)
		b.dedent()
		b.line("}")

	case genir.KindLen:
		b.line("writer.fork();")
		e.serializeGenNode(b, n.Sub, valueExpr)
		b.line("writer.ldelim();")

	case genir.KindArray:
		tmp := "item_" + mangle(valueExpr)
		b.linef("for (const %s of %s) {", tmp, valueExpr)
		b.in()
		e.serializeGenNode(b, n.Sub, tmp)
		b.dedent()
		b.line("}")

	case genir.KindStruct:
		for _, f := range n.Fields {
			expr := selectorExpr(valueExpr, f.Selector)
			guard := conditionExpr(expr, f.Condition)
			if guard != "" {
				b.linef("if (%s) {", guard)
				b.in()
			}
			b.linef("writer.tag(%d, %d);", f.Ordinal, f.WireType)
			e.serializeGenNode(b, f.Sub, expr)
			if guard != "" {
				b.dedent()
				b.line("}")
			}
		}

	case genir.KindSwitch:
		for i, br := range n.Branches {
			kw := "if"
			if i > 0 {
				kw = "} else if"
			}
			b.linef("%s (%s) {", kw, anyPredicate(br.Predicate, valueExpr))
			b.in()
			b.linef("writer.tag(%d, %d);", br.Field.Ordinal, br.Field.WireType)
			e.serializeGenNode(b, br.Field.Sub, valueExpr)
			b.dedent()
		}
		b.line("}")

	case genir.KindMapValue:
		tmp := "entry_" + mangle(valueExpr)
		b.linef("for (const %s of %s(%s)) {", tmp, n.MapSerialize, valueExpr)
		b.in()
		e.serializeGenNode(b, n.Sub, tmp)
		b.dedent()
		b.line("}")

	case genir.KindMessageRef:
		b.linef("%s.serialize%s%s(writer, %s);", e.qualify(n.RefPackageID, n.RefName), n.RefName, genericSuffix(n.RefArgs), valueExpr)

	case genir.KindAnyRef:
		b.linef("%s.serializeAny(writer, %s);", aliasAny, valueExpr)

	default:
		b.linef("/* unhandled genir kind %d */", n.Kind)
	}
}

func (e *Emitter) deserializeGenNode(b *builder, n *genir.Node, valueExpr string) {
	switch n.Kind {
	case genir.KindPrimitive:
		b.linef("%s = reader.%s();", valueExpr, n.PrimitiveName)

	case genir.KindNullable:
		tmp := "present_" + mangle(valueExpr)
		b.linef("const %s = reader.uint32();", tmp)
		b.linef("if (%s === 0) {", tmp)
		b.in()
		b.linef("%s = null;", valueExpr)
		b.dedent()
		b.line("} else {")
		b.in()
		e.deserializeGenNode(b, n.Sub, valueExpr)
		b.dedent()
		b.line("}")

	case genir.KindLen:
		b.line("{")
		b.in()
		b.line("const end = reader.uint32() + reader.pos;")
		e.deserializeGenNode(b, n.Sub, valueExpr)
		b.dedent()
		b.line("}")

	case genir.KindArray:
		tmp := "item_" + mangle(valueExpr)
		b.linef("%s = [];", valueExpr)
		b.line("while (reader.pos < end) {")
		b.in()
		b.linef("let %s;", tmp)
		e.deserializeGenNode(b, n.Sub, tmp)
		b.linef("%s.push(%s);", valueExpr, tmp)
		b.dedent()
		b.line("}")

	case genir.KindStruct:
		b.linef("%s = %s;", valueExpr, n.InitValue)
		b.line("while (reader.pos < end) {")
		b.in()
		b.line("const tag = reader.tag();")
		b.line("switch (tag.ordinal) {")
		for _, f := range n.Fields {
			b.linef("case %d:", f.Ordinal)
			b.in()
			expr := selectorExpr(valueExpr, f.Selector)
			e.deserializeGenNode(b, f.Sub, expr)
			b.line("break;")
			b.dedent()
		}
		b.line("default:")
		b.in()
		b.line("reader.skip(tag.wireType);")
		b.dedent()
		b.line("}")
		b.dedent()
		b.line("}")

	case genir.KindSwitch:
		b.line("{")
		b.in()
		b.line("const tag = reader.tag();")
		b.line("switch (tag.ordinal) {")
		for _, br := range n.Branches {
			b.linef("case %d: {", br.Field.Ordinal)
			b.in()
			e.deserializeGenNode(b, br.Field.Sub, valueExpr)
			b.line("break;")
			b.dedent()
			b.line("}")
		}
		b.line("}")
		b.dedent()
		b.line("}")

	case genir.KindMapValue:
		tmp := "entry_" + mangle(valueExpr)
		b.linef("const %s_list = [];", tmp)
		b.line("while (reader.pos < end) {")
		b.in()
		b.linef("let %s;", tmp)
		e.deserializeGenNode(b, n.Sub, tmp)
		b.linef("%s_list.push(%s);", tmp, tmp)
		b.dedent()
		b.line("}")
		b.linef("%s = %s(%s_list);", valueExpr, n.MapDeserialize, tmp)

	case genir.KindMessageRef:
		b.linef("%s = %s.deserialize%s%s(reader, end);", valueExpr, e.qualify(n.RefPackageID, n.RefName), n.RefName, genericSuffix(n.RefArgs))

	case genir.KindAnyRef:
		b.linef("%s = %s.deserializeAny(reader, end);", valueExpr, aliasAny)

	default:
		b.linef("/* unhandled genir kind %d */", n.Kind)
	}
}

func selectorExpr(base string, s genir.Selector) string {
	switch s.Kind {
	case genir.SelFieldName:
		return base + "." + s.Name
	case genir.SelArrayIndex:
		return base + "[i]"
	default:
		return base
	}
}

func conditionExpr(expr string, c genir.Condition) string {
	switch c.Kind {
	case genir.CondNotNull:
		return fmt.Sprintf("%s !== null && %s !== undefined", expr, expr)
	case genir.CondNotUndefined:
		return fmt.Sprintf("%s !== undefined", expr)
	default:
		return ""
	}
}

func anyPredicate(predicate, expr string) string {
	switch predicate {
	case "null":
		return fmt.Sprintf("%s === null || %s === undefined", expr, expr)
	case "array":
		return fmt.Sprintf("Array.isArray(%s)", expr)
	case "object":
		return fmt.Sprintf("typeof %s === 'object' && %s !== null && !Array.isArray(%s)", expr, expr, expr)
	default:
		return fmt.Sprintf("typeof %s === '%s'", expr, predicate)
	}
}
