package syntax

import (
	"fmt"

	"github.com/DanielSharp01/eprotoc/diag"
	"github.com/DanielSharp01/eprotoc/sourcemap"
)

// Parser is a recursive-descent, error-tolerant parser over one file's
// token stream: §4.2. Every production returns a best-effort node with
// IsComplete=false when a required sub-production was missing, and the
// parser either consumes the offending token or inserts a zero-value
// placeholder, never raising a panic for a malformed program.
type Parser struct {
	toks  *Tokens
	diags *diag.Bag
	file  *sourcemap.File
	cur   Token
}

// NewParser builds a parser over file, dropping comment tokens as they are
// produced (§4.1: "stripped at parser entry").
func NewParser(file *sourcemap.File, diags *diag.Bag) *Parser {
	p := &Parser{
		toks:  NewTokens(file, diags),
		diags: diags,
		file:  file,
	}
	p.advance()
	return p
}

func (p *Parser) advance() {
	for {
		p.cur = p.toks.Next()
		if p.cur.Kind != T_COMMENT {
			return
		}
	}
}

func (p *Parser) atSymbol(text string) bool {
	return p.cur.Kind == T_SYMBOL && p.cur.Text == text
}

func (p *Parser) atKeyword(text string) bool {
	return p.cur.Kind == T_KEYWORD && p.cur.Text == text
}

// atIdentText matches a plain identifier with the given spelling; used for
// the `string` soft-keyword in `string enum`, which is not in the reserved
// keyword set of §4.1.
func (p *Parser) atIdentText(text string) bool {
	return p.cur.Kind == T_IDENT && p.cur.Text == text
}

func (p *Parser) descr() string {
	if p.cur.Kind == T_EOF {
		return "end of file"
	}
	return fmt.Sprintf("%s %q", p.cur.Kind, p.cur.Text)
}

func quote(s string) string {
	return "\"" + s + "\""
}

func (p *Parser) expectSymbol(text string) (sourcemap.Span, bool) {
	if p.atSymbol(text) {
		span := p.cur.Span
		p.advance()
		return span, true
	}
	p.diags.Add(diag.ErrParseExpect(p.cur.Span, quote(text), p.descr()))
	return p.cur.Span, false
}

func (p *Parser) expectKeyword(text string) (sourcemap.Span, bool) {
	if p.atKeyword(text) {
		span := p.cur.Span
		p.advance()
		return span, true
	}
	p.diags.Add(diag.ErrParseExpect(p.cur.Span, "keyword "+quote(text), p.descr()))
	return p.cur.Span, false
}

func (p *Parser) expectIdent() (string, sourcemap.Span, bool) {
	if p.cur.Kind == T_IDENT {
		text, span := p.cur.Text, p.cur.Span
		p.advance()
		return text, span, true
	}
	p.diags.Add(diag.ErrParseExpect(p.cur.Span, "identifier", p.descr()))
	return "", p.cur.Span, false
}

func (p *Parser) expectNumber() (int64, sourcemap.Span, bool) {
	if p.cur.Kind == T_NUMBER {
		v, span := p.cur.IntValue, p.cur.Span
		p.advance()
		return v, span, true
	}
	p.diags.Add(diag.ErrParseExpect(p.cur.Span, "number", p.descr()))
	return 0, p.cur.Span, false
}

func (p *Parser) expectString() (string, sourcemap.Span, bool) {
	if p.cur.Kind == T_STRING {
		v, span := p.cur.StringValue, p.cur.Span
		p.advance()
		return v, span, true
	}
	p.diags.Add(diag.ErrParseExpect(p.cur.Span, "string literal", p.descr()))
	return "", p.cur.Span, false
}

// skipToRecover consumes exactly one token, guaranteeing forward progress
// for callers whose child production failed to consume anything — the
// loop-forward-progress guarantee required by §4.2.
func (p *Parser) skipToRecover() {
	if p.cur.Kind != T_EOF {
		p.advance()
	}
}

func spanFrom(start, end sourcemap.Span) sourcemap.Span {
	return sourcemap.Span{File: start.File, Start: start.Start, End: end.End}
}

// ParseFile parses one whole source file into its ordered list of
// top-level nodes: `file := packageDecl topLevel*`, permissively.
func ParseFile(file *sourcemap.File, diags *diag.Bag) *File {
	p := NewParser(file, diags)
	ast := &File{}
	for p.cur.Kind != T_EOF {
		before := p.cur.Span
		node := p.parseTopLevel()
		if node != nil {
			ast.Nodes = append(ast.Nodes, node)
		}
		if p.cur.Span == before && p.cur.Kind != T_EOF {
			// No production consumed anything: drop one token and retry.
			p.skipToRecover()
		}
	}
	return ast
}

func (p *Parser) parseTopLevel() Node {
	switch {
	case p.atKeyword("package"):
		return p.parsePackageDecl()
	case p.atKeyword("message"):
		return p.parseMessage()
	case p.atKeyword("service"):
		return p.parseService()
	case p.atIdentText("string"):
		return p.parseStringEnum()
	case p.atKeyword("enum"):
		return p.parseEnum()
	default:
		p.diags.Add(diag.ErrParseExpect(p.cur.Span, "top-level declaration", p.descr()))
		return nil
	}
}

func (p *Parser) parsePackageDecl() *PackageDecl {
	start := p.cur.Span
	complete := true
	p.advance() // 'package'

	var segments []string
	for {
		name, _, ok := p.expectIdent()
		if !ok {
			complete = false
			break
		}
		segments = append(segments, name)
		if p.atSymbol(".") {
			p.advance()
			continue
		}
		break
	}

	end, ok := p.expectSymbol(";")
	if !ok {
		complete = false
	}
	return &PackageDecl{
		Span:       spanFrom(start, end),
		Segments:   segments,
		IsComplete: complete,
	}
}

// parseType implements `type := dottedId ('<' type (',' type)* '>')?`.
func (p *Parser) parseType() *TypeRef {
	start := p.cur.Span
	complete := true

	var parts []string
	var partSpans []sourcemap.Span
	name, nameSpan, ok := p.expectIdent()
	if !ok {
		return &TypeRef{Span: start, IsComplete: false}
	}
	parts = append(parts, name)
	partSpans = append(partSpans, nameSpan)
	for p.atSymbol(".") {
		p.advance()
		name, nameSpan, ok := p.expectIdent()
		if !ok {
			complete = false
			break
		}
		parts = append(parts, name)
		partSpans = append(partSpans, nameSpan)
	}

	var args []*TypeRef
	end := partSpans[len(partSpans)-1]
	if p.atSymbol("<") {
		p.advance()
		for {
			arg := p.parseType()
			args = append(args, arg)
			if !arg.IsComplete {
				complete = false
			}
			if p.atSymbol(",") {
				p.advance()
				continue
			}
			break
		}
		closeSpan, closeOK := p.expectSymbol(">")
		end = closeSpan
		if !closeOK {
			complete = false
		}
	}

	return &TypeRef{
		Span:       spanFrom(start, end),
		Parts:      parts,
		PartSpans:  partSpans,
		Args:       args,
		IsComplete: complete,
	}
}

func (p *Parser) parseMessage() *Message {
	start := p.cur.Span
	complete := true
	p.advance() // 'message'

	name, nameSpan, ok := p.expectIdent()
	if !ok {
		complete = false
	}

	var generics []GenericParam
	if p.atSymbol("<") {
		p.advance()
		for {
			gname, gspan, gok := p.expectIdent()
			if !gok {
				complete = false
				break
			}
			if p.atSymbol("<") {
				// Generic-form-invalid: a formal declared as itself parameterized.
				p.diags.Add(diag.ErrGenericFormInvalid(gspan, gname))
				complete = false
				depth := 0
				for {
					if p.atSymbol("<") {
						depth++
						p.advance()
						continue
					}
					if p.atSymbol(">") {
						depth--
						p.advance()
						if depth <= 0 {
							break
						}
						continue
					}
					if p.cur.Kind == T_EOF || p.atSymbol(",") {
						break
					}
					p.advance()
				}
			} else if p.atSymbol(".") {
				p.diags.Add(diag.ErrGenericFormInvalid(gspan, gname))
				complete = false
				for p.atSymbol(".") {
					p.advance()
					p.expectIdent()
				}
			}
			generics = append(generics, GenericParam{Name: gname, Span: gspan})
			if p.atSymbol(",") {
				p.advance()
				continue
			}
			break
		}
		if _, ok := p.expectSymbol(">"); !ok {
			complete = false
		}
	}

	if _, ok := p.expectSymbol("{"); !ok {
		complete = false
		return &Message{Span: spanFrom(start, p.cur.Span), Name: name, NameSpan: nameSpan, Generics: generics, IsComplete: false}
	}

	var fields []*Field
	for !p.atSymbol("}") && p.cur.Kind != T_EOF {
		before := p.cur.Span
		field := p.parseField()
		if !field.IsComplete {
			complete = false
		}
		fields = append(fields, field)
		if p.cur.Span == before {
			p.skipToRecover()
		}
	}
	end, ok := p.expectSymbol("}")
	if !ok {
		complete = false
	}

	return &Message{
		Span:       spanFrom(start, end),
		Name:       name,
		NameSpan:   nameSpan,
		Generics:   generics,
		Fields:     fields,
		IsComplete: complete,
	}
}

func (p *Parser) parseField() *Field {
	start := p.cur.Span
	complete := true

	optional := false
	if p.atKeyword("optional") {
		optional = true
		p.advance()
	}

	typ := p.parseType()
	if !typ.IsComplete {
		complete = false
	}

	name, nameSpan, ok := p.expectIdent()
	if !ok {
		complete = false
	}

	hasOrdinal := false
	var ordinal int64
	var ordinalSpan sourcemap.Span
	if p.atSymbol("=") {
		p.advance()
		hasOrdinal = true
		var numOK bool
		ordinal, ordinalSpan, numOK = p.expectNumber()
		if !numOK {
			complete = false
		}
	}

	end, ok := p.expectSymbol(";")
	if !ok {
		complete = false
	}

	return &Field{
		Span:        spanFrom(start, end),
		Optional:    optional,
		Type:        typ,
		Name:        name,
		NameSpan:    nameSpan,
		HasOrdinal:  hasOrdinal,
		Ordinal:     ordinal,
		OrdinalSpan: ordinalSpan,
		IsComplete:  complete,
	}
}

func (p *Parser) parseEnum() *Enum {
	start := p.cur.Span
	complete := true
	p.advance() // 'enum'

	name, nameSpan, ok := p.expectIdent()
	if !ok {
		complete = false
	}
	if _, ok := p.expectSymbol("{"); !ok {
		return &Enum{Span: spanFrom(start, p.cur.Span), Name: name, NameSpan: nameSpan, IsComplete: false}
	}

	var fields []*EnumField
	for !p.atSymbol("}") && p.cur.Kind != T_EOF {
		before := p.cur.Span
		fields = append(fields, p.parseEnumField())
		if p.atSymbol(",") {
			p.advance()
		} else if !p.atSymbol("}") {
			complete = false
		}
		if p.cur.Span == before {
			p.skipToRecover()
		}
	}
	end, ok := p.expectSymbol("}")
	if !ok {
		complete = false
	}

	return &Enum{
		Span:       spanFrom(start, end),
		Name:       name,
		NameSpan:   nameSpan,
		Fields:     fields,
		IsComplete: complete,
	}
}

func (p *Parser) parseEnumField() *EnumField {
	start := p.cur.Span
	complete := true
	name, nameSpan, ok := p.expectIdent()
	if !ok {
		complete = false
	}
	hasValue := false
	var value int64
	var valueSpan sourcemap.Span
	if p.atSymbol("=") {
		p.advance()
		hasValue = true
		var numOK bool
		value, valueSpan, numOK = p.expectNumber()
		if !numOK {
			complete = false
		}
	}
	end := nameSpan
	if hasValue {
		end = valueSpan
	}
	return &EnumField{
		Span:       spanFrom(start, end),
		Name:       name,
		NameSpan:   nameSpan,
		HasValue:   hasValue,
		Value:      value,
		ValueSpan:  valueSpan,
		IsComplete: complete,
	}
}

func (p *Parser) parseStringEnum() *StringEnum {
	start := p.cur.Span
	complete := true
	p.advance() // 'string' (soft keyword)
	if _, ok := p.expectKeyword("enum"); !ok {
		complete = false
	}
	name, nameSpan, ok := p.expectIdent()
	if !ok {
		complete = false
	}
	if _, ok := p.expectSymbol("{"); !ok {
		return &StringEnum{Span: spanFrom(start, p.cur.Span), Name: name, NameSpan: nameSpan, IsComplete: false}
	}

	var values []string
	var valueSpans []sourcemap.Span
	for !p.atSymbol("}") && p.cur.Kind != T_EOF {
		before := p.cur.Span
		v, vspan, ok := p.expectString()
		if ok {
			values = append(values, v)
			valueSpans = append(valueSpans, vspan)
		} else {
			complete = false
		}
		if p.atSymbol(",") {
			p.advance()
		} else if !p.atSymbol("}") {
			complete = false
		}
		if p.cur.Span == before {
			p.skipToRecover()
		}
	}
	end, ok := p.expectSymbol("}")
	if !ok {
		complete = false
	}

	return &StringEnum{
		Span:       spanFrom(start, end),
		Name:       name,
		NameSpan:   nameSpan,
		Values:     values,
		ValueSpans: valueSpans,
		IsComplete: complete,
	}
}

func (p *Parser) parseService() *Service {
	start := p.cur.Span
	complete := true
	p.advance() // 'service'

	name, nameSpan, ok := p.expectIdent()
	if !ok {
		complete = false
	}
	if _, ok := p.expectSymbol("{"); !ok {
		return &Service{Span: spanFrom(start, p.cur.Span), Name: name, NameSpan: nameSpan, IsComplete: false}
	}

	var rpcs []*RPC
	for !p.atSymbol("}") && p.cur.Kind != T_EOF {
		before := p.cur.Span
		rpc := p.parseRPC()
		if !rpc.IsComplete {
			complete = false
		}
		rpcs = append(rpcs, rpc)
		if p.cur.Span == before {
			p.skipToRecover()
		}
	}
	end, ok := p.expectSymbol("}")
	if !ok {
		complete = false
	}

	return &Service{
		Span:       spanFrom(start, end),
		Name:       name,
		NameSpan:   nameSpan,
		RPCs:       rpcs,
		IsComplete: complete,
	}
}

func (p *Parser) parseRPC() *RPC {
	start := p.cur.Span
	complete := true
	p.advance() // 'rpc'

	name, nameSpan, ok := p.expectIdent()
	if !ok {
		complete = false
	}

	if _, ok := p.expectSymbol("("); !ok {
		complete = false
	}
	reqStream := false
	if p.atKeyword("stream") {
		reqStream = true
		p.advance()
	}
	reqType := p.parseType()
	if !reqType.IsComplete {
		complete = false
	}
	if _, ok := p.expectSymbol(")"); !ok {
		complete = false
	}

	if _, ok := p.expectKeyword("returns"); !ok {
		complete = false
	}
	if _, ok := p.expectSymbol("("); !ok {
		complete = false
	}
	respStream := false
	if p.atKeyword("stream") {
		respStream = true
		p.advance()
	}
	respType := p.parseType()
	if !respType.IsComplete {
		complete = false
	}
	if _, ok := p.expectSymbol(")"); !ok {
		complete = false
	}

	end, ok := p.expectSymbol(";")
	if !ok {
		complete = false
	}

	return &RPC{
		Span:       spanFrom(start, end),
		Name:       name,
		NameSpan:   nameSpan,
		ReqStream:  reqStream,
		ReqType:    reqType,
		RespStream: respStream,
		RespType:   respType,
		IsComplete: complete,
	}
}
