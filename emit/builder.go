// Package emit lowers GenIR (package genir) into textual serialize/
// deserialize procedures plus RPC service descriptors, per §4.7. It owns
// nothing about the target language's parser or type system; it only
// builds source text, the same way idol/encoding/idoltext builds its
// text dump: an indenting line-builder over strings.Builder.
package emit

import (
	"fmt"
	"strings"
)

// builder accumulates indented source lines, mirroring the line/linef
// helper of idol/encoding/idoltext/idoltext_encode.go.
type builder struct {
	out    strings.Builder
	indent int
}

func (b *builder) line(s string) {
	if b.indent > 0 {
		b.out.WriteString(strings.Repeat("  ", b.indent))
	}
	b.out.WriteString(s)
	b.out.WriteByte('\n')
}

func (b *builder) linef(format string, a ...any) {
	b.line(fmt.Sprintf(format, a...))
}

func (b *builder) in()     { b.indent++ }
func (b *builder) dedent() { b.indent-- }

func (b *builder) String() string { return b.out.String() }

// mangle turns a value expression into a safe identifier fragment for
// loop variables and intermediate bindings, per §4.7: "replacing [, ], .
// with _."
func mangle(expr string) string {
	r := strings.NewReplacer("[", "_", "]", "_", ".", "_")
	return r.Replace(expr)
}
