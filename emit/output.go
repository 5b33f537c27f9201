package emit

import (
	"sort"
	"strings"

	"github.com/DanielSharp01/eprotoc/genir"
	"github.com/DanielSharp01/eprotoc/types"
)

// Output generates one File per source file that contributed a
// definition or service, plus the synthetic Any file when referenced
// anywhere, per §6: "one emitted file per input... a single extra file
// for the synthetic Any type is emitted at the output root when
// referenced."
func (e *Emitter) Output() []File {
	defsByFile := map[string][]*types.Definition{}
	for _, d := range e.Registry.All() {
		file, ok := e.Registry.FileOf(d.PackageID, d.Name)
		if !ok {
			continue
		}
		defsByFile[file] = append(defsByFile[file], d)
	}
	svcsByFile := map[string][]*types.Service{}
	for _, s := range e.Services.All() {
		file, ok := e.Services.FileOf(s.PackageID, s.Name)
		if !ok {
			continue
		}
		svcsByFile[file] = append(svcsByFile[file], s)
	}

	files := map[string]bool{}
	for f := range defsByFile {
		files[f] = true
	}
	for f := range svcsByFile {
		files[f] = true
	}
	names := make([]string, 0, len(files))
	for f := range files {
		names = append(names, f)
	}
	sort.Strings(names)

	var out []File
	anyUsed := false
	for _, f := range names {
		generated := e.EmitSourceFile(f, defsByFile[f], svcsByFile[f])
		if strings.Contains(generated.Contents, aliasAny) {
			anyUsed = true
		}
		out = append(out, generated)
	}

	if anyUsed {
		out = append(out, e.buildAnyFile())
	}
	return out
}

// buildAnyFile renders the single synthetic Any switch's
// serialize/deserialize pair, shared by every file that references it.
func (e *Emitter) buildAnyFile() File {
	body := genir.BuildAnyBody()
	b := &builder{}
	b.linef("function serializeAny(writer, value) {")
	b.in()
	e.serializeGenNode(b, body, "value")
	b.dedent()
	b.line("}")
	b.line("")
	b.linef("function deserializeAny(reader, end) {")
	b.in()
	b.line("let value;")
	e.deserializeGenNode(b, body, "value")
	b.line("return value;")
	b.dedent()
	b.line("}")
	return File{Path: anyFilePath, Contents: b.String()}
}
