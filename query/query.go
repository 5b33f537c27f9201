// Package query wraps an analysis.Analyzer with the single-threaded,
// synchronous document-update sequence of §5, pinned for an LSP host: on
// each change the host invalidates the file's diagnostics, removes its
// definitions, re-parses and re-analyzes it, re-runs the global pass,
// then reads back diagnostics grouped by file. There is no cancellation
// and no re-entrancy protection — the host serializes events, per §5.
package query

import (
	"sort"

	"github.com/DanielSharp01/eprotoc/analysis"
	"github.com/DanielSharp01/eprotoc/diag"
)

// Session pins the query-facing operations exposed to a document-event
// host. It owns one Analyzer; UpdateFile and RemoveFile always run the
// fixed update sequence, and Analyzer hands out the underlying analyzer
// for callers that need the resolved registries.
type Session struct {
	analyzer *analysis.Analyzer
}

func NewSession() *Session {
	return &Session{analyzer: analysis.NewAnalyzer()}
}

// UpdateFile runs the five-step sequence of §5 for one changed file:
// invalidate, reparse, reanalyze locally, reanalyze globally, and
// return the fresh diagnostics grouped by file.
func (s *Session) UpdateFile(name, text string) map[string][]*diag.Diagnostic {
	s.analyzer.InvalidateFile(name)
	s.analyzer.AnalyzeFile(name, text)
	s.analyzer.Analyze()
	return s.Diagnostics()
}

// RemoveFile drops a file entirely (the host's "close without replace"
// case) and reruns the global pass so cross-file diagnostics that
// depended on it are recomputed, per §8 property 6.
func (s *Session) RemoveFile(name string) map[string][]*diag.Diagnostic {
	s.analyzer.InvalidateFile(name)
	s.analyzer.Analyze()
	return s.Diagnostics()
}

// Diagnostics groups every current diagnostic by file, for the publish
// step of §5.
func (s *Session) Diagnostics() map[string][]*diag.Diagnostic {
	out := make(map[string][]*diag.Diagnostic)
	for _, d := range s.analyzer.Diags.All() {
		file := d.Span.File
		out[file] = append(out[file], d)
	}
	for file := range out {
		ds := out[file]
		sort.Slice(ds, func(i, j int) bool {
			a, b := ds[i].Span.Start, ds[j].Span.Start
			if a.Line != b.Line {
				return a.Line < b.Line
			}
			return a.Col < b.Col
		})
	}
	return out
}

// Analyzer exposes the underlying analyzer for callers (e.g. the CLI
// driver, or the emitter pipeline) that need direct access to the
// resolved Registry/ServiceRegistry rather than just diagnostics.
func (s *Session) Analyzer() *analysis.Analyzer {
	return s.analyzer
}
