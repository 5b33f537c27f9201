// Package diag collects compiler diagnostics: errors located by token span,
// scoped local-to-a-file or global-across-files, with optional related
// (cross-referenced) spans. See spec §2.2 and §7.
package diag

import (
	"fmt"
	"sync"

	"github.com/DanielSharp01/eprotoc/sourcemap"
)

// Kind enumerates the fixed diagnostic taxonomy of §7.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindLexUnknownSymbol
	KindParseExpect
	KindMissingPackage
	KindMultiplePackages
	KindPackageNotFirst
	KindRedefinition
	KindFieldRedefinition
	KindOrdinalNonpositive
	KindOrdinalNotMonotonic
	KindUnknownType
	KindArityMismatch
	KindGenericHasArgs
	KindGenericFormInvalid
)

// Scope matches §7: local diagnostics are dropped wholesale when their file
// is re-analyzed; global diagnostics may point across files and are
// recomputed from scratch on any change.
type Scope uint8

const (
	ScopeLocal Scope = iota
	ScopeGlobal
)

func (s Scope) String() string {
	if s == ScopeGlobal {
		return "global"
	}
	return "local"
}

// Diagnostic is one reported problem. Severity is always "error" per §7 —
// the taxonomy has no warnings — but the field is kept so a future
// ambient-stack addition (e.g. unused-import warnings) has somewhere to go
// without changing this type's shape.
type Diagnostic struct {
	Kind     Kind
	Scope    Scope
	Message  string
	Span     sourcemap.Span
	Related  *sourcemap.Span // e.g. the span of a prior definition, for redefinition
	Severity string
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", d.Span.File, d.Span.Start.Line1(), d.Span.Start.Col1(), d.Message)
}

// New builds an error-severity diagnostic. Call sites use the typed
// constructors below instead of calling New directly, so every diagnostic
// kind is grep-able by name.
func New(kind Kind, scope Scope, span sourcemap.Span, message string, related *sourcemap.Span) *Diagnostic {
	return &Diagnostic{
		Kind:     kind,
		Scope:    scope,
		Message:  message,
		Span:     span,
		Related:  related,
		Severity: "error",
	}
}

func ErrUnknownSymbol(span sourcemap.Span, ch rune) *Diagnostic {
	return New(KindLexUnknownSymbol, ScopeLocal, span, fmt.Sprintf("Unknown symbol %q", string(ch)), nil)
}

func ErrParseExpect(span sourcemap.Span, want string, gotDescr string) *Diagnostic {
	return New(KindParseExpect, ScopeLocal, span, fmt.Sprintf("Expected %s, got %s", want, gotDescr), nil)
}

func ErrMissingPackage(span sourcemap.Span) *Diagnostic {
	return New(KindMissingPackage, ScopeLocal, span, "Missing package declaration", nil)
}

func ErrMultiplePackages(span sourcemap.Span) *Diagnostic {
	return New(KindMultiplePackages, ScopeLocal, span, "Multiple package declarations", nil)
}

func ErrPackageNotFirst(span sourcemap.Span) *Diagnostic {
	return New(KindPackageNotFirst, ScopeLocal, span, "'package' must be the first declaration in the file", nil)
}

func ErrRedefinition(span sourcemap.Span, name string, first sourcemap.Span) *Diagnostic {
	return New(KindRedefinition, ScopeGlobal, span, fmt.Sprintf("%q is already defined in this package", name), &first)
}

func ErrFieldRedefinition(span sourcemap.Span, name string) *Diagnostic {
	return New(KindFieldRedefinition, ScopeLocal, span, fmt.Sprintf("%q is already defined here", name), nil)
}

func ErrOrdinalNonpositive(span sourcemap.Span, n int64) *Diagnostic {
	return New(KindOrdinalNonpositive, ScopeLocal, span, fmt.Sprintf("Ordinal %d must be > 0", n), nil)
}

func ErrOrdinalNotMonotonic(span sourcemap.Span, n, want int64) *Diagnostic {
	return New(KindOrdinalNotMonotonic, ScopeLocal, span, fmt.Sprintf("Ordinal %d must be sequential (expected >= %d)", n, want), nil)
}

func ErrUnknownType(span sourcemap.Span, name string) *Diagnostic {
	return New(KindUnknownType, ScopeGlobal, span, fmt.Sprintf("Unknown type %q", name), nil)
}

func ErrArityMismatch(span sourcemap.Span, name string, want, got int) *Diagnostic {
	return New(KindArityMismatch, ScopeGlobal, span, fmt.Sprintf("%q takes %d type argument(s), got %d", name, want, got), nil)
}

func ErrGenericHasArgs(span sourcemap.Span, name string) *Diagnostic {
	return New(KindGenericHasArgs, ScopeLocal, span, fmt.Sprintf("Generic parameter %q may not take type arguments", name), nil)
}

func ErrGenericFormInvalid(span sourcemap.Span, name string) *Diagnostic {
	return New(KindGenericFormInvalid, ScopeLocal, span, fmt.Sprintf("Generic parameter %q must be a single, unparameterized name", name), nil)
}

// Bag collects diagnostics for a whole compilation session and supports the
// per-file invalidation described in §5: local diagnostics are dropped by
// file, global diagnostics are cleared wholesale and recomputed.
type Bag struct {
	mu     sync.Mutex
	local  map[string][]*Diagnostic // file -> diagnostics
	global []*Diagnostic
}

func NewBag() *Bag {
	return &Bag{local: make(map[string][]*Diagnostic)}
}

func (b *Bag) AddLocal(file string, d *Diagnostic) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.local[file] = append(b.local[file], d)
}

func (b *Bag) AddGlobal(d *Diagnostic) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.global = append(b.global, d)
}

// Add files a diagnostic under its own Scope, reading the file from its Span.
func (b *Bag) Add(d *Diagnostic) {
	if d.Scope == ScopeGlobal {
		b.AddGlobal(d)
	} else {
		b.AddLocal(d.Span.File, d)
	}
}

// InvalidateFile drops every local diagnostic attached to file. Global
// diagnostics are untouched here; callers clear them with ClearGlobal
// before a fresh global analyze() pass, per §5 step 1.
func (b *Bag) InvalidateFile(file string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.local, file)
}

func (b *Bag) ClearGlobal() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.global = nil
}

// All returns every diagnostic currently held, local first (file order is
// not significant), then global.
func (b *Bag) All() []*Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Diagnostic, 0, len(b.global))
	for _, ds := range b.local {
		out = append(out, ds...)
	}
	out = append(out, b.global...)
	return out
}

// ForFile returns the local diagnostics for file plus any global
// diagnostic whose reporting span is in that file, for grouped publishing
// per §5 step 5.
func (b *Bag) ForFile(file string) []*Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := append([]*Diagnostic{}, b.local[file]...)
	for _, d := range b.global {
		if d.Span.File == file {
			out = append(out, d)
		}
	}
	return out
}

func (b *Bag) HasErrors() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.global) > 0 {
		return true
	}
	for _, ds := range b.local {
		if len(ds) > 0 {
			return true
		}
	}
	return false
}
