package types

import "fmt"

// key identifies a definition by its two-level namespace: package plus
// name (§2.5).
type key struct {
	packageID string
	name      string
}

// Registry is the flat (packageId, name) -> Definition map of §2.5/§9.
// Definitions themselves may still point at each other through their
// field instances (see Definition). It also tracks
// which source file contributed each definition, so a file invalidation
// (§3 Lifecycle, §5) can remove exactly that file's definitions.
type Registry struct {
	defs   map[key]*Definition
	byFile map[string]map[key]bool
	fileOf map[key]string
}

func NewRegistry() *Registry {
	r := &Registry{
		defs:   make(map[key]*Definition),
		byFile: make(map[string]map[key]bool),
		fileOf: make(map[key]string),
	}
	for _, b := range Builtins {
		r.defs[key{"", string(b)}] = &Definition{
			Kind:        DefBuiltin,
			PackageID:   "",
			Name:        string(b),
			BuiltinName: b,
		}
	}
	return r
}

// Builtin looks up one of the fixed builtin definitions by name.
func (r *Registry) Builtin(name BuiltinName) *Definition {
	return r.defs[key{"", string(name)}]
}

// Lookup finds a user definition by (packageID, name). Builtins are
// looked up via Builtin, since they are not namespaced.
func (r *Registry) Lookup(packageID, name string) (*Definition, bool) {
	d, ok := r.defs[key{packageID, name}]
	return d, ok
}

// FileOf returns the source file that contributed (packageID, name), for
// the emitter's per-file import/output-path computation (§4.7).
func (r *Registry) FileOf(packageID, name string) (string, bool) {
	f, ok := r.fileOf[key{packageID, name}]
	return f, ok
}

// Define registers a new definition contributed by file. Returns an error
// if (packageID, name) is already taken — callers that need the
// redefinition diagnostic (with the first definition's span) should check
// Lookup first; Define itself is a low-level primitive used once the
// analyzer has already decided to accept the definition.
func (r *Registry) Define(file string, d *Definition) error {
	k := key{d.PackageID, d.Name}
	if _, exists := r.defs[k]; exists {
		return fmt.Errorf("This is a bug: %s.%s defined twice without a prior uniqueness check", d.PackageID, d.Name)
	}
	r.defs[k] = d
	r.fileOf[k] = file
	if r.byFile[file] == nil {
		r.byFile[file] = make(map[key]bool)
	}
	r.byFile[file][k] = true
	return nil
}

// InvalidateFile removes every definition contributed by file, per the
// Lifecycle rule of §3: "Definitions are... removed when that file is
// invalidated."
func (r *Registry) InvalidateFile(file string) {
	for k := range r.byFile[file] {
		delete(r.defs, k)
		delete(r.fileOf, k)
	}
	delete(r.byFile, file)
}

// Names returns every (packageID, name) pair of a user-defined (non-
// builtin) definition, in no particular order.
func (r *Registry) Names() [](struct {
	PackageID string
	Name      string
}) {
	var out [](struct {
		PackageID string
		Name      string
	})
	for k, d := range r.defs {
		if d.Kind == DefBuiltin {
			continue
		}
		out = append(out, struct {
			PackageID string
			Name      string
		}{k.packageID, k.name})
	}
	return out
}

// All returns every non-builtin definition currently registered.
func (r *Registry) All() []*Definition {
	var out []*Definition
	for _, d := range r.defs {
		if d.Kind != DefBuiltin {
			out = append(out, d)
		}
	}
	return out
}
