package types

// InstanceKind tags the Type Instance variant of §3.
type InstanceKind uint8

const (
	InstReal InstanceKind = iota
	InstGeneric
	InstUnknown
)

// Instance is a reference to a Type Definition with its own argument list
// of further instances (Real), a formal generic name in scope in the
// enclosing message (Generic), or a resolution-failure placeholder
// (Unknown) that lets later passes keep traversing instead of aborting
// (§3, §4.3).
type Instance struct {
	Kind InstanceKind

	// Real
	Def  *Definition
	Args []*Instance

	// Generic
	GenericName string
}

func Real(def *Definition, args ...*Instance) *Instance {
	return &Instance{Kind: InstReal, Def: def, Args: args}
}

func Generic(name string) *Instance {
	return &Instance{Kind: InstGeneric, GenericName: name}
}

func Unknown() *Instance {
	return &Instance{Kind: InstUnknown}
}

// DeeplyReal reports whether the instance and every argument, recursively,
// is Real — i.e. contains no Generic and no Unknown (§3).
func (i *Instance) DeeplyReal() bool {
	if i == nil {
		return false
	}
	switch i.Kind {
	case InstReal:
		for _, a := range i.Args {
			if !a.DeeplyReal() {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// CanonicalKey returns a string uniquely identifying this instance's
// structural shape: same (definition identity, recursive argument shape)
// instances produce equal keys, used for realization-set dedup (§9) and
// for Equal.
func (i *Instance) CanonicalKey() string {
	switch i.Kind {
	case InstReal:
		s := i.Def.PackageID + "#" + i.Def.Name
		if len(i.Args) > 0 {
			s += "<"
			for idx, a := range i.Args {
				if idx > 0 {
					s += ","
				}
				s += a.CanonicalKey()
			}
			s += ">"
		}
		return s
	case InstGeneric:
		return "$" + i.GenericName
	default:
		return "?"
	}
}

// Substitute performs the pure tree rewrite of §4.4: every Generic
// occurrence whose name matches a key in bindings is replaced by the
// bound instance; Real instances are rewritten recursively through their
// argument lists.
func (i *Instance) Substitute(bindings map[string]*Instance) *Instance {
	switch i.Kind {
	case InstGeneric:
		if bound, ok := bindings[i.GenericName]; ok {
			return bound
		}
		return i
	case InstReal:
		if len(i.Args) == 0 {
			return i
		}
		newArgs := make([]*Instance, len(i.Args))
		changed := false
		for idx, a := range i.Args {
			newArgs[idx] = a.Substitute(bindings)
			if newArgs[idx] != a {
				changed = true
			}
		}
		if !changed {
			return i
		}
		return Real(i.Def, newArgs...)
	default:
		return i
	}
}

// Equal reports structural equality: same definition identity and
// recursively equal arguments (§3).
func (i *Instance) Equal(other *Instance) bool {
	if i == nil || other == nil {
		return i == other
	}
	return i.CanonicalKey() == other.CanonicalKey()
}
