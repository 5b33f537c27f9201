package types

import "github.com/DanielSharp01/eprotoc/sourcemap"

// RPC is one resolved service method (§3): a path plus a request and
// response, each a (stream, DeeplyReal type) pair.
type RPC struct {
	Name         string
	Path         string
	Span         sourcemap.Span
	RequestSpan  sourcemap.Span
	RequestType  *Instance
	RequestIsStream bool
	ResponseSpan sourcemap.Span
	ResponseType *Instance
	ResponseIsStream bool
}

// Service is a resolved Service Definition (§3): name plus RPC list. It is
// deliberately not a Definition/Instance participant — services are never
// referenced as a type — but it shares the (packageID, name) namespace
// with messages/enums/string-enums (§3 invariant).
type Service struct {
	PackageID string
	Name      string
	Span      sourcemap.Span
	RPCs      []*RPC
}

// ServiceRegistry holds every Service Definition, with the same per-file
// invalidation discipline as Registry (§3 Lifecycle).
type ServiceRegistry struct {
	services map[key]*Service
	byFile   map[string]map[key]bool
	fileOf   map[key]string
}

func NewServiceRegistry() *ServiceRegistry {
	return &ServiceRegistry{
		services: make(map[key]*Service),
		byFile:   make(map[string]map[key]bool),
		fileOf:   make(map[key]string),
	}
}

func (r *ServiceRegistry) Lookup(packageID, name string) (*Service, bool) {
	s, ok := r.services[key{packageID, name}]
	return s, ok
}

// FileOf returns the source file that contributed the named service, for
// the emitter's per-file output grouping (§4.7).
func (r *ServiceRegistry) FileOf(packageID, name string) (string, bool) {
	f, ok := r.fileOf[key{packageID, name}]
	return f, ok
}

func (r *ServiceRegistry) Define(file string, s *Service) {
	k := key{s.PackageID, s.Name}
	r.services[k] = s
	r.fileOf[k] = file
	if r.byFile[file] == nil {
		r.byFile[file] = make(map[key]bool)
	}
	r.byFile[file][k] = true
}

func (r *ServiceRegistry) InvalidateFile(file string) {
	for k := range r.byFile[file] {
		delete(r.services, k)
		delete(r.fileOf, k)
	}
	delete(r.byFile, file)
}

func (r *ServiceRegistry) All() []*Service {
	out := make([]*Service, 0, len(r.services))
	for _, s := range r.services {
		out = append(out, s)
	}
	return out
}
