// Package registry implements spec §4.6 "Object Registry": a map from
// type-tag + identifier string to a factory producing descriptor.
// ConfigurableObject instances, supporting clone-on-write nesting and
// dynamically loaded libraries.
//
// Grounded directly on the teacher's internal/dialect (RegisterDialect/
// GetDialect, a sync.RWMutex-guarded map[Type]func() Dialect) and
// internal/introspect (the identical pattern for a second logical type) —
// the closest one-to-one grounding in the repo.
package registry

import (
	"fmt"
	"plugin"
	"sync"

	"ckv/internal/ckverrors"
	"ckv/internal/ctxopt"
	"ckv/internal/descriptor"
)

// entry is one registered factory: a pattern (today: an exact id match,
// the "implementation's discretion" spec §4.6 allows) plus the factory
// itself.
type entry struct {
	pattern string
	factory descriptor.Factory
}

// Registration is the stable handle returned by Register.
type Registration struct {
	typeTag string
	pattern string
}

// Library records the name a registration batch was added under, purely
// for introspection (spec §4.6 AddLocalLibrary "under a named library
// scope for later introspection").
type Library struct {
	Name string
}

// Registry is the object factory registry. The zero value is not usable;
// construct with New.
type Registry struct {
	mu        sync.RWMutex
	factories map[string][]entry
	libraries []Library
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{factories: make(map[string][]entry)}
}

// Register appends a factory producing instances of typeTag, matched by
// pattern (today an exact identifier; longest-registered-first lookup
// order is not guaranteed — first match by registration order wins, per
// spec §4.6 "find first matching factory by id").
func (r *Registry) Register(typeTag, pattern string, factory descriptor.Factory) Registration {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[typeTag] = append(r.factories[typeTag], entry{pattern: pattern, factory: factory})
	return Registration{typeTag: typeTag, pattern: pattern}
}

// AddLocalLibrary invokes register(r, arg) under a named library scope.
func (r *Registry) AddLocalLibrary(register func(reg *Registry, arg interface{}) error, name string, arg interface{}) error {
	r.mu.Lock()
	r.libraries = append(r.libraries, Library{Name: name})
	r.mu.Unlock()
	return register(r, arg)
}

// DynamicEntryFunc is the signature a dynamically loaded library's entry
// symbol must have.
type DynamicEntryFunc func(reg *Registry, arg interface{}) error

// AddDynamicLibrary resolves a shared library at libPath, locates
// entrySymbol, and runs it as if it were a local registration. env is
// accepted for parity with spec §4.6 but not otherwise consulted — the
// engine places no requirements on its shape.
func (r *Registry) AddDynamicLibrary(env interface{}, libPath, entrySymbol string, arg interface{}) error {
	p, err := plugin.Open(libPath)
	if err != nil {
		return ckverrors.IOErrorf(err, "registry: open dynamic library %q", libPath)
	}
	sym, err := p.Lookup(entrySymbol)
	if err != nil {
		return ckverrors.IOErrorf(err, "registry: lookup entry symbol %q in %q", entrySymbol, libPath)
	}
	entryFn, ok := sym.(DynamicEntryFunc)
	if !ok {
		entryFnPtr, ok2 := sym.(*DynamicEntryFunc)
		if !ok2 {
			return ckverrors.IOErrorf(fmt.Errorf("symbol has unexpected type %T", sym),
				"registry: entry symbol %q in %q has wrong signature", entrySymbol, libPath)
		}
		entryFn = *entryFnPtr
	}
	return r.AddLocalLibrary(func(reg *Registry, a interface{}) error { return entryFn(reg, a) }, libPath, arg)
}

// Clone deep-copies the registry: the clone inherits every factory the
// parent currently has, but registering a new factory on the clone never
// perturbs the parent (spec §4.6, §5 "Shared resources"). It returns
// ctxopt.RegistryHandle so *Registry satisfies that interface; callers
// that need the concrete type back (to Register/NewObject on it) type-
// assert the result.
func (r *Registry) Clone() ctxopt.RegistryHandle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := New()
	for tag, entries := range r.factories {
		copied := make([]entry, len(entries))
		copy(copied, entries)
		clone.factories[tag] = copied
	}
	clone.libraries = append([]Library(nil), r.libraries...)
	return clone
}

// Guard owns a ConfigurableObject and releases it exactly once.
type Guard struct {
	obj descriptor.ConfigurableObject
}

// Get returns the owned object, or nil if the guard was already released
// or never held one (spec §4.6 "ignore_unknown_objects" → null child).
func (g *Guard) Get() descriptor.ConfigurableObject {
	if g == nil {
		return nil
	}
	return g.obj
}

// NewObject finds the first factory registered under typeTag whose
// pattern matches id, materializes it, and returns both a non-owning
// pointer (via the Guard) and the guard itself (spec §4.6 "NewObject<T>").
func (r *Registry) NewObject(ctx ctxopt.Context, typeTag, id string) (*Guard, error) {
	r.mu.RLock()
	entries := r.factories[typeTag]
	r.mu.RUnlock()

	for _, e := range entries {
		if e.pattern == id {
			obj, err := e.factory(ctx)
			if err != nil {
				return nil, ckverrors.Wrap(ckverrors.IOError, id, err)
			}
			return &Guard{obj: obj}, nil
		}
	}
	if ctx.IgnoreUnknownObjects {
		return &Guard{}, nil
	}
	return nil, ckverrors.NotFoundf("registry: no %s factory registered for id %q", typeTag, id)
}

// IDs returns the identifiers registered under typeTag, in registration
// order, for introspection (cmd/ckvopt "registry list").
func (r *Registry) IDs(typeTag string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.factories[typeTag]))
	for _, e := range r.factories[typeTag] {
		ids = append(ids, e.pattern)
	}
	return ids
}

// TypeTags returns every type tag that has at least one registered
// factory, in no particular order.
func (r *Registry) TypeTags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]string, 0, len(r.factories))
	for tag := range r.factories {
		tags = append(tags, tag)
	}
	return tags
}
