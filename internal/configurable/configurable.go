// Package configurable implements spec §4.5 "Configurable": the public
// object that owns one or more named option groups and exposes the
// uniform Configure/Serialize/Match/Prepare/Validate protocol over them,
// plus the §4.7 Lifecycle Driver's depth-first Prepare/Validate
// traversal.
//
// Grounded on the teacher's internal/apply.Applier (the single entry
// point that walks a set of named option structs and applies them) and
// internal/diff's first-mismatch comparison; internal/option supplies the
// per-descriptor dispatch this package drives across the whole group set.
package configurable

import (
	"strings"

	"ckv/internal/ckverrors"
	"ckv/internal/ctxopt"
	"ckv/internal/descriptor"
	"ckv/internal/lexer"
	"ckv/internal/option"
	"ckv/internal/registry"
)

// group is one (name, base-record pointer, descriptor table) triple
// (spec §3 "Configurable").
type group struct {
	name   string
	record interface{}
	table  *descriptor.Table
}

// Configurable owns a finite set of named option groups. The zero value
// is not usable; construct with New and attach groups with AddGroup.
type Configurable struct {
	id     string
	groups []group

	prepared   bool
	prepareErr error
}

// New returns an empty Configurable identified by id (the registry id it
// was constructed under; empty for non-Customizable instances).
func New(id string) *Configurable {
	return &Configurable{id: id}
}

// AddGroup attaches a named option group backed by record and described
// by tbl. Returns c for chaining, the way descriptor.Table.Add does.
func (c *Configurable) AddGroup(name string, record interface{}, tbl *descriptor.Table) *Configurable {
	c.groups = append(c.groups, group{name: name, record: record, table: tbl})
	return c
}

// GetID returns the registry identifier this object was constructed
// with (spec §4.5 "GetId").
func (c *Configurable) GetID() string { return c.id }

// ConfigureFromMap applies every key in m, routing across groups in
// registration order: a key unrecognized by one group is tried against
// the next, and whatever remains unrecognized by all of them is either
// rejected or returned as unused, per ctx.IgnoreUnknownOptions (spec
// §4.5).
func (c *Configurable) ConfigureFromMap(ctx ctxopt.Context, m map[string]string) (map[string]string, error) {
	remaining := m
	for _, g := range c.groups {
		var groupUnused map[string]string
		if err := option.ApplyMap(ctx, g.table, remaining, g.record, &groupUnused); err != nil {
			return nil, err
		}
		remaining = groupUnused
	}
	if len(remaining) > 0 && !ctx.IgnoreUnknownOptions {
		return remaining, ckverrors.InvalidArg("unknown options: %v", keysOf(remaining))
	}
	if ctx.InvokePrepareOptions {
		if err := c.PrepareOptions(ctx); err != nil {
			return remaining, err
		}
	}
	return remaining, nil
}

// ConfigureFromString is StringToMap followed by ConfigureFromMap (spec
// §4.5).
func (c *Configurable) ConfigureFromString(ctx ctxopt.Context, text string) error {
	m, err := lexer.StringToMap(text)
	if err != nil {
		return err
	}
	_, err = c.ConfigureFromMap(ctx, m)
	return err
}

// ConfigureOption applies a single name=value setting, trying each group
// in turn until one recognizes name (dotted paths included).
func (c *Configurable) ConfigureOption(ctx ctxopt.Context, name, value string) error {
	for _, g := range c.groups {
		if _, _, ok := g.table.Lookup(name); !ok {
			continue
		}
		if err := option.ParseOption(ctx, g.table, name, value, g.record); err != nil {
			return err
		}
		if ctx.InvokePrepareOptions {
			return c.PrepareOptions(ctx)
		}
		return nil
	}
	if ctx.IgnoreUnknownOptions {
		return nil
	}
	return ckverrors.InvalidArg("unknown option %q", name)
}

// GetOptionString serializes every group's serializable descriptors,
// joined with ctx.Delimiter (spec §4.5).
func (c *Configurable) GetOptionString(ctx ctxopt.Context) (string, error) {
	parts := make([]string, 0, len(c.groups))
	for _, g := range c.groups {
		s, err := option.SerializeTable(ctx, g.table, g.record)
		if err != nil {
			return "", err
		}
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, string(ctx.Delimiter)), nil
}

// Matches compares c against other, which must share c's concrete Go
// type exposed through the same group layout, returning the first
// mismatching dotted path prefixed by its owning group's name (spec §4.5,
// §8 property 7 "mismatch = parent.child.opt").
func (c *Configurable) Matches(ctx ctxopt.Context, other descriptor.ConfigurableObject) (bool, string, error) {
	o, ok := other.(*Configurable)
	if !ok {
		return false, "", ckverrors.InvalidArg("Matches: incompatible types %T vs %T", other, c)
	}
	if len(c.groups) != len(o.groups) {
		return false, "", ckverrors.InvalidArg("Matches: group layout mismatch")
	}
	for i, g := range c.groups {
		og := o.groups[i]
		equal, mismatch, err := option.MatchTable(ctx, g.table, g.record, og.record)
		if err != nil {
			return false, "", err
		}
		if !equal {
			path := g.name
			if mismatch != "" {
				path += "." + mismatch
			}
			return false, path, nil
		}
	}
	return true, "", nil
}

// PrepareOptions depth-first prepares every owned Configurable/
// Customizable child before returning, and is idempotent: once prepared
// successfully, later calls are no-ops; a stored failure is recomputed
// on each retry (spec §4.7).
func (c *Configurable) PrepareOptions(ctx ctxopt.Context) error {
	if c.prepared && c.prepareErr == nil {
		return nil
	}
	var err error
	for _, g := range c.groups {
		if err = prepareTable(ctx, g.table, g.record); err != nil {
			break
		}
	}
	c.prepared = err == nil
	c.prepareErr = err
	return err
}

// ValidateOptions cross-checks invariants without mutating, and surfaces
// the stored Prepare failure if Prepare has never succeeded (spec §8
// property 7 "Lifecycle gating").
func (c *Configurable) ValidateOptions(ctx ctxopt.Context) error {
	if !c.prepared {
		if c.prepareErr != nil {
			return c.prepareErr
		}
		return ckverrors.NotSupportedf("ValidateOptions: %q has not been prepared", c.id)
	}
	for _, g := range c.groups {
		if err := validateTable(ctx, g.table, g.record); err != nil {
			return err
		}
	}
	return nil
}

func prepareTable(ctx ctxopt.Context, tbl *descriptor.Table, record interface{}) error {
	for _, name := range tbl.Names() {
		d, _ := tbl.Get(name)
		switch d.Tag {
		case descriptor.Struct:
			if err := prepareTable(ctx, d.Sub, d.SubRecord(record)); err != nil {
				return err
			}
		case descriptor.Configurable, descriptor.Customizable:
			if d.Flags.Has(descriptor.DontPrepare) {
				continue
			}
			if child := d.ChildGet(record); child != nil {
				if err := child.PrepareOptions(ctx); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func validateTable(ctx ctxopt.Context, tbl *descriptor.Table, record interface{}) error {
	for _, name := range tbl.Names() {
		d, _ := tbl.Get(name)
		switch d.Tag {
		case descriptor.Struct:
			if err := validateTable(ctx, d.Sub, d.SubRecord(record)); err != nil {
				return err
			}
		case descriptor.Configurable, descriptor.Customizable:
			if child := d.ChildGet(record); child != nil {
				if err := child.ValidateOptions(ctx); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func keysOf(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// GetOptions returns a typed view over the group named name (spec §4.5
// "GetOptions<T>"). Go methods can't be generic, so this is a package
// function rather than a Configurable method.
func GetOptions[T any](c *Configurable, name string) (*T, error) {
	for _, g := range c.groups {
		if g.name != name {
			continue
		}
		r, ok := g.record.(*T)
		if !ok {
			return nil, ckverrors.InvalidArg("GetOptions: group %q has type %T, want %T", name, g.record, r)
		}
		return r, nil
	}
	return nil, ckverrors.NotFoundf("GetOptions: no group named %q", name)
}

// CreateFromString instantiates a polymorphic subsystem directly from a
// value string (spec §6 "CreateFromString<T>"), without requiring it to
// be embedded as a Customizable field on some other Configurable: peel
// an optional "{id=...;k=v}" wrapper (or accept a bare id), resolve
// typeTag/id against reg, and apply any remaining keys to the result.
func CreateFromString(ctx ctxopt.Context, reg *registry.Registry, typeTag, value string) (descriptor.ConfigurableObject, error) {
	trimmed := strings.TrimSpace(value)
	id := trimmed
	var params map[string]string

	if strings.HasPrefix(trimmed, "{") || strings.ContainsRune(value, '=') {
		m, err := lexer.StringToMap(value)
		if err != nil {
			return nil, err
		}
		gotID, ok := m["id"]
		if !ok {
			return nil, ckverrors.InvalidArg("CreateFromString: missing %q key", "id")
		}
		delete(m, "id")
		id = gotID
		params = m
	}

	guard, err := reg.NewObject(ctx, typeTag, id)
	if err != nil {
		return nil, err
	}
	obj := guard.Get()
	if obj == nil {
		return nil, nil
	}

	if len(params) > 0 {
		unused, err := obj.ConfigureFromMap(ctx, params)
		if err != nil {
			return nil, err
		}
		if len(unused) > 0 && !ctx.IgnoreUnknownOptions {
			return nil, ckverrors.InvalidArg("CreateFromString: unknown sub-options %v", keysOf(unused))
		}
	}
	if ctx.InvokePrepareOptions {
		if err := obj.PrepareOptions(ctx); err != nil {
			return nil, err
		}
	}
	return obj, nil
}
