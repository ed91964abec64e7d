package option

import (
	"strings"

	"ckv/internal/ckverrors"
	"ckv/internal/ctxopt"
	"ckv/internal/descriptor"
	"ckv/internal/lexer"
	"ckv/internal/registry"
)

// parseChild dispatches a Configurable/Customizable descriptor's value to
// the fixed-factory or registry-resolved construction path (spec §4.6
// "Polymorphic Binding").
func parseChild(ctx ctxopt.Context, d *descriptor.Descriptor, name, value string, record interface{}) error {
	switch d.Tag {
	case descriptor.Configurable:
		return parseFixedChild(ctx, d, name, value, record)
	case descriptor.Customizable:
		return parseCustomizableChild(ctx, d, name, value, record)
	default:
		return ckverrors.NotSupportedf("option %q: not a Configurable/Customizable descriptor", name)
	}
}

// parseFixedChild configures a Configurable descriptor's single, fixed
// concrete child type, constructing it on first use via d.FixedFactory.
func parseFixedChild(ctx ctxopt.Context, d *descriptor.Descriptor, name, value string, record interface{}) error {
	child := d.ChildGet(record)
	if child == nil {
		if d.FixedFactory == nil {
			return ckverrors.NotFoundf("option %q: no factory for fixed child", name)
		}
		c, err := d.FixedFactory(ctx)
		if err != nil {
			return ckverrors.Wrap(ckverrors.InvalidArgument, name, err)
		}
		child = c
		d.ChildSet(record, child)
	}
	if strings.TrimSpace(value) == "" {
		return prepareChild(ctx, d, child, name)
	}
	m, err := lexer.StringToMap(value)
	if err != nil {
		return ckverrors.Wrap(ckverrors.InvalidArgument, name, err)
	}
	unused, err := child.ConfigureFromMap(ctx, m)
	if err != nil {
		return ckverrors.Wrap(ckverrors.InvalidArgument, name, err)
	}
	if len(unused) > 0 && !ctx.IgnoreUnknownOptions {
		return ckverrors.InvalidArg("option %q: unknown sub-options %v", name, keysOf(unused))
	}
	return prepareChild(ctx, d, child, name)
}

// parseCustomizableChild implements the three-step polymorphic binding
// dance: peel an optional "{id=...;k=v;...}" wrapper (or accept a bare
// id with no parameters), resolve id against ctx.Registry under
// d.CustomizableTag, then apply the remaining keys to the fresh child.
// Swapping to a new id replaces the prior child outright (spec §3
// "Ownership": the old child is dropped, never mutated in place).
func parseCustomizableChild(ctx ctxopt.Context, d *descriptor.Descriptor, name, value string, record interface{}) error {
	id := strings.TrimSpace(value)
	var params map[string]string

	if strings.HasPrefix(id, "{") || strings.ContainsRune(value, '=') {
		m, err := lexer.StringToMap(value)
		if err != nil {
			return ckverrors.Wrap(ckverrors.InvalidArgument, name, err)
		}
		gotID, ok := m["id"]
		if !ok {
			return ckverrors.InvalidArg("option %q: missing %q key", name, "id")
		}
		delete(m, "id")
		id = gotID
		params = m
	}

	if id == "" || id == "nullptr" {
		d.ChildSet(record, nil)
		return nil
	}

	reg, ok := ctx.Registry.(*registry.Registry)
	if !ok || reg == nil {
		return ckverrors.NotFoundf("option %q: no registry bound to context", name)
	}

	guard, err := reg.NewObject(ctx, d.CustomizableTag, id)
	if err != nil {
		return ckverrors.Wrap(ckverrors.InvalidArgument, name, err)
	}
	child := guard.Get()
	d.ChildSet(record, child)
	if child == nil {
		return nil
	}

	if len(params) > 0 {
		unused, err := child.ConfigureFromMap(ctx, params)
		if err != nil {
			return ckverrors.Wrap(ckverrors.InvalidArgument, name, err)
		}
		if len(unused) > 0 && !ctx.IgnoreUnknownOptions {
			return ckverrors.InvalidArg("option %q: unknown sub-options %v", name, keysOf(unused))
		}
	}
	return prepareChild(ctx, d, child, name)
}

func prepareChild(ctx ctxopt.Context, d *descriptor.Descriptor, child descriptor.ConfigurableObject, name string) error {
	if child == nil || !ctx.InvokePrepareOptions || d.Flags.Has(descriptor.DontPrepare) {
		return nil
	}
	if err := child.PrepareOptions(ctx); err != nil {
		return ckverrors.Wrap(ckverrors.InvalidArgument, name, err)
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

// serializeChild is the inverse of parseChild. StringShallow renders just
// the child's identifier (spec §4.6's "shallow" knob, used by callers
// that want a compact summary rather than a fully reconstructible
// string); otherwise the child's full option string is wrapped alongside
// its id so it round-trips through parseChild.
func serializeChild(ctx ctxopt.Context, d *descriptor.Descriptor, record interface{}) (string, bool, error) {
	child := d.ChildGet(record)
	if child == nil {
		return "nullptr", true, nil
	}
	if d.Flags.Has(descriptor.StringShallow) {
		return child.GetID(), true, nil
	}
	opts, err := child.GetOptionString(ctx)
	if err != nil {
		return "", false, ckverrors.Wrap(ckverrors.InvalidArgument, d.Name, err)
	}
	if opts == "" {
		return child.GetID(), true, nil
	}
	return "{id=" + child.GetID() + string(ctx.Delimiter) + opts + "}", true, nil
}

// matchChild compares two children: absent-vs-absent is equal, one
// absent is never equal to one present, and two present children defer
// to their own Matches at the descriptor's effective sanity level (spec
// §4.6 "Polymorphic swap", §8 property 6).
func matchChild(ctx ctxopt.Context, d *descriptor.Descriptor, a, b interface{}) (bool, string, error) {
	ca, _ := a.(descriptor.ConfigurableObject)
	cb, _ := b.(descriptor.ConfigurableObject)
	if ca == nil && cb == nil {
		return true, "", nil
	}
	if ca == nil || cb == nil {
		return false, "", nil
	}
	childCtx := ctx
	if lvl := effectiveSanity(d); lvl != ctxopt.SanityNone && lvl < ctx.SanityLevel {
		childCtx.SanityLevel = lvl
	}
	equal, mismatch, err := ca.Matches(childCtx, cb)
	if err != nil {
		return false, "", err
	}
	return equal, mismatch, nil
}
