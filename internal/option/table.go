package option

import (
	"strings"

	"go.uber.org/multierr"

	"ckv/internal/ckverrors"
	"ckv/internal/ctxopt"
	"ckv/internal/descriptor"
)

// ApplyMap applies every key in m against tbl/record. Recognized-option
// failures are fail-fast (spec §7: "the first error terminates the
// current pass"). Unknown keys either error, are silently dropped, or —
// when unused is non-nil — are collected into *unused for the caller to
// re-route (spec §7's two-phase DB/CF parse pattern, driven by
// internal/configurable). Multiple simultaneous unknown-key errors (map
// iteration order is unspecified, so more than one may surface in a
// single pass) are aggregated with multierr rather than only reporting
// the first, the ambient error-handling enrichment from SPEC_FULL.md.
func ApplyMap(ctx ctxopt.Context, tbl *descriptor.Table, m map[string]string, record interface{}, unused *map[string]string) error {
	var unknown error
	for k, v := range m {
		if _, _, ok := tbl.Lookup(k); !ok {
			switch {
			case unused != nil:
				if *unused == nil {
					*unused = make(map[string]string)
				}
				(*unused)[k] = v
			case ctx.IgnoreUnknownOptions:
				// dropped
			default:
				unknown = multierr.Append(unknown, ckverrors.InvalidArg("unknown option %q", k))
			}
			continue
		}
		if err := ParseOption(ctx, tbl, k, v, record); err != nil {
			return err
		}
	}
	return unknown
}

// SerializeTable renders every serializable descriptor in tbl, in
// registration order, joined by ctx.Delimiter.
func SerializeTable(ctx ctxopt.Context, tbl *descriptor.Table, record interface{}) (string, error) {
	var parts []string
	for _, name := range tbl.Names() {
		d, _ := tbl.Get(name)
		s, ok, err := SerializeOption(ctx, d, record)
		if err != nil {
			return "", err
		}
		if !ok {
			continue
		}
		parts = append(parts, name+"="+s)
	}
	return strings.Join(parts, string(ctx.Delimiter)), nil
}

// MatchTable compares a and b across every descriptor in tbl, in
// registration order, short-circuiting on the first mismatch and
// returning its (unqualified) name.
func MatchTable(ctx ctxopt.Context, tbl *descriptor.Table, a, b interface{}) (bool, string, error) {
	for _, name := range tbl.Names() {
		d, _ := tbl.Get(name)
		av, bv := fieldValue(d, a), fieldValue(d, b)
		equal, sub, err := MatchesOption(ctx, d, av, bv)
		if err != nil {
			return false, "", err
		}
		if !equal {
			if sub != "" {
				return false, name + "." + sub, nil
			}
			return false, name, nil
		}
	}
	return true, "", nil
}

// fieldValue extracts the comparison value MatchesOption expects for d's
// tag: the boxed scalar for primitives, the nested record pointer for
// Struct, and the child object for Configurable/Customizable.
func fieldValue(d *descriptor.Descriptor, record interface{}) interface{} {
	switch d.Tag {
	case descriptor.Struct:
		return d.SubRecord(record)
	case descriptor.Configurable, descriptor.Customizable:
		return d.ChildGet(record)
	default:
		return d.Get(record)
	}
}
