// Package option implements spec §4.4 "Descriptor Entry Operations":
// ParseOption, SerializeOption, and MatchesOption, the per-descriptor
// dispatch that internal/configurable's Configurable drives over every
// group's descriptor.Table. It sits between internal/codec (stateless
// primitive codec) and internal/registry (polymorphic child creation) so
// that both can stay leaf packages.
package option

import (
	"strings"

	"ckv/internal/ckverrors"
	"ckv/internal/codec"
	"ckv/internal/ctxopt"
	"ckv/internal/descriptor"
)

// ParseOption applies value to the option named name within tbl/record,
// per spec §4.4. name may be a dotted path; Table.Lookup resolves it.
func ParseOption(ctx ctxopt.Context, tbl *descriptor.Table, name, value string, record interface{}) error {
	d, rest, ok := tbl.Lookup(name)
	if !ok {
		if ctx.IgnoreUnknownOptions {
			return nil
		}
		return ckverrors.InvalidArg("unknown option %q", name)
	}

	if d.Verification == descriptor.Deprecated {
		return nil
	}
	if d.Verification == descriptor.Alias {
		return ParseOption(ctx, tbl, d.AliasOf, value, record)
	}

	if record == nil {
		return ckverrors.NotFoundf("option %q: nil record", name)
	}

	// rest != "" means name named a Struct/Configurable/Customizable
	// parent with more path left. A Struct recurses with the projected
	// sub-record, so the leaf's accessor closures see the record type
	// they were built for; a Configurable/Customizable parent defers to
	// its live child's own ConfigureOption. value still carries whatever
	// escaping it arrived with — it is a composite blob the recursion
	// will re-tokenize, not a scalar for InputStringsEscaped to touch
	// yet, and unescaping it here would corrupt a backslash the nested
	// grammar still needs to see.
	if rest != "" {
		if d.Tag == descriptor.Struct {
			return ParseOption(ctx, d.Sub, rest, value, d.SubRecord(record))
		}
		return applyChildField(ctx, d, rest, value, record)
	}

	if d.HasCustomCodec() {
		if ctx.InputStringsEscaped {
			value = codec.UnescapeString(value)
		}
		childCtx := ctx
		if d.Flags.Has(descriptor.DontPrepare) {
			childCtx = ctx.WithoutPrepare()
		}
		if err := d.Parse(childCtx, record, value); err != nil {
			return ckverrors.Wrap(ckverrors.InvalidArgument, name, err)
		}
		return nil
	}

	switch d.Tag {
	case descriptor.Struct:
		return parseStruct(ctx, d, name, value, record)
	case descriptor.Vector:
		return parseVector(ctx, d, name, value, record)
	case descriptor.Configurable, descriptor.Customizable:
		return parseChild(ctx, d, name, value, record)
	default:
		if d.Verification == descriptor.ByName || d.Verification == descriptor.ByNameAllowNull ||
			d.Verification == descriptor.ByNameAllowFromNull {
			return ckverrors.NotSupportedf("deserializing %q by-name is not supported", name)
		}
		// Here a scalar value is handed to the primitive codec as
		// itself rather than re-tokenized, so InputStringsEscaped's
		// unescape runs here (as it does in the custom-codec branch
		// above and per element in parseVector) — exactly once,
		// regardless of how many dotted-path levels or
		// Struct/Customizable hops led here.
		if ctx.InputStringsEscaped {
			value = codec.UnescapeString(value)
		}
		v, err := codec.ParsePrimitive(d, value)
		if err != nil {
			return ckverrors.Wrap(ckverrors.InvalidArgument, name, err)
		}
		if err := d.Set(record, v); err != nil {
			return ckverrors.Wrap(ckverrors.InvalidArgument, name, err)
		}
		return nil
	}
}

// SerializeOption is the symmetric inverse of ParseOption for one
// descriptor. It honors StringNone (never serialize) and StringShallow
// (polymorphic children serialize as their identifier only).
func SerializeOption(ctx ctxopt.Context, d *descriptor.Descriptor, record interface{}) (string, bool, error) {
	if d.Verification == descriptor.Deprecated || d.Verification == descriptor.Alias {
		return "", false, nil
	}
	if d.Flags.Has(descriptor.StringNone) {
		return "", false, nil
	}

	embedded := ctx.Embedded()

	if d.HasCustomCodec() {
		s, err := d.Serialize(embedded, record)
		if err != nil {
			return "", false, ckverrors.Wrap(ckverrors.InvalidArgument, d.Name, err)
		}
		return s, true, nil
	}

	switch d.Tag {
	case descriptor.Struct:
		return serializeStruct(embedded, d, record)
	case descriptor.Vector:
		return serializeVector(embedded, d, record)
	case descriptor.Configurable, descriptor.Customizable:
		return serializeChild(embedded, d, record)
	default:
		if d.Verification == descriptor.ByName || d.Verification == descriptor.ByNameAllowNull ||
			d.Verification == descriptor.ByNameAllowFromNull {
			return "", false, ckverrors.NotSupportedf("serializing %q by-name is not supported", d.Name)
		}
		v := d.Get(record)
		s, err := codec.SerializePrimitive(d, v)
		if err != nil {
			return "", false, ckverrors.Wrap(ckverrors.InvalidArgument, d.Name, err)
		}
		return s, true, nil
	}
}

// MatchesOption compares a and b for the option named by d, honoring
// sanity levels and the ByName-family fallbacks of spec §4.4. mismatch is
// the dotted path of the first differing option *below* d (empty when d
// itself is the leaf that differs, or when a and b are equal).
func MatchesOption(ctx ctxopt.Context, d *descriptor.Descriptor, a, b interface{}) (equal bool, mismatch string, err error) {
	if d.Verification == descriptor.Deprecated || d.Verification == descriptor.Alias {
		return true, "", nil
	}
	if d.Flags.Has(descriptor.CompareNever) {
		return true, "", nil
	}
	if effectiveSanity(d) > ctx.SanityLevel {
		return true, "", nil
	}

	if d.Equals != nil {
		ok, err := d.Equals(ctx, a, b)
		return ok, "", err
	}

	switch d.Verification {
	case descriptor.ByName, descriptor.ByNameAllowNull, descriptor.ByNameAllowFromNull:
		ok, err := matchByName(ctx, d, a, b)
		return ok, "", err
	}

	switch d.Tag {
	case descriptor.Struct:
		return matchStruct(ctx, d, a, b)
	case descriptor.Vector:
		ok, err := matchVector(ctx, d, a, b)
		return ok, "", err
	case descriptor.Configurable, descriptor.Customizable:
		return matchChild(ctx, d, a, b)
	default:
		ok, err := codec.EqualsPrimitive(d, a, b)
		return ok, "", err
	}
}

// effectiveSanity derives the lowest context sanity level at which this
// descriptor is compared, from its explicit SanityLevel plus the CompareLoose/
// CompareExact flags (spec §4.4 "effective sanity level").
func effectiveSanity(d *descriptor.Descriptor) ctxopt.SanityLevel {
	// CompareLoose only matters once the caller demands an exact match;
	// CompareExact always matters, bypassing any loosening (spec.md §8
	// property 5: LooselyCompatible tolerates CompareLoose mismatches,
	// ExactMatch does not).
	if d.Flags.Has(descriptor.CompareLoose) {
		return ctxopt.SanityExactMatch
	}
	if d.Flags.Has(descriptor.CompareExact) {
		return ctxopt.SanityNone
	}
	if d.SanityLevel != ctxopt.SanityNone {
		return d.SanityLevel
	}
	return ctxopt.SanityNone
}

func matchByName(ctx ctxopt.Context, d *descriptor.Descriptor, a, b interface{}) (bool, error) {
	as, err := serializeForByName(ctx, d, a)
	if err != nil {
		return false, err
	}
	bs, err := serializeForByName(ctx, d, b)
	if err != nil {
		return false, err
	}
	if d.Verification == descriptor.ByNameAllowNull || d.Verification == descriptor.ByNameAllowFromNull {
		if as == "" || bs == "" || as == "nullptr" || bs == "nullptr" {
			return true, nil
		}
	}
	return as == bs, nil
}

func serializeForByName(ctx ctxopt.Context, d *descriptor.Descriptor, v interface{}) (string, error) {
	if d.Serialize != nil {
		return d.Serialize(ctx, v)
	}
	s, err := codec.SerializePrimitive(d, v)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(s), nil
}
