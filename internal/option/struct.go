package option

import (
	"ckv/internal/ckverrors"
	"ckv/internal/ctxopt"
	"ckv/internal/descriptor"
	"ckv/internal/lexer"
)

// parseStruct implements spec §4.3 "Struct": value is the nested
// mapping's braces-stripped interior (or, via ConfigureOption's dotted
// routing, already isolated to exactly this descriptor), so it is always
// parsed as a full "k=v;k=v" block against d.Sub.
func parseStruct(ctx ctxopt.Context, d *descriptor.Descriptor, name, value string, record interface{}) error {
	if value == "" {
		return nil
	}
	m, err := lexer.StringToMap(value)
	if err != nil {
		return ckverrors.Wrap(ckverrors.InvalidArgument, name, err)
	}
	sub := d.SubRecord(record)
	if err := ApplyMap(ctx, d.Sub, m, sub, nil); err != nil {
		return ckverrors.Wrap(ckverrors.InvalidArgument, name, err)
	}
	return nil
}

func serializeStruct(ctx ctxopt.Context, d *descriptor.Descriptor, record interface{}) (string, bool, error) {
	sub := d.SubRecord(record)
	s, err := SerializeTable(ctx, d.Sub, sub)
	if err != nil {
		return "", false, err
	}
	return "{" + s + "}", true, nil
}

// matchStruct compares two already-projected nested records (a, b are
// the *SubRecord pointers, not the owning Struct field's boxed value).
func matchStruct(ctx ctxopt.Context, d *descriptor.Descriptor, a, b interface{}) (bool, string, error) {
	equal, mismatch, err := MatchTable(ctx, d.Sub, a, b)
	if err != nil {
		return false, "", err
	}
	return equal, mismatch, nil
}

// applyChildField routes a dotted remainder (e.g. "p" from "child.p")
// directly to the child's ConfigureOption, per spec §4.4's Configurable/
// Customizable branch once the outer Table.Lookup has already peeled the
// leading "child." segment.
func applyChildField(ctx ctxopt.Context, d *descriptor.Descriptor, rest, value string, record interface{}) error {
	child := d.ChildGet(record)
	if child == nil {
		return ckverrors.NotFoundf("option %q: child %q is not configured", rest, d.Name)
	}
	if err := child.ConfigureOption(ctx, rest, value); err != nil {
		return ckverrors.Wrap(ckverrors.InvalidArgument, d.Name+"."+rest, err)
	}
	return nil
}
