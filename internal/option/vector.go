package option

import (
	"strings"

	"ckv/internal/ckverrors"
	"ckv/internal/codec"
	"ckv/internal/ctxopt"
	"ckv/internal/descriptor"
	"ckv/internal/lexer"
)

// elementSep returns d's configured element separator, defaulting to ':'
// (spec §4.3 "Vector").
func elementSep(d *descriptor.Descriptor) byte {
	if d.ElementSep != 0 {
		return d.ElementSep
	}
	return ':'
}

// parseVector implements spec §4.3 "Vector": value is split on
// elementSep at the top level (braces nest, so an element may itself
// contain the separator), each token parsed against d.Element, and the
// results collected into a concrete slice via d.MakeSlice. An empty
// trailing token — the result of a trailing separator — is rejected
// unless the element descriptor itself accepts an empty token (spec §9
// Open Question: "trailing separator").
func parseVector(ctx ctxopt.Context, d *descriptor.Descriptor, name, value string, record interface{}) error {
	if value == "" {
		return d.Set(record, d.MakeSlice(nil))
	}
	tokens, err := lexer.SplitTokens(value, elementSep(d))
	if err != nil {
		return ckverrors.Wrap(ckverrors.InvalidArgument, name, err)
	}
	parsed := make([]interface{}, len(tokens))
	for i, tok := range tokens {
		if tok == "" && !elementAcceptsEmpty(d.Element) {
			return ckverrors.InvalidArg("option %q: empty element at index %d", name, i)
		}
		if ctx.InputStringsEscaped {
			tok = codec.UnescapeString(tok)
		}
		v, err := codec.ParsePrimitive(d.Element, tok)
		if err != nil {
			return ckverrors.Wrap(ckverrors.InvalidArgument, name, err)
		}
		parsed[i] = v
	}
	return d.Set(record, d.MakeSlice(parsed))
}

// elementAcceptsEmpty reports whether element's primitive codec treats an
// empty token as a legitimate value rather than a parse failure. Only
// String-tagged elements do.
func elementAcceptsEmpty(element *descriptor.Descriptor) bool {
	return element != nil && element.Tag == descriptor.String
}

// serializeVector is the inverse of parseVector: each element is
// serialized against d.Element and joined by elementSep. The whole
// sequence is wrapped in braces if any element's rendering contains the
// current delimiter or '=', so it survives being re-split at the
// enclosing level (spec §4.3 "Vector", "Serialization nests").
func serializeVector(ctx ctxopt.Context, d *descriptor.Descriptor, record interface{}) (string, bool, error) {
	v := d.Get(record)
	elems := d.Elems(v)
	parts := make([]string, len(elems))
	needsBraces := false
	for i, e := range elems {
		s, err := codec.SerializePrimitive(d.Element, e)
		if err != nil {
			return "", false, ckverrors.Wrap(ckverrors.InvalidArgument, d.Name, err)
		}
		if strings.IndexByte(s, ctx.Delimiter) >= 0 || strings.ContainsRune(s, '=') {
			needsBraces = true
		}
		parts[i] = s
	}
	joined := strings.Join(parts, string(elementSep(d)))
	if needsBraces {
		return "{" + joined + "}", true, nil
	}
	return joined, true, nil
}

// matchVector compares two vectors elementwise, after first requiring
// equal length (spec §4.3 "Vector" equality).
func matchVector(ctx ctxopt.Context, d *descriptor.Descriptor, a, b interface{}) (bool, error) {
	ae, be := d.Elems(a), d.Elems(b)
	if len(ae) != len(be) {
		return false, nil
	}
	for i := range ae {
		eq, err := codec.EqualsPrimitive(d.Element, ae[i], be[i])
		if err != nil {
			return false, err
		}
		if !eq {
			return false, nil
		}
	}
	return true, nil
}
