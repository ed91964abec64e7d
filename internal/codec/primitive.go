// Package codec implements spec §4.2 (Primitive Codec): parse/serialize/
// equals for the primitive and enum TypeTags, the legacy PrefixTransform
// type, and string escaping. The composite (struct/vector/child) shapes
// are handled in internal/option.
//
// Grounded on the teacher's internal/parser/toml converters (one small
// conversion function per shape, errors wrapped with the field's name)
// and core.NormalizeDataType (closed-set string coercion).
package codec

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"ckv/internal/ckverrors"
	"ckv/internal/descriptor"
)

// doubleTolerance is the absolute tolerance spec §4.2 requires for Double
// equality.
const doubleTolerance = 1e-5

// ParsePrimitive converts token into the Go value appropriate for d.Tag,
// per spec §4.2. PrefixTransform is handled by prefixtransform.go;
// Vector/Struct/Configurable/Customizable are handled in internal/option.
func ParsePrimitive(d *descriptor.Descriptor, token string) (interface{}, error) {
	switch d.Tag {
	case descriptor.Boolean:
		return parseBool(token)
	case descriptor.Int8:
		v, err := parseSignedWithMultiplier(token, 8)
		return int8(v), err
	case descriptor.Int16:
		v, err := parseSignedWithMultiplier(token, 16)
		return int16(v), err
	case descriptor.Int32:
		v, err := parseSignedWithMultiplier(token, 32)
		return int32(v), err
	case descriptor.Int64:
		v, err := parseSignedWithMultiplier(token, 64)
		return v, err
	case descriptor.UInt8:
		v, err := parseUnsignedWithMultiplier(token, 8)
		return uint8(v), err
	case descriptor.UInt16:
		v, err := parseUnsignedWithMultiplier(token, 16)
		return uint16(v), err
	case descriptor.UInt32:
		v, err := parseUnsignedWithMultiplier(token, 32)
		return uint32(v), err
	case descriptor.UInt64, descriptor.Size:
		return parseUnsignedWithMultiplier(token, 64)
	case descriptor.Double:
		f, err := strconv.ParseFloat(strings.TrimSpace(token), 64)
		if err != nil {
			return nil, err
		}
		return f, nil
	case descriptor.String:
		return token, nil
	case descriptor.CompressionType, descriptor.CompactionStyle, descriptor.CompactionPri,
		descriptor.ChecksumType, descriptor.EncodingType, descriptor.CompactionStopStyle,
		descriptor.Enum:
		v, ok := d.EnumNames[token]
		if !ok {
			return nil, ckverrors.InvalidArg("unknown enum value %q for %s", token, d.Name)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("codec: %s is not a primitive tag", d.Tag)
	}
}

// SerializePrimitive is the left inverse of ParsePrimitive.
func SerializePrimitive(d *descriptor.Descriptor, value interface{}) (string, error) {
	switch d.Tag {
	case descriptor.Boolean:
		if value.(bool) {
			return "true", nil
		}
		return "false", nil
	case descriptor.Int8:
		return strconv.FormatInt(int64(value.(int8)), 10), nil
	case descriptor.Int16:
		return strconv.FormatInt(int64(value.(int16)), 10), nil
	case descriptor.Int32:
		return strconv.FormatInt(int64(value.(int32)), 10), nil
	case descriptor.Int64:
		return strconv.FormatInt(value.(int64), 10), nil
	case descriptor.UInt8:
		return strconv.FormatUint(uint64(value.(uint8)), 10), nil
	case descriptor.UInt16:
		return strconv.FormatUint(uint64(value.(uint16)), 10), nil
	case descriptor.UInt32:
		return strconv.FormatUint(uint64(value.(uint32)), 10), nil
	case descriptor.UInt64, descriptor.Size:
		return strconv.FormatUint(value.(uint64), 10), nil
	case descriptor.Double:
		return strconv.FormatFloat(value.(float64), 'g', -1, 64), nil
	case descriptor.String:
		return EscapeString(value.(string)), nil
	case descriptor.CompressionType, descriptor.CompactionStyle, descriptor.CompactionPri,
		descriptor.ChecksumType, descriptor.EncodingType, descriptor.CompactionStopStyle,
		descriptor.Enum:
		name, ok := d.EnumValues[value.(int64)]
		if !ok {
			return "", ckverrors.InvalidArg("unmapped enum value %v for %s", value, d.Name)
		}
		return name, nil
	default:
		return "", fmt.Errorf("codec: %s is not a primitive tag", d.Tag)
	}
}

// EqualsPrimitive implements value equality per spec §4.2, with Double
// compared to an absolute tolerance.
func EqualsPrimitive(d *descriptor.Descriptor, a, b interface{}) (bool, error) {
	if d.Tag == descriptor.Double {
		af, aok := a.(float64)
		bf, bok := b.(float64)
		if !aok || !bok {
			return false, fmt.Errorf("codec: Double equality needs float64, got %T/%T", a, b)
		}
		return math.Abs(af-bf) <= doubleTolerance, nil
	}
	return a == b, nil
}

func parseBool(token string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "true", "1", "on":
		return true, nil
	case "false", "0", "off":
		return false, nil
	default:
		return false, ckverrors.InvalidArg("invalid boolean value %q", token)
	}
}

// multiplierSuffix maps the historical size suffixes to their scale.
var multiplierSuffix = map[byte]uint64{
	'k': 1 << 10, 'K': 1 << 10,
	'm': 1 << 20, 'M': 1 << 20,
	'g': 1 << 30, 'G': 1 << 30,
	't': 1 << 40, 'T': 1 << 40,
}

func splitMultiplier(token string) (digits string, scale uint64) {
	token = strings.TrimSpace(token)
	if token == "" {
		return token, 1
	}
	last := token[len(token)-1]
	if mult, ok := multiplierSuffix[last]; ok {
		return token[:len(token)-1], mult
	}
	return token, 1
}

func parseUnsignedWithMultiplier(token string, bits int) (uint64, error) {
	digits, scale := splitMultiplier(token)
	v, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, ckverrors.InvalidArg("invalid unsigned integer %q", token)
	}
	v *= scale
	if bits < 64 && v >= uint64(1)<<uint(bits) {
		return 0, ckverrors.InvalidArg("value %q overflows %d-bit unsigned", token, bits)
	}
	return v, nil
}

func parseSignedWithMultiplier(token string, bits int) (int64, error) {
	digits, scale := splitMultiplier(token)
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, ckverrors.InvalidArg("invalid signed integer %q", token)
	}
	v *= int64(scale)
	if bits < 64 {
		max := int64(1) << uint(bits-1)
		if v >= max || v < -max {
			return 0, ckverrors.InvalidArg("value %q overflows %d-bit signed", token, bits)
		}
	}
	return v, nil
}
