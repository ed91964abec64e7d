package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ckv/internal/descriptor"
)

func TestParsePrimitiveIntegers(t *testing.T) {
	for _, tc := range parsePrimitiveIntCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			d := &descriptor.Descriptor{Tag: tc.tag, Name: "opt"}
			got, err := ParsePrimitive(d, tc.token)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

var parsePrimitiveIntCases = []struct {
	name    string
	tag     descriptor.TypeTag
	token   string
	want    interface{}
	wantErr bool
}{
	{name: "int32 plain", tag: descriptor.Int32, token: "42", want: int32(42)},
	{name: "int32 negative", tag: descriptor.Int32, token: "-7", want: int32(-7)},
	{name: "int32 overflow", tag: descriptor.Int32, token: "9999999999", wantErr: true},
	{name: "uint64 size with K multiplier", tag: descriptor.Size, token: "4K", want: uint64(4 << 10)},
	{name: "uint64 size with M multiplier", tag: descriptor.Size, token: "2M", want: uint64(2 << 20)},
	{name: "uint32 overflow from multiplier", tag: descriptor.UInt32, token: "4G", wantErr: true},
	{name: "int8 in range", tag: descriptor.Int8, token: "100", want: int8(100)},
	{name: "int8 overflow", tag: descriptor.Int8, token: "200", wantErr: true},
	{name: "malformed integer", tag: descriptor.Int64, token: "abc", wantErr: true},
}

func TestParseSerializeBoolean(t *testing.T) {
	d := &descriptor.Descriptor{Tag: descriptor.Boolean}

	for _, tok := range []string{"true", "1", "on", "TRUE"} {
		v, err := ParsePrimitive(d, tok)
		require.NoError(t, err)
		assert.Equal(t, true, v)
	}
	for _, tok := range []string{"false", "0", "off"} {
		v, err := ParsePrimitive(d, tok)
		require.NoError(t, err)
		assert.Equal(t, false, v)
	}
	_, err := ParsePrimitive(d, "maybe")
	require.Error(t, err)

	s, err := SerializePrimitive(d, true)
	require.NoError(t, err)
	assert.Equal(t, "true", s)
}

func TestParseSerializeEnum(t *testing.T) {
	names, values := descriptor.NewEnum(map[string]int64{"kA": 1, "kB": 2})
	d := &descriptor.Descriptor{Tag: descriptor.Enum, Name: "kind", EnumNames: names, EnumValues: values}

	v, err := ParsePrimitive(d, "kA")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	_, err = ParsePrimitive(d, "kZ")
	require.Error(t, err)

	s, err := SerializePrimitive(d, int64(2))
	require.NoError(t, err)
	assert.Equal(t, "kB", s)

	_, err = SerializePrimitive(d, int64(99))
	require.Error(t, err)
}

func TestEqualsPrimitiveDoubleTolerance(t *testing.T) {
	d := &descriptor.Descriptor{Tag: descriptor.Double}

	eq, err := EqualsPrimitive(d, 1.0, 1.0+1e-6)
	require.NoError(t, err)
	assert.True(t, eq)

	eq, err = EqualsPrimitive(d, 1.0, 1.1)
	require.NoError(t, err)
	assert.False(t, eq)
}

func TestEqualsPrimitiveScalar(t *testing.T) {
	d := &descriptor.Descriptor{Tag: descriptor.Int32}
	eq, err := EqualsPrimitive(d, int32(5), int32(5))
	require.NoError(t, err)
	assert.True(t, eq)

	eq, err = EqualsPrimitive(d, int32(5), int32(6))
	require.NoError(t, err)
	assert.False(t, eq)
}

func TestStringRoundTrip(t *testing.T) {
	d := &descriptor.Descriptor{Tag: descriptor.String}
	for _, raw := range []string{"plain", "has;semicolon", "has=equals", "has {brace}", "  leading space"} {
		s, err := SerializePrimitive(d, raw)
		require.NoError(t, err)
		back, err := ParsePrimitive(d, UnescapeString(s))
		require.NoError(t, err)
		assert.Equal(t, raw, back)
	}
}
