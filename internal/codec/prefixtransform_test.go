package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefixTransformRoundTrip(t *testing.T) {
	for _, tc := range prefixTransformCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			tr, err := ParsePrefixTransform(tc.token)
			require.NoError(t, err)
			assert.Equal(t, tc.want, *tr)

			s, err := SerializePrefixTransform(tr)
			require.NoError(t, err)
			assert.Equal(t, tc.wantSerialized, s)
		})
	}
}

var prefixTransformCases = []struct {
	name           string
	token          string
	want           Transform
	wantSerialized string
}{
	{name: "null sentinel", token: "nullptr", want: Transform{Kind: TransformNull}, wantSerialized: "nullptr"},
	{name: "empty token is null", token: "", want: Transform{Kind: TransformNull}, wantSerialized: "nullptr"},
	{name: "noop", token: "rocksdb.Noop", want: Transform{Kind: TransformNoop}, wantSerialized: "rocksdb.Noop"},
	{name: "short fixed", token: "fixed:4", want: Transform{Kind: TransformFixed, N: 4}, wantSerialized: "fixed:4"},
	{name: "short capped", token: "capped:8", want: Transform{Kind: TransformCapped, N: 8}, wantSerialized: "capped:8"},
	{name: "long fixed", token: "rocksdb.FixedPrefix.4", want: Transform{Kind: TransformFixed, N: 4}, wantSerialized: "fixed:4"},
	{name: "long capped", token: "rocksdb.CappedPrefix.8", want: Transform{Kind: TransformCapped, N: 8}, wantSerialized: "capped:8"},
}

func TestPrefixTransformInvalid(t *testing.T) {
	_, err := ParsePrefixTransform("bogus")
	require.Error(t, err)

	_, err = ParsePrefixTransform("fixed:abc")
	require.Error(t, err)
}

func TestPrefixTransformEquals(t *testing.T) {
	a := &Transform{Kind: TransformFixed, N: 4}
	b := &Transform{Kind: TransformFixed, N: 4}
	c := &Transform{Kind: TransformFixed, N: 5}

	assert.True(t, EqualsPrefixTransform(a, b))
	assert.False(t, EqualsPrefixTransform(a, c))
	assert.True(t, EqualsPrefixTransform(nil, &Transform{Kind: TransformNull}))
	assert.True(t, EqualsPrefixTransform(nil, nil))
}
