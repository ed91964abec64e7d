package configurable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ckv/internal/ckverrors"
	"ckv/internal/ctxopt"
	"ckv/internal/descriptor"
)

type fixture struct {
	A int64
	B int64
}

func fixtureTable() *descriptor.Table {
	t := descriptor.NewTable()
	aGet, aSet := descriptor.Field[fixture, int64](func(f *fixture) *int64 { return &f.A })
	t.Add("a", &descriptor.Descriptor{Tag: descriptor.Int64, Get: aGet, Set: aSet})
	bGet, bSet := descriptor.Field[fixture, int64](func(f *fixture) *int64 { return &f.B })
	t.Add("b", &descriptor.Descriptor{Tag: descriptor.Int64, Get: bGet, Set: bSet})
	return t
}

func newFixtureConfigurable() (*Configurable, *fixture) {
	rec := &fixture{}
	return New("fixture").AddGroup("main", rec, fixtureTable()), rec
}

type stringSub struct {
	Name string
}

func stringSubTable() *descriptor.Table {
	t := descriptor.NewTable()
	get, set := descriptor.Field[stringSub, string](func(s *stringSub) *string { return &s.Name })
	t.Add("name", &descriptor.Descriptor{Tag: descriptor.String, Get: get, Set: set})
	return t
}

type stringFixture struct {
	Name string
	Sub  stringSub
}

func stringFixtureTable() *descriptor.Table {
	t := descriptor.NewTable()
	get, set := descriptor.Field[stringFixture, string](func(f *stringFixture) *string { return &f.Name })
	t.Add("name", &descriptor.Descriptor{Tag: descriptor.String, Get: get, Set: set})
	sub := descriptor.SubField[stringFixture, stringSub](func(f *stringFixture) *stringSub { return &f.Sub })
	t.Add("sub", &descriptor.Descriptor{Tag: descriptor.Struct, SubRecord: sub, Sub: stringSubTable()})
	return t
}

func newStringFixtureConfigurable() (*Configurable, *stringFixture) {
	rec := &stringFixture{}
	return New("string-fixture").AddGroup("main", rec, stringFixtureTable()), rec
}

// A String value containing the grammar's own special characters must
// survive serialize -> tokenize -> parse intact (spec.md §8 property 1
// "Round-trip"), which requires the lexer to respect EscapeString's
// backslash escaping rather than splitting on the escaped byte.
func TestStringValueWithGrammarCharsRoundTripsThroughLexer(t *testing.T) {
	ctx := ctxopt.Default()
	ctx.InputStringsEscaped = true
	cfg, rec := newStringFixtureConfigurable()
	rec.Name = `has;semi{brace}=eq`

	s, err := cfg.GetOptionString(ctx)
	require.NoError(t, err)

	peer, peerRec := newStringFixtureConfigurable()
	require.NoError(t, peer.ConfigureFromString(ctx, s))
	assert.Equal(t, rec.Name, peerRec.Name)
}

// A dotted path into a Struct must unescape its leaf value exactly once,
// no matter how many levels of recursion it passed through on the way
// in, or a literal backslash in the original value gets corrupted.
func TestDottedPathStringFieldUnescapesExactlyOnce(t *testing.T) {
	ctx := ctxopt.Default()
	ctx.InputStringsEscaped = true
	cfg, rec := newStringFixtureConfigurable()

	require.NoError(t, cfg.ConfigureOption(ctx, "sub.name", `a\\b`))
	assert.Equal(t, `a\b`, rec.Sub.Name)
}

func TestConfigureFromStringAndGetOptionString(t *testing.T) {
	ctx := ctxopt.Default()
	cfg, rec := newFixtureConfigurable()

	require.NoError(t, cfg.ConfigureFromString(ctx, "a=1;b=2"))
	assert.Equal(t, int64(1), rec.A)
	assert.Equal(t, int64(2), rec.B)

	s, err := cfg.GetOptionString(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a=1;b=2", s)
}

func TestConfigureFromMapIdempotent(t *testing.T) {
	ctx := ctxopt.Default()
	cfg, rec := newFixtureConfigurable()
	m := map[string]string{"a": "5", "b": "9"}

	_, err := cfg.ConfigureFromMap(ctx, m)
	require.NoError(t, err)
	first := *rec

	_, err = cfg.ConfigureFromMap(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, first, *rec)
}

func TestConfigureFromMapUnknownOption(t *testing.T) {
	ctx := ctxopt.Default()

	cfg, _ := newFixtureConfigurable()
	_, err := cfg.ConfigureFromMap(ctx, map[string]string{"bogus": "1"})
	require.Error(t, err)
	assert.True(t, ckverrors.Is(err, ckverrors.InvalidArgument))

	cfg, _ = newFixtureConfigurable()
	_, err = cfg.ConfigureFromMap(ctx.WithIgnoreUnknownOptions(true), map[string]string{"bogus": "1"})
	require.NoError(t, err)
}

func TestMatchesReportsMismatchPath(t *testing.T) {
	ctx := ctxopt.Default()
	a, _ := newFixtureConfigurable()
	b, _ := newFixtureConfigurable()
	require.NoError(t, a.ConfigureFromString(ctx, "a=1;b=2"))
	require.NoError(t, b.ConfigureFromString(ctx, "a=1;b=3"))

	equal, mismatch, err := a.Matches(ctx, b)
	require.NoError(t, err)
	assert.False(t, equal)
	assert.Equal(t, "main.b", mismatch)
}

func TestValidateOptionsGatedOnPrepare(t *testing.T) {
	ctx := ctxopt.Default()
	cfg, _ := newFixtureConfigurable()

	err := cfg.ValidateOptions(ctx)
	require.Error(t, err)
	assert.True(t, ckverrors.Is(err, ckverrors.NotSupported))

	require.NoError(t, cfg.PrepareOptions(ctx))
	assert.NoError(t, cfg.ValidateOptions(ctx))
}
