package option

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ckv/internal/ctxopt"
	"ckv/internal/descriptor"
)

type sanityRecord struct {
	Loose int64
	Exact int64
}

func sanityTable() *descriptor.Table {
	tbl := descriptor.NewTable()
	looseGet, looseSet := descriptor.Field[sanityRecord, int64](func(r *sanityRecord) *int64 { return &r.Loose })
	tbl.Add("loose", &descriptor.Descriptor{Tag: descriptor.Int64, Get: looseGet, Set: looseSet, Flags: descriptor.CompareLoose})
	exactGet, exactSet := descriptor.Field[sanityRecord, int64](func(r *sanityRecord) *int64 { return &r.Exact })
	tbl.Add("exact", &descriptor.Descriptor{Tag: descriptor.Int64, Get: exactGet, Set: exactSet})
	return tbl
}

func TestMatchesOptionCompareLooseSanityLevels(t *testing.T) {
	tbl := sanityTable()
	d, _, ok := tbl.Lookup("loose")
	require.True(t, ok)

	a := &sanityRecord{Loose: 1}
	b := &sanityRecord{Loose: 2}

	looseCtx := ctxopt.Default()
	looseCtx.SanityLevel = ctxopt.SanityLooselyCompatible
	equal, _, err := MatchesOption(looseCtx, d, d.Get(a), d.Get(b))
	require.NoError(t, err)
	assert.True(t, equal, "CompareLoose descriptor must report equal under LooselyCompatible even when values differ")

	exactCtx := ctxopt.Default()
	exactCtx.SanityLevel = ctxopt.SanityExactMatch
	equal, _, err = MatchesOption(exactCtx, d, d.Get(a), d.Get(b))
	require.NoError(t, err)
	assert.False(t, equal, "CompareLoose descriptor must report unequal under ExactMatch when values differ")
}

func TestMatchesOptionNormalDescriptorAlwaysCompared(t *testing.T) {
	tbl := sanityTable()
	d, _, ok := tbl.Lookup("exact")
	require.True(t, ok)

	a := &sanityRecord{Exact: 1}
	b := &sanityRecord{Exact: 2}

	looseCtx := ctxopt.Default()
	looseCtx.SanityLevel = ctxopt.SanityLooselyCompatible
	equal, _, err := MatchesOption(looseCtx, d, d.Get(a), d.Get(b))
	require.NoError(t, err)
	assert.False(t, equal, "an unflagged descriptor always compares, regardless of sanity level")
}

type nestedOwner struct {
	Vals []int64
	Sub  sanityRecord
}

func nestedTable() *descriptor.Table {
	tbl := descriptor.NewTable()

	vGet, vSet, vMakeSlice, vElems := descriptor.VectorField[nestedOwner, int64](func(o *nestedOwner) *[]int64 { return &o.Vals })
	elem := &descriptor.Descriptor{Tag: descriptor.Int64}
	tbl.Add("vals", &descriptor.Descriptor{
		Tag: descriptor.Vector, Get: vGet, Set: vSet, MakeSlice: vMakeSlice, Elems: vElems,
		Element: elem, ElementSep: ':',
	})

	subRec := descriptor.SubField[nestedOwner, sanityRecord](func(o *nestedOwner) *sanityRecord { return &o.Sub })
	tbl.Add("sub", &descriptor.Descriptor{Tag: descriptor.Struct, SubRecord: subRec, Sub: sanityTable()})

	return tbl
}

func TestParseSerializeVectorDirect(t *testing.T) {
	tbl := nestedTable()
	owner := &nestedOwner{}
	ctx := ctxopt.Default()

	require.NoError(t, ParseOption(ctx, tbl, "vals", "1:2:3", owner))
	assert.Equal(t, []int64{1, 2, 3}, owner.Vals)

	d, _, ok := tbl.Lookup("vals")
	require.True(t, ok)
	s, present, err := SerializeOption(ctx, d, owner)
	require.NoError(t, err)
	assert.True(t, present)
	assert.Equal(t, "1:2:3", s)
}

func TestParseOptionDottedStructPath(t *testing.T) {
	tbl := nestedTable()
	owner := &nestedOwner{Sub: sanityRecord{Loose: 1, Exact: 2}}
	ctx := ctxopt.Default()

	require.NoError(t, ParseOption(ctx, tbl, "sub.exact", "9", owner))
	assert.Equal(t, int64(9), owner.Sub.Exact)
	assert.Equal(t, int64(1), owner.Sub.Loose)
}

type parentOwner struct {
	Child descriptor.ConfigurableObject
}

type childStub struct {
	p int64
}

func (c *childStub) ConfigureFromMap(ctx ctxopt.Context, m map[string]string) (map[string]string, error) {
	return nil, nil
}
func (c *childStub) ConfigureOption(ctx ctxopt.Context, name, value string) error {
	c.p = 1
	return nil
}
func (c *childStub) GetOptionString(ctx ctxopt.Context) (string, error) { return "", nil }
func (c *childStub) Matches(ctx ctxopt.Context, other descriptor.ConfigurableObject) (bool, string, error) {
	return true, "", nil
}
func (c *childStub) PrepareOptions(ctx ctxopt.Context) error  { return nil }
func (c *childStub) ValidateOptions(ctx ctxopt.Context) error { return nil }
func (c *childStub) GetID() string                            { return "stub" }

func parentTable() *descriptor.Table {
	tbl := descriptor.NewTable()
	get, set := descriptor.ChildField[parentOwner](func(o *parentOwner) *descriptor.ConfigurableObject { return &o.Child })
	tbl.Add("child", &descriptor.Descriptor{Tag: descriptor.Configurable, ChildGet: get, ChildSet: set})
	return tbl
}

func TestApplyChildFieldNilChildRejected(t *testing.T) {
	tbl := parentTable()
	owner := &parentOwner{}
	err := ParseOption(ctxopt.Default(), tbl, "child.p", "1", owner)
	require.Error(t, err)
}

func TestApplyChildFieldDelegatesToChild(t *testing.T) {
	tbl := parentTable()
	child := &childStub{}
	owner := &parentOwner{Child: child}
	require.NoError(t, ParseOption(ctxopt.Default(), tbl, "child.p", "1", owner))
	assert.Equal(t, int64(1), child.p)
}

func TestParseOptionUnknownNameIgnoredOrRejected(t *testing.T) {
	tbl := nestedTable()
	owner := &nestedOwner{}

	strict := ctxopt.Default()
	err := ParseOption(strict, tbl, "bogus", "1", owner)
	require.Error(t, err)

	lenient := ctxopt.Default().WithIgnoreUnknownOptions(true)
	require.NoError(t, ParseOption(lenient, tbl, "bogus", "1", owner))
}
