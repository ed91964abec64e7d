package option

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ckv/internal/ctxopt"
	"ckv/internal/descriptor"
	"ckv/internal/registry"
)

type polyChild struct {
	id string
	p  int64
}

func (c *polyChild) ConfigureFromMap(ctx ctxopt.Context, m map[string]string) (map[string]string, error) {
	unused := map[string]string{}
	for k, v := range m {
		if k != "p" {
			unused[k] = v
			continue
		}
		if v == "1" {
			c.p = 1
		}
	}
	return unused, nil
}
func (c *polyChild) ConfigureOption(ctx ctxopt.Context, name, value string) error { return nil }
func (c *polyChild) GetOptionString(ctx ctxopt.Context) (string, error) {
	if c.p == 0 {
		return "", nil
	}
	return "p=1", nil
}
func (c *polyChild) Matches(ctx ctxopt.Context, other descriptor.ConfigurableObject) (bool, string, error) {
	return true, "", nil
}
func (c *polyChild) PrepareOptions(ctx ctxopt.Context) error  { return nil }
func (c *polyChild) ValidateOptions(ctx ctxopt.Context) error { return nil }
func (c *polyChild) GetID() string                            { return c.id }

type polyOwner struct {
	Child descriptor.ConfigurableObject
}

func polyTable(flags descriptor.Flags) *descriptor.Table {
	tbl := descriptor.NewTable()
	get, set := descriptor.ChildField[polyOwner](func(o *polyOwner) *descriptor.ConfigurableObject { return &o.Child })
	tbl.Add("child", &descriptor.Descriptor{
		Tag: descriptor.Customizable, ChildGet: get, ChildSet: set,
		CustomizableTag: "POLY", Flags: flags,
	})
	return tbl
}

func polyRegistryContext() ctxopt.Context {
	reg := registry.New()
	reg.Register("POLY", "A", func(ctx ctxopt.Context) (descriptor.ConfigurableObject, error) {
		return &polyChild{id: "A"}, nil
	})
	ctx := ctxopt.Default()
	ctx.Registry = reg
	return ctx
}

func TestParseCustomizableChildBareID(t *testing.T) {
	tbl := polyTable(0)
	owner := &polyOwner{}
	ctx := polyRegistryContext()

	require.NoError(t, ParseOption(ctx, tbl, "child", "A", owner))
	require.NotNil(t, owner.Child)
	assert.Equal(t, "A", owner.Child.GetID())
}

func TestParseCustomizableChildWithParams(t *testing.T) {
	tbl := polyTable(0)
	owner := &polyOwner{}
	ctx := polyRegistryContext()

	require.NoError(t, ParseOption(ctx, tbl, "child", "{id=A;p=1}", owner))
	require.NotNil(t, owner.Child)
	assert.Equal(t, int64(1), owner.Child.(*polyChild).p)
}

func TestParseCustomizableChildNullSentinel(t *testing.T) {
	tbl := polyTable(0)
	owner := &polyOwner{Child: &polyChild{id: "A"}}
	ctx := polyRegistryContext()

	require.NoError(t, ParseOption(ctx, tbl, "child", "nullptr", owner))
	assert.Nil(t, owner.Child)
}

func TestParseCustomizableChildUnknownSubOptionRejected(t *testing.T) {
	tbl := polyTable(0)
	owner := &polyOwner{}
	ctx := polyRegistryContext()

	err := ParseOption(ctx, tbl, "child", "{id=A;bogus=1}", owner)
	require.Error(t, err)
}

func TestParseCustomizableChildUnresolvedRegistryRejected(t *testing.T) {
	tbl := polyTable(0)
	owner := &polyOwner{}
	ctx := ctxopt.Default()

	err := ParseOption(ctx, tbl, "child", "A", owner)
	require.Error(t, err)
}

func TestSerializeChildStringShallow(t *testing.T) {
	tbl := polyTable(descriptor.StringShallow)
	owner := &polyOwner{Child: &polyChild{id: "A", p: 1}}
	ctx := ctxopt.Default()

	d, _, ok := tbl.Lookup("child")
	require.True(t, ok)
	s, present, err := SerializeOption(ctx, d, owner)
	require.NoError(t, err)
	assert.True(t, present)
	assert.Equal(t, "A", s)
}

func TestSerializeChildFullForm(t *testing.T) {
	tbl := polyTable(0)
	owner := &polyOwner{Child: &polyChild{id: "A", p: 1}}
	ctx := ctxopt.Default()

	d, _, ok := tbl.Lookup("child")
	require.True(t, ok)
	s, present, err := SerializeOption(ctx, d, owner)
	require.NoError(t, err)
	assert.True(t, present)
	assert.Equal(t, "{id=A;p=1}", s)
}

func TestSerializeChildAbsentIsNullptr(t *testing.T) {
	tbl := polyTable(0)
	owner := &polyOwner{}
	ctx := ctxopt.Default()

	d, _, ok := tbl.Lookup("child")
	require.True(t, ok)
	s, present, err := SerializeOption(ctx, d, owner)
	require.NoError(t, err)
	assert.True(t, present)
	assert.Equal(t, "nullptr", s)
}
