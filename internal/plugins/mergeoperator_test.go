package plugins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ckv/internal/ctxopt"
	"ckv/internal/registry"
)

func newMergeOperatorRegistry() *registry.Registry {
	r := registry.New()
	RegisterMergeOperators(r)
	return r
}

func TestPutOperatorHasNoConfigurableOptions(t *testing.T) {
	ctx := ctxopt.Default()
	r := newMergeOperatorRegistry()

	guard, err := r.NewObject(ctx, MergeOperatorTypeTag, "ckv.PutOperator")
	require.NoError(t, err)
	obj := guard.Get()
	require.NoError(t, obj.PrepareOptions(ctx))
	assert.Equal(t, "ckv.PutOperator", obj.GetID())
}

func TestCounterOperatorAccumulatesDeltas(t *testing.T) {
	ctx := ctxopt.Default()
	r := newMergeOperatorRegistry()

	guard, err := r.NewObject(ctx, MergeOperatorTypeTag, "ckv.CounterOperator")
	require.NoError(t, err)
	obj := guard.Get().(*counterOperator)

	_, err = obj.ConfigureFromMap(ctx, map[string]string{"initial_value": "10"})
	require.NoError(t, err)

	assert.Equal(t, int64(15), obj.Merge(5))
	assert.Equal(t, int64(13), obj.Merge(-2))
}
