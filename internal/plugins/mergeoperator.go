package plugins

import (
	"ckv/internal/configurable"
	"ckv/internal/ctxopt"
	"ckv/internal/descriptor"
	"ckv/internal/registry"
)

// MergeOperatorTypeTag is the registry.Registry type tag MergeOperator
// descriptors resolve against.
const MergeOperatorTypeTag = "MergeOperator"

// RegisterMergeOperators adds the two built-in MergeOperator factories to
// reg under MergeOperatorTypeTag.
func RegisterMergeOperators(reg *registry.Registry) {
	reg.Register(MergeOperatorTypeTag, "ckv.PutOperator", newPutOperator)
	reg.Register(MergeOperatorTypeTag, "ckv.CounterOperator", newCounterOperator)
}

// putOperator is "ckv.PutOperator": trivial and stateless, the last
// write always wins, so it takes no parameters and needs no Prepare-time
// work beyond the embedded Configurable's own (a no-op here).
type putOperator struct {
	*configurable.Configurable
}

func newPutOperator(ctx ctxopt.Context) (descriptor.ConfigurableObject, error) {
	return &putOperator{Configurable: configurable.New("ckv.PutOperator")}, nil
}

type counterOperatorOpts struct {
	InitialValue int64
}

var counterOperatorOptsTable = func() *descriptor.Table {
	t := descriptor.NewTable()
	get, set := descriptor.Field[counterOperatorOpts, int64](func(o *counterOperatorOpts) *int64 { return &o.InitialValue })
	t.Add("initial_value", &descriptor.Descriptor{Tag: descriptor.Int64, Get: get, Set: set})
	return t
}()

// counterOperator is "ckv.CounterOperator": accumulates int64 deltas
// starting from initial_value.
type counterOperator struct {
	*configurable.Configurable
	opts *counterOperatorOpts
}

func newCounterOperator(ctx ctxopt.Context) (descriptor.ConfigurableObject, error) {
	opts := &counterOperatorOpts{}
	cfg := configurable.New("ckv.CounterOperator").AddGroup("merge_operator", opts, counterOperatorOptsTable)
	return &counterOperator{Configurable: cfg, opts: opts}, nil
}

// Merge folds delta into the running total, the operation a real
// storage engine would invoke per merge-key during compaction; exposed
// here so the Prepare-time construction of this Customizable has an
// observable effect to test against.
func (c *counterOperator) Merge(delta int64) int64 {
	c.opts.InitialValue += delta
	return c.opts.InitialValue
}
