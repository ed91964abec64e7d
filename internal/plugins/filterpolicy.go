// Package plugins registers concrete Customizable implementations
// against a registry.Registry, grounding spec §4.6 "Object Registry"
// and §4.7 "Lifecycle Driver" in recognizable pluggable subsystems
// (filter policies, merge operators, metadata stores).
//
// Grounded on the shape of the teacher's internal/dialect/mysql package
// (one concrete implementation of a pluggable interface per file) and
// internal/apply.Applier's Prepare/Validate split.
package plugins

import (
	"strings"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	"github.com/pingcap/tidb/pkg/parser/format"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"

	"ckv/internal/ckverrors"
	"ckv/internal/configurable"
	"ckv/internal/ctxopt"
	"ckv/internal/descriptor"
	"ckv/internal/registry"
)

// FilterPolicyTypeTag is the registry.Registry type tag FilterPolicy
// descriptors resolve against.
const FilterPolicyTypeTag = "FilterPolicy"

// RegisterFilterPolicies adds the two built-in FilterPolicy factories to
// reg under FilterPolicyTypeTag (spec §4 expansion "Pluggable
// subsystems").
func RegisterFilterPolicies(reg *registry.Registry) {
	reg.Register(FilterPolicyTypeTag, "rocksdb.BuiltinBloomFilter", newBloomFilter)
	reg.Register(FilterPolicyTypeTag, "ckv.ExprFilterPolicy", newExprFilterPolicy)
}

type bloomFilterOpts struct {
	BitsPerKey int32
}

var bloomFilterOptsTable = func() *descriptor.Table {
	t := descriptor.NewTable()
	get, set := descriptor.Field[bloomFilterOpts, int32](func(o *bloomFilterOpts) *int32 { return &o.BitsPerKey })
	t.Add("bits_per_key", &descriptor.Descriptor{Tag: descriptor.Int32, Get: get, Set: set})
	return t
}()

// bloomFilter is "rocksdb.BuiltinBloomFilter": parameterized only by
// bits_per_key, no Prepare-time work beyond range checking.
type bloomFilter struct {
	*configurable.Configurable
	opts *bloomFilterOpts
}

func newBloomFilter(ctx ctxopt.Context) (descriptor.ConfigurableObject, error) {
	opts := &bloomFilterOpts{BitsPerKey: 10}
	cfg := configurable.New("rocksdb.BuiltinBloomFilter").AddGroup("filter_policy", opts, bloomFilterOptsTable)
	return &bloomFilter{Configurable: cfg, opts: opts}, nil
}

func (b *bloomFilter) PrepareOptions(ctx ctxopt.Context) error {
	if err := b.Configurable.PrepareOptions(ctx); err != nil {
		return err
	}
	if b.opts.BitsPerKey <= 0 {
		return ckverrors.InvalidArg("rocksdb.BuiltinBloomFilter: bits_per_key must be positive, got %d", b.opts.BitsPerKey)
	}
	ctx.Logger().Infow("bloom filter prepared", "bits_per_key", b.opts.BitsPerKey)
	return nil
}

type exprFilterOpts struct {
	Expr string
}

var exprFilterOptsTable = func() *descriptor.Table {
	t := descriptor.NewTable()
	get, set := descriptor.Field[exprFilterOpts, string](func(o *exprFilterOpts) *string { return &o.Expr })
	t.Add("expr", &descriptor.Descriptor{Tag: descriptor.String, Get: get, Set: set})
	return t
}()

// exprFilterPolicy is "ckv.ExprFilterPolicy": a row-predicate expression
// compiled (syntactically validated and canonicalized) at Prepare time,
// using the same SQL grammar the teacher's schema parser speaks.
type exprFilterPolicy struct {
	*configurable.Configurable
	opts     *exprFilterOpts
	compiled string
}

func newExprFilterPolicy(ctx ctxopt.Context) (descriptor.ConfigurableObject, error) {
	opts := &exprFilterOpts{}
	cfg := configurable.New("ckv.ExprFilterPolicy").AddGroup("filter_policy", opts, exprFilterOptsTable)
	return &exprFilterPolicy{Configurable: cfg, opts: opts}, nil
}

func (e *exprFilterPolicy) PrepareOptions(ctx ctxopt.Context) error {
	if err := e.Configurable.PrepareOptions(ctx); err != nil {
		return err
	}
	expr := strings.TrimSpace(e.opts.Expr)
	if expr == "" {
		return ckverrors.InvalidArg("ckv.ExprFilterPolicy: expr must not be empty")
	}
	compiled, err := compileRowExpr(expr)
	if err != nil {
		return ckverrors.Wrap(ckverrors.InvalidArgument, "expr", err)
	}
	e.compiled = compiled
	ctx.Logger().Infow("expr filter policy prepared", "expr", e.compiled)
	return nil
}

func (e *exprFilterPolicy) ValidateOptions(ctx ctxopt.Context) error {
	if err := e.Configurable.ValidateOptions(ctx); err != nil {
		return err
	}
	if e.compiled == "" {
		return ckverrors.NotSupportedf("ckv.ExprFilterPolicy: not prepared")
	}
	return nil
}

// compileRowExpr validates expr as a single SQL scalar expression by
// parsing it as the select-list of a synthetic "SELECT <expr>" statement
// and restoring the parsed expression tree back to canonical text,
// mirroring the teacher's parser.mysql.Parser.exprToString restore step.
func compileRowExpr(expr string) (string, error) {
	p := parser.New()
	stmtNodes, _, err := p.Parse("SELECT "+expr, "", "")
	if err != nil {
		return "", ckverrors.InvalidArg("ckv.ExprFilterPolicy: %v", err)
	}
	if len(stmtNodes) != 1 {
		return "", ckverrors.InvalidArg("ckv.ExprFilterPolicy: expected a single expression")
	}
	sel, ok := stmtNodes[0].(*ast.SelectStmt)
	if !ok || sel.Fields == nil || len(sel.Fields.Fields) != 1 {
		return "", ckverrors.InvalidArg("ckv.ExprFilterPolicy: expected a single expression")
	}
	var sb strings.Builder
	restoreCtx := format.NewRestoreCtx(format.DefaultRestoreFlags, &sb)
	if err := sel.Fields.Fields[0].Expr.Restore(restoreCtx); err != nil {
		return "", ckverrors.InvalidArg("ckv.ExprFilterPolicy: %v", err)
	}
	return sb.String(), nil
}
