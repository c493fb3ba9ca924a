package planner

import (
	"github.com/cockroachdb/errors"

	"github.com/fusedb/fusedb/catalog"
	"github.com/fusedb/fusedb/common"
)

// Builder assembles a plan bottom-up. Each method returns a new Builder that
// wraps the current plan; the receiver is left untouched, so a Builder may be
// branched. The first failed precondition is kept and returned by Build.
type Builder struct {
	plan PlanNode
	err  error
}

// NewBuilderEmpty starts from an EmptyPlan.
func NewBuilderEmpty() *Builder {
	return &Builder{plan: NewEmptyPlan()}
}

// NewBuilderFrom starts from an existing plan.
func NewBuilderFrom(plan PlanNode) *Builder {
	if plan == nil {
		return &Builder{err: common.NewError(common.InvalidPlanBuilder, "builder base plan is nil")}
	}
	return &Builder{plan: plan}
}

func (b *Builder) withBase(plan PlanNode) *Builder {
	if b.err != nil {
		return b
	}
	return NewBuilderFrom(plan)
}

func (b *Builder) fail(err error) *Builder {
	return &Builder{plan: b.plan, err: err}
}

// inputSchema returns the schema the next operator will read.
func (b *Builder) inputSchema(op string) (*catalog.Schema, error) {
	schema, err := b.plan.Schema()
	if err != nil {
		return nil, errors.Wrapf(err, "%s over %s", op, b.plan.Name())
	}
	return schema, nil
}

// Project evaluates exprs over every row of the current plan.
func (b *Builder) Project(exprs ...Expr) *Builder {
	if b.err != nil {
		return b
	}
	if len(exprs) == 0 {
		return b.fail(common.NewError(common.InvalidPlanBuilder, "projection needs at least one expression"))
	}
	schema, err := b.inputSchema("projection")
	if err != nil {
		return b.fail(err)
	}
	for _, e := range exprs {
		if err := checkBound(e, schema); err != nil {
			return b.fail(err)
		}
	}
	plan, err := NewProjectionPlan(b.plan, exprs)
	if err != nil {
		return b.fail(err)
	}
	return &Builder{plan: plan}
}

// Filter keeps the rows for which predicate evaluates to a non-zero int.
func (b *Builder) Filter(predicate Expr) *Builder {
	if b.err != nil {
		return b
	}
	if predicate == nil {
		return b.fail(common.NewError(common.InvalidPlanBuilder, "filter predicate is nil"))
	}
	if predicate.OutputType() != common.IntType {
		return b.fail(common.NewError(common.InvalidPlanBuilder, "filter predicate %s has type %s, expected int", predicate, predicate.OutputType()))
	}
	schema, err := b.inputSchema("filter")
	if err != nil {
		return b.fail(err)
	}
	if err := checkBound(predicate, schema); err != nil {
		return b.fail(err)
	}
	return &Builder{plan: NewFilterPlan(b.plan, predicate)}
}

// Aggregate groups the rows of the current plan by groupBy and computes
// aggregates per group. An empty groupBy aggregates the whole input.
func (b *Builder) Aggregate(groupBy []Expr, aggregates []*AggregateExpr) *Builder {
	if b.err != nil {
		return b
	}
	if len(aggregates) == 0 {
		return b.fail(common.NewError(common.InvalidPlanBuilder, "aggregate needs at least one aggregate expression"))
	}
	schema, err := b.inputSchema("aggregate")
	if err != nil {
		return b.fail(err)
	}
	for _, e := range groupBy {
		if err := checkBound(e, schema); err != nil {
			return b.fail(err)
		}
	}
	for _, a := range aggregates {
		if a == nil {
			return b.fail(common.NewError(common.InvalidPlanBuilder, "aggregate expression is nil"))
		}
		if err := checkAggregate(a.Type, a.Arg); err != nil {
			return b.fail(err)
		}
		if a.Arg == nil {
			continue
		}
		if err := checkBound(a.Arg, schema); err != nil {
			return b.fail(err)
		}
	}
	plan, err := NewAggregatePlan(b.plan, groupBy, aggregates)
	if err != nil {
		return b.fail(err)
	}
	return &Builder{plan: plan}
}

func (b *Builder) Limit(n int) *Builder {
	if b.err != nil {
		return b
	}
	if n < 0 {
		return b.fail(common.NewError(common.InvalidPlanBuilder, "limit must not be negative, got %d", n))
	}
	return &Builder{plan: NewLimitPlan(b.plan, n)}
}

func (b *Builder) Explain(typ ExplainType) *Builder {
	if b.err != nil {
		return b
	}
	return &Builder{plan: NewExplainPlan(b.plan, typ)}
}

func (b *Builder) Select() *Builder {
	if b.err != nil {
		return b
	}
	return &Builder{plan: NewSelectPlan(b.plan)}
}

// Build returns the assembled plan or the first precondition failure.
func (b *Builder) Build() (PlanNode, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.plan, nil
}

// checkBound verifies that every column read by e exists in schema at the
// position and with the type it was bound to.
func checkBound(e Expr, schema *catalog.Schema) error {
	switch e := e.(type) {
	case nil:
		return common.NewError(common.InvalidPlanBuilder, "expression is nil")
	case *ColumnExpr:
		if e.offset >= schema.NumColumns() || schema.Column(e.offset).Type != e.outputType {
			return common.NewError(common.InvalidPlanBuilder, "column %s (#%d) is not bound to %s", e.name, e.offset, schema)
		}
		return nil
	case *LiteralExpr:
		return nil
	case *AliasExpr:
		return checkBound(e.child, schema)
	case *NotExpr:
		return checkBound(e.child, schema)
	case *IsNullExpr:
		return checkBound(e.child, schema)
	case *ComparisonExpr:
		return checkBoundPair(e.left, e.right, schema)
	case *LogicExpr:
		return checkBoundPair(e.left, e.right, schema)
	case *ArithmeticExpr:
		return checkBoundPair(e.left, e.right, schema)
	}
	return nil
}

func checkBoundPair(left, right Expr, schema *catalog.Schema) error {
	if err := checkBound(left, schema); err != nil {
		return err
	}
	return checkBound(right, schema)
}
