package planner

import (
	"fmt"

	"github.com/fusedb/fusedb/catalog"
)

// AggregatePlan represents a group-by and aggregation operation. Its output
// rows hold the group-by values followed by one value per aggregate.
type AggregatePlan struct {
	Input      PlanNode
	GroupBy    []Expr
	Aggregates []*AggregateExpr
	schema     *catalog.Schema
}

func NewAggregatePlan(input PlanNode, groupBy []Expr, aggregates []*AggregateExpr) (*AggregatePlan, error) {
	cols := make([]catalog.Column, 0, len(groupBy)+len(aggregates))
	for _, e := range groupBy {
		cols = append(cols, catalog.Column{Name: e.Name(), Type: e.OutputType(), Nullable: true})
	}
	for _, a := range aggregates {
		cols = append(cols, catalog.Column{Name: a.Name(), Type: a.OutputType(), Nullable: true})
	}
	schema, err := catalog.NewSchema(cols...)
	if err != nil {
		return nil, err
	}
	return &AggregatePlan{Input: input, GroupBy: groupBy, Aggregates: aggregates, schema: schema}, nil
}

func (p *AggregatePlan) Schema() (*catalog.Schema, error) {
	return p.schema, nil
}

// PartialSchema describes the rows exchanged between the partial and the
// final aggregation stages: group-by values, then every aggregate's state.
func (p *AggregatePlan) PartialSchema() (*catalog.Schema, error) {
	cols := make([]catalog.Column, 0, len(p.GroupBy)+len(p.Aggregates))
	for _, e := range p.GroupBy {
		cols = append(cols, catalog.Column{Name: e.Name(), Type: e.OutputType(), Nullable: true})
	}
	for _, a := range p.Aggregates {
		names := a.PartialNames()
		for i, t := range a.PartialTypes() {
			cols = append(cols, catalog.Column{Name: names[i], Type: t, Nullable: true})
		}
	}
	return catalog.NewSchema(cols...)
}

func (p *AggregatePlan) Name() string {
	return "AggregatePlan"
}

func (p *AggregatePlan) String() string {
	if len(p.GroupBy) == 0 {
		return fmt.Sprintf("Aggregate: %s", formatAggregates(p.Aggregates))
	}
	return fmt.Sprintf("Aggregate: %s, group by: %s", formatAggregates(p.Aggregates), formatExprs(p.GroupBy))
}

func (p *AggregatePlan) isPlanNode() {}
