package planner

import (
	"fmt"

	"github.com/fusedb/fusedb/catalog"
)

// ProjectionPlan evaluates a list of expressions on every input row.
type ProjectionPlan struct {
	Input  PlanNode
	Exprs  []Expr
	schema *catalog.Schema
}

// NewProjectionPlan derives the output schema from the expressions' names and
// types; two expressions with the same output name are rejected.
func NewProjectionPlan(input PlanNode, exprs []Expr) (*ProjectionPlan, error) {
	cols := make([]catalog.Column, len(exprs))
	for i, e := range exprs {
		cols[i] = catalog.Column{Name: e.Name(), Type: e.OutputType(), Nullable: true}
	}
	schema, err := catalog.NewSchema(cols...)
	if err != nil {
		return nil, err
	}
	return &ProjectionPlan{Input: input, Exprs: exprs, schema: schema}, nil
}

func (p *ProjectionPlan) Schema() (*catalog.Schema, error) {
	return p.schema, nil
}

func (p *ProjectionPlan) Name() string {
	return "ProjectionPlan"
}

func (p *ProjectionPlan) String() string {
	return fmt.Sprintf("Projection: %s", formatExprs(p.Exprs))
}

func (p *ProjectionPlan) isPlanNode() {}
