package planner

import (
	"fmt"

	"github.com/fusedb/fusedb/catalog"
)

// FilterPlan filters rows from its input based on a predicate.
type FilterPlan struct {
	Input     PlanNode
	Predicate Expr
}

func NewFilterPlan(input PlanNode, predicate Expr) *FilterPlan {
	return &FilterPlan{Input: input, Predicate: predicate}
}

func (p *FilterPlan) Schema() (*catalog.Schema, error) {
	return schemaOf(p.Input)
}

func (p *FilterPlan) Name() string {
	return "FilterPlan"
}

func (p *FilterPlan) String() string {
	return fmt.Sprintf("Filter: %s", p.Predicate)
}

func (p *FilterPlan) isPlanNode() {}
