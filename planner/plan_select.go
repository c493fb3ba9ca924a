package planner

import (
	"github.com/fusedb/fusedb/catalog"
)

// SelectPlan is the transparent outer wrapper of a query statement.
type SelectPlan struct {
	Input PlanNode
}

func NewSelectPlan(input PlanNode) *SelectPlan {
	return &SelectPlan{Input: input}
}

func (p *SelectPlan) Schema() (*catalog.Schema, error) {
	return schemaOf(p.Input)
}

func (p *SelectPlan) Name() string {
	return "SelectPlan"
}

func (p *SelectPlan) String() string {
	return "Select"
}

func (p *SelectPlan) isPlanNode() {}
