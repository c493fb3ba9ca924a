package planner

import (
	"fmt"

	"github.com/fusedb/fusedb/catalog"
)

// LimitPlan limits the number of output rows. No ordering is implied.
type LimitPlan struct {
	Input PlanNode
	N     int
}

func NewLimitPlan(input PlanNode, n int) *LimitPlan {
	return &LimitPlan{Input: input, N: n}
}

func (p *LimitPlan) Schema() (*catalog.Schema, error) {
	return schemaOf(p.Input)
}

func (p *LimitPlan) Name() string {
	return "LimitPlan"
}

func (p *LimitPlan) String() string {
	return fmt.Sprintf("Limit: %d", p.N)
}

func (p *LimitPlan) isPlanNode() {}
