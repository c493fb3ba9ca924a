package planner

import (
	"github.com/fusedb/fusedb/catalog"
	"github.com/fusedb/fusedb/common"
)

// PlanNode represents one logical operator of a query plan.
//
// PlanNode is a closed set of variants: only the plan types of this package
// implement it, and every consumer (linearization, rebuild, pipeline
// compilation, interpreters) dispatches with an exhaustive type switch. Plan
// nodes are immutable once built; a subtree may be shared by many trees, and
// every modification builds a new tree through a Builder.
type PlanNode interface {
	// Schema returns the schema of the rows produced by this node. Explain and
	// SetVariable plans produce no rows and fail with SchemaUnavailable.
	Schema() (*catalog.Schema, error)

	// Name returns a stable label of the variant, used in diagnostics.
	Name() string

	// String returns a one-line description of the node.
	String() string

	isPlanNode()
}

var (
	_ PlanNode = (*EmptyPlan)(nil)
	_ PlanNode = (*ScanPlan)(nil)
	_ PlanNode = (*ReadSourcePlan)(nil)
	_ PlanNode = (*ProjectionPlan)(nil)
	_ PlanNode = (*AggregatePlan)(nil)
	_ PlanNode = (*FilterPlan)(nil)
	_ PlanNode = (*LimitPlan)(nil)
	_ PlanNode = (*JoinPlan)(nil)
	_ PlanNode = (*SelectPlan)(nil)
	_ PlanNode = (*ExplainPlan)(nil)
	_ PlanNode = (*SettingPlan)(nil)
)

// schemaOf returns the schema of an input, failing on a missing one.
func schemaOf(input PlanNode) (*catalog.Schema, error) {
	if input == nil {
		return nil, common.NewError(common.SchemaUnavailable, "plan node has no input")
	}
	return input.Schema()
}
