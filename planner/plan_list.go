package planner

import (
	"github.com/fusedb/fusedb/common"
)

// MaxPlanDepth bounds the number of steps Linearize takes through a plan.
const MaxPlanDepth = 128

// Linearize walks the input chain of root, following the left input of
// joins, and returns the visited nodes ordered from the leaf to the root.
// Select, Explain and Join nodes are kept only when includeWrapping is set.
// Empty and SetVariable end the walk without being listed.
func Linearize(root PlanNode, includeWrapping bool) ([]PlanNode, error) {
	var list []PlanNode
	depth := 0
	plan := root

walk:
	for {
		if depth > MaxPlanDepth {
			return nil, common.NewError(common.PlanTooDeep, "PlanNode depth more than %d", MaxPlanDepth)
		}

		switch p := plan.(type) {
		case *AggregatePlan:
			list = append(list, p)
			plan = p.Input
		case *ProjectionPlan:
			list = append(list, p)
			plan = p.Input
		case *FilterPlan:
			list = append(list, p)
			plan = p.Input
		case *LimitPlan:
			list = append(list, p)
			plan = p.Input
		case *SelectPlan:
			if includeWrapping {
				list = append(list, p)
			}
			plan = p.Input
		case *ExplainPlan:
			if includeWrapping {
				list = append(list, p)
			}
			plan = p.Input
		case *JoinPlan:
			// Only the left input is walked; the right input stays inside
			// the join node.
			if includeWrapping {
				list = append(list, p)
			}
			plan = p.Lhs
		case *ScanPlan:
			list = append(list, p)
			break walk
		case *ReadSourcePlan:
			list = append(list, p)
			break walk
		case *EmptyPlan, *SettingPlan:
			break walk
		case nil:
			return nil, common.NewError(common.UnsupportedPlanNode, "nil plan node at depth %d", depth)
		default:
			common.Assert(false, "unknown plan node %T", plan)
		}
		depth++
	}

	for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
		list[i], list[j] = list[j], list[i]
	}
	return list, nil
}

// SubplanToList lists the operator chain of root without its wrappers.
func SubplanToList(root PlanNode) ([]PlanNode, error) {
	return Linearize(root, false)
}

// PlanToList lists every node on the input chain of root.
func PlanToList(root PlanNode) ([]PlanNode, error) {
	return Linearize(root, true)
}

// Rebuild folds a leaf-to-root list back into a plan tree. Empty, Scan and
// SetVariable entries leave the builder unchanged.
func Rebuild(list []PlanNode) (PlanNode, error) {
	b := NewBuilderEmpty()
	for _, node := range list {
		switch p := node.(type) {
		case *ProjectionPlan:
			b = b.Project(p.Exprs...)
		case *AggregatePlan:
			b = b.Aggregate(p.GroupBy, p.Aggregates)
		case *FilterPlan:
			b = b.Filter(p.Predicate)
		case *LimitPlan:
			b = b.Limit(p.N)
		case *ReadSourcePlan:
			b = b.withBase(p)
		case *JoinPlan:
			b = b.withBase(p)
		case *ExplainPlan:
			b = b.Explain(p.Type)
		case *SelectPlan:
			b = b.Select()
		case *EmptyPlan, *ScanPlan, *SettingPlan:
		case nil:
			return nil, common.NewError(common.UnsupportedPlanNode, "nil plan node in list")
		default:
			common.Assert(false, "unknown plan node %T", node)
		}
	}
	return b.Build()
}
