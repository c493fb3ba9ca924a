package planner

import (
	"fmt"

	"github.com/fusedb/fusedb/catalog"
	"github.com/fusedb/fusedb/common"
)

type ExplainType int

const (
	// ExplainSyntax prints the logical plan, one operator per line.
	ExplainSyntax ExplainType = iota
	// ExplainGraph prints the logical plan as a graphviz digraph.
	ExplainGraph
	// ExplainPipeline prints the compiled pipeline stages.
	ExplainPipeline
)

func (t ExplainType) String() string {
	switch t {
	case ExplainSyntax:
		return "Syntax"
	case ExplainGraph:
		return "Graph"
	case ExplainPipeline:
		return "Pipeline"
	}
	return "???"
}

// ExplainPlan wraps a plan whose description, rather than whose rows, is the
// result of the statement.
type ExplainPlan struct {
	Input PlanNode
	Type  ExplainType
}

func NewExplainPlan(input PlanNode, typ ExplainType) *ExplainPlan {
	return &ExplainPlan{Input: input, Type: typ}
}

func (p *ExplainPlan) Schema() (*catalog.Schema, error) {
	return nil, common.NewError(common.SchemaUnavailable, "schema of %s is not derivable", p.Name())
}

func (p *ExplainPlan) Name() string {
	return "ExplainPlan"
}

func (p *ExplainPlan) String() string {
	return fmt.Sprintf("Explain: %s", p.Type)
}

func (p *ExplainPlan) isPlanNode() {}
