package planner

import (
	"fmt"

	"github.com/fusedb/fusedb/catalog"
	"github.com/fusedb/fusedb/common"
)

type JoinType int

const (
	InnerJoin JoinType = iota
	LeftOuterJoin
	RightOuterJoin
	FullOuterJoin
	CrossJoin
)

func (t JoinType) String() string {
	switch t {
	case InnerJoin:
		return "Inner"
	case LeftOuterJoin:
		return "LeftOuter"
	case RightOuterJoin:
		return "RightOuter"
	case FullOuterJoin:
		return "FullOuter"
	case CrossJoin:
		return "Cross"
	}
	return "???"
}

// JoinOperator is the join syntax as written in the statement.
type JoinOperator int

const (
	JoinOn JoinOperator = iota
	JoinLeftOuter
	JoinRightOuter
	JoinFullOuter
	JoinCross
	JoinNatural
	JoinUsing
)

func (op JoinOperator) String() string {
	switch op {
	case JoinOn:
		return "ON"
	case JoinLeftOuter:
		return "LEFT OUTER"
	case JoinRightOuter:
		return "RIGHT OUTER"
	case JoinFullOuter:
		return "FULL OUTER"
	case JoinCross:
		return "CROSS"
	case JoinNatural:
		return "NATURAL"
	case JoinUsing:
		return "USING"
	}
	return fmt.Sprintf("JoinOperator(%d)", int(op))
}

// JoinTypeOf maps a join operator to the kind of join it denotes.
func JoinTypeOf(op JoinOperator) (JoinType, error) {
	switch op {
	case JoinOn, JoinNatural:
		return InnerJoin, nil
	case JoinLeftOuter:
		return LeftOuterJoin, nil
	case JoinRightOuter:
		return RightOuterJoin, nil
	case JoinFullOuter:
		return FullOuterJoin, nil
	case JoinCross:
		return CrossJoin, nil
	}
	return 0, common.NewError(common.InvalidJoinOperator, "unsupported join operator %s", op)
}

// JoinPlan combines the rows of two inputs. It is logical only: the pipeline
// compiler rejects it.
type JoinPlan struct {
	Lhs        PlanNode
	Rhs        PlanNode
	Type       JoinType
	Conditions []Expr // empty for natural and cross joins
	schema     *catalog.Schema
}

// NewJoinPlan builds the join's output schema from the left columns followed by
// the right columns. A right column whose name is taken by a left column is
// renamed to "<rhs table>.<name>".
func NewJoinPlan(lhs, rhs PlanNode, op JoinOperator, conditions []Expr) (*JoinPlan, error) {
	typ, err := JoinTypeOf(op)
	if err != nil {
		return nil, err
	}
	left, err := schemaOf(lhs)
	if err != nil {
		return nil, err
	}
	right, err := schemaOf(rhs)
	if err != nil {
		return nil, err
	}
	rhsTable := sourceTableName(rhs)
	cols := left.Columns()
	for _, c := range right.Columns() {
		if _, taken := left.IndexOf(c.Name); taken {
			c.Name = rhsTable + "." + c.Name
		}
		cols = append(cols, c)
	}
	schema, err := catalog.NewSchema(cols...)
	if err != nil {
		return nil, common.NewError(common.InvalidPlanBuilder, "join output schema: %v", err)
	}
	return &JoinPlan{Lhs: lhs, Rhs: rhs, Type: typ, Conditions: conditions, schema: schema}, nil
}

// sourceTableName finds the table at the base of a plan chain.
func sourceTableName(plan PlanNode) string {
	for {
		switch p := plan.(type) {
		case *ReadSourcePlan:
			return p.Table
		case *ScanPlan:
			return p.Table
		case *ProjectionPlan:
			plan = p.Input
		case *FilterPlan:
			plan = p.Input
		case *LimitPlan:
			plan = p.Input
		case *AggregatePlan:
			plan = p.Input
		case *SelectPlan:
			plan = p.Input
		case *JoinPlan:
			plan = p.Lhs
		default:
			return "rhs"
		}
	}
}

func (p *JoinPlan) Schema() (*catalog.Schema, error) {
	return p.schema, nil
}

func (p *JoinPlan) Name() string {
	return "JoinPlan"
}

func (p *JoinPlan) String() string {
	if len(p.Conditions) == 0 {
		return fmt.Sprintf("Join: %s", p.Type)
	}
	return fmt.Sprintf("Join: %s, on: %s", p.Type, formatExprs(p.Conditions))
}

func (p *JoinPlan) isPlanNode() {}
