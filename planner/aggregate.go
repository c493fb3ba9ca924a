package planner

import (
	"fmt"
	"strings"

	"github.com/fusedb/fusedb/common"
	"github.com/fusedb/fusedb/storage"
)

type AggregatorType int

const (
	AggCount AggregatorType = iota
	AggSum
	AggMin
	AggMax
	AggAvg
)

func (a AggregatorType) String() string {
	switch a {
	case AggCount:
		return "count"
	case AggSum:
		return "sum"
	case AggMin:
		return "min"
	case AggMax:
		return "max"
	case AggAvg:
		return "avg"
	}
	return "???"
}

// AggregateExpr is one aggregate function call of an Aggregate plan.
//
// Aggregation runs in two phases. Every lane accumulates input rows into a
// partial state and emits it with PartialValues; a single final stage merges
// the partial states of all lanes with Merge and produces the value with
// Result. Merging is commutative and associative, so the order in which lanes
// deliver their partial states does not matter.
type AggregateExpr struct {
	Type  AggregatorType
	Arg   Expr // nil means COUNT(*)
	Alias string
}

// NewAggregateExpr validates the argument type of the aggregate function.
func NewAggregateExpr(typ AggregatorType, arg Expr, alias string) (*AggregateExpr, error) {
	if err := checkAggregate(typ, arg); err != nil {
		return nil, err
	}
	return &AggregateExpr{Type: typ, Arg: arg, Alias: alias}, nil
}

func checkAggregate(typ AggregatorType, arg Expr) error {
	if typ < AggCount || typ > AggAvg {
		return common.NewError(common.InvalidPlanBuilder, "unknown aggregator type %d", typ)
	}
	if arg == nil {
		if typ != AggCount {
			return common.NewError(common.InvalidPlanBuilder, "%s requires an argument", typ)
		}
		return nil
	}
	if (typ == AggSum || typ == AggAvg) && arg.OutputType() != common.IntType {
		return common.NewError(common.InvalidPlanBuilder, "%s requires an int argument, got %s", typ, arg.OutputType())
	}
	return nil
}

// Name returns the output column name.
func (a *AggregateExpr) Name() string {
	if a.Alias != "" {
		return a.Alias
	}
	return a.String()
}

func (a *AggregateExpr) String() string {
	if a.Arg == nil {
		return fmt.Sprintf("%s(*)", a.Type)
	}
	return fmt.Sprintf("%s(%s)", a.Type, a.Arg)
}

// OutputType returns the type of the final aggregate value.
func (a *AggregateExpr) OutputType() common.Type {
	switch a.Type {
	case AggCount, AggSum, AggAvg:
		return common.IntType
	}
	return a.Arg.OutputType()
}

// PartialTypes describes the columns of the partial state emitted per lane.
func (a *AggregateExpr) PartialTypes() []common.Type {
	switch a.Type {
	case AggCount, AggSum:
		return []common.Type{common.IntType}
	case AggAvg:
		return []common.Type{common.IntType, common.IntType}
	}
	return []common.Type{a.Arg.OutputType()}
}

// PartialNames names the partial state columns after the aggregate.
func (a *AggregateExpr) PartialNames() []string {
	if a.Type == AggAvg {
		return []string{a.Name() + ".sum", a.Name() + ".count"}
	}
	return []string{a.Name() + ".state"}
}

// NewState returns an empty accumulator. A nil Value marks "no input seen".
func (a *AggregateExpr) NewState() []common.Value {
	state := make([]common.Value, len(a.PartialTypes()))
	switch a.Type {
	case AggCount:
		state[0] = common.NewIntValue(0)
	case AggAvg:
		state[0] = common.NewIntValue(0)
		state[1] = common.NewIntValue(0)
	}
	return state
}

// Accumulate folds one input row into state. NULL arguments are ignored, as in
// standard SQL; COUNT(*) counts every row.
func (a *AggregateExpr) Accumulate(state []common.Value, t storage.Tuple) {
	if a.Arg == nil {
		state[0] = common.NewIntValue(state[0].IntValue() + 1)
		return
	}
	val := a.Arg.Eval(t)
	if val.IsNull() {
		return
	}
	a.fold(state, []common.Value{val}, false)
}

// Merge folds a partial state produced by another lane into state.
func (a *AggregateExpr) Merge(state []common.Value, partial []common.Value) {
	common.Assert(len(partial) == len(state), "partial state width %d, expected %d", len(partial), len(state))
	a.fold(state, partial, true)
}

func (a *AggregateExpr) fold(state []common.Value, in []common.Value, merging bool) {
	switch a.Type {
	case AggCount:
		inc := int64(1)
		if merging {
			inc = in[0].IntValue()
		}
		state[0] = common.NewIntValue(state[0].IntValue() + inc)
	case AggSum:
		if in[0].IsNull() {
			return
		}
		if state[0].IsNil() {
			state[0] = in[0]
		} else {
			state[0] = common.NewIntValue(state[0].IntValue() + in[0].IntValue())
		}
	case AggMin:
		if in[0].IsNull() {
			return
		}
		if state[0].IsNil() || in[0].Compare(state[0]) < 0 {
			state[0] = in[0]
		}
	case AggMax:
		if in[0].IsNull() {
			return
		}
		if state[0].IsNil() || in[0].Compare(state[0]) > 0 {
			state[0] = in[0]
		}
	case AggAvg:
		cnt := int64(1)
		if merging {
			cnt = in[1].IntValue()
		}
		state[0] = common.NewIntValue(state[0].IntValue() + in[0].IntValue())
		state[1] = common.NewIntValue(state[1].IntValue() + cnt)
	default:
		common.Assert(false, "unknown aggregator type %d", a.Type)
	}
}

// PartialValues converts an accumulator to the row values sent to the final stage.
func (a *AggregateExpr) PartialValues(state []common.Value) []common.Value {
	out := make([]common.Value, len(state))
	types := a.PartialTypes()
	for i, v := range state {
		if v.IsNil() {
			// no input seen
			v = common.NewNull(types[i])
		}
		out[i] = v
	}
	return out
}

// Result returns the final aggregate value of a merged state. AVG is an int
// aggregate: the quotient is truncated toward zero, so AVG(1, 2) is 1.
func (a *AggregateExpr) Result(state []common.Value) common.Value {
	switch a.Type {
	case AggAvg:
		if state[1].IntValue() == 0 {
			return common.NewNullInt()
		}
		return common.NewIntValue(state[0].IntValue() / state[1].IntValue())
	}
	if state[0].IsNil() {
		return common.NewNull(a.OutputType())
	}
	return state[0]
}

// formatAggregates renders a list of aggregates for plan descriptions.
func formatAggregates(aggrs []*AggregateExpr) string {
	parts := make([]string, len(aggrs))
	for i, a := range aggrs {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}

func formatExprs(exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
