package transforms

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/fusedb/fusedb/catalog"
	"github.com/fusedb/fusedb/common"
	"github.com/fusedb/fusedb/planner"
	"github.com/fusedb/fusedb/processors"
	"github.com/fusedb/fusedb/storage"
)

// AggregatorPartialTransform aggregates the rows of one lane. It emits one row
// per group: the group-by values followed by the partial state of every
// aggregate.
type AggregatorPartialTransform struct {
	processors.SingleInput
	schema     *catalog.Schema
	groupBy    []planner.Expr
	aggregates []*planner.AggregateExpr
}

func NewAggregatorPartialTransform(schema *catalog.Schema, groupBy []planner.Expr, aggregates []*planner.AggregateExpr) (*AggregatorPartialTransform, error) {
	width := len(groupBy)
	for _, a := range aggregates {
		width += len(a.PartialTypes())
	}
	if len(aggregates) == 0 || schema == nil || schema.NumColumns() != width {
		return nil, common.NewError(common.ProcessorCreation, "partial aggregate state of width %d does not match schema %s", width, schema)
	}
	return &AggregatorPartialTransform{schema: schema, groupBy: groupBy, aggregates: aggregates}, nil
}

func (t *AggregatorPartialTransform) Name() string {
	return "AggregatorPartialTransform"
}

func (t *AggregatorPartialTransform) Execute(ctx context.Context) (processors.Stream, error) {
	input, err := t.ExecuteInput(ctx, t.Name())
	if err != nil {
		return nil, err
	}
	return &onceStream{input: input, produce: t.aggregate}, nil
}

func (t *AggregatorPartialTransform) newStates() [][]common.Value {
	states := make([][]common.Value, len(t.aggregates))
	for i, a := range t.aggregates {
		states[i] = a.NewState()
	}
	return states
}

func (t *AggregatorPartialTransform) aggregate(ctx context.Context, input processors.Stream) (*storage.Batch, error) {
	groups := NewGroupHashTable[[][]common.Value]()
	key := make([]common.Value, len(t.groupBy))
	for {
		b, err := input.Next(ctx)
		if errors.Is(err, processors.EOS) {
			break
		}
		if err != nil {
			return nil, err
		}
		for _, row := range b.Rows() {
			for i, e := range t.groupBy {
				key[i] = e.Eval(row)
			}
			states := groups.GetOrInsert(key, t.newStates)
			for i, a := range t.aggregates {
				a.Accumulate(states[i], row)
			}
		}
	}

	if groups.Len() == 0 {
		return nil, nil
	}
	rows := make([]storage.Tuple, 0, groups.Len())
	groups.Iterate(func(key []common.Value, states [][]common.Value) {
		values := make([]common.Value, 0, t.schema.NumColumns())
		values = append(values, key...)
		for i, a := range t.aggregates {
			values = append(values, a.PartialValues(states[i])...)
		}
		rows = append(rows, storage.FromValues(values...))
	})
	return storage.NewBatch(t.schema, rows), nil
}

// AggregatorFinalTransform merges the partial states produced by every lane
// and emits one row per group: the group-by values followed by the final value
// of every aggregate. Aggregating without group-by always yields exactly one
// row, even over no input.
type AggregatorFinalTransform struct {
	processors.SingleInput
	schema     *catalog.Schema
	groupBy    []planner.Expr
	aggregates []*planner.AggregateExpr
}

func NewAggregatorFinalTransform(schema *catalog.Schema, groupBy []planner.Expr, aggregates []*planner.AggregateExpr) (*AggregatorFinalTransform, error) {
	if len(aggregates) == 0 || schema == nil || schema.NumColumns() != len(groupBy)+len(aggregates) {
		return nil, common.NewError(common.ProcessorCreation, "final aggregate of %d columns does not match schema %s", len(groupBy)+len(aggregates), schema)
	}
	return &AggregatorFinalTransform{schema: schema, groupBy: groupBy, aggregates: aggregates}, nil
}

func (t *AggregatorFinalTransform) Name() string {
	return "AggregatorFinalTransform"
}

func (t *AggregatorFinalTransform) Execute(ctx context.Context) (processors.Stream, error) {
	input, err := t.ExecuteInput(ctx, t.Name())
	if err != nil {
		return nil, err
	}
	return &onceStream{input: input, produce: t.merge}, nil
}

func (t *AggregatorFinalTransform) newStates() [][]common.Value {
	states := make([][]common.Value, len(t.aggregates))
	for i, a := range t.aggregates {
		states[i] = a.NewState()
	}
	return states
}

func (t *AggregatorFinalTransform) merge(ctx context.Context, input processors.Stream) (*storage.Batch, error) {
	groups := NewGroupHashTable[[][]common.Value]()
	numKeys := len(t.groupBy)
	for {
		b, err := input.Next(ctx)
		if errors.Is(err, processors.EOS) {
			break
		}
		if err != nil {
			return nil, err
		}
		for _, row := range b.Rows() {
			values := row.Values()
			states := groups.GetOrInsert(values[:numKeys], t.newStates)
			pos := numKeys
			for i, a := range t.aggregates {
				width := len(a.PartialTypes())
				a.Merge(states[i], values[pos:pos+width])
				pos += width
			}
		}
	}

	if groups.Len() == 0 {
		if numKeys > 0 {
			return nil, nil
		}
		groups.GetOrInsert(nil, t.newStates)
	}
	rows := make([]storage.Tuple, 0, groups.Len())
	groups.Iterate(func(key []common.Value, states [][]common.Value) {
		values := make([]common.Value, 0, t.schema.NumColumns())
		values = append(values, key...)
		for i, a := range t.aggregates {
			values = append(values, a.Result(states[i]))
		}
		rows = append(rows, storage.FromValues(values...))
	})
	return storage.NewBatch(t.schema, rows), nil
}

// onceStream consumes its whole input on the first call to Next and emits the
// single batch computed from it.
type onceStream struct {
	input   processors.Stream
	produce func(context.Context, processors.Stream) (*storage.Batch, error)
	done    bool
}

func (s *onceStream) Next(ctx context.Context) (*storage.Batch, error) {
	if s.done {
		return nil, processors.EOS
	}
	s.done = true
	b, err := s.produce(ctx, s.input)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, processors.EOS
	}
	return b, nil
}

func (s *onceStream) Close() error {
	return s.input.Close()
}
