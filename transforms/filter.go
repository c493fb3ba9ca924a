package transforms

import (
	"context"

	"github.com/fusedb/fusedb/common"
	"github.com/fusedb/fusedb/planner"
	"github.com/fusedb/fusedb/processors"
	"github.com/fusedb/fusedb/storage"
)

// FilterTransform keeps the rows for which the predicate is true. Rows where it
// is false or NULL are dropped.
type FilterTransform struct {
	processors.SingleInput
	predicate planner.Expr
}

func NewFilterTransform(predicate planner.Expr) (*FilterTransform, error) {
	if predicate == nil {
		return nil, common.NewError(common.ProcessorCreation, "filter predicate is nil")
	}
	return &FilterTransform{predicate: predicate}, nil
}

func (t *FilterTransform) Name() string {
	return "FilterTransform"
}

func (t *FilterTransform) Execute(ctx context.Context) (processors.Stream, error) {
	input, err := t.ExecuteInput(ctx, t.Name())
	if err != nil {
		return nil, err
	}
	return &mapStream{input: input, fn: t.filter}, nil
}

func (t *FilterTransform) filter(b *storage.Batch) (*storage.Batch, error) {
	rows := make([]storage.Tuple, 0, b.NumRows())
	for _, row := range b.Rows() {
		if planner.IsTrue(t.predicate.Eval(row)) {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return storage.NewBatch(b.Schema(), rows), nil
}

// mapStream applies fn to every input batch. A nil result batch is skipped.
type mapStream struct {
	input processors.Stream
	fn    func(*storage.Batch) (*storage.Batch, error)
}

func (s *mapStream) Next(ctx context.Context) (*storage.Batch, error) {
	for {
		b, err := s.input.Next(ctx)
		if err != nil {
			return nil, err
		}
		out, err := s.fn(b)
		if err != nil {
			return nil, err
		}
		if out != nil {
			return out, nil
		}
	}
}

func (s *mapStream) Close() error {
	return s.input.Close()
}
