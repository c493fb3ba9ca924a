package transforms

import (
	"context"

	"github.com/fusedb/fusedb/catalog"
	"github.com/fusedb/fusedb/common"
	"github.com/fusedb/fusedb/planner"
	"github.com/fusedb/fusedb/processors"
	"github.com/fusedb/fusedb/storage"
)

// ProjectionTransform evaluates a list of expressions on every row.
type ProjectionTransform struct {
	processors.SingleInput
	schema *catalog.Schema
	exprs  []planner.Expr
}

func NewProjectionTransform(schema *catalog.Schema, exprs []planner.Expr) (*ProjectionTransform, error) {
	if schema == nil || schema.NumColumns() != len(exprs) {
		return nil, common.NewError(common.ProcessorCreation, "projection of %d expressions does not match schema %s", len(exprs), schema)
	}
	return &ProjectionTransform{schema: schema, exprs: exprs}, nil
}

func (t *ProjectionTransform) Name() string {
	return "ProjectionTransform"
}

func (t *ProjectionTransform) Execute(ctx context.Context) (processors.Stream, error) {
	input, err := t.ExecuteInput(ctx, t.Name())
	if err != nil {
		return nil, err
	}
	return &mapStream{input: input, fn: t.project}, nil
}

func (t *ProjectionTransform) project(b *storage.Batch) (*storage.Batch, error) {
	rows := make([]storage.Tuple, b.NumRows())
	for i, row := range b.Rows() {
		values := make([]common.Value, len(t.exprs))
		for j, e := range t.exprs {
			values[j] = e.Eval(row)
		}
		rows[i] = storage.FromValues(values...)
	}
	return storage.NewBatch(t.schema, rows), nil
}
