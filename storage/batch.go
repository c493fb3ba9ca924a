package storage

import (
	"github.com/fusedb/fusedb/catalog"
	"github.com/fusedb/fusedb/common"
)

// Batch is a group of rows sharing one schema; it is the unit of data that
// flows through a pipeline lane.
type Batch struct {
	schema *catalog.Schema
	rows   []Tuple
}

// NewBatch creates a batch. Rows must match the schema's width.
func NewBatch(schema *catalog.Schema, rows []Tuple) *Batch {
	for _, r := range rows {
		common.Assert(r.NumColumns() == schema.NumColumns(),
			"row width %d does not match schema %s", r.NumColumns(), schema)
	}
	return &Batch{schema: schema, rows: rows}
}

func (b *Batch) Schema() *catalog.Schema {
	return b.schema
}

func (b *Batch) NumRows() int {
	return len(b.rows)
}

func (b *Batch) Row(i int) Tuple {
	return b.rows[i]
}

// Rows returns the batch rows. Callers must not modify the returned slice.
func (b *Batch) Rows() []Tuple {
	return b.rows
}

// Slice returns a batch sharing rows [start, end).
func (b *Batch) Slice(start, end int) *Batch {
	return &Batch{schema: b.schema, rows: b.rows[start:end:end]}
}
