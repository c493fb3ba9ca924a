package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/tidwall/btree"

	"github.com/fusedb/fusedb/catalog"
	"github.com/fusedb/fusedb/common"
)

type memRow struct {
	id     uint64
	values []common.Value
}

// memPartition is one independently readable chunk of a MemTable. Rows are kept
// in insertion order in a B-Tree keyed by row id, so readers can take a cheap
// copy-on-write snapshot and iterate it without holding the table lock.
// Rows are only appended, so version is also the row count and the first
// version rows are the partition as of that version.
type memPartition struct {
	name    string
	version uint64
	rows    *btree.BTreeG[memRow]
	bytes   uint64
}

// MemTable is an in-memory, partitioned table. It implements catalog.Table and
// serves as the source reader for read plans.
type MemTable struct {
	name   string
	schema *catalog.Schema

	mu         sync.RWMutex
	partitions []*memPartition
	nextRowID  uint64
}

// NewMemTable creates an empty table split into numPartitions partitions.
func NewMemTable(name string, schema *catalog.Schema, numPartitions int) *MemTable {
	common.Assert(numPartitions >= 0, "negative partition count %d", numPartitions)
	less := func(a, b memRow) bool {
		return a.id < b.id
	}
	parts := make([]*memPartition, numPartitions)
	for i := range parts {
		parts[i] = &memPartition{
			name: fmt.Sprintf("%s-part-%d", name, i),
			rows: btree.NewBTreeG(less),
		}
	}
	return &MemTable{name: name, schema: schema, partitions: parts}
}

func (t *MemTable) Name() string {
	return t.name
}

func (t *MemTable) Schema() *catalog.Schema {
	return t.schema
}

func (t *MemTable) validate(row []common.Value) error {
	if len(row) != t.schema.NumColumns() {
		return common.NewError(common.InvalidPipeline, "table '%s' expects %d columns, got %d",
			t.name, t.schema.NumColumns(), len(row))
	}
	for i, v := range row {
		col := t.schema.Column(i)
		if v.Type() != col.Type {
			return common.NewError(common.InvalidPipeline, "column '%s' expects %s, got %s",
				col.Name, col.Type, v.Type())
		}
		if v.IsNull() && !col.Nullable {
			return common.NewError(common.InvalidPipeline, "column '%s' is not nullable", col.Name)
		}
	}
	return nil
}

func valueSize(v common.Value) uint64 {
	if v.IsNull() {
		return 1
	}
	switch v.Type() {
	case common.IntType:
		return 8
	case common.StringType:
		return uint64(len(v.StringValue()))
	}
	return 0
}

// Insert appends rows, distributing them round-robin over the partitions.
// Either all rows are inserted or none are.
func (t *MemTable) Insert(rows ...[]common.Value) error {
	for _, r := range rows {
		if err := t.validate(r); err != nil {
			return err
		}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.partitions) == 0 {
		if len(rows) == 0 {
			return nil
		}
		return common.NewError(common.InvalidPipeline, "table '%s' has no partitions", t.name)
	}
	for _, r := range rows {
		p := t.partitions[t.nextRowID%uint64(len(t.partitions))]
		values := make([]common.Value, len(r))
		copy(values, r)
		p.rows.Set(memRow{id: t.nextRowID, values: values})
		for _, v := range values {
			p.bytes += valueSize(v)
		}
		p.version++
		t.nextRowID++
	}
	return nil
}

// ReadPlan implements catalog.Table.
func (t *MemTable) ReadPlan(_ context.Context) (catalog.Partitions, catalog.Statistics, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	parts := make(catalog.Partitions, len(t.partitions))
	var stats catalog.Statistics
	for i, p := range t.partitions {
		parts[i] = catalog.Partition{Name: p.name, Version: p.version}
		stats.ReadRows += uint64(p.rows.Len())
		stats.ReadBytes += p.bytes
	}
	return parts, stats, nil
}

// Read implements catalog.Table.
func (t *MemTable) Read(ctx context.Context, part catalog.Partition) (catalog.RowReader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, p := range t.partitions {
		if p.name == part.Name {
			if part.Version > p.version {
				return nil, common.NewError(common.NoSuchObjectError, "partition '%s' has no version %d, latest is %d", part.Name, part.Version, p.version)
			}
			snapshot := p.rows.Copy()
			return &memRowReader{rows: snapshot, iter: snapshot.Iter(), remaining: part.Version}, nil
		}
	}
	return nil, common.NewError(common.NoSuchObjectError, "partition '%s' does not exist in table '%s'", part.Name, t.name)
}

type memRowReader struct {
	rows      *btree.BTreeG[memRow]
	iter      btree.IterG[memRow]
	remaining uint64 // rows left before the planned version is exhausted
	started   bool
	closed    bool
}

func (r *memRowReader) Next() bool {
	if r.closed || r.remaining == 0 {
		return false
	}
	var ok bool
	if !r.started {
		r.started = true
		ok = r.iter.First()
	} else {
		ok = r.iter.Next()
	}
	if ok {
		r.remaining--
	}
	return ok
}

func (r *memRowReader) Row() []common.Value {
	row := r.iter.Item().values
	out := make([]common.Value, len(row))
	copy(out, row)
	return out
}

func (r *memRowReader) Error() error {
	return nil
}

func (r *memRowReader) Close() error {
	if !r.closed {
		r.closed = true
		r.iter.Release()
	}
	return nil
}
