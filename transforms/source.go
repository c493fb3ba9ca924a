package transforms

import (
	"context"

	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fusedb/fusedb/catalog"
	"github.com/fusedb/fusedb/common"
	"github.com/fusedb/fusedb/contexts"
	"github.com/fusedb/fusedb/processors"
	"github.com/fusedb/fusedb/storage"
)

// SourceTransform reads a fixed list of partitions of a table, in order, and
// emits their rows in batches of at most max_block_size rows.
type SourceTransform struct {
	ctx        *contexts.Context
	db         string
	table      string
	partitions catalog.Partitions
}

// NewSourceTransform creates a source over partitions of db.table. An empty db
// means the current database of ctx.
func NewSourceTransform(ctx *contexts.Context, db, table string, partitions catalog.Partitions) *SourceTransform {
	if db == "" {
		db = ctx.CurrentDatabase()
	}
	return &SourceTransform{ctx: ctx, db: db, table: table, partitions: partitions}
}

func (t *SourceTransform) Name() string {
	return "SourceTransform"
}

func (t *SourceTransform) Connect(processors.Processor) error {
	return common.NewError(common.InvalidPipeline, "%s cannot have inputs", t.Name())
}

func (t *SourceTransform) Inputs() []processors.Processor {
	return nil
}

// Partitions returns the partitions assigned to this source.
func (t *SourceTransform) Partitions() catalog.Partitions {
	return t.partitions
}

func (t *SourceTransform) Execute(context.Context) (processors.Stream, error) {
	table, err := t.ctx.GetTable(t.db, t.table)
	if err != nil {
		return nil, err
	}
	level.Debug(t.ctx.Logger()).Log("msg", "reading partitions", "table", t.db+"."+t.table, "partitions", len(t.partitions))
	return &sourceStream{
		src:       t,
		table:     table,
		blockSize: int(t.ctx.Settings().MaxBlockSize()),
		rowsRead:  t.ctx.Metrics().SourceRowsRead.WithLabelValues(t.db + "." + t.table),
	}, nil
}

type sourceStream struct {
	src       *SourceTransform
	table     catalog.Table
	blockSize int
	rowsRead  prometheus.Counter

	next   int
	reader catalog.RowReader
}

func (s *sourceStream) Next(ctx context.Context) (*storage.Batch, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s.reader == nil {
			if s.next >= len(s.src.partitions) {
				return nil, processors.EOS
			}
			reader, err := s.table.Read(ctx, s.src.partitions[s.next])
			if err != nil {
				return nil, err
			}
			s.reader = reader
			s.next++
		}

		rows := make([]storage.Tuple, 0, min(s.blockSize, 1024))
		for len(rows) < s.blockSize && s.reader.Next() {
			rows = append(rows, storage.FromValues(s.reader.Row()...))
		}
		if err := s.reader.Error(); err != nil {
			return nil, err
		}
		if len(rows) < s.blockSize {
			if err := s.closeReader(); err != nil {
				return nil, err
			}
		}
		if len(rows) == 0 {
			continue
		}
		s.rowsRead.Add(float64(len(rows)))
		return storage.NewBatch(s.table.Schema(), rows), nil
	}
}

func (s *sourceStream) closeReader() error {
	if s.reader == nil {
		return nil
	}
	err := s.reader.Close()
	s.reader = nil
	return err
}

func (s *sourceStream) Close() error {
	s.next = len(s.src.partitions)
	return s.closeReader()
}
