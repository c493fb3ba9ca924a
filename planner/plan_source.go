package planner

import (
	"context"
	"fmt"

	"github.com/fusedb/fusedb/catalog"
)

// EmptyPlan is the base of a plan without a data source (e.g. "SELECT 1").
type EmptyPlan struct {
	schema *catalog.Schema
}

func NewEmptyPlan() *EmptyPlan {
	return &EmptyPlan{schema: catalog.EmptySchema()}
}

func (p *EmptyPlan) Schema() (*catalog.Schema, error) {
	return p.schema, nil
}

func (p *EmptyPlan) Name() string {
	return "EmptyPlan"
}

func (p *EmptyPlan) String() string {
	return "Empty"
}

func (p *EmptyPlan) isPlanNode() {}

// source holds the payload shared by Scan and ReadSource plans.
type source struct {
	Database    string
	Table       string
	Partitions  catalog.Partitions
	Statistics  catalog.Statistics
	Description string
	schema      *catalog.Schema
}

// ScanPlan is the logical, not yet resolved access to a table. It must be
// turned into a ReadSourcePlan before a pipeline can be compiled from it.
type ScanPlan struct {
	source
}

func NewScanPlan(db, table string, schema *catalog.Schema) *ScanPlan {
	return &ScanPlan{source{Database: db, Table: table, schema: schema}}
}

func (p *ScanPlan) Schema() (*catalog.Schema, error) {
	return p.schema, nil
}

func (p *ScanPlan) Name() string {
	return "ScanPlan"
}

func (p *ScanPlan) String() string {
	return fmt.Sprintf("Scan: %s.%s, schema: %s", p.Database, p.Table, p.schema)
}

func (p *ScanPlan) isPlanNode() {}

// ReadSourcePlan reads a fixed list of partitions of a table.
type ReadSourcePlan struct {
	source
}

func NewReadSourcePlan(db, table string, schema *catalog.Schema, parts catalog.Partitions, stats catalog.Statistics, description string) *ReadSourcePlan {
	frozen := make(catalog.Partitions, len(parts))
	copy(frozen, parts)
	return &ReadSourcePlan{source{
		Database:    db,
		Table:       table,
		Partitions:  frozen,
		Statistics:  stats,
		Description: description,
		schema:      schema,
	}}
}

// NewReadSourcePlanFromTable asks the table how it currently divides into
// partitions and freezes the answer into a read plan.
func NewReadSourcePlanFromTable(ctx context.Context, db string, table catalog.Table) (*ReadSourcePlan, error) {
	parts, stats, err := table.ReadPlan(ctx)
	if err != nil {
		return nil, err
	}
	desc := fmt.Sprintf("(Read from %s.%s table, Read Rows:%d, Read Bytes:%d)", db, table.Name(), stats.ReadRows, stats.ReadBytes)
	return NewReadSourcePlan(db, table.Name(), table.Schema(), parts, stats, desc), nil
}

func (p *ReadSourcePlan) Schema() (*catalog.Schema, error) {
	return p.schema, nil
}

func (p *ReadSourcePlan) Name() string {
	return "ReadSourcePlan"
}

func (p *ReadSourcePlan) String() string {
	return fmt.Sprintf("ReadDataSource: scan partitions: [%d], scan schema: %s, statistics: [read_rows: %d, read_bytes: %d]",
		len(p.Partitions), p.schema, p.Statistics.ReadRows, p.Statistics.ReadBytes)
}

func (p *ReadSourcePlan) isPlanNode() {}
