package catalog

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/fusedb/fusedb/common"
)

// RowReader iterates the rows of one partition. A reader is finite and is not
// safe for concurrent use; reading the same partition again requires a new
// reader.
type RowReader interface {
	// Next advances to the next row. It returns false at the end of the
	// partition or on error.
	Next() bool
	// Row returns the row most recently read by Next(). The slice is owned by
	// the caller.
	Row() []common.Value
	// Error returns the error that stopped iteration, if any.
	Error() error
	Close() error
}

// Table is the data source abstraction consumed by read plans and source
// processors. Implementations must allow concurrent Read calls on distinct
// partitions.
type Table interface {
	Name() string
	Schema() *Schema
	// ReadPlan describes how the table currently divides into partitions.
	ReadPlan(ctx context.Context) (Partitions, Statistics, error)
	// Read opens a reader over a single partition returned by ReadPlan.
	Read(ctx context.Context, part Partition) (RowReader, error)
}

// TableInfo is the serializable description of a registered table.
type TableInfo struct {
	Database string   `json:"database"`
	Name     string   `json:"name"`
	Columns  []Column `json:"columns"`
}

// Catalog maps (database, table) pairs to their data sources.
//
// Tables are registered once and then read concurrently by every lane of every
// running pipeline, so lookups go through a concurrent map rather than a
// mutex-guarded one.
type Catalog struct {
	databases *xsync.MapOf[string, struct{}]
	tables    *xsync.MapOf[string, Table] // "db.table" -> Table
}

func NewCatalog() *Catalog {
	c := &Catalog{
		databases: xsync.NewMapOf[string, struct{}](),
		tables:    xsync.NewMapOf[string, Table](),
	}
	c.databases.Store(DefaultDatabase, struct{}{})
	return c
}

// DefaultDatabase always exists.
const DefaultDatabase = "default"

func tableKey(db, table string) string {
	return db + "." + table
}

// CreateDatabase registers an empty database. If it already exists, it returns DuplicateObjectError.
func (c *Catalog) CreateDatabase(name string) error {
	if _, loaded := c.databases.LoadOrStore(name, struct{}{}); loaded {
		return common.NewError(common.DuplicateObjectError, "database '%s' already exists", name)
	}
	return nil
}

// AddTable registers a table under a database. If the database does not exist it returns NoSuchObjectError; if the
// table with that name already exists, it returns DuplicateObjectError.
func (c *Catalog) AddTable(db string, table Table) error {
	if _, ok := c.databases.Load(db); !ok {
		return common.NewError(common.NoSuchObjectError, "database '%s' does not exist", db)
	}
	if _, loaded := c.tables.LoadOrStore(tableKey(db, table.Name()), table); loaded {
		return common.NewError(common.DuplicateObjectError, "table '%s.%s' already exists", db, table.Name())
	}
	return nil
}

// GetTable fetches a registered table.
func (c *Catalog) GetTable(db, name string) (Table, error) {
	table, ok := c.tables.Load(tableKey(db, name))
	if !ok {
		return nil, common.NewError(common.NoSuchObjectError, "table '%s.%s' does not exist", db, name)
	}
	return table, nil
}

// Tables lists the registered tables, ordered by database then name.
func (c *Catalog) Tables() []TableInfo {
	var out []TableInfo
	c.tables.Range(func(key string, t Table) bool {
		db := key[:len(key)-len(t.Name())-1]
		out = append(out, TableInfo{Database: db, Name: t.Name(), Columns: t.Schema().Columns()})
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Database != out[j].Database {
			return out[i].Database < out[j].Database
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (c *Catalog) String() string {
	b, _ := json.MarshalIndent(c.Tables(), "", "  ")
	return string(b)
}
