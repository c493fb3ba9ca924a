package catalog

import (
	"fmt"
	"strings"

	"github.com/fusedb/fusedb/common"
)

// Column represents the basic unit of a schema.
type Column struct {
	Name     string      `json:"name"`
	Type     common.Type `json:"type"`
	Nullable bool        `json:"nullable"`
}

func (c Column) String() string {
	return fmt.Sprintf("%s:%s", c.Name, c.Type)
}

// Schema is an ordered, uniquely-named, typed column list. Schemas are
// immutable once built and may be shared freely between plans and processors.
type Schema struct {
	columns []Column
	byName  map[string]int
}

// NewSchema validates that column names are unique and builds a Schema.
func NewSchema(columns ...Column) (*Schema, error) {
	byName := make(map[string]int, len(columns))
	for i, c := range columns {
		if c.Name == "" {
			return nil, common.NewError(common.InvalidPlanBuilder, "column %d has an empty name", i)
		}
		if _, dup := byName[c.Name]; dup {
			return nil, common.NewError(common.DuplicateObjectError, "duplicate column name '%s' in schema", c.Name)
		}
		byName[c.Name] = i
	}
	cols := make([]Column, len(columns))
	copy(cols, columns)
	return &Schema{columns: cols, byName: byName}, nil
}

// MustSchema is NewSchema for statically known column lists.
func MustSchema(columns ...Column) *Schema {
	s, err := NewSchema(columns...)
	common.Assert(err == nil, "invalid schema: %v", err)
	return s
}

// EmptySchema returns a schema without columns.
func EmptySchema() *Schema {
	return &Schema{byName: map[string]int{}}
}

// NumColumns returns the number of columns in the schema.
func (s *Schema) NumColumns() int {
	return len(s.columns)
}

// Column returns the column at index i.
func (s *Schema) Column(i int) Column {
	return s.columns[i]
}

// Columns returns a copy of the column list.
func (s *Schema) Columns() []Column {
	out := make([]Column, len(s.columns))
	copy(out, s.columns)
	return out
}

// IndexOf returns the position of the named column.
func (s *Schema) IndexOf(name string) (int, bool) {
	i, ok := s.byName[name]
	return i, ok
}

// Types returns the column types in order.
func (s *Schema) Types() []common.Type {
	out := make([]common.Type, len(s.columns))
	for i, c := range s.columns {
		out[i] = c.Type
	}
	return out
}

// Equal reports whether both schemas have the same columns in the same order.
func (s *Schema) Equal(other *Schema) bool {
	if s == other {
		return true
	}
	if s == nil || other == nil || len(s.columns) != len(other.columns) {
		return false
	}
	for i := range s.columns {
		if s.columns[i] != other.columns[i] {
			return false
		}
	}
	return true
}

func (s *Schema) String() string {
	parts := make([]string, len(s.columns))
	for i, c := range s.columns {
		parts[i] = c.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
