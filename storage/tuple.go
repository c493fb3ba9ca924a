package storage

import (
	"strings"

	"github.com/fusedb/fusedb/common"
)

// Tuple represents the logical view of a row exchanged between processors.
//
// A Tuple is a read-only view over a slice of values. Operators that compute
// new columns (projections, aggregates) create new tuples with FromValues or
// Extend; they never modify a tuple they received from upstream, because the
// same tuple may still be referenced by another lane's batch.
type Tuple struct {
	values []common.Value
}

// FromValues creates a Tuple from a list of values.
// This is used when a processor creates a brand new row (e.g., "SELECT 1, 'hello'").
func FromValues(values ...common.Value) Tuple {
	return Tuple{values: values}
}

// Extend returns a NEW Tuple consisting of the current tuple's fields
// followed by the provided newValues.
func (t Tuple) Extend(newValues []common.Value) Tuple {
	out := make([]common.Value, 0, len(t.values)+len(newValues))
	out = append(out, t.values...)
	out = append(out, newValues...)
	return Tuple{values: out}
}

// IsNil checks if the tuple is uninitialized.
func (t Tuple) IsNil() bool {
	return t.values == nil
}

// NumColumns returns the total number of fields in the tuple.
func (t Tuple) NumColumns() int {
	return len(t.values)
}

// GetValue retrieves the value at index i.
func (t Tuple) GetValue(i int) common.Value {
	return t.values[i]
}

// Values returns a copy of the tuple's fields.
func (t Tuple) Values() []common.Value {
	out := make([]common.Value, len(t.values))
	copy(out, t.values)
	return out
}

// AppendKey appends the grouping key of the fields at the given positions.
func (t Tuple) AppendKey(buf []byte, positions []int) []byte {
	for _, p := range positions {
		buf = t.values[p].AppendKey(buf)
	}
	return buf
}

func (t Tuple) String() string {
	parts := make([]string, len(t.values))
	for i, v := range t.values {
		parts[i] = v.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
