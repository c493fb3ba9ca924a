package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fusedb/fusedb/catalog"
	"github.com/fusedb/fusedb/common"
)

func TestTupleFromValues(t *testing.T) {
	val1 := common.NewIntValue(1)
	val2 := common.NewStringValue("hello")
	tup := FromValues(val1, val2)

	assert.Equal(t, 2, tup.NumColumns())
	assert.Equal(t, val1, tup.GetValue(0))
	assert.Equal(t, val2, tup.GetValue(1))
	assert.False(t, tup.IsNil())
	assert.True(t, Tuple{}.IsNil())
	assert.Equal(t, "(1, hello)", tup.String())
}

func TestTupleExtend(t *testing.T) {
	baseTup := FromValues(common.NewIntValue(100))

	extraVal := common.NewStringValue("extended")
	extendedTup := baseTup.Extend([]common.Value{extraVal})

	assert.Equal(t, 2, extendedTup.NumColumns())
	assert.Equal(t, int64(100), extendedTup.GetValue(0).IntValue())
	assert.Equal(t, "extended", extendedTup.GetValue(1).StringValue())
	// The base tuple is untouched.
	assert.Equal(t, 1, baseTup.NumColumns())
}

func TestTupleValuesIsACopy(t *testing.T) {
	tup := FromValues(common.NewIntValue(1))
	vals := tup.Values()
	vals[0] = common.NewIntValue(2)
	assert.Equal(t, int64(1), tup.GetValue(0).IntValue())
}

func TestTupleAppendKey(t *testing.T) {
	a := FromValues(common.NewIntValue(1), common.NewStringValue("x"), common.NewIntValue(5))
	b := FromValues(common.NewIntValue(1), common.NewStringValue("y"), common.NewIntValue(5))

	assert.Equal(t, string(a.AppendKey(nil, []int{0, 2})), string(b.AppendKey(nil, []int{0, 2})))
	assert.NotEqual(t, string(a.AppendKey(nil, []int{1})), string(b.AppendKey(nil, []int{1})))
	assert.Empty(t, a.AppendKey(nil, nil))
}

func TestBatch(t *testing.T) {
	schema := catalog.MustSchema(catalog.Column{Name: "id", Type: common.IntType})
	rows := []Tuple{
		FromValues(common.NewIntValue(1)),
		FromValues(common.NewIntValue(2)),
		FromValues(common.NewIntValue(3)),
	}
	b := NewBatch(schema, rows)
	assert.Equal(t, 3, b.NumRows())
	assert.Same(t, schema, b.Schema())

	s := b.Slice(1, 3)
	assert.Equal(t, 2, s.NumRows())
	assert.Equal(t, int64(2), s.Row(0).GetValue(0).IntValue())

	assert.Panics(t, func() {
		NewBatch(schema, []Tuple{FromValues(common.NewIntValue(1), common.NewIntValue(2))})
	})
}
