package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fusedb/fusedb/catalog"
	"github.com/fusedb/fusedb/common"
	"github.com/fusedb/fusedb/storage"
)

// Schema: [id(int), name(string), age(int), bio(string)]
// Values: [1, "alice", NULL, NULL]
func makeExprTestTuple() (storage.Tuple, *catalog.Schema) {
	schema := catalog.MustSchema(
		catalog.Column{Name: "id", Type: common.IntType},
		catalog.Column{Name: "name", Type: common.StringType},
		catalog.Column{Name: "age", Type: common.IntType, Nullable: true},
		catalog.Column{Name: "bio", Type: common.StringType, Nullable: true},
	)
	tup := storage.FromValues(
		common.NewIntValue(1),
		common.NewStringValue("alice"),
		common.NewNullInt(),
		common.NewNullString(),
	)
	return tup, schema
}

func mustColumn(t *testing.T, schema *catalog.Schema, name string) *ColumnExpr {
	t.Helper()
	c, err := NewColumnExpr(schema, name)
	require.NoError(t, err)
	return c
}

func intLit(v int64) *LiteralExpr {
	return NewLiteralExpr(common.NewIntValue(v))
}

func TestBasicEvaluation(t *testing.T) {
	tup, schema := makeExprTestTuple()

	assert.Equal(t, int64(100), intLit(100).Eval(tup).IntValue())
	assert.Equal(t, "test", NewLiteralExpr(common.NewStringValue("test")).Eval(tup).StringValue())

	name := mustColumn(t, schema, "name")
	assert.Equal(t, "alice", name.Eval(tup).StringValue())
	assert.Equal(t, 1, name.Offset())
	assert.Equal(t, common.StringType, name.OutputType())

	assert.True(t, mustColumn(t, schema, "age").Eval(tup).IsNull())

	_, err := NewColumnExpr(schema, "missing")
	assert.True(t, common.IsCode(err, common.InvalidPlanBuilder))
}

// TestComparisonLogic verifies comparisons and NULL propagation.
func TestComparisonLogic(t *testing.T) {
	tup, schema := makeExprTestTuple()

	id := mustColumn(t, schema, "id")
	age := mustColumn(t, schema, "age")
	name := mustColumn(t, schema, "name")

	tests := []struct {
		name     string
		left     Expr
		right    Expr
		op       ComparisonType
		expected int // 1=True, 0=False, -1=Null
	}{
		{"1=1", id, intLit(1), Equal, 1},
		{"1=5", id, intLit(5), Equal, 0},
		{"1!=5", id, intLit(5), NotEqual, 1},
		{"1<5", id, intLit(5), LessThan, 1},
		{"1>5", id, intLit(5), GreaterThan, 0},
		{"1>=1", id, intLit(1), GreaterThanOrEqual, 1},
		{"1<=0", id, intLit(0), LessThanOrEqual, 0},
		{"alice<bob", name, NewLiteralExpr(common.NewStringValue("bob")), LessThan, 1},
		{"NULL=1", age, intLit(1), Equal, -1},
		{"1!=NULL", id, age, NotEqual, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewComparisonExpr(tt.left, tt.right, tt.op).Eval(tup)
			switch tt.expected {
			case -1:
				assert.True(t, res.IsNull())
			case 1:
				assert.True(t, IsTrue(res))
			default:
				assert.True(t, IsFalse(res))
			}
		})
	}
}

// TestThreeValuedLogic checks AND / OR / NOT under SQL NULL semantics.
func TestThreeValuedLogic(t *testing.T) {
	tup, schema := makeExprTestTuple()
	tru := intLit(1)
	fls := intLit(0)
	null := mustColumn(t, schema, "age")

	tests := []struct {
		name     string
		expr     Expr
		expected int
	}{
		{"T AND T", NewLogicExpr(tru, tru, And), 1},
		{"T AND F", NewLogicExpr(tru, fls, And), 0},
		{"F AND NULL", NewLogicExpr(fls, null, And), 0},
		{"T AND NULL", NewLogicExpr(tru, null, And), -1},
		{"T OR NULL", NewLogicExpr(tru, null, Or), 1},
		{"F OR NULL", NewLogicExpr(fls, null, Or), -1},
		{"F OR F", NewLogicExpr(fls, fls, Or), 0},
		{"NOT T", NewNotExpr(tru), 0},
		{"NOT F", NewNotExpr(fls), 1},
		{"NOT NULL", NewNotExpr(null), -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tt.expr.Eval(tup)
			switch tt.expected {
			case -1:
				assert.True(t, res.IsNull())
			case 1:
				assert.True(t, IsTrue(res))
			default:
				assert.True(t, IsFalse(res))
			}
		})
	}
}

func TestNullCheck(t *testing.T) {
	tup, schema := makeExprTestTuple()
	bio := mustColumn(t, schema, "bio")
	id := mustColumn(t, schema, "id")

	assert.True(t, IsTrue(NewIsNullExpr(bio, false).Eval(tup)))
	assert.True(t, IsFalse(NewIsNullExpr(bio, true).Eval(tup)))
	assert.True(t, IsFalse(NewIsNullExpr(id, false).Eval(tup)))
	assert.Equal(t, "(bio IS NOT NULL)", NewIsNullExpr(bio, true).String())
}

func TestArithmetic(t *testing.T) {
	tup, schema := makeExprTestTuple()
	id := mustColumn(t, schema, "id")
	age := mustColumn(t, schema, "age")

	assert.Equal(t, int64(11), NewArithmeticExpr(id, intLit(10), Add).Eval(tup).IntValue())
	assert.Equal(t, int64(-9), NewArithmeticExpr(id, intLit(10), Sub).Eval(tup).IntValue())
	assert.Equal(t, int64(10), NewArithmeticExpr(id, intLit(10), Mult).Eval(tup).IntValue())
	assert.Equal(t, int64(3), NewArithmeticExpr(intLit(7), intLit(2), Div).Eval(tup).IntValue())
	assert.Equal(t, int64(1), NewArithmeticExpr(intLit(7), intLit(2), Mod).Eval(tup).IntValue())

	assert.True(t, NewArithmeticExpr(id, intLit(0), Div).Eval(tup).IsNull())
	assert.True(t, NewArithmeticExpr(id, intLit(0), Mod).Eval(tup).IsNull())
	assert.True(t, NewArithmeticExpr(id, age, Add).Eval(tup).IsNull())
	assert.Equal(t, "(id + 10)", NewArithmeticExpr(id, intLit(10), Add).String())
}

func TestAliasAndConjunction(t *testing.T) {
	tup, schema := makeExprTestTuple()
	id := mustColumn(t, schema, "id")

	alias := NewAliasExpr(NewArithmeticExpr(id, intLit(1), Add), "next_id")
	assert.Equal(t, "next_id", alias.Name())
	assert.Equal(t, int64(2), alias.Eval(tup).IntValue())
	assert.Equal(t, "(id + 1) AS next_id", alias.String())

	assert.True(t, IsTrue(NewConjunction(nil).Eval(tup)))

	conj := NewConjunction([]Expr{
		NewComparisonExpr(id, intLit(0), GreaterThan),
		NewComparisonExpr(id, intLit(5), LessThan),
	})
	assert.True(t, IsTrue(conj.Eval(tup)))
	assert.Equal(t, "((id > 0) AND (id < 5))", conj.String())
}
