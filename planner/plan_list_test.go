package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fusedb/fusedb/catalog"
	"github.com/fusedb/fusedb/common"
)

func testTableSchema() *catalog.Schema {
	return catalog.MustSchema(
		catalog.Column{Name: "id", Type: common.IntType},
		catalog.Column{Name: "name", Type: common.StringType},
		catalog.Column{Name: "score", Type: common.IntType, Nullable: true},
	)
}

func testReadSource(numPartitions int) *ReadSourcePlan {
	parts := make(catalog.Partitions, numPartitions)
	for i := range parts {
		parts[i] = catalog.Partition{Name: "t-part-" + string(rune('0'+i)), Version: uint64(i)}
	}
	return NewReadSourcePlan("default", "t", testTableSchema(), parts,
		catalog.Statistics{ReadRows: 100, ReadBytes: 800}, "(Read from default.t table)")
}

// buildFullPlan builds Explain(Select(Limit(Aggregate(Projection(Filter(ReadSource)))))).
func buildFullPlan(t *testing.T) PlanNode {
	t.Helper()
	src := testReadSource(4)
	schema, err := src.Schema()
	require.NoError(t, err)

	id := mustColumn(t, schema, "id")
	score := mustColumn(t, schema, "score")
	name := mustColumn(t, schema, "name")

	projected, err := NewProjectionPlan(src, []Expr{name, NewAliasExpr(NewArithmeticExpr(score, intLit(1), Add), "s1")})
	require.NoError(t, err)
	projSchema, _ := projected.Schema()
	s1 := mustColumn(t, projSchema, "s1")
	sum, err := NewAggregateExpr(AggSum, s1, "total")
	require.NoError(t, err)

	plan, err := NewBuilderFrom(src).
		Filter(NewComparisonExpr(id, intLit(10), GreaterThan)).
		Project(name, NewAliasExpr(NewArithmeticExpr(score, intLit(1), Add), "s1")).
		Aggregate([]Expr{mustColumn(t, projSchema, "name")}, []*AggregateExpr{sum}).
		Limit(5).
		Select().
		Explain(ExplainSyntax).
		Build()
	require.NoError(t, err)
	return plan
}

func planNames(list []PlanNode) []string {
	names := make([]string, len(list))
	for i, p := range list {
		names[i] = p.Name()
	}
	return names
}

func TestLinearize(t *testing.T) {
	plan := buildFullPlan(t)

	list, err := PlanToList(plan)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"ReadSourcePlan", "FilterPlan", "ProjectionPlan", "AggregatePlan",
		"LimitPlan", "SelectPlan", "ExplainPlan",
	}, planNames(list))

	sub, err := SubplanToList(plan)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"ReadSourcePlan", "FilterPlan", "ProjectionPlan", "AggregatePlan", "LimitPlan",
	}, planNames(sub))
}

func TestLinearizeTerminals(t *testing.T) {
	list, err := PlanToList(NewSelectPlan(NewEmptyPlan()))
	require.NoError(t, err)
	assert.Equal(t, []string{"SelectPlan"}, planNames(list))

	list, err = PlanToList(NewSettingPlan(VarValue{Variable: "max_threads", Value: "4"}))
	require.NoError(t, err)
	assert.Empty(t, list)

	scan := NewScanPlan("default", "t", testTableSchema())
	list, err = SubplanToList(NewLimitPlan(scan, 1))
	require.NoError(t, err)
	assert.Equal(t, []string{"ScanPlan", "LimitPlan"}, planNames(list))
}

func TestLinearizeJoinFollowsLhs(t *testing.T) {
	lhs := testReadSource(2)
	rhs := NewReadSourcePlan("default", "u", catalog.MustSchema(catalog.Column{Name: "uid", Type: common.IntType}), nil, catalog.Statistics{}, "")
	join, err := NewJoinPlan(lhs, NewLimitPlan(rhs, 3), JoinCross, nil)
	require.NoError(t, err)

	list, err := PlanToList(NewLimitPlan(join, 1))
	require.NoError(t, err)
	assert.Equal(t, []string{"ReadSourcePlan", "JoinPlan", "LimitPlan"}, planNames(list))
	assert.Same(t, lhs, list[0])

	sub, err := SubplanToList(NewLimitPlan(join, 1))
	require.NoError(t, err)
	assert.Equal(t, []string{"ReadSourcePlan", "LimitPlan"}, planNames(sub))
}

func TestLinearizeDepth(t *testing.T) {
	var plan PlanNode = testReadSource(1)
	for i := 0; i < MaxPlanDepth; i++ {
		plan = NewLimitPlan(plan, i)
	}
	list, err := SubplanToList(plan)
	require.NoError(t, err)
	assert.Len(t, list, MaxPlanDepth+1)

	list, err = SubplanToList(NewLimitPlan(plan, 0))
	assert.True(t, common.IsCode(err, common.PlanTooDeep))
	assert.Contains(t, err.Error(), "128")
	assert.Nil(t, list)
}

func TestLinearizeNilInput(t *testing.T) {
	list, err := SubplanToList(NewLimitPlan(nil, 1))
	assert.True(t, common.IsCode(err, common.UnsupportedPlanNode))
	assert.Nil(t, list)

	_, err = PlanToList(nil)
	assert.True(t, common.IsCode(err, common.UnsupportedPlanNode))

	_, err = Rebuild([]PlanNode{testReadSource(1), nil})
	assert.True(t, common.IsCode(err, common.UnsupportedPlanNode))
}

func TestRebuildRoundTrip(t *testing.T) {
	plan := buildFullPlan(t)

	list, err := PlanToList(plan)
	require.NoError(t, err)
	rebuilt, err := Rebuild(list)
	require.NoError(t, err)

	assert.Equal(t, plan, rebuilt)
	assert.NotSame(t, plan, rebuilt)

	again, err := PlanToList(rebuilt)
	require.NoError(t, err)
	assert.Equal(t, planNames(list), planNames(again))
}

func TestRebuildSkipsNoOps(t *testing.T) {
	src := testReadSource(1)
	rebuilt, err := Rebuild([]PlanNode{NewEmptyPlan(), src, NewSettingPlan(), NewLimitPlan(src, 2)})
	require.NoError(t, err)
	assert.Equal(t, NewLimitPlan(src, 2), rebuilt)

	empty, err := Rebuild(nil)
	require.NoError(t, err)
	assert.Equal(t, NewEmptyPlan(), empty)
}

func TestRebuildPropagatesErrors(t *testing.T) {
	src := testReadSource(1)
	_, err := Rebuild([]PlanNode{src, NewLimitPlan(src, -1)})
	assert.True(t, common.IsCode(err, common.InvalidPlanBuilder))
}
