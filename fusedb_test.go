package fusedb

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fusedb/fusedb/catalog"
	"github.com/fusedb/fusedb/common"
	"github.com/fusedb/fusedb/planner"
)

var usersSchema = catalog.MustSchema(
	catalog.Column{Name: "id", Type: common.IntType},
	catalog.Column{Name: "city", Type: common.StringType},
)

func TestNewFuseDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_threads: 2\nmax_block_size: 16\n"), 0o644))

	db, err := NewFuseDB(Config{SettingsPath: path, LogOutput: &bytes.Buffer{}})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), db.Settings.MaxThreads())
	assert.Equal(t, uint64(16), db.Settings.MaxBlockSize())

	_, err = NewFuseDB(Config{SettingsPath: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)

	_, err = NewFuseDB(Config{LogLevel: "chatty"})
	assert.Error(t, err)
}

func TestFuseDBQuery(t *testing.T) {
	var logs bytes.Buffer
	reg := prometheus.NewRegistry()
	db, err := NewFuseDB(Config{LogLevel: "debug", LogOutput: &logs, Registerer: reg})
	require.NoError(t, err)
	require.NoError(t, db.Settings.Set("max_threads", "2"))

	table, err := db.CreateTable(catalog.DefaultDatabase, "users", usersSchema, 5)
	require.NoError(t, err)
	for i, city := range []string{"oslo", "rome", "oslo", "lima", "oslo", "rome"} {
		require.NoError(t, table.Insert([]common.Value{common.NewIntValue(int64(i)), common.NewStringValue(city)}))
	}
	_, err = db.CreateTable(catalog.DefaultDatabase, "users", usersSchema, 1)
	assert.True(t, common.IsCode(err, common.DuplicateObjectError))

	src, err := db.ReadSource(context.Background(), catalog.DefaultDatabase, "users")
	require.NoError(t, err)
	assert.Len(t, src.Partitions, 5)
	assert.Equal(t, uint64(6), src.Statistics.ReadRows)

	city, err := planner.NewColumnExpr(usersSchema, "city")
	require.NoError(t, err)
	count, err := planner.NewAggregateExpr(planner.AggCount, nil, "n")
	require.NoError(t, err)
	plan, err := planner.NewBuilderFrom(src).
		Aggregate([]planner.Expr{city}, []*planner.AggregateExpr{count}).
		Select().
		Build()
	require.NoError(t, err)

	batches, err := db.Query(context.Background(), plan)
	require.NoError(t, err)
	counts := map[string]int64{}
	for _, b := range batches {
		for _, row := range b.Rows() {
			counts[row.GetValue(0).StringValue()] = row.GetValue(1).IntValue()
		}
	}
	assert.Equal(t, map[string]int64{"oslo": 3, "rome": 2, "lima": 1}, counts)

	assert.Equal(t, 1.0, testutil.ToFloat64(db.Metrics.PipelinesCompiled))
	assert.Equal(t, 6.0, testutil.ToFloat64(db.Metrics.SourceRowsRead.WithLabelValues("default.users")))
	assert.Contains(t, logs.String(), "table created")
	assert.Contains(t, logs.String(), "fan out read source")

	_, err = db.ReadSource(context.Background(), catalog.DefaultDatabase, "nope")
	assert.True(t, common.IsCode(err, common.NoSuchObjectError))
}
