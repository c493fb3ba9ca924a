package storage

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fusedb/fusedb/catalog"
	"github.com/fusedb/fusedb/common"
)

// setupTestTable creates a table with columns (id int, name string) spread over
// numPartitions partitions and populates it with 'n' rows.
func setupTestTable(t *testing.T, n, numPartitions int) *MemTable {
	schema := catalog.MustSchema(
		catalog.Column{Name: "id", Type: common.IntType},
		catalog.Column{Name: "name", Type: common.StringType, Nullable: true},
	)
	table := NewMemTable("test_table", schema, numPartitions)
	for i := 0; i < n; i++ {
		require.NoError(t, table.Insert([]common.Value{
			common.NewIntValue(int64(i)),
			common.NewStringValue(fmt.Sprintf("row-%d", i)),
		}))
	}
	return table
}

func readAll(t *testing.T, table *MemTable, part catalog.Partition) []int64 {
	reader, err := table.Read(context.Background(), part)
	require.NoError(t, err)
	defer reader.Close()

	var ids []int64
	for reader.Next() {
		ids = append(ids, reader.Row()[0].IntValue())
	}
	require.NoError(t, reader.Error())
	return ids
}

func TestMemTable_ReadPlan(t *testing.T) {
	table := setupTestTable(t, 10, 4)

	parts, stats, err := table.ReadPlan(context.Background())
	require.NoError(t, err)
	require.Len(t, parts, 4)
	assert.Equal(t, uint64(10), stats.ReadRows)
	assert.Greater(t, stats.ReadBytes, uint64(80))
	assert.Equal(t, "test_table-part-0", parts[0].Name)
	// Round robin: partition 0 holds rows 0, 4, 8.
	assert.Equal(t, uint64(3), parts[0].Version)
	assert.Equal(t, uint64(2), parts[3].Version)
}

func TestMemTable_ReadPartitions(t *testing.T) {
	table := setupTestTable(t, 10, 3)
	parts, _, err := table.ReadPlan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int64{0, 3, 6, 9}, readAll(t, table, parts[0]))
	assert.Equal(t, []int64{1, 4, 7}, readAll(t, table, parts[1]))
	assert.Equal(t, []int64{2, 5, 8}, readAll(t, table, parts[2]))

	// Partitions are restartable: a second reader sees the same rows.
	assert.Equal(t, []int64{1, 4, 7}, readAll(t, table, parts[1]))
}

func TestMemTable_SnapshotIsolation(t *testing.T) {
	table := setupTestTable(t, 2, 1)
	parts, _, err := table.ReadPlan(context.Background())
	require.NoError(t, err)

	reader, err := table.Read(context.Background(), parts[0])
	require.NoError(t, err)
	defer reader.Close()

	require.NoError(t, table.Insert([]common.Value{common.NewIntValue(99), common.NewNullString()}))

	count := 0
	for reader.Next() {
		count++
	}
	assert.Equal(t, 2, count, "reader must not observe rows inserted after it was opened")
}

func TestMemTable_ReadIsPinnedToPlanVersion(t *testing.T) {
	table := setupTestTable(t, 8, 2)
	parts, stats, err := table.ReadPlan(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(8), stats.ReadRows)

	for i := 8; i < 12; i++ {
		require.NoError(t, table.Insert([]common.Value{common.NewIntValue(int64(i)), common.NewNullString()}))
	}

	// Readers opened after the inserts still serve the planned rows only.
	assert.Equal(t, []int64{0, 2, 4, 6}, readAll(t, table, parts[0]))
	assert.Equal(t, []int64{1, 3, 5, 7}, readAll(t, table, parts[1]))

	fresh, stats, err := table.ReadPlan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(12), stats.ReadRows)
	assert.Equal(t, []int64{0, 2, 4, 6, 8, 10}, readAll(t, table, fresh[0]))

	// A version the partition never reached cannot be served.
	_, err = table.Read(context.Background(), catalog.Partition{Name: parts[0].Name, Version: 99})
	assert.True(t, common.IsCode(err, common.NoSuchObjectError))
}

func TestMemTable_InsertValidation(t *testing.T) {
	table := setupTestTable(t, 0, 2)

	err := table.Insert([]common.Value{common.NewIntValue(1)})
	assert.True(t, common.IsCode(err, common.InvalidPipeline))

	err = table.Insert([]common.Value{common.NewStringValue("x"), common.NewStringValue("y")})
	assert.Error(t, err)

	err = table.Insert([]common.Value{common.NewNullInt(), common.NewStringValue("y")})
	assert.Error(t, err, "id is not nullable")

	_, stats, err := table.ReadPlan(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.ReadRows)
}

func TestMemTable_UnknownPartition(t *testing.T) {
	table := setupTestTable(t, 1, 1)
	_, err := table.Read(context.Background(), catalog.Partition{Name: "missing"})
	assert.True(t, common.IsCode(err, common.NoSuchObjectError))
}

func TestMemTable_ConcurrentReads(t *testing.T) {
	table := setupTestTable(t, 100, 8)
	parts, _, err := table.ReadPlan(context.Background())
	require.NoError(t, err)

	var mu sync.Mutex
	total := 0
	var wg sync.WaitGroup
	for _, p := range parts {
		wg.Add(1)
		go func(p catalog.Partition) {
			defer wg.Done()
			reader, err := table.Read(context.Background(), p)
			if !assert.NoError(t, err) {
				return
			}
			defer reader.Close()
			n := 0
			for reader.Next() {
				n++
			}
			mu.Lock()
			total += n
			mu.Unlock()
		}(p)
	}
	wg.Wait()
	assert.Equal(t, 100, total)
}
