package fusedb

import (
	"context"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fusedb/fusedb/catalog"
	"github.com/fusedb/fusedb/contexts"
	"github.com/fusedb/fusedb/execution"
	"github.com/fusedb/fusedb/planner"
	"github.com/fusedb/fusedb/storage"
)

// Config configures a FuseDB instance.
type Config struct {
	// SettingsPath is an optional YAML file with the initial settings.
	SettingsPath string
	// LogLevel is one of debug, info, warn, error. Defaults to info.
	LogLevel string
	// LogOutput defaults to stderr.
	LogOutput io.Writer
	// Registerer receives the engine metrics. Nil leaves them unregistered.
	Registerer prometheus.Registerer
}

// FuseDB is the top-level container for the query engine.
type FuseDB struct {
	Catalog  *catalog.Catalog
	Settings *contexts.Settings
	Metrics  *contexts.Metrics
	logger   log.Logger
}

func NewFuseDB(cfg Config) (*FuseDB, error) {
	settings := contexts.NewSettings()
	if cfg.SettingsPath != "" {
		var err error
		if settings, err = contexts.LoadSettings(cfg.SettingsPath); err != nil {
			return nil, err
		}
	}

	out := cfg.LogOutput
	if out == nil {
		out = os.Stderr
	}
	filter, err := levelOption(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := level.NewFilter(log.NewLogfmtLogger(log.NewSyncWriter(out)), filter)
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	return &FuseDB{
		Catalog:  catalog.NewCatalog(),
		Settings: settings,
		Metrics:  contexts.NewMetrics(cfg.Registerer),
		logger:   logger,
	}, nil
}

func levelOption(name string) (level.Option, error) {
	switch name {
	case "debug":
		return level.AllowDebug(), nil
	case "", "info":
		return level.AllowInfo(), nil
	case "warn":
		return level.AllowWarn(), nil
	case "error":
		return level.AllowError(), nil
	}
	return nil, errors.Newf("unknown log level %q", name)
}

// NewContext opens a query context over the shared catalog and settings.
func (db *FuseDB) NewContext() *contexts.Context {
	return contexts.NewContext(db.Catalog,
		contexts.WithSettings(db.Settings),
		contexts.WithMetrics(db.Metrics),
		contexts.WithLogger(db.logger),
	)
}

// CreateTable registers an in-memory table split into numPartitions partitions.
func (db *FuseDB) CreateTable(database, name string, schema *catalog.Schema, numPartitions int) (*storage.MemTable, error) {
	table := storage.NewMemTable(name, schema, numPartitions)
	if err := db.Catalog.AddTable(database, table); err != nil {
		return nil, err
	}
	level.Info(db.logger).Log("msg", "table created", "table", database+"."+name, "partitions", numPartitions)
	return table, nil
}

// ReadSource resolves a table into a read plan over its current partitions.
func (db *FuseDB) ReadSource(ctx context.Context, database, name string) (*planner.ReadSourcePlan, error) {
	table, err := db.Catalog.GetTable(database, name)
	if err != nil {
		return nil, err
	}
	return planner.NewReadSourcePlanFromTable(ctx, database, table)
}

// Query executes a statement plan in a fresh query context.
func (db *FuseDB) Query(ctx context.Context, plan planner.PlanNode) ([]*storage.Batch, error) {
	return execution.Execute(ctx, db.NewContext(), plan)
}
