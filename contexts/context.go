package contexts

import (
	"github.com/go-kit/log"
	"github.com/google/uuid"

	"github.com/fusedb/fusedb/catalog"
)

// Context carries the per-query state shared by planning, pipeline compilation
// and execution: the catalog to resolve tables in, the session settings, a
// logger tagged with the query id, and the metrics to report to.
type Context struct {
	id       string
	catalog  *catalog.Catalog
	settings *Settings
	logger   log.Logger
	metrics  *Metrics
	database string
}

type Option func(*Context)

func WithLogger(logger log.Logger) Option {
	return func(c *Context) { c.logger = logger }
}

func WithMetrics(m *Metrics) Option {
	return func(c *Context) { c.metrics = m }
}

func WithSettings(s *Settings) Option {
	return func(c *Context) { c.settings = s }
}

func WithDatabase(db string) Option {
	return func(c *Context) { c.database = db }
}

func NewContext(cat *catalog.Catalog, opts ...Option) *Context {
	c := &Context{
		id:       uuid.NewString(),
		catalog:  cat,
		logger:   log.NewNopLogger(),
		database: catalog.DefaultDatabase,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.settings == nil {
		c.settings = NewSettings()
	}
	if c.metrics == nil {
		c.metrics = NewMetrics(nil)
	}
	c.logger = log.With(c.logger, "query_id", c.id)
	return c
}

func (c *Context) ID() string {
	return c.id
}

func (c *Context) Catalog() *catalog.Catalog {
	return c.catalog
}

func (c *Context) Settings() *Settings {
	return c.settings
}

func (c *Context) Logger() log.Logger {
	return c.logger
}

func (c *Context) Metrics() *Metrics {
	return c.metrics
}

// CurrentDatabase is the database unqualified table names resolve in.
func (c *Context) CurrentDatabase() string {
	return c.database
}

// MaxThreads is the fan-out budget for pipeline compilation.
func (c *Context) MaxThreads() uint64 {
	return c.settings.MaxThreads()
}

// GetTable resolves a table; an empty db means the current database.
func (c *Context) GetTable(db, name string) (catalog.Table, error) {
	if db == "" {
		db = c.database
	}
	return c.catalog.GetTable(db, name)
}
