package contexts

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics stores query engine metrics.
type Metrics struct {
	// reg is the Registerer used to create this set of metrics.
	reg prometheus.Registerer

	PipelinesCompiled     prometheus.Counter
	PipelineCompileErrors *prometheus.CounterVec
	PipelineLanes         prometheus.Histogram
	SourceRowsRead        *prometheus.CounterVec
	QueriesExecuted       *prometheus.CounterVec
}

// NewMetrics creates a new set of metrics. Metrics will be registered to reg
// unless reg is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	var m Metrics
	m.reg = reg

	m.PipelinesCompiled = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fusedb",
		Name:      "pipelines_compiled_total",
		Help:      "Total number of pipelines compiled from a plan",
	})

	m.PipelineCompileErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fusedb",
		Name:      "pipeline_compile_failures_total",
		Help:      "Total number of pipeline compilations that failed, by error code",
	}, []string{"reason"})

	m.PipelineLanes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fusedb",
		Name:      "pipeline_lanes",
		Help:      "Number of parallel lanes opened at the source of a pipeline",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
	})

	m.SourceRowsRead = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fusedb",
		Name:      "source_rows_read_total",
		Help:      "Total number of rows read from table partitions",
	}, []string{"table"})

	m.QueriesExecuted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fusedb",
		Name:      "queries_executed_total",
		Help:      "Total number of statements executed, by interpreter and status",
	}, []string{"interpreter", "status"})

	if reg != nil {
		reg.MustRegister(m.PipelinesCompiled, m.PipelineCompileErrors, m.PipelineLanes, m.SourceRowsRead, m.QueriesExecuted)
	}
	return &m
}
