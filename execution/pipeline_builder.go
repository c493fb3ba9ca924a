package execution

import (
	"github.com/go-kit/log/level"

	"github.com/fusedb/fusedb/common"
	"github.com/fusedb/fusedb/contexts"
	"github.com/fusedb/fusedb/planner"
	"github.com/fusedb/fusedb/processors"
	"github.com/fusedb/fusedb/transforms"
)

// PipelineBuilder compiles the operator chain of a plan into a pipeline.
//
// Lanes are opened once, at the read source: its partitions are split into
// chunks and every chunk gets its own lane. Filter and projection extend each
// lane. Limit and aggregate run in two phases: a local operator on every lane,
// then a merge into one lane and a global operator on top. Whatever the last
// operator, the compiled pipeline ends in exactly one lane.
type PipelineBuilder struct {
	ctx  *contexts.Context
	plan planner.PlanNode
}

func NewPipelineBuilder(ctx *contexts.Context, plan planner.PlanNode) *PipelineBuilder {
	return &PipelineBuilder{ctx: ctx, plan: plan}
}

// Build compiles the plan. On failure no pipeline is returned.
func (b *PipelineBuilder) Build() (*processors.Pipeline, error) {
	pipeline, err := b.build()
	metrics := b.ctx.Metrics()
	if err != nil {
		reason := "unknown"
		if code, ok := common.CodeOf(err); ok {
			reason = code.String()
		}
		metrics.PipelineCompileErrors.WithLabelValues(reason).Inc()
		level.Warn(b.ctx.Logger()).Log("msg", "pipeline compilation failed", "plan", planName(b.plan), "err", err)
		return nil, err
	}
	metrics.PipelinesCompiled.Inc()
	return pipeline, nil
}

func (b *PipelineBuilder) build() (*processors.Pipeline, error) {
	if err := rejectJoins(b.plan); err != nil {
		return nil, err
	}
	list, err := planner.SubplanToList(b.plan)
	if err != nil {
		return nil, err
	}

	pipeline := processors.NewPipeline()
	for _, node := range list {
		switch plan := node.(type) {
		case *planner.ReadSourcePlan:
			err = b.visitReadSource(pipeline, plan)
		case *planner.FilterPlan:
			err = pipeline.AddSimpleTransform(factory(func() (*transforms.FilterTransform, error) {
				return transforms.NewFilterTransform(plan.Predicate)
			}))
		case *planner.ProjectionPlan:
			err = b.visitProjection(pipeline, plan)
		case *planner.LimitPlan:
			err = b.visitLimit(pipeline, plan)
		case *planner.AggregatePlan:
			err = b.visitAggregate(pipeline, plan)
		default:
			err = unsupported(node)
		}
		if err != nil {
			return nil, err
		}
	}

	if err := pipeline.MergeProcessor(); err != nil {
		return nil, err
	}
	return pipeline, nil
}

// rejectJoins fails on any join on the input chain. The chain walk only
// follows a join's left input, so compiling past a join would silently drop
// its right side.
func rejectJoins(plan planner.PlanNode) error {
	list, err := planner.PlanToList(plan)
	if err != nil {
		return err
	}
	for _, node := range list {
		if join, ok := node.(*planner.JoinPlan); ok {
			return unsupported(join)
		}
	}
	return nil
}

func planName(plan planner.PlanNode) string {
	if plan == nil {
		return "<nil>"
	}
	return plan.Name()
}

func unsupported(node planner.PlanNode) error {
	return common.NewError(common.UnsupportedPlanNode, "Build pipeline from the plan node unsupported: %s", node.Name())
}

// factory adapts a typed processor constructor to AddSimpleTransform and
// tags constructor failures as ProcessorCreation errors.
func factory[T processors.Processor](fn func() (T, error)) func() (processors.Processor, error) {
	return func() (processors.Processor, error) {
		proc, err := fn()
		if err != nil {
			if _, ok := common.CodeOf(err); !ok {
				err = common.NewError(common.ProcessorCreation, "%v", err)
			}
			return nil, err
		}
		return proc, nil
	}
}

// ChunkSize returns how many partitions each source lane reads given a fan-out
// budget of maxThreads. With no budget, or a budget covering every partition,
// each partition gets its own lane.
func ChunkSize(numPartitions int, maxThreads uint64) int {
	if maxThreads == 0 || maxThreads >= uint64(numPartitions) {
		return 1
	}
	return common.CeilDiv(numPartitions, int(maxThreads))
}

func (b *PipelineBuilder) visitReadSource(pipeline *processors.Pipeline, plan *planner.ReadSourcePlan) error {
	maxThreads := b.ctx.MaxThreads()
	chunkSize := ChunkSize(len(plan.Partitions), maxThreads)
	chunks := plan.Partitions.Chunks(chunkSize)
	for _, chunk := range chunks {
		if err := pipeline.AddSource(transforms.NewSourceTransform(b.ctx, plan.Database, plan.Table, chunk)); err != nil {
			return err
		}
	}

	level.Debug(b.ctx.Logger()).Log(
		"msg", "fan out read source",
		"table", plan.Database+"."+plan.Table,
		"partitions", len(plan.Partitions),
		"max_threads", maxThreads,
		"chunk_size", chunkSize,
		"lanes", len(chunks),
	)
	b.ctx.Metrics().PipelineLanes.Observe(float64(len(chunks)))
	return nil
}

func (b *PipelineBuilder) visitProjection(pipeline *processors.Pipeline, plan *planner.ProjectionPlan) error {
	schema, err := plan.Schema()
	if err != nil {
		return err
	}
	return pipeline.AddSimpleTransform(factory(func() (*transforms.ProjectionTransform, error) {
		return transforms.NewProjectionTransform(schema, plan.Exprs)
	}))
}

func (b *PipelineBuilder) visitLimit(pipeline *processors.Pipeline, plan *planner.LimitPlan) error {
	limit := factory(func() (*transforms.LimitTransform, error) {
		return transforms.NewLimitTransform(plan.N)
	})
	if err := pipeline.AddSimpleTransform(limit); err != nil {
		return err
	}
	if pipeline.PipeNum() <= 1 {
		return nil
	}
	if err := pipeline.MergeProcessor(); err != nil {
		return err
	}
	return pipeline.AddSimpleTransform(limit)
}

func (b *PipelineBuilder) visitAggregate(pipeline *processors.Pipeline, plan *planner.AggregatePlan) error {
	partialSchema, err := plan.PartialSchema()
	if err != nil {
		return err
	}
	finalSchema, err := plan.Schema()
	if err != nil {
		return err
	}

	if err := pipeline.AddSimpleTransform(factory(func() (*transforms.AggregatorPartialTransform, error) {
		return transforms.NewAggregatorPartialTransform(partialSchema, plan.GroupBy, plan.Aggregates)
	})); err != nil {
		return err
	}
	if err := pipeline.MergeProcessor(); err != nil {
		return err
	}
	return pipeline.AddSimpleTransform(factory(func() (*transforms.AggregatorFinalTransform, error) {
		return transforms.NewAggregatorFinalTransform(finalSchema, plan.GroupBy, plan.Aggregates)
	}))
}
