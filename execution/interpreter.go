package execution

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-kit/log/level"

	"github.com/fusedb/fusedb/catalog"
	"github.com/fusedb/fusedb/common"
	"github.com/fusedb/fusedb/contexts"
	"github.com/fusedb/fusedb/planner"
	"github.com/fusedb/fusedb/processors"
	"github.com/fusedb/fusedb/storage"
)

// Interpreter runs one statement.
type Interpreter interface {
	Name() string

	// Execute runs the statement to completion and returns its result
	// batches. Statements without a result return no batches.
	Execute(ctx context.Context) ([]*storage.Batch, error)
}

// InterpreterFactory picks the interpreter for the root of plan.
func InterpreterFactory(ctx *contexts.Context, plan planner.PlanNode) (Interpreter, error) {
	switch p := plan.(type) {
	case *planner.SelectPlan:
		return &SelectInterpreter{ctx: ctx, plan: p}, nil
	case *planner.ExplainPlan:
		return &ExplainInterpreter{ctx: ctx, plan: p}, nil
	case *planner.SettingPlan:
		return &SettingInterpreter{ctx: ctx, plan: p}, nil
	}
	return nil, common.NewError(common.UnsupportedPlanNode, "no interpreter for %s", planName(plan))
}

// Execute interprets plan and records the outcome.
func Execute(goctx context.Context, ctx *contexts.Context, plan planner.PlanNode) ([]*storage.Batch, error) {
	interpreter, err := InterpreterFactory(ctx, plan)
	if err != nil {
		return nil, err
	}
	logger := ctx.Logger()
	level.Debug(logger).Log("msg", "executing statement", "interpreter", interpreter.Name())

	batches, err := interpreter.Execute(goctx)
	status := "success"
	if err != nil {
		status = "failure"
		level.Error(logger).Log("msg", "statement failed", "interpreter", interpreter.Name(), "err", err)
	}
	ctx.Metrics().QueriesExecuted.WithLabelValues(interpreter.Name(), status).Inc()
	return batches, err
}

// SelectInterpreter compiles the query into a pipeline and drains it.
type SelectInterpreter struct {
	ctx  *contexts.Context
	plan *planner.SelectPlan
}

func (i *SelectInterpreter) Name() string {
	return "SelectInterpreter"
}

func (i *SelectInterpreter) Execute(ctx context.Context) ([]*storage.Batch, error) {
	pipeline, err := NewPipelineBuilder(i.ctx, i.plan.Input).Build()
	if err != nil {
		return nil, err
	}
	stream, err := pipeline.Execute(ctx)
	if err != nil {
		return nil, err
	}
	return processors.Drain(ctx, stream)
}

// ExplainSchema is the schema of the result of an EXPLAIN statement.
var ExplainSchema = catalog.MustSchema(catalog.Column{Name: "explain", Type: common.StringType})

// ExplainInterpreter describes a plan, or the pipeline compiled from it, as
// one row per line of text.
type ExplainInterpreter struct {
	ctx  *contexts.Context
	plan *planner.ExplainPlan
}

func (i *ExplainInterpreter) Name() string {
	return "ExplainInterpreter"
}

func (i *ExplainInterpreter) Execute(context.Context) ([]*storage.Batch, error) {
	var text string
	var err error
	switch i.plan.Type {
	case planner.ExplainSyntax:
		text, err = ExplainSyntax(i.plan.Input)
	case planner.ExplainGraph:
		text, err = ExplainGraph(i.plan.Input)
	case planner.ExplainPipeline:
		var pipeline *processors.Pipeline
		pipeline, err = NewPipelineBuilder(i.ctx, i.plan.Input).Build()
		if err == nil {
			text = pipeline.String()
		}
	default:
		err = common.NewError(common.UnsupportedPlanNode, "unknown explain type %d", i.plan.Type)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "explain %s", i.plan.Type)
	}

	lines := strings.Split(text, "\n")
	rows := make([]storage.Tuple, len(lines))
	for j, line := range lines {
		rows[j] = storage.FromValues(common.NewStringValue(line))
	}
	return []*storage.Batch{storage.NewBatch(ExplainSchema, rows)}, nil
}

// explainNodes lists the described nodes of plan from the root down. Select
// wrappers are transparent and left out.
func explainNodes(plan planner.PlanNode) ([]planner.PlanNode, error) {
	list, err := planner.PlanToList(plan)
	if err != nil {
		return nil, err
	}
	out := make([]planner.PlanNode, 0, len(list))
	for j := len(list) - 1; j >= 0; j-- {
		if _, ok := list[j].(*planner.SelectPlan); ok {
			continue
		}
		out = append(out, list[j])
	}
	return out, nil
}

// ExplainSyntax renders the plan one node per line, each input indented under
// the node that reads it.
func ExplainSyntax(plan planner.PlanNode) (string, error) {
	nodes, err := explainNodes(plan)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for depth, node := range nodes {
		if depth > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString(node.String())
	}
	return sb.String(), nil
}

// ExplainGraph renders the plan as a graphviz digraph with edges pointing from
// each input to the node that reads it.
func ExplainGraph(plan planner.PlanNode) (string, error) {
	nodes, err := explainNodes(plan)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString("digraph {")
	for j, node := range nodes {
		fmt.Fprintf(&sb, "\n    %d [label=%q]", j, node.String())
	}
	for j := len(nodes) - 1; j > 0; j-- {
		fmt.Fprintf(&sb, "\n    %d -> %d", j, j-1)
	}
	sb.WriteString("\n}")
	return sb.String(), nil
}

// SettingInterpreter applies SET assignments to the session settings.
type SettingInterpreter struct {
	ctx  *contexts.Context
	plan *planner.SettingPlan
}

func (i *SettingInterpreter) Name() string {
	return "SettingInterpreter"
}

func (i *SettingInterpreter) Execute(context.Context) ([]*storage.Batch, error) {
	for _, v := range i.plan.Vars {
		if err := i.ctx.Settings().Set(v.Variable, v.Value); err != nil {
			return nil, err
		}
		level.Info(i.ctx.Logger()).Log("msg", "setting changed", "variable", v.Variable, "value", v.Value)
	}
	return nil, nil
}
