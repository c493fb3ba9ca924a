package processors

import (
	"context"
	"fmt"
	"strings"

	"github.com/fusedb/fusedb/common"
)

// Stage is one step of a pipeline: one processor per lane, or a single
// MergeProcessor collapsing the lanes of the previous stage.
type Stage struct {
	Processors []Processor
	Merge      bool
}

// Pipeline is a graph of processors organized in stages. The first stage holds
// the sources, one per lane; every later stage either extends each lane with a
// new processor or merges all lanes into one. The number of lanes is the width
// of the last stage.
type Pipeline struct {
	stages []*Stage
}

func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// PipeNum returns the current number of lanes.
func (p *Pipeline) PipeNum() int {
	if len(p.stages) == 0 {
		return 0
	}
	return len(p.stages[len(p.stages)-1].Processors)
}

func (p *Pipeline) Stages() []*Stage {
	return p.stages
}

// AddSource opens a new lane reading from src. Sources can only be added
// before any transform.
func (p *Pipeline) AddSource(src Processor) error {
	if len(p.stages) == 0 {
		p.stages = append(p.stages, &Stage{})
	}
	if len(p.stages) > 1 {
		return common.NewError(common.InvalidPipeline, "cannot add source %s after the source stage", src.Name())
	}
	p.stages[0].Processors = append(p.stages[0].Processors, src)
	return nil
}

// AddSimpleTransform appends a new processor made by factory to the end of
// every lane. With no lanes it does nothing.
func (p *Pipeline) AddSimpleTransform(factory func() (Processor, error)) error {
	n := p.PipeNum()
	if n == 0 {
		return nil
	}
	tails := p.stages[len(p.stages)-1].Processors
	stage := &Stage{Processors: make([]Processor, 0, n)}
	for _, tail := range tails {
		proc, err := factory()
		if err != nil {
			return err
		}
		if err := proc.Connect(tail); err != nil {
			return err
		}
		stage.Processors = append(stage.Processors, proc)
	}
	p.stages = append(p.stages, stage)
	return nil
}

// MergeProcessor collapses all lanes into one. It does nothing when there is
// at most one lane.
func (p *Pipeline) MergeProcessor() error {
	if p.PipeNum() <= 1 {
		return nil
	}
	merge := NewMergeProcessor()
	for _, tail := range p.stages[len(p.stages)-1].Processors {
		if err := merge.Connect(tail); err != nil {
			return err
		}
	}
	p.stages = append(p.stages, &Stage{Processors: []Processor{merge}, Merge: true})
	return nil
}

// LastProcessor returns the tail of a single-lane pipeline.
func (p *Pipeline) LastProcessor() (Processor, error) {
	if n := p.PipeNum(); n != 1 {
		return nil, common.NewError(common.InvalidPipeline, "pipeline has %d lanes, expected 1", n)
	}
	return p.stages[len(p.stages)-1].Processors[0], nil
}

// Execute runs the pipeline. It must have been merged down to at most one
// lane; a pipeline without lanes produces no batches.
func (p *Pipeline) Execute(ctx context.Context) (Stream, error) {
	if p.PipeNum() == 0 {
		return EmptyStream(), nil
	}
	last, err := p.LastProcessor()
	if err != nil {
		return nil, err
	}
	return last.Execute(ctx)
}

// String lists the stages from the output back to the sources, e.g.
//
//	AggregatorFinalTransform × 1 processor
//	  Merge (AggregatorPartialTransform × 4 processors) to (MergeProcessor × 1)
//	    AggregatorPartialTransform × 4 processors
//	      SourceTransform × 4 processors
func (p *Pipeline) String() string {
	var sb strings.Builder
	depth := 0
	for i := len(p.stages) - 1; i >= 0; i-- {
		stage := p.stages[i]
		if len(stage.Processors) == 0 {
			continue
		}
		sb.WriteString(strings.Repeat("  ", depth))
		if stage.Merge && i > 0 {
			prev := p.stages[i-1].Processors
			fmt.Fprintf(&sb, "Merge (%s × %s) to (%s × 1)\n", prev[0].Name(), countProcessors(len(prev)), stage.Processors[0].Name())
		} else {
			fmt.Fprintf(&sb, "%s × %s\n", stage.Processors[0].Name(), countProcessors(len(stage.Processors)))
		}
		depth++
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func countProcessors(n int) string {
	if n == 1 {
		return "1 processor"
	}
	return fmt.Sprintf("%d processors", n)
}
