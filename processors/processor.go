package processors

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/fusedb/fusedb/common"
	"github.com/fusedb/fusedb/storage"
)

// EOS is returned by Stream.Next once a stream is exhausted.
var EOS = errors.New("end of stream")

// Processor is the interface that all nodes of a pipeline must implement.
// A processor is wired to its inputs while the pipeline is compiled and runs
// once, when Execute is called.
type Processor interface {
	// Name identifies the kind of processor in pipeline descriptions.
	Name() string

	// Connect adds an upstream processor.
	Connect(input Processor) error

	Inputs() []Processor

	// Execute starts the processor and its inputs and returns the stream of
	// batches it produces.
	Execute(ctx context.Context) (Stream, error)
}

// Stream is a pull-based sequence of batches.
type Stream interface {
	// Next returns the next batch, or EOS when the stream is exhausted.
	Next(ctx context.Context) (*storage.Batch, error)

	// Close releases the stream and every stream it reads from.
	Close() error
}

// SingleInput implements the input wiring of processors that read exactly
// one upstream processor.
type SingleInput struct {
	input Processor
}

func (s *SingleInput) Connect(input Processor) error {
	if s.input != nil {
		return common.NewError(common.InvalidPipeline, "processor already has an input")
	}
	s.input = input
	return nil
}

func (s *SingleInput) Inputs() []Processor {
	if s.input == nil {
		return nil
	}
	return []Processor{s.input}
}

// ExecuteInput executes the upstream processor.
func (s *SingleInput) ExecuteInput(ctx context.Context, name string) (Stream, error) {
	if s.input == nil {
		return nil, common.NewError(common.InvalidPipeline, "%s has no input", name)
	}
	return s.input.Execute(ctx)
}

type emptyStream struct{}

// EmptyStream returns a stream without batches.
func EmptyStream() Stream {
	return emptyStream{}
}

func (emptyStream) Next(context.Context) (*storage.Batch, error) {
	return nil, EOS
}

func (emptyStream) Close() error {
	return nil
}

// Drain reads a stream to its end and closes it.
func Drain(ctx context.Context, s Stream) (batches []*storage.Batch, err error) {
	defer func() {
		err = errors.CombineErrors(err, s.Close())
	}()
	for {
		b, err := s.Next(ctx)
		if errors.Is(err, EOS) {
			return batches, nil
		}
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
}
