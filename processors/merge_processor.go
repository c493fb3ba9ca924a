package processors

import (
	"context"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/fusedb/fusedb/storage"
)

// MergeProcessor collapses many lanes into one. Each input runs in its own
// goroutine; batches are forwarded in arrival order, so no ordering holds
// across inputs.
type MergeProcessor struct {
	inputs []Processor
}

func NewMergeProcessor() *MergeProcessor {
	return &MergeProcessor{}
}

func (m *MergeProcessor) Name() string {
	return "MergeProcessor"
}

func (m *MergeProcessor) Connect(input Processor) error {
	m.inputs = append(m.inputs, input)
	return nil
}

func (m *MergeProcessor) Inputs() []Processor {
	return m.inputs
}

func (m *MergeProcessor) Execute(ctx context.Context) (Stream, error) {
	streams := make([]Stream, 0, len(m.inputs))
	for _, in := range m.inputs {
		s, err := in.Execute(ctx)
		if err != nil {
			for _, opened := range streams {
				_ = opened.Close()
			}
			return nil, err
		}
		streams = append(streams, s)
	}

	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	ms := &mergeStream{
		out:    make(chan *storage.Batch, len(streams)),
		cancel: cancel,
	}
	for _, s := range streams {
		g.Go(func() error {
			defer s.Close()
			for {
				b, err := s.Next(gctx)
				if errors.Is(err, EOS) {
					return nil
				}
				if err != nil {
					return err
				}
				select {
				case ms.out <- b:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
		})
	}
	go func() {
		ms.err = g.Wait()
		close(ms.out)
	}()
	return ms, nil
}

type mergeStream struct {
	out    chan *storage.Batch
	cancel context.CancelFunc
	// err is written before out is closed.
	err    error
	closed bool
}

func (s *mergeStream) Next(ctx context.Context) (*storage.Batch, error) {
	select {
	case b, ok := <-s.out:
		if !ok {
			if s.err != nil {
				return nil, s.err
			}
			return nil, EOS
		}
		return b, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops every input and waits for their goroutines to exit.
func (s *mergeStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.cancel()
	for range s.out {
	}
	return nil
}
