package transforms

import (
	"context"

	"github.com/fusedb/fusedb/common"
	"github.com/fusedb/fusedb/processors"
	"github.com/fusedb/fusedb/storage"
)

// LimitTransform passes at most n rows of its input.
type LimitTransform struct {
	processors.SingleInput
	n int
}

func NewLimitTransform(n int) (*LimitTransform, error) {
	if n < 0 {
		return nil, common.NewError(common.ProcessorCreation, "limit must not be negative, got %d", n)
	}
	return &LimitTransform{n: n}, nil
}

func (t *LimitTransform) Name() string {
	return "LimitTransform"
}

// N returns the row cap.
func (t *LimitTransform) N() int {
	return t.n
}

func (t *LimitTransform) Execute(ctx context.Context) (processors.Stream, error) {
	input, err := t.ExecuteInput(ctx, t.Name())
	if err != nil {
		return nil, err
	}
	return &limitStream{input: input, remaining: t.n}, nil
}

type limitStream struct {
	input     processors.Stream
	remaining int
}

func (s *limitStream) Next(ctx context.Context) (*storage.Batch, error) {
	if s.remaining <= 0 {
		return nil, processors.EOS
	}
	b, err := s.input.Next(ctx)
	if err != nil {
		return nil, err
	}
	if b.NumRows() > s.remaining {
		b = b.Slice(0, s.remaining)
	}
	s.remaining -= b.NumRows()
	return b, nil
}

func (s *limitStream) Close() error {
	return s.input.Close()
}
