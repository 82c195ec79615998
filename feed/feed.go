// Package feed produces time-ordered bars for the strategy runner.
package feed

import (
	"context"
	"errors"
	"io"

	"github.com/evdnx/smacross/types"
)

// ErrBadRecord is returned for rows or klines that cannot be turned into a bar.
var ErrBadRecord = errors.New("feed: bad record")

// Source yields bars in time order. Next returns io.EOF once exhausted.
type Source interface {
	Next(ctx context.Context) (types.Bar, error)
}

// SliceSource replays an in-memory slice of bars.
type SliceSource struct {
	bars []types.Bar
	idx  int
}

func NewSliceSource(bars []types.Bar) *SliceSource {
	return &SliceSource{bars: bars}
}

func (s *SliceSource) Next(ctx context.Context) (types.Bar, error) {
	if err := ctx.Err(); err != nil {
		return types.Bar{}, err
	}
	if s.idx >= len(s.bars) {
		return types.Bar{}, io.EOF
	}
	b := s.bars[s.idx]
	s.idx++
	return b, nil
}

// Len returns the total number of bars.
func (s *SliceSource) Len() int { return len(s.bars) }
