package indicator

import (
	"fmt"
	"math"
	"time"

	"github.com/evdnx/smacross/types"
	"gonum.org/v1/gonum/floats"
)

// resyncEvery is how many evictions pass before the running sum is rebuilt
// from the window contents.
const resyncEvery = 1024

// State is the tracker snapshot returned by Update.
type State struct {
	Value float64 // mean of the window; meaningful only when Ready
	Ready bool
	Count int // observations currently in the window
}

// SMA is a simple moving average over the last Window observations.
// It is not safe for concurrent use.
type SMA struct {
	window int
	values []float64 // ring, head is the next write slot
	head   int
	count  int
	sum    float64

	last      time.Time
	evictions int
}

// NewSMA allocates a tracker for the given window length.
func NewSMA(window int) (*SMA, error) {
	if window < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWindow, window)
	}
	return &SMA{
		window: window,
		values: make([]float64, window),
	}, nil
}

// Update appends obs, evicting the oldest value once the window is full.
// A rejected observation leaves the tracker unchanged.
func (s *SMA) Update(obs types.Observation) (State, error) {
	if math.IsNaN(obs.Price) || math.IsInf(obs.Price, 0) {
		return s.state(), fmt.Errorf("%w: %v", ErrInvalidPrice, obs.Price)
	}
	if s.count > 0 && !obs.Time.After(s.last) {
		return s.state(), fmt.Errorf("%w: %s not after %s",
			ErrOutOfOrder, obs.Time.Format(time.RFC3339Nano), s.last.Format(time.RFC3339Nano))
	}

	if s.count == s.window {
		s.sum += obs.Price - s.values[s.head]
		s.evictions++
	} else {
		s.sum += obs.Price
		s.count++
	}
	s.values[s.head] = obs.Price
	s.head = (s.head + 1) % s.window
	s.last = obs.Time

	if s.evictions >= resyncEvery {
		s.sum = floats.Sum(s.values)
		s.evictions = 0
	}
	return s.state(), nil
}

// Current returns the mean of the window or ErrNotReady.
func (s *SMA) Current() (float64, error) {
	if s.count < s.window {
		return 0, ErrNotReady
	}
	return s.sum / float64(s.window), nil
}

// Ready reports whether the window is full.
func (s *SMA) Ready() bool { return s.count == s.window }

// Window returns the configured length.
func (s *SMA) Window() int { return s.window }

// Len returns the number of observations held.
func (s *SMA) Len() int { return s.count }

// Values returns the window contents, oldest first.
func (s *SMA) Values() []float64 {
	out := make([]float64, 0, s.count)
	if s.count == s.window {
		out = append(out, s.values[s.head:]...)
		out = append(out, s.values[:s.head]...)
		return out
	}
	return append(out, s.values[:s.count]...)
}

func (s *SMA) state() State {
	v, err := s.Current()
	return State{Value: v, Ready: err == nil, Count: s.count}
}
