package strategy

import (
	"testing"
	"time"

	"github.com/evdnx/smacross/config"
	"github.com/evdnx/smacross/testutils"
	"github.com/evdnx/smacross/types"
)

var t0 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// buildConfig returns a small-window config so scenarios stay readable:
// fast 2, slow 4, warmup 4+1 bars.
func buildConfig() config.StrategyConfig {
	return config.StrategyConfig{
		Symbol:            "BTCUSDT",
		FastWindow:        2,
		SlowWindow:        4,
		EntryThreshold:    10,
		WarmupBuffer:      1,
		TargetFraction:    1.0,
		QuantityPrecision: 4,
		MinQty:            0.0001,
		StepSize:          0.0001,
	}
}

// buildCrossover wires an MACrossover to a mock executor and logger. The goti
// suite is disabled so scenarios depend only on the SMA trackers.
func buildCrossover(t *testing.T, cfg config.StrategyConfig) (*MACrossover, *testutils.MockExecutor, *testutils.MockLogger) {
	t.Helper()
	mockExec := testutils.NewMockExecutor(1_000)
	mockLog := testutils.NewMockLogger()
	s, err := NewMACrossoverWithSuite(cfg, mockExec, nil, mockLog)
	if err != nil {
		t.Fatalf("NewMACrossoverWithSuite failed: %v", err)
	}
	return s, mockExec, mockLog
}

// barsFrom turns closing prices into one-minute bars starting at start.
func barsFrom(start time.Time, prices ...float64) []types.Bar {
	out := make([]types.Bar, len(prices))
	for i, p := range prices {
		out[i] = types.Bar{
			Time:   start.Add(time.Duration(i) * time.Minute),
			Open:   p,
			High:   p + 0.5,
			Low:    p - 0.5,
			Close:  p,
			Volume: 1000,
		}
	}
	return out
}

// feedBars sends bars to the strategy and returns every signal.
func feedBars(t *testing.T, s BarProcessor, bars []types.Bar) []types.Signal {
	t.Helper()
	sigs := make([]types.Signal, 0, len(bars))
	for _, b := range bars {
		sig, err := s.ProcessBar(b)
		if err != nil {
			t.Fatalf("ProcessBar(%v) failed: %v", b.Time, err)
		}
		sigs = append(sigs, sig)
	}
	return sigs
}
