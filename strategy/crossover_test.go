package strategy

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/evdnx/smacross/config"
	"github.com/evdnx/smacross/indicator"
	"github.com/evdnx/smacross/testutils"
	"github.com/evdnx/smacross/types"
)

func TestMACrossover_InvalidConfig(t *testing.T) {
	cfg := buildConfig()
	cfg.FastWindow = cfg.SlowWindow
	_, err := NewMACrossover(cfg, testutils.NewMockExecutor(1_000), testutils.NewMockLogger())
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestMACrossover_WarmupSuppressesSignals(t *testing.T) {
	cfg := buildConfig()
	cfg.WarmupBuffer = 10 // 4 + 10 bars of silence
	s, exec, _ := buildCrossover(t, cfg)

	prices := make([]float64, 15)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	sigs := feedBars(t, s, barsFrom(t0, prices...))

	for i := 0; i < cfg.WarmupBars(); i++ {
		if sigs[i].Action != types.NoSignal {
			t.Fatalf("bar %d inside warmup emitted %s", i+1, sigs[i].Action)
		}
	}
	if sigs[14].Action != types.Enter {
		t.Fatalf("first bar after warmup should enter, got %s", sigs[14].Action)
	}
	if s.WarmingUp() {
		t.Fatal("warmup should be over")
	}
	if len(exec.Orders()) != 1 {
		t.Fatalf("expected exactly one BUY order, got %d", len(exec.Orders()))
	}
}

func TestMACrossover_EnterThenExit(t *testing.T) {
	s, exec, log := buildCrossover(t, buildConfig())

	up := []float64{100, 101, 102, 103, 104, 105, 106, 107, 108, 109}
	down := []float64{108, 107, 106, 105}
	sigs := feedBars(t, s, barsFrom(t0, append(up, down...)...))

	want := map[int]types.Action{5: types.Enter, 11: types.Exit}
	for i, sig := range sigs {
		exp, ok := want[i]
		if !ok {
			exp = types.NoSignal
		}
		if sig.Action != exp {
			t.Fatalf("bar %d: expected %s, got %s", i, exp, sig.Action)
		}
	}

	orders := exec.Orders()
	if len(orders) != 2 {
		t.Fatalf("expected BUY then SELL, got %+v", orders)
	}
	buy, sell := orders[0], orders[1]
	if buy.Side != types.Buy || buy.Price != 105 {
		t.Fatalf("unexpected entry order %+v", buy)
	}
	if buy.Qty <= 0 || buy.Qty*buy.Price > 1_000 {
		t.Fatalf("entry must spend at most the available cash, got qty %v", buy.Qty)
	}
	if sell.Side != types.Sell || sell.Price != 107 || sell.Qty != buy.Qty {
		t.Fatalf("exit must liquidate the full position, got %+v", sell)
	}
	if qty, _ := exec.Position("BTCUSDT"); qty != 0 {
		t.Fatalf("expected flat after exit, got %v", qty)
	}
	if log.Count("signal_enter") != 1 || log.Count("signal_exit") != 1 {
		t.Fatalf("expected one enter and one exit log")
	}
}

func TestMACrossover_TieIsNoSignal(t *testing.T) {
	s, exec, _ := buildCrossover(t, buildConfig())

	sigs := feedBars(t, s, barsFrom(t0, 100, 100, 100, 100, 100, 100, 100, 100))
	for i, sig := range sigs {
		if sig.Action != types.NoSignal {
			t.Fatalf("bar %d: flat prices must not signal, got %s", i, sig.Action)
		}
	}
	if len(exec.Orders()) != 0 {
		t.Fatalf("expected no orders, got %+v", exec.Orders())
	}
}

func TestMACrossover_HoldingAtThreshold(t *testing.T) {
	// Holding worth exactly the threshold may still be topped up.
	s, exec, _ := buildCrossover(t, buildConfig())
	exec.SetPosition("BTCUSDT", 0.125, 70) // 0.125 * 80 == 10
	sigs := feedBars(t, s, barsFrom(t0, 75, 76, 77, 78, 79, 80))
	if sigs[5].Action != types.Enter {
		t.Fatalf("holding at threshold should allow entry, got %s", sigs[5].Action)
	}

	// ... but does not count as a position to exit.
	s, exec, _ = buildCrossover(t, buildConfig())
	exec.SetPosition("BTCUSDT", 0.125, 90)
	sigs = feedBars(t, s, barsFrom(t0, 85, 84, 83, 82, 81, 80))
	if sigs[5].Action != types.NoSignal {
		t.Fatalf("holding at threshold must not exit, got %s", sigs[5].Action)
	}
	if len(exec.Orders()) != 0 {
		t.Fatalf("expected no orders, got %+v", exec.Orders())
	}
}

func TestMACrossover_RejectsOutOfOrderBar(t *testing.T) {
	s, _, log := buildCrossover(t, buildConfig())
	bars := barsFrom(t0, 100, 101)
	feedBars(t, s, bars)

	_, err := s.ProcessBar(bars[0])
	if !errors.Is(err, indicator.ErrOutOfOrder) {
		t.Fatalf("expected ErrOutOfOrder, got %v", err)
	}
	fast, slow := s.Averages()
	if fast.Count != 2 || slow.Count != 2 {
		t.Fatalf("rejected bar must not be stored: fast=%d slow=%d", fast.Count, slow.Count)
	}
	if s.gate.Remaining() != 3 {
		t.Fatalf("rejected bar must not consume warmup, remaining=%d", s.gate.Remaining())
	}
	if log.Count("observation_rejected") != 1 {
		t.Fatal("expected a rejection log entry")
	}
}

func TestMACrossover_RejectedOrderIsSurfaced(t *testing.T) {
	s, exec, log := buildCrossover(t, buildConfig())
	bars := barsFrom(t0, 100, 101, 102, 103, 104, 105)
	feedBars(t, s, bars[:5])

	exec.RejectNext()
	sig, err := s.ProcessBar(bars[5])
	if sig.Action != types.Enter {
		t.Fatalf("expected Enter, got %s", sig.Action)
	}
	if !errors.Is(err, testutils.ErrRejected) {
		t.Fatalf("expected rejection error, got %v", err)
	}
	if log.Count("order_submit_failed") != 1 {
		t.Fatal("expected order_submit_failed log")
	}
}

func TestMACrossover_EndOfDayReport(t *testing.T) {
	s, _, log := buildCrossover(t, buildConfig())
	start := time.Date(2025, 1, 1, 23, 56, 0, 0, time.UTC)
	feedBars(t, s, barsFrom(start, 100, 101, 102, 103, 104))

	entries := log.Entries("eod")
	if len(entries) != 1 {
		t.Fatalf("expected one eod report, got %d", len(entries))
	}
	e := entries[0]
	if f, ok := e.Field("date"); !ok || f.String != "2025-01-01" {
		t.Fatalf("unexpected eod date: %+v", e.Fields)
	}
	if _, ok := e.Field("slow_sma"); !ok {
		t.Fatalf("slow average was ready at the end of the day: %+v", e.Fields)
	}

	s.Flush()
	if n := log.Count("eod"); n != 2 {
		t.Fatalf("Flush should report the open day, got %d reports", n)
	}
}

func TestMACrossover_RejectedBarDoesNotCloseDay(t *testing.T) {
	s, _, log := buildCrossover(t, buildConfig())
	bars := barsFrom(time.Date(2025, 1, 1, 23, 59, 0, 0, time.UTC), 100, math.NaN(), 101)
	feedBars(t, s, bars[:1])

	if _, err := s.ProcessBar(bars[1]); !errors.Is(err, indicator.ErrInvalidPrice) {
		t.Fatalf("expected ErrInvalidPrice, got %v", err)
	}
	if n := log.Count("eod"); n != 0 {
		t.Fatalf("rejected bar must not report the day, got %d reports", n)
	}

	feedBars(t, s, bars[2:])
	entries := log.Entries("eod")
	if len(entries) != 1 {
		t.Fatalf("expected one eod report, got %d", len(entries))
	}
	if f, ok := entries[0].Field("date"); !ok || f.String != "2025-01-01" {
		t.Fatalf("unexpected eod date: %+v", entries[0].Fields)
	}
	if f, ok := entries[0].Field("price"); !ok || math.Float64frombits(uint64(f.Integer)) != 100 {
		t.Fatalf("eod must carry the last price of the day: %+v", entries[0].Fields)
	}
}

func TestMACrossover_WithIndicatorSuite(t *testing.T) {
	cfg := buildConfig()
	s, err := NewMACrossover(cfg, testutils.NewMockExecutor(1_000), testutils.NewMockLogger())
	if err != nil {
		t.Fatalf("NewMACrossover failed: %v", err)
	}
	if s.Suite == nil {
		t.Fatal("default constructor should build an indicator suite")
	}
	sigs := feedBars(t, s, barsFrom(t0, 100, 101, 102, 103, 104, 105))
	if sigs[5].Action != types.Enter {
		t.Fatalf("suite must not change the decision, got %s", sigs[5].Action)
	}
}
