package strategy

import (
	"fmt"
	"time"

	"github.com/evdnx/goti"
	"github.com/evdnx/smacross/config"
	"github.com/evdnx/smacross/executor"
	"github.com/evdnx/smacross/indicator"
	"github.com/evdnx/smacross/logger"
	"github.com/evdnx/smacross/metrics"
	"github.com/evdnx/smacross/types"
)

// MACrossover trades one symbol on a fast/slow simple moving average cross.
// It is not safe for concurrent use.
type MACrossover struct {
	*BaseStrategy
	fast    *indicator.SMA
	slow    *indicator.SMA
	gate    *WarmupGate
	decider Decider

	lastTime  time.Time
	lastPrice float64
}

// NewMACrossover builds the trackers and a default goti suite used for the
// end-of-day report.
func NewMACrossover(cfg config.StrategyConfig,
	exec executor.Executor, log logger.Logger) (*MACrossover, error) {
	return NewMACrossoverWithSuite(cfg, exec, defaultSuiteFactory, log)
}

// NewMACrossoverWithSuite is NewMACrossover with an injectable suite factory.
// A nil factory disables the indicator suite.
func NewMACrossoverWithSuite(cfg config.StrategyConfig,
	exec executor.Executor,
	suiteFactory func() (*goti.IndicatorSuite, error),
	log logger.Logger) (*MACrossover, error) {

	base, err := NewBaseStrategy(cfg, exec, suiteFactory, log)
	if err != nil {
		return nil, err
	}
	fast, err := indicator.NewSMA(cfg.FastWindow)
	if err != nil {
		return nil, err
	}
	slow, err := indicator.NewSMA(cfg.SlowWindow)
	if err != nil {
		return nil, err
	}
	gate := NewWarmupGate(cfg.SlowWindow, cfg.WarmupBuffer)
	metrics.WarmupRemaining.Set(float64(gate.Remaining()))
	return &MACrossover{
		BaseStrategy: base,
		fast:         fast,
		slow:         slow,
		gate:         gate,
		decider:      NewDecider(cfg.EntryThreshold, cfg.TargetFraction),
	}, nil
}

// ProcessBar feeds one bar through the trackers and, once warmup is over,
// acts on the crossover signal. Out-of-order or non-finite bars are rejected
// with an indicator error and change nothing.
func (s *MACrossover) ProcessBar(bar types.Bar) (types.Signal, error) {
	obs := bar.Observation()
	var eod []logger.Field
	if !s.lastTime.IsZero() && !sameDay(obs.Time, s.lastTime) {
		eod = s.endOfDayFields()
	}

	// Both trackers apply the same checks against the same last timestamp,
	// so the slow one cannot reject what the fast one accepted.
	if _, err := s.fast.Update(obs); err != nil {
		metrics.ObservationsRejected.Inc()
		s.Log.Warn("observation_rejected",
			logger.String("symbol", s.Symbol),
			logger.Time("time", obs.Time),
			logger.Float64("price", obs.Price),
			logger.Err(err),
		)
		return types.Hold(), err
	}
	if _, err := s.slow.Update(obs); err != nil {
		return types.Hold(), fmt.Errorf("strategy: slow tracker diverged: %w", err)
	}
	// eod fields are taken before the update but only logged once the bar
	// is accepted, so a rejected bar never closes the day.
	if eod != nil {
		s.Log.Info("eod", eod...)
	}
	s.lastTime, s.lastPrice = obs.Time, obs.Price

	if s.Suite != nil {
		if err := s.Suite.Add(bar.High, bar.Low, bar.Close, bar.Volume); err != nil {
			s.Log.Debug("suite_add_error", logger.Err(err))
		}
	}
	s.publishAverages()

	if s.gate.Consume() {
		metrics.WarmupRemaining.Set(float64(s.gate.Remaining()))
		return types.Hold(), nil
	}

	fast, err := s.fast.Current()
	if err != nil {
		return types.Hold(), fmt.Errorf("strategy: fast average: %w", err)
	}
	slow, err := s.slow.Current()
	if err != nil {
		return types.Hold(), fmt.Errorf("strategy: slow average: %w", err)
	}

	holding := s.holdingValue(obs.Price)
	sig := s.decider.Evaluate(fast, slow, holding)
	metrics.Signals.WithLabelValues(string(sig.Action)).Inc()

	switch sig.Action {
	case types.Enter:
		s.Log.Info("signal_enter",
			logger.Float64("price", obs.Price),
			logger.Float64("fast", fast),
			logger.Float64("slow", slow),
			logger.Float64("holding_value", holding),
		)
		err = s.setHoldings(obs.Price, sig.TargetFraction, "smacross_enter")
	case types.Exit:
		s.Log.Info("signal_exit",
			logger.Float64("price", obs.Price),
			logger.Float64("fast", fast),
			logger.Float64("slow", slow),
			logger.Float64("holding_value", holding),
		)
		err = s.liquidate(obs.Price, "smacross_exit")
	}
	return sig, err
}

// Averages returns the current fast and slow values.
func (s *MACrossover) Averages() (fast, slow indicator.State) {
	fv, ferr := s.fast.Current()
	sv, serr := s.slow.Current()
	return indicator.State{Value: fv, Ready: ferr == nil, Count: s.fast.Len()},
		indicator.State{Value: sv, Ready: serr == nil, Count: s.slow.Len()}
}

// WarmingUp reports whether signals are still suppressed.
func (s *MACrossover) WarmingUp() bool { return !s.gate.Exhausted() }

// Flush emits the end-of-day report for the last processed day.
func (s *MACrossover) Flush() {
	if !s.lastTime.IsZero() {
		s.Log.Info("eod", s.endOfDayFields()...)
	}
}

func (s *MACrossover) publishAverages() {
	if v, err := s.fast.Current(); err == nil {
		metrics.MovingAverage.WithLabelValues("fast").Set(v)
	}
	if v, err := s.slow.Current(); err == nil {
		metrics.MovingAverage.WithLabelValues("slow").Set(v)
	}
}

func (s *MACrossover) endOfDayFields() []logger.Field {
	fields := []logger.Field{
		logger.String("symbol", s.Symbol),
		logger.String("date", s.lastTime.UTC().Format("2006-01-02")),
		logger.Float64("price", s.lastPrice),
	}
	if v, err := s.fast.Current(); err == nil {
		fields = append(fields, logger.Float64("fast_sma", v))
	}
	if v, err := s.slow.Current(); err == nil {
		fields = append(fields, logger.Float64("slow_sma", v))
	}
	if s.Suite != nil {
		if rsi, err := s.Suite.GetRSI().Calculate(); err == nil {
			fields = append(fields, logger.Float64("rsi", rsi))
		}
	}
	return fields
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
