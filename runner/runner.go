// Package runner drives a strategy from a feed until the feed ends or the
// context is cancelled.
package runner

import (
	"context"
	"errors"
	"io"

	"github.com/evdnx/smacross/feed"
	"github.com/evdnx/smacross/indicator"
	"github.com/evdnx/smacross/logger"
	"github.com/evdnx/smacross/strategy"
	"github.com/evdnx/smacross/types"
)

// Strategy is what Run drives: a bar processor that also exposes its warmup
// state, its account and an end-of-feed hook.
type Strategy interface {
	strategy.BarProcessor
	WarmingUp() bool
	Flush()
	Account() (cash, qty float64)
}

// Summary counts what happened during a run. Enters and Exits count signals,
// not fills: an Enter sized to zero quantity is still counted as an Enter.
type Summary struct {
	Bars     int
	Rejected int // out-of-order or non-finite bars
	Warmup   int // bars processed while signals were suppressed
	Enters   int
	Exits    int
	Failed   int // signals whose order the executor refused

	Cash     float64
	Position float64
	Last     types.Bar
}

// Run pulls bars from src and hands each one to strat. Bad bars and refused
// orders are logged and counted; feed errors and cancellation stop the run.
func Run(ctx context.Context, src feed.Source, strat Strategy, log logger.Logger) (Summary, error) {
	var sum Summary
	finish := func(err error) (Summary, error) {
		sum.Cash, sum.Position = strat.Account()
		return sum, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return finish(err)
		}
		bar, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			strat.Flush()
			return finish(nil)
		}
		if err != nil {
			return finish(err)
		}

		warming := strat.WarmingUp()
		sig, err := strat.ProcessBar(bar)
		switch {
		case errors.Is(err, indicator.ErrOutOfOrder), errors.Is(err, indicator.ErrInvalidPrice):
			sum.Rejected++
			continue
		case err != nil && sig.Action == types.NoSignal:
			return finish(err)
		case err != nil:
			sum.Failed++
			log.Warn("signal_not_executed",
				logger.String("action", string(sig.Action)),
				logger.Err(err),
			)
		}

		sum.Bars++
		sum.Last = bar
		if warming {
			sum.Warmup++
		}
		switch sig.Action {
		case types.Enter:
			sum.Enters++
		case types.Exit:
			sum.Exits++
		}
	}
}
