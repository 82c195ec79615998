package strategy

import (
	"github.com/evdnx/goti"
	"github.com/evdnx/smacross/config"
	"github.com/evdnx/smacross/executor"
	"github.com/evdnx/smacross/logger"
	"github.com/evdnx/smacross/metrics"
	"github.com/evdnx/smacross/risk"
	"github.com/evdnx/smacross/types"
)

// BaseStrategy bundles the common dependencies and order helpers.
type BaseStrategy struct {
	Exec   executor.Executor
	Log    logger.Logger
	Cfg    config.StrategyConfig
	Suite  *goti.IndicatorSuite
	Symbol string
}

// NewBaseStrategy validates the config and creates the indicator suite
// (using the supplied factory). A nil factory leaves Suite nil.
func NewBaseStrategy(cfg config.StrategyConfig,
	exec executor.Executor,
	suiteFactory func() (*goti.IndicatorSuite, error),
	log logger.Logger) (*BaseStrategy, error) {

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}
	var suite *goti.IndicatorSuite
	if suiteFactory != nil {
		var err error
		if suite, err = suiteFactory(); err != nil {
			return nil, err
		}
	}
	return &BaseStrategy{
		Exec:   exec,
		Log:    log,
		Cfg:    cfg,
		Suite:  suite,
		Symbol: cfg.Symbol,
	}, nil
}

func defaultSuiteFactory() (*goti.IndicatorSuite, error) {
	return goti.NewIndicatorSuiteWithConfig(goti.DefaultConfig())
}

// submitOrder is a thin wrapper that records metrics and logs.
func (b *BaseStrategy) submitOrder(o types.Order, ctx string) error {
	err := b.Exec.Submit(o)
	if err != nil {
		b.Log.Error("order_submit_failed",
			logger.String("symbol", o.Symbol),
			logger.String("side", string(o.Side)),
			logger.Float64("qty", o.Qty),
			logger.Err(err),
		)
		metrics.OrdersRejected.WithLabelValues(ctx).Inc()
		return err
	}
	b.Log.Info("order_submitted",
		logger.String("symbol", o.Symbol),
		logger.String("side", string(o.Side)),
		logger.Float64("qty", o.Qty),
		logger.Float64("price", o.Price),
		logger.String("ctx", ctx),
	)
	metrics.OrdersSubmitted.WithLabelValues(ctx).Inc()
	return nil
}

// Account reports the executor's cash and the quantity held in the symbol.
func (b *BaseStrategy) Account() (cash, qty float64) {
	qty, _ = b.Exec.Position(b.Symbol)
	return b.Exec.Cash(), qty
}

// holdingValue is the held quantity valued at price.
func (b *BaseStrategy) holdingValue(price float64) float64 {
	qty, _ := b.Exec.Position(b.Symbol)
	return qty * price
}

// setHoldings buys up to fraction of portfolio value in the symbol.
func (b *BaseStrategy) setHoldings(price, fraction float64, ctx string) error {
	held, _ := b.Exec.Position(b.Symbol)
	qty := risk.BuyDelta(b.Exec.Cash(), held, fraction, price, b.Cfg)
	if qty <= 0 {
		b.Log.Warn("set_holdings_skipped",
			logger.String("symbol", b.Symbol),
			logger.Float64("cash", b.Exec.Cash()),
			logger.Float64("held", held),
			logger.Float64("price", price),
		)
		return nil
	}
	return b.submitOrder(types.Order{
		Symbol:  b.Symbol,
		Side:    types.Buy,
		Qty:     qty,
		Price:   price,
		Comment: ctx,
	}, ctx)
}

// liquidate sells the whole position at price.
func (b *BaseStrategy) liquidate(price float64, ctx string) error {
	qty, _ := b.Exec.Position(b.Symbol)
	if qty <= 0 {
		return nil
	}
	return b.submitOrder(types.Order{
		Symbol:  b.Symbol,
		Side:    types.Sell,
		Qty:     qty,
		Price:   price,
		Comment: ctx,
	}, ctx)
}
