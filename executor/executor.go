package executor

import (
	"errors"
	"fmt"

	"github.com/evdnx/smacross/logger"
	"github.com/evdnx/smacross/metrics"
	"github.com/evdnx/smacross/types"
	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientCash     = errors.New("executor: insufficient cash")
	ErrInsufficientPosition = errors.New("executor: sell exceeds position")
	ErrInvalidOrder         = errors.New("executor: invalid order")
)

// Executor turns orders into fills and owns the account state. The strategy
// only reads it.
type Executor interface {
	Submit(o types.Order) error
	Cash() float64
	Position(symbol string) (qty float64, avgPrice float64)
}

// PaperExecutor is a spot cash account with perfect fills and no fees.
// Shorting is not allowed.
type PaperExecutor struct {
	cash      float64
	positions map[string]float64
	avgPrice  map[string]float64
	log       logger.Logger
}

func NewPaperExecutor(startCash float64, log logger.Logger) *PaperExecutor {
	if log == nil {
		log = logger.Nop()
	}
	metrics.CashGauge.Set(startCash)
	return &PaperExecutor{
		cash:      startCash,
		positions: make(map[string]float64),
		avgPrice:  make(map[string]float64),
		log:       log,
	}
}

func (p *PaperExecutor) Submit(o types.Order) error {
	if o.Qty == 0 {
		return nil
	}
	if o.Qty < 0 || o.Price <= 0 {
		return fmt.Errorf("%w: qty=%v price=%v", ErrInvalidOrder, o.Qty, o.Price)
	}
	// market fill at the reference price carried by the order; cash moves in
	// decimal so an order sized to exactly the available cash is affordable
	price, qty := decimal.NewFromFloat(o.Price), decimal.NewFromFloat(o.Qty)
	cost := price.Mul(qty)
	cash := decimal.NewFromFloat(p.cash)
	switch o.Side {
	case types.Buy:
		if cost.GreaterThan(cash) {
			return fmt.Errorf("%w: need %s, have %s", ErrInsufficientCash, cost, cash)
		}
		held := decimal.NewFromFloat(p.positions[o.Symbol])
		avg := decimal.NewFromFloat(p.avgPrice[o.Symbol])
		total := held.Add(qty)
		p.cash, _ = cash.Sub(cost).Float64()
		p.positions[o.Symbol], _ = total.Float64()
		p.avgPrice[o.Symbol], _ = avg.Mul(held).Add(cost).Div(total).Float64()
	case types.Sell:
		held := decimal.NewFromFloat(p.positions[o.Symbol])
		if qty.GreaterThan(held) {
			return fmt.Errorf("%w: sell %s, hold %s", ErrInsufficientPosition, qty, held)
		}
		p.cash, _ = cash.Add(cost).Float64()
		if qty.Equal(held) {
			delete(p.positions, o.Symbol)
			delete(p.avgPrice, o.Symbol)
		} else {
			p.positions[o.Symbol], _ = held.Sub(qty).Float64()
		}
	default:
		return fmt.Errorf("%w: side %q", ErrInvalidOrder, o.Side)
	}
	metrics.CashGauge.Set(p.cash)
	p.log.Info("paper_fill",
		logger.String("symbol", o.Symbol),
		logger.String("side", string(o.Side)),
		logger.Float64("qty", o.Qty),
		logger.Float64("price", o.Price),
		logger.Float64("cash", p.cash),
	)
	return nil
}

func (p *PaperExecutor) Cash() float64 { return p.cash }

func (p *PaperExecutor) Position(sym string) (float64, float64) {
	return p.positions[sym], p.avgPrice[sym]
}
