package risk

import (
	"github.com/evdnx/smacross/config"
	"github.com/shopspring/decimal"
)

// TargetQty returns the quantity that puts fraction of portfolioValue into
// the instrument at price. The result is floored to cfg.StepSize, rounded
// down to cfg.QuantityPrecision and zeroed when below cfg.MinQty.
func TargetQty(portfolioValue, fraction, price float64, cfg config.StrategyConfig) float64 {
	if price <= 0 || portfolioValue <= 0 || fraction <= 0 {
		return 0
	}
	raw := decimal.NewFromFloat(portfolioValue).
		Mul(decimal.NewFromFloat(fraction)).
		Div(decimal.NewFromFloat(price))
	return roundQty(raw, cfg)
}

// BuyDelta is how much must be bought to move from held to the target
// allocation. It never exceeds what cash can pay for at price.
func BuyDelta(cash, held, fraction, price float64, cfg config.StrategyConfig) float64 {
	if price <= 0 {
		return 0
	}
	value := cash + held*price
	target := TargetQty(value, fraction, price, cfg)
	delta := decimal.NewFromFloat(target).Sub(decimal.NewFromFloat(held))
	affordable := decimal.NewFromFloat(cash).Div(decimal.NewFromFloat(price))
	if delta.GreaterThan(affordable) {
		delta = affordable
	}
	if !delta.IsPositive() {
		return 0
	}
	return roundQty(delta, cfg)
}

func roundQty(q decimal.Decimal, cfg config.StrategyConfig) float64 {
	if cfg.StepSize > 0 {
		step := decimal.NewFromFloat(cfg.StepSize)
		q = q.Div(step).Floor().Mul(step)
	}
	q = q.Truncate(int32(cfg.QuantityPrecision))
	if q.LessThan(decimal.NewFromFloat(cfg.MinQty)) {
		return 0
	}
	f, _ := q.Float64()
	return f
}
