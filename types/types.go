package types

import "time"

type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

type Order struct {
	Symbol string
	Side   Side
	Qty    float64
	Price  float64 // reference fill price; 0 = market
	// meta
	Comment string
}

// Observation is a single closing price stamped with its bar time.
type Observation struct {
	Time  time.Time
	Price float64
}

// Bar is one OHLCV candle as delivered by a feed.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Observation projects the bar onto its closing price.
func (b Bar) Observation() Observation {
	return Observation{Time: b.Time, Price: b.Close}
}

type Action string

const (
	NoSignal Action = "NO_SIGNAL"
	Enter    Action = "ENTER"
	Exit     Action = "EXIT"
)

// Signal is the outcome of one crossover evaluation. TargetFraction is the
// share of portfolio value to hold after an Enter; it is zero otherwise.
type Signal struct {
	Action         Action
	TargetFraction float64
}

func Hold() Signal { return Signal{Action: NoSignal} }
