package strategy

import "github.com/evdnx/smacross/types"

// Decide applies the crossover rule.
//
// Enter when the fast average is above the slow one and the holding value is
// at or below threshold; Exit when it is below and the holding value exceeds
// threshold. An exact tie is NoSignal.
func Decide(fast, slow, holdingValue, threshold float64) types.Action {
	switch {
	case fast > slow && holdingValue <= threshold:
		return types.Enter
	case fast < slow && holdingValue > threshold:
		return types.Exit
	default:
		return types.NoSignal
	}
}

// Decider is Decide with its constants bound.
type Decider struct {
	entryThreshold float64
	targetFraction float64
}

func NewDecider(entryThreshold, targetFraction float64) Decider {
	return Decider{entryThreshold: entryThreshold, targetFraction: targetFraction}
}

// Evaluate returns the signal for one observation. Callers must only invoke
// it once both averages are ready and warmup is over.
func (d Decider) Evaluate(fast, slow, holdingValue float64) types.Signal {
	switch Decide(fast, slow, holdingValue, d.entryThreshold) {
	case types.Enter:
		return types.Signal{Action: types.Enter, TargetFraction: d.targetFraction}
	case types.Exit:
		return types.Signal{Action: types.Exit}
	default:
		return types.Hold()
	}
}

func (d Decider) EntryThreshold() float64 { return d.entryThreshold }
