// Package strategy holds the moving-average crossover rule: a pure decision
// function, the warmup gate that suppresses it, and MACrossover, which ties
// both to two SMA trackers and an executor.
package strategy

import "github.com/evdnx/smacross/types"

// BarProcessor is anything that consumes bars one at a time.
type BarProcessor interface {
	ProcessBar(bar types.Bar) (types.Signal, error)
}
