package strategy

// WarmupGate counts down the observations during which no signal may be
// emitted. Once it reaches zero it stays there.
type WarmupGate struct {
	remaining int
}

func NewWarmupGate(slowWindow, buffer int) *WarmupGate {
	n := slowWindow + buffer
	if n < 0 {
		n = 0
	}
	return &WarmupGate{remaining: n}
}

// Consume accounts for one observation and reports whether it fell inside
// the warmup period.
func (g *WarmupGate) Consume() bool {
	if g.remaining == 0 {
		return false
	}
	g.remaining--
	return true
}

func (g *WarmupGate) Remaining() int { return g.remaining }

func (g *WarmupGate) Exhausted() bool { return g.remaining == 0 }
