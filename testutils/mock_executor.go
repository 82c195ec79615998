package testutils

import (
	"errors"
	"sync"

	"github.com/evdnx/smacross/types"
)

// ErrRejected is returned by MockExecutor when RejectNext is armed.
var ErrRejected = errors.New("mock executor: order rejected")

// MockExecutor implements the Executor interface in-memory.
type MockExecutor struct {
	mu         sync.RWMutex
	cash       float64
	positions  map[string]float64 // qty (signed)
	avgPrice   map[string]float64
	orders     []types.Order // captured for assertions
	rejectNext bool
}

// NewMockExecutor creates a fresh executor with the supplied starting cash.
func NewMockExecutor(startCash float64) *MockExecutor {
	return &MockExecutor{
		cash:      startCash,
		positions: make(map[string]float64),
		avgPrice:  make(map[string]float64),
	}
}

// Submit records the order and updates cash/position like PaperExecutor,
// without any cash or position checks.
func (m *MockExecutor) Submit(o types.Order) error {
	if o.Qty == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rejectNext {
		m.rejectNext = false
		return ErrRejected
	}

	cost := o.Price * o.Qty
	if o.Side == types.Buy {
		held := m.positions[o.Symbol]
		m.cash -= cost
		m.positions[o.Symbol] = held + o.Qty
		m.avgPrice[o.Symbol] = (m.avgPrice[o.Symbol]*held + cost) / (held + o.Qty)
	} else {
		m.cash += cost
		m.positions[o.Symbol] -= o.Qty
		if m.positions[o.Symbol] == 0 {
			m.avgPrice[o.Symbol] = 0
		}
	}
	m.orders = append(m.orders, o)
	return nil
}

// RejectNext makes the next Submit fail with ErrRejected.
func (m *MockExecutor) RejectNext() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejectNext = true
}

// SetPosition overrides the held quantity for a symbol.
func (m *MockExecutor) SetPosition(symbol string, qty, avg float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions[symbol] = qty
	m.avgPrice[symbol] = avg
}

// Cash returns the current cash balance.
func (m *MockExecutor) Cash() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cash
}

// Position returns qty & avg price for a symbol.
func (m *MockExecutor) Position(symbol string) (float64, float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.positions[symbol], m.avgPrice[symbol]
}

// Orders returns a copy of all submitted orders (useful for assertions).
func (m *MockExecutor) Orders() []types.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.Order, len(m.orders))
	copy(out, m.orders)
	return out
}
