package indicator

import "errors"

var (
	// ErrNotReady is returned while the window holds fewer than N values.
	ErrNotReady = errors.New("indicator: window not full")

	// ErrOutOfOrder is returned for an observation not strictly after the previous one.
	ErrOutOfOrder = errors.New("indicator: observation out of order")

	// ErrInvalidWindow is returned for window lengths below one.
	ErrInvalidWindow = errors.New("indicator: window must be at least 1")

	// ErrInvalidPrice is returned for NaN or infinite prices.
	ErrInvalidPrice = errors.New("indicator: price must be finite")
)
