package monitor

import "time"

// Default polling parameters
const (
	// DefaultInterval is the delay between status samples
	DefaultInterval = 250 * time.Millisecond

	// MinInterval keeps polling from saturating the bus
	MinInterval = 10 * time.Millisecond
)

// Default lock tracking parameters
const (
	// DefaultHoldMax is the maximum hold counter value
	DefaultHoldMax = 8

	// DefaultLostThreshold is when the lock is considered lost
	DefaultLostThreshold = 6

	// DefaultRateResolution is the grouping resolution for input rates (Hz)
	DefaultRateResolution uint32 = 100
)

// Default rate smoothing parameters
const (
	// DefaultSmoothThreshold is the threshold for fast/slow adaptation (Hz)
	DefaultSmoothThreshold float64 = 1000

	// DefaultKFast is the adaptation coefficient for large changes; a new
	// input rate is adopted at once
	DefaultKFast float64 = 1.0

	// DefaultKSlow is the adaptation coefficient for small changes
	DefaultKSlow float64 = 0.1
)
