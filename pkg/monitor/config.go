package monitor

import (
	"fmt"
	"time"
)

// Config defines the monitoring parameters
type Config struct {
	Interval time.Duration // Delay between samples

	// Lock tracking
	HoldMax        int    // Maximum hold counter value
	LostThreshold  int    // Counter value when the lock is considered lost
	RateResolution uint32 // Hz - grouping resolution for input rates

	// Smoothing
	SmoothingEnabled bool
	SmoothThreshold  float64
	SmoothKFast      float64
	SmoothKSlow      float64

	// Callbacks (optional)
	OnLocked func(info *LockInfo)
	OnLost   func(info *LockInfo)

	// Debug callback (optional)
	DebugLog func(format string, args ...interface{})
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		Interval:         DefaultInterval,
		HoldMax:          DefaultHoldMax,
		LostThreshold:    DefaultLostThreshold,
		RateResolution:   DefaultRateResolution,
		SmoothingEnabled: true,
		SmoothThreshold:  DefaultSmoothThreshold,
		SmoothKFast:      DefaultKFast,
		SmoothKSlow:      DefaultKSlow,
	}
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.Interval < MinInterval {
		return fmt.Errorf("%w: interval %v below %v", ErrInvalidConfig, c.Interval, MinInterval)
	}
	if c.HoldMax < 1 || c.LostThreshold < 0 || c.LostThreshold >= c.HoldMax {
		return fmt.Errorf("%w: need 0 <= lost threshold (%d) < hold max (%d)",
			ErrInvalidConfig, c.LostThreshold, c.HoldMax)
	}
	if c.SmoothingEnabled {
		for _, k := range []float64{c.SmoothKFast, c.SmoothKSlow} {
			if k <= 0 || k > 1 {
				return fmt.Errorf("%w: smoothing coefficient %v outside (0, 1]", ErrInvalidConfig, k)
			}
		}
	}
	return nil
}
