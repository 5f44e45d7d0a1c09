package monitor

import "time"

// Sample is one poll of the DAC status
type Sample struct {
	Timestamp  time.Time
	Locked     bool   // DPLL locked to the input
	Automuted  bool   // Automute engaged
	RateHz     uint32 // Rate measured by the DPLL
	SmoothedHz uint32 // RateHz after smoothing, 0 while unlocked
}

// LockInfo describes one period of DPLL lock to a given input rate
type LockInfo struct {
	RateHz      uint32    // Hz - smoothed rate when last seen
	NominalHz   uint32    // Hz - rate rounded to the tracker resolution
	FirstSeen   time.Time // When the lock was acquired
	LastSeen    time.Time // When the lock was last observed
	SampleCount uint32    // Number of locked samples
}

// Duration returns how long the lock has been observed
func (l *LockInfo) Duration() time.Duration {
	return l.LastSeen.Sub(l.FirstSeen)
}
