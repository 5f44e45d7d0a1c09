package monitor

import "sync"

// LockTracker follows DPLL lock with hysteresis, so a few unlocked samples
// during a rate switch do not report a lost input.
type LockTracker struct {
	mu          sync.RWMutex
	holdCounter int    // Counts down while unlocked
	holdMax     int    // Maximum hold count
	lostAt      int    // Counter value when the "lost" callback fires
	resolution  uint32 // Rate resolution for grouping (Hz)

	active  *LockInfo
	history []*LockInfo

	onLocked func(*LockInfo)
	onLost   func(*LockInfo)
}

// NewLockTracker creates a tracker with the given parameters
func NewLockTracker(holdMax, lostAt int, resolution uint32) *LockTracker {
	return &LockTracker{
		holdMax:    holdMax,
		lostAt:     lostAt,
		resolution: resolution,
	}
}

// SetCallbacks sets the lock callbacks. They run on the goroutine calling
// Update, after the tracker state was updated.
func (t *LockTracker) SetCallbacks(onLocked, onLost func(*LockInfo)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onLocked = onLocked
	t.onLost = onLost
}

// Update processes a sample
func (t *LockTracker) Update(s *Sample) {
	var notify func(*LockInfo)
	var info LockInfo

	t.mu.Lock()
	if s.Locked {
		t.holdCounter = t.holdMax

		nominal := t.round(s.SmoothedHz)
		if t.active == nil || t.active.NominalHz != nominal {
			// New lock, or the input moved to another rate
			t.active = &LockInfo{
				NominalHz: nominal,
				FirstSeen: s.Timestamp,
			}
			t.history = append(t.history, t.active)
			notify = t.onLocked
		}
		t.active.RateHz = s.SmoothedHz
		t.active.LastSeen = s.Timestamp
		t.active.SampleCount++
		info = *t.active
	} else if t.holdCounter > 0 {
		t.holdCounter--

		if t.holdCounter == t.lostAt && t.active != nil {
			notify = t.onLost
			info = *t.active
		}
		if t.holdCounter == 0 {
			t.active = nil
		}
	}
	t.mu.Unlock()

	if notify != nil {
		notify(&info)
	}
}

// round rounds a rate to the nearest multiple of the resolution
func (t *LockTracker) round(rate uint32) uint32 {
	if t.resolution == 0 {
		return rate
	}
	return (rate + t.resolution/2) / t.resolution * t.resolution
}

// Active returns the current lock, if any
func (t *LockTracker) Active() *LockInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.active == nil {
		return nil
	}
	info := *t.active
	return &info
}

// History returns every lock seen, oldest first
func (t *LockTracker) History() []*LockInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]*LockInfo, 0, len(t.history))
	for _, info := range t.history {
		infoCopy := *info
		out = append(out, &infoCopy)
	}
	return out
}

// IsLocked returns true while a lock is held, including the hold period
func (t *LockTracker) IsLocked() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active != nil && t.holdCounter > 0
}

// Clear forgets all locks
func (t *LockTracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.active = nil
	t.history = nil
	t.holdCounter = 0
}
