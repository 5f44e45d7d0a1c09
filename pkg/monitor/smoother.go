package monitor

import "math"

// RateSmoother is an exponential moving average that follows a new input
// rate quickly but filters the DPLL jitter around a steady one.
type RateSmoother struct {
	value     float64 // Current smoothed value
	threshold float64 // Hz - above this difference, use fast adaptation
	kFast     float64 // Adaptation coefficient for large changes (0-1)
	kSlow     float64 // Adaptation coefficient for small changes (0-1)
}

// NewRateSmoother creates a smoother with default parameters
func NewRateSmoother() *RateSmoother {
	return NewRateSmootherWithParams(DefaultSmoothThreshold, DefaultKFast, DefaultKSlow)
}

// NewRateSmootherWithParams creates a smoother with custom parameters
func NewRateSmootherWithParams(threshold, kFast, kSlow float64) *RateSmoother {
	return &RateSmoother{
		threshold: threshold,
		kFast:     kFast,
		kSlow:     kSlow,
	}
}

// Update feeds a measured rate and returns the smoothed one
func (s *RateSmoother) Update(newValue float64) float64 {
	// First value is returned as-is
	if s.value == 0 {
		s.value = newValue
		return newValue
	}

	k := s.kSlow
	if math.Abs(newValue-s.value) > s.threshold {
		k = s.kFast
	}
	s.value += (newValue - s.value) * k

	return s.value
}

// Value returns the current smoothed value
func (s *RateSmoother) Value() float64 {
	return s.value
}

// ValueHz returns the current smoothed value rounded to Hz
func (s *RateSmoother) ValueHz() uint32 {
	return uint32(math.Round(s.value))
}

// Reset clears the smoother state
func (s *RateSmoother) Reset() {
	s.value = 0
}
