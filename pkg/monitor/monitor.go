// Package monitor polls an ES9038Q2M for DPLL lock and the input sample
// rate, and reports lock changes with hysteresis.
package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/herlein/gosabre/pkg/codec"
)

// Source is the status interface of a DAC, implemented by *codec.Codec
type Source interface {
	Status() (codec.Status, error)
	MeasuredRate() (uint32, error)
}

var _ Source = (*codec.Codec)(nil)

// Monitor samples a Source and tracks its lock state
type Monitor struct {
	source Source
	config *Config

	mu       sync.Mutex
	running  bool
	sampling sync.Mutex // Serializes SampleOnce

	tracker  *LockTracker
	smoother *RateSmoother
}

// New creates a Monitor. A nil config selects DefaultConfig.
func New(source Source, config *Config) (*Monitor, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	m := &Monitor{
		source: source,
		config: config,
		tracker: NewLockTracker(
			config.HoldMax,
			config.LostThreshold,
			config.RateResolution,
		),
	}
	if config.SmoothingEnabled {
		m.smoother = NewRateSmootherWithParams(
			config.SmoothThreshold,
			config.SmoothKFast,
			config.SmoothKSlow,
		)
	}
	m.tracker.SetCallbacks(config.OnLocked, config.OnLost)

	return m, nil
}

func (m *Monitor) debug(format string, args ...interface{}) {
	if m.config.DebugLog != nil {
		m.config.DebugLog(format, args...)
	}
}

// SampleOnce reads the status, and the rate when locked, and feeds the
// lock tracker.
func (m *Monitor) SampleOnce() (*Sample, error) {
	m.sampling.Lock()
	defer m.sampling.Unlock()

	status, err := m.source.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to read status: %w", err)
	}

	sample := &Sample{
		Timestamp: time.Now(),
		Locked:    status.DPLLLocked,
		Automuted: status.Automuted,
	}

	if sample.Locked {
		rate, err := m.source.MeasuredRate()
		if err != nil {
			return nil, fmt.Errorf("failed to read rate: %w", err)
		}
		sample.RateHz = rate
		sample.SmoothedHz = rate
		if m.smoother != nil {
			m.smoother.Update(float64(rate))
			sample.SmoothedHz = m.smoother.ValueHz()
		}
	} else if m.smoother != nil {
		m.smoother.Reset()
	}

	m.tracker.Update(sample)

	m.debug("sample: locked=%v automute=%v rate=%d smoothed=%d",
		sample.Locked, sample.Automuted, sample.RateHz, sample.SmoothedHz)
	return sample, nil
}

// Run samples until ctx is cancelled. Samples are sent to samples when
// it is not nil, and dropped when the receiver is not ready. samples is
// closed on return.
func (m *Monitor) Run(ctx context.Context, samples chan<- *Sample) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return ErrMonitorRunning
	}
	m.running = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
		if samples != nil {
			close(samples)
		}
	}()

	ticker := time.NewTicker(m.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			sample, err := m.SampleOnce()
			if err != nil {
				// A transfer error is not fatal; try again next tick.
				m.debug("sample failed: %v", err)
				continue
			}
			if samples == nil {
				continue
			}
			select {
			case samples <- sample:
			default:
			}
		}
	}
}

// Active returns the current lock, if any
func (m *Monitor) Active() *LockInfo {
	return m.tracker.Active()
}

// History returns every lock seen
func (m *Monitor) History() []*LockInfo {
	return m.tracker.History()
}

// Reset forgets the lock history and smoothing state
func (m *Monitor) Reset() {
	m.tracker.Clear()
	if m.smoother != nil {
		m.smoother.Reset()
	}
}
