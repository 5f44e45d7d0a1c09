package monitor

import "errors"

// Monitor errors
var (
	// ErrMonitorRunning indicates the monitor is already running
	ErrMonitorRunning = errors.New("monitor is already running")

	// ErrInvalidConfig indicates invalid monitor configuration
	ErrInvalidConfig = errors.New("invalid monitor configuration")
)
