package codec

import (
	"errors"

	"github.com/herlein/gosabre/pkg/clock"
	"github.com/herlein/gosabre/pkg/format"
	"github.com/herlein/gosabre/pkg/registers"
)

// Codec errors
var (
	// ErrDeviceNotFound indicates the identification register does not
	// match an ES9038Q2M
	ErrDeviceNotFound = errors.New("es9038q2m: device not found")

	// ErrNotIdentified indicates a configuration call before a successful probe
	ErrNotIdentified = errors.New("es9038q2m: device not identified")

	// Re-exported from the packages that produce them
	ErrOutOfRange        = registers.ErrOutOfRange
	ErrNotWritable       = registers.ErrNotWritable
	ErrBus               = registers.ErrBus
	ErrInvalidClock      = clock.ErrInvalidClock
	ErrUnsupportedFormat = format.ErrUnsupportedFormat
)
