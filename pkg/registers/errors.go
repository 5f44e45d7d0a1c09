package registers

import (
	"errors"
	"fmt"
)

// Register map errors
var (
	// ErrOutOfRange indicates an address above MaxRegister
	ErrOutOfRange = errors.New("register address out of range")

	// ErrNotWritable indicates a write to the read-only status block
	ErrNotWritable = errors.New("register is not writable")

	// ErrBus indicates the register bus reported a transfer failure
	ErrBus = errors.New("register bus error")
)

// BusError records a failed register transfer
type BusError struct {
	Op   string // "read" or "write"
	Addr uint8
	Err  error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("%s 0x%02X: %s: %v", e.Op, e.Addr, ErrBus, e.Err)
}

// Unwrap returns the transport error
func (e *BusError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrBus) hold for every BusError
func (e *BusError) Is(target error) bool { return target == ErrBus }
