// Package clock computes the ES9038Q2M numerically controlled oscillator
// (NCO) tuning word, a 32-bit fraction of the master clock.
package clock

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrInvalidClock indicates a reference clock that cannot produce the
// requested rate: zero, or not above the sample rate.
var ErrInvalidClock = errors.New("invalid reference clock")

// NCO returns floor(rateHz * 2^32 / mclkHz).
//
// The word is a 0.32 fixed-point fraction, so the sample rate must be
// strictly below the master clock.
func NCO(rateHz, mclkHz uint32) (uint32, error) {
	if mclkHz == 0 {
		return 0, fmt.Errorf("%w: master clock is zero", ErrInvalidClock)
	}
	if rateHz >= mclkHz {
		return 0, fmt.Errorf("%w: rate %d Hz not below master clock %d Hz", ErrInvalidClock, rateHz, mclkHz)
	}
	// rateHz < 2^32 so the shifted numerator always fits in 64 bits.
	return uint32((uint64(rateHz) << 32) / uint64(mclkHz)), nil
}

// NCOBytes splits a tuning word in register order, least significant
// byte first (NCO_0 .. NCO_3).
func NCOBytes(word uint32) [4]byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], word)
	return b
}

// Word assembles a 32-bit word from four little-endian register bytes
func Word(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}

// Rate converts a 32-bit ratio word back to a frequency, rounded to the
// nearest hertz. It is the inverse of NCO and also decodes the DPLL ratio
// read back from the chip.
func Rate(word, mclkHz uint32) uint32 {
	return uint32((uint64(word)*uint64(mclkHz) + 1<<31) >> 32)
}
