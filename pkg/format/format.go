// Package format maps audio stream and interface parameters onto the
// ES9038Q2M serial interface bits.
package format

import (
	"errors"
	"fmt"
	"strings"

	"github.com/herlein/gosabre/pkg/registers"
)

// ErrUnsupportedFormat indicates a sample format or interface standard the
// chip cannot be configured for
var ErrUnsupportedFormat = errors.New("unsupported format")

// SampleFormat is the on-wire encoding of audio samples
type SampleFormat int

const (
	FormatUnknown SampleFormat = iota
	FormatS8
	FormatS16LE
	FormatS20_3LE
	FormatS24LE
	FormatS32LE
	FormatDSDU8
	FormatDSDU16LE
)

var sampleFormatNames = map[SampleFormat]string{
	FormatS8:       "S8",
	FormatS16LE:    "S16_LE",
	FormatS20_3LE:  "S20_3LE",
	FormatS24LE:    "S24_LE",
	FormatS32LE:    "S32_LE",
	FormatDSDU8:    "DSD_U8",
	FormatDSDU16LE: "DSD_U16_LE",
}

// String returns the conventional PCM format name
func (f SampleFormat) String() string {
	if name, ok := sampleFormatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("SampleFormat(%d)", int(f))
}

// Width returns the sample container width in bits
func (f SampleFormat) Width() uint32 {
	switch f {
	case FormatS8, FormatDSDU8:
		return 8
	case FormatS16LE, FormatDSDU16LE:
		return 16
	case FormatS20_3LE, FormatS24LE:
		return 24
	case FormatS32LE:
		return 32
	default:
		return 0
	}
}

// IsDSD reports whether the format is a 1-bit density stream
func (f SampleFormat) IsDSD() bool {
	return f == FormatDSDU8 || f == FormatDSDU16LE
}

// MarshalText implements encoding.TextMarshaler
func (f SampleFormat) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (f *SampleFormat) UnmarshalText(b []byte) error {
	v, err := ParseSampleFormat(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// ParseSampleFormat parses a format name such as "S24_LE" or "dsd_u8"
func ParseSampleFormat(s string) (SampleFormat, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for f, n := range sampleFormatNames {
		if n == name {
			return f, nil
		}
	}
	switch name {
	case "S16", "16":
		return FormatS16LE, nil
	case "S24", "24":
		return FormatS24LE, nil
	case "S32", "32":
		return FormatS32LE, nil
	case "DSD":
		return FormatDSDU8, nil
	}
	return FormatUnknown, fmt.Errorf("%w: sample format %q", ErrUnsupportedFormat, s)
}

// SerialLength is the serial length field of REG_INPUT_SEL
type SerialLength uint8

// Translate returns the serial length bits for a PCM format, or dsd=true for
// a density stream, which has no serial length.
func Translate(f SampleFormat) (length SerialLength, dsd bool, err error) {
	switch f {
	case FormatS16LE:
		return registers.SerialLen16Bit, false, nil
	case FormatS24LE:
		return registers.SerialLen24Bit, false, nil
	case FormatS32LE:
		// 0x80 selects the same 32-bit mode; only 0xC0 is used.
		return registers.SerialLen32Bit, false, nil
	case FormatDSDU8, FormatDSDU16LE:
		return 0, true, nil
	default:
		return 0, false, fmt.Errorf("%w: sample format %v", ErrUnsupportedFormat, f)
	}
}
