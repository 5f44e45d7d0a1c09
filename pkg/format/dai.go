package format

import (
	"fmt"
	"strings"

	"github.com/herlein/gosabre/pkg/registers"
)

// DAIStandard is the serial framing convention of the digital audio interface
type DAIStandard int

const (
	DAIUnknown DAIStandard = iota
	DAII2S
	DAILeftJustified
	DAIRightJustified
	DAIDSPA
	DAIDSPB
)

var daiNames = map[DAIStandard]string{
	DAII2S:            "i2s",
	DAILeftJustified:  "left-justified",
	DAIRightJustified: "right-justified",
	DAIDSPA:           "dsp-a",
	DAIDSPB:           "dsp-b",
}

func (s DAIStandard) String() string {
	if name, ok := daiNames[s]; ok {
		return name
	}
	return fmt.Sprintf("DAIStandard(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler
func (s DAIStandard) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *DAIStandard) UnmarshalText(b []byte) error {
	v, err := ParseDAIStandard(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseDAIStandard parses "i2s", "lj"/"left-justified", "rj"/"right-justified",
// "dsp-a" or "dsp-b"
func ParseDAIStandard(s string) (DAIStandard, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "i2s":
		return DAII2S, nil
	case "lj", "left_j", "left-justified":
		return DAILeftJustified, nil
	case "rj", "right_j", "right-justified":
		return DAIRightJustified, nil
	case "dsp-a", "dsp_a":
		return DAIDSPA, nil
	case "dsp-b", "dsp_b":
		return DAIDSPB, nil
	}
	return DAIUnknown, fmt.Errorf("%w: DAI standard %q", ErrUnsupportedFormat, s)
}

// SerialMode is the serial mode field of REG_INPUT_SEL
type SerialMode uint8

// TranslateDAI returns the serial mode bits for an interface standard.
// The chip's second right-justified encoding (0x30) is never produced.
func TranslateDAI(s DAIStandard) (SerialMode, error) {
	switch s {
	case DAII2S:
		return registers.SerialModeI2S, nil
	case DAILeftJustified:
		return registers.SerialModeLJ, nil
	case DAIRightJustified:
		return registers.SerialModeRJ, nil
	default:
		return 0, fmt.Errorf("%w: DAI standard %v", ErrUnsupportedFormat, s)
	}
}

// ClockRole tells whether the codec drives the bit and frame clocks
type ClockRole int

const (
	ClockSlave ClockRole = iota
	ClockMaster
)

func (r ClockRole) String() string {
	switch r {
	case ClockSlave:
		return "slave"
	case ClockMaster:
		return "master"
	default:
		return fmt.Sprintf("ClockRole(%d)", int(r))
	}
}

// MarshalText implements encoding.TextMarshaler
func (r ClockRole) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (r *ClockRole) UnmarshalText(b []byte) error {
	v, err := ParseClockRole(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// ParseClockRole parses "master"/"provider" or "slave"/"consumer"
func ParseClockRole(s string) (ClockRole, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "master", "provider", "cbm_cfm":
		return ClockMaster, nil
	case "slave", "consumer", "cbs_cfs", "":
		return ClockSlave, nil
	}
	return ClockSlave, fmt.Errorf("%w: clock role %q", ErrUnsupportedFormat, s)
}
