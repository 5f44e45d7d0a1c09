package profiles

import (
	"fmt"

	"github.com/herlein/gosabre/pkg/format"
)

// DSD Profile Factories
// DSD rates are multiples of the CD rate: DSD64 is 64 x 44.1 kHz.

// DSDBaseHz is the CD sample rate DSD rates are derived from
const DSDBaseHz = 44100

// NewDSD creates a native DSD profile for a rate multiple
// multiple: 64, 128, 256 or 512
func NewDSD(multiple uint32) *Profile {
	rate := DSDBaseHz * multiple
	return &Profile{
		Name:        fmt.Sprintf("dsd%d", multiple),
		Description: fmt.Sprintf("Native DSD%d, %sHz bit clock", multiple, formatRate(rate)),
		RateHz:      rate,
		Width:       8,
		Format:      format.FormatDSDU8,
	}
}

// DSDProfiles returns the registered DSD profiles
func DSDProfiles() []*Profile {
	return []*Profile{
		NewDSD(64),
		NewDSD(128),
		NewDSD(256),
		NewDSD(512),
	}
}
