package profiles

import (
	"fmt"

	"github.com/herlein/gosabre/pkg/format"
)

// PCM Profile Factories
// These create profiles for I2S-family PCM streams.

// NewPCM creates a PCM profile at the given rate and sample width
// width: 16, 24 or 32 bits
func NewPCM(name string, rateHz, width uint32) *Profile {
	f := format.FormatS32LE
	switch width {
	case 16:
		f = format.FormatS16LE
	case 24:
		f = format.FormatS24LE
	}
	return &Profile{
		Name:        name,
		Description: fmt.Sprintf("PCM at %sHz, %d bits", formatRate(rateHz), width),
		RateHz:      rateHz,
		Width:       width,
		Format:      f,
	}
}

// NewCD creates the Red Book CD audio profile
func NewCD() *Profile {
	p := NewPCM("cd", 44100, 16)
	p.Description = "CD audio, 44.1kHz 16 bits"
	return p
}

// NewDAT creates the 48 kHz DAT / broadcast profile
func NewDAT() *Profile {
	p := NewPCM("dat", 48000, 16)
	p.Description = "DAT and broadcast audio, 48kHz 16 bits"
	return p
}

// PCMProfiles returns the registered PCM profiles
func PCMProfiles() []*Profile {
	return []*Profile{
		NewCD(),
		NewDAT(),
		NewPCM("hires-96", 96000, 24),
		NewPCM("hires-192", 192000, 24),
		NewPCM("pcm-384", 384000, 32),
	}
}
