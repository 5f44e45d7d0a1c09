package codec

import (
	"fmt"
	"strings"

	"github.com/herlein/gosabre/pkg/registers"
)

// FilterShape selects the DAC interpolation filter (REG_FILTER_SHAPE[7:5])
type FilterShape uint8

const (
	FilterFastLinear       FilterShape = 0
	FilterSlowLinear       FilterShape = 1
	FilterFastMinimum      FilterShape = 2
	FilterSlowMinimum      FilterShape = 3
	FilterApodizingFast    FilterShape = 4 // Power-on default
	filterReserved         FilterShape = 5
	FilterCorrectedMinimum FilterShape = 6
	FilterBrickWall        FilterShape = 7
)

var filterNames = map[FilterShape]string{
	FilterFastLinear:       "fast-linear",
	FilterSlowLinear:       "slow-linear",
	FilterFastMinimum:      "fast-minimum",
	FilterSlowMinimum:      "slow-minimum",
	FilterApodizingFast:    "apodizing-fast",
	FilterCorrectedMinimum: "corrected-minimum",
	FilterBrickWall:        "brick-wall",
}

func (f FilterShape) String() string {
	if name, ok := filterNames[f]; ok {
		return name
	}
	return fmt.Sprintf("FilterShape(%d)", uint8(f))
}

// ParseFilterShape parses a filter name such as "brick-wall"
func ParseFilterShape(s string) (FilterShape, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for f, n := range filterNames {
		if n == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: filter shape %q", ErrUnsupportedFormat, s)
}

// FilterShapes returns the selectable filters in register order
func FilterShapes() []FilterShape {
	return []FilterShape{
		FilterFastLinear, FilterSlowLinear, FilterFastMinimum, FilterSlowMinimum,
		FilterApodizingFast, FilterCorrectedMinimum, FilterBrickWall,
	}
}

// SetVolume sets the per-channel attenuation in 0.5 dB steps:
// 0x00 is 0 dB, 0xFF is -127.5 dB.
func (c *Codec) SetVolume(ch1, ch2 uint8) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.regs.Write(registers.RegVolumeCh1, ch1); err != nil {
		return fmt.Errorf("es9038q2m: set volume ch1: %w", err)
	}
	if err := c.regs.Write(registers.RegVolumeCh2, ch2); err != nil {
		return fmt.Errorf("es9038q2m: set volume ch2: %w", err)
	}
	return nil
}

// Volume returns the per-channel attenuation
func (c *Codec) Volume() (ch1, ch2 uint8, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ch1, err = c.regs.Read(registers.RegVolumeCh1); err != nil {
		return 0, 0, fmt.Errorf("es9038q2m: read volume ch1: %w", err)
	}
	if ch2, err = c.regs.Read(registers.RegVolumeCh2); err != nil {
		return 0, 0, fmt.Errorf("es9038q2m: read volume ch2: %w", err)
	}
	return ch1, ch2, nil
}

// AttenuationDB converts a volume register value to decibels
func AttenuationDB(v uint8) float64 {
	return -float64(v) * registers.VolumeStepCdB / 100
}

// SetMute mutes or unmutes both DAC channels
func (c *Codec) SetMute(mute bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var v uint8
	if mute {
		v = registers.MuteBit
	}
	if err := c.regs.WriteMasked(registers.RegFilterShape, registers.MuteBit, v); err != nil {
		return fmt.Errorf("es9038q2m: set mute: %w", err)
	}
	c.sess.Muted = mute
	return nil
}

// SetFilter selects the interpolation filter
func (c *Codec) SetFilter(f FilterShape) error {
	if _, ok := filterNames[f]; !ok {
		return fmt.Errorf("es9038q2m: %w: filter shape %d", ErrUnsupportedFormat, uint8(f))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	v := uint8(f) << registers.FilterShapeShift
	if err := c.regs.WriteMasked(registers.RegFilterShape, registers.FilterShapeMask, v); err != nil {
		return fmt.Errorf("es9038q2m: set filter: %w", err)
	}
	return nil
}

// Filter returns the selected interpolation filter
func (c *Codec) Filter() (FilterShape, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, err := c.regs.Read(registers.RegFilterShape)
	if err != nil {
		return 0, fmt.Errorf("es9038q2m: read filter: %w", err)
	}
	return FilterShape((v & registers.FilterShapeMask) >> registers.FilterShapeShift), nil
}
