package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/herlein/gosabre/pkg/clock"
	"github.com/herlein/gosabre/pkg/codec"
	"github.com/herlein/gosabre/pkg/format"
	"github.com/herlein/gosabre/pkg/profiles"
	"github.com/herlein/gosabre/pkg/registers"
)

// ErrInvalidConfig indicates a device configuration that cannot be applied
var ErrInvalidConfig = errors.New("invalid configuration")

// Volume is the per-channel attenuation, 0.5 dB per step
type Volume struct {
	Ch1 uint8 `json:"ch1"`
	Ch2 uint8 `json:"ch2"`
}

// DeviceConfig holds the desired setup of one ES9038Q2M
type DeviceConfig struct {
	Name    string             `json:"name"`
	Bus     string             `json:"bus"`
	Address uint16             `json:"address"`
	MCLKHz  uint32             `json:"mclk_hz"`
	DAI     format.DAIStandard `json:"dai,omitempty"`
	Role    format.ClockRole   `json:"role"`

	// Stream, either a named profile or explicit parameters
	Profile string              `json:"profile,omitempty"`
	Rate    uint32              `json:"rate,omitempty"`
	Width   uint32              `json:"width,omitempty"`
	Format  format.SampleFormat `json:"format,omitempty"`

	Filter string  `json:"filter,omitempty"`
	Volume *Volume `json:"volume,omitempty"`
	Mute   bool    `json:"mute"`
}

// File is a set of device configurations
type File struct {
	Devices []DeviceConfig `json:"devices"`
}

// Validate checks a configuration without touching hardware
func (c *DeviceConfig) Validate() error {
	if c.MCLKHz == 0 {
		return fmt.Errorf("%s: %w: mclk_hz is required", c.Name, clock.ErrInvalidClock)
	}
	if c.Address != registers.AddrLow && c.Address != registers.AddrHigh {
		return fmt.Errorf("%s: %w: address 0x%02X, want 0x%02X or 0x%02X",
			c.Name, ErrInvalidConfig, c.Address, registers.AddrLow, registers.AddrHigh)
	}
	if c.DAI != format.DAIUnknown {
		if _, err := format.TranslateDAI(c.DAI); err != nil {
			return fmt.Errorf("%s: %w", c.Name, err)
		}
	}
	if c.Profile != "" && (c.Rate != 0 || c.Format != format.FormatUnknown) {
		return fmt.Errorf("%s: %w: profile and explicit stream parameters are exclusive", c.Name, ErrInvalidConfig)
	}

	stream, err := c.Stream()
	if err != nil {
		return err
	}
	if stream != nil {
		if _, _, err := format.Translate(stream.Format); err != nil {
			return fmt.Errorf("%s: %w", c.Name, err)
		}
		if c.Role == format.ClockMaster {
			if _, err := clock.NCO(stream.RateHz, c.MCLKHz); err != nil {
				return fmt.Errorf("%s: %w", c.Name, err)
			}
		}
	}

	if c.Filter != "" {
		if _, err := codec.ParseFilterShape(c.Filter); err != nil {
			return fmt.Errorf("%s: %w", c.Name, err)
		}
	}
	return nil
}

// Stream resolves the stream parameters. It returns nil when the
// configuration does not set up a stream.
func (c *DeviceConfig) Stream() (*profiles.Profile, error) {
	if c.Profile != "" {
		p, err := profiles.Get(c.Profile)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.Name, err)
		}
		return p, nil
	}
	if c.Rate == 0 {
		return nil, nil
	}
	width := c.Width
	if width == 0 {
		width = c.Format.Width()
	}
	return &profiles.Profile{Name: c.Name, RateHz: c.Rate, Width: width, Format: c.Format}, nil
}

// ApplyToDevice brings a codec to the configured state: probe, interface,
// stream, then the mixer controls.
func ApplyToDevice(device *codec.Codec, configuration *DeviceConfig) error {
	if err := configuration.Validate(); err != nil {
		return err
	}

	if device.State() == codec.StateUninitialized {
		if err := device.Probe(); err != nil {
			return fmt.Errorf("failed to probe device: %w", err)
		}
	}

	dai := configuration.DAI
	if dai == format.DAIUnknown {
		dai = format.DAII2S
	}
	if err := device.ConfigureInterface(dai, configuration.Role); err != nil {
		return fmt.Errorf("failed to configure interface: %w", err)
	}

	stream, err := configuration.Stream()
	if err != nil {
		return err
	}
	if stream != nil {
		if err := device.ConfigureStream(stream.RateHz, stream.Width, stream.Format); err != nil {
			return fmt.Errorf("failed to configure stream: %w", err)
		}
	}

	if configuration.Filter != "" {
		shape, _ := codec.ParseFilterShape(configuration.Filter)
		if err := device.SetFilter(shape); err != nil {
			return fmt.Errorf("failed to set filter: %w", err)
		}
	}
	if v := configuration.Volume; v != nil {
		if err := device.SetVolume(v.Ch1, v.Ch2); err != nil {
			return fmt.Errorf("failed to set volume: %w", err)
		}
	}
	if err := device.SetMute(configuration.Mute); err != nil {
		return fmt.Errorf("failed to set mute: %w", err)
	}

	return nil
}

// RegisterFile is the raw content of every register
type RegisterFile [registers.NumRegisters]uint8

// Snapshot is a register dump of one device
type Snapshot struct {
	Name      string       `json:"name"`
	Bus       string       `json:"bus"`
	Address   uint16       `json:"address"`
	ChipID    uint8        `json:"chip_id"`
	MCLKHz    uint32       `json:"mclk_hz"`
	Timestamp time.Time    `json:"timestamp"`
	Registers RegisterFile `json:"registers"`
}

// DumpFromDevice reads all registers from a device
func DumpFromDevice(device *codec.Codec) (*Snapshot, error) {
	status, err := device.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to read status: %w", err)
	}

	regs, err := device.Dump()
	if err != nil {
		return nil, fmt.Errorf("failed to read registers: %w", err)
	}

	return &Snapshot{
		ChipID:    status.ChipID,
		MCLKHz:    device.MCLK(),
		Timestamp: time.Now(),
		Registers: regs,
	}, nil
}

// restorable reports whether a register is part of the persistent
// configuration: documented, writable and cached.
func restorable(addr uint8) bool {
	info, err := registers.Lookup(addr)
	return err == nil && info.HasDefault && info.CanWrite() && info.Cacheable()
}

// RestoreToDevice writes the configuration registers of a snapshot.
// Volatile and status registers are skipped. Soft start is held disabled
// while the serial length and NCO change; the soft start register of the
// snapshot is written last.
func RestoreToDevice(device *codec.Codec, snapshot *Snapshot) error {
	softStart := snapshot.Registers[registers.RegSoftStart]
	err := device.WriteRegister(registers.RegSoftStart,
		softStart&^registers.SoftStartMask|registers.SoftStartDisable)
	if err != nil {
		return fmt.Errorf("failed to disable soft start: %w", err)
	}

	for _, d := range registers.Defaults {
		if d.Addr == registers.RegSoftStart || !restorable(d.Addr) {
			continue
		}
		if err := device.WriteRegister(d.Addr, snapshot.Registers[d.Addr]); err != nil {
			return fmt.Errorf("failed to write registers: %w", err)
		}
	}

	if err := device.WriteRegister(registers.RegSoftStart, softStart); err != nil {
		return fmt.Errorf("failed to restore soft start: %w", err)
	}
	return nil
}

// Difference is one configuration register that does not match
type Difference struct {
	Addr uint8
	Want uint8
	Got  uint8
}

func (d Difference) String() string {
	return fmt.Sprintf("0x%02X: want 0x%02X, got 0x%02X", d.Addr, d.Want, d.Got)
}

// Diff compares the configuration registers of two snapshots
func Diff(want, got *Snapshot) []Difference {
	var diffs []Difference
	for addr := 0; addr < registers.NumRegisters; addr++ {
		a := uint8(addr)
		if !restorable(a) || want.Registers[a] == got.Registers[a] {
			continue
		}
		diffs = append(diffs, Difference{Addr: a, Want: want.Registers[a], Got: got.Registers[a]})
	}
	return diffs
}
