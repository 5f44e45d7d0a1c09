package codec

import (
	"fmt"

	"github.com/herlein/gosabre/pkg/clock"
	"github.com/herlein/gosabre/pkg/format"
	"github.com/herlein/gosabre/pkg/registers"
)

// Status is the live state reported in REG_CHIP_ID
type Status struct {
	ChipID     uint8
	DPLLLocked bool
	Automuted  bool
}

// Status reads the identification/status register
func (c *Codec) Status() (Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, err := c.regs.Read(registers.RegChipID)
	if err != nil {
		return Status{}, fmt.Errorf("es9038q2m: read status: %w", err)
	}
	return Status{
		ChipID:     v & registers.ChipIDMask,
		DPLLLocked: v&registers.DPLLLockStatus != 0,
		Automuted:  v&registers.AutomuteStatus != 0,
	}, nil
}

// MeasuredRate returns the input sample rate tracked by the DPLL, derived
// from the DPLL ratio registers and the master clock.
func (c *Codec) MeasuredRate() (uint32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := c.regs.ReadBlock(registers.RegDPLLNum0, 4)
	if err != nil {
		return 0, fmt.Errorf("es9038q2m: read DPLL ratio: %w", err)
	}
	return clock.Rate(clock.Word(raw), c.sess.MCLK), nil
}

// SoftReset resets the chip to its power-on register state. The cache is
// re-seeded, stream and interface settings are forgotten and an identified
// codec returns to StateIdentified.
func (c *Codec) SoftReset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.regs.WriteMasked(registers.RegSystem, registers.SoftResetBit, registers.SoftResetBit)
	if err != nil {
		return fmt.Errorf("es9038q2m: soft reset: %w", err)
	}

	c.regs.Reset()
	c.sess = c.resetSession(c.sess.MCLK)
	if c.state == StateConfigured {
		c.state = StateIdentified
	}
	c.msg.Printf("soft reset")
	return nil
}

// Refresh reloads the register cache from the chip, for a device that was
// configured by someone else. The mute flag and clock role of the session
// follow the chip; stream parameters stay unknown.
func (c *Codec) Refresh() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateUninitialized {
		return ErrNotIdentified
	}
	if err := c.regs.Refresh(); err != nil {
		return fmt.Errorf("es9038q2m: refresh: %w", err)
	}
	c.follow(registers.RegFilterShape)
	c.follow(registers.RegMasterMode)
	return nil
}

// follow updates the session fields backed by the cached value of addr
func (c *Codec) follow(addr uint8) {
	v, ok := c.regs.Cached(addr)
	if !ok {
		return
	}
	switch addr {
	case registers.RegFilterShape:
		c.sess.Muted = v&registers.MuteBit != 0
	case registers.RegMasterMode:
		c.sess.Role = format.ClockSlave
		if v&registers.MasterModeMask != 0 {
			c.sess.Role = format.ClockMaster
		}
	}
}

// Dump reads the whole register file. Cached registers are served from the
// cache, volatile ones from the chip.
func (c *Codec) Dump() ([registers.NumRegisters]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out [registers.NumRegisters]byte
	raw, err := c.regs.ReadBlock(0, registers.NumRegisters)
	if err != nil {
		return out, fmt.Errorf("es9038q2m: dump: %w", err)
	}
	copy(out[:], raw)
	return out, nil
}

// WriteRegister writes a raw register value through the cache. It is
// meant for restoring register snapshots. Writes to the mute and master
// mode registers are reflected in the session.
func (c *Codec) WriteRegister(addr, value uint8) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.regs.Write(addr, value); err != nil {
		return fmt.Errorf("es9038q2m: %w", err)
	}
	c.follow(addr)
	return nil
}
