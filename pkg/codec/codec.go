// Package codec drives an ES9038Q2M DAC through its register map.
//
// A Codec owns the register cache and the negotiated session state of one
// chip. Every operation runs under a single per-device lock, so the
// multi-register sequences of ConfigureStream and ConfigureInterface never
// interleave. Operations abort on the first failed transfer without
// rolling back registers already written; session state is only updated
// once a whole sequence succeeded.
package codec

import (
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/herlein/gosabre/pkg/clock"
	"github.com/herlein/gosabre/pkg/format"
	"github.com/herlein/gosabre/pkg/registers"
)

// State is the lifecycle state of a Codec
type State int

const (
	StateUninitialized State = iota
	StateIdentified
	StateConfigured
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateIdentified:
		return "identified"
	case StateConfigured:
		return "configured"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session is the negotiated stream and interface configuration
type Session struct {
	MCLK   uint32              // Reference clock, Hz
	Rate   uint32              // Sample rate, Hz
	Width  uint32              // Sample width, bits
	Format format.SampleFormat // Sample encoding
	DSD    bool                // Density stream active
	DAI    format.DAIStandard  // Serial framing
	Role   format.ClockRole    // Clock master or slave
	Muted  bool
}

// Option configures a Codec
type Option func(c *Codec)

// WithLogger sets the logger used for informational messages
func WithLogger(msg *log.Logger) Option {
	return func(c *Codec) {
		c.msg = msg
	}
}

// WithAddress records the bus address, used as a log prefix
func WithAddress(addr uint16) Option {
	return func(c *Codec) {
		c.addr = addr
	}
}

// Codec is one ES9038Q2M device instance
type Codec struct {
	mu    sync.Mutex
	msg   *log.Logger
	addr  uint16
	regs  *registers.Map
	state State
	sess  Session
}

// New creates a Codec on bus. mclkHz is the frequency of the master clock
// feeding the chip; it is fixed for the life of the device and must not be
// zero.
func New(bus registers.Bus, mclkHz uint32, opts ...Option) (*Codec, error) {
	if mclkHz == 0 {
		return nil, fmt.Errorf("es9038q2m: %w: master clock frequency is required", ErrInvalidClock)
	}

	c := &Codec{
		msg:  log.New(os.Stdout, "es9038q2m: ", 0),
		regs: registers.NewMap(bus),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.addr != 0 {
		c.msg = log.New(c.msg.Writer(), fmt.Sprintf("%s0x%02x: ", c.msg.Prefix(), c.addr), c.msg.Flags())
	}

	c.sess = c.resetSession(mclkHz)
	c.msg.Printf("MCLK frequency set to: %d", mclkHz)
	return c, nil
}

// resetSession returns the session matching the power-on defaults
func (c *Codec) resetSession(mclkHz uint32) Session {
	sess := Session{MCLK: mclkHz, DAI: format.DAII2S, Role: format.ClockSlave}
	if v, ok := c.regs.Cached(registers.RegFilterShape); ok {
		sess.Muted = v&registers.MuteBit != 0
	}
	return sess
}

// Probe reads the identification register and checks it against the
// ES9038Q2M chip id. A mismatch is reported as ErrDeviceNotFound and is
// not transient.
func (c *Codec) Probe() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, err := c.regs.Read(registers.RegChipID)
	if err != nil {
		c.msg.Printf("Failed to read CHIP_ID register: %v", err)
		return fmt.Errorf("es9038q2m: probe: %w", err)
	}

	id := v & registers.ChipIDMask
	if id != registers.ChipIDES9038Q2M {
		c.msg.Printf("Invalid CHIP_ID: 0x%02X", id)
		return fmt.Errorf("%w: chip id 0x%02X, want 0x%02X", ErrDeviceNotFound, id, registers.ChipIDES9038Q2M)
	}

	if c.state == StateUninitialized {
		c.state = StateIdentified
	}
	c.msg.Printf("ES9038Q2M detected, CHIP_ID = 0x%02X", id)
	return nil
}

// ConfigureStream programs the serial length and, in master mode, the NCO
// for a new stream. Soft start is disabled for the duration of the update.
//
// In master mode a rate the NCO cannot represent at the master clock
// fails with ErrInvalidClock before any register is written. Other
// failures may leave the hardware with soft start disabled; the caller
// must re-configure before trusting the device.
func (c *Codec) ConfigureStream(rateHz, widthBits uint32, f format.SampleFormat) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateUninitialized {
		return ErrNotIdentified
	}

	var nco uint32
	master := c.sess.Role == format.ClockMaster
	if master {
		var err error
		if nco, err = clock.NCO(rateHz, c.sess.MCLK); err != nil {
			c.msg.Printf("Invalid rate %d for MCLK %d", rateHz, c.sess.MCLK)
			return fmt.Errorf("es9038q2m: %w", err)
		}
	}

	err := c.regs.WriteMasked(registers.RegSoftStart, registers.SoftStartMask, registers.SoftStartDisable)
	if err != nil {
		c.msg.Printf("Failed to disable soft start: %v", err)
		return fmt.Errorf("es9038q2m: disable soft start: %w", err)
	}

	length, dsd, err := format.Translate(f)
	if err != nil {
		c.msg.Printf("Unsupported sound format: %v", f)
		return fmt.Errorf("es9038q2m: %w", err)
	}

	if !dsd {
		err = c.regs.WriteMasked(registers.RegInputSel, registers.SerialLenMask, uint8(length))
		if err != nil {
			c.msg.Printf("Failed to set serial length: %v", err)
			return fmt.Errorf("es9038q2m: set serial length: %w", err)
		}
	}

	if master {
		if err := c.writeNCO(nco, dsd); err != nil {
			return err
		}
	}

	err = c.regs.WriteMasked(registers.RegSoftStart, registers.SoftStartMask, registers.SoftStartEnable)
	if err != nil {
		c.msg.Printf("Failed to enable soft start: %v", err)
		return fmt.Errorf("es9038q2m: enable soft start: %w", err)
	}

	c.sess.Rate = rateHz
	c.sess.Width = widthBits
	c.sess.Format = f
	c.sess.DSD = dsd
	c.state = StateConfigured

	c.msg.Printf("HW Params set to: %dHz, %d bits. DSD = %v", rateHz, widthBits, dsd)
	return nil
}

// writeNCO selects the input path and programs the NCO tuning word,
// least significant byte first.
func (c *Codec) writeNCO(nco uint32, dsd bool) error {
	sel := uint8(registers.InputSelSerial)
	if dsd {
		sel = registers.InputSelDSD
	}
	err := c.regs.WriteMasked(registers.RegInputSel, registers.InputSelMask, sel)
	if err != nil {
		c.msg.Printf("Failed to set input select: %v", err)
		return fmt.Errorf("es9038q2m: set input select: %w", err)
	}

	for i, b := range clock.NCOBytes(nco) {
		addr := uint8(registers.RegNCO0 + i)
		if err := c.regs.Write(addr, b); err != nil {
			c.msg.Printf("Failed to write NCO_%d: %v", i, err)
			return fmt.Errorf("es9038q2m: write NCO_%d: %w", i, err)
		}
	}

	c.msg.Printf("NCO set to: %d", nco)
	return nil
}

// ConfigureInterface selects the serial framing and the clock role.
// Entering master mode disables automatic input selection, which is left
// disabled when returning to slave mode.
func (c *Codec) ConfigureInterface(std format.DAIStandard, role format.ClockRole) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateUninitialized {
		return ErrNotIdentified
	}

	mode, err := format.TranslateDAI(std)
	if err != nil {
		c.msg.Printf("Unsupported DAI format: %v", std)
		return fmt.Errorf("es9038q2m: %w", err)
	}

	var master uint8
	switch role {
	case format.ClockMaster:
		master = registers.MasterModeEnable
	case format.ClockSlave:
		master = 0
	default:
		c.msg.Printf("Unsupported CODEC mode: %v", role)
		return fmt.Errorf("es9038q2m: %w: clock role %v", ErrUnsupportedFormat, role)
	}

	if role == format.ClockMaster {
		c.msg.Printf("Disabling AUTOSEL in master mode")
		err = c.regs.WriteMasked(registers.RegInputSel, registers.AutoselMask, registers.AutoselDisabled)
		if err != nil {
			c.msg.Printf("Failed to disable AUTOSEL in master mode: %v", err)
			return fmt.Errorf("es9038q2m: disable autosel: %w", err)
		}
	}

	err = c.regs.WriteMasked(registers.RegInputSel, registers.SerialModeMask, uint8(mode))
	if err != nil {
		c.msg.Printf("Failed to set DAI format: %v", err)
		return fmt.Errorf("es9038q2m: set DAI format: %w", err)
	}

	err = c.regs.WriteMasked(registers.RegMasterMode, registers.MasterModeMask, master)
	if err != nil {
		c.msg.Printf("Failed to set master/slave mode: %v", err)
		return fmt.Errorf("es9038q2m: set master/slave mode: %w", err)
	}

	c.sess.DAI = std
	c.sess.Role = role
	c.state = StateConfigured

	c.msg.Printf("DAI format set to: %v, master: %v", std, role == format.ClockMaster)
	return nil
}

// State returns the lifecycle state
func (c *Codec) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Session returns a copy of the session state
func (c *Codec) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess
}

// Rate returns the committed sample rate in Hz
func (c *Codec) Rate() uint32 { return c.Session().Rate }

// Width returns the committed sample width in bits
func (c *Codec) Width() uint32 { return c.Session().Width }

// Format returns the committed sample format
func (c *Codec) Format() format.SampleFormat { return c.Session().Format }

// Muted reports whether the DAC output is muted
func (c *Codec) Muted() bool { return c.Session().Muted }

// ClockRole returns the committed clock role
func (c *Codec) ClockRole() format.ClockRole { return c.Session().Role }

// DAIStandard returns the committed serial framing
func (c *Codec) DAIStandard() format.DAIStandard { return c.Session().DAI }

// MCLK returns the master clock frequency in Hz
func (c *Codec) MCLK() uint32 { return c.Session().MCLK }
