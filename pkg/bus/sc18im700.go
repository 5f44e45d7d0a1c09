package bus

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/tarm/serial"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// SC18IM700 protocol characters
const (
	scStart    = 'S'
	scStop     = 'P'
	scRegRead  = 'R'
	scRegWrite = 'W'
)

// SC18IM700 internal registers
const (
	scRegI2CClkL = 0x07
	scRegI2CClkH = 0x08
	scRegI2CStat = 0x0A
)

// I2CStat values
const (
	scStatOK         = 0xF0
	scStatNACKOnAddr = 0xF1
	scStatNACKOnData = 0xF2
	scStatTimeout    = 0xF8
)

const (
	scMaxTransfer     = 255
	scDefaultBaud     = 9600
	scOscillator      = 7372800 // Internal oscillator, Hz
	scMinClockDivider = 5       // Per half period
)

var _ i2c.Bus = (*SC18IM700)(nil)

// SC18IM700 is an NXP UART-to-I2C bridge. It implements i2c.Bus.
type SC18IM700 struct {
	mu   sync.Mutex
	port io.ReadWriter
	name string
}

// NewSC18IM700 runs the bridge protocol over an already opened UART
func NewSC18IM700(port io.ReadWriter, name string) *SC18IM700 {
	return &SC18IM700{port: port, name: name}
}

// OpenSC18IM700 opens the bridge on a serial device. baud 0 selects the
// power-on rate of 9600.
func OpenSC18IM700(dev string, baud int) (*SC18IM700, error) {
	if baud == 0 {
		baud = scDefaultBaud
	}
	c := &serial.Config{Name: dev, Baud: baud, ReadTimeout: 500 * time.Millisecond}
	s, err := serial.OpenPort(c)
	if err != nil {
		return nil, fmt.Errorf("sc18im700: %w", err)
	}
	return NewSC18IM700(s, dev), nil
}

// Tx implements i2c.Bus: one START/STOP frame, with a repeated START
// between the write and the read.
func (b *SC18IM700) Tx(addr uint16, w, r []byte) error {
	if addr > 0x7F {
		return fmt.Errorf("sc18im700: invalid 7-bit address 0x%X", addr)
	}
	if len(w) > scMaxTransfer || len(r) > scMaxTransfer {
		return fmt.Errorf("sc18im700: transfer too long (w=%d, r=%d)", len(w), len(r))
	}
	if len(w) == 0 && len(r) == 0 {
		return nil
	}

	var frame []byte
	if len(w) > 0 {
		frame = append(frame, scStart, byte(addr<<1), byte(len(w)))
		frame = append(frame, w...)
	}
	if len(r) > 0 {
		frame = append(frame, scStart, byte(addr<<1)|1, byte(len(r)))
	}
	frame = append(frame, scStop)

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.port.Write(frame); err != nil {
		return fmt.Errorf("sc18im700: %w", err)
	}
	if len(r) > 0 {
		if _, err := io.ReadFull(b.port, r); err != nil {
			if serr := b.status(addr); serr != nil {
				return serr
			}
			return fmt.Errorf("sc18im700: read 0x%02X: %w", addr, err)
		}
	}
	return b.status(addr)
}

// status reads I2CStat and maps a failed transfer to an error
func (b *SC18IM700) status(addr uint16) error {
	if _, err := b.port.Write([]byte{scRegRead, scRegI2CStat, scStop}); err != nil {
		return fmt.Errorf("sc18im700: %w", err)
	}
	var st [1]byte
	if _, err := io.ReadFull(b.port, st[:]); err != nil {
		return fmt.Errorf("sc18im700: read status: %w", err)
	}
	switch st[0] {
	case scStatOK:
		return nil
	case scStatNACKOnAddr:
		return fmt.Errorf("sc18im700: 0x%02X: %w", addr, ErrNACK)
	case scStatNACKOnData:
		return fmt.Errorf("sc18im700: 0x%02X: data not acknowledged", addr)
	case scStatTimeout:
		return fmt.Errorf("sc18im700: 0x%02X: bus timeout", addr)
	default:
		return fmt.Errorf("sc18im700: 0x%02X: status 0x%02X", addr, st[0])
	}
}

// SetSpeed implements i2c.Bus. SCL = 7.3728 MHz / (2 * (ClkL + ClkH)).
func (b *SC18IM700) SetSpeed(f physic.Frequency) error {
	hz := int64(f / physic.Hertz)
	if hz <= 0 {
		return fmt.Errorf("sc18im700: invalid bus speed %s", f)
	}
	sum := scOscillator / (2 * hz)
	if sum < 2*scMinClockDivider || sum > 2*0xFF {
		return fmt.Errorf("sc18im700: bus speed %s out of range", f)
	}
	lo := byte(sum / 2)
	hi := byte(sum - sum/2)

	b.mu.Lock()
	defer b.mu.Unlock()

	_, err := b.port.Write([]byte{scRegWrite, scRegI2CClkL, lo, scRegI2CClkH, hi, scStop})
	if err != nil {
		return fmt.Errorf("sc18im700: %w", err)
	}
	return nil
}

func (b *SC18IM700) String() string {
	return "sc18im700:" + b.name
}

// Close closes the UART when it is closable
func (b *SC18IM700) Close() error {
	if c, ok := b.port.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
