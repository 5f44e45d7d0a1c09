// Package bus connects the register map to real hardware: native I2C
// buses through periph, Linux i2c-dev through SMBus, and the MCP2221A and
// SC18IM700 bridges.
package bus

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/i2c"

	"github.com/herlein/gosabre/pkg/registers"
)

// ErrNACK indicates the target did not acknowledge its address
var ErrNACK = errors.New("bus: no acknowledge")

var _ registers.Bus = (*I2C)(nil)

// I2C is an 8-bit register device on an I2C bus
type I2C struct {
	Dev i2c.Dev
}

// NewI2C returns the register device at addr on b
func NewI2C(b i2c.Bus, addr uint16) *I2C {
	return &I2C{Dev: i2c.Dev{Bus: b, Addr: addr}}
}

// ReadReg writes the register pointer then reads one byte with a repeated
// start.
func (d *I2C) ReadReg(addr uint8) (uint8, error) {
	var r [1]byte
	if err := d.Dev.Tx([]byte{addr}, r[:]); err != nil {
		return 0, fmt.Errorf("i2c read 0x%02X: %w", addr, err)
	}
	return r[0], nil
}

// WriteReg writes the register pointer followed by the value
func (d *I2C) WriteReg(addr, value uint8) error {
	if err := d.Dev.Tx([]byte{addr, value}, nil); err != nil {
		return fmt.Errorf("i2c write 0x%02X: %w", addr, err)
	}
	return nil
}

func (d *I2C) String() string {
	return d.Dev.String()
}
