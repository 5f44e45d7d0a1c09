package bus

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-daq/smbus"
	"golang.org/x/sys/unix"

	"github.com/herlein/gosabre/pkg/registers"
)

// smbusConn is the subset of *smbus.Conn used by SMBus
type smbusConn interface {
	ReadReg(addr, reg uint8) (uint8, error)
	WriteReg(addr, reg, v uint8) error
}

var _ registers.Bus = (*SMBus)(nil)

// SMBus is an 8-bit register device on a Linux i2c-dev adapter, using
// SMBus byte-data transfers.
type SMBus struct {
	conn smbusConn
	addr uint8
}

// ReadReg implements registers.Bus
func (s *SMBus) ReadReg(reg uint8) (uint8, error) {
	v, err := s.conn.ReadReg(s.addr, reg)
	if err != nil {
		return 0, fmt.Errorf("smbus read 0x%02X@0x%02X: %w", reg, s.addr, classify(err))
	}
	return v, nil
}

// WriteReg implements registers.Bus
func (s *SMBus) WriteReg(reg, value uint8) error {
	if err := s.conn.WriteReg(s.addr, reg, value); err != nil {
		return fmt.Errorf("smbus write 0x%02X@0x%02X: %w", reg, s.addr, classify(err))
	}
	return nil
}

// nackError keeps the errno while matching ErrNACK
type nackError struct {
	err error
}

func (e nackError) Error() string        { return fmt.Sprintf("%v: %v", ErrNACK, e.err) }
func (e nackError) Unwrap() error        { return e.err }
func (e nackError) Is(target error) bool { return target == ErrNACK }

// classify maps the i2c-dev errno of a missing device to ErrNACK.
// Adapters report an address NACK as EREMOTEIO or ENXIO.
func classify(err error) error {
	if errors.Is(err, unix.EREMOTEIO) || errors.Is(err, unix.ENXIO) {
		return nackError{err: err}
	}
	return err
}

// smbusPort serializes transfers, since every one of them re-selects the
// slave address of the shared adapter.
type smbusPort struct {
	mu   sync.Mutex
	conn *smbus.Conn
	name string
}

func openSMBus(n int) (*smbusPort, error) {
	// The initial slave address is re-selected by every transfer.
	conn, err := smbus.Open(n, registers.AddrLow)
	if err != nil {
		return nil, fmt.Errorf("could not open /dev/i2c-%d: %w", n, err)
	}
	return &smbusPort{conn: conn, name: fmt.Sprintf("smbus:%d", n)}, nil
}

func (p *smbusPort) Device(addr uint16) registers.Bus {
	return &SMBus{conn: p, addr: uint8(addr)}
}

func (p *smbusPort) ReadReg(addr, reg uint8) (uint8, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn.ReadReg(addr, reg)
}

func (p *smbusPort) WriteReg(addr, reg, v uint8) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn.WriteReg(addr, reg, v)
}

func (p *smbusPort) String() string { return p.name }

func (p *smbusPort) Close() error { return p.conn.Close() }
