package bus

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"strings"
	"testing"

	"golang.org/x/sys/unix"
	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"

	"github.com/herlein/gosabre/pkg/registers"
)

func TestI2C(t *testing.T) {
	pb := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x48, W: []byte{0x40}, R: []byte{0x71}},
			{Addr: 0x48, W: []byte{0x0E, 0x0A}},
		},
		DontPanic: true,
	}

	dev := NewI2C(pb, registers.AddrLow)
	v, err := dev.ReadReg(registers.RegChipID)
	if err != nil {
		t.Fatalf("could not read: %+v", err)
	}
	if v != 0x71 {
		t.Fatalf("invalid value: got=0x%02X, want=0x%02X", v, 0x71)
	}
	if err := dev.WriteReg(registers.RegSoftStart, 0x0A); err != nil {
		t.Fatalf("could not write: %+v", err)
	}
	if err := pb.Close(); err != nil {
		t.Fatalf("unconsumed operations: %+v", err)
	}
}

func TestI2CError(t *testing.T) {
	pb := &i2ctest.Playback{DontPanic: true}
	dev := NewI2C(pb, registers.AddrHigh)
	if _, err := dev.ReadReg(registers.RegChipID); err == nil {
		t.Fatalf("expected an error")
	}
}

func TestPort(t *testing.T) {
	pb := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x48, W: []byte{0x40}, R: []byte{0x70}},
			{Addr: 0x49, W: []byte{0x40}, R: []byte{0x73}},
		},
		DontPanic: true,
	}
	p := NewPort(pb)
	for _, tc := range []struct {
		addr uint16
		want uint8
	}{
		{registers.AddrLow, 0x70},
		{registers.AddrHigh, 0x73},
	} {
		v, err := p.Device(tc.addr).ReadReg(registers.RegChipID)
		if err != nil || v != tc.want {
			t.Fatalf("0x%02X: got=(0x%02X, %+v), want=0x%02X", tc.addr, v, err, tc.want)
		}
	}
	if err := p.Close(); err != nil {
		t.Fatalf("could not close: %+v", err)
	}
}

type fakeSMBus struct {
	regs map[uint8]uint8
	err  error
}

func (f *fakeSMBus) ReadReg(addr, reg uint8) (uint8, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.regs[reg], nil
}

func (f *fakeSMBus) WriteReg(addr, reg, v uint8) error {
	if f.err != nil {
		return f.err
	}
	f.regs[reg] = v
	return nil
}

func TestSMBus(t *testing.T) {
	conn := &fakeSMBus{regs: map[uint8]uint8{registers.RegChipID: 0x70}}
	dev := &SMBus{conn: conn, addr: registers.AddrLow}

	v, err := dev.ReadReg(registers.RegChipID)
	if err != nil || v != 0x70 {
		t.Fatalf("got=(0x%02X, %+v), want=0x70", v, err)
	}
	if err := dev.WriteReg(registers.RegVolumeCh1, 0x10); err != nil {
		t.Fatalf("could not write: %+v", err)
	}
	if conn.regs[registers.RegVolumeCh1] != 0x10 {
		t.Fatalf("register not written")
	}

	for _, tc := range []struct {
		err  error
		nack bool
	}{
		{err: unix.EREMOTEIO, nack: true},
		{err: fmt.Errorf("ioctl: %w", unix.ENXIO), nack: true},
		{err: unix.EIO, nack: false},
	} {
		conn.err = tc.err
		_, err := dev.ReadReg(registers.RegChipID)
		if got := errors.Is(err, ErrNACK); got != tc.nack {
			t.Fatalf("%v: nack=%v, want=%v", tc.err, got, tc.nack)
		}
		if !errors.Is(err, tc.err) {
			t.Fatalf("%v: cause lost: %+v", tc.err, err)
		}
	}
}

// uart emulates an SC18IM700 with one register-file target on its I2C side
type uart struct {
	target uint8
	regs   [256]uint8
	ptr    uint8
	stat   uint8
	clk    [2]uint8
	out    bytes.Buffer
}

func (u *uart) Write(p []byte) (int, error) {
	for i := 0; i < len(p); {
		switch p[i] {
		case scStart:
			addr, n := p[i+1], int(p[i+2])
			i += 3
			if addr>>1 != u.target {
				u.stat = scStatNACKOnAddr
				if addr&1 == 0 {
					i += n
				}
				continue
			}
			u.stat = scStatOK
			if addr&1 == 1 {
				for j := 0; j < n; j++ {
					u.out.WriteByte(u.regs[u.ptr])
					u.ptr++
				}
				continue
			}
			u.ptr = p[i]
			for _, v := range p[i+1 : i+n] {
				u.regs[u.ptr] = v
				u.ptr++
			}
			i += n
		case scRegRead:
			if p[i+1] == scRegI2CStat {
				u.out.WriteByte(u.stat)
			}
			i += 2
		case scRegWrite:
			i++
			for i < len(p) && p[i] != scStop {
				u.clk[p[i]-scRegI2CClkL] = p[i+1]
				i += 2
			}
		case scStop:
			i++
		default:
			return i, fmt.Errorf("unexpected byte 0x%02X", p[i])
		}
	}
	return len(p), nil
}

func (u *uart) Read(p []byte) (int, error) {
	return u.out.Read(p)
}

func TestSC18IM700(t *testing.T) {
	u := &uart{target: registers.AddrLow}
	u.regs[registers.RegChipID] = 0x71
	b := NewSC18IM700(u, "fake")

	dev := NewI2C(b, registers.AddrLow)
	v, err := dev.ReadReg(registers.RegChipID)
	if err != nil || v != 0x71 {
		t.Fatalf("got=(0x%02X, %+v), want=0x71", v, err)
	}
	if err := dev.WriteReg(registers.RegVolumeCh2, 0x33); err != nil {
		t.Fatalf("could not write: %+v", err)
	}
	if u.regs[registers.RegVolumeCh2] != 0x33 {
		t.Fatalf("register not written")
	}

	_, err = NewI2C(b, registers.AddrHigh).ReadReg(registers.RegChipID)
	if !errors.Is(err, ErrNACK) {
		t.Fatalf("invalid error: got=%+v, want=%+v", err, ErrNACK)
	}

	if err := b.SetSpeed(100 * physic.KiloHertz); err != nil {
		t.Fatalf("could not set speed: %+v", err)
	}
	// 7.3728 MHz / (2 * 100 kHz) = 36 => 18 + 18
	if u.clk != [2]uint8{18, 18} {
		t.Fatalf("invalid clock dividers: %v", u.clk)
	}
	if err := b.SetSpeed(400 * physic.KiloHertz); err == nil {
		t.Fatalf("expected an error for 400kHz")
	}
	if got, want := b.String(), "sc18im700:fake"; got != want {
		t.Fatalf("got=%q, want=%q", got, want)
	}
}

func TestTrace(t *testing.T) {
	var buf bytes.Buffer
	conn := &fakeSMBus{regs: map[uint8]uint8{registers.RegChipID: 0x70}}
	tr := Trace(&SMBus{conn: conn, addr: registers.AddrLow}, log.New(&buf, "", 0))

	if _, err := tr.ReadReg(registers.RegChipID); err != nil {
		t.Fatalf("could not read: %+v", err)
	}
	if err := tr.WriteReg(registers.RegFilterShape, 0x85); err != nil {
		t.Fatalf("could not write: %+v", err)
	}
	conn.err = unix.EIO
	if err := tr.WriteReg(registers.RegFilterShape, 0x84); err == nil {
		t.Fatalf("expected an error")
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("invalid trace:\n%s", buf.String())
	}
	if got, want := lines[0], "R 0x40 -> 0x70"; got != want {
		t.Fatalf("got=%q, want=%q", got, want)
	}
	if got, want := lines[1], "W 0x07 <- 0x85"; got != want {
		t.Fatalf("got=%q, want=%q", got, want)
	}
	if !strings.HasPrefix(lines[2], "W 0x07 <- 0x84: ") {
		t.Fatalf("invalid error line: %q", lines[2])
	}
}

func TestParseName(t *testing.T) {
	for _, tc := range []struct {
		name, scheme, arg string
	}{
		{"", "i2c", ""},
		{"1", "i2c", "1"},
		{"i2c:", "i2c", ""},
		{"i2c:I2C1", "i2c", "I2C1"},
		{"smbus:1", "smbus", "1"},
		{"mcp2221:", "mcp2221", ""},
		{"mcp2221:1:10", "mcp2221", "1:10"},
		{"uart:/dev/ttyUSB0@115200", "uart", "/dev/ttyUSB0@115200"},
		{"foo:bar", "i2c", "foo:bar"},
	} {
		scheme, arg := ParseName(tc.name)
		if scheme != tc.scheme || arg != tc.arg {
			t.Fatalf("%q: got=(%q, %q), want=(%q, %q)", tc.name, scheme, arg, tc.scheme, tc.arg)
		}
	}
}
