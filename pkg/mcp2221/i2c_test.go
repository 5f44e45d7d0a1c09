package mcp2221

import (
	"context"
	"errors"
	"testing"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// bridge emulates the MCP2221A HID protocol with one register-file target
// behind it.
type bridge struct {
	target uint8
	regs   [256]uint8
	ptr    uint8

	state   uint8
	pending []byte
	speed   uint8

	reqs [][ReportSize]byte
	rsp  [ReportSize]byte
}

func (b *bridge) WriteContext(_ context.Context, buf []byte) (int, error) {
	var req [ReportSize]byte
	copy(req[:], buf)
	b.reqs = append(b.reqs, req)

	var rsp [ReportSize]byte
	rsp[0] = req[0]
	switch req[0] {
	case CmdStatus:
		if req[2] == paramCancel {
			b.state = stateIdle
			b.pending = nil
		}
		if req[3] == paramSetSpeed {
			b.speed = req[4]
		}
		rsp[8] = b.state
		copy(rsp[46:], "A612")

	case CmdI2CWrite, CmdI2CWriteNoStop:
		n := int(req[1]) | int(req[2])<<8
		if req[3]>>1 != b.target {
			b.state = stateAddrNACK
			break
		}
		data := req[4 : 4+n]
		b.ptr = data[0]
		for _, v := range data[1:] {
			b.regs[b.ptr] = v
			b.ptr++
		}
		b.state = stateIdle
		if req[0] == CmdI2CWriteNoStop {
			b.state = stateWritingNoStop
		}

	case CmdI2CRead, CmdI2CReadRepStart:
		n := int(req[1]) | int(req[2])<<8
		if req[3]>>1 != b.target {
			b.state = stateAddrNACK
			break
		}
		b.pending = nil
		for i := 0; i < n; i++ {
			b.pending = append(b.pending, b.regs[b.ptr])
			b.ptr++
		}
		b.state = stateReadComplete

	case CmdI2CGetData:
		rsp[2] = b.state
		if b.state == stateAddrNACK {
			rsp[3] = stateReadError
			break
		}
		n := copy(rsp[4:4+chunkMax], b.pending)
		b.pending = b.pending[n:]
		rsp[3] = uint8(n)
		if len(b.pending) == 0 {
			b.state = stateIdle
		}
	}
	b.rsp = rsp
	return len(buf), nil
}

func (b *bridge) ReadContext(_ context.Context, buf []byte) (int, error) {
	return copy(buf, b.rsp[:]), nil
}

func newBridge() (*Device, *bridge) {
	b := &bridge{target: 0x48}
	return &Device{epIn: b, epOut: b, Serial: "0001"}, b
}

func TestTxRegister(t *testing.T) {
	dev, b := newBridge()
	b.regs[0x40] = 0x71

	d := i2c.Dev{Bus: dev, Addr: 0x48}

	var r [1]byte
	if err := d.Tx([]byte{0x40}, r[:]); err != nil {
		t.Fatalf("could not read register: %+v", err)
	}
	if r[0] != 0x71 {
		t.Fatalf("invalid value: got=0x%02X, want=0x%02X", r[0], 0x71)
	}

	var cmds []uint8
	for _, req := range b.reqs {
		cmds = append(cmds, req[0])
	}
	want := []uint8{
		CmdStatus, CmdI2CWriteNoStop, CmdStatus,
		CmdStatus, CmdI2CReadRepStart, CmdI2CGetData,
	}
	if len(cmds) != len(want) {
		t.Fatalf("invalid command sequence: got=% x, want=% x", cmds, want)
	}
	for i := range want {
		if cmds[i] != want[i] {
			t.Fatalf("invalid command sequence: got=% x, want=% x", cmds, want)
		}
	}
	if got := b.reqs[4][3]; got != 0x48<<1|1 {
		t.Fatalf("invalid read address byte: 0x%02X", got)
	}

	if err := d.Tx([]byte{0x0F, 0x20}, nil); err != nil {
		t.Fatalf("could not write register: %+v", err)
	}
	if b.regs[0x0F] != 0x20 {
		t.Fatalf("register not written")
	}
	if got := b.reqs[len(b.reqs)-2][0]; got != CmdI2CWrite {
		t.Fatalf("invalid write command: 0x%02X", got)
	}
}

func TestTxLongRead(t *testing.T) {
	dev, b := newBridge()
	for i := range b.regs {
		b.regs[i] = uint8(i)
	}

	r := make([]byte, 0x67)
	if err := dev.Tx(0x48, []byte{0x00}, r); err != nil {
		t.Fatalf("could not read block: %+v", err)
	}
	for i, v := range r {
		if v != uint8(i) {
			t.Fatalf("invalid byte %d: got=0x%02X", i, v)
		}
	}
}

func TestTxNACK(t *testing.T) {
	dev, _ := newBridge()

	err := dev.Tx(0x49, []byte{0x40}, make([]byte, 1))
	if !errors.Is(err, ErrNACK) {
		t.Fatalf("invalid error: got=%+v, want=%+v", err, ErrNACK)
	}

	// The engine is cancelled and usable again.
	if err := dev.Tx(0x48, []byte{0x01, 0xCC}, nil); err != nil {
		t.Fatalf("could not write after NACK: %+v", err)
	}
}

func TestTxInvalidAddress(t *testing.T) {
	dev, b := newBridge()
	if err := dev.Tx(0x100, []byte{0x00}, nil); err == nil {
		t.Fatalf("expected an error")
	}
	if len(b.reqs) != 0 {
		t.Fatalf("unexpected traffic: %d reports", len(b.reqs))
	}
}

func TestSetSpeed(t *testing.T) {
	dev, b := newBridge()

	if err := dev.SetSpeed(400 * physic.KiloHertz); err != nil {
		t.Fatalf("could not set speed: %+v", err)
	}
	if got, want := b.speed, uint8(ClkHz/400000-3); got != want {
		t.Fatalf("invalid divider: got=%d, want=%d", got, want)
	}

	if err := dev.SetSpeed(10 * physic.MegaHertz); err == nil {
		t.Fatalf("expected an error for 10MHz")
	}
}

func TestRevision(t *testing.T) {
	dev, _ := newBridge()
	hw, fw, err := dev.Revision()
	if err != nil {
		t.Fatalf("could not read revision: %+v", err)
	}
	if hw != "A6" || fw != "12" {
		t.Fatalf("invalid revision: got=(%q, %q)", hw, fw)
	}
}

func TestSelector(t *testing.T) {
	devs := func() []*Device {
		return []*Device{
			{Serial: "AAA", Bus: 1, Address: 4},
			{Serial: "BBB", Bus: 1, Address: 7},
			{Serial: "BBB", Bus: 2, Address: 3},
		}
	}

	for _, tc := range []struct {
		sel  DeviceSelector
		want string
		bus  int
		fail bool
	}{
		{sel: "", want: "AAA", bus: 1},
		{sel: "#2", want: "BBB", bus: 2},
		{sel: "1:7", want: "BBB", bus: 1},
		{sel: "AAA", want: "AAA", bus: 1},
		{sel: "BBB", fail: true},
		{sel: "#5", fail: true},
		{sel: "#x", fail: true},
		{sel: "x:1", fail: true},
	} {
		t.Run(string(tc.sel), func(t *testing.T) {
			m, what, err := tc.sel.matcher()
			if err == nil {
				var d *Device
				d, err = pick(devs(), m, what)
				if err == nil && (d.Serial != tc.want || d.Bus != tc.bus) {
					t.Fatalf("invalid device: got=%v (bus %d)", d, d.Bus)
				}
			}
			if (err != nil) != tc.fail {
				t.Fatalf("invalid error: %+v", err)
			}
		})
	}
}
