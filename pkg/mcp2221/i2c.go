package mcp2221

import (
	"encoding/binary"
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

var _ i2c.BusCloser = (*Device)(nil)

// Tx implements i2c.Bus. A write followed by a read is issued as a write
// without STOP and a read with repeated START.
func (d *Device) Tx(addr uint16, w, r []byte) error {
	if addr > 0x7F {
		return fmt.Errorf("mcp2221: invalid 7-bit address 0x%X", addr)
	}
	if len(w) == 0 && len(r) == 0 {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if len(w) > 0 {
		if err := d.write(len(r) == 0, uint8(addr), w); err != nil {
			return err
		}
	}
	if len(r) > 0 {
		if err := d.read(len(w) > 0, uint8(addr), r); err != nil {
			return err
		}
	}
	return nil
}

// SetSpeed implements i2c.Bus. The setting is not retained across a reset
// of the bridge.
func (d *Device) SetSpeed(f physic.Frequency) error {
	baud := int64(f / physic.Hertz)
	if baud > ClkHz/3 || baud < ClkHz/258 {
		return fmt.Errorf("mcp2221: invalid bus speed %s", f)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var req [ReportSize]byte
	req[0] = CmdStatus
	req[3] = paramSetSpeed
	req[4] = byte(ClkHz/baud - 3)
	rsp, err := d.transfer(&req)
	if err != nil {
		return fmt.Errorf("mcp2221: set speed: %w", err)
	}
	if rsp[3] == speedChangeBusy {
		return fmt.Errorf("mcp2221: set speed: %w", ErrBusy)
	}
	return nil
}

// state returns the I2C engine state
func (d *Device) state() (uint8, error) {
	var req [ReportSize]byte
	req[0] = CmdStatus
	rsp, err := d.transfer(&req)
	if err != nil {
		return 0, fmt.Errorf("mcp2221: status: %w", err)
	}
	return rsp[8], nil
}

// cancel aborts the transfer in progress and releases the bus
func (d *Device) cancel() error {
	var req [ReportSize]byte
	req[0] = CmdStatus
	req[2] = paramCancel
	if _, err := d.transfer(&req); err != nil {
		return fmt.Errorf("mcp2221: cancel: %w", err)
	}
	time.Sleep(pollInterval)
	return nil
}

func (d *Device) write(stop bool, addr uint8, data []byte) error {
	st, err := d.state()
	if err != nil {
		return err
	}
	if st != stateIdle {
		if err := d.cancel(); err != nil {
			return err
		}
	}

	cmd := uint8(CmdI2CWrite)
	if !stop {
		cmd = CmdI2CWriteNoStop
	}

	for pos := 0; pos < len(data); {
		var req [ReportSize]byte
		req[0] = cmd
		binary.LittleEndian.PutUint16(req[1:3], uint16(len(data)))
		req[3] = addr << 1
		n := copy(req[4:4+chunkMax], data[pos:])

		if err := d.submit(&req, addr); err != nil {
			return err
		}
		pos += n
	}

	return d.settle(addr, func(st uint8) bool {
		return st == stateIdle || (!stop && st == stateWritingNoStop)
	})
}

func (d *Device) read(rep bool, addr uint8, buf []byte) error {
	st, err := d.state()
	if err != nil {
		return err
	}
	if st != stateIdle && st != stateWritingNoStop {
		if err := d.cancel(); err != nil {
			return err
		}
	}

	var req [ReportSize]byte
	req[0] = CmdI2CRead
	if rep {
		req[0] = CmdI2CReadRepStart
	}
	binary.LittleEndian.PutUint16(req[1:3], uint16(len(buf)))
	req[3] = addr<<1 | 1
	if err := d.submit(&req, addr); err != nil {
		return err
	}

	for pos, retry := 0, 0; pos < len(buf); retry++ {
		if retry >= retryMax {
			return fmt.Errorf("mcp2221: read 0x%02X: %w", addr, ErrTimeout)
		}

		var get [ReportSize]byte
		get[0] = CmdI2CGetData
		rsp, err := d.transfer(&get)
		if err != nil {
			return fmt.Errorf("mcp2221: get data: %w", err)
		}

		switch {
		case rsp[2] == stateAddrNACK:
			return fmt.Errorf("mcp2221: read 0x%02X: %w", addr, ErrNACK)
		case stateTimeout(rsp[2]):
			return fmt.Errorf("mcp2221: read 0x%02X: %w", addr, ErrTimeout)
		case rsp[1] != 0 || rsp[3] == stateReadError:
			time.Sleep(pollInterval)
			continue
		}

		n := int(rsp[3])
		if n > chunkMax {
			n = chunkMax
		}
		pos += copy(buf[pos:], rsp[4:4+n])
	}
	return nil
}

// submit sends a transfer command, retrying while the engine is busy
func (d *Device) submit(req *[ReportSize]byte, addr uint8) error {
	for retry := 0; retry < retryMax; retry++ {
		rsp, err := d.transfer(req)
		if err != nil {
			return fmt.Errorf("mcp2221: %w", err)
		}
		switch {
		case rsp[1] == 0:
			return nil
		case rsp[2] == stateAddrNACK:
			return fmt.Errorf("mcp2221: 0x%02X: %w", addr, ErrNACK)
		case stateTimeout(rsp[2]):
			return fmt.Errorf("mcp2221: 0x%02X: %w", addr, ErrTimeout)
		}
		time.Sleep(pollInterval)
	}
	return fmt.Errorf("mcp2221: 0x%02X: %w", addr, ErrBusy)
}

// settle polls the engine until done reports completion
func (d *Device) settle(addr uint8, done func(st uint8) bool) error {
	for retry := 0; retry < retryMax; retry++ {
		st, err := d.state()
		if err != nil {
			return err
		}
		switch {
		case done(st):
			return nil
		case st == stateAddrNACK:
			d.cancel()
			return fmt.Errorf("mcp2221: write 0x%02X: %w", addr, ErrNACK)
		case stateTimeout(st):
			d.cancel()
			return fmt.Errorf("mcp2221: write 0x%02X: %w", addr, ErrTimeout)
		}
		time.Sleep(pollInterval)
	}
	return fmt.Errorf("mcp2221: write 0x%02X: %w", addr, ErrTimeout)
}
