package registers

import (
	"errors"
	"fmt"
	"testing"
)

type op struct {
	write bool
	addr  uint8
	value uint8
}

type fakeBus struct {
	regs    [NumRegisters]uint8
	ops     []op
	failOn  func(o op) bool
	nreads  int
	nwrites int
}

func newFakeBus() *fakeBus {
	bus := &fakeBus{}
	for _, d := range Defaults {
		bus.regs[d.Addr] = d.Value
	}
	return bus
}

func (b *fakeBus) ReadReg(addr uint8) (uint8, error) {
	o := op{addr: addr}
	if b.failOn != nil && b.failOn(o) {
		return 0, fmt.Errorf("nack")
	}
	b.nreads++
	b.ops = append(b.ops, o)
	return b.regs[addr], nil
}

func (b *fakeBus) WriteReg(addr, value uint8) error {
	o := op{write: true, addr: addr, value: value}
	if b.failOn != nil && b.failOn(o) {
		return fmt.Errorf("nack")
	}
	b.nwrites++
	b.ops = append(b.ops, o)
	b.regs[addr] = value
	return nil
}

func TestAccessClasses(t *testing.T) {
	for _, tc := range []struct {
		addr uint8
		want Access
	}{
		{RegSystem, Writable | Volatile},
		{RegInputSel, Writable},
		{RegNCO3, Writable},
		{0x3F, Writable},
		{RegChipID, ReadOnly | Volatile},
		{RegDPLLNum0, ReadOnly | Volatile},
		{MaxRegister, ReadOnly | Volatile},
	} {
		t.Run(fmt.Sprintf("0x%02X", tc.addr), func(t *testing.T) {
			info, err := Lookup(tc.addr)
			if err != nil {
				t.Fatalf("could not lookup: %+v", err)
			}
			if got, want := info.Access, tc.want; got != want {
				t.Fatalf("invalid access: got=%v, want=%v", got, want)
			}
		})
	}

	_, err := Lookup(MaxRegister + 1)
	if !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("got=%+v, want=%+v", err, ErrOutOfRange)
	}
}

func TestDefaults(t *testing.T) {
	if got, want := len(Defaults), 53; got != want {
		t.Fatalf("invalid number of defaults: got=%d, want=%d", got, want)
	}
	seen := make(map[uint8]bool)
	for _, d := range Defaults {
		if seen[d.Addr] {
			t.Fatalf("duplicate default for 0x%02X", d.Addr)
		}
		seen[d.Addr] = true
		if d.Addr >= FirstReadOnly {
			t.Fatalf("default for read-only register 0x%02X", d.Addr)
		}
	}

	for _, tc := range []struct {
		addr uint8
		want uint8
	}{
		{RegInputSel, 0xCC},
		{RegFilterShape, 0x84},
		{RegMasterMode, 0x02},
		{RegSoftStart, 0x8A},
		{RegVolumeCh1, 0x50},
		{RegMTrim3, 0x7F},
		{RegADCConfig, 0x55},
		{RegADCFBQ2_1, 0x04},
	} {
		info, _ := Lookup(tc.addr)
		if !info.HasDefault || info.Default != tc.want {
			t.Fatalf("invalid default for 0x%02X: got=0x%02X, want=0x%02X", tc.addr, info.Default, tc.want)
		}
	}
}

func TestReadCached(t *testing.T) {
	bus := newFakeBus()
	m := NewMap(bus)

	v, err := m.Read(RegSoftStart)
	if err != nil {
		t.Fatalf("could not read: %+v", err)
	}
	if got, want := v, uint8(0x8A); got != want {
		t.Fatalf("got=0x%02X, want=0x%02X", got, want)
	}
	if bus.nreads != 0 {
		t.Fatalf("cached read hit the bus %d times", bus.nreads)
	}
}

func TestReadUnknownPopulatesCache(t *testing.T) {
	bus := newFakeBus()
	bus.regs[0x3A] = 0x5A
	m := NewMap(bus)

	if _, ok := m.Cached(0x3A); ok {
		t.Fatalf("register without default should start unknown")
	}
	for i := 0; i < 3; i++ {
		v, err := m.Read(0x3A)
		if err != nil {
			t.Fatalf("could not read: %+v", err)
		}
		if v != 0x5A {
			t.Fatalf("got=0x%02X, want=0x5A", v)
		}
	}
	if got, want := bus.nreads, 1; got != want {
		t.Fatalf("invalid bus reads: got=%d, want=%d", got, want)
	}
}

func TestReadVolatile(t *testing.T) {
	bus := newFakeBus()
	bus.regs[RegChipID] = 0x71
	m := NewMap(bus)

	for i := 0; i < 3; i++ {
		if _, err := m.Read(RegChipID); err != nil {
			t.Fatalf("could not read: %+v", err)
		}
	}
	if got, want := bus.nreads, 3; got != want {
		t.Fatalf("invalid bus reads: got=%d, want=%d", got, want)
	}

	bus.regs[RegChipID] = 0x72
	v, err := m.Read(RegChipID)
	if err != nil {
		t.Fatalf("could not read: %+v", err)
	}
	if v != 0x72 {
		t.Fatalf("stale volatile value: got=0x%02X", v)
	}
	if last, ok := m.Cached(RegChipID); !ok || last != 0x72 {
		t.Fatalf("last observed value not recorded: got=0x%02X (%v)", last, ok)
	}
}

func TestWriteThenReadVolatileSystem(t *testing.T) {
	bus := newFakeBus()
	m := NewMap(bus)

	if err := m.Write(RegSystem, 0x04); err != nil {
		t.Fatalf("could not write: %+v", err)
	}
	bus.regs[RegSystem] = 0x00 // chip changed it
	v, err := m.Read(RegSystem)
	if err != nil {
		t.Fatalf("could not read: %+v", err)
	}
	if v != 0x00 {
		t.Fatalf("volatile read served from cache: got=0x%02X", v)
	}
	if got, want := bus.nreads, 1; got != want {
		t.Fatalf("invalid bus reads: got=%d, want=%d", got, want)
	}
}

func TestWriteMaskedPreservesBits(t *testing.T) {
	bus := newFakeBus()
	bus.regs[0x36] = 0xAA
	m := NewMap(bus)

	if err := m.WriteMasked(0x36, 0x0F, 0x03); err != nil {
		t.Fatalf("could not write: %+v", err)
	}
	if got, want := bus.regs[0x36], uint8(0xA3); got != want {
		t.Fatalf("invalid bus value: got=0b%08b, want=0b%08b", got, want)
	}
	if got, _ := m.Cached(0x36); got != 0xA3 {
		t.Fatalf("invalid cached value: got=0b%08b, want=0b%08b", got, 0xA3)
	}

	n := bus.nreads
	v, err := m.Read(0x36)
	if err != nil {
		t.Fatalf("could not read: %+v", err)
	}
	if v != 0xA3 || bus.nreads != n {
		t.Fatalf("round-trip not served from cache: v=0x%02X reads=%d->%d", v, n, bus.nreads)
	}
}

func TestWriteMaskedAlwaysWrites(t *testing.T) {
	bus := newFakeBus()
	m := NewMap(bus)

	for i := 0; i < 2; i++ {
		if err := m.WriteMasked(RegSoftStart, SoftStartMask, SoftStartEnable); err != nil {
			t.Fatalf("could not write: %+v", err)
		}
	}
	if got, want := bus.nwrites, 2; got != want {
		t.Fatalf("invalid bus writes: got=%d, want=%d", got, want)
	}
}

func TestWriteErrors(t *testing.T) {
	bus := newFakeBus()
	m := NewMap(bus)

	if err := m.Write(RegChipID, 0x00); !errors.Is(err, ErrNotWritable) {
		t.Fatalf("got=%+v, want=%+v", err, ErrNotWritable)
	}
	if err := m.Write(MaxRegister+1, 0x00); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("got=%+v, want=%+v", err, ErrOutOfRange)
	}
	if _, err := m.Read(0xFF); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("got=%+v, want=%+v", err, ErrOutOfRange)
	}
	if bus.nwrites != 0 || bus.nreads != 0 {
		t.Fatalf("invalid access reached the bus")
	}
}

func TestWriteBusFailureLeavesCache(t *testing.T) {
	bus := newFakeBus()
	bus.failOn = func(o op) bool { return o.write && o.addr == RegVolumeCh1 }
	m := NewMap(bus)

	err := m.Write(RegVolumeCh1, 0x10)
	if !errors.Is(err, ErrBus) {
		t.Fatalf("got=%+v, want=%+v", err, ErrBus)
	}
	var berr *BusError
	if !errors.As(err, &berr) || berr.Op != "write" || berr.Addr != RegVolumeCh1 {
		t.Fatalf("invalid bus error: %+v", err)
	}
	if got, _ := m.Cached(RegVolumeCh1); got != 0x50 {
		t.Fatalf("cache modified by failed write: got=0x%02X", got)
	}
}

func TestReadBusFailure(t *testing.T) {
	bus := newFakeBus()
	bus.failOn = func(o op) bool { return !o.write }
	m := NewMap(bus)

	if _, err := m.Read(RegChipID); !errors.Is(err, ErrBus) {
		t.Fatalf("got=%+v, want=%+v", err, ErrBus)
	}
	// the read part of a read-modify-write fails too
	if err := m.WriteMasked(RegSystem, SoftResetBit, SoftResetBit); !errors.Is(err, ErrBus) {
		t.Fatalf("got=%+v, want=%+v", err, ErrBus)
	}
	if bus.nwrites != 0 {
		t.Fatalf("write issued after failed read")
	}
}

func TestReset(t *testing.T) {
	bus := newFakeBus()
	m := NewMap(bus)

	if err := m.Write(RegVolumeCh2, 0x00); err != nil {
		t.Fatalf("could not write: %+v", err)
	}
	if _, err := m.Read(0x38); err != nil {
		t.Fatalf("could not read: %+v", err)
	}
	m.Reset()
	if got, _ := m.Cached(RegVolumeCh2); got != 0x50 {
		t.Fatalf("reset did not restore default: got=0x%02X", got)
	}
	if _, ok := m.Cached(0x38); ok {
		t.Fatalf("reset kept a register without default")
	}
}

func TestReadBlock(t *testing.T) {
	bus := newFakeBus()
	bus.regs[RegDPLLNum0] = 0x01
	bus.regs[RegDPLLNum3] = 0x80
	m := NewMap(bus)

	blk, err := m.ReadBlock(RegDPLLNum0, 4)
	if err != nil {
		t.Fatalf("could not read block: %+v", err)
	}
	if got, want := fmt.Sprintf("% x", blk), "01 00 00 80"; got != want {
		t.Fatalf("got=%q, want=%q", got, want)
	}
	for _, n := range []int{4, 0, -1} {
		if _, err := m.ReadBlock(0x65, n); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("n=%d: got=%+v, want=%+v", n, err, ErrOutOfRange)
		}
	}
}

func TestRefresh(t *testing.T) {
	bus := newFakeBus()
	m := NewMap(bus)

	// Left behind by a previous owner of the chip.
	bus.regs[RegVolumeCh1] = 0x20
	bus.regs[0x38] = 0x5A
	if got, _ := m.Cached(RegVolumeCh1); got != 0x50 {
		t.Fatalf("unexpected cached value: got=0x%02X", got)
	}

	if err := m.Refresh(); err != nil {
		t.Fatalf("could not refresh: %+v", err)
	}
	if got, _ := m.Cached(RegVolumeCh1); got != 0x20 {
		t.Fatalf("refresh kept a stale value: got=0x%02X", got)
	}
	if got, ok := m.Cached(0x38); !ok || got != 0x5A {
		t.Fatalf("refresh missed a register without default: got=0x%02X, ok=%v", got, ok)
	}
	for _, o := range bus.ops {
		if o.addr == RegSystem || o.addr >= FirstReadOnly {
			t.Fatalf("refresh read volatile register 0x%02X", o.addr)
		}
	}

	bus.failOn = func(o op) bool { return o.addr == RegVolumeCh2 }
	var be *BusError
	if err := m.Refresh(); !errors.As(err, &be) || be.Addr != RegVolumeCh2 {
		t.Fatalf("invalid error: %+v", err)
	}
}
