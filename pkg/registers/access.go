package registers

import "fmt"

// Bus is a byte-oriented register bus: one 8-bit register per transfer
type Bus interface {
	ReadReg(addr uint8) (uint8, error)
	WriteReg(addr uint8, value uint8) error
}

type entry struct {
	value uint8
	valid bool // value mirrors the chip
	seen  bool // value was observed at least once (volatile registers)
}

// Map is a cached view of the register file.
//
// Non-volatile registers are served from the cache once their value is
// known, either from the power-on defaults or from a first bus read.
// Volatile registers always go to the bus. A Map is not safe for
// concurrent use; its owner serializes access.
type Map struct {
	bus   Bus
	cache [NumRegisters]entry
}

// NewMap returns a Map seeded with the power-on defaults
func NewMap(bus Bus) *Map {
	m := &Map{bus: bus}
	m.Reset()
	return m
}

// Reset forgets every cached value and re-seeds the power-on defaults
func (m *Map) Reset() {
	for addr := range m.cache {
		m.cache[addr] = entry{}
	}
	for _, d := range Defaults {
		if !table[d.Addr].Cacheable() {
			continue
		}
		m.cache[d.Addr] = entry{value: d.Value, valid: true, seen: true}
	}
}

// Read returns the current value of a register
func (m *Map) Read(addr uint8) (uint8, error) {
	info, err := Lookup(addr)
	if err != nil {
		return 0, err
	}

	e := &m.cache[addr]
	if info.Cacheable() && e.valid {
		return e.value, nil
	}

	v, err := m.bus.ReadReg(addr)
	if err != nil {
		return 0, &BusError{Op: "read", Addr: addr, Err: err}
	}

	e.value = v
	e.seen = true
	if info.Cacheable() {
		e.valid = true
	}
	return v, nil
}

// WriteMasked updates the bits selected by mask with the matching bits of
// value. Bits outside mask keep their current value. The bus write is
// always issued; the cache only changes once the bus write succeeded.
func (m *Map) WriteMasked(addr uint8, mask uint8, value uint8) error {
	info, err := Lookup(addr)
	if err != nil {
		return err
	}
	if !info.CanWrite() {
		return fmt.Errorf("%w: 0x%02X", ErrNotWritable, addr)
	}

	// A full-width write does not depend on the current value.
	var cur uint8
	if mask != 0xFF {
		cur, err = m.Read(addr)
		if err != nil {
			return err
		}
	}
	next := (cur &^ mask) | (value & mask)

	if err := m.bus.WriteReg(addr, next); err != nil {
		return &BusError{Op: "write", Addr: addr, Err: err}
	}

	if info.Cacheable() {
		m.cache[addr] = entry{value: next, valid: true, seen: true}
	}
	return nil
}

// Write replaces the whole register value
func (m *Map) Write(addr uint8, value uint8) error {
	return m.WriteMasked(addr, 0xFF, value)
}

// Cached returns the cached value of a register without touching the bus.
// For volatile registers this is the last observed value. ok is false if
// nothing is known about the register.
func (m *Map) Cached(addr uint8) (value uint8, ok bool) {
	if addr > MaxRegister {
		return 0, false
	}
	e := m.cache[addr]
	return e.value, e.seen
}

// ReadBlock reads n consecutive registers starting at addr
func (m *Map) ReadBlock(addr uint8, n int) ([]byte, error) {
	if n <= 0 || int(addr)+n-1 > MaxRegister {
		return nil, fmt.Errorf("%w: block 0x%02X+%d", ErrOutOfRange, addr, n)
	}
	out := make([]byte, n)
	for i := range out {
		v, err := m.Read(addr + uint8(i))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Refresh re-reads every cacheable register from the bus, replacing what
// the cache assumed. Registers read before a failure keep their new value.
func (m *Map) Refresh() error {
	for addr := 0; addr <= MaxRegister; addr++ {
		if !table[addr].Cacheable() {
			continue
		}
		v, err := m.bus.ReadReg(uint8(addr))
		if err != nil {
			return &BusError{Op: "read", Addr: uint8(addr), Err: err}
		}
		m.cache[addr] = entry{value: v, valid: true, seen: true}
	}
	return nil
}
