package registers

import "fmt"

// Access describes how a register may be used
type Access uint8

const (
	Writable Access = 1 << iota // Host may write the register
	ReadOnly                    // Host may only read the register
	Volatile                    // Value may change behind the host's back, never cached
)

// String returns a short human-readable access description
func (a Access) String() string {
	switch {
	case a&ReadOnly != 0 && a&Volatile != 0:
		return "ro,volatile"
	case a&ReadOnly != 0:
		return "ro"
	case a&Writable != 0 && a&Volatile != 0:
		return "rw,volatile"
	case a&Writable != 0:
		return "rw"
	default:
		return fmt.Sprintf("Access(0x%02X)", uint8(a))
	}
}

// Default is a power-on-reset value for one register
type Default struct {
	Addr  uint8
	Value uint8
}

// Defaults is the power-on-reset state of every writable register that has
// a documented reset value. Registers 0x35-0x3F have none and start unknown.
var Defaults = []Default{
	{RegSystem, 0x00},
	{RegInputSel, 0xCC},
	{RegMixing, 0x2C},
	{RegSPDIFCfg, 0x40},
	{RegAutomuteTime, 0x00},
	{RegAutomuteLvl, 0x68},
	{RegDeempVolRamp, 0x42},
	{RegFilterShape, 0x84},
	{RegGPIOCfg, 0xDD},
	{RegReserved09, 0x22},
	{RegMasterMode, 0x02},
	{RegSPDIFSelect, 0x00},
	{RegDPLLBW, 0x5A},
	{RegTHDBypass, 0x40},
	{RegSoftStart, 0x8A},
	{RegVolumeCh1, 0x50},
	{RegVolumeCh2, 0x50},
	{RegMTrim0, 0xFF},
	{RegMTrim1, 0xFF},
	{RegMTrim2, 0xFF},
	{RegMTrim3, 0x7F},
	{RegGPIOInSel, 0x00},
	{RegTHDC2_0, 0x00},
	{RegTHDC2_1, 0x00},
	{RegTHDC3_0, 0x00},
	{RegTHDC3_1, 0x00},
	{RegReserved1A, 0x00},
	{RegGenCfg, 0xD4},
	{RegReserved1C, 0xF0},
	{RegGPIOInv, 0x00},
	{RegCPClk0, 0x00},
	{RegCPClk1, 0x00},
	{RegReserved20, 0x00},
	{RegIntrMask, 0xF0},
	{RegNCO0, 0x00},
	{RegNCO1, 0x00},
	{RegNCO2, 0x00},
	{RegNCO3, 0x00},
	{RegReserved26, 0x00},
	{RegGenCfg2, 0x00},
	{RegFIRAddr, 0x00},
	{RegFIRData0, 0x00},
	{RegFIRData1, 0x00},
	{RegFIRData2, 0x00},
	{RegFIRConfig, 0x00},
	{RegLowPwrCalib, 0x20},
	{RegADCConfig, 0x55},
	{RegADCFtrScale0, 0xE0},
	{RegADCFtrScale1, 0x03},
	{RegADCFBQ1_0, 0x00},
	{RegADCFBQ1_1, 0x04},
	{RegADCFBQ2_0, 0x00},
	{RegADCFBQ2_1, 0x04},
}

// Info is the static description of a single register
type Info struct {
	Addr       uint8
	Access     Access
	Default    uint8
	HasDefault bool
}

// Cacheable reports whether reads may be served from the cache
func (i Info) Cacheable() bool {
	return i.Access&Volatile == 0
}

// CanWrite reports whether the host may write the register
func (i Info) CanWrite() bool {
	return i.Access&Writable != 0
}

var table [NumRegisters]Info

func init() {
	for addr := 0; addr < NumRegisters; addr++ {
		table[addr] = Info{Addr: uint8(addr), Access: accessOf(uint8(addr))}
	}
	for _, d := range Defaults {
		table[d.Addr].Default = d.Value
		table[d.Addr].HasDefault = true
	}
}

func accessOf(addr uint8) Access {
	switch {
	case addr >= FirstReadOnly:
		return ReadOnly | Volatile
	case addr == RegSystem:
		return Writable | Volatile
	default:
		return Writable
	}
}

// Lookup returns the static description of a register
func Lookup(addr uint8) (Info, error) {
	if addr > MaxRegister {
		return Info{}, fmt.Errorf("%w: 0x%02X > 0x%02X", ErrOutOfRange, addr, MaxRegister)
	}
	return table[addr], nil
}
