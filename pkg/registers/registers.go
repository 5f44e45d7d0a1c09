// Package registers models the ES9038Q2M register file: addresses, bit
// fields, power-on defaults and a cached read-modify-write map over an
// 8-bit register bus.
package registers

// I2C slave addresses, selected by the ADDR pin
const (
	AddrLow  = 0x48
	AddrHigh = 0x49
)

// Writable configuration registers
const (
	RegSystem       = 0x00 // Writable, but volatile (soft reset self-clears)
	RegInputSel     = 0x01
	RegMixing       = 0x02
	RegSPDIFCfg     = 0x03
	RegAutomuteTime = 0x04
	RegAutomuteLvl  = 0x05
	RegDeempVolRamp = 0x06
	RegFilterShape  = 0x07
	RegGPIOCfg      = 0x08
	RegReserved09   = 0x09
	RegMasterMode   = 0x0A
	RegSPDIFSelect  = 0x0B
	RegDPLLBW       = 0x0C
	RegTHDBypass    = 0x0D
	RegSoftStart    = 0x0E
	RegVolumeCh1    = 0x0F
	RegVolumeCh2    = 0x10
	RegMTrim0       = 0x11
	RegMTrim1       = 0x12
	RegMTrim2       = 0x13
	RegMTrim3       = 0x14
	RegGPIOInSel    = 0x15
	RegTHDC2_0      = 0x16
	RegTHDC2_1      = 0x17
	RegTHDC3_0      = 0x18
	RegTHDC3_1      = 0x19
	RegReserved1A   = 0x1A
	RegGenCfg       = 0x1B
	RegReserved1C   = 0x1C
	RegGPIOInv      = 0x1D
	RegCPClk0       = 0x1E
	RegCPClk1       = 0x1F
	RegReserved20   = 0x20
	RegIntrMask     = 0x21
	RegNCO0         = 0x22 // NCO tuning word, least significant byte
	RegNCO1         = 0x23
	RegNCO2         = 0x24
	RegNCO3         = 0x25 // NCO tuning word, most significant byte
	RegReserved26   = 0x26
	RegGenCfg2      = 0x27
	RegFIRAddr      = 0x28
	RegFIRData0     = 0x29
	RegFIRData1     = 0x2A
	RegFIRData2     = 0x2B
	RegFIRConfig    = 0x2C
	RegLowPwrCalib  = 0x2D
	RegADCConfig    = 0x2E

	// ADC filter configuration
	RegADCFtrScale0 = 0x2F
	RegADCFtrScale1 = 0x30
	RegADCFBQ1_0    = 0x31
	RegADCFBQ1_1    = 0x32
	RegADCFBQ2_0    = 0x33
	RegADCFBQ2_1    = 0x34
)

// Read-only status and identification block
const (
	RegChipID          = 0x40
	RegGPIOReadback    = 0x41
	RegDPLLNum0        = 0x42 // DPLL ratio, least significant byte
	RegDPLLNum1        = 0x43
	RegDPLLNum2        = 0x44
	RegDPLLNum3        = 0x45
	RegSPDIFStatusBase = 0x46 // Channel status bytes up to 0x5F
	RegInputStatus     = 0x60
	RegADCReadback0    = 0x64
	RegADCReadback1    = 0x65
	RegADCReadback2    = 0x66
)

const (
	// MaxRegister is the highest valid register address.
	MaxRegister = 0x66
	// NumRegisters is the size of the register space.
	NumRegisters = MaxRegister + 1
	// FirstReadOnly starts the read-only status/identification block.
	FirstReadOnly = RegChipID
)

// REG_SYSTEM (0x00)
const (
	OscDrvFullBias    = 0x00
	OscDrv3_4Bias     = 0x80
	OscDrvHalfBias    = 0xC0
	OscDrv1_4Bias     = 0xE0
	OscDrvShutdown    = 0xF0
	ClkGearDiv1       = 0x00
	ClkGearDiv2       = 0x04
	ClkGearDiv4       = 0x08
	ClkGearDiv8       = 0x0C
	SoftResetBit      = 0x01
	SystemOscDrvMask  = 0xF0
	SystemClkGearMask = 0x0C
)

// REG_INPUT_SEL (0x01)
const (
	SerialLenMask    = 0xC0
	SerialLen16Bit   = 0x00
	SerialLen24Bit   = 0x40
	SerialLen32Bit2  = 0x80 // Electrically identical to SerialLen32Bit
	SerialLen32Bit   = 0xC0
	SerialModeMask   = 0x30
	SerialModeI2S    = 0x00
	SerialModeLJ     = 0x10
	SerialModeRJ     = 0x20
	SerialModeRJ2    = 0x30
	AutoselMask      = 0x0C
	AutoselDisabled  = 0x00
	AutoselDSDSerial = 0x04
	AutoselSPDIF     = 0x08
	AutoselAll       = 0x0C
	InputSelMask     = 0x03
	InputSelSerial   = 0x00
	InputSelSPDIF    = 0x01
	InputSelReserved = 0x02
	InputSelDSD      = 0x03
)

// REG_MIXING (0x02)
const (
	AutomuteNormal  = 0x00
	AutomuteMute    = 0x40
	AutomuteGnd     = 0x80
	AutomuteMuteGnd = 0xC0
	Ch2MixCh1       = 0x00
	Ch2MixCh2       = 0x04
	Ch1MixCh1       = 0x00
	Ch1MixCh2       = 0x01
)

// REG_DEEMP_VOLRAMP (0x06)
const (
	AutoDeemph     = 0x80
	DeemphBypass   = 0x40
	Deemph32kHz    = 0x00
	Deemph44kHz    = 0x10
	Deemph48kHz    = 0x20
	DoPEnable      = 0x08
	VolRampMask    = 0x07
	DeemphFSMask   = 0x30
	DeemphModeMask = 0xC0
)

// REG_FILTER_SHAPE (0x07)
const (
	FilterShapeMask  = 0xE0
	FilterShapeShift = 5
	BypassOSF        = 0x08
	MuteBit          = 0x01
)

// REG_MASTER_MODE (0x0A)
const (
	MasterModeMask   = 0x80
	MasterModeEnable = 0x80
	MasterDivMask    = 0x60
	MasterDiv2       = 0x00
	MasterDiv4       = 0x20
	MasterDiv8       = 0x40
	MasterDiv16      = 0x60
	Mode128FSEnable  = 0x10
	LockSpeedMask    = 0x0F
)

// REG_THD_BYPASS (0x0D)
const (
	THDEnable  = 0x00
	THDDisable = 0x40
)

// REG_SOFT_START (0x0E)
const (
	SoftStartMask     = 0x80
	SoftStartEnable   = 0x80
	SoftStartDisable  = 0x00
	SoftStartTimeMask = 0x1F
)

// REG_GEN_CFG (0x1B)
const (
	ASRCEnable      = 0x80
	Ch1VolumeShared = 0x08
	LatchVolume     = 0x04
	GainMask        = 0x03
)

// REG_GEN_CFG_2 (0x27)
const (
	AmpPDBSS   = 0x80
	AmpPDB     = 0x40
	SwCtrlExt  = 0x00
	SwCtrlLow  = 0x01
	SwCtrlHigh = 0x03
)

// REG_CHIP_ID (0x40)
const (
	ChipIDMask      = 0xFC
	ChipIDES9038Q2M = 0x70
	AutomuteStatus  = 0x02
	DPLLLockStatus  = 0x01
)

// REG_VOL_CH1/CH2 (0x0F-0x10), attenuation in 0.5 dB steps
const (
	Volume0dB     = 0x00
	VolumeMinimum = 0xFF // -127.5 dB
	VolumeStepCdB = 50   // centi-dB per step
)
