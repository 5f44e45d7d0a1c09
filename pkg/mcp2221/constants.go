package mcp2221

import "time"

// USB Device Identifiers
const (
	VendorID  = 0x04D8 // Microchip
	ProductID = 0x00DD // MCP2221 / MCP2221A
)

// USB Endpoint Configuration
const (
	HIDInterface = 2 // Interfaces 0 and 1 are the CDC UART
	HIDEndpoint  = 3 // 0x83 IN, 0x03 OUT
	ReportSize   = 64
)

// USB Timeouts
const (
	USBDefaultTimeout = 1000 * time.Millisecond
	pollInterval      = 300 * time.Microsecond
)

// HID commands
const (
	CmdStatus          = 0x10 // Status / set parameters
	CmdI2CWrite        = 0x90 // START, write, STOP
	CmdI2CRead         = 0x91 // START, read, STOP
	CmdI2CReadRepStart = 0x93 // Repeated START, read, STOP
	CmdI2CWriteNoStop  = 0x94 // START, write, no STOP
	CmdI2CGetData      = 0x40
)

// Set-parameters request fields
const (
	paramCancel   = 0x10 // Byte 2: cancel the current transfer
	paramSetSpeed = 0x20 // Byte 3: byte 4 holds the clock divider
)

// I2C engine
const (
	ClkHz       = 12000000 // Internal clock, divided for SCL
	DefaultBaud = 100000
	MinAddr     = 0x08
	MaxAddr     = 0x77

	chunkMax = 60 // Payload bytes per report
	retryMax = 50
)

// I2C engine states, byte 8 of a status response and byte 2 of a get-data
// response
const (
	stateIdle            = 0x00
	stateStartTimeout    = 0x12
	stateRepStartTimeout = 0x17
	stateAddrTimeout     = 0x23
	stateAddrNACK        = 0x25
	stateWriteTimeout    = 0x44
	stateWritingNoStop   = 0x45
	stateReadTimeout     = 0x52
	stateReadComplete    = 0x55
	stateStopTimeout     = 0x62
	stateReadError       = 0x7F
	speedChangeBusy      = 0x21
)

func stateTimeout(s uint8) bool {
	switch s {
	case stateStartTimeout, stateRepStartTimeout, stateStopTimeout,
		stateReadTimeout, stateWriteTimeout, stateAddrTimeout:
		return true
	}
	return false
}
