package mcp2221

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/gousb"
)

// DeviceSelector specifies how to identify an MCP2221A bridge
// Supported formats:
//   - ""           : Use first available device
//   - "serial"     : Match by USB serial number (e.g., "0001234567")
//   - "bus:addr"   : Match by USB bus and address (e.g., "1:10")
//   - "#N"         : Use Nth device, 0-indexed (e.g., "#0", "#1")
type DeviceSelector string

// match reports whether the i-th enumerated device is selected
type match func(i int, d *Device) bool

func (s DeviceSelector) matcher() (match, string, error) {
	sel := string(s)

	switch {
	case sel == "":
		return func(i int, _ *Device) bool { return i == 0 }, "first device", nil

	case strings.HasPrefix(sel, "#"):
		index, err := strconv.Atoi(sel[1:])
		if err != nil || index < 0 {
			return nil, "", fmt.Errorf("invalid device index: %s", sel)
		}
		return func(i int, _ *Device) bool { return i == index }, fmt.Sprintf("index %d", index), nil

	case strings.Contains(sel, ":"):
		parts := strings.SplitN(sel, ":", 2)
		bus, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, "", fmt.Errorf("invalid bus number: %s", parts[0])
		}
		addr, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, "", fmt.Errorf("invalid address number: %s", parts[1])
		}
		return func(_ int, d *Device) bool {
			return d.Bus == bus && d.Address == addr
		}, fmt.Sprintf("bus %d address %d", bus, addr), nil

	default:
		return func(_ int, d *Device) bool { return d.Serial == sel }, "serial " + sel, nil
	}
}

// SelectDevice opens the MCP2221A matching the selector. Every other
// enumerated bridge is closed.
func SelectDevice(ctx *gousb.Context, selector DeviceSelector) (*Device, error) {
	m, what, err := selector.matcher()
	if err != nil {
		return nil, err
	}

	devices, err := FindAllDevices(ctx)
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return nil, fmt.Errorf("no MCP2221A devices found")
	}

	return pick(devices, m, what)
}

func pick(devices []*Device, m match, what string) (*Device, error) {
	var matches []*Device
	for i, d := range devices {
		if m(i, d) {
			matches = append(matches, d)
		} else {
			d.Close()
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no MCP2221A found for %s (found %d devices)", what, len(devices))
	case 1:
		return matches[0], nil
	default:
		for _, d := range matches {
			d.Close()
		}
		return nil, fmt.Errorf("multiple devices (%d) found with %s; use bus:addr format (e.g., 1:10) or index format (e.g., #0)", len(matches), what)
	}
}

// DeviceFlagUsage returns usage text for a bridge selector flag
func DeviceFlagUsage() string {
	return `MCP2221A selector. Formats:
    ""        - Use first available device
    "serial"  - Match by USB serial number
    "bus:addr"- Match by USB location (e.g., "1:10")
    "#N"      - Use Nth device, 0-indexed (e.g., "#0", "#1")`
}
