// Package mcp2221 drives a Microchip MCP2221A USB-HID to I2C bridge. A
// Device implements periph's i2c.Bus so register drivers can run on a
// desktop host.
package mcp2221

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/gousb"
)

// Bridge errors
var (
	ErrNACK    = errors.New("mcp2221: address not acknowledged")
	ErrTimeout = errors.New("mcp2221: i2c timeout")
	ErrBusy    = errors.New("mcp2221: i2c engine busy")
)

type reportReader interface {
	ReadContext(ctx context.Context, buf []byte) (int, error)
}

type reportWriter interface {
	WriteContext(ctx context.Context, buf []byte) (int, error)
}

// Device represents an MCP2221A USB device
type Device struct {
	usbDevice    *gousb.Device
	usbConfig    *gousb.Config
	usbInterface *gousb.Interface
	epIn         reportReader
	epOut        reportWriter
	Serial       string
	Manufacturer string
	Product      string
	Bus          int
	Address      int
	Timeout      time.Duration

	mu sync.Mutex // Serializes report exchanges
}

// FindAllDevices finds all connected MCP2221A bridges
func FindAllDevices(ctx *gousb.Context) ([]*Device, error) {
	devices := []*Device{}

	usbDevices, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == gousb.ID(VendorID) && desc.Product == gousb.ID(ProductID)
	})
	if err != nil && len(usbDevices) == 0 {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	for _, usbDev := range usbDevices {
		device, err := wrapDevice(usbDev)
		if err != nil {
			usbDev.Close()
			continue
		}
		devices = append(devices, device)
	}

	return devices, nil
}

func wrapDevice(usbDev *gousb.Device) (*Device, error) {
	manufacturer, _ := usbDev.Manufacturer()
	product, _ := usbDev.Product()
	serial, _ := usbDev.SerialNumber()

	// The kernel binds hid-generic (or hid-mcp2221) to the HID interface.
	usbDev.SetAutoDetach(true)

	config, err := usbDev.Config(1)
	if err != nil {
		return nil, fmt.Errorf("failed to get configuration: %w", err)
	}

	iface, err := config.Interface(HIDInterface, 0)
	if err != nil {
		config.Close()
		return nil, fmt.Errorf("failed to claim HID interface: %w", err)
	}

	epIn, err := iface.InEndpoint(HIDEndpoint)
	if err != nil {
		iface.Close()
		config.Close()
		return nil, fmt.Errorf("failed to get IN endpoint: %w", err)
	}

	epOut, err := iface.OutEndpoint(HIDEndpoint)
	if err != nil {
		iface.Close()
		config.Close()
		return nil, fmt.Errorf("failed to get OUT endpoint: %w", err)
	}

	desc := usbDev.Desc
	return &Device{
		usbDevice:    usbDev,
		usbConfig:    config,
		usbInterface: iface,
		epIn:         epIn,
		epOut:        epOut,
		Serial:       serial,
		Manufacturer: manufacturer,
		Product:      product,
		Bus:          desc.Bus,
		Address:      desc.Address,
		Timeout:      USBDefaultTimeout,
	}, nil
}

// Close releases the USB interface and device
func (d *Device) Close() error {
	if d.usbInterface != nil {
		d.usbInterface.Close()
	}
	if d.usbConfig != nil {
		d.usbConfig.Close()
	}
	if d.usbDevice != nil {
		return d.usbDevice.Close()
	}
	return nil
}

// String returns a human-readable description of the device
func (d *Device) String() string {
	return fmt.Sprintf("%s %s (Serial: %s)", d.Manufacturer, d.Product, d.Serial)
}

// transfer sends one 64-byte command report and reads its response.
// Every MCP2221A response echoes the command code in byte 0.
func (d *Device) transfer(req *[ReportSize]byte) ([ReportSize]byte, error) {
	var rsp [ReportSize]byte

	timeout := d.Timeout
	if timeout == 0 {
		timeout = USBDefaultTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	n, err := d.epOut.WriteContext(ctx, req[:])
	if err != nil {
		if ctx.Err() != nil {
			return rsp, fmt.Errorf("write timeout [cmd=0x%02X]: %w", req[0], err)
		}
		return rsp, fmt.Errorf("failed to write report [cmd=0x%02X]: %w", req[0], err)
	}
	if n != ReportSize {
		return rsp, fmt.Errorf("short write: wrote %d of %d bytes", n, ReportSize)
	}

	n, err = d.epIn.ReadContext(ctx, rsp[:])
	if err != nil {
		if ctx.Err() != nil {
			return rsp, fmt.Errorf("read timeout [cmd=0x%02X]: %w", req[0], err)
		}
		return rsp, fmt.Errorf("failed to read report [cmd=0x%02X]: %w", req[0], err)
	}
	if n < ReportSize {
		return rsp, fmt.Errorf("short read [cmd=0x%02X]: %d of %d bytes", req[0], n, ReportSize)
	}
	if rsp[0] != req[0] {
		return rsp, fmt.Errorf("response mismatch: got cmd=0x%02X, expected cmd=0x%02X", rsp[0], req[0])
	}
	return rsp, nil
}

// Revision returns the hardware and firmware revisions, e.g. "A6" and "12"
func (d *Device) Revision() (hw, fw string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var req [ReportSize]byte
	req[0] = CmdStatus
	rsp, err := d.transfer(&req)
	if err != nil {
		return "", "", fmt.Errorf("failed to get status: %w", err)
	}
	return string(rsp[46:48]), string(rsp[48:50]), nil
}
