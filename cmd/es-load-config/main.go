// es-load-config: Configure ES9038Q2M devices from a configuration file
//
// This tool reads a device file (see pkg/config) and applies every device
// configuration in it, one goroutine per device. With -snapshot the file
// is a register snapshot written by es-dump-config, restored to a single
// device.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"golang.org/x/sync/errgroup"
	"periph.io/x/conn/v3/physic"

	"github.com/herlein/gosabre/pkg/bus"
	"github.com/herlein/gosabre/pkg/codec"
	"github.com/herlein/gosabre/pkg/config"
	"github.com/herlein/gosabre/pkg/registers"
)

var (
	busName  = flag.String("bus", "i2c:", "Default bus for devices that do not name one.\n"+bus.NameUsage)
	snapshot = flag.Bool("snapshot", false, "The file is a register snapshot")
	addr     = flag.Uint("addr", 0, "Snapshot target address (default: the address recorded in the snapshot)")
	verify   = flag.Bool("verify", false, "Verify registers after writing")
	trace    = flag.Bool("trace", false, "Log every register transfer")
	verbose  = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <config-file>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s etc/gosabre/living-room.json\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -snapshot -verify etc/gosabre/es9038q2m-48.cbor\n", os.Args[0])
		os.Exit(1)
	}

	logger := log.New(os.Stderr, "es9038q2m: ", log.Ltime)
	if !*verbose {
		logger.SetOutput(io.Discard)
	}

	var err error
	if *snapshot {
		err = restore(args[0], logger)
	} else {
		err = apply(args[0], logger)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// ports opens every bus once and hands it to all devices on it
type ports map[string]bus.Port

func (p ports) open(name string) (bus.Port, error) {
	if name == "" {
		name = *busName
	}
	if port, ok := p[name]; ok {
		return port, nil
	}
	port, err := bus.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open bus %s: %w", name, err)
	}
	p[name] = port
	return port, nil
}

func (p ports) close() {
	for _, port := range p {
		port.Close()
	}
}

func newCodec(port bus.Port, address uint16, mclkHz uint32, logger *log.Logger) (*codec.Codec, error) {
	dev := port.Device(address)
	if *trace {
		dev = bus.Trace(dev, log.New(os.Stderr, fmt.Sprintf("0x%02x: ", address), log.Lmicroseconds))
	}
	return codec.New(dev, mclkHz, codec.WithLogger(logger), codec.WithAddress(address))
}

func apply(path string, logger *log.Logger) error {
	if *verbose {
		fmt.Printf("Loading configuration from: %s\n", path)
	}

	file, err := config.LoadFromFile(path)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if len(file.Devices) == 0 {
		return fmt.Errorf("no devices in %s", path)
	}

	// Reject the whole file before touching any device.
	for i := range file.Devices {
		if err := file.Devices[i].Validate(); err != nil {
			return err
		}
	}

	open := ports{}
	defer open.close()

	devices := make([]*codec.Codec, len(file.Devices))
	buses := make([]bus.Port, len(file.Devices))
	for i := range file.Devices {
		cfg := &file.Devices[i]
		if buses[i], err = open.open(cfg.Bus); err != nil {
			return err
		}
		if devices[i], err = newCodec(buses[i], cfg.Address, cfg.MCLKHz, logger); err != nil {
			return fmt.Errorf("%s: %w", cfg.Name, err)
		}
	}

	var g errgroup.Group
	for i := range file.Devices {
		cfg, device, port := &file.Devices[i], devices[i], buses[i]
		g.Go(func() error {
			if err := config.ApplyToDevice(device, cfg); err != nil {
				return fmt.Errorf("%s: failed to apply configuration: %w", cfg.Name, err)
			}
			fmt.Printf("%s: configuration applied (%s)\n", cfg.Name, device.State())

			if !*verify {
				return nil
			}
			want, err := config.DumpFromDevice(device)
			if err != nil {
				return fmt.Errorf("%s: %w", cfg.Name, err)
			}
			return check(cfg.Name, port, cfg.Address, want, logger)
		})
	}
	return g.Wait()
}

func restore(path string, logger *log.Logger) error {
	snap, err := config.LoadSnapshot(path)
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	target := snap.Address
	if *addr != 0 {
		target = uint16(*addr)
	}
	if target != registers.AddrLow && target != registers.AddrHigh {
		return fmt.Errorf("address 0x%02X is not an ES9038Q2M address", target)
	}

	if *verbose {
		fmt.Printf("Snapshot loaded:\n")
		fmt.Printf("  Original Name:      %s\n", snap.Name)
		fmt.Printf("  Original Bus:       %s 0x%02X\n", snap.Bus, snap.Address)
		fmt.Printf("  Original Timestamp: %s\n", snap.Timestamp.Format("2006-01-02 15:04:05"))
		fmt.Printf("  MCLK:               %s\n", physic.Frequency(snap.MCLKHz)*physic.Hertz)
	}

	open := ports{}
	defer open.close()

	port, err := open.open("")
	if err != nil {
		return err
	}
	device, err := newCodec(port, target, snap.MCLKHz, logger)
	if err != nil {
		return err
	}
	if err := device.Probe(); err != nil {
		return fmt.Errorf("probe failed: %w", err)
	}
	if err := config.RestoreToDevice(device, snap); err != nil {
		return fmt.Errorf("failed to restore snapshot: %w", err)
	}
	fmt.Printf("Snapshot restored to %s 0x%02X\n", port, target)

	if !*verify {
		return nil
	}
	return check(snap.Name, port, target, snap, logger)
}

// check reads the configuration registers back through a fresh codec and
// compares them with want.
func check(name string, port bus.Port, address uint16, want *config.Snapshot, logger *log.Logger) error {
	device, err := newCodec(port, address, want.MCLKHz, logger)
	if err != nil {
		return err
	}
	if err := device.Probe(); err != nil {
		return fmt.Errorf("%s: verification probe failed: %w", name, err)
	}
	if err := device.Refresh(); err != nil {
		return fmt.Errorf("%s: failed to read back registers: %w", name, err)
	}
	got, err := config.DumpFromDevice(device)
	if err != nil {
		return fmt.Errorf("%s: failed to read back registers: %w", name, err)
	}

	diffs := config.Diff(want, got)
	if len(diffs) > 0 {
		fmt.Fprintf(os.Stderr, "%s: verification failed with %d error(s):\n", name, len(diffs))
		for _, d := range diffs {
			fmt.Fprintf(os.Stderr, "  - %s\n", d)
		}
		return fmt.Errorf("%s: verification failed", name)
	}
	fmt.Printf("%s: verification OK\n", name)
	return nil
}
