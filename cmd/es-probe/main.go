// es-probe: Identify ES9038Q2M DACs on a bus
//
// This tool probes the given addresses concurrently and prints, for every
// DAC found, the chip id, the DPLL lock and automute status, and the sample
// rate measured by the DPLL.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
	"periph.io/x/conn/v3/physic"

	"github.com/herlein/gosabre/pkg/bus"
	"github.com/herlein/gosabre/pkg/codec"
	"github.com/herlein/gosabre/pkg/mcp2221"
	"github.com/herlein/gosabre/pkg/registers"
)

type result struct {
	addr   uint16
	status codec.Status
	rate   uint32
	err    error
}

func main() {
	mclk := 100 * physic.MegaHertz

	busName := flag.String("bus", "i2c:", bus.NameUsage)
	addrList := flag.String("addr", "0x48,0x49", "Comma separated device addresses")
	flag.Var(&mclk, "mclk", "Master clock frequency (e.g. 100MHz, 45.1584MHz)")
	trace := flag.Bool("trace", false, "Log every register transfer")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	addrs, err := parseAddrs(*addrList)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	port, err := bus.Open(*busName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to open bus: %v\n", err)
		os.Exit(1)
	}
	defer port.Close()

	if *verbose {
		fmt.Printf("Probing %s at %s\n", port, mclk)
	}

	logger := log.New(os.Stderr, "es9038q2m: ", log.Ltime)
	if !*verbose && !*trace {
		logger.SetOutput(io.Discard)
	}

	results := make([]result, len(addrs))
	var g errgroup.Group
	for i, addr := range addrs {
		i, addr := i, addr
		g.Go(func() error {
			results[i] = probe(port, addr, uint32(mclk/physic.Hertz), logger, *trace)
			if err := results[i].err; err != nil && !notFound(err) {
				return fmt.Errorf("0x%02X: %w", addr, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	found := 0
	for _, r := range results {
		if r.err != nil {
			fmt.Printf("  0x%02X  not found\n", r.addr)
			if *verbose {
				fmt.Printf("        %v\n", r.err)
			}
			continue
		}
		found++

		lock := "unlocked"
		if r.status.DPLLLocked {
			lock = "locked"
		}
		mute := "off"
		if r.status.Automuted {
			mute = "on"
		}
		fmt.Printf("  0x%02X  ES9038Q2M (chip id 0x%02X)  DPLL %s  automute %s  rate %d Hz\n",
			r.addr, r.status.ChipID, lock, mute, r.rate)
	}

	if found == 0 {
		fmt.Fprintln(os.Stderr, "Error: No ES9038Q2M devices found")
		os.Exit(1)
	}
}

func probe(port bus.Port, addr uint16, mclkHz uint32, logger *log.Logger, trace bool) result {
	r := result{addr: addr}

	dev := port.Device(addr)
	if trace {
		dev = bus.Trace(dev, log.New(os.Stderr, fmt.Sprintf("0x%02x: ", addr), log.Lmicroseconds))
	}

	c, err := codec.New(dev, mclkHz, codec.WithLogger(logger), codec.WithAddress(addr))
	if err != nil {
		r.err = err
		return r
	}
	if r.err = c.Probe(); r.err != nil {
		return r
	}
	if r.status, r.err = c.Status(); r.err != nil {
		return r
	}
	r.rate, r.err = c.MeasuredRate()
	return r
}

// notFound reports whether err means nothing answered at the address
func notFound(err error) bool {
	return errors.Is(err, codec.ErrDeviceNotFound) ||
		errors.Is(err, bus.ErrNACK) ||
		errors.Is(err, mcp2221.ErrNACK)
}

func parseAddrs(list string) ([]uint16, error) {
	var addrs []uint16
	for _, s := range strings.Split(list, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		v, err := strconv.ParseUint(s, 0, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid address %q", s)
		}
		if v != registers.AddrLow && v != registers.AddrHigh {
			return nil, fmt.Errorf("address 0x%02X is not an ES9038Q2M address (0x%02X or 0x%02X)",
				v, registers.AddrLow, registers.AddrHigh)
		}
		addrs = append(addrs, uint16(v))
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("no address given")
	}
	return addrs, nil
}
