// es-reset soft resets ES9038Q2M devices to their power-on register state
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/herlein/gosabre/pkg/bus"
	"github.com/herlein/gosabre/pkg/codec"
	"github.com/herlein/gosabre/pkg/registers"
)

// The master clock is not used by a reset, but a codec needs one.
const anyMCLK = 100000000

func main() {
	busName := flag.String("bus", "i2c:", bus.NameUsage)
	attempts := flag.Int("attempts", 3, "Probe attempts per device")
	flag.Parse()

	port, err := bus.Open(*busName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to open bus: %v\n", err)
		os.Exit(1)
	}
	defer port.Close()

	logger := log.New(io.Discard, "", 0)
	found := 0
	for _, addr := range []uint16{registers.AddrLow, registers.AddrHigh} {
		device, err := codec.New(port.Device(addr), anyMCLK, codec.WithLogger(logger))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		// A DAC that was just powered may not answer yet
		for attempt := 0; attempt < *attempts; attempt++ {
			if err = device.Probe(); err == nil {
				break
			}
			time.Sleep(100 * time.Millisecond)
		}
		if err != nil {
			fmt.Printf("  0x%02X: not found (%v)\n", addr, err)
			continue
		}
		found++

		if err := device.SoftReset(); err != nil {
			fmt.Printf("  0x%02X: Reset failed: %v\n", addr, err)
		} else {
			fmt.Printf("  0x%02X: Reset OK\n", addr)
		}
	}

	if found == 0 {
		fmt.Println("No ES9038Q2M devices found")
		os.Exit(1)
	}
}
