// es-nco: Compute ES9038Q2M NCO tuning words
//
// This tool prints the NCO word the DAC needs to generate a sample rate in
// master mode, split into the four bytes written to registers 0x22..0x25,
// and the rate the word really produces.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"periph.io/x/conn/v3/physic"

	"github.com/herlein/gosabre/pkg/clock"
	"github.com/herlein/gosabre/pkg/registers"
)

func main() {
	mclk := 100 * physic.MegaHertz
	flag.Var(&mclk, "mclk", "Master clock frequency (e.g. 100MHz, 45.1584MHz)")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <rate>...\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s -mclk 100MHz 44.1kHz 48kHz 2.8224MHz\n", os.Args[0])
		os.Exit(1)
	}

	mclkHz := uint32(mclk / physic.Hertz)
	fmt.Printf("MCLK %s\n\n", mclk)
	fmt.Printf("  %-12s  %-10s  %-11s  %s\n", "Rate", "NCO", "0x22..0x25", "Actual")

	failed := false
	for _, arg := range args {
		rate, err := parseRate(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid rate %q: %v\n", arg, err)
			failed = true
			continue
		}
		rateHz := uint32(rate / physic.Hertz)

		word, err := clock.NCO(rateHz, mclkHz)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", rate, err)
			failed = true
			continue
		}
		b := clock.NCOBytes(word)
		fmt.Printf("  %-12s  0x%08X  % X  %d Hz\n", rate, word, b[:], clock.Rate(word, mclkHz))
	}

	if failed {
		os.Exit(1)
	}
	fmt.Printf("\nBytes are written least significant first, starting at 0x%02X.\n", registers.RegNCO0)
}

// parseRate accepts plain Hz ("44100") or a frequency with unit ("44.1kHz")
func parseRate(s string) (physic.Frequency, error) {
	if hz, err := strconv.ParseUint(s, 10, 32); err == nil {
		return physic.Frequency(hz) * physic.Hertz, nil
	}
	var f physic.Frequency
	err := f.Set(s)
	return f, err
}
