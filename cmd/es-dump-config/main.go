// es-dump-config: Dump ES9038Q2M registers to a snapshot file
//
// This tool connects to an ES9038Q2M, reads its whole register file and
// saves it to a JSON file, or CBOR when the output name ends in ".cbor".
// The snapshot can later be restored using es-load-config -snapshot.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"periph.io/x/conn/v3/physic"

	"github.com/herlein/gosabre/pkg/bus"
	"github.com/herlein/gosabre/pkg/codec"
	"github.com/herlein/gosabre/pkg/config"
	"github.com/herlein/gosabre/pkg/registers"
)

func main() {
	mclk := 100 * physic.MegaHertz

	// Parse command line flags
	busName := flag.String("bus", "i2c:", bus.NameUsage)
	addr := flag.Uint("addr", registers.AddrLow, "Device address (0x48 or 0x49)")
	flag.Var(&mclk, "mclk", "Master clock frequency (e.g. 100MHz)")
	name := flag.String("name", "", "Snapshot name (default: es9038q2m-<addr>)")
	outputFile := flag.String("o", "", "Output file path (default: etc/gosabre/<name>.json)")
	jsonOutput := flag.Bool("json", false, "Output snapshot to stdout as JSON instead of file")
	trace := flag.Bool("trace", false, "Log every register transfer")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	if *name == "" {
		*name = fmt.Sprintf("es9038q2m-%02x", *addr)
	}

	port, err := bus.Open(*busName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to open bus: %v\n", err)
		os.Exit(1)
	}
	defer port.Close()

	logger := log.New(os.Stderr, "es9038q2m: ", 0)
	if !*verbose {
		logger.SetOutput(io.Discard)
	}

	dev := port.Device(uint16(*addr))
	if *trace {
		dev = bus.Trace(dev, log.New(os.Stderr, "trace: ", log.Lmicroseconds))
	}

	device, err := codec.New(dev, uint32(mclk/physic.Hertz), codec.WithLogger(logger), codec.WithAddress(uint16(*addr)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("Connected to: %s 0x%02X\n", port, *addr)
	}

	if err := device.Probe(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Probe failed: %v\n", err)
		os.Exit(1)
	}

	// The cache starts from power-on defaults; read what is really there.
	if err := device.Refresh(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to read registers: %v\n", err)
		os.Exit(1)
	}

	snapshot, err := config.DumpFromDevice(device)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to dump registers: %v\n", err)
		os.Exit(1)
	}
	snapshot.Name = *name
	snapshot.Bus = port.String()
	snapshot.Address = uint16(*addr)

	// Output to stdout as JSON
	if *jsonOutput {
		data, err := json.MarshalIndent(snapshot, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to marshal snapshot: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}

	path := *outputFile
	if path == "" {
		path = config.GetConfigPath(*name)
	}

	if err := config.SaveSnapshot(snapshot, path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to save snapshot: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Snapshot saved to: %s\n", path)

	if *verbose {
		printSummary(device, snapshot)
	}
}

func printSummary(device *codec.Codec, snapshot *config.Snapshot) {
	fmt.Println("\nDevice Summary:")
	fmt.Printf("  Chip ID:      0x%02X\n", snapshot.ChipID)
	fmt.Printf("  MCLK:         %d Hz\n", snapshot.MCLKHz)
	fmt.Printf("  Clock Role:   %s\n", device.ClockRole())
	fmt.Printf("  Muted:        %v\n", device.Muted())

	if ch1, ch2, err := device.Volume(); err == nil {
		fmt.Printf("  Volume:       %.1f dB / %.1f dB\n", codec.AttenuationDB(ch1), codec.AttenuationDB(ch2))
	}
	if shape, err := device.Filter(); err == nil {
		fmt.Printf("  Filter:       %s\n", shape)
	}
	if status, err := device.Status(); err == nil {
		fmt.Printf("  DPLL Locked:  %v\n", status.DPLLLocked)
	}
	if rate, err := device.MeasuredRate(); err == nil {
		fmt.Printf("  Input Rate:   %d Hz\n", rate)
	}
}
