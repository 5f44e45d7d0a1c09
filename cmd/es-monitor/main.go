// es-monitor watches an ES9038Q2M for DPLL lock and input rate changes
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"periph.io/x/conn/v3/physic"

	"github.com/herlein/gosabre/pkg/bus"
	"github.com/herlein/gosabre/pkg/codec"
	"github.com/herlein/gosabre/pkg/monitor"
	"github.com/herlein/gosabre/pkg/registers"
)

var (
	busName  = flag.String("bus", "i2c:", bus.NameUsage)
	addr     = flag.Uint("addr", registers.AddrLow, "Device address (0x48 or 0x49)")
	interval = flag.Duration("interval", monitor.DefaultInterval, "Delay between samples")
	duration = flag.Duration("duration", 0, "Monitor duration (0 = indefinite)")
	verbose  = flag.Bool("v", false, "Verbose output - show every sample")
	quiet    = flag.Bool("q", false, "Quiet mode - only show lock changes")
	csvOut   = flag.String("csv", "", "Output CSV file for sample data")
	mclk     = 100 * physic.MegaHertz
)

func main() {
	flag.Var(&mclk, "mclk", "Master clock frequency (e.g. 100MHz)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "DPLL lock and input rate monitor for the ES9038Q2M\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -bus smbus:1 -mclk 100MHz\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -q -duration 1m                # Only show lock changes\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -csv rate.csv -interval 50ms    # Save samples to CSV\n", os.Args[0])
	}
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	port, err := bus.Open(*busName)
	if err != nil {
		return fmt.Errorf("failed to open bus: %w", err)
	}
	defer port.Close()

	logger := log.New(os.Stderr, "es9038q2m: ", log.Ltime)
	if !*verbose {
		logger.SetOutput(io.Discard)
	}

	device, err := codec.New(port.Device(uint16(*addr)), uint32(mclk/physic.Hertz),
		codec.WithLogger(logger), codec.WithAddress(uint16(*addr)))
	if err != nil {
		return err
	}
	if err := device.Probe(); err != nil {
		return fmt.Errorf("probe failed: %w", err)
	}
	fmt.Printf("Connected to: %s 0x%02X, MCLK %s\n", port, *addr, mclk)

	cfg := monitor.DefaultConfig()
	cfg.Interval = *interval
	cfg.OnLocked = func(l *monitor.LockInfo) {
		fmt.Printf("%s LOCKED: %d Hz\n", l.FirstSeen.Format("15:04:05.000"), l.NominalHz)
	}
	cfg.OnLost = func(l *monitor.LockInfo) {
		fmt.Printf("%s LOST:   %d Hz after %v\n", time.Now().Format("15:04:05.000"), l.NominalHz,
			l.Duration().Round(time.Millisecond))
	}
	if *verbose {
		cfg.DebugLog = logger.Printf
	}

	mon, err := monitor.New(device, cfg)
	if err != nil {
		return err
	}

	// Set up CSV output if requested
	var csvWriter *bufio.Writer
	if *csvOut != "" {
		csvFile, err := os.Create(*csvOut)
		if err != nil {
			return fmt.Errorf("failed to create CSV file: %w", err)
		}
		defer csvFile.Close()
		csvWriter = bufio.NewWriter(csvFile)
		defer csvWriter.Flush()

		fmt.Fprintln(csvWriter, "timestamp_ms,locked,automuted,rate_hz,smoothed_hz")
	}

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var ctx context.Context
	var cancel context.CancelFunc
	if *duration > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), *duration)
		fmt.Printf("Monitoring for %v...\n", *duration)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
		fmt.Println("Monitoring... (Press Ctrl+C to stop)")
	}
	defer cancel()

	samples := make(chan *monitor.Sample, 16)
	done := make(chan error, 1)
	go func() { done <- mon.Run(ctx, samples) }()

	if !*quiet {
		fmt.Println("\n Sample | DPLL     | Automute | Rate (Hz) | Smoothed (Hz)")
		fmt.Println("--------+----------+----------+-----------+--------------")
	}

	count := 0
	for {
		select {
		case <-sigChan:
			fmt.Println("\n\nStopping...")
			cancel()

		case s, ok := <-samples:
			if !ok {
				err := <-done
				summary(mon, count)
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return nil
				}
				return err
			}

			count++
			if csvWriter != nil {
				fmt.Fprintf(csvWriter, "%d,%v,%v,%d,%d\n",
					s.Timestamp.UnixMilli(), s.Locked, s.Automuted, s.RateHz, s.SmoothedHz)
			}

			if *quiet {
				continue
			}
			if *verbose || count%20 == 0 {
				lock := "unlocked"
				if s.Locked {
					lock = "locked"
				}
				fmt.Printf(" %6d | %-8s | %-8v | %9d | %13d\n", count, lock, s.Automuted, s.RateHz, s.SmoothedHz)
			}
		}
	}
}

func summary(mon *monitor.Monitor, count int) {
	fmt.Printf("\n--- Summary ---\n")
	fmt.Printf("Samples: %d\n", count)
	history := mon.History()
	fmt.Printf("Locks:   %d\n", len(history))
	for _, l := range history {
		fmt.Printf("  %s  %d Hz for %v (%d samples)\n",
			l.FirstSeen.Format("15:04:05"), l.NominalHz, l.Duration().Round(time.Millisecond), l.SampleCount)
	}
}
